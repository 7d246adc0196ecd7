package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
)

func parseTodoListArgs(args []string) (todoListOptions, error) {
	listFS := flag.NewFlagSet("todos list", flag.ContinueOnError)
	listFS.SetOutput(os.Stderr)

	var opts todoListOptions
	listFS.IntVar(&opts.Skip, "skip", 0, "number of todos to skip")
	listFS.IntVar(&opts.Limit, "limit", 100, "maximum number of todos to return")

	if err := listFS.Parse(args); err != nil {
		return todoListOptions{}, err
	}
	if len(listFS.Args()) != 0 {
		return todoListOptions{}, errors.New("usage: pantry todos list [-skip N] [-limit N]")
	}
	if opts.Skip < 0 || opts.Limit < 0 {
		return todoListOptions{}, errors.New("todos list -skip and -limit must be >= 0")
	}
	return opts, nil
}

func parseTodoAddArgs(args []string) (string, int, error) {
	if len(args) != 2 {
		return "", 0, errors.New("usage: pantry todos add <label> <quantity>")
	}
	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid quantity %q: must be an integer", args[1])
	}
	return args[0], quantity, nil
}

func parseTodoID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("usage: pantry todos rm <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid todo id %q", args[0])
	}
	return id, nil
}

func parseObjectGetArgs(args []string) (objectGetOptions, string, error) {
	getFS := flag.NewFlagSet("objects get", flag.ContinueOnError)
	getFS.SetOutput(os.Stderr)

	var opts objectGetOptions
	getFS.StringVar(&opts.Output, "o", "", "write the object to this file instead of its name")

	if err := getFS.Parse(args); err != nil {
		return objectGetOptions{}, "", err
	}
	rest := getFS.Args()
	if len(rest) != 1 {
		return objectGetOptions{}, "", errors.New("usage: pantry objects get [-o file] <name>")
	}
	return opts, rest[0], nil
}
