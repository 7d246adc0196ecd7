package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pantry/internal/client"
)

func Run(args []string) error {
	fs := flag.NewFlagSet("pantry", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	addr := defaultAddr
	if v := strings.TrimSpace(os.Getenv(addrEnv)); v != "" {
		addr = v
	}
	fs.StringVar(&addr, "addr", addr, "pantryd base URL")

	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return usageError()
	}

	ctx := context.Background()
	c := client.New(addr, nil)

	switch rest[0] {
	case "ping":
		return ping(ctx, c)
	case "todos":
		if len(rest) < 2 {
			return errors.New("missing todos subcommand (list|add|rm)")
		}
		switch rest[1] {
		case "list":
			opts, err := parseTodoListArgs(rest[2:])
			if err != nil {
				return err
			}
			return listTodos(ctx, c, opts)
		case "add":
			label, quantity, err := parseTodoAddArgs(rest[2:])
			if err != nil {
				return err
			}
			return addTodo(ctx, c, label, quantity)
		case "rm":
			id, err := parseTodoID(rest[2:])
			if err != nil {
				return err
			}
			return removeTodo(ctx, c, id)
		default:
			return errors.New("unknown todos subcommand")
		}
	case "objects":
		if len(rest) < 2 {
			return errors.New("missing objects subcommand (list|put|get|rm)")
		}
		switch rest[1] {
		case "list":
			if len(rest) != 2 {
				return errors.New("usage: pantry objects list")
			}
			return listObjects(ctx, c)
		case "put":
			if len(rest) != 3 && len(rest) != 4 {
				return errors.New("usage: pantry objects put <file> [name]")
			}
			name := filepath.Base(rest[2])
			if len(rest) == 4 {
				name = rest[3]
			}
			return putObject(ctx, c, rest[2], name)
		case "get":
			opts, name, err := parseObjectGetArgs(rest[2:])
			if err != nil {
				return err
			}
			return getObject(ctx, c, name, opts)
		case "rm":
			if len(rest) != 3 {
				return errors.New("usage: pantry objects rm <name>")
			}
			return removeObject(ctx, c, rest[2])
		default:
			return errors.New("unknown objects subcommand")
		}
	case "bucket-type":
		return bucketType(ctx, c)
	default:
		return usageError()
	}
}

func usageError() error {
	return errors.New("usage: pantry [-addr url] ping | todos list|add|rm | objects list|put|get|rm | bucket-type")
}

func ping(ctx context.Context, c *client.Client) error {
	greeting, err := c.Ping(ctx)
	if err != nil {
		return err
	}
	fmt.Println(greeting)
	return nil
}

func bucketType(ctx context.Context, c *client.Client) error {
	bt, err := c.BucketType(ctx)
	if err != nil {
		return err
	}
	fmt.Println(bt)
	return nil
}
