package cli

import (
	"context"
	"fmt"

	"pantry/internal/client"
)

func listTodos(ctx context.Context, c *client.Client, opts todoListOptions) error {
	page, err := c.ListTodos(ctx, opts.Skip, opts.Limit)
	if err != nil {
		return err
	}
	for _, t := range page.Todos {
		fmt.Printf("%d\t%s\t%d\n", t.ID, t.Label, t.Quantity)
	}
	fmt.Printf("total=%d shown=%d\n", page.Total, len(page.Todos))
	return nil
}

func addTodo(ctx context.Context, c *client.Client, label string, quantity int) error {
	created, err := c.CreateTodo(ctx, label, quantity)
	if err != nil {
		return err
	}
	fmt.Printf("created todo id=%d label=%s quantity=%d\n", created.ID, created.Label, created.Quantity)
	return nil
}

func removeTodo(ctx context.Context, c *client.Client, id int64) error {
	deleted, err := c.DeleteTodo(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("deleted todo id=%d label=%s quantity=%d\n", deleted.ID, deleted.Label, deleted.Quantity)
	return nil
}
