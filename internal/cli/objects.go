package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pantry/internal/client"
)

func listObjects(ctx context.Context, c *client.Client) error {
	files, err := c.ListObjects(ctx)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Printf("%s\t%s\n", f.Name, f.Path)
	}
	return nil
}

func putObject(ctx context.Context, c *client.Client, sourcePath, name string) error {
	f, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer f.Close()

	msg, err := c.UploadObject(ctx, name, f)
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

func getObject(ctx context.Context, c *client.Client, name string, opts objectGetOptions) error {
	content, err := c.DownloadObject(ctx, name)
	if err != nil {
		return err
	}

	target := opts.Output
	if target == "" {
		target = filepath.Base(name)
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	fmt.Printf("downloaded %s to %s (%d bytes)\n", name, target, len(content))
	return nil
}

func removeObject(ctx context.Context, c *client.Client, name string) error {
	msg, err := c.DeleteObject(ctx, name)
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}
