package cli

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"slices"
)

func (c *Cli) runAvatar(ctx context.Context, args []string) error {
	var (
		size    int
		service string
		html    bool
	)

	fs := flag.NewFlagSet("avatar", flag.ContinueOnError)
	fs.IntVar(&size, "size", 80, "avatar size in pixels")
	fs.StringVar(&service, "service", "", "avatar service id")
	fs.BoolVar(&html, "html", false, "print rendered <img> tag")
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("%w: username required", ErrUsage)
	}
	username := rest[0]

	if html {
		out, err := c.apiClient.AvatarHTML(ctx, username, size, service)
		if err != nil {
			return fmt.Errorf("failed to render avatar: %w", err)
		}
		c.io.Println(out)
		return nil
	}

	resp, err := c.apiClient.AvatarURLs(ctx, username, size, service)
	if err != nil {
		return fmt.Errorf("failed to get avatar: %w", err)
	}

	c.io.Printf("Avatar of %s (%s, %dpx):\n", resp.Username, resp.Service, resp.Size)
	keys := make([]string, 0, len(resp.URLs))
	for k := range resp.URLs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		c.io.Printf("  %s  %s\n", k, resp.URLs[k])
	}

	return nil
}

func (c *Cli) runAvatarServices(ctx context.Context, _ []string) error {
	resp, err := c.apiClient.AvatarServices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list avatar services: %w", err)
	}

	for _, s := range resp.Services {
		marker := " "
		if s.ID == resp.Default {
			marker = "*"
		}
		c.io.Printf("%s %-14s %s\n", marker, s.ID, s.Name)
	}
	return nil
}

func (c *Cli) runAvatarService(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: service id required", ErrUsage)
	}
	service := args[0]
	if service == "default" {
		service = ""
	}

	if _, err := c.session(ctx); err != nil {
		return err
	}

	if err := c.apiClient.SetAvatarService(ctx, service); err != nil {
		return fmt.Errorf("failed to set avatar service: %w", err)
	}

	if service == "" {
		c.io.Println("✓ Avatar service reset to server default")
	} else {
		c.io.Printf("✓ Avatar service set to %s\n", service)
	}
	return nil
}

func (c *Cli) runAvatarUpload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: image file required", ErrUsage)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	contentType := http.DetectContentType(data)

	if _, err := c.session(ctx); err != nil {
		return err
	}

	upload, err := c.apiClient.RequestAvatarUpload(ctx, contentType)
	if err != nil {
		return fmt.Errorf("failed to request upload: %w", err)
	}

	if err := c.apiClient.UploadAvatar(ctx, upload, contentType, data); err != nil {
		return fmt.Errorf("failed to upload image: %w", err)
	}

	c.io.Printf("✓ Avatar uploaded (%s, %d bytes)\n", contentType, len(data))
	c.io.Printf("Key: %s\n", upload.StorageKey)
	return nil
}

func (c *Cli) runAvatarDelete(ctx context.Context, _ []string) error {
	if _, err := c.session(ctx); err != nil {
		return err
	}
	if err := c.apiClient.DeleteAvatarUpload(ctx); err != nil {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}
	c.io.Println("✓ Uploaded avatar removed")
	return nil
}
