package cli

import (
	"context"
	"flag"
	"fmt"

	pkgapi "github.com/iudanet/webkit/pkg/api"
)

func (c *Cli) runRegister(ctx context.Context, args []string) error {
	req := pkgapi.RegisterRequest{}

	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.StringVar(&req.FirstName, "first-name", "", "first name")
	fs.StringVar(&req.LastName, "last-name", "", "last name")
	fs.StringVar(&req.Email, "email", "", "email used by gravatar")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	c.io.Println("=== Registration ===")
	c.io.Println()

	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password confirmation: %w", err)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	req.Username = username
	req.Password = password

	resp, err := c.authService.Register(ctx, req)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("User ID: %s\n", resp.UserID)
	c.io.Println("Run 'webkit login' to start a session.")

	return nil
}
