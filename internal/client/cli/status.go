package cli

import (
	"context"
	"errors"
	"time"

	"github.com/iudanet/webkit/internal/client/auth"
)

func (c *Cli) runStatus(ctx context.Context, _ []string) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	session, err := c.authService.Current(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			c.io.Println("Status: Not authenticated")
			c.io.Println("Run 'webkit login' to authenticate.")
			return nil
		}
		return err
	}

	expiresAt := time.Unix(session.ExpiresAt, 0)

	c.io.Println("Status: Authenticated")
	c.io.Printf("Username: %s\n", session.Username)
	if session.UserID != "" {
		c.io.Printf("User ID: %s\n", session.UserID)
	}
	c.io.Printf("Token expires: %s\n", expiresAt.Format(time.RFC3339))
	c.io.Printf("Time remaining: %s\n", time.Until(expiresAt).Round(time.Second))

	tokens, err := c.tokens.ListTokens(ctx, session.Username)
	if err == nil {
		c.io.Printf("Saved API tokens: %d\n", len(tokens))
	}

	return nil
}
