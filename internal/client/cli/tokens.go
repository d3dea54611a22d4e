package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/iudanet/webkit/internal/client/storage"
	pkgapi "github.com/iudanet/webkit/pkg/api"
)

func (c *Cli) runTokenCreate(ctx context.Context, args []string) error {
	var (
		note, site, policy string
		attempts           int
	)

	fs := flag.NewFlagSet("token-create", flag.ContinueOnError)
	fs.StringVar(&note, "note", "", "free-form note")
	fs.StringVar(&site, "site", "", "local site the token is scoped to")
	fs.StringVar(&policy, "policy", "", "JSON object with token policy")
	fs.IntVar(&attempts, "attempts", 0, "generation attempts (server default when 0)")
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrUsage, rest[0])
	}

	req := pkgapi.CreateTokenRequest{Note: note}
	if site != "" {
		req.LocalSite = &site
	}
	if attempts > 0 {
		req.MaxAttempts = &attempts
	}
	if policy != "" {
		if !json.Valid([]byte(policy)) {
			return fmt.Errorf("%w: --policy is not valid JSON", ErrUsage)
		}
		req.Policy = json.RawMessage(policy)
	}

	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	info, err := c.apiClient.CreateToken(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	issued := &storage.IssuedToken{
		ID:        info.ID,
		Token:     info.Token,
		Note:      info.Note,
		LocalSite: info.LocalSite,
		Username:  session.Username,
		CreatedAt: info.CreatedAt,
	}
	if err := c.tokens.SaveToken(ctx, issued); err != nil {
		// токен уже выпущен, показываем его даже если локально не сохранился
		c.io.Printf("Warning: failed to save token locally: %v\n", err)
	}

	c.io.Println("✓ Token created")
	c.io.Printf("ID:    %s\n", info.ID)
	c.io.Printf("Token: %s\n", info.Token)
	c.io.Println("The token value is shown only once.")

	return nil
}

func (c *Cli) runTokenList(ctx context.Context, _ []string) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	tokens, err := c.apiClient.ListTokens(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tokens: %w", err)
	}

	if len(tokens) == 0 {
		c.io.Println("No tokens found.")
		c.io.Println("Use 'webkit token-create' to issue your first token.")
		return nil
	}

	local, err := c.tokens.ListTokens(ctx, session.Username)
	if err != nil {
		return fmt.Errorf("failed to read local tokens: %w", err)
	}
	saved := make(map[string]bool, len(local))
	for _, t := range local {
		saved[t.ID] = true
	}

	c.io.Printf("Found %d token(s):\n\n", len(tokens))
	for i, t := range tokens {
		c.io.Printf("%d. %s\n", i+1, t.ID)
		if t.Note != "" {
			c.io.Printf("   Note:      %s\n", t.Note)
		}
		if t.LocalSite != nil {
			c.io.Printf("   Site:      %s\n", *t.LocalSite)
		}
		if len(t.Policy) > 0 {
			c.io.Printf("   Policy:    %s\n", t.Policy)
		}
		c.io.Printf("   Created:   %s\n", t.CreatedAt.Format(time.RFC3339))
		if t.LastUsed != nil {
			c.io.Printf("   Last used: %s\n", t.LastUsed.Format(time.RFC3339))
		}
		if saved[t.ID] {
			c.io.Println("   (value saved locally)")
		}
	}

	return nil
}

func (c *Cli) runTokenDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: token id required", ErrUsage)
	}
	id := args[0]

	if _, err := c.session(ctx); err != nil {
		return err
	}

	if err := c.apiClient.DeleteToken(ctx, id); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	if err := c.tokens.DeleteToken(ctx, id); err != nil && !errors.Is(err, storage.ErrTokenNotFound) {
		return fmt.Errorf("token revoked, but local copy was not removed: %w", err)
	}

	c.io.Printf("✓ Token %s deleted\n", id)
	return nil
}

// runWhoAmI принимает ID сохраненного токена или сам токен
func (c *Cli) runWhoAmI(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: token or token id required", ErrUsage)
	}

	token := args[0]
	if saved, err := c.tokens.GetToken(ctx, token); err == nil {
		token = saved.Token
	} else if !errors.Is(err, storage.ErrTokenNotFound) {
		return fmt.Errorf("failed to read local tokens: %w", err)
	}

	resp, err := c.apiClient.WhoAmI(ctx, token)
	if err != nil {
		return fmt.Errorf("whoami failed: %w", err)
	}

	c.io.Printf("Username: %s\n", resp.Username)
	c.io.Printf("User ID:  %s\n", resp.UserID)
	c.io.Printf("Token ID: %s\n", resp.TokenID)
	if resp.LocalSite != nil {
		c.io.Printf("Site:     %s\n", *resp.LocalSite)
	}

	return nil
}
