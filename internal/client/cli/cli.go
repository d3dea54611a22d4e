package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/iudanet/webkit/internal/client/api"
	"github.com/iudanet/webkit/internal/client/auth"
	"github.com/iudanet/webkit/internal/client/iocli"
	"github.com/iudanet/webkit/internal/client/storage"
	"github.com/iudanet/webkit/internal/client/storage/boltdb"
)

// ErrUsage неверные аргументы команды
var ErrUsage = errors.New("invalid usage")

type Cli struct {
	apiClient   *api.Client
	authService *auth.Service
	tokens      storage.TokenStorage
	io          iocli.IO
}

func New(apiClient *api.Client, store *boltdb.Storage, stdio iocli.IO) *Cli {
	return &Cli{
		apiClient:   apiClient,
		authService: auth.NewService(apiClient, store),
		tokens:      store,
		io:          stdio,
	}
}

type command struct {
	run   func(c *Cli, ctx context.Context, args []string) error
	usage string
}

var commands = map[string]command{
	"register":        {run: (*Cli).runRegister, usage: "register [--first-name N] [--last-name N] [--email E]"},
	"login":           {run: (*Cli).runLogin, usage: "login"},
	"logout":          {run: (*Cli).runLogout, usage: "logout"},
	"status":          {run: (*Cli).runStatus, usage: "status"},
	"token-create":    {run: (*Cli).runTokenCreate, usage: "token-create [--note N] [--site S] [--policy JSON] [--attempts N]"},
	"token-list":      {run: (*Cli).runTokenList, usage: "token-list"},
	"token-delete":    {run: (*Cli).runTokenDelete, usage: "token-delete <id>"},
	"whoami":          {run: (*Cli).runWhoAmI, usage: "whoami <token-id|token>"},
	"avatar":          {run: (*Cli).runAvatar, usage: "avatar <username> [--size N] [--service ID] [--html]"},
	"avatar-services": {run: (*Cli).runAvatarServices, usage: "avatar-services"},
	"avatar-service":  {run: (*Cli).runAvatarService, usage: "avatar-service <id|default>"},
	"avatar-upload":   {run: (*Cli).runAvatarUpload, usage: "avatar-upload <file>"},
	"avatar-delete":   {run: (*Cli).runAvatarDelete, usage: "avatar-delete"},
}

// Run выполняет команду. Ошибки возвращаются вызывающему, os.Exit делает main.
func (c *Cli) Run(ctx context.Context, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		c.PrintUsage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, name)
	}

	if err := cmd.run(c, ctx, args); err != nil {
		if errors.Is(err, ErrUsage) {
			return fmt.Errorf("%w\nusage: webkit %s", err, cmd.usage)
		}
		return err
	}
	return nil
}

func (c *Cli) PrintUsage() {
	PrintUsage(c.io)
}

// PrintUsage печатает справку по командам в w
func PrintUsage(w io.Writer) {
	_, _ = fmt.Fprint(w, `WebKit Client

Usage:
  webkit [OPTIONS] COMMAND [ARGS]

Options:
  --version        Show version information
  --server URL     Server URL (default: http://localhost:8080)
  --db PATH        Path to local database (default: webkit-client.db)

Commands:
  register         Register new user
  login            Login to server
  logout           Forget local session
  status           Show authentication status
  token-create     Issue a Web API token
  token-list       List issued Web API tokens
  token-delete     Revoke a Web API token
  whoami           Show the owner of a Web API token
  avatar           Show avatar URLs (or HTML) of a user
  avatar-services  List avatar services
  avatar-service   Choose avatar service for the current user
  avatar-upload    Upload an avatar image
  avatar-delete    Remove uploaded avatar

Examples:
  webkit --server https://example.com login
  webkit token-create --note ci --site example.com --policy '{"scope":"read"}'
  webkit avatar alice --size 64 --html
`)
}

// session загружает текущую сессию и передает access token в API клиент
func (c *Cli) session(ctx context.Context) (*storage.AuthData, error) {
	session, err := c.authService.Current(ctx)
	if err != nil {
		return nil, err
	}
	c.apiClient.SetAccessToken(session.AccessToken)
	return session, nil
}

// parseFlags разбирает флаги вперемешку с позиционными аргументами
func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	fs.SetOutput(io.Discard)

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUsage, err)
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}
