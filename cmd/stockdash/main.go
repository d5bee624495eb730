package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dmitrymomot/stockdash/pkg/config"
	"github.com/dmitrymomot/stockdash/pkg/logger"
	"github.com/dmitrymomot/stockdash/pkg/requestid"
)

// Config holds CLI settings. Values come from an optional YAML file with
// environment variables layered on top.
type Config struct {
	APIURL          string        `env:"STOCKDASH_API_URL" yaml:"api_url" envDefault:"http://localhost:8000"`
	CredentialsFile string        `env:"STOCKDASH_CREDENTIALS_FILE" yaml:"credentials_file"`
	LogLevel        string        `env:"STOCKDASH_LOG_LEVEL" yaml:"log_level" envDefault:"info"`
	LogFormat       string        `env:"STOCKDASH_LOG_FORMAT" yaml:"log_format" envDefault:"text"`
	HTTPTimeout     time.Duration `env:"STOCKDASH_HTTP_TIMEOUT" yaml:"http_timeout" envDefault:"30s"`
}

const usageText = `stockdash - stock dashboard client

Usage:
  stockdash [flags] <command> [arguments]

Commands:
  login       Sign in and store credentials
  register    Create a new account
  logout      Sign out and clear stored credentials
  whoami      Show the signed-in user
  dashboard   Show profile and stock overview
  update      Update your profile
  delete      Delete your account
  admin       User administration (admins only)

Flags:
  -config path   Config file (default: <user config dir>/stockdash/config.yaml)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	flags := flag.NewFlagSet("stockdash", flag.ContinueOnError)
	flags.Usage = func() { fmt.Fprint(os.Stderr, usageText) }
	configPath := flags.String("config", defaultConfigPath(), "config file path")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	var cfg Config
	if err := config.LoadFile(*configPath, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "stockdash: invalid configuration: %v\n", err)
		return 1
	}

	log := logger.New(
		logger.WithFormat(logFormat(cfg.LogFormat)),
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithAttr(slog.String("app", "stockdash")),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)

	app, err := newApp(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stockdash: %v\n", err)
		return 1
	}

	cmd, rest := flags.Arg(0), flags.Args()[1:]
	if err := app.dispatch(ctx, cmd, rest); err != nil {
		if errors.Is(err, errUsage) {
			flags.Usage()
			return 2
		}
		fmt.Fprintf(os.Stderr, "stockdash: %s\n", app.explain(err))
		return 1
	}
	return 0
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.cmdLogin(ctx, args)
	case "register":
		return a.cmdRegister(ctx, args)
	case "logout":
		return a.cmdLogout(ctx, args)
	case "whoami":
		return a.cmdWhoami(ctx, args)
	case "dashboard":
		return a.cmdDashboard(ctx, args)
	case "update":
		return a.cmdUpdate(ctx, args)
	case "delete":
		return a.cmdDelete(ctx, args)
	case "admin":
		return a.cmdAdmin(ctx, args)
	default:
		fmt.Fprintf(a.stderr, "stockdash: unknown command %q\n", cmd)
		return errUsage
	}
}

func logFormat(name string) logger.Format {
	if name == string(logger.FormatJSON) {
		return logger.FormatJSON
	}
	return logger.FormatText
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "stockdash.yaml"
	}
	return filepath.Join(dir, "stockdash", "config.yaml")
}
