package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrymomot/stockdash/pkg/apiclient"
	"github.com/dmitrymomot/stockdash/pkg/bearer"
	"github.com/dmitrymomot/stockdash/pkg/credstore"
	"github.com/dmitrymomot/stockdash/pkg/guard"
	"github.com/dmitrymomot/stockdash/pkg/identity"
	"github.com/dmitrymomot/stockdash/pkg/session"
	"github.com/dmitrymomot/stockdash/pkg/stocks"
	"github.com/dmitrymomot/stockdash/pkg/validator"
)

var (
	errUsage     = errors.New("usage")
	errNoSession = errors.New("not signed in; run `stockdash login` first")
)

// app wires the session manager, guards and API clients behind the
// subcommands. Input and output streams are fields so command behavior is
// testable without a terminal.
type app struct {
	cfg     Config
	log     *slog.Logger
	api     *apiclient.Client
	session *session.Manager
	guard   *guard.Guard
	stocks  *stocks.Client

	stdin  *bufio.Reader
	stdout io.Writer
	stderr io.Writer
}

func newApp(cfg Config, log *slog.Logger) (*app, error) {
	credPath := cfg.CredentialsFile
	if credPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve credentials path: %w", err)
		}
		credPath = filepath.Join(dir, "stockdash", "credentials.json")
	}

	store, err := credstore.NewFileStore(credPath)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	// The token source reads the store directly so requests pick up
	// whatever token is current at send time.
	transport := bearer.New(bearer.TokenSourceFunc(func() string {
		creds, err := store.Load()
		if err != nil {
			return ""
		}
		return creds.AccessToken
	}))

	api, err := apiclient.New(cfg.APIURL,
		apiclient.WithHTTPClient(&http.Client{Transport: transport, Timeout: cfg.HTTPTimeout}),
		apiclient.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("configure api client: %w", err)
	}

	mgr := session.New(
		session.WithAPIClient(api),
		session.WithStore(store),
		session.WithLogger(log),
	)

	return &app{
		cfg:     cfg,
		log:     log,
		api:     api,
		session: mgr,
		guard:   guard.NewAdminGuard(mgr),
		stocks:  stocks.New(api),
		stdin:   bufio.NewReader(os.Stdin),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}, nil
}

// requireSession returns the signed-in user or errNoSession.
func (a *app) requireSession() (*identity.User, error) {
	user := a.session.CurrentIdentity()
	if user == nil {
		return nil, errNoSession
	}
	return user, nil
}

// prompt reads one line of input after printing the label.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprintf(a.stdout, "%s: ", label)
	line, err := a.stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// confirm asks for an explicit "yes" before destructive actions.
func (a *app) confirm(question string) (bool, error) {
	answer, err := a.prompt(question + " Type 'yes' to confirm")
	if err != nil {
		return false, err
	}
	return answer == "yes", nil
}

// explain turns API errors into the message shown to the user. Backend
// rejection detail is surfaced verbatim.
func (a *app) explain(err error) string {
	var rejected *apiclient.RejectedError
	if errors.As(err, &rejected) && rejected.Detail != "" {
		return rejected.Detail
	}
	if errors.Is(err, apiclient.ErrTransport) {
		return fmt.Sprintf("cannot reach %s: %v", a.cfg.APIURL, err)
	}
	return err.Error()
}

func (a *app) printValidationErrors(err error) {
	for _, e := range validator.ExtractValidationErrors(err) {
		fmt.Fprintf(a.stderr, "%s: %s\n", e.Field, e.Message)
	}
}

func (a *app) printUser(user *identity.User) {
	fmt.Fprintf(a.stdout, "ID:        %s\n", user.ID)
	fmt.Fprintf(a.stdout, "Username:  %s\n", user.Username)
	fmt.Fprintf(a.stdout, "Email:     %s\n", user.Email)
	fmt.Fprintf(a.stdout, "Full name: %s\n", user.FullName)
	fmt.Fprintf(a.stdout, "Role:      %s\n", user.Role)
}
