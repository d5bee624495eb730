package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/dmitrymomot/stockdash/pkg/apiclient"
	"github.com/dmitrymomot/stockdash/pkg/validator"
)

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("login", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	username := flags.String("username", "", "account username")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	name := *username
	if name == "" {
		var err error
		if name, err = a.prompt("Username"); err != nil {
			return err
		}
	}
	password, err := a.prompt("Password")
	if err != nil {
		return err
	}

	user, err := a.session.Exchange(ctx, name, password)
	if err != nil {
		return err
	}

	// Enrich the minimal login identity with the full profile. A failure
	// here leaves the session usable, so it only logs.
	if full, err := a.session.FetchIdentity(ctx, user.ID); err == nil {
		user = full
	} else {
		a.log.Warn("profile fetch after login failed", "error", err)
	}

	fmt.Fprintf(a.stdout, "Signed in as %s\n", user.Username)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("register", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	fullName := flags.String("full-name", "", "full name")
	username := flags.String("username", "", "desired username")
	email := flags.String("email", "", "email address")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	req := apiclient.RegisterRequest{
		FullName: *fullName,
		Username: *username,
		Email:    *email,
	}
	var err error
	if req.FullName == "" {
		if req.FullName, err = a.prompt("Full name"); err != nil {
			return err
		}
	}
	if req.Username == "" {
		if req.Username, err = a.prompt("Username"); err != nil {
			return err
		}
	}
	if req.Email == "" {
		if req.Email, err = a.prompt("Email"); err != nil {
			return err
		}
	}
	if req.Password, err = a.prompt("Password"); err != nil {
		return err
	}

	if err := validator.Apply(
		validator.Required("full_name", req.FullName),
		validator.Required("username", req.Username),
		validator.ValidUsername("username", req.Username),
		validator.ValidEmail("email", req.Email),
		validator.MinLen("password", req.Password, 8),
	); err != nil {
		a.printValidationErrors(err)
		return errors.New("registration input rejected")
	}

	resp, err := a.session.Register(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Account created for %s. Run `stockdash login` to sign in.\n", resp.Email)
	return nil
}

func (a *app) cmdLogout(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("logout", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	all := flags.Bool("all", false, "also revoke every active session on the backend")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	// Server-side revocation needs the still-valid token, so it runs
	// before the local sign-out. Local state clears regardless.
	if *all {
		if err := a.api.RevokeSessions(ctx); err != nil {
			a.log.Warn("session revocation failed", "error", err)
			fmt.Fprintln(a.stderr, "warning: could not revoke other sessions:", a.explain(err))
		}
	}

	a.session.EndSession()
	fmt.Fprintln(a.stdout, "Signed out.")
	return nil
}

func (a *app) cmdWhoami(_ context.Context, _ []string) error {
	user, err := a.requireSession()
	if err != nil {
		return err
	}
	a.printUser(user)
	return nil
}
