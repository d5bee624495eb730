package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/dmitrymomot/stockdash/pkg/apiclient"
	"github.com/dmitrymomot/stockdash/pkg/validator"
)

func (a *app) cmdUpdate(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("update", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	fullName := flags.String("full-name", "", "new full name")
	email := flags.String("email", "", "new email address")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	user, err := a.requireSession()
	if err != nil {
		return err
	}

	req := apiclient.UpdateRequest{FullName: user.FullName, Email: user.Email}
	if *fullName != "" {
		req.FullName = *fullName
	}
	if *email != "" {
		req.Email = *email
	}
	if *fullName == "" && *email == "" {
		fmt.Fprintln(a.stderr, "nothing to update: pass -full-name and/or -email")
		return errUsage
	}

	if err := validator.Apply(
		validator.Required("full_name", req.FullName),
		validator.ValidEmail("email", req.Email),
	); err != nil {
		a.printValidationErrors(err)
		return errors.New("profile input rejected")
	}

	updated, err := a.session.UpdateIdentity(ctx, user.ID, req)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, "Profile updated.")
	a.printUser(updated)
	return nil
}

func (a *app) cmdDelete(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("delete", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	user, err := a.requireSession()
	if err != nil {
		return err
	}

	ok, err := a.confirm(fmt.Sprintf("Delete account %q permanently?", user.Username))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.stdout, "Aborted.")
		return nil
	}

	if err := a.session.DeleteIdentity(ctx, user.ID); err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, "Account deleted. You have been signed out.")
	return nil
}
