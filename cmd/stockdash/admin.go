package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrymomot/stockdash/pkg/apiclient"
	"github.com/dmitrymomot/stockdash/pkg/guard"
	"github.com/dmitrymomot/stockdash/pkg/identity"
)

const adminUsage = `Usage:
  stockdash admin list
  stockdash admin stats
  stockdash admin inspect <user-id>
  stockdash admin edit <user-id> [-full-name name] [-email address]
  stockdash admin promote <user-id>
  stockdash admin delete <user-id>
`

func (a *app) cmdAdmin(ctx context.Context, args []string) error {
	if _, err := a.requireSession(); err != nil {
		return err
	}

	// Access decision on the latest known identity. Non-admins are pointed
	// back at the dashboard instead of seeing the admin surface.
	if decision := a.guard.Check(guard.RouteAdmin); !decision.Allowed {
		fmt.Fprintf(a.stderr, "admin access denied; see `stockdash dashboard`%s\n", redirectNote(decision))
		return errors.New("admin role required")
	}

	if len(args) == 0 {
		fmt.Fprint(a.stderr, adminUsage)
		return errUsage
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return a.adminList(ctx)
	case "stats":
		return a.adminStats(ctx)
	case "inspect":
		return a.adminInspect(ctx, rest)
	case "edit":
		return a.adminEdit(ctx, rest)
	case "promote":
		return a.adminPromote(ctx, rest)
	case "delete":
		return a.adminDelete(ctx, rest)
	default:
		fmt.Fprintf(a.stderr, "stockdash admin: unknown subcommand %q\n%s", sub, adminUsage)
		return errUsage
	}
}

func redirectNote(d guard.Decision) string {
	if d.RedirectTo == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", d.RedirectTo)
}

// adminList prints all users. A list failure degrades to an empty table
// rather than aborting the whole admin view.
func (a *app) adminList(ctx context.Context) error {
	users := a.listUsersDegraded(ctx)

	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tFULL NAME\tROLE")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.FullName, u.Role)
	}
	w.Flush()
	fmt.Fprintf(a.stdout, "\n%d user(s)\n", len(users))
	return nil
}

func (a *app) adminStats(ctx context.Context) error {
	users := a.listUsersDegraded(ctx)

	var admins int
	for _, u := range users {
		if u.IsAdmin() {
			admins++
		}
	}
	fmt.Fprintf(a.stdout, "Total users: %d\n", len(users))
	fmt.Fprintf(a.stdout, "Admins:      %d\n", admins)
	fmt.Fprintf(a.stdout, "Standard:    %d\n", len(users)-admins)
	return nil
}

func (a *app) listUsersDegraded(ctx context.Context) []identity.User {
	users, err := a.api.ListUsers(ctx)
	if err != nil {
		a.log.Warn("user list failed", "error", err)
		return nil
	}
	return users
}

func (a *app) adminInspect(ctx context.Context, args []string) error {
	id, err := a.oneArg(args)
	if err != nil {
		return err
	}
	user, err := a.api.GetUser(ctx, id)
	if err != nil {
		return err
	}
	a.printUser(user)
	return nil
}

func (a *app) adminEdit(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.stderr, adminUsage)
		return errUsage
	}
	id := args[0]

	flags := flag.NewFlagSet("admin edit", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	fullName := flags.String("full-name", "", "new full name")
	email := flags.String("email", "", "new email address")
	if err := flags.Parse(args[1:]); err != nil {
		return errUsage
	}

	current, err := a.api.GetUser(ctx, id)
	if err != nil {
		return err
	}
	req := apiclient.UpdateRequest{FullName: current.FullName, Email: current.Email}
	if *fullName != "" {
		req.FullName = *fullName
	}
	if *email != "" {
		req.Email = *email
	}

	if err := a.api.UpdateUser(ctx, id, req); err != nil {
		return err
	}

	// Confirm by re-read, not by the write's status code.
	updated, err := a.api.GetUser(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "User updated.")
	a.printUser(updated)
	return nil
}

func (a *app) adminPromote(ctx context.Context, args []string) error {
	id, err := a.oneArg(args)
	if err != nil {
		return err
	}

	if err := a.api.PromoteUser(ctx, id); err != nil {
		return err
	}

	updated, err := a.api.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if !updated.IsAdmin() {
		return fmt.Errorf("promotion of %s not reflected by the backend", id)
	}
	fmt.Fprintf(a.stdout, "%s is now an admin.\n", updated.Username)
	return nil
}

func (a *app) adminDelete(ctx context.Context, args []string) error {
	id, err := a.oneArg(args)
	if err != nil {
		return err
	}

	// Deleting yourself from the admin surface is refused outright; use
	// `stockdash delete` for account self-deletion.
	if me := a.session.CurrentIdentity(); me != nil && me.ID == id {
		return errors.New("refusing to delete your own account from the admin view; use `stockdash delete`")
	}

	target, err := a.api.GetUser(ctx, id)
	if err != nil {
		return err
	}

	ok, err := a.confirm(fmt.Sprintf("Delete user %q (%s)?", target.Username, id))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.stdout, "Aborted.")
		return nil
	}

	if err := a.api.DeleteUser(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "User %q deleted.\n", target.Username)
	return nil
}

func (a *app) oneArg(args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		fmt.Fprint(a.stderr, adminUsage)
		return "", errUsage
	}
	return args[0], nil
}
