// Package guard decides, at navigation time, whether a protected destination
// may be entered. Decisions are pure functions of the latest emitted session
// identity: the guard never waits for a network fetch and never hangs on a
// cold signal: an identity that was never emitted simply denies. Denials
// always carry a live fallback destination, never a dead end.
package guard

import "github.com/dmitrymomot/stockdash/pkg/identity"

// Well-known destinations. The route table itself lives with the front end;
// these are the names the guard contract is expressed in.
const (
	RouteLogin     = "/login"
	RouteRegister  = "/register"
	RouteDashboard = "/dashboard"
	RouteAdmin     = "/admin"
)

// IdentitySource supplies the latest identity snapshot without suspending.
// *session.Manager satisfies it.
type IdentitySource interface {
	CurrentIdentity() *identity.User
}

// Rule is a predicate over the identity snapshot. A nil user means no
// identity has been established.
type Rule func(user *identity.User) bool

// RequireRole allows only identities carrying the given role.
func RequireRole(role identity.Role) Rule {
	return func(user *identity.User) bool {
		return user != nil && user.Role == role
	}
}

// RequireAuthenticated allows any established identity.
func RequireAuthenticated() Rule {
	return func(user *identity.User) bool {
		return user != nil
	}
}

// Decision is the outcome of a navigation check. When Allowed is false,
// RedirectTo names the destination to fall back to.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

type protection struct {
	rule     Rule
	fallback string
}

// Guard evaluates route protections against an identity source. Routes
// without a registered protection are always allowed. Construct with New;
// the zero value allows everything.
type Guard struct {
	source IdentitySource
	routes map[string]protection
}

// New creates a Guard reading identity snapshots from source.
func New(source IdentitySource) *Guard {
	return &Guard{
		source: source,
		routes: make(map[string]protection),
	}
}

// NewAdminGuard creates a Guard with the admin destination protected the
// way the dashboard routes it: admins pass, everyone else lands on the
// standard dashboard.
func NewAdminGuard(source IdentitySource) *Guard {
	g := New(source)
	g.Protect(RouteAdmin, RequireRole(identity.RoleAdmin), RouteDashboard)
	return g
}

// Protect registers a rule for a destination. The fallback must itself be
// an unprotected destination so a denial never redirects into another
// denial.
func (g *Guard) Protect(route string, rule Rule, fallback string) {
	g.routes[route] = protection{rule: rule, fallback: fallback}
}

// Check evaluates a navigation attempt. It reads exactly the latest
// identity snapshot once and returns immediately.
func (g *Guard) Check(route string) Decision {
	p, protected := g.routes[route]
	if !protected {
		return Decision{Allowed: true}
	}

	var user *identity.User
	if g.source != nil {
		user = g.source.CurrentIdentity()
	}

	if p.rule(user) {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, RedirectTo: p.fallback}
}
