// Package routegate decides, for a session and a requested path, whether the
// page renders or the browser is sent elsewhere. Decisions are pure: the same
// state and path always produce the same decision.
package routegate

import (
	"github.com/Parzival048/natekarfront/internal/session"
)

// Well-known paths on the page surface.
const (
	RootPath     = "/"
	LoginPath    = "/login"
	RegisterPath = "/register"
)

// requiredRoles maps each protected page to the single role allowed to see it.
var requiredRoles = map[string]string{
	"/customer":   session.RoleCustomer,
	"/supervisor": session.RoleSupervisor,
	"/admin":      session.RoleAdmin,
}

// Kind is the kind of gate decision.
type Kind int

const (
	// Render means the requested page renders normally.
	Render Kind = iota
	// Redirect means the browser is sent to Decision.Target.
	Redirect
	// Wait means resolution has not finished; show a placeholder, decide nothing.
	Wait
)

func (k Kind) String() string {
	switch k {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case Wait:
		return "wait"
	}
	return "unknown"
}

// Decision is the outcome for one (state, path) pair.
type Decision struct {
	Kind   Kind
	Target string // set only for Redirect
}

// State is the session information the gate decides against. Role may arrive
// in any casing; the gate normalizes before comparing. An empty Role means
// anonymous.
type State struct {
	Loading bool
	Role    string
}

// StateFor builds the gate state from a resolved session.
func StateFor(s *session.Session) State {
	return State{Role: s.Role()}
}

// RoleHome returns the landing path for a role: /{role}.
func RoleHome(role string) string {
	return "/" + session.NormalizeRole(role)
}

// RequiredRole returns the role a path demands, if it demands one.
func RequiredRole(path string) (string, bool) {
	role, ok := requiredRoles[path]
	return role, ok
}

// Decide maps one (state, path) pair to a decision. It performs a single hop;
// use Follow to resolve chained redirects.
func Decide(s State, path string) Decision {
	if s.Loading {
		return Decision{Kind: Wait}
	}

	role := session.NormalizeRole(s.Role)

	if role == "" {
		if path == LoginPath || path == RegisterPath {
			return Decision{Kind: Render}
		}
		return Decision{Kind: Redirect, Target: LoginPath}
	}

	if path == RootPath {
		return Decision{Kind: Redirect, Target: RoleHome(role)}
	}

	// A logged-in user may still open the login or registration page.
	if path == LoginPath || path == RegisterPath {
		return Decision{Kind: Render}
	}

	if required, ok := requiredRoles[path]; ok && required != role {
		return Decision{Kind: Redirect, Target: RootPath}
	}

	return Decision{Kind: Render}
}

// Follow resolves the redirect chain to a terminal decision. Chains are at
// most two hops deep (mismatched role -> "/" -> role home); the loop bound
// only guards against future policy changes introducing a cycle.
func Follow(s State, path string) Decision {
	d := Decide(s, path)
	for hops := 0; d.Kind == Redirect && hops < 4; hops++ {
		next := Decide(s, d.Target)
		if next.Kind != Redirect {
			return d
		}
		d = next
	}
	return d
}
