package routegate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide_Anonymous(t *testing.T) {
	anon := State{}

	t.Run("public pages render", func(t *testing.T) {
		assert.Equal(t, Decision{Kind: Render}, Decide(anon, LoginPath))
		assert.Equal(t, Decision{Kind: Render}, Decide(anon, RegisterPath))
	})

	t.Run("everything else goes to login", func(t *testing.T) {
		for _, path := range []string{"/", "/customer", "/supervisor", "/admin", "/anything"} {
			d := Decide(anon, path)
			assert.Equal(t, Redirect, d.Kind, "path %s", path)
			assert.Equal(t, LoginPath, d.Target, "path %s", path)
		}
	})
}

func TestDecide_Loading(t *testing.T) {
	d := Decide(State{Loading: true, Role: "admin"}, "/admin")
	assert.Equal(t, Wait, d.Kind)
}

func TestDecide_RootGoesToRoleHome(t *testing.T) {
	tests := []struct {
		role string
		home string
	}{
		{"customer", "/customer"},
		{"supervisor", "/supervisor"},
		{"admin", "/admin"},
		// Role casing from the server varies; the outcome must not.
		{"Admin", "/admin"},
		{"CUSTOMER", "/customer"},
		{" supervisor ", "/supervisor"},
	}
	for _, tt := range tests {
		d := Decide(State{Role: tt.role}, RootPath)
		assert.Equal(t, Redirect, d.Kind, "role %q", tt.role)
		assert.Equal(t, tt.home, d.Target, "role %q", tt.role)
	}
}

func TestDecide_RoleMismatchBouncesThroughRoot(t *testing.T) {
	d := Decide(State{Role: "customer"}, "/admin")
	assert.Equal(t, Redirect, d.Kind)
	assert.Equal(t, RootPath, d.Target)

	// The chain settles on the caller's own home.
	final := Follow(State{Role: "customer"}, "/admin")
	assert.Equal(t, Redirect, final.Kind)
	assert.Equal(t, "/customer", final.Target)
}

func TestDecide_MatchingRoleRenders(t *testing.T) {
	for role, home := range map[string]string{
		"customer":   "/customer",
		"supervisor": "/supervisor",
		"admin":      "/admin",
	} {
		assert.Equal(t, Decision{Kind: Render}, Decide(State{Role: role}, home))
	}
}

func TestDecide_AuthenticatedMayOpenPublicPages(t *testing.T) {
	s := State{Role: "admin"}
	assert.Equal(t, Decision{Kind: Render}, Decide(s, LoginPath))
	assert.Equal(t, Decision{Kind: Render}, Decide(s, RegisterPath))
}

func TestDecide_Pure(t *testing.T) {
	s := State{Role: "Supervisor"}
	first := Decide(s, "/admin")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Decide(s, "/admin"))
	}
}

func TestFollow_TerminatesOnRenderablePage(t *testing.T) {
	// Anonymous: one hop, straight to login.
	d := Follow(State{}, "/supervisor")
	assert.Equal(t, Redirect, d.Kind)
	assert.Equal(t, LoginPath, d.Target)
	assert.Equal(t, Render, Decide(State{}, d.Target).Kind)

	// Authenticated mismatch: two hops collapse to the role home.
	d = Follow(State{Role: "Admin"}, "/customer")
	assert.Equal(t, "/admin", d.Target)
	assert.Equal(t, Render, Decide(State{Role: "Admin"}, d.Target).Kind)
}

func TestRoleHome(t *testing.T) {
	assert.Equal(t, "/admin", RoleHome("ADMIN"))
	assert.Equal(t, "/customer", RoleHome("customer"))
}

func TestRequiredRole(t *testing.T) {
	role, ok := RequiredRole("/supervisor")
	assert.True(t, ok)
	assert.Equal(t, "supervisor", role)

	_, ok = RequiredRole("/login")
	assert.False(t, ok)
}
