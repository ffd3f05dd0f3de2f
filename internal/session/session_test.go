package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, "admin", NormalizeRole("Admin"))
	assert.Equal(t, "admin", NormalizeRole(" ADMIN "))
	assert.Equal(t, "customer", NormalizeRole("customer"))
	assert.Equal(t, "", NormalizeRole("  "))
}

func TestKnownRole(t *testing.T) {
	assert.True(t, KnownRole("Customer"))
	assert.True(t, KnownRole("SUPERVISOR"))
	assert.True(t, KnownRole("admin"))
	assert.False(t, KnownRole("manager"))
	assert.False(t, KnownRole(""))
}

func TestUserUnmarshal_LegacyID(t *testing.T) {
	var u User
	err := json.Unmarshal([]byte(`{"_id":"66f","name":"Asha","email":"a@x.com","role":"Customer"}`), &u)
	assert.NoError(t, err)
	assert.Equal(t, "66f", u.ID)
	assert.Equal(t, "customer", u.Role)
}

func TestUserUnmarshal_PlainIDWins(t *testing.T) {
	var u User
	err := json.Unmarshal([]byte(`{"id":"new","_id":"old","role":"ADMIN"}`), &u)
	assert.NoError(t, err)
	assert.Equal(t, "new", u.ID)
	assert.Equal(t, "admin", u.Role)
}

func TestSession_Authenticated(t *testing.T) {
	assert.False(t, Anonymous().Authenticated())
	assert.False(t, (&Session{Token: "tok"}).Authenticated())
	assert.False(t, (&Session{User: &User{ID: "u"}}).Authenticated())
	assert.True(t, (&Session{Token: "tok", User: &User{ID: "u", Role: "admin"}}).Authenticated())

	var nilSession *Session
	assert.False(t, nilSession.Authenticated())
}

func TestSession_Role(t *testing.T) {
	s := &Session{Token: "tok", User: &User{Role: "Supervisor"}}
	assert.Equal(t, "supervisor", s.Role())
	assert.Equal(t, "", Anonymous().Role())
}
