package session_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"scaledesk/cli/internal/session"
)

type fakeStore struct {
	s   session.Session
	ok  bool
	err error
}

func (f *fakeStore) Set(s session.Session) error { f.s, f.ok = s, true; return nil }
func (f *fakeStore) Get() (session.Session, bool, error) {
	return f.s, f.ok, f.err
}
func (f *fakeStore) Clear() error { f.s, f.ok = session.Session{}, false; return nil }

func TestIsAuthenticated(t *testing.T) {
	full := session.Session{AccessToken: "a", RefreshToken: "r", User: json.RawMessage(`{"username":"alice"}`)}

	tests := []struct {
		name  string
		store session.Store
		want  bool
	}{
		{name: "nil store", store: nil, want: false},
		{name: "empty store", store: &fakeStore{}, want: false},
		{name: "complete session", store: &fakeStore{s: full, ok: true}, want: true},
		{name: "missing refresh", store: &fakeStore{s: session.Session{AccessToken: "a", User: full.User}, ok: true}, want: false},
		{name: "null profile", store: &fakeStore{s: session.Session{AccessToken: "a", RefreshToken: "r", User: json.RawMessage("null")}, ok: true}, want: false},
		{name: "read error", store: &fakeStore{s: full, ok: true, err: errors.New("keychain locked")}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, session.IsAuthenticated(tt.store))
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user string
		want string
	}{
		{name: "username", user: `{"id":7,"username":"alice","email":"a@example.com"}`, want: "alice"},
		{name: "email fallback", user: `{"email":"a@example.com"}`, want: "a@example.com"},
		{name: "numeric id", user: `{"id":42}`, want: "42"},
		{name: "no identifier", user: `{"role":"admin"}`, want: "user"},
		{name: "not an object", user: `"alice"`, want: "user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := session.Session{User: json.RawMessage(tt.user)}
			require.Equal(t, tt.want, s.DisplayName())
		})
	}
}

func TestInspectToken(t *testing.T) {
	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	info, ok := session.InspectToken(token)
	require.True(t, ok)
	require.Equal(t, "7", info.Subject)
	require.True(t, info.ExpiresAt.Equal(exp))
	require.False(t, info.Expired(time.Now()))
	require.True(t, info.Expired(exp.Add(time.Second)))

	_, ok = session.InspectToken("opaque-token")
	require.False(t, ok)
}
