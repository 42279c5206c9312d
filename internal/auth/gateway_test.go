package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"scaledesk/cli/internal/auth"
	"scaledesk/cli/internal/backend"
	apperrors "scaledesk/cli/internal/errors"
	"scaledesk/cli/internal/keychain"
	"scaledesk/cli/internal/session"
)

const aliceProfile = `{"id": 7, "username": "alice", "role": "operator"}`

// fakeAPI is a scripted backend.API. Each login path maps to the error or
// response it produces; calls are recorded in order.
type fakeAPI struct {
	mu         sync.Mutex
	login      map[string]func() (backend.TokenResponse, error)
	refresh    func(string) (string, string, error)
	probeErr   error
	loginCalls []string
	probeCalls []string
	logouts    []string
}

func (f *fakeAPI) ObtainToken(_ context.Context, path, _, _ string) (backend.TokenResponse, error) {
	f.mu.Lock()
	f.loginCalls = append(f.loginCalls, path)
	fn := f.login[path]
	f.mu.Unlock()
	if fn == nil {
		return backend.TokenResponse{}, &backend.StatusError{Op: "obtain-token", StatusCode: http.StatusNotFound}
	}
	return fn()
}

func (f *fakeAPI) RefreshToken(_ context.Context, token string) (string, string, error) {
	return f.refresh(token)
}

func (f *fakeAPI) Probe(_ context.Context, path string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeCalls = append(f.probeCalls, path)
	if f.probeErr != nil {
		return 0, f.probeErr
	}
	return http.StatusMethodNotAllowed, nil
}

func (f *fakeAPI) Logout(_ context.Context, refreshToken string) error {
	f.logouts = append(f.logouts, refreshToken)
	return nil
}

func ok(access, refresh, user string) func() (backend.TokenResponse, error) {
	return func() (backend.TokenResponse, error) {
		return backend.TokenResponse{Access: access, Refresh: refresh, User: json.RawMessage(user)}, nil
	}
}

func fail(err error) func() (backend.TokenResponse, error) {
	return func() (backend.TokenResponse, error) { return backend.TokenResponse{}, err }
}

func status(code int) error {
	return &backend.StatusError{Op: "obtain-token", StatusCode: code}
}

var errRefused = errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")

func newGateway(api backend.API, store session.Store, paths ...string) *auth.Gateway {
	return auth.NewGateway(api, store, auth.Options{LoginPaths: paths, Logger: zerolog.Nop()})
}

func TestLoginStoresSession(t *testing.T) {
	store := keychain.NewMemory()
	api := &fakeAPI{login: map[string]func() (backend.TokenResponse, error){
		"/A": ok("acc-1", "ref-1", aliceProfile),
	}}
	gw := newGateway(api, store, "/A")

	s, err := gw.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)
	require.True(t, session.IsAuthenticated(store))

	stored, found, err := store.Get()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "acc-1", stored.AccessToken)
	require.Equal(t, "ref-1", stored.RefreshToken)
	require.Equal(t, []byte(aliceProfile), []byte(stored.User))
	require.Equal(t, s, stored)
}

func TestLoginCandidateOrder(t *testing.T) {
	store := keychain.NewMemory()
	api := &fakeAPI{login: map[string]func() (backend.TokenResponse, error){
		"/A": fail(errRefused),
		"/B": ok("acc", "ref", aliceProfile),
		"/C": ok("never", "never", aliceProfile),
	}}
	gw := newGateway(api, store, "/A", "/B", "/C")

	_, err := gw.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)
	require.Equal(t, []string{"/A", "/B"}, api.loginCalls)
	require.Empty(t, api.probeCalls)
}

func TestLoginSkipsNotFoundCandidates(t *testing.T) {
	store := keychain.NewMemory()
	api := &fakeAPI{login: map[string]func() (backend.TokenResponse, error){
		"/A": fail(status(http.StatusNotFound)),
		"/B": fail(status(http.StatusMethodNotAllowed)),
		"/C": ok("acc", "ref", aliceProfile),
	}}
	gw := newGateway(api, store, "/A", "/B", "/C")

	_, err := gw.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)
	require.Equal(t, []string{"/A", "/B", "/C"}, api.loginCalls)
}

func TestLoginUnauthorizedIsAuthoritative(t *testing.T) {
	store := keychain.NewMemory()
	api := &fakeAPI{login: map[string]func() (backend.TokenResponse, error){
		"/A": fail(status(http.StatusUnauthorized)),
		"/B": ok("acc", "ref", aliceProfile),
	}}
	gw := newGateway(api, store, "/A", "/B")

	_, err := gw.Login(context.Background(), "alice", "wrong")
	require.True(t, apperrors.IsKind(err, apperrors.InvalidCredentials), "got %v", err)
	require.Equal(t, []string{"/A"}, api.loginCalls)
	require.False(t, session.IsAuthenticated(store))
}

func TestLoginFailureLeavesStoreUnchanged(t *testing.T) {
	store := keychain.NewMemory()
	previous := session.Session{AccessToken: "old-acc", RefreshToken: "old-ref", User: json.RawMessage(`{"username":"bob"}`)}
	require.NoError(t, store.Set(previous))

	tests := []struct {
		name string
		fn   func() (backend.TokenResponse, error)
		kind apperrors.Kind
	}{
		{name: "invalid credentials", fn: fail(status(http.StatusUnauthorized)), kind: apperrors.InvalidCredentials},
		{name: "server error", fn: fail(status(http.StatusInternalServerError)), kind: apperrors.EndpointUnreachable},
		{name: "no access token", fn: fail(backend.ErrMalformed), kind: apperrors.MalformedResponse},
		{name: "no refresh token", fn: ok("acc", "", aliceProfile), kind: apperrors.MalformedResponse},
		{name: "no user", fn: ok("acc", "ref", ""), kind: apperrors.MalformedResponse},
		{name: "unreachable", fn: fail(errRefused), kind: apperrors.EndpointUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{login: map[string]func() (backend.TokenResponse, error){"/A": tt.fn}}
			gw := newGateway(api, store, "/A")

			_, err := gw.Login(context.Background(), "alice", "pw")
			require.Equal(t, tt.kind, apperrors.KindOf(err), "got %v", err)

			got, found, err := store.Get()
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, previous.AccessToken, got.AccessToken)
			require.Equal(t, previous.RefreshToken, got.RefreshToken)
		})
	}
}

// lockedStore is a keychain that refuses writes, like a locked OS keyring.
type lockedStore struct {
	*keychain.Manager
	err error
}

func (s lockedStore) Set(session.Session) error { return s.err }

func TestLoginStoreFailureIsNotAServerError(t *testing.T) {
	errLocked := errors.New("keyring is locked")
	store := lockedStore{Manager: keychain.NewMemory(), err: errLocked}
	api := &fakeAPI{login: map[string]func() (backend.TokenResponse, error){
		"/A": ok("acc", "ref", aliceProfile),
	}}
	gw := newGateway(api, store, "/A")

	_, err := gw.Login(context.Background(), "alice", "correct")
	require.ErrorIs(t, err, errLocked)
	require.Empty(t, apperrors.KindOf(err), "a local keychain failure is not a session kind")
	require.Equal(t, []string{"/A"}, api.loginCalls)
	require.Empty(t, api.probeCalls)
	require.False(t, session.IsAuthenticated(store))
}

func TestLoginAllUnreachableProbesOnce(t *testing.T) {
	store := keychain.NewMemory()
	api := &fakeAPI{
		login: map[string]func() (backend.TokenResponse, error){
			"/A": fail(errRefused),
			"/B": fail(status(http.StatusNotFound)),
		},
		probeErr: errRefused,
	}
	gw := newGateway(api, store, "/A", "/B")

	_, err := gw.Login(context.Background(), "alice", "pw")
	require.True(t, apperrors.IsKind(err, apperrors.EndpointUnreachable))
	require.Equal(t, []string{"/A", "/B"}, api.loginCalls)
	require.Equal(t, []string{"/A"}, api.probeCalls, "probe failure must not change the result")
}

func TestLoginNoCandidates(t *testing.T) {
	gw := newGateway(&fakeAPI{}, keychain.NewMemory())
	_, err := gw.Login(context.Background(), "alice", "pw")
	require.True(t, apperrors.IsKind(err, apperrors.EndpointUnreachable))
}

func TestLogoutIsIdempotent(t *testing.T) {
	store := keychain.NewMemory()
	gw := newGateway(&fakeAPI{}, store, "/A")

	gw.Logout()
	require.False(t, session.IsAuthenticated(store))

	require.NoError(t, store.Set(session.Session{AccessToken: "a", RefreshToken: "r", User: json.RawMessage(aliceProfile)}))
	gw.Logout()
	gw.Logout()
	_, found, err := store.Get()
	require.NoError(t, err)
	require.False(t, found)
}

func TestRemoteLogout(t *testing.T) {
	store := keychain.NewMemory()
	api := &fakeAPI{}
	gw := newGateway(api, store, "/A")

	require.NoError(t, gw.RemoteLogout(context.Background()))
	require.Empty(t, api.logouts)

	require.NoError(t, store.Set(session.Session{AccessToken: "a", RefreshToken: "r", User: json.RawMessage(aliceProfile)}))
	require.NoError(t, gw.RemoteLogout(context.Background()))
	require.Equal(t, []string{"r"}, api.logouts)
	require.True(t, session.IsAuthenticated(store), "remote logout leaves local state alone")
}

func TestRefreshClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantKind    apperrors.Kind
		wantRotated string
	}{
		{name: "success", wantRotated: "rotated"},
		{name: "unauthorized", err: &backend.StatusError{StatusCode: http.StatusUnauthorized}, wantKind: apperrors.RefreshRejected},
		{name: "bad request", err: &backend.StatusError{StatusCode: http.StatusBadRequest}, wantKind: apperrors.RefreshRejected},
		{name: "malformed", err: backend.ErrMalformed, wantKind: apperrors.RefreshRejected},
		{name: "server error", err: &backend.StatusError{StatusCode: http.StatusBadGateway}, wantKind: apperrors.RefreshUnreachable},
		{name: "transport", err: errRefused, wantKind: apperrors.RefreshUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{refresh: func(token string) (string, string, error) {
				require.Equal(t, "ref", token)
				if tt.err != nil {
					return "", "", tt.err
				}
				return "new-acc", "rotated", nil
			}}
			gw := newGateway(api, keychain.NewMemory(), "/A")

			access, rotated, err := gw.Refresh(context.Background(), "ref")
			if tt.wantKind != "" {
				require.Equal(t, tt.wantKind, apperrors.KindOf(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, "new-acc", access)
			require.Equal(t, tt.wantRotated, rotated)
		})
	}
}

func TestRefreshWithoutToken(t *testing.T) {
	gw := newGateway(&fakeAPI{}, keychain.NewMemory(), "/A")
	_, _, err := gw.Refresh(context.Background(), "")
	require.True(t, apperrors.IsKind(err, apperrors.RefreshRejected))
}

// TestLoginAgainstServer drives the real HTTP backend: the first candidate is
// missing (404) and the second one rejects a bad password.
func TestLoginAgainstServer(t *testing.T) {
	mux := http.NewServeMux()
	var calls []string
	mux.HandleFunc("/api/token/", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "alice" || body["password"] != "correct" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"No active account found with the given credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access":"acc","refresh":"ref","user":` + aliceProfile + `}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := keychain.NewMemory()
	api := backend.NewWithClient(srv.URL, backend.Endpoints{Refresh: "/api/token/refresh/"}, srv.Client(), "")
	gw := newGateway(api, store, "/test1/api/token/", "/api/token/", "/test1/token/")

	_, err := gw.Login(context.Background(), "alice", "wrong")
	require.True(t, apperrors.IsKind(err, apperrors.InvalidCredentials))
	require.False(t, session.IsAuthenticated(store))
	require.Equal(t, []string{"/test1/api/token/", "/api/token/"}, calls)

	calls = nil
	_, err = gw.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)
	require.True(t, session.IsAuthenticated(store))

	s, _, err := store.Get()
	require.NoError(t, err)
	require.JSONEq(t, aliceProfile, string(s.User))
	require.Equal(t, []byte(aliceProfile), []byte(s.User))
}
