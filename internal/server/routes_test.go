package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler  http.Handler
	services *Services
	root     string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.Mkdir(filepath.Join(dir, "pub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pub", "file.txt"), []byte("public bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("secret bytes"), 0o600))

	config := &Config{
		Root: dir,
		Auth: AuthConfig{
			Username:       "admin",
			Password:       "hunter2",
			SessionTTL:     time.Hour,
			LoginRateLimit: "1000-M",
		},
	}
	require.NoError(t, config.Validate())

	services, err := NewServices(config)
	require.NoError(t, err)

	return &testServer{
		handler:  SetupRoutes(config, services),
		services: services,
		root:     dir,
	}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

// login posts valid credentials and returns the session cookie.
func (ts *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()
	form := url.Values{
		"username": {"admin"},
		"password": {"hunter2"},
		"redirect": {"/"},
	}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := ts.do(req)
	require.Equal(t, http.StatusFound, w.Code)

	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAnonymousPrivateFileRedirects(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/secret.txt", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?redirect=%2Fsecret.txt", w.Header().Get("Location"))
}

func TestLoginThenAccessPrivateFile(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	req := httptest.NewRequest(http.MethodGet, "/secret.txt", nil)
	req.AddCookie(cookie)
	w := ts.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "secret bytes", w.Body.String())
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)

	form := url.Values{
		"username": {"admin"},
		"password": {"wrong"},
	}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := ts.do(req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")
	assert.Empty(t, w.Result().Cookies())
}

func TestLoginPageRedirectsWhenAuthenticated(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	req := httptest.NewRequest(http.MethodGet, "/login?redirect=%2Fpub%2F", nil)
	req.AddCookie(cookie)
	w := ts.do(req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/pub/", w.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	w := ts.do(req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// session is gone: the private file redirects again
	req = httptest.NewRequest(http.MethodGet, "/secret.txt", nil)
	req.AddCookie(cookie)
	w = ts.do(req)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestAnonymousPublicListingHasNoControls(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/pub/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	assert.Contains(t, body, "file.txt")
	assert.NotContains(t, body, "perm-toggle")
}

func TestAuthenticatedListingHasControls(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	req := httptest.NewRequest(http.MethodGet, "/pub/", nil)
	req.AddCookie(cookie)
	w := ts.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "perm-toggle")
}

func TestTraversalDenied(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.URL.Path = "/../etc/passwd"
	w := ts.do(req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUnknownPathIs404(t *testing.T) {
	ts := newTestServer(t)

	// world-readable bit can't exist on a missing entry; still a plain 404
	w := ts.do(httptest.NewRequest(http.MethodGet, "/pub/nope.txt", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPermissionsAPISetWrite(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)
	target := filepath.Join(ts.root, "pub", "file.txt")

	req := httptest.NewRequest(http.MethodPost, "/api/permissions/write",
		strings.NewReader(`{"path":"pub/file.txt","isWritable":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w := ts.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.True(t, ts.services.Perms.IsPubliclyWritable(target))
}

func TestPermissionsAPISetReadRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)
	target := filepath.Join(ts.root, "secret.txt")

	req := httptest.NewRequest(http.MethodPost, "/api/permissions/read",
		strings.NewReader(`{"path":"secret.txt","isPublic":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w := ts.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, ts.services.Perms.IsPubliclyReadable(target))

	// the flip is visible to the very next anonymous request
	w = ts.do(httptest.NewRequest(http.MethodGet, "/secret.txt", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "secret bytes", w.Body.String())
}

func TestPermissionsAPIUnauthenticated(t *testing.T) {
	ts := newTestServer(t)
	target := filepath.Join(ts.root, "secret.txt")

	req := httptest.NewRequest(http.MethodPost, "/api/permissions/read",
		strings.NewReader(`{"path":"secret.txt","isPublic":true}`))
	req.Header.Set("Content-Type", "application/json")
	w := ts.do(req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// target flags unchanged
	assert.False(t, ts.services.Perms.IsPubliclyReadable(target))
}

func TestPermissionsAPIBadBody(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	req := httptest.NewRequest(http.MethodPost, "/api/permissions/read",
		strings.NewReader(`{"path":"secret.txt"}`)) // missing isPublic
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w := ts.do(req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPermissionsAPIMissingTarget(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	req := httptest.NewRequest(http.MethodPost, "/api/permissions/read",
		strings.NewReader(`{"path":"nope.txt","isPublic":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w := ts.do(req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBrowseRejectsNonGet(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodPost, "/pub/file.txt", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
