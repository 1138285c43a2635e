package auth

import (
	"crypto/subtle"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	_ "embed"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/openmined/dirbox/internal/server/middlewares"
	"github.com/openmined/dirbox/internal/server/session"
)

//go:embed login.html.tpl
var loginTpl string

// Credentials is the single recognized identity.
type Credentials struct {
	Username     string
	PasswordHash []byte // bcrypt
}

type AuthHandler struct {
	sessions *session.Registry
	creds    Credentials
	tplLogin *template.Template
}

func New(sessions *session.Registry, creds Credentials) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		creds:    creds,
		tplLogin: template.Must(template.New("login").Parse(loginTpl)),
	}
}

type loginPageData struct {
	Redirect string
	Error    string
}

// LoginPage renders the login form. An already-authenticated caller is
// sent straight to the redirect target.
func (h *AuthHandler) LoginPage(ctx *gin.Context) {
	redirect := safeRedirect(ctx.Query("redirect"))
	if middlewares.Identity(ctx) != "" {
		ctx.Redirect(http.StatusFound, redirect)
		return
	}
	h.renderLogin(ctx, http.StatusOK, loginPageData{Redirect: redirect})
}

// Login checks the posted credentials, creates a session and sets the
// session cookie.
func (h *AuthHandler) Login(ctx *gin.Context) {
	username := ctx.PostForm("username")
	password := ctx.PostForm("password")
	redirect := safeRedirect(ctx.PostForm("redirect"))

	if !h.checkCredentials(username, password) {
		h.renderLogin(ctx, http.StatusUnauthorized, loginPageData{
			Redirect: redirect,
			Error:    "Invalid username or password",
		})
		return
	}

	token := h.sessions.Create(username)
	ctx.SetCookie(middlewares.SessionCookie, token, int(h.sessions.TTL().Seconds()), "/", "", false, true)
	ctx.Redirect(http.StatusFound, redirect)
}

// Logout deletes the current session, clears the cookie and returns to
// the login page. Safe to call without a session.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	if token := middlewares.SessionToken(ctx); token != "" {
		h.sessions.Delete(token)
	}
	ctx.SetCookie(middlewares.SessionCookie, "", -1, "/", "", false, true)
	ctx.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.creds.Username)) == 1
	passOK := bcrypt.CompareHashAndPassword(h.creds.PasswordHash, []byte(password)) == nil
	return userOK && passOK
}

func (h *AuthHandler) renderLogin(ctx *gin.Context, status int, data loginPageData) {
	ctx.Status(status)
	ctx.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.tplLogin.Execute(ctx.Writer, data); err != nil {
		ctx.String(http.StatusInternalServerError, "internal server error")
	}
}

// safeRedirect keeps post-login redirects on this host. Anything that is
// not a plain local path falls back to "/".
func safeRedirect(target string) string {
	if target == "" {
		return "/"
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	return u.String()
}
