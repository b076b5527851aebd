package controllers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/taskhub/internal/http/errors"
	"github.com/dropDatabas3/taskhub/internal/http/services"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
	"github.com/dropDatabas3/taskhub/internal/session"
)

const nonceCookieName = "oauth_nonce"

// GoogleController maneja el login con Google. El éxito redirige al
// workspace actual en el frontend; cualquier fallo redirige al callback del
// frontend con status=failure.
type GoogleController struct {
	service        services.GoogleService
	cookie         session.CookieConfig
	frontendOrigin string
	failureURL     string
	nonceTTL       time.Duration
}

func NewGoogleController(service services.GoogleService, cookie session.CookieConfig, frontendOrigin, frontendCallbackURL string, nonceTTL time.Duration) *GoogleController {
	if nonceTTL <= 0 {
		nonceTTL = 10 * time.Minute
	}
	return &GoogleController{
		service:        service,
		cookie:         cookie,
		frontendOrigin: strings.TrimRight(frontendOrigin, "/"),
		failureURL:     withStatus(frontendCallbackURL, "failure"),
		nonceTTL:       nonceTTL,
	}
}

// Begin GET /auth/google
func (c *GoogleController) Begin(w http.ResponseWriter, r *http.Request) {
	authURL, nonce, err := c.service.Begin()
	if err == services.ErrGoogleDisabled {
		errors.WriteError(w, errors.ErrNotFound.WithMessage("Google login is not enabled"))
		return
	}
	if err != nil {
		writeServiceError(w, r, "google_begin", err)
		return
	}
	http.SetCookie(w, c.nonceCookie(nonce, c.nonceTTL))
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback GET /auth/google/callback
func (c *GoogleController) Callback(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context())
	http.SetCookie(w, c.nonceCookie("", -1))

	if e := r.URL.Query().Get("error"); e != "" {
		log.Info("google consent denied", logger.String("error", e))
		http.Redirect(w, r, c.failureURL, http.StatusFound)
		return
	}

	var nonce string
	if ck, err := r.Cookie(nonceCookieName); err == nil {
		nonce = ck.Value
	}
	q := r.URL.Query()
	res, err := c.service.Callback(r.Context(), q.Get("code"), q.Get("state"), nonce)
	if err != nil {
		log.Warn("google login failed", logger.Err(err))
		http.Redirect(w, r, c.failureURL, http.StatusFound)
		return
	}

	http.SetCookie(w, c.cookie.Issue(res.Token, res.TTL))
	target := c.frontendOrigin + "/workspace"
	if res.User.CurrentWorkspace != nil {
		target += "/" + url.PathEscape(*res.User.CurrentWorkspace)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (c *GoogleController) nonceCookie(value string, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     nonceCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	}
	if ttl < 0 {
		ck.MaxAge = -1
	}
	return ck
}

func withStatus(raw, status string) string {
	u, err := url.Parse(raw)
	if err != nil || raw == "" {
		return "/?status=" + status
	}
	q := u.Query()
	q.Set("status", status)
	u.RawQuery = q.Encode()
	return u.String()
}
