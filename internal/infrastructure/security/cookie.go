package security

import (
	"net/http"
	"strings"
	"time"
)

type CookieConfig struct {
	Name   string
	Secure bool
}

type cookieConfig struct {
	name     string
	value    string
	path     string
	httpOnly bool
	secure   bool
	maxAge   int
}

func setSecureCookie(w http.ResponseWriter, cfg cookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.name,
		Value:    cfg.value,
		Path:     cfg.path,
		HttpOnly: cfg.httpOnly,
		MaxAge:   cfg.maxAge,
		SameSite: http.SameSiteLaxMode,
		Secure:   cfg.secure,
	})
}

func SetSessionCookie(w http.ResponseWriter, cfg CookieConfig, token string, lifetime time.Duration) {
	setSecureCookie(w, cookieConfig{
		name:     cfg.Name,
		value:    token,
		path:     "/",
		httpOnly: true,
		secure:   cfg.Secure,
		maxAge:   int(lifetime.Seconds()),
	})
}

func ClearSessionCookie(w http.ResponseWriter, cfg CookieConfig) {
	setSecureCookie(w, cookieConfig{
		name:     cfg.Name,
		value:    "",
		path:     "/",
		httpOnly: true,
		secure:   cfg.Secure,
		maxAge:   -1,
	})
}

// SessionToken reads the bearer token first (API and websocket clients), then
// the session cookie.
func SessionToken(r *http.Request, cfg CookieConfig) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	cookie, err := r.Cookie(cfg.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
