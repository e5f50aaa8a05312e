package jwtauth

import (
	"net/http"
	"time"
)

// SetTokenCookie writes the credential cookie. Expiry lives inside the token,
// so the cookie itself is a session cookie with no Max-Age.
func SetTokenCookie(w http.ResponseWriter, cfg *Config, token Token) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName(),
		Value:    token.Value,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.cookieSecure,
		SameSite: cfg.cookieSameSite,
	})
}

// ClearTokenCookie expires the credential cookie on the client
func ClearTokenCookie(w http.ResponseWriter, cfg *Config) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.cookieSecure,
		SameSite: cfg.cookieSameSite,
	})
}
