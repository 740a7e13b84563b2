// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package web

import (
	"context"
	"net/http"
	"time"

	"github.com/quizhub/quizhub/internal/auth"
	"github.com/quizhub/quizhub/internal/locale"
)

// CookieName is the session cookie.
const CookieName = "token"

// TokenDecoder verifies session tokens.
type TokenDecoder interface {
	Decode(token string) (*auth.SessionClaims, error)
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying claims.
func WithSession(ctx context.Context, claims *auth.SessionClaims) context.Context {
	return context.WithValue(ctx, sessionKey{}, claims)
}

// SessionFromContext returns the verified claims of the request, if any.
func SessionFromContext(ctx context.Context) (*auth.SessionClaims, bool) {
	claims, ok := ctx.Value(sessionKey{}).(*auth.SessionClaims)
	return claims, ok && claims != nil
}

// RequestLocale is the session locale, or locale.Default without a session.
func RequestLocale(ctx context.Context) locale.ID {
	if claims, ok := SessionFromContext(ctx); ok {
		return claims.Locale
	}
	return locale.Default
}

// SessionMiddleware attaches the claims of a valid token cookie to the
// request context. Requests without a usable token continue anonymously.
// It never writes or clears cookies.
func SessionMiddleware(tokens TokenDecoder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(CookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := tokens.Decode(c.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), claims)))
		})
	}
}

// RequireSession redirects anonymous requests to /login.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func setSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.TokenTTL / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, secure bool) {
	// MaxAge -1 is rendered as "Max-Age=0".
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
