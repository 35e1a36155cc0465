package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokens signs and verifies player tokens: HS256 JWTs whose subject is the
// session ID. They stop one client from driving another client's session.
type tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func (t tokens) sign(sessionID string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := tok.SignedString(t.secret)
	return ss, exp, err
}

func (t tokens) parse(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return "", err
	}
	if !tok.Valid || claims.Subject == "" {
		return "", errors.New("invalid player token")
	}
	return claims.Subject, nil
}

// bearerOrCookie extracts a token from the Authorization header or the session cookie.
func bearerOrCookie(r *http.Request, cookie string) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookie); err == nil {
		return c.Value
	}
	return ""
}

// ctxSessionKey is the context key type for the caller's session ID.
type ctxSessionKey struct{}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxSessionKey{}).(string)
	return id
}

// withOptionalSession decorates requests with the caller's session ID when a
// valid token is present. It never rejects.
func (s *Server) withOptionalSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := bearerOrCookie(r, s.cookieName); raw != "" {
				if id, err := s.tokens.parse(raw); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ctxSessionKey{}, id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireSession enforces a valid player token.
func (s *Server) requireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerOrCookie(r, s.cookieName)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "no_session")
				return
			}
			id, err := s.tokens.parse(raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid_token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxSessionKey{}, id)))
		})
	}
}

// setSessionCookie writes the player token cookie.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.secure {
		sameSite = http.SameSiteNoneMode // required for third‑party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}
