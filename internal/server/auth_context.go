package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"charpix/internal/models"
)

type contextKey string

const principalContextKey contextKey = "principal"

// authInfo is the authenticated caller attached to the request context.
type authInfo struct {
	Principal models.Principal
	AuthType  string // "bearer" or "session"
}

func contextWithAuth(ctx context.Context, info authInfo) context.Context {
	return context.WithValue(ctx, principalContextKey, info)
}

func authFromContext(ctx context.Context) (authInfo, bool) {
	info, ok := ctx.Value(principalContextKey).(authInfo)
	return info, ok
}

// principalFromRequest returns the caller's principal, or the anonymous
// principal when the request carried no credentials.
func principalFromRequest(r *http.Request) models.Principal {
	if info, ok := authFromContext(r.Context()); ok {
		return info.Principal
	}
	return models.Principal{}
}

// withAuth resolves bearer tokens and session cookies into a principal.
// Requests without credentials pass through as anonymous; individual
// handlers decide what anonymous callers may do.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			if s.apiToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.apiToken)) != 1 {
				s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized("invalid bearer token"))
				return
			}
			info := authInfo{
				Principal: models.Principal{ID: "api", Role: models.RoleStaff},
				AuthType:  "bearer",
			}
			next.ServeHTTP(w, r.WithContext(contextWithAuth(r.Context(), info)))
			return
		}

		if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
			user, err := s.authService.AuthenticateSessionToken(r.Context(), cookie.Value)
			if err == nil && user != nil {
				info := authInfo{Principal: user.Principal(), AuthType: "session"}
				next.ServeHTTP(w, r.WithContext(contextWithAuth(r.Context(), info)))
				return
			}
			// Invalid or expired session cookies degrade to anonymous.
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func (s *Server) requireStaff(w http.ResponseWriter, r *http.Request) bool {
	p := principalFromRequest(r)
	if p.ID == "" {
		s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized("authentication required"))
		return false
	}
	if !p.IsStaff() {
		s.writeErrorReq(w, r, http.StatusForbidden, forbidden("staff role required"))
		return false
	}
	return true
}
