package server

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"charpix/internal/api"
)

// handleLogin verifies credentials and sets the session cookie.
// POST /v1/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.AuthLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequest(ErrCodeInvalidJSON, "invalid JSON body: %v", err))
		return
	}

	limiterKey := loginLimiterKey(req.Username, r)
	if !s.loginLimiter.Allow(limiterKey) {
		s.writeErrorReq(w, r, http.StatusTooManyRequests, apiError{
			status:  http.StatusTooManyRequests,
			code:    "resource_exhausted",
			errCode: ErrCodeResourceExhausted,
			err:     errors.New("too many failed login attempts, try again later"),
		})
		return
	}

	user, token, err := s.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errInvalidCredentials) {
			s.loginLimiter.RegisterFailure(limiterKey)
			s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized("invalid username or password"))
			return
		}
		s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(ErrCodeInternal, err))
		return
	}
	s.loginLimiter.Reset(limiterKey)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(sessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.log().Info("login", "username", user.Username, "role", string(user.Role))
	s.writeJSON(w, http.StatusOK, api.AuthMeResponse{
		Authenticated: true,
		Username:      user.Username,
		Role:          string(user.Role),
		AuthType:      "session",
	})
}

// handleLogout revokes the current session and clears the cookie.
// POST /v1/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := s.authService.Logout(r.Context(), cookie.Value); err != nil {
			s.log().Warn("failed to revoke session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAuthMe reports the calling principal.
// GET /v1/auth/me
func (s *Server) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	info, ok := authFromContext(r.Context())
	if !ok {
		s.writeJSON(w, http.StatusOK, api.AuthMeResponse{Authenticated: false})
		return
	}
	s.writeJSON(w, http.StatusOK, api.AuthMeResponse{
		Authenticated: true,
		Username:      info.Principal.ID,
		Role:          string(info.Principal.Role),
		AuthType:      info.AuthType,
	})
}

func loginLimiterKey(username string, r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return username + "|" + host
}
