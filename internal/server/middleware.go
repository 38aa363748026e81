package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/me/trailctl/internal/store"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
	ctxKeyAccount   ctxKey = "account"
	ctxKeyToken     ctxKey = "token"
)

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// accountFromContext returns the authenticated account, or nil outside
// the auth middleware.
func accountFromContext(ctx context.Context) *store.Account {
	if acct, ok := ctx.Value(ctxKeyAccount).(*store.Account); ok {
		return acct
	}
	return nil
}

func tokenFromContext(ctx context.Context) string {
	if tok, ok := ctx.Value(ctxKeyToken).(string); ok {
		return tok
	}
	return ""
}

// requestIDMiddleware generates a request_id and stores it in context.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = "req_" + uuid.New().String()[:8]
		}
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs HTTP requests at INFO level.
func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start).String(),
				"request_id", RequestIDFromContext(r.Context()),
			)
		})
	}
}

// authMiddleware resolves the bearer token to an account. Missing,
// unknown, expired, or disabled credentials all produce a 401.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			respondError(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}

		tok, err := s.store.GetToken(r.Context(), raw)
		if err != nil {
			s.logger.Error("token lookup", "error", err)
			respondError(w, http.StatusInternalServerError, "Internal Server Error", "token lookup failed")
			return
		}
		if tok == nil {
			respondError(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
			return
		}
		if tok.Expired() {
			_ = s.store.DeleteToken(r.Context(), raw)
			respondError(w, http.StatusUnauthorized, "Unauthorized", "token expired")
			return
		}

		acct, err := s.store.GetAccountByID(r.Context(), tok.UserID)
		if err != nil {
			s.logger.Error("account lookup", "error", err)
			respondError(w, http.StatusInternalServerError, "Internal Server Error", "account lookup failed")
			return
		}
		if acct == nil || !acct.User.IsActive {
			respondError(w, http.StatusUnauthorized, "Unauthorized", "account unknown or disabled")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyAccount, acct)
		ctx = context.WithValue(ctx, ctxKeyToken, raw)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates privileged listings behind the admin role.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acct := accountFromContext(r.Context())
		if acct == nil || !acct.User.IsAdmin() {
			respondError(w, http.StatusForbidden, "Forbidden", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
