package server

import (
	"net/http"

	"github.com/me/trailctl/pkg/trail"
)

func (s *Server) handleMyAuditHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acct := accountFromContext(ctx)
	page := parsePage(r, trail.DefaultAuditPageSize)
	entries, total, err := s.store.ListAuditLogs(ctx, acct.User.ID, page)
	if err != nil {
		s.logger.Error("list audit history failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error", "could not list audit history")
		return
	}
	respondPage(w, entries, total, page)
}

func (s *Server) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r, trail.DefaultAuditPageSize)
	entries, total, err := s.store.ListAuditLogs(r.Context(), "", page)
	if err != nil {
		s.logger.Error("list audit logs failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error", "could not list audit logs")
		return
	}
	respondPage(w, entries, total, page)
}

func (s *Server) handleAuditStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.AuditStats(r.Context())
	if err != nil {
		s.logger.Error("audit stats failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error", "could not compute audit stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
