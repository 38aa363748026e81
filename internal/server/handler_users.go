package server

import (
	"net/http"

	"github.com/me/trailctl/pkg/trail"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r, trail.DefaultUserPageSize)
	users, total, err := s.store.ListAccounts(r.Context(), page)
	if err != nil {
		s.logger.Error("list users failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error", "could not list users")
		return
	}
	respondPage(w, users, total, page)
}
