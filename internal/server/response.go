package server

import (
	"encoding/json"
	"net/http"

	"github.com/me/trailctl/pkg/model"
)

// fieldErr matches the backend's validation error entries.
type fieldErr struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// errorBody is the error response format: detail is a plain string or,
// for validation failures, a list of field errors.
type errorBody struct {
	Error  string `json:"error"`
	Detail any    `json:"detail,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, errText, detail string) {
	respondJSON(w, status, errorBody{Error: errText, Detail: detail})
}

func respondValidation(w http.ResponseWriter, fields []fieldErr) {
	respondJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "Validation Error", Detail: fields})
}

// respondPage writes a paginated listing envelope.
func respondPage[T any](w http.ResponseWriter, items []T, total int, page model.Page) {
	respondJSON(w, http.StatusOK, model.Paginated[T]{
		Items:    items,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	})
}

// decodeBody decodes a JSON request body, responding with a 400 itself
// when decoding fails. Returns false if the caller should bail out.
func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		respondError(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return false
	}
	return true
}
