package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"budget-server/src/apperr"
	"budget-server/src/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the application error taxonomy onto HTTP statuses.
// Policy and store failures are surfaced verbatim, never swallowed.
func writeError(w http.ResponseWriter, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Error(), http.StatusBadRequest)
	case errors.Is(err, apperr.ErrInvalidCredentials):
		http.Error(w, apperr.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
	case errors.Is(err, apperr.ErrPendingApproval):
		http.Error(w, apperr.ErrPendingApproval.Error(), http.StatusForbidden)
	case errors.Is(err, apperr.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, apperr.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, apperr.ErrSelfRemoval):
		http.Error(w, apperr.ErrSelfRemoval.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// identityFrom pulls the authenticated identity placed on the context by
// the auth middleware.
func identityFrom(r *http.Request) (models.Identity, bool) {
	ident, ok := r.Context().Value("identity").(models.Identity)
	return ident, ok
}
