package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"budget-server/src/apperr"
	"budget-server/src/policy"
	"budget-server/src/store"
)

func ListUsers(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := st.ListUsers(r.Context())
		if err != nil {
			log.Printf("ERROR: Failed to list users: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func ApproveUser(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		targetID, err := userIDParam(r)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}

		if err := st.ApproveUser(r.Context(), targetID); err != nil {
			log.Printf("ERROR: Failed to approve user %d: %v", targetID, err)
			writeError(w, err)
			return
		}

		log.Printf("INFO: User %d approved", targetID)
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "user approved",
		})
	}
}

// RejectUser permanently deletes a pending account and everything it
// owns. Approved accounts cannot be rejected (removal is the route for
// those), and the self-removal rule applies here too.
func RejectUser(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identityFrom(r)
		if !ok {
			http.Error(w, "missing identity", http.StatusUnauthorized)
			return
		}

		targetID, err := userIDParam(r)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}

		if err := policy.CanRemoveUser(ident, targetID); err != nil {
			log.Printf("ERROR: Admin %d denied rejection of user %d: %v", ident.ID, targetID, err)
			writeError(w, err)
			return
		}

		target, err := st.GetUserByID(r.Context(), targetID)
		if err != nil {
			writeError(w, err)
			return
		}
		if target.IsApproved {
			log.Printf("ERROR: Admin %d attempted to reject approved user %d", ident.ID, targetID)
			writeError(w, apperr.Validation("user_id", "account is already approved"))
			return
		}

		if err := st.DeleteUser(r.Context(), targetID); err != nil {
			log.Printf("ERROR: Failed to reject user %d: %v", targetID, err)
			writeError(w, err)
			return
		}

		log.Printf("INFO: User %d rejected and deleted", targetID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// RemoveUser permanently deletes an approved account and cascades to all
// of its transactions. Admins cannot remove themselves.
func RemoveUser(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identityFrom(r)
		if !ok {
			http.Error(w, "missing identity", http.StatusUnauthorized)
			return
		}

		targetID, err := userIDParam(r)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}

		if err := policy.CanRemoveUser(ident, targetID); err != nil {
			log.Printf("ERROR: Admin %d denied removal of user %d: %v", ident.ID, targetID, err)
			writeError(w, err)
			return
		}

		if err := st.DeleteUser(r.Context(), targetID); err != nil {
			log.Printf("ERROR: Failed to remove user %d: %v", targetID, err)
			writeError(w, err)
			return
		}

		log.Printf("INFO: User %d removed by admin %d", targetID, ident.ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func userIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
}
