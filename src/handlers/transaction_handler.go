package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"budget-server/src/apperr"
	"budget-server/src/ledger"
	"budget-server/src/models"
	"budget-server/src/policy"
	"budget-server/src/store"
	"budget-server/src/util"
)

func CreateTransaction(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identityFrom(r)
		if !ok {
			http.Error(w, "missing identity", http.StatusUnauthorized)
			return
		}

		var draft models.TransactionDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			log.Printf("ERROR: Failed to decode create transaction request body for user %d: %v", ident.ID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		created, err := st.CreateTransaction(r.Context(), ident.ID, draft)
		if err != nil {
			log.Printf("ERROR: Failed to create transaction for user %d: %v", ident.ID, err)
			writeError(w, err)
			return
		}

		log.Printf("INFO: Created transaction id %d for user %d", created.ID, ident.ID)
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateTransaction(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identityFrom(r)
		if !ok {
			http.Error(w, "missing identity", http.StatusUnauthorized)
			return
		}

		id, err := transactionIDParam(r)
		if err != nil {
			http.Error(w, "invalid transaction id", http.StatusBadRequest)
			return
		}

		// Look the record up first so a foreign record surfaces as
		// forbidden, not as not-found.
		existing, err := st.GetTransaction(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := policy.CanMutateTransactions(ident, existing.UserID); err != nil {
			log.Printf("ERROR: User %d attempted to update transaction %d owned by user %d", ident.ID, id, existing.UserID)
			writeError(w, err)
			return
		}

		var patch models.TransactionDraft
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			log.Printf("ERROR: Failed to decode update transaction request body for user %d: %v", ident.ID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		updated, err := st.UpdateTransaction(r.Context(), id, existing.UserID, patch)
		if err != nil {
			log.Printf("ERROR: Failed to update transaction %d for user %d: %v", id, ident.ID, err)
			writeError(w, err)
			return
		}

		log.Printf("INFO: Updated transaction id %d for user %d", id, ident.ID)
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteTransaction(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identityFrom(r)
		if !ok {
			http.Error(w, "missing identity", http.StatusUnauthorized)
			return
		}

		id, err := transactionIDParam(r)
		if err != nil {
			http.Error(w, "invalid transaction id", http.StatusBadRequest)
			return
		}

		existing, err := st.GetTransaction(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := policy.CanMutateTransactions(ident, existing.UserID); err != nil {
			log.Printf("ERROR: User %d attempted to delete transaction %d owned by user %d", ident.ID, id, existing.UserID)
			writeError(w, err)
			return
		}

		if err := st.DeleteTransaction(r.Context(), id, existing.UserID); err != nil {
			log.Printf("ERROR: Failed to delete transaction %d for user %d: %v", id, ident.ID, err)
			writeError(w, err)
			return
		}

		log.Printf("INFO: Deleted transaction id %d for user %d", id, ident.ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListTransactions(st store.Store, adminEmail string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identityFrom(r)
		if !ok {
			http.Error(w, "missing identity", http.StatusUnauthorized)
			return
		}

		txns, err := snapshotForRequest(st, adminEmail, r, ident)
		if err != nil {
			writeError(w, err)
			return
		}
		if txns == nil {
			txns = []models.Transaction{}
		}
		writeJSON(w, http.StatusOK, txns)
	}
}

// snapshotForRequest loads the snapshot the request targets: the caller's
// own records by default, another user's with ?owner_id= (subject to the
// shared-visibility read rule), optionally narrowed by ?from= / ?to=.
func snapshotForRequest(st store.Store, adminEmail string, r *http.Request, ident models.Identity) ([]models.Transaction, error) {
	ownerID := ident.ID
	if raw := r.URL.Query().Get("owner_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, apperr.Validation("owner_id", "must be an integer")
		}
		ownerID = parsed
	}

	if ownerID != ident.ID {
		owner, err := st.GetUserByID(r.Context(), ownerID)
		if err != nil {
			return nil, err
		}
		if err := policy.CanReadTransactions(ident, policy.IdentityFor(owner, adminEmail)); err != nil {
			log.Printf("ERROR: User %d denied read access to user %d's records", ident.ID, ownerID)
			return nil, err
		}
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from != "" && !util.ValidateDate(from) {
		return nil, apperr.Validation("from", "must be a yyyy-MM-dd date")
	}
	if to != "" && !util.ValidateDate(to) {
		return nil, apperr.Validation("to", "must be a yyyy-MM-dd date")
	}

	txns, err := st.ListTransactions(r.Context(), ownerID)
	if err != nil {
		return nil, err
	}
	return ledger.FilterByDateRange(txns, from, to), nil
}

// ListCategories returns the suggested expense categories clients show
// in their pickers. Free-form categories are still accepted on create.
func ListCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.ExpenseCategories)
	}
}

func transactionIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "transaction_id"), 10, 64)
}
