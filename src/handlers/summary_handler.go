package handlers

import (
	"net/http"

	"budget-server/src/ledger"
	"budget-server/src/store"
)

// The summary endpoints recompute from the current snapshot on every call;
// the store's snapshot cache keeps that cheap.

func SummaryTotals(st store.Store, adminEmail string) http.HandlerFunc {
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
		writeJSON(w, http.StatusOK, ledger.ComputeTotals(txns))
	}
}

func SummaryMonthly(st store.Store, adminEmail string) http.HandlerFunc {
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
		writeJSON(w, http.StatusOK, ledger.MonthlySeries(txns))
	}
}

func SummaryCategories(st store.Store, adminEmail string) http.HandlerFunc {
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
		writeJSON(w, http.StatusOK, ledger.CategoryBreakdown(txns))
	}
}
