// Package store is the authoritative persistence layer for transactions
// and users. Two interchangeable backends exist: Postgres (shared
// deployments) and SQLite (single-box/local deployments); both satisfy
// Store with identical semantics. A ristretto-backed snapshot cache can
// be layered over either one.
package store

import (
	"context"
	"strings"

	"budget-server/src/apperr"
	"budget-server/src/models"
)

type Store interface {
	// CreateTransaction validates the draft, assigns id and today's date,
	// and appends the record to the owner's collection. The record is
	// visible to the next ListTransactions call for that owner.
	CreateTransaction(ctx context.Context, ownerID int64, draft models.TransactionDraft) (*models.Transaction, error)
	// GetTransaction fetches a record by id regardless of owner, so the
	// caller can distinguish a missing record from a foreign one.
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	// UpdateTransaction replaces the mutable fields of one of the owner's
	// records. ID, owner and date never change. apperr.ErrNotFound when
	// the id is not in the owner's set.
	UpdateTransaction(ctx context.Context, id, ownerID int64, patch models.TransactionDraft) (*models.Transaction, error)
	// DeleteTransaction removes the record permanently. A second delete of
	// the same id fails with apperr.ErrNotFound.
	DeleteTransaction(ctx context.Context, id, ownerID int64) error
	// ListTransactions returns the owner's full snapshot in insertion
	// order, oldest first.
	ListTransactions(ctx context.Context, ownerID int64) ([]models.Transaction, error)

	CreateUser(ctx context.Context, email, displayName string, passwordHash []byte, isAdmin, isApproved bool) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ApproveUser(ctx context.Context, id int64) error
	// DeleteUser removes the account and cascades to all of its
	// transactions.
	DeleteUser(ctx context.Context, id int64) error
	UpdateUserProfile(ctx context.Context, id int64, email, displayName string) error
	UpdateUserPassword(ctx context.Context, id int64, passwordHash []byte) error
	UpdateUserLastLogin(ctx context.Context, id int64) error

	Close() error
}

// normalizeDraft applies the shared create/update validation: trimmed
// non-empty description, strictly positive amount, known kind, and the
// Income sentinel category forced on income records.
func normalizeDraft(d models.TransactionDraft) (models.TransactionDraft, error) {
	d.Description = strings.TrimSpace(d.Description)
	if d.Description == "" {
		return d, apperr.Validation("description", "must not be empty")
	}
	if !d.Amount.IsPositive() {
		return d, apperr.Validation("amount", "must be greater than zero")
	}
	switch d.Kind {
	case models.KindIncome:
		d.Category = models.CategoryIncome
	case models.KindExpense:
		d.Category = strings.TrimSpace(d.Category)
		if d.Category == "" {
			d.Category = models.CategoryGeneral
		}
	default:
		return d, apperr.Validation("kind", `must be "income" or "expense"`)
	}
	return d, nil
}
