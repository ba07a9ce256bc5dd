// Package policy decides, for an acting user and a target, whether an
// operation is permitted. Checks are synchronous and side-effect-free;
// every violation surfaces as a distinguishable error, never a no-op.
//
// The rules: users mutate only their own records, admin status included;
// any approved user may read any approved user's records; user management
// is admin-only, and an admin can never remove their own account.
package policy

import (
	"fmt"
	"strings"

	"budget-server/src/apperr"
	"budget-server/src/models"
)

// IdentityFor derives the policy-facing identity of a user. The seeded
// admin account (email matching adminEmail, case-insensitively) is always
// approved and admin regardless of its stored flags.
func IdentityFor(u *models.User, adminEmail string) models.Identity {
	ident := models.Identity{
		ID:         u.ID,
		Email:      u.Email,
		IsApproved: u.IsApproved,
		IsAdmin:    u.IsAdmin,
	}
	if adminEmail != "" && strings.EqualFold(u.Email, adminEmail) {
		ident.IsApproved = true
		ident.IsAdmin = true
	}
	return ident
}

// CanMutateTransactions permits create/update/delete only on the actor's
// own records. Admin status grants user-management rights, not editing
// rights over other users' transactions.
func CanMutateTransactions(actor models.Identity, ownerID int64) error {
	if actor.ID != ownerID {
		return fmt.Errorf("%w: records belong to another user", apperr.ErrForbidden)
	}
	return nil
}

// CanReadTransactions permits reading the actor's own records, and any
// other user's records when both accounts are approved.
func CanReadTransactions(actor, owner models.Identity) error {
	if actor.ID == owner.ID {
		return nil
	}
	if !actor.IsApproved || !owner.IsApproved {
		return fmt.Errorf("%w: shared visibility requires both accounts approved", apperr.ErrForbidden)
	}
	return nil
}

// CanManageUsers permits approve/reject/remove of accounts, admin-only.
func CanManageUsers(actor models.Identity) error {
	if !actor.IsAdmin {
		return fmt.Errorf("%w: user management is admin-only", apperr.ErrForbidden)
	}
	return nil
}

// CanRemoveUser permits permanently deleting a user account. Admin-only,
// and never the acting admin's own account.
func CanRemoveUser(actor models.Identity, targetID int64) error {
	if err := CanManageUsers(actor); err != nil {
		return err
	}
	if actor.ID == targetID {
		return apperr.ErrSelfRemoval
	}
	return nil
}
