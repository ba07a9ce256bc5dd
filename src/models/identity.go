package models

// Identity is the authenticated caller as the access policy sees it: the
// {id, approved, admin} triple resolved from the user store on every
// request, plus the email used for the seeded-admin override.
type Identity struct {
	ID         int64
	Email      string
	IsApproved bool
	IsAdmin    bool
}
