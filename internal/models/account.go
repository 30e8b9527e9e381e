package models

import (
	"github.com/google/uuid"
)

// Account is the slice of a worker or property-manager record this service
// reads: enough to resolve the requester and pick a verification method.
// Account records are owned by account-service; this service never writes
// them.
type Account struct {
	ID          uuid.UUID   `db:"id"`
	AccountType AccountType `db:"-"`
	Email       string      `db:"email"`
	PhoneNumber *string     `db:"phone_number"`
	TOTPSecret  string      `db:"totp_secret"`
}

// HasTOTP reports whether a TOTP secret is enrolled.
func (a *Account) HasTOTP() bool {
	return a.TOTPSecret != ""
}

// HasPhone reports whether a phone number is on file for SMS dispatch.
func (a *Account) HasPhone() bool {
	return a.PhoneNumber != nil && *a.PhoneNumber != ""
}
