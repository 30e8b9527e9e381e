package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AccountType enumerates the account kinds that can request deletion.
type AccountType string

const (
	AccountTypeWorker          AccountType = "worker"
	AccountTypePropertyManager AccountType = "propertyManager"
)

// ParseAccountType converts the URL path segment to the enum.
func ParseAccountType(s string) (AccountType, error) {
	switch s {
	case string(AccountTypeWorker):
		return AccountTypeWorker, nil
	case string(AccountTypePropertyManager):
		return AccountTypePropertyManager, nil
	default:
		return "", fmt.Errorf("invalid account type: %q", s)
	}
}

// VerificationMethod is fixed at issuance and determines which proof
// shape Confirm accepts.
type VerificationMethod string

const (
	MethodTOTP     VerificationMethod = "totp"
	MethodDualCode VerificationMethod = "dualCode"
)

// DeletionStatus is the lifecycle state of a DeletionRequest.
type DeletionStatus string

const (
	StatusPending     DeletionStatus = "pending"
	StatusConsumed    DeletionStatus = "consumed"
	StatusExpired     DeletionStatus = "expired"
	StatusInvalidated DeletionStatus = "invalidated"
)

// IsTerminal reports whether no further transition is permitted.
func (s DeletionStatus) IsTerminal() bool {
	return s == StatusConsumed || s == StatusExpired || s == StatusInvalidated
}

// DeletionRequest is a single-use, time-bounded authorization to queue an
// account for deletion. The token bearer-authenticates the confirm call.
type DeletionRequest struct {
	Token       string             `db:"token"`
	AccountID   uuid.UUID          `db:"account_id"`
	AccountType AccountType        `db:"account_type"`
	Method      VerificationMethod `db:"method"`

	// Dual-code challenge material; empty for the TOTP method. The codes
	// never leave the service, only "sent" acknowledgements do.
	EmailCode     string    `db:"email_code"`
	SMSCode       string    `db:"sms_code"`
	CodesExpireAt time.Time `db:"codes_expire_at"`

	Status       DeletionStatus `db:"status"`
	AttemptCount int            `db:"attempt_count"`
	CreatedAt    time.Time      `db:"created_at"`
	ExpiresAt    time.Time      `db:"expires_at"`
	ConsumedAt   *time.Time     `db:"consumed_at"`
}

// Expired reports whether the token TTL has elapsed at the given instant.
func (d *DeletionRequest) Expired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}
