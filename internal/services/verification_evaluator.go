package services

import (
	"crypto/subtle"
	"time"

	"github.com/poofware/deletion-service/internal/dtos"
	"github.com/poofware/deletion-service/internal/models"
	"github.com/poofware/deletion-service/internal/utils"
)

// evaluateProof checks the submitted proof against the verification material
// bound to the pending request. The proof shape must match the method fixed
// at issuance:
//
//   - utils.ErrMethodMismatch: wrong proof shape for the method (not counted
//     as a failed attempt).
//   - utils.ErrExpired: the dual-code sub-TTL has lapsed; the codes are dead
//     even though the token itself may still be inside its window.
//   - utils.ErrInvalidProof: well-shaped proof that does not verify. Both
//     dual codes must match; matching one of the two earns no partial credit.
func evaluateProof(d *models.DeletionRequest, req dtos.ConfirmDeletionRequest, totpSecret string, now time.Time) error {
	switch d.Method {
	case models.MethodTOTP:
		if req.TOTPCode == nil || *req.TOTPCode == "" {
			return utils.ErrMethodMismatch
		}
		if !utils.ValidateTOTPCode(totpSecret, *req.TOTPCode) {
			return utils.ErrInvalidProof
		}
		return nil

	case models.MethodDualCode:
		if req.EmailCode == nil || *req.EmailCode == "" || req.SMSCode == nil || *req.SMSCode == "" {
			return utils.ErrMethodMismatch
		}
		if now.After(d.CodesExpireAt) {
			return utils.ErrExpired
		}
		emailOK := subtle.ConstantTimeCompare([]byte(*req.EmailCode), []byte(d.EmailCode)) == 1
		smsOK := subtle.ConstantTimeCompare([]byte(*req.SMSCode), []byte(d.SMSCode)) == 1
		if !emailOK || !smsOK {
			return utils.ErrInvalidProof
		}
		return nil

	default:
		return utils.ErrMethodMismatch
	}
}
