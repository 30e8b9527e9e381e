package utils

import (
	"github.com/pquerna/otp/totp"
)

// ValidateTOTPCode checks a submitted code against the enrolled secret.
// totp.Validate allows one time-step of clock skew in either direction.
func ValidateTOTPCode(secret, code string) bool {
	return totp.Validate(code, secret)
}
