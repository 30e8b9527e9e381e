package services

import (
	"strings"
	"time"

	"github.com/poofware/deletion-service/internal/config"
	"github.com/poofware/deletion-service/internal/models"
	"github.com/poofware/deletion-service/internal/utils"
)

// Fixed codes stored for test contacts when accept_fake_phones_and_emails
// is on. Nothing is dispatched for these.
const (
	TestEmailCode = "111111"
	TestPhoneCode = "222222"
)

// deletionChallenge is the verification material bound to a pending token
// at issuance. Codes are empty for the TOTP method.
type deletionChallenge struct {
	Method        models.VerificationMethod
	EmailCode     string
	SMSCode       string
	CodesExpireAt time.Time
}

// chooseMethod picks the verification method for the account. Property
// managers with an enrolled authenticator confirm with a TOTP code; everyone
// else gets the dual email+SMS code challenge. The method is fixed at
// issuance and never re-evaluated at confirm time.
func chooseMethod(account *models.Account) (models.VerificationMethod, error) {
	if account.AccountType == models.AccountTypePropertyManager && account.HasTOTP() {
		return models.MethodTOTP, nil
	}
	if !account.HasPhone() {
		return "", utils.ErrChallengeNotPossible
	}
	return models.MethodDualCode, nil
}

// issueChallenge generates the verification material for the chosen method.
// The two dual-code values are drawn independently; matching one grants no
// information about the other.
func issueChallenge(cfg *config.Config, account *models.Account, method models.VerificationMethod, now time.Time) (*deletionChallenge, error) {
	ch := &deletionChallenge{Method: method}
	if method == models.MethodTOTP {
		return ch, nil
	}

	ch.CodesExpireAt = now.Add(cfg.VerificationCodeExpiry)

	if cfg.LDFlag_AcceptFakePhonesEmails && isTestContact(account) {
		ch.EmailCode = TestEmailCode
		ch.SMSCode = TestPhoneCode
		return ch, nil
	}

	emailCode, err := utils.RandomNumericString(cfg.VerificationCodeLength)
	if err != nil {
		return nil, err
	}
	smsCode, err := utils.RandomNumericString(cfg.VerificationCodeLength)
	if err != nil {
		return nil, err
	}
	ch.EmailCode = emailCode
	ch.SMSCode = smsCode
	return ch, nil
}

// isTestContact reports whether the account uses the reserved test email
// and phone ranges used by automated E2E runs.
func isTestContact(account *models.Account) bool {
	if !utils.TestEmailRegex.MatchString(account.Email) {
		return false
	}
	return account.HasPhone() && strings.HasPrefix(*account.PhoneNumber, utils.TestPhoneNumberBase)
}
