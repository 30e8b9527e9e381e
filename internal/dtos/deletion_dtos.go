package dtos

// InitiateDeletionRequest represents the request body for initiating deletion.
type InitiateDeletionRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// InitiateDeletionResponse contains the pending token returned to the client.
// The confirm URL embeds the token and account type as query parameters so
// the flow survives a full page navigation.
type InitiateDeletionResponse struct {
	PendingToken string `json:"pending_token"`
	AccountType  string `json:"account_type"`
	Method       string `json:"method"`
	ConfirmURL   string `json:"confirm_url"`
	Message      string `json:"message"`
}

// ConfirmDeletionRequest represents the body for confirming a deletion
// request: either a single TOTP code, or both one-time codes.
type ConfirmDeletionRequest struct {
	PendingToken string  `json:"pending_token" validate:"required"`
	TOTPCode     *string `json:"totp_code,omitempty"`
	EmailCode    *string `json:"email_code,omitempty"`
	SMSCode      *string `json:"sms_code,omitempty"`
}

// ConfirmDeletionResponse is returned after successful confirmation.
type ConfirmDeletionResponse struct {
	Message string `json:"message"`
}
