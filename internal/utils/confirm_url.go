package utils

import "net/url"

// BuildConfirmURL produces the confirm-page URL the client lands on after
// initiating deletion. The pending token and account type travel as query
// parameters so the flow survives a full page navigation or a fresh tab:
// clients must treat these parameters as authoritative over any locally
// cached copy.
func BuildConfirmURL(appURL, accountType, pendingToken string) string {
	u, err := url.Parse(appURL)
	if err != nil {
		// appURL comes from config and is validated at startup; fall back
		// to a bare relative path if it is somehow unparsable at runtime.
		u = &url.URL{}
	}
	u.Path = "/delete-account/confirm"

	q := u.Query()
	q.Set("pending_token", pendingToken)
	q.Set("account_type", accountType)
	u.RawQuery = q.Encode()

	return u.String()
}
