package utils

import "regexp"

const (
	OrganizationName = "Poof"

	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"

	TestPhoneNumberBase   = "+999"
	TestEmailSuffix       = "testing@thepoofapp.com"
	TestEmailRegexPattern = `^[0-9]+` + TestEmailSuffix + `$`
)

// Pre-compile the test email regex.
var TestEmailRegex = regexp.MustCompile(TestEmailRegexPattern)
