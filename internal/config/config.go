package config

import (
	"fmt"
	"os"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/poofware/deletion-service/internal/utils"
)

// Config holds all application configuration, including secrets, flags, etc.
type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string
	DBUrl            string

	TwilioAccountSID string
	TwilioAuthToken  string
	SendGridAPIKey   string

	// Deletion-flow parameters
	PendingTokenExpiry     time.Duration
	VerificationCodeExpiry time.Duration
	VerificationCodeLength int
	MaxConfirmAttempts     int
	TerminalRetention      time.Duration

	// Rate limiting
	SMSLimitPerClientPerHour    int
	SMSLimitPerNumberPerHour    int
	GlobalSMSLimitPerHour       int
	EmailLimitPerClientPerHour  int
	EmailLimitPerAddressPerHour int
	GlobalEmailLimitPerHour     int
	RateLimitWindow             time.Duration

	// Static flags fetched once from LaunchDarkly
	LDFlag_SendgridFromEmail      string
	LDFlag_TwilioFromPhone        string
	LDFlag_AcceptFakePhonesEmails bool
	LDFlag_SendgridSandboxMode    bool
	LDFlag_ShortTokenTTL          bool
	LDFlag_CORSHighSecurity       bool
}

// Constants for time-based configuration defaults.
const (
	OrganizationName = utils.OrganizationName

	DefaultPendingTokenExpiry     = 15 * time.Minute
	DefaultVerificationCodeExpiry = 5 * time.Minute
	TestShortPendingTokenExpiry   = 5 * time.Second
	TestShortCodeExpiry           = 3 * time.Second
	VerificationCodeLength        = 6
	MaxConfirmAttempts            = 5
	DefaultTerminalRetention      = 30 * 24 * time.Hour

	LDConnectionTimeout = 5 * time.Second

	DefaultSMSLimitPerClientPerHour    = 20
	DefaultSMSLimitPerNumberPerHour    = 5
	DefaultGlobalSMSLimitPerHour       = 1000
	DefaultEmailLimitPerClientPerHour  = 50
	DefaultEmailLimitPerAddressPerHour = 5
	DefaultGlobalEmailLimitPerHour     = 2000
	DefaultRateLimitWindow             = 1 * time.Hour
)

// Global compile-time overrides, set with -ldflags (same scheme as the
// other services).
var (
	AppName             string
	UniqueRunNumber     string
	UniqueRunnerID      string
	LDServerContextKey  string
	LDServerContextKind string
)

// LoadConfig fetches secrets from BWS, snapshots LaunchDarkly flags, and
// returns a *Config.
func LoadConfig() *Config {
	//----------------------------------------------------------------------
	// 1) Validate required ldflags
	//----------------------------------------------------------------------
	if AppName == "" {
		utils.Logger.Fatal("AppName was not provided via ldflags")
	}
	if UniqueRunNumber == "" {
		utils.Logger.Fatal("UniqueRunNumber was not provided via ldflags")
	}
	if UniqueRunnerID == "" {
		utils.Logger.Fatal("UniqueRunnerID was not provided via ldflags")
	}
	if LDServerContextKey == "" {
		utils.Logger.Fatal("LDServerContextKey was not provided via ldflags")
	}
	if LDServerContextKind == "" {
		utils.Logger.Fatal("LDServerContextKind was not provided via ldflags")
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	//----------------------------------------------------------------------
	// 2) Runtime environment vars
	//----------------------------------------------------------------------
	env := os.Getenv("ENV")
	if env == "" {
		utils.Logger.Fatal("ENV env var is missing")
	}
	appURL := os.Getenv("APP_URL_FROM_ANYWHERE")
	if appURL == "" {
		utils.Logger.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}

	//----------------------------------------------------------------------
	// 3) BWS secrets
	//----------------------------------------------------------------------
	client, err := utils.NewBWSSecretsClient()
	if err != nil {
		utils.Logger.WithError(err).Fatal("Init BWS client")
	}
	defer client.Close()

	bwsProjectName := fmt.Sprintf("%s-%s", AppName, env)
	appSecrets, err := client.GetBWSSecrets(bwsProjectName)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Fetch BWS secrets")
	}

	bwsSharedProjectName := fmt.Sprintf("shared-%s", env)
	sharedSecrets, err := client.GetBWSSecrets(bwsSharedProjectName)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to fetch shared secrets from BWS")
	}

	dbUrl, ok := appSecrets["DB_URL"]
	if !ok || dbUrl == "" {
		utils.Logger.Fatal("DB_URL not found in BWS secrets")
	}
	twilioAccountSID, ok := sharedSecrets["TWILIO_ACCOUNT_SID"]
	if !ok || twilioAccountSID == "" {
		utils.Logger.Fatal("TWILIO_ACCOUNT_SID not found in BWS secrets")
	}
	twilioAuthToken, ok := sharedSecrets["TWILIO_AUTH_TOKEN"]
	if !ok || twilioAuthToken == "" {
		utils.Logger.Fatal("TWILIO_AUTH_TOKEN not found in BWS secrets")
	}
	sendGridAPIKey, ok := sharedSecrets["SENDGRID_API_KEY"]
	if !ok || sendGridAPIKey == "" {
		utils.Logger.Fatal("SENDGRID_API_KEY not found in BWS secrets")
	}
	ldSDKKey, ok := appSecrets["LD_SDK_KEY"]
	if !ok || ldSDKKey == "" {
		utils.Logger.Fatal("LD_SDK_KEY not found in BWS secrets")
	}

	//----------------------------------------------------------------------
	// 4) LaunchDarkly client & flags
	//----------------------------------------------------------------------
	ldClient, err := ld.MakeClient(ldSDKKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	if !ldClient.Initialized() {
		ldClient.Close()
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}
	defer ldClient.Close()

	ctx := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)

	fromEmail, err := ldClient.StringVariation("sendgrid_from_email", ctx, "")
	if err != nil || fromEmail == "" {
		ldClient.Close()
		utils.Logger.Fatal("sendgrid_from_email flag error / empty")
	}
	utils.Logger.Debugf("sendgrid_from_email flag: %s", fromEmail)

	fromPhone, err := ldClient.StringVariation("twilio_from_phone", ctx, "")
	if err != nil || fromPhone == "" {
		ldClient.Close()
		utils.Logger.Fatal("twilio_from_phone flag error / empty")
	}
	utils.Logger.Debugf("twilio_from_phone flag: %s", fromPhone)

	acceptFakeContacts, err := ldClient.BoolVariation("accept_fake_phones_and_emails", ctx, false)
	if err != nil {
		ldClient.Close()
		utils.Logger.Fatal("accept_fake_phones_and_emails flag error")
	}
	utils.Logger.Debugf("accept_fake_phones_and_emails flag: %t", acceptFakeContacts)

	sandboxMode, err := ldClient.BoolVariation("sendgrid_sandbox_mode", ctx, false)
	if err != nil {
		ldClient.Close()
		utils.Logger.Fatal("sendgrid_sandbox_mode flag error")
	}
	utils.Logger.Debugf("sendgrid_sandbox_mode flag: %t", sandboxMode)

	shortTTL, err := ldClient.BoolVariation("short_token_ttl", ctx, false)
	if err != nil {
		ldClient.Close()
		utils.Logger.Fatal("short_token_ttl flag error")
	}
	utils.Logger.Debugf("short_token_ttl flag: %t", shortTTL)

	corsHighSecurity, err := ldClient.BoolVariation("cors_high_security", ctx, false)
	if err != nil {
		ldClient.Close()
		utils.Logger.Fatal("cors_high_security flag error")
	}
	utils.Logger.Debugf("cors_high_security flag: %t", corsHighSecurity)

	//----------------------------------------------------------------------
	// 5) Expiries (shortened for integration-test runs)
	//----------------------------------------------------------------------
	pendingTokenExpiry := time.Duration(DefaultPendingTokenExpiry)
	codeExpiry := time.Duration(DefaultVerificationCodeExpiry)
	if shortTTL {
		pendingTokenExpiry = TestShortPendingTokenExpiry
		codeExpiry = TestShortCodeExpiry
	}

	utils.Logger.Infof("Loaded config for %s (%s)", AppName, env)

	return &Config{
		OrganizationName: OrganizationName,
		AppName:          AppName,
		AppPort:          appPort,
		AppUrl:           appURL,
		DBUrl:            dbUrl,

		TwilioAccountSID: twilioAccountSID,
		TwilioAuthToken:  twilioAuthToken,
		SendGridAPIKey:   sendGridAPIKey,

		PendingTokenExpiry:     pendingTokenExpiry,
		VerificationCodeExpiry: codeExpiry,
		VerificationCodeLength: VerificationCodeLength,
		MaxConfirmAttempts:     MaxConfirmAttempts,
		TerminalRetention:      DefaultTerminalRetention,

		SMSLimitPerClientPerHour:    DefaultSMSLimitPerClientPerHour,
		SMSLimitPerNumberPerHour:    DefaultSMSLimitPerNumberPerHour,
		GlobalSMSLimitPerHour:       DefaultGlobalSMSLimitPerHour,
		EmailLimitPerClientPerHour:  DefaultEmailLimitPerClientPerHour,
		EmailLimitPerAddressPerHour: DefaultEmailLimitPerAddressPerHour,
		GlobalEmailLimitPerHour:     DefaultGlobalEmailLimitPerHour,
		RateLimitWindow:             DefaultRateLimitWindow,

		LDFlag_SendgridFromEmail:      fromEmail,
		LDFlag_TwilioFromPhone:        fromPhone,
		LDFlag_AcceptFakePhonesEmails: acceptFakeContacts,
		LDFlag_SendgridSandboxMode:    sandboxMode,
		LDFlag_ShortTokenTTL:          shortTTL,
		LDFlag_CORSHighSecurity:       corsHighSecurity,
	}
}

// Close cleans up any resources used by Config.
func (c *Config) Close() {
}
