package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/poofware/deletion-service/internal/config"
	"github.com/poofware/deletion-service/internal/utils"
)

// ChannelDispatcher delivers one-time confirmation codes over the two
// out-of-band channels. Implementations report only "sent" or an error;
// code values never flow back to the caller.
type ChannelDispatcher interface {
	SendEmailCode(ctx context.Context, email, code string) error
	SendSMSCode(ctx context.Context, phone, code string) error
}

type channelDispatcher struct {
	cfg            *config.Config
	sendgridClient *sendgrid.Client
	twilioClient   *twilio.RestClient
}

// NewChannelDispatcher creates the SendGrid/Twilio-backed dispatcher.
func NewChannelDispatcher(cfg *config.Config) ChannelDispatcher {
	sgClient := sendgrid.NewSendClient(cfg.SendGridAPIKey)
	twClient := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &channelDispatcher{
		cfg:            cfg,
		sendgridClient: sgClient,
		twilioClient:   twClient,
	}
}

func (d *channelDispatcher) SendEmailCode(_ context.Context, email, code string) error {
	from := mail.NewEmail(d.cfg.OrganizationName, d.cfg.LDFlag_SendgridFromEmail)
	to := mail.NewEmail("", email)
	subject := d.cfg.OrganizationName + " - Account Deletion Code"
	plainTextContent := fmt.Sprintf("Your account deletion confirmation code is %s", code)
	htmlContent := fmt.Sprintf(deletionCodeEmailHTML, code, time.Now().Year())
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	if d.cfg.LDFlag_SendgridSandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		message.MailSettings = ms
	}

	_, sendErr := d.sendgridClient.Send(message)
	if sendErr != nil {
		utils.Logger.WithError(sendErr).Errorf("Failed to send deletion code email to %s via SendGrid", email)
		return fmt.Errorf("%w: failed to send email via sendgrid: %v", utils.ErrExternalServiceFailure, sendErr)
	}
	return nil
}

func (d *channelDispatcher) SendSMSCode(_ context.Context, phone, code string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(d.cfg.LDFlag_TwilioFromPhone)
	params.SetBody(fmt.Sprintf("Your %s account deletion code is %s", d.cfg.OrganizationName, code))

	_, sendErr := d.twilioClient.Api.CreateMessage(params)
	if sendErr != nil {
		utils.Logger.WithError(sendErr).Errorf("Failed to send deletion code SMS to %s via Twilio", phone)
		return fmt.Errorf("%w: failed to send sms via twilio: %v", utils.ErrExternalServiceFailure, sendErr)
	}
	return nil
}
