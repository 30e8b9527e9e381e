package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/poofware/deletion-service/internal/config"
	"github.com/poofware/deletion-service/internal/models"
	"github.com/poofware/deletion-service/internal/utils"
)

// deletionQueueRecipient receives verified deletion requests for manual
// processing within the mandated compliance window.
const deletionQueueRecipient = "team@thepoofapp.com"

// DeletionQueue receives accounts whose deletion has been verified. The
// consumed token row is the durable record of the transition; Enqueue is the
// downstream hand-off.
type DeletionQueue interface {
	Enqueue(ctx context.Context, email string, accountType models.AccountType) error
}

type notificationDeletionQueue struct {
	cfg            *config.Config
	sendgridClient *sendgrid.Client
}

// NewDeletionQueue creates the queue backed by an internal team
// notification email.
func NewDeletionQueue(cfg *config.Config) DeletionQueue {
	return &notificationDeletionQueue{
		cfg:            cfg,
		sendgridClient: sendgrid.NewSendClient(cfg.SendGridAPIKey),
	}
}

// Enqueue notifies the Poof team of a verified deletion request.
func (q *notificationDeletionQueue) Enqueue(_ context.Context, email string, accountType models.AccountType) error {
	from := mail.NewEmail(q.cfg.OrganizationName, q.cfg.LDFlag_SendgridFromEmail)
	to := mail.NewEmail("", deletionQueueRecipient)
	subject := fmt.Sprintf("URGENT: Account Deletion Request for %s", email)
	ts := time.Now().UTC().Format(time.RFC1123)
	plain := fmt.Sprintf("A verified deletion request was received for %s (account type: %s) at %s", email, accountType, ts)
	html := fmt.Sprintf(
		internalNotificationEmailHTML,
		"Account Deletion Request",
		fmt.Sprintf("A new account deletion request has been submitted by a user. Please process this request promptly.<ul><li><strong>Account Type:</strong> %s</li><li><strong>Email:</strong> %s</li><li><strong>Timestamp (UTC):</strong> %s</li></ul>", accountType, email, ts),
		time.Now().Year(),
	)
	msg := mail.NewSingleEmail(from, subject, to, plain, html)
	if q.cfg.LDFlag_SendgridSandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}

	_, err := q.sendgridClient.Send(msg)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to send deletion queue notification for %s", email)
		return fmt.Errorf("%w: failed to send email via sendgrid: %v", utils.ErrExternalServiceFailure, err)
	}
	return nil
}
