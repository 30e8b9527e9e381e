package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/deletion-service/internal/config"
	"github.com/poofware/deletion-service/internal/dtos"
	"github.com/poofware/deletion-service/internal/models"
	"github.com/poofware/deletion-service/internal/repositories"
	"github.com/poofware/deletion-service/internal/utils"
)

// dispatchTimeout bounds the background code delivery after Initiate has
// already responded.
const dispatchTimeout = 15 * time.Second

// initiateMessage is returned for every Initiate call, real or not, so the
// response body cannot be used to probe which emails have accounts.
const initiateMessage = "If an account with that email exists, a confirmation step has been prepared."

// ---------------------------------------------------------------------
// DeletionService interface
// ---------------------------------------------------------------------
type DeletionService interface {
	InitiateDeletion(
		ctx context.Context,
		accountType models.AccountType,
		req dtos.InitiateDeletionRequest,
		client utils.ClientIdentifier,
	) (*dtos.InitiateDeletionResponse, error)
	ConfirmDeletion(
		ctx context.Context,
		accountType models.AccountType,
		req dtos.ConfirmDeletionRequest,
	) (*dtos.ConfirmDeletionResponse, error)
}

// ---------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------
type deletionService struct {
	deletionRepo repositories.DeletionRequestRepository
	accountRepo  repositories.AccountRepository
	rateLimiter  RateLimiterService
	dispatcher   ChannelDispatcher
	queue        DeletionQueue

	cfg *config.Config
}

func NewDeletionService(
	deletionRepo repositories.DeletionRequestRepository,
	accountRepo repositories.AccountRepository,
	rateLimiter RateLimiterService,
	dispatcher ChannelDispatcher,
	queue DeletionQueue,
	cfg *config.Config,
) DeletionService {
	return &deletionService{
		deletionRepo: deletionRepo,
		accountRepo:  accountRepo,
		rateLimiter:  rateLimiter,
		dispatcher:   dispatcher,
		queue:        queue,
		cfg:          cfg,
	}
}

// ---------------------------------------------------------------------
// InitiateDeletion
// ---------------------------------------------------------------------
func (s *deletionService) InitiateDeletion(
	ctx context.Context,
	accountType models.AccountType,
	req dtos.InitiateDeletionRequest,
	client utils.ClientIdentifier,
) (*dtos.InitiateDeletionResponse, error) {
	email := strings.TrimSpace(req.Email)

	if err := s.rateLimiter.CheckEmailRateLimits(ctx, client.Value, email); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetByEmail(ctx, accountType, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Unknown email: answer exactly like the real path. The decoy
			// token is never stored, so any Confirm against it is a plain
			// not-found.
			return s.decoyResponse(accountType), nil
		}
		return nil, err
	}

	method, err := chooseMethod(account)
	if err != nil {
		// No verification channel at all (no phone, no TOTP). Answering
		// differently would reveal the account exists; the decoy keeps the
		// surface uniform.
		utils.Logger.Warnf("No verification channel for account %s; returning decoy", account.ID)
		return s.decoyResponse(accountType), nil
	}

	if method == models.MethodDualCode {
		if err := s.rateLimiter.CheckSMSRateLimits(ctx, client.Value, *account.PhoneNumber); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	ch, err := issueChallenge(s.cfg, account, method, now)
	if err != nil {
		return nil, err
	}

	d := &models.DeletionRequest{
		Token:         uuid.NewString(),
		AccountID:     account.ID,
		AccountType:   accountType,
		Method:        method,
		EmailCode:     ch.EmailCode,
		SMSCode:       ch.SMSCode,
		CodesExpireAt: ch.CodesExpireAt,
		Status:        models.StatusPending,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.cfg.PendingTokenExpiry),
	}
	if err := s.deletionRepo.CreateSuperseding(ctx, d); err != nil {
		return nil, err
	}

	if method == models.MethodDualCode && !(s.cfg.LDFlag_AcceptFakePhonesEmails && isTestContact(account)) {
		s.dispatchCodes(account, ch)
	}

	return &dtos.InitiateDeletionResponse{
		PendingToken: d.Token,
		AccountType:  string(accountType),
		Method:       string(method),
		ConfirmURL:   utils.BuildConfirmURL(s.cfg.AppUrl, string(accountType), d.Token),
		Message:      initiateMessage,
	}, nil
}

// decoyResponse mirrors the real Initiate response for an email with no
// account behind it.
func (s *deletionService) decoyResponse(accountType models.AccountType) *dtos.InitiateDeletionResponse {
	token := uuid.NewString()
	return &dtos.InitiateDeletionResponse{
		PendingToken: token,
		AccountType:  string(accountType),
		Method:       string(models.MethodDualCode),
		ConfirmURL:   utils.BuildConfirmURL(s.cfg.AppUrl, string(accountType), token),
		Message:      initiateMessage,
	}
}

// dispatchCodes delivers the dual codes in the background. Initiate has
// already stored the request; a delivery failure is logged, not surfaced.
func (s *deletionService) dispatchCodes(account *models.Account, ch *deletionChallenge) {
	email := account.Email
	phone := *account.PhoneNumber
	emailCode := ch.EmailCode
	smsCode := ch.SMSCode

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := s.dispatcher.SendEmailCode(ctx, email, emailCode); err != nil {
			utils.Logger.WithError(err).Errorf("Deletion code email dispatch failed for %s", email)
		}
		if err := s.dispatcher.SendSMSCode(ctx, phone, smsCode); err != nil {
			utils.Logger.WithError(err).Errorf("Deletion code SMS dispatch failed for %s", phone)
		}
	}()
}

// ---------------------------------------------------------------------
// ConfirmDeletion
// ---------------------------------------------------------------------
func (s *deletionService) ConfirmDeletion(
	ctx context.Context,
	accountType models.AccountType,
	req dtos.ConfirmDeletionRequest,
) (*dtos.ConfirmDeletionResponse, error) {
	d, err := s.deletionRepo.Get(ctx, req.PendingToken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}
	// A token is only valid on the endpoint of the account type it was
	// issued for. Mismatch is a client bug, same bucket as a wrong proof
	// shape; it does not touch the request state.
	if d.AccountType != accountType {
		return nil, utils.ErrMethodMismatch
	}

	switch d.Status {
	case models.StatusConsumed:
		return nil, utils.ErrAlreadyConsumed
	case models.StatusExpired:
		return nil, utils.ErrExpired
	case models.StatusInvalidated:
		return nil, utils.ErrLocked
	}

	now := time.Now()
	// Expiry is checked before the proof: a valid code on an overdue token
	// still loses.
	if d.Expired(now) {
		if markErr := s.deletionRepo.MarkExpired(ctx, d.Token); markErr != nil {
			utils.Logger.WithError(markErr).Warn("Failed to mark overdue deletion request expired")
		}
		return nil, utils.ErrExpired
	}

	account, err := s.accountRepo.GetByID(ctx, accountType, d.AccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}

	if evalErr := evaluateProof(d, req, account.TOTPSecret, now); evalErr != nil {
		switch {
		case errors.Is(evalErr, utils.ErrMethodMismatch):
			// Wrong proof shape is a client bug, not a guess; it does not
			// count against the attempt budget.
			return nil, evalErr
		case errors.Is(evalErr, utils.ErrExpired):
			if markErr := s.deletionRepo.MarkExpired(ctx, d.Token); markErr != nil {
				utils.Logger.WithError(markErr).Warn("Failed to mark deletion request with lapsed codes expired")
			}
			return nil, evalErr
		default:
			count, status, raErr := s.deletionRepo.RecordFailedAttempt(ctx, d.Token, s.cfg.MaxConfirmAttempts)
			if raErr != nil {
				return nil, raErr
			}
			if count == 0 {
				// Lost a race against a concurrent consume or invalidate.
				return nil, s.terminalStateError(ctx, d.Token)
			}
			if status == models.StatusInvalidated {
				utils.Logger.Warnf("Deletion request for account %s burned after %d failed attempts", d.AccountID, count)
				return nil, utils.ErrLocked
			}
			return nil, utils.ErrInvalidProof
		}
	}

	won, err := s.deletionRepo.Consume(ctx, d.Token)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, s.terminalStateError(ctx, d.Token)
	}

	// The consumed row is the durable record of the transition; the queue
	// hand-off failing does not un-consume the token.
	if qErr := s.queue.Enqueue(ctx, account.Email, accountType); qErr != nil {
		utils.Logger.WithError(qErr).Errorf("Deletion queue hand-off failed for %s", account.Email)
	}

	return &dtos.ConfirmDeletionResponse{
		Message: "Your account deletion request has been received and queued for processing.",
	}, nil
}

// terminalStateError re-reads a token that just lost a race and maps its
// terminal status to the matching domain error.
func (s *deletionService) terminalStateError(ctx context.Context, token string) error {
	d, err := s.deletionRepo.Get(ctx, token)
	if err != nil {
		return utils.ErrNotFound
	}
	switch d.Status {
	case models.StatusConsumed:
		return utils.ErrAlreadyConsumed
	case models.StatusInvalidated:
		return utils.ErrLocked
	case models.StatusExpired:
		return utils.ErrExpired
	}
	return utils.ErrNotFound
}
