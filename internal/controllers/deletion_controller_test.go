package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/poofware/deletion-service/internal/config"
	"github.com/poofware/deletion-service/internal/dtos"
	"github.com/poofware/deletion-service/internal/models"
	"github.com/poofware/deletion-service/internal/repositories"
	"github.com/poofware/deletion-service/internal/routes"
	"github.com/poofware/deletion-service/internal/services"
	"github.com/poofware/deletion-service/internal/utils"
)

type noopDispatcher struct{}

func (noopDispatcher) SendEmailCode(context.Context, string, string) error { return nil }
func (noopDispatcher) SendSMSCode(context.Context, string, string) error   { return nil }

type noopQueue struct{}

func (noopQueue) Enqueue(context.Context, string, models.AccountType) error { return nil }

func newTestRouter(accounts ...models.Account) *mux.Router {
	cfg := &config.Config{
		OrganizationName:       utils.OrganizationName,
		AppName:                "deletion-service",
		AppUrl:                 "https://app.test",
		PendingTokenExpiry:     config.DefaultPendingTokenExpiry,
		VerificationCodeExpiry: config.DefaultVerificationCodeExpiry,
		VerificationCodeLength: config.VerificationCodeLength,
		MaxConfirmAttempts:     config.MaxConfirmAttempts,
		TerminalRetention:      config.DefaultTerminalRetention,

		SMSLimitPerClientPerHour:    1000,
		SMSLimitPerNumberPerHour:    1000,
		GlobalSMSLimitPerHour:       100000,
		EmailLimitPerClientPerHour:  1000,
		EmailLimitPerAddressPerHour: 1000,
		GlobalEmailLimitPerHour:     100000,
		RateLimitWindow:             time.Hour,

		LDFlag_AcceptFakePhonesEmails: true,
	}

	rateLimiter := services.NewRateLimiterService(repositories.NewMemoryRateLimitRepository(), cfg)
	svc := services.NewDeletionService(
		repositories.NewMemoryDeletionRequestRepository(),
		repositories.NewMemoryAccountRepository(accounts...),
		rateLimiter,
		noopDispatcher{},
		noopQueue{},
		cfg,
	)
	ctrl := NewDeletionController(svc, cfg)

	router := mux.NewRouter()
	router.HandleFunc(routes.InitiateDeletion, ctrl.InitiateDeletion).Methods("POST")
	router.HandleFunc(routes.ConfirmDeletion, ctrl.ConfirmDeletion).Methods("POST")
	return router
}

func testWorkerAccount() models.Account {
	phone := utils.TestPhoneNumberBase + "987654321"
	return models.Account{
		ID:          uuid.New(),
		AccountType: models.AccountTypeWorker,
		Email:       "7" + utils.TestEmailSuffix,
		PhoneNumber: &phone,
	}
}

func doJSON(t *testing.T, router *mux.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var body utils.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestDeletionEndpointsHappyPath(t *testing.T) {
	worker := testWorkerAccount()
	router := newTestRouter(worker)

	rec := doJSON(t, router, "/auth/v1/worker/initiate-deletion", dtos.InitiateDeletionRequest{Email: worker.Email})
	require.Equal(t, http.StatusOK, rec.Code)

	var initResp dtos.InitiateDeletionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&initResp))
	require.NotEmpty(t, initResp.PendingToken)
	require.Equal(t, "worker", initResp.AccountType)
	require.Equal(t, string(models.MethodDualCode), initResp.Method)
	require.Contains(t, initResp.ConfirmURL, "pending_token="+initResp.PendingToken)

	emailCode := services.TestEmailCode
	smsCode := services.TestPhoneCode
	rec = doJSON(t, router, "/auth/v1/worker/confirm-deletion", dtos.ConfirmDeletionRequest{
		PendingToken: initResp.PendingToken,
		EmailCode:    &emailCode,
		SMSCode:      &smsCode,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var confirmResp dtos.ConfirmDeletionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&confirmResp))
	require.NotEmpty(t, confirmResp.Message)

	// replay of the consumed token
	rec = doJSON(t, router, "/auth/v1/worker/confirm-deletion", dtos.ConfirmDeletionRequest{
		PendingToken: initResp.PendingToken,
		EmailCode:    &emailCode,
		SMSCode:      &smsCode,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, utils.ErrCodeAlreadyConsumed, decodeError(t, rec).Code)
}

func TestUnknownAccountTypeIs404(t *testing.T) {
	router := newTestRouter(testWorkerAccount())

	rec := doJSON(t, router, "/auth/v1/admin/initiate-deletion", dtos.InitiateDeletionRequest{Email: "x@y.com"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, utils.ErrCodeNotFound, decodeError(t, rec).Code)
}

func TestInitiateRejectsBadPayloads(t *testing.T) {
	router := newTestRouter(testWorkerAccount())

	req := httptest.NewRequest(http.MethodPost, "/auth/v1/worker/initiate-deletion", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, utils.ErrCodeInvalidPayload, decodeError(t, rec).Code)

	rec = doJSON(t, router, "/auth/v1/worker/initiate-deletion", dtos.InitiateDeletionRequest{Email: "not-an-email"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, utils.ErrCodeValidation, decodeError(t, rec).Code)
}

func TestConfirmRejectsMissingToken(t *testing.T) {
	router := newTestRouter(testWorkerAccount())

	rec := doJSON(t, router, "/auth/v1/worker/confirm-deletion", dtos.ConfirmDeletionRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, utils.ErrCodeValidation, decodeError(t, rec).Code)
}

func TestConfirmUnknownTokenIs404(t *testing.T) {
	router := newTestRouter(testWorkerAccount())

	emailCode := services.TestEmailCode
	smsCode := services.TestPhoneCode
	rec := doJSON(t, router, "/auth/v1/worker/confirm-deletion", dtos.ConfirmDeletionRequest{
		PendingToken: uuid.NewString(),
		EmailCode:    &emailCode,
		SMSCode:      &smsCode,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, utils.ErrCodeNotFound, decodeError(t, rec).Code)
}

func TestConfirmWrongCodesIs401ThenLocks(t *testing.T) {
	worker := testWorkerAccount()
	router := newTestRouter(worker)

	rec := doJSON(t, router, "/auth/v1/worker/initiate-deletion", dtos.InitiateDeletionRequest{Email: worker.Email})
	require.Equal(t, http.StatusOK, rec.Code)
	var initResp dtos.InitiateDeletionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&initResp))

	bad := "000000"
	confirmBody := dtos.ConfirmDeletionRequest{
		PendingToken: initResp.PendingToken,
		EmailCode:    &bad,
		SMSCode:      &bad,
	}

	for i := 1; i < config.MaxConfirmAttempts; i++ {
		rec = doJSON(t, router, "/auth/v1/worker/confirm-deletion", confirmBody)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, utils.ErrCodeInvalidProof, decodeError(t, rec).Code)
	}

	rec = doJSON(t, router, "/auth/v1/worker/confirm-deletion", confirmBody)
	require.Equal(t, http.StatusLocked, rec.Code)
	require.Equal(t, utils.ErrCodeLockedAccount, decodeError(t, rec).Code)
}

func TestConfirmWrongShapeIs422(t *testing.T) {
	worker := testWorkerAccount()
	router := newTestRouter(worker)

	rec := doJSON(t, router, "/auth/v1/worker/initiate-deletion", dtos.InitiateDeletionRequest{Email: worker.Email})
	require.Equal(t, http.StatusOK, rec.Code)
	var initResp dtos.InitiateDeletionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&initResp))

	// TOTP proof against a dual-code request
	code := "123456"
	rec = doJSON(t, router, "/auth/v1/worker/confirm-deletion", dtos.ConfirmDeletionRequest{
		PendingToken: initResp.PendingToken,
		TOTPCode:     &code,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, utils.ErrCodeMethodMismatch, decodeError(t, rec).Code)
}
