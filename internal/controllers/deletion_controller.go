package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/poofware/deletion-service/internal/config"
	"github.com/poofware/deletion-service/internal/dtos"
	"github.com/poofware/deletion-service/internal/models"
	"github.com/poofware/deletion-service/internal/services"
	"github.com/poofware/deletion-service/internal/utils"
)

type DeletionController struct {
	deletionService services.DeletionService
	cfg             *config.Config
}

func NewDeletionController(deletionService services.DeletionService, cfg *config.Config) *DeletionController {
	return &DeletionController{deletionService: deletionService, cfg: cfg}
}

var deletionValidate = validator.New()

// accountTypeFromPath parses the {account_type} path segment, responding
// with a 404 on unknown values.
func accountTypeFromPath(w http.ResponseWriter, r *http.Request) (models.AccountType, bool) {
	accountType, err := models.ParseAccountType(mux.Vars(r)["account_type"])
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound, "Unknown account type", nil, err,
		)
		return "", false
	}
	return accountType, true
}

// ---------------------------------------------------------------------
// InitiateDeletion
// ---------------------------------------------------------------------
func (c *DeletionController) InitiateDeletion(w http.ResponseWriter, r *http.Request) {
	accountType, ok := accountTypeFromPath(w, r)
	if !ok {
		return
	}

	var req dtos.InitiateDeletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := deletionValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid email format", nil, err,
		)
		return
	}

	client := utils.GetClientIdentifier(r)

	resp, err := c.deletionService.InitiateDeletion(r.Context(), accountType, req, client)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrRateLimitExceeded):
			utils.RespondErrorWithCode(
				w, http.StatusTooManyRequests, utils.ErrCodeRateLimitExceeded, "Too many requests. Please try again later.", nil,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to initiate deletion", nil, err,
			)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------
// ConfirmDeletion
// ---------------------------------------------------------------------
func (c *DeletionController) ConfirmDeletion(w http.ResponseWriter, r *http.Request) {
	accountType, ok := accountTypeFromPath(w, r)
	if !ok {
		return
	}

	var req dtos.ConfirmDeletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := deletionValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Missing pending token", nil, err,
		)
		return
	}

	resp, err := c.deletionService.ConfirmDeletion(r.Context(), accountType, req)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrNotFound):
			utils.RespondErrorWithCode(
				w, http.StatusNotFound, utils.ErrCodeNotFound, "No deletion request found for this token", nil,
			)
		case errors.Is(err, utils.ErrExpired):
			utils.RespondErrorWithCode(
				w, http.StatusGone, utils.ErrCodeTokenExpired, "This deletion request has expired. Please start over.", nil,
			)
		case errors.Is(err, utils.ErrAlreadyConsumed):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeAlreadyConsumed, "This deletion request has already been confirmed", nil,
			)
		case errors.Is(err, utils.ErrLocked):
			utils.RespondErrorWithCode(
				w, http.StatusLocked, utils.ErrCodeLockedAccount, "Too many failed attempts. Please start over.", nil,
			)
		case errors.Is(err, utils.ErrMethodMismatch):
			utils.RespondErrorWithCode(
				w, http.StatusUnprocessableEntity, utils.ErrCodeMethodMismatch, "Submitted proof does not match the required verification method", nil,
			)
		case errors.Is(err, utils.ErrInvalidProof):
			utils.RespondErrorWithCode(
				w, http.StatusUnauthorized, utils.ErrCodeInvalidProof, "Verification failed", nil,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to confirm deletion", nil, err,
			)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}
