package services

import (
	"context"
	"fmt"

	"github.com/poofware/deletion-service/internal/config"
	"github.com/poofware/deletion-service/internal/repositories"
	"github.com/poofware/deletion-service/internal/utils"
)

// RateLimiterService provides a high-level interface for checking various rate limits.
type RateLimiterService interface {
	CheckSMSRateLimits(ctx context.Context, clientID, phoneNumber string) error
	CheckEmailRateLimits(ctx context.Context, clientID, emailAddress string) error
}

type rateLimiterService struct {
	repo repositories.RateLimitRepository
	cfg  *config.Config
}

func NewRateLimiterService(repo repositories.RateLimitRepository, cfg *config.Config) RateLimiterService {
	return &rateLimiterService{repo: repo, cfg: cfg}
}

// CheckSMSRateLimits checks global, per-client, and per-phone-number limits for SMS sends.
func (s *rateLimiterService) CheckSMSRateLimits(ctx context.Context, clientID, phoneNumber string) error {
	// 1. Global limit
	globalKey := "sms:global"
	allowed, err := s.repo.IncrementAndCheck(ctx, globalKey, s.cfg.GlobalSMSLimitPerHour, s.cfg.RateLimitWindow)
	if err != nil {
		return err
	}
	if !allowed {
		utils.Logger.Warnf("Global SMS rate limit exceeded (key: %s)", globalKey)
		return utils.ErrRateLimitExceeded
	}

	// 2. Per-client limit
	clientKey := fmt.Sprintf("sms:client:%s", clientID)
	allowed, err = s.repo.IncrementAndCheck(ctx, clientKey, s.cfg.SMSLimitPerClientPerHour, s.cfg.RateLimitWindow)
	if err != nil {
		return err
	}
	if !allowed {
		utils.Logger.Warnf("Per-client SMS rate limit exceeded (key: %s)", clientKey)
		return utils.ErrRateLimitExceeded
	}

	// 3. Per-destination limit
	phoneKey := fmt.Sprintf("sms:phone:%s", phoneNumber)
	allowed, err = s.repo.IncrementAndCheck(ctx, phoneKey, s.cfg.SMSLimitPerNumberPerHour, s.cfg.RateLimitWindow)
	if err != nil {
		return err
	}
	if !allowed {
		utils.Logger.Warnf("Per-phone SMS rate limit exceeded (key: %s)", phoneKey)
		return utils.ErrRateLimitExceeded
	}

	return nil
}

// CheckEmailRateLimits checks global, per-client, and per-email limits for email sends.
func (s *rateLimiterService) CheckEmailRateLimits(ctx context.Context, clientID, emailAddress string) error {
	// 1. Global limit
	globalKey := "email:global"
	allowed, err := s.repo.IncrementAndCheck(ctx, globalKey, s.cfg.GlobalEmailLimitPerHour, s.cfg.RateLimitWindow)
	if err != nil {
		return err
	}
	if !allowed {
		utils.Logger.Warnf("Global email rate limit exceeded (key: %s)", globalKey)
		return utils.ErrRateLimitExceeded
	}

	// 2. Per-client limit
	clientKey := fmt.Sprintf("email:client:%s", clientID)
	allowed, err = s.repo.IncrementAndCheck(ctx, clientKey, s.cfg.EmailLimitPerClientPerHour, s.cfg.RateLimitWindow)
	if err != nil {
		return err
	}
	if !allowed {
		utils.Logger.Warnf("Per-client email rate limit exceeded (key: %s)", clientKey)
		return utils.ErrRateLimitExceeded
	}

	// 3. Per-destination limit
	emailKey := fmt.Sprintf("email:address:%s", emailAddress)
	allowed, err = s.repo.IncrementAndCheck(ctx, emailKey, s.cfg.EmailLimitPerAddressPerHour, s.cfg.RateLimitWindow)
	if err != nil {
		return err
	}
	if !allowed {
		utils.Logger.Warnf("Per-email rate limit exceeded (key: %s)", emailKey)
		return utils.ErrRateLimitExceeded
	}

	return nil
}
