package services

import (
	"context"

	"github.com/poofware/deletion-service/internal/repositories"
	"github.com/poofware/deletion-service/internal/utils"
)

// RateLimitCleanupService removes expired rate limit counter keys from the database.
type RateLimitCleanupService interface {
	CleanupDaily(ctx context.Context) error
}

type rateLimitCleanupService struct {
	repo repositories.RateLimitRepository
}

func NewRateLimitCleanupService(repo repositories.RateLimitRepository) RateLimitCleanupService {
	return &rateLimitCleanupService{repo: repo}
}

// CleanupDaily removes expired rate limit keys and logs any errors.
func (s *rateLimitCleanupService) CleanupDaily(ctx context.Context) error {
	if err := s.repo.CleanupExpired(ctx); err != nil {
		utils.Logger.WithError(err).Error("Failed to cleanup expired rate_limit_attempts")
		return err
	}

	utils.Logger.Info("Daily rate limit counter cleanup completed successfully.")
	return nil
}
