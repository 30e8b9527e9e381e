package services

import (
	"context"
	"time"

	"github.com/poofware/deletion-service/internal/config"
	"github.com/poofware/deletion-service/internal/repositories"
	"github.com/poofware/deletion-service/internal/utils"
)

// DeletionSweepService handles the periodic storage hygiene for deletion
// requests: flipping overdue pending rows to expired and purging terminal
// rows past the retention window. Sweeping is not the correctness boundary;
// Confirm checks expiry on every read regardless of when the sweep last ran.
type DeletionSweepService interface {
	SweepExpired(ctx context.Context) error
	PurgeDaily(ctx context.Context) error
}

type deletionSweepService struct {
	repo repositories.DeletionRequestRepository
	cfg  *config.Config
}

func NewDeletionSweepService(repo repositories.DeletionRequestRepository, cfg *config.Config) DeletionSweepService {
	return &deletionSweepService{repo: repo, cfg: cfg}
}

// SweepExpired marks all overdue pending requests expired.
func (s *deletionSweepService) SweepExpired(ctx context.Context) error {
	n, err := s.repo.SweepExpired(ctx, time.Now())
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to sweep expired deletion requests")
		return err
	}
	if n > 0 {
		utils.Logger.Infof("Swept %d expired deletion requests", n)
	}
	return nil
}

// PurgeDaily removes terminal deletion requests older than the retention
// window and logs any errors.
func (s *deletionSweepService) PurgeDaily(ctx context.Context) error {
	cutoff := time.Now().Add(-s.cfg.TerminalRetention)
	n, err := s.repo.PurgeTerminal(ctx, cutoff)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to purge terminal deletion requests")
		return err
	}
	utils.Logger.Infof("Daily deletion request purge completed successfully (%d rows).", n)
	return nil
}
