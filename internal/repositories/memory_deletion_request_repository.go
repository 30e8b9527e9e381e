package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/deletion-service/internal/models"
)

// memoryDeletionRequestRepository is a mutex-guarded in-memory implementation
// with the same atomic semantics as the Postgres one. Used by unit tests and
// local development runs without a database.
type memoryDeletionRequestRepository struct {
	mu   sync.Mutex
	byID map[string]*models.DeletionRequest
}

// NewMemoryDeletionRequestRepository creates the in-memory repository.
func NewMemoryDeletionRequestRepository() DeletionRequestRepository {
	return &memoryDeletionRequestRepository{
		byID: make(map[string]*models.DeletionRequest),
	}
}

func (r *memoryDeletionRequestRepository) CreateSuperseding(_ context.Context, req *models.DeletionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.AccountID == req.AccountID && existing.Status == models.StatusPending {
			existing.Status = models.StatusInvalidated
		}
	}

	clone := *req
	r.byID[req.Token] = &clone
	return nil
}

func (r *memoryDeletionRequestRepository) Get(_ context.Context, token string) (*models.DeletionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.byID[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *d
	return &clone, nil
}

func (r *memoryDeletionRequestRepository) Consume(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.byID[token]
	if !ok || d.Status != models.StatusPending {
		return false, nil
	}
	now := time.Now()
	d.Status = models.StatusConsumed
	d.ConsumedAt = &now
	return true, nil
}

func (r *memoryDeletionRequestRepository) RecordFailedAttempt(_ context.Context, token string, maxAttempts int) (int, models.DeletionStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.byID[token]
	if !ok || d.Status != models.StatusPending {
		return 0, "", nil
	}
	d.AttemptCount++
	if d.AttemptCount >= maxAttempts {
		d.Status = models.StatusInvalidated
	}
	return d.AttemptCount, d.Status, nil
}

func (r *memoryDeletionRequestRepository) MarkExpired(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.byID[token]; ok && d.Status == models.StatusPending {
		d.Status = models.StatusExpired
	}
	return nil
}

func (r *memoryDeletionRequestRepository) SweepExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, d := range r.byID {
		if d.Status == models.StatusPending && now.After(d.ExpiresAt) {
			d.Status = models.StatusExpired
			n++
		}
	}
	return n, nil
}

func (r *memoryDeletionRequestRepository) PurgeTerminal(_ context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for token, d := range r.byID {
		if d.Status.IsTerminal() && d.CreatedAt.Before(olderThan) {
			delete(r.byID, token)
			n++
		}
	}
	return n, nil
}

// PendingTokenForAccount returns the live pending token for an account, or
// "" if none. Test helper; not part of DeletionRequestRepository.
func (r *memoryDeletionRequestRepository) PendingTokenForAccount(accountID uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, d := range r.byID {
		if d.AccountID == accountID && d.Status == models.StatusPending {
			return token
		}
	}
	return ""
}
