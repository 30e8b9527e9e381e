package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/require"

	"github.com/poofware/deletion-service/internal/models"
)

func newPendingRequest(accountID uuid.UUID, ttl time.Duration) *models.DeletionRequest {
	now := time.Now()
	return &models.DeletionRequest{
		Token:         uuid.NewString(),
		AccountID:     accountID,
		AccountType:   models.AccountTypeWorker,
		Method:        models.MethodDualCode,
		EmailCode:     "123456",
		SMSCode:       "654321",
		CodesExpireAt: now.Add(5 * time.Minute),
		Status:        models.StatusPending,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}
}

func TestGetUnknownTokenReturnsNoRows(t *testing.T) {
	repo := NewMemoryDeletionRequestRepository()
	_, err := repo.Get(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestCreateSupersedingInvalidatesPrior(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDeletionRequestRepository()
	accountID := uuid.New()

	first := newPendingRequest(accountID, 15*time.Minute)
	require.NoError(t, repo.CreateSuperseding(ctx, first))

	second := newPendingRequest(accountID, 15*time.Minute)
	require.NoError(t, repo.CreateSuperseding(ctx, second))

	got, err := repo.Get(ctx, first.Token)
	require.NoError(t, err)
	require.Equal(t, models.StatusInvalidated, got.Status)

	got, err = repo.Get(ctx, second.Token)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, got.Status)
}

func TestCreateSupersedingLeavesOtherAccountsAlone(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDeletionRequestRepository()

	other := newPendingRequest(uuid.New(), 15*time.Minute)
	require.NoError(t, repo.CreateSuperseding(ctx, other))
	require.NoError(t, repo.CreateSuperseding(ctx, newPendingRequest(uuid.New(), 15*time.Minute)))

	got, err := repo.Get(ctx, other.Token)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, got.Status)
}

func TestConsumeIsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDeletionRequestRepository()
	req := newPendingRequest(uuid.New(), 15*time.Minute)
	require.NoError(t, repo.CreateSuperseding(ctx, req))

	const racers = 32
	var wg sync.WaitGroup
	wins := make([]bool, racers)

	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func(i int) {
			defer wg.Done()
			won, _ := repo.Consume(ctx, req.Token)
			wins[i] = won
		}(i)
	}
	wg.Wait()

	var count int
	for _, won := range wins {
		if won {
			count++
		}
	}
	require.Equal(t, 1, count)

	got, err := repo.Get(ctx, req.Token)
	require.NoError(t, err)
	require.Equal(t, models.StatusConsumed, got.Status)
	require.NotNil(t, got.ConsumedAt)
}

func TestConsumeNonPendingFails(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDeletionRequestRepository()
	req := newPendingRequest(uuid.New(), 15*time.Minute)
	require.NoError(t, repo.CreateSuperseding(ctx, req))
	require.NoError(t, repo.MarkExpired(ctx, req.Token))

	won, err := repo.Consume(ctx, req.Token)
	require.NoError(t, err)
	require.False(t, won)
}

func TestRecordFailedAttemptBurnsAtThreshold(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDeletionRequestRepository()
	req := newPendingRequest(uuid.New(), 15*time.Minute)
	require.NoError(t, repo.CreateSuperseding(ctx, req))

	const maxAttempts = 3
	for i := 1; i < maxAttempts; i++ {
		count, status, err := repo.RecordFailedAttempt(ctx, req.Token, maxAttempts)
		require.NoError(t, err)
		require.Equal(t, i, count)
		require.Equal(t, models.StatusPending, status)
	}

	count, status, err := repo.RecordFailedAttempt(ctx, req.Token, maxAttempts)
	require.NoError(t, err)
	require.Equal(t, maxAttempts, count)
	require.Equal(t, models.StatusInvalidated, status)

	// burned token is no longer pending; further attempts are no-ops
	count, status, err = repo.RecordFailedAttempt(ctx, req.Token, maxAttempts)
	require.NoError(t, err)
	require.Zero(t, count)
	require.Empty(t, status)
}

func TestMarkExpiredOnlyTouchesPending(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDeletionRequestRepository()
	req := newPendingRequest(uuid.New(), 15*time.Minute)
	require.NoError(t, repo.CreateSuperseding(ctx, req))

	won, err := repo.Consume(ctx, req.Token)
	require.NoError(t, err)
	require.True(t, won)

	require.NoError(t, repo.MarkExpired(ctx, req.Token))

	got, err := repo.Get(ctx, req.Token)
	require.NoError(t, err)
	require.Equal(t, models.StatusConsumed, got.Status)
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDeletionRequestRepository()

	overdue := newPendingRequest(uuid.New(), -time.Minute)
	live := newPendingRequest(uuid.New(), 15*time.Minute)
	require.NoError(t, repo.CreateSuperseding(ctx, overdue))
	require.NoError(t, repo.CreateSuperseding(ctx, live))

	n, err := repo.SweepExpired(ctx, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := repo.Get(ctx, overdue.Token)
	require.NoError(t, err)
	require.Equal(t, models.StatusExpired, got.Status)

	got, err = repo.Get(ctx, live.Token)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, got.Status)
}

func TestPurgeTerminalHonorsRetention(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDeletionRequestRepository()

	old := newPendingRequest(uuid.New(), 15*time.Minute)
	old.CreatedAt = time.Now().Add(-40 * 24 * time.Hour)
	require.NoError(t, repo.CreateSuperseding(ctx, old))
	won, err := repo.Consume(ctx, old.Token)
	require.NoError(t, err)
	require.True(t, won)

	recent := newPendingRequest(uuid.New(), 15*time.Minute)
	require.NoError(t, repo.CreateSuperseding(ctx, recent))
	won, err = repo.Consume(ctx, recent.Token)
	require.NoError(t, err)
	require.True(t, won)

	stillPending := newPendingRequest(uuid.New(), 15*time.Minute)
	stillPending.CreatedAt = time.Now().Add(-40 * 24 * time.Hour)
	require.NoError(t, repo.CreateSuperseding(ctx, stillPending))

	n, err := repo.PurgeTerminal(ctx, time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = repo.Get(ctx, old.Token)
	require.ErrorIs(t, err, pgx.ErrNoRows)

	// recent terminal row and old pending row both survive
	_, err = repo.Get(ctx, recent.Token)
	require.NoError(t, err)
	_, err = repo.Get(ctx, stillPending.Token)
	require.NoError(t, err)
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDeletionRequestRepository()
	req := newPendingRequest(uuid.New(), 15*time.Minute)
	require.NoError(t, repo.CreateSuperseding(ctx, req))

	got, err := repo.Get(ctx, req.Token)
	require.NoError(t, err)
	got.Status = models.StatusConsumed

	again, err := repo.Get(ctx, req.Token)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, again.Status)
}
