package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/deletion-service/internal/models"
)

// DeletionRequestRepository is the durable map from pending token to
// deletion-request record. All mutating operations are atomic per token
// (consume, attempt accounting) or per account (supersede-and-create), so
// the single-live-token and exactly-once-consume invariants hold under
// concurrent calls.
//
// Backing table:
//
//	CREATE TABLE deletion_requests (
//	    token           TEXT PRIMARY KEY,
//	    account_id      UUID NOT NULL,
//	    account_type    TEXT NOT NULL,
//	    method          TEXT NOT NULL,
//	    email_code      TEXT NOT NULL DEFAULT '',
//	    sms_code        TEXT NOT NULL DEFAULT '',
//	    codes_expire_at TIMESTAMPTZ,
//	    status          TEXT NOT NULL DEFAULT 'pending',
//	    attempt_count   INT  NOT NULL DEFAULT 0,
//	    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    expires_at      TIMESTAMPTZ NOT NULL,
//	    consumed_at     TIMESTAMPTZ
//	);
//	CREATE UNIQUE INDEX deletion_requests_one_pending
//	    ON deletion_requests (account_id) WHERE status = 'pending';
type DeletionRequestRepository interface {
	// CreateSuperseding invalidates any live pending request for the
	// account and inserts the new record, as one atomic step.
	CreateSuperseding(ctx context.Context, req *models.DeletionRequest) error
	Get(ctx context.Context, token string) (*models.DeletionRequest, error)
	// Consume flips pending -> consumed. Returns true only for the single
	// caller that wins the transition.
	Consume(ctx context.Context, token string) (bool, error)
	// RecordFailedAttempt increments attempt_count and burns the token
	// (status -> invalidated) once maxAttempts is reached. Returns the new
	// count and resulting status. A no-op on non-pending rows.
	RecordFailedAttempt(ctx context.Context, token string, maxAttempts int) (int, models.DeletionStatus, error)
	// MarkExpired lazily flips an overdue pending row to expired.
	MarkExpired(ctx context.Context, token string) error
	// SweepExpired marks all overdue pending rows expired (storage hygiene;
	// the lazy check above is the correctness boundary).
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
	// PurgeTerminal removes terminal rows past the retention window.
	PurgeTerminal(ctx context.Context, olderThan time.Time) (int64, error)
}

type deletionRequestRepository struct {
	db DB
}

// NewDeletionRequestRepository creates the Postgres-backed repository.
func NewDeletionRequestRepository(db DB) DeletionRequestRepository {
	return &deletionRequestRepository{db: db}
}

const deletionRequestColumns = `
    token, account_id, account_type, method,
    email_code, sms_code, codes_expire_at,
    status, attempt_count, created_at, expires_at, consumed_at
`

func (r *deletionRequestRepository) CreateSuperseding(ctx context.Context, req *models.DeletionRequest) error {
	// One retry: a concurrent initiate can slip its INSERT between our
	// UPDATE and INSERT, tripping the partial unique index (23505).
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		lastErr = r.createSupersedingOnce(ctx, req)
		if lastErr == nil {
			return nil
		}
		var pgErr *pgconn.PgError
		if !errors.As(lastErr, &pgErr) || pgErr.Code != "23505" {
			return lastErr
		}
	}
	return lastErr
}

func (r *deletionRequestRepository) createSupersedingOnce(ctx context.Context, req *models.DeletionRequest) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        UPDATE deletion_requests
        SET status = 'invalidated'
        WHERE account_id = $1 AND status = 'pending'
    `, req.AccountID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO deletion_requests (
            token, account_id, account_type, method,
            email_code, sms_code, codes_expire_at,
            status, attempt_count, created_at, expires_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', 0, $8, $9)
    `,
		req.Token, req.AccountID, req.AccountType, req.Method,
		req.EmailCode, req.SMSCode, req.CodesExpireAt,
		req.CreatedAt, req.ExpiresAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *deletionRequestRepository) Get(ctx context.Context, token string) (*models.DeletionRequest, error) {
	row := r.db.QueryRow(ctx, `
        SELECT `+deletionRequestColumns+`
        FROM deletion_requests
        WHERE token = $1
    `, token)

	var d models.DeletionRequest
	err := row.Scan(
		&d.Token, &d.AccountID, &d.AccountType, &d.Method,
		&d.EmailCode, &d.SMSCode, &d.CodesExpireAt,
		&d.Status, &d.AttemptCount, &d.CreatedAt, &d.ExpiresAt, &d.ConsumedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deletionRequestRepository) Consume(ctx context.Context, token string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE deletion_requests
        SET status = 'consumed', consumed_at = NOW()
        WHERE token = $1 AND status = 'pending'
    `, token)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *deletionRequestRepository) RecordFailedAttempt(ctx context.Context, token string, maxAttempts int) (int, models.DeletionStatus, error) {
	row := r.db.QueryRow(ctx, `
        UPDATE deletion_requests
        SET attempt_count = attempt_count + 1,
            status = CASE
                WHEN attempt_count + 1 >= $2 THEN 'invalidated'
                ELSE status
            END
        WHERE token = $1 AND status = 'pending'
        RETURNING attempt_count, status
    `, token, maxAttempts)

	var count int
	var status models.DeletionStatus
	if err := row.Scan(&count, &status); err != nil {
		if err == pgx.ErrNoRows {
			// Lost a race against consume/invalidate; caller re-reads.
			return 0, "", nil
		}
		return 0, "", err
	}
	return count, status, nil
}

func (r *deletionRequestRepository) MarkExpired(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `
        UPDATE deletion_requests
        SET status = 'expired'
        WHERE token = $1 AND status = 'pending'
    `, token)
	return err
}

func (r *deletionRequestRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE deletion_requests
        SET status = 'expired'
        WHERE status = 'pending' AND expires_at < $1
    `, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *deletionRequestRepository) PurgeTerminal(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
        DELETE FROM deletion_requests
        WHERE status IN ('consumed', 'expired', 'invalidated')
          AND created_at < $1
    `, olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
