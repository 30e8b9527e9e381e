package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/deletion-service/internal/models"
)

// AccountRepository resolves worker and property-manager accounts by e-mail.
// Read-only: account rows are owned by account-service. GetByEmail returns
// pgx.ErrNoRows when no account matches; callers must not leak that
// distinction to the client.
type AccountRepository interface {
	GetByEmail(ctx context.Context, accountType models.AccountType, email string) (*models.Account, error)
	GetByID(ctx context.Context, accountType models.AccountType, id uuid.UUID) (*models.Account, error)
}

type accountRepository struct {
	db DB
}

// NewAccountRepository creates the Postgres-backed directory lookup.
func NewAccountRepository(db DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) GetByEmail(ctx context.Context, accountType models.AccountType, email string) (*models.Account, error) {
	row := r.db.QueryRow(ctx, `
        SELECT id, email, phone_number, totp_secret
        FROM `+accountTable(accountType)+`
        WHERE email = $1
    `, email)
	return scanAccount(row, accountType)
}

func (r *accountRepository) GetByID(ctx context.Context, accountType models.AccountType, id uuid.UUID) (*models.Account, error) {
	row := r.db.QueryRow(ctx, `
        SELECT id, email, phone_number, totp_secret
        FROM `+accountTable(accountType)+`
        WHERE id = $1
    `, id)
	return scanAccount(row, accountType)
}

func accountTable(accountType models.AccountType) string {
	if accountType == models.AccountTypePropertyManager {
		return "property_managers"
	}
	return "workers"
}

func scanAccount(row pgx.Row, accountType models.AccountType) (*models.Account, error) {
	a := models.Account{AccountType: accountType}
	if err := row.Scan(&a.ID, &a.Email, &a.PhoneNumber, &a.TOTPSecret); err != nil {
		return nil, err
	}
	return &a, nil
}
