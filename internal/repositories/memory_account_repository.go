package repositories

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/deletion-service/internal/models"
)

type memoryAccountRepository struct {
	mu       sync.RWMutex
	accounts []models.Account
}

// NewMemoryAccountRepository creates an in-memory account directory seeded
// with the given accounts. Used by unit tests and local development runs.
func NewMemoryAccountRepository(accounts ...models.Account) AccountRepository {
	return &memoryAccountRepository{accounts: accounts}
}

func (r *memoryAccountRepository) GetByEmail(_ context.Context, accountType models.AccountType, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.accounts {
		a := &r.accounts[i]
		if a.AccountType == accountType && strings.EqualFold(a.Email, email) {
			clone := *a
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryAccountRepository) GetByID(_ context.Context, accountType models.AccountType, id uuid.UUID) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.accounts {
		a := &r.accounts[i]
		if a.AccountType == accountType && a.ID == id {
			clone := *a
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}
