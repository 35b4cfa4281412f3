package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prudhvinik1/accountsvc/internal/models"
)

// MemoryAccountRepository keeps accounts in process memory. It enforces the
// same uniqueness and versioning rules as the Postgres store.
type MemoryAccountRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.Account
	byLogin map[string]uuid.UUID
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		byID:    make(map[uuid.UUID]*models.Account),
		byLogin: make(map[string]uuid.UUID),
	}
}

func (r *MemoryAccountRepository) FindByLogin(ctx context.Context, login string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byLogin[login]
	if !ok {
		return nil, ErrNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *MemoryAccountRepository) ExistsByLogin(ctx context.Context, login string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byLogin[login]
	return ok, nil
}

func (r *MemoryAccountRepository) Insert(ctx context.Context, account *models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byLogin[account.Login]; taken {
		return ErrLoginTaken
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.Version = 1

	r.byID[account.ID] = account.Clone()
	r.byLogin[account.Login] = account.ID
	return nil
}

func (r *MemoryAccountRepository) Update(ctx context.Context, account *models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[account.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Version != account.Version {
		return ErrVersionConflict
	}
	if account.Login != current.Login {
		if _, taken := r.byLogin[account.Login]; taken {
			return ErrLoginTaken
		}
	}

	next := account.Clone()
	// admin and creation provenance are immutable after insert
	next.Admin = current.Admin
	next.CreatedOn = current.CreatedOn
	next.CreatedBy = current.CreatedBy
	next.Version = current.Version + 1

	delete(r.byLogin, current.Login)
	r.byLogin[next.Login] = next.ID
	r.byID[next.ID] = next

	account.Version = next.Version
	return nil
}

func (r *MemoryAccountRepository) ListActive(ctx context.Context) ([]*models.Account, error) {
	return r.filter(ctx, func(a *models.Account) bool {
		return a.IsActive()
	})
}

func (r *MemoryAccountRepository) ListOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Account, error) {
	return r.filter(ctx, func(a *models.Account) bool {
		return a.BirthDay != nil && !a.BirthDay.After(cutoff)
	})
}

func (r *MemoryAccountRepository) filter(ctx context.Context, keep func(*models.Account) bool) ([]*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]*models.Account, 0, len(r.byID))
	for _, a := range r.byID {
		if keep(a) {
			accounts = append(accounts, a.Clone())
		}
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		if accounts[i].CreatedOn.Equal(accounts[j].CreatedOn) {
			return accounts[i].Login < accounts[j].Login
		}
		return accounts[i].CreatedOn.Before(accounts[j].CreatedOn)
	})
	return accounts, nil
}
