package repositories

import (
	"context"
	"time"

	"github.com/prudhvinik1/accountsvc/internal/models"
)

type AccountRepository interface {
	FindByLogin(ctx context.Context, login string) (*models.Account, error)
	ExistsByLogin(ctx context.Context, login string) (bool, error)
	Insert(ctx context.Context, account *models.Account) error
	// Update replaces the stored record if account.Version still matches.
	Update(ctx context.Context, account *models.Account) error
	ListActive(ctx context.Context) ([]*models.Account, error)
	// ListOlderThan returns accounts born on or before cutoff.
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Account, error)
}

// LoginLocker serializes read-check-write sequences per login.
type LoginLocker interface {
	Lock(ctx context.Context, logins ...string) (unlock func(), err error)
}
