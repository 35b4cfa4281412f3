package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prudhvinik1/accountsvc/internal/models"
	"github.com/prudhvinik1/accountsvc/internal/repositories"
	"github.com/prudhvinik1/accountsvc/internal/utils"
	"go.uber.org/zap"
)

const (
	AdminLogin  = "Admin"
	adminName   = "InitialAdmin"
	SystemActor = "System"
)

// SeedAdmin creates the initial admin account unless it already exists.
// It reports whether an account was inserted.
func SeedAdmin(
	ctx context.Context,
	repo repositories.AccountRepository,
	hasher *utils.PasswordHasher,
	password string,
	now time.Time,
	logger *zap.Logger,
) (bool, error) {
	exists, err := repo.ExistsByLogin(ctx, AdminLogin)
	if err != nil {
		return false, fmt.Errorf("failed to check admin account: %w", err)
	}
	if exists {
		logger.Debug("admin account already present", zap.String("login", AdminLogin))
		return false, nil
	}

	now = now.UTC()
	seedDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	account := &models.Account{
		ID:        uuid.New(),
		Login:     AdminLogin,
		Name:      adminName,
		Gender:    models.GenderUnknown,
		BirthDay:  &seedDay,
		Admin:     true,
		CreatedOn: now,
		CreatedBy: SystemActor,
	}
	account.PasswordHash, err = hasher.Hash(password, account.ID)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	err = repo.Insert(ctx, account)
	if errors.Is(err, repositories.ErrLoginTaken) {
		// another replica won the race
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to seed admin account: %w", err)
	}

	logger.Info("seeded admin account", zap.String("login", AdminLogin))
	return true, nil
}
