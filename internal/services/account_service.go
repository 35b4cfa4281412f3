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

type AccountService struct {
	repo   repositories.AccountRepository
	locker repositories.LoginLocker
	hasher *utils.PasswordHasher
	logger *zap.Logger
	now    func() time.Time
}

func NewAccountService(
	repo repositories.AccountRepository,
	locker repositories.LoginLocker,
	hasher *utils.PasswordHasher,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		repo:   repo,
		locker: locker,
		hasher: hasher,
		logger: logger.Named("accounts"),
		now:    time.Now,
	}
}

func (s *AccountService) Create(ctx context.Context, principal *Principal, req models.CreateAccountRequest) (*models.Account, error) {
	actor, fields, err := s.authorize(ctx, principal, OpCreate, req.Login, req.Admin != nil)
	if err != nil {
		return nil, err
	}
	if err := models.Validate(req); err != nil {
		return nil, invalidArgument(err)
	}

	unlock, err := s.locker.Lock(ctx, req.Login)
	if err != nil {
		return nil, storeError(err)
	}
	defer unlock()

	exists, err := s.repo.ExistsByLogin(ctx, req.Login)
	if err != nil {
		return nil, fmt.Errorf("failed to check login: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: login already exists", ErrConflict)
	}

	account := &models.Account{
		ID:        uuid.New(),
		Login:     req.Login,
		Name:      req.Name,
		Gender:    req.GenderOrDefault(),
		BirthDay:  req.BirthDay,
		CreatedOn: s.now().UTC(),
		CreatedBy: actor.Login,
	}
	if fields.Has(FieldAdmin) && req.Admin != nil {
		account.Admin = *req.Admin
	}

	account.PasswordHash, err = s.hasher.Hash(req.Password, account.ID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, account); err != nil {
		return nil, storeError(err)
	}

	s.logger.Info("account created",
		zap.String("login", account.Login),
		zap.Bool("admin", account.Admin),
		zap.String("by", actor.Login),
	)
	return account, nil
}

func (s *AccountService) UpdateInfo(ctx context.Context, principal *Principal, target string, req models.UpdateInfoRequest) (*models.Account, error) {
	actor, fields, err := s.authorize(ctx, principal, OpUpdateInfo, target, false)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, invalidArgument(err)
	}

	var updated *models.Account
	err = s.mutate(ctx, []string{target}, target, func(account *models.Account) (bool, error) {
		if name, ok := req.Name.Get(); ok && fields.Has(FieldName) {
			account.Name = name
		}
		if gender, ok := req.Gender.Get(); ok && fields.Has(FieldGender) {
			account.Gender = gender
		}
		if birthDay, ok := req.BirthDay.Get(); ok && fields.Has(FieldBirthDay) {
			account.BirthDay = &birthDay
		}
		account.StampModified(actor.Login, s.now().UTC())
		updated = account
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, principal *Principal, target string, req models.UpdatePasswordRequest) error {
	actor, _, err := s.authorize(ctx, principal, OpChangePassword, target, false)
	if err != nil {
		return err
	}
	if err := models.Validate(req); err != nil {
		return invalidArgument(err)
	}

	return s.mutate(ctx, []string{target}, target, func(account *models.Account) (bool, error) {
		hash, err := s.hasher.Hash(req.NewPassword, account.ID)
		if err != nil {
			return false, err
		}
		account.PasswordHash = hash
		account.StampModified(actor.Login, s.now().UTC())
		return true, nil
	})
}

func (s *AccountService) ChangeLogin(ctx context.Context, principal *Principal, oldLogin string, req models.UpdateLoginRequest) error {
	actor, _, err := s.authorize(ctx, principal, OpChangeLogin, oldLogin, false)
	if err != nil {
		return err
	}
	if err := models.Validate(req); err != nil {
		return invalidArgument(err)
	}

	return s.mutate(ctx, []string{oldLogin, req.NewLogin}, oldLogin, func(account *models.Account) (bool, error) {
		if req.NewLogin == account.Login {
			return false, nil
		}

		exists, err := s.repo.ExistsByLogin(ctx, req.NewLogin)
		if err != nil {
			return false, fmt.Errorf("failed to check login: %w", err)
		}
		if exists {
			return false, fmt.Errorf("%w: login already exists", ErrConflict)
		}

		account.Login = req.NewLogin
		account.StampModified(actor.Login, s.now().UTC())
		return true, nil
	})
}

// SoftDelete revokes the account. Revoking a revoked account is a no-op.
func (s *AccountService) SoftDelete(ctx context.Context, principal *Principal, target string) error {
	actor, _, err := s.authorize(ctx, principal, OpSoftDelete, target, false)
	if err != nil {
		return err
	}

	return s.mutate(ctx, []string{target}, target, func(account *models.Account) (bool, error) {
		if !account.IsActive() {
			return false, nil
		}
		account.Revoke(actor.Login, s.now().UTC())
		return true, nil
	})
}

// Restore reinstates a revoked account. Restoring an active account is a no-op.
func (s *AccountService) Restore(ctx context.Context, principal *Principal, target string) error {
	actor, _, err := s.authorize(ctx, principal, OpRestore, target, false)
	if err != nil {
		return err
	}

	return s.mutate(ctx, []string{target}, target, func(account *models.Account) (bool, error) {
		if account.IsActive() {
			return false, nil
		}
		account.Reinstate()
		account.StampModified(actor.Login, s.now().UTC())
		return true, nil
	})
}

func (s *AccountService) ListActive(ctx context.Context, principal *Principal) ([]*models.Account, error) {
	if _, _, err := s.authorize(ctx, principal, OpListActive, "", false); err != nil {
		return nil, err
	}

	accounts, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) GetByLogin(ctx context.Context, principal *Principal, login string) (*models.AccountProfile, error) {
	if _, _, err := s.authorize(ctx, principal, OpGetByLogin, login, false); err != nil {
		return nil, err
	}

	account, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		return nil, storeError(err)
	}

	return &models.AccountProfile{
		Name:     account.Name,
		Gender:   account.Gender,
		BirthDay: account.BirthDay,
		IsActive: account.IsActive(),
	}, nil
}

// AuthenticateSelf re-checks the caller's own password. Every failure after
// the deactivation check reports ErrInvalidCredentials.
func (s *AccountService) AuthenticateSelf(ctx context.Context, principal *Principal, login, password string) (*models.SelfProfile, error) {
	actor, _, err := s.authorize(ctx, principal, OpAuthenticateSelf, login, false)
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(actor.PasswordHash, password, actor.ID).OK() {
		return nil, ErrInvalidCredentials
	}

	return &models.SelfProfile{
		Name:     actor.Name,
		Gender:   actor.Gender,
		BirthDay: actor.BirthDay,
	}, nil
}

// ListOlderThan returns accounts born at least age years before today.
func (s *AccountService) ListOlderThan(ctx context.Context, principal *Principal, age int) ([]*models.Account, error) {
	if _, _, err := s.authorize(ctx, principal, OpListOlderThan, "", false); err != nil {
		return nil, err
	}
	if age < 0 {
		return nil, fmt.Errorf("%w: age must not be negative", ErrInvalidArgument)
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := today.AddDate(-age, 0, 0)

	accounts, err := s.repo.ListOlderThan(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// loadPrincipal resolves the acting account. The login must still belong to
// the account the token was issued for; a renamed or reassigned login is
// unauthenticated.
func (s *AccountService) loadPrincipal(ctx context.Context, principal *Principal) (*models.Account, error) {
	if principal == nil || principal.Login == "" {
		return nil, ErrUnauthenticated
	}
	account, err := s.repo.FindByLogin(ctx, principal.Login)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load principal: %w", err)
	}
	if account.ID != principal.AccountID {
		s.logger.Debug("token subject does not own login",
			zap.String("login", principal.Login),
			zap.Stringer("subject", principal.AccountID),
		)
		return nil, ErrUnauthenticated
	}
	return account, nil
}

func (s *AccountService) authorize(ctx context.Context, principal *Principal, op Operation, target string, setsAdmin bool) (*models.Account, FieldSet, error) {
	actor, err := s.loadPrincipal(ctx, principal)
	if err != nil {
		return nil, FieldNone, err
	}

	fields, err := Authorize(AccessRequest{
		Principal:   actor,
		Operation:   op,
		TargetLogin: target,
		SetsAdmin:   setsAdmin,
	})
	if err != nil {
		s.logger.Debug("access denied",
			zap.String("principal", actor.Login),
			zap.Stringer("operation", op),
			zap.String("target", target),
			zap.Error(err),
		)
		return nil, FieldNone, err
	}
	return actor, fields, nil
}

// mutate runs a read-modify-write on target while holding the login locks.
// apply returns false to skip the write.
func (s *AccountService) mutate(ctx context.Context, logins []string, target string, apply func(*models.Account) (bool, error)) error {
	unlock, err := s.locker.Lock(ctx, logins...)
	if err != nil {
		return storeError(err)
	}
	defer unlock()

	account, err := s.repo.FindByLogin(ctx, target)
	if err != nil {
		return storeError(err)
	}

	changed, err := apply(account)
	if err != nil || !changed {
		return err
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return storeError(err)
	}
	return nil
}
