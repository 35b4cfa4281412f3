package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prudhvinik1/accountsvc/internal/models"
	"github.com/prudhvinik1/accountsvc/internal/repositories"
	"github.com/prudhvinik1/accountsvc/internal/utils"
	"go.uber.org/zap"
)

// Hasher hashes and checks passwords bound to an account ID.
type Hasher interface {
	Hash(password string, accountID uuid.UUID) (string, error)
	Verify(hashedPassword, password string, accountID uuid.UUID) utils.VerifyResult
}

type AuthService struct {
	repo   repositories.AccountRepository
	hasher Hasher
	tokens *TokenService
	logger *zap.Logger
	// verified against for unknown logins so both failures cost one bcrypt compare
	dummyHash string
}

func NewAuthService(
	repo repositories.AccountRepository,
	hasher Hasher,
	tokens *TokenService,
	logger *zap.Logger,
) *AuthService {
	logger = logger.Named("auth")
	dummyHash, err := hasher.Hash("unknown-login", uuid.Nil)
	if err != nil {
		logger.Error("failed to build dummy password hash", zap.Error(err))
	}
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger,
		dummyHash: dummyHash,
	}
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Login == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	account, err := s.repo.FindByLogin(ctx, req.Login)
	if errors.Is(err, repositories.ErrNotFound) {
		s.hasher.Verify(s.dummyHash, req.Password, uuid.Nil)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	result := s.hasher.Verify(account.PasswordHash, req.Password, account.ID)
	if !result.OK() {
		return nil, ErrInvalidCredentials
	}
	if result == utils.VerifyMatchNeedsUpgrade && account.IsActive() {
		s.upgradeHash(ctx, account, req.Password)
	}

	token, expiresAt, err := s.tokens.Issue(account)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("login", zap.String("login", account.Login), zap.Bool("active", account.IsActive()))
	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		AccountID: account.ID,
	}, nil
}

// Authenticate turns a bearer token into the principal it names.
func (s *AuthService) Authenticate(token string) (*Principal, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	return s.tokens.Verify(token)
}

// upgradeHash rehashes at the configured cost. It is a system write: the
// modification stamp is left alone and a concurrent edit wins through the
// version check. Failure does not fail the login.
func (s *AuthService) upgradeHash(ctx context.Context, account *models.Account, password string) {
	hash, err := s.hasher.Hash(password, account.ID)
	if err == nil {
		account.PasswordHash = hash
		err = s.repo.Update(ctx, account)
	}
	if err != nil {
		s.logger.Warn("password hash upgrade failed", zap.String("login", account.Login), zap.Error(err))
		return
	}
	s.logger.Debug("password hash upgraded", zap.String("login", account.Login))
}
