package services

import (
	"errors"
	"fmt"

	"github.com/prudhvinik1/accountsvc/internal/repositories"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("account not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrConfiguration      = errors.New("configuration error")
	ErrInvalidToken       = errors.New("invalid token")
	// ErrInvalidCredentials never says whether the login or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid login or password")
)

func invalidArgument(err error) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, err.Error())
}

// storeError translates repository sentinels into service errors.
func storeError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repositories.ErrLoginTaken):
		return fmt.Errorf("%w: login already exists", ErrConflict)
	case errors.Is(err, repositories.ErrVersionConflict):
		return fmt.Errorf("%w: account was modified concurrently", ErrConflict)
	case errors.Is(err, repositories.ErrLockTimeout):
		return fmt.Errorf("%w: login is busy, retry later", ErrConflict)
	default:
		return err
	}
}
