package utils

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 12

var ErrEmptyPassword = errors.New("password must not be empty")

type VerifyResult int

const (
	VerifyNoMatch VerifyResult = iota
	VerifyMatch
	VerifyMatchNeedsUpgrade
)

// OK reports whether the candidate password was accepted.
func (r VerifyResult) OK() bool {
	return r == VerifyMatch || r == VerifyMatchNeedsUpgrade
}

func (r VerifyResult) String() string {
	switch r {
	case VerifyMatch:
		return "match"
	case VerifyMatchNeedsUpgrade:
		return "match_needs_upgrade"
	default:
		return "no_match"
	}
}

// PasswordHasher hashes passwords bound to the account they belong to, so two
// accounts with the same password never share a hash.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string, accountID uuid.UUID) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hashed, err := bcrypt.GenerateFromPassword(bind(password, accountID), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (h *PasswordHasher) Verify(hashedPassword, password string, accountID uuid.UUID) VerifyResult {
	if password == "" || hashedPassword == "" {
		return VerifyNoMatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), bind(password, accountID)); err != nil {
		return VerifyNoMatch
	}
	cost, err := bcrypt.Cost([]byte(hashedPassword))
	if err == nil && cost < h.cost {
		return VerifyMatchNeedsUpgrade
	}
	return VerifyMatch
}

// bind pre-hashes id+password so the bcrypt input stays under its 72 byte limit.
func bind(password string, accountID uuid.UUID) []byte {
	sum := sha256.New()
	sum.Write(accountID[:])
	sum.Write([]byte{0})
	sum.Write([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum.Sum(nil)))
}
