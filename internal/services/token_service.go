package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prudhvinik1/accountsvc/internal/models"
)

// Claims is the token payload. The subject carries the account ID.
type Claims struct {
	Login string `json:"login"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the caller identity recovered from a verified token.
type Principal struct {
	AccountID uuid.UUID
	Login     string
	Role      string
}

// PrincipalFor is the identity a token issued for account carries.
func PrincipalFor(account *models.Account) *Principal {
	return &Principal{AccountID: account.ID, Login: account.Login, Role: account.Role()}
}

func (p *Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	expiry   time.Duration
	now      func() time.Time
}

func NewTokenService(secret, issuer, audience string, expiry time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		expiry:   expiry,
		now:      time.Now,
	}
}

func (s *TokenService) Issue(account *models.Account) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("%w: signing secret is empty", ErrConfiguration)
	}

	now := s.now()
	expiresAt := now.Add(s.expiry)
	claims := Claims{
		Login: account.Login,
		Role:  account.Role(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *TokenService) Verify(tokenString string) (*Principal, error) {
	if len(s.secret) == 0 {
		return nil, fmt.Errorf("%w: signing secret is empty", ErrConfiguration)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil || claims.Login == "" {
		return nil, ErrInvalidToken
	}
	if claims.Role != models.RoleAdmin && claims.Role != models.RoleNotAdmin {
		return nil, ErrInvalidToken
	}

	return &Principal{
		AccountID: accountID,
		Login:     claims.Login,
		Role:      claims.Role,
	}, nil
}
