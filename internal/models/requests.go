package models

import (
	"time"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Login    string `json:"login" validate:"required,alphanum"`
	Password string `json:"password" validate:"required,alphanum"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	AccountID uuid.UUID `json:"account_id"`
}

type CreateAccountRequest struct {
	Login    string     `json:"login" validate:"required,alphanum"`
	Password string     `json:"password" validate:"required,alphanum"`
	Name     string     `json:"name" validate:"required,personname"`
	Gender   *Gender    `json:"gender,omitempty" validate:"omitempty,min=0,max=2"`
	BirthDay *time.Time `json:"birth_day,omitempty"`
	Admin    *bool      `json:"admin,omitempty"`
}

// GenderOrDefault applies the unknown-gender default when the field is absent.
func (r *CreateAccountRequest) GenderOrDefault() Gender {
	if r.Gender == nil {
		return GenderUnknown
	}
	return *r.Gender
}

type UpdateInfoRequest struct {
	Name     Optional[string]    `json:"name"`
	Gender   Optional[Gender]    `json:"gender"`
	BirthDay Optional[time.Time] `json:"birth_day"`
}

func (r *UpdateInfoRequest) Empty() bool {
	return !r.Name.IsSet() && !r.Gender.IsSet() && !r.BirthDay.IsSet()
}

type UpdatePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,alphanum"`
}

type UpdateLoginRequest struct {
	NewLogin string `json:"new_login" validate:"required,alphanum"`
}

type AuthenticateSelfRequest struct {
	Password string `json:"password" validate:"required,alphanum"`
}
