package models

import (
	"time"

	"github.com/google/uuid"
)

type Gender int

const (
	GenderMale Gender = iota
	GenderFemale
	GenderUnknown
)

func (g Gender) Valid() bool {
	return g >= GenderMale && g <= GenderUnknown
}

const (
	RoleAdmin    = "Admin"
	RoleNotAdmin = "NotAdmin"
)

type Account struct {
	ID           uuid.UUID  `json:"id"`
	Login        string     `json:"login"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Gender       Gender     `json:"gender"`
	BirthDay     *time.Time `json:"birth_day,omitempty"`
	Admin        bool       `json:"admin"`
	CreatedOn    time.Time  `json:"created_on"`
	CreatedBy    string     `json:"created_by"`
	ModifiedOn   *time.Time `json:"modified_on,omitempty"`
	ModifiedBy   *string    `json:"modified_by,omitempty"`
	RevokedOn    *time.Time `json:"revoked_on,omitempty"`
	RevokedBy    *string    `json:"revoked_by,omitempty"`
	Version      int64      `json:"-"`
}

func (a *Account) IsActive() bool {
	return a.RevokedOn == nil
}

func (a *Account) Role() string {
	if a.Admin {
		return RoleAdmin
	}
	return RoleNotAdmin
}

// Clone returns a deep copy so stores never hand out shared pointers.
func (a *Account) Clone() *Account {
	c := *a
	c.BirthDay = cloneTime(a.BirthDay)
	c.ModifiedOn = cloneTime(a.ModifiedOn)
	c.RevokedOn = cloneTime(a.RevokedOn)
	c.ModifiedBy = cloneString(a.ModifiedBy)
	c.RevokedBy = cloneString(a.RevokedBy)
	return &c
}

func (a *Account) StampModified(by string, at time.Time) {
	a.ModifiedOn = &at
	a.ModifiedBy = &by
}

func (a *Account) Revoke(by string, at time.Time) {
	a.RevokedOn = &at
	a.RevokedBy = &by
}

func (a *Account) Reinstate() {
	a.RevokedOn = nil
	a.RevokedBy = nil
}

// AccountProfile is what an admin sees when looking up a single account.
type AccountProfile struct {
	Name     string     `json:"name"`
	Gender   Gender     `json:"gender"`
	BirthDay *time.Time `json:"birth_day,omitempty"`
	IsActive bool       `json:"is_active"`
}

// SelfProfile is returned when an account re-authenticates against itself.
type SelfProfile struct {
	Name     string     `json:"name"`
	Gender   Gender     `json:"gender"`
	BirthDay *time.Time `json:"birth_day,omitempty"`
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
