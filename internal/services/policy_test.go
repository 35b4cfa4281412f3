package services

import (
	"testing"
	"time"

	"github.com/prudhvinik1/accountsvc/internal/models"
	"github.com/stretchr/testify/assert"
)

func principal(login string, admin, revoked bool) *models.Account {
	a := &models.Account{Login: login, Admin: admin}
	if revoked {
		a.Revoke("Admin", time.Now())
	}
	return a
}

func TestAuthorize(t *testing.T) {
	admin := principal("Admin", true, false)
	alice := principal("alice", false, false)
	revokedAdmin := principal("root", true, true)
	revokedAlice := principal("alice", false, true)

	tests := []struct {
		name       string
		req        AccessRequest
		wantErr    error
		wantFields FieldSet
	}{
		{name: "no principal", req: AccessRequest{Operation: OpListActive}, wantErr: ErrUnauthenticated},
		{name: "revoked admin cannot create", req: AccessRequest{Principal: revokedAdmin, Operation: OpCreate, TargetLogin: "bob"}, wantErr: ErrAccountDeactivated},
		{name: "revoked self cannot update self", req: AccessRequest{Principal: revokedAlice, Operation: OpUpdateInfo, TargetLogin: "alice"}, wantErr: ErrAccountDeactivated},
		{name: "revoked self cannot authenticate", req: AccessRequest{Principal: revokedAlice, Operation: OpAuthenticateSelf, TargetLogin: "alice"}, wantErr: ErrAccountDeactivated},

		{name: "admin creates", req: AccessRequest{Principal: admin, Operation: OpCreate, TargetLogin: "bob", SetsAdmin: true}, wantFields: FieldProfile | FieldLogin | FieldPassword | FieldAdmin},
		{name: "non-admin cannot create", req: AccessRequest{Principal: alice, Operation: OpCreate, TargetLogin: "bob"}, wantErr: ErrForbidden},
		{name: "non-admin cannot create admin", req: AccessRequest{Principal: alice, Operation: OpCreate, TargetLogin: "bob", SetsAdmin: true}, wantErr: ErrForbidden},

		{name: "self updates info", req: AccessRequest{Principal: alice, Operation: OpUpdateInfo, TargetLogin: "alice"}, wantFields: FieldProfile},
		{name: "admin updates other", req: AccessRequest{Principal: admin, Operation: OpUpdateInfo, TargetLogin: "alice"}, wantFields: FieldProfile},
		{name: "non-admin updates other", req: AccessRequest{Principal: alice, Operation: OpUpdateInfo, TargetLogin: "bob"}, wantErr: ErrForbidden},
		{name: "self changes password", req: AccessRequest{Principal: alice, Operation: OpChangePassword, TargetLogin: "alice"}, wantFields: FieldPassword},
		{name: "non-admin changes other password", req: AccessRequest{Principal: alice, Operation: OpChangePassword, TargetLogin: "bob"}, wantErr: ErrForbidden},
		{name: "self renames", req: AccessRequest{Principal: alice, Operation: OpChangeLogin, TargetLogin: "alice"}, wantFields: FieldLogin},
		{name: "admin renames other", req: AccessRequest{Principal: admin, Operation: OpChangeLogin, TargetLogin: "alice"}, wantFields: FieldLogin},

		{name: "admin lists", req: AccessRequest{Principal: admin, Operation: OpListActive}, wantFields: FieldNone},
		{name: "non-admin lists", req: AccessRequest{Principal: alice, Operation: OpListActive}, wantErr: ErrForbidden},
		{name: "non-admin reads self by login", req: AccessRequest{Principal: alice, Operation: OpGetByLogin, TargetLogin: "alice"}, wantErr: ErrForbidden},
		{name: "non-admin lists older", req: AccessRequest{Principal: alice, Operation: OpListOlderThan}, wantErr: ErrForbidden},
		{name: "admin soft deletes", req: AccessRequest{Principal: admin, Operation: OpSoftDelete, TargetLogin: "alice"}, wantFields: FieldRevoked},
		{name: "non-admin soft deletes self", req: AccessRequest{Principal: alice, Operation: OpSoftDelete, TargetLogin: "alice"}, wantErr: ErrForbidden},
		{name: "non-admin restores", req: AccessRequest{Principal: alice, Operation: OpRestore, TargetLogin: "bob"}, wantErr: ErrForbidden},

		{name: "self authenticates", req: AccessRequest{Principal: alice, Operation: OpAuthenticateSelf, TargetLogin: "alice"}, wantFields: FieldNone},
		{name: "admin authenticates as other", req: AccessRequest{Principal: admin, Operation: OpAuthenticateSelf, TargetLogin: "alice"}, wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := Authorize(tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, FieldNone, fields)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestFieldSet_Has(t *testing.T) {
	assert.True(t, FieldProfile.Has(FieldName))
	assert.True(t, FieldProfile.Has(FieldGender|FieldBirthDay))
	assert.False(t, FieldProfile.Has(FieldLogin))
	assert.False(t, FieldNone.Has(FieldAdmin))
}
