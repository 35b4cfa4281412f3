package services

import "github.com/prudhvinik1/accountsvc/internal/models"

type Operation int

const (
	OpCreate Operation = iota
	OpUpdateInfo
	OpChangePassword
	OpChangeLogin
	OpListActive
	OpGetByLogin
	OpListOlderThan
	OpSoftDelete
	OpRestore
	OpAuthenticateSelf
)

func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdateInfo:
		return "update_info"
	case OpChangePassword:
		return "change_password"
	case OpChangeLogin:
		return "change_login"
	case OpListActive:
		return "list_active"
	case OpGetByLogin:
		return "get_by_login"
	case OpListOlderThan:
		return "list_older_than"
	case OpSoftDelete:
		return "soft_delete"
	case OpRestore:
		return "restore"
	case OpAuthenticateSelf:
		return "authenticate_self"
	default:
		return "unknown"
	}
}

// FieldSet names the account fields an allowed operation may write.
type FieldSet uint16

const (
	FieldName FieldSet = 1 << iota
	FieldGender
	FieldBirthDay
	FieldLogin
	FieldPassword
	FieldAdmin
	FieldRevoked

	FieldProfile = FieldName | FieldGender | FieldBirthDay
	FieldNone    FieldSet = 0
)

func (f FieldSet) Has(field FieldSet) bool {
	return f&field == field
}

// AccessRequest describes one attempted operation. Principal is the acting
// account as currently stored, not as claimed by its token.
type AccessRequest struct {
	Principal   *models.Account
	Operation   Operation
	TargetLogin string
	// SetsAdmin is true when a create request carries an admin value at all.
	SetsAdmin bool
}

// Authorize decides whether the principal may perform the operation and, if
// so, which fields it may write. Rules are evaluated in order; the first
// denial wins.
func Authorize(req AccessRequest) (FieldSet, error) {
	p := req.Principal
	if p == nil || p.Login == "" {
		return FieldNone, ErrUnauthenticated
	}
	if !p.IsActive() {
		return FieldNone, ErrAccountDeactivated
	}

	self := p.Login == req.TargetLogin

	switch req.Operation {
	case OpCreate:
		if !p.Admin {
			return FieldNone, ErrForbidden
		}
		if req.SetsAdmin && !p.Admin {
			return FieldNone, ErrForbidden
		}
		return FieldProfile | FieldLogin | FieldPassword | FieldAdmin, nil

	case OpUpdateInfo, OpChangePassword, OpChangeLogin:
		if !p.Admin && !self {
			return FieldNone, ErrForbidden
		}
		switch req.Operation {
		case OpUpdateInfo:
			return FieldProfile, nil
		case OpChangePassword:
			return FieldPassword, nil
		default:
			return FieldLogin, nil
		}

	case OpListActive, OpGetByLogin, OpListOlderThan:
		if !p.Admin {
			return FieldNone, ErrForbidden
		}
		return FieldNone, nil

	case OpSoftDelete, OpRestore:
		if !p.Admin {
			return FieldNone, ErrForbidden
		}
		return FieldRevoked, nil

	case OpAuthenticateSelf:
		if !self {
			return FieldNone, ErrInvalidCredentials
		}
		return FieldNone, nil
	}

	return FieldNone, ErrForbidden
}
