package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
)

type User struct {
	ID                   int64     `json:"id"`
	Email                string    `json:"email"`
	Name                 string    `json:"name"`
	Role                 string    `json:"role"`
	AnnualLeaveAllowance float64   `json:"annual_leave_allowance"`
	SickLeaveAllowance   float64   `json:"sick_leave_allowance"`
	ToilBalanceHours     float64   `json:"toil_balance_hours"`
	ProtectedCoverage    bool      `json:"protected_coverage"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Repository is the read-side port for user records. toil_balance_hours is
// written only by the TOIL sub-ledger, never through this interface.
type Repository interface {
	GetByID(id int64) (*User, error)
	GetByIDs(ids []int64) ([]*User, error)
	List() ([]*User, error)
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:                   u.ID,
		Email:                u.Email,
		Name:                 u.Name,
		Role:                 u.Role,
		AnnualLeaveAllowance: u.AnnualLeaveAllowance,
		SickLeaveAllowance:   u.SickLeaveAllowance,
		ToilBalanceHours:     u.ToilBalanceHours,
		ProtectedCoverage:    u.ProtectedCoverage,
		IsActive:             u.IsActive,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}

func FromDataModelSlice(users []*userDatamodel.User) []*User {
	result := make([]*User, len(users))
	for i, u := range users {
		result[i] = FromDataModel(u)
	}
	return result
}
