package user

import "time"

// User is the persistence model for employees. ToilBalanceHours is
// denormalized for fast reads: it must always equal the sum of hours across
// approved TOIL entries for the user, and only the TOIL sub-ledger writes it.
type User struct {
	ID                   int64     `json:"id" gorm:"primaryKey"`
	Email                string    `json:"email" gorm:"uniqueIndex;not null"`
	Name                 string    `json:"name" gorm:"not null"`
	Role                 string    `json:"role" gorm:"not null;default:member"`
	PasswordHash         string    `json:"-" gorm:"column:password_hash;not null"`
	AnnualLeaveAllowance float64   `json:"annual_leave_allowance" gorm:"column:annual_leave_allowance;not null;default:25"`
	SickLeaveAllowance   float64   `json:"sick_leave_allowance" gorm:"column:sick_leave_allowance;not null;default:10"`
	ToilBalanceHours     float64   `json:"toil_balance_hours" gorm:"column:toil_balance_hours;not null;default:0"`
	ProtectedCoverage    bool      `json:"protected_coverage" gorm:"column:protected_coverage;not null;default:false"`
	IsActive             bool      `json:"is_active" gorm:"column:is_active;not null;default:true"`
	CreatedAt            time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt            time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}
