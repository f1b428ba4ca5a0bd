package balance

import (
	"fmt"
	"time"

	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
)

// Balance is the derived leave position for one user and one calendar
// year. It is recomputed from approved requests, never maintained as a
// running counter, so two recomputations with no intervening writes are
// identical.
type Balance struct {
	UserID          int64          `json:"user_id"`
	Year            int            `json:"year"`
	Allowance       float64        `json:"allowance"`
	Used            float64        `json:"used"`
	Remaining       float64        `json:"remaining"`
	SickAllowance   float64        `json:"sick_allowance"`
	SickUsed        float64        `json:"sick_used"`
	SickRemaining   float64        `json:"sick_remaining"`
	ToilHours       float64        `json:"toil_hours"`
	ToilHoursEarned float64        `json:"toil_hours_earned"`
	ToilHoursUsed   float64        `json:"toil_hours_used"`
	History         []HistoryEntry `json:"history"`
}

// HistoryEntry summarizes one approved request that contributed to the
// balance.
type HistoryEntry struct {
	RequestID   int64     `json:"request_id"`
	LeaveType   string    `json:"leave_type"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	WorkingDays int       `json:"working_days"`
	Hours       float64   `json:"hours,omitempty"`
}

// Repository is the read-side port of the balance ledger. ApprovedLeaveInRange
// must resolve all requested users in a single query; the batch balance view
// depends on that being one round trip.
type Repository interface {
	GetUser(id int64) (*userDatamodel.User, error)
	GetUsers(ids []int64) ([]*userDatamodel.User, error)
	ApprovedLeaveInRange(userIDs []int64, start, end time.Time) ([]*leaveDatamodel.LeaveRequest, error)
}

// CacheKey is the composite key for one user/year balance.
func CacheKey(userID int64, year int) string {
	return fmt.Sprintf("balance:%d:%d", userID, year)
}

// CacheKeyPrefix matches every cached balance of the user, any year.
func CacheKeyPrefix(userID int64) string {
	return fmt.Sprintf("balance:%d:", userID)
}

const hoursPerWorkingDay = 8
