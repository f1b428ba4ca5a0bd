package toil

import (
	"time"

	errors "github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	toilDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/toil"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	TypeTravelLateReturn = "travel_late_return"
	TypeWeekendTravel    = "weekend_travel"
	TypeAgentPanelDay    = "agent_panel_day"
	TypeOvertime         = "overtime"
)

// CanTransition rejects any move not in the allowed table: entries only
// leave pending; approved and rejected are terminal.
func CanTransition(from, to string) bool {
	if from != StatusPending {
		return false
	}
	return to == StatusApproved || to == StatusRejected
}

func ValidEntryType(t string) bool {
	switch t {
	case TypeTravelLateReturn, TypeWeekendTravel, TypeAgentPanelDay, TypeOvertime:
		return true
	}
	return false
}

// Entry is one row of the append-only TOIL log. Hours is signed; positive
// entries credit the balance. The PreviousBalance/NewBalance snapshot is
// stamped at approval time and must satisfy NewBalance-PreviousBalance==Hours.
type Entry struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	Date            time.Time  `json:"date"`
	EntryType       string     `json:"entry_type"`
	Hours           float64    `json:"hours"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	ApprovedBy      *int64     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	PreviousBalance *float64   `json:"previous_balance,omitempty"`
	NewBalance      *float64   `json:"new_balance,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (e *Entry) Approved() bool {
	return e.Status == StatusApproved
}

type CreditDTO struct {
	Hours     float64   `json:"hours"`
	Reason    string    `json:"reason"`
	EntryType string    `json:"entry_type"`
	Date      time.Time `json:"date"`
}

func (dto CreditDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("hours", dto.Hours).HoursInRange(100)
	validator.Field("reason", dto.Reason).Required()
	validator.Field("date", dto.Date).Required()
	validator.Field("entry_type", dto.EntryType).
		Required().
		Custom(func(v interface{}) *errors.AppError {
			if t, ok := v.(string); ok && t != "" && !ValidEntryType(t) {
				return errors.NewValidationFieldError("entry_type", "unknown TOIL entry type", errors.ErrCodeInvalidToilType)
			}
			return nil
		})
	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type RejectDTO struct {
	Reason string `json:"reason"`
}

func (dto RejectDTO) Validate() error {
	if appErr := validation.ValidateReason(dto.Reason, 1); appErr != nil {
		return appErr
	}
	return nil
}

// Repository is the persistence port of the sub-ledger. The user balance
// methods exist here because the sub-ledger is the only writer of
// toil_balance_hours.
type Repository interface {
	Create(entry *Entry) error
	GetByID(id int64) (*Entry, error)
	GetByUserID(userID int64, limit, offset int) ([]*Entry, error)
	Update(entry *Entry) error
	GetUserBalance(userID int64) (float64, error)
	UpdateUserBalance(userID int64, hours float64) error
}

func ToDataModel(e *Entry) *toilDatamodel.ToilEntry {
	return &toilDatamodel.ToilEntry{
		ID:              e.ID,
		UserID:          e.UserID,
		Date:            e.Date,
		EntryType:       e.EntryType,
		Hours:           e.Hours,
		Reason:          e.Reason,
		Status:          e.Status,
		ApprovedBy:      e.ApprovedBy,
		ApprovedAt:      e.ApprovedAt,
		PreviousBalance: e.PreviousBalance,
		NewBalance:      e.NewBalance,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func FromDataModel(e *toilDatamodel.ToilEntry) *Entry {
	return &Entry{
		ID:              e.ID,
		UserID:          e.UserID,
		Date:            e.Date,
		EntryType:       e.EntryType,
		Hours:           e.Hours,
		Reason:          e.Reason,
		Status:          e.Status,
		ApprovedBy:      e.ApprovedBy,
		ApprovedAt:      e.ApprovedAt,
		PreviousBalance: e.PreviousBalance,
		NewBalance:      e.NewBalance,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func FromDataModelSlice(entries []*toilDatamodel.ToilEntry) []*Entry {
	result := make([]*Entry, len(entries))
	for i, e := range entries {
		result[i] = FromDataModel(e)
	}
	return result
}
