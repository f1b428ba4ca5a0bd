package toil

import "time"

// ToilEntry is the persistence model for the append-only TOIL log. Hours is
// signed: positive entries are credits. PreviousBalance/NewBalance are the
// audit snapshot stamped when the entry is approved; for every approved
// entry NewBalance - PreviousBalance == Hours.
type ToilEntry struct {
	ID              int64      `json:"id" gorm:"primaryKey"`
	UserID          int64      `json:"user_id" gorm:"column:user_id;not null;index"`
	Date            time.Time  `json:"date" gorm:"column:date;type:date;not null"`
	EntryType       string     `json:"entry_type" gorm:"column:entry_type;not null"`
	Hours           float64    `json:"hours" gorm:"column:hours;not null"`
	Reason          string     `json:"reason" gorm:"column:reason"`
	Status          string     `json:"status" gorm:"column:status;not null;default:pending;index"`
	ApprovedBy      *int64     `json:"approved_by,omitempty" gorm:"column:approved_by"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty" gorm:"column:approved_at"`
	PreviousBalance *float64   `json:"previous_balance,omitempty" gorm:"column:previous_balance"`
	NewBalance      *float64   `json:"new_balance,omitempty" gorm:"column:new_balance"`
	CreatedAt       time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (ToilEntry) TableName() string {
	return "toil_entries"
}
