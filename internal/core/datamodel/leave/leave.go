package leave

import "time"

const (
	TypeAnnual = "annual"
	TypeSick   = "sick"
	TypeUnpaid = "unpaid"
	TypeToil   = "toil"

	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// LeaveRequest is the persistence model for leave requests. Dates are
// inclusive calendar days; Hours is only set for TOIL-type requests.
type LeaveRequest struct {
	ID         int64      `json:"id" gorm:"primaryKey"`
	UserID     int64      `json:"user_id" gorm:"column:user_id;not null;index"`
	StartDate  time.Time  `json:"start_date" gorm:"column:start_date;type:date;not null;index"`
	EndDate    time.Time  `json:"end_date" gorm:"column:end_date;type:date;not null;index"`
	LeaveType  string     `json:"leave_type" gorm:"column:leave_type;not null"`
	Status     string     `json:"status" gorm:"column:status;not null;default:pending;index"`
	Hours      *float64   `json:"hours,omitempty" gorm:"column:hours"`
	Reason     string     `json:"reason" gorm:"column:reason"`
	Comments   string     `json:"comments" gorm:"column:comments"`
	ApprovedBy *int64     `json:"approved_by,omitempty" gorm:"column:approved_by"`
	ApprovedAt *time.Time `json:"approved_at,omitempty" gorm:"column:approved_at"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}
