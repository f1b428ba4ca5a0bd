package leave

import (
	"errors"
	"time"

	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
)

const (
	TypeAnnual = leaveDatamodel.TypeAnnual
	TypeSick   = leaveDatamodel.TypeSick
	TypeUnpaid = leaveDatamodel.TypeUnpaid
	TypeToil   = leaveDatamodel.TypeToil

	StatusPending   = leaveDatamodel.StatusPending
	StatusApproved  = leaveDatamodel.StatusApproved
	StatusRejected  = leaveDatamodel.StatusRejected
	StatusCancelled = leaveDatamodel.StatusCancelled
)

// allowedTransitions is the whole state machine: requests only leave
// PENDING, every other status is terminal.
var allowedTransitions = map[string][]string{
	StatusPending: {StatusApproved, StatusRejected, StatusCancelled},
}

func CanTransition(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func ValidLeaveType(t string) bool {
	switch t {
	case TypeAnnual, TypeSick, TypeUnpaid, TypeToil:
		return true
	}
	return false
}

// ErrStatusConflict is returned by repositories when a conditional status
// write matched no row: the request left PENDING between the caller's read
// and the write.
var ErrStatusConflict = errors.New("leave request status changed concurrently")

// LeaveRequest is the domain view of one request. Dates are inclusive.
type LeaveRequest struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    time.Time  `json:"end_date"`
	LeaveType  string     `json:"leave_type"`
	Status     string     `json:"status"`
	Hours      *float64   `json:"hours,omitempty"`
	Reason     string     `json:"reason"`
	Comments   string     `json:"comments,omitempty"`
	ApprovedBy *int64     `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (r *LeaveRequest) IsPending() bool {
	return r.Status == StatusPending
}

func ToDataModel(r *LeaveRequest) *leaveDatamodel.LeaveRequest {
	return &leaveDatamodel.LeaveRequest{
		ID:         r.ID,
		UserID:     r.UserID,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		LeaveType:  r.LeaveType,
		Status:     r.Status,
		Hours:      r.Hours,
		Reason:     r.Reason,
		Comments:   r.Comments,
		ApprovedBy: r.ApprovedBy,
		ApprovedAt: r.ApprovedAt,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func FromDataModel(r *leaveDatamodel.LeaveRequest) *LeaveRequest {
	return &LeaveRequest{
		ID:         r.ID,
		UserID:     r.UserID,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		LeaveType:  r.LeaveType,
		Status:     r.Status,
		Hours:      r.Hours,
		Reason:     r.Reason,
		Comments:   r.Comments,
		ApprovedBy: r.ApprovedBy,
		ApprovedAt: r.ApprovedAt,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func FromDataModelSlice(requests []*leaveDatamodel.LeaveRequest) []*LeaveRequest {
	result := make([]*LeaveRequest, len(requests))
	for i, r := range requests {
		result[i] = FromDataModel(r)
	}
	return result
}
