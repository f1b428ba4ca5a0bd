package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLeaveSubmitted   = "leave.submitted"
	EventTypeLeaveApproved    = "leave.approved"
	EventTypeLeaveRejected    = "leave.rejected"
	EventTypeLeaveCancelled   = "leave.cancelled"
	EventTypeToilApproved     = "toil.approved"
	EventTypeToilCreditFailed = "toil.credit_failed"
)

type LeaveRequestEvent struct {
	BaseEvent
	RequestID int64     `json:"request_id"`
	UserID    int64     `json:"user_id"`
	LeaveType string    `json:"leave_type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason,omitempty"`
}

func newLeaveRequestEvent(eventType string, requestID, userID int64, leaveType string, startDate, endDate time.Time, reason string) *LeaveRequestEvent {
	return &LeaveRequestEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id": requestID,
				"user_id":    userID,
				"leave_type": leaveType,
				"start_date": startDate,
				"end_date":   endDate,
				"reason":     reason,
			},
		},
		RequestID: requestID,
		UserID:    userID,
		LeaveType: leaveType,
		StartDate: startDate,
		EndDate:   endDate,
		Reason:    reason,
	}
}

func NewLeaveSubmittedEvent(requestID, userID int64, leaveType string, startDate, endDate time.Time) *LeaveRequestEvent {
	return newLeaveRequestEvent(EventTypeLeaveSubmitted, requestID, userID, leaveType, startDate, endDate, "")
}

func NewLeaveApprovedEvent(requestID, userID int64, leaveType string, startDate, endDate time.Time) *LeaveRequestEvent {
	return newLeaveRequestEvent(EventTypeLeaveApproved, requestID, userID, leaveType, startDate, endDate, "")
}

func NewLeaveRejectedEvent(requestID, userID int64, leaveType string, startDate, endDate time.Time, reason string) *LeaveRequestEvent {
	return newLeaveRequestEvent(EventTypeLeaveRejected, requestID, userID, leaveType, startDate, endDate, reason)
}

func NewLeaveCancelledEvent(requestID, userID int64, leaveType string, startDate, endDate time.Time) *LeaveRequestEvent {
	return newLeaveRequestEvent(EventTypeLeaveCancelled, requestID, userID, leaveType, startDate, endDate, "")
}

type ToilApprovedEvent struct {
	BaseEvent
	EntryID    int64   `json:"entry_id"`
	UserID     int64   `json:"user_id"`
	Hours      float64 `json:"hours"`
	NewBalance float64 `json:"new_balance"`
}

func NewToilApprovedEvent(entryID, userID int64, hours, newBalance float64) *ToilApprovedEvent {
	return &ToilApprovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeToilApproved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"entry_id":    entryID,
				"user_id":     userID,
				"hours":       hours,
				"new_balance": newBalance,
			},
		},
		EntryID:    entryID,
		UserID:     userID,
		Hours:      hours,
		NewBalance: newBalance,
	}
}

// ToilCreditFailedEvent records the named inconsistency where a leave
// request reached APPROVED but the paired TOIL credit did not commit. The
// approval is not rolled back; this event is the audit trail for manual
// reconciliation.
type ToilCreditFailedEvent struct {
	BaseEvent
	RequestID int64   `json:"request_id"`
	UserID    int64   `json:"user_id"`
	Hours     float64 `json:"hours"`
	Error     string  `json:"error"`
}

func NewToilCreditFailedEvent(requestID, userID int64, hours float64, cause error) *ToilCreditFailedEvent {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &ToilCreditFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeToilCreditFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id": requestID,
				"user_id":    userID,
				"hours":      hours,
				"error":      msg,
			},
		},
		RequestID: requestID,
		UserID:    userID,
		Hours:     hours,
		Error:     msg,
	}
}
