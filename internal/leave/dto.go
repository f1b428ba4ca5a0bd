package leave

import (
	"time"

	errors "github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/conflict"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
)

// MinRejectReasonLength is the shortest reason accepted when rejecting a
// request.
const MinRejectReasonLength = 3

type SubmitDTO struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	LeaveType string    `json:"leave_type"`
	Hours     *float64  `json:"hours,omitempty"`
	Reason    string    `json:"reason"`
}

func (dto SubmitDTO) Validate() error {
	if appErr := validation.ValidateDateRange(dto.StartDate, dto.EndDate); appErr != nil {
		return appErr
	}

	validator := validation.NewValidator()
	validator.Field("leave_type", dto.LeaveType).
		Required().
		Custom(func(v interface{}) *errors.AppError {
			if t, ok := v.(string); ok && t != "" && !ValidLeaveType(t) {
				return errors.NewValidationFieldError("leave_type", "unknown leave type", errors.ErrCodeInvalidLeaveType)
			}
			return nil
		})
	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}

	if dto.Hours != nil && dto.LeaveType != TypeToil {
		return errors.NewValidationFieldError("hours", "hours may only be set on TOIL requests", errors.ErrCodeInvalidHours)
	}
	if dto.Hours != nil && *dto.Hours == 0 {
		return errors.NewValidationFieldError("hours", "hours must be non-zero when set", errors.ErrCodeInvalidHours)
	}
	return nil
}

type RejectDTO struct {
	Reason string `json:"reason"`
}

func (dto RejectDTO) Validate() error {
	if appErr := validation.ValidateReason(dto.Reason, MinRejectReasonLength); appErr != nil {
		return appErr
	}
	return nil
}

// SubmitResult reports the created request plus what the caller wants to
// show immediately: the balance left if this request gets approved, and
// any advisory coverage warning.
type SubmitResult struct {
	Request        *LeaveRequest    `json:"request"`
	RequestedDays  int              `json:"requested_days"`
	RemainingAfter float64          `json:"remaining_after"`
	Conflict       *conflict.Result `json:"conflict,omitempty"`
}

type BulkDecisionDTO struct {
	RequestIDs []int64 `json:"request_ids"`
	Reason     string  `json:"reason,omitempty"`
}

func (dto BulkDecisionDTO) Validate() error {
	if len(dto.RequestIDs) == 0 {
		return errors.NewValidationFieldError("request_ids", "request_ids is required", errors.ErrCodeValidationFailed)
	}
	if len(dto.RequestIDs) > 100 {
		return errors.NewValidationFieldError("request_ids", "at most 100 requests per bulk call", errors.ErrCodeValidationFailed)
	}
	return nil
}

// BulkResult reports one item's outcome; a failed item never aborts the
// rest of the batch.
type BulkResult struct {
	RequestID int64  `json:"request_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}
