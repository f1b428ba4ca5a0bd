package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/balance"
	"github.com/frahmantamala/leave-management/internal/conflict"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/toil"
	"github.com/frahmantamala/leave-management/internal/user"
)

// Repository is the persistence port of the approval workflow, the only
// writer of leave request status. UpdateStatusFrom must be conditional on
// the current status (per-row atomic) and return ErrStatusConflict when no
// row matched.
type Repository interface {
	Create(req *LeaveRequest) error
	GetByID(id int64) (*LeaveRequest, error)
	GetStatus(id int64) (string, error)
	UpdateStatusFrom(id int64, fromStatus, toStatus string, approvedBy *int64, approvedAt *time.Time, comments string) error
	GetByUserID(userID int64, limit, offset int) ([]*LeaveRequest, error)
	GetPending(limit, offset int) ([]*LeaveRequest, error)
}

type BalanceAPI interface {
	GetBalance(userID int64, year int) (*balance.Balance, error)
	Invalidate(userID int64)
}

type ConflictAPI interface {
	CheckConflict(start, end time.Time, excludeUserID int64) (*conflict.Result, error)
}

type ToilAPI interface {
	CreditApproved(userID int64, dto toil.CreditDTO, approverID int64) (*toil.Entry, error)
}

type UserAPI interface {
	GetUser(id int64) (*user.User, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service drives a leave request from submission to a terminal state.
// Writes race with each other; there is no multi-row transaction to hide
// behind, so every state change re-checks PENDING immediately before the
// conditional write and treats a miss as a conflict, never an overwrite.
type Service struct {
	repo      Repository
	balances  BalanceAPI
	conflicts ConflictAPI
	toils     ToilAPI
	users     UserAPI
	bus       EventPublisher
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	balances BalanceAPI,
	conflicts ConflictAPI,
	toils ToilAPI,
	users UserAPI,
	bus EventPublisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		balances:  balances,
		conflicts: conflicts,
		toils:     toils,
		users:     users,
		bus:       bus,
		logger:    logger,
	}
}

// Submit validates and records a new PENDING request. No balance changes
// here: balances reflect only approved requests.
func (s *Service) Submit(userID int64, dto SubmitDTO) (*SubmitResult, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("submit validation failed", "error", err, "user_id", userID)
		return nil, err
	}

	today := truncateToDay(time.Now())
	if truncateToDay(dto.StartDate).Before(today) {
		return nil, internal.NewValidationError("start date must not be in the past", internal.ErrCodeStartDateInPast)
	}

	requestedDays := balance.WorkingDays(dto.StartDate, dto.EndDate)

	b, err := s.balances.GetBalance(userID, dto.StartDate.Year())
	if err != nil {
		return nil, err
	}

	remainingAfter := b.Remaining
	switch dto.LeaveType {
	case TypeAnnual:
		if b.Remaining < float64(requestedDays) {
			s.logger.Warn("insufficient annual leave balance",
				"user_id", userID,
				"remaining", b.Remaining,
				"requested", requestedDays)
			return nil, internal.NewInsufficientBalanceError(b.Remaining, float64(requestedDays), "days")
		}
		remainingAfter = b.Remaining - float64(requestedDays)
	case TypeToil:
		needed := float64(requestedDays * 8)
		if dto.Hours != nil && *dto.Hours < 0 {
			needed = -*dto.Hours
		}
		if dto.Hours == nil || *dto.Hours < 0 {
			available := b.ToilHours
			if available < needed {
				s.logger.Warn("insufficient TOIL balance",
					"user_id", userID,
					"available_hours", available,
					"requested_hours", needed)
				return nil, internal.NewInsufficientBalanceError(available, needed, "hours")
			}
		}
	}

	var conflictResult *conflict.Result
	u, err := s.users.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if u.ProtectedCoverage {
		// Advisory: a coverage conflict is surfaced, never blocks.
		conflictResult, err = s.conflicts.CheckConflict(dto.StartDate, dto.EndDate, userID)
		if err != nil {
			s.logger.Error("conflict check failed during submit, continuing", "error", err, "user_id", userID)
			conflictResult = nil
		}
	}

	now := time.Now()
	req := &LeaveRequest{
		UserID:    userID,
		StartDate: truncateToDay(dto.StartDate),
		EndDate:   truncateToDay(dto.EndDate),
		LeaveType: dto.LeaveType,
		Status:    StatusPending,
		Hours:     dto.Hours,
		Reason:    dto.Reason,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(req); err != nil {
		s.logger.Error("failed to create leave request", "error", err, "user_id", userID)
		return nil, internal.NewInfrastructureError("failed to create leave request", err)
	}

	s.logger.Info("leave request submitted",
		"request_id", req.ID,
		"user_id", userID,
		"leave_type", dto.LeaveType,
		"start_date", req.StartDate,
		"end_date", req.EndDate,
		"requested_days", requestedDays)

	_ = s.bus.Publish(context.Background(),
		events.NewLeaveSubmittedEvent(req.ID, userID, req.LeaveType, req.StartDate, req.EndDate))

	return &SubmitResult{
		Request:        req,
		RequestedDays:  requestedDays,
		RemainingAfter: remainingAfter,
		Conflict:       conflictResult,
	}, nil
}

// Approve moves a PENDING request to APPROVED. Exactly one of two
// concurrent calls succeeds; the loser observes the conflict and fails
// cleanly without overwriting.
func (s *Service) Approve(requestID int64, approver *auth.User) (*LeaveRequest, error) {
	if !approver.IsAdmin() {
		return nil, internal.ErrAdminRequired
	}

	req, err := s.repo.GetByID(requestID)
	if err != nil {
		return nil, internal.ErrLeaveRequestNotFound
	}

	if !CanTransition(req.Status, StatusApproved) {
		s.logger.Warn("cannot approve request in current status",
			"request_id", requestID, "status", req.Status)
		return nil, internal.ErrStatusAlreadyFinal
	}

	// Optimistic re-check: narrow the race window before the conditional
	// write. The write itself still guards on PENDING.
	status, err := s.repo.GetStatus(requestID)
	if err != nil {
		return nil, internal.NewInfrastructureError("failed to re-read request status", err)
	}
	if status != StatusPending {
		return nil, internal.ErrStatusAlreadyFinal
	}

	now := time.Now()
	if err := s.repo.UpdateStatusFrom(requestID, StatusPending, StatusApproved, &approver.ID, &now, ""); err != nil {
		if err == ErrStatusConflict {
			s.logger.Warn("approval lost the race", "request_id", requestID, "approver_id", approver.ID)
			return nil, internal.ErrStatusAlreadyFinal
		}
		s.logger.Error("failed to write approval", "error", err, "request_id", requestID)
		return nil, internal.NewInfrastructureError("failed to approve leave request", err)
	}

	req.Status = StatusApproved
	req.ApprovedBy = &approver.ID
	req.ApprovedAt = &now
	req.UpdatedAt = now

	if req.LeaveType == TypeToil {
		s.creditToilForApproval(req, approver.ID)
	}

	// Synchronous with the write path: the next balance read recomputes.
	s.balances.Invalidate(req.UserID)

	s.logger.Info("leave request approved",
		"request_id", requestID,
		"user_id", req.UserID,
		"approver_id", approver.ID)

	_ = s.bus.Publish(context.Background(),
		events.NewLeaveApprovedEvent(req.ID, req.UserID, req.LeaveType, req.StartDate, req.EndDate))

	return req, nil
}

// creditToilForApproval runs the secondary TOIL credit. A failure here is
// logged and published for reconciliation but never rolls back the already
// committed approval.
func (s *Service) creditToilForApproval(req *LeaveRequest, approverID int64) {
	hours := -float64(balance.WorkingDays(req.StartDate, req.EndDate) * 8)
	if req.Hours != nil {
		hours = *req.Hours
	}

	_, err := s.toils.CreditApproved(req.UserID, toil.CreditDTO{
		Hours:     hours,
		Reason:    fmt.Sprintf("leave request #%d", req.ID),
		EntryType: toil.TypeOvertime,
		Date:      req.StartDate,
	}, approverID)
	if err != nil {
		s.logger.Error("TOIL credit failed after approval; request stays approved",
			"error", err,
			"request_id", req.ID,
			"user_id", req.UserID,
			"hours", hours)
		_ = s.bus.Publish(context.Background(),
			events.NewToilCreditFailedEvent(req.ID, req.UserID, hours, err))
	}
}

// Reject moves a PENDING request to REJECTED, appending the reason to the
// request comments.
func (s *Service) Reject(requestID int64, approver *auth.User, dto RejectDTO) (*LeaveRequest, error) {
	if !approver.IsAdmin() {
		return nil, internal.ErrAdminRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(requestID)
	if err != nil {
		return nil, internal.ErrLeaveRequestNotFound
	}

	if !CanTransition(req.Status, StatusRejected) {
		s.logger.Warn("cannot reject request in current status",
			"request_id", requestID, "status", req.Status)
		return nil, internal.ErrStatusAlreadyFinal
	}

	status, err := s.repo.GetStatus(requestID)
	if err != nil {
		return nil, internal.NewInfrastructureError("failed to re-read request status", err)
	}
	if status != StatusPending {
		return nil, internal.ErrStatusAlreadyFinal
	}

	comments := appendComment(req.Comments, "rejected: "+dto.Reason)
	now := time.Now()
	if err := s.repo.UpdateStatusFrom(requestID, StatusPending, StatusRejected, &approver.ID, &now, comments); err != nil {
		if err == ErrStatusConflict {
			s.logger.Warn("rejection lost the race", "request_id", requestID, "approver_id", approver.ID)
			return nil, internal.ErrStatusAlreadyFinal
		}
		s.logger.Error("failed to write rejection", "error", err, "request_id", requestID)
		return nil, internal.NewInfrastructureError("failed to reject leave request", err)
	}

	req.Status = StatusRejected
	req.Comments = comments
	req.ApprovedBy = &approver.ID
	req.ApprovedAt = &now
	req.UpdatedAt = now

	// Rejection changes no balance, but a calendar view may have cached the
	// pending range.
	s.balances.Invalidate(req.UserID)

	s.logger.Info("leave request rejected",
		"request_id", requestID,
		"user_id", req.UserID,
		"approver_id", approver.ID,
		"reason", dto.Reason)

	_ = s.bus.Publish(context.Background(),
		events.NewLeaveRejectedEvent(req.ID, req.UserID, req.LeaveType, req.StartDate, req.EndDate, dto.Reason))

	return req, nil
}

// Cancel lets the requester withdraw a request that is still PENDING.
func (s *Service) Cancel(requestID, requesterID int64) (*LeaveRequest, error) {
	req, err := s.repo.GetByID(requestID)
	if err != nil {
		return nil, internal.ErrLeaveRequestNotFound
	}

	if req.UserID != requesterID {
		return nil, internal.ErrNotRequestOwner
	}

	if !CanTransition(req.Status, StatusCancelled) {
		return nil, internal.ErrStatusAlreadyFinal
	}

	if err := s.repo.UpdateStatusFrom(requestID, StatusPending, StatusCancelled, nil, nil, ""); err != nil {
		if err == ErrStatusConflict {
			return nil, internal.ErrStatusAlreadyFinal
		}
		s.logger.Error("failed to cancel leave request", "error", err, "request_id", requestID)
		return nil, internal.NewInfrastructureError("failed to cancel leave request", err)
	}

	req.Status = StatusCancelled
	req.UpdatedAt = time.Now()

	s.logger.Info("leave request cancelled", "request_id", requestID, "user_id", requesterID)

	_ = s.bus.Publish(context.Background(),
		events.NewLeaveCancelledEvent(req.ID, req.UserID, req.LeaveType, req.StartDate, req.EndDate))

	return req, nil
}

// BulkApprove applies Approve per item; one failure never aborts the rest.
func (s *Service) BulkApprove(requestIDs []int64, approver *auth.User) []BulkResult {
	results := make([]BulkResult, 0, len(requestIDs))
	for _, id := range requestIDs {
		if _, err := s.Approve(id, approver); err != nil {
			results = append(results, BulkResult{RequestID: id, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{RequestID: id, Success: true})
	}
	return results
}

// BulkReject applies Reject per item with a shared reason.
func (s *Service) BulkReject(requestIDs []int64, approver *auth.User, reason string) []BulkResult {
	results := make([]BulkResult, 0, len(requestIDs))
	for _, id := range requestIDs {
		if _, err := s.Reject(id, approver, RejectDTO{Reason: reason}); err != nil {
			results = append(results, BulkResult{RequestID: id, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{RequestID: id, Success: true})
	}
	return results
}

func (s *Service) GetRequest(requestID, userID int64, isAdmin bool) (*LeaveRequest, error) {
	req, err := s.repo.GetByID(requestID)
	if err != nil {
		return nil, internal.ErrLeaveRequestNotFound
	}
	if !isAdmin && req.UserID != userID {
		return nil, internal.ErrNotRequestOwner
	}
	return req, nil
}

func (s *Service) ListUserRequests(userID int64, limit, offset int) ([]*LeaveRequest, error) {
	requests, err := s.repo.GetByUserID(userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list leave requests", "error", err, "user_id", userID)
		return nil, internal.NewInfrastructureError("failed to list leave requests", err)
	}
	return requests, nil
}

func (s *Service) ListPending(approver *auth.User, limit, offset int) ([]*LeaveRequest, error) {
	if !approver.IsAdmin() {
		return nil, internal.ErrAdminRequired
	}
	requests, err := s.repo.GetPending(limit, offset)
	if err != nil {
		s.logger.Error("failed to list pending requests", "error", err)
		return nil, internal.NewInfrastructureError("failed to list pending requests", err)
	}
	return requests, nil
}

func appendComment(existing, comment string) string {
	if existing == "" {
		return comment
	}
	return existing + "\n" + comment
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
