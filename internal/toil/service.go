package toil

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/core/events"
)

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service owns the TOIL sub-ledger and is, together with it, the only
// writer of the denormalized user balance. Approval is two dependent
// writes with no shared transaction: the entry is written first, then the
// user balance; if the balance write fails the entry write is compensated
// so an approved-but-uncredited entry can never persist.
type Service struct {
	repo   Repository
	bus    EventPublisher
	logger *slog.Logger
}

func NewService(repo Repository, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

// Credit appends a pending entry. Balances are untouched until approval.
func (s *Service) Credit(userID int64, dto CreditDTO) (*Entry, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("TOIL credit validation failed", "error", err, "user_id", userID)
		return nil, err
	}

	entry := &Entry{
		UserID:    userID,
		Date:      dto.Date,
		EntryType: dto.EntryType,
		Hours:     dto.Hours,
		Reason:    dto.Reason,
		Status:    StatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.repo.Create(entry); err != nil {
		s.logger.Error("failed to create TOIL entry", "error", err, "user_id", userID)
		return nil, internal.NewInfrastructureError("failed to create TOIL entry", err)
	}

	s.logger.Info("TOIL entry created",
		"entry_id", entry.ID,
		"user_id", userID,
		"hours", dto.Hours,
		"entry_type", dto.EntryType)

	return entry, nil
}

// Approve finalizes an entry and credits the user balance.
func (s *Service) Approve(entryID int64, approver *auth.User) (*Entry, error) {
	if !approver.IsAdmin() {
		return nil, internal.ErrAdminRequired
	}

	entry, err := s.repo.GetByID(entryID)
	if err != nil {
		return nil, internal.ErrToilEntryNotFound
	}

	if !CanTransition(entry.Status, StatusApproved) {
		s.logger.Warn("cannot approve TOIL entry in current status",
			"entry_id", entryID, "status", entry.Status)
		return nil, internal.ErrStatusAlreadyFinal
	}

	return s.applyApproval(entry, approver.ID)
}

// CreditApproved appends an entry and approves it in one step. Used by the
// approval workflow when a TOIL-type leave request is approved.
func (s *Service) CreditApproved(userID int64, dto CreditDTO, approverID int64) (*Entry, error) {
	entry, err := s.Credit(userID, dto)
	if err != nil {
		return nil, err
	}
	return s.applyApproval(entry, approverID)
}

// applyApproval runs the compensating-write sequence:
//  1. read the current balance
//  2. compute the new balance
//  3. write the entry as approved with the audit snapshot
//  4. write the user balance; on failure revert step 3
func (s *Service) applyApproval(entry *Entry, approverID int64) (*Entry, error) {
	previous, err := s.repo.GetUserBalance(entry.UserID)
	if err != nil {
		s.logger.Error("failed to read TOIL balance", "error", err, "user_id", entry.UserID)
		return nil, internal.NewInfrastructureError("failed to read TOIL balance", err)
	}

	newBalance := previous + entry.Hours
	now := time.Now()

	entry.Status = StatusApproved
	entry.ApprovedBy = &approverID
	entry.ApprovedAt = &now
	entry.PreviousBalance = &previous
	entry.NewBalance = &newBalance
	entry.UpdatedAt = now

	if err := s.repo.Update(entry); err != nil {
		s.logger.Error("failed to write approved TOIL entry", "error", err, "entry_id", entry.ID)
		return nil, internal.NewInfrastructureError("failed to approve TOIL entry", err)
	}

	if err := s.repo.UpdateUserBalance(entry.UserID, newBalance); err != nil {
		s.logger.Error("TOIL balance write failed, reverting entry approval",
			"error", err,
			"entry_id", entry.ID,
			"user_id", entry.UserID,
			"hours", entry.Hours)

		entry.Status = StatusPending
		entry.ApprovedBy = nil
		entry.ApprovedAt = nil
		entry.PreviousBalance = nil
		entry.NewBalance = nil
		entry.UpdatedAt = time.Now()
		if revertErr := s.repo.Update(entry); revertErr != nil {
			// Both writes failed; the entry still claims approval while the
			// balance does not reflect it. This must be reconciled manually.
			s.logger.Error("failed to revert TOIL entry after balance write failure",
				"error", revertErr,
				"entry_id", entry.ID,
				"user_id", entry.UserID)
		}

		return nil, internal.NewInfrastructureError("failed to credit TOIL balance", err)
	}

	s.logger.Info("TOIL entry approved",
		"entry_id", entry.ID,
		"user_id", entry.UserID,
		"hours", entry.Hours,
		"previous_balance", previous,
		"new_balance", newBalance)

	if s.bus != nil {
		_ = s.bus.Publish(context.Background(),
			events.NewToilApprovedEvent(entry.ID, entry.UserID, entry.Hours, newBalance))
	}

	return entry, nil
}

// Reject finalizes an entry without touching any balance.
func (s *Service) Reject(entryID int64, approver *auth.User, dto RejectDTO) (*Entry, error) {
	if !approver.IsAdmin() {
		return nil, internal.ErrAdminRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.repo.GetByID(entryID)
	if err != nil {
		return nil, internal.ErrToilEntryNotFound
	}

	if !CanTransition(entry.Status, StatusRejected) {
		s.logger.Warn("cannot reject TOIL entry in current status",
			"entry_id", entryID, "status", entry.Status)
		return nil, internal.ErrStatusAlreadyFinal
	}

	now := time.Now()
	entry.Status = StatusRejected
	entry.ApprovedBy = &approver.ID
	entry.ApprovedAt = &now
	if entry.Reason != "" {
		entry.Reason = entry.Reason + " | rejected: " + dto.Reason
	} else {
		entry.Reason = "rejected: " + dto.Reason
	}
	entry.UpdatedAt = now

	if err := s.repo.Update(entry); err != nil {
		s.logger.Error("failed to reject TOIL entry", "error", err, "entry_id", entryID)
		return nil, internal.NewInfrastructureError("failed to reject TOIL entry", err)
	}

	s.logger.Info("TOIL entry rejected",
		"entry_id", entryID,
		"approver_id", approver.ID,
		"reason", dto.Reason)

	return entry, nil
}

// ListEntries returns a user's TOIL log, newest first.
func (s *Service) ListEntries(userID int64, limit, offset int) ([]*Entry, error) {
	entries, err := s.repo.GetByUserID(userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list TOIL entries", "error", err, "user_id", userID)
		return nil, internal.NewInfrastructureError("failed to list TOIL entries", err)
	}
	return entries, nil
}
