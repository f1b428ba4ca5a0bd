package user

import (
	"log/slog"

	"github.com/frahmantamala/leave-management/internal"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetUser(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", id)
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

// ListUsers backs the admin dashboard; the balance ledger batch-fetches
// balances for the returned ids in a single round trip.
func (s *Service) ListUsers(role string) ([]*User, error) {
	if role != "admin" {
		return nil, internal.ErrAdminRequired
	}
	users, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInfrastructureError("failed to list users", err)
	}
	return users, nil
}
