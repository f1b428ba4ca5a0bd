package conflict

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/leave-management/internal"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CheckConflict reports which other protected users are already absent
// (pending or approved) during [start, end]. Advisory only.
func (s *Service) CheckConflict(start, end time.Time, excludeUserID int64) (*Result, error) {
	overlaps, err := s.repo.ProtectedOverlapping(start, end, excludeUserID)
	if err != nil {
		s.logger.Error("conflict check failed", "error", err,
			"start", start, "end", end, "exclude_user_id", excludeUserID)
		return nil, internal.NewInfrastructureError("conflict check failed", err)
	}

	seen := make(map[int64]bool)
	names := make([]string, 0, len(overlaps))
	for _, o := range overlaps {
		if seen[o.UserID] {
			continue
		}
		seen[o.UserID] = true
		names = append(names, o.UserName)
	}

	result := &Result{
		HasConflict:      len(names) > 0,
		ConflictingUsers: names,
	}

	if result.HasConflict {
		s.logger.Warn("coverage conflict detected",
			"start", start, "end", end,
			"exclude_user_id", excludeUserID,
			"conflicting_users", names)
	}

	return result, nil
}
