package balance

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/cache"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
)

// Service derives per-user leave balances from approved requests. Results
// are cached per user/year with a short TTL; the approval workflow
// invalidates the affected keys synchronously on every transition, the TTL
// only bounds staleness if an invalidation is missed.
type Service struct {
	repo   Repository
	cache  *cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewService(repo Repository, c *cache.Cache, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *Service) GetBalance(userID int64, year int) (*Balance, error) {
	key := CacheKey(userID, year)
	if v, ok := s.cache.Get(key); ok {
		if b, ok := v.(*Balance); ok {
			return b, nil
		}
	}

	u, err := s.repo.GetUser(userID)
	if err != nil {
		s.logger.Error("failed to fetch user for balance", "error", err, "user_id", userID)
		return nil, internal.ErrUserNotFound
	}

	start, end := yearBounds(year)
	requests, err := s.repo.ApprovedLeaveInRange([]int64{userID}, start, end)
	if err != nil {
		s.logger.Error("failed to fetch approved leave", "error", err, "user_id", userID, "year", year)
		return nil, internal.NewInfrastructureError("failed to load leave history", err)
	}

	b := compute(u, requests, year)
	s.cache.Set(key, b, s.ttl)
	return b, nil
}

// GetBalances is the batch variant behind the admin dashboard. Cached
// entries are served as-is; the remaining users are resolved with one user
// fetch and one leave fetch, partitioned client-side.
func (s *Service) GetBalances(userIDs []int64, year int) (map[int64]*Balance, error) {
	result := make(map[int64]*Balance, len(userIDs))

	var missing []int64
	for _, id := range userIDs {
		if v, ok := s.cache.Get(CacheKey(id, year)); ok {
			if b, ok := v.(*Balance); ok {
				result[id] = b
				continue
			}
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return result, nil
	}

	users, err := s.repo.GetUsers(missing)
	if err != nil {
		s.logger.Error("failed to fetch users for balances", "error", err, "count", len(missing))
		return nil, internal.NewInfrastructureError("failed to load users", err)
	}

	start, end := yearBounds(year)
	requests, err := s.repo.ApprovedLeaveInRange(missing, start, end)
	if err != nil {
		s.logger.Error("failed to fetch approved leave for balances", "error", err, "year", year)
		return nil, internal.NewInfrastructureError("failed to load leave history", err)
	}

	byUser := make(map[int64][]*leaveDatamodel.LeaveRequest)
	for _, req := range requests {
		byUser[req.UserID] = append(byUser[req.UserID], req)
	}

	for _, u := range users {
		b := compute(u, byUser[u.ID], year)
		s.cache.Set(CacheKey(u.ID, year), b, s.ttl)
		result[u.ID] = b
	}

	return result, nil
}

// Invalidate drops every cached balance for the user. Called by the
// approval workflow after any transition that could change derived state.
func (s *Service) Invalidate(userID int64) {
	prefix := CacheKeyPrefix(userID)
	removed := s.cache.DeleteFunc(func(key string) bool {
		return len(key) >= len(prefix) && key[:len(prefix)] == prefix
	})
	if removed > 0 {
		s.logger.Debug("balance cache invalidated", "user_id", userID, "entries", removed)
	}
}

func compute(u *userDatamodel.User, requests []*leaveDatamodel.LeaveRequest, year int) *Balance {
	b := &Balance{
		UserID:        u.ID,
		Year:          year,
		Allowance:     u.AnnualLeaveAllowance,
		SickAllowance: u.SickLeaveAllowance,
		ToilHours:     u.ToilBalanceHours,
		History:       make([]HistoryEntry, 0, len(requests)),
	}

	for _, req := range requests {
		days := WorkingDaysInYear(req.StartDate, req.EndDate, year)
		entry := HistoryEntry{
			RequestID:   req.ID,
			LeaveType:   req.LeaveType,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			WorkingDays: days,
		}

		switch req.LeaveType {
		case leaveDatamodel.TypeAnnual:
			b.Used += float64(days)
		case leaveDatamodel.TypeSick:
			b.SickUsed += float64(days)
		case leaveDatamodel.TypeToil:
			if req.Hours != nil && *req.Hours > 0 {
				b.ToilHoursEarned += *req.Hours
				entry.Hours = *req.Hours
			} else {
				hours := float64(days * hoursPerWorkingDay)
				b.ToilHoursUsed += hours
				entry.Hours = -hours
			}
		}

		b.History = append(b.History, entry)
	}

	b.Remaining = b.Allowance - b.Used
	b.SickRemaining = b.SickAllowance - b.SickUsed
	return b
}

func yearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return start, end
}
