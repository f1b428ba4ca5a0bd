package conflict

import "time"

// Result is the advisory outcome of a coverage check. It never blocks
// submission; callers surface it as a warning an administrator may act on.
type Result struct {
	HasConflict      bool     `json:"has_conflict"`
	ConflictingUsers []string `json:"conflicting_users"`
}

// Overlap is one protected user's request overlapping the probed range.
type Overlap struct {
	UserID    int64
	UserName  string
	StartDate time.Time
	EndDate   time.Time
	Status    string
}

// Repository is the read port for coverage checks. Implementations must
// restrict to users flagged as protected coverage, to PENDING/APPROVED
// requests, and to ranges overlapping [start, end] using inclusive
// interval overlap (a.start <= b.end AND b.start <= a.end).
type Repository interface {
	ProtectedOverlapping(start, end time.Time, excludeUserID int64) ([]*Overlap, error)
}
