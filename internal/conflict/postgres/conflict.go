package postgres

import (
	"time"

	"github.com/frahmantamala/leave-management/internal/conflict"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"gorm.io/gorm"
)

// ConflictRepository implements the conflict.Repository interface using GORM
type ConflictRepository struct {
	db *gorm.DB
}

func NewConflictRepository(db *gorm.DB) conflict.Repository {
	return &ConflictRepository{db: db}
}

func (r *ConflictRepository) ProtectedOverlapping(start, end time.Time, excludeUserID int64) ([]*conflict.Overlap, error) {
	var rows []struct {
		UserID    int64
		UserName  string
		StartDate time.Time
		EndDate   time.Time
		Status    string
	}

	err := r.db.
		Table("leave_requests").
		Select("leave_requests.user_id AS user_id, users.name AS user_name, leave_requests.start_date, leave_requests.end_date, leave_requests.status").
		Joins("JOIN users ON users.id = leave_requests.user_id").
		Where("users.protected_coverage = ?", true).
		Where("leave_requests.user_id <> ?", excludeUserID).
		Where("leave_requests.status IN ?", []string{leaveDatamodel.StatusPending, leaveDatamodel.StatusApproved}).
		Where("leave_requests.start_date <= ? AND leave_requests.end_date >= ?", end, start).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	overlaps := make([]*conflict.Overlap, len(rows))
	for i, row := range rows {
		overlaps[i] = &conflict.Overlap{
			UserID:    row.UserID,
			UserName:  row.UserName,
			StartDate: row.StartDate,
			EndDate:   row.EndDate,
			Status:    row.Status,
		}
	}
	return overlaps, nil
}
