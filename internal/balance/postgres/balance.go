package postgres

import (
	"time"

	"github.com/frahmantamala/leave-management/internal/balance"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// BalanceRepository implements the balance.Repository interface using GORM
type BalanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) balance.Repository {
	return &BalanceRepository{db: db}
}

func (r *BalanceRepository) GetUser(id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *BalanceRepository) GetUsers(ids []int64) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ApprovedLeaveInRange group-fetches every approved request of the given
// users whose range intersects [start, end] in one query.
func (r *BalanceRepository) ApprovedLeaveInRange(userIDs []int64, start, end time.Time) ([]*leaveDatamodel.LeaveRequest, error) {
	var requests []*leaveDatamodel.LeaveRequest
	err := r.db.
		Where("user_id IN ?", userIDs).
		Where("status = ?", leaveDatamodel.StatusApproved).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Order("start_date ASC").
		Find(&requests).Error
	return requests, err
}
