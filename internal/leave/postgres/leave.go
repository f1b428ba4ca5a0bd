package postgres

import (
	"time"

	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/leave"
	"gorm.io/gorm"
)

// LeaveRepository implements the leave.Repository interface using GORM
type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.Repository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Create(req *leave.LeaveRequest) error {
	model := leave.ToDataModel(req)
	if err := r.db.Create(model).Error; err != nil {
		return err
	}
	req.ID = model.ID
	return nil
}

func (r *LeaveRepository) GetByID(id int64) (*leave.LeaveRequest, error) {
	var model leaveDatamodel.LeaveRequest
	if err := r.db.Where("id = ?", id).First(&model).Error; err != nil {
		return nil, err
	}
	return leave.FromDataModel(&model), nil
}

func (r *LeaveRepository) GetStatus(id int64) (string, error) {
	var model leaveDatamodel.LeaveRequest
	if err := r.db.Select("status").Where("id = ?", id).First(&model).Error; err != nil {
		return "", err
	}
	return model.Status, nil
}

// UpdateStatusFrom writes the new status only if the row still holds
// fromStatus. The WHERE clause makes the check-and-set a single atomic
// statement; zero rows affected means somebody else won the race.
func (r *LeaveRepository) UpdateStatusFrom(id int64, fromStatus, toStatus string, approvedBy *int64, approvedAt *time.Time, comments string) error {
	updates := map[string]interface{}{
		"status":     toStatus,
		"updated_at": time.Now(),
	}
	if approvedBy != nil {
		updates["approved_by"] = *approvedBy
	}
	if approvedAt != nil {
		updates["approved_at"] = *approvedAt
	}
	if comments != "" {
		updates["comments"] = comments
	}

	result := r.db.Model(&leaveDatamodel.LeaveRequest{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return leave.ErrStatusConflict
	}
	return nil
}

func (r *LeaveRepository) GetByUserID(userID int64, limit, offset int) ([]*leave.LeaveRequest, error) {
	var models []*leaveDatamodel.LeaveRequest
	err := r.db.Where("user_id = ?", userID).
		Order("start_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return leave.FromDataModelSlice(models), nil
}

func (r *LeaveRepository) GetPending(limit, offset int) ([]*leave.LeaveRequest, error) {
	var models []*leaveDatamodel.LeaveRequest
	err := r.db.Where("status = ?", leave.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return leave.FromDataModelSlice(models), nil
}
