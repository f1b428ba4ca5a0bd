package postgres

import (
	"time"

	toilDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/toil"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
	"github.com/frahmantamala/leave-management/internal/toil"
	"gorm.io/gorm"
)

// ToilRepository implements the toil.Repository interface using GORM
type ToilRepository struct {
	db *gorm.DB
}

func NewToilRepository(db *gorm.DB) toil.Repository {
	return &ToilRepository{db: db}
}

func (r *ToilRepository) Create(entry *toil.Entry) error {
	model := toil.ToDataModel(entry)
	if err := r.db.Create(model).Error; err != nil {
		return err
	}
	entry.ID = model.ID
	return nil
}

func (r *ToilRepository) GetByID(id int64) (*toil.Entry, error) {
	var model toilDatamodel.ToilEntry
	if err := r.db.Where("id = ?", id).First(&model).Error; err != nil {
		return nil, err
	}
	return toil.FromDataModel(&model), nil
}

func (r *ToilRepository) GetByUserID(userID int64, limit, offset int) ([]*toil.Entry, error) {
	var models []*toilDatamodel.ToilEntry
	err := r.db.Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toil.FromDataModelSlice(models), nil
}

func (r *ToilRepository) Update(entry *toil.Entry) error {
	entry.UpdatedAt = time.Now()
	return r.db.Save(toil.ToDataModel(entry)).Error
}

func (r *ToilRepository) GetUserBalance(userID int64) (float64, error) {
	var u userDatamodel.User
	if err := r.db.Select("toil_balance_hours").Where("id = ?", userID).First(&u).Error; err != nil {
		return 0, err
	}
	return u.ToilBalanceHours, nil
}

func (r *ToilRepository) UpdateUserBalance(userID int64, hours float64) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"toil_balance_hours": hours,
			"updated_at":         time.Now(),
		}).Error
}
