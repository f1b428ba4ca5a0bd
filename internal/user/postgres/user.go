package postgres

import (
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
	"github.com/frahmantamala/leave-management/internal/user"
	"gorm.io/gorm"
)

// UserRepository implements the user.Repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var u userDatamodel.User
	if err := r.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return user.FromDataModel(&u), nil
}

func (r *UserRepository) GetByIDs(ids []int64) ([]*user.User, error) {
	var users []*userDatamodel.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return user.FromDataModelSlice(users), nil
}

func (r *UserRepository) List() ([]*user.User, error) {
	var users []*userDatamodel.User
	if err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return user.FromDataModelSlice(users), nil
}
