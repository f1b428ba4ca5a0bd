package postgres

import (
	"github.com/frahmantamala/leave-management/internal/auth"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// AuthRepository implements the auth.RepositoryAPI interface using GORM
type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.RepositoryAPI {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetByEmail(email string) (*auth.UserRecord, error) {
	var u userDatamodel.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return toRecord(&u), nil
}

func (r *AuthRepository) GetByID(id int64) (*auth.UserRecord, error) {
	var u userDatamodel.User
	if err := r.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return toRecord(&u), nil
}

func toRecord(u *userDatamodel.User) *auth.UserRecord {
	return &auth.UserRecord{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
	}
}
