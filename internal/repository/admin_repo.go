package repository

import (
	"afilia/internal/models"

	"gorm.io/gorm"
)

type AdminRepository interface {
	GetByID(id uint) (*models.AdminUser, error)
	GetByEmail(email string) (*models.AdminUser, error)
	Create(a *models.AdminUser) error
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) GetByID(id uint) (*models.AdminUser, error) {
	var a models.AdminUser
	if err := r.db.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *adminRepository) GetByEmail(email string) (*models.AdminUser, error) {
	var a models.AdminUser
	if err := r.db.Where("email = ?", email).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *adminRepository) Create(a *models.AdminUser) error {
	return r.db.Create(a).Error
}
