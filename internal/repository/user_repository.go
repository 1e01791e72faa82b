package repository

import (
	"errors"
	"fmt"
	"strings"

	"workflow-go/internal/models"

	"gorm.io/gorm"
)

// GormUserRepository user repository backed by gorm.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a gorm user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts user unless the email is already taken.
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("count users by email: %w", err)
		}
		if count > 0 {
			return ErrDuplicateEmail
		}
		return insertUser(tx, user)
	})
}

// insertUser creates the row. A concurrent insert that wins the race after the
// count surfaces here as a unique index violation.
func insertUser(tx *gorm.DB, user *models.User) error {
	err := tx.Create(user).Error
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID looks a user up by ID.
func (r *GormUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetByEmail looks a user up by exact email.
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// ExistsByEmail reports whether the email is taken.
func (r *GormUserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
