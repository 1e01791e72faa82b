package repository

import (
	"workflow-go/internal/models"

	"gorm.io/gorm"
)

// NewGormStore returns a Store backed by db.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Users:    NewGormUserRepository(db),
		Datasets: NewGormDatasetRepository(db),
	}
}

// GormDatasetRepository dataset repository backed by gorm.
type GormDatasetRepository struct {
	db *gorm.DB
}

// NewGormDatasetRepository creates a gorm dataset repository.
func NewGormDatasetRepository(db *gorm.DB) *GormDatasetRepository {
	return &GormDatasetRepository{db: db}
}

// Create inserts a dataset.
func (r *GormDatasetRepository) Create(dataset *models.Dataset) error {
	return r.db.Create(dataset).Error
}

// GetByIDAndUserID returns the dataset only if userID owns it.
func (r *GormDatasetRepository) GetByIDAndUserID(id, userID string) (*models.Dataset, error) {
	var dataset models.Dataset
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&dataset).Error
	if err != nil {
		return nil, translate(err)
	}
	return &dataset, nil
}

// ListByUserID returns the user's datasets oldest first.
func (r *GormDatasetRepository) ListByUserID(userID string) ([]models.Dataset, error) {
	var datasets []models.Dataset
	err := r.db.Where("user_id = ?", userID).Order("upload_date ASC").Order("rowid ASC").Find(&datasets).Error
	return datasets, err
}
