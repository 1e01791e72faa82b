package repository

import (
	"errors"

	"workflow-go/internal/models"
)

var (
	// ErrNotFound no row matched the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail a user with that email already exists.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository user persistence.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	ExistsByEmail(email string) (bool, error)
}

// DatasetRepository dataset metadata persistence.
type DatasetRepository interface {
	Create(dataset *models.Dataset) error
	GetByIDAndUserID(id, userID string) (*models.Dataset, error)
	// ListByUserID returns the user's datasets oldest first.
	ListByUserID(userID string) ([]models.Dataset, error)
}

// Store bundles the repositories a process works with.
type Store struct {
	Users    UserRepository
	Datasets DatasetRepository
}
