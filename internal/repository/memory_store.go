package repository

import (
	"sync"

	"workflow-go/internal/models"
)

// NewMemoryStore returns a Store whose contents live only as long as the process.
func NewMemoryStore() *Store {
	return &Store{
		Users:    NewMemoryUserRepository(),
		Datasets: NewMemoryDatasetRepository(),
	}
}

// MemoryUserRepository keeps users in a map keyed by ID plus an email index.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
}

// NewMemoryUserRepository creates an empty user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

// Create stores a copy of user. The email check and insert happen under one lock.
func (r *MemoryUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return ErrDuplicateEmail
	}

	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[user.Email] = user.ID
	return nil
}

// GetByID looks a user up by ID.
func (r *MemoryUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	found := *user
	return &found, nil
}

// GetByEmail looks a user up by exact email.
func (r *MemoryUserRepository) GetByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	found := *r.byID[id]
	return &found, nil
}

// ExistsByEmail reports whether the email is taken.
func (r *MemoryUserRepository) ExistsByEmail(email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byEmail[email]
	return ok, nil
}

// MemoryDatasetRepository keeps datasets in insertion order.
type MemoryDatasetRepository struct {
	mu       sync.RWMutex
	datasets []models.Dataset
}

// NewMemoryDatasetRepository creates an empty dataset repository.
func NewMemoryDatasetRepository() *MemoryDatasetRepository {
	return &MemoryDatasetRepository{}
}

// Create appends a copy of dataset.
func (r *MemoryDatasetRepository) Create(dataset *models.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.datasets = append(r.datasets, *dataset)
	return nil
}

// GetByIDAndUserID returns the dataset only if userID owns it.
func (r *MemoryDatasetRepository) GetByIDAndUserID(id, userID string) (*models.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.datasets {
		if r.datasets[i].ID == id && r.datasets[i].UserID == userID {
			found := r.datasets[i]
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// ListByUserID returns the user's datasets in insertion order.
func (r *MemoryDatasetRepository) ListByUserID(userID string) ([]models.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []models.Dataset
	for _, d := range r.datasets {
		if d.UserID == userID {
			result = append(result, d)
		}
	}
	return result, nil
}
