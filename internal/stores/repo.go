package stores

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/voltline/voltline-backend/pkg/db/models"
)

// Repository exposes storefront persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a stores repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new storefront.
func (r *Repository) Create(ctx context.Context, store *models.Store) (*models.Store, error) {
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

// FindByID loads a storefront by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindActiveByOwner returns the owner's active storefront, or nil when
// the user has none.
func (r *Repository) FindActiveByOwner(ctx context.Context, ownerUserID int64) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ? AND is_active = ?", ownerUserID, true).
		Order("id ASC").
		First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &store, nil
}
