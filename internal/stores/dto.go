package stores

import (
	"time"

	"github.com/voltline/voltline-backend/pkg/db/models"
)

// StoreDTO is the transport shape of a seller storefront.
type StoreDTO struct {
	ID          int64     `json:"id"`
	OwnerUserID int64     `json:"owner_user_id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	Pincode     string    `json:"pincode"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateStoreInput holds the fields a seller submits to open a storefront.
type CreateStoreInput struct {
	Name    string `json:"name" validate:"required"`
	City    string `json:"city" validate:"required"`
	Pincode string `json:"pincode" validate:"required,len=6,numeric"`
}

func FromModel(store *models.Store) *StoreDTO {
	if store == nil {
		return nil
	}
	return &StoreDTO{
		ID:          store.ID,
		OwnerUserID: store.OwnerUserID,
		Name:        store.Name,
		City:        store.City,
		Pincode:     store.Pincode,
		IsActive:    store.IsActive,
		CreatedAt:   store.CreatedAt,
		UpdatedAt:   store.UpdatedAt,
	}
}
