package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/voltline/voltline-backend/pkg/db/models"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
)

type storeRepository interface {
	Create(ctx context.Context, store *models.Store) (*models.Store, error)
	FindByID(ctx context.Context, id int64) (*models.Store, error)
	FindActiveByOwner(ctx context.Context, ownerUserID int64) (*models.Store, error)
}

// Service manages seller storefronts.
type Service interface {
	Create(ctx context.Context, ownerUserID int64, input CreateStoreInput) (*StoreDTO, error)
	Get(ctx context.Context, storeID int64) (*StoreDTO, error)
	GetMine(ctx context.Context, ownerUserID int64) (*StoreDTO, error)
}

type service struct {
	repo storeRepository
}

// NewService builds the stores service.
func NewService(repo storeRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, ownerUserID int64, input CreateStoreInput) (*StoreDTO, error) {
	if ownerUserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner user id required")
	}
	name := strings.TrimSpace(input.Name)
	city := strings.TrimSpace(input.City)
	pincode := strings.TrimSpace(input.Pincode)
	if name == "" || city == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name and city required")
	}
	if len(pincode) != 6 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pincode must be 6 digits")
	}
	for _, r := range pincode {
		if r < '0' || r > '9' {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "pincode must be 6 digits")
		}
	}

	existing, err := s.repo.FindActiveByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up existing store")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already owns an active store")
	}

	store, err := s.repo.Create(ctx, &models.Store{
		OwnerUserID: ownerUserID,
		Name:        name,
		City:        city,
		Pincode:     pincode,
		IsActive:    true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create store")
	}
	return FromModel(store), nil
}

func (s *service) Get(ctx context.Context, storeID int64) (*StoreDTO, error) {
	if storeID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	return FromModel(store), nil
}

func (s *service) GetMine(ctx context.Context, ownerUserID int64) (*StoreDTO, error) {
	if ownerUserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner user id required")
	}
	store, err := s.repo.FindActiveByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	return FromModel(store), nil
}
