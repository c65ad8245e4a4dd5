package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltline/voltline-backend/internal/inventory"
	"github.com/voltline/voltline-backend/internal/orders"
	"github.com/voltline/voltline-backend/pkg/config"
	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
	"github.com/voltline/voltline-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type catalogReader interface {
	WithTx(tx *gorm.DB) inventory.Repository
	FindVariantDetail(ctx context.Context, variantID int64) (*inventory.VariantDetail, error)
	AvailableQty(ctx context.Context, variantID int64, storeID *int64) (int, error)
}

// Service creates orders from customer carts. Every order it produces
// starts in pending_payment with its money fields frozen.
type Service interface {
	Execute(ctx context.Context, customerID int64, input CheckoutInput) (*models.Order, error)
}

// ItemInput selects a variant and quantity to purchase.
type ItemInput struct {
	VariantID int64 `json:"variant_id" validate:"required,gt=0"`
	Qty       int   `json:"qty" validate:"required,gt=0"`
}

// CheckoutInput captures everything needed to place an order.
type CheckoutInput struct {
	Items           []ItemInput          `json:"items" validate:"required,min=1,dive"`
	DeliveryMethod  enums.DeliveryMethod `json:"delivery_method" validate:"required"`
	DeliveryAddress *types.Address       `json:"delivery_address,omitempty"`
	PickupStoreID   *int64               `json:"pickup_store_id,omitempty"`
	CouponCode      *string              `json:"coupon_code,omitempty"`
}

type service struct {
	tx         txRunner
	repo       Repository
	catalog    catalogReader
	ordersRepo orders.Repository
	cfg        config.CheckoutConfig
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	repo Repository,
	catalog catalogReader,
	ordersRepo orders.Repository,
	cfg config.CheckoutConfig,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{
		tx:         tx,
		repo:       repo,
		catalog:    catalog,
		ordersRepo: ordersRepo,
		cfg:        cfg,
	}, nil
}

func (s *service) Execute(ctx context.Context, customerID int64, input CheckoutInput) (*models.Order, error) {
	if customerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		catalog := s.catalog.WithTx(tx)
		checkoutRepo := s.repo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		lines, fulfilledBy, err := s.snapshotItems(ctx, catalog, input.Items)
		if err != nil {
			return err
		}

		subtotal := 0
		for _, line := range lines {
			subtotal += line.TotalPaise
		}

		discount := 0
		var couponCode *string
		if input.CouponCode != nil {
			code := strings.ToUpper(strings.TrimSpace(*input.CouponCode))
			coupon, err := checkoutRepo.FindActiveCoupon(ctx, code)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up coupon")
			}
			if coupon == nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon code")
			}
			discount = couponDiscountPaise(coupon, subtotal)
			couponCode = &coupon.Code
		}

		fee := deliveryFeePaise(s.cfg, input.DeliveryMethod, subtotal)

		order := &models.Order{
			ID:                 uuid.New(),
			CustomerID:         customerID,
			Status:             enums.OrderStatusPendingPayment,
			DeliveryMethod:     input.DeliveryMethod,
			DeliveryType:       deliveryTypeFor(input.DeliveryMethod, input.DeliveryAddress, s.cfg.LocalPincodePrefixes),
			DeliveryAddress:    input.DeliveryAddress,
			PickupStoreID:      input.PickupStoreID,
			FulfilledByStoreID: fulfilledBy,
			SubtotalPaise:      subtotal,
			DeliveryFeePaise:   fee,
			DiscountPaise:      discount,
			TotalPaise:         subtotal + fee - discount,
			CouponCode:         couponCode,
		}

		order, err = ordersRepo.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		for i := range lines {
			lines[i].ID = uuid.New()
			lines[i].OrderID = order.ID
		}
		if err := ordersRepo.CreateLineItems(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order line items")
		}

		order.Items = lines
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// snapshotItems resolves every requested variant, checks stock at the
// fulfilling location, and freezes the catalog data onto line items.
// All items must resolve to the same fulfillment source: either the
// platform warehouse or a single seller store.
func (s *service) snapshotItems(ctx context.Context, catalog inventory.Repository, items []ItemInput) ([]models.OrderLineItem, *int64, error) {
	seen := make(map[int64]bool, len(items))
	lines := make([]models.OrderLineItem, 0, len(items))

	var fulfilledBy *int64
	first := true
	for _, item := range items {
		if seen[item.VariantID] {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("variant %d listed more than once", item.VariantID))
		}
		seen[item.VariantID] = true

		detail, err := catalog.FindVariantDetail(ctx, item.VariantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("variant %d not found", item.VariantID))
			}
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load variant")
		}
		if !detail.Product.IsActive || !detail.Variant.IsActive {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("variant %d is no longer available", item.VariantID))
		}

		if first {
			fulfilledBy = detail.Product.StoreID
			first = false
		} else if !sameSource(fulfilledBy, detail.Product.StoreID) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "order items must share a single fulfillment source")
		}

		available, err := catalog.AvailableQty(ctx, item.VariantID, detail.Product.StoreID)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check stock")
		}
		if available < item.Qty {
			return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for variant %d", item.VariantID))
		}

		variantID := detail.Variant.ID
		lines = append(lines, models.OrderLineItem{
			ProductID:      detail.Product.ID,
			VariantID:      &variantID,
			Name:           detail.Product.Name,
			Variant:        detail.Variant.Attributes,
			UnitPricePaise: detail.Variant.PricePaise,
			Qty:            item.Qty,
			TotalPaise:     detail.Variant.PricePaise * item.Qty,
		})
	}
	return lines, fulfilledBy, nil
}

func validateInput(input CheckoutInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	for _, item := range input.Items {
		if item.VariantID <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
		}
		if item.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
	}
	if !input.DeliveryMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery method")
	}
	if input.DeliveryMethod == enums.DeliveryMethodPickup {
		if input.PickupStoreID == nil || *input.PickupStoreID <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "pickup store required for pickup orders")
		}
		return nil
	}
	if input.DeliveryAddress == nil || !input.DeliveryAddress.Validate() {
		return pkgerrors.New(pkgerrors.CodeValidation, "complete delivery address required")
	}
	return nil
}

func sameSource(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
