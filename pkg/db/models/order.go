package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltline/voltline-backend/pkg/enums"
	"github.com/voltline/voltline-backend/pkg/types"
)

// Order is the aggregate root of the fulfillment flow. Its id is a
// system-generated uuid string, deliberately distinct from the numeric
// customer and store identifiers. Monetary fields are frozen at creation;
// nothing recomputes them afterwards.
type Order struct {
	ID uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	// OrderNumber is assigned by the database sequence; the default tag
	// keeps gorm from writing the zero value into the INSERT.
	OrderNumber int64             `gorm:"column:order_number;not null;uniqueIndex;default:nextval('orders_order_number_seq')"`
	CustomerID  int64             `gorm:"column:customer_id;not null;index"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending_payment'"`

	DeliveryMethod  enums.DeliveryMethod `gorm:"column:delivery_method;type:text;not null"`
	DeliveryType    enums.DeliveryType   `gorm:"column:delivery_type;type:text;not null"`
	DeliveryAddress *types.Address       `gorm:"column:delivery_address;type:jsonb;serializer:json"`
	PickupStoreID   *int64               `gorm:"column:pickup_store_id"`

	// FulfilledByStoreID routes the order through the seller-acceptance
	// branch when set. Fixed at creation, never changed afterwards.
	FulfilledByStoreID *int64 `gorm:"column:fulfilled_by_store_id;index"`

	SubtotalPaise    int     `gorm:"column:subtotal_paise;not null"`
	DeliveryFeePaise int     `gorm:"column:delivery_fee_paise;not null;default:0"`
	DiscountPaise    int     `gorm:"column:discount_paise;not null;default:0"`
	TotalPaise       int     `gorm:"column:total_paise;not null"`
	CouponCode       *string `gorm:"column:coupon_code"`

	// PaymentRef is the customer-submitted UPI reference. Evidence, not
	// cryptographically verified.
	PaymentRef        *string `gorm:"column:payment_ref"`
	PaymentProofURL   *string `gorm:"column:payment_proof_url"`
	VerificationNotes *string `gorm:"column:verification_notes"`

	Items []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	DeliveredAt *time.Time `gorm:"column:delivered_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
