package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltline/voltline-backend/pkg/enums"
	"github.com/voltline/voltline-backend/pkg/types"
)

// OrderLineItem snapshots the purchased product and variant at order time.
// Historical orders stay immutable regardless of later catalog edits; the
// only field mutated after creation is the return request block.
type OrderLineItem struct {
	ID        uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID     `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID int64         `gorm:"column:product_id;not null"`
	VariantID *int64        `gorm:"column:variant_id"`
	Name      string        `gorm:"column:name;not null"`
	Variant   types.JSONMap `gorm:"column:variant;type:jsonb;serializer:json"`

	UnitPricePaise int `gorm:"column:unit_price_paise;not null"`
	Qty            int `gorm:"column:qty;not null"`
	TotalPaise     int `gorm:"column:total_paise;not null"`

	// Return request sub-record. A nil status means no return was ever
	// requested for this item; at most one request per item.
	ReturnStatus      *enums.ReturnStatus `gorm:"column:return_status;type:text"`
	ReturnReason      *string             `gorm:"column:return_reason"`
	ReturnRequestedAt *time.Time          `gorm:"column:return_requested_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// HasReturnRequest reports whether a return was ever requested for the item.
func (i OrderLineItem) HasReturnRequest() bool {
	return i.ReturnStatus != nil
}
