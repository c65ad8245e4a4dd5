package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coupon applies a percentage discount at checkout, capped to a fixed
// amount. The computed discount is frozen onto the order.
type Coupon struct {
	Code             string          `gorm:"column:code;primaryKey"`
	PercentOff       decimal.Decimal `gorm:"column:percent_off;type:numeric(5,2);not null"`
	MaxDiscountPaise int             `gorm:"column:max_discount_paise;not null;default:0"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
