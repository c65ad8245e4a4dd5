package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/voltline/voltline-backend/pkg/config"
	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
	"github.com/voltline/voltline-backend/pkg/types"
)

var oneHundred = decimal.NewFromInt(100)

// isLocalPincode reports whether the postal code falls inside the
// configured local delivery zone.
func isLocalPincode(postalCode string, prefixes []string) bool {
	code := strings.TrimSpace(postalCode)
	for _, prefix := range prefixes {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" && strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}

// deliveryTypeFor derives the delivery type once at order creation.
// Pickups are always local; shipped orders are local only when the
// destination pincode matches a configured prefix.
func deliveryTypeFor(method enums.DeliveryMethod, address *types.Address, prefixes []string) enums.DeliveryType {
	if method == enums.DeliveryMethodPickup {
		return enums.DeliveryTypeLocal
	}
	if address != nil && isLocalPincode(address.PostalCode, prefixes) {
		return enums.DeliveryTypeLocal
	}
	return enums.DeliveryTypeCourier
}

// deliveryFeePaise prices the delivery leg. Pickup is free, quick
// delivery carries a flat fee, and shipping is free above the
// configured subtotal threshold.
func deliveryFeePaise(cfg config.CheckoutConfig, method enums.DeliveryMethod, subtotalPaise int) int {
	switch method {
	case enums.DeliveryMethodPickup:
		return 0
	case enums.DeliveryMethodQuickDelivery:
		return cfg.QuickDeliveryFeePaise
	default:
		if subtotalPaise >= cfg.FreeDeliveryAbovePaise {
			return 0
		}
		return cfg.ShippingFeePaise
	}
}

// couponDiscountPaise computes the percentage discount in whole paise,
// rounded down, capped by the coupon's maximum when one is set. The
// result never exceeds the subtotal.
func couponDiscountPaise(coupon *models.Coupon, subtotalPaise int) int {
	if coupon == nil || subtotalPaise <= 0 {
		return 0
	}
	discount := decimal.NewFromInt(int64(subtotalPaise)).
		Mul(coupon.PercentOff).
		Div(oneHundred).
		IntPart()
	if coupon.MaxDiscountPaise > 0 && discount > int64(coupon.MaxDiscountPaise) {
		discount = int64(coupon.MaxDiscountPaise)
	}
	if discount > int64(subtotalPaise) {
		discount = int64(subtotalPaise)
	}
	if discount < 0 {
		return 0
	}
	return int(discount)
}
