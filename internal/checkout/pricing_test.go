package checkout

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
)

func TestDeliveryTypeFor(t *testing.T) {
	prefixes := []string{"395", "394"}

	cases := []struct {
		name   string
		method enums.DeliveryMethod
		pin    string
		want   enums.DeliveryType
	}{
		{"pickup ignores pincode", enums.DeliveryMethodPickup, "110001", enums.DeliveryTypeLocal},
		{"local prefix 395", enums.DeliveryMethodShipping, "395007", enums.DeliveryTypeLocal},
		{"local prefix 394", enums.DeliveryMethodShipping, "394210", enums.DeliveryTypeLocal},
		{"non-local pincode", enums.DeliveryMethodShipping, "560001", enums.DeliveryTypeCourier},
		{"quick delivery local", enums.DeliveryMethodQuickDelivery, "395001", enums.DeliveryTypeLocal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := deliveryTypeFor(tc.method, shippingAddress(tc.pin), prefixes)
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}

	if deliveryTypeFor(enums.DeliveryMethodShipping, nil, prefixes) != enums.DeliveryTypeCourier {
		t.Fatalf("missing address should fall back to courier")
	}
}

func TestDeliveryFeePaise(t *testing.T) {
	cfg := testCheckoutConfig()

	if fee := deliveryFeePaise(cfg, enums.DeliveryMethodPickup, 10000); fee != 0 {
		t.Fatalf("pickup should be free, got %d", fee)
	}
	if fee := deliveryFeePaise(cfg, enums.DeliveryMethodQuickDelivery, 500000); fee != 9900 {
		t.Fatalf("quick delivery fee should apply regardless of subtotal, got %d", fee)
	}
	if fee := deliveryFeePaise(cfg, enums.DeliveryMethodShipping, 99899); fee != 4900 {
		t.Fatalf("below threshold should pay shipping, got %d", fee)
	}
	if fee := deliveryFeePaise(cfg, enums.DeliveryMethodShipping, 99900); fee != 0 {
		t.Fatalf("at threshold shipping should be free, got %d", fee)
	}
}

func TestCouponDiscountPaise(t *testing.T) {
	ten := &models.Coupon{Code: "TEN", PercentOff: decimal.NewFromInt(10)}
	if got := couponDiscountPaise(ten, 123450); got != 12345 {
		t.Fatalf("expected 12345, got %d", got)
	}

	// Fractional paise round down.
	if got := couponDiscountPaise(ten, 99); got != 9 {
		t.Fatalf("expected 9, got %d", got)
	}

	capped := &models.Coupon{Code: "CAP", PercentOff: decimal.NewFromInt(50), MaxDiscountPaise: 10000}
	if got := couponDiscountPaise(capped, 100000); got != 10000 {
		t.Fatalf("expected cap 10000, got %d", got)
	}

	full := &models.Coupon{Code: "ALL", PercentOff: decimal.NewFromInt(200)}
	if got := couponDiscountPaise(full, 5000); got != 5000 {
		t.Fatalf("discount must not exceed subtotal, got %d", got)
	}

	if got := couponDiscountPaise(nil, 5000); got != 0 {
		t.Fatalf("nil coupon should discount nothing, got %d", got)
	}
	if got := couponDiscountPaise(ten, 0); got != 0 {
		t.Fatalf("zero subtotal should discount nothing, got %d", got)
	}
}
