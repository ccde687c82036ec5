package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/xenking/bookcart/internal/domain/coupon"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecEqual(t *testing.T, want, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, want.Equal(got), "want %s, got %s: %v", want, got, msgAndArgs)
}

func TestRecalculateTwoLines(t *testing.T) {
	p := NewPricer(dec("0"), dec("20000"))
	c := &Cart{
		Items: []Item{
			{Quantity: 2, Price: dec("100"), Discount: dec("10")},
			{Quantity: 1, Price: dec("50"), Discount: dec("0")},
		},
	}

	p.Recalculate(c, nil)

	assertDecEqual(t, dec("250"), c.Subtotal)
	assertDecEqual(t, dec("20"), c.ItemDiscount)
	assertDecEqual(t, dec("0"), c.Tax)
	assertDecEqual(t, dec("20000"), c.Shipping)
	assertDecEqual(t, dec("20230"), c.Total)
	assertDecEqual(t, dec("0"), c.Discount)
	assertDecEqual(t, dec("20230"), c.GrandTotal)
}

func TestRecalculateIdempotent(t *testing.T) {
	p := NewPricer(dec("0"), dec("20000"))
	c := &Cart{
		Promo: "BOOKWORM",
		Items: []Item{
			{Quantity: 3, Price: dec("85000"), Discount: dec("8500")},
		},
	}
	rule := &coupon.Rule{Value: dec("2"), MaxValue: dec("50000"), Enabled: true}

	p.Recalculate(c, rule)
	first := *c
	p.Recalculate(c, rule)

	assertDecEqual(t, first.Subtotal, c.Subtotal)
	assertDecEqual(t, first.ItemDiscount, c.ItemDiscount)
	assertDecEqual(t, first.Total, c.Total)
	assertDecEqual(t, first.Discount, c.Discount)
	assertDecEqual(t, first.GrandTotal, c.GrandTotal)
}

func TestCouponDiscountMultipliesItemDiscount(t *testing.T) {
	p := NewPricer(dec("0"), dec("20000"))
	c := &Cart{
		Promo: "BOOKWORM",
		Items: []Item{
			// subtotal 200000, item discount 20000
			{Quantity: 2, Price: dec("100000"), Discount: dec("10000")},
		},
	}

	// Value multiplies the item discount total, not the subtotal.
	p.Recalculate(c, &coupon.Rule{Value: dec("2"), MaxValue: dec("50000")})
	assertDecEqual(t, dec("40000"), c.Discount)
	assertDecEqual(t, dec("200000"), c.Total)
	assertDecEqual(t, dec("160000"), c.GrandTotal)
}

func TestCouponDiscountCappedAtMaxValue(t *testing.T) {
	p := NewPricer(dec("0"), dec("20000"))
	c := &Cart{
		Promo: "BOOKWORM",
		Items: []Item{
			{Quantity: 10, Price: dec("100000"), Discount: dec("10000")},
		},
	}

	p.Recalculate(c, &coupon.Rule{Value: dec("2"), MaxValue: dec("50000")})
	assertDecEqual(t, dec("50000"), c.Discount)
}

func TestPromoWithoutRuleYieldsNoDiscount(t *testing.T) {
	p := NewPricer(dec("0"), dec("20000"))
	c := &Cart{
		Promo: "GONE",
		Items: []Item{
			{Quantity: 1, Price: dec("100"), Discount: dec("10")},
		},
	}

	p.Recalculate(c, nil)

	assert.Equal(t, "GONE", c.Promo)
	assertDecEqual(t, dec("0"), c.Discount)
	assertDecEqual(t, c.Total, c.GrandTotal)
}

func TestGrandTotalMayGoNegative(t *testing.T) {
	p := NewPricer(dec("0"), dec("0"))
	c := &Cart{
		Promo: "MEGA",
		Items: []Item{
			{Quantity: 1, Price: dec("100"), Discount: dec("90")},
		},
	}

	p.Recalculate(c, &coupon.Rule{Value: dec("10"), MaxValue: dec("1000")})

	assertDecEqual(t, dec("10"), c.Total)
	assertDecEqual(t, dec("900"), c.Discount)
	assertDecEqual(t, dec("-890"), c.GrandTotal)
}

func TestEmptyCartResetsEverything(t *testing.T) {
	p := NewPricer(dec("5"), dec("20000"))
	c := &Cart{
		Promo:      "BOOKWORM",
		Subtotal:   dec("250"),
		Shipping:   dec("20000"),
		Total:      dec("20255"),
		Discount:   dec("40"),
		GrandTotal: dec("20215"),
	}

	p.Recalculate(c, nil)

	assert.Empty(t, c.Promo)
	assertDecEqual(t, dec("0"), c.Subtotal)
	assertDecEqual(t, dec("0"), c.ItemDiscount)
	assertDecEqual(t, dec("0"), c.Shipping)
	assertDecEqual(t, dec("5"), c.Tax)
	assertDecEqual(t, dec("5"), c.Total)
	assertDecEqual(t, dec("0"), c.Discount)
	assertDecEqual(t, dec("5"), c.GrandTotal)
}
