package coupon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDiscountFor(t *testing.T) {
	rule := Rule{Value: dec("2"), MaxValue: dec("50000")}

	// Under the cap: value multiplies the item discount total.
	got := rule.DiscountFor(dec("10000"))
	assert.True(t, dec("20000").Equal(got), got.String())

	// At the cap.
	got = rule.DiscountFor(dec("30000"))
	assert.True(t, dec("50000").Equal(got), got.String())

	// Zero item discount yields zero regardless of the multiplier.
	got = rule.DiscountFor(decimal.Zero)
	assert.True(t, got.IsZero())
}

func TestActiveAt(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	rule := Rule{Enabled: true, ValidFrom: from, ValidUntil: until}

	assert.True(t, rule.ActiveAt(from))
	assert.True(t, rule.ActiveAt(until))
	assert.True(t, rule.ActiveAt(from.AddDate(0, 6, 0)))

	assert.False(t, rule.ActiveAt(from.Add(-time.Second)))
	assert.False(t, rule.ActiveAt(until.Add(time.Second)))

	rule.Enabled = false
	assert.False(t, rule.ActiveAt(from.AddDate(0, 6, 0)))
}
