package cart

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/bookcart/internal/domain/coupon"
)

// Pricer recomputes a cart's derived monetary fields. It is the only writer
// of those fields; callers run it after every line mutation and after
// checkout empties the cart. It cannot fail on valid input: a missing coupon
// rule simply degrades to a zero coupon discount.
type Pricer struct {
	// Tax is a fixed placeholder amount, not derived from the subtotal.
	Tax decimal.Decimal
	// ShippingFee is the flat fee charged for any non-empty cart.
	ShippingFee decimal.Decimal
}

// NewPricer creates a Pricer with the given fixed tax and flat shipping fee.
func NewPricer(tax, shippingFee decimal.Decimal) Pricer {
	return Pricer{Tax: tax, ShippingFee: shippingFee}
}

// Recalculate overwrites the cart's derived totals from its line snapshots
// and the optional coupon rule resolved for the cart's promo code:
//
//	subtotal      = Σ quantity × price
//	item_discount = Σ quantity × discount
//	total         = subtotal + tax + shipping − item_discount
//	discount      = min(rule.MaxValue, rule.Value × item_discount)
//	grand_total   = total − discount
//
// The grand total is deliberately not floored at zero. An empty cart clears
// the promo code and charges no shipping. Passing rule == nil (unknown or
// cleared code) yields a zero coupon discount.
func (p Pricer) Recalculate(c *Cart, rule *coupon.Rule) {
	if len(c.Items) == 0 {
		c.Promo = ""
	}

	subtotal := decimal.Zero
	itemDiscount := decimal.Zero
	for i := range c.Items {
		qty := decimal.NewFromInt(int64(c.Items[i].Quantity))
		subtotal = subtotal.Add(c.Items[i].Price.Mul(qty))
		itemDiscount = itemDiscount.Add(c.Items[i].Discount.Mul(qty))
	}

	c.Subtotal = subtotal
	c.ItemDiscount = itemDiscount
	c.Tax = p.Tax
	if len(c.Items) == 0 {
		c.Shipping = decimal.Zero
	} else {
		c.Shipping = p.ShippingFee
	}
	c.Total = subtotal.Add(c.Tax).Add(c.Shipping).Sub(itemDiscount)

	if c.Promo != "" && rule != nil {
		c.Discount = rule.DiscountFor(itemDiscount)
	} else {
		c.Discount = decimal.Zero
	}
	c.GrandTotal = c.Total.Sub(c.Discount)
}
