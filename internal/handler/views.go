package handler

import (
	"time"

	"github.com/xenking/bookcart/internal/domain/address"
	"github.com/xenking/bookcart/internal/domain/cart"
	"github.com/xenking/bookcart/internal/domain/order"
)

// Monetary values are rendered as float64 in responses; all arithmetic
// happens on decimals before this point.

type cartItemView struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Discount  float64 `json:"discount"`
	Content   string  `json:"content,omitempty"`
}

type cartView struct {
	ID           string         `json:"id"`
	Subtotal     float64        `json:"subtotal"`
	ItemDiscount float64        `json:"item_discount"`
	Tax          float64        `json:"tax"`
	Shipping     float64        `json:"shipping"`
	Total        float64        `json:"total"`
	Promo        string         `json:"promo,omitempty"`
	Discount     float64        `json:"discount"`
	GrandTotal   float64        `json:"grand_total"`
	Items        []cartItemView `json:"items"`
}

type orderDetailView struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Price     float64 `json:"price"`
	Discount  float64 `json:"discount"`
	Quantity  int     `json:"quantity"`
}

type orderView struct {
	ID           string            `json:"id"`
	Status       int16             `json:"status"`
	Subtotal     float64           `json:"subtotal"`
	ItemDiscount float64           `json:"item_discount"`
	Tax          float64           `json:"tax"`
	Shipping     float64           `json:"shipping"`
	Total        float64           `json:"total"`
	Promo        string            `json:"promo,omitempty"`
	Discount     float64           `json:"discount"`
	GrandTotal   float64           `json:"grand_total"`
	AddressID    string            `json:"address_id"`
	Content      string            `json:"content,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	Details      []orderDetailView `json:"order_details"`
}

type addressView struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Mobile    string `json:"mobile,omitempty"`
	Email     string `json:"email,omitempty"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2,omitempty"`
	City      string `json:"city"`
	Province  string `json:"province"`
	District  string `json:"district,omitempty"`
	Default   bool   `json:"default"`
}

func toCartItemView(it *cart.Item) cartItemView {
	return cartItemView{
		ID:        it.ID,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		Price:     it.Price.InexactFloat64(),
		Discount:  it.Discount.InexactFloat64(),
		Content:   it.Content,
	}
}

func toCartView(c *cart.Cart) cartView {
	items := make([]cartItemView, len(c.Items))
	for i := range c.Items {
		items[i] = toCartItemView(&c.Items[i])
	}
	return cartView{
		ID:           c.ID,
		Subtotal:     c.Subtotal.InexactFloat64(),
		ItemDiscount: c.ItemDiscount.InexactFloat64(),
		Tax:          c.Tax.InexactFloat64(),
		Shipping:     c.Shipping.InexactFloat64(),
		Total:        c.Total.InexactFloat64(),
		Promo:        c.Promo,
		Discount:     c.Discount.InexactFloat64(),
		GrandTotal:   c.GrandTotal.InexactFloat64(),
		Items:        items,
	}
}

func toOrderView(o *order.Order) orderView {
	details := make([]orderDetailView, len(o.Details))
	for i := range o.Details {
		d := &o.Details[i]
		details[i] = orderDetailView{
			ID:        d.ID,
			ProductID: d.ProductID,
			Price:     d.Price.InexactFloat64(),
			Discount:  d.Discount.InexactFloat64(),
			Quantity:  d.Quantity,
		}
	}
	return orderView{
		ID:           o.ID,
		Status:       o.Status,
		Subtotal:     o.Subtotal.InexactFloat64(),
		ItemDiscount: o.ItemDiscount.InexactFloat64(),
		Tax:          o.Tax.InexactFloat64(),
		Shipping:     o.Shipping.InexactFloat64(),
		Total:        o.Total.InexactFloat64(),
		Promo:        o.Promo,
		Discount:     o.Discount.InexactFloat64(),
		GrandTotal:   o.GrandTotal.InexactFloat64(),
		AddressID:    o.AddressID,
		Content:      o.Content,
		CreatedAt:    o.CreatedAt,
		Details:      details,
	}
}

func toAddressView(a *address.Address) addressView {
	return addressView{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Mobile:    a.Mobile,
		Email:     a.Email,
		Line1:     a.Line1,
		Line2:     a.Line2,
		City:      a.City,
		Province:  a.Province,
		District:  a.District,
		Default:   a.Default,
	}
}
