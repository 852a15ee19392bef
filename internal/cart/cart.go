package cart

import "github.com/shopspring/decimal"

// Item is one selected service in a cart. The same shape is serialized
// verbatim into a booking as its immutable snapshot; later catalog price
// changes never touch an already-submitted booking.
type Item struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	PriceMin  decimal.Decimal `json:"price_min"`
	PriceMax  decimal.Decimal `json:"price_max,omitempty"`
	PriceType string          `json:"price_type,omitempty"`
	Quantity  int             `json:"quantity"`
}

type Cart struct {
	Items []Item `json:"items"`
}

// Add merges the item into the cart, incrementing quantity for an
// existing id. Quantities below one are treated as one.
func (c *Cart) Add(it Item) {
	if it.Quantity < 1 {
		it.Quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].ID == it.ID {
			c.Items[i].Quantity += it.Quantity
			return
		}
	}
	c.Items = append(c.Items, it)
}

// Decrement drops one unit of the item. Removing the last unit removes
// the entry entirely; a stored quantity never reaches zero.
func (c *Cart) Decrement(id string) {
	for i := range c.Items {
		if c.Items[i].ID != id {
			continue
		}
		if c.Items[i].Quantity > 1 {
			c.Items[i].Quantity--
			return
		}
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return
	}
}

// Remove drops the entry regardless of quantity.
func (c *Cart) Remove(id string) {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Subtotal sums quantity times price_min over all items. The minimum
// price is the binding estimate; price_max never enters the sum.
func Subtotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		q := it.Quantity
		if q < 0 {
			q = 0
		}
		sum = sum.Add(it.PriceMin.Mul(decimal.NewFromInt(int64(q))))
	}
	return sum
}

func (c *Cart) Subtotal() decimal.Decimal {
	return Subtotal(c.Items)
}
