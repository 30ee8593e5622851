// Package cart holds the session cart: a list of line items merged by id.
package cart

import (
	"errors"

	"github.com/01moynul/farinez-golang/internal/models"
)

// ErrItemNotFound is returned when an operation names a line that is not in
// the cart.
var ErrItemNotFound = errors.New("item not found in cart")

// Cart is an ordered set of line items. The zero value is an empty cart.
type Cart struct {
	Lines []models.CartItem `json:"items"`
}

func (c *Cart) find(id int64, itemType string) int {
	for i, l := range c.Lines {
		if l.ID == id && l.Type == itemType {
			return i
		}
	}
	return -1
}

// Add merges item into the cart. An item already present (same id and type)
// has its quantity increased; a new item is appended. Quantities below 1 are
// treated as 1.
func (c *Cart) Add(item models.CartItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if item.Type == "" {
		item.Type = models.ItemTypeProduct
	}
	if i := c.find(item.ID, item.Type); i >= 0 {
		c.Lines[i].Quantity += item.Quantity
		return
	}
	c.Lines = append(c.Lines, item)
}

// UpdateQuantity sets the quantity of one line. Values below 1 clamp to 1;
// removing a line always goes through Remove.
func (c *Cart) UpdateQuantity(id int64, itemType string, quantity int) error {
	i := c.find(id, typeOrDefault(itemType))
	if i < 0 {
		return ErrItemNotFound
	}
	c.Lines[i].Quantity = max(quantity, 1)
	return nil
}

// Remove drops one line.
func (c *Cart) Remove(id int64, itemType string) error {
	i := c.find(id, typeOrDefault(itemType))
	if i < 0 {
		return ErrItemNotFound
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
}

// Items returns a copy of the lines in insertion order.
func (c Cart) Items() []models.CartItem {
	out := make([]models.CartItem, len(c.Lines))
	copy(out, c.Lines)
	return out
}

// Total is the sum of price times quantity over every line.
func (c Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.LineTotal()
	}
	return total
}

// Count is the number of units in the cart (the header badge).
func (c Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Empty reports whether the cart has no lines.
func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

func typeOrDefault(t string) string {
	if t == "" {
		return models.ItemTypeProduct
	}
	return t
}

// Summary is the cart as served to the storefront.
type Summary struct {
	Items    []models.CartItem `json:"items"`
	Subtotal float64           `json:"subtotal"`
	Count    int               `json:"totalItems"`
}

// Summarize renders the cart with its derived totals.
func (c Cart) Summarize() Summary {
	return Summary{
		Items:    c.Items(),
		Subtotal: models.RoundCents(c.Total()),
		Count:    c.Count(),
	}
}
