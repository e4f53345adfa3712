// Package cart holds the shopping cart of one shopper session.
//
// A Cart keeps at most one Item per product id and never stores an Item with a
// quantity below one: adding an existing product increments its quantity, and
// setting a quantity to zero or less removes the item. Every operation is total;
// none of them fails. A Cart is safe for concurrent use.
package cart

import (
	"maps"
	"sync"
)

// Product is the product shaped value added to a cart.
// Attributes are carried through to the stored Item without interpretation.
type Product struct {
	ID         string
	Name       string
	Price      int64
	ImageURL   string
	Attributes map[string]any
}

// Item is one line of the cart. Price is the unit price in minor currency units.
type Item struct {
	ProductID  string         `json:"id"`
	Name       string         `json:"name"`
	Price      int64          `json:"price"`
	ImageURL   string         `json:"imageUrl"`
	Quantity   int            `json:"quantity"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Subtotal returns Price multiplied by Quantity.
func (i Item) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

type Cart struct {
	mu    sync.RWMutex
	items []Item
	// index maps a product id to its position in items
	index map[string]int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// Restore rebuilds a cart from previously stored items. Entries for the same
// product id are merged by summing quantities and entries with a quantity below
// one are dropped, so a damaged snapshot cannot break the cart's invariants.
func Restore(items []Item) *Cart {
	c := New()
	for _, it := range items {
		if it.Quantity <= 0 || it.ProductID == "" {
			continue
		}
		if pos, ok := c.index[it.ProductID]; ok {
			c.items[pos].Quantity += it.Quantity
			continue
		}
		it.Attributes = maps.Clone(it.Attributes)
		c.index[it.ProductID] = len(c.items)
		c.items = append(c.items, it)
	}
	return c
}

// Add increments the quantity of the product's item by one, appending a new
// item with quantity one when the product is not in the cart yet.
func (c *Cart) Add(p Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pos, ok := c.index[p.ID]; ok {
		c.items[pos].Quantity++
		return
	}
	c.index[p.ID] = len(c.items)
	c.items = append(c.items, Item{
		ProductID:  p.ID,
		Name:       p.Name,
		Price:      p.Price,
		ImageURL:   p.ImageURL,
		Quantity:   1,
		Attributes: maps.Clone(p.Attributes),
	})
}

// Remove deletes the item for id. Unknown ids are ignored.
func (c *Cart) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(id)
}

// UpdateQuantity sets the quantity of the item for id. A quantity of zero or
// less removes the item. Unknown ids are ignored.
func (c *Cart) UpdateQuantity(id string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos, ok := c.index[id]
	if !ok {
		return
	}
	if quantity <= 0 {
		c.removeLocked(id)
		return
	}
	c.items[pos].Quantity = quantity
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.index = make(map[string]int)
}

// TotalPrice returns the sum of price times quantity over all items.
func (c *Cart) TotalPrice() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total int64
	for _, it := range c.items {
		total += it.Subtotal()
	}
	return total
}

// TotalItems returns the sum of quantities, not the number of distinct items.
func (c *Cart) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := 0
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}

// Len returns the number of distinct products in the cart.
func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get returns a copy of the item for id.
func (c *Cart) Get(id string) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pos, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	it := c.items[pos]
	it.Attributes = maps.Clone(it.Attributes)
	return it, true
}

// Items returns a copy of the items in insertion order.
func (c *Cart) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Item, len(c.items))
	for i, it := range c.items {
		it.Attributes = maps.Clone(it.Attributes)
		out[i] = it
	}
	return out
}

func (c *Cart) removeLocked(id string) {
	pos, ok := c.index[id]
	if !ok {
		return
	}
	c.items = append(c.items[:pos], c.items[pos+1:]...)
	delete(c.index, id)
	for i := pos; i < len(c.items); i++ {
		c.index[c.items[i].ProductID] = i
	}
}
