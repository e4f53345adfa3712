// Package favorites holds the liked products of one shopper session.
//
// Favorites is a set keyed by product id: adding a product that is already
// present does nothing, and items are never changed in place.
// A Favorites is safe for concurrent use.
package favorites

import (
	"maps"
	"sync"
)

// Item carries the product data needed to render a wish list.
type Item struct {
	ProductID   string         `json:"id"`
	Name        string         `json:"name"`
	Price       int64          `json:"price"`
	ImageURL    string         `json:"imageUrl"`
	Category    string         `json:"category"`
	Subcategory string         `json:"subcategory,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

type Favorites struct {
	mu    sync.RWMutex
	items []Item
	index map[string]int
}

// New returns an empty favorites list.
func New() *Favorites {
	return &Favorites{index: make(map[string]int)}
}

// Restore rebuilds favorites from stored items, keeping the first entry per product id.
func Restore(items []Item) *Favorites {
	f := New()
	for _, it := range items {
		if it.ProductID == "" {
			continue
		}
		f.addLocked(it)
	}
	return f
}

// Add inserts the item unless its product id is already present.
func (f *Favorites) Add(item Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addLocked(item)
}

// Remove deletes the item for id. Unknown ids are ignored.
func (f *Favorites) Remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeLocked(id)
}

// Toggle removes the item when present and adds it otherwise.
// It reports whether the product is a favorite afterwards.
func (f *Favorites) Toggle(item Item) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.index[item.ProductID]; ok {
		f.removeLocked(item.ProductID)
		return false
	}
	f.addLocked(item)
	return true
}

// Contains reports whether id is a favorite.
func (f *Favorites) Contains(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.index[id]
	return ok
}

// Count returns the number of favorites.
func (f *Favorites) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.items)
}

// Items returns a copy of the favorites in insertion order.
func (f *Favorites) Items() []Item {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Item, len(f.items))
	for i, it := range f.items {
		it.Attributes = maps.Clone(it.Attributes)
		out[i] = it
	}
	return out
}

func (f *Favorites) addLocked(item Item) {
	if _, ok := f.index[item.ProductID]; ok {
		return
	}
	item.Attributes = maps.Clone(item.Attributes)
	f.index[item.ProductID] = len(f.items)
	f.items = append(f.items, item)
}

func (f *Favorites) removeLocked(id string) {
	pos, ok := f.index[id]
	if !ok {
		return
	}
	f.items = append(f.items[:pos], f.items[pos+1:]...)
	delete(f.index, id)
	for i := pos; i < len(f.items); i++ {
		f.index[f.items[i].ProductID] = i
	}
}
