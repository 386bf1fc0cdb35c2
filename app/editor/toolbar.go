package editor

import (
	"fmt"
	"sync"
)

// Toolbar keeps the registered items and lays them out in configured order
type Toolbar struct {
	mu    sync.RWMutex
	order []string
	items map[string]ToolbarItem
}

// NewToolbar creates a toolbar that lays out items in the given order
func NewToolbar(order []string) *Toolbar {
	return &Toolbar{
		order: append([]string(nil), order...),
		items: map[string]ToolbarItem{},
	}
}

// Register adds an item; names must be unique
func (t *Toolbar) Register(item ToolbarItem) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[item.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateItem, item.Name())
	}
	t.items[item.Name()] = item
	return nil
}

// Item returns a registered item by name
func (t *Toolbar) Item(name string) (ToolbarItem, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	item, ok := t.items[name]
	return item, ok
}

// Layout describes the registered items in configured order. Names without a
// registered item (built-in buttons) are skipped.
func (t *Toolbar) Layout() []Descriptor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Descriptor, 0, len(t.items))
	for _, name := range t.order {
		if item, ok := t.items[name]; ok {
			out = append(out, item.Describe())
		}
	}
	return out
}
