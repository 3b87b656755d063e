package seeder

import "github.com/giygas/nlem-api/entities"

// hierarchy holds the id of the most recently seen category at each level. Slots are only
// ever overwritten, never cleared, so a row without category names inherits the context of
// the rows above it.
type hierarchy struct {
	slots [entities.MaxCategoryLevel]*int32
}

// parent returns the slot one level above level, nil for level 1
func (h *hierarchy) parent(level int) *int32 {
	if level <= 1 {
		return nil
	}
	return h.slots[level-2]
}

func (h *hierarchy) set(level int, id int32) {
	h.slots[level-1] = &id
}

// deepest returns the id in the deepest set slot, or nil when none is set
func (h *hierarchy) deepest() *int32 {
	for i := len(h.slots) - 1; i >= 0; i-- {
		if h.slots[i] != nil {
			return h.slots[i]
		}
	}
	return nil
}
