package sim

import (
	"slices"

	"github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/layout"
)

// Insert adds items at position. Items without an ID get a generated one.
func (h *Host) Insert(position int, items ...Item) error {
	if position < 0 || position > len(h.items) {
		return errors.New(errors.ErrCodeInvalidInput, "insert position %d outside [0, %d]", position, len(h.items))
	}
	if len(items) == 0 {
		return nil
	}
	items = slices.Clone(items)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = h.nextID()
		}
	}
	h.items = slices.Insert(h.items, position, items...)
	for v := range h.live {
		if v.position >= position {
			v.position += len(items)
		}
	}
	if h.notify != nil {
		h.notify.ItemsInserted(position, len(items))
	}
	return nil
}

// Remove deletes count items starting at position.
func (h *Host) Remove(position, count int) error {
	if count <= 0 {
		return nil
	}
	if position < 0 || position+count > len(h.items) {
		return errors.New(errors.ErrCodeInvalidInput,
			"remove range [%d, %d) outside [0, %d)", position, position+count, len(h.items))
	}
	for v := range h.live {
		switch {
		case v.position >= position+count:
			v.position -= count
		case v.position >= position && h.predictive:
			ghost := h.obtain()
			ghost.bind(position, v.item)
			h.pending = append(h.pending, layout.Scrap{Position: position, View: ghost, Removed: true})
		}
	}
	for _, it := range h.items[position : position+count] {
		delete(h.checked, it.ID)
	}
	h.items = slices.Delete(h.items, position, position+count)
	if h.notify != nil {
		h.notify.ItemsRemoved(position, count)
	}
	return nil
}

// Update replaces the items starting at position.
func (h *Host) Update(position int, items ...Item) error {
	if len(items) == 0 {
		return nil
	}
	if position < 0 || position+len(items) > len(h.items) {
		return errors.New(errors.ErrCodeInvalidInput,
			"update range [%d, %d) outside [0, %d)", position, position+len(items), len(h.items))
	}
	for i, it := range items {
		if it.ID == "" {
			it.ID = h.items[position+i].ID
		}
		h.items[position+i] = it
	}
	if h.notify != nil {
		h.notify.ItemsUpdated(position, len(items))
	}
	return nil
}

// Move moves the item at from to to.
func (h *Host) Move(from, to int) error {
	if err := h.checkPosition(from); err != nil {
		return err
	}
	if err := h.checkPosition(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	it := h.items[from]
	h.items = slices.Delete(h.items, from, from+1)
	h.items = slices.Insert(h.items, to, it)
	for v := range h.live {
		switch {
		case v.position == from:
			v.position = to
			if h.predictive {
				ghost := h.obtain()
				ghost.bind(to, v.item)
				h.pending = append(h.pending, layout.Scrap{Position: to, View: ghost})
			}
		case from < to && v.position > from && v.position <= to:
			v.position--
		case to < from && v.position >= to && v.position < from:
			v.position++
		}
	}
	if h.notify != nil {
		h.notify.ItemMoved(from, to)
	}
	return nil
}

// Replace swaps in a new data set.
func (h *Host) Replace(items []Item) {
	h.items = slices.Clone(items)
	for i := range h.items {
		if h.items[i].ID == "" {
			h.items[i].ID = h.nextID()
		}
	}
	clear(h.checked)
	if h.notify != nil {
		h.notify.DataSetChanged()
	}
}
