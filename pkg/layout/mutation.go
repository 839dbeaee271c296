package layout

type mutation int

const (
	mutationInsert mutation = iota
	mutationRemove
	mutationUpdate
	mutationMove
)

func (m mutation) String() string {
	switch m {
	case mutationInsert:
		return "insert"
	case mutationRemove:
		return "remove"
	case mutationUpdate:
		return "update"
	default:
		return "move"
	}
}

// ItemsInserted reports count items inserted at position. It must be called
// after the host's item count already reflects the change and before the
// next layout or scroll.
func (e *Engine) ItemsInserted(position, count int) {
	if count > 0 {
		e.handleUpdate(mutationInsert, position, count)
	}
}

// ItemsRemoved reports count items removed starting at position.
func (e *Engine) ItemsRemoved(position, count int) {
	if count > 0 {
		e.handleUpdate(mutationRemove, position, count)
	}
}

// ItemsUpdated reports that the content of count items starting at position
// changed. Their views are rebound and remeasured.
func (e *Engine) ItemsUpdated(position, count int) {
	if count > 0 {
		e.handleUpdate(mutationUpdate, position, count)
	}
}

// ItemMoved reports an item moved from one position to another.
func (e *Engine) ItemMoved(from, to int) {
	if from != to {
		e.handleUpdate(mutationMove, from, to)
	}
}

// DataSetChanged reports that the whole data set was replaced.
func (e *Engine) DataSetChanged() {
	e.entries.Clear()
	for _, c := range e.children {
		c.stale = true
	}
	e.requested = true
	e.logger.Debug("data set changed")
}

// handleUpdate reconciles cached placements and the window with a mutation.
// countOrTo is the item count, or the destination of a move.
func (e *Engine) handleUpdate(kind mutation, position, countOrTo int) {
	first, last, visible := e.visibleRange()

	lo, hi := position, position+countOrTo
	if kind == mutationMove {
		lo, hi = min(position, countOrTo), max(position, countOrTo)+1
	}

	// Items entirely before the window keep their lanes: the window stays
	// pinned and cached lanes are checked again before reuse.
	before := false
	if visible {
		switch kind {
		case mutationInsert:
			before = position <= first
		case mutationRemove, mutationMove:
			before = hi <= first
		}
	}
	if !before {
		e.entries.InvalidateAfter(lo)
	}

	switch kind {
	case mutationInsert:
		e.entries.OffsetForInsertion(position, countOrTo)
	case mutationRemove:
		e.entries.OffsetForRemoval(position, countOrTo)
	case mutationUpdate:
		for p := position; p < hi; p++ {
			if entry := e.entries.Get(p); entry != nil {
				entry.Width, entry.Height = 0, 0
			}
		}
	case mutationMove:
		e.entries.OffsetForRemoval(position, 1)
		e.entries.OffsetForInsertion(countOrTo, 1)
	}
	for _, c := range e.children {
		shiftChild(c, kind, position, countOrTo)
	}

	// Mutations after the window only matter when the window stops short of
	// the trailing edge.
	short := e.layoutEnd < e.host.Viewport().EndWithPadding(e.opts.Orientation)
	if !visible || lo <= last || short {
		e.requested = true
	}
	e.logger.Debug("items changed",
		"kind", kind,
		"position", position,
		"count_or_to", countOrTo,
		"relayout", e.requested,
	)
}

// shiftChild applies a mutation to the position of a materialized item.
func shiftChild(c *child, kind mutation, position, countOrTo int) {
	if c.removed {
		return
	}
	switch kind {
	case mutationInsert:
		if c.position >= position {
			c.position += countOrTo
		}
	case mutationRemove:
		switch {
		case c.position >= position+countOrTo:
			c.position -= countOrTo
		case c.position >= position:
			c.removed = true
		}
	case mutationUpdate:
		if c.position >= position && c.position < position+countOrTo {
			c.stale = true
		}
	case mutationMove:
		from, to := position, countOrTo
		switch {
		case c.position == from:
			c.position = to
		case from < to && c.position > from && c.position <= to:
			c.position--
		case to < from && c.position >= to && c.position < from:
			c.position++
		}
	}
}

// visibleRange returns the lowest and highest positions in the window.
func (e *Engine) visibleRange() (first, last int, ok bool) {
	for _, c := range e.children {
		if c.removed {
			continue
		}
		if !ok {
			first, last, ok = c.position, c.position, true
			continue
		}
		first = min(first, c.position)
		last = max(last, c.position)
	}
	return first, last, ok
}
