package lanes

import "fmt"

// Orientation is the primary (scrolling) axis of a layout.
type Orientation int

const (
	// Vertical layouts scroll up and down; lanes are columns.
	Vertical Orientation = iota
	// Horizontal layouts scroll left and right; lanes are rows.
	Horizontal
)

// String returns "vertical" or "horizontal".
func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// ParseOrientation converts "vertical"/"horizontal" (or "v"/"h") to an Orientation.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "vertical", "v", "":
		return Vertical, nil
	case "horizontal", "h":
		return Horizontal, nil
	}
	return Vertical, fmt.Errorf("unknown orientation %q", s)
}

// MarshalText encodes the orientation by name.
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes a name produced by MarshalText.
func (o *Orientation) UnmarshalText(b []byte) error {
	v, err := ParseOrientation(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Direction is the fill direction along the primary axis.
type Direction int

const (
	// Start is toward the beginning of the data set.
	Start Direction = iota
	// End is toward the end of the data set.
	End
)

// String returns "start" or "end".
func (d Direction) String() string {
	if d == End {
		return "end"
	}
	return "start"
}

// Rect is an axis-aligned rectangle. Right and Bottom are exclusive.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Offset returns r moved by (dx, dy).
func (r Rect) Offset(dx, dy int) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Intersects reports whether r and o overlap with a non-empty area.
// Touching edges and zero-area rectangles never intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right && r.Top < o.Bottom && o.Top < r.Bottom
}

// Start returns the leading edge of r along the primary axis of o.
func (r Rect) Start(o Orientation) int {
	if o == Vertical {
		return r.Top
	}
	return r.Left
}

// End returns the trailing edge of r along the primary axis of o.
func (r Rect) End(o Orientation) int {
	if o == Vertical {
		return r.Bottom
	}
	return r.Right
}

// Shift returns r moved by delta along the primary axis of o.
func (r Rect) Shift(o Orientation, delta int) Rect {
	if o == Vertical {
		return r.Offset(0, delta)
	}
	return r.Offset(delta, 0)
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d %d,%d]", r.Left, r.Top, r.Right, r.Bottom)
}

// Size is a measured width and height.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Extent returns the size along the primary axis of o.
func (s Size) Extent(o Orientation) int {
	if o == Vertical {
		return s.Height
	}
	return s.Width
}

// Edges holds a value for each side of a box.
type Edges struct {
	Top    int `json:"top" toml:"top"`
	Right  int `json:"right" toml:"right"`
	Bottom int `json:"bottom" toml:"bottom"`
	Left   int `json:"left" toml:"left"`
}

// EdgeAll returns Edges with n on every side.
func EdgeAll(n int) Edges {
	return Edges{Top: n, Right: n, Bottom: n, Left: n}
}

// Horizontal returns Left + Right.
func (e Edges) Horizontal() int { return e.Left + e.Right }

// Vertical returns Top + Bottom.
func (e Edges) Vertical() int { return e.Top + e.Bottom }

// Viewport is the visible area of the host container.
type Viewport struct {
	Width   int   `json:"width" toml:"width"`
	Height  int   `json:"height" toml:"height"`
	Padding Edges `json:"padding" toml:"padding"`
}

// InnerWidth returns the width available to items.
func (v Viewport) InnerWidth() int { return v.Width - v.Padding.Horizontal() }

// InnerHeight returns the height available to items.
func (v Viewport) InnerHeight() int { return v.Height - v.Padding.Vertical() }

// IsEmpty reports whether the viewport has no area to lay items into.
func (v Viewport) IsEmpty() bool { return v.Width <= 0 || v.Height <= 0 }

// StartWithPadding returns the first usable coordinate along the primary axis.
func (v Viewport) StartWithPadding(o Orientation) int {
	if o == Vertical {
		return v.Padding.Top
	}
	return v.Padding.Left
}

// EndWithPadding returns the last usable coordinate (exclusive) along the primary axis.
func (v Viewport) EndWithPadding(o Orientation) int {
	if o == Vertical {
		return v.Height - v.Padding.Bottom
	}
	return v.Width - v.Padding.Right
}

// TotalSpace returns the usable extent along the primary axis.
func (v Viewport) TotalSpace(o Orientation) int {
	if o == Vertical {
		return v.InnerHeight()
	}
	return v.InnerWidth()
}
