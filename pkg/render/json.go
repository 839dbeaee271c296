package render

import "encoding/json"

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent  bool
	noLanes bool
}

// WithIndent pretty-prints the output.
func WithIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithoutLanes drops the lane rectangles from the output.
func WithoutLanes() JSONOption { return func(r *jsonRenderer) { r.noLanes = true } }

// RenderJSON encodes doc as JSON.
func RenderJSON(doc Document, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}
	if r.noLanes {
		doc.Lanes = nil
	}
	if doc.Items == nil {
		doc.Items = []Item{}
	}
	if r.indent {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}
