package models

import (
	"encoding/json"
	"fmt"
)

// Page is the pagination envelope wrapping every list endpoint.
//
// Items keep server order. Next and Previous are "" when there is no adjacent page.
type Page[T any] struct {
	Href     string
	Items    []T
	Limit    int
	Offset   int
	Total    int
	Next     string
	Previous string
}

// HasNext reports whether another page follows this one.
func (p *Page[T]) HasNext() bool { return p.Next != "" }

// DecodePage parses data as a page envelope, decoding each item with decode.
//
// Any item failure fails the whole page. The returned [DecodeError] names the item index and wraps the item's own error.
func DecodePage[T any](data []byte, decode DecodeFunc[T]) (*Page[T], error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return DecodePageValue(v, decode)
}

// DecodePageValue decodes an already parsed page envelope.
func DecodePageValue[T any](v Value, decode DecodeFunc[T]) (*Page[T], error) {
	f := v.Fields()
	p := &Page[T]{
		Href:     f.OptString("href"),
		Limit:    f.Int("limit"),
		Offset:   f.Int("offset"),
		Total:    f.Int("total"),
		Next:     f.OptString("next"),
		Previous: f.OptString("previous"),
	}
	items, ok := f.require("items")
	if err := f.Err(); err != nil || !ok {
		return nil, err
	}

	elems, err := items.Elements()
	if err != nil {
		return nil, err
	}
	if len(elems) > p.Limit {
		return nil, &DecodeError{
			Path:   items.path,
			Reason: fmt.Sprintf("page holds %d items but limit is %d", len(elems), p.Limit),
		}
	}

	p.Items = make([]T, len(elems))
	for i, elem := range elems {
		item, err := decode(elem)
		if err != nil {
			return nil, &DecodeError{Path: elem.path, Reason: fmt.Sprintf("item %d", i), Err: err}
		}
		p.Items[i] = item
	}
	return p, nil
}

// PageOf turns an item decoder into a decoder for nested pages such as an album's tracks.
func PageOf[T any](decode DecodeFunc[T]) DecodeFunc[*Page[T]] {
	return func(v Value) (*Page[T], error) {
		if v.IsNull() {
			return nil, nil
		}
		return DecodePageValue(v, decode)
	}
}

// MarshalJSON writes the upstream envelope, with null for missing next/previous links.
func (p Page[T]) MarshalJSON() ([]byte, error) {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return json.Marshal(struct {
		Href     string  `json:"href"`
		Items    []T     `json:"items"`
		Limit    int     `json:"limit"`
		Next     *string `json:"next"`
		Offset   int     `json:"offset"`
		Previous *string `json:"previous"`
		Total    int     `json:"total"`
	}{p.Href, items, p.Limit, link(p.Next), p.Offset, link(p.Previous), p.Total})
}

// Cursors position a [CursorPage] in its collection.
type Cursors struct {
	After  string `json:"after"`
	Before string `json:"before"`
}

// CursorPage is the cursor-based envelope used by time-ordered collections such as recently played tracks.
type CursorPage[T any] struct {
	Href    string   `json:"href"`
	Items   []T      `json:"items"`
	Limit   int      `json:"limit"`
	Next    string   `json:"next,omitempty"`
	Total   int      `json:"total"`
	Cursors *Cursors `json:"cursors,omitempty"`
}

// DecodeCursorPageValue decodes a cursor envelope. Items fail fast like [DecodePageValue].
func DecodeCursorPageValue[T any](v Value, decode DecodeFunc[T]) (*CursorPage[T], error) {
	f := v.Fields()
	p := &CursorPage[T]{
		Href:  f.OptString("href"),
		Limit: f.Int("limit"),
		Next:  f.OptString("next"),
		Total: f.OptInt("total", 0),
	}
	if f.Has("cursors") {
		c := f.Value("cursors").Fields()
		p.Cursors = &Cursors{After: c.OptString("after"), Before: c.OptString("before")}
		f.record(c.Err())
	}
	items, ok := f.require("items")
	if err := f.Err(); err != nil || !ok {
		return nil, err
	}

	elems, err := items.Elements()
	if err != nil {
		return nil, err
	}
	p.Items = make([]T, len(elems))
	for i, elem := range elems {
		item, err := decode(elem)
		if err != nil {
			return nil, &DecodeError{Path: elem.path, Reason: fmt.Sprintf("item %d", i), Err: err}
		}
		p.Items[i] = item
	}
	return p, nil
}

func link(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
