package paging

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/taskhive/taskhive/ecode"
)

// ErrInvalidCursor is returned for cursors this package did not produce.
var ErrInvalidCursor = ecode.New(ecode.ErrValidation, ecode.FieldIsInvalid("cursor"))

// Cursor is the position after which the next page starts, in a listing
// ordered by time then id.
type Cursor struct {
	Time time.Time
	ID   string
}

// Params holds the unified pagination parameters
type Params struct {
	Cursor string `json:"cursor"`
	Limit  int    `json:"limit"`
}

// Result holds the pagination result
type Result[T any] struct {
	Items       []T    `json:"items"`
	NextCursor  string `json:"next,omitempty"`
	HasNextPage bool   `json:"has_next"`
}

// NormalizeParams replaces a missing limit with def and caps it at max.
func NormalizeParams(params Params, def, max int) Params {
	switch {
	case params.Limit <= 0:
		params.Limit = def
	case params.Limit > max:
		params.Limit = max
	}
	return params
}

// EncodeCursor encodes a position as an opaque URL-safe string.
func EncodeCursor(c Cursor) string {
	raw := c.Time.UTC().Format(time.RFC3339Nano) + "|" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor decodes a cursor string. An empty string is the first page
// and decodes to nil.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	ts, id, ok := strings.Cut(string(b), "|")
	if !ok || id == "" {
		return nil, ErrInvalidCursor
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	return &Cursor{Time: t.UTC(), ID: id}, nil
}

// PagingFunc loads up to limit items positioned after the cursor. A nil
// cursor means from the start.
type PagingFunc[T any] func(after *Cursor, limit int) ([]T, error)

// Paginate asks for one item more than the page size to learn whether a
// next page exists; cursorOf gives the position of an item.
func Paginate[T any](params Params, fn PagingFunc[T], cursorOf func(T) Cursor) (*Result[T], error) {
	after, err := DecodeCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	items, err := fn(after, params.Limit+1)
	if err != nil {
		return nil, err
	}

	res := &Result[T]{Items: items}
	if len(items) > params.Limit {
		res.Items = items[:params.Limit]
		res.HasNextPage = true
		res.NextCursor = EncodeCursor(cursorOf(res.Items[len(res.Items)-1]))
	}
	if res.Items == nil {
		res.Items = make([]T, 0)
	}
	return res, nil
}
