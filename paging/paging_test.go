package paging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/taskhive/taskhive/ecode"
)

type item struct {
	at time.Time
	id string
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 123456000, time.FixedZone("X", 7200))
	c, err := DecodeCursor(EncodeCursor(Cursor{Time: at, ID: "abc"}))
	if err != nil {
		t.Fatal(err)
	}
	if !c.Time.Equal(at) || c.Time.Location() != time.UTC || c.ID != "abc" {
		t.Errorf("cursor = %+v", c)
	}

	if c, err := DecodeCursor(""); c != nil || err != nil {
		t.Errorf("empty cursor = %v, %v", c, err)
	}
	for _, bad := range []string{
		"%%%",
		base64.RawURLEncoding.EncodeToString([]byte("no separator")),
		base64.RawURLEncoding.EncodeToString([]byte("yesterday|x")),
		base64.RawURLEncoding.EncodeToString([]byte("2026-01-01T00:00:00Z|")),
	} {
		if _, err := DecodeCursor(bad); !errors.Is(err, ecode.ErrValidation) {
			t.Errorf("DecodeCursor(%q) err = %v", bad, err)
		}
	}
}

func TestNormalizeParams(t *testing.T) {
	tests := map[int]int{0: 50, -3: 50, 10: 10, 200: 200, 500: 200}
	for in, want := range tests {
		if got := NormalizeParams(Params{Limit: in}, 50, 200).Limit; got != want {
			t.Errorf("NormalizeParams(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestPaginateWalksAllPages(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var all []item
	for i := 6; i >= 0; i-- {
		all = append(all, item{at: base.Add(time.Duration(i) * time.Minute), id: fmt.Sprint(i)})
	}
	load := func(after *Cursor, limit int) ([]item, error) {
		var out []item
		for _, it := range all {
			if after != nil && !it.at.Before(after.Time) {
				continue
			}
			if len(out) < limit {
				out = append(out, it)
			}
		}
		return out, nil
	}
	cursorOf := func(it item) Cursor { return Cursor{Time: it.at, ID: it.id} }

	var seen []string
	params := Params{Limit: 3}
	for pages := 0; pages < 10; pages++ {
		res, err := Paginate(params, load, cursorOf)
		if err != nil {
			t.Fatal(err)
		}
		for _, it := range res.Items {
			seen = append(seen, it.id)
		}
		if !res.HasNextPage {
			if res.NextCursor != "" {
				t.Error("last page has a cursor")
			}
			break
		}
		params.Cursor = res.NextCursor
	}
	if fmt.Sprint(seen) != "[6 5 4 3 2 1 0]" {
		t.Errorf("seen = %v", seen)
	}
}
