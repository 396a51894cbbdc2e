// Package paging implements keyset pagination with opaque cursors.
//
// A listing ordered newest first by (time, id) hands out the position of
// its last item as the cursor of the next page:
//
//	params := paging.NormalizeParams(paging.Params{Cursor: c.Query("cursor"), Limit: n}, 50, 200)
//	res, err := paging.Paginate(params, func(after *paging.Cursor, limit int) ([]*Entry, error) {
//	    return store.List(ctx, after, limit)
//	}, func(e *Entry) paging.Cursor {
//	    return paging.Cursor{Time: e.CreatedAt, ID: e.ID}
//	})
package paging
