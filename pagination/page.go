package pagination

import "context"

type Page struct {
	Offset int // where to start from
	Limit  int // number of items in a page
}

func FirstPage() Page {
	return Page{
		Offset: 0,
		Limit:  100,
	}
}

type ctxKey struct{}

func IntoContext(ctx context.Context, page Page) context.Context {
	return context.WithValue(ctx, ctxKey{}, page)
}

func FromContext(ctx context.Context) Page {
	if ctx == nil {
		return FirstPage()
	}
	page, ok := ctx.Value(ctxKey{}).(Page)
	if !ok {
		return FirstPage()
	}
	return page
}

func (p Page) Next() Page {
	return Page{
		Offset: p.Offset + p.Limit,
		Limit:  p.Limit,
	}
}

// Slice returns the part of items that falls on p.
func Slice[T any](items []T, p Page) []T {
	if p.Offset >= len(items) || p.Offset < 0 {
		return []T{}
	}
	end := len(items)
	if p.Limit > 0 && p.Offset+p.Limit < end {
		end = p.Offset + p.Limit
	}
	return items[p.Offset:end]
}
