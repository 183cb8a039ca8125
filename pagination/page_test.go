package pagination

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlice(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}

	tests := []struct {
		name string
		page Page
		want []int
	}{
		{"first", Page{Offset: 0, Limit: 2}, []int{0, 1}},
		{"middle", Page{Offset: 2, Limit: 2}, []int{2, 3}},
		{"short last", Page{Offset: 4, Limit: 2}, []int{4}},
		{"past end", Page{Offset: 9, Limit: 2}, []int{}},
		{"no limit", Page{Offset: 1}, []int{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slice(items, tt.page))
		})
	}
}

func TestContext(t *testing.T) {
	assert.Equal(t, FirstPage(), FromContext(context.Background()))

	p := Page{Offset: 10, Limit: 5}
	assert.Equal(t, p, FromContext(IntoContext(context.Background(), p)))
	assert.Equal(t, Page{Offset: 15, Limit: 5}, p.Next())
}
