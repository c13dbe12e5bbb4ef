package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationParams_Validate(t *testing.T) {
	p := &PaginationParams{Page: 0, PerPage: 500}
	p.Validate()

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 0, p.Offset())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 15, 31)

	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)
}

func TestNewPaginatedResult_NilItems(t *testing.T) {
	r := NewPaginatedResult[int](nil, NewPagination(1, 15, 0))
	assert.NotNil(t, r.Items)
	assert.Empty(t, r.Items)
}
