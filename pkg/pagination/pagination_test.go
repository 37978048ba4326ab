package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Params{Page: 1, PageSize: DefaultPageSize}, Params{}.Normalize())
	assert.Equal(t, Params{Page: 3, PageSize: MaxPageSize}, Params{Page: 3, PageSize: 10_000}.Normalize())
	assert.Equal(t, Params{Page: 2, PageSize: 20}, Params{Page: 2, PageSize: 20}.Normalize())
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{}.Offset())
	assert.Equal(t, 40, Params{Page: 3, PageSize: 20}.Offset())
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(Params{Page: 1, PageSize: 20}, 41)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasMore())

	last := NewMeta(Params{Page: 3, PageSize: 20}, 41)
	assert.False(t, last.HasMore())

	empty := NewMeta(Params{}, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasMore())
}
