package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringTakeUntil(t *testing.T) {
	head, tail := StringTakeUntil("x=3", '=')
	assert.Equal(t, "x", head)
	assert.Equal(t, "3", tail)

	head, tail = StringTakeUntil("x", '=')
	assert.Equal(t, "x", head)
	assert.Equal(t, "", tail)
}

func TestSortedUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SortedUnique([]string{"c", "a", "b", "a", "c"}))
	assert.Empty(t, SortedUnique(nil))
}

func TestMangledIdentFrom(t *testing.T) {
	assert.Equal(t, "pixl_tmp_at_12", MangledIdentFrom(12, "tmp"))
}
