package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack(t *testing.T) {
	var s Stack[int]
	_, ok := s.Pop()
	assert.False(t, ok)

	s.Push(1)
	s.Push(2)
	top, ok := s.Peek()
	assert.True(t, ok)
	assert.Equal(t, 2, top)
	assert.Equal(t, 2, s.Len())

	top, _ = s.Pop()
	assert.Equal(t, 2, top)
	assert.Equal(t, 1, s.Len())

	s.Push(3)
	assert.Equal(t, []int{1, 3}, s.PopAll())
	assert.Equal(t, 0, s.Len())
}

func TestReverse(t *testing.T) {
	var got []string
	for s := range Reverse([]string{"a", "b", "c"}) {
		got = append(got, s)
		if s == "b" {
			break
		}
	}
	assert.Equal(t, []string{"c", "b"}, got)
}
