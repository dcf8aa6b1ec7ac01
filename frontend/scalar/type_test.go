package scalar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRanges(t *testing.T) {
	testCases := []struct {
		t     Type
		min   int64
		max   int64
		maxOk bool
	}{
		{Int8, -128, 127, true},
		{Int16, -32768, 32767, true},
		{Int32, math.MinInt32, math.MaxInt32, true},
		{Int64, math.MinInt64, math.MaxInt64, true},
		{UInt8, 0, 255, true},
		{UInt32, 0, math.MaxUint32, true},
		{UInt64, 0, 0, false},
		{BoolT, 0, 1, true},
	}
	for _, tc := range testCases {
		t.Run(tc.t.String(), func(t *testing.T) {
			assert.Equal(t, tc.min, tc.t.Min())
			max, ok := tc.t.Max()
			assert.Equal(t, tc.maxOk, ok)
			if ok {
				assert.Equal(t, tc.max, max)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Equal(t, int64(-12), Int8.Wrap(500))
	assert.Equal(t, int64(244), UInt8.Wrap(500))
	assert.Equal(t, int64(255), UInt8.Wrap(-1))
	assert.Equal(t, int64(-1), Int16.Wrap(65535))
	assert.Equal(t, int64(1), BoolT.Wrap(7))
	assert.Equal(t, int64(math.MinInt64), Int64.Wrap(math.MinInt64))
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("uint16")
	assert.NoError(t, err)
	assert.Equal(t, UInt16, typ)

	typ, err = ParseType("int")
	assert.NoError(t, err)
	assert.Equal(t, Int64, typ)

	_, err = ParseType("float32")
	assert.Error(t, err)
}
