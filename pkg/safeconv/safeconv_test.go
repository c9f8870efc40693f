package safeconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToInt32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   int
		want int32
		ok   bool
	}{
		{"zero", 0, 0, true},
		{"negative", -1, -1, true},
		{"max", math.MaxInt32, math.MaxInt32, true},
		{"min", math.MinInt32, math.MinInt32, true},
		{"above", math.MaxInt32 + 1, 0, false},
		{"below", math.MinInt32 - 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := IntToInt32(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMustIntToInt32(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int32(42), MustIntToInt32(42))
	assert.PanicsWithValue(t, "safeconv: int to int32 out of bounds", func() {
		MustIntToInt32(math.MaxInt32 + 1)
	})
}
