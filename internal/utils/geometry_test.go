package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoxOrdersCoordinates(t *testing.T) {
	b := NewBox(30, 110, 10, 10)
	assert.Equal(t, 10.0, b.MinX)
	assert.Equal(t, 10.0, b.MinY)
	assert.Equal(t, 30.0, b.MaxX)
	assert.Equal(t, 110.0, b.MaxY)
}

func TestBoxDimensions(t *testing.T) {
	b := NewBox(10, 10, 30, 110)
	assert.Equal(t, 20.0, b.Width())
	assert.Equal(t, 100.0, b.Height())
	assert.Equal(t, 2000.0, b.Area())
	assert.Equal(t, 5.0, b.AspectRatio())
}

func TestBoxAspectRatioDegenerate(t *testing.T) {
	b := Box{MinX: 5, MinY: 0, MaxX: 5, MaxY: 10}
	assert.Equal(t, 0.0, b.AspectRatio())
}

func TestBoxClamp(t *testing.T) {
	b := NewBox(-10, -5, 700, 500)
	clamped := b.Clamp(640, 480)
	assert.Equal(t, 0.0, clamped.MinX)
	assert.Equal(t, 0.0, clamped.MinY)
	assert.Equal(t, 640.0, clamped.MaxX)
	assert.Equal(t, 480.0, clamped.MaxY)
}

func TestIoU(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Box
		expected float64
	}{
		{
			name:     "identical boxes",
			a:        NewBox(0, 0, 10, 10),
			b:        NewBox(0, 0, 10, 10),
			expected: 1.0,
		},
		{
			name:     "disjoint boxes",
			a:        NewBox(0, 0, 10, 10),
			b:        NewBox(20, 20, 30, 30),
			expected: 0.0,
		},
		{
			name:     "touching edges",
			a:        NewBox(0, 0, 10, 10),
			b:        NewBox(10, 0, 20, 10),
			expected: 0.0,
		},
		{
			name: "slightly shifted tall boxes",
			// two 20x100 boxes shifted by 2px horizontally
			a:        NewBox(10, 10, 30, 110),
			b:        NewBox(12, 10, 32, 110),
			expected: 1800.0 / 2200.0,
		},
		{
			name:     "one inside the other",
			a:        NewBox(0, 0, 10, 10),
			b:        NewBox(2, 2, 8, 8),
			expected: 36.0 / 100.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, IoU(tt.a, tt.b), 1e-9)
			// IoU is symmetric
			assert.InDelta(t, tt.expected, IoU(tt.b, tt.a), 1e-9)
		})
	}
}

func TestBoundingBox(t *testing.T) {
	pts := []Point{{5, 7}, {1, 9}, {3, 2}}
	b := BoundingBox(pts)
	assert.Equal(t, Box{MinX: 1, MinY: 2, MaxX: 5, MaxY: 9}, b)

	require.Equal(t, Box{}, BoundingBox(nil))
}
