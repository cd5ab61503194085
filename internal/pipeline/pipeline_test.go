package pipeline

import (
	"image"
	"testing"

	"github.com/smartmap-tools/holderscan/internal/detector"
	"github.com/smartmap-tools/holderscan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	orch, err := NewBuilder().Build()
	require.NoError(t, err)
	assert.Equal(t, detector.ProfileNormal, orch.Profile().Name)
	assert.Equal(t, DefaultLimits(), orch.cfg.Limits)
	assert.Equal(t, DefaultOverlaps(), orch.cfg.Overlaps)
}

func TestBuilderProfileSelection(t *testing.T) {
	orch, err := NewBuilder().WithProfile(detector.ProfileAggressive).Build()
	require.NoError(t, err)
	assert.Equal(t, detector.ProfileAggressive, orch.Profile().Name)
}

func TestBuilderUnknownProfileFails(t *testing.T) {
	_, err := NewBuilder().WithProfile("extreme").Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extreme")
}

func TestBuilderMissingProfilesFileFails(t *testing.T) {
	_, err := NewBuilder().WithProfilesFile("/does/not/exist.yaml").Build()
	require.Error(t, err)
}

func TestBuilderEmptyProfileKeepsDefault(t *testing.T) {
	orch, err := NewBuilder().WithProfile("").Build()
	require.NoError(t, err)
	assert.Equal(t, detector.ProfileNormal, orch.Profile().Name)
}

func TestDefaultLimits(t *testing.T) {
	l := DefaultLimits()
	assert.Equal(t, 2, l.Pole)
	assert.Equal(t, 3, l.RectSign)
	assert.Equal(t, 2, l.CircleSign)
}

func TestDefaultOverlaps(t *testing.T) {
	o := DefaultOverlaps()
	assert.InDelta(t, 0.3, o.Pole, 1e-9)
	assert.InDelta(t, 0.2, o.RectSign, 1e-9)
	assert.InDelta(t, 0.3, o.CircleSign, 1e-9)
}

func TestRunRespectsClassLimits(t *testing.T) {
	orch, err := NewBuilder().WithProfile(detector.ProfileAggressive).Build()
	require.NoError(t, err)

	limits := orch.cfg.Limits
	img := testutil.FullScene(t)
	result := orch.Run(img)

	counts := map[detector.ShapeClass]int{}
	for _, c := range result {
		counts[c.Class]++
	}
	assert.LessOrEqual(t, counts[detector.ClassPole], limits.Pole)
	assert.LessOrEqual(t, counts[detector.ClassRectSign], limits.RectSign)
	assert.LessOrEqual(t, counts[detector.ClassCircleSign], limits.CircleSign)
}

func TestRunGroupsByCanonicalClassOrder(t *testing.T) {
	orch, err := NewBuilder().WithProfile(detector.ProfileAggressive).Build()
	require.NoError(t, err)

	result := orch.Run(testutil.FullScene(t))

	lastClass := detector.ClassPole
	for _, c := range result {
		assert.GreaterOrEqual(t, int(c.Class), int(lastClass),
			"classes must appear in canonical order")
		lastClass = c.Class
	}
}

func TestRunIsIdempotent(t *testing.T) {
	orch, err := NewBuilder().Build()
	require.NoError(t, err)

	img := testutil.FullScene(t)
	first := orch.Run(img)
	second := orch.Run(img)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i], second[i])
	}
}

func TestRunEmptyImage(t *testing.T) {
	orch, err := NewBuilder().Build()
	require.NoError(t, err)
	assert.Empty(t, orch.Run(nil))
	assert.Empty(t, orch.Run(image.NewRGBA(image.Rect(0, 0, 0, 0))))
}

func TestRunFlatImage(t *testing.T) {
	orch, err := NewBuilder().Build()
	require.NoError(t, err)
	img := testutil.NewScene(testutil.DefaultSceneConfig())
	assert.Empty(t, orch.Run(img))
}
