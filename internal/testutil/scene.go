package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SceneSize represents common scene dimensions.
type SceneSize struct {
	Width  int
	Height int
}

var (
	// Common test scene sizes.
	SmallScene  = SceneSize{320, 240}
	MediumScene = SceneSize{640, 480}
	LargeScene  = SceneSize{1024, 768}
)

// SceneConfig holds configuration for generating synthetic street scenes.
type SceneConfig struct {
	Size       SceneSize
	Background color.Color
	Foreground color.Color
}

// DefaultSceneConfig returns a default configuration for test scenes.
func DefaultSceneConfig() SceneConfig {
	return SceneConfig{
		Size:       MediumScene,
		Background: color.RGBA{200, 200, 200, 255},
		Foreground: color.RGBA{30, 30, 30, 255},
	}
}

// NewScene creates a blank scene filled with the configured background.
func NewScene(config SceneConfig) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, config.Size.Width, config.Size.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{config.Background}, image.Point{}, draw.Src)
	return img
}

// DrawPole paints a filled vertical bar at (x, y) with the given width and
// height, the shape a roadside post presents after edge extraction.
func DrawPole(img *image.RGBA, x, y, width, height int, col color.Color) {
	rect := image.Rect(x, y, x+width, y+height).Intersect(img.Bounds())
	draw.Draw(img, rect, &image.Uniform{col}, image.Point{}, draw.Src)
}

// DrawRectSign paints a rectangular outline at (x, y). Outlines rather than
// filled blocks keep the interior free of edge responses, matching how a
// sign face photographs against its surroundings.
func DrawRectSign(img *image.RGBA, x, y, width, height, thickness int, col color.Color) {
	bounds := img.Bounds()
	for t := range thickness {
		for px := x; px < x+width; px++ {
			setIfInside(img, bounds, px, y+t, col)
			setIfInside(img, bounds, px, y+height-1-t, col)
		}
		for py := y; py < y+height; py++ {
			setIfInside(img, bounds, x+t, py, col)
			setIfInside(img, bounds, x+width-1-t, py, col)
		}
	}
}

// DrawCircleSign paints a circle outline centered at (cx, cy).
func DrawCircleSign(img *image.RGBA, cx, cy, radius, thickness int, col color.Color) {
	bounds := img.Bounds()
	for t := range thickness {
		r := float64(radius - t)
		steps := int(2 * math.Pi * r * 2)
		if steps < 16 {
			steps = 16
		}
		for i := range steps {
			theta := 2 * math.Pi * float64(i) / float64(steps)
			px := cx + int(math.Round(r*math.Cos(theta)))
			py := cy + int(math.Round(r*math.Sin(theta)))
			setIfInside(img, bounds, px, py, col)
		}
	}
}

// FillCircle paints a filled disc centered at (cx, cy).
func FillCircle(img *image.RGBA, cx, cy, radius int, col color.Color) {
	bounds := img.Bounds()
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= r2 {
				setIfInside(img, bounds, cx+dx, cy+dy, col)
			}
		}
	}
}

func setIfInside(img *image.RGBA, bounds image.Rectangle, x, y int, col color.Color) {
	if image.Pt(x, y).In(bounds) {
		img.Set(x, y, col)
	}
}

// PoleScene returns a scene containing a single pole-like bar.
func PoleScene(t *testing.T) *image.RGBA {
	t.Helper()
	cfg := DefaultSceneConfig()
	img := NewScene(cfg)
	DrawPole(img, 300, 100, 12, 250, cfg.Foreground)
	return img
}

// SignScene returns a scene containing a single rectangular sign outline.
func SignScene(t *testing.T) *image.RGBA {
	t.Helper()
	cfg := DefaultSceneConfig()
	img := NewScene(cfg)
	DrawRectSign(img, 250, 150, 80, 60, 3, cfg.Foreground)
	return img
}

// CircleScene returns a scene containing a single circular sign outline.
func CircleScene(t *testing.T) *image.RGBA {
	t.Helper()
	cfg := DefaultSceneConfig()
	img := NewScene(cfg)
	DrawCircleSign(img, 320, 200, 40, 3, cfg.Foreground)
	return img
}

// FullScene returns a scene with one shape of each class, spaced far enough
// apart that their boxes never overlap.
func FullScene(t *testing.T) *image.RGBA {
	t.Helper()
	cfg := SceneConfig{Size: LargeScene, Background: color.RGBA{200, 200, 200, 255}, Foreground: color.RGBA{30, 30, 30, 255}}
	img := NewScene(cfg)
	DrawPole(img, 150, 200, 12, 250, cfg.Foreground)
	DrawRectSign(img, 450, 150, 80, 60, 3, cfg.Foreground)
	DrawCircleSign(img, 800, 250, 40, 3, cfg.Foreground)
	return img
}

// SaveSceneToDir writes a scene as a PNG under dir and returns its path.
func SaveSceneToDir(t *testing.T, img image.Image, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path) //nolint:gosec // test fixture path
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	require.NoError(t, png.Encode(f, img))
	return path
}
