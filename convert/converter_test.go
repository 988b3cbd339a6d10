package convert

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stl2png/failure"
	"stl2png/offscreen"
	"stl2png/scene"
)

var background = color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 255}

// writeSTL writes an ASCII STL file holding the given triangles.
func writeSTL(t *testing.T, dir, name string, tris ...[3]mgl32.Vec3) string {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "solid %s\n", name)
	for _, tri := range tris {
		b.WriteString("  facet normal 0 0 0\n    outer loop\n")
		for _, v := range tri {
			fmt.Fprintf(&b, "      vertex %g %g %g\n", v[0], v[1], v[2])
		}
		b.WriteString("    endloop\n  endfacet\n")
	}
	fmt.Fprintf(&b, "endsolid %s\n", name)

	path := filepath.Join(dir, name+".stl")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

var flatTriangle = [3]mgl32.Vec3{{-1, -1, 0}, {1, -1, 0}, {0, 1, 0}}

// uprightTriangle stands in the XZ plane with its apex pointing up +Z.
var uprightTriangle = [3]mgl32.Vec3{{-1, 0, -1}, {1, 0, -1}, {0, 0, 2}}

func newConverter(t *testing.T, w, h int, opts ...Option) *Converter {
	t.Helper()
	c, err := New(w, h, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func lit(c color.NRGBA) bool {
	return c.R > 0x60
}

func TestFlipRows(t *testing.T) {
	// 1 pixel wide, 3 rows
	src := []byte{
		1, 1, 1, 1,
		2, 2, 2, 2,
		3, 3, 3, 3,
	}
	dst := make([]byte, len(src))
	FlipRows(dst, src, 1, 3)
	assert.Equal(t, []byte{
		3, 3, 3, 3,
		2, 2, 2, 2,
		1, 1, 1, 1,
	}, dst)

	// columns keep their order
	src = []byte{
		1, 0, 0, 255, 2, 0, 0, 255,
		3, 0, 0, 255, 4, 0, 0, 255,
	}
	dst = make([]byte, len(src))
	FlipRows(dst, src, 2, 2)
	assert.Equal(t, []byte{
		3, 0, 0, 255, 4, 0, 0, 255,
		1, 0, 0, 255, 2, 0, 0, 255,
	}, dst)
}

func TestNewInitError(t *testing.T) {
	for _, dims := range [][2]int{{0, 0}, {-640, 480}, {100000, 10}} {
		_, err := New(dims[0], dims[1])
		assert.ErrorIs(t, err, failure.ErrInit, "dims %v", dims)
	}
}

func TestNewLargeSurfaces(t *testing.T) {
	for _, dims := range [][2]int{{10000, 16}, {offscreen.MaxDimension, 1}, {1, offscreen.MaxDimension}} {
		c := newConverter(t, dims[0], dims[1])
		assert.Equal(t, dims[0], c.Width())
		assert.Equal(t, dims[1], c.Height())
	}
	_, err := New(offscreen.MaxDimension+1, 1)
	assert.ErrorIs(t, err, failure.ErrInit)
}

func TestNewSurfaceSettings(t *testing.T) {
	c := newConverter(t, 8, 8)
	assert.Equal(t, offscreen.Attributes{
		PreserveDrawingBuffer: true,
		Antialias:             true,
		Alpha:                 true,
	}, c.surface.Attributes())
	assert.Equal(t, background, c.surface.ClearColor())
}

func TestConvertTriangle(t *testing.T) {
	dir := t.TempDir()
	src := writeSTL(t, dir, "triangle", flatTriangle)
	dst := filepath.Join(dir, "out.png")

	c := newConverter(t, 200, 200)
	require.NoError(t, c.Convert(src, dst))

	img := decodePNG(t, dst)
	assert.Equal(t, image.Rect(0, 0, 200, 200), img.Bounds())
	assert.True(t, lit(nrgbaAt(img, 100, 100)), "center pixel %v", nrgbaAt(img, 100, 100))
	assert.Equal(t, background, nrgbaAt(img, 0, 0))
}

func TestOutputMatchesRequestedSize(t *testing.T) {
	dir := t.TempDir()
	src := writeSTL(t, dir, "triangle", flatTriangle)

	for _, dims := range [][2]int{{1, 1}, {64, 32}, {31, 77}} {
		dst := filepath.Join(dir, fmt.Sprintf("%dx%d.png", dims[0], dims[1]))
		c := newConverter(t, dims[0], dims[1])
		require.NoError(t, c.Convert(src, dst))
		assert.Equal(t, image.Rect(0, 0, dims[0], dims[1]), decodePNG(t, dst).Bounds())
	}
}

func TestCaptureFrameFlipsReadBack(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(writeSTL(t, dir, "upright", uprightTriangle))
	require.NoError(t, err)

	const w, h = 40, 30
	c := newConverter(t, w, h)
	require.NoError(t, c.LoadAndPlace(data))
	c.Render()

	raw := make([]byte, w*h*4)
	require.NoError(t, c.surface.ReadPixels(raw))

	encoded, err := c.CaptureFrame()
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(encoded))
	require.NoError(t, err)

	for x := 0; x < w; x++ {
		top := nrgbaAt(img, x, 0)
		bottom := nrgbaAt(img, x, h-1)
		last := (h - 1) * w * 4
		assert.Equal(t, raw[last+x*4:last+x*4+4], []byte{top.R, top.G, top.B, top.A})
		assert.Equal(t, raw[x*4:x*4+4], []byte{bottom.R, bottom.G, bottom.B, bottom.A})
	}
}

func TestUprightTriangleApexOnTop(t *testing.T) {
	dir := t.TempDir()
	src := writeSTL(t, dir, "upright", uprightTriangle)
	dst := filepath.Join(dir, "out.png")

	c := newConverter(t, 200, 200)
	require.NoError(t, c.Convert(src, dst))
	img := decodePNG(t, dst)

	widths := make([]int, 200)
	top, bottom := -1, -1
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			if lit(nrgbaAt(img, x, y)) {
				widths[y]++
			}
		}
		if widths[y] > 0 {
			if top < 0 {
				top = y
			}
			bottom = y
		}
	}
	require.GreaterOrEqual(t, top, 0, "nothing rendered")

	upper := widths[top+(bottom-top)/4]
	lower := widths[top+3*(bottom-top)/4]
	assert.Less(t, upper, lower, "apex should be narrower than the base")
}

// Opaque frames are written as 8-bit truecolor; the alpha channel is
// dropped by the encoder when every pixel is opaque.
func TestCapturedPNGHeader(t *testing.T) {
	dir := t.TempDir()
	src := writeSTL(t, dir, "triangle", flatTriangle)
	dst := filepath.Join(dir, "out.png")

	c := newConverter(t, 16, 16)
	require.NoError(t, c.Convert(src, dst))

	raw, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Greater(t, len(raw), 26)
	assert.Equal(t, "IHDR", string(raw[12:16]))
	assert.Equal(t, byte(8), raw[24], "bit depth")
	assert.Equal(t, byte(2), raw[25], "color type")
}

func TestConvertMissingFile(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.png")

	c := newConverter(t, 100, 100)
	err := c.Convert(filepath.Join(dir, "missing.stl"), dst)
	assert.ErrorIs(t, err, failure.ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "read model")
	assert.NoFileExists(t, dst)
}

func TestConvertUnparseable(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "junk.stl")
	require.NoError(t, os.WriteFile(src, []byte("junk"), 0o644))
	dst := filepath.Join(dir, "out.png")

	c := newConverter(t, 100, 100)
	assert.ErrorIs(t, c.Convert(src, dst), failure.ErrParse)
	assert.NoFileExists(t, dst)
}

func TestConvertEmptyModel(t *testing.T) {
	dir := t.TempDir()
	src := writeSTL(t, dir, "empty")
	dst := filepath.Join(dir, "out.png")

	c := newConverter(t, 100, 100)
	assert.ErrorIs(t, c.Convert(src, dst), failure.ErrParse)
	assert.NoFileExists(t, dst)
}

func TestConvertUnwritable(t *testing.T) {
	dir := t.TempDir()
	src := writeSTL(t, dir, "triangle", flatTriangle)
	dst := filepath.Join(dir, "no", "such", "dir", "out.png")

	c := newConverter(t, 50, 50)
	err := c.Convert(src, dst)
	assert.ErrorIs(t, err, failure.ErrIO)
	assert.Contains(t, err.Error(), "write image")
	assert.NoFileExists(t, dst)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the source should remain")
}

func TestConvertTwiceInOneProcess(t *testing.T) {
	dir := t.TempDir()
	src := writeSTL(t, dir, "upright", uprightTriangle)
	first := filepath.Join(dir, "first.png")
	second := filepath.Join(dir, "second.png")

	c := newConverter(t, 64, 64)
	require.NoError(t, c.Convert(src, first))
	require.NoError(t, c.Convert(src, second))

	a := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	b := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	imgA, imgB := decodePNG(t, first), decodePNG(t, second)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			a.SetNRGBA(x, y, nrgbaAt(imgA, x, y))
			b.SetNRGBA(x, y, nrgbaAt(imgB, x, y))
		}
	}
	assert.Equal(t, a.Pix, b.Pix)
}

func TestSceneResetKeepsRig(t *testing.T) {
	dir := t.TempDir()
	src := writeSTL(t, dir, "triangle", flatTriangle)

	c := newConverter(t, 16, 16)
	before := len(c.Scene().Children)
	require.NoError(t, c.Convert(src, filepath.Join(dir, "out.png")))

	assert.Len(t, c.Scene().Children, before)
	var lights, cameras int
	var names []string
	for _, n := range c.Scene().Children {
		names = append(names, n.Object().Name)
		switch n.(type) {
		case scene.Light:
			lights++
		case *scene.PerspectiveCamera:
			cameras++
		}
	}
	assert.Equal(t, 5, lights)
	assert.Equal(t, 1, cameras)
	assert.Equal(t, []string{"ambient", "key", "back", "top", "hemisphere", "camera"}, names)
}

func TestLoadAndPlaceAimsCamera(t *testing.T) {
	c := newConverter(t, 16, 16)
	stl := "solid t\n facet normal 0 0 1\n  outer loop\n   vertex 9 0 0\n   vertex 11 0 0\n   vertex 10 1 0\n  endloop\n endfacet\nendsolid t\n"
	require.NoError(t, c.LoadAndPlace([]byte(stl)))

	assert.Equal(t, mgl32.Vec3{}, c.Camera().Target())
	var model *scene.Mesh
	for _, n := range c.Scene().Children {
		if m, ok := n.(*scene.Mesh); ok && m.Name == "model" {
			model = m
		}
	}
	require.NotNil(t, model)
	assert.Equal(t, 1, model.Geometry.TriangleCount())
}

func TestCameraPlacement(t *testing.T) {
	c := newConverter(t, 10, 10)

	// bounding sphere radius 2 once centered
	g := &scene.Geometry{Positions: []mgl32.Vec3{{8, 0, 0}, {12, 0, 0}, {10, 0, 0}}}
	require.NoError(t, c.place(scene.NewMesh(g, modelMaterial())))

	assert.Equal(t, mgl32.Vec3{-3, -3, 2}, c.Camera().Position)
	assert.Equal(t, mgl32.Vec3{-2, 0, 0}, g.Positions[0], "geometry is centered in place")
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, c.Camera().Up)
}

func TestGroupFramesAllChildren(t *testing.T) {
	c := newConverter(t, 10, 10)

	segment := func() *scene.Geometry {
		return &scene.Geometry{Positions: []mgl32.Vec3{{-1, 0, 0}, {1, 0, 0}, {0, 0, 0}}}
	}
	left := scene.NewMesh(segment(), modelMaterial())
	right := scene.NewMesh(segment(), modelMaterial())
	right.Position = mgl32.Vec3{4, 0, 0}

	s := boundingSphere(scene.NewGroup(left, right))
	assert.InDelta(t, 3, s.Radius, 1e-5)
	assert.InDelta(t, 2, s.Center.X(), 1e-5)

	require.NoError(t, c.place(scene.NewGroup(left, right)))
	assert.Equal(t, DefaultFraming.Position(3), c.Camera().Position)
}

func TestEmptyGroupCannotBeFramed(t *testing.T) {
	c := newConverter(t, 10, 10)
	assert.ErrorIs(t, c.place(scene.NewGroup()), failure.ErrParse)
	assert.ErrorIs(t, c.place(scene.NewAmbientLight(scene.White, 1)), failure.ErrParse)
}

func TestWithFraming(t *testing.T) {
	c := newConverter(t, 10, 10, WithFraming(Framing{Distance: 2, Height: 0.5}))

	g := &scene.Geometry{Positions: []mgl32.Vec3{{-1, 0, 0}, {1, 0, 0}, {0, 0, 0}}}
	require.NoError(t, c.place(scene.NewMesh(g, modelMaterial())))
	assert.Equal(t, mgl32.Vec3{-2, -2, 0.5}, c.Camera().Position)
}

func TestLoggerDefaultSilent(t *testing.T) {
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		assert.False(t, Logger().Enabled(context.Background(), level))
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	dir := t.TempDir()
	src := writeSTL(t, dir, "triangle", flatTriangle)
	c := newConverter(t, 8, 8)
	require.NoError(t, c.Convert(src, filepath.Join(dir, "out.png")))

	out := buf.String()
	assert.Contains(t, out, "surface created")
	assert.Contains(t, out, "model placed")
	assert.Contains(t, out, "converted")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}
