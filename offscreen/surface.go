// Package offscreen implements a fixed-size drawing surface that is never
// attached to a display. It follows the conventions of a GL default
// framebuffer: row 0 is the bottom of the image, clip-space input, and
// pixels are fetched with ReadPixels.
package offscreen

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	xdraw "golang.org/x/image/draw"

	"stl2png/failure"
)

// MaxDimension is the largest width or height a surface accepts.
const MaxDimension = 16384

// Attributes mirror the context attributes of a WebGL drawing buffer.
type Attributes struct {
	// PreserveDrawingBuffer keeps the frame after Present instead of
	// clearing it, so it can still be read back.
	PreserveDrawingBuffer bool
	// Antialias renders with 2x2 samples per pixel.
	Antialias bool
	// Alpha keeps the alpha channel; without it alpha reads back as 255.
	Alpha bool
}

// Surface is an off-screen color and depth buffer.
type Surface struct {
	width   int
	height  int
	samples int
	attrs   Attributes

	// frame holds samples*width by samples*height pixels, bottom row first
	frame *image.RGBA
	// depth holds 1/w per sample; 0 is empty, larger is nearer
	depth []float32

	clear color.NRGBA
}

// New allocates a surface of exactly width x height pixels.
func New(width, height int, attrs Attributes) (*Surface, error) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, failure.Errorf(failure.Init,
			"unable to initialize drawing surface of %dx%d (dimensions must be between 1 and %d)",
			width, height, MaxDimension)
	}

	samples := 1
	if attrs.Antialias && width*2 <= MaxDimension && height*2 <= MaxDimension {
		samples = 2
	}

	s := &Surface{
		width:   width,
		height:  height,
		samples: samples,
		attrs:   attrs,
		frame:   image.NewRGBA(image.Rect(0, 0, width*samples, height*samples)),
		depth:   make([]float32, width*samples*height*samples),
		clear:   color.NRGBA{A: 255},
	}
	return s, nil
}

func (s *Surface) Width() int              { return s.width }
func (s *Surface) Height() int             { return s.height }
func (s *Surface) Attributes() Attributes  { return s.attrs }
func (s *Surface) SamplesPerAxis() int     { return s.samples }
func (s *Surface) ClearColor() color.NRGBA { return s.clear }

// SetClearColor sets the color Clear fills the buffer with.
func (s *Surface) SetClearColor(c color.NRGBA) {
	s.clear = c
}

// Clear resets the color buffer to the clear color and empties the depth
// buffer.
func (s *Surface) Clear() {
	s.fill(s.clear)
}

func (s *Surface) fill(c color.NRGBA) {
	r, g, b, a := c.R, c.G, c.B, c.A
	if !s.attrs.Alpha {
		a = 255
	}
	pix := s.frame.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = r
		pix[i+1] = g
		pix[i+2] = b
		pix[i+3] = a
	}
	clear(s.depth)
}

// Present ends a frame. An unpreserved drawing buffer is cleared to
// transparent black, the way a browser clears it after compositing.
func (s *Surface) Present() {
	if !s.attrs.PreserveDrawingBuffer {
		s.fill(color.NRGBA{})
	}
}

// ReadPixels copies the frame into dst as width*height RGBA pixels,
// bottom row first.
func (s *Surface) ReadPixels(dst []byte) error {
	want := s.width * s.height * 4
	if len(dst) != want {
		return fmt.Errorf("read pixels: buffer holds %d bytes, need %d", len(dst), want)
	}

	if s.samples == 1 {
		copy(dst, s.frame.Pix)
	} else {
		out := &image.RGBA{Pix: dst, Stride: s.width * 4, Rect: image.Rect(0, 0, s.width, s.height)}
		xdraw.BiLinear.Scale(out, out.Rect, s.frame, s.frame.Rect, xdraw.Src, nil)
	}

	if !s.attrs.Alpha {
		for i := 3; i < len(dst); i += 4 {
			dst[i] = 255
		}
	}
	return nil
}

// DrawTriangle fills a triangle given in clip space with a solid color,
// depth tested against what is already in the buffer.
func (s *Surface) DrawTriangle(clip [3]mgl32.Vec4, c color.NRGBA) {
	poly := clipNear(clip[:])
	if len(poly) < 3 {
		return
	}

	pts := make([]screenVertex, len(poly))
	for i, v := range poly {
		pts[i] = s.toScreen(v)
	}
	for i := 1; i+1 < len(pts); i++ {
		s.fillTriangle(pts[0], pts[i], pts[i+1], c)
	}
}

type screenVertex struct {
	x, y float64
	invW float64
}

// toScreen applies the perspective divide and the viewport transform.
func (s *Surface) toScreen(v mgl32.Vec4) screenVertex {
	w := float64(v.W())
	fw := float64(s.width * s.samples)
	fh := float64(s.height * s.samples)
	return screenVertex{
		x:    (float64(v.X())/w + 1) * 0.5 * fw,
		y:    (float64(v.Y())/w + 1) * 0.5 * fh,
		invW: 1 / w,
	}
}

// clipNear clips a polygon against the near plane (z >= -w).
func clipNear(in []mgl32.Vec4) []mgl32.Vec4 {
	out := make([]mgl32.Vec4, 0, len(in)+1)
	for i := range in {
		a := in[i]
		b := in[(i+1)%len(in)]
		da := a.Z() + a.W()
		db := b.Z() + b.W()
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			t := da / (da - db)
			out = append(out, a.Add(b.Sub(a).Mul(t)))
		}
	}
	// a vertex sitting exactly on w = 0 cannot be projected
	for _, v := range out {
		if v.W() <= 0 {
			return nil
		}
	}
	return out
}

func edge(a, b screenVertex, px, py float64) float64 {
	return (px-a.x)*(b.y-a.y) - (py-a.y)*(b.x-a.x)
}

func (s *Surface) fillTriangle(a, b, c screenVertex, col color.NRGBA) {
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return
	}
	if area < 0 {
		b, c = c, b
		area = -area
	}

	fw := s.width * s.samples
	fh := s.height * s.samples
	minX, maxX := span(min(a.x, b.x, c.x), max(a.x, b.x, c.x), fw)
	minY, maxY := span(min(a.y, b.y, c.y), max(a.y, b.y, c.y), fh)

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edge(b, c, px, py)
			w1 := edge(c, a, px, py)
			w2 := edge(a, b, px, py)
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := (w0*a.invW + w1*b.invW + w2*c.invW) / area
			s.plotPixel(x, y, float32(z), col)
		}
	}
}

// plotPixel writes a sample if it is nearer than what is already there.
func (s *Surface) plotPixel(x, y int, z float32, col color.NRGBA) {
	n := y*s.width*s.samples + x
	if z <= s.depth[n] {
		return
	}
	s.depth[n] = z

	a := col.A
	if !s.attrs.Alpha {
		a = 255
	}
	i := n * 4
	s.frame.Pix[i] = col.R
	s.frame.Pix[i+1] = col.G
	s.frame.Pix[i+2] = col.B
	s.frame.Pix[i+3] = a
}

// span returns the pixel range [lo, hi] covering [from, to], limited to
// 0..n-1. The clamp happens in floating point so far-off vertices never
// overflow an int.
func span(from, to float64, n int) (lo, hi int) {
	limit := float64(n - 1)
	lo = int(math.Max(0, math.Min(limit, math.Floor(from))))
	hi = int(math.Max(0, math.Min(limit, math.Ceil(to))))
	return lo, hi
}
