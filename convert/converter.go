// Package convert renders a mesh file to a PNG image.
//
// A Converter owns a fixed-size off-screen surface, a canvas the frame is
// composed on, a camera and a scene lit by a fixed rig:
//
//	c, err := convert.New(640, 480)
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//	err = c.Convert("part.stl", "part.png")
package convert

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"

	"stl2png/failure"
	"stl2png/loader"
	"stl2png/offscreen"
	"stl2png/render"
	"stl2png/scene"
)

const (
	fieldOfView = 60
	nearPlane   = 0.001
	farPlane    = 500000

	backgroundColor = 0x222222
	modelColor      = 0xf0ebe8
)

// Converter renders models of one fixed output size.
type Converter struct {
	width  int
	height int

	surface  *offscreen.Surface
	canvas   *gg.Context
	pixmap   *gg.Pixmap
	camera   *scene.PerspectiveCamera
	renderer *render.Renderer
	scene    *scene.Scene

	loader  loader.Loader
	framing Framing
}

// Option configures a Converter.
type Option func(*Converter)

// WithFraming replaces DefaultFraming.
func WithFraming(f Framing) Option {
	return func(c *Converter) {
		c.framing = f
	}
}

// New sets up the surface, canvas, camera and lit scene for images of
// width x height pixels. It fails with an InitError when no surface of that
// size can be created.
func New(width, height int, opts ...Option) (*Converter, error) {
	surface, err := offscreen.New(width, height, offscreen.Attributes{
		PreserveDrawingBuffer: true,
		Antialias:             true,
		Alpha:                 true,
	})
	if err != nil {
		return nil, err
	}

	pixmap := gg.NewPixmap(width, height)
	c := &Converter{
		width:    width,
		height:   height,
		surface:  surface,
		pixmap:   pixmap,
		canvas:   gg.NewContext(width, height, gg.WithPixmap(pixmap)),
		camera:   scene.NewPerspectiveCamera(fieldOfView, float32(width)/float32(height), nearPlane, farPlane),
		renderer: render.New(surface),
		loader:   loader.STLLoader{},
		framing:  DefaultFraming,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.renderer.SetClearColor(backgroundColor)
	// models are expected to be authored Z-up
	c.camera.Up = mgl32.Vec3{0, 0, 1}
	c.resetScene()

	Logger().Debug("surface created",
		"width", width, "height", height, "samples", surface.SamplesPerAxis())
	return c, nil
}

// Close releases the canvas.
func (c *Converter) Close() error {
	return c.canvas.Close()
}

func (c *Converter) Width() int                       { return c.width }
func (c *Converter) Height() int                      { return c.height }
func (c *Converter) Scene() *scene.Scene              { return c.scene }
func (c *Converter) Camera() *scene.PerspectiveCamera { return c.camera }

// resetScene replaces the scene with a fresh one holding the light rig and
// the camera, so every conversion starts from the same stage.
func (c *Converter) resetScene() {
	s := scene.New()

	// The rig approximates a neutral studio environment with classic
	// lights: a strong ambient term, three directional lights and a
	// hemisphere light.
	ambient := scene.NewAmbientLight(scene.White, 2)
	ambient.Name = "ambient"
	s.Add(ambient)

	key := scene.NewDirectionalLight(scene.White, 2)
	key.Name = "key"
	key.Position = mgl32.Vec3{5, 5, 5}
	back := scene.NewDirectionalLight(scene.White, 1.5)
	back.Name = "back"
	back.Position = mgl32.Vec3{-5, 5, -5}
	top := scene.NewDirectionalLight(scene.White, 2)
	top.Name = "top"
	top.Position = mgl32.Vec3{0, 0, 5}
	s.Add(key, back, top)

	sky := scene.NewHemisphereLight(scene.White, scene.Hex(0x444444), 1.5)
	sky.Name = "hemisphere"
	s.Add(sky)

	c.camera.Name = "camera"
	s.Add(c.camera)

	c.scene = s
}

// modelMaterial is the surface every model is drawn with: matte off-white,
// faceted, visible from both sides.
func modelMaterial() *scene.StandardMaterial {
	m := scene.NewStandardMaterial()
	m.Color = scene.Hex(modelColor)
	m.Roughness = 1
	m.Metalness = 0
	m.FlatShading = true
	m.Side = scene.DoubleSide
	m.ShadowSide = scene.BackSide
	return m
}

// LoadAndPlace parses mesh data, adds the mesh to the scene and points the
// camera at it.
func (c *Converter) LoadAndPlace(data []byte) error {
	geom, err := c.loader.Parse(data)
	if err != nil {
		return err
	}

	mesh := scene.NewMesh(geom, modelMaterial())
	mesh.Name = "model"
	mesh.CastShadow = true
	mesh.ReceiveShadow = true

	if err := c.place(mesh); err != nil {
		return err
	}
	c.scene.Add(mesh)
	c.camera.LookAt(c.scene.Position)

	Logger().Debug("model placed",
		"name", mesh.Name,
		"triangles", geom.TriangleCount(),
		"radius", geom.BoundingSphere.Radius,
		"camera", c.camera.Position)
	return nil
}

// place centers n and moves the camera out to frame its bounding sphere.
func (c *Converter) place(n scene.Node) error {
	sphere := boundingSphere(n)
	if sphere.IsEmpty() || sphere.Radius == 0 {
		return failure.Errorf(failure.Parse, "model has no visible geometry")
	}
	c.camera.Position = c.scene.Position.Add(c.framing.Position(sphere.Radius))
	return nil
}

// Render draws the scene once into the surface.
func (c *Converter) Render() render.Stats {
	stats := c.renderer.Render(c.scene, c.camera)
	Logger().Debug("scene rendered",
		"meshes", stats.Meshes, "triangles", stats.Triangles, "culled", stats.Culled)
	return stats
}

// CaptureFrame reads the rendered frame back, turns it right side up on the
// canvas and encodes the canvas as PNG.
func (c *Converter) CaptureFrame() ([]byte, error) {
	pixels := make([]byte, c.width*c.height*4)
	if err := c.surface.ReadPixels(pixels); err != nil {
		return nil, err
	}

	FlipRows(c.pixmap.Data(), pixels, c.width, c.height)

	var buf bytes.Buffer
	if err := c.canvas.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Convert renders the model at sourcePath and writes the PNG to destPath.
// The scene is reset afterwards whether or not the conversion succeeded.
func (c *Converter) Convert(sourcePath, destPath string) error {
	defer c.resetScene()

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return failure.New(failure.IO, "read model", err)
	}
	Logger().Debug("model read", "path", sourcePath, "bytes", len(data))

	if err := c.LoadAndPlace(data); err != nil {
		return err
	}
	c.Render()

	img, err := c.CaptureFrame()
	if err != nil {
		return err
	}

	if err := writeFile(destPath, img); err != nil {
		return failure.New(failure.IO, "write image", err)
	}
	Logger().Info("converted", "source", sourcePath, "dest", destPath, "bytes", len(img))
	return nil
}
