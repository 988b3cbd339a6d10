// Package render draws a scene graph into an off-screen surface.
package render

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"stl2png/offscreen"
	"stl2png/scene"
)

// Renderer shades and rasterizes scene meshes into a surface.
type Renderer struct {
	surface *offscreen.Surface
}

// Stats describes the work done by one Render call.
type Stats struct {
	Meshes    int
	Triangles int
	Culled    int
}

func New(surface *offscreen.Surface) *Renderer {
	return &Renderer{surface: surface}
}

func (r *Renderer) Surface() *offscreen.Surface { return r.surface }

// SetClearColor sets the background to an sRGB 0xRRGGBB value.
func (r *Renderer) SetClearColor(hex uint32) {
	r.surface.SetClearColor(color.NRGBA{
		R: uint8(hex >> 16),
		G: uint8(hex >> 8),
		B: uint8(hex),
		A: 255,
	})
}

type directional struct {
	dir      mgl32.Vec3
	radiance scene.Color
}

type hemisphere struct {
	up          mgl32.Vec3
	sky, ground scene.Color
}

// lighting is the light rig of a scene reduced to what shading needs.
type lighting struct {
	ambient      scene.Color
	directionals []directional
	hemispheres  []hemisphere
}

func collectLights(s *scene.Scene) lighting {
	var l lighting
	s.Traverse(func(n scene.Node, _ mgl32.Vec3) {
		switch light := n.(type) {
		case *scene.AmbientLight:
			l.ambient = l.ambient.Add(light.Color.Scale(light.Intensity))
		case *scene.DirectionalLight:
			l.directionals = append(l.directionals, directional{
				dir:      light.Direction(),
				radiance: light.Color.Scale(light.Intensity),
			})
		case *scene.HemisphereLight:
			l.hemispheres = append(l.hemispheres, hemisphere{
				up:     light.Up(),
				sky:    light.SkyColor.Scale(light.Intensity),
				ground: light.GroundColor.Scale(light.Intensity),
			})
		}
	})
	return l
}

// irradiance returns the light arriving at a surface with normal n.
func (l *lighting) irradiance(n mgl32.Vec3) scene.Color {
	e := l.ambient
	for _, d := range l.directionals {
		if dot := n.Dot(d.dir); dot > 0 {
			e = e.Add(d.radiance.Scale(dot))
		}
	}
	for _, h := range l.hemispheres {
		w := 0.5*n.Dot(h.up) + 0.5
		e = e.Add(h.ground.Lerp(h.sky, w))
	}
	return e
}

// shade applies a Lambert BRDF, which is what a fully rough, non-metallic
// standard material reduces to.
func shade(m *scene.StandardMaterial, e scene.Color) scene.Color {
	diffuse := m.Color.Scale((1 - m.Metalness) / math32.Pi)
	return diffuse.Mul(e)
}

// Render clears the surface, draws every mesh in s as seen from cam and
// presents the frame.
func (r *Renderer) Render(s *scene.Scene, cam *scene.PerspectiveCamera) Stats {
	var stats Stats

	r.surface.Clear()
	lights := collectLights(s)
	viewProj := cam.ProjectionMatrix().Mul4(cam.ViewMatrix())

	s.Traverse(func(n scene.Node, world mgl32.Vec3) {
		mesh, ok := n.(*scene.Mesh)
		if !ok || mesh.Geometry == nil {
			return
		}
		mat := mesh.Material
		if mat == nil {
			mat = scene.NewStandardMaterial()
		}
		stats.Meshes++

		g := mesh.Geometry
		for i := 0; i < g.TriangleCount(); i++ {
			a, b, c := g.Triangle(i)
			a, b, c = a.Add(world), b.Add(world), c.Add(world)

			face := b.Sub(a).Cross(c.Sub(a))
			if face.Len() == 0 {
				stats.Culled++
				continue
			}
			face = face.Normalize()
			front := face.Dot(cam.Position.Sub(a)) > 0

			normal := face
			if !mat.FlatShading && len(g.Normals) == len(g.Positions) {
				if avg := g.Normals[i*3].Add(g.Normals[i*3+1]).Add(g.Normals[i*3+2]); avg.Len() > 0 {
					normal = avg.Normalize()
				}
			}

			switch mat.Side {
			case scene.FrontSide:
				if !front {
					stats.Culled++
					continue
				}
			case scene.BackSide:
				if front {
					stats.Culled++
					continue
				}
				normal = normal.Mul(-1)
			case scene.DoubleSide:
				if !front {
					normal = normal.Mul(-1)
				}
			}

			col := shade(mat, lights.irradiance(normal)).NRGBA()
			r.surface.DrawTriangle([3]mgl32.Vec4{
				viewProj.Mul4x1(a.Vec4(1)),
				viewProj.Mul4x1(b.Vec4(1)),
				viewProj.Mul4x1(c.Vec4(1)),
			}, col)
			stats.Triangles++
		}
	})

	r.surface.Present()
	return stats
}
