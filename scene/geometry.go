package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max mgl32.Vec3
}

// EmptyBox returns a box that contains nothing; expanding it by a point
// yields a box around that point.
func EmptyBox() Box {
	inf := math32.Inf(1)
	return Box{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

func (b Box) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

func (b *Box) ExpandByPoint(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
}

func (b Box) Center() mgl32.Vec3 {
	if b.IsEmpty() {
		return mgl32.Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// Sphere is a bounding sphere. A negative radius marks an empty sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

func (s Sphere) IsEmpty() bool { return s.Radius < 0 }

// Union returns the smallest sphere containing both s and o.
func (s Sphere) Union(o Sphere) Sphere {
	switch {
	case s.IsEmpty():
		return o
	case o.IsEmpty():
		return s
	}

	d := o.Center.Sub(s.Center).Len()
	if d+o.Radius <= s.Radius {
		return s
	}
	if d+s.Radius <= o.Radius {
		return o
	}

	r := (d + s.Radius + o.Radius) / 2
	c := s.Center.Add(o.Center.Sub(s.Center).Mul((r - s.Radius) / d))
	return Sphere{Center: c, Radius: r}
}

// Translate returns s moved by v.
func (s Sphere) Translate(v mgl32.Vec3) Sphere {
	if s.IsEmpty() {
		return s
	}
	return Sphere{Center: s.Center.Add(v), Radius: s.Radius}
}

// Geometry is a non-indexed triangle list: every three positions form one
// triangle. Normals, when present, run parallel to Positions.
type Geometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3

	BoundingBox    *Box
	BoundingSphere *Sphere
}

func (g *Geometry) TriangleCount() int {
	return len(g.Positions) / 3
}

// Triangle returns the corners of triangle i.
func (g *Geometry) Triangle(i int) (a, b, c mgl32.Vec3) {
	return g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2]
}

func (g *Geometry) ComputeBoundingBox() {
	box := EmptyBox()
	for _, p := range g.Positions {
		box.ExpandByPoint(p)
	}
	g.BoundingBox = &box
}

// ComputeBoundingSphere centers the sphere on the bounding box and sizes it
// to reach the farthest vertex.
func (g *Geometry) ComputeBoundingSphere() {
	if g.BoundingBox == nil {
		g.ComputeBoundingBox()
	}
	if g.BoundingBox.IsEmpty() {
		g.BoundingSphere = &Sphere{Radius: -1}
		return
	}

	center := g.BoundingBox.Center()
	var maxSq float32
	for _, p := range g.Positions {
		d := p.Sub(center)
		maxSq = math32.Max(maxSq, d.Dot(d))
	}
	g.BoundingSphere = &Sphere{Center: center, Radius: math32.Sqrt(maxSq)}
}

// Translate moves every vertex by v. Cached bounds are dropped.
func (g *Geometry) Translate(v mgl32.Vec3) {
	for i := range g.Positions {
		g.Positions[i] = g.Positions[i].Add(v)
	}
	g.BoundingBox = nil
	g.BoundingSphere = nil
}

// Center moves the geometry so its bounding box is centered on the origin.
func (g *Geometry) Center() {
	g.ComputeBoundingBox()
	if g.BoundingBox.IsEmpty() {
		return
	}
	g.Translate(g.BoundingBox.Center().Mul(-1))
}
