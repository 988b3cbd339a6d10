package convert

import (
	"github.com/go-gl/mathgl/mgl32"

	"stl2png/scene"
)

// Framing places the camera relative to the bounding sphere of the model.
// Both values are multiples of the sphere radius.
type Framing struct {
	// Distance is how far the camera backs off along -X and -Y.
	Distance float32
	// Height is how far the camera rises along +Z.
	Height float32
}

// DefaultFraming looks at the model diagonally from above, which shows
// something useful for most parts instead of a flat side or the top.
var DefaultFraming = Framing{Distance: 1.5, Height: 1}

// Position returns the camera position for a model of the given radius,
// relative to the scene origin.
func (f Framing) Position(radius float32) mgl32.Vec3 {
	return mgl32.Vec3{-f.Distance * radius, -f.Distance * radius, f.Height * radius}
}

// boundingSphere centers every mesh under n on its own bounding box and
// returns the sphere enclosing all of them in the parent's space. Groups
// frame on the union of their children. Nodes without geometry yield an
// empty sphere.
func boundingSphere(n scene.Node) scene.Sphere {
	switch node := n.(type) {
	case *scene.Mesh:
		if node.Geometry == nil {
			break
		}
		node.Geometry.Center()
		node.Geometry.ComputeBoundingSphere()
		return node.Geometry.BoundingSphere.Translate(node.Position)
	case *scene.Group:
		s := scene.Sphere{Radius: -1}
		for _, child := range node.Children {
			s = s.Union(boundingSphere(child))
		}
		return s.Translate(node.Position)
	}
	return scene.Sphere{Radius: -1}
}
