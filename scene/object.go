// Package scene holds the scene graph a Renderer draws: meshes, groups,
// lights and the camera, all positioned in a single world space.
package scene

import "github.com/go-gl/mathgl/mgl32"

// Node is anything that can be placed in a scene.
type Node interface {
	Object() *Object3D
}

// Object3D carries the state every node shares.
type Object3D struct {
	Name     string
	Position mgl32.Vec3

	CastShadow    bool
	ReceiveShadow bool
}

func (o *Object3D) Object() *Object3D { return o }

// Mesh is geometry drawn with a material.
type Mesh struct {
	Object3D
	Geometry *Geometry
	Material *StandardMaterial
}

func NewMesh(g *Geometry, m *StandardMaterial) *Mesh {
	return &Mesh{Geometry: g, Material: m}
}

// Group collects child nodes.
type Group struct {
	Object3D
	Children []Node
}

func NewGroup(children ...Node) *Group {
	g := &Group{}
	g.Add(children...)
	return g
}

func (g *Group) Add(nodes ...Node) {
	g.Children = append(g.Children, nodes...)
}

// Remove drops n from the direct children of g.
func (g *Group) Remove(n Node) {
	for i, c := range g.Children {
		if c == n {
			g.Children = append(g.Children[:i], g.Children[i+1:]...)
			return
		}
	}
}

func (g *Group) children() []Node { return g.Children }

// Scene is the root of a scene graph.
type Scene struct {
	Group
}

func New() *Scene {
	return &Scene{}
}

type container interface {
	children() []Node
}

// Traverse calls fn for n and every descendant, depth first, together with
// the node's world offset.
func Traverse(n Node, fn func(n Node, world mgl32.Vec3)) {
	traverse(n, mgl32.Vec3{}, fn)
}

func traverse(n Node, parent mgl32.Vec3, fn func(Node, mgl32.Vec3)) {
	world := parent.Add(n.Object().Position)
	fn(n, world)
	if c, ok := n.(container); ok {
		for _, child := range c.children() {
			traverse(child, world, fn)
		}
	}
}

// Traverse walks the whole scene.
func (s *Scene) Traverse(fn func(n Node, world mgl32.Vec3)) {
	Traverse(s, fn)
}
