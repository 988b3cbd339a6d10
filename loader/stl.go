// Package loader turns mesh file contents into scene geometry.
package loader

import (
	"bytes"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hschendel/stl"

	"stl2png/failure"
	"stl2png/scene"
)

// Loader parses the raw bytes of a mesh file.
type Loader interface {
	Parse(data []byte) (*scene.Geometry, error)
}

// STLLoader reads binary and ASCII STL. It is the only format supported,
// and it is used no matter what the file is called.
type STLLoader struct{}

func (STLLoader) Parse(data []byte) (*scene.Geometry, error) {
	solid, err := stl.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, failure.New(failure.Parse, "parse stl", err)
	}
	return geometryFromSolid(solid), nil
}

func geometryFromSolid(solid *stl.Solid) *scene.Geometry {
	n := len(solid.Triangles)
	g := &scene.Geometry{
		Positions: make([]mgl32.Vec3, 0, n*3),
		Normals:   make([]mgl32.Vec3, 0, n*3),
	}
	for i := range solid.Triangles {
		t := &solid.Triangles[i]
		for j := range t.Vertices {
			g.Positions = append(g.Positions, mgl32.Vec3(t.Vertices[j]))
			g.Normals = append(g.Normals, mgl32.Vec3(t.Normal))
		}
	}
	return g
}
