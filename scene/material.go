package scene

// Side selects which faces of a triangle are drawn.
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// StandardMaterial is a metallic/roughness surface description.
type StandardMaterial struct {
	Color     Color
	Roughness float32
	Metalness float32

	// FlatShading lights each triangle with its face normal instead of
	// interpolated vertex normals.
	FlatShading bool
	Side        Side
	// ShadowSide is the side rendered into shadow maps.
	ShadowSide Side
}

func NewStandardMaterial() *StandardMaterial {
	return &StandardMaterial{
		Color:     White,
		Roughness: 1,
		Side:      FrontSide,
	}
}
