package scene

import "github.com/go-gl/mathgl/mgl32"

// Light is a node that contributes to surface irradiance.
type Light interface {
	Node
	light()
}

// AmbientLight lights every surface equally.
type AmbientLight struct {
	Object3D
	Color     Color
	Intensity float32
}

func NewAmbientLight(c Color, intensity float32) *AmbientLight {
	return &AmbientLight{Color: c, Intensity: intensity}
}

// DirectionalLight shines from Position toward Target with parallel rays.
type DirectionalLight struct {
	Object3D
	Color     Color
	Intensity float32
	Target    mgl32.Vec3
}

func NewDirectionalLight(c Color, intensity float32) *DirectionalLight {
	l := &DirectionalLight{Color: c, Intensity: intensity}
	l.Position = mgl32.Vec3{0, 1, 0}
	return l
}

// Direction returns the unit vector from the target toward the light.
func (l *DirectionalLight) Direction() mgl32.Vec3 {
	d := l.Position.Sub(l.Target)
	if d.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return d.Normalize()
}

// HemisphereLight blends from GroundColor to SkyColor as a surface turns
// toward Position.
type HemisphereLight struct {
	Object3D
	SkyColor    Color
	GroundColor Color
	Intensity   float32
}

func NewHemisphereLight(sky, ground Color, intensity float32) *HemisphereLight {
	l := &HemisphereLight{SkyColor: sky, GroundColor: ground, Intensity: intensity}
	l.Position = mgl32.Vec3{0, 1, 0}
	return l
}

// Up returns the unit vector pointing at the sky.
func (l *HemisphereLight) Up() mgl32.Vec3 {
	if l.Position.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return l.Position.Normalize()
}

func (*AmbientLight) light()     {}
func (*DirectionalLight) light() {}
func (*HemisphereLight) light()  {}
