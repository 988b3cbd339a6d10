package scene

import "github.com/go-gl/mathgl/mgl32"

// PerspectiveCamera projects with a symmetric frustum. Fov is the vertical
// field of view in degrees.
type PerspectiveCamera struct {
	Object3D
	Fov    float32
	Aspect float32
	Near   float32
	Far    float32
	Up     mgl32.Vec3

	target mgl32.Vec3
}

func NewPerspectiveCamera(fov, aspect, near, far float32) *PerspectiveCamera {
	return &PerspectiveCamera{
		Fov:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Up:     mgl32.Vec3{0, 1, 0},
		target: mgl32.Vec3{0, 0, -1},
	}
}

// LookAt points the camera at target from its current position.
func (c *PerspectiveCamera) LookAt(target mgl32.Vec3) {
	c.target = target
}

func (c *PerspectiveCamera) Target() mgl32.Vec3 { return c.target }

func (c *PerspectiveCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.target, c.Up)
}

func (c *PerspectiveCamera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), c.Aspect, c.Near, c.Far)
}
