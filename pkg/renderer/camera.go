package renderer

import (
	"math"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// CameraConfig contains all parameters needed to create a camera
type CameraConfig struct {
	Center      core.Vec3 // Camera position
	LookAt      core.Vec3 // Point the camera is looking at
	Up          core.Vec3 // Up direction (usually (0,1,0))
	VFov        float64   // Vertical field of view in degrees
	AspectRatio float64   // Width / height
}

// Camera generates rays for rendering
type Camera struct {
	origin     core.Vec3
	u, v, w    core.Vec3 // Image plane horizontal, vertical and view direction
	halfWidth  float64
	halfHeight float64
}

// NewCamera creates a pinhole camera on the image plane one unit in front of Center
func NewCamera(config CameraConfig) *Camera {
	theta := config.VFov * math.Pi / 180.0
	halfHeight := math.Tan(theta / 2)

	w := config.LookAt.Subtract(config.Center).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	return &Camera{
		origin:     config.Center,
		u:          u,
		v:          v,
		w:          w,
		halfWidth:  config.AspectRatio * halfHeight,
		halfHeight: halfHeight,
	}
}

// GetRay generates a ray for image plane coordinates (s, t) where 0 <= s,t <= 1
// and (0.5, 0.5) is the view center
func (c *Camera) GetRay(s, t float64) core.Ray {
	x := (s - 0.5) * 2
	y := (t - 0.5) * 2
	direction := c.u.Multiply(x * c.halfWidth).
		Add(c.v.Multiply(y * c.halfHeight)).
		Add(c.w)
	return core.NewRay(c.origin, direction)
}

// Forward returns the unit view direction
func (c *Camera) Forward() core.Vec3 {
	return c.w
}
