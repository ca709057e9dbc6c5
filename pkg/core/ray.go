package core

// Ray is a half-line with a unit direction. The inverse direction is cached
// for the slab test; zero components become ±Inf.
type Ray struct {
	Origin       Vec3
	Direction    Vec3
	InvDirection Vec3
}

// NewRay creates a ray, normalizing the direction so that t measures distance
func NewRay(origin, direction Vec3) Ray {
	dir := direction.Normalize()
	return Ray{
		Origin:       origin,
		Direction:    dir,
		InvDirection: Vec3{1 / dir.X, 1 / dir.Y, 1 / dir.Z},
	}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}
