package core

import "math"

// RandomUnitVector returns a uniformly distributed direction on the unit sphere
func RandomUnitVector(random Random) Vec3 {
	z := 1 - 2*random.Float64()
	r := math.Sqrt(max(0, 1-z*z))
	phi := 2 * math.Pi * random.Float64()
	return Vec3{r * math.Cos(phi), r * math.Sin(phi), z}
}

// RandomInUnitSphere generates a random point inside a unit sphere
func RandomInUnitSphere(random Random) Vec3 {
	for {
		p := Vec3{
			X: 2*random.Float64() - 1,
			Y: 2*random.Float64() - 1,
			Z: 2*random.Float64() - 1,
		}
		if p.LengthSquared() <= 1.0 {
			return p
		}
	}
}

// Reflect mirrors v about the surface normal n
func Reflect(v, n Vec3) Vec3 {
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// Refract bends the unit vector uv through a surface with normal n using
// Snell's law. Total internal reflection must be handled by the caller.
func Refract(uv, n Vec3, etaiOverEtat float64) Vec3 {
	cosTheta := min(uv.Negate().Dot(n), 1.0)
	rOutPerp := uv.Add(n.Multiply(cosTheta)).Multiply(etaiOverEtat)
	rOutParallel := n.Multiply(-math.Sqrt(math.Abs(1.0 - rOutPerp.LengthSquared())))
	return rOutPerp.Add(rOutParallel)
}

// OrthonormalBasis builds two unit tangents perpendicular to the unit normal n
func OrthonormalBasis(n Vec3) (tangent, bitangent Vec3) {
	var nt Vec3
	if math.Abs(n.X) > 0.1 {
		nt = NewVec3(0, 1, 0)
	} else {
		nt = NewVec3(1, 0, 0)
	}
	tangent = nt.Cross(n).Normalize()
	bitangent = n.Cross(tangent)
	return tangent, bitangent
}
