package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
)

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5)))
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	rec := material.HitRecord{T: 42}
	if sphere.Hit(ray, 0.001, 1000.0, &rec) {
		t.Errorf("Expected miss, but got hit at t=%f", rec.T)
	}
	if rec.T != 42 || rec.Material != nil {
		t.Errorf("Miss must leave the record untouched, got %+v", rec)
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	mat := material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5))
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, mat)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			var hit material.HitRecord
			if !sphere.Hit(ray, 0.001, 1000.0, &hit) {
				t.Fatal("Expected hit, but got miss")
			}

			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}
			if hit.Normal.Subtract(tt.expectedNormal).Length() > 1e-9 {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
			if hit.Material != mat {
				t.Error("Expected hit record to carry the sphere material")
			}
		})
	}
}

func TestSphere_Hit_RangeLimits(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, material.NewDiffuse(core.NewVec3(1, 1, 1)))
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

	var rec material.HitRecord
	if sphere.Hit(ray, 0.001, 3.9, &rec) {
		t.Error("Expected miss when tMax is before the near root")
	}
	// Near root excluded, far root accepted
	if !sphere.Hit(ray, 4.5, 100, &rec) || math.Abs(rec.T-6) > 1e-9 {
		t.Errorf("Expected far root at t=6, got hit=%+v", rec)
	}
}

func TestSphere_HitPointRoundTrip(t *testing.T) {
	random := core.NewRandom(11)
	center := core.NewVec3(1, -2, 3)
	const radius = 1.7
	sphere := NewSphere(center, radius, material.NewDiffuse(core.NewVec3(1, 1, 1)))

	for i := 0; i < 500; i++ {
		// Aim from outside at a random point on the surface
		target := sphere.RandomPointOnSurface(random)
		origin := center.Add(core.RandomUnitVector(random).Multiply(10))
		ray := core.NewRay(origin, target.Subtract(origin))

		var rec material.HitRecord
		if !sphere.Hit(ray, 0.001, 1e5, &rec) {
			t.Fatalf("Ray from %v toward %v missed", origin, target)
		}
		toPoint := rec.Point.Subtract(center)
		if math.Abs(toPoint.Length()-radius) > 1e-4 {
			t.Fatalf("Hit point %v at distance %f, expected %f", rec.Point, toPoint.Length(), radius)
		}
		if toPoint.Normalize().Cross(rec.Normal).Length() > 1e-6 {
			t.Fatalf("Normal %v not parallel to %v", rec.Normal, toPoint)
		}
		if rec.Normal.Dot(ray.Direction) > 0 {
			t.Fatalf("Normal %v should face the incoming ray", rec.Normal)
		}
	}
}

func TestSphere_BoundingBoxAndCentroid(t *testing.T) {
	sphere := NewSphere(core.NewVec3(1, 2, 3), 0.5, nil)
	expected := core.NewAABB(core.NewVec3(0.5, 1.5, 2.5), core.NewVec3(1.5, 2.5, 3.5))
	if got := sphere.BoundingBox(); got != expected {
		t.Errorf("Expected %v, got %v", expected, got)
	}
	if sphere.Centroid() != sphere.Center {
		t.Errorf("Expected centroid at center, got %v", sphere.Centroid())
	}
}
