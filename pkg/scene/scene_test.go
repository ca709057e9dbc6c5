package scene

import (
	"math"
	"testing"

	"github.com/df07/go-bvh-pathtracer/pkg/bvh"
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
)

func TestSphereLightScene_CenterRay(t *testing.T) {
	for _, useBVH := range []bool{false, true} {
		s := NewSphereLightScene(1)
		if useBVH {
			s.BuildBVH(bvh.DefaultOptions(bvh.ObjectMedian))
		}

		ray := core.NewRay(core.NewVec3(0, 0, -3), core.NewVec3(0, 0, 1))
		var rec material.HitRecord
		if !s.Intersect(ray, 0.001, 1e5, &rec) {
			t.Fatalf("bvh=%v: expected the center ray to hit the sphere", useBVH)
		}
		if rec.T <= 0 || math.Abs(rec.T-2) > 1e-9 {
			t.Errorf("bvh=%v: expected t=2, got %f", useBVH, rec.T)
		}
		if rec.Normal.Dot(ray.Direction) >= 0 {
			t.Errorf("bvh=%v: normal %v should face the camera", useBVH, rec.Normal)
		}

		var miss material.HitRecord
		if s.Intersect(ray, 0.001, 1.5, &miss) {
			t.Errorf("bvh=%v: expected no hit with tMax before the sphere", useBVH)
		}
	}
}

func TestScene_Classification(t *testing.T) {
	s := NewCornellScene(1)

	// Ceiling is the only light: two triangles
	if len(s.Lights) != 2 {
		t.Errorf("Expected 2 light triangles, got %d", len(s.Lights))
	}
	// Four walls of two triangles plus the sphere
	if len(s.Objects) != 9 {
		t.Errorf("Expected 9 objects, got %d", len(s.Objects))
	}

	all := s.AllElements()
	if len(all) != s.PrimitiveCount() {
		t.Fatalf("AllElements returned %d of %d primitives", len(all), s.PrimitiveCount())
	}
	for i := range s.Lights {
		if all[i] != s.Lights[i] {
			t.Errorf("Element %d should be light %d", i, i)
		}
	}
	for i := range s.Objects {
		if all[len(s.Lights)+i] != s.Objects[i] {
			t.Errorf("Element %d should be object %d", len(s.Lights)+i, i)
		}
	}
}

func TestScene_Panics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(s *Scene)
	}{
		{"missing material", func(s *Scene) {
			s.AddGeneric(geometry.NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), nil))
		}},
		{"frozen scene", func(s *Scene) {
			s.BuildBVH(bvh.DefaultOptions(bvh.SpatialMedian))
			s.AddGeneric(geometry.NewSphere(core.NewVec3(0, 0, 0), 1, material.NewDiffuse(core.NewVec3(1, 1, 1))))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Expected panic")
				}
			}()
			tt.fn(NewCornellScene(1))
		})
	}
}

func TestScene_BVHMatchesBruteForce(t *testing.T) {
	for _, strategy := range []bvh.Strategy{bvh.SpatialMedian, bvh.ObjectMedian} {
		t.Run(strategy.String(), func(t *testing.T) {
			s := NewSphereGridScene(1, 6, core.NewRandom(42))
			tree := s.BuildBVH(bvh.DefaultOptions(strategy))
			if err := tree.CheckBounds(); err != nil {
				t.Fatal(err)
			}

			random := core.NewRandom(7)
			for i := 0; i < 500; i++ {
				ray := s.Camera.GetRay(random.Float64(), random.Float64())
				var viaTree, brute material.HitRecord
				hitTree := s.Intersect(ray, 0.001, 1e5, &viaTree)
				hitBrute := s.IntersectNoBVH(ray, 0.001, 1e5, &brute)
				if hitTree != hitBrute {
					t.Fatalf("Ray %d: bvh hit %v, brute force %v", i, hitTree, hitBrute)
				}
				if hitTree && math.Abs(viaTree.T-brute.T) > 1e-9 {
					t.Fatalf("Ray %d: bvh t=%f, brute force t=%f", i, viaTree.T, brute.T)
				}
			}
		})
	}
}

func TestScene_UseBVHNilDetaches(t *testing.T) {
	s := NewCornellScene(1)
	s.BuildBVH(bvh.DefaultOptions(bvh.ObjectMedian))
	if !s.HasBVH() {
		t.Fatal("Expected attached BVH")
	}
	s.UseBVH(nil)
	if s.HasBVH() || s.BVH() != nil {
		t.Error("Expected BVH to be detached")
	}
}

func TestScene_RandomLight(t *testing.T) {
	empty := NewScene(NewCornellScene(1).CameraConfig)
	if empty.RandomLight(core.NewRandom(1)) != nil {
		t.Error("Expected nil light for a scene without lights")
	}

	s := NewCornellScene(1)
	seen := map[geometry.Primitive]bool{}
	random := core.NewRandom(3)
	for i := 0; i < 100; i++ {
		seen[s.RandomLight(random)] = true
	}
	if len(seen) != len(s.Lights) {
		t.Errorf("Expected every light to be picked, got %d of %d", len(seen), len(s.Lights))
	}
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		builder, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		if s := builder(16.0/9.0, core.NewRandom(1)); s.PrimitiveCount() == 0 {
			t.Errorf("Scene %q is empty", name)
		}
	}
	if _, err := Lookup("teapot"); err == nil {
		t.Error("Expected error for unknown scene")
	}
}
