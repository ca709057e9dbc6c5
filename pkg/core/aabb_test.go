package core

import (
	"math"
	"testing"
)

var negZero = math.Copysign(0, -1)

func TestAABB_Hit(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name      string
		ray       Ray
		tMin      float64
		tMax      float64
		shouldHit bool
	}{
		{"straight through", NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, 1)), 0, 100, true},
		{"diagonal", NewRay(NewVec3(-5, -5, -5), NewVec3(1, 1, 1)), 0, 100, true},
		{"miss above", NewRay(NewVec3(0, 2, -5), NewVec3(0, 0, 1)), 0, 100, false},
		{"pointing away", NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, -1)), 0, 100, false},
		{"origin inside", NewRay(NewVec3(0, 0, 0), NewVec3(1, 0, 0)), 0, 100, true},
		{"range ends before box", NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, 1)), 0, 3.9, false},
		{"range starts after box", NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, 1)), 6.1, 100, false},
		{"axis aligned outside slab", NewRay(NewVec3(5, 0, 0), NewVec3(0, 1, 0)), 0, 100, false},
		{"axis aligned inside slab", NewRay(NewVec3(0.5, -5, 0.5), NewVec3(0, 1, 0)), 0, 100, true},
		{"negative zero direction", NewRay(NewVec3(0.5, -5, 0), NewVec3(negZero, 1, negZero)), 0, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Hit(tt.ray, tt.tMin, tt.tMax); got != tt.shouldHit {
				t.Errorf("Expected hit=%t, got %t", tt.shouldHit, got)
			}
		})
	}
}

func TestAABB_Hit_OppositeDirectionsAgree(t *testing.T) {
	box := NewAABB(NewVec3(0, 0, 0), NewVec3(2, 1, 3))
	random := NewRandom(7)

	for i := 0; i < 500; i++ {
		// A random line through a point near the box
		through := NewVec3(random.Float64()*4-1, random.Float64()*3-1, random.Float64()*5-1)
		dir := RandomUnitVector(random)
		const far = 50.0

		forward := NewRay(through.Subtract(dir.Multiply(far)), dir)
		backward := NewRay(through.Add(dir.Multiply(far)), dir.Negate())

		a := box.Hit(forward, 0, 2*far)
		b := box.Hit(backward, 0, 2*far)
		if a != b {
			t.Fatalf("Line through %v dir %v: forward=%t backward=%t", through, dir, a, b)
		}
	}
}

func TestAABB_Union(t *testing.T) {
	a := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
	b := NewAABB(NewVec3(-1, 0.5, 0.5), NewVec3(0.5, 3, 0.7))

	union := a.Union(b)
	expected := NewAABB(NewVec3(-1, 0, 0), NewVec3(1, 3, 1))
	if union != expected {
		t.Errorf("Expected %v, got %v", expected, union)
	}
	if !union.Contains(a) || !union.Contains(b) {
		t.Error("Union must contain both inputs")
	}
	if got := UnionAll([]AABB{a, b}); got != expected {
		t.Errorf("UnionAll: expected %v, got %v", expected, got)
	}
}

func TestAABB_LongestAxis(t *testing.T) {
	tests := []struct {
		box  AABB
		axis int
	}{
		{NewAABB(NewVec3(0, 0, 0), NewVec3(5, 1, 1)), 0},
		{NewAABB(NewVec3(0, 0, 0), NewVec3(1, 5, 1)), 1},
		{NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 5)), 2},
		{NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1)), 2},
	}
	for _, tt := range tests {
		if got := tt.box.LongestAxis(); got != tt.axis {
			t.Errorf("%v: expected axis %d, got %d", tt.box, tt.axis, got)
		}
	}
}
