package dynamic

import (
	"math"
	"testing"

	"github.com/cjmxp/recast.go/recast"
	"github.com/go-gl/mathgl/mgl32"
)

func TestGetBoxColliderHalfEdges(t *testing.T) {
	edges := GetBoxColliderHalfEdges(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 2, 3})
	want := [3]mgl32.Vec3{{1, 0, 0}, {0, 2, 0}, {0, 0, 3}}
	for i := range want {
		if !edges[i].ApproxEqual(want[i]) {
			t.Errorf("edge %d %v, want %v", i, edges[i], want[i])
		}
	}
	// A skewed forward is made orthogonal to up.
	edges = GetBoxColliderHalfEdges(mgl32.Vec3{0, 2, 0}, mgl32.Vec3{0, 1, 1}, mgl32.Vec3{1, 1, 1})
	if d := edges[1].Dot(edges[2]); math.Abs(float64(d)) > 1e-5 {
		t.Errorf("up . forward = %v", d)
	}
	if edges = GetBoxColliderHalfEdges(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 3, 0}, mgl32.Vec3{1, 1, 1}); edges[0].Len() != 0 {
		t.Errorf("parallel axes gave %v", edges)
	}
}

func TestColliderBounds(t *testing.T) {
	box := NewBoxCollider(mgl32.Vec3{5, 5, 5}, GetBoxColliderHalfEdges(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 2, 3}), 0, 1)
	capsule := NewCapsuleCollider(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 4, 2}, 1, 0, 1)
	cases := []struct {
		name     string
		collider Collider
		want     []float32
	}{
		{"box", box, []float32{4, 3, 2, 6, 7, 8}},
		{"sphere", NewSphereCollider(mgl32.Vec3{1, 2, 3}, 2, 0, 1), []float32{-1, 0, 1, 3, 4, 5}},
		{"capsule", capsule, []float32{-1, -1, -1, 1, 5, 3}},
		{"trimesh", NewTrimeshCollider([]float32{0, 1, 2, 3, -1, 5, 1, 1, 1}, []int{0, 1, 2}, 1, 1), []float32{0, -1, 1, 3, 1, 5}},
		{"composite", NewCompositeCollider(box, capsule), []float32{-1, -1, -1, 6, 7, 8}},
	}
	for _, c := range cases {
		got := c.collider.Bounds()
		for k := range c.want {
			if math.Abs(float64(got[k]-c.want[k])) > 1e-5 {
				t.Errorf("%s: bounds %v, want %v", c.name, got, c.want)
				break
			}
		}
	}
}

func TestCompositeColliderStampsEveryChild(t *testing.T) {
	hf := recast.NewHeightfield(10, 10, []float32{0, 0, 0}, []float32{10, 10, 10}, 1, 1, 0)
	composite := NewCompositeCollider(
		NewSphereCollider(mgl32.Vec3{2.5, 3, 2.5}, 1, recast.RC_NULL_AREA, 1),
		NewCylinderCollider(mgl32.Vec3{7.5, 0, 7.5}, mgl32.Vec3{7.5, 4, 7.5}, 1, recast.RC_NULL_AREA, 1),
	)
	composite.Rasterize(hf)
	if s := hf.GetSpan(2, 2); s == nil || s.GetSmin() != 2 || s.GetSmax() != 4 {
		t.Errorf("sphere column %v", s)
	}
	if s := hf.GetSpan(7, 7); s == nil || s.GetSmin() != 0 || s.GetSmax() != 4 {
		t.Errorf("cylinder column %v", s)
	}
	if len(composite.Children()) != 2 {
		t.Errorf("%d children", len(composite.Children()))
	}
}

func TestTrimeshCollidersStampArea(t *testing.T) {
	// Ramp at y 2 over x, z in [2, 6].
	verts := []float32{2, 2, 2, 2, 2, 6, 6, 2, 6, 6, 2, 2}
	tris := []int{0, 1, 2, 0, 2, 3}
	hf := recast.NewHeightfield(10, 10, []float32{0, 0, 0}, []float32{10, 10, 10}, 1, 1, 0)
	NewTrimeshCollider(verts, tris, recast.POLYAREA_GROUND, 1).Rasterize(hf)
	if s := hf.GetSpan(4, 4); s == nil || s.GetSmin() != 2 || s.GetArea() != recast.POLYAREA_GROUND {
		t.Fatalf("surface column %v", s)
	}

	cube := make([]float32, 0, 24)
	for i := 0; i < 8; i++ {
		cube = append(cube, float32(1+2*(i&1)), float32(2*((i>>1)&1)), float32(1+2*((i>>2)&1)))
	}
	hull := []int{0, 2, 6, 0, 6, 4, 1, 7, 3, 1, 5, 7, 0, 4, 5, 0, 5, 1, 2, 3, 7, 2, 7, 6, 0, 1, 3, 0, 3, 2, 4, 6, 7, 4, 7, 5}
	hf = recast.NewHeightfield(10, 10, []float32{0, 0, 0}, []float32{10, 10, 10}, 1, 1, 0)
	NewConvexTrimeshCollider(cube, hull, recast.RC_NULL_AREA, 1).Rasterize(hf)
	if s := hf.GetSpan(2, 2); s == nil || s.GetSmin() != 0 || s.GetSmax() != 2 {
		t.Errorf("convex column %v", s)
	}
}
