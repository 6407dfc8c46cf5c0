package recast

import "testing"

func TestAddSpanMergesTouchedSpans(t *testing.T) {
	hf := newTestHeightfield()
	hf.AddSpan(1, 1, 2, 4, 1, 1)
	hf.AddSpan(1, 1, 6, 8, 2, 1)
	hf.AddSpan(1, 1, 3, 7, 5, 1)
	expectColumn(t, hf, 1, 1, 2, 8)
	if a := hf.GetSpan(1, 1).GetArea(); a != 5 {
		t.Errorf("merged area %d, want 5", a)
	}

	hf.AddSpan(2, 2, 6, 8, 1, 1)
	hf.AddSpan(2, 2, 1, 3, 1, 1)
	hf.AddSpan(2, 2, 4, 5, 1, 1)
	expectColumn(t, hf, 2, 2, 1, 3, 4, 5, 6, 8)
}

func TestAddSpanKeepsLowerAreaBelowThreshold(t *testing.T) {
	hf := newTestHeightfield()
	hf.AddSpan(3, 3, 0, 2, RC_WALKABLE_AREA, 1)
	// The new top is 3 cells above the old one, too far for the area to carry over.
	hf.AddSpan(3, 3, 1, 5, POLYAREA_GROUND, 1)
	expectColumn(t, hf, 3, 3, 0, 5)
	if a := hf.GetSpan(3, 3).GetArea(); a != POLYAREA_GROUND {
		t.Errorf("area %d, want %d", a, POLYAREA_GROUND)
	}
}

func TestSplitPoly(t *testing.T) {
	square := []float32{0, 0, 0, 2, 0, 0, 2, 0, 2, 0, 0, 2}
	lo, hi := splitPoly(square, 1, 0, nil, nil)
	if len(lo) != 12 || len(hi) != 12 {
		t.Fatalf("split into %d and %d coords, want 12 and 12", len(lo), len(hi))
	}
	for i := 0; i < len(lo); i += 3 {
		if lo[i] > 1 {
			t.Errorf("lo vertex %v beyond the cut", lo[i:i+3])
		}
		if hi[i] < 1 {
			t.Errorf("hi vertex %v before the cut", hi[i:i+3])
		}
	}
}

func TestRasterizeTrianglesFlatQuad(t *testing.T) {
	hf := newTestHeightfield()
	verts := []float32{0, 2.5, 0, 10, 2.5, 0, 10, 2.5, 10, 0, 2.5, 10}
	tris := []int{0, 1, 2, 0, 2, 3}
	RasterizeTriangles(verts, tris, []int{RC_WALKABLE_AREA, RC_WALKABLE_AREA}, 2, hf, 1)
	for z := 0; z < 10; z++ {
		for x := 0; x < 10; x++ {
			expectColumn(t, hf, x, z, 2, 3)
		}
	}
	if n := hf.SpanCount(); n != 100 {
		t.Fatalf("span count %d, want 100", n)
	}

	outside := []float32{20, 1, 20, 30, 1, 20, 30, 1, 30}
	RasterizeTriangles(outside, []int{0, 1, 2}, []int{RC_WALKABLE_AREA}, 1, hf, 1)
	if n := hf.SpanCount(); n != 100 {
		t.Fatalf("triangle outside the field added spans, count %d", n)
	}
}

func TestMarkWalkableTriangles(t *testing.T) {
	verts := []float32{0, 0, 0, 0, 0, 1, 1, 0, 0, 0, 1, 0}
	tris := []int{
		0, 1, 2, // floor facing up
		0, 2, 1, // floor facing down
		0, 3, 2, // wall
	}
	areas := MarkWalkableTriangles(45, verts, tris, 3, RC_WALKABLE_AREA)
	want := []int{RC_WALKABLE_AREA, RC_NULL_AREA, RC_NULL_AREA}
	for i := range want {
		if areas[i] != want[i] {
			t.Errorf("triangle %d area %d, want %d", i, areas[i], want[i])
		}
	}
}
