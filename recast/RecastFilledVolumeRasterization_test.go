package recast

import "testing"

func newTestHeightfield() *Heightfield {
	return NewHeightfield(10, 10, []float32{0, 0, 0}, []float32{10, 10, 10}, 1, 1, 0)
}

func expectColumn(t *testing.T, hf *Heightfield, x, z int, want ...int) {
	t.Helper()
	s := hf.GetSpan(x, z)
	for i := 0; i < len(want); i += 2 {
		if s == nil {
			t.Fatalf("column (%d, %d): missing span [%d, %d)", x, z, want[i], want[i+1])
		}
		if s.GetSmin() != want[i] || s.GetSmax() != want[i+1] {
			t.Fatalf("column (%d, %d): span [%d, %d), want [%d, %d)", x, z, s.GetSmin(), s.GetSmax(), want[i], want[i+1])
		}
		s = s.GetNext()
	}
	if s != nil {
		t.Fatalf("column (%d, %d): extra span [%d, %d)", x, z, s.GetSmin(), s.GetSmax())
	}
}

func TestRasterizeSphere(t *testing.T) {
	hf := newTestHeightfield()
	RasterizeSphere(hf, []float32{5, 5, 5}, 2, RC_NULL_AREA, 1)
	expectColumn(t, hf, 5, 5, 3, 7)
	expectColumn(t, hf, 0, 0)
	expectColumn(t, hf, 8, 5)
	if s := hf.GetSpan(5, 5); s.GetArea() != RC_NULL_AREA {
		t.Errorf("area %d", s.GetArea())
	}
}

func TestRasterizeDegenerateShapes(t *testing.T) {
	hf := newTestHeightfield()
	RasterizeSphere(hf, []float32{5, 5, 5}, 0, 1, 1)
	RasterizeCapsule(hf, []float32{5, 2, 5}, []float32{5, 6, 5}, -1, 1, 1)
	RasterizeCylinder(hf, []float32{5, 2, 5}, []float32{5, 6, 5}, 0, 1, 1)
	RasterizeBox(hf, []float32{5, 5, 5}, [][]float32{{0, 0, 0}, {0, 1, 0}, {0, 0, 1}}, 1, 1)
	if n := hf.SpanCount(); n != 0 {
		t.Fatalf("degenerate shapes produced %d spans", n)
	}
}

func TestRasterizeBox(t *testing.T) {
	hf := newTestHeightfield()
	RasterizeBox(hf, []float32{5, 2, 5}, [][]float32{{2, 0, 0}, {0, 1, 0}, {0, 0, 2}}, POLYAREA_GROUND, 1)
	expectColumn(t, hf, 5, 5, 1, 3)
	expectColumn(t, hf, 6, 5, 1, 3)
	expectColumn(t, hf, 7, 5)
	expectColumn(t, hf, 2, 5)
}

func TestRasterizeCapsuleAndCylinder(t *testing.T) {
	hf := newTestHeightfield()
	RasterizeCapsule(hf, []float32{5, 2, 5}, []float32{5, 6, 5}, 1, 1, 1)
	expectColumn(t, hf, 5, 5, 1, 7)
	hf = newTestHeightfield()
	RasterizeCylinder(hf, []float32{5, 2, 5}, []float32{5, 6, 5}, 1, 1, 1)
	expectColumn(t, hf, 5, 5, 2, 6)
	expectColumn(t, hf, 7, 5)
}

func TestRasterizeConvexCube(t *testing.T) {
	verts := make([]float32, 0, 24)
	for i := 0; i < 8; i++ {
		verts = append(verts, float32(4+2*(i&1)), float32(4+2*((i>>1)&1)), float32(4+2*((i>>2)&1)))
	}
	tris := []int{
		0, 2, 6, 0, 6, 4,
		1, 7, 3, 1, 5, 7,
		0, 4, 5, 0, 5, 1,
		2, 3, 7, 2, 7, 6,
		0, 1, 3, 0, 3, 2,
		4, 6, 7, 4, 7, 5,
	}
	hf := newTestHeightfield()
	RasterizeConvex(hf, verts, tris, 1, 1)
	expectColumn(t, hf, 4, 4, 4, 6)
	expectColumn(t, hf, 5, 5, 4, 6)
	expectColumn(t, hf, 6, 4)
	expectColumn(t, hf, 3, 4)
}

func TestShapeAboveFieldTopIsKept(t *testing.T) {
	hf := NewHeightfield(10, 10, []float32{0, 0, 0}, []float32{10, 1, 10}, 1, 1, 0)
	RasterizeSphere(hf, []float32{5, 3, 5}, 2, RC_NULL_AREA, 1)
	expectColumn(t, hf, 5, 5, 1, 5)
}

func TestHeightfieldCloneIsDeep(t *testing.T) {
	hf := newTestHeightfield()
	hf.AddSpan(2, 2, 0, 2, RC_WALKABLE_AREA, 1)
	clone := hf.Clone()
	clone.AddSpan(2, 2, 1, 5, RC_NULL_AREA, 1)
	clone.AddSpan(3, 3, 0, 1, RC_NULL_AREA, 1)
	expectColumn(t, hf, 2, 2, 0, 2)
	expectColumn(t, hf, 3, 3)
	expectColumn(t, clone, 2, 2, 0, 5)
}

func TestHeightfieldPushSpan(t *testing.T) {
	hf := newTestHeightfield()
	if !hf.PushSpan(1, 1, 0, 2, 1) || !hf.PushSpan(1, 1, 4, 6, 2) {
		t.Fatal("ordered spans refused")
	}
	if hf.PushSpan(1, 1, 5, 8, 1) {
		t.Error("overlapping span accepted")
	}
	if hf.PushSpan(1, 1, 9, 9, 1) || hf.PushSpan(10, 1, 0, 1, 1) {
		t.Error("empty or out of range span accepted")
	}
	expectColumn(t, hf, 1, 1, 0, 2, 4, 6)
}

func TestRasterizeAboveSpanRangeIsSkipped(t *testing.T) {
	hf := newTestHeightfield()
	top := float32(RC_SPAN_MAX_HEIGHT)
	RasterizeSphere(hf, []float32{5, top + 10, 5}, 2, RC_NULL_AREA, 1)
	if n := hf.SpanCount(); n != 0 {
		t.Fatalf("sphere above the span range added %d spans", n)
	}

	// Starting on the last representable cell still clips to a non empty span.
	RasterizeSphere(hf, []float32{5, top - 1, 5}, 1.5, RC_NULL_AREA, 1)
	for s := hf.GetSpan(5, 5); s != nil; s = s.GetNext() {
		if s.GetSmin() >= s.GetSmax() {
			t.Errorf("empty span [%d, %d)", s.GetSmin(), s.GetSmax())
		}
	}
	if hf.GetSpan(5, 5) == nil {
		t.Error("sphere below the span limit left no span")
	}
}
