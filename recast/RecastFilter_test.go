package recast

import "testing"

func TestFilterWalkableLowHeightSpans(t *testing.T) {
	hf := newTestHeightfield()
	hf.PushSpan(4, 4, 0, 2, RC_WALKABLE_AREA)
	hf.PushSpan(4, 4, 4, 6, RC_WALKABLE_AREA)
	FilterWalkableLowHeightSpans(2, hf)
	s := hf.GetSpan(4, 4)
	if s.GetArea() != RC_NULL_AREA {
		t.Errorf("span under a 2 cell gap kept area %d", s.GetArea())
	}
	if s.GetNext().GetArea() != RC_WALKABLE_AREA {
		t.Errorf("open top span lost its area")
	}
}

func TestFilterLowHangingWalkableObstacles(t *testing.T) {
	hf := newTestHeightfield()
	hf.PushSpan(4, 4, 0, 2, RC_WALKABLE_AREA)
	hf.PushSpan(4, 4, 2, 3, RC_NULL_AREA)
	hf.PushSpan(4, 4, 3, 4, RC_NULL_AREA)
	FilterLowHangingWalkableObstacles(1, hf)
	s := hf.GetSpan(4, 4).GetNext()
	if s.GetArea() != RC_WALKABLE_AREA {
		t.Errorf("step above walkable floor has area %d", s.GetArea())
	}
	if s.GetNext().GetArea() != RC_NULL_AREA {
		t.Errorf("second step inherited the walkable area")
	}
}

func TestFilterLedgeSpans(t *testing.T) {
	hf := newTestHeightfield()
	for z := 0; z < 10; z++ {
		for x := 0; x < 10; x++ {
			hf.PushSpan(x, z, 0, 1, RC_WALKABLE_AREA)
		}
	}
	FilterLedgeSpans(2, 1, hf)
	if a := hf.GetSpan(5, 5).GetArea(); a != RC_WALKABLE_AREA {
		t.Errorf("interior span area %d", a)
	}
	// Columns on the field edge drop into nothing.
	if a := hf.GetSpan(0, 5).GetArea(); a != RC_NULL_AREA {
		t.Errorf("edge span area %d", a)
	}

	lone := newTestHeightfield()
	lone.PushSpan(5, 5, 0, 1, RC_WALKABLE_AREA)
	FilterLedgeSpans(2, 1, lone)
	if a := lone.GetSpan(5, 5).GetArea(); a != RC_NULL_AREA {
		t.Errorf("isolated pillar top kept area %d", a)
	}
}

func TestErodeWalkableArea(t *testing.T) {
	hf := newTestHeightfield()
	for z := 0; z < 10; z++ {
		for x := 0; x < 10; x++ {
			hf.PushSpan(x, z, 0, 1, RC_WALKABLE_AREA)
		}
	}
	chf := BuildCompactHeightfield(2, 1, hf)
	if chf.Get_spanCount() != 100 {
		t.Fatalf("compact spans %d, want 100", chf.Get_spanCount())
	}
	ErodeWalkableArea(2, chf)
	// Spans within two cells of the edge are cleared, a 6x6 block stays.
	if n := chf.WalkableSpanCount(); n != 36 {
		t.Fatalf("walkable spans after erosion %d, want 36", n)
	}
}
