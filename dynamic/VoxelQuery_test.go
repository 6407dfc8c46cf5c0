package dynamic

import (
	"math"
	"testing"

	"github.com/cjmxp/recast.go/recast"
)

func TestTraverseTilesOrder(t *testing.T) {
	query := NewVoxelQuery([]float32{50, 10, 40}, 100, 90, func(x, z int) *recast.Heightfield { return nil })
	var xs, zs []int
	lastT := float32(0)
	query.TraverseTiles([]float32{120, 10, 365}, []float32{320, 10, 57}, func(x, z int, tMin, tMax float32) bool {
		if tMin < lastT || tMax < tMin {
			t.Errorf("tile (%d, %d) range [%v, %v] after %v", x, z, tMin, tMax, lastT)
		}
		lastT = tMax
		xs = append(xs, x)
		zs = append(zs, z)
		return false
	})
	wantX := []int{0, 1, 1, 1, 2, 2}
	wantZ := []int{3, 3, 2, 1, 1, 0}
	if len(xs) != len(wantX) {
		t.Fatalf("visited x %v z %v, want x %v z %v", xs, zs, wantX, wantZ)
	}
	for i := range wantX {
		if xs[i] != wantX[i] || zs[i] != wantZ[i] {
			t.Fatalf("visited x %v z %v, want x %v z %v", xs, zs, wantX, wantZ)
		}
	}
	if lastT != 1 {
		t.Errorf("walk ended at t %v", lastT)
	}
}

func TestTraverseTilesStopsOnVisit(t *testing.T) {
	query := NewVoxelQuery([]float32{0, 0, 0}, 10, 10, nil)
	n := 0
	query.TraverseTiles([]float32{1, 0, 1}, []float32{45, 0, 1}, func(x, z int, tMin, tMax float32) bool {
		n++
		return x == 2
	})
	if n != 3 {
		t.Errorf("visited %d tiles, want 3", n)
	}
}

func pillarHeightfield() *recast.Heightfield {
	hf := recast.NewHeightfield(10, 10, []float32{0, 0, 0}, []float32{10, 10, 10}, 1, 1, 0)
	hf.PushSpan(5, 5, 0, 5, recast.RC_NULL_AREA)
	return hf
}

func TestRaycastHitsPillar(t *testing.T) {
	hf := pillarHeightfield()
	query := NewVoxelQuery([]float32{0, 0, 0}, 10, 10, func(x, z int) *recast.Heightfield {
		if x == 0 && z == 0 {
			return hf
		}
		return nil
	})
	hit, hitT := query.Raycast([]float32{0.5, 2, 5.5}, []float32{9.5, 2, 5.5})
	if !hit {
		t.Fatal("ray through the pillar missed")
	}
	if math.Abs(float64(hitT-0.5)) > 1e-4 {
		t.Errorf("hit t %v, want 0.5", hitT)
	}
	if hit, _ := query.Raycast([]float32{0.5, 7, 5.5}, []float32{9.5, 7, 5.5}); hit {
		t.Error("ray above the pillar hit")
	}
	if hit, _ := query.Raycast([]float32{0.5, 2, 2.5}, []float32{9.5, 2, 2.5}); hit {
		t.Error("ray beside the pillar hit")
	}
	// Descending onto the pillar top from outside the tile.
	if hit, hitT := query.Raycast([]float32{-10, 9, 5.5}, []float32{9.5, 0, 5.5}); !hit || hitT <= 0 || hitT > 1 {
		t.Errorf("descending ray: hit %v t %v", hit, hitT)
	}
}

func TestRaycastWithoutHeightfield(t *testing.T) {
	query := NewVoxelQuery([]float32{0, 0, 0}, 10, 10, func(x, z int) *recast.Heightfield { return nil })
	if hit, _ := query.Raycast([]float32{0, 0, 0}, []float32{35, 0, 27}); hit {
		t.Error("ray over missing tiles hit")
	}
}
