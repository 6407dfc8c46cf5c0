package dynamic

import (
	"math"
	"reflect"
	"testing"
)

func TestDirtySetDrain(t *testing.T) {
	set := NewDirtySet()
	set.Add(TileCoord{2, 1}, TileCoord{0, 1}, TileCoord{5, 0}, TileCoord{2, 1})
	if set.Len() != 3 {
		t.Fatalf("len %d, want 3", set.Len())
	}
	if !set.Contains(TileCoord{0, 1}) || set.Contains(TileCoord{1, 0}) {
		t.Fatal("contains mismatch")
	}
	want := []TileCoord{{5, 0}, {0, 1}, {2, 1}}
	if got := set.Drain(); !reflect.DeepEqual(got, want) {
		t.Fatalf("drain %v, want %v", got, want)
	}
	if set.Len() != 0 || len(set.Drain()) != 0 {
		t.Fatal("set not empty after drain")
	}
}

func TestTilesOverlapping(t *testing.T) {
	origin := []float32{0, 0, 0}
	cases := []struct {
		name   string
		bounds []float32
		want   []TileCoord
	}{
		{"inside", []float32{12, 0, 12, 15, 1, 15}, []TileCoord{{1, 1}}},
		{"straddle", []float32{8, 0, 12, 12, 1, 15}, []TileCoord{{0, 1}, {1, 1}}},
		{"min on edge", []float32{10, 0, 10, 15, 1, 15}, []TileCoord{{0, 0}, {1, 0}, {0, 1}, {1, 1}}},
		{"max on edge", []float32{12, 0, 12, 20, 1, 15}, []TileCoord{{1, 1}, {2, 1}}},
		{"negative", []float32{-3, 0, 2, -1, 1, 3}, []TileCoord{{-1, 0}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := TilesOverlapping(c.bounds, origin, 10, 10); !reflect.DeepEqual(got, c.want) {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
	if got := TilesOverlapping([]float32{0, 0, 0, 1, 1, 1}, origin, 0, 10); got != nil {
		t.Errorf("zero tile width gave %v", got)
	}
}

func TestTilesOverlappingWithinClamps(t *testing.T) {
	origin := []float32{0, 0, 0}
	lo, hi := TileCoord{0, 0}, TileCoord{2, 2}
	huge := []float32{-1e8, -1e8, -1e8, 1e8, 1e8, 1e8}
	got := TilesOverlappingWithin(huge, origin, 10, 10, lo, hi)
	if len(got) != 9 || got[0] != lo || got[8] != hi {
		t.Fatalf("huge box gave %v", got)
	}
	if got := TilesOverlappingWithin([]float32{12, 0, 35, 15, 1, 38}, origin, 10, 10, lo, hi); got != nil {
		t.Errorf("box beyond the grid gave %v", got)
	}
	if got := TilesOverlappingWithin([]float32{8, 0, 12, 12, 1, 15}, origin, 10, 10, lo, hi); !reflect.DeepEqual(got, []TileCoord{{0, 1}, {1, 1}}) {
		t.Errorf("straddling box gave %v", got)
	}
	nan := float32(math.NaN())
	if got := TilesOverlappingWithin([]float32{nan, 0, 0, 1, 1, 1}, origin, 10, 10, lo, hi); got != nil {
		t.Errorf("NaN bounds gave %v", got)
	}
}
