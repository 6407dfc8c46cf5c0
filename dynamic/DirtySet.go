package dynamic

import (
	"math"
	"sort"
)

type TileCoord struct {
	X int
	Z int
}

// DirtySet holds the tiles waiting for a rebuild, each coordinate at most once.
type DirtySet struct {
	tiles map[TileCoord]struct{}
}

func NewDirtySet() *DirtySet {
	return &DirtySet{tiles: make(map[TileCoord]struct{})}
}

func (this *DirtySet) Add(coords ...TileCoord) {
	for _, c := range coords {
		this.tiles[c] = struct{}{}
	}
}

func (this *DirtySet) Contains(c TileCoord) bool {
	_, ok := this.tiles[c]
	return ok
}

func (this *DirtySet) Len() int {
	return len(this.tiles)
}

// Drain empties the set and returns its content ordered by z then x.
func (this *DirtySet) Drain() []TileCoord {
	coords := make([]TileCoord, 0, len(this.tiles))
	for c := range this.tiles {
		coords = append(coords, c)
	}
	this.tiles = make(map[TileCoord]struct{})
	sort.Slice(coords, func(a, b int) bool {
		if coords[a].Z != coords[b].Z {
			return coords[a].Z < coords[b].Z
		}
		return coords[a].X < coords[b].X
	})
	return coords
}

// TilesOverlapping lists every tile whose xz rectangle intersects bounds. Tiles are laid out from origin
// with the given size, a box touching a tile edge counts for both tiles.
func TilesOverlapping(bounds []float32, origin []float32, tileWidth, tileDepth float32) []TileCoord {
	return TilesOverlappingWithin(bounds, origin, tileWidth, tileDepth, TileCoord{math.MinInt32, math.MinInt32}, TileCoord{math.MaxInt32, math.MaxInt32})
}

// TilesOverlappingWithin is TilesOverlapping restricted to the tiles from lo to hi inclusive. The range is
// clamped before anything is allocated, so boxes far larger than the grid cost no more than the grid.
func TilesOverlappingWithin(bounds []float32, origin []float32, tileWidth, tileDepth float32, lo, hi TileCoord) []TileCoord {
	if tileWidth <= 0 || tileDepth <= 0 {
		return nil
	}
	minX, maxX, ok := tileRange(bounds[0], bounds[3], origin[0], tileWidth, lo.X, hi.X)
	if !ok {
		return nil
	}
	minZ, maxZ, ok := tileRange(bounds[2], bounds[5], origin[2], tileDepth, lo.Z, hi.Z)
	if !ok {
		return nil
	}
	coords := make([]TileCoord, 0, (maxX-minX+1)*(maxZ-minZ+1))
	for z := minZ; z <= maxZ; z++ {
		for x := minX; x <= maxX; x++ {
			coords = append(coords, TileCoord{x, z})
		}
	}
	return coords
}

// tileRange maps [bmin, bmax] on one axis to tile indices clamped to [first, last].
func tileRange(bmin, bmax, origin, size float32, first, last int) (int, int, bool) {
	a := math.Floor(float64((bmin - origin) / size))
	b := math.Floor(float64((bmax - origin) / size))
	// A min exactly on a tile edge also touches the tile before it.
	if float32(a)*size+origin == bmin {
		a--
	}
	// Negated so NaN bounds are rejected too.
	if !(b >= float64(first) && a <= float64(last) && a <= b) {
		return 0, 0, false
	}
	return int(max(a, float64(first))), int(min(b, float64(last))), true
}
