package dynamic

import (
	"math"

	"github.com/cjmxp/recast.go/recast"
)

// HeightfieldProvider returns the heightfield of tile (x, z), nil when the tile has none.
type HeightfieldProvider func(x, z int) *recast.Heightfield

// VoxelQuery raycasts against tile heightfields directly, no nav mesh is involved.
type VoxelQuery struct {
	origin    []float32
	tileWidth float32
	tileDepth float32
	provider  HeightfieldProvider
}

func NewVoxelQuery(origin []float32, tileWidth, tileDepth float32, provider HeightfieldProvider) *VoxelQuery {
	return &VoxelQuery{
		origin:    append([]float32{}, origin[:3]...),
		tileWidth: tileWidth,
		tileDepth: tileDepth,
		provider:  provider,
	}
}

// Raycast walks the segment start-end tile by tile and reports the first solid span it meets, with the hit
// parameter t in [0, 1] along the segment.
func (this *VoxelQuery) Raycast(start, end []float32) (bool, float32) {
	hit, hitT := false, float32(0)
	this.TraverseTiles(start, end, func(x, z int, tMin, tMax float32) bool {
		hf := this.provider(x, z)
		if hf == nil {
			return false
		}
		hit, hitT = raycastHeightfield(hf, start, end, tMin, tMax)
		return hit
	})
	return hit, hitT
}

// TraverseTiles visits the tiles the segment crosses in order, with the segment parameter range spent in
// each. A visit returning true stops the walk.
func (this *VoxelQuery) TraverseTiles(start, end []float32, visit func(x, z int, tMin, tMax float32) bool) {
	traverseGrid(start[0]-this.origin[0], start[2]-this.origin[2], end[0]-this.origin[0], end[2]-this.origin[2],
		this.tileWidth, this.tileDepth, 0, 1, func(x, z int, t0, t1 float32) bool {
			return visit(x, z, t0, t1)
		})
}

// traverseGrid runs a 2D DDA over cells of size w x d from (sx, sz) to (ex, ez), both relative to the grid
// origin. Parameters reported to visit span [tBase, tBase+tScale] over the walked segment. X advances
// only when its next crossing is strictly closer, ties advance Z.
func traverseGrid(sx, sz, ex, ez float32, w, d float32, tBase, tScale float32, visit func(x, z int, t0, t1 float32) bool) {
	cx := int(math.Floor(float64(sx / w)))
	cz := int(math.Floor(float64(sz / d)))
	endX := int(math.Floor(float64(ex / w)))
	endZ := int(math.Floor(float64(ez / d)))
	dx := endX - cx
	dz := endZ - cz
	stepX, stepZ := 1, 1
	if dx < 0 {
		stepX = -1
	}
	if dz < 0 {
		stepZ = -1
	}
	rx := ex - sx
	rz := ez - sz
	tMaxX, tDeltaX := crossing(sx, rx, w)
	tMaxZ, tDeltaZ := crossing(sz, rz, d)
	t := float32(0)
	for {
		next := min(tMaxX, tMaxZ, 1)
		if visit(cx, cz, tBase+t*tScale, tBase+next*tScale) {
			return
		}
		doneX := cx >= endX
		if dx <= 0 {
			doneX = cx <= endX
		}
		doneZ := cz >= endZ
		if dz <= 0 {
			doneZ = cz <= endZ
		}
		if (doneX && doneZ) || next >= 1 {
			return
		}
		if tMaxX < tMaxZ {
			t = tMaxX
			tMaxX += tDeltaX
			cx += stepX
		} else {
			t = tMaxZ
			tMaxZ += tDeltaZ
			cz += stepZ
		}
	}
}

// crossing returns the parameter of the first cell boundary crossed along an axis and the parameter
// step between boundaries, +Inf for an axis the segment does not move along.
func crossing(p, r, size float32) (float32, float32) {
	if r == 0 {
		inf := float32(math.Inf(1))
		return inf, inf
	}
	rem := float32(math.Mod(float64(p), float64(size)))
	if rem < 0 {
		rem += size
	}
	offset := size - rem
	if r < 0 {
		offset = rem
	}
	length := abs(r)
	return offset / length, size / length
}

// raycastHeightfield walks the cells of hf between parameters tMin and tMax of the segment.
func raycastHeightfield(hf *recast.Heightfield, start, end []float32, tMin, tMax float32) (bool, float32) {
	bmin := hf.GetBmin()
	cs := hf.GetCs()
	ch := hf.GetCh()
	ry := end[1] - start[1]
	entryX := start[0] + (end[0]-start[0])*tMin - bmin[0]
	entryZ := start[2] + (end[2]-start[2])*tMin - bmin[2]
	exitX := start[0] + (end[0]-start[0])*tMax - bmin[0]
	exitZ := start[2] + (end[2]-start[2])*tMax - bmin[2]
	hit, hitT := false, float32(0)
	traverseGrid(entryX, entryZ, exitX, exitZ, cs, cs, tMin, tMax-tMin, func(x, z int, t0, t1 float32) bool {
		s := hf.GetSpan(x, z)
		if s == nil {
			return false
		}
		y1 := (start[1] + ry*t0 - bmin[1]) / ch
		y2 := (start[1] + ry*t1 - bmin[1]) / ch
		ymin, ymax := min(y1, y2), max(y1, y2)
		for ; s != nil; s = s.GetNext() {
			if float32(s.GetSmin()) <= ymax && float32(s.GetSmax()) >= ymin {
				hit, hitT = true, clamp01(t0)
				return true
			}
		}
		return false
	})
	return hit, hitT
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp01(t float32) float32 {
	return max(0, min(t, 1))
}
