package detour

import (
	"math"
	"sort"
)

// BVItem is the quantized bounding box of one polygon before the tree is built.
type BVItem struct {
	Bmin [3]int
	Bmax [3]int
	/** Polygon index in the tile. */
	I int
}

type BVNode struct {
	/** Minimum bounds of the node's AABB. [(x, y, z)] */
	Bmin [3]int
	/** Maximum bounds of the node's AABB. [(x, y, z)] */
	Bmax [3]int
	/** The polygon index of a leaf, or the negated subtree node count (escape) of an internal node. */
	I int
}

// QuantFactor maps world distances inside the tile box onto integer steps, so that the longest tile extent
// spans precision steps.
func QuantFactor(bmin []float32, bmax []float32, precision float32) float32 {
	extent := max(bmax[0]-bmin[0], bmax[1]-bmin[1], bmax[2]-bmin[2])
	if extent <= 0 || precision <= 0 {
		return 1
	}
	return precision / extent
}

// QuantizeBounds converts the world box [bmin, bmax] relative to origin into quantized coordinates clamped to
// [0, DT_BV_MAX_QUANT]. The minimum rounds down and the maximum rounds up so the result encloses the input.
func QuantizeBounds(bmin []float32, bmax []float32, origin []float32, factor float32) (qmin [3]int, qmax [3]int) {
	for k := 0; k < 3; k++ {
		qmin[k] = quantize(math.Floor(float64((bmin[k] - origin[k]) * factor)))
		qmax[k] = quantize(math.Ceil(float64((bmax[k] - origin[k]) * factor)))
	}
	return
}

func quantize(v float64) int {
	if v <= 0 {
		return 0
	}
	if v >= float64(DT_BV_MAX_QUANT) {
		return DT_BV_MAX_QUANT
	}
	return int(v)
}

// BuildBVTree writes the hierarchy over items into nodes in depth first order and returns the number of nodes
// used. nodes needs room for 2*len(items) entries. items is reordered in place.
func BuildBVTree(items []BVItem, nodes []BVNode) int {
	if len(items) == 0 {
		return 0
	}
	return subdivide(items, 0, len(items), 0, nodes)
}

func subdivide(items []BVItem, imin int, imax int, curNode int, nodes []BVNode) int {
	inum := imax - imin
	icur := curNode
	node := &nodes[curNode]
	curNode++
	if inum == 1 {
		// Leaf
		node.Bmin = items[imin].Bmin
		node.Bmax = items[imin].Bmax
		node.I = items[imin].I
		return curNode
	}
	// Split
	node.Bmin, node.Bmax = calcExtends(items, imin, imax)
	axis := longestAxis(node.Bmax[0]-node.Bmin[0], node.Bmax[1]-node.Bmin[1], node.Bmax[2]-node.Bmin[2])
	part := items[imin:imax]
	sort.SliceStable(part, func(a, b int) bool {
		return part[a].Bmin[axis] < part[b].Bmin[axis]
	})
	isplit := imin + inum/2
	// Left
	curNode = subdivide(items, imin, isplit, curNode, nodes)
	// Right
	curNode = subdivide(items, isplit, imax, curNode, nodes)
	// Negative index means escape.
	nodes[icur].I = -(curNode - icur)
	return curNode
}

func calcExtends(items []BVItem, imin int, imax int) (bmin [3]int, bmax [3]int) {
	bmin = items[imin].Bmin
	bmax = items[imin].Bmax
	for i := imin + 1; i < imax; i++ {
		it := &items[i]
		for k := 0; k < 3; k++ {
			bmin[k] = min(bmin[k], it.Bmin[k])
			bmax[k] = max(bmax[k], it.Bmax[k])
		}
	}
	return
}

// longestAxis prefers x, then y, then z when extents are equal.
func longestAxis(x, y, z int) int {
	axis := 0
	maxVal := x
	if y > maxVal {
		axis = 1
		maxVal = y
	}
	if z > maxVal {
		axis = 2
	}
	return axis
}
