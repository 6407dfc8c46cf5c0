package recast

import (
	"cmp"
	"slices"
)

// ChunkyTriMesh is a flattened 2D bounding volume tree over the xz bounds of a triangle soup. Leaves hold up
// to trisPerChunk triangles, internal nodes store the negated index of the node after their subtree.
type ChunkyTriMesh struct {
	nodes           []*ChunkyTriMeshNode
	maxTrisPerChunk int
}

type ChunkyTriMeshNode struct {
	bmin [2]float32
	bmax [2]float32
	tris []int
	i    int
}

type chunkItem struct {
	bmin [2]float32
	bmax [2]float32
	tri  int
}

func NewChunkyTriMesh(verts []float32, tris []int, trisPerChunk int) *ChunkyTriMesh {
	cm := &ChunkyTriMesh{}
	ntris := len(tris) / 3
	if ntris == 0 {
		return cm
	}
	items := make([]chunkItem, ntris)
	for i := range items {
		it := &items[i]
		it.tri = i
		for j, v := range tris[i*3 : i*3+3] {
			x, z := verts[v*3], verts[v*3+2]
			if j == 0 {
				it.bmin, it.bmax = [2]float32{x, z}, [2]float32{x, z}
				continue
			}
			it.bmin = [2]float32{min(it.bmin[0], x), min(it.bmin[1], z)}
			it.bmax = [2]float32{max(it.bmax[0], x), max(it.bmax[1], z)}
		}
	}
	cm.subdivide(items, trisPerChunk, tris)
	for _, node := range cm.nodes {
		if node.i >= 0 {
			cm.maxTrisPerChunk = max(cm.maxTrisPerChunk, len(node.tris)/3)
		}
	}
	return cm
}

// GetChunksOverlappingRect returns the leaves whose xz bounds overlap [bmin, bmax].
func (this *ChunkyTriMesh) GetChunksOverlappingRect(bmin []float32, bmax []float32) []*ChunkyTriMeshNode {
	var hits []*ChunkyTriMeshNode
	for i := 0; i < len(this.nodes); {
		node := this.nodes[i]
		overlap := bmin[0] <= node.bmax[0] && bmax[0] >= node.bmin[0] && bmin[1] <= node.bmax[1] && bmax[1] >= node.bmin[1]
		leaf := node.i >= 0
		if leaf && overlap {
			hits = append(hits, node)
		}
		if overlap || leaf {
			i++
		} else {
			i = -node.i
		}
	}
	return hits
}

// GetTris returns the triangle vertex indices of a leaf.
func (this *ChunkyTriMeshNode) GetTris() []int {
	return this.tris
}

func (this *ChunkyTriMesh) subdivide(items []chunkItem, trisPerChunk int, inTris []int) {
	node := &ChunkyTriMeshNode{bmin: items[0].bmin, bmax: items[0].bmax}
	for _, it := range items[1:] {
		node.bmin = [2]float32{min(node.bmin[0], it.bmin[0]), min(node.bmin[1], it.bmin[1])}
		node.bmax = [2]float32{max(node.bmax[0], it.bmax[0]), max(node.bmax[1], it.bmax[1])}
	}
	this.nodes = append(this.nodes, node)
	if len(items) <= trisPerChunk {
		node.i = len(this.nodes)
		node.tris = make([]int, 0, len(items)*3)
		for _, it := range items {
			node.tris = append(node.tris, inTris[it.tri*3:it.tri*3+3]...)
		}
		return
	}
	// Split at the median along the longer of x and z.
	axis := 0
	if node.bmax[1]-node.bmin[1] > node.bmax[0]-node.bmin[0] {
		axis = 1
	}
	slices.SortStableFunc(items, func(a, b chunkItem) int {
		return cmp.Compare(a.bmin[axis], b.bmin[axis])
	})
	half := len(items) / 2
	this.subdivide(items[:half], trisPerChunk, inTris)
	this.subdivide(items[half:], trisPerChunk, inTris)
	node.i = -len(this.nodes)
}
