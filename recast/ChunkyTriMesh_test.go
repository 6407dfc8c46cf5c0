package recast

import (
	"slices"
	"testing"
)

// stripTris lays n small triangles along x, triangle i covering x in [10i, 10i+1].
func stripTris(n int) ([]float32, []int) {
	var verts []float32
	var tris []int
	for i := 0; i < n; i++ {
		x := float32(i * 10)
		verts = append(verts, x, 0, 0, x+1, 0, 0, x, 0, 1)
		tris = append(tris, i*3, i*3+1, i*3+2)
	}
	return verts, tris
}

func TestChunkyTriMeshLeaves(t *testing.T) {
	verts, tris := stripTris(4)
	cm := NewChunkyTriMesh(verts, tris, 1)
	if cm.maxTrisPerChunk != 1 {
		t.Fatalf("max tris per chunk %d, want 1", cm.maxTrisPerChunk)
	}
	all := cm.GetChunksOverlappingRect([]float32{-1, -1}, []float32{100, 100})
	if len(all) != 4 {
		t.Fatalf("%d leaves overlap everything, want 4", len(all))
	}
	var seen []int
	for _, node := range all {
		seen = append(seen, node.GetTris()...)
	}
	slices.Sort(seen)
	if !slices.Equal(seen, tris) {
		t.Errorf("leaves hold %v, want %v", seen, tris)
	}
}

func TestChunkyTriMeshRectQuery(t *testing.T) {
	verts, tris := stripTris(4)
	cm := NewChunkyTriMesh(verts, tris, 1)
	hits := cm.GetChunksOverlappingRect([]float32{0, 0}, []float32{5, 5})
	if len(hits) != 1 || !slices.Equal(hits[0].GetTris(), []int{0, 1, 2}) {
		t.Fatalf("unexpected hits %v", hits)
	}
	hits = cm.GetChunksOverlappingRect([]float32{20.5, 0}, []float32{30.5, 0.5})
	if len(hits) != 2 {
		t.Fatalf("%d hits, want 2", len(hits))
	}
	if hits := cm.GetChunksOverlappingRect([]float32{2, 2}, []float32{3, 3}); len(hits) != 0 {
		t.Fatalf("gap between triangles hit %d leaves", len(hits))
	}
}

func TestChunkyTriMeshEmpty(t *testing.T) {
	cm := NewChunkyTriMesh(nil, nil, 4)
	if hits := cm.GetChunksOverlappingRect([]float32{0, 0}, []float32{1, 1}); len(hits) != 0 {
		t.Fatalf("empty mesh returned %d hits", len(hits))
	}
}
