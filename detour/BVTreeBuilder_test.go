package detour

import "testing"

func testItems() []BVItem {
	return []BVItem{
		{Bmin: [3]int{0, 0, 0}, Bmax: [3]int{4, 1, 4}, I: 0},
		{Bmin: [3]int{4, 0, 0}, Bmax: [3]int{9, 2, 3}, I: 1},
		{Bmin: [3]int{1, 0, 6}, Bmax: [3]int{3, 1, 12}, I: 2},
		{Bmin: [3]int{8, 1, 8}, Bmax: [3]int{15, 3, 11}, I: 3},
		{Bmin: [3]int{5, 0, 5}, Bmax: [3]int{7, 5, 7}, I: 4},
	}
}

func TestBuildBVTreeCapacity(t *testing.T) {
	items := testItems()
	n := len(items)
	nodes := make([]BVNode, 2*n)
	used := BuildBVTree(items, nodes)
	if used > 2*n {
		t.Fatalf("used %d nodes, capacity %d", used, 2*n)
	}
	if used != 2*n-1 {
		t.Errorf("used %d nodes, want %d for a full binary tree", used, 2*n-1)
	}
	if nodes[0].I != -used {
		t.Errorf("root escape %d, want %d", nodes[0].I, -used)
	}
	seen := map[int]bool{}
	for i := 0; i < used; i++ {
		if nodes[i].I >= 0 {
			if seen[nodes[i].I] {
				t.Errorf("polygon %d in two leaves", nodes[i].I)
			}
			seen[nodes[i].I] = true
		}
	}
	if len(seen) != n {
		t.Errorf("%d leaves, want %d", len(seen), n)
	}
}

func TestBuildBVTreeRootEnclosesItems(t *testing.T) {
	items := testItems()
	nodes := make([]BVNode, 2*len(items))
	BuildBVTree(items, nodes)
	root := nodes[0]
	for _, it := range testItems() {
		for k := 0; k < 3; k++ {
			if it.Bmin[k] < root.Bmin[k] || it.Bmax[k] > root.Bmax[k] {
				t.Fatalf("item %d %v-%v not inside root %v-%v", it.I, it.Bmin, it.Bmax, root.Bmin, root.Bmax)
			}
		}
	}
	if root.Bmin != [3]int{0, 0, 0} || root.Bmax != [3]int{15, 5, 12} {
		t.Errorf("root %v-%v is not the tight union", root.Bmin, root.Bmax)
	}
}

func TestBuildBVTreeTieSplitsOnX(t *testing.T) {
	// x and z extents are both 20, the split must sort by x.
	items := []BVItem{
		{Bmin: [3]int{10, 0, 0}, Bmax: [3]int{20, 0, 10}, I: 0},
		{Bmin: [3]int{0, 0, 10}, Bmax: [3]int{10, 0, 20}, I: 1},
	}
	nodes := make([]BVNode, 4)
	if used := BuildBVTree(items, nodes); used != 3 {
		t.Fatalf("used %d nodes, want 3", used)
	}
	if nodes[1].I != 1 || nodes[2].I != 0 {
		t.Errorf("leaf order %d, %d, want 1, 0", nodes[1].I, nodes[2].I)
	}
}

func TestBuildBVTreeSingleAndEmpty(t *testing.T) {
	if used := BuildBVTree(nil, nil); used != 0 {
		t.Errorf("empty tree used %d nodes", used)
	}
	nodes := make([]BVNode, 2)
	items := []BVItem{{Bmin: [3]int{1, 2, 3}, Bmax: [3]int{4, 5, 6}, I: 7}}
	if used := BuildBVTree(items, nodes); used != 1 || nodes[0].I != 7 {
		t.Errorf("single item tree used %d nodes, leaf %d", used, nodes[0].I)
	}
}

func TestQuantizeBounds(t *testing.T) {
	origin := []float32{0, 0, 0}
	qmin, qmax := QuantizeBounds([]float32{-5, 0.5, 1.2}, []float32{1e12, 1.5, 2.2}, origin, 1)
	if qmin != [3]int{0, 0, 1} {
		t.Errorf("qmin %v", qmin)
	}
	if qmax != [3]int{DT_BV_MAX_QUANT, 2, 3} {
		t.Errorf("qmax %v", qmax)
	}
	if f := QuantFactor([]float32{0, 0, 0}, []float32{10, 2, 5}, 1000); f != 100 {
		t.Errorf("quant factor %v, want 100", f)
	}
	if f := QuantFactor([]float32{0, 0, 0}, []float32{0, 0, 0}, 1000); f != 1 {
		t.Errorf("degenerate quant factor %v, want 1", f)
	}
}
