package detour

import (
	"errors"
	"testing"
)

// quadTileParams describes a 10 x 10 tile at grid (tx, 0) holding two quads split along x = 5.
func quadTileParams(tx int) *NavMeshCreateParams {
	const null = MESH_NULL_IDX
	const border = 0x8000 | 0xf
	return &NavMeshCreateParams{
		Verts: []int{
			0, 0, 0,
			0, 0, 10,
			5, 0, 10,
			5, 0, 0,
			10, 0, 10,
			10, 0, 0,
		},
		VertCount: 6,
		Polys: []int{
			0, 1, 2, 3, null, null, border, border, 1, border, null, null,
			3, 2, 4, 5, null, null, 0, border, border, border, null, null,
		},
		PolyAreas:      []int{63, 63},
		PolyFlags:      []int{1, 1},
		PolyCount:      2,
		Nvp:            6,
		TileX:          tx,
		Bmin:           []float32{float32(tx) * 10, 0, 0},
		Bmax:           []float32{float32(tx)*10 + 10, 1, 10},
		WalkableHeight: 2,
		WalkableRadius: 0.5,
		WalkableClimb:  0.5,
		Cs:             1,
		Ch:             1,
		BuildBvTree:    true,
	}
}

func newTestNavMesh(t *testing.T) *NavMesh {
	t.Helper()
	return NewNavMesh(NewNavMeshParams([]float32{0, 0, 0}, 10, 10, 4, 1<<DT_POLY_BITS), 6)
}

func TestCreateNavMeshDataEmpty(t *testing.T) {
	params := quadTileParams(0)
	params.PolyCount = 0
	data, err := CreateNavMeshData(params)
	if err != nil || data != nil {
		t.Fatalf("empty mesh gave %v, %v", data, err)
	}
}

func TestCreateNavMeshDataBVTree(t *testing.T) {
	data, err := CreateNavMeshData(quadTileParams(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(data.GetBVTree()) != 4 {
		t.Errorf("bv capacity %d, want 4", len(data.GetBVTree()))
	}
	if data.GetHeader().GetBvNodeCount() != 3 {
		t.Errorf("bv node count %d, want 3", data.GetHeader().GetBvNodeCount())
	}
}

func TestNavMeshAddRemoveTile(t *testing.T) {
	nav := newTestNavMesh(t)
	data, err := CreateNavMeshData(quadTileParams(0))
	if err != nil {
		t.Fatal(err)
	}
	ref, err := nav.AddTile(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	if nav.GetTileAt(0, 0, 0) == nil || nav.GetTileCount() != 1 {
		t.Fatalf("tile not indexed")
	}
	if _, err := nav.AddTile(data, 0); !errors.Is(err, ErrTileOccupied) {
		t.Errorf("second add: %v, want ErrTileOccupied", err)
	}
	polyRef := nav.getPolyRefBase(nav.GetTileByRef(ref)) | 1
	if _, _, err := nav.GetTileAndPolyByRef(polyRef); err != nil {
		t.Fatalf("poly ref: %v", err)
	}
	removed, err := nav.RemoveTile(ref)
	if err != nil || removed != data {
		t.Fatalf("remove: %v", err)
	}
	if _, err := nav.RemoveTile(ref); !errors.Is(err, ErrInvalidTileRef) {
		t.Errorf("second remove: %v, want ErrInvalidTileRef", err)
	}
	if _, _, err := nav.GetTileAndPolyByRef(polyRef); !errors.Is(err, ErrInvalidPolyRef) {
		t.Errorf("stale poly ref: %v, want ErrInvalidPolyRef", err)
	}
	ref2, err := nav.AddTile(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ref2 == ref {
		t.Errorf("re-added tile reuses the stale ref %d", ref)
	}
}

func TestNavMeshQueryPathAcrossTiles(t *testing.T) {
	nav := newTestNavMesh(t)
	for tx := 0; tx < 2; tx++ {
		params := quadTileParams(tx)
		// The shared edge x = 10 is a portal on both tiles.
		if tx == 0 {
			params.Polys[12+8] = 0x8000 | 2
		} else {
			params.Polys[0+6] = 0x8000 | 0
		}
		data, err := CreateNavMeshData(params)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := nav.AddTile(data, 0); err != nil {
			t.Fatal(err)
		}
	}
	query := NewNavMeshQuery(nav)
	filter := NewQueryFilter()
	extents := []float32{1, 1, 1}
	start := []float32{1, 0, 5}
	end := []float32{19, 0, 5}
	startRef := query.FindNearestPoly(start, extents, filter).GetNearestRef()
	endRef := query.FindNearestPoly(end, extents, filter).GetNearestRef()
	if startRef == 0 || endRef == 0 {
		t.Fatalf("nearest polys %d, %d", startRef, endRef)
	}
	status, path, err := query.FindPath(startRef, endRef, start, end, filter)
	if err != nil || status != SUCCSESS {
		t.Fatalf("find path status %d: %v", status, err)
	}
	if len(path) != 4 || path[0] != startRef || path[3] != endRef {
		t.Fatalf("path %v, want 4 polys from %d to %d", path, startRef, endRef)
	}
	straight, err := query.FindStraightPath(start, end, path, 16, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(straight) != 2 {
		t.Fatalf("straight path has %d points, want 2", len(straight))
	}
	if straight[0].GetFlags() != DT_STRAIGHTPATH_START || straight[1].GetFlags() != DT_STRAIGHTPATH_END {
		t.Errorf("flags %d, %d", straight[0].GetFlags(), straight[1].GetFlags())
	}
	if p := straight[1].GetPos(); p[0] != 19 || p[2] != 5 {
		t.Errorf("end point %v", p)
	}
}
