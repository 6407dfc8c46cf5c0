package dynamic

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/cjmxp/recast.go/detour"
	"github.com/cjmxp/recast.go/recast"
	"github.com/go-gl/mathgl/mgl32"
)

// testConfig lays a 30 x 30 floor out as 3 x 3 tiles of 10 x 10 units.
func testConfig() *DynamicNavMeshConfig {
	cfg := NewDynamicNavMeshConfig()
	cfg.CellSize = 0.5
	cfg.TileSizeX = 20
	cfg.TileSizeZ = 20
	cfg.MinRegionArea = 8
	cfg.RegionMergeArea = 20
	cfg.Workers = 2
	return cfg
}

func floorVoxelFile(t *testing.T, cfg *DynamicNavMeshConfig) *VoxelFile {
	t.Helper()
	verts := []float32{0, 0, 0, 0, 0, 30, 30, 0, 30, 30, 0, 0}
	tris := []int{0, 1, 2, 0, 2, 3}
	vf, err := VoxelizeGeometry(recast.NewInputGeom(verts, tris), cfg, true, NewWorkerPool(cfg.Workers))
	if err != nil {
		t.Fatal(err)
	}
	return vf
}

func builtMesh(t *testing.T) *DynamicNavMesh {
	t.Helper()
	cfg := testConfig()
	mesh, err := NewDynamicNavMesh(floorVoxelFile(t, cfg), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := mesh.Build(NewWorkerPool(cfg.Workers)); err != nil {
		t.Fatal(err)
	}
	return mesh
}

func findStraightPath(t *testing.T, mesh *DynamicNavMesh, start, end []float32) [][]float32 {
	t.Helper()
	var points [][]float32
	mesh.ReadNavMesh(func(nav *detour.NavMesh) {
		query := detour.NewNavMeshQuery(nav)
		filter := detour.NewQueryFilter()
		extents := []float32{2, 4, 2}
		startRef := query.FindNearestPoly(start, extents, filter).GetNearestRef()
		endRef := query.FindNearestPoly(end, extents, filter).GetNearestRef()
		if startRef == 0 || endRef == 0 {
			t.Fatalf("no polygon at %v or %v", start, end)
		}
		_, path, err := query.FindPath(startRef, endRef, start, end, filter)
		if err != nil {
			t.Fatal(err)
		}
		straight, err := query.FindStraightPath(start, end, path, 256, 0)
		if err != nil {
			t.Fatal(err)
		}
		for _, item := range straight {
			points = append(points, append([]float32{}, item.GetPos()...))
		}
	})
	return points
}

func TestVoxelizeGeometryTiles(t *testing.T) {
	vf := floorVoxelFile(t, testConfig())
	if len(vf.Tiles) != 9 {
		t.Fatalf("%d tiles, want 9", len(vf.Tiles))
	}
	hf, err := vf.Tile(1, 2).Heightfield()
	if err != nil {
		t.Fatal(err)
	}
	if hf.GetBorderSize() != 5 || hf.GetWidth() != 30 {
		t.Fatalf("border %d width %d", hf.GetBorderSize(), hf.GetWidth())
	}
	if s := hf.GetSpan(15, 15); s == nil || s.GetArea() != recast.RC_WALKABLE_AREA {
		t.Fatal("floor not voxelized")
	}
}

func TestBuildTile(t *testing.T) {
	cfg := testConfig()
	vf := floorVoxelFile(t, cfg)
	result, err := BuildTile(vf.Tile(1, 1), nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.Data == nil || result.Data.GetHeader().GetPolyCount() == 0 {
		t.Fatal("floor tile has no polygons")
	}
	if h := result.Data.GetHeader(); h.GetX() != 1 || h.GetY() != 1 {
		t.Errorf("tile header at (%d, %d)", h.GetX(), h.GetY())
	}
	if result.Intermediate != nil {
		t.Error("intermediate results kept")
	}

	// The base heightfield stays untouched by the stamped collider.
	before := vf.Tile(1, 1).SpanData
	wall := NewBoxCollider(mgl32.Vec3{15, 0, 15}, [3]mgl32.Vec3{{6, 0, 0}, {0, 2, 0}, {0, 0, 6}}, recast.RC_NULL_AREA, 1)
	result, err = BuildTile(vf.Tile(1, 1), []Collider{wall}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.Data != nil {
		t.Errorf("covered tile built %d polygons", result.Data.GetHeader().GetPolyCount())
	}
	if !reflect.DeepEqual(before, vf.Tile(1, 1).SpanData) {
		t.Error("voxel tile modified")
	}

	broken := *vf.Tile(0, 0)
	broken.SpanData = []byte{1}
	broken.Compressed = false
	_, err = BuildTile(&broken, nil, cfg)
	var tileErr *TileBuildError
	if !errors.As(err, &tileErr) || !errors.Is(err, ErrMalformedSpanData) {
		t.Errorf("err %v, want a TileBuildError over ErrMalformedSpanData", err)
	}
}

func TestBuildPublishesEveryTile(t *testing.T) {
	mesh := builtMesh(t)
	stats := mesh.Stats()
	if stats.Tiles != 9 || stats.LiveTiles != 9 || stats.Dirty != 0 || stats.Rebuilds != 9 || stats.Failures != 0 {
		t.Fatalf("stats %+v", stats)
	}
	mesh.ReadNavMesh(func(nav *detour.NavMesh) {
		for z := 0; z < 3; z++ {
			for x := 0; x < 3; x++ {
				if nav.GetTileAt(x, z, 0) == nil {
					t.Errorf("tile (%d, %d) not in the nav mesh", x, z)
				}
			}
		}
	})
	if len(mesh.TileResults()) != 9 {
		t.Errorf("%d tile results", len(mesh.TileResults()))
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	mesh := builtMesh(t)
	pool := NewWorkerPool(2)
	changed, err := mesh.Update(pool)
	if changed || err != nil {
		t.Fatalf("update without changes: %v, %v", changed, err)
	}
	mesh.AddCollider(NewSphereCollider(mgl32.Vec3{15, 0, 15}, 1, recast.RC_NULL_AREA, 1))
	if changed, err := mesh.Update(pool); !changed || err != nil {
		t.Fatalf("first update: %v, %v", changed, err)
	}
	rebuilds := mesh.Stats().Rebuilds
	if changed, err := mesh.Update(pool); changed || err != nil {
		t.Fatalf("second update: %v, %v", changed, err)
	}
	if mesh.Stats().Rebuilds != rebuilds {
		t.Error("second update rebuilt tiles")
	}
}

func TestColliderDirtiesTouchedTiles(t *testing.T) {
	mesh := builtMesh(t)
	inner := mesh.AddCollider(NewSphereCollider(mgl32.Vec3{15, 0, 15}, 1, recast.RC_NULL_AREA, 1))
	if mesh.dirty.Len() != 1 || !mesh.dirty.Contains(TileCoord{1, 1}) {
		t.Fatalf("inner sphere dirtied %v", mesh.dirty.Drain())
	}
	mesh.dirty.Drain()

	// Within the border of tile (0, 1).
	mesh.AddCollider(NewSphereCollider(mgl32.Vec3{11, 0, 15}, 0.5, recast.RC_NULL_AREA, 1))
	if mesh.dirty.Len() != 2 || !mesh.dirty.Contains(TileCoord{0, 1}) || !mesh.dirty.Contains(TileCoord{1, 1}) {
		t.Fatalf("edge sphere dirtied %v", mesh.dirty.Drain())
	}
	mesh.dirty.Drain()

	// Outside the world only touches existing tiles.
	mesh.AddCollider(NewSphereCollider(mgl32.Vec3{-20, 0, -20}, 1, recast.RC_NULL_AREA, 1))
	if mesh.dirty.Len() != 0 {
		t.Fatalf("outside sphere dirtied %v", mesh.dirty.Drain())
	}

	// Far larger than the world, only the existing tiles are listed.
	huge := mesh.AddCollider(NewSphereCollider(mgl32.Vec3{15, 0, 15}, 1e8, recast.RC_NULL_AREA, 1))
	if mesh.dirty.Len() != 9 {
		t.Fatalf("huge sphere dirtied %v", mesh.dirty.Drain())
	}
	mesh.RemoveCollider(huge)
	mesh.dirty.Drain()

	if !mesh.RemoveCollider(inner) || mesh.RemoveCollider(inner) {
		t.Fatal("remove should succeed once")
	}
	if !mesh.dirty.Contains(TileCoord{1, 1}) {
		t.Error("removal did not dirty the tile")
	}
	if mesh.Stats().Colliders != 2 {
		t.Errorf("%d colliders", mesh.Stats().Colliders)
	}
}

func tileSnapshot(t *testing.T, mesh *DynamicNavMesh, x, z int) ([]float32, int) {
	t.Helper()
	var verts []float32
	polys := 0
	mesh.ReadNavMesh(func(nav *detour.NavMesh) {
		tile := nav.GetTileAt(x, z, 0)
		if tile == nil {
			return
		}
		verts = append([]float32{}, tile.GetData().GetVerts()...)
		polys = tile.GetData().GetHeader().GetPolyCount()
	})
	return verts, polys
}

func TestAddRemoveRestoresTile(t *testing.T) {
	mesh := builtMesh(t)
	pool := NewWorkerPool(2)
	verts, polys := tileSnapshot(t, mesh, 1, 1)

	handle := mesh.AddCollider(NewSphereCollider(mgl32.Vec3{15, 0, 15}, 2, recast.RC_NULL_AREA, 1))
	if _, err := mesh.Update(pool); err != nil {
		t.Fatal(err)
	}
	withVerts, withPolys := tileSnapshot(t, mesh, 1, 1)
	if withPolys == polys && reflect.DeepEqual(withVerts, verts) {
		t.Fatal("sphere left the tile unchanged")
	}

	mesh.RemoveCollider(handle)
	if _, err := mesh.Update(pool); err != nil {
		t.Fatal(err)
	}
	afterVerts, afterPolys := tileSnapshot(t, mesh, 1, 1)
	if afterPolys != polys || !reflect.DeepEqual(afterVerts, verts) {
		t.Errorf("tile not restored: %d polys, want %d", afterPolys, polys)
	}
}

func TestCoveredTileIsRetracted(t *testing.T) {
	mesh := builtMesh(t)
	pool := NewWorkerPool(2)
	wall := mesh.AddCollider(NewBoxCollider(mgl32.Vec3{15, 0, 15}, [3]mgl32.Vec3{{6, 0, 0}, {0, 2, 0}, {0, 0, 6}}, recast.RC_NULL_AREA, 1))
	if _, err := mesh.Update(pool); err != nil {
		t.Fatal(err)
	}
	if state := mesh.Tile(1, 1).State(); state != TILE_ABSENT {
		t.Fatalf("covered tile state %d", state)
	}
	if _, polys := tileSnapshot(t, mesh, 1, 1); polys != 0 {
		t.Fatalf("covered tile still published with %d polygons", polys)
	}
	if mesh.Stats().LiveTiles != 8 {
		t.Errorf("%d live tiles", mesh.Stats().LiveTiles)
	}
	mesh.RemoveCollider(wall)
	if _, err := mesh.Update(pool); err != nil {
		t.Fatal(err)
	}
	if state := mesh.Tile(1, 1).State(); state != TILE_LIVE {
		t.Errorf("restored tile state %d", state)
	}
}

func TestPathAvoidsSphere(t *testing.T) {
	mesh := builtMesh(t)
	pool := NewWorkerPool(2)
	start := []float32{2, 0, 15}
	end := []float32{28, 0, 15}
	open := findStraightPath(t, mesh, start, end)

	handle := mesh.AddCollider(NewSphereCollider(mgl32.Vec3{15, 0, 15}, 3, recast.RC_NULL_AREA, 1))
	if _, err := mesh.Update(pool); err != nil {
		t.Fatal(err)
	}
	blocked := findStraightPath(t, mesh, start, end)
	if reflect.DeepEqual(blocked, open) || len(blocked) <= len(open) {
		t.Fatalf("path through the sphere unchanged: %v", blocked)
	}
	for _, p := range blocked {
		dx, dz := p[0]-15, p[2]-15
		if dx*dx+dz*dz < 3*3 {
			t.Errorf("corner %v inside the sphere", p)
		}
	}
	query := mesh.VoxelQuery()
	if hit, _ := query.Raycast([]float32{2, 1, 15}, []float32{28, 1, 15}); !hit {
		t.Error("voxel ray passed through the sphere")
	}

	mesh.RemoveCollider(handle)
	if _, err := mesh.Update(pool); err != nil {
		t.Fatal(err)
	}
	if restored := findStraightPath(t, mesh, start, end); !reflect.DeepEqual(restored, open) {
		t.Errorf("path %v, want %v", restored, open)
	}
	if hit, _ := query.Raycast([]float32{2, 1, 15}, []float32{28, 1, 15}); hit {
		t.Error("voxel ray blocked after removal")
	}
}

func TestNewDynamicNavMeshGridFromFile(t *testing.T) {
	vf := floorVoxelFile(t, testConfig())
	cfg := testConfig()
	cfg.CellSize = 0.25
	cfg.TileSizeX = 64
	cfg.WalkableClimb = 0.4
	mesh, err := NewDynamicNavMesh(vf, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := mesh.Config(); got.CellSize != 0.5 || got.TileSizeX != 20 || got.WalkableClimb != 0.4 {
		t.Errorf("config %+v", got)
	}

	dup := *vf
	dup.Tiles = append(append([]*VoxelTile{}, vf.Tiles...), vf.Tiles[0])
	if _, err := NewDynamicNavMesh(&dup, nil); !errors.Is(err, ErrMalformedSpanData) {
		t.Errorf("duplicate tile: %v", err)
	}
}

// brokenCollider panics while being stamped into a tile.
type brokenCollider struct {
	bounds []float32
}

func (this *brokenCollider) Bounds() []float32 {
	return this.bounds
}

func (this *brokenCollider) Rasterize(hf *recast.Heightfield) {
	panic("broken collider")
}

func TestUpdateJoinsTileFailures(t *testing.T) {
	mesh := builtMesh(t)
	pool := NewWorkerPool(2)
	centerVerts, centerPolys := tileSnapshot(t, mesh, 1, 1)
	cornerVerts, cornerPolys := tileSnapshot(t, mesh, 0, 0)

	mesh.AddCollider(&brokenCollider{[]float32{14, 0, 14, 16, 1, 16}})
	mesh.AddCollider(NewSphereCollider(mgl32.Vec3{5, 0, 5}, 2, recast.RC_NULL_AREA, 1))
	changed, err := mesh.Update(pool)
	if !changed || err == nil {
		t.Fatalf("update: %v, %v", changed, err)
	}
	if !errors.Is(err, ErrBuildPanic) {
		t.Errorf("error %v does not wrap ErrBuildPanic", err)
	}
	var tileErr *TileBuildError
	if !errors.As(err, &tileErr) || tileErr.TileX != 1 || tileErr.TileZ != 1 {
		t.Fatalf("error %v not reported for tile (1, 1)", err)
	}

	// The failed tile keeps its mesh, the other one is republished.
	if verts, polys := tileSnapshot(t, mesh, 1, 1); polys != centerPolys || !reflect.DeepEqual(verts, centerVerts) {
		t.Error("failed tile lost its previous mesh")
	}
	if verts, polys := tileSnapshot(t, mesh, 0, 0); polys == cornerPolys && reflect.DeepEqual(verts, cornerVerts) {
		t.Error("tile (0, 0) not republished")
	}
	if stats := mesh.Stats(); stats.Failures != 1 || stats.LiveTiles != 9 {
		t.Errorf("stats %+v", stats)
	}
}

func TestConcurrentCollidersUpdatesAndQueries(t *testing.T) {
	mesh := builtMesh(t)
	query := mesh.VoxelQuery()
	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(stop)
		pool := NewWorkerPool(2)
		for i := 0; i < 12; i++ {
			center := mgl32.Vec3{float32(5 + i%3*10), 0, float32(5 + i/3%3*10)}
			handle := mesh.AddCollider(NewSphereCollider(center, 1.5, recast.RC_NULL_AREA, 1))
			if _, err := mesh.Update(pool); err != nil {
				t.Errorf("update after add: %v", err)
			}
			mesh.RemoveCollider(handle)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		pool := NewWorkerPool(2)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, err := mesh.Update(pool); err != nil {
				t.Errorf("update: %v", err)
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		filter := detour.NewQueryFilter()
		for {
			select {
			case <-stop:
				return
			default:
			}
			query.Raycast([]float32{1, 1, 15}, []float32{29, 1, 15})
			mesh.ReadNavMesh(func(nav *detour.NavMesh) {
				detour.NewNavMeshQuery(nav).FindNearestPoly([]float32{15, 0, 15}, []float32{2, 4, 2}, filter)
			})
			mesh.Stats()
		}
	}()

	wg.Wait()
	if _, err := mesh.Update(NewWorkerPool(2)); err != nil {
		t.Fatal(err)
	}
	if stats := mesh.Stats(); stats.Colliders != 0 || stats.Dirty != 0 || stats.LiveTiles != 9 {
		t.Errorf("stats %+v", stats)
	}
}
