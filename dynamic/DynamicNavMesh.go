package dynamic

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cjmxp/recast.go/detour"
	"github.com/cjmxp/recast.go/recast"
	"github.com/golang/glog"
)

// DynamicNavMesh keeps a tiled nav mesh in sync with a set of colliders. Collider changes are recorded
// immediately and applied by the next Update, which rebuilds every touched tile once.
type DynamicNavMesh struct {
	config    *DynamicNavMeshConfig
	origin    []float32
	tileWidth float32
	tileDepth float32
	tiles     map[TileCoord]*DynamicTile
	/** Smallest and largest tile coordinates present. */
	tileMin TileCoord
	tileMax TileCoord

	mu       sync.Mutex
	registry *ColliderRegistry
	dirty    *DirtySet

	updateMu sync.Mutex

	navMu   sync.RWMutex
	navMesh *detour.NavMesh

	rebuilds atomic.Int64
	failures atomic.Int64
}

type DynamicNavMeshStats struct {
	Tiles     int
	LiveTiles int
	Colliders int
	Dirty     int
	Rebuilds  int64
	Failures  int64
}

// NewDynamicNavMesh prepares the tiles of voxelFile. A nil cfg uses the settings stored in the file. The grid
// settings (cell size, cell height, tile size) always come from the file.
func NewDynamicNavMesh(voxelFile *VoxelFile, cfg *DynamicNavMeshConfig) (*DynamicNavMesh, error) {
	fileCfg := voxelFile.Config
	var c DynamicNavMeshConfig
	if cfg == nil {
		c = fileCfg
	} else {
		c = *cfg
		if c.CellSize != fileCfg.CellSize || c.CellHeight != fileCfg.CellHeight || c.TileSizeX != fileCfg.TileSizeX || c.TileSizeZ != fileCfg.TileSizeZ {
			glog.Warningf("dynamic: grid settings taken from the voxel file, cell %v x %v tile %d x %d", fileCfg.CellSize, fileCfg.CellHeight, fileCfg.TileSizeX, fileCfg.TileSizeZ)
		}
		c.CellSize = fileCfg.CellSize
		c.CellHeight = fileCfg.CellHeight
		c.TileSizeX = fileCfg.TileSizeX
		c.TileSizeZ = fileCfg.TileSizeZ
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	this := &DynamicNavMesh{
		config:    &c,
		origin:    append([]float32{}, voxelFile.BoundsMin[:]...),
		tileWidth: c.TileWidth(),
		tileDepth: c.TileDepth(),
		tiles:     make(map[TileCoord]*DynamicTile, len(voxelFile.Tiles)),
		registry:  NewColliderRegistry(),
		dirty:     NewDirtySet(),
	}
	for _, vt := range voxelFile.Tiles {
		tile, err := newDynamicTile(vt)
		if err != nil {
			return nil, err
		}
		coord := tile.Coord()
		if _, ok := this.tiles[coord]; ok {
			return nil, fmt.Errorf("%w: duplicate tile (%d, %d)", ErrMalformedSpanData, coord.X, coord.Z)
		}
		if len(this.tiles) == 0 {
			this.tileMin, this.tileMax = coord, coord
		}
		this.tileMin = TileCoord{min(this.tileMin.X, coord.X), min(this.tileMin.Z, coord.Z)}
		this.tileMax = TileCoord{max(this.tileMax.X, coord.X), max(this.tileMax.Z, coord.Z)}
		this.tiles[coord] = tile
	}
	maxTiles := max(len(this.tiles), 1)
	params := detour.NewNavMeshParams(this.origin, this.tileWidth, this.tileDepth, maxTiles, 1<<detour.DT_POLY_BITS)
	this.navMesh = detour.NewNavMesh(params, c.VertsPerPoly)
	glog.V(1).Infof("dynamic: %d tiles of %v x %v from origin %v", len(this.tiles), this.tileWidth, this.tileDepth, this.origin)
	return this, nil
}

func (this *DynamicNavMesh) Config() *DynamicNavMeshConfig {
	return this.config
}

// AddCollider registers c, the touched tiles are rebuilt by the next Update.
func (this *DynamicNavMesh) AddCollider(c Collider) ColliderHandle {
	this.mu.Lock()
	defer this.mu.Unlock()
	handle := this.registry.Add(c)
	this.dirty.Add(this.tilesFor(c.Bounds())...)
	return handle
}

// RemoveCollider unregisters the collider, false for a stale or unknown handle.
func (this *DynamicNavMesh) RemoveCollider(handle ColliderHandle) bool {
	this.mu.Lock()
	defer this.mu.Unlock()
	c, ok := this.registry.Remove(handle)
	if !ok {
		return false
	}
	this.dirty.Add(this.tilesFor(c.Bounds())...)
	return true
}

// tilesFor lists the existing tiles whose heightfield, border included, a box touches.
func (this *DynamicNavMesh) tilesFor(bounds []float32) []TileCoord {
	pad := float32(this.config.RecastConfig().BorderSize()) * this.config.CellSize
	padded := []float32{bounds[0] - pad, bounds[1], bounds[2] - pad, bounds[3] + pad, bounds[4], bounds[5] + pad}
	coords := TilesOverlappingWithin(padded, this.origin, this.tileWidth, this.tileDepth, this.tileMin, this.tileMax)
	n := 0
	for _, c := range coords {
		if _, ok := this.tiles[c]; ok {
			coords[n] = c
			n++
		}
	}
	return coords[:n]
}

// Build rebuilds every tile.
func (this *DynamicNavMesh) Build(pool WorkerPool) error {
	this.mu.Lock()
	for c := range this.tiles {
		this.dirty.Add(c)
	}
	this.mu.Unlock()
	_, err := this.Update(pool)
	return err
}

// Update rebuilds the dirty tiles on pool and publishes the results in one pass. It reports whether any
// tile was rebuilt. Tile failures are joined into the returned error once every tile finished, the tiles
// that built are published regardless and a failed tile keeps its previous mesh.
func (this *DynamicNavMesh) Update(pool WorkerPool) (bool, error) {
	this.updateMu.Lock()
	defer this.updateMu.Unlock()

	this.mu.Lock()
	coords := this.dirty.Drain()
	var colliders []Collider
	this.registry.Each(func(_ ColliderHandle, c Collider) {
		colliders = append(colliders, c)
	})
	this.mu.Unlock()
	if len(coords) == 0 {
		return false, nil
	}

	tiles := make([]*DynamicTile, len(coords))
	results := make([]*TileBuildResult, len(coords))
	errs := make([]error, len(coords))
	for i, coord := range coords {
		tile := this.tiles[coord]
		tiles[i] = tile
		tileColliders := collidersOverlapping(colliders, tile.bounds())
		i := i
		pool.Go(func() error {
			results[i], errs[i] = tile.build(tileColliders, this.config)
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		return false, err
	}

	this.navMu.Lock()
	published, retracted := 0, 0
	for i, tile := range tiles {
		if errs[i] != nil {
			this.failures.Add(1)
			glog.Errorf("dynamic: %v", errs[i])
			tile.state.Store(this.settledState(tile))
			continue
		}
		if err := this.publish(tile, results[i]); err != nil {
			errs[i] = &TileBuildError{coords[i].X, coords[i].Z, err}
			this.failures.Add(1)
			glog.Errorf("dynamic: %v", errs[i])
			continue
		}
		if results[i].Data != nil {
			published++
		} else {
			retracted++
		}
	}
	this.navMu.Unlock()
	this.rebuilds.Add(int64(len(coords)))
	glog.Infof("dynamic: rebuilt %d tiles, %d published, %d empty", len(coords), published, retracted)
	return true, errors.Join(errs...)
}

// publish swaps the tile mesh, caller holds the nav mesh write lock.
func (this *DynamicNavMesh) publish(tile *DynamicTile, result *TileBuildResult) error {
	if tile.ref != 0 {
		if _, err := this.navMesh.RemoveTile(tile.ref); err != nil {
			return err
		}
		tile.ref = 0
	}
	tile.result = result
	tile.checkpoint.Store(result.Heightfield)
	if result.Data == nil {
		tile.state.Store(TILE_ABSENT)
		c := tile.Coord()
		glog.V(1).Infof("dynamic: tile (%d, %d) retracted, no polygons", c.X, c.Z)
		return nil
	}
	ref, err := this.navMesh.AddTile(result.Data, 0)
	if err != nil {
		tile.state.Store(TILE_ABSENT)
		return err
	}
	tile.ref = ref
	tile.state.Store(TILE_LIVE)
	return nil
}

func (this *DynamicNavMesh) settledState(tile *DynamicTile) int32 {
	if tile.ref != 0 {
		return TILE_LIVE
	}
	return TILE_ABSENT
}

func collidersOverlapping(colliders []Collider, bounds []float32) []Collider {
	var out []Collider
	for _, c := range colliders {
		if overlapsXZ(c.Bounds(), bounds) {
			out = append(out, c)
		}
	}
	return out
}

// ReadNavMesh calls fn with the published mesh under the read lock.
func (this *DynamicNavMesh) ReadNavMesh(fn func(nav *detour.NavMesh)) {
	this.navMu.RLock()
	defer this.navMu.RUnlock()
	fn(this.navMesh)
}

// LookupHeightfield returns the heightfield tile (x, z) was last built from, nil when unknown or unbuilt.
func (this *DynamicNavMesh) LookupHeightfield(x, z int) *recast.Heightfield {
	tile, ok := this.tiles[TileCoord{x, z}]
	if !ok {
		return nil
	}
	return tile.Checkpoint()
}

// VoxelQuery raycasts against the heightfields of the last build.
func (this *DynamicNavMesh) VoxelQuery() *VoxelQuery {
	return NewVoxelQuery(this.origin, this.tileWidth, this.tileDepth, this.LookupHeightfield)
}

func (this *DynamicNavMesh) Tile(x, z int) *DynamicTile {
	return this.tiles[TileCoord{x, z}]
}

// TileResults returns the last build result of every built tile.
func (this *DynamicNavMesh) TileResults() []*TileBuildResult {
	this.navMu.RLock()
	defer this.navMu.RUnlock()
	results := make([]*TileBuildResult, 0, len(this.tiles))
	for _, tile := range this.tiles {
		if tile.result != nil {
			results = append(results, tile.result)
		}
	}
	return results
}

func (this *DynamicNavMesh) Stats() DynamicNavMeshStats {
	this.mu.Lock()
	stats := DynamicNavMeshStats{
		Tiles:     len(this.tiles),
		Colliders: this.registry.Len(),
		Dirty:     this.dirty.Len(),
		Rebuilds:  this.rebuilds.Load(),
		Failures:  this.failures.Load(),
	}
	this.mu.Unlock()
	for _, tile := range this.tiles {
		if tile.State() == TILE_LIVE {
			stats.LiveTiles++
		}
	}
	return stats
}
