package dynamic

import (
	"sync/atomic"

	"github.com/cjmxp/recast.go/recast"
)

const (
	TILE_ABSENT   int32 = 0 /** No mesh published for the tile. */
	TILE_BUILDING int32 = 1 /** A rebuild is scheduled or running. */
	TILE_LIVE     int32 = 2 /** The tile mesh is published in the nav mesh. */
)

// DynamicTile is one tile of a DynamicNavMesh: the immutable voxel base and what the last rebuild produced.
type DynamicTile struct {
	voxelTile *VoxelTile
	base      *recast.Heightfield
	/** Heightfield of the last successful build, read by voxel queries without locking. */
	checkpoint atomic.Pointer[recast.Heightfield]
	state      atomic.Int32
	/** Guarded by the nav mesh write lock. */
	result *TileBuildResult
	ref    int64
}

func newDynamicTile(voxelTile *VoxelTile) (*DynamicTile, error) {
	base, err := voxelTile.Heightfield()
	if err != nil {
		return nil, err
	}
	return &DynamicTile{voxelTile: voxelTile, base: base}, nil
}

func (this *DynamicTile) Coord() TileCoord {
	return TileCoord{this.voxelTile.TileX, this.voxelTile.TileZ}
}

func (this *DynamicTile) State() int32 {
	return this.state.Load()
}

// Checkpoint returns the heightfield the live mesh was built from, nil before the first build.
func (this *DynamicTile) Checkpoint() *recast.Heightfield {
	return this.checkpoint.Load()
}

func (this *DynamicTile) build(colliders []Collider, cfg *DynamicNavMeshConfig) (*TileBuildResult, error) {
	this.state.Store(TILE_BUILDING)
	c := this.Coord()
	return BuildTileFromHeightfield(this.base, c.X, c.Z, colliders, cfg)
}

// bounds covers the tile heightfield, border included.
func (this *DynamicTile) bounds() []float32 {
	return heightfieldBounds(this.base)
}
