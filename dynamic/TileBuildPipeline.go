package dynamic

import (
	"errors"
	"fmt"

	"github.com/cjmxp/recast.go/detour"
	"github.com/cjmxp/recast.go/recast"
	"github.com/golang/glog"
)

var ErrBuildPanic = errors.New("dynamic: tile build panicked")

// TileBuildResult is the outcome of one tile build. Data is nil for a tile without polygons.
type TileBuildResult struct {
	TileX       int
	TileZ       int
	Heightfield *recast.Heightfield
	Mesh        *recast.PolyMesh
	Detail      *recast.PolyMeshDetail
	Data        *detour.MeshData
	/** Every stage output, set only when the config keeps intermediate results. */
	Intermediate *recast.RecastBuilderResult
}

type TileBuildError struct {
	TileX int
	TileZ int
	Err   error
}

func (this *TileBuildError) Error() string {
	return fmt.Sprintf("tile (%d, %d): %v", this.TileX, this.TileZ, this.Err)
}

func (this *TileBuildError) Unwrap() error {
	return this.Err
}

// BuildTile decodes the tile base and runs BuildTileFromHeightfield on it.
func BuildTile(tile *VoxelTile, colliders []Collider, cfg *DynamicNavMeshConfig) (*TileBuildResult, error) {
	base, err := tile.Heightfield()
	if err != nil {
		return nil, &TileBuildError{tile.TileX, tile.TileZ, err}
	}
	return BuildTileFromHeightfield(base, tile.TileX, tile.TileZ, colliders, cfg)
}

// BuildTileFromHeightfield rebuilds tile (tx, tz) from a copy of base with the overlapping colliders stamped
// in. base is never modified.
func BuildTileFromHeightfield(base *recast.Heightfield, tx, tz int, colliders []Collider, cfg *DynamicNavMeshConfig) (result *TileBuildResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &TileBuildError{tx, tz, fmt.Errorf("%w: %v", ErrBuildPanic, r)}
		}
	}()
	hf := base.Clone()
	tileBounds := heightfieldBounds(hf)
	stamped := 0
	for _, c := range colliders {
		if overlapsXZ(c.Bounds(), tileBounds) {
			c.Rasterize(hf)
			stamped++
		}
	}
	rcConfig := cfg.RecastConfig()
	rcResult, err := recast.NewRecastBuilder(rcConfig).Build(hf)
	if err != nil {
		return nil, &TileBuildError{tx, tz, err}
	}
	result = &TileBuildResult{
		TileX:       tx,
		TileZ:       tz,
		Heightfield: hf,
		Mesh:        rcResult.GetMesh(),
		Detail:      rcResult.GetMeshDetail(),
	}
	if cfg.KeepIntermediateResults {
		result.Intermediate = rcResult
	}
	if !rcResult.IsEmpty() {
		params := recast.GetNavMeshCreateParams(rcConfig, rcResult, tx, tz, cfg.WalkableHeight, cfg.WalkableRadius, cfg.WalkableClimb)
		params.BvQuantPrecision = cfg.BvPrecision
		if result.Data, err = detour.CreateNavMeshData(params); err != nil {
			return nil, &TileBuildError{tx, tz, err}
		}
	}
	glog.V(1).Infof("tile (%d, %d): %d colliders, %d polys", tx, tz, stamped, result.Mesh.Get_npolys())
	return result, nil
}

func heightfieldBounds(hf *recast.Heightfield) []float32 {
	bmin := hf.GetBmin()
	bmax := hf.GetBmax()
	return []float32{bmin[0], bmin[1], bmin[2], bmax[0], bmax[1], bmax[2]}
}
