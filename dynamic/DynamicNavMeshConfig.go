package dynamic

import (
	"errors"
	"fmt"
	"os"

	"github.com/cjmxp/recast.go/detour"
	"github.com/cjmxp/recast.go/recast"
	"github.com/golang/glog"
	"github.com/hjson/hjson-go/v4"
)

var ErrInvalidConfig = errors.New("dynamic: invalid config")

// DynamicNavMeshConfig holds the build settings. Agent sizes and edge lengths are in world units, region
// areas in cells, detail sampling in cell units.
type DynamicNavMeshConfig struct {
	CellSize                     float32 `json:"cellSize" msgpack:"cellSize"`
	CellHeight                   float32 `json:"cellHeight" msgpack:"cellHeight"`
	WalkableHeight               float32 `json:"walkableHeight" msgpack:"walkableHeight"`
	WalkableRadius               float32 `json:"walkableRadius" msgpack:"walkableRadius"`
	WalkableClimb                float32 `json:"walkableClimb" msgpack:"walkableClimb"`
	WalkableSlopeAngle           float32 `json:"walkableSlopeAngle" msgpack:"walkableSlopeAngle"`
	MinRegionArea                int     `json:"minRegionArea" msgpack:"minRegionArea"`
	RegionMergeArea              int     `json:"regionMergeArea" msgpack:"regionMergeArea"`
	MaxEdgeLen                   float32 `json:"maxEdgeLen" msgpack:"maxEdgeLen"`
	MaxSimplificationError       float32 `json:"maxSimplificationError" msgpack:"maxSimplificationError"`
	VertsPerPoly                 int     `json:"vertsPerPoly" msgpack:"vertsPerPoly"`
	BuildDetailMesh              bool    `json:"buildDetailMesh" msgpack:"buildDetailMesh"`
	DetailSampleDistance         float32 `json:"detailSampleDistance" msgpack:"detailSampleDistance"`
	DetailSampleMaxError         float32 `json:"detailSampleMaxError" msgpack:"detailSampleMaxError"`
	FilterLowHangingObstacles    bool    `json:"filterLowHangingObstacles" msgpack:"filterLowHangingObstacles"`
	FilterLedgeSpans             bool    `json:"filterLedgeSpans" msgpack:"filterLedgeSpans"`
	FilterWalkableLowHeightSpans bool    `json:"filterWalkableLowHeightSpans" msgpack:"filterWalkableLowHeightSpans"`
	TileSizeX                    int     `json:"tileSizeX" msgpack:"tileSizeX"`
	TileSizeZ                    int     `json:"tileSizeZ" msgpack:"tileSizeZ"`
	/** Keep the compact heightfield, contours and meshes of every tile for inspection. */
	KeepIntermediateResults bool `json:"keepIntermediateResults" msgpack:"keepIntermediateResults"`
	/** BV-tree quantization steps along the longest tile extent, 0 quantizes per cell. */
	BvPrecision float32 `json:"bvPrecision" msgpack:"bvPrecision"`
	/** Concurrent tile builds, 0 means one per CPU. */
	Workers int `json:"workers" msgpack:"workers"`
}

func NewDynamicNavMeshConfig() *DynamicNavMeshConfig {
	return &DynamicNavMeshConfig{
		CellSize:                     0.3,
		CellHeight:                   0.2,
		WalkableHeight:               2.0,
		WalkableRadius:               0.6,
		WalkableClimb:                0.9,
		WalkableSlopeAngle:           45,
		MinRegionArea:                64,
		RegionMergeArea:              400,
		MaxEdgeLen:                   12,
		MaxSimplificationError:       1.3,
		VertsPerPoly:                 6,
		BuildDetailMesh:              true,
		DetailSampleDistance:         6,
		DetailSampleMaxError:         1,
		FilterLowHangingObstacles:    true,
		FilterLedgeSpans:             true,
		FilterWalkableLowHeightSpans: true,
		TileSizeX:                    32,
		TileSizeZ:                    32,
	}
}

// LoadDynamicNavMeshConfig reads an hjson file over the defaults. Keys missing from the file keep their
// default value.
func LoadDynamicNavMeshConfig(path string) (*DynamicNavMeshConfig, error) {
	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(fileData) >= 3 && fileData[0] == 0xEF && fileData[1] == 0xBB && fileData[2] == 0xBF {
		fileData = fileData[3:]
	}
	cfg := NewDynamicNavMeshConfig()
	if err := hjson.Unmarshal(fileData, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	glog.V(1).Infof("config: loaded %s, cell %v x %v, tile %d x %d", path, cfg.CellSize, cfg.CellHeight, cfg.TileSizeX, cfg.TileSizeZ)
	return cfg, nil
}

func (this *DynamicNavMeshConfig) Validate() error {
	switch {
	case this.CellSize <= 0:
		return fmt.Errorf("%w: cellSize %v must be > 0", ErrInvalidConfig, this.CellSize)
	case this.CellHeight <= 0:
		return fmt.Errorf("%w: cellHeight %v must be > 0", ErrInvalidConfig, this.CellHeight)
	case this.TileSizeX <= 0 || this.TileSizeZ <= 0:
		return fmt.Errorf("%w: tile size %d x %d must be > 0", ErrInvalidConfig, this.TileSizeX, this.TileSizeZ)
	case this.WalkableHeight <= 0:
		return fmt.Errorf("%w: walkableHeight %v must be > 0", ErrInvalidConfig, this.WalkableHeight)
	case this.WalkableRadius < 0 || this.WalkableClimb < 0:
		return fmt.Errorf("%w: walkableRadius and walkableClimb must be >= 0", ErrInvalidConfig)
	case this.WalkableSlopeAngle < 0 || this.WalkableSlopeAngle >= 90:
		return fmt.Errorf("%w: walkableSlopeAngle %v out of [0, 90)", ErrInvalidConfig, this.WalkableSlopeAngle)
	case this.VertsPerPoly < 3 || this.VertsPerPoly > detour.DT_VERTS_PER_POLYGON:
		return fmt.Errorf("%w: vertsPerPoly %d out of [3, %d]", ErrInvalidConfig, this.VertsPerPoly, detour.DT_VERTS_PER_POLYGON)
	case this.MinRegionArea < 0 || this.RegionMergeArea < 0:
		return fmt.Errorf("%w: region areas must be >= 0", ErrInvalidConfig)
	case this.BvPrecision < 0:
		return fmt.Errorf("%w: bvPrecision %v must be >= 0", ErrInvalidConfig, this.BvPrecision)
	case this.Workers < 0:
		return fmt.Errorf("%w: workers %d must be >= 0", ErrInvalidConfig, this.Workers)
	}
	return nil
}

// RecastConfig converts the settings into voxel units.
func (this *DynamicNavMeshConfig) RecastConfig() *recast.RecastConfig {
	cfg := &recast.RecastConfig{}
	cfg.Init(this.CellSize, this.CellHeight, this.WalkableHeight, this.WalkableRadius, this.WalkableClimb, this.WalkableSlopeAngle,
		0, 0, this.MaxEdgeLen, this.MaxSimplificationError, this.VertsPerPoly, this.DetailSampleDistance, this.DetailSampleMaxError,
		this.TileSizeX, this.TileSizeZ)
	cfg.MinRegionArea = this.MinRegionArea
	cfg.MergeRegionArea = this.RegionMergeArea
	cfg.FilterLowHangingObstacles = this.FilterLowHangingObstacles
	cfg.FilterLedgeSpans = this.FilterLedgeSpans
	cfg.FilterWalkableLowHeightSpans = this.FilterWalkableLowHeightSpans
	cfg.BuildDetailMesh = this.BuildDetailMesh
	return cfg
}

func (this *DynamicNavMeshConfig) TileWidth() float32 {
	return float32(this.TileSizeX) * this.CellSize
}

func (this *DynamicNavMeshConfig) TileDepth() float32 {
	return float32(this.TileSizeZ) * this.CellSize
}
