package recast

import "math"

// RecastConfig holds the voxel build parameters. Lengths are in cells (vx) unless marked as world units (wu).
type RecastConfig struct {
	/** Tile extent in cells along x and z. */
	TileSizeX int
	TileSizeZ int
	/** Cell size on the xz plane and along y, wu. */
	Cs float32
	Ch float32
	/** Steepest walkable slope in degrees. */
	WalkableSlopeAngle float32
	/** Clearance an agent needs above the floor. */
	WalkableHeight int
	/** Highest step an agent can climb. */
	WalkableClimb int
	/** Agent radius, walkable area is eroded by it. */
	WalkableRadius int
	MaxEdgeLen     int
	/** Largest deviation of a simplified contour from the raw one. */
	MaxSimplificationError float32
	/** Regions under this many spans are dropped unless they touch the tile border. */
	MinRegionArea int
	/** Regions under this many spans merge into a neighbour when they can. */
	MergeRegionArea int
	MaxVertsPerPoly int
	/** Detail sample spacing in wu, zero disables interior sampling. */
	DetailSampleDist     float32
	DetailSampleMaxError float32

	FilterLowHangingObstacles    bool
	FilterLedgeSpans             bool
	FilterWalkableLowHeightSpans bool
	BuildDetailMesh              bool
}

// Init converts agent and region parameters given in world units into voxel units.
func (this *RecastConfig) Init(cellSize float32, cellHeight float32, agentHeight float32, agentRadius float32, agentMaxClimb float32, agentMaxSlope float32, regionMinSize int, regionMergeSize int, edgeMaxLen float32, edgeMaxError float32, vertsPerPoly int, detailSampleDist float32, detailSampleMaxError float32, tileSizeX int, tileSizeZ int) {
	this.Cs = cellSize
	this.Ch = cellHeight
	this.WalkableSlopeAngle = agentMaxSlope
	this.WalkableHeight = int(math.Ceil(float64(agentHeight / cellHeight)))
	this.WalkableClimb = int(math.Floor(float64(agentMaxClimb / cellHeight)))
	this.WalkableRadius = int(math.Ceil(float64(agentRadius / cellSize)))
	this.MaxEdgeLen = int(edgeMaxLen / cellSize)
	this.MaxSimplificationError = edgeMaxError
	// Region sizes are edge lengths in cells, the thresholds compare span counts.
	this.MinRegionArea = regionMinSize * regionMinSize
	this.MergeRegionArea = regionMergeSize * regionMergeSize
	this.MaxVertsPerPoly = vertsPerPoly
	this.DetailSampleDist = cellSize * detailSampleDist
	if detailSampleDist < 0.9 {
		this.DetailSampleDist = 0
	}
	this.DetailSampleMaxError = cellHeight * detailSampleMaxError
	this.TileSizeX = tileSizeX
	this.TileSizeZ = tileSizeZ
	this.FilterLowHangingObstacles = true
	this.FilterLedgeSpans = true
	this.FilterWalkableLowHeightSpans = true
	this.BuildDetailMesh = true
}

// BorderSize is the padding in cells rasterized around every tile so neighbouring tiles line up.
func (this *RecastConfig) BorderSize() int {
	return this.WalkableRadius + 3
}
