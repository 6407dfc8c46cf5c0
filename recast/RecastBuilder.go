package recast

import (
	"fmt"

	"github.com/cjmxp/recast.go/detour"
	"github.com/golang/glog"
)

type RecastBuilder struct {
	cfg *RecastConfig
}

func NewRecastBuilder(cfg *RecastConfig) *RecastBuilder {
	return &RecastBuilder{cfg: cfg}
}

func (this *RecastBuilder) GetConfig() *RecastConfig {
	return this.cfg
}

// Voxelize rasterizes the triangles of geom that touch the tile described by bcfg. Walkable triangles get
// RC_WALKABLE_AREA, steeper ones stay solid with RC_NULL_AREA. No filter is applied.
func (this *RecastBuilder) Voxelize(geom *InputGeom, bcfg *RecastBuilderConfig) *Heightfield {
	cfg := this.cfg
	solid := NewHeightfield(bcfg.width, bcfg.height, bcfg.bmin, bcfg.bmax, cfg.Cs, cfg.Ch, bcfg.borderSize)
	verts := geom.GetVerts()
	if bcfg.tiled {
		chunkyMesh := geom.GetChunkyMesh()
		tbmin := []float32{bcfg.bmin[0], bcfg.bmin[2]}
		tbmax := []float32{bcfg.bmax[0], bcfg.bmax[2]}
		for _, node := range chunkyMesh.GetChunksOverlappingRect(tbmin, tbmax) {
			ntris := len(node.tris) / 3
			areas := MarkWalkableTriangles(cfg.WalkableSlopeAngle, verts, node.tris, ntris, RC_WALKABLE_AREA)
			RasterizeTriangles(verts, node.tris, areas, ntris, solid, cfg.WalkableClimb)
		}
	} else {
		tris := geom.GetTris()
		ntris := len(tris) / 3
		areas := MarkWalkableTriangles(cfg.WalkableSlopeAngle, verts, tris, ntris, RC_WALKABLE_AREA)
		RasterizeTriangles(verts, tris, areas, ntris, solid, cfg.WalkableClimb)
	}
	return solid
}

// Build runs the mesh pipeline over solid, which is modified in place by the filters. The region border is
// taken from the heightfield so tiles voxelized with padding keep their polygons inside the tile.
func (this *RecastBuilder) Build(solid *Heightfield) (*RecastBuilderResult, error) {
	cfg := this.cfg
	// Conservative rasterization leaves overhangs and ledges an agent cannot stand on.
	if cfg.FilterLowHangingObstacles {
		FilterLowHangingWalkableObstacles(cfg.WalkableClimb, solid)
	}
	if cfg.FilterLedgeSpans {
		FilterLedgeSpans(cfg.WalkableHeight, cfg.WalkableClimb, solid)
	}
	if cfg.FilterWalkableLowHeightSpans {
		FilterWalkableLowHeightSpans(cfg.WalkableHeight, solid)
	}

	chf := BuildCompactHeightfield(cfg.WalkableHeight, cfg.WalkableClimb, solid)
	ErodeWalkableArea(cfg.WalkableRadius, chf)
	BuildDistanceField(chf)
	BuildRegions(chf, solid.borderSize, cfg.MinRegionArea, cfg.MergeRegionArea)

	cset, err := BuildContours(chf, cfg.MaxSimplificationError, cfg.MaxEdgeLen, RC_CONTOUR_TESS_WALL_EDGES)
	if err != nil {
		return nil, fmt.Errorf("build contours: %w", err)
	}
	pmesh, err := BuildPolyMesh(cset, cfg.MaxVertsPerPoly)
	if err != nil {
		return nil, fmt.Errorf("build poly mesh: %w", err)
	}
	for i, area := range pmesh.areas[:pmesh.npolys] {
		pmesh.flags[i] = AreaToPolyFlags(area)
	}
	rbr := &RecastBuilderResult{solid: solid, chf: chf, cset: cset, pmesh: pmesh}
	if cfg.BuildDetailMesh && pmesh.npolys > 0 {
		dmesh, err := BuildPolyMeshDetail(pmesh, chf, cfg.DetailSampleDist, cfg.DetailSampleMaxError)
		if err != nil {
			return nil, fmt.Errorf("build detail mesh: %w", err)
		}
		rbr.dmesh = dmesh
	}
	glog.V(2).Infof("recast: %d spans, %d regions, %d contours, %d polys", chf.spanCount, chf.maxRegions, len(cset.conts), pmesh.npolys)
	return rbr, nil
}

// GetNavMeshCreateParams fills the detour tile parameters for the result of Build at tile (tx, tz). Agent
// dimensions are given in world units.
func GetNavMeshCreateParams(rcConfig *RecastConfig, result *RecastBuilderResult, tx int, tz int, agentHeight float32, agentRadius float32, agentMaxClimb float32) *detour.NavMeshCreateParams {
	pmesh := result.pmesh
	params := &detour.NavMeshCreateParams{
		Verts:          pmesh.verts,
		VertCount:      pmesh.nverts,
		Polys:          pmesh.polys,
		PolyAreas:      pmesh.areas,
		PolyFlags:      pmesh.flags,
		PolyCount:      pmesh.npolys,
		Nvp:            pmesh.nvp,
		TileX:          tx,
		TileY:          tz,
		Bmin:           pmesh.bmin,
		Bmax:           pmesh.bmax,
		WalkableHeight: agentHeight,
		WalkableRadius: agentRadius,
		WalkableClimb:  agentMaxClimb,
		Cs:             rcConfig.Cs,
		Ch:             rcConfig.Ch,
		BuildBvTree:    true,
	}
	if dmesh := result.dmesh; dmesh != nil {
		params.DetailMeshes = dmesh.meshes
		params.DetailVerts = dmesh.verts
		params.DetailVertsCount = dmesh.nverts
		params.DetailTris = dmesh.tris
		params.DetailTriCount = dmesh.ntris
	}
	return params
}
