package detour

import (
	"errors"
	"fmt"
)

var (
	ErrTooManyVerts = errors.New("detour: tile has too many vertices")
	ErrBadParams    = errors.New("detour: invalid create params")
)

// Tile side of a portal edge, indexed by the direction the polygon mesh stores (x-, z+, x+, z-).
var portalSides = [4]int{4, 2, 0, 6}

// CreateNavMeshData packs a polygon mesh (and optional detail mesh) into tile data. A mesh without polygons
// yields (nil, nil): the tile is empty and must not be added to a NavMesh.
func CreateNavMeshData(params *NavMeshCreateParams) (*MeshData, error) {
	if params.VertCount >= 0xffff {
		return nil, fmt.Errorf("%w: %d", ErrTooManyVerts, params.VertCount)
	}
	if params.PolyCount == 0 || params.Polys == nil || params.VertCount == 0 || params.Verts == nil {
		return nil, nil
	}
	nvp := params.Nvp
	if nvp < 3 || params.Cs <= 0 || params.Ch <= 0 || len(params.Bmin) < 3 || len(params.Bmax) < 3 {
		return nil, fmt.Errorf("%w: nvp=%d cs=%v ch=%v", ErrBadParams, nvp, params.Cs, params.Ch)
	}

	header := &MeshHeader{
		magic:          DT_NAVMESH_MAGIC,
		version:        DT_NAVMESH_VERSION,
		x:              params.TileX,
		y:              params.TileY,
		layer:          params.TileLayer,
		userId:         params.UserId,
		polyCount:      params.PolyCount,
		vertCount:      params.VertCount,
		maxLinkCount:   countLinks(params),
		bmin:           append([]float32{}, params.Bmin[:3]...),
		bmax:           append([]float32{}, params.Bmax[:3]...),
		bvQuantFactor:  1 / params.Cs,
		walkableHeight: params.WalkableHeight,
		walkableRadius: params.WalkableRadius,
		walkableClimb:  params.WalkableClimb,
	}
	if params.BvQuantPrecision > 0 {
		header.bvQuantFactor = QuantFactor(params.Bmin, params.Bmax, params.BvQuantPrecision)
	}

	data := &MeshData{header: header, verts: make([]float32, 0, 3*params.VertCount)}
	for i := 0; i < params.VertCount; i++ {
		v := params.Verts[i*3 : i*3+3]
		data.verts = append(data.verts,
			params.Bmin[0]+float32(v[0])*params.Cs,
			params.Bmin[1]+float32(v[1])*params.Ch,
			params.Bmin[2]+float32(v[2])*params.Cs)
	}
	data.polys = packPolys(params)
	if params.DetailMeshes != nil {
		packDetail(data, params)
	} else {
		fanDetail(data)
	}
	header.detailMeshCount = len(data.detailMeshes)
	header.detailVertCount = len(data.detailVerts) / 3
	header.detailTriCount = len(data.detailTris) / 4

	if params.BuildBvTree {
		data.bvTree = make([]BVNode, 2*params.PolyCount)
		header.bvNodeCount = BuildBVTree(polyBVItems(data, header.bvQuantFactor), data.bvTree)
	}
	return data, nil
}

// countLinks returns the link capacity of a tile: one per edge plus two per portal edge.
func countLinks(params *NavMeshCreateParams) int {
	nvp := params.Nvp
	edges, portals := 0, 0
	for i := 0; i < params.PolyCount; i++ {
		row := params.Polys[i*2*nvp : (i+1)*2*nvp]
		for j := 0; j < nvp && row[j] != MESH_NULL_IDX; j++ {
			edges++
			if nei := row[nvp+j]; nei&0x8000 != 0 && nei&0xf != 0xf {
				portals++
			}
		}
	}
	return edges + portals*2
}

// packPolys converts the polygon rows into polys. Internal neighbours are stored as index+1, portal edges
// as DT_EXT_LINK with the tile side, border edges as zero.
func packPolys(params *NavMeshCreateParams) []*Poly {
	nvp := params.Nvp
	polys := make([]*Poly, params.PolyCount)
	for i := range polys {
		p := &Poly{}
		p.Init(i, nvp)
		p.flags = params.PolyFlags[i]
		p.setArea(params.PolyAreas[i])
		p.setType(DT_POLYTYPE_GROUND)
		row := params.Polys[i*2*nvp : (i+1)*2*nvp]
		for j := 0; j < nvp && row[j] != MESH_NULL_IDX; j++ {
			p.verts[j] = row[j]
			switch nei := row[nvp+j]; {
			case nei&0x8000 == 0:
				p.neis[j] = nei + 1
			case nei&0xf < len(portalSides):
				p.neis[j] = DT_EXT_LINK | portalSides[nei&0xf]
			default:
				p.neis[j] = 0
			}
			p.vertCount++
		}
		polys[i] = p
	}
	return polys
}

// packDetail copies the detail sub-meshes. Each sub-mesh starts with the polygon's own vertices, those are
// dropped here and read back from the tile vertices.
func packDetail(data *MeshData, params *NavMeshCreateParams) {
	data.detailMeshes = make([]*PolyDetail, len(data.polys))
	for i, p := range data.polys {
		m := params.DetailMeshes[i*4 : i*4+4]
		vb, ndv := m[0], m[1]
		extra := ndv - p.vertCount
		data.detailMeshes[i] = &PolyDetail{
			vertBase:  len(data.detailVerts) / 3,
			vertCount: extra,
			triBase:   m[2],
			triCount:  m[3],
		}
		if extra > 0 {
			data.detailVerts = append(data.detailVerts, params.DetailVerts[(vb+p.vertCount)*3:(vb+ndv)*3]...)
		}
	}
	if data.detailVerts == nil {
		data.detailVerts = []float32{}
	}
	data.detailTris = append([]int{}, params.DetailTris[:4*params.DetailTriCount]...)
}

// fanDetail stands in a triangle fan for every polygon when no detail mesh was built. The fourth entry of a
// triangle flags which of its edges lie on the polygon boundary.
func fanDetail(data *MeshData) {
	data.detailMeshes = make([]*PolyDetail, len(data.polys))
	data.detailVerts = []float32{}
	data.detailTris = []int{}
	for i, p := range data.polys {
		nv := p.vertCount
		data.detailMeshes[i] = &PolyDetail{triBase: len(data.detailTris) / 4, triCount: nv - 2}
		for j := 2; j < nv; j++ {
			edges := 1 << 2
			if j == 2 {
				edges |= 1 << 0
			}
			if j == nv-1 {
				edges |= 1 << 4
			}
			data.detailTris = append(data.detailTris, 0, j-1, j, edges)
		}
	}
}

// polyBVItems quantizes the world bounds of every polygon, detail vertices included, relative to the tile
// minimum.
func polyBVItems(data *MeshData, quantFactor float32) []BVItem {
	items := make([]BVItem, len(data.polys))
	bmin := make([]float32, 3)
	bmax := make([]float32, 3)
	for i, p := range data.polys {
		vCopy(bmin, data.verts, p.verts[0]*3)
		vCopy(bmax, data.verts, p.verts[0]*3)
		for _, v := range p.verts[1:p.vertCount] {
			vMin(bmin, data.verts, v*3)
			vMax(bmax, data.verts, v*3)
		}
		if pd := data.detailMeshes[i]; pd != nil {
			for j := 0; j < pd.vertCount; j++ {
				vMin(bmin, data.detailVerts, (pd.vertBase+j)*3)
				vMax(bmax, data.detailVerts, (pd.vertBase+j)*3)
			}
		}
		items[i].Bmin, items[i].Bmax = QuantizeBounds(bmin, bmax, data.header.bmin, quantFactor)
		items[i].I = i
	}
	return items
}
