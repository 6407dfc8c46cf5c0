package detour

// NavMeshCreateParams is the input of CreateNavMeshData: a polygon mesh in cell units, an optional detail
// mesh in world units and the tile placement.
type NavMeshCreateParams struct {
	/** Polygon mesh vertices in cells, 3 per vertex. */
	Verts     []int
	VertCount int
	/** 2*Nvp entries per polygon: vertex indices then neighbour entries. */
	Polys     []int
	PolyFlags []int
	PolyAreas []int
	PolyCount int
	Nvp       int

	/** (vertBase, vertCount, triBase, triCount) per polygon, nil to fan triangulate the polygons. */
	DetailMeshes     []int
	DetailVerts      []float32
	DetailVertsCount int
	/** 4 entries per triangle, the last one holds the boundary edge flags. */
	DetailTris     []int
	DetailTriCount int

	UserId int
	/** Grid location. TileY runs along world z. */
	TileX     int
	TileY     int
	TileLayer int
	Bmin      []float32
	Bmax      []float32

	WalkableHeight float32
	WalkableRadius float32
	WalkableClimb  float32
	Cs             float32
	Ch             float32
	BuildBvTree    bool
	/** Quantization steps along the longest tile extent. Zero quantizes in cells (1 / Cs). */
	BvQuantPrecision float32
}
