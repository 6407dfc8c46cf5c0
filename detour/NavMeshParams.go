package detour

// NavMeshParams fixes the tile grid of a NavMesh: the origin of tile (0, 0), the tile size on x and z and
// the slot capacity.
type NavMeshParams struct {
	orig       []float32
	tileWidth  float32
	tileHeight float32
	maxTiles   int
	/** Polygons per tile, bounded by DT_POLY_BITS. */
	maxPolys int
}

func NewNavMeshParams(o []float32, tileWidth float32, tileHeight float32, maxTiles int, maxPolys int) *NavMeshParams {
	return &NavMeshParams{
		orig:       append([]float32{}, o[:3]...),
		tileWidth:  tileWidth,
		tileHeight: tileHeight,
		maxTiles:   maxTiles,
		maxPolys:   maxPolys,
	}
}
