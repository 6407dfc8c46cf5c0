package detour

// Link joins a polygon edge to a neighbour polygon, inside the tile or across a tile border.
type Link struct {
	ref  int64
	next int
	/** Edge of the owning polygon. */
	edge int
	/** Tile side of a border link, 0xff for an internal one. */
	side int
	/** Portal sub-range along the edge of a border link, quantized to [0, 255]. */
	bmin int
	bmax int
}

type MeshTile struct {
	index int
	/** Counter describing modifications to the tile. */
	salt int
	/** The tile data. */
	data *MeshData
	/** The tile links. */
	links []*Link
	/** Index to the next free link. */
	linksFreeList int
	/** Tile flags. (See: #dtTileFlags) */
	flags int
}

func (this *MeshTile) GetData() *MeshData {
	return this.data
}

// LinkCount counts the links in use, free list entries excluded.
func (this *MeshTile) LinkCount() int {
	n := len(this.links)
	for i := this.linksFreeList; i != DT_NULL_LINK; i = this.links[i].next {
		n--
	}
	return n
}
