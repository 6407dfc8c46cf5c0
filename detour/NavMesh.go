package detour

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/glog"
)

var (
	ErrWrongMagic     = errors.New("detour: wrong tile magic or version")
	ErrTileOccupied   = errors.New("detour: tile location already occupied")
	ErrOutOfTiles     = errors.New("detour: no free tile slot")
	ErrInvalidTileRef = errors.New("detour: invalid tile reference")
	ErrInvalidPolyRef = errors.New("detour: invalid polygon reference")
)

// Grid step to each of the 8 neighbouring tiles, indexed by portal side.
var sideOffsets = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

// NavMesh is the tiled polygon index. Tiles are added and removed at runtime, polygon references carry the
// tile salt so references into a removed tile stop resolving. NavMesh is not safe for concurrent mutation.
type NavMesh struct {
	params *NavMeshParams
	/** Slots indexed by the tile bits of a reference. */
	tiles []*MeshTile
	/** Free slot indices, the next one to use at the end. */
	free []int
	/** Live tiles per grid column, one per layer. */
	grid           map[[2]int][]*MeshTile
	maxVertPerPoly int
}

func NewNavMesh(params *NavMeshParams, maxVertsPerPoly int) *NavMesh {
	nm := &NavMesh{
		params:         params,
		tiles:          make([]*MeshTile, params.maxTiles),
		free:           make([]int, 0, params.maxTiles),
		grid:           map[[2]int][]*MeshTile{},
		maxVertPerPoly: maxVertsPerPoly,
	}
	for i := params.maxTiles - 1; i >= 0; i-- {
		nm.tiles[i] = &MeshTile{index: i, salt: 1, linksFreeList: DT_NULL_LINK}
		nm.free = append(nm.free, i)
	}
	return nm
}

func (this *NavMesh) GetParams() *NavMeshParams {
	return this.params
}

func (this *NavMesh) GetMaxTiles() int {
	return len(this.tiles)
}

func (this *NavMesh) GetTileCount() int {
	return len(this.tiles) - len(this.free)
}

// GetTile returns the tile slot i, its data is nil when the slot is free.
func (this *NavMesh) GetTile(i int) *MeshTile {
	return this.tiles[i]
}

// liveTile returns the slot addressed by ref when its salt matches and it holds data.
func (this *NavMesh) liveTile(ref int64) (*MeshTile, int) {
	if ref == 0 {
		return nil, 0
	}
	salt, it, ip := decodePolyRef(ref)
	if it >= len(this.tiles) {
		return nil, ip
	}
	tile := this.tiles[it]
	if tile.salt != salt || tile.data == nil {
		return nil, ip
	}
	return tile, ip
}

func (this *NavMesh) isValidPolyRef(ref int64) bool {
	tile, ip := this.liveTile(ref)
	return tile != nil && ip < tile.data.header.polyCount
}

// AddTile links data into the mesh at the grid location stored in its header and returns the tile reference.
func (this *NavMesh) AddTile(data *MeshData, flags int) (int64, error) {
	header := data.header
	if header.magic != DT_NAVMESH_MAGIC || header.version != DT_NAVMESH_VERSION {
		return 0, ErrWrongMagic
	}
	if this.getTileAt(header.x, header.y, header.layer) != nil {
		return 0, fmt.Errorf("%w: (%d, %d, %d)", ErrTileOccupied, header.x, header.y, header.layer)
	}
	if len(this.free) == 0 {
		return 0, fmt.Errorf("%w: max %d", ErrOutOfTiles, len(this.tiles))
	}
	tile := this.tiles[this.free[len(this.free)-1]]
	this.free = this.free[:len(this.free)-1]
	tile.data = data
	tile.flags = flags
	tile.links = make([]*Link, 0, header.maxLinkCount)
	tile.linksFreeList = DT_NULL_LINK
	if header.bvNodeCount == 0 {
		data.bvTree = nil
	}

	this.connectIntLinks(tile)
	column := [2]int{header.x, header.y}
	for _, layer := range this.grid[column] {
		this.connectExtLinks(tile, layer, -1)
		this.connectExtLinks(layer, tile, -1)
	}
	this.grid[column] = append(this.grid[column], tile)
	for side := range sideOffsets {
		for _, nei := range this.getNeighbourTilesAt(header.x, header.y, side) {
			this.connectExtLinks(tile, nei, side)
			this.connectExtLinks(nei, tile, oppositeTile(side))
		}
	}
	ref := this.getTileRef(tile)
	glog.V(2).Infof("navmesh: added tile (%d, %d) ref %d, %d polys, %d links", header.x, header.y, ref, header.polyCount, len(tile.links))
	return ref, nil
}

// RemoveTile unlinks the tile from its neighbours, frees the slot and returns the tile data.
func (this *NavMesh) RemoveTile(ref int64) (*MeshData, error) {
	if ref == 0 {
		return nil, ErrInvalidTileRef
	}
	salt, it, _ := decodePolyRef(ref)
	if it >= len(this.tiles) {
		return nil, fmt.Errorf("%w: index %d", ErrInvalidTileRef, it)
	}
	tile := this.tiles[it]
	if tile.salt != salt || tile.data == nil {
		return nil, fmt.Errorf("%w: stale salt %d", ErrInvalidTileRef, salt)
	}
	header := tile.data.header
	column := [2]int{header.x, header.y}
	layers := this.grid[column]
	for i, t := range layers {
		if t == tile {
			layers = append(layers[:i], layers[i+1:]...)
			break
		}
	}
	if len(layers) == 0 {
		delete(this.grid, column)
	} else {
		this.grid[column] = layers
	}
	for _, layer := range layers {
		this.unconnectLinks(layer, tile)
	}
	for side := range sideOffsets {
		for _, nei := range this.getNeighbourTilesAt(header.x, header.y, side) {
			this.unconnectLinks(nei, tile)
		}
	}

	data := tile.data
	tile.data = nil
	tile.flags = 0
	tile.links = nil
	tile.linksFreeList = DT_NULL_LINK
	// Bump the salt so references into the old data no longer resolve. Zero is never used.
	tile.salt = (tile.salt + 1) & (1<<DT_SALT_BITS - 1)
	if tile.salt == 0 {
		tile.salt++
	}
	this.free = append(this.free, tile.index)
	glog.V(2).Infof("navmesh: removed tile (%d, %d) ref %d", header.x, header.y, ref)
	return data, nil
}

// unconnectLinks drops every link of tile that points into target.
func (this *NavMesh) unconnectLinks(tile, target *MeshTile) {
	if tile == nil || target == nil {
		return
	}
	for _, poly := range tile.data.polys[:tile.data.header.polyCount] {
		prev := DT_NULL_LINK
		for j := poly.firstLink; j != DT_NULL_LINK; {
			next := tile.links[j].next
			if _, it, _ := decodePolyRef(tile.links[j].ref); it != target.index {
				prev = j
				j = next
				continue
			}
			if prev == DT_NULL_LINK {
				poly.firstLink = next
			} else {
				tile.links[prev].next = next
			}
			this.freeLink(tile, j)
			j = next
		}
	}
}

func (this *NavMesh) freeLink(tile *MeshTile, link int) {
	tile.links[link].next = tile.linksFreeList
	tile.linksFreeList = link
}

func (this *NavMesh) allocLink(tile *MeshTile) int {
	if tile.linksFreeList == DT_NULL_LINK {
		tile.links = append(tile.links, &Link{next: DT_NULL_LINK})
		return len(tile.links) - 1
	}
	link := tile.linksFreeList
	tile.linksFreeList = tile.links[link].next
	return link
}

// addLink prepends a new link to the list of poly and returns it.
func (this *NavMesh) addLink(tile *MeshTile, poly *Poly, ref int64, edge int, side int) *Link {
	idx := this.allocLink(tile)
	link := tile.links[idx]
	link.ref = ref
	link.edge = edge
	link.side = side
	link.bmin, link.bmax = 0, 0
	link.next = poly.firstLink
	poly.firstLink = idx
	return link
}

func (this *NavMesh) getTileRef(tile *MeshTile) int64 {
	if tile == nil {
		return 0
	}
	return encodePolyRef(tile.salt, tile.index, 0)
}

// GetTileRefAt returns the reference of the tile at grid (x, y, layer), 0 if there is none.
func (this *NavMesh) GetTileRefAt(x int, y int, layer int) int64 {
	return this.getTileRef(this.getTileAt(x, y, layer))
}

// GetTileAt returns the tile at grid (x, y, layer) or nil.
func (this *NavMesh) GetTileAt(x int, y int, layer int) *MeshTile {
	return this.getTileAt(x, y, layer)
}

// GetTileByRef resolves a tile reference, nil when the reference is stale.
func (this *NavMesh) GetTileByRef(ref int64) *MeshTile {
	tile, _ := this.liveTile(ref)
	return tile
}

func (this *NavMesh) getNeighbourTilesAt(x, y, side int) []*MeshTile {
	off := sideOffsets[side]
	return this.getTilesAt(x+off[0], y+off[1])
}

func (this *NavMesh) getTileAt(x int, y int, layer int) *MeshTile {
	for _, tile := range this.grid[[2]int{x, y}] {
		if tile.data.header.layer == layer {
			return tile
		}
	}
	return nil
}

func (this *NavMesh) getTilesAt(x int, y int) []*MeshTile {
	return this.grid[[2]int{x, y}]
}

// connectIntLinks links every polygon of tile to its in-tile neighbours. Edges are visited
// backwards so each list ends up in edge order.
func (this *NavMesh) connectIntLinks(tile *MeshTile) {
	if tile == nil {
		return
	}
	base := this.getPolyRefBase(tile)
	for _, poly := range tile.data.polys[:tile.data.header.polyCount] {
		poly.firstLink = DT_NULL_LINK
		for j := poly.vertCount - 1; j >= 0; j-- {
			nei := poly.neis[j]
			if nei == 0 || nei&DT_EXT_LINK != 0 {
				continue
			}
			this.addLink(tile, poly, base|int64(nei-1), j, 0xff)
		}
	}
}

// connectExtLinks links the portal edges of tile facing side to the matching polygons of
// target. Side -1 accepts portals on any side, used for layers of the same column.
func (this *NavMesh) connectExtLinks(tile *MeshTile, target *MeshTile, side int) {
	if tile == nil {
		return
	}
	verts := tile.data.verts
	for _, poly := range tile.data.polys[:tile.data.header.polyCount] {
		nv := poly.vertCount
		for j := 0; j < nv; j++ {
			if poly.neis[j]&DT_EXT_LINK == 0 {
				continue
			}
			dir := poly.neis[j] & 0xff
			if side != -1 && dir != side {
				continue
			}
			va := poly.verts[j] * 3
			vb := poly.verts[(j+1)%nv] * 3
			for _, c := range this.findConnectingPolys(verts, va, vb, target, oppositeTile(dir), 4) {
				link := this.addLink(tile, poly, c.ref, j, dir)
				// The portal range is stored as a fraction of the edge along the slab axis.
				switch dir {
				case 0, 4:
					link.bmin, link.bmax = quantizePortal(c.min, c.max, verts[va+2], verts[vb+2])
				case 2, 6:
					link.bmin, link.bmax = quantizePortal(c.min, c.max, verts[va], verts[vb])
				}
			}
		}
	}
}

func quantizePortal(lo, hi float32, a, b float32) (int, int) {
	tmin := (lo - a) / (b - a)
	tmax := (hi - a) / (b - a)
	if tmin > tmax {
		tmin, tmax = tmax, tmin
	}
	return int(clamp_f(tmin, 0, 1) * 255), int(clamp_f(tmax, 0, 1) * 255)
}

// portalMatch is a polygon of the target tile whose portal edge overlaps the searched edge
// between min and max along the slab axis.
type portalMatch struct {
	ref      int64
	min, max float32
}

// findConnectingPolys returns up to maxcon polygons of tile whose portal on side lies on the
// same slab as edge va-vb and overlaps it within the tile's climb height.
func (this *NavMesh) findConnectingPolys(verts []float32, va int, vb int, tile *MeshTile, side int, maxcon int) []portalMatch {
	if tile == nil {
		return nil
	}
	amin, amax := slabEndPoints(verts, va, vb, side)
	apos := slabCoord(verts, va, side)
	portal := DT_EXT_LINK | side
	base := this.getPolyRefBase(tile)
	tverts := tile.data.verts
	var out []portalMatch
	for i, poly := range tile.data.polys[:tile.data.header.polyCount] {
		nv := poly.vertCount
		for j := 0; j < nv; j++ {
			if poly.neis[j] != portal {
				continue
			}
			vc := poly.verts[j] * 3
			vd := poly.verts[(j+1)%nv] * 3
			if abs_f(apos-slabCoord(tverts, vc, side)) > 0.01 {
				continue
			}
			bmin, bmax := slabEndPoints(tverts, vc, vd, side)
			if !overlapSlabs(amin, amax, bmin, bmax, 0.01, tile.data.header.walkableClimb) {
				continue
			}
			if len(out) < maxcon {
				out = append(out, portalMatch{ref: base | int64(i), min: max(amin[0], bmin[0]), max: min(amax[0], bmax[0])})
			}
			break
		}
	}
	return out
}

// overlapSlabs compares two edges projected to (along, height). The along range is shrunk by
// px so edges that only touch at an end do not connect; heights must cross or come within 2*py.
func overlapSlabs(amin, amax, bmin, bmax [2]float32, px float32, py float32) bool {
	minx := max(amin[0]+px, bmin[0]+px)
	maxx := min(amax[0]-px, bmax[0]-px)
	if minx > maxx {
		return false
	}
	ad := (amax[1] - amin[1]) / (amax[0] - amin[0])
	ak := amin[1] - ad*amin[0]
	bd := (bmax[1] - bmin[1]) / (bmax[0] - bmin[0])
	bk := bmin[1] - bd*bmin[0]
	dmin := (bd*minx + bk) - (ad*minx + ak)
	dmax := (bd*maxx + bk) - (ad*maxx + ak)
	if dmin*dmax < 0 {
		return true
	}
	thr := (py * 2) * (py * 2)
	return dmin*dmin <= thr || dmax*dmax <= thr
}

// slabCoord is the fixed coordinate of a portal edge on side: x for sides 0 and 4, z for 2 and 6.
func slabCoord(verts []float32, va int, side int) float32 {
	switch side {
	case 0, 4:
		return verts[va]
	case 2, 6:
		return verts[va+2]
	}
	return 0
}

// slabEndPoints returns the edge ends as (along, height) pairs ordered by the along coordinate.
func slabEndPoints(verts []float32, va int, vb int, side int) ([2]float32, [2]float32) {
	axis := 0
	switch side {
	case 0, 4:
		axis = 2
	case 2, 6:
		axis = 0
	default:
		return [2]float32{}, [2]float32{}
	}
	a := [2]float32{verts[va+axis], verts[va+1]}
	b := [2]float32{verts[vb+axis], verts[vb+1]}
	if a[0] < b[0] {
		return a, b
	}
	return b, a
}

// CalcTileLoc returns the grid column containing the world position pos.
func (this *NavMesh) CalcTileLoc(pos []float32) (int, int) {
	orig := this.params.orig
	tx := int(math.Floor(float64((pos[0] - orig[0]) / this.params.tileWidth)))
	ty := int(math.Floor(float64((pos[2] - orig[2]) / this.params.tileHeight)))
	return tx, ty
}

// getPolyRefBase returns the reference of polygon 0 of tile; or it with a polygon index.
func (this *NavMesh) getPolyRefBase(tile *MeshTile) int64 {
	return this.getTileRef(tile)
}

// A reference packs salt, tile slot and polygon index from high to low bits.
func encodePolyRef(salt int, it int, ip int) int64 {
	return int64(salt)<<(DT_POLY_BITS+DT_TILE_BITS) | int64(it)<<DT_POLY_BITS | int64(ip)
}

func decodePolyRef(ref int64) (salt int, it int, ip int) {
	salt = int(ref >> (DT_POLY_BITS + DT_TILE_BITS) & (1<<DT_SALT_BITS - 1))
	it = int(ref >> DT_POLY_BITS & (1<<DT_TILE_BITS - 1))
	ip = int(ref & (1<<DT_POLY_BITS - 1))
	return
}

// GetTileAndPolyByRef resolves a polygon reference, stale references fail with ErrInvalidPolyRef.
func (this *NavMesh) GetTileAndPolyByRef(ref int64) (*MeshTile, *Poly, error) {
	if !this.isValidPolyRef(ref) {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidPolyRef, ref)
	}
	tile, poly := this.getTileAndPolyByRefUnsafe(ref)
	return tile, poly, nil
}

func (this *NavMesh) getTileAndPolyByRefUnsafe(ref int64) (*MeshTile, *Poly) {
	_, it, ip := decodePolyRef(ref)
	return this.tiles[it], this.tiles[it].data.polys[ip]
}

func (this *NavMesh) getMaxVertsPerPoly() int {
	return this.maxVertPerPoly
}
