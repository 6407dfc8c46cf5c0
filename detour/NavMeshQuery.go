package detour

import (
	"errors"
	"fmt"
)

var ErrEmptyPath = errors.New("detour: empty path")

// NavMeshQuery runs path and proximity queries against a NavMesh. A query keeps search state between
// calls and must not be shared between goroutines.
type NavMeshQuery struct {
	nav      *NavMesh
	nodePool *NodePool
	openList *NodeQueue
}

type portalPoints struct {
	left  []float32
	right []float32
}

func NewNavMeshQuery(nav *NavMesh) *NavMeshQuery {
	return &NavMeshQuery{
		nav:      nav,
		nodePool: &NodePool{byKey: map[nodeKey]*Node{}},
		openList: &NodeQueue{},
	}
}

// eachLink calls fn on the links of poly in list order until fn returns false.
func eachLink(tile *MeshTile, poly *Poly, fn func(link *Link) bool) {
	for i := poly.firstLink; i != DT_NULL_LINK; i = tile.links[i].next {
		if !fn(tile.links[i]) {
			return
		}
	}
}

// FindPath runs A* over the polygon graph from startRef to endRef. The returned corridor is ordered from start
// to end. When the end is unreachable the corridor leads to the polygon closest to it and the status is
// PARTIAL_RESULT.
func (this *NavMeshQuery) FindPath(startRef int64, endRef int64, startPos []float32, endPos []float32, filter *QueryFilter) (int, []int64, error) {
	if !this.nav.isValidPolyRef(startRef) || !this.nav.isValidPolyRef(endRef) {
		return FAILURE, nil, fmt.Errorf("%w: start %d end %d", ErrInvalidPolyRef, startRef, endRef)
	}
	if startRef == endRef {
		return SUCCSESS, []int64{startRef}, nil
	}
	this.nodePool.clear()
	this.openList.clear()

	start := this.nodePool.getNode(startRef)
	vCopy(start.pos, startPos, 0)
	start.pidx = 0
	start.cost = 0
	start.total = vDist(startPos, endPos, 0) * H_SCALE
	start.flags = DT_NODE_OPEN
	this.openList.push(start)

	closest, closestHeuristic := start, start.total
	var linkErr error
	for !this.openList.isEmpty() {
		cur := this.openList.pop()
		cur.flags = cur.flags&^DT_NODE_OPEN | DT_NODE_CLOSED
		if cur.id == endRef {
			closest = cur
			break
		}
		curTile, curPoly := this.nav.getTileAndPolyByRefUnsafe(cur.id)
		parentRef := int64(0)
		if parent := this.nodePool.getNodeAtIdx(cur.pidx); parent != nil {
			parentRef = parent.id
		}
		eachLink(curTile, curPoly, func(link *Link) bool {
			ref := link.ref
			if ref == 0 || ref == parentRef {
				return true
			}
			neiTile, neiPoly := this.nav.getTileAndPolyByRefUnsafe(ref)
			if !filter.passFilter(ref, neiTile, neiPoly) {
				return true
			}
			// A polygon entered through different tile sides gets one node per side.
			state := 0
			if link.side != 0xff {
				state = link.side >> 1
			}
			nei := this.nodePool.getNode2(ref, state)
			if nei.flags == 0 {
				mid, err := this.getEdgeMidPoint(cur.id, curPoly, curTile, ref)
				if err != nil {
					linkErr = err
					return false
				}
				nei.pos = mid
			}

			cost := cur.cost + filter.getCost(cur.pos, nei.pos, curPoly)
			heuristic := float32(0)
			if ref == endRef {
				cost += filter.getCost(nei.pos, endPos, neiPoly)
			} else {
				heuristic = vDist(nei.pos, endPos, 0) * H_SCALE
			}
			total := cost + heuristic
			if nei.flags&(DT_NODE_OPEN|DT_NODE_CLOSED) != 0 && total >= nei.total {
				return true
			}
			nei.pidx = this.nodePool.getNodeIdx(cur)
			nei.flags &^= DT_NODE_CLOSED
			nei.cost = cost
			nei.total = total
			if nei.flags&DT_NODE_OPEN != 0 {
				this.openList.modify(nei)
			} else {
				nei.flags |= DT_NODE_OPEN
				this.openList.push(nei)
			}
			if heuristic < closestHeuristic {
				closestHeuristic = heuristic
				closest = nei
			}
			return true
		})
		if linkErr != nil {
			return FAILURE, nil, linkErr
		}
	}
	status := SUCCSESS
	if closest.id != endRef {
		status = PARTIAL_RESULT
	}
	return status, this.getPathToNode(closest), nil
}

// straightPath collects the corner points of a string pulled path, at most max of them.
type straightPath struct {
	items   []*StraightPathItem
	max     int
	options int
}

// push appends a corner, or retags the last one when pos repeats it. It reports whether the path is full
// or has reached its end.
func (this *straightPath) push(pos []float32, flags int, ref int64) bool {
	if n := len(this.items); n > 0 && vEqual(this.items[n-1].pos, pos) {
		this.items[n-1].flags = flags
		this.items[n-1].ref = ref
		return false
	}
	if len(this.items) < this.max {
		this.items = append(this.items, &StraightPathItem{pos: append([]float32{}, pos[:3]...), flags: flags, ref: ref})
	}
	return flags == DT_STRAIGHTPATH_END || len(this.items) >= this.max
}

func (this *straightPath) wantsCrossings() bool {
	return this.options&(DT_STRAIGHTPATH_AREA_CROSSINGS|DT_STRAIGHTPATH_ALL_CROSSINGS) != 0
}

// FindStraightPath pulls the string through the portals of a corridor returned by FindPath.
func (this *NavMeshQuery) FindStraightPath(startPos []float32, endPos []float32, path []int64, maxStraightPath int, options int) ([]*StraightPathItem, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	startPt, err := this.closestPointOnPolyBoundary(path[0], startPos)
	if err != nil {
		return nil, err
	}
	endPt, err := this.closestPointOnPolyBoundary(path[len(path)-1], endPos)
	if err != nil {
		return nil, err
	}
	sp := &straightPath{items: []*StraightPathItem{}, max: maxStraightPath, options: options}
	if sp.push(startPt, DT_STRAIGHTPATH_START, path[0]) {
		return sp.items, nil
	}
	if len(path) == 1 {
		sp.push(endPt, DT_STRAIGHTPATH_END, 0)
		return sp.items, nil
	}

	apex := append([]float32{}, startPt...)
	left := append([]float32{}, apex...)
	right := append([]float32{}, apex...)
	apexIdx, leftIdx, rightIdx := 0, 0, 0
	leftRef, rightRef := path[0], path[0]

	// moveApex makes a funnel side the new apex and emits it. It reports whether the path is done.
	moveApex := func(corner []float32, idx int, ref int64) bool {
		if sp.wantsCrossings() && this.addPortalCrossings(sp, path, apexIdx, idx, corner) {
			return true
		}
		vCopy(apex, corner, 0)
		apexIdx = idx
		flags := 0
		if ref == 0 {
			flags = DT_STRAIGHTPATH_END
		}
		if sp.push(apex, flags, ref) {
			return true
		}
		vCopy(left, apex, 0)
		vCopy(right, apex, 0)
		leftIdx, rightIdx = apexIdx, apexIdx
		return false
	}

	for i := 0; i < len(path); i++ {
		var pl, pr []float32
		nextRef := int64(0)
		if i+1 < len(path) {
			nextRef = path[i+1]
			portal, err := this.getPortalPointsByRef(path[i], nextRef)
			if err != nil {
				// The corridor is broken, end at the last polygon that could be reached.
				last, err := this.closestPointOnPolyBoundary(path[i], endPos)
				if err != nil {
					return sp.items, err
				}
				if sp.wantsCrossings() && this.addPortalCrossings(sp, path, apexIdx, i, last) {
					return sp.items, nil
				}
				sp.push(last, 0, path[i])
				return sp.items, nil
			}
			pl, pr = portal.left, portal.right
			if i == 0 {
				if d, _ := distancePtSegSqr2D3(apex, pl, pr); d < sqr(0.001) {
					continue
				}
			}
		} else {
			pl = append([]float32{}, endPt...)
			pr = append([]float32{}, endPt...)
		}

		if triArea2D(apex, right, pr) <= 0 {
			if vEqual(apex, right) || triArea2D(apex, left, pr) > 0 {
				vCopy(right, pr, 0)
				rightRef = nextRef
				rightIdx = i
			} else {
				if moveApex(left, leftIdx, leftRef) {
					return sp.items, nil
				}
				i = apexIdx
				continue
			}
		}
		if triArea2D(apex, left, pl) >= 0 {
			if vEqual(apex, left) || triArea2D(apex, right, pl) < 0 {
				vCopy(left, pl, 0)
				leftRef = nextRef
				leftIdx = i
			} else {
				if moveApex(right, rightIdx, rightRef) {
					return sp.items, nil
				}
				i = apexIdx
				continue
			}
		}
	}
	if sp.wantsCrossings() && this.addPortalCrossings(sp, path, apexIdx, len(path)-1, endPt) {
		return sp.items, nil
	}
	sp.push(endPt, DT_STRAIGHTPATH_END, 0)
	return sp.items, nil
}

// addPortalCrossings emits the points where the segment from the last corner to endPos crosses the portals
// of path[from:to]. With DT_STRAIGHTPATH_AREA_CROSSINGS only portals between different areas count.
func (this *NavMeshQuery) addPortalCrossings(sp *straightPath, path []int64, from int, to int, endPos []float32) bool {
	startPos := sp.items[len(sp.items)-1].pos
	for i := from; i < to; i++ {
		fromTile, fromPoly := this.nav.getTileAndPolyByRefUnsafe(path[i])
		_, toPoly := this.nav.getTileAndPolyByRefUnsafe(path[i+1])
		portal := this.getPortalPoints(fromPoly, fromTile, path[i+1])
		if portal == nil {
			break
		}
		if sp.options&DT_STRAIGHTPATH_AREA_CROSSINGS != 0 && fromPoly.getArea() == toPoly.getArea() {
			continue
		}
		if ok, _, t := intersectSegSeg2D(startPos, endPos, portal.left, portal.right); ok {
			if sp.push(vLerp3(portal.left, portal.right, t), 0, path[i+1]) {
				return true
			}
		}
	}
	return false
}

// polyVerts copies the vertices of poly out of the tile vertex array.
func polyVerts(tile *MeshTile, poly *Poly) []float32 {
	verts := make([]float32, 0, poly.vertCount*3)
	for _, v := range poly.verts[:poly.vertCount] {
		verts = append(verts, tile.data.verts[v*3:v*3+3]...)
	}
	return verts
}

// clampToPoly returns pos when it lies inside the polygon on the xz plane, otherwise the closest point on
// the polygon boundary. The flag reports the inside case.
func clampToPoly(pos []float32, verts []float32) ([]float32, bool) {
	nv := len(verts) / 3
	edged := make([]float32, nv)
	edget := make([]float32, nv)
	if distancePtPolyEdgesSqr(pos, verts, nv, edged, edget) {
		return append([]float32{}, pos[:3]...), true
	}
	imin := 0
	for i := range edged {
		if edged[i] < edged[imin] {
			imin = i
		}
	}
	return vLerp(verts, imin*3, ((imin+1)%nv)*3, edget[imin]), false
}

func (this *NavMeshQuery) closestPointOnPolyBoundary(ref int64, pos []float32) ([]float32, error) {
	tile, poly, err := this.nav.GetTileAndPolyByRef(ref)
	if err != nil {
		return nil, err
	}
	pt, _ := clampToPoly(pos, polyVerts(tile, poly))
	return pt, nil
}

// getPathToNode walks the parent chain back from endNode and returns the refs from start to endNode.
func (this *NavMeshQuery) getPathToNode(endNode *Node) []int64 {
	var path []int64
	for cur := endNode; cur != nil; cur = this.nodePool.getNodeAtIdx(cur.pidx) {
		path = append(path, cur.id)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func (this *NavMeshQuery) getEdgeMidPoint(from int64, fromPoly *Poly, fromTile *MeshTile, to int64) ([]float32, error) {
	portal := this.getPortalPoints(fromPoly, fromTile, to)
	if portal == nil {
		return nil, fmt.Errorf("detour: no link from %d to %d", from, to)
	}
	return vLerp3(portal.left, portal.right, 0.5), nil
}

func (this *NavMeshQuery) getPortalPointsByRef(from, to int64) (*portalPoints, error) {
	fromTile, fromPoly, err := this.nav.GetTileAndPolyByRef(from)
	if err != nil {
		return nil, err
	}
	if !this.nav.isValidPolyRef(to) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPolyRef, to)
	}
	portal := this.getPortalPoints(fromPoly, fromTile, to)
	if portal == nil {
		return nil, fmt.Errorf("detour: no link from %d to %d", from, to)
	}
	return portal, nil
}

// getPortalPoints returns the edge of fromPoly shared with to, narrowed to the portal range for links
// that cross a tile border. Nil when the polygons are not linked.
func (this *NavMeshQuery) getPortalPoints(fromPoly *Poly, fromTile *MeshTile, to int64) *portalPoints {
	var link *Link
	eachLink(fromTile, fromPoly, func(l *Link) bool {
		if l.ref == to {
			link = l
		}
		return link == nil
	})
	if link == nil {
		return nil
	}
	verts := fromTile.data.verts
	v0 := fromPoly.verts[link.edge] * 3
	v1 := fromPoly.verts[(link.edge+1)%fromPoly.vertCount] * 3
	if link.side != 0xff && (link.bmin != 0 || link.bmax != 255) {
		const s = float32(1) / 255
		return &portalPoints{
			left:  vLerp(verts, v0, v1, float32(link.bmin)*s),
			right: vLerp(verts, v0, v1, float32(link.bmax)*s),
		}
	}
	return &portalPoints{
		left:  append([]float32{}, verts[v0:v0+3]...),
		right: append([]float32{}, verts[v1:v1+3]...),
	}
}

// FindNearestPoly returns the polygon within extents of center closest to it, a zero ref when there is none.
// A polygon directly under or over center wins when the vertical gap is within the tile's climb height.
func (this *NavMeshQuery) FindNearestPoly(center []float32, extents []float32, filter *QueryFilter) *FindNearestPolyResult {
	res := &FindNearestPolyResult{}
	bestDist := FLOAT_MAX_VALUE
	for _, ref := range this.queryPolygons(center, extents, filter) {
		tile, poly := this.nav.getTileAndPolyByRefUnsafe(ref)
		closest := this.closestPointOnPoly(tile, poly, center)
		diff := vSub(center, closest.point)
		var d float32
		if closest.overPoly {
			if gap := abs_f(diff[1]) - tile.data.header.walkableClimb; gap > 0 {
				d = gap * gap
			}
		} else {
			d = vLenSqr(diff)
		}
		if d < bestDist {
			bestDist = d
			res.nearestRef = ref
			res.nearestPos = closest.point
		}
	}
	return res
}

func (this *NavMeshQuery) closestPointOnPoly(tile *MeshTile, poly *Poly, pos []float32) *closestPointResult {
	pt, over := clampToPoly(pos, polyVerts(tile, poly))
	if h, ok := detailHeight(tile, poly, pt); ok {
		pt[1] = h
	}
	return &closestPointResult{overPoly: over, point: pt}
}

// detailHeight samples the detail triangles of poly at pt on the xz plane.
func detailHeight(tile *MeshTile, poly *Poly, pt []float32) (float32, bool) {
	data := tile.data
	if poly.index >= len(data.detailMeshes) {
		return 0, false
	}
	pd := data.detailMeshes[poly.index]
	var tri [3][]float32
	for j := 0; j < pd.triCount; j++ {
		t := (pd.triBase + j) * 4
		for k := range tri {
			// Indices below vertCount address polygon vertices, the rest the detail vertices.
			if v := data.detailTris[t+k]; v < poly.vertCount {
				at := poly.verts[v] * 3
				tri[k] = data.verts[at : at+3]
			} else {
				at := (pd.vertBase + v - poly.vertCount) * 3
				tri[k] = data.detailVerts[at : at+3]
			}
		}
		if ok, h := closestHeightPointTriangle(pt, tri[0], tri[1], tri[2]); ok {
			return h, true
		}
	}
	return 0, false
}

func (this *NavMeshQuery) queryPolygons(center []float32, extents []float32, filter *QueryFilter) []int64 {
	bmin := vSub(center, extents)
	bmax := vAdd(center, extents)
	minx, miny := this.nav.CalcTileLoc(bmin)
	maxx, maxy := this.nav.CalcTileLoc(bmax)
	polys := []int64{}
	for y := miny; y <= maxy; y++ {
		for x := minx; x <= maxx; x++ {
			for _, tile := range this.nav.getTilesAt(x, y) {
				polys = append(polys, this.queryPolygonsInTile(tile, bmin, bmax, filter)...)
			}
		}
	}
	return polys
}

// queryPolygonsInTile collects the polygons of tile whose bounds overlap [qmin, qmax], walking the BV tree
// when the tile has one.
func (this *NavMeshQuery) queryPolygonsInTile(tile *MeshTile, qmin []float32, qmax []float32, filter *QueryFilter) []int64 {
	if tile.data.bvTree != nil {
		return this.queryBVTree(tile, qmin, qmax, filter)
	}
	polys := []int64{}
	base := this.nav.getPolyRefBase(tile)
	bmin := make([]float32, 3)
	bmax := make([]float32, 3)
	for i, p := range tile.data.polys[:tile.data.header.polyCount] {
		ref := base | int64(i)
		if !filter.passFilter(ref, tile, p) {
			continue
		}
		vCopy(bmin, tile.data.verts, p.verts[0]*3)
		vCopy(bmax, tile.data.verts, p.verts[0]*3)
		for _, v := range p.verts[1:p.vertCount] {
			vMin(bmin, tile.data.verts, v*3)
			vMax(bmax, tile.data.verts, v*3)
		}
		if overlapBounds(qmin, qmax, bmin, bmax) {
			polys = append(polys, ref)
		}
	}
	return polys
}

// queryBVTree quantizes the query box into tile space and walks the flattened tree. A negative index on an
// internal node is the escape offset to its next sibling.
func (this *NavMeshQuery) queryBVTree(tile *MeshTile, qmin []float32, qmax []float32, filter *QueryFilter) []int64 {
	header := tile.data.header
	var bmin, bmax [3]int
	for k := 0; k < 3; k++ {
		lo := clamp_f(qmin[k], header.bmin[k], header.bmax[k]) - header.bmin[k]
		hi := clamp_f(qmax[k], header.bmin[k], header.bmax[k]) - header.bmin[k]
		bmin[k] = int(header.bvQuantFactor*lo) & (DT_BV_MAX_QUANT - 1)
		bmax[k] = int(header.bvQuantFactor*hi+1) | 1
	}
	polys := []int64{}
	base := this.nav.getPolyRefBase(tile)
	for n := 0; n < header.bvNodeCount; {
		node := &tile.data.bvTree[n]
		overlap := overlapQuantBounds(&bmin, &bmax, &node.Bmin, &node.Bmax)
		leaf := node.I >= 0
		if leaf && overlap {
			ref := base | int64(node.I)
			if filter.passFilter(ref, tile, tile.data.polys[node.I]) {
				polys = append(polys, ref)
			}
		}
		if overlap || leaf {
			n++
		} else {
			n -= node.I
		}
	}
	return polys
}
