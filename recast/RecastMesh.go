package recast

import (
	"fmt"

	"github.com/golang/glog"
)

const (
	/** Set on a triangulation index whose vertex can be clipped as an ear. */
	earFlag  = 0x80000000
	earIndex = 0x0fffffff
)

// BuildPolyMesh triangulates every contour of cset and merges the triangles into convex polygons of
// at most nvp vertices. Border vertices are removed and tile portal edges are flagged.
func BuildPolyMesh(cset *ContourSet, nvp int) (*PolyMesh, error) {
	maxVertices, maxTris, maxContVerts := 0, 0, 0
	for _, cont := range cset.conts {
		if cont.nverts < 3 {
			continue
		}
		maxVertices += cont.nverts
		maxTris += cont.nverts - 2
		maxContVerts = max(maxContVerts, cont.nverts)
	}
	if maxVertices >= 0xfffe {
		return nil, fmt.Errorf("build poly mesh: too many vertices %d", maxVertices)
	}
	mesh := &PolyMesh{
		bmin:         make([]float32, 3),
		bmax:         make([]float32, 3),
		cs:           cset.cs,
		ch:           cset.ch,
		borderSize:   cset.borderSize,
		maxEdgeError: cset.maxError,
		verts:        make([]int, maxVertices*3),
		polys:        make([]int, maxTris*nvp*2),
		regs:         make([]int, maxTris),
		areas:        make([]int, maxTris),
		nvp:          nvp,
		maxpolys:     maxTris,
	}
	copy3(mesh.bmin, 0, cset.bmin, 0)
	copy3(mesh.bmax, 0, cset.bmax, 0)
	fillNull(mesh.polys)

	welder := newVertexWelder(mesh.verts, maxVertices)
	removable := make([]bool, maxVertices)
	indices := make([]int, maxContVerts)
	tris := make([]int, maxContVerts*3)
	polys := make([]int, (maxContVerts+1)*nvp)
	for ci, cont := range cset.conts {
		if cont.nverts < 3 {
			continue
		}
		for j := 0; j < cont.nverts; j++ {
			indices[j] = j
		}
		ntris := triangulate(cont.nverts, cont.verts, indices, tris)
		if ntris <= 0 {
			glog.Warningf("build poly mesh: bad triangulation of contour %d", ci)
			ntris = -ntris
		}
		for j := 0; j < cont.nverts; j++ {
			v := cont.verts[j*4 : j*4+4]
			indices[j] = welder.add(v[0], v[1], v[2])
			if v[3]&RC_BORDER_VERTEX != 0 {
				removable[indices[j]] = true
			}
		}

		fillNull(polys)
		npolys := 0
		for t := 0; t < ntris; t++ {
			a, b, c := tris[t*3], tris[t*3+1], tris[t*3+2]
			if a == b || a == c || b == c {
				continue
			}
			row := polys[npolys*nvp:]
			row[0], row[1], row[2] = indices[a], indices[b], indices[c]
			npolys++
		}
		npolys = mergeConvexPolys(polys, npolys, nvp, mesh.verts, nil)
		for j := 0; j < npolys; j++ {
			if mesh.npolys >= maxTris {
				return nil, fmt.Errorf("build poly mesh: too many polygons %d (max %d)", mesh.npolys+1, maxTris)
			}
			p := mesh.npolys * nvp * 2
			copy(mesh.polys[p:p+nvp], polys[j*nvp:(j+1)*nvp])
			mesh.regs[mesh.npolys] = cont.reg
			mesh.areas[mesh.npolys] = cont.area
			mesh.npolys++
		}
	}
	mesh.nverts = welder.n

	// Drop the vertices that only existed on the tile border. removeVertex shifts the
	// remaining vertices down, so the flags shift with them.
	removable = removable[:mesh.nverts]
	for i := 0; i < mesh.nverts; {
		if !removable[i] || !canRemoveVertex(mesh, i) {
			i++
			continue
		}
		if err := removeVertex(mesh, i, maxTris); err != nil {
			return nil, err
		}
		removable = append(removable[:i], removable[i+1:]...)
	}

	buildMeshAdjacency(mesh.polys, mesh.npolys, mesh.nverts, nvp)
	if mesh.borderSize > 0 {
		markPortalEdges(mesh, cset.width, cset.height)
	}
	// Flags are filled by the caller, see AreaToPolyFlags.
	mesh.flags = make([]int, mesh.npolys)
	if mesh.nverts > 0xffff {
		return nil, fmt.Errorf("build poly mesh: too many vertices %d (max %d)", mesh.nverts, 0xffff)
	}
	if mesh.npolys > 0xffff {
		return nil, fmt.Errorf("build poly mesh: too many polygons %d (max %d)", mesh.npolys, 0xffff)
	}
	return mesh, nil
}

func fillNull(s []int) {
	for i := range s {
		s[i] = RC_MESH_NULL_IDX
	}
}

// markPortalEdges tags every open edge lying on the tile boundary with 0x8000 | side, where
// side is 0 for x == 0, 1 for z == h, 2 for x == w and 3 for z == 0.
func markPortalEdges(mesh *PolyMesh, w, h int) {
	nvp := mesh.nvp
	for i := 0; i < mesh.npolys; i++ {
		p := mesh.polys[i*2*nvp : (i+1)*2*nvp]
		nv := countPolyVerts(p, 0, nvp)
		for j := 0; j < nv; j++ {
			if p[nvp+j] != RC_MESH_NULL_IDX {
				continue
			}
			va := mesh.verts[p[j]*3 : p[j]*3+3]
			vb := mesh.verts[p[(j+1)%nv]*3 : p[(j+1)%nv]*3+3]
			switch {
			case va[0] == 0 && vb[0] == 0:
				p[nvp+j] = 0x8000 | 0
			case va[2] == h && vb[2] == h:
				p[nvp+j] = 0x8000 | 1
			case va[0] == w && vb[0] == w:
				p[nvp+j] = 0x8000 | 2
			case va[2] == 0 && vb[2] == 0:
				p[nvp+j] = 0x8000 | 3
			}
		}
	}
}

// buildMeshAdjacency fills the second half of every polygon row with the index of the polygon
// across each edge. An edge is registered by the polygon that walks it from the lower to the
// higher vertex and claimed by the first polygon walking it the other way.
func buildMeshAdjacency(polys []int, npolys int, nverts int, nvp int) {
	type halfEdge struct {
		poly, edge int
		twin       int
	}
	open := map[[2]int][]*halfEdge{}
	eachEdge := func(fn func(i, j, v0, v1 int)) {
		for i := 0; i < npolys; i++ {
			p := polys[i*nvp*2:]
			nv := countPolyVerts(p, 0, nvp)
			for j := 0; j < nv; j++ {
				fn(i, j, p[j], p[(j+1)%nv])
			}
		}
	}
	eachEdge(func(i, j, v0, v1 int) {
		if v0 < v1 {
			e := &halfEdge{poly: i, edge: j, twin: -1}
			key := [2]int{v0, v1}
			open[key] = append(open[key], e)
		}
	})
	eachEdge(func(i, j, v0, v1 int) {
		if v0 <= v1 {
			return
		}
		cands := open[[2]int{v1, v0}]
		for k := len(cands) - 1; k >= 0; k-- {
			if e := cands[k]; e.twin < 0 {
				e.twin = i
				polys[e.poly*nvp*2+nvp+e.edge] = i
				polys[i*nvp*2+nvp+j] = e.poly
				break
			}
		}
	})
}

// removeVertex deletes vertex rem, cuts out every polygon touching it and fills the hole with
// new convex polygons. Hole polygons spanning more than one region get RC_MULTIPLE_REGS.
func removeVertex(mesh *PolyMesh, rem int, maxTris int) error {
	nvp := mesh.nvp
	type holeEdge struct{ a, b, reg, area int }
	var edges []holeEdge
	for i := 0; i < mesh.npolys; i++ {
		p := mesh.polys[i*nvp*2 : (i+1)*nvp*2]
		nv := countPolyVerts(p, 0, nvp)
		if indexOf(p[:nv], rem) < 0 {
			continue
		}
		for j, k := 0, nv-1; j < nv; k, j = j, j+1 {
			if p[j] != rem && p[k] != rem {
				edges = append(edges, holeEdge{p[k], p[j], mesh.regs[i], mesh.areas[i]})
			}
		}
		last := mesh.npolys - 1
		if i != last {
			copy(p[:nvp], mesh.polys[last*nvp*2:last*nvp*2+nvp])
		}
		fillNull(p[nvp:])
		mesh.regs[i] = mesh.regs[last]
		mesh.areas[i] = mesh.areas[last]
		mesh.npolys--
		i--
	}

	copy(mesh.verts[rem*3:], mesh.verts[(rem+1)*3:mesh.nverts*3])
	mesh.nverts--
	shift := func(v int) int {
		if v > rem {
			return v - 1
		}
		return v
	}
	for i := 0; i < mesh.npolys; i++ {
		p := mesh.polys[i*nvp*2:]
		nv := countPolyVerts(p, 0, nvp)
		for j := 0; j < nv; j++ {
			p[j] = shift(p[j])
		}
	}
	for i := range edges {
		edges[i].a = shift(edges[i].a)
		edges[i].b = shift(edges[i].b)
	}
	if len(edges) == 0 {
		return nil
	}

	// Chain the collected edges into the hole outline, growing it at either end.
	hole := []int{edges[0].a}
	hreg := []int{edges[0].reg}
	harea := []int{edges[0].area}
	for len(edges) > 0 {
		matched := false
		for i := 0; i < len(edges); i++ {
			e := edges[i]
			switch {
			case hole[0] == e.b:
				hole = append([]int{e.a}, hole...)
				hreg = append([]int{e.reg}, hreg...)
				harea = append([]int{e.area}, harea...)
			case hole[len(hole)-1] == e.a:
				hole = append(hole, e.b)
				hreg = append(hreg, e.reg)
				harea = append(harea, e.area)
			default:
				continue
			}
			edges[i] = edges[len(edges)-1]
			edges = edges[:len(edges)-1]
			matched = true
			i--
		}
		if !matched {
			break
		}
	}

	nhole := len(hole)
	tverts := make([]int, nhole*4)
	order := make([]int, nhole)
	for i, v := range hole {
		copy(tverts[i*4:i*4+3], mesh.verts[v*3:v*3+3])
		order[i] = i
	}
	tris := make([]int, nhole*3)
	ntris := triangulate(nhole, tverts, order, tris)
	if ntris < 0 {
		ntris = -ntris
		glog.Warningf("remove vertex: hole triangulation returned bad results")
	}

	polys := make([]int, (ntris+1)*nvp)
	pregs := make([]int, ntris)
	pareas := make([]int, ntris)
	fillNull(polys[:ntris*nvp])
	npolys := 0
	for t := 0; t < ntris; t++ {
		a, b, c := tris[t*3], tris[t*3+1], tris[t*3+2]
		if a == b || a == c || b == c {
			continue
		}
		row := polys[npolys*nvp:]
		row[0], row[1], row[2] = hole[a], hole[b], hole[c]
		if hreg[a] == hreg[b] && hreg[b] == hreg[c] {
			pregs[npolys] = hreg[a]
		} else {
			pregs[npolys] = RC_MULTIPLE_REGS
		}
		pareas[npolys] = harea[a]
		npolys++
	}
	if npolys == 0 {
		return nil
	}
	npolys = mergeConvexPolys(polys, npolys, nvp, mesh.verts, func(a, b, last int) {
		if pregs[a] != pregs[b] {
			pregs[a] = RC_MULTIPLE_REGS
		}
		pregs[b] = pregs[last]
		pareas[b] = pareas[last]
	})

	for i := 0; i < npolys; i++ {
		if mesh.npolys >= maxTris {
			return fmt.Errorf("remove vertex: too many polygons %d (max %d)", mesh.npolys+1, maxTris)
		}
		p := mesh.polys[mesh.npolys*nvp*2 : (mesh.npolys+1)*nvp*2]
		fillNull(p)
		copy(p, polys[i*nvp:(i+1)*nvp])
		mesh.regs[mesh.npolys] = pregs[i]
		mesh.areas[mesh.npolys] = pareas[i]
		mesh.npolys++
	}
	return nil
}

// canRemoveVertex refuses when the polygons around rem would leave fewer than three edges, or
// when more than two of the edges at rem are unshared, which means two separate fans meet there.
func canRemoveVertex(mesh *PolyMesh, rem int) bool {
	nvp := mesh.nvp
	remaining := 0
	for i := 0; i < mesh.npolys; i++ {
		p := mesh.polys[i*nvp*2:]
		nv := countPolyVerts(p, 0, nvp)
		hits := 0
		for _, v := range p[:nv] {
			if v == rem {
				hits++
			}
		}
		if hits > 0 {
			remaining += nv - (hits + 1)
		}
	}
	if remaining <= 2 {
		return false
	}
	// Share count per far end of the edges touching rem.
	shared := map[int]int{}
	var ends []int
	for i := 0; i < mesh.npolys; i++ {
		p := mesh.polys[i*nvp*2:]
		nv := countPolyVerts(p, 0, nvp)
		for j, k := 0, nv-1; j < nv; k, j = j, j+1 {
			a, b := p[j], p[k]
			if a != rem && b != rem {
				continue
			}
			if b == rem {
				b = a
			}
			if _, ok := shared[b]; !ok {
				ends = append(ends, b)
			}
			shared[b]++
		}
	}
	open := 0
	for _, b := range ends {
		if shared[b] < 2 {
			open++
		}
	}
	return open <= 2
}

// mergeConvexPolys keeps joining the pair of polygons with the longest shared edge while the
// result stays convex and fits in nvp vertices. polys holds npolys rows of nvp indices and a
// spare row at the end. merged, when set, sees the pair before row last is moved into b.
func mergeConvexPolys(polys []int, npolys int, nvp int, verts []int, merged func(a, b, last int)) int {
	if nvp <= 3 {
		return npolys
	}
	scratch := len(polys) - nvp
	for npolys > 1 {
		best, bestA, bestB, bestEa, bestEb := 0, 0, 0, 0, 0
		for a := 0; a < npolys-1; a++ {
			for b := a + 1; b < npolys; b++ {
				v, ea, eb := getPolyMergeValue(polys, a*nvp, b*nvp, verts, nvp)
				if v > best {
					best, bestA, bestB, bestEa, bestEb = v, a, b, ea, eb
				}
			}
		}
		if best <= 0 {
			break
		}
		mergePolyVerts(polys, bestA*nvp, bestB*nvp, bestEa, bestEb, scratch, nvp)
		last := npolys - 1
		if merged != nil {
			merged(bestA, bestB, last)
		}
		if bestB != last {
			copy(polys[bestB*nvp:(bestB+1)*nvp], polys[last*nvp:(last+1)*nvp])
		}
		npolys--
	}
	return npolys
}

// mergePolyVerts writes the union of polygons pa and pb, joined at edges ea and eb, over pa.
func mergePolyVerts(polys []int, pa int, pb int, ea int, eb int, tmp int, nvp int) {
	na := countPolyVerts(polys, pa, nvp)
	nb := countPolyVerts(polys, pb, nvp)
	out := polys[tmp : tmp+nvp]
	fillNull(out)
	n := 0
	for k := 1; k < na; k++ {
		out[n] = polys[pa+(ea+k)%na]
		n++
	}
	for k := 1; k < nb; k++ {
		out[n] = polys[pb+(eb+k)%nb]
		n++
	}
	copy(polys[pa:pa+nvp], out)
}

// getPolyMergeValue returns the squared length of the edge shared by pa and pb together with
// its index in each polygon. The value is -1 when the union would be too large or concave.
func getPolyMergeValue(polys []int, pa int, pb int, verts []int, nvp int) (int, int, int) {
	na := countPolyVerts(polys, pa, nvp)
	nb := countPolyVerts(polys, pb, nvp)
	if na+nb-2 > nvp {
		return -1, -1, -1
	}
	ea, eb := -1, -1
	edgeKey := func(p, i, n int) [2]int {
		v0, v1 := polys[p+i], polys[p+(i+1)%n]
		return [2]int{min(v0, v1), max(v0, v1)}
	}
	for i := 0; i < na; i++ {
		ka := edgeKey(pa, i, na)
		for j := 0; j < nb; j++ {
			if edgeKey(pb, j, nb) == ka {
				ea, eb = i, j
				break
			}
		}
	}
	if ea < 0 {
		return -1, ea, eb
	}
	at := func(p, i, n int) int { return polys[p+i%n] * 3 }
	if !uleft(verts, at(pa, ea+na-1, na), at(pa, ea, na), at(pb, eb+2, nb)) {
		return -1, ea, eb
	}
	if !uleft(verts, at(pb, eb+nb-1, nb), at(pb, eb, nb), at(pa, ea+2, na)) {
		return -1, ea, eb
	}
	va, vb := at(pa, ea, na), at(pa, ea+1, na)
	dx := verts[va] - verts[vb]
	dz := verts[va+2] - verts[vb+2]
	return dx*dx + dz*dz, ea, eb
}

func uleft(verts []int, a int, b int, c int) bool {
	return (verts[b+0]-verts[a+0])*(verts[c+2]-verts[a+2])-(verts[c+0]-verts[a+0])*(verts[b+2]-verts[a+2]) < 0
}

func countPolyVerts(p []int, j int, nvp int) int {
	for i := 0; i < nvp; i++ {
		if p[i+j] == RC_MESH_NULL_IDX {
			return i
		}
	}
	return nvp
}

// vertexWelder appends vertices to a flat xyz array, reusing an existing vertex with the same
// x and z whose height is within two cells.
type vertexWelder struct {
	verts []int
	first []int
	next  []int
	n     int
}

func newVertexWelder(verts []int, capacity int) *vertexWelder {
	w := &vertexWelder{verts: verts, first: make([]int, VERTEX_BUCKET_COUNT), next: make([]int, capacity)}
	for i := range w.first {
		w.first[i] = -1
	}
	return w
}

func (this *vertexWelder) add(x, y, z int) int {
	bucket := computeVertexHash(x, 0, z)
	for i := this.first[bucket]; i != -1; i = this.next[i] {
		v := this.verts[i*3 : i*3+3]
		if v[0] == x && abs_i(v[1]-y) <= 2 && v[2] == z {
			return i
		}
	}
	i := this.n
	this.n++
	this.verts[i*3], this.verts[i*3+1], this.verts[i*3+2] = x, y, z
	this.next[i] = this.first[bucket]
	this.first[bucket] = i
	return i
}

func computeVertexHash(x int, y int, z int) int {
	const (
		h1 = 0x8da6b343
		h2 = 0xd8163841
		h3 = 0xcb1ab31f
	)
	return (h1*x + h2*y + h3*z) & (VERTEX_BUCKET_COUNT - 1)
}

// triangulate ear clips the polygon given by the first n entries of indices into verts (stride 4)
// and writes the corner indices to tris. A negative count means the outline was self
// intersecting and only part of it was triangulated.
func triangulate(n int, verts []int, indices []int, tris []int) int {
	at := func(k int) int { return (indices[k] & earIndex) * 4 }
	for i := 0; i < n; i++ {
		i1 := next(i, n)
		if diagonal(i, next(i1, n), n, verts, indices) {
			indices[i1] |= earFlag
		}
	}
	sqDist := func(a, b int) int {
		dx := verts[b] - verts[a]
		dz := verts[b+2] - verts[a+2]
		return dx*dx + dz*dz
	}
	ntris := 0
	emit := func(a, b, c int) {
		tris[ntris*3] = indices[a] & earIndex
		tris[ntris*3+1] = indices[b] & earIndex
		tris[ntris*3+2] = indices[c] & earIndex
		ntris++
	}
	for n > 3 {
		best, mini := -1, -1
		for i := 0; i < n; i++ {
			i1 := next(i, n)
			if indices[i1]&earFlag == 0 {
				continue
			}
			if d := sqDist(at(i), at(next(i1, n))); best < 0 || d < best {
				best, mini = d, i
			}
		}
		if mini == -1 {
			// Overlapping outline segments can leave no strict ear. Retry with a cone test
			// that accepts collinear edges.
			for i := 0; i < n; i++ {
				i2 := next(next(i, n), n)
				if !diagonalLoose(i, i2, n, verts, indices) {
					continue
				}
				if d := sqDist(at(i), at(next(i2, n))); best < 0 || d < best {
					best, mini = d, i
				}
			}
			if mini == -1 {
				return -ntris
			}
		}
		i := mini
		i1 := next(i, n)
		emit(i, i1, next(i1, n))
		n--
		copy(indices[i1:n], indices[i1+1:n+1])
		if i1 >= n {
			i1 = 0
		}
		i = prev(i1, n)
		setEar(indices, i, diagonal(prev(i, n), i1, n, verts, indices))
		setEar(indices, i1, diagonal(i, next(i1, n), n, verts, indices))
	}
	emit(0, 1, 2)
	return ntris
}

func setEar(indices []int, i int, ear bool) {
	if ear {
		indices[i] |= earFlag
	} else {
		indices[i] &= earIndex
	}
}

// diagonalie reports whether segment i-j crosses no polygon edge other than those incident
// to i or j. Strict mode also counts touching edges as crossings.
func diagonalie(i int, j int, n int, verts []int, indices []int, strict bool) bool {
	d0 := (indices[i] & earIndex) * 4
	d1 := (indices[j] & earIndex) * 4
	for k := 0; k < n; k++ {
		k1 := next(k, n)
		if k == i || k1 == i || k == j || k1 == j {
			continue
		}
		p0 := (indices[k] & earIndex) * 4
		p1 := (indices[k1] & earIndex) * 4
		if vequal(verts, d0, p0) || vequal(verts, d1, p0) || vequal(verts, d0, p1) || vequal(verts, d1, p1) {
			continue
		}
		if strict && intersect(verts, d0, d1, p0, p1) || !strict && intersectProp(verts, d0, d1, p0, p1) {
			return false
		}
	}
	return true
}

func diagonal(i int, j int, n int, verts []int, indices []int) bool {
	return polyInCone(i, j, n, verts, indices, false) && diagonalie(i, j, n, verts, indices, true)
}

func diagonalLoose(i int, j int, n int, verts []int, indices []int) bool {
	return polyInCone(i, j, n, verts, indices, true) && diagonalie(i, j, n, verts, indices, false)
}

// polyInCone reports whether j lies inside the angle at vertex i of the polygon.
func polyInCone(i int, j int, n int, verts []int, indices []int, loose bool) bool {
	pi := (indices[i] & earIndex) * 4
	pj := (indices[j] & earIndex) * 4
	pnext := (indices[next(i, n)] & earIndex) * 4
	pprev := (indices[prev(i, n)] & earIndex) * 4
	if leftOn(verts, pprev, pi, pnext) {
		if loose {
			return leftOn(verts, pi, pj, pprev) && leftOn(verts, pj, pi, pnext)
		}
		return left(verts, pi, pj, pprev) && left(verts, pj, pi, pnext)
	}
	// Reflex corner.
	return !(leftOn(verts, pi, pj, pnext) && leftOn(verts, pj, pi, pprev))
}

func next(i, n int) int {
	if i+1 < n {
		return i + 1
	}
	return 0
}

func prev(i, n int) int {
	if i > 0 {
		return i - 1
	}
	return n - 1
}

func vequal(verts []int, a int, b int) bool {
	return verts[a] == verts[b] && verts[a+2] == verts[b+2]
}

func intersect(verts []int, a int, b int, c int, d int) bool {
	return intersectProp(verts, a, b, c, d) ||
		between(verts, a, b, c) || between(verts, a, b, d) || between(verts, c, d, a) || between(verts, c, d, b)
}

// intersectProp reports a proper crossing, one where no endpoint is collinear with the other segment.
func intersectProp(verts []int, a int, b int, c int, d int) bool {
	if collinear(verts, a, b, c) || collinear(verts, a, b, d) || collinear(verts, c, d, a) || collinear(verts, c, d, b) {
		return false
	}
	return left(verts, a, b, c) != left(verts, a, b, d) && left(verts, c, d, a) != left(verts, c, d, b)
}

func between(verts []int, a int, b int, c int) bool {
	if !collinear(verts, a, b, c) {
		return false
	}
	k := 0
	if verts[a] == verts[b] {
		k = 2
	}
	lo, hi := min(verts[a+k], verts[b+k]), max(verts[a+k], verts[b+k])
	return lo <= verts[c+k] && verts[c+k] <= hi
}

func collinear(verts []int, a int, b int, c int) bool {
	return area2(verts, a, b, c) == 0
}

func area2(verts []int, a int, b int, c int) int {
	return (verts[b]-verts[a])*(verts[c+2]-verts[a+2]) - (verts[c]-verts[a])*(verts[b+2]-verts[a+2])
}

func left(verts []int, a int, b int, c int) bool {
	return area2(verts, a, b, c) < 0
}

func leftOn(verts []int, a int, b int, c int) bool {
	return area2(verts, a, b, c) <= 0
}
