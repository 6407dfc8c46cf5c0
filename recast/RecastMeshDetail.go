package recast

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/glog"
)

var errNoSeedSpan = errors.New("no span near the polygon vertices")

// heightPatch is a window of span heights over the bounds of one polygon, in cells without
// the border offset.
type heightPatch struct {
	data   []int
	xmin   int
	zmin   int
	width  int
	height int
}

func (this *heightPatch) fill(v int) {
	for i := range this.data[:this.width*this.height] {
		this.data[i] = v
	}
}

// index maps cell (x, z) to a slot of data, or -1 when it lies outside the patch.
func (this *heightPatch) index(x, z int) int {
	hx, hz := x-this.xmin, z-this.zmin
	if hx < 0 || hz < 0 || hx >= this.width || hz >= this.height {
		return -1
	}
	return hx + hz*this.width
}

// BuildPolyMeshDetail samples the compact heightfield inside every polygon of mesh and adds
// triangles wherever the flat polygon deviates from the surface by more than sampleMaxError.
// A nil result with a nil error means the mesh had no polygons.
func BuildPolyMeshDetail(mesh *PolyMesh, chf *CompactHeightfield, sampleDist float32, sampleMaxError float32) (*PolyMeshDetail, error) {
	if mesh.nverts == 0 || mesh.npolys == 0 {
		return nil, nil
	}
	nvp := mesh.nvp
	polyVerts := func(i int) []int {
		p := mesh.polys[i*nvp*2:]
		return p[:countPolyVerts(p, 0, nvp)]
	}
	// Cell bounds per polygon as xmin, xmax, zmin, zmax, grown by one cell.
	bounds := make([][4]int, mesh.npolys)
	totalVerts, maxW, maxH := 0, 0, 0
	for i := range bounds {
		b := [4]int{chf.width, 0, chf.height, 0}
		for _, v := range polyVerts(i) {
			x, z := mesh.verts[v*3], mesh.verts[v*3+2]
			b[0], b[1] = min(b[0], x), max(b[1], x)
			b[2], b[3] = min(b[2], z), max(b[3], z)
			totalVerts++
		}
		b[0], b[1] = max(0, b[0]-1), min(chf.width, b[1]+1)
		b[2], b[3] = max(0, b[2]-1), min(chf.height, b[3]+1)
		bounds[i] = b
		if b[0] < b[1] && b[2] < b[3] {
			maxW = max(maxW, b[1]-b[0])
			maxH = max(maxH, b[3]-b[2])
		}
	}

	builder := &detailBuilder{
		chf:            chf,
		hp:             &heightPatch{data: make([]int, maxW*maxH)},
		sampleDist:     sampleDist,
		sampleMaxError: sampleMaxError,
		searchRadius:   max(1, int(math.Ceil(float64(mesh.maxEdgeError)))),
	}
	vcap := totalVerts + totalVerts/2
	dmesh := &PolyMeshDetail{
		nmeshes: mesh.npolys,
		meshes:  make([]int, mesh.npolys*4),
		verts:   make([]float32, 0, vcap*3),
		tris:    make([]int, 0, vcap*2*4),
	}
	orig := mesh.bmin
	poly := make([]float32, nvp*3)
	for i := 0; i < mesh.npolys; i++ {
		pv := polyVerts(i)
		npoly := len(pv)
		for j, v := range pv {
			poly[j*3] = float32(mesh.verts[v*3]) * mesh.cs
			poly[j*3+1] = float32(mesh.verts[v*3+1]) * mesh.ch
			poly[j*3+2] = float32(mesh.verts[v*3+2]) * mesh.cs
		}
		hp := builder.hp
		hp.xmin, hp.width = bounds[i][0], bounds[i][1]-bounds[i][0]
		hp.zmin, hp.height = bounds[i][2], bounds[i][3]-bounds[i][2]
		if hp.width <= 0 || hp.height <= 0 {
			return nil, fmt.Errorf("build poly mesh detail: polygon %d has empty bounds", i)
		}
		if err := getHeightData(chf, mesh.verts, pv, mesh.borderSize, hp, mesh.regs[i]); err != nil {
			return nil, fmt.Errorf("build poly mesh detail: polygon %d: %w", i, err)
		}
		verts, tris := builder.build(poly[:npoly*3])
		nverts := len(verts) / 3
		for j := 0; j < nverts; j++ {
			verts[j*3] += orig[0]
			verts[j*3+1] += orig[1] + chf.ch
			verts[j*3+2] += orig[2]
		}
		for j := 0; j < npoly; j++ {
			poly[j*3] += orig[0]
			poly[j*3+1] += orig[1]
			poly[j*3+2] += orig[2]
		}
		ntris := len(tris) / 4
		copy(dmesh.meshes[i*4:], []int{dmesh.nverts, nverts, dmesh.ntris, ntris})
		dmesh.verts = append(dmesh.verts, verts...)
		dmesh.nverts += nverts
		for t := 0; t < ntris; t++ {
			a, b, c := tris[t*4], tris[t*4+1], tris[t*4+2]
			dmesh.tris = append(dmesh.tris, a, b, c, getTriFlags(verts, a*3, b*3, c*3, poly, npoly))
		}
		dmesh.ntris += ntris
	}
	return dmesh, nil
}

// getTriFlags packs, two bits per edge, whether each triangle edge lies on the polygon outline.
func getTriFlags(verts []float32, va int, vb int, vc int, vpoly []float32, npoly int) int {
	return getEdgeFlags(verts, va, vb, vpoly, npoly) |
		getEdgeFlags(verts, vb, vc, vpoly, npoly)<<2 |
		getEdgeFlags(verts, vc, va, vpoly, npoly)<<4
}

func getEdgeFlags(verts []float32, va int, vb int, vpoly []float32, npoly int) int {
	const thrSqr = float32(0.001 * 0.001)
	for i, j := 0, npoly-1; i < npoly; j, i = i, i+1 {
		if distancePtSeg2d(verts, va, vpoly, j*3, i*3) < thrSqr && distancePtSeg2d(verts, vb, vpoly, j*3, i*3) < thrSqr {
			return 1
		}
	}
	return 0
}

type detailBuilder struct {
	chf            *CompactHeightfield
	hp             *heightPatch
	sampleDist     float32
	sampleMaxError float32
	searchRadius   int
}

type detailSample struct {
	x, y, z int
	added   bool
}

func (this *detailBuilder) height(x, y, z float32) int {
	return this.hp.sample(x, y, z, 1/this.chf.cs, this.chf.ch, this.searchRadius)
}

// build returns the detail vertices (stride 3, relative to the mesh origin) and triangles
// (stride 4) of the polygon in.
func (this *detailBuilder) build(in []float32) ([]float32, []int) {
	nin := len(in) / 3
	verts := make([]float32, len(in), MAX_VERTS*3)
	copy(verts, in)
	hull := make([]int, 0, MAX_VERTS)
	sampleDist := this.sampleDist
	ch := this.chf.ch
	minExtent := polyMinExtent(in, nin)

	// Outline edges are sampled on their own, always walking from the lexically smaller end,
	// so neighbouring polygons get identical points on a shared edge.
	if sampleDist > 0 {
		for i, j := 0, nin-1; i < nin; j, i = i, i+1 {
			a, b := in[j*3:j*3+3], in[i*3:i*3+3]
			swapped := false
			if abs_f(a[0]-b[0]) < 1e-6 {
				swapped = a[2] > b[2]
			} else {
				swapped = a[0] > b[0]
			}
			if swapped {
				a, b = b, a
			}
			dx, dy, dz := b[0]-a[0], b[1]-a[1], b[2]-a[2]
			segLen := float32(math.Sqrt(float64(dx*dx + dz*dz)))
			nn := min(1+int(math.Floor(float64(segLen/sampleDist))), MAX_VERTS_PER_EDGE-1)
			if len(verts)/3+nn >= MAX_VERTS {
				nn = MAX_VERTS - 1 - len(verts)/3
			}
			if nn < 1 {
				hull = append(hull, j)
				continue
			}
			edge := make([]float32, (nn+1)*3)
			for k := 0; k <= nn; k++ {
				u := float32(k) / float32(nn)
				p := edge[k*3 : k*3+3]
				p[0], p[1], p[2] = a[0]+dx*u, a[1]+dy*u, a[2]+dz*u
				p[1] = float32(this.height(p[0], p[1], p[2])) * ch
			}
			// Keep inserting the sample furthest from the simplified edge.
			idx := []int{0, nn}
			for k := 0; k < len(idx)-1; {
				lo, hi := idx[k], idx[k+1]
				maxd, maxi := float32(0), -1
				for m := lo + 1; m < hi; m++ {
					if d := distancePtSegSq3(edge, m*3, lo*3, hi*3); d > maxd {
						maxd, maxi = d, m
					}
				}
				if maxi != -1 && maxd > this.sampleMaxError*this.sampleMaxError {
					idx = append(idx[:k+1], append([]int{maxi}, idx[k+1:]...)...)
				} else {
					k++
				}
			}
			hull = append(hull, j)
			inner := idx[1 : len(idx)-1]
			for k := range inner {
				if swapped {
					k = len(inner) - 1 - k
				}
				hull = append(hull, len(verts)/3)
				verts = append(verts, edge[inner[k]*3:inner[k]*3+3]...)
			}
		}
	} else {
		for i := 0; i < nin; i++ {
			hull = append(hull, i)
		}
	}

	// Fan triangulation suits long thin polygons better than delaunayHull when nothing is
	// added inside.
	tris := triangulateHull(verts, hull, nin)
	if minExtent < sampleDist*2 {
		return verts, tris
	}
	if len(tris) == 0 {
		glog.Warningf("build poly detail: could not triangulate polygon of %d verts", len(verts)/3)
		return verts, tris
	}
	if sampleDist > 0 {
		tris = this.addInteriorSamples(in, &verts, hull, tris)
	}
	if ntris := len(tris) / 4; ntris > MAX_TRIS {
		tris = tris[:MAX_TRIS*4]
		glog.Warningf("build poly detail: shrinking triangle count from %d to max %d", ntris, MAX_TRIS)
	}
	return verts, tris
}

// addInteriorSamples lays a grid over the polygon and keeps adding the sample with the largest
// height error, retriangulating each time, until the error is within sampleMaxError.
func (this *detailBuilder) addInteriorSamples(in []float32, verts *[]float32, hull []int, tris []int) []int {
	nin := len(in) / 3
	sampleDist := this.sampleDist
	cs, ch := this.chf.cs, this.chf.ch
	bmin := []float32{in[0], in[1], in[2]}
	bmax := []float32{in[0], in[1], in[2]}
	for i := 1; i < nin; i++ {
		vmin(bmin, in, i*3)
		vmax(bmax, in, i*3)
	}
	x0 := int(math.Floor(float64(bmin[0] / sampleDist)))
	x1 := int(math.Ceil(float64(bmax[0] / sampleDist)))
	z0 := int(math.Floor(float64(bmin[2] / sampleDist)))
	z1 := int(math.Ceil(float64(bmax[2] / sampleDist)))
	midY := (bmax[1] + bmin[1]) * 0.5
	var samples []detailSample
	for z := z0; z < z1; z++ {
		for x := x0; x < x1; x++ {
			pt := []float32{float32(x) * sampleDist, midY, float32(z) * sampleDist}
			if distToPoly(nin, in, pt) > -sampleDist/2 {
				continue
			}
			samples = append(samples, detailSample{x: x, y: this.height(pt[0], pt[1], pt[2]), z: z})
		}
	}
	for range samples {
		if len(*verts)/3 >= MAX_VERTS {
			break
		}
		var bestPt []float32
		bestd, besti := float32(0), -1
		for i := range samples {
			s := &samples[i]
			if s.added {
				continue
			}
			// Jitter breaks up the symmetric grid that makes the triangulation degenerate.
			pt := []float32{
				float32(s.x)*sampleDist + getJitterX(i)*cs*0.1,
				float32(s.y) * ch,
				float32(s.z)*sampleDist + getJitterY(i)*cs*0.1,
			}
			d := distToTriMesh(pt, *verts, tris)
			if d < 0 {
				continue
			}
			if d > bestd {
				bestd, besti, bestPt = d, i, pt
			}
		}
		if besti == -1 || bestd <= this.sampleMaxError {
			break
		}
		samples[besti].added = true
		*verts = append(*verts, bestPt...)
		tris = delaunayHull(*verts, hull)
	}
	return tris
}

// delaunay incrementally builds a Delaunay triangulation bounded by a hull. Each edge is
// stored as start, end, left face and right face.
type delaunay struct {
	pts      []float32
	npts     int
	edges    [][4]int
	maxEdges int
	nfaces   int
}

func delaunayHull(pts []float32, hull []int) []int {
	npts := len(pts) / 3
	d := &delaunay{pts: pts, npts: npts, maxEdges: npts * 10}
	for i, j := 0, len(hull)-1; i < len(hull); j, i = i, i+1 {
		d.addEdge(hull[j], hull[i], EV_HULL, EV_UNDEF)
	}
	for e := 0; e < len(d.edges); e++ {
		if d.edges[e][2] == EV_UNDEF {
			d.completeFacet(e)
		}
		if d.edges[e][3] == EV_UNDEF {
			d.completeFacet(e)
		}
	}
	return d.triangles()
}

func (this *delaunay) triangles() []int {
	faces := make([][4]int, this.nfaces)
	for i := range faces {
		faces[i] = [4]int{-1, -1, -1, -1}
	}
	for _, e := range this.edges {
		if e[3] >= 0 {
			t := &faces[e[3]]
			switch {
			case t[0] == -1:
				t[0], t[1] = e[0], e[1]
			case t[0] == e[1]:
				t[2] = e[0]
			case t[1] == e[0]:
				t[2] = e[1]
			}
		}
		if e[2] >= 0 {
			t := &faces[e[2]]
			switch {
			case t[0] == -1:
				t[0], t[1] = e[1], e[0]
			case t[0] == e[0]:
				t[2] = e[1]
			case t[1] == e[1]:
				t[2] = e[0]
			}
		}
	}
	for i := 0; i < len(faces); i++ {
		t := faces[i]
		if t[0] == -1 || t[1] == -1 || t[2] == -1 {
			glog.V(2).Infof("delaunay hull: removing dangling face %d [%d,%d,%d]", i, t[0], t[1], t[2])
			faces[i] = faces[len(faces)-1]
			faces = faces[:len(faces)-1]
			i--
		}
	}
	tris := make([]int, 0, len(faces)*4)
	for _, t := range faces {
		tris = append(tris, t[:]...)
	}
	return tris
}

// completeFacet closes the open side of edge e with the point whose circumcircle contains no
// other point, or marks that side as hull when there is none.
func (this *delaunay) completeFacet(e int) {
	const eps = float32(1e-5)
	const tol = float32(0.001)
	var s, t int
	switch edge := this.edges[e]; {
	case edge[2] == EV_UNDEF:
		s, t = edge[0], edge[1]
	case edge[3] == EV_UNDEF:
		s, t = edge[1], edge[0]
	default:
		return
	}
	pts := this.pts
	pt := this.npts
	var c [3]float32
	r := float32(-1)
	for u := 0; u < this.npts; u++ {
		if u == s || u == t || vcross2(pts, s*3, t*3, u*3) <= eps {
			continue
		}
		if r >= 0 {
			d := dist2D(c[0], c[2], pts[u*3], pts[u*3+2])
			if d > r*(1+tol) {
				continue
			}
			// Near the circle only accept u when its edges would not cross existing ones.
			if d >= r*(1-tol) && (this.overlapEdges(s, u) || this.overlapEdges(t, u)) {
				continue
			}
		}
		pt = u
		c, r = circumCircle(pts, s*3, t*3, u*3)
	}
	if pt == this.npts {
		this.updateLeftFace(e, s, t, EV_HULL)
		return
	}
	f := this.nfaces
	this.updateLeftFace(e, s, t, f)
	if ne := this.findEdge(pt, s); ne == EV_UNDEF {
		this.addEdge(pt, s, f, EV_UNDEF)
	} else {
		this.updateLeftFace(ne, pt, s, f)
	}
	if ne := this.findEdge(t, pt); ne == EV_UNDEF {
		this.addEdge(t, pt, f, EV_UNDEF)
	} else {
		this.updateLeftFace(ne, t, pt, f)
	}
	this.nfaces++
}

func (this *delaunay) updateLeftFace(e int, s int, t int, f int) {
	edge := &this.edges[e]
	if edge[0] == s && edge[1] == t && edge[2] == EV_UNDEF {
		edge[2] = f
	} else if edge[1] == s && edge[0] == t && edge[3] == EV_UNDEF {
		edge[3] = f
	}
}

func (this *delaunay) overlapEdges(s1 int, t1 int) bool {
	for _, e := range this.edges {
		s0, t0 := e[0], e[1]
		if s0 == s1 || s0 == t1 || t0 == s1 || t0 == t1 {
			continue
		}
		if overlapSegSeg2d(this.pts, s0*3, t0*3, s1*3, t1*3) {
			return true
		}
	}
	return false
}

func (this *delaunay) addEdge(s int, t int, l int, r int) {
	if len(this.edges) >= this.maxEdges {
		glog.Warningf("add edge: too many edges (%d/%d)", len(this.edges), this.maxEdges)
		return
	}
	if this.findEdge(s, t) == EV_UNDEF {
		this.edges = append(this.edges, [4]int{s, t, l, r})
	}
}

func (this *delaunay) findEdge(s int, t int) int {
	for i, e := range this.edges {
		if e[0] == s && e[1] == t || e[0] == t && e[1] == s {
			return i
		}
	}
	return EV_UNDEF
}

func overlapSegSeg2d(verts []float32, a int, b int, c int, d int) bool {
	a1 := vcross2(verts, a, b, d)
	a2 := vcross2(verts, a, b, c)
	if a1*a2 >= 0 {
		return false
	}
	a3 := vcross2(verts, c, d, a)
	a4 := a3 + a2 - a1
	return a3*a4 < 0
}

// circumCircle returns the xz circumcircle of the three points, or a zero radius circle at
// p1 when they are collinear.
func circumCircle(verts []float32, p1 int, p2 int, p3 int) ([3]float32, float32) {
	const eps = float32(1e-6)
	bx, bz := verts[p2]-verts[p1], verts[p2+2]-verts[p1+2]
	cx, cz := verts[p3]-verts[p1], verts[p3+2]-verts[p1+2]
	cp := bx*cz - bz*cx
	if abs_f(cp) <= eps {
		return [3]float32{verts[p1], verts[p1+1], verts[p1+2]}, 0
	}
	bSq := bx*bx + bz*bz
	cSq := cx*cx + cz*cz
	ux := (bSq*cz - cSq*bz) / (2 * cp)
	uz := (cSq*bx - bSq*cx) / (2 * cp)
	return [3]float32{verts[p1] + ux, verts[p1+1], verts[p1+2] + uz}, dist2D(0, 0, ux, uz)
}

func vcross2(verts []float32, p1 int, p2 int, p3 int) float32 {
	u1 := verts[p2] - verts[p1]
	v1 := verts[p2+2] - verts[p1+2]
	u2 := verts[p3] - verts[p1]
	v2 := verts[p3+2] - verts[p1+2]
	return u1*v2 - v1*u2
}

func dist2D(ax, az, bx, bz float32) float32 {
	dx, dz := bx-ax, bz-az
	return float32(math.Sqrt(float64(dx*dx + dz*dz)))
}

// distToTriMesh returns the vertical distance from p to the triangle below or above it, or -1
// when p is outside every triangle.
func distToTriMesh(p []float32, verts []float32, tris []int) float32 {
	dmin := FLOAT_MAX_VALUE
	for i := 0; i+3 < len(tris); i += 4 {
		dmin = min(dmin, distPtTri(p, verts, tris[i]*3, tris[i+1]*3, tris[i+2]*3))
	}
	if dmin == FLOAT_MAX_VALUE {
		return -1
	}
	return dmin
}

func distPtTri(p []float32, verts []float32, a int, b int, c int) float32 {
	const eps = float32(1e-4)
	var v0, v1, v2 [3]float32
	sub(v0[:], verts, c, a)
	sub(v1[:], verts, b, a)
	sub3(v2[:], p, verts, a)
	dot00 := v0[0]*v0[0] + v0[2]*v0[2]
	dot01 := v0[0]*v1[0] + v0[2]*v1[2]
	dot02 := v0[0]*v2[0] + v0[2]*v2[2]
	dot11 := v1[0]*v1[0] + v1[2]*v1[2]
	dot12 := v1[0]*v2[0] + v1[2]*v2[2]
	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom
	if u < -eps || v < -eps || u+v > 1+eps {
		return FLOAT_MAX_VALUE
	}
	y := verts[a+1] + v0[1]*u + v1[1]*v
	return abs_f(y - p[1])
}

func getJitterX(i int) float32 {
	return float32((i*0x8da6b343)&0xffff)/65535.0*2.0 - 1.0
}

func getJitterY(i int) float32 {
	return float32((i*0xd8163841)&0xffff)/65535.0*2.0 - 1.0
}

// distToPoly returns the squared xz distance from p to the outline, negated when p is inside.
func distToPoly(nvert int, verts []float32, p []float32) float32 {
	dmin := FLOAT_MAX_VALUE
	inside := false
	for i, j := 0, nvert-1; i < nvert; j, i = i, i+1 {
		vi, vj := verts[i*3:i*3+3], verts[j*3:j*3+3]
		if (vi[2] > p[2]) != (vj[2] > p[2]) && p[0] < (vj[0]-vi[0])*(p[2]-vi[2])/(vj[2]-vi[2])+vi[0] {
			inside = !inside
		}
		dmin = min(dmin, distancePtSeg2d(p, 0, verts, j*3, i*3))
	}
	if inside {
		return -dmin
	}
	return dmin
}

// triangulateHull fans the hull into triangles, starting from the original polygon vertex
// (index < nin) whose ear has the shortest perimeter and then advancing whichever side
// closes the shorter triangle.
func triangulateHull(verts []float32, hull []int, nin int) []int {
	nhull := len(hull)
	if nhull < 3 {
		return nil
	}
	d := func(a, b int) float32 {
		return dist2D(verts[hull[a]*3], verts[hull[a]*3+2], verts[hull[b]*3], verts[hull[b]*3+2])
	}
	start, left, right := 0, 1, nhull-1
	best := FLOAT_MAX_VALUE
	for i := 0; i < nhull; i++ {
		if hull[i] >= nin {
			continue
		}
		pi, ni := prev(i, nhull), next(i, nhull)
		if per := d(pi, i) + d(i, ni) + d(ni, pi); per < best {
			start, left, right, best = i, ni, pi, per
		}
	}
	tris := []int{hull[start], hull[left], hull[right], 0}
	for next(left, nhull) != right {
		nleft, nright := next(left, nhull), prev(right, nhull)
		if d(left, nleft)+d(nleft, right) < d(right, nright)+d(left, nright) {
			tris = append(tris, hull[left], hull[nleft], hull[right], 0)
			left = nleft
		} else {
			tris = append(tris, hull[left], hull[nright], hull[right], 0)
			right = nright
		}
	}
	return tris
}

// distancePtSegSq3 is the squared 3D distance from point pt to segment p-q, all offsets in verts.
func distancePtSegSq3(verts []float32, pt int, p int, q int) float32 {
	var pq, d [3]float32
	for k := 0; k < 3; k++ {
		pq[k] = verts[q+k] - verts[p+k]
		d[k] = verts[pt+k] - verts[p+k]
	}
	den := pq[0]*pq[0] + pq[1]*pq[1] + pq[2]*pq[2]
	t := pq[0]*d[0] + pq[1]*d[1] + pq[2]*d[2]
	if den > 0 {
		t /= den
	}
	t = min(max(t, 0), 1)
	sum := float32(0)
	for k := 0; k < 3; k++ {
		e := verts[p+k] + t*pq[k] - verts[pt+k]
		sum += e * e
	}
	return sum
}

// sample returns the patch height under (fx, fz). When that cell is unset it searches
// outward ring by ring up to radius cells and returns the height closest to fy within the
// first ring that has any.
func (this *heightPatch) sample(fx, fy, fz float32, ics, ch float32, radius int) int {
	ix := clamp_i(int(math.Floor(float64(fx*ics+0.01)))-this.xmin, 0, this.width-1)
	iz := clamp_i(int(math.Floor(float64(fz*ics+0.01)))-this.zmin, 0, this.height-1)
	h := this.data[ix+iz*this.width]
	if h != RC_UNSET_HEIGHT {
		return h
	}
	// Spiral walk; ring n holds 8n cells.
	x, z, dx, dz := 1, 0, 1, 0
	side := radius*2 + 1
	ringEnd, ringLen := 8, 16
	dmin := FLOAT_MAX_VALUE
	for i := 0; i < side*side-1; i++ {
		nx, nz := ix+x, iz+z
		if nx >= 0 && nz >= 0 && nx < this.width && nz < this.height {
			if nh := this.data[nx+nz*this.width]; nh != RC_UNSET_HEIGHT {
				if d := abs_f(float32(nh)*ch - fy); d < dmin {
					h, dmin = nh, d
				}
			}
		}
		if i+1 == ringEnd {
			if h != RC_UNSET_HEIGHT {
				break
			}
			ringEnd += ringLen
			ringLen += 8
		}
		if x == z || x < 0 && x == -z || x > 0 && x == 1-z {
			dx, dz = -dz, dx
		}
		x += dx
		z += dz
	}
	return h
}

// polyMinExtent returns the smallest, over all edges, of the largest distance from a vertex
// to that edge. It measures how thin the polygon is.
func polyMinExtent(verts []float32, nverts int) float32 {
	minDist := FLOAT_MAX_VALUE
	for i := 0; i < nverts; i++ {
		ni := (i + 1) % nverts
		maxEdgeDist := float32(0)
		for j := 0; j < nverts; j++ {
			if j != i && j != ni {
				maxEdgeDist = max(maxEdgeDist, distancePtSeg2d(verts, j*3, verts, i*3, ni*3))
			}
		}
		minDist = min(minDist, maxEdgeDist)
	}
	return float32(math.Sqrt(float64(minDist)))
}

// distancePtSeg2d is the squared xz distance from verts[pt] to segment poly[p]-poly[q].
func distancePtSeg2d(verts []float32, pt int, poly []float32, p int, q int) float32 {
	pqx := poly[q] - poly[p]
	pqz := poly[q+2] - poly[p+2]
	dx := verts[pt] - poly[p]
	dz := verts[pt+2] - poly[p+2]
	d := pqx*pqx + pqz*pqz
	t := pqx*dx + pqz*dz
	if d > 0 {
		t /= d
	}
	t = min(max(t, 0), 1)
	dx = poly[p] + t*pqx - verts[pt]
	dz = poly[p+2] + t*pqz - verts[pt+2]
	return dx*dx + dz*dz
}

// getHeightData fills hp with span heights for the polygon with vertex indices pv. Cells of the
// polygon's own region are copied and their region boundary seeds a flood fill over the rest.
// Polygons spanning several regions, or with no cell of their region, start from a span near
// the polygon centre instead. Compact heightfield reads are offset by bs because the mesh
// vertices have the border removed.
func getHeightData(chf *CompactHeightfield, verts []int, pv []int, bs int, hp *heightPatch, region int) error {
	hp.fill(RC_UNSET_HEIGHT)
	var queue []int
	empty := true
	if region != RC_MULTIPLE_REGS {
		for hz := 0; hz < hp.height; hz++ {
			z := hp.zmin + hz + bs
			for hx := 0; hx < hp.width; hx++ {
				x := hp.xmin + hx + bs
				c := &chf.cells[x+z*chf.width]
				for i := c.index; i < c.index+c.count; i++ {
					if chf.spans[i].reg != region {
						continue
					}
					hp.data[hx+hz*hp.width] = chf.spans[i].y
					empty = false
					for dir := 0; dir < 4; dir++ {
						if _, _, ai, ok := chf.neighbour(x, z, i, dir); ok && chf.spans[ai].reg != region {
							queue = append(queue, x, z, i)
							break
						}
					}
					break
				}
			}
		}
	}
	if empty {
		seed, err := seedPolyCenter(chf, verts, pv, bs, hp)
		if err != nil {
			return err
		}
		queue = seed
	}
	// Breadth first from the seeds keeps the fill from stepping onto overlapping floors.
	for head := 0; head < len(queue); head += 3 {
		cx, cz, ci := queue[head], queue[head+1], queue[head+2]
		for dir := 0; dir < 4; dir++ {
			ax, az, ai, ok := chf.neighbour(cx, cz, ci, dir)
			if !ok {
				continue
			}
			k := hp.index(ax-bs, az-bs)
			if k < 0 || hp.data[k] != RC_UNSET_HEIGHT {
				continue
			}
			hp.data[k] = chf.spans[ai].y
			queue = append(queue, ax, az, ai)
		}
	}
	return nil
}

// seedPolyCenter finds the span closest in height to one of the polygon's vertices, walks
// depth first towards the polygon centre and returns that span as the single flood seed,
// in bordered coordinates. hp is left unset except for the seed.
func seedPolyCenter(chf *CompactHeightfield, verts []int, pv []int, bs int, hp *heightPatch) ([]int, error) {
	offsets := [9][2]int{{0, 0}, {-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}}
	startX, startZ, startSpan := 0, 0, -1
	dmin := RC_UNSET_HEIGHT
	for _, v := range pv {
		if dmin == 0 {
			break
		}
		for _, off := range offsets {
			ax, ay, az := verts[v*3]+off[0], verts[v*3+1], verts[v*3+2]+off[1]
			if hp.index(ax, az) < 0 {
				continue
			}
			c := &chf.cells[(ax+bs)+(az+bs)*chf.width]
			for i := c.index; i < c.index+c.count && dmin > 0; i++ {
				if d := abs_i(ay - chf.spans[i].y); d < dmin {
					startX, startZ, startSpan, dmin = ax, az, i, d
				}
			}
			if dmin == 0 {
				break
			}
		}
	}
	if startSpan < 0 {
		return nil, errNoSeedSpan
	}
	pcx, pcz := 0, 0
	for _, v := range pv {
		pcx += verts[v*3]
		pcz += verts[v*3+2]
	}
	pcx /= len(pv)
	pcz /= len(pv)

	// A straight walk can get stuck on simplified contours, so keep a stack of the cells seen.
	hp.fill(0)
	stack := []int{startX, startZ, startSpan}
	dirs := [4]int{0, 1, 2, 3}
	cx, cz, ci := -1, -1, -1
	for {
		if len(stack) < 3 {
			glog.V(2).Infof("walk towards polygon center failed to reach center")
			break
		}
		n := len(stack)
		cx, cz, ci = stack[n-3], stack[n-2], stack[n-1]
		stack = stack[:n-3]
		if cx == pcx && cz == pcz {
			break
		}
		// The direct step goes last so it is popped first.
		var direct int
		if cx == pcx {
			direct = rcGetDirForOffset(0, sign(pcz-cz))
		} else {
			direct = rcGetDirForOffset(sign(pcx-cx), 0)
		}
		dirs[3], dirs[direct] = dirs[direct], dirs[3]
		for _, dir := range dirs {
			nx, nz, ni, ok := chf.neighbour(cx+bs, cz+bs, ci, dir)
			if !ok {
				continue
			}
			k := hp.index(nx-bs, nz-bs)
			if k < 0 || hp.data[k] != 0 {
				continue
			}
			hp.data[k] = 1
			stack = append(stack, nx-bs, nz-bs, ni)
		}
		dirs[3], dirs[direct] = dirs[direct], dirs[3]
	}
	hp.fill(RC_UNSET_HEIGHT)
	hp.data[hp.index(cx, cz)] = chf.spans[ci].y
	return []int{cx + bs, cz + bs, ci}, nil
}

// sign returns 1 for positive v and -1 otherwise.
func sign(v int) int {
	if v > 0 {
		return 1
	}
	return -1
}
