package recast

import (
	"fmt"
	"sort"

	"github.com/golang/glog"
)

const maxContourWalk = 40000

type contourHole struct {
	contour  *Contour
	minx     int
	minz     int
	leftmost int
}

type potentialDiagonal struct {
	vert int
	dist int
}

// BuildContours traces the outline of every region in chf and simplifies it so that no raw vertex strays
// more than maxError cells from it. Holes are stitched into the outline of their region. Contour vertices
// are relative to the tile, the border is cut away.
func BuildContours(chf *CompactHeightfield, maxError float32, maxEdgeLen int, buildFlags int) (*ContourSet, error) {
	border := chf.borderSize
	pad := float32(border) * chf.cs
	cset := &ContourSet{
		bmin:       []float32{chf.bmin[0] + pad, chf.bmin[1], chf.bmin[2] + pad},
		bmax:       []float32{chf.bmax[0] - pad, chf.bmax[1], chf.bmax[2] - pad},
		cs:         chf.cs,
		ch:         chf.ch,
		width:      chf.width - border*2,
		height:     chf.height - border*2,
		borderSize: border,
		maxError:   maxError,
	}
	edges := regionEdgeMask(chf)
	var raw, simplified []int
	for z := 0; z < chf.height; z++ {
		for x := 0; x < chf.width; x++ {
			c := chf.cells[x+z*chf.width]
			for i := c.index; i < c.index+c.count; i++ {
				if edges[i] == 0 || edges[i] == 0xf {
					edges[i] = 0
					continue
				}
				reg := chf.spans[i].reg
				if reg == 0 || reg&RC_BORDER_REG != 0 {
					continue
				}
				raw = walkContour(x, z, i, chf, edges, raw[:0])
				simplified = simplifyContour(raw, simplified[:0], maxError, maxEdgeLen, buildFlags)
				simplified = removeDegenerateSegments(simplified)
				if len(simplified) < 3*4 {
					continue
				}
				cset.conts = append(cset.conts, &Contour{
					verts:   shiftContour(simplified, border),
					nverts:  len(simplified) / 4,
					rverts:  shiftContour(raw, border),
					nrverts: len(raw) / 4,
					area:    chf.areas[i],
					reg:     reg,
				})
			}
		}
	}
	if err := mergeHoles(cset, chf.maxRegions+1); err != nil {
		return nil, err
	}
	return cset, nil
}

// regionEdgeMask sets, per region span, one bit for every direction whose neighbour is not in the region.
func regionEdgeMask(chf *CompactHeightfield) []int {
	mask := make([]int, chf.spanCount)
	for z := 0; z < chf.height; z++ {
		for x := 0; x < chf.width; x++ {
			c := chf.cells[x+z*chf.width]
			for i := c.index; i < c.index+c.count; i++ {
				reg := chf.spans[i].reg
				if reg == 0 || reg&RC_BORDER_REG != 0 {
					continue
				}
				same := 0
				for dir := 0; dir < 4; dir++ {
					if _, _, ni, ok := chf.neighbour(x, z, i, dir); ok && chf.spans[ni].reg == reg {
						same |= 1 << dir
					}
				}
				mask[i] = same ^ 0xf
			}
		}
	}
	return mask
}

// shiftContour copies packed (x, y, z, flags) vertices, moving them from heightfield to tile cells.
func shiftContour(verts []int, border int) []int {
	out := append([]int{}, verts...)
	for j := 0; j < len(out); j += 4 {
		out[j] -= border
		out[j+2] -= border
	}
	return out
}

// walkContour follows the region edge clockwise from span i, appending (x, y, z, flags) for every corner
// passed and clearing the visited edges from the mask.
func walkContour(x, z, i int, chf *CompactHeightfield, edges []int, points []int) []int {
	dir := 0
	for edges[i]&(1<<dir) == 0 {
		dir++
	}
	startDir, startSpan := dir, i
	area := chf.areas[i]
	for iter := 1; iter < maxContourWalk; iter++ {
		if edges[i]&(1<<dir) != 0 {
			y, borderVertex := getCornerHeight(x, z, i, dir, chf)
			px, pz := x, z
			switch dir {
			case 0:
				pz++
			case 1:
				px++
				pz++
			case 2:
				px++
			}
			r := 0
			if _, _, ni, ok := chf.neighbour(x, z, i, dir); ok {
				r = chf.spans[ni].reg
				if chf.areas[ni] != area {
					r |= RC_AREA_BORDER
				}
			}
			if borderVertex {
				r |= RC_BORDER_VERTEX
			}
			points = append(points, px, y, pz, r)
			edges[i] &^= 1 << dir
			dir = (dir + 1) & 0x3
		} else {
			nx, nz, ni, ok := chf.neighbour(x, z, i, dir)
			if !ok {
				return points
			}
			x, z, i = nx, nz, ni
			dir = (dir + 3) & 0x3
		}
		if i == startSpan && dir == startDir {
			break
		}
	}
	return points
}

// getCornerHeight returns the height of the corner shared by the four cells around edge dir of span i,
// and whether that corner sits on the tile border and is to be dropped when the mesh is built.
func getCornerHeight(x, z, i, dir int, chf *CompactHeightfield) (int, bool) {
	dirp := (dir + 1) & 0x3
	// Region and area together, so corners between two areas on the border survive.
	key := func(si int) int {
		return chf.spans[si].reg | chf.areas[si]<<16
	}
	height := chf.spans[i].y
	var regs [4]int
	regs[0] = key(i)
	if ax, az, ai, ok := chf.neighbour(x, z, i, dir); ok {
		height = max(height, chf.spans[ai].y)
		regs[1] = key(ai)
		if _, _, ai2, ok := chf.neighbour(ax, az, ai, dirp); ok {
			height = max(height, chf.spans[ai2].y)
			regs[2] = key(ai2)
		}
	}
	if ax, az, ai, ok := chf.neighbour(x, z, i, dirp); ok {
		height = max(height, chf.spans[ai].y)
		regs[3] = key(ai)
		if _, _, ai2, ok := chf.neighbour(ax, az, ai, dir); ok {
			height = max(height, chf.spans[ai2].y)
			regs[2] = key(ai2)
		}
	}
	// Two equal exterior cells in a row followed by two interior cells of one area, none of them empty.
	for j := 0; j < 4; j++ {
		a, b := regs[j], regs[(j+1)&0x3]
		c, d := regs[(j+2)&0x3], regs[(j+3)&0x3]
		twoSameExts := a&b&RC_BORDER_REG != 0 && a == b
		twoInts := (c|d)&RC_BORDER_REG == 0
		if twoSameExts && twoInts && c>>16 == d>>16 && a != 0 && b != 0 && c != 0 && d != 0 {
			return height, true
		}
	}
	return height, false
}

// simplifyContour reduces the raw outline points into simplified. The fourth value of each simplified
// vertex ends up as the neighbour region and border flags.
func simplifyContour(points, simplified []int, maxError float32, maxEdgeLen int, buildFlags int) []int {
	pn := len(points) / 4
	connected := false
	for i := 0; i < pn; i++ {
		if points[i*4+3]&RC_CONTOUR_REG_MASK != 0 {
			connected = true
			break
		}
	}
	if connected {
		// Keep every vertex where the neighbouring region or area changes.
		for i := 0; i < pn; i++ {
			a, b := points[i*4+3], points[((i+1)%pn)*4+3]
			if a&RC_CONTOUR_REG_MASK != b&RC_CONTOUR_REG_MASK || a&RC_AREA_BORDER != b&RC_AREA_BORDER {
				simplified = append(simplified, points[i*4], points[i*4+1], points[i*4+2], i)
			}
		}
	}
	if len(simplified) == 0 {
		// An island, seed it with its lower left and upper right vertices.
		ll, ur := 0, 0
		for i := 1; i < pn; i++ {
			x, z := points[i*4], points[i*4+2]
			if x < points[ll*4] || (x == points[ll*4] && z < points[ll*4+2]) {
				ll = i
			}
			if x > points[ur*4] || (x == points[ur*4] && z > points[ur*4+2]) {
				ur = i
			}
		}
		simplified = append(simplified,
			points[ll*4], points[ll*4+1], points[ll*4+2], ll,
			points[ur*4], points[ur*4+1], points[ur*4+2], ur)
	}

	// Insert the farthest raw vertex of a segment until every raw vertex is within maxError.
	maxErrorSq := maxError * maxError
	for i := 0; i < len(simplified)/4; {
		j := (i + 1) % (len(simplified) / 4)
		ax, az, ai := simplified[i*4], simplified[i*4+2], simplified[i*4+3]
		bx, bz, bi := simplified[j*4], simplified[j*4+2], simplified[j*4+3]
		// Walk the raw points in lexicographic order so shared segments simplify the same from both sides.
		var ci, step, end int
		if bx > ax || (bx == ax && bz > az) {
			step, ci, end = 1, (ai+1)%pn, bi
		} else {
			step, ci, end = pn-1, (bi+pn-1)%pn, ai
			ax, bx = bx, ax
			az, bz = bz, az
		}
		far, farDist := -1, float32(0)
		// Portals between regions stay straight, only walls and area borders are refined.
		if flags := points[ci*4+3]; flags&RC_CONTOUR_REG_MASK == 0 || flags&RC_AREA_BORDER != 0 {
			for ; ci != end; ci = (ci + step) % pn {
				if d := distancePtSeg(points[ci*4], points[ci*4+2], ax, az, bx, bz); d > farDist {
					far, farDist = ci, d
				}
			}
		}
		if far != -1 && farDist > maxErrorSq {
			simplified = insertContourVertex(simplified, i+1, points, far)
		} else {
			i++
		}
	}

	if maxEdgeLen > 0 && buildFlags&(RC_CONTOUR_TESS_WALL_EDGES|RC_CONTOUR_TESS_AREA_EDGES) != 0 {
		for i := 0; i < len(simplified)/4; {
			j := (i + 1) % (len(simplified) / 4)
			ax, az, ai := simplified[i*4], simplified[i*4+2], simplified[i*4+3]
			bx, bz, bi := simplified[j*4], simplified[j*4+2], simplified[j*4+3]
			flags := points[((ai+1)%pn)*4+3]
			tess := (buildFlags&RC_CONTOUR_TESS_WALL_EDGES != 0 && flags&RC_CONTOUR_REG_MASK == 0) ||
				(buildFlags&RC_CONTOUR_TESS_AREA_EDGES != 0 && flags&RC_AREA_BORDER != 0)
			split := -1
			if dx, dz := bx-ax, bz-az; tess && dx*dx+dz*dz > maxEdgeLen*maxEdgeLen {
				n := bi - ai
				if bi < ai {
					n += pn
				}
				if n > 1 {
					// Round towards the lexicographically first end so both sides split at the same point.
					if bx > ax || (bx == ax && bz > az) {
						split = (ai + n/2) % pn
					} else {
						split = (ai + (n+1)/2) % pn
					}
				}
			}
			if split != -1 {
				simplified = insertContourVertex(simplified, i+1, points, split)
			} else {
				i++
			}
		}
	}

	for i := 0; i < len(simplified)/4; i++ {
		// Neighbour region and area border come from the following raw point, the border vertex flag from
		// the point itself.
		ri := simplified[i*4+3]
		ni := (ri + 1) % pn
		simplified[i*4+3] = points[ni*4+3]&(RC_CONTOUR_REG_MASK|RC_AREA_BORDER) | points[ri*4+3]&RC_BORDER_VERTEX
	}
	return simplified
}

// insertContourVertex inserts raw point pi of points as simplified vertex at.
func insertContourVertex(simplified []int, at int, points []int, pi int) []int {
	simplified = append(simplified, 0, 0, 0, 0)
	copy(simplified[(at+1)*4:], simplified[at*4:])
	simplified[at*4] = points[pi*4]
	simplified[at*4+1] = points[pi*4+1]
	simplified[at*4+2] = points[pi*4+2]
	simplified[at*4+3] = pi
	return simplified
}

// distancePtSeg is the squared xz distance from (x, z) to segment p-q.
func distancePtSeg(x, z, px, pz, qx, qz int) float32 {
	pqx := float32(qx - px)
	pqz := float32(qz - pz)
	dx := float32(x - px)
	dz := float32(z - pz)
	d := pqx*pqx + pqz*pqz
	t := pqx*dx + pqz*dz
	if d > 0 {
		t /= d
	}
	t = max(0, min(t, 1))
	dx = float32(px) + t*pqx - float32(x)
	dz = float32(pz) + t*pqz - float32(z)
	return dx*dx + dz*dz
}

// removeDegenerateSegments drops vertices equal in xz to their successor, the triangulator cannot cope
// with them.
func removeDegenerateSegments(simplified []int) []int {
	n := len(simplified) / 4
	for i := 0; i < n; i++ {
		j := next(i, n)
		if simplified[i*4] == simplified[j*4] && simplified[i*4+2] == simplified[j*4+2] {
			simplified = append(simplified[:i*4], simplified[i*4+4:]...)
			n--
		}
	}
	return simplified
}

// calcAreaOfPolygon2D is twice the signed xz area, negative for a clockwise outline.
func calcAreaOfPolygon2D(verts []int, nverts int) int {
	area := 0
	for i, j := 0, nverts-1; i < nverts; j, i = i, i+1 {
		area += verts[i*4]*verts[j*4+2] - verts[j*4]*verts[i*4+2]
	}
	return (area + 1) / 2
}

// mergeHoles stitches every clockwise contour into the counter-clockwise outline of the same region.
func mergeHoles(cset *ContourSet, nregions int) error {
	outlines := make([]*Contour, nregions)
	holes := make([][]*contourHole, nregions)
	haveHoles := false
	dupOutline := -1
	for _, cont := range cset.conts {
		if calcAreaOfPolygon2D(cont.verts, cont.nverts) < 0 {
			holes[cont.reg] = append(holes[cont.reg], &contourHole{contour: cont})
			haveHoles = true
		} else if outlines[cont.reg] != nil {
			dupOutline = cont.reg
		} else {
			outlines[cont.reg] = cont
		}
	}
	if !haveHoles {
		return nil
	}
	if dupOutline >= 0 {
		return fmt.Errorf("build contours: multiple outlines for region %d", dupOutline)
	}
	for reg, regionHoles := range holes {
		if len(regionHoles) == 0 {
			continue
		}
		if outlines[reg] == nil {
			// Simplification folded the outline over itself.
			return fmt.Errorf("build contours: bad outline for region %d, simplification is likely too aggressive", reg)
		}
		mergeRegionHoles(outlines[reg], regionHoles)
	}
	return nil
}

func mergeRegionHoles(outline *Contour, holes []*contourHole) {
	maxVerts := outline.nverts
	for _, hole := range holes {
		hole.minx, hole.minz, hole.leftmost = findLeftMostVertex(hole.contour)
		maxVerts += hole.contour.nverts
	}
	sort.Slice(holes, func(a, b int) bool {
		if holes[a].minx == holes[b].minx {
			return holes[a].minz < holes[b].minz
		}
		return holes[a].minx < holes[b].minx
	})
	diags := make([]potentialDiagonal, 0, maxVerts)
	for h, hole := range holes {
		cont := hole.contour
		index := -1
		best := hole.leftmost
		for iter := 0; iter < cont.nverts; iter++ {
			// Candidate outline vertices see the hole vertex inside the cone of their two edges.
			corner := best * 4
			diags = diags[:0]
			for j := 0; j < outline.nverts; j++ {
				if inCone(j, outline.nverts, outline.verts, corner, cont.verts) {
					dx := outline.verts[j*4] - cont.verts[corner]
					dz := outline.verts[j*4+2] - cont.verts[corner+2]
					diags = append(diags, potentialDiagonal{j, dx*dx + dz*dz})
				}
			}
			sort.SliceStable(diags, func(a, b int) bool {
				return diags[a].dist < diags[b].dist
			})
			// The shortest diagonal crossing neither the outline nor the holes left to merge.
			for _, d := range diags {
				pt := d.vert * 4
				crosses := intersectSegContour(pt, corner, d.vert, outline.nverts, outline.verts, outline.verts, cont.verts)
				for k := h; k < len(holes) && !crosses; k++ {
					crosses = intersectSegContour(pt, corner, -1, holes[k].contour.nverts, holes[k].contour.verts, outline.verts, cont.verts)
				}
				if !crosses {
					index = d.vert
					break
				}
			}
			if index != -1 {
				break
			}
			best = (best + 1) % cont.nverts
		}
		if index == -1 {
			glog.Warningf("merge holes: failed to find merge points for hole of %d vertices", cont.nverts)
			continue
		}
		mergeContours(outline, cont, index, best)
	}
}

func findLeftMostVertex(contour *Contour) (minx, minz, leftmost int) {
	minx, minz = contour.verts[0], contour.verts[2]
	for i := 1; i < contour.nverts; i++ {
		x, z := contour.verts[i*4], contour.verts[i*4+2]
		if x < minx || (x == minx && z < minz) {
			minx, minz, leftmost = x, z, i
		}
	}
	return minx, minz, leftmost
}

// intersectSegContour tests segment d0-d1 against the edges of the n vertex contour verts, skipping the
// edges touching vertex skip.
func intersectSegContour(d0, d1, skip, n int, verts, d0verts, d1verts []int) bool {
	var buf [16]int
	copy(buf[0:4], d0verts[d0:d0+4])
	copy(buf[4:8], d1verts[d1:d1+4])
	p := buf[:]
	for k := 0; k < n; k++ {
		k1 := next(k, n)
		if skip == k || skip == k1 {
			continue
		}
		copy(buf[8:12], verts[k*4:k*4+4])
		copy(buf[12:16], verts[k1*4:k1*4+4])
		if vequal(p, 0, 8) || vequal(p, 4, 8) || vequal(p, 0, 12) || vequal(p, 4, 12) {
			continue
		}
		if intersect(p, 0, 4, 8, 12) {
			return true
		}
	}
	return false
}

// inCone reports whether point pj of vertpj lies in the cone at vertex i of the n vertex contour verts.
func inCone(i, n int, verts []int, pj int, vertpj []int) bool {
	const cur, nxt, prv, pt = 0, 4, 8, 12
	var buf [16]int
	copy(buf[cur:cur+4], verts[i*4:i*4+4])
	copy(buf[nxt:nxt+4], verts[next(i, n)*4:next(i, n)*4+4])
	copy(buf[prv:prv+4], verts[prev(i, n)*4:prev(i, n)*4+4])
	copy(buf[pt:pt+4], vertpj[pj:pj+4])
	p := buf[:]
	if leftOn(p, prv, cur, nxt) {
		// Convex corner.
		return left(p, cur, pt, prv) && left(p, pt, cur, nxt)
	}
	return !(leftOn(p, cur, pt, nxt) && leftOn(p, pt, cur, prv))
}

// mergeContours splices cb into ca through the diagonal ca[ia]-cb[ib], leaving cb empty.
func mergeContours(ca, cb *Contour, ia, ib int) {
	verts := make([]int, 0, (ca.nverts+cb.nverts+2)*4)
	for i := 0; i <= ca.nverts; i++ {
		s := ((ia + i) % ca.nverts) * 4
		verts = append(verts, ca.verts[s:s+4]...)
	}
	for i := 0; i <= cb.nverts; i++ {
		s := ((ib + i) % cb.nverts) * 4
		verts = append(verts, cb.verts[s:s+4]...)
	}
	ca.verts, ca.nverts = verts, len(verts)/4
	cb.verts, cb.nverts = nil, 0
}
