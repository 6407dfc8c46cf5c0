package recast

import "math"

// RasterizeTriangles voxelizes nt indexed triangles into solid, areas holds one area id per triangle.
func RasterizeTriangles(verts []float32, tris []int, areas []int, nt int, solid *Heightfield, flagMergeThr int) {
	r := newRasterizer(solid, flagMergeThr)
	for i := 0; i < nt; i++ {
		t := tris[i*3 : i*3+3]
		r.triangle(verts[t[0]*3:t[0]*3+3], verts[t[1]*3:t[1]*3+3], verts[t[2]*3:t[2]*3+3], areas[i])
	}
}

// rasterizer clips triangles against the cell grid of one heightfield. A triangle cut by a row and a column
// keeps at most 7 vertices, the buffers are sized for that and reused across triangles.
type rasterizer struct {
	hf       *Heightfield
	ics, ich float32
	mergeThr int
	poly     []float32
	rest     []float32
	row      []float32
	rowRest  []float32
	cell     []float32
}

func newRasterizer(hf *Heightfield, mergeThr int) *rasterizer {
	buf := func() []float32 { return make([]float32, 0, 7*3) }
	return &rasterizer{
		hf:       hf,
		ics:      1 / hf.cs,
		ich:      1 / hf.ch,
		mergeThr: mergeThr,
		poly:     buf(),
		rest:     buf(),
		row:      buf(),
		rowRest:  buf(),
		cell:     buf(),
	}
}

func (this *rasterizer) triangle(a, b, c []float32, area int) {
	hf := this.hf
	bmin, bmax := hf.bmin, hf.bmax
	tmin := []float32{min(a[0], b[0], c[0]), min(a[1], b[1], c[1]), min(a[2], b[2], c[2])}
	tmax := []float32{max(a[0], b[0], c[0]), max(a[1], b[1], c[1]), max(a[2], b[2], c[2])}
	if !overlapBounds(bmin, bmax, tmin, tmax) {
		return
	}
	height := bmax[1] - bmin[1]
	cs := hf.cs

	// Row -1 swallows the part of the triangle below the field.
	z0 := clamp_i(int(math.Floor(float64((tmin[2]-bmin[2])*this.ics))), -1, hf.height-1)
	z1 := clamp_i(int(math.Floor(float64((tmax[2]-bmin[2])*this.ics))), 0, hf.height-1)

	this.poly = append(append(append(this.poly[:0], a[:3]...), b[:3]...), c[:3]...)
	for z := z0; z <= z1; z++ {
		cz := bmin[2] + float32(z)*cs
		this.row, this.rest = splitPoly(this.poly, cz+cs, 2, this.row, this.rest)
		this.poly, this.rest = this.rest, this.poly
		if len(this.row) < 9 || z < 0 {
			continue
		}
		minX, maxX := this.row[0], this.row[0]
		for i := 3; i < len(this.row); i += 3 {
			minX = min(minX, this.row[i])
			maxX = max(maxX, this.row[i])
		}
		x0 := int(math.Floor(float64((minX - bmin[0]) * this.ics)))
		x1 := int(math.Floor(float64((maxX - bmin[0]) * this.ics)))
		if x1 < 0 || x0 >= hf.width {
			continue
		}
		x0 = clamp_i(x0, -1, hf.width-1)
		x1 = clamp_i(x1, 0, hf.width-1)

		for x := x0; x <= x1; x++ {
			cx := bmin[0] + float32(x)*cs
			this.cell, this.rowRest = splitPoly(this.row, cx+cs, 0, this.cell, this.rowRest)
			this.row, this.rowRest = this.rowRest, this.row
			if len(this.cell) < 9 || x < 0 {
				continue
			}
			smin, smax := this.cell[1], this.cell[1]
			for i := 4; i < len(this.cell); i += 3 {
				smin = min(smin, this.cell[i])
				smax = max(smax, this.cell[i])
			}
			smin -= bmin[1]
			smax -= bmin[1]
			if smax < 0 || smin > height {
				continue
			}
			smin = max(smin, 0)
			smax = min(smax, height)
			ismin := clamp_i(int(math.Floor(float64(smin*this.ich))), 0, RC_SPAN_MAX_HEIGHT)
			ismax := clamp_i(int(math.Ceil(float64(smax*this.ich))), ismin+1, RC_SPAN_MAX_HEIGHT)
			addSpan(hf, x, z, ismin, ismax, area, this.mergeThr)
		}
	}
}

func overlapBounds(amin, amax, bmin, bmax []float32) bool {
	for k := 0; k < 3; k++ {
		if amin[k] > bmax[k] || amax[k] < bmin[k] {
			return false
		}
	}
	return true
}

// splitPoly cuts the convex polygon poly at coordinate at along axis. The part at or below the cut goes to
// lo and the part at or above it to hi; vertices on the cut land in both. lo and hi must not share memory
// with poly.
func splitPoly(poly []float32, at float32, axis int, lo, hi []float32) ([]float32, []float32) {
	lo, hi = lo[:0], hi[:0]
	n := len(poly) / 3
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[j*3:j*3+3], poly[i*3:i*3+3]
		da, db := at-a[axis], at-b[axis]
		if (da >= 0) != (db >= 0) {
			s := da / (da - db)
			p := [3]float32{a[0] + (b[0]-a[0])*s, a[1] + (b[1]-a[1])*s, a[2] + (b[2]-a[2])*s}
			lo = append(lo, p[:]...)
			hi = append(hi, p[:]...)
			if db > 0 {
				lo = append(lo, b...)
			} else if db < 0 {
				hi = append(hi, b...)
			}
			continue
		}
		if db >= 0 {
			lo = append(lo, b...)
			if db != 0 {
				continue
			}
		}
		hi = append(hi, b...)
	}
	return lo, hi
}

// addSpan inserts [smin, smax) into column (x, y), merging every span it touches. The merged span
// keeps the larger area id when its top lies within flagMergeThr of the old top.
func addSpan(hf *Heightfield, x, y, smin, smax, area, flagMergeThr int) {
	idx := x + y*hf.width
	s := &Span{smin: smin, smax: smax, area: area}
	var prev *Span
	cur := hf.spans[idx]
	for cur != nil && cur.smin <= s.smax {
		if cur.smax < s.smin {
			prev, cur = cur, cur.next
			continue
		}
		s.smin = min(s.smin, cur.smin)
		s.smax = max(s.smax, cur.smax)
		if abs_i(s.smax-cur.smax) <= flagMergeThr {
			s.area = max(s.area, cur.area)
		}
		cur = cur.next
		if prev != nil {
			prev.next = cur
		} else {
			hf.spans[idx] = cur
		}
	}
	if prev != nil {
		s.next, prev.next = prev.next, s
	} else {
		s.next, hf.spans[idx] = hf.spans[idx], s
	}
}
