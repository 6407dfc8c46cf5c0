package recast

import "math"

func CalcGridSize(bmin []float32, bmax []float32, cs float32) (w, h int) {
	return int((bmax[0]-bmin[0])/cs + 0.5), int((bmax[2]-bmin[2])/cs + 0.5)
}

func CalcTileCount(bmin []float32, bmax []float32, cs float32, tileSizeX, tileSizeZ int) (w, h int) {
	gw, gh := CalcGridSize(bmin, bmax, cs)
	return (gw + tileSizeX - 1) / tileSizeX, (gh + tileSizeZ - 1) / tileSizeZ
}

// MarkWalkableTriangles returns one area per triangle: area when the face normal is within
// walkableSlopeAngle degrees of up, RC_NULL_AREA otherwise.
func MarkWalkableTriangles(walkableSlopeAngle float32, verts []float32, tris []int, nt int, area int) []int {
	areas := make([]int, nt)
	walkableThr := float32(math.Cos(float64(walkableSlopeAngle) * math.Pi / 180))
	var e0, e1, norm [3]float32
	for i := range areas {
		t := tris[i*3 : i*3+3]
		sub(e0[:], verts, t[1]*3, t[0]*3)
		sub(e1[:], verts, t[2]*3, t[0]*3)
		cross(norm[:], e0[:], e1[:])
		normalize(norm[:])
		if norm[1] > walkableThr {
			areas[i] = area
		}
	}
	return areas
}

// BuildCompactHeightfield turns the open space above every walkable span of hf into a compact span and
// links each one to the neighbour span an agent of walkableHeight can step to within walkableClimb.
func BuildCompactHeightfield(walkableHeight int, walkableClimb int, hf *Heightfield) *CompactHeightfield {
	w, h := hf.width, hf.height
	n := 0
	for _, s := range hf.spans {
		for ; s != nil; s = s.next {
			if s.area != RC_NULL_AREA {
				n++
			}
		}
	}
	chf := &CompactHeightfield{
		width:          w,
		height:         h,
		spanCount:      n,
		walkableHeight: walkableHeight,
		walkableClimb:  walkableClimb,
		borderSize:     hf.borderSize,
		bmin:           append([]float32{}, hf.bmin[:3]...),
		bmax:           append([]float32{}, hf.bmax[:3]...),
		cs:             hf.cs,
		ch:             hf.ch,
		cells:          make([]CompactCell, w*h),
		spans:          make([]CompactSpan, 0, n),
		areas:          make([]int, 0, n),
	}
	chf.bmax[1] += float32(walkableHeight) * hf.ch

	for c, s := range hf.spans {
		cell := &chf.cells[c]
		cell.index = len(chf.spans)
		for ; s != nil; s = s.next {
			if s.area == RC_NULL_AREA {
				continue
			}
			chf.spans = append(chf.spans, CompactSpan{
				y: clamp_i(s.smax, 0, 0xffff),
				h: clamp_i(s.ceiling()-s.smax, 0, 0xff),
			})
			chf.areas = append(chf.areas, s.area)
			cell.count++
		}
		if cell.count == 0 {
			cell.index = 0
		}
	}

	chf.eachSpan(func(x, z, i int) {
		s := &chf.spans[i]
		for dir := 0; dir < 4; dir++ {
			SetCon(s, dir, RC_NOT_CONNECTED)
			nx, nz := x+GetDirOffsetX(dir), z+GetDirOffsetY(dir)
			if nx < 0 || nz < 0 || nx >= w || nz >= h {
				continue
			}
			// Link the first neighbour span whose shared gap fits the agent.
			nc := &chf.cells[nx+nz*w]
			for k := nc.index; k < nc.index+nc.count; k++ {
				ns := &chf.spans[k]
				gap := min(s.y+s.h, ns.y+ns.h) - max(s.y, ns.y)
				if gap < walkableHeight || abs_i(ns.y-s.y) > walkableClimb {
					continue
				}
				if layer := k - nc.index; layer <= MAX_LAYERS {
					SetCon(s, dir, layer)
					break
				}
			}
		}
	})
	return chf
}
