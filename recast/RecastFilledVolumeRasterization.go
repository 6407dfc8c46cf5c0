package recast

import "math"

const volumeEps float32 = 1e-6

// RasterizeSphere stamps a solid sphere into hf.
func RasterizeSphere(hf *Heightfield, center []float32, radius float32, area int, flagMergeThr int) {
	if radius <= 0 {
		return
	}
	bounds := []float32{
		center[0] - radius, center[1] - radius, center[2] - radius,
		center[0] + radius, center[1] + radius, center[2] + radius,
	}
	rasterizeFilledShape(hf, bounds, area, flagMergeThr, func(px, pz float32) (float32, float32, bool) {
		return intersectSphere(center, radius, px, pz)
	})
}

// RasterizeCapsule stamps the set of points within radius of segment start-end.
func RasterizeCapsule(hf *Heightfield, start []float32, end []float32, radius float32, area int, flagMergeThr int) {
	if radius <= 0 {
		return
	}
	bounds := segmentBounds(start, end, radius)
	axis := []float32{end[0] - start[0], end[1] - start[1], end[2] - start[2]}
	rasterizeFilledShape(hf, bounds, area, flagMergeThr, func(px, pz float32) (float32, float32, bool) {
		ymin, ymax := float32(math.MaxFloat32), float32(-math.MaxFloat32)
		hit := false
		if y1, y2, ok := intersectSphere(start, radius, px, pz); ok {
			ymin, ymax, hit = min(ymin, y1), max(ymax, y2), true
		}
		if y1, y2, ok := intersectSphere(end, radius, px, pz); ok {
			ymin, ymax, hit = min(ymin, y1), max(ymax, y2), true
		}
		if y1, y2, ok := intersectCylinder(start, axis, radius, px, pz); ok {
			ymin, ymax, hit = min(ymin, y1), max(ymax, y2), true
		}
		return ymin, ymax, hit
	})
}

// RasterizeCylinder stamps a capped cylinder with the caps perpendicular to start-end.
func RasterizeCylinder(hf *Heightfield, start []float32, end []float32, radius float32, area int, flagMergeThr int) {
	if radius <= 0 {
		return
	}
	bounds := segmentBounds(start, end, radius)
	axis := []float32{end[0] - start[0], end[1] - start[1], end[2] - start[2]}
	rasterizeFilledShape(hf, bounds, area, flagMergeThr, func(px, pz float32) (float32, float32, bool) {
		return intersectCylinder(start, axis, radius, px, pz)
	})
}

// RasterizeBox stamps an oriented box given by its center and three orthogonal half edge vectors.
func RasterizeBox(hf *Heightfield, center []float32, halfEdges [][]float32, area int, flagMergeThr int) {
	var lenSq [3]float32
	for i := 0; i < 3; i++ {
		lenSq[i] = dot(halfEdges[i], halfEdges[i])
		if lenSq[i] <= 0 {
			return
		}
	}
	bounds := BoxBounds(center, halfEdges)
	rasterizeFilledShape(hf, bounds, area, flagMergeThr, func(px, pz float32) (float32, float32, bool) {
		tmin, tmax := float32(-math.MaxFloat32), float32(math.MaxFloat32)
		for i := 0; i < 3; i++ {
			h := halfEdges[i]
			k := (px-center[0])*h[0] + (pz-center[2])*h[2]
			// -|h|^2 <= k + h.y*t <= |h|^2
			var ok bool
			if tmin, tmax, ok = clipSlab(-lenSq[i]-k, lenSq[i]-k, h[1], tmin, tmax); !ok {
				return 0, 0, false
			}
		}
		return center[1] + tmin, center[1] + tmax, true
	})
}

// RasterizeConvex stamps the closed convex hull described by triangles.
func RasterizeConvex(hf *Heightfield, vertices []float32, triangles []int, area int, flagMergeThr int) {
	nv := len(vertices) / 3
	if nv < 4 || len(triangles) < 12 {
		return
	}
	bounds := []float32{vertices[0], vertices[1], vertices[2], vertices[0], vertices[1], vertices[2]}
	centroid := make([]float32, 3)
	for i := 0; i < nv; i++ {
		for k := 0; k < 3; k++ {
			bounds[k] = min(bounds[k], vertices[i*3+k])
			bounds[3+k] = max(bounds[3+k], vertices[i*3+k])
			centroid[k] += vertices[i*3+k] / float32(nv)
		}
	}
	planes := make([]float32, 0, len(triangles)/3*4)
	e0 := make([]float32, 3)
	e1 := make([]float32, 3)
	n := make([]float32, 3)
	for i := 0; i+2 < len(triangles); i += 3 {
		a, b, c := triangles[i]*3, triangles[i+1]*3, triangles[i+2]*3
		sub(e0, vertices, b, a)
		sub(e1, vertices, c, a)
		cross(n, e0, e1)
		if dot(n, n) < volumeEps*volumeEps {
			continue
		}
		normalize(n)
		d := n[0]*vertices[a] + n[1]*vertices[a+1] + n[2]*vertices[a+2]
		// Orient every plane so that the centroid is on the inner side.
		if dot(n, centroid) > d {
			n[0], n[1], n[2], d = -n[0], -n[1], -n[2], -d
		}
		planes = append(planes, n[0], n[1], n[2], d)
	}
	rasterizeFilledShape(hf, bounds, area, flagMergeThr, func(px, pz float32) (float32, float32, bool) {
		ymin, ymax := float32(-math.MaxFloat32), float32(math.MaxFloat32)
		for p := 0; p < len(planes); p += 4 {
			// n.x*px + n.y*y + n.z*pz <= d
			var ok bool
			if ymin, ymax, ok = clipSlab(float32(-math.MaxFloat32), planes[p+3]-planes[p]*px-planes[p+2]*pz, planes[p+1], ymin, ymax); !ok {
				return 0, 0, false
			}
		}
		return ymin, ymax, true
	})
}

// BoxBounds returns the AABB of the 8 corners center +/- e0 +/- e1 +/- e2.
func BoxBounds(center []float32, halfEdges [][]float32) []float32 {
	bounds := []float32{
		float32(math.MaxFloat32), float32(math.MaxFloat32), float32(math.MaxFloat32),
		float32(-math.MaxFloat32), float32(-math.MaxFloat32), float32(-math.MaxFloat32),
	}
	for i := 0; i < 8; i++ {
		s0 := float32(1 - 2*(i&1))
		s1 := float32(1 - 2*((i>>1)&1))
		s2 := float32(1 - 2*((i>>2)&1))
		for k := 0; k < 3; k++ {
			v := center[k] + s0*halfEdges[0][k] + s1*halfEdges[1][k] + s2*halfEdges[2][k]
			bounds[k] = min(bounds[k], v)
			bounds[3+k] = max(bounds[3+k], v)
		}
	}
	return bounds
}

func segmentBounds(start, end []float32, radius float32) []float32 {
	return []float32{
		min(start[0], end[0]) - radius, min(start[1], end[1]) - radius, min(start[2], end[2]) - radius,
		max(start[0], end[0]) + radius, max(start[1], end[1]) + radius, max(start[2], end[2]) + radius,
	}
}

// clipSlab intersects [tmin, tmax] with {t : lo <= k*t <= hi}.
func clipSlab(lo, hi, k float32, tmin, tmax float32) (float32, float32, bool) {
	if float32(math.Abs(float64(k))) < volumeEps {
		if lo > 0 || hi < 0 {
			return 0, 0, false
		}
		return tmin, tmax, true
	}
	t1, t2 := lo/k, hi/k
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	tmin = max(tmin, t1)
	tmax = min(tmax, t2)
	return tmin, tmax, tmin <= tmax
}

func intersectSphere(center []float32, radius float32, px, pz float32) (float32, float32, bool) {
	dx := px - center[0]
	dz := pz - center[2]
	d := radius*radius - dx*dx - dz*dz
	if d < 0 {
		return 0, 0, false
	}
	h := float32(math.Sqrt(float64(d)))
	return center[1] - h, center[1] + h, true
}

// intersectCylinder intersects the vertical line through (px, pz) with the finite cylinder
// start + s*axis, s in [0, 1].
func intersectCylinder(start, axis []float32, radius float32, px, pz float32) (float32, float32, bool) {
	l2 := dot(axis, axis)
	if l2 < volumeEps {
		return 0, 0, false
	}
	wx := px - start[0]
	wz := pz - start[2]
	ay := axis[1]
	c0 := wx*axis[0] + wz*axis[2]
	// |w|^2 - (w.a)^2/|a|^2 <= r^2 with w = (wx, t, wz), as A*t^2 + B*t + C <= 0.
	a := 1 - ay*ay/l2
	b := -2 * c0 * ay / l2
	c := wx*wx + wz*wz - c0*c0/l2 - radius*radius
	tmin, tmax := float32(-math.MaxFloat32), float32(math.MaxFloat32)
	if a < volumeEps {
		if c > 0 {
			return 0, 0, false
		}
	} else {
		disc := b*b - 4*a*c
		if disc < 0 {
			return 0, 0, false
		}
		sq := float32(math.Sqrt(float64(disc)))
		tmin = (-b - sq) / (2 * a)
		tmax = (-b + sq) / (2 * a)
	}
	// Between the caps: 0 <= c0 + ay*t <= |a|^2.
	tmin, tmax, ok := clipSlab(-c0, l2-c0, ay, tmin, tmax)
	if !ok {
		return 0, 0, false
	}
	return start[1] + tmin, start[1] + tmax, true
}

func rasterizeFilledShape(hf *Heightfield, bounds []float32, area int, flagMergeThr int, intersect func(px, pz float32) (float32, float32, bool)) {
	// Shapes may rise above hf.bmax.y, only the xz footprint and the floor clip them.
	if bounds[3] < hf.bmin[0] || bounds[4] < hf.bmin[1] || bounds[5] < hf.bmin[2] ||
		bounds[0] > hf.bmax[0] || bounds[2] > hf.bmax[2] {
		return
	}
	ics := 1.0 / hf.cs
	ich := 1.0 / hf.ch
	xMin := clamp_i(int(math.Floor(float64((bounds[0]-hf.bmin[0])*ics))), 0, hf.width-1)
	zMin := clamp_i(int(math.Floor(float64((bounds[2]-hf.bmin[2])*ics))), 0, hf.height-1)
	xMax := clamp_i(int(math.Floor(float64((bounds[3]-hf.bmin[0])*ics))), 0, hf.width-1)
	zMax := clamp_i(int(math.Floor(float64((bounds[5]-hf.bmin[2])*ics))), 0, hf.height-1)
	for x := xMin; x <= xMax; x++ {
		px := hf.bmin[0] + (float32(x)+0.5)*hf.cs
		for z := zMin; z <= zMax; z++ {
			pz := hf.bmin[2] + (float32(z)+0.5)*hf.cs
			y1, y2, ok := intersect(px, pz)
			if !ok {
				continue
			}
			y1 -= hf.bmin[1]
			y2 -= hf.bmin[1]
			if y2 < 0 {
				continue
			}
			y1 = max(y1, 0)
			ismin := clamp_i(int(math.Floor(float64(y1*ich))), 0, RC_SPAN_MAX_HEIGHT)
			if ismin >= RC_SPAN_MAX_HEIGHT {
				continue
			}
			ismax := clamp_i(int(math.Ceil(float64(y2*ich))), ismin+1, RC_SPAN_MAX_HEIGHT)
			addSpan(hf, x, z, ismin, ismax, area, flagMergeThr)
		}
	}
}
