package detour

import "math"

// Squared distance under which two points are treated as the same corner.
var thr float32 = sqr(1.0 / 16384.0)

// vCopy copies the point at in[i:i+3] into out.
func vCopy(out []float32, in []float32, i int) {
	copy(out[:3], in[i:i+3])
}

func vMin(out []float32, in []float32, i int) {
	for k := 0; k < 3; k++ {
		out[k] = min(out[k], in[i+k])
	}
}

func vMax(out []float32, in []float32, i int) {
	for k := 0; k < 3; k++ {
		out[k] = max(out[k], in[i+k])
	}
}

func clamp_f(v float32, lo float32, hi float32) float32 {
	return max(lo, min(v, hi))
}

func abs_f(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

func sqr(a float32) float32 {
	return a * a
}

// triArea2D is twice the signed xz area of triangle abc, positive when c lies right of ab.
func triArea2D(a, b, c []float32) float32 {
	return (c[0]-a[0])*(b[2]-a[2]) - (b[0]-a[0])*(c[2]-a[2])
}

func overlapQuantBounds(amin, amax, bmin, bmax *[3]int) bool {
	for k := 0; k < 3; k++ {
		if amin[k] > bmax[k] || amax[k] < bmin[k] {
			return false
		}
	}
	return true
}

func overlapBounds(amin []float32, amax []float32, bmin []float32, bmax []float32) bool {
	for k := 0; k < 3; k++ {
		if amin[k] > bmax[k] || amax[k] < bmin[k] {
			return false
		}
	}
	return true
}

func vSub(v1 []float32, v2 []float32) []float32 {
	return []float32{v1[0] - v2[0], v1[1] - v2[1], v1[2] - v2[2]}
}

func vAdd(v1 []float32, v2 []float32) []float32 {
	return []float32{v1[0] + v2[0], v1[1] + v2[1], v1[2] + v2[2]}
}

// vLerp interpolates from verts[v1:] toward verts[v2:] by t.
func vLerp(verts []float32, v1 int, v2 int, t float32) []float32 {
	return vLerp3(verts[v1:v1+3], verts[v2:v2+3], t)
}

func vLerp3(v1 []float32, v2 []float32, t float32) []float32 {
	return []float32{v1[0] + (v2[0]-v1[0])*t, v1[1] + (v2[1]-v1[1])*t, v1[2] + (v2[2]-v1[2])*t}
}

// vDist is the distance from v1 to the point at verts[i:i+3].
func vDist(v1 []float32, verts []float32, i int) float32 {
	return float32(math.Sqrt(float64(vDistSqr(v1, verts[i:i+3]))))
}

func vDistSqr(v1, v2 []float32) float32 {
	dx, dy, dz := v2[0]-v1[0], v2[1]-v1[1], v2[2]-v1[2]
	return dx*dx + dy*dy + dz*dz
}

func vLenSqr(v []float32) float32 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

// vDot2D is the dot product on the xz plane.
func vDot2D(u []float32, v []float32) float32 {
	return u[0]*v[0] + u[2]*v[2]
}

func vperpXZ(a, b []float32) float32 {
	return a[0]*b[2] - a[2]*b[0]
}

func vEqual(p0, p1 []float32) bool {
	return vDistSqr(p0, p1) < thr
}

func oppositeTile(side int) int {
	return (side + 4) & 0x7
}

// intersectSegSeg2D intersects segments ap-aq and bp-bq on the xz plane and returns the parameters along
// each. Parallel segments do not intersect.
func intersectSegSeg2D(ap []float32, aq []float32, bp []float32, bq []float32) (bool, float32, float32) {
	u := vSub(aq, ap)
	v := vSub(bq, bp)
	w := vSub(ap, bp)
	d := vperpXZ(u, v)
	if abs_f(d) < 1e-6 {
		return false, 0, 0
	}
	return true, vperpXZ(v, w) / d, vperpXZ(u, w) / d
}

// distancePtPolyEdgesSqr fills ed and et with the squared distance and parameter from pt to each edge
// and reports whether pt is inside the polygon on the xz plane. Edge j runs from vertex j to j+1.
func distancePtPolyEdgesSqr(pt []float32, verts []float32, nverts int, ed []float32, et []float32) bool {
	inside := false
	for i, j := 0, nverts-1; i < nverts; j, i = i, i+1 {
		vi, vj := verts[i*3:i*3+3], verts[j*3:j*3+3]
		if (vi[2] > pt[2]) != (vj[2] > pt[2]) && pt[0] < (vj[0]-vi[0])*(pt[2]-vi[2])/(vj[2]-vi[2])+vi[0] {
			inside = !inside
		}
		ed[j], et[j] = distancePtSegSqr2D3(pt, vj, vi)
	}
	return inside
}

// distancePtSegSqr2D3 returns the squared xz distance from pt to segment pq and the clamped parameter
// of the closest point.
func distancePtSegSqr2D3(pt []float32, p []float32, q []float32) (float32, float32) {
	pqx, pqz := q[0]-p[0], q[2]-p[2]
	t := pqx*(pt[0]-p[0]) + pqz*(pt[2]-p[2])
	if d := pqx*pqx + pqz*pqz; d > 0 {
		t /= d
	}
	t = clamp_f(t, 0, 1)
	dx := p[0] + t*pqx - pt[0]
	dz := p[2] + t*pqz - pt[2]
	return dx*dx + dz*dz, t
}

func distancePtSegSqr2D(pt []float32, verts []float32, p int, q int) (float32, float32) {
	return distancePtSegSqr2D3(pt, verts[p:p+3], verts[q:q+3])
}

// closestHeightPointTriangle interpolates the height of triangle abc under p. Points slightly outside
// the triangle still hit so samples on shared edges resolve.
func closestHeightPointTriangle(p []float32, a []float32, b []float32, c []float32) (bool, float32) {
	v0 := vSub(c, a)
	v1 := vSub(b, a)
	v2 := vSub(p, a)
	dot00, dot01, dot02 := vDot2D(v0, v0), vDot2D(v0, v1), vDot2D(v0, v2)
	dot11, dot12 := vDot2D(v1, v1), vDot2D(v1, v2)
	inv := 1 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * inv
	v := (dot00*dot12 - dot01*dot02) * inv
	if u < -EPS || v < -EPS || u+v > 1+EPS {
		return false, 0
	}
	return true, a[1] + v0[1]*u + v1[1]*v
}
