package recast

import "math"

// copy3 copies the point at in[m:m+3] to out[n:n+3].
func copy3(out []float32, n int, in []float32, m int) {
	copy(out[n:n+3], in[m:m+3])
}

func vmin(a []float32, b []float32, i int) {
	for k := range a[:3] {
		a[k] = min(a[k], b[i+k])
	}
}

func vmax(a []float32, b []float32, i int) {
	for k := range a[:3] {
		a[k] = max(a[k], b[i+k])
	}
}

// sub stores verts[i:] - verts[j:] in e0.
func sub(e0 []float32, verts []float32, i int, j int) {
	for k := 0; k < 3; k++ {
		e0[k] = verts[i+k] - verts[j+k]
	}
}

// sub3 stores p - verts[j:] in e0.
func sub3(e0 []float32, p []float32, verts []float32, j int) {
	for k := 0; k < 3; k++ {
		e0[k] = p[k] - verts[j+k]
	}
}

func cross(dest, v1, v2 []float32) {
	x := v1[1]*v2[2] - v1[2]*v2[1]
	y := v1[2]*v2[0] - v1[0]*v2[2]
	z := v1[0]*v2[1] - v1[1]*v2[0]
	dest[0], dest[1], dest[2] = x, y, z
}

func dot(v1, v2 []float32) float32 {
	return v1[0]*v2[0] + v1[1]*v2[1] + v1[2]*v2[2]
}

// normalize scales v to unit length, a zero vector is left alone.
func normalize(v []float32) {
	l := float32(math.Sqrt(float64(dot(v, v))))
	if l == 0 {
		return
	}
	for k := 0; k < 3; k++ {
		v[k] /= l
	}
}
