package dynamic

import (
	"math"

	"github.com/cjmxp/recast.go/recast"
	"github.com/go-gl/mathgl/mgl32"
)

// Collider is a solid volume stamped into tile heightfields before a rebuild.
type Collider interface {
	/** World bounds [minx, miny, minz, maxx, maxy, maxz]. */
	Bounds() []float32
	Rasterize(hf *recast.Heightfield)
}

type colliderBase struct {
	area         int
	flagMergeThr int
	bounds       []float32
}

func (this *colliderBase) Bounds() []float32 {
	return this.bounds
}

func pointBounds(p mgl32.Vec3) []float32 {
	return []float32{p[0], p[1], p[2], p[0], p[1], p[2]}
}

func segmentBounds(start, end mgl32.Vec3, radius float32) []float32 {
	if radius <= 0 {
		radius = 0
	}
	return []float32{
		min(start[0], end[0]) - radius, min(start[1], end[1]) - radius, min(start[2], end[2]) - radius,
		max(start[0], end[0]) + radius, max(start[1], end[1]) + radius, max(start[2], end[2]) + radius,
	}
}

type BoxCollider struct {
	colliderBase
	center    mgl32.Vec3
	halfEdges [3]mgl32.Vec3
}

// NewBoxCollider makes an oriented box. The half edges are expected to be orthogonal.
func NewBoxCollider(center mgl32.Vec3, halfEdges [3]mgl32.Vec3, area int, flagMergeThr int) *BoxCollider {
	c := &BoxCollider{center: center, halfEdges: halfEdges}
	c.area = area
	c.flagMergeThr = flagMergeThr
	c.bounds = recast.BoxBounds(center[:], c.halfEdgeSlices())
	return c
}

func (this *BoxCollider) halfEdgeSlices() [][]float32 {
	return [][]float32{this.halfEdges[0][:], this.halfEdges[1][:], this.halfEdges[2][:]}
}

func (this *BoxCollider) Rasterize(hf *recast.Heightfield) {
	recast.RasterizeBox(hf, this.center[:], this.halfEdgeSlices(), this.area, this.flagMergeThr)
}

// GetBoxColliderHalfEdges builds the three half edges of a box whose local y axis is up and local z axis
// is forward, scaled by the half extents.
func GetBoxColliderHalfEdges(up, forward, extent mgl32.Vec3) [3]mgl32.Vec3 {
	var halfEdges [3]mgl32.Vec3
	if up.Len() == 0 || forward.Len() == 0 {
		return halfEdges
	}
	u := up.Normalize()
	f := forward.Normalize()
	side := u.Cross(f)
	if side.Len() < 1e-6 {
		return halfEdges
	}
	side = side.Normalize()
	// Re-derive forward so the frame stays orthogonal when up and forward are skewed.
	f = side.Cross(u)
	halfEdges[0] = side.Mul(extent[0])
	halfEdges[1] = u.Mul(extent[1])
	halfEdges[2] = f.Mul(extent[2])
	return halfEdges
}

type SphereCollider struct {
	colliderBase
	center mgl32.Vec3
	radius float32
}

func NewSphereCollider(center mgl32.Vec3, radius float32, area int, flagMergeThr int) *SphereCollider {
	c := &SphereCollider{center: center, radius: radius}
	c.area = area
	c.flagMergeThr = flagMergeThr
	c.bounds = segmentBounds(center, center, radius)
	return c
}

func (this *SphereCollider) Rasterize(hf *recast.Heightfield) {
	recast.RasterizeSphere(hf, this.center[:], this.radius, this.area, this.flagMergeThr)
}

type CapsuleCollider struct {
	colliderBase
	start  mgl32.Vec3
	end    mgl32.Vec3
	radius float32
}

func NewCapsuleCollider(start, end mgl32.Vec3, radius float32, area int, flagMergeThr int) *CapsuleCollider {
	c := &CapsuleCollider{start: start, end: end, radius: radius}
	c.area = area
	c.flagMergeThr = flagMergeThr
	c.bounds = segmentBounds(start, end, radius)
	return c
}

func (this *CapsuleCollider) Rasterize(hf *recast.Heightfield) {
	recast.RasterizeCapsule(hf, this.start[:], this.end[:], this.radius, this.area, this.flagMergeThr)
}

type CylinderCollider struct {
	colliderBase
	start  mgl32.Vec3
	end    mgl32.Vec3
	radius float32
}

func NewCylinderCollider(start, end mgl32.Vec3, radius float32, area int, flagMergeThr int) *CylinderCollider {
	c := &CylinderCollider{start: start, end: end, radius: radius}
	c.area = area
	c.flagMergeThr = flagMergeThr
	c.bounds = segmentBounds(start, end, radius)
	return c
}

func (this *CylinderCollider) Rasterize(hf *recast.Heightfield) {
	recast.RasterizeCylinder(hf, this.start[:], this.end[:], this.radius, this.area, this.flagMergeThr)
}

// CompositeCollider rasterizes its children in insertion order. Overlaps follow the span merge rules, nothing
// is subtracted.
type CompositeCollider struct {
	children []Collider
	bounds   []float32
}

func NewCompositeCollider(children ...Collider) *CompositeCollider {
	c := &CompositeCollider{children: children}
	for _, child := range children {
		b := child.Bounds()
		if c.bounds == nil {
			c.bounds = append([]float32{}, b...)
			continue
		}
		for k := 0; k < 3; k++ {
			c.bounds[k] = min(c.bounds[k], b[k])
			c.bounds[3+k] = max(c.bounds[3+k], b[3+k])
		}
	}
	if c.bounds == nil {
		c.bounds = pointBounds(mgl32.Vec3{})
	}
	return c
}

func (this *CompositeCollider) Bounds() []float32 {
	return this.bounds
}

func (this *CompositeCollider) Rasterize(hf *recast.Heightfield) {
	for _, child := range this.children {
		child.Rasterize(hf)
	}
}

func (this *CompositeCollider) Children() []Collider {
	return this.children
}

// TrimeshCollider rasterizes its triangles as surfaces, every triangle gets the collider area.
type TrimeshCollider struct {
	colliderBase
	vertices  []float32
	triangles []int
}

func NewTrimeshCollider(vertices []float32, triangles []int, area int, flagMergeThr int) *TrimeshCollider {
	c := &TrimeshCollider{vertices: vertices, triangles: triangles}
	c.area = area
	c.flagMergeThr = flagMergeThr
	c.bounds = vertexBounds(vertices)
	return c
}

func (this *TrimeshCollider) Rasterize(hf *recast.Heightfield) {
	nt := len(this.triangles) / 3
	areas := make([]int, nt)
	for i := range areas {
		areas[i] = this.area
	}
	recast.RasterizeTriangles(this.vertices, this.triangles, areas, nt, hf, this.flagMergeThr)
}

// ConvexTrimeshCollider fills the volume enclosed by a closed convex triangle hull.
type ConvexTrimeshCollider struct {
	TrimeshCollider
}

func NewConvexTrimeshCollider(vertices []float32, triangles []int, area int, flagMergeThr int) *ConvexTrimeshCollider {
	return &ConvexTrimeshCollider{*NewTrimeshCollider(vertices, triangles, area, flagMergeThr)}
}

func (this *ConvexTrimeshCollider) Rasterize(hf *recast.Heightfield) {
	recast.RasterizeConvex(hf, this.vertices, this.triangles, this.area, this.flagMergeThr)
}

func vertexBounds(vertices []float32) []float32 {
	if len(vertices) < 3 {
		return pointBounds(mgl32.Vec3{})
	}
	bounds := []float32{
		math.MaxFloat32, math.MaxFloat32, math.MaxFloat32,
		-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32,
	}
	for i := 0; i+2 < len(vertices); i += 3 {
		for k := 0; k < 3; k++ {
			bounds[k] = min(bounds[k], vertices[i+k])
			bounds[3+k] = max(bounds[3+k], vertices[i+k])
		}
	}
	return bounds
}

func overlapsXZ(a, b []float32) bool {
	return a[0] <= b[3] && a[3] >= b[0] && a[2] <= b[5] && a[5] >= b[2]
}
