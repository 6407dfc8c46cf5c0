package recast

// InputGeom is an indexed triangle soup with its bounds and a lazily built chunky mesh for tile queries.
type InputGeom struct {
	vertices []float32
	faces    []int
	bmin     []float32
	bmax     []float32
	chunky   *ChunkyTriMesh
}

const chunkyTrisPerChunk = 256

// NewInputGeom copies the vertices and triangle indices and computes their bounds.
func NewInputGeom(vertexPositions []float32, meshFaces []int) *InputGeom {
	geom := &InputGeom{
		vertices: append([]float32{}, vertexPositions...),
		faces:    append([]int{}, meshFaces...),
		bmin:     make([]float32, 3),
		bmax:     make([]float32, 3),
	}
	if len(geom.vertices) < 3 {
		return geom
	}
	copy3(geom.bmin, 0, geom.vertices, 0)
	copy3(geom.bmax, 0, geom.vertices, 0)
	for i := 3; i+3 <= len(geom.vertices); i += 3 {
		vmin(geom.bmin, geom.vertices, i)
		vmax(geom.bmax, geom.vertices, i)
	}
	return geom
}

func (this *InputGeom) GetChunkyMesh() *ChunkyTriMesh {
	if this.chunky == nil {
		this.chunky = NewChunkyTriMesh(this.vertices, this.faces, chunkyTrisPerChunk)
	}
	return this.chunky
}
func (this *InputGeom) GetMeshBoundsMin() []float32 {
	return append([]float32{}, this.bmin...)
}

func (this *InputGeom) GetMeshBoundsMax() []float32 {
	return append([]float32{}, this.bmax...)
}

func (this *InputGeom) GetVerts() []float32 {
	return this.vertices
}
func (this *InputGeom) GetTris() []int {
	return this.faces
}
