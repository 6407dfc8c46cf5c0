package recast

import "testing"

func newPlaneBuilder() (*RecastBuilder, *InputGeom) {
	cfg := &RecastConfig{}
	cfg.Init(0.3, 0.2, 2, 0.6, 0.9, 45, 2, 20, 12, 1.3, 6, 6, 1, 32, 32)
	geom := NewInputGeom([]float32{0, 0, 0, 10, 0, 0, 10, 0, 10, 0, 0, 10}, []int{0, 2, 1, 0, 3, 2})
	return NewRecastBuilder(cfg), geom
}

func TestBuildFlatPlane(t *testing.T) {
	builder, geom := newPlaneBuilder()
	bcfg := &RecastBuilderConfig{}
	bcfg.Init(builder.GetConfig(), geom.GetMeshBoundsMin(), geom.GetMeshBoundsMax(), 0, 0, false)
	solid := builder.Voxelize(geom, bcfg)
	if solid.SpanCount() != bcfg.GetWidth()*bcfg.GetHeight() {
		t.Fatalf("%d spans for a %dx%d plane", solid.SpanCount(), bcfg.GetWidth(), bcfg.GetHeight())
	}
	res, err := builder.Build(solid)
	if err != nil {
		t.Fatal(err)
	}
	if res.IsEmpty() {
		t.Fatal("flat plane built no polygons")
	}
	pmesh := res.GetMesh()
	verts := pmesh.Get_verts()
	for i := 0; i < pmesh.Get_nverts(); i++ {
		x, z := verts[i*3], verts[i*3+2]
		if x < 0 || z < 0 || x > bcfg.GetWidth() || z > bcfg.GetHeight() {
			t.Errorf("vertex %d at (%d, %d) outside the field", i, x, z)
		}
	}
	dmesh := res.GetMeshDetail()
	if dmesh == nil || dmesh.Get_nmeshes() != pmesh.Get_npolys() {
		t.Fatalf("detail mesh does not match %d polys", pmesh.Get_npolys())
	}
}

func TestBuildSteepGeometryIsEmpty(t *testing.T) {
	builder, _ := newPlaneBuilder()
	// A ramp rising 10 units over 1 unit of depth.
	wall := NewInputGeom([]float32{0, 0, 0, 10, 0, 0, 0, 10, 1, 10, 10, 1}, []int{0, 2, 1, 1, 2, 3})
	bcfg := &RecastBuilderConfig{}
	bcfg.Init(builder.GetConfig(), wall.GetMeshBoundsMin(), wall.GetMeshBoundsMax(), 0, 0, false)
	res, err := builder.Build(builder.Voxelize(wall, bcfg))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsEmpty() {
		t.Fatalf("steep ramp built %d polys", res.GetMesh().Get_npolys())
	}
}
