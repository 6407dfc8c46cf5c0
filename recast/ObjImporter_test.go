package recast

import (
	"errors"
	"strings"
	"testing"
)

func TestObjImporterFansQuads(t *testing.T) {
	src := `# floor
v 0 0 0
v 10 0 0
v 10 0 10
v 0 0 10
vn 0 1 0
f 1/1/1 2/2/1 3/3/1 4/4/1
`
	geom, err := (&ObjImporter{}).Load(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if n := len(geom.GetVerts()); n != 12 {
		t.Fatalf("verts %d, want 12", n)
	}
	want := []int{0, 1, 2, 0, 2, 3}
	tris := geom.GetTris()
	if len(tris) != len(want) {
		t.Fatalf("tris %v, want %v", tris, want)
	}
	for i := range want {
		if tris[i] != want[i] {
			t.Fatalf("tris %v, want %v", tris, want)
		}
	}
	bmax := geom.GetMeshBoundsMax()
	if bmax[0] != 10 || bmax[2] != 10 {
		t.Errorf("bounds max %v", bmax)
	}
}

func TestObjImporterNegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 0 1\nf -3 -2 -1\n"
	geom, err := (&ObjImporter{}).Load(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	tris := geom.GetTris()
	if len(tris) != 3 || tris[0] != 0 || tris[1] != 1 || tris[2] != 2 {
		t.Fatalf("tris %v", tris)
	}
}

func TestObjImporterErrors(t *testing.T) {
	_, err := (&ObjImporter{}).Load(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 0 1\nf 0 1 2\n"))
	if !errors.Is(err, ErrZeroVertexIndex) {
		t.Fatalf("err %v, want ErrZeroVertexIndex", err)
	}
	if !strings.Contains(err.Error(), "line 4") {
		t.Errorf("err %q does not name the line", err)
	}
	if _, err := (&ObjImporter{}).Load(strings.NewReader("v 0 x 0\n")); err == nil {
		t.Error("bad coordinate accepted")
	}
	if _, err := (&ObjImporter{}).Load(strings.NewReader("v 0 0\n")); err == nil {
		t.Error("short vertex accepted")
	}
}
