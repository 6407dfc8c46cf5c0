package dynamic

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cjmxp/recast.go/recast"
)

func sampleHeightfield() *recast.Heightfield {
	hf := recast.NewHeightfield(4, 3, []float32{-1, 0, 2}, []float32{3, 5, 5}, 1, 0.5, 1)
	hf.PushSpan(0, 0, 0, 2, recast.RC_WALKABLE_AREA)
	hf.PushSpan(0, 0, 6, 9, recast.RC_NULL_AREA)
	hf.PushSpan(3, 1, 1, 4, recast.POLYAREA_GROUND)
	hf.PushSpan(2, 2, 0, 300, recast.RC_WALKABLE_AREA)
	return hf
}

func sameSpans(t *testing.T, a, b *recast.Heightfield) {
	t.Helper()
	if a.GetWidth() != b.GetWidth() || a.GetHeight() != b.GetHeight() || a.GetBorderSize() != b.GetBorderSize() {
		t.Fatalf("size %d x %d border %d, want %d x %d border %d", b.GetWidth(), b.GetHeight(), b.GetBorderSize(),
			a.GetWidth(), a.GetHeight(), a.GetBorderSize())
	}
	for z := 0; z < a.GetHeight(); z++ {
		for x := 0; x < a.GetWidth(); x++ {
			sa, sb := a.GetSpan(x, z), b.GetSpan(x, z)
			for ; sa != nil && sb != nil; sa, sb = sa.GetNext(), sb.GetNext() {
				if sa.GetSmin() != sb.GetSmin() || sa.GetSmax() != sb.GetSmax() || sa.GetArea() != sb.GetArea() {
					t.Fatalf("column (%d, %d) differs", x, z)
				}
			}
			if sa != nil || sb != nil {
				t.Fatalf("column (%d, %d) span count differs", x, z)
			}
		}
	}
}

func TestVoxelTileRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		hf := sampleHeightfield()
		tile, err := NewVoxelTile(hf, 2, 3, compress)
		if err != nil {
			t.Fatal(err)
		}
		if tile.Compressed != compress || tile.TileX != 2 || tile.TileZ != 3 {
			t.Fatalf("tile header %+v", tile)
		}
		got, err := tile.Heightfield()
		if err != nil {
			t.Fatalf("compress %v: %v", compress, err)
		}
		sameSpans(t, hf, got)
		if got.GetBmin()[0] != -1 || got.GetBmax()[2] != 5 || got.GetCh() != 0.5 {
			t.Errorf("bounds %v - %v ch %v", got.GetBmin(), got.GetBmax(), got.GetCh())
		}
	}
}

func TestVoxelTileMalformed(t *testing.T) {
	tile, err := NewVoxelTile(sampleHeightfield(), 0, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	full := tile.SpanData

	tile.SpanData = full[:len(full)-3]
	if _, err := tile.Heightfield(); !errors.Is(err, ErrMalformedSpanData) {
		t.Errorf("truncated: %v", err)
	}
	tile.SpanData = append(append([]byte{}, full...), 0)
	if _, err := tile.Heightfield(); !errors.Is(err, ErrMalformedSpanData) {
		t.Errorf("trailing byte: %v", err)
	}
	// Column (0, 0) with its two spans swapped.
	swapped := append([]byte{}, full...)
	copy(swapped[2:7], full[7:12])
	copy(swapped[7:12], full[2:7])
	tile.SpanData = swapped
	if _, err := tile.Heightfield(); !errors.Is(err, ErrMalformedSpanData) {
		t.Errorf("unordered spans: %v", err)
	}
	tile.SpanData = full
	tile.Compressed = true
	if _, err := tile.Heightfield(); err == nil {
		t.Error("raw data decoded as deflate")
	}
}

func TestVoxelFileRoundTrip(t *testing.T) {
	cfg := NewDynamicNavMeshConfig()
	vf := &VoxelFile{Version: VOXEL_FILE_VERSION, Config: *cfg, BoundsMin: [3]float32{-1, 0, 2}, BoundsMax: [3]float32{3, 5, 5}}
	for _, tz := range []int{0, 1} {
		tile, err := NewVoxelTile(sampleHeightfield(), 0, tz, true)
		if err != nil {
			t.Fatal(err)
		}
		vf.Tiles = append(vf.Tiles, tile)
	}
	path := filepath.Join(t.TempDir(), "voxels.bin")
	if err := vf.Save(path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadVoxelFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Config != vf.Config || got.BoundsMax != vf.BoundsMax || len(got.Tiles) != 2 {
		t.Fatalf("loaded %+v", got)
	}
	tile := got.Tile(0, 1)
	if tile == nil || got.Tile(1, 0) != nil {
		t.Fatal("tile lookup mismatch")
	}
	hf, err := tile.Heightfield()
	if err != nil {
		t.Fatal(err)
	}
	sameSpans(t, sampleHeightfield(), hf)
}

func TestReadVoxelFileRejectsVersion(t *testing.T) {
	vf := &VoxelFile{Version: VOXEL_FILE_VERSION + 1, Config: *NewDynamicNavMeshConfig()}
	var buf bytes.Buffer
	if err := vf.Write(&buf); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadVoxelFile(&buf); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("err %v, want ErrUnsupportedVersion", err)
	}
	if _, err := ReadVoxelFile(bytes.NewReader([]byte{0xc1})); err == nil {
		t.Error("garbage decoded")
	}
}
