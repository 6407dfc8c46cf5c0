package dynamic

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "navmesh.hjson")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDynamicNavMeshConfigOverDefaults(t *testing.T) {
	path := writeConfig(t, "\xEF\xBB\xBF"+`{
  # finer grid for the arena
  cellSize: 0.5
  tileSizeX: 16
  minRegionArea: 8
  buildDetailMesh: false
  workers: 2
}
`)
	cfg, err := LoadDynamicNavMeshConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CellSize != 0.5 || cfg.TileSizeX != 16 || cfg.MinRegionArea != 8 || cfg.BuildDetailMesh || cfg.Workers != 2 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	def := NewDynamicNavMeshConfig()
	if cfg.CellHeight != def.CellHeight || cfg.TileSizeZ != def.TileSizeZ || cfg.VertsPerPoly != def.VertsPerPoly {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.TileWidth() != 8 || cfg.TileDepth() != 16 {
		t.Errorf("tile size %v x %v", cfg.TileWidth(), cfg.TileDepth())
	}
}

func TestLoadDynamicNavMeshConfigErrors(t *testing.T) {
	if _, err := LoadDynamicNavMeshConfig(writeConfig(t, "{ vertsPerPoly: 9 }")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("vertsPerPoly 9: %v", err)
	}
	if _, err := LoadDynamicNavMeshConfig(writeConfig(t, "{ cellSize: ")); err == nil {
		t.Error("broken hjson accepted")
	}
	if _, err := LoadDynamicNavMeshConfig(filepath.Join(t.TempDir(), "missing.hjson")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestDynamicNavMeshConfigValidate(t *testing.T) {
	if err := NewDynamicNavMeshConfig().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	broken := []func(*DynamicNavMeshConfig){
		func(c *DynamicNavMeshConfig) { c.CellSize = 0 },
		func(c *DynamicNavMeshConfig) { c.CellHeight = -1 },
		func(c *DynamicNavMeshConfig) { c.TileSizeZ = 0 },
		func(c *DynamicNavMeshConfig) { c.WalkableSlopeAngle = 90 },
		func(c *DynamicNavMeshConfig) { c.VertsPerPoly = 2 },
		func(c *DynamicNavMeshConfig) { c.RegionMergeArea = -1 },
		func(c *DynamicNavMeshConfig) { c.BvPrecision = -1 },
		func(c *DynamicNavMeshConfig) { c.Workers = -1 },
	}
	for i, breakIt := range broken {
		cfg := NewDynamicNavMeshConfig()
		breakIt(cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("case %d: %v", i, err)
		}
	}
}

func TestRecastConfigUnits(t *testing.T) {
	cfg := NewDynamicNavMeshConfig()
	cfg.CellSize = 0.5
	cfg.MinRegionArea = 8
	cfg.RegionMergeArea = 20
	rc := cfg.RecastConfig()
	if rc.MinRegionArea != 8 || rc.MergeRegionArea != 20 {
		t.Errorf("region areas %d %d", rc.MinRegionArea, rc.MergeRegionArea)
	}
	if rc.WalkableRadius != 2 {
		t.Errorf("walkable radius %d cells, want 2", rc.WalkableRadius)
	}
	if rc.TileSizeX != cfg.TileSizeX || rc.TileSizeZ != cfg.TileSizeZ {
		t.Errorf("tile size %d x %d", rc.TileSizeX, rc.TileSizeZ)
	}
}
