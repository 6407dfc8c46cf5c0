package dynamic

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cjmxp/recast.go/recast"
	"github.com/golang/glog"
	"github.com/vmihailenco/msgpack/v5"
)

const VOXEL_FILE_VERSION = 1

var ErrUnsupportedVersion = errors.New("dynamic: unsupported voxel file version")

// VoxelFile is the source of a DynamicNavMesh: the settings the tiles were voxelized with, the world bounds
// and the base heightfield of every tile.
type VoxelFile struct {
	Version   int                  `msgpack:"version"`
	Config    DynamicNavMeshConfig `msgpack:"config"`
	BoundsMin [3]float32           `msgpack:"boundsMin"`
	BoundsMax [3]float32           `msgpack:"boundsMax"`
	Tiles     []*VoxelTile         `msgpack:"tiles"`
}

func LoadVoxelFile(path string) (*VoxelFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open voxel file: %w", err)
	}
	defer f.Close()
	vf, err := ReadVoxelFile(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("load voxel file %s: %w", path, err)
	}
	return vf, nil
}

func ReadVoxelFile(r io.Reader) (*VoxelFile, error) {
	vf := &VoxelFile{}
	if err := msgpack.NewDecoder(r).Decode(vf); err != nil {
		return nil, fmt.Errorf("decode voxel file: %w", err)
	}
	if vf.Version != VOXEL_FILE_VERSION {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, vf.Version)
	}
	if err := vf.Config.Validate(); err != nil {
		return nil, err
	}
	for i, tile := range vf.Tiles {
		if tile == nil {
			return nil, fmt.Errorf("%w: tile %d is nil", ErrMalformedSpanData, i)
		}
	}
	return vf, nil
}

func (this *VoxelFile) Save(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create voxel file: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := this.Write(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write voxel file: %w", err)
	}
	return f.Close()
}

func (this *VoxelFile) Write(w io.Writer) error {
	if err := msgpack.NewEncoder(w).Encode(this); err != nil {
		return fmt.Errorf("encode voxel file: %w", err)
	}
	return nil
}

func (this *VoxelFile) Tile(x, z int) *VoxelTile {
	for _, tile := range this.Tiles {
		if tile.TileX == x && tile.TileZ == z {
			return tile
		}
	}
	return nil
}

// VoxelizeGeometry rasterizes geom tile by tile. Triangles steeper than the walkable slope stay solid, no
// filter runs so the tiles keep everything the rebuilds need.
func VoxelizeGeometry(geom *recast.InputGeom, cfg *DynamicNavMeshConfig, compress bool, pool WorkerPool) (*VoxelFile, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bmin := geom.GetMeshBoundsMin()
	bmax := geom.GetMeshBoundsMax()
	rcConfig := cfg.RecastConfig()
	builder := recast.NewRecastBuilder(rcConfig)
	tw, th := recast.CalcTileCount(bmin, bmax, cfg.CellSize, cfg.TileSizeX, cfg.TileSizeZ)
	vf := &VoxelFile{Version: VOXEL_FILE_VERSION, Config: *cfg, Tiles: make([]*VoxelTile, tw*th)}
	copy(vf.BoundsMin[:], bmin)
	copy(vf.BoundsMax[:], bmax)
	// The chunky mesh is built lazily, build it before the tiles share it.
	geom.GetChunkyMesh()
	var mu sync.Mutex
	var errs []error
	for z := 0; z < th; z++ {
		for x := 0; x < tw; x++ {
			x, z := x, z
			pool.Go(func() error {
				bcfg := &recast.RecastBuilderConfig{}
				bcfg.Init(rcConfig, bmin, bmax, x, z, true)
				tile, err := NewVoxelTile(builder.Voxelize(geom, bcfg), x, z, compress)
				if err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
					return nil
				}
				vf.Tiles[x+z*tw] = tile
				return nil
			})
		}
	}
	if err := pool.Wait(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	glog.V(1).Infof("voxelize: %d x %d tiles, bounds %v - %v", tw, th, bmin, bmax)
	return vf, nil
}
