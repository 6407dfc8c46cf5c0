package main

import (
	"encoding/gob"
	"fmt"
	"os"
	"sort"

	"github.com/cjmxp/recast.go/detour"
	"github.com/cjmxp/recast.go/dynamic"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

// tileDump is the gob form of one published tile.
type tileDump struct {
	X             int
	Z             int
	Bmin          []float32
	Bmax          []float32
	Verts         []float32
	Polys         [][]int
	Areas         []int
	Flags         []int
	DetailVerts   []float32
	DetailTris    []int
	BvQuantFactor float32
	BVTree        []detour.BVNode
}

func newTileDump(data *detour.MeshData) *tileDump {
	header := data.GetHeader()
	dump := &tileDump{
		X:             header.GetX(),
		Z:             header.GetY(),
		Bmin:          header.GetBmin(),
		Bmax:          header.GetBmax(),
		Verts:         data.GetVerts(),
		DetailVerts:   data.GetDetailVerts(),
		DetailTris:    data.GetDetailTris(),
		BvQuantFactor: header.GetBvQuantFactor(),
	}
	if bv := data.GetBVTree(); bv != nil {
		dump.BVTree = bv[:header.GetBvNodeCount()]
	}
	for _, p := range data.GetPolys() {
		dump.Polys = append(dump.Polys, p.GetVerts())
		dump.Areas = append(dump.Areas, p.GetArea())
		dump.Flags = append(dump.Flags, p.GetFlags())
	}
	return dump
}

func saveTiles(mesh *dynamic.DynamicNavMesh, file string) (int, error) {
	var dumps []*tileDump
	for _, r := range mesh.TileResults() {
		if r.Data != nil {
			dumps = append(dumps, newTileDump(r.Data))
		}
	}
	sort.Slice(dumps, func(a, b int) bool {
		if dumps[a].Z != dumps[b].Z {
			return dumps[a].Z < dumps[b].Z
		}
		return dumps[a].X < dumps[b].X
	})
	f, err := os.OpenFile(file, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return len(dumps), gob.NewEncoder(f).Encode(dumps)
}

func findPath(mesh *dynamic.DynamicNavMesh, start, end []float32) ([]*detour.StraightPathItem, error) {
	var straight []*detour.StraightPathItem
	var err error
	mesh.ReadNavMesh(func(nav *detour.NavMesh) {
		query := detour.NewNavMeshQuery(nav)
		filter := detour.NewQueryFilter()
		extents := []float32{2, 4, 2}
		startRef := query.FindNearestPoly(start, extents, filter).GetNearestRef()
		endRef := query.FindNearestPoly(end, extents, filter).GetNearestRef()
		if startRef == 0 || endRef == 0 {
			err = fmt.Errorf("no polygon near start %v or end %v", start, end)
			return
		}
		var path []int64
		if _, path, err = query.FindPath(startRef, endRef, start, end, filter); err != nil {
			return
		}
		straight, err = query.FindStraightPath(start, end, path, 256, 0)
	})
	return straight, err
}

func BuildCmd() *cobra.Command {
	var voxelFile, configFile, outFile, pathSpec string
	var spheres, boxes []string
	c := &cobra.Command{
		Use:   "build",
		Short: "build the dynamic nav mesh from a voxel file",
		RunE: func(cmd *cobra.Command, args []string) error {
			mesh, err := openDynamicNavMesh(voxelFile, configFile, spheres, boxes)
			if err != nil {
				return err
			}
			stats := mesh.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d tiles live, %d colliders\n", stats.LiveTiles, stats.Tiles, stats.Colliders)
			if outFile != "" {
				n, err := saveTiles(mesh, outFile)
				if err != nil {
					return fmt.Errorf("save tiles: %w", err)
				}
				glog.Infof("build: dumped %d tiles to %s", n, outFile)
			}
			if pathSpec != "" {
				v, err := parseFloats(pathSpec, 6)
				if err != nil {
					return fmt.Errorf("path %w", err)
				}
				straight, err := findPath(mesh, v[:3], v[3:])
				if err != nil {
					return err
				}
				for _, p := range straight {
					pos := p.GetPos()
					fmt.Fprintf(cmd.OutOrStdout(), "%.3f %.3f %.3f\n", pos[0], pos[1], pos[2])
				}
			}
			return nil
		},
	}
	c.Flags().StringVar(&voxelFile, "voxels", "voxels.bin", "voxel file")
	c.Flags().StringVar(&configFile, "config", "", "hjson build settings, defaults to the voxel file settings")
	c.Flags().StringVar(&outFile, "out", "", "gob dump of the published tiles")
	c.Flags().StringVar(&pathSpec, "path", "", "print the straight path sx,sy,sz,ex,ey,ez")
	obstacleFlags(c, &spheres, &boxes)
	return c
}
