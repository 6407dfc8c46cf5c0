package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cjmxp/recast.go/dynamic"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "navtool",
		Short:         "voxelize geometry and maintain a dynamic tiled nav mesh",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// glog registers -v, -logtostderr and friends on the standard flag set.
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	root.AddCommand(VoxelizeCmd(), BuildCmd(), RaycastCmd())
	err := root.Execute()
	glog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig returns the defaults when path is empty.
func loadConfig(path string) (*dynamic.DynamicNavMeshConfig, error) {
	if path == "" {
		return dynamic.NewDynamicNavMeshConfig(), nil
	}
	return dynamic.LoadDynamicNavMeshConfig(path)
}

func parseFloats(s string, n int) ([]float32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%q: want %d comma separated numbers", s, n)
	}
	out := make([]float32, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// openDynamicNavMesh loads the voxel file, registers the obstacles and runs the first build.
func openDynamicNavMesh(voxelPath, configPath string, spheres, boxes []string) (*dynamic.DynamicNavMesh, error) {
	vf, err := dynamic.LoadVoxelFile(voxelPath)
	if err != nil {
		return nil, err
	}
	var cfg *dynamic.DynamicNavMeshConfig
	if configPath != "" {
		if cfg, err = dynamic.LoadDynamicNavMeshConfig(configPath); err != nil {
			return nil, err
		}
	}
	mesh, err := dynamic.NewDynamicNavMesh(vf, cfg)
	if err != nil {
		return nil, err
	}
	for _, s := range spheres {
		v, err := parseFloats(s, 4)
		if err != nil {
			return nil, fmt.Errorf("sphere %w", err)
		}
		mesh.AddCollider(dynamic.NewSphereCollider(mgl32.Vec3{v[0], v[1], v[2]}, v[3], 0, 1))
	}
	for _, s := range boxes {
		v, err := parseFloats(s, 6)
		if err != nil {
			return nil, fmt.Errorf("box %w", err)
		}
		halfEdges := dynamic.GetBoxColliderHalfEdges(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{v[3], v[4], v[5]})
		mesh.AddCollider(dynamic.NewBoxCollider(mgl32.Vec3{v[0], v[1], v[2]}, halfEdges, 0, 1))
	}
	if err := mesh.Build(dynamic.NewWorkerPool(mesh.Config().Workers)); err != nil {
		return mesh, err
	}
	return mesh, nil
}

func obstacleFlags(c *cobra.Command, spheres, boxes *[]string) {
	c.Flags().StringArrayVar(spheres, "sphere", nil, "sphere obstacle x,y,z,radius (repeatable)")
	c.Flags().StringArrayVar(boxes, "box", nil, "axis aligned box obstacle x,y,z,hx,hy,hz (repeatable)")
}
