package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func RaycastCmd() *cobra.Command {
	var voxelFile, configFile, from, to string
	var spheres, boxes []string
	c := &cobra.Command{
		Use:   "raycast",
		Short: "cast a segment against the rebuilt voxel tiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseFloats(from, 3)
			if err != nil {
				return fmt.Errorf("from %w", err)
			}
			end, err := parseFloats(to, 3)
			if err != nil {
				return fmt.Errorf("to %w", err)
			}
			mesh, err := openDynamicNavMesh(voxelFile, configFile, spheres, boxes)
			if err != nil {
				return err
			}
			hit, t := mesh.VoxelQuery().Raycast(start, end)
			if !hit {
				fmt.Fprintln(cmd.OutOrStdout(), "no hit")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "hit t=%.4f at (%.3f, %.3f, %.3f)\n", t,
				start[0]+(end[0]-start[0])*t, start[1]+(end[1]-start[1])*t, start[2]+(end[2]-start[2])*t)
			return nil
		},
	}
	c.Flags().StringVar(&voxelFile, "voxels", "voxels.bin", "voxel file")
	c.Flags().StringVar(&configFile, "config", "", "hjson build settings, defaults to the voxel file settings")
	c.Flags().StringVar(&from, "from", "", "segment start x,y,z")
	c.Flags().StringVar(&to, "to", "", "segment end x,y,z")
	obstacleFlags(c, &spheres, &boxes)
	_ = c.MarkFlagRequired("from")
	_ = c.MarkFlagRequired("to")
	return c
}
