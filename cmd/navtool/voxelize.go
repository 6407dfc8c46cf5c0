package main

import (
	"fmt"

	"github.com/cjmxp/recast.go/dynamic"
	"github.com/cjmxp/recast.go/recast"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

func VoxelizeCmd() *cobra.Command {
	var objFile, configFile, outFile string
	var compress bool
	c := &cobra.Command{
		Use:   "voxelize",
		Short: "rasterize an obj mesh into a tiled voxel file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			geom, err := recast.LoadObjFile(objFile)
			if err != nil {
				return err
			}
			vf, err := dynamic.VoxelizeGeometry(geom, cfg, compress, dynamic.NewWorkerPool(cfg.Workers))
			if err != nil {
				return err
			}
			if err := vf.Save(outFile); err != nil {
				return err
			}
			glog.Infof("voxelize: wrote %d tiles to %s", len(vf.Tiles), outFile)
			fmt.Fprintf(cmd.OutOrStdout(), "%d tiles -> %s\n", len(vf.Tiles), outFile)
			return nil
		},
	}
	c.Flags().StringVar(&objFile, "obj", "", "input obj mesh")
	c.Flags().StringVar(&configFile, "config", "", "hjson build settings")
	c.Flags().StringVar(&outFile, "out", "voxels.bin", "output voxel file")
	c.Flags().BoolVar(&compress, "compress", true, "flate compress the span data")
	_ = c.MarkFlagRequired("obj")
	return c
}
