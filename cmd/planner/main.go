package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"floorplan-editor/internal/common/config"
)

// ============================================================
// Floor Plan Editor
// ============================================================

func main() {
	ctx := context.Background()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "planner",
		Short:         "Floor plan editor service",
		Long:          "planner serves the floor plan editor API and manages saved plans.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the TOML config file (default $PLANNER_CONFIG or "+config.DefaultPath+")")

	load := func() (*config.Config, error) {
		if configPath != "" {
			return config.LoadFile(configPath)
		}
		return config.Load()
	}

	root.AddCommand(newServeCommand(load))
	root.AddCommand(newImportSVGCommand(load))
	root.AddCommand(newExportCommand(load))
	root.AddCommand(newListCommand(load))
	return root
}
