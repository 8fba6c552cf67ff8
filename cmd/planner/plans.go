package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"floorplan-editor/internal/editor/importer"
	"floorplan-editor/internal/editor/persistence"
	"floorplan-editor/internal/editor/service"
)

// ============================================================
// Plan commands
// ============================================================

func newImportSVGCommand(load configLoader) *cobra.Command {
	var (
		name           string
		id             string
		skipValidation bool
	)

	cmd := &cobra.Command{
		Use:   "import-svg <file>",
		Short: "Import an SVG floor plan and save it as a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			plans, db, err := openPlans(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			ws := service.NewWorkspace(service.WithMaxHistorySize(cfg.MaxHistorySize))
			sum, err := importer.Import(cmd.Context(), ws, f, importer.Options{SkipValidation: skipValidation})
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			plan, err := plans.Save(cmd.Context(), ws, id, name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Saved plan %s (%s)\n", plan.ID, plan.Name)
			fmt.Fprintf(out, "  rooms: %d, doors: %d, windows: %d\n", sum.Rooms, sum.Doors, sum.Windows)
			for _, s := range sum.Skipped {
				fmt.Fprintf(out, "  skipped: %s\n", s)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "plan name (default: file name)")
	cmd.Flags().StringVar(&id, "id", "", "plan id to create or replace (default: new id)")
	cmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "import shapes that fail the overlap checks")
	return cmd
}

func newExportCommand(load configLoader) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export <plan-id>",
		Short: "Export a saved plan as JSON, YAML or SVG",
		Long:  "export writes a saved plan to --out, to stdout with --out -, or to the export directory when --out is empty.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := persistence.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			plans, db, err := openPlans(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if out == "" {
				path, err := plans.ExportSaved(cmd.Context(), args[0], f)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}

			plan, err := plans.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := persistence.EncodePlan(plan.Document, f)
			if err != nil {
				return err
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(out, data, 0o644)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json, yaml or svg")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, or - for stdout")
	return cmd
}

func newListCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			plans, db, err := openPlans(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			summaries, err := plans.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved plans.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tROOMS\tDOORS\tGROUPS\tUPDATED")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n", s.ID, s.Name, s.Rooms, s.Doors, s.Groups, s.UpdatedAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		},
	}
}
