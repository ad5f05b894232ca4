package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/config"
	"github.com/yourname/fittrack/internal/service"
	"github.com/yourname/fittrack/internal/storage"
)

var (
	exportOut    string
	importIn     string
	importDryRun bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's records as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, _ *config.Config, store storage.Store, user *internal.User) error {
			now := time.Now()
			doc, err := service.Export(ctx, store, user, now)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal export json: %w", err)
			}
			out := strings.TrimSpace(exportOut)
			if out == "" {
				out = service.ExportFilename(now)
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(append(b, '\n'))
				return err
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return fmt.Errorf("write export file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d calorie, %d weight and %d workout entries to %s\n",
				len(doc.Calories), len(doc.Weights), len(doc.Workouts), out)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON export into a user's records",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(importIn) == "" {
			return fmt.Errorf("--in is required")
		}
		b, err := os.ReadFile(importIn)
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}
		var doc service.ExportDocument
		if err := json.Unmarshal(b, &doc); err != nil {
			return fmt.Errorf("parse import file: %w", err)
		}
		return withStore(cmd, func(ctx context.Context, cfg *config.Config, store storage.Store, user *internal.User) error {
			res, err := service.Import(ctx, store, user, &doc, service.DuplicatePolicy(cfg.WeightDuplicatePolicy), importDryRun)
			if err != nil {
				return err
			}
			verb := "Imported"
			if res.DryRun {
				verb = "Would import"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d calorie, %d weight and %d workout entries (%d merged, %d skipped)\n",
				verb, res.Calories, res.Weights, res.Workouts, res.Merged, res.Skipped)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file, or - for stdout (default fittrack-export-<date>.json)")
	importCmd.Flags().StringVar(&importIn, "in", "", "Input JSON file")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate without writing")
	rootCmd.AddCommand(exportCmd, importCmd)
}
