package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nunomansilhas/ProduFlow/config"
	materialService "github.com/nunomansilhas/ProduFlow/service/material"
)

var (
	importFile  string
	importBatch int
	importDry   bool
)

var importCmd = &cobra.Command{
	Use:   "materials:import",
	Short: "Import raw materials from CSV (upsert by code)",
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(importFile)
		if err != nil {
			fmt.Printf("Failed to open CSV: %v\n", err)
			return
		}
		defer f.Close()

		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			return
		}

		res, err := materialService.ImportMaterials(context.Background(), db, f, materialService.ImportOptions{
			BatchSize: importBatch,
			DryRun:    importDry,
		})
		if err != nil {
			fmt.Printf("Import failed: %v\n", err)
			return
		}

		for _, w := range res.Warnings {
			fmt.Printf("  [warn] %s\n", w)
		}

		fmt.Printf(`
=== Import Report ===
CSV rows:       %d
Created:        %d
Updated:        %d
Skipped:        %d
Stock entries:  %d
Mode:           %s
Total time:     %s
  - Processing: %s
  - DB upsert:  %s
=====================
`, res.TotalRows, res.Created, res.Updated, res.Skipped, res.StockEntries,
			map[bool]string{true: "Dry run", false: "Commit"}[importDry],
			res.TotalTime.Round(time.Millisecond),
			res.ProcessTime.Round(time.Millisecond),
			res.DBTime.Round(time.Millisecond))
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "CSV file path (required)")
	importCmd.MarkFlagRequired("file")
	importCmd.Flags().IntVar(&importBatch, "batch-size", 500, "Batch size for DB operations")
	importCmd.Flags().BoolVar(&importDry, "dry-run", false, "Parse and validate without writing")
	rootCmd.AddCommand(importCmd)
}
