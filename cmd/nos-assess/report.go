// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nos-assess/internal/chart"
	"github.com/pdiddy/nos-assess/internal/export"
	"github.com/pdiddy/nos-assess/internal/report"
)

// --- report ---

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize quality across all assessed studies",
	Long: `Report recomputes every study's score and prints the quality tier and
study type distributions, the stars histogram, a per-study table of domain
percentages and the average performance of each domain.`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, s, err := loadSummary()
	if err != nil {
		return err
	}
	defer a.Close()

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	report.WriteSummary(os.Stdout, s, a.engine.Registry().DomainNames())
	return nil
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export studies and scores to CSV, JSON or YAML",
	Long: `Export writes every study with freshly computed scores to a timestamped
file in the output directory. Formats:

  csv           one row per study with metadata and each criterion answer
  detailed-csv  one row per study with stars, maximum and percentage per domain
  json, yaml    full records with a per-domain breakdown`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	formatName, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	a, s, err := loadSummary()
	if err != nil {
		return err
	}
	defer a.Close()

	if s.TotalStudies == 0 {
		fmt.Println("No studies to export.")
		return nil
	}

	dir := outputDir(cmd, a)
	path, err := export.New(a.engine.Registry()).WriteFile(dir, format, s.Studies, time.Now())
	if err != nil {
		return err
	}
	a.log.Info("export written", "path", path, "format", string(format), "studies", s.TotalStudies)
	fmt.Printf("Exported %d studies to %s\n", s.TotalStudies, path)
	return nil
}

// --- chart ---

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render PNG charts of the assessed studies",
	Long: `Chart writes three PNG files to the output directory: a summary bar per
study coloured by quality tier, a study-by-domain heatmap, and the study type
distribution.`,
	RunE: runChart,
}

func runChart(cmd *cobra.Command, args []string) error {
	a, s, err := loadSummary()
	if err != nil {
		return err
	}
	defer a.Close()

	if s.TotalStudies == 0 {
		fmt.Println("No studies to chart.")
		return nil
	}

	r, err := chart.New(a.cfg.Report, a.log)
	if err != nil {
		return err
	}
	paths, err := r.WriteAll(outputDir(cmd, a), s, a.engine.Registry().DomainNames(), time.Now())
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println("Wrote", p)
	}
	return nil
}

// --- shared helpers ---

// loadSummary opens the store and builds the summary over every study.
// The caller closes the returned app.
func loadSummary() (*app, report.Summary, error) {
	a, err := newApp(true)
	if err != nil {
		return nil, report.Summary{}, err
	}
	records, err := a.store.List(context.Background())
	if err != nil {
		a.Close()
		return nil, report.Summary{}, err
	}
	s, err := report.Build(a.engine, records)
	if err != nil {
		a.Close()
		return nil, report.Summary{}, err
	}
	return a, s, nil
}

func outputDir(cmd *cobra.Command, a *app) string {
	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		return dir
	}
	return a.cfg.Report.OutputDir
}

func init() {
	reportCmd.Flags().Bool("json", false, "output the summary as JSON")

	exportCmd.Flags().String("format", "csv", "export format: csv, detailed-csv, json or yaml")
	exportCmd.Flags().String("output-dir", "", "directory for the export file (default from config)")

	chartCmd.Flags().String("output-dir", "", "directory for the PNG files (default from config)")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(chartCmd)
}
