// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nos-assess/internal/report"
	"github.com/pdiddy/nos-assess/internal/store"
	"github.com/pdiddy/nos-assess/pkg/types"
)

// --- import ---

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Assess every study file in a directory",
	Long: `Import reads every .yaml, .yml and .json study file in a directory in name
order and adds each one that validates. Files that fail are reported and
skipped; the command fails if any file failed.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.store.Import(context.Background(), args[0], os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d study file(s) failed", summary.Failed)
	}
	return nil
}

// --- list ---

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List assessed studies in submission order",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.store.List(context.Background())
	if err != nil {
		return err
	}
	scored, err := report.Score(a.engine, records)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scored)
	}
	report.WriteList(os.Stdout, scored)
	return nil
}

// --- show ---

var showCmd = &cobra.Command{
	Use:   "show [study-id]",
	Short: "Show one study with its per-criterion answers",
	Long: `Show prints a study's metadata, the option chosen for each criterion with
the stars it earned, and the stars per domain. Select the study by ID or by
its 1-based --position in the list.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := selectStudy(cmd, a.store, args)
	if err != nil {
		return err
	}
	scored, err := report.Score(a.engine, []types.StudyRecord{rec})
	if err != nil {
		return err
	}
	set, err := a.engine.Registry().CriteriaSet(rec.StudyType)
	if err != nil {
		return err
	}
	report.WriteDetail(os.Stdout, set, scored[0])
	return nil
}

// --- delete ---

var deleteCmd = &cobra.Command{
	Use:   "delete [study-id]",
	Short: "Delete one study by ID or --position",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	position, _ := cmd.Flags().GetInt("position")

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := context.Background()

	if len(args) == 0 && position > 0 {
		rec, err := a.store.DeleteAt(ctx, position)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %s (%s)\n", rec.StudyName, rec.ID)
		return nil
	}

	rec, err := selectStudy(cmd, a.store, args)
	if err != nil {
		return err
	}
	if err := a.store.Delete(ctx, rec.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted %s (%s)\n", rec.StudyName, rec.ID)
	return nil
}

// --- clear ---

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every study",
	Long:  `Clear removes every study from the database. It requires --yes.`,
	RunE:  runClear,
}

func runClear(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		return fmt.Errorf("refusing to clear the database without --yes")
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.store.Clear(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Cleared %d studies\n", n)
	return nil
}

// --- shared helpers ---

// selectStudy resolves the study named by the ID argument or --position.
func selectStudy(cmd *cobra.Command, st *store.Store, args []string) (types.StudyRecord, error) {
	position, _ := cmd.Flags().GetInt("position")
	ctx := context.Background()

	switch {
	case len(args) == 1 && position > 0:
		return types.StudyRecord{}, fmt.Errorf("give a study ID or --position, not both")
	case len(args) == 1:
		return st.Get(ctx, args[0])
	case position > 0:
		return st.At(ctx, position)
	}
	return types.StudyRecord{}, fmt.Errorf("study ID or --position required")
}

func init() {
	listCmd.Flags().Bool("json", false, "output studies and scores as JSON")
	showCmd.Flags().Int("position", 0, "1-based position of the study in the list")
	deleteCmd.Flags().Int("position", 0, "1-based position of the study in the list")
	clearCmd.Flags().Bool("yes", false, "confirm deleting every study")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
}
