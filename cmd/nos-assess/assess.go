// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nos-assess/internal/report"
	"github.com/pdiddy/nos-assess/internal/store"
	"github.com/pdiddy/nos-assess/pkg/types"
)

var assessCmd = &cobra.Command{
	Use:   "assess <study-file>",
	Short: "Score a study file and add it to the database",
	Long: `Assess reads a YAML or JSON study file (metadata plus the answer key for
every criterion), validates it against the questionnaire for its study type,
scores it, and appends it to the study database.

Use --dry-run to see the score without saving.`,
	Args: cobra.ExactArgs(1),
	RunE: runAssess,
}

func runAssess(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	rec, err := store.LoadStudyFile(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(!dryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	if dryRun {
		if err := rec.Validate(time.Now()); err != nil {
			return err
		}
		if err := a.engine.Validate(rec.StudyType, rec.Assessment); err != nil {
			return err
		}
		res, err := a.engine.Score(rec.StudyType, rec.Assessment)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", rec.StudyName, res.Rating())
		return nil
	}

	saved, err := a.store.Add(context.Background(), rec)
	if err != nil {
		return err
	}
	scored, err := report.Score(a.engine, []types.StudyRecord{saved})
	if err != nil {
		return err
	}

	set, err := a.engine.Registry().CriteriaSet(saved.StudyType)
	if err != nil {
		return err
	}
	report.WriteDetail(os.Stdout, set, scored[0])
	fmt.Printf("\nSaved %s as %s\n", saved.StudyName, saved.ID)
	return nil
}

func init() {
	assessCmd.Flags().Bool("dry-run", false, "score the study without saving it")
	rootCmd.AddCommand(assessCmd)
}
