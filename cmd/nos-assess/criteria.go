// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nos-assess/internal/report"
	"github.com/pdiddy/nos-assess/pkg/types"
)

var criteriaCmd = &cobra.Command{
	Use:   "criteria [study-type]",
	Short: "Show the NOS questionnaire for a study type",
	Long: `Criteria prints the Newcastle-Ottawa questions for a study type with the
option keys and the stars each option earns. With no study type, all three
questionnaires are printed.

Use --template to emit a study file skeleton instead; fill it in and pass it
to 'nos-assess assess'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCriteria,
}

func runCriteria(cmd *cobra.Command, args []string) error {
	template, _ := cmd.Flags().GetBool("template")

	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()
	reg := a.engine.Registry()

	studyTypes := types.StudyTypes
	if len(args) == 1 {
		t, err := types.ParseStudyType(args[0])
		if err != nil {
			return err
		}
		studyTypes = []types.StudyType{t}
	}

	if template {
		if len(studyTypes) != 1 {
			return fmt.Errorf("--template needs a study type: cohort, case-control or cross-sectional")
		}
		set, err := reg.CriteriaSet(studyTypes[0])
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(report.Template(set))
	}

	for i, t := range studyTypes {
		set, err := reg.CriteriaSet(t)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Println()
		}
		report.WriteQuestionnaire(os.Stdout, set)
	}
	return nil
}

func init() {
	criteriaCmd.Flags().Bool("template", false, "print a study file template for the study type")
	rootCmd.AddCommand(criteriaCmd)
}
