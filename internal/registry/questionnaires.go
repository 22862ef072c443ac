// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import "github.com/pdiddy/nos-assess/pkg/types"

// Domain names shared by the questionnaires.
const (
	DomainSelection     = "Selection"
	DomainComparability = "Comparability"
	DomainOutcome       = "Outcome"
	DomainExposure      = "Exposure"
)

// comparabilityCap is the NOS convention: comparability earns at most 2 stars.
const comparabilityCap = 2

func questionnaire(t types.StudyType, w Weighting) []Domain {
	switch t {
	case types.StudyCohort:
		return cohortDomains(w)
	case types.StudyCaseControl:
		return caseControlDomains(w)
	case types.StudyCrossSectional:
		return crossSectionalDomains(w)
	}
	return nil
}

func yesNo() []Option {
	return []Option{
		{Key: "yes", Label: "Yes", Stars: 1},
		{Key: "no", Label: "No", Stars: 0},
	}
}

// comparability builds the capped comparability criterion.
func comparability(prompt, mostImportant, additional string, w Weighting) Criterion {
	additionalStars := 2
	if w == WeightingFlat {
		additionalStars = 1
	}
	return Criterion{
		ID:     "comparability",
		Prompt: prompt,
		Options: []Option{
			{Key: "most_important", Label: mostImportant, Stars: 1},
			{Key: "additional_factor", Label: additional, Stars: additionalStars},
			{Key: "no_control", Label: "No control for confounding factors", Stars: 0},
		},
		DomainCap: comparabilityCap,
	}
}

func cohortDomains(w Weighting) []Domain {
	return []Domain{
		{
			Name: DomainSelection,
			Criteria: []Criterion{
				{
					ID:     "representativeness",
					Prompt: "1. Representativeness of the exposed cohort",
					Options: []Option{
						{Key: "truly_representative", Label: "Truly representative of the average population in the community", Stars: 1},
						{Key: "somewhat_representative", Label: "Somewhat representative of the average population in the community", Stars: 1},
						{Key: "selected_group", Label: "Selected group of users (e.g., nurses, volunteers)", Stars: 0},
						{Key: "no_description", Label: "No description of the derivation of the cohort", Stars: 0},
					},
				},
				{
					ID:     "selection_nonexposed",
					Prompt: "2. Selection of the non-exposed cohort",
					Options: []Option{
						{Key: "same_community", Label: "Drawn from the same community as the exposed cohort", Stars: 1},
						{Key: "different_source", Label: "Drawn from a different source", Stars: 0},
						{Key: "no_description", Label: "No description of the derivation of the non-exposed cohort", Stars: 0},
					},
				},
				{
					ID:     "ascertainment_exposure",
					Prompt: "3. Ascertainment of exposure",
					Options: []Option{
						{Key: "secure_record", Label: "Secure record (e.g., surgical records)", Stars: 1},
						{Key: "structured_interview", Label: "Structured interview where blind to case/control status", Stars: 1},
						{Key: "written_self_report", Label: "Written self-report", Stars: 0},
						{Key: "no_description", Label: "No description", Stars: 0},
					},
				},
				{
					ID:      "outcome_not_present",
					Prompt:  "4. Demonstration that outcome of interest was not present at start of study",
					Options: yesNo(),
				},
			},
		},
		{
			Name: DomainComparability,
			Criteria: []Criterion{
				comparability(
					"5. Comparability of cohorts on the basis of the design or analysis",
					"Study controls for the most important factor",
					"Study controls for any additional factor",
					w,
				),
			},
		},
		{
			Name: DomainOutcome,
			Criteria: []Criterion{
				{
					ID:     "assessment_outcome",
					Prompt: "6. Assessment of outcome",
					Options: []Option{
						{Key: "independent_blind", Label: "Independent blind assessment", Stars: 1},
						{Key: "record_linkage", Label: "Record linkage", Stars: 1},
						{Key: "self_report", Label: "Self-report", Stars: 0},
						{Key: "no_description", Label: "No description", Stars: 0},
					},
				},
				{
					ID:      "adequate_followup_length",
					Prompt:  "7. Was follow-up long enough for outcomes to occur",
					Options: yesNo(),
				},
				{
					ID:     "adequacy_followup",
					Prompt: "8. Adequacy of follow up of cohorts",
					Options: []Option{
						{Key: "complete_followup", Label: "Complete follow up - all subjects accounted for", Stars: 1},
						{Key: "small_loss", Label: "Subjects lost to follow up unlikely to introduce bias - small number lost", Stars: 1},
						{Key: "high_loss", Label: "High rate of follow up but no description of those lost", Stars: 0},
						{Key: "no_statement", Label: "No statement", Stars: 0},
					},
				},
			},
		},
	}
}

func caseControlDomains(w Weighting) []Domain {
	return []Domain{
		{
			Name: DomainSelection,
			Criteria: []Criterion{
				{
					ID:     "case_definition",
					Prompt: "1. Is the case definition adequate?",
					Options: []Option{
						{Key: "independent_validation", Label: "Yes, with independent validation", Stars: 1},
						{Key: "record_linkage", Label: "Yes, e.g., record linkage or based on self-reports", Stars: 0},
						{Key: "no_description", Label: "No description", Stars: 0},
					},
				},
				{
					ID:     "representativeness_cases",
					Prompt: "2. Representativeness of the cases",
					Options: []Option{
						{Key: "consecutive_series", Label: "Consecutive or obviously representative series of cases", Stars: 1},
						{Key: "potential_selection", Label: "Potential for selection biases or not stated", Stars: 0},
					},
				},
				{
					ID:     "selection_controls",
					Prompt: "3. Selection of Controls",
					Options: []Option{
						{Key: "community_controls", Label: "Community controls", Stars: 1},
						{Key: "hospital_controls", Label: "Hospital controls", Stars: 0},
						{Key: "no_description", Label: "No description", Stars: 0},
					},
				},
				{
					ID:     "definition_controls",
					Prompt: "4. Definition of Controls",
					Options: []Option{
						{Key: "no_history", Label: "No history of disease (endpoint)", Stars: 1},
						{Key: "no_description", Label: "No description of source", Stars: 0},
					},
				},
			},
		},
		{
			Name: DomainComparability,
			Criteria: []Criterion{
				comparability(
					"5. Comparability of cases and controls on the basis of the design or analysis",
					"Study controls for the most important factor",
					"Study controls for any additional factor",
					w,
				),
			},
		},
		{
			Name: DomainExposure,
			Criteria: []Criterion{
				{
					ID:     "ascertainment_exposure",
					Prompt: "6. Ascertainment of exposure",
					Options: []Option{
						{Key: "secure_record", Label: "Secure record (e.g., surgical records)", Stars: 1},
						{Key: "structured_interview", Label: "Structured interview where blind to case/control status", Stars: 1},
						{Key: "interview_not_blinded", Label: "Interview not blinded to case/control status", Stars: 0},
						{Key: "written_self_report", Label: "Written self-report or medical record only", Stars: 0},
						{Key: "no_description", Label: "No description", Stars: 0},
					},
				},
				{
					ID:      "same_method",
					Prompt:  "7. Same method of ascertainment for cases and controls",
					Options: yesNo(),
				},
				{
					ID:     "non_response_rate",
					Prompt: "8. Non-Response rate",
					Options: []Option{
						{Key: "same_rate", Label: "Same rate for both groups", Stars: 1},
						{Key: "non_respondents", Label: "Non-respondents described", Stars: 0},
						{Key: "rate_different", Label: "Rate different and no designation", Stars: 0},
					},
				},
			},
		},
	}
}

func crossSectionalDomains(w Weighting) []Domain {
	return []Domain{
		{
			Name: DomainSelection,
			Criteria: []Criterion{
				{
					ID:     "representativeness",
					Prompt: "1. Representativeness of the sample",
					Options: []Option{
						{Key: "truly_representative", Label: "Truly representative of the average population", Stars: 1},
						{Key: "somewhat_representative", Label: "Somewhat representative of the average population", Stars: 1},
						{Key: "selected_group", Label: "Selected group of users", Stars: 0},
						{Key: "no_description", Label: "No description of the sampling strategy", Stars: 0},
					},
				},
				{
					ID:     "sample_size",
					Prompt: "2. Sample size",
					Options: []Option{
						{Key: "justified", Label: "Justified and satisfactory", Stars: 1},
						{Key: "not_justified", Label: "Not justified", Stars: 0},
					},
				},
				{
					ID:     "non_respondents",
					Prompt: "3. Non-respondents",
					Options: []Option{
						{Key: "comparability", Label: "Comparability between respondents and non-respondents characteristics is established", Stars: 1},
						{Key: "response_rate", Label: "Response rate satisfactory or non-respondents described", Stars: 0},
						{Key: "no_description", Label: "No description of non-respondents", Stars: 0},
					},
				},
				{
					ID:     "exposure_outcome",
					Prompt: "4. Ascertainment of the exposure (or risk factor)",
					Options: []Option{
						{Key: "validated_tool", Label: "Validated measurement tool", Stars: 1},
						{Key: "non_validated", Label: "Non-validated measurement tool or unclear", Stars: 0},
					},
				},
			},
		},
		{
			Name: DomainComparability,
			Criteria: []Criterion{
				comparability(
					"5. The subjects in different outcome groups are comparable",
					"Study controls for the most important confounding factor",
					"Study controls for additional confounding factors",
					w,
				),
			},
		},
		{
			Name: DomainOutcome,
			Criteria: []Criterion{
				{
					ID:     "assessment_outcome",
					Prompt: "6. Assessment of the outcome",
					Options: []Option{
						{Key: "independent_blind", Label: "Independent blind assessment", Stars: 1},
						{Key: "record_linkage", Label: "Record linkage", Stars: 1},
						{Key: "self_report", Label: "Self-report", Stars: 0},
						{Key: "no_description", Label: "No description", Stars: 0},
					},
				},
				{
					ID:     "statistical_test",
					Prompt: "7. Statistical test",
					Options: []Option{
						{Key: "appropriate", Label: "The statistical test used to analyze the data is clearly described and appropriate", Stars: 1},
						{Key: "inappropriate", Label: "The statistical test is not appropriate, not described or incomplete", Stars: 0},
					},
				},
			},
		},
	}
}
