// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nos-assess/internal/registry"
	"github.com/pdiddy/nos-assess/pkg/types"
)

// --- test helpers ---

func testEngine(t *testing.T, w registry.Weighting) *Engine {
	t.Helper()
	reg, err := registry.New(w)
	require.NoError(t, err)
	return NewEngine(reg)
}

func criteriaSet(t *testing.T, e *Engine, st types.StudyType) registry.CriteriaSet {
	t.Helper()
	set, err := e.Registry().CriteriaSet(st)
	require.NoError(t, err)
	return set
}

// pick answers every criterion with the option chosen by choose.
func pick(set registry.CriteriaSet, choose func(registry.Criterion) string) types.Assessment {
	a := types.Assessment{}
	for _, c := range set.Criteria() {
		a[c.ID] = choose(c)
	}
	return a
}

func bestOption(c registry.Criterion) string {
	best := c.Options[0]
	for _, o := range c.Options {
		if o.Stars > best.Stars {
			best = o
		}
	}
	return best.Key
}

func zeroOption(c registry.Criterion) string {
	for _, o := range c.Options {
		if o.Stars == 0 {
			return o.Key
		}
	}
	return ""
}

// allAssessments enumerates every complete assessment of set.
func allAssessments(set registry.CriteriaSet) []types.Assessment {
	out := []types.Assessment{{}}
	for _, c := range set.Criteria() {
		var next []types.Assessment
		for _, a := range out {
			for _, o := range c.Options {
				na := a.Clone()
				na[c.ID] = o.Key
				next = append(next, na)
			}
		}
		out = next
	}
	return out
}

// --- scenarios ---

func TestCohortScenarios(t *testing.T) {
	e := testEngine(t, registry.WeightingStandard)
	set := criteriaSet(t, e, types.StudyCohort)

	selection := func(stars bool) map[string]string {
		if stars {
			return map[string]string{
				"representativeness":     "truly_representative",
				"selection_nonexposed":   "same_community",
				"ascertainment_exposure": "secure_record",
				"outcome_not_present":    "yes",
			}
		}
		return map[string]string{
			"representativeness":     "no_description",
			"selection_nonexposed":   "no_description",
			"ascertainment_exposure": "no_description",
			"outcome_not_present":    "no",
		}
	}
	merge := func(parts ...map[string]string) types.Assessment {
		a := types.Assessment{}
		for _, p := range parts {
			for k, v := range p {
				a[k] = v
			}
		}
		return a
	}

	tests := []struct {
		name      string
		a         types.Assessment
		wantTotal int
		wantTier  QualityTier
		wantComp  int
	}{
		{
			name:      "all maximum with additional factor",
			a:         pick(set, bestOption),
			wantTotal: 9,
			wantTier:  TierGood,
			wantComp:  2,
		},
		{
			name:      "all zero",
			a:         pick(set, zeroOption),
			wantTotal: 0,
			wantTier:  TierPoor,
			wantComp:  0,
		},
		{
			name: "selection only",
			a: merge(selection(true), map[string]string{
				"comparability":            "no_control",
				"assessment_outcome":       "self_report",
				"adequate_followup_length": "no",
				"adequacy_followup":        "no_statement",
			}),
			wantTotal: 4,
			wantTier:  TierPoor,
			wantComp:  0,
		},
		{
			name: "selection, most important factor, two outcome stars",
			a: merge(selection(true), map[string]string{
				"comparability":            "most_important",
				"assessment_outcome":       "record_linkage",
				"adequate_followup_length": "yes",
				"adequacy_followup":        "high_loss",
			}),
			wantTotal: 7,
			wantTier:  TierGood,
			wantComp:  1,
		},
		{
			name: "fair boundary",
			a: merge(selection(true), map[string]string{
				"comparability":            "most_important",
				"assessment_outcome":       "no_description",
				"adequate_followup_length": "no",
				"adequacy_followup":        "no_statement",
			}),
			wantTotal: 5,
			wantTier:  TierFair,
			wantComp:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Score(types.StudyCohort, tt.a)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, res.TotalStars)
			assert.Equal(t, tt.wantTier, res.Tier)
			assert.Equal(t, 9, res.MaxStars)
			assert.Equal(t, tt.wantComp, res.PerDomainStars()[registry.DomainComparability])
		})
	}
}

func TestCrossSectionalClassification(t *testing.T) {
	e := testEngine(t, registry.WeightingStandard)
	tests := []struct {
		total int
		want  QualityTier
	}{
		{8, TierGood},
		{6, TierGood},
		{5, TierFair},
		{4, TierFair},
		{3, TierPoor},
		{0, TierPoor},
	}
	for _, tt := range tests {
		got, err := e.Classify(types.StudyCrossSectional, tt.total)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "total %d", tt.total)
	}
}

func TestClassifyTotality(t *testing.T) {
	e := testEngine(t, registry.WeightingStandard)
	for _, st := range types.StudyTypes {
		maxStars, err := e.Registry().MaxStars(st)
		require.NoError(t, err)

		prev := TierPoor
		seen := map[QualityTier]bool{}
		for total := 0; total <= maxStars; total++ {
			tier, err := e.Classify(st, total)
			require.NoError(t, err)
			require.True(t, tier.Valid())
			seen[tier] = true
			// Tiers never get worse as the total rises.
			assert.GreaterOrEqual(t, tierRank(tier), tierRank(prev), "%s total %d", st, total)
			prev = tier
		}
		assert.Len(t, seen, 3, "%s: all tiers reachable", st)

		_, err = e.Classify(st, maxStars+1)
		assert.True(t, errors.Is(err, ErrTotalOutOfRange))
		_, err = e.Classify(st, -1)
		assert.True(t, errors.Is(err, ErrTotalOutOfRange))
	}
}

func tierRank(q QualityTier) int {
	switch q {
	case TierGood:
		return 2
	case TierFair:
		return 1
	}
	return 0
}

// --- properties over every possible assessment ---

func TestExhaustiveProperties(t *testing.T) {
	for _, w := range []registry.Weighting{registry.WeightingStandard, registry.WeightingFlat} {
		e := testEngine(t, w)
		for _, st := range types.StudyTypes {
			t.Run(string(w)+"/"+string(st), func(t *testing.T) {
				set := criteriaSet(t, e, st)
				for _, a := range allAssessments(set) {
					res, err := e.Score(st, a)
					require.NoError(t, err)

					assert.GreaterOrEqual(t, res.TotalStars, 0)
					assert.LessOrEqual(t, res.TotalStars, set.MaxStars)

					sum := 0
					for _, d := range set.Domains {
						stars, err := e.ScoreDomain(d, a)
						require.NoError(t, err)
						sum += stars
						assert.LessOrEqual(t, stars, d.MaxStars())
					}
					assert.Equal(t, res.TotalStars, sum)

					total, err := e.ScoreTotal(st, a)
					require.NoError(t, err)
					assert.Equal(t, res.TotalStars, total)

					again, err := e.Score(st, a)
					require.NoError(t, err)
					assert.Equal(t, res, again)
				}
			})
		}
	}
}

func TestComparabilityCap(t *testing.T) {
	tests := []struct {
		weighting  registry.Weighting
		additional int
	}{
		{registry.WeightingStandard, 2},
		{registry.WeightingFlat, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.weighting), func(t *testing.T) {
			e := testEngine(t, tt.weighting)
			for _, st := range types.StudyTypes {
				set := criteriaSet(t, e, st)
				d, ok := set.Domain(registry.DomainComparability)
				require.True(t, ok)

				got, err := e.ScoreDomain(d, types.Assessment{"comparability": "additional_factor"})
				require.NoError(t, err)
				assert.Equal(t, tt.additional, got)
				assert.LessOrEqual(t, got, 2)

				got, err = e.ScoreDomain(d, types.Assessment{"comparability": "no_control"})
				require.NoError(t, err)
				assert.Equal(t, 0, got)
			}
		})
	}
}

// --- errors ---

func TestScoreIncompleteAssessment(t *testing.T) {
	e := testEngine(t, registry.WeightingStandard)
	set := criteriaSet(t, e, types.StudyCohort)
	a := pick(set, bestOption)
	delete(a, "adequacy_followup")

	res, err := e.Score(types.StudyCohort, a)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncompleteAssessment))
	assert.Contains(t, err.Error(), "adequacy_followup")
	assert.Equal(t, Result{}, res)
}

func TestScoreUnknownOption(t *testing.T) {
	e := testEngine(t, registry.WeightingStandard)
	set := criteriaSet(t, e, types.StudyCaseControl)
	a := pick(set, bestOption)
	a["same_method"] = "maybe"

	res, err := e.Score(types.StudyCaseControl, a)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownOptionKey))
	assert.Equal(t, Result{}, res)
}

func TestScoreUnknownStudyType(t *testing.T) {
	e := testEngine(t, registry.WeightingStandard)
	_, err := e.Score("rct", types.Assessment{})
	assert.True(t, errors.Is(err, types.ErrUnknownStudyType))

	_, err = e.Classify("rct", 3)
	assert.True(t, errors.Is(err, types.ErrUnknownStudyType))
}

func TestScoreCriterionMissingAnswer(t *testing.T) {
	e := testEngine(t, registry.WeightingStandard)
	set := criteriaSet(t, e, types.StudyCohort)
	c, ok := set.Criterion("representativeness")
	require.True(t, ok)

	_, err := e.ScoreCriterion(c, types.Assessment{})
	assert.True(t, errors.Is(err, ErrMissingAnswer))

	_, err = e.ScoreTotal(types.StudyCohort, types.Assessment{})
	assert.True(t, errors.Is(err, ErrMissingAnswer))
}

func TestValidate(t *testing.T) {
	e := testEngine(t, registry.WeightingStandard)
	set := criteriaSet(t, e, types.StudyCrossSectional)

	tests := []struct {
		name    string
		mutate  func(types.Assessment)
		wantErr error
	}{
		{"complete", func(types.Assessment) {}, nil},
		{"missing", func(a types.Assessment) { delete(a, "sample_size") }, ErrIncompleteAssessment},
		{"unknown criterion", func(a types.Assessment) { a["adequacy_followup"] = "no_statement" }, ErrUnknownCriterion},
		{"unknown option", func(a types.Assessment) { a["sample_size"] = "huge" }, ErrUnknownOptionKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := pick(set, bestOption)
			tt.mutate(a)
			err := e.Validate(types.StudyCrossSectional, a)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestScoreDoesNotMutateAssessment(t *testing.T) {
	e := testEngine(t, registry.WeightingStandard)
	set := criteriaSet(t, e, types.StudyCohort)
	a := pick(set, bestOption)
	before := a.Clone()

	_, err := e.Score(types.StudyCohort, a)
	require.NoError(t, err)
	assert.Equal(t, before, a)
}

func TestResultHelpers(t *testing.T) {
	e := testEngine(t, registry.WeightingStandard)
	set := criteriaSet(t, e, types.StudyCrossSectional)
	res, err := e.Score(types.StudyCrossSectional, pick(set, bestOption))
	require.NoError(t, err)

	assert.Equal(t, "Good Quality (8/8 stars)", res.Rating())
	d, ok := res.Domain(registry.DomainOutcome)
	require.True(t, ok)
	assert.Equal(t, 2, d.MaxStars)
	assert.InDelta(t, 100.0, d.Percentage(), 1e-9)
	assert.InDelta(t, 0.0, DomainScore{}.Percentage(), 1e-9)
}

func TestTierDisplay(t *testing.T) {
	assert.Equal(t, "Fair Quality", TierFair.Label())
	assert.Equal(t, "#dc3545", TierPoor.Color())
	assert.False(t, QualityTier("excellent").Valid())
}
