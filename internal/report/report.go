// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report aggregates scored studies into summary statistics: tier and
// study-type distributions, the stars histogram, and per-domain performance.
// Every score is recomputed through the scoring engine; cached record values
// are never trusted.
package report

import (
	"fmt"
	"sort"

	"github.com/pdiddy/nos-assess/internal/scoring"
	"github.com/pdiddy/nos-assess/pkg/types"
)

// StudyScore pairs a record with its freshly computed score.
type StudyScore struct {
	Record types.StudyRecord `json:"record" yaml:"record"`
	Result scoring.Result    `json:"result" yaml:"result"`
}

// Count is one bucket of a distribution.
type Count struct {
	Label      string  `json:"label" yaml:"label"`
	Count      int     `json:"count" yaml:"count"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// StarsCount is one bar of the stars histogram.
type StarsCount struct {
	Stars int `json:"stars" yaml:"stars"`
	Count int `json:"count" yaml:"count"`
}

// DomainAverage is the mean domain percentage over the studies that have
// the domain.
type DomainAverage struct {
	Domain     string  `json:"domain" yaml:"domain"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
	Studies    int     `json:"studies" yaml:"studies"`
}

// Summary is the aggregated report over a study list.
type Summary struct {
	TotalStudies   int             `json:"total_studies" yaml:"total_studies"`
	Tiers          []Count         `json:"tiers" yaml:"tiers"`
	StudyTypes     []Count         `json:"study_types" yaml:"study_types"`
	Stars          []StarsCount    `json:"stars" yaml:"stars"`
	DomainAverages []DomainAverage `json:"domain_averages" yaml:"domain_averages"`
	Studies        []StudyScore    `json:"studies" yaml:"studies"`
}

// Score recomputes the score of every record. It fails on the first record
// that no longer scores, naming the study.
func Score(engine *scoring.Engine, records []types.StudyRecord) ([]StudyScore, error) {
	out := make([]StudyScore, 0, len(records))
	for _, rec := range records {
		res, err := engine.Score(rec.StudyType, rec.Assessment)
		if err != nil {
			return nil, fmt.Errorf("scoring %s (%s): %w", rec.StudyName, rec.ID, err)
		}
		out = append(out, StudyScore{Record: rec, Result: res})
	}
	return out, nil
}

// Build scores records and aggregates the summary.
func Build(engine *scoring.Engine, records []types.StudyRecord) (Summary, error) {
	scored, err := Score(engine, records)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(scored), nil
}

// Summarize aggregates already-scored studies.
func Summarize(scored []StudyScore) Summary {
	s := Summary{
		TotalStudies: len(scored),
		Studies:      scored,
	}

	tierCounts := make(map[scoring.QualityTier]int)
	typeCounts := make(map[types.StudyType]int)
	starCounts := make(map[int]int)
	domainSum := make(map[string]float64)
	domainN := make(map[string]int)
	var domainOrder []string

	for _, st := range scored {
		tierCounts[st.Result.Tier]++
		typeCounts[st.Record.StudyType]++
		starCounts[st.Result.TotalStars]++
		for _, d := range st.Result.Domains {
			if _, ok := domainN[d.Name]; !ok {
				domainOrder = append(domainOrder, d.Name)
			}
			domainSum[d.Name] += d.Percentage()
			domainN[d.Name]++
		}
	}

	for _, tier := range scoring.Tiers {
		s.Tiers = append(s.Tiers, Count{
			Label:      tier.Label(),
			Count:      tierCounts[tier],
			Percentage: percent(tierCounts[tier], len(scored)),
		})
	}

	for _, t := range types.StudyTypes {
		if n := typeCounts[t]; n > 0 {
			s.StudyTypes = append(s.StudyTypes, Count{
				Label:      t.DisplayName(),
				Count:      n,
				Percentage: percent(n, len(scored)),
			})
		}
	}
	sort.SliceStable(s.StudyTypes, func(i, j int) bool {
		return s.StudyTypes[i].Count > s.StudyTypes[j].Count
	})

	for stars, n := range starCounts {
		s.Stars = append(s.Stars, StarsCount{Stars: stars, Count: n})
	}
	sort.Slice(s.Stars, func(i, j int) bool { return s.Stars[i].Stars < s.Stars[j].Stars })

	for _, name := range domainOrder {
		s.DomainAverages = append(s.DomainAverages, DomainAverage{
			Domain:     name,
			Percentage: domainSum[name] / float64(domainN[name]),
			Studies:    domainN[name],
		})
	}
	sort.SliceStable(s.DomainAverages, func(i, j int) bool {
		return s.DomainAverages[i].Percentage > s.DomainAverages[j].Percentage
	})

	return s
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
