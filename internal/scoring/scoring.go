// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scoring converts a Newcastle-Ottawa assessment into stars and a
// quality tier. The engine is pure: it reads an immutable registry and never
// mutates its inputs, so the same assessment always yields the same result.
package scoring

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/nos-assess/internal/registry"
	"github.com/pdiddy/nos-assess/pkg/types"
)

var (
	// ErrUnknownOptionKey is returned when an answer names an option the
	// criterion does not define.
	ErrUnknownOptionKey = errors.New("unknown option key")

	// ErrMissingAnswer is returned when a criterion has no answer.
	ErrMissingAnswer = errors.New("missing answer")

	// ErrIncompleteAssessment is returned by Score when any criterion of the
	// study type's questionnaire is unanswered.
	ErrIncompleteAssessment = errors.New("incomplete assessment")

	// ErrUnknownCriterion is returned by Validate for answers to criteria
	// outside the questionnaire.
	ErrUnknownCriterion = errors.New("unknown criterion")

	// ErrTotalOutOfRange is returned by Classify for totals outside
	// [0, max stars].
	ErrTotalOutOfRange = errors.New("total stars out of range")
)

// DomainScore is the star count of one domain.
type DomainScore struct {
	Name     string `json:"name" yaml:"name"`
	Stars    int    `json:"stars" yaml:"stars"`
	MaxStars int    `json:"max_stars" yaml:"max_stars"`
}

// Percentage returns Stars as a percentage of MaxStars.
func (d DomainScore) Percentage() float64 {
	if d.MaxStars <= 0 {
		return 0
	}
	return float64(d.Stars) / float64(d.MaxStars) * 100
}

// Fraction returns Stars / MaxStars in [0, 1].
func (d DomainScore) Fraction() float64 {
	return d.Percentage() / 100
}

// Result is the derived score of one assessment.
type Result struct {
	StudyType  types.StudyType `json:"study_type" yaml:"study_type"`
	TotalStars int             `json:"total_stars" yaml:"total_stars"`
	MaxStars   int             `json:"max_stars" yaml:"max_stars"`
	Domains    []DomainScore   `json:"domains" yaml:"domains"`
	Tier       QualityTier     `json:"quality_tier" yaml:"quality_tier"`
}

// PerDomainStars returns the domain breakdown keyed by domain name.
func (r Result) PerDomainStars() map[string]int {
	out := make(map[string]int, len(r.Domains))
	for _, d := range r.Domains {
		out[d.Name] = d.Stars
	}
	return out
}

// Domain returns the score of the named domain.
func (r Result) Domain(name string) (DomainScore, bool) {
	for _, d := range r.Domains {
		if d.Name == name {
			return d, true
		}
	}
	return DomainScore{}, false
}

// Rating formats the result the way it is shown to reviewers,
// e.g. "Good Quality (7/9 stars)".
func (r Result) Rating() string {
	return fmt.Sprintf("%s (%d/%d stars)", r.Tier.Label(), r.TotalStars, r.MaxStars)
}

// Engine scores assessments against a registry.
type Engine struct {
	reg *registry.Registry
}

// NewEngine returns an engine bound to reg.
func NewEngine(reg *registry.Registry) *Engine {
	return &Engine{reg: reg}
}

// Registry returns the registry the engine scores against.
func (e *Engine) Registry() *registry.Registry {
	return e.reg
}

// ScoreCriterion returns the stars of the option selected for c.
func (e *Engine) ScoreCriterion(c registry.Criterion, a types.Assessment) (int, error) {
	key, ok := a[c.ID]
	if !ok {
		return 0, fmt.Errorf("%w: criterion %q", ErrMissingAnswer, c.ID)
	}
	opt, ok := c.Option(key)
	if !ok {
		return 0, fmt.Errorf("%w: %q for criterion %q", ErrUnknownOptionKey, key, c.ID)
	}
	return opt.Stars, nil
}

// ScoreDomain sums the criterion stars of d. A capped domain holds a single
// criterion, so its total is that criterion's contribution.
func (e *Engine) ScoreDomain(d registry.Domain, a types.Assessment) (int, error) {
	total := 0
	for _, c := range d.Criteria {
		stars, err := e.ScoreCriterion(c, a)
		if err != nil {
			return 0, fmt.Errorf("scoring domain %s: %w", d.Name, err)
		}
		total += stars
	}
	return total, nil
}

// ScoreTotal sums ScoreDomain over every domain of the study type.
func (e *Engine) ScoreTotal(t types.StudyType, a types.Assessment) (int, error) {
	set, err := e.reg.CriteriaSet(t)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, d := range set.Domains {
		stars, err := e.ScoreDomain(d, a)
		if err != nil {
			return 0, err
		}
		total += stars
	}
	return total, nil
}

// Classify maps a star total to a quality tier using the study type's
// thresholds.
func (e *Engine) Classify(t types.StudyType, total int) (QualityTier, error) {
	maxStars, err := e.reg.MaxStars(t)
	if err != nil {
		return "", err
	}
	if total < 0 || total > maxStars {
		return "", fmt.Errorf("%w: %d not in [0, %d]", ErrTotalOutOfRange, total, maxStars)
	}
	th := thresholdsFor(t)
	switch {
	case total >= th.good:
		return TierGood, nil
	case total >= th.fair:
		return TierFair, nil
	default:
		return TierPoor, nil
	}
}

// Score validates completeness and returns the full result. Nothing is
// returned unless every criterion is answered with a known option.
func (e *Engine) Score(t types.StudyType, a types.Assessment) (Result, error) {
	set, err := e.reg.CriteriaSet(t)
	if err != nil {
		return Result{}, err
	}
	if missing := missingCriteria(set, a); len(missing) > 0 {
		return Result{}, fmt.Errorf("%w: %s missing %s",
			ErrIncompleteAssessment, t.DisplayName(), strings.Join(missing, ", "))
	}

	res := Result{
		StudyType: t,
		MaxStars:  set.MaxStars,
		Domains:   make([]DomainScore, 0, len(set.Domains)),
	}
	for _, d := range set.Domains {
		stars, err := e.ScoreDomain(d, a)
		if err != nil {
			return Result{}, err
		}
		res.Domains = append(res.Domains, DomainScore{
			Name:     d.Name,
			Stars:    stars,
			MaxStars: d.MaxStars(),
		})
		res.TotalStars += stars
	}

	tier, err := e.Classify(t, res.TotalStars)
	if err != nil {
		return Result{}, err
	}
	res.Tier = tier
	return res, nil
}

// Validate checks that a answers every criterion of t with a known option
// and names no criterion outside the questionnaire.
func (e *Engine) Validate(t types.StudyType, a types.Assessment) error {
	set, err := e.reg.CriteriaSet(t)
	if err != nil {
		return err
	}
	if missing := missingCriteria(set, a); len(missing) > 0 {
		return fmt.Errorf("%w: %s missing %s",
			ErrIncompleteAssessment, t.DisplayName(), strings.Join(missing, ", "))
	}

	var unknown []string
	for id := range a {
		if _, ok := set.Criterion(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s", ErrUnknownCriterion, strings.Join(unknown, ", "))
	}

	for _, c := range set.Criteria() {
		if _, err := e.ScoreCriterion(c, a); err != nil {
			return err
		}
	}
	return nil
}

// missingCriteria lists unanswered criterion IDs in questionnaire order.
func missingCriteria(set registry.CriteriaSet, a types.Assessment) []string {
	var missing []string
	for _, c := range set.Criteria() {
		if _, ok := a[c.ID]; !ok {
			missing = append(missing, c.ID)
		}
	}
	return missing
}
