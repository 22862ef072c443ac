// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry holds the declarative Newcastle-Ottawa questionnaires:
// for each study type the ordered domains, their criteria, answer options
// and star weights. A Registry is built once and never mutated.
package registry

import (
	"fmt"
	"strings"

	"github.com/pdiddy/nos-assess/pkg/types"
)

// Weighting selects how many stars the comparability criterion awards for
// controlling additional factors. Both schemes cap the domain at 2 stars.
type Weighting string

const (
	// WeightingStandard awards 1 star for the most important factor and 2
	// for additional factors.
	WeightingStandard Weighting = "standard"

	// WeightingFlat awards 1 star for either comparability option.
	WeightingFlat Weighting = "flat"
)

// ParseWeighting converts a config value to a Weighting. Empty means standard.
func ParseWeighting(s string) (Weighting, error) {
	switch Weighting(strings.ToLower(strings.TrimSpace(s))) {
	case "", WeightingStandard:
		return WeightingStandard, nil
	case WeightingFlat:
		return WeightingFlat, nil
	}
	return "", fmt.Errorf("unsupported weighting %q: use standard or flat", s)
}

// Option is one answer choice of a criterion.
type Option struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Stars int    `json:"stars" yaml:"stars"`
}

// Criterion is a single checklist question.
type Criterion struct {
	ID      string   `json:"id" yaml:"id"`
	Prompt  string   `json:"prompt" yaml:"prompt"`
	Options []Option `json:"options" yaml:"options"`

	// DomainCap, when non-zero, fixes the maximum stars of the enclosing
	// domain. Only a capped criterion may award more than one star.
	DomainCap int `json:"domain_cap,omitempty" yaml:"domain_cap,omitempty"`
}

// Option returns the option with the given key.
func (c Criterion) Option(key string) (Option, bool) {
	for _, o := range c.Options {
		if o.Key == key {
			return o, true
		}
	}
	return Option{}, false
}

// MaxStars returns the highest star value among the options.
func (c Criterion) MaxStars() int {
	best := 0
	for _, o := range c.Options {
		if o.Stars > best {
			best = o.Stars
		}
	}
	return best
}

// Domain is a named grouping of criteria.
type Domain struct {
	Name     string      `json:"name" yaml:"name"`
	Criteria []Criterion `json:"criteria" yaml:"criteria"`
}

// Cap returns the domain cap carried by one of its criteria, or 0.
func (d Domain) Cap() int {
	for _, c := range d.Criteria {
		if c.DomainCap > 0 {
			return c.DomainCap
		}
	}
	return 0
}

// MaxStars is the maximum attainable stars for the domain: the cap when one
// is declared, otherwise the sum of each criterion's best option.
func (d Domain) MaxStars() int {
	if capStars := d.Cap(); capStars > 0 {
		return capStars
	}
	total := 0
	for _, c := range d.Criteria {
		total += c.MaxStars()
	}
	return total
}

// CriteriaSet is the full questionnaire for one study type.
type CriteriaSet struct {
	StudyType types.StudyType `json:"study_type" yaml:"study_type"`
	Domains   []Domain        `json:"domains" yaml:"domains"`
	MaxStars  int             `json:"max_stars" yaml:"max_stars"`
}

// Criteria returns all criteria in questionnaire order.
func (s CriteriaSet) Criteria() []Criterion {
	var out []Criterion
	for _, d := range s.Domains {
		out = append(out, d.Criteria...)
	}
	return out
}

// Criterion looks up a criterion by ID.
func (s CriteriaSet) Criterion(id string) (Criterion, bool) {
	for _, d := range s.Domains {
		for _, c := range d.Criteria {
			if c.ID == id {
				return c, true
			}
		}
	}
	return Criterion{}, false
}

// Domain looks up a domain by name.
func (s CriteriaSet) Domain(name string) (Domain, bool) {
	for _, d := range s.Domains {
		if d.Name == name {
			return d, true
		}
	}
	return Domain{}, false
}

// maxStars are the declared star ceilings per study type.
var maxStars = map[types.StudyType]int{
	types.StudyCohort:         9,
	types.StudyCaseControl:    9,
	types.StudyCrossSectional: 8,
}

// Registry exposes the three questionnaires.
type Registry struct {
	weighting Weighting
	sets      map[types.StudyType]CriteriaSet
}

// New builds and validates a registry for the given weighting scheme.
func New(w Weighting) (*Registry, error) {
	w, err := ParseWeighting(string(w))
	if err != nil {
		return nil, err
	}

	r := &Registry{
		weighting: w,
		sets:      make(map[types.StudyType]CriteriaSet, len(types.StudyTypes)),
	}
	for _, t := range types.StudyTypes {
		set := CriteriaSet{
			StudyType: t,
			Domains:   questionnaire(t, w),
			MaxStars:  maxStars[t],
		}
		if err := validateSet(set); err != nil {
			return nil, fmt.Errorf("building %s questionnaire: %w", t, err)
		}
		r.sets[t] = set
	}
	return r, nil
}

// Default returns the standard-weighted registry. It panics only if the
// built-in questionnaires are inconsistent.
func Default() *Registry {
	r, err := New(WeightingStandard)
	if err != nil {
		panic(err)
	}
	return r
}

// Weighting returns the comparability weighting scheme in use.
func (r *Registry) Weighting() Weighting {
	return r.weighting
}

// CriteriaSet returns a copy of the questionnaire for t.
func (r *Registry) CriteriaSet(t types.StudyType) (CriteriaSet, error) {
	set, ok := r.sets[t]
	if !ok {
		return CriteriaSet{}, fmt.Errorf("%w: %q", types.ErrUnknownStudyType, t)
	}
	return set.clone(), nil
}

// MaxStars returns the declared star ceiling for t.
func (r *Registry) MaxStars(t types.StudyType) (int, error) {
	set, ok := r.sets[t]
	if !ok {
		return 0, fmt.Errorf("%w: %q", types.ErrUnknownStudyType, t)
	}
	return set.MaxStars, nil
}

// DomainNames returns the union of domain names across all study types,
// in first-seen order.
func (r *Registry) DomainNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range types.StudyTypes {
		for _, d := range r.sets[t].Domains {
			if !seen[d.Name] {
				seen[d.Name] = true
				names = append(names, d.Name)
			}
		}
	}
	return names
}

func (s CriteriaSet) clone() CriteriaSet {
	out := CriteriaSet{StudyType: s.StudyType, MaxStars: s.MaxStars}
	out.Domains = make([]Domain, len(s.Domains))
	for i, d := range s.Domains {
		nd := Domain{Name: d.Name, Criteria: make([]Criterion, len(d.Criteria))}
		for j, c := range d.Criteria {
			nc := c
			nc.Options = append([]Option(nil), c.Options...)
			nd.Criteria[j] = nc
		}
		out.Domains[i] = nd
	}
	return out
}

// validateSet enforces the structural invariants of a questionnaire.
func validateSet(s CriteriaSet) error {
	ids := make(map[string]bool)
	sum := 0
	for _, d := range s.Domains {
		capped := 0
		for _, c := range d.Criteria {
			if ids[c.ID] {
				return fmt.Errorf("duplicate criterion %q", c.ID)
			}
			ids[c.ID] = true
			if len(c.Options) == 0 {
				return fmt.Errorf("criterion %q has no options", c.ID)
			}
			keys := make(map[string]bool, len(c.Options))
			for _, o := range c.Options {
				if keys[o.Key] {
					return fmt.Errorf("criterion %q: duplicate option %q", c.ID, o.Key)
				}
				keys[o.Key] = true
				if o.Stars < 0 {
					return fmt.Errorf("criterion %q: option %q has negative stars", c.ID, o.Key)
				}
			}
			if c.DomainCap > 0 {
				capped++
				if c.MaxStars() > c.DomainCap {
					return fmt.Errorf("criterion %q exceeds its domain cap of %d", c.ID, c.DomainCap)
				}
			} else if c.MaxStars() > 1 {
				return fmt.Errorf("criterion %q awards %d stars without a domain cap", c.ID, c.MaxStars())
			}
		}
		if capped > 0 && len(d.Criteria) != 1 {
			return fmt.Errorf("capped domain %q must contain exactly one criterion", d.Name)
		}
		sum += d.MaxStars()
	}
	if sum != s.MaxStars {
		return fmt.Errorf("domain maxima sum to %d, declared %d", sum, s.MaxStars)
	}
	return nil
}
