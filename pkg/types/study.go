// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for nos-assess: study types,
// assessments (answer sets) and the persisted study record.
package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownStudyType is returned when a study type is not one of the
// supported Newcastle-Ottawa questionnaires.
var ErrUnknownStudyType = errors.New("unknown study type")

// StudyType selects the questionnaire, star ceiling and quality thresholds
// applied to a study.
type StudyType string

const (
	StudyCohort         StudyType = "cohort"
	StudyCaseControl    StudyType = "case-control"
	StudyCrossSectional StudyType = "cross-sectional"
)

// StudyTypes lists the supported study types in display order.
var StudyTypes = []StudyType{StudyCohort, StudyCaseControl, StudyCrossSectional}

// Valid reports whether t is a supported study type.
func (t StudyType) Valid() bool {
	switch t {
	case StudyCohort, StudyCaseControl, StudyCrossSectional:
		return true
	}
	return false
}

// DisplayName returns the human-readable questionnaire name.
func (t StudyType) DisplayName() string {
	switch t {
	case StudyCohort:
		return "Cohort Studies"
	case StudyCaseControl:
		return "Case-Control Studies"
	case StudyCrossSectional:
		return "Cross-Sectional Studies"
	}
	return string(t)
}

// ParseStudyType accepts a slug ("cohort") or a display name
// ("Cohort Studies"), case-insensitively.
func ParseStudyType(s string) (StudyType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, t := range StudyTypes {
		if norm == string(t) || norm == strings.ToLower(t.DisplayName()) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStudyType, s)
}

// UnmarshalText lets study files use either form of the study type name.
func (t *StudyType) UnmarshalText(text []byte) error {
	parsed, err := ParseStudyType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Assessment maps a criterion ID to the selected option key.
type Assessment map[string]string

// Clone returns an independent copy of a.
func (a Assessment) Clone() Assessment {
	out := make(Assessment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// AssessmentDateLayout is the timestamp format stored with each record.
const AssessmentDateLayout = "2006-01-02 15:04:05"

const (
	minPublicationYear = 1900
)

// StudyRecord is one assessed study: identifying metadata, the answers, and
// the score cached at save time. TotalStars and QualityRating are display
// caches; reports recompute them from the Assessment.
type StudyRecord struct {
	// ID is assigned by the store when the record is appended.
	ID string `json:"id" yaml:"id"`

	StudyName       string `json:"study_name" yaml:"study_name"`
	Authors         string `json:"authors" yaml:"authors"`
	PublicationYear int    `json:"publication_year" yaml:"publication_year"`
	Journal         string `json:"journal" yaml:"journal"`
	DOI             string `json:"doi" yaml:"doi"`

	StudyType  StudyType  `json:"study_type" yaml:"study_type"`
	Assessment Assessment `json:"assessment" yaml:"assessment"`

	TotalStars    int    `json:"total_stars" yaml:"total_stars"`
	QualityRating string `json:"quality_rating" yaml:"quality_rating"`

	Notes string `json:"notes" yaml:"notes"`

	// AssessmentDate uses AssessmentDateLayout.
	AssessmentDate string `json:"assessment_date" yaml:"assessment_date"`
}

// Validate checks the caller-side requirements on study metadata. Scoring
// validation of the Assessment is done by the scoring engine.
func (r *StudyRecord) Validate(now time.Time) error {
	if strings.TrimSpace(r.StudyName) == "" {
		return fmt.Errorf("please provide a study name")
	}
	if !r.StudyType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStudyType, r.StudyType)
	}
	if r.PublicationYear != 0 && (r.PublicationYear < minPublicationYear || r.PublicationYear > now.Year()) {
		return fmt.Errorf("publication year %d outside %d-%d", r.PublicationYear, minPublicationYear, now.Year())
	}
	return nil
}
