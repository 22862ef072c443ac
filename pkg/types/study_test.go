package types

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestParseStudyType(t *testing.T) {
	tests := []struct {
		in   string
		want StudyType
	}{
		{"cohort", StudyCohort},
		{"Case-Control", StudyCaseControl},
		{"Cross-Sectional Studies", StudyCrossSectional},
		{"  cohort studies ", StudyCohort},
	}
	for _, tt := range tests {
		got, err := ParseStudyType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseStudyType("RCT")
	assert.True(t, errors.Is(err, ErrUnknownStudyType))
}

func TestStudyTypeUnmarshal(t *testing.T) {
	var rec StudyRecord
	require.NoError(t, yaml.Unmarshal([]byte("study_name: X\nstudy_type: Case-Control Studies\n"), &rec))
	assert.Equal(t, StudyCaseControl, rec.StudyType)

	require.NoError(t, json.Unmarshal([]byte(`{"study_type":"cross-sectional"}`), &rec))
	assert.Equal(t, StudyCrossSectional, rec.StudyType)

	err := json.Unmarshal([]byte(`{"study_type":"meta-analysis"}`), &rec)
	assert.Error(t, err)
}

func TestStudyRecordValidate(t *testing.T) {
	now := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	valid := StudyRecord{StudyName: "Smith 2023", StudyType: StudyCohort, PublicationYear: 2023}
	require.NoError(t, valid.Validate(now))

	noYear := valid
	noYear.PublicationYear = 0
	assert.NoError(t, noYear.Validate(now))

	tests := []struct {
		name   string
		mutate func(r *StudyRecord)
	}{
		{"blank name", func(r *StudyRecord) { r.StudyName = "   " }},
		{"bad type", func(r *StudyRecord) { r.StudyType = "rct" }},
		{"year too early", func(r *StudyRecord) { r.PublicationYear = 1899 }},
		{"year in future", func(r *StudyRecord) { r.PublicationYear = 2027 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			assert.Error(t, r.Validate(now))
		})
	}
}

func TestAssessmentClone(t *testing.T) {
	a := Assessment{"comparability": "most_important"}
	b := a.Clone()
	b["comparability"] = "no_control"
	assert.Equal(t, "most_important", a["comparability"])
}
