package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nos-assess/internal/registry"
	"github.com/pdiddy/nos-assess/internal/report"
	"github.com/pdiddy/nos-assess/internal/scoring"
	"github.com/pdiddy/nos-assess/pkg/types"
)

func sampleScored(t *testing.T) []report.StudyScore {
	t.Helper()
	records := []types.StudyRecord{
		{
			ID: "STU-aaaaaaaaaa", StudyName: "Smith et al. 2023", Authors: "Smith J, Brown K",
			PublicationYear: 2023, Journal: "J Clin Med", DOI: "10.1000/xyz123",
			StudyType: types.StudyCohort,
			Assessment: types.Assessment{
				"representativeness":       "truly_representative",
				"selection_nonexposed":     "same_community",
				"ascertainment_exposure":   "secure_record",
				"outcome_not_present":      "yes",
				"comparability":            "most_important",
				"assessment_outcome":       "record_linkage",
				"adequate_followup_length": "yes",
				"adequacy_followup":        "high_loss",
			},
			TotalStars: 3, QualityRating: "Poor Quality",
			AssessmentDate: "2026-03-14 09:30:00", Notes: "stale cache above",
		},
		{
			ID: "STU-bbbbbbbbbb", StudyName: "Lee, 2019", StudyType: types.StudyCaseControl,
			Assessment: types.Assessment{
				"case_definition":          "independent_validation",
				"representativeness_cases": "potential_selection",
				"selection_controls":       "hospital_controls",
				"definition_controls":      "no_history",
				"comparability":            "additional_factor",
				"ascertainment_exposure":   "secure_record",
				"same_method":              "yes",
				"non_response_rate":        "same_rate",
			},
		},
	}
	scored, err := report.Score(scoring.NewEngine(registry.Default()), records)
	require.NoError(t, err)
	return scored
}

func readCSV(t *testing.T, data []byte) []map[string]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	header := rows[0]
	var out []map[string]string
	for _, row := range rows[1:] {
		require.Len(t, row, len(header))
		m := make(map[string]string, len(header))
		for i, h := range header {
			m[h] = row[i]
		}
		out = append(out, m)
	}
	return out
}

func TestRecordsCSV(t *testing.T) {
	e := New(registry.Default())
	var buf bytes.Buffer
	require.NoError(t, e.RecordsCSV(&buf, sampleScored(t)))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 2)

	smith := rows[0]
	assert.Equal(t, "Smith et al. 2023", smith["Study_Name"])
	assert.Equal(t, "Cohort Studies", smith["Study_Type"])
	assert.Equal(t, "7", smith["Total_Stars"], "score is recomputed")
	assert.Equal(t, "Good Quality", smith["Quality_Rating"])
	assert.Equal(t, "most_important", smith["NOS_comparability"])
	assert.Equal(t, "high_loss", smith["NOS_adequacy_followup"])
	assert.Equal(t, "", smith["NOS_same_method"], "case-control criterion blank for cohort")

	lee := rows[1]
	assert.Equal(t, "Lee, 2019", lee["Study_Name"])
	assert.Equal(t, "", lee["Publication_Year"])
	assert.Equal(t, "7", lee["Total_Stars"])
	assert.Equal(t, "yes", lee["NOS_same_method"])
}

func TestDetailedCSV(t *testing.T) {
	e := New(registry.Default())
	var buf bytes.Buffer
	require.NoError(t, e.DetailedCSV(&buf, sampleScored(t)))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 2)

	smith := rows[0]
	assert.Equal(t, "4", smith["Selection_Stars"])
	assert.Equal(t, "4", smith["Selection_Max_Stars"])
	assert.Equal(t, "100.00", smith["Selection_Percentage"])
	assert.Equal(t, "1", smith["Comparability_Stars"])
	assert.Equal(t, "2", smith["Comparability_Max_Stars"])
	assert.Equal(t, "50.00", smith["Comparability_Percentage"])
	assert.Equal(t, "2", smith["Outcome_Stars"])
	assert.Equal(t, "66.67", smith["Outcome_Percentage"])
	assert.Equal(t, "", smith["Exposure_Stars"])
	assert.Equal(t, "9", smith["Max_Stars"])

	lee := rows[1]
	assert.Equal(t, "2", lee["Comparability_Stars"])
	assert.Equal(t, "3", lee["Exposure_Stars"])
	assert.Equal(t, "", lee["Outcome_Percentage"])
}

func TestJSONAndYAML(t *testing.T) {
	scored := sampleScored(t)

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, scored))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	first := decoded[0]
	for _, key := range []string{
		"study_name", "authors", "publication_year", "journal", "doi", "study_type",
		"assessment", "total_stars", "quality_rating", "notes", "assessment_date", "domains",
	} {
		assert.Contains(t, first, key)
	}
	assert.Equal(t, float64(7), first["total_stars"])
	assert.Equal(t, "Good Quality", first["quality_rating"])
	assert.Equal(t, "cohort", first["study_type"])

	buf.Reset()
	require.NoError(t, YAML(&buf, scored))
	var entries []Entry
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Lee, 2019", entries[1].StudyName)
	assert.Equal(t, types.StudyCaseControl, entries[1].StudyType)
	require.Len(t, entries[1].Domains, 3)
	assert.Equal(t, "Exposure", entries[1].Domains[2].Name)
}

func TestEmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, nil))
	assert.JSONEq(t, "[]", buf.String())
}

func TestWriteFile(t *testing.T) {
	e := New(registry.Default())
	dir := filepath.Join(t.TempDir(), "output")
	now := time.Date(2026, 3, 14, 9, 30, 5, 0, time.UTC)

	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			path, err := e.WriteFile(dir, f, sampleScored(t), now)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, FileName(f, now)), path)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
		})
	}
	assert.Equal(t, "nos_assessment_data_20260314_093005.csv", FileName(FormatCSV, now))
	assert.Equal(t, "nos_detailed_domain_analysis_20260314_093005.csv", FileName(FormatDetailedCSV, now))
	assert.Equal(t, "nos_assessment_data_20260314_093005.json", FileName(FormatJSON, now))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("detailed-csv")
	require.NoError(t, err)
	assert.Equal(t, FormatDetailedCSV, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}
