// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export flattens scored studies into CSV, JSON and YAML files.
// Score columns come from a fresh engine computation, not from the cached
// values stored with each record.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nos-assess/internal/registry"
	"github.com/pdiddy/nos-assess/internal/report"
	"github.com/pdiddy/nos-assess/pkg/types"
)

// Format selects an export layout.
type Format string

const (
	FormatCSV         Format = "csv"
	FormatDetailedCSV Format = "detailed-csv"
	FormatJSON        Format = "json"
	FormatYAML        Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatDetailedCSV, FormatJSON, FormatYAML}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q: use csv, detailed-csv, json or yaml", s)
}

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	}
	return ".csv"
}

func (f Format) filePrefix() string {
	if f == FormatDetailedCSV {
		return "nos_detailed_domain_analysis"
	}
	return "nos_assessment_data"
}

// FileName returns the timestamped export file name, e.g.
// nos_assessment_data_20260314_093000.csv.
func FileName(f Format, now time.Time) string {
	return fmt.Sprintf("%s_%s%s", f.filePrefix(), now.Format("20060102_150405"), f.Extension())
}

// Exporter writes exports for one registry layout.
type Exporter struct {
	reg *registry.Registry
}

// New returns an exporter whose column layout follows reg.
func New(reg *registry.Registry) *Exporter {
	return &Exporter{reg: reg}
}

// Write encodes scored studies to w in format f.
func (e *Exporter) Write(w io.Writer, f Format, scored []report.StudyScore) error {
	switch f {
	case FormatCSV:
		return e.RecordsCSV(w, scored)
	case FormatDetailedCSV:
		return e.DetailedCSV(w, scored)
	case FormatJSON:
		return JSON(w, scored)
	case FormatYAML:
		return YAML(w, scored)
	}
	return fmt.Errorf("unsupported format %q", f)
}

// WriteFile writes an export into dir with a timestamped name and returns
// the path written.
func (e *Exporter) WriteFile(dir string, f Format, scored []report.StudyScore, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, FileName(f, now))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := e.Write(file, f, scored); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

// criterionIDs returns every criterion ID across all study types, in
// questionnaire order, without duplicates.
func (e *Exporter) criterionIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, t := range types.StudyTypes {
		set, err := e.reg.CriteriaSet(t)
		if err != nil {
			continue
		}
		for _, c := range set.Criteria() {
			if !seen[c.ID] {
				seen[c.ID] = true
				ids = append(ids, c.ID)
			}
		}
	}
	return ids
}

// RecordsCSV writes one row per study: metadata, total stars, quality
// rating and one NOS_<criterion> column per criterion. Criteria that do not
// belong to a study's questionnaire are left blank.
func (e *Exporter) RecordsCSV(w io.Writer, scored []report.StudyScore) error {
	ids := e.criterionIDs()
	header := []string{
		"Study_ID", "Study_Name", "Authors", "Publication_Year", "Journal", "DOI",
		"Study_Type", "Total_Stars", "Quality_Rating", "Assessment_Date", "Notes",
	}
	for _, id := range ids {
		header = append(header, "NOS_"+id)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, st := range scored {
		rec := st.Record
		row := []string{
			rec.ID, rec.StudyName, rec.Authors, yearString(rec.PublicationYear), rec.Journal, rec.DOI,
			rec.StudyType.DisplayName(), strconv.Itoa(st.Result.TotalStars), st.Result.Tier.Label(),
			rec.AssessmentDate, rec.Notes,
		}
		for _, id := range ids {
			row = append(row, rec.Assessment[id])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", rec.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DetailedCSV writes one row per study with {Domain}_Stars,
// {Domain}_Max_Stars and {Domain}_Percentage columns for every domain in
// the registry. Domains a study type lacks are left blank.
func (e *Exporter) DetailedCSV(w io.Writer, scored []report.StudyScore) error {
	domains := e.reg.DomainNames()
	header := []string{
		"Study_ID", "Study_Name", "Authors", "Publication_Year", "Journal",
		"Study_Type", "Total_Stars", "Max_Stars", "Quality_Rating",
	}
	for _, d := range domains {
		header = append(header, d+"_Stars", d+"_Max_Stars", d+"_Percentage")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, st := range scored {
		rec := st.Record
		row := []string{
			rec.ID, rec.StudyName, rec.Authors, yearString(rec.PublicationYear), rec.Journal,
			rec.StudyType.DisplayName(), strconv.Itoa(st.Result.TotalStars),
			strconv.Itoa(st.Result.MaxStars), st.Result.Tier.Label(),
		}
		for _, name := range domains {
			ds, ok := st.Result.Domain(name)
			if !ok {
				row = append(row, "", "", "")
				continue
			}
			row = append(row,
				strconv.Itoa(ds.Stars),
				strconv.Itoa(ds.MaxStars),
				strconv.FormatFloat(ds.Percentage(), 'f', 2, 64),
			)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", rec.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func yearString(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

// DomainEntry is the per-domain breakdown included in JSON/YAML exports.
type DomainEntry struct {
	Name       string  `json:"name" yaml:"name"`
	Stars      int     `json:"stars" yaml:"stars"`
	MaxStars   int     `json:"max_stars" yaml:"max_stars"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// Entry is a study record with refreshed score fields and its domain
// breakdown.
type Entry struct {
	types.StudyRecord `yaml:",inline"`
	MaxStars          int           `json:"max_stars" yaml:"max_stars"`
	Domains           []DomainEntry `json:"domains" yaml:"domains"`
}

// Entries converts scored studies to export entries.
func Entries(scored []report.StudyScore) []Entry {
	entries := make([]Entry, len(scored))
	for i, st := range scored {
		rec := st.Record
		rec.TotalStars = st.Result.TotalStars
		rec.QualityRating = st.Result.Tier.Label()
		entry := Entry{StudyRecord: rec, MaxStars: st.Result.MaxStars}
		for _, d := range st.Result.Domains {
			entry.Domains = append(entry.Domains, DomainEntry{
				Name:       d.Name,
				Stars:      d.Stars,
				MaxStars:   d.MaxStars,
				Percentage: d.Percentage(),
			})
		}
		entries[i] = entry
	}
	return entries
}

// JSON writes the entries as an indented JSON array.
func JSON(w io.Writer, scored []report.StudyScore) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Entries(scored)); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

// YAML writes the entries as a YAML list.
func YAML(w io.Writer, scored []report.StudyScore) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(Entries(scored)); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return nil
}
