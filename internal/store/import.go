// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nos-assess/pkg/types"
)

// LoadStudyFile reads a study submission (metadata plus assessment) from a
// YAML or JSON file. Cached score fields in the file are ignored.
func LoadStudyFile(path string) (types.StudyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.StudyRecord{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseStudy(data, filepath.Ext(path))
}

// ParseStudy decodes a study submission. ext selects JSON (".json");
// anything else is parsed as YAML.
func ParseStudy(data []byte, ext string) (types.StudyRecord, error) {
	var rec types.StudyRecord
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &rec); err != nil {
			return types.StudyRecord{}, fmt.Errorf("parsing JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &rec); err != nil {
			return types.StudyRecord{}, fmt.Errorf("parsing YAML: %w", err)
		}
	}
	rec.ID = ""
	rec.TotalStars = 0
	rec.QualityRating = ""
	rec.AssessmentDate = ""
	return rec, nil
}

// ImportSummary holds counts from an import run.
type ImportSummary struct {
	Added  int
	Failed int
}

// Total returns the number of files processed.
func (s ImportSummary) Total() int {
	return s.Added + s.Failed
}

func isStudyFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// Import adds every study file in dir, in file name order. A file that
// fails to parse, validate or score is reported and skipped; the run
// continues with the next file.
func (s *Store) Import(ctx context.Context, dir string, w io.Writer) (ImportSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("reading import directory %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var summary ImportSummary
	for _, entry := range entries {
		if entry.IsDir() || !isStudyFile(entry.Name()) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		path := filepath.Join(dir, entry.Name())
		rec, err := LoadStudyFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Name(), err)
			summary.Failed++
			continue
		}

		saved, err := s.Add(ctx, rec)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Name(), err)
			s.log.Warn("import failed", "file", entry.Name(), "error", err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "added   %s as %s (%s, %d stars)\n",
			entry.Name(), saved.ID, saved.QualityRating, saved.TotalStars)
		summary.Added++
	}

	fmt.Fprintf(w, "\nadded: %d, failed: %d\n", summary.Added, summary.Failed)
	return summary, nil
}
