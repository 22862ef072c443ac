// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/nos-assess/internal/registry"
	"github.com/pdiddy/nos-assess/pkg/types"
)

// StarString renders n filled stars, or a single hollow star for zero.
func StarString(n int) string {
	if n <= 0 {
		return "☆"
	}
	return strings.Repeat("★", n)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// WriteList prints one line per study: position, ID, name, type and rating.
func WriteList(w io.Writer, scored []StudyScore) {
	if len(scored) == 0 {
		fmt.Fprintln(w, "No studies assessed yet. Use 'nos-assess assess' to add one.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-14s  %-30s  %-24s  %s\n", "#", "ID", "Study", "Type", "Rating")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for i, st := range scored {
		fmt.Fprintf(w, "%-4d  %-14s  %-30s  %-24s  %s\n",
			i+1, st.Record.ID, truncate(st.Record.StudyName, 30),
			st.Record.StudyType.DisplayName(), st.Result.Rating())
	}
	fmt.Fprintf(w, "\n%d studies\n", len(scored))
}

// WriteDetail prints a study's metadata and per-criterion answers with the
// stars each earned, grouped by domain.
func WriteDetail(w io.Writer, set registry.CriteriaSet, st StudyScore) {
	rec := st.Record
	fmt.Fprintf(w, "%s - %s\n", rec.StudyName, st.Result.Tier.Label())
	fmt.Fprintf(w, "ID:         %s\n", rec.ID)
	fmt.Fprintf(w, "Authors:    %s\n", rec.Authors)
	fmt.Fprintf(w, "Year:       %d\n", rec.PublicationYear)
	fmt.Fprintf(w, "Journal:    %s\n", rec.Journal)
	doi := rec.DOI
	if doi == "" {
		doi = "N/A"
	}
	fmt.Fprintf(w, "DOI:        %s\n", doi)
	fmt.Fprintf(w, "Study Type: %s\n", rec.StudyType.DisplayName())
	fmt.Fprintf(w, "Stars:      %s %s\n", StarString(st.Result.TotalStars), st.Result.Rating())
	fmt.Fprintf(w, "Assessed:   %s\n", rec.AssessmentDate)
	if rec.Notes != "" {
		fmt.Fprintf(w, "Notes:      %s\n", rec.Notes)
	}

	for _, d := range set.Domains {
		fmt.Fprintf(w, "\n%s\n", d.Name)
		for _, c := range d.Criteria {
			key := rec.Assessment[c.ID]
			opt, ok := c.Option(key)
			if !ok {
				fmt.Fprintf(w, "  - %s: (unanswered)\n", c.Prompt)
				continue
			}
			fmt.Fprintf(w, "  - %s: %s %s\n", c.Prompt, opt.Label, StarString(opt.Stars))
		}
		if ds, ok := st.Result.Domain(d.Name); ok {
			fmt.Fprintf(w, "  Domain Stars: %d/%d\n", ds.Stars, ds.MaxStars)
		}
	}
}

// WriteSummary prints the report: distributions, the per-study domain
// table and average domain performance.
func WriteSummary(w io.Writer, s Summary, domains []string) {
	if s.TotalStudies == 0 {
		fmt.Fprintln(w, "No studies to generate report. Please assess some studies first.")
		return
	}

	fmt.Fprintf(w, "Total Studies: %d\n\n", s.TotalStudies)

	fmt.Fprintln(w, "Quality Distribution:")
	for _, c := range s.Tiers {
		fmt.Fprintf(w, "  - %s: %d (%.1f%%)\n", c.Label, c.Count, c.Percentage)
	}

	fmt.Fprintln(w, "\nStudy Type Distribution:")
	for _, c := range s.StudyTypes {
		fmt.Fprintf(w, "  - %s: %d (%.1f%%)\n", c.Label, c.Count, c.Percentage)
	}

	fmt.Fprintln(w, "\nStars Distribution:")
	for _, c := range s.Stars {
		fmt.Fprintf(w, "  %2d %-9s %s\n", c.Stars, strings.Repeat("★", c.Stars), strings.Repeat("#", c.Count))
	}

	fmt.Fprintln(w, "\nDomain Performance (percent of domain maximum):")
	fmt.Fprintf(w, "%-30s", "Study")
	for _, d := range domains {
		fmt.Fprintf(w, "  %13s", d)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 30+15*len(domains)))
	for _, st := range s.Studies {
		fmt.Fprintf(w, "%-30s", truncate(st.Record.StudyName, 30))
		for _, name := range domains {
			ds, ok := st.Result.Domain(name)
			if !ok {
				fmt.Fprintf(w, "  %13s", "-")
				continue
			}
			fmt.Fprintf(w, "  %12.1f%%", ds.Percentage())
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "\nAverage Domain Performance:")
	for _, d := range s.DomainAverages {
		fmt.Fprintf(w, "  - %s: %.1f%% (%d studies)\n", d.Domain, d.Percentage, d.Studies)
	}
}

// WriteQuestionnaire prints the questions of a criteria set with the stars
// each option awards.
func WriteQuestionnaire(w io.Writer, set registry.CriteriaSet) {
	fmt.Fprintf(w, "Assessment Criteria for %s (max %d stars)\n",
		set.StudyType.DisplayName(), set.MaxStars)
	for _, d := range set.Domains {
		fmt.Fprintf(w, "\n%s (max %d)\n", d.Name, d.MaxStars())
		for _, c := range d.Criteria {
			fmt.Fprintf(w, "  %s  [%s]\n", c.Prompt, c.ID)
			for _, o := range c.Options {
				fmt.Fprintf(w, "    %-24s %s %s\n", o.Key, o.Label, StarString(o.Stars))
			}
		}
	}
}

// Template returns a study file skeleton for the set with every criterion set to
// its first option, ready to be edited and passed to assess.
func Template(set registry.CriteriaSet) types.StudyRecord {
	a := types.Assessment{}
	for _, c := range set.Criteria() {
		a[c.ID] = c.Options[0].Key
	}
	return types.StudyRecord{
		StudyName:  "Author et al. YEAR",
		StudyType:  set.StudyType,
		Assessment: a,
	}
}
