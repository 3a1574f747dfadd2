package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"ralsponsors/internal/models"
)

// TierCount is the number of sponsors in one tier.
type TierCount struct {
	Tier  models.Tier
	Count int
}

// Summary aggregates a run's output for reporting.
type Summary struct {
	Tiers       []TierCount
	Sponsors    int
	TotalAmount float64
}

// Summarize counts records per tier in catalog order and totals their amounts.
func Summarize(records []models.SponsorRecord, tiers []models.Tier) Summary {
	counts := make(map[string]int, len(tiers))

	s := Summary{Sponsors: len(records)}
	for _, r := range records {
		counts[r.Tier]++
		s.TotalAmount += r.Amount
	}

	for _, t := range tiers {
		s.Tiers = append(s.Tiers, TierCount{Tier: t, Count: counts[t.ID]})
	}

	return s
}

// NonEmpty returns only the tiers with at least one sponsor.
func (s Summary) NonEmpty() []TierCount {
	var out []TierCount

	for _, tc := range s.Tiers {
		if tc.Count > 0 {
			out = append(out, tc)
		}
	}

	return out
}

// RenderMarkdown renders the summary with a per-tier table. Empty tiers are omitted.
func RenderMarkdown(s Summary, outputPath string) string {
	var sb strings.Builder

	sb.WriteString("# Sponsors\n\n")
	fmt.Fprintf(&sb, "- Output: `%s`\n", outputPath)
	fmt.Fprintf(&sb, "- Sponsors: %d\n", s.Sponsors)
	fmt.Fprintf(&sb, "- Total: ¥%.2f\n\n", s.TotalAmount)

	rows := make([][]string, 0, len(s.Tiers))
	for _, tc := range s.NonEmpty() {
		rows = append(rows, []string{tc.Tier.Name, tc.Tier.NameEn, strconv.Itoa(tc.Count)})
	}

	for _, line := range alignTable([]string{"Tier", "Name", "Sponsors"}, rows) {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}
