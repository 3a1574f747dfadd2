// Package normalizer folds raw contributions into per-sponsor records.
package normalizer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"ralsponsors/internal/models"
	"ralsponsors/pkg/utils"
)

// MaxBioRunes caps the stored sponsor note.
const MaxBioRunes = 200

// placeholderPrefixes mark generated display names that a real name may replace.
var placeholderPrefixes = []string{"爱发电用户_", "匿名_", "匿名支持者_"}

var monthPattern = regexp.MustCompile(`\d{4}-\d{2}`)

// Aggregator accumulates contributions keyed by identity token.
type Aggregator struct {
	byID  map[string]*models.SponsorAggregate
	order []string
	str   *utils.StringHelper
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		byID: make(map[string]*models.SponsorAggregate),
		str:  utils.NewStringHelper(),
	}
}

// Add folds one contribution into its sponsor's aggregate.
// It reports false for contributions without an identity token.
func (a *Aggregator) Add(c models.RawContribution) bool {
	if c.ID == "" {
		return false
	}

	agg, ok := a.byID[c.ID]
	if !ok {
		agg = &models.SponsorAggregate{
			ID:  c.ID,
			URL: models.ProfileURL(c.ID),
		}
		a.byID[c.ID] = agg
		a.order = append(a.order, c.ID)
	}

	agg.Amount += c.Amount
	agg.Count++

	if name := a.str.TrimWhitespace(c.Name); name != "" && (agg.Name == "" || IsPlaceholderName(agg.Name)) {
		agg.Name = name
	}

	if c.Plan != "" {
		agg.Plan = c.Plan
	}

	if utf8.RuneCountInString(c.Note) > 1 {
		bio := CleanBio(c.Note)
		if utf8.RuneCountInString(bio) > utf8.RuneCountInString(agg.Bio) {
			agg.Bio = a.str.TruncateRunes(bio, MaxBioRunes)
		}
	}

	if month := JoinMonth(c.Timestamp); month != "" {
		if agg.JoinDate == "" || month < agg.JoinDate {
			agg.JoinDate = month
		}
	}

	if agg.AvatarURL == "" && c.AvatarURL != "" {
		agg.AvatarURL = c.AvatarURL
	}

	return true
}

// Len returns the number of distinct sponsors.
func (a *Aggregator) Len() int {
	return len(a.order)
}

// Aggregates returns the folded sponsors in first-seen order.
func (a *Aggregator) Aggregates() []models.SponsorAggregate {
	out := make([]models.SponsorAggregate, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, *a.byID[id])
	}

	return out
}

// IsPlaceholderName reports whether name is a generated stand-in for a missing name.
func IsPlaceholderName(name string) bool {
	for _, prefix := range placeholderPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}

// CleanBio drops non-printable runes and runes outside the Basic Multilingual Plane.
func CleanBio(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 0x10000 || r == utf8.RuneError || !unicode.IsPrint(r) {
			return -1
		}

		return r
	}, s)
}

// JoinMonth extracts the first YYYY-MM prefix found in a date-like string.
func JoinMonth(s string) string {
	return monthPattern.FindString(s)
}
