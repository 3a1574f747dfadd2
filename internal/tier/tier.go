// Package tier holds the fixed sponsor benefit table and the amount classifier.
package tier

import "ralsponsors/internal/models"

// Tier identifiers.
const (
	GalaxyGuardian  = "galaxy_guardian"
	StarlightPatron = "starlight_patron"
	CosmicSupporter = "cosmic_supporter"
	BetaScout       = "beta_scout"
	EarlySupporter  = "early_supporter"
)

// catalog is ordered by MinAmount, strictly descending.
var catalog = []models.Tier{
	{ID: GalaxyGuardian, Name: "银河守护者", NameEn: "Galaxy Guardian", Color: "#9B59B6", ParticleType: "galaxy", Order: 100, MinAmount: 200},
	{ID: StarlightPatron, Name: "星空探索家", NameEn: "Starlight Patron", Color: "#E74C3C", ParticleType: "firework", Order: 80, MinAmount: 100},
	{ID: CosmicSupporter, Name: "极致合伙人", NameEn: "Cosmic Supporter", Color: "#3498DB", ParticleType: "stars", Order: 60, MinAmount: 50},
	{ID: BetaScout, Name: "星光先锋", NameEn: "Starlight Pioneer", Color: "#2ECC71", ParticleType: "sparkle", Order: 40, MinAmount: 18},
	{ID: EarlySupporter, Name: "爱心维护员", NameEn: "Early Supporter", Color: "#F39C12", ParticleType: "none", Order: 20, MinAmount: 5},
}

// All returns a copy of the tier table, highest tier first.
func All() []models.Tier {
	out := make([]models.Tier, len(catalog))
	copy(out, catalog)

	return out
}

// Lowest returns the identifier of the lowest-ranked tier.
func Lowest() string {
	return catalog[len(catalog)-1].ID
}

// Classify maps an accumulated amount to the highest tier whose minimum it reaches.
// Amounts below every threshold resolve to the lowest tier.
func Classify(amount float64) string {
	for _, t := range catalog {
		if t.MinAmount <= amount {
			return t.ID
		}
	}

	return Lowest()
}

// Lookup returns the tier with the given identifier.
func Lookup(id string) (models.Tier, bool) {
	for _, t := range catalog {
		if t.ID == id {
			return t, true
		}
	}

	return models.Tier{}, false
}

// Order returns the sort rank of a tier, or 0 for unknown identifiers.
func Order(id string) int {
	t, ok := Lookup(id)
	if !ok {
		return 0
	}

	return t.Order
}
