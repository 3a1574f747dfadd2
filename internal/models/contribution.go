// Package models defines data structures shared by the readers, the normalizer and the serializer.
package models

// RawContribution is one transaction (CSV) or one sponsor entry (API) as read from a source.
type RawContribution struct {
	ID        string
	Name      string
	Note      string
	Plan      string
	Timestamp string
	SourceURL string
	AvatarURL string
	Amount    float64
	Line      int
}

// SponsorAggregate folds every contribution attributed to one identity.
// Plan is the most recent afdian plan name seen; tiers are derived from Amount.
type SponsorAggregate struct {
	ID        string
	Name      string
	Plan      string
	Bio       string
	JoinDate  string
	URL       string
	AvatarURL string
	Amount    float64
	Count     int
}

// ProfileURLPrefix is the public profile location of an afdian user.
const ProfileURLPrefix = "https://afdian.com/u/"

// ProfileURL returns the canonical afdian profile URL for id.
func ProfileURL(id string) string {
	return ProfileURLPrefix + id
}
