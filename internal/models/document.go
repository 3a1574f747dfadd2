package models

// DocumentVersion is the schema version written to sponsors.json.
const DocumentVersion = 1

// SponsorRecord is one entry of the sponsors array in the output document.
type SponsorRecord struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	AvatarURL string  `json:"avatarUrl"`
	Bio       string  `json:"bio"`
	Tier      string  `json:"tier"`
	JoinDate  string  `json:"joinDate"`
	Website   string  `json:"website"`
	Amount    float64 `json:"-"`
}

// Document is the sponsors.json artifact consumed by the launcher.
type Document struct {
	Version     int             `json:"version"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	LastUpdated string          `json:"lastUpdated"`
	Tiers       []Tier          `json:"tiers"`
	Sponsors    []SponsorRecord `json:"sponsors"`
}
