package models

// Tier is a sponsor benefit level.
type Tier struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	NameEn       string  `json:"nameEn"`
	Color        string  `json:"color"`
	ParticleType string  `json:"particleType"`
	Order        int     `json:"order"`
	MinAmount    float64 `json:"minAmount"`
}
