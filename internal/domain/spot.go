package domain

import "time"

// Spot is one row of the spots table: an interesting outdoor place
// collected by hand or imported from GPX/OSM dumps.
type Spot struct {
	ID         int64      `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Category   string     `json:"category" db:"category"`
	Lat        float64    `json:"lat" db:"lat"`
	Lon        float64    `json:"lon" db:"lon"`
	Address    *string    `json:"address,omitempty" db:"address"`
	Postcode   *string    `json:"postcode,omitempty" db:"postcode"`
	Commune    *string    `json:"commune,omitempty" db:"commune"`
	Department *string    `json:"department,omitempty" db:"department"`
	Elevation  *float64   `json:"elevation,omitempty" db:"elevation"`
	Source     *string    `json:"source,omitempty" db:"source"`
	Notes      *string    `json:"notes,omitempty" db:"notes"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// FilledFields counts the optional enrichment fields that carry a value.
// Used by the dedup pass to decide which duplicate survives.
func (s *Spot) FilledFields() int {
	n := 0
	if s.Address != nil && *s.Address != "" {
		n++
	}
	if s.Postcode != nil && *s.Postcode != "" {
		n++
	}
	if s.Commune != nil && *s.Commune != "" {
		n++
	}
	if s.Department != nil && *s.Department != "" {
		n++
	}
	if s.Elevation != nil {
		n++
	}
	if s.Notes != nil && *s.Notes != "" {
		n++
	}
	return n
}

// Address is a geocoding result, whichever API produced it.
type Address struct {
	Label    string `json:"label"`
	Postcode string `json:"postcode"`
	Commune  string `json:"commune"`
	Kind     string `json:"kind"`
	Provider string `json:"provider"`
}
