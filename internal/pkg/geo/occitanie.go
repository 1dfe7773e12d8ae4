package geo

import (
	"regexp"
	"strings"
)

// Occitanie region bounding box, WGS84. Slightly padded so border spots
// (Pyrenean ridge, Rhône bank) are not rejected.
const (
	OccitanieMinLon = -0.40
	OccitanieMinLat = 42.20
	OccitanieMaxLon = 4.90
	OccitanieMaxLat = 45.10
)

// Departments of Occitanie, keyed by INSEE code.
var OccitanieDepartments = map[string]string{
	"09": "Ariège",
	"11": "Aude",
	"12": "Aveyron",
	"30": "Gard",
	"31": "Haute-Garonne",
	"32": "Gers",
	"34": "Hérault",
	"46": "Lot",
	"48": "Lozère",
	"65": "Hautes-Pyrénées",
	"66": "Pyrénées-Orientales",
	"81": "Tarn",
	"82": "Tarn-et-Garonne",
}

// Rough per-department bounding boxes, used as a last resort when a spot
// has coordinates but no usable postcode. Boxes overlap; the first match
// in sorted code order wins, which is good enough for a sanity pass.
var departmentBoxes = []struct {
	Code                   string
	MinLon, MinLat, MaxLon, MaxLat float64
}{
	{"09", 0.82, 42.57, 2.18, 43.32},
	{"11", 1.68, 42.65, 3.25, 43.46},
	{"12", 1.84, 43.69, 3.45, 44.94},
	{"30", 3.26, 43.46, 4.85, 44.46},
	{"31", 0.44, 42.69, 2.05, 43.92},
	{"32", -0.28, 43.31, 1.20, 44.08},
	{"34", 2.54, 43.21, 4.19, 43.97},
	{"46", 1.10, 44.20, 2.21, 45.05},
	{"48", 2.98, 44.11, 3.99, 44.97},
	{"65", -0.33, 42.69, 0.65, 43.60},
	{"66", 1.72, 42.33, 3.18, 42.92},
	{"81", 1.53, 43.38, 2.94, 44.20},
	{"82", 0.74, 43.77, 1.99, 44.39},
}

var postcodeRe = regexp.MustCompile(`\b(\d{5})\b`)

// InOccitanie reports whether a point falls inside the region bbox.
func InOccitanie(lat, lon float64) bool {
	return lon >= OccitanieMinLon && lon <= OccitanieMaxLon &&
		lat >= OccitanieMinLat && lat <= OccitanieMaxLat
}

// DepartmentFromPostcode extracts a department code from a postcode or an
// address string containing one. Returns "" when no Occitanie department
// matches.
func DepartmentFromPostcode(s string) string {
	m := postcodeRe.FindString(s)
	if m == "" {
		return ""
	}
	code := m[:2]
	if _, ok := OccitanieDepartments[code]; !ok {
		return ""
	}
	return code
}

// DepartmentFromCoordinates guesses the department containing a point from
// per-department bounding boxes. Returns "" when nothing matches.
func DepartmentFromCoordinates(lat, lon float64) string {
	for _, b := range departmentBoxes {
		if lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat {
			return b.Code
		}
	}
	return ""
}

// NormalizeName cleans a spot name: trims, collapses inner whitespace and
// rewrites SHOUTING names to title case.
func NormalizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return name
	}
	if name == strings.ToUpper(name) && name != strings.ToLower(name) {
		name = titleCase(name)
	}
	return name
}

func titleCase(s string) string {
	words := strings.Split(strings.ToLower(s), " ")
	for i, w := range words {
		// keep French particles lowercase except at the start
		if i > 0 {
			switch w {
			case "de", "du", "des", "la", "le", "les", "d'", "l'", "et", "sur", "sous", "aux":
				continue
			}
		}
		words[i] = capitalizeFirst(w)
	}
	return strings.Join(words, " ")
}

func capitalizeFirst(w string) string {
	r := []rune(w)
	if len(r) == 0 {
		return w
	}
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
