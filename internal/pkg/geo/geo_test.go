package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	t.Run("zero distance for same point", func(t *testing.T) {
		d := HaversineDistance(43.6045, 1.4442, 43.6045, 1.4442)
		assert.InDelta(t, 0, d, 0.0001)
	})

	t.Run("toulouse to montpellier", func(t *testing.T) {
		// Capitole to Place de la Comédie, roughly 196 km
		d := HaversineDistance(43.6045, 1.4442, 43.6087, 3.8793)
		assert.InDelta(t, 196, d, 3)
	})

	t.Run("symmetric", func(t *testing.T) {
		d1 := HaversineDistance(42.5, 0.5, 44.5, 4.5)
		d2 := HaversineDistance(44.5, 4.5, 42.5, 0.5)
		assert.InDelta(t, d1, d2, 1e-9)
	})
}

func TestValidateCoordinates(t *testing.T) {
	assert.True(t, ValidateCoordinates(43.6, 1.44))
	assert.True(t, ValidateCoordinates(-90, 180))
	assert.False(t, ValidateCoordinates(91, 0))
	assert.False(t, ValidateCoordinates(0, -181))
}

func TestInOccitanie(t *testing.T) {
	assert.True(t, InOccitanie(43.6045, 1.4442))  // Toulouse
	assert.True(t, InOccitanie(43.6087, 3.8793))  // Montpellier
	assert.False(t, InOccitanie(48.8566, 2.3522)) // Paris
	assert.False(t, InOccitanie(41.38, 2.17))     // Barcelona
}

func TestDepartmentFromPostcode(t *testing.T) {
	t.Run("bare postcode", func(t *testing.T) {
		assert.Equal(t, "31", DepartmentFromPostcode("31000"))
		assert.Equal(t, "48", DepartmentFromPostcode("48000"))
	})

	t.Run("postcode embedded in address", func(t *testing.T) {
		assert.Equal(t, "34", DepartmentFromPostcode("5 Rue Foch, 34000 Montpellier"))
	})

	t.Run("non-occitanie postcode", func(t *testing.T) {
		assert.Equal(t, "", DepartmentFromPostcode("75001 Paris"))
	})

	t.Run("no postcode at all", func(t *testing.T) {
		assert.Equal(t, "", DepartmentFromPostcode("chemin des Cascades"))
		assert.Equal(t, "", DepartmentFromPostcode(""))
	})
}

func TestDepartmentFromCoordinates(t *testing.T) {
	t.Run("unambiguous points", func(t *testing.T) {
		assert.Equal(t, "31", DepartmentFromCoordinates(43.6045, 1.4442)) // Toulouse
		assert.Equal(t, "48", DepartmentFromCoordinates(44.52, 3.50))     // Mende area
		assert.Equal(t, "66", DepartmentFromCoordinates(42.49, 2.75))     // Céret
	})

	t.Run("outside every box", func(t *testing.T) {
		assert.Equal(t, "", DepartmentFromCoordinates(48.8566, 2.3522))
	})
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "  Lac   de  Salagou ", "Lac de Salagou"},
		{"rewrites shouting", "CIRQUE DE NAVACELLES", "Cirque de Navacelles"},
		{"keeps particles lowercase", "GORGES DU TARN", "Gorges du Tarn"},
		{"leaves mixed case alone", "Pic du Canigou", "Pic du Canigou"},
		{"empty stays empty", "   ", ""},
		{"digits do not count as shouting", "D118", "D118"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}
