package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryValid(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		want     bool
	}{
		{"urban park", CategoryUrbanPark, true},
		{"botanical garden", CategoryBotanicalGarden, true},
		{"forest reserve", CategoryForestReserve, true},
		{"community space", CategoryCommunitySpace, true},
		{"other", CategoryOther, true},
		{"empty", Category(""), false},
		{"unknown", Category("volcano"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.category.Valid())
		})
	}
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Urban Park", CategoryUrbanPark.Label())
	assert.Equal(t, "Botanical Garden", CategoryBotanicalGarden.Label())
	assert.Equal(t, "Other", CategoryOther.Label())
	// Unknown categories fall back to their raw value.
	assert.Equal(t, "volcano", Category("volcano").Label())
}

func TestCategoriesCoversClosedSet(t *testing.T) {
	cats := Categories()
	assert.Len(t, cats, 5)
	for _, c := range cats {
		assert.True(t, c.Valid(), "category %q", c)
	}
}

func TestFormatCoordinate(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"rounds to six decimals", 41.7151377777, "41.715138"},
		{"pads to six decimals", 44.8, "44.800000"},
		{"negative", -0.5, "-0.500000"},
		{"zero", 0, "0.000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCoordinate(tt.value))
		})
	}
}
