package domain

import (
	"strconv"
	"time"
)

// Category classifies an eco-location. The set is closed; the backend
// rejects values outside it.
type Category string

const (
	CategoryUrbanPark       Category = "urban-park"
	CategoryBotanicalGarden Category = "botanical-garden"
	CategoryForestReserve   Category = "forest-reserve"
	CategoryCommunitySpace  Category = "community-space"
	CategoryOther           Category = "other"
)

// Categories returns all valid categories in display order.
func Categories() []Category {
	return []Category{
		CategoryUrbanPark,
		CategoryBotanicalGarden,
		CategoryForestReserve,
		CategoryCommunitySpace,
		CategoryOther,
	}
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryUrbanPark, CategoryBotanicalGarden, CategoryForestReserve,
		CategoryCommunitySpace, CategoryOther:
		return true
	}
	return false
}

// Label returns a human-readable name for the category.
func (c Category) Label() string {
	switch c {
	case CategoryUrbanPark:
		return "Urban Park"
	case CategoryBotanicalGarden:
		return "Botanical Garden"
	case CategoryForestReserve:
		return "Forest Reserve"
	case CategoryCommunitySpace:
		return "Community Space"
	case CategoryOther:
		return "Other"
	default:
		return string(c)
	}
}

// EcoLocation represents an eco-friendly place shown on the platform map.
type EcoLocation struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Category    Category  `json:"category"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
}

// EcoLocationParams contains validated parameters for creating or
// updating an eco-location.
type EcoLocationParams struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Category    Category `json:"category"`
	Address     string   `json:"address"`
}

// FormatCoordinate renders a coordinate with six decimal places, the
// precision used throughout the console for map positions.
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
