package domain

// Stats holds the aggregate platform counters shown on the dashboard.
//
// The counters are reported verbatim. Derived figures such as engagement
// rates are intentionally not computed here; the raw numbers are the only
// values the API guarantees.
type Stats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalPosts        int64 `json:"total_posts"`
	TotalLikes        int64 `json:"total_likes"`
	TotalEcoLocations int64 `json:"total_eco_locations"`
}
