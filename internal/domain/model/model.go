// Package model contains domain records passed between layers.
package model

// Vehicle classes scored by the combined ranking.
const (
	VehicleCar   = "car"
	VehicleHover = "hover"
	VehiclePlane = "plane"
)

// Track categories and lap counts as the site keys them.
const (
	CategoryStandard = "standard"
	CategoryShortcut = "shortcut"

	LapsThree = "3-laps"
	LapsOne   = "1-lap"
)

// TrackVariant is one scored combination of track, vehicle class, category
// and lap count. Variants are the atomic unit of ranking; the identity key
// is (Slug, Vehicle, Category, Laps), Name is display-only.
type TrackVariant struct {
	Slug     string `json:"slug"`
	Name     string `json:"name,omitempty"`
	Vehicle  string `json:"vehicle"`
	Category string `json:"category"`
	Laps     string `json:"laps"`
}

// Key returns the identity key used to look up a variant's leaderboard.
func (v TrackVariant) Key() string {
	return v.Slug + "/" + v.Vehicle + "/" + v.Category + "/" + v.Laps
}

// PlayerStanding is the player's recorded state on one variant. Rank and
// TimeCS are zero when IsNA is set.
type PlayerStanding struct {
	Variant TrackVariant `json:"variant"`
	TimeCS  int          `json:"time_cs"`
	Rank    int          `json:"rank"`
	IsNA    bool         `json:"is_na"`
}

// LeaderboardEntry is one row of a variant's leaderboard. Entries appear in
// board order with non-decreasing rank; tied entries share a rank. Default
// ("placeholder") times are retained for context but excluded from all
// competitive analysis.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	TimeCS      int    `json:"time_cs"`
	IsDefault   bool   `json:"is_default"`
}

// PlayerProfile holds the player-page header data.
type PlayerProfile struct {
	Username     string  `json:"username"`
	CombinedRank int     `json:"combined_rank"`
	CurrentAF    float64 `json:"current_af"`
	Country      string  `json:"country,omitempty"`
}

// RankingEntry is one row of the combined average-finish ranking.
type RankingEntry struct {
	Rank        int     `json:"rank"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	AF          float64 `json:"af"`
	Gap         float64 `json:"gap"`
}
