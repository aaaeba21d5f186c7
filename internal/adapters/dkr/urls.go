package dkr

import (
	"fmt"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/model"
)

// PlayerURL is the profile page listing every recorded time for a player.
func (c *Client) PlayerURL(username string) string {
	return fmt.Sprintf("%s/players/%s", c.baseURL, username)
}

// CombinedRankingURL is the site-wide average-finish ranking.
func (c *Client) CombinedRankingURL() string {
	return fmt.Sprintf("%s/average-finish/combined/combined", c.baseURL)
}

// LeaderboardURL is one variant's board.
func (c *Client) LeaderboardURL(v model.TrackVariant) string {
	return fmt.Sprintf("%s/tracks/%s/%s/%s/%s", c.baseURL, v.Slug, v.Vehicle, v.Category, v.Laps)
}
