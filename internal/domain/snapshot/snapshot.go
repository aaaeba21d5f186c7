// Package snapshot holds the complete result of one analysis run: the
// player's profile and metric, the ranked opportunity list, and both
// overtake plans. It is the unit stored, served, and rendered downstream.
package snapshot

import (
	"time"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/analysis"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/model"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/planner"
)

// Snapshot is an immutable analysis result. Plans are nil when the player
// tops the combined ranking or no rival could be resolved.
type Snapshot struct {
	Profile       model.PlayerProfile    `json:"profile"`
	CurrentAF     float64                `json:"current_af"`
	CurrentRank   int                    `json:"current_rank"`
	TotalTracks   int                    `json:"total_tracks"`
	SkippedBoards int                    `json:"skipped_boards"`
	GeneratedAt   time.Time              `json:"generated_at"`
	Opportunities []analysis.Opportunity `json:"opportunities"`
	PlanMinTime   *planner.Plan          `json:"plan_min_time,omitempty"`
	PlanMinTracks *planner.Plan          `json:"plan_min_tracks,omitempty"`
}

// NACount reports how many variants the player has no recorded time on.
func (s *Snapshot) NACount() int {
	n := 0
	for _, opp := range s.Opportunities {
		if opp.IsNA {
			n++
		}
	}
	return n
}
