// Package analysis derives improvement tiers and ranked opportunities from
// a player's standings and the leaderboards in scope. All functions are
// pure: they never mutate their inputs and hold no state between calls.
package analysis

import (
	"math"
	"sort"
	"strings"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/model"
)

// EffInfinite marks the efficiency of an N/A-track tier: going from
// unranked to ranked costs nothing and must dominate every finite-efficiency
// opportunity. A max sentinel is used instead of IEEE +Inf so values stay
// JSON-encodable; descending sorts still place it first.
const EffInfinite = math.MaxFloat64

// DisplayClimbs are the climb sizes analyzed for the opportunity report.
var DisplayClimbs = []int{1, 3, 5, 10, 15, 20, 25}

// Tier is one candidate leaderboard-climb outcome for a variant: beat the
// entry PositionsGained places above, by at least one centisecond.
type Tier struct {
	TargetRank      int     `json:"target_rank"`
	OpponentTimeCS  int     `json:"opponent_time_cs"`
	TargetTimeCS    int     `json:"target_time_cs"`
	PositionsGained int     `json:"positions_gained"`
	AFImprovement   float64 `json:"af_improvement"`
	TimeDeltaCS     int     `json:"time_delta_cs"`
	Efficiency      float64 `json:"efficiency"`
}

// Opportunity is the full tier set for one variant plus the best pick.
// Zero tiers means no improvement is possible there (already rank 1, or no
// real competitors above).
type Opportunity struct {
	Variant        model.TrackVariant `json:"variant"`
	CurrentRank    int                `json:"current_rank"`
	CurrentTimeCS  int                `json:"current_time_cs"`
	IsNA           bool               `json:"is_na"`
	Tiers          []Tier             `json:"tiers"`
	BestEfficiency float64            `json:"best_efficiency"`
	BestTierIdx    int                `json:"best_tier_idx"`
}

// DeriveTiers computes one tier per requested climb size against the
// "above" set: the real entries ahead of the player in board order
// (furthest ahead first). Climb sizes clamp to the size of the above set,
// size zero terminates processing, and duplicate sizes after clamping are
// computed once. Targets the player's recorded time already beats are
// dropped: that is a data inconsistency from rank ties or a stale
// snapshot, not an error.
func DeriveTiers(playerTimeCS, totalTracks int, above []model.LeaderboardEntry, climbs []int) []Tier {
	tiers := make([]Tier, 0, len(climbs))
	seen := make(map[int]bool, len(climbs))

	for _, n := range climbs {
		if n > len(above) {
			n = len(above)
		}
		if n == 0 {
			break
		}
		if seen[n] {
			continue
		}
		seen[n] = true

		// The entry exactly n positions ahead, counted by board position
		// so tied competitors remain individually climbable.
		target := above[len(above)-n]
		targetTime := target.TimeCS - 1
		delta := playerTimeCS - targetTime
		if delta <= 0 {
			continue
		}

		improvement := float64(n) / float64(totalTracks)
		tiers = append(tiers, Tier{
			TargetRank:      target.Rank,
			OpponentTimeCS:  target.TimeCS,
			TargetTimeCS:    targetTime,
			PositionsGained: n,
			AFImprovement:   improvement,
			TimeDeltaCS:     delta,
			Efficiency:      improvement / float64(delta),
		})
	}

	return tiers
}

// FullClimbRange returns the climb sizes 1..n, the planner's option space.
func FullClimbRange(n int) []int {
	climbs := make([]int, n)
	for i := range climbs {
		climbs[i] = i + 1
	}
	return climbs
}

// Build computes the opportunity for a single variant. A nil climbs slice
// selects the full range 1..len(above).
func Build(st model.PlayerStanding, entries []model.LeaderboardEntry, totalTracks int, username string, climbs []int) Opportunity {
	real := realEntries(entries)
	if st.IsNA {
		return buildNA(st, entries, real, totalTracks)
	}
	return buildRanked(st, real, totalTracks, username, climbs)
}

// BuildAll computes opportunities for every variant the player has data
// for, using the display climb sizes, and ranks them by best efficiency
// descending. Variants without a leaderboard are excluded from scope.
func BuildAll(standings []model.PlayerStanding, boards map[string][]model.LeaderboardEntry, totalTracks int, username string) []Opportunity {
	opps := make([]Opportunity, 0, len(standings))
	for _, st := range standings {
		entries, ok := boards[st.Variant.Key()]
		if !ok {
			continue
		}
		opps = append(opps, Build(st, entries, totalTracks, username, DisplayClimbs))
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].BestEfficiency > opps[j].BestEfficiency
	})
	return opps
}

// buildNA models submitting a first time on a track with no recorded one.
// The player effectively sits one past the bottom of the raw board
// (placeholders included) and a submission lands just below the slowest
// real entry. Any time at all counts, so the investment is zero and the
// efficiency infinite.
func buildNA(st model.PlayerStanding, raw, real []model.LeaderboardEntry, totalTracks int) Opportunity {
	opp := Opportunity{Variant: st.Variant, IsNA: true}
	if len(real) == 0 {
		return opp
	}

	worst := real[len(real)-1]
	lastPlace := raw[len(raw)-1].Rank + 1
	newRank := worst.Rank + 1
	gained := lastPlace - newRank
	if gained < 0 {
		gained = 0
	}

	opp.CurrentRank = lastPlace
	opp.Tiers = []Tier{{
		TargetRank:      newRank,
		OpponentTimeCS:  worst.TimeCS,
		TargetTimeCS:    worst.TimeCS,
		PositionsGained: gained,
		AFImprovement:   float64(gained) / float64(totalTracks),
		TimeDeltaCS:     0,
		Efficiency:      EffInfinite,
	}}
	opp.BestEfficiency = EffInfinite
	return opp
}

func buildRanked(st model.PlayerStanding, real []model.LeaderboardEntry, totalTracks int, username string, climbs []int) Opportunity {
	rank, timeCS := st.Rank, st.TimeCS

	var above []model.LeaderboardEntry
	idx := -1
	for i, e := range real {
		if strings.EqualFold(e.Username, username) {
			idx = i
			break
		}
	}
	if idx >= 0 {
		rank, timeCS = real[idx].Rank, real[idx].TimeCS
		above = real[:idx]
	} else {
		// Not on the board despite having a time; fall back to the
		// player-page rank/time and rebuild the above set from it.
		for _, e := range real {
			if e.TimeCS < timeCS {
				above = append(above, e)
			}
		}
	}

	opp := Opportunity{Variant: st.Variant, CurrentRank: rank, CurrentTimeCS: timeCS}
	if len(above) == 0 || rank <= 1 {
		return opp
	}

	if climbs == nil {
		climbs = FullClimbRange(len(above))
	}
	opp.Tiers = DeriveTiers(timeCS, totalTracks, above, climbs)
	for i, t := range opp.Tiers {
		if t.Efficiency > opp.BestEfficiency {
			opp.BestEfficiency = t.Efficiency
			opp.BestTierIdx = i
		}
	}
	return opp
}

func realEntries(entries []model.LeaderboardEntry) []model.LeaderboardEntry {
	real := make([]model.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if !e.IsDefault {
			real = append(real, e)
		}
	}
	return real
}
