// Package planner builds overtake plans: which leaderboard climbs, across
// which tracks, close the Average Finish gap to a rival. Two strategies are
// provided. MinTime solves a grouped knapsack for the cheapest
// difficulty-weighted time investment; MinTracks greedily concentrates the
// required positions on as few tracks as possible.
package planner

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/analysis"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/model"
)

const (
	// epsilon guards the position requirement against float rounding when
	// the AF gap times the track count lands on an integer.
	epsilon = 1e-9

	// DifficultyK scales how sharply cost grows as a climb approaches the
	// top of a board. A full climb to rank 1 from far down multiplies the
	// raw time cost by nearly e^5.
	DifficultyK = 5.0
)

// Exclusion removes a track, or one vehicle's boards on a track, from
// planning. Analysis still reports excluded variants.
type Exclusion struct {
	Slug    string `koanf:"track" json:"track"`
	Vehicle string `koanf:"vehicle" json:"vehicle"`
}

func (x Exclusion) matches(v model.TrackVariant) bool {
	if !strings.EqualFold(x.Slug, v.Slug) {
		return false
	}
	return x.Vehicle == "" || strings.EqualFold(x.Vehicle, v.Vehicle)
}

// Group is one variant's tier options. A plan picks at most one tier per
// group: climbs on the same board are alternatives, not additions.
type Group struct {
	Variant       model.TrackVariant
	CurrentRank   int
	CurrentTimeCS int
	Tiers         []analysis.Tier
}

// PlanItem is one selected climb.
type PlanItem struct {
	Variant         model.TrackVariant `json:"variant"`
	IsNA            bool               `json:"is_na"`
	CurrentRank     int                `json:"current_rank"`
	CurrentTimeCS   int                `json:"current_time_cs"`
	NewRank         int                `json:"new_rank"`
	TargetTimeCS    int                `json:"target_time_cs"`
	OpponentTimeCS  int                `json:"opponent_time_cs"`
	PositionsGained int                `json:"positions_gained"`
	AFImprovement   float64            `json:"af_improvement"`
	TimeDeltaCS     int                `json:"time_delta_cs"`
	Efficiency      float64            `json:"efficiency"`
}

// Plan is the outcome of one strategy run. Feasible is false when the
// available climbs cannot close the gap; Items then holds whatever the
// strategy could still usefully bank.
type Plan struct {
	RivalUsername         string     `json:"rival_username"`
	RivalAF               float64    `json:"rival_af"`
	CurrentAF             float64    `json:"current_af"`
	AFGap                 float64    `json:"af_gap"`
	TotalPositionsNeeded  int        `json:"total_positions_needed"`
	TotalPositionsGained  int        `json:"total_positions_gained"`
	TotalTimeInvestmentCS int        `json:"total_time_investment_cs"`
	NewAF                 float64    `json:"new_af"`
	Items                 []PlanItem `json:"items"`
	Feasible              bool       `json:"feasible"`
}

// Inputs is the option space shared by both strategies. NAItems are free
// positions every plan takes unconditionally; Groups carry the paid ones.
type Inputs struct {
	TotalTracks int
	NAItems     []PlanItem
	Groups      []Group
}

// difficultyWeight inflates a climb's time cost by how far up the board it
// reaches. Holding rank costs weight 1; the multiplier grows exponentially
// as targetRank approaches 1.
func difficultyWeight(targetRank, currentRank int) float64 {
	return math.Exp(DifficultyK * (1 - float64(targetRank)/float64(currentRank)))
}

// BuildInputs derives the full planning option space from the player's
// standings and the boards in scope. Every climb size is a distinct option,
// not just the display tiers.
func BuildInputs(standings []model.PlayerStanding, boards map[string][]model.LeaderboardEntry, totalTracks int, username string, exclude []Exclusion) Inputs {
	in := Inputs{TotalTracks: totalTracks}

	for _, st := range standings {
		if excluded(st.Variant, exclude) {
			continue
		}
		entries, ok := boards[st.Variant.Key()]
		if !ok {
			continue
		}

		opp := analysis.Build(st, entries, totalTracks, username, nil)
		if len(opp.Tiers) == 0 {
			continue
		}

		if opp.IsNA {
			t := opp.Tiers[0]
			in.NAItems = append(in.NAItems, PlanItem{
				Variant:         opp.Variant,
				IsNA:            true,
				CurrentRank:     opp.CurrentRank,
				NewRank:         t.TargetRank,
				TargetTimeCS:    t.TargetTimeCS,
				OpponentTimeCS:  t.OpponentTimeCS,
				PositionsGained: t.PositionsGained,
				AFImprovement:   t.AFImprovement,
				Efficiency:      t.Efficiency,
			})
			continue
		}

		in.Groups = append(in.Groups, Group{
			Variant:       opp.Variant,
			CurrentRank:   opp.CurrentRank,
			CurrentTimeCS: opp.CurrentTimeCS,
			Tiers:         opp.Tiers,
		})
	}

	return in
}

// MinTime selects the climb set meeting the position requirement at the
// lowest total difficulty-weighted time cost. The reported investment sums
// the raw, unweighted centiseconds of the chosen climbs.
//
// The returned error never reflects bad input: infeasible gaps come back
// as a Plan with Feasible false. An error means the solver contradicted
// its own feasibility check and wraps ErrInternal.
func MinTime(in Inputs, currentAF, rivalAF float64, rival string) (Plan, error) {
	plan, remaining, done := prepare(in, currentAF, rivalAF, rival)
	if done {
		return plan, nil
	}

	maxSum := 0
	for _, g := range in.Groups {
		maxSum += g.Tiers[len(g.Tiers)-1].PositionsGained
	}
	if maxSum < remaining {
		plan.Feasible = false
		finish(&plan, in)
		return plan, nil
	}

	// Grouped knapsack over positions gained. cost[p] is the cheapest
	// weighted cost of gaining exactly p positions using the groups
	// processed so far; choice[gi][p] records which tier of group gi that
	// optimum took, -1 when the group sat out.
	cost := make([]float64, maxSum+1)
	for p := range cost {
		cost[p] = math.Inf(1)
	}
	cost[0] = 0

	choice := make([][]int, len(in.Groups))
	for gi, g := range in.Groups {
		next := make([]float64, len(cost))
		copy(next, cost)
		ch := make([]int, len(cost))
		for p := range ch {
			ch[p] = -1
		}

		for oi, t := range g.Tiers {
			w := difficultyWeight(t.TargetRank, g.CurrentRank) * float64(t.TimeDeltaCS)
			for p := t.PositionsGained; p <= maxSum; p++ {
				if c := cost[p-t.PositionsGained] + w; c < next[p] {
					next[p] = c
					ch[p] = oi
				}
			}
		}

		cost = next
		choice[gi] = ch
	}

	best := -1
	for p := remaining; p <= maxSum; p++ {
		if math.IsInf(cost[p], 1) {
			continue
		}
		if best < 0 || cost[p] < cost[best] {
			best = p
		}
	}
	if best < 0 {
		return Plan{}, fmt.Errorf("no reachable state at %d positions despite capacity %d: %w", remaining, maxSum, ErrInternal)
	}

	for gi := len(in.Groups) - 1; gi >= 0; gi-- {
		oi := choice[gi][best]
		if oi < 0 {
			continue
		}
		g := in.Groups[gi]
		plan.Items = append(plan.Items, rankedItem(g, g.Tiers[oi]))
		best -= g.Tiers[oi].PositionsGained
	}

	finish(&plan, in)
	return plan, nil
}

// MinTracks meets the position requirement with as few distinct tracks as
// possible: each group contributes its single best climb, and the largest
// contributors are taken first. When even the full set falls short it is
// returned in its entirety with Feasible false.
func MinTracks(in Inputs, currentAF, rivalAF float64, rival string) Plan {
	plan, remaining, done := prepare(in, currentAF, rivalAF, rival)
	if done {
		return plan
	}

	type candidate struct {
		group Group
		tier  analysis.Tier
	}
	cands := make([]candidate, 0, len(in.Groups))
	for _, g := range in.Groups {
		bi, bestScore := -1, 0.0
		for i, t := range g.Tiers {
			w := difficultyWeight(t.TargetRank, g.CurrentRank) * float64(t.TimeDeltaCS)
			score := float64(t.PositionsGained) / w
			if bi < 0 || score > bestScore {
				bi, bestScore = i, score
			}
		}
		cands = append(cands, candidate{group: g, tier: g.Tiers[bi]})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].tier.PositionsGained > cands[j].tier.PositionsGained
	})

	for _, c := range cands {
		if remaining <= 0 {
			break
		}
		plan.Items = append(plan.Items, rankedItem(c.group, c.tier))
		remaining -= c.tier.PositionsGained
	}
	if remaining > 0 {
		plan.Feasible = false
	}

	finish(&plan, in)
	return plan
}

// prepare computes the requirement, banks the free N/A positions, and
// short-circuits the cases no solver needs to run for. done is true when
// plan is already complete.
func prepare(in Inputs, currentAF, rivalAF float64, rival string) (plan Plan, remaining int, done bool) {
	gap := currentAF - rivalAF
	plan = Plan{
		RivalUsername: rival,
		RivalAF:       rivalAF,
		CurrentAF:     currentAF,
		AFGap:         gap,
		Feasible:      true,
	}

	if gap <= 0 {
		plan.NewAF = currentAF
		return plan, 0, true
	}

	plan.TotalPositionsNeeded = int(math.Ceil(gap*float64(in.TotalTracks) + epsilon))
	remaining = plan.TotalPositionsNeeded

	for _, item := range in.NAItems {
		plan.Items = append(plan.Items, item)
		remaining -= item.PositionsGained
	}
	if remaining <= 0 {
		finish(&plan, in)
		return plan, 0, true
	}

	return plan, remaining, false
}

// finish totals the plan and orders items by impact.
func finish(plan *Plan, in Inputs) {
	for _, item := range plan.Items {
		plan.TotalPositionsGained += item.PositionsGained
		if !item.IsNA {
			plan.TotalTimeInvestmentCS += item.TimeDeltaCS
		}
	}
	plan.NewAF = plan.CurrentAF - float64(plan.TotalPositionsGained)/float64(in.TotalTracks)

	sort.SliceStable(plan.Items, func(i, j int) bool {
		return plan.Items[i].AFImprovement > plan.Items[j].AFImprovement
	})
}

func rankedItem(g Group, t analysis.Tier) PlanItem {
	return PlanItem{
		Variant:         g.Variant,
		CurrentRank:     g.CurrentRank,
		CurrentTimeCS:   g.CurrentTimeCS,
		NewRank:         t.TargetRank,
		TargetTimeCS:    t.TargetTimeCS,
		OpponentTimeCS:  t.OpponentTimeCS,
		PositionsGained: t.PositionsGained,
		AFImprovement:   t.AFImprovement,
		TimeDeltaCS:     t.TimeDeltaCS,
		Efficiency:      t.Efficiency,
	}
}

func excluded(v model.TrackVariant, exclude []Exclusion) bool {
	for _, x := range exclude {
		if x.matches(v) {
			return true
		}
	}
	return false
}
