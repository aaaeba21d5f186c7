package app

import (
	"context"
	"sort"
	"strings"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/model"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/timecode"
	"github.com/AlessandroFlati/DKRRankingOptimizer/pkg/logger"
)

// applyOverrides rewrites standings and boards as if the configured
// hypothetical times were already on the site: the player's entry gets the
// new time (or is inserted), the board re-sorts with placeholder rows kept
// last, and ranks are reassigned with ties sharing a rank. Returns the
// summed rank movement and how many overrides matched.
func (s *Service) applyOverrides(ctx context.Context, username string, standings []model.PlayerStanding, boards map[string][]model.LeaderboardEntry) (rankDelta, affected int) {
	for _, ovr := range s.overrides {
		key := ovr.Variant.Key()

		si := -1
		for i := range standings {
			if standings[i].Variant.Key() == key {
				si = i
				break
			}
		}
		if si < 0 {
			s.log.Warn(ctx, "override matches no player track", logger.String("variant", key))
			continue
		}

		entries := boards[key]
		if len(entries) == 0 {
			s.log.Warn(ctx, "override has no leaderboard", logger.String("variant", key))
			continue
		}

		pi := -1
		for i := range entries {
			if strings.EqualFold(entries[i].Username, username) {
				pi = i
				break
			}
		}

		oldTime := standings[si].TimeCS
		oldRank := standings[si].Rank
		if pi >= 0 {
			oldRank = entries[pi].Rank
			entries[pi].TimeCS = ovr.TimeCS
		} else {
			entries = append(entries, model.LeaderboardEntry{
				Username:    username,
				DisplayName: username,
				TimeCS:      ovr.TimeCS,
			})
		}

		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].IsDefault != entries[j].IsDefault {
				return !entries[i].IsDefault
			}
			return entries[i].TimeCS < entries[j].TimeCS
		})
		reassignRanks(entries)
		boards[key] = entries

		newRank := 0
		for i := range entries {
			if strings.EqualFold(entries[i].Username, username) {
				newRank = entries[i].Rank
				break
			}
		}

		standings[si].TimeCS = ovr.TimeCS
		standings[si].Rank = newRank
		standings[si].IsNA = false

		rankDelta += newRank - oldRank
		affected++
		s.log.Info(ctx, "override applied",
			logger.String("variant", key),
			logger.String("old_time", timecode.Format(oldTime)),
			logger.String("new_time", timecode.Format(ovr.TimeCS)),
			logger.Int("old_rank", oldRank),
			logger.Int("new_rank", newRank))
	}

	return rankDelta, affected
}

// reassignRanks renumbers a board after a re-sort. Placeholder rows take
// the next rank without consuming it; tied real times share a rank.
func reassignRanks(entries []model.LeaderboardEntry) {
	rank := 1
	for i := range entries {
		if entries[i].IsDefault {
			entries[i].Rank = rank
			continue
		}
		if i > 0 && !entries[i-1].IsDefault && entries[i-1].TimeCS == entries[i].TimeCS {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = rank
		}
		rank++
	}
}
