package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/model"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/timecode"
)

// Leaderboard parses a track leaderboard page into board-ordered entries.
// A page without the expected table yields an empty board, not an error;
// the site serves such pages for variants that exist but were never run.
func Leaderboard(html string) ([]model.LeaderboardEntry, error) {
	doc, err := document(html)
	if err != nil {
		return nil, err
	}

	var entries []model.LeaderboardEntry
	var parseErr error
	prevRank := 0

	doc.Find("table.table-striped").First().Find("tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		rank := rowRank(row, prevRank)
		prevRank = rank

		username, display, ok := playerLink(row)
		if !ok {
			return true
		}

		cell := row.Find("td.time-field").First()
		if cell.Length() == 0 {
			return true
		}
		isDefault := cell.Find(`i.fa-info[title="Default Time"]`).Length() > 0

		timeText := strings.TrimSpace(cell.Find("strong.top-time").First().Text())
		if timeText == "" {
			timeText = timeFromCell(cell)
		}
		if timeText == "" {
			return true
		}

		timeCS, err := timecode.Parse(timeText)
		if err != nil {
			parseErr = fmt.Errorf("row %d (%s): %w", rank, username, err)
			return false
		}

		entries = append(entries, model.LeaderboardEntry{
			Rank:        rank,
			Username:    username,
			DisplayName: display,
			TimeCS:      timeCS,
			IsDefault:   isDefault,
		})
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return entries, nil
}

// CombinedRanking parses the combined average-finish ranking page.
func CombinedRanking(html string) ([]model.RankingEntry, error) {
	doc, err := document(html)
	if err != nil {
		return nil, err
	}

	var entries []model.RankingEntry
	prevRank := 0

	doc.Find("table.table-striped").First().Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		rank := rowRank(row, prevRank)
		prevRank = rank

		username, display, ok := playerLink(row)
		if !ok {
			return
		}

		cells := row.Find("td.time-field")
		if cells.Length() == 0 {
			return
		}

		af, err := strconv.ParseFloat(strings.TrimSpace(cells.Eq(0).Text()), 64)
		if err != nil {
			return
		}

		gap := 0.0
		if cells.Length() > 1 {
			gapText := strings.ReplaceAll(strings.TrimSpace(cells.Eq(1).Text()), ",", "")
			if m := floatPattern.FindString(gapText); m != "" {
				gap, _ = strconv.ParseFloat(m, 64)
			}
		}

		entries = append(entries, model.RankingEntry{
			Rank:        rank,
			Username:    username,
			DisplayName: display,
			AF:          af,
			Gap:         gap,
		})
	})

	return entries, nil
}
