package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/model"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/timecode"
)

// cellMapping is the column order of the six time cells in each row of the
// player page times table.
var cellMapping = []struct {
	vehicle string
	laps    string
}{
	{model.VehicleCar, model.LapsThree},
	{model.VehicleCar, model.LapsOne},
	{model.VehicleHover, model.LapsThree},
	{model.VehicleHover, model.LapsOne},
	{model.VehiclePlane, model.LapsThree},
	{model.VehiclePlane, model.LapsOne},
}

var afPattern = regexp.MustCompile(`\d+\.\d+`)

// PlayerPage is a parsed player profile: header data plus the player's
// standing on every variant the site lists.
type PlayerPage struct {
	Profile   model.PlayerProfile
	Standings []model.PlayerStanding
}

// Player parses a player profile page.
func Player(html string) (*PlayerPage, error) {
	doc, err := document(html)
	if err != nil {
		return nil, err
	}

	profile, err := playerProfile(doc)
	if err != nil {
		return nil, err
	}

	standings, err := playerStandings(doc)
	if err != nil {
		return nil, err
	}

	return &PlayerPage{Profile: profile, Standings: standings}, nil
}

func playerProfile(doc *goquery.Document) (model.PlayerProfile, error) {
	var p model.PlayerProfile

	rankText := strings.TrimSpace(doc.Find("div.player-name strong.text-primary").First().Text())
	rankText = strings.TrimPrefix(rankText, "#")
	rank, err := strconv.Atoi(rankText)
	if err != nil {
		return p, fmt.Errorf("%w: player rank %q", ErrMalformed, rankText)
	}

	username := strings.TrimSpace(doc.Find("ol.breadcrumb li.active").First().Text())
	if username == "" {
		return p, fmt.Errorf("%w: missing breadcrumb username", ErrMalformed)
	}

	country := ""
	flag := doc.Find("div.player-country span.flag-icon").First()
	for _, cls := range strings.Fields(flag.AttrOr("class", "")) {
		if cls != "flag-icon" && strings.HasPrefix(cls, "flag-icon-") {
			country = strings.TrimPrefix(cls, "flag-icon-")
			break
		}
	}

	// The statistics tab lists several averages; only the combined
	// Average Finish row feeds the profile.
	af := 0.0
	doc.Find("#standard tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		text := row.Text()
		if !strings.Contains(text, "Average Finish") || !strings.Contains(text, "Combined") {
			return true
		}
		if m := afPattern.FindString(text); m != "" {
			af, _ = strconv.ParseFloat(m, 64)
		}
		return false
	})

	p.Username = username
	p.CombinedRank = rank
	p.CurrentAF = af
	p.Country = country
	return p, nil
}

func playerStandings(doc *goquery.Document) ([]model.PlayerStanding, error) {
	var standings []model.PlayerStanding
	var parseErr error

	doc.Find("#times table.table-times").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tbody tr")
		// Tracks occupy two consecutive rows: standard times, then
		// shortcut times.
		for i := 0; i < rows.Length(); {
			row := rows.Eq(i)
			name := strings.TrimSpace(row.Find("h3.h4").First().Text())
			if name == "" {
				i++
				continue
			}
			if i+1 >= rows.Length() {
				break
			}

			href := strings.TrimRight(row.Find("td.track-image-td a").First().AttrOr("href", ""), "/")
			slug := href[strings.LastIndex(href, "/")+1:]

			for catIdx, category := range []string{model.CategoryStandard, model.CategoryShortcut} {
				rows.Eq(i + catIdx).Find("td.times-td-border-left").Each(func(cellIdx int, cell *goquery.Selection) {
					if cellIdx >= len(cellMapping) || parseErr != nil {
						return
					}
					st, err := standingFromCell(cell, slug, name, category, cellIdx)
					if err != nil {
						parseErr = err
						return
					}
					standings = append(standings, st)
				})
			}

			i += 2
		}
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return standings, nil
}

func standingFromCell(cell *goquery.Selection, slug, name, category string, cellIdx int) (model.PlayerStanding, error) {
	col := cellMapping[cellIdx]
	st := model.PlayerStanding{Variant: model.TrackVariant{
		Slug:     slug,
		Name:     name,
		Vehicle:  col.vehicle,
		Category: category,
		Laps:     col.laps,
	}}

	if cell.HasClass("text-muted") {
		st.IsNA = true
		return st, nil
	}

	a := cell.Find("a").First()
	if a.Length() == 0 {
		st.IsNA = true
		return st, nil
	}

	timeCS, err := timecode.Parse(strings.TrimSpace(a.Text()))
	if err != nil {
		return st, fmt.Errorf("time on %s %s %s: %w", slug, col.vehicle, category, err)
	}
	st.TimeCS = timeCS
	st.Rank = popoverRank(cell)
	return st, nil
}

// popoverRank digs the board rank out of the cell's popover body, where it
// is rendered as a "Rank" label followed by a span.
func popoverRank(cell *goquery.Selection) int {
	rank := 0
	cell.Find(".popover-body strong").EachWithBreak(func(_ int, strong *goquery.Selection) bool {
		if !strings.Contains(strong.Text(), "Rank") {
			return true
		}
		text := strings.TrimSpace(strong.NextAllFiltered("span").First().Text())
		if n, err := strconv.Atoi(text); err == nil {
			rank = n
		}
		return false
	})
	return rank
}
