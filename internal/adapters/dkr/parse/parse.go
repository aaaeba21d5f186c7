// Package parse extracts structured records from the site's HTML pages.
// Selectors follow the site's markup as of mid 2026; every function takes
// the raw document and returns plain domain records.
package parse

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrMalformed reports a page missing the structure a parser relies on,
// usually an error page served with status 200 or a site redesign.
var ErrMalformed = errors.New("malformed page")

var (
	timePattern  = regexp.MustCompile(`\d{2}:\d{2}:\d{2}`)
	floatPattern = regexp.MustCompile(`[\+\-]?\d+\.\d+`)
)

func document(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// timeFromCell pulls an MM:SS:CC token from a cell's direct text nodes,
// falling back to the full subtree text. Direct nodes first keeps popover
// content from shadowing the displayed time.
func timeFromCell(cell *goquery.Selection) string {
	found := ""
	cell.Contents().Each(func(_ int, s *goquery.Selection) {
		if found == "" && goquery.NodeName(s) == "#text" {
			found = timePattern.FindString(s.Text())
		}
	})
	if found == "" {
		found = timePattern.FindString(cell.Text())
	}
	return found
}

// rowRank reads the rank column, carrying the previous rank forward for
// tied rows, which the site renders with a blank rank cell.
func rowRank(row *goquery.Selection, prev int) int {
	text := strings.TrimSpace(row.Find("th.id-field").First().Text())
	if n, err := strconv.Atoi(text); err == nil {
		return n
	}
	return prev
}

// playerLink resolves the profile anchor in a row to the canonical
// username (from the href) and the display name (from the anchor text).
func playerLink(row *goquery.Selection) (username, display string, ok bool) {
	a := row.Find("a.reset-link-color").First()
	if a.Length() == 0 {
		return "", "", false
	}
	href := strings.TrimRight(a.AttrOr("href", ""), "/")
	if i := strings.LastIndex(href, "/players/"); i >= 0 {
		username = href[i+len("/players/"):]
	}
	return username, strings.TrimSpace(a.Text()), username != ""
}
