// Package report renders a snapshot to the machine-readable and
// human-readable exports: a report.json with every raw value, and a
// self-contained index.html summary page.
package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/analysis"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/planner"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/snapshot"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/timecode"
)

//go:embed templates/report.html.tmpl
var templates embed.FS

// view groups a snapshot's opportunities the way the page presents them.
type view struct {
	Snap          *snapshot.Snapshot
	NAOpps        []analysis.Opportunity
	RankedOpps    []analysis.Opportunity
	NoImprovement []analysis.Opportunity
}

// planSection pairs a plan with its page heading for the shared template.
type planSection struct {
	Title string
	Plan  *planner.Plan
}

// Write renders both reports into outputDir, creating it if needed, and
// returns the paths written.
func Write(outputDir string, snap *snapshot.Snapshot) (htmlPath, jsonPath string, err error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", "", err
	}

	jsonPath = filepath.Join(outputDir, "report.json")
	if err := WriteJSON(jsonPath, snap); err != nil {
		return "", "", err
	}

	htmlPath = filepath.Join(outputDir, "index.html")
	if err := WriteHTML(htmlPath, snap); err != nil {
		return "", "", err
	}

	return htmlPath, jsonPath, nil
}

// WriteJSON writes the snapshot as indented JSON.
func WriteJSON(path string, snap *snapshot.Snapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// WriteHTML renders the summary page.
func WriteHTML(path string, snap *snapshot.Snapshot) error {
	tmpl, err := template.New("report.html.tmpl").Funcs(template.FuncMap{
		"fmtTime": timecode.Format,
		"fmtEff": func(eff float64) string {
			if eff >= analysis.EffInfinite {
				return "inf"
			}
			return fmt.Sprintf("%.3g", eff)
		},
		"fmtAF": func(af float64) string {
			return fmt.Sprintf("%.4f", af)
		},
		"planSection": func(title string, p *planner.Plan) planSection {
			return planSection{Title: title, Plan: p}
		},
	}).ParseFS(templates, "templates/report.html.tmpl")
	if err != nil {
		return err
	}

	v := view{Snap: snap}
	for _, opp := range snap.Opportunities {
		switch {
		case opp.IsNA:
			v.NAOpps = append(v.NAOpps, opp)
		case len(opp.Tiers) > 0:
			v.RankedOpps = append(v.RankedOpps, opp)
		default:
			v.NoImprovement = append(v.NoImprovement, opp)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return tmpl.Execute(f, v)
}
