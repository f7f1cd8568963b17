// Package report builds read-only snapshots of an assessment for document
// generators and renders them as text tables.
package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"crisk/internal/database"
	"crisk/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type AssetRow struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Owner           string `json:"owner"`
	Value           *int64 `json:"value"`
	Vulnerabilities int    `json:"vulnerabilities"`
	AppliedControls int    `json:"appliedControls"`
}

type VulnerabilityRow struct {
	ID          uint     `json:"id"`
	Description string   `json:"description"`
	Severity    *float64 `json:"severity"`
	Chance      *float64 `json:"chance"`
	TotalRisk   float64  `json:"totalRisk"`
	Assets      int      `json:"assets"`
	Threats     int      `json:"threats"`
}

type Snapshot struct {
	TakenAt         time.Time          `json:"takenAt"`
	Basic           models.Basic       `json:"basic"`
	Assets          []AssetRow         `json:"assets"`
	Vulnerabilities []VulnerabilityRow `json:"vulnerabilities"`
}

// Build copies the store's assets and vulnerabilities with derived values
// computed. Vulnerabilities are ordered by total risk, highest first.
func Build(s *database.Store) (Snapshot, error) {
	snap := Snapshot{TakenAt: time.Now()}

	basic, err := s.Basic()
	if err != nil {
		return snap, fmt.Errorf("could not read basic: %w", err)
	}
	snap.Basic = basic

	assets, err := s.Assets().All("Owner", "Vulnerabilities", "AppliedControls")
	if err != nil {
		return snap, fmt.Errorf("could not read assets: %w", err)
	}
	snap.Assets = make([]AssetRow, 0, len(assets))
	for _, a := range assets {
		snap.Assets = append(snap.Assets, AssetRow{
			ID:              a.ID,
			Name:            a.Name,
			Description:     a.Description,
			Owner:           a.OwnerName(),
			Value:           a.Value,
			Vulnerabilities: len(a.Vulnerabilities),
			AppliedControls: len(a.AppliedControls),
		})
	}

	vulns, err := s.Vulnerabilities().All("Assets", "Threats")
	if err != nil {
		return snap, fmt.Errorf("could not read vulnerabilities: %w", err)
	}
	snap.Vulnerabilities = make([]VulnerabilityRow, 0, len(vulns))
	for _, v := range vulns {
		snap.Vulnerabilities = append(snap.Vulnerabilities, VulnerabilityRow{
			ID:          v.ID,
			Description: v.Description,
			Severity:    v.Severity,
			Chance:      v.Chance,
			TotalRisk:   v.TotalRisk(),
			Assets:      len(v.Assets),
			Threats:     len(v.Threats),
		})
	}
	slices.SortStableFunc(snap.Vulnerabilities, func(a, b VulnerabilityRow) int {
		switch {
		case a.TotalRisk > b.TotalRisk:
			return -1
		case a.TotalRisk < b.TotalRisk:
			return 1
		}
		return int(a.ID) - int(b.ID)
	})

	return snap, nil
}

func (s Snapshot) WriteAssets(w io.Writer) error {
	tw := table.NewWriter()
	tw.SetTitle("Assets")
	tw.AppendHeader(table.Row{"ID", "Name", "Owner", "Value", "Vulnerabilities", "Controls"})
	for _, a := range s.Assets {
		tw.AppendRow(table.Row{a.ID, a.Name, a.Owner, orDash(a.Value), a.Vulnerabilities, a.AppliedControls})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
	})
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

func (s Snapshot) WriteVulnerabilities(w io.Writer) error {
	tw := table.NewWriter()
	tw.SetTitle("Vulnerabilities")
	tw.SetAllowedRowLength(130)
	tw.AppendHeader(table.Row{"ID", "Description", "Severity", "Chance", "Risk", "Assets", "Threats"})
	for _, v := range s.Vulnerabilities {
		tw.AppendRow(table.Row{
			v.ID,
			text.WrapText(v.Description, 60),
			orDash(v.Severity),
			orDash(v.Chance),
			strconv.FormatFloat(v.TotalRisk, 'f', -1, 64),
			v.Assets,
			v.Threats,
		})
	}
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

func orDash[T int64 | float64](v *T) string {
	if v == nil {
		return "-"
	}
	switch x := any(*v).(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return "-"
}
