package commands

import (
	"fmt"
	"strconv"

	"crisk/internal/database"
	"crisk/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// lister renders one entity kind as table rows.
type lister func(s *database.Store) (table.Row, []table.Row, error)

var listers = map[string]lister{
	"assets":          listAssets,
	"vulnerabilities": listVulnerabilities,
	"threats":         listThreats,
	"owners":          listOwners,
	"controls":        listControls,
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "list <assets|vulnerabilities|threats|owners|controls>",
		Short:     "List the entities of one kind",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"assets", "vulnerabilities", "threats", "owners", "controls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			list, ok := listers[args[0]]
			if !ok {
				return fmt.Errorf("unknown kind %q", args[0])
			}

			store, err := openStore(cmd, database.ReadOnly())
			if err != nil {
				return err
			}
			defer store.Close()

			header, rows, err := list(store)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(header)
			t.AppendRows(rows)
			t.Render()
			return nil
		},
	}
}

func listAssets(s *database.Store) (table.Row, []table.Row, error) {
	assets, err := s.Assets().All("Owner")
	if err != nil {
		return nil, nil, err
	}
	rows := make([]table.Row, 0, len(assets))
	for _, a := range assets {
		value := "-"
		if v, ok := a.GetValue(); ok {
			value = strconv.FormatInt(v, 10)
		}
		rows = append(rows, table.Row{a.ID, a.Name, a.OwnerName(), value})
	}
	return table.Row{"ID", "Name", "Owner", "Value"}, rows, nil
}

func listVulnerabilities(s *database.Store) (table.Row, []table.Row, error) {
	vulns, err := s.Vulnerabilities().All()
	if err != nil {
		return nil, nil, err
	}
	rows := make([]table.Row, 0, len(vulns))
	for _, v := range vulns {
		rows = append(rows, table.Row{v.ID, v.Description, formatFloat(v.Severity), formatFloat(v.Chance), strconv.FormatFloat(v.TotalRisk(), 'g', -1, 64)})
	}
	return table.Row{"ID", "Description", "Severity", "Chance", "Total risk"}, rows, nil
}

func listThreats(s *database.Store) (table.Row, []table.Row, error) {
	threats, err := s.Threats().All()
	if err != nil {
		return nil, nil, err
	}
	rows := make([]table.Row, 0, len(threats))
	for _, t := range threats {
		rows = append(rows, table.Row{t.ID, t.Name, t.Description})
	}
	return table.Row{"ID", "Name", "Description"}, rows, nil
}

func listOwners(s *database.Store) (table.Row, []table.Row, error) {
	owners, err := s.Owners().All("Assets")
	if err != nil {
		return nil, nil, err
	}
	rows := make([]table.Row, 0, len(owners))
	for _, o := range owners {
		rows = append(rows, table.Row{o.ID, o.String(), len(o.Assets)})
	}
	return table.Row{"ID", "Name", "Assets"}, rows, nil
}

func listControls(s *database.Store) (table.Row, []table.Row, error) {
	controls, err := s.Controls().All("AppliedControls")
	if err != nil {
		return nil, nil, err
	}
	rows := make([]table.Row, 0, len(controls))
	for _, c := range controls {
		implemented := 0
		for _, ac := range c.AppliedControls {
			if ac.Status == models.StatusImplemented {
				implemented++
			}
		}
		rows = append(rows, table.Row{c.ID, c.Ref, c.Description, fmt.Sprintf("%d/%d", implemented, len(c.AppliedControls))})
	}
	return table.Row{"ID", "Ref", "Description", "Implemented"}, rows, nil
}

func formatFloat(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}
