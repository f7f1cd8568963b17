package commands

import (
	"crisk/internal/database"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the assessment header",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd, database.ReadOnly())
			if err != nil {
				return err
			}
			defer store.Close()

			basic, err := store.Basic()
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendRows([]table.Row{
				{"File", store.Path()},
				{"Name", basic.Name},
				{"Location", basic.Location},
				{"Initial date", basic.InitialDate.Format("2006-01-02")},
				{"Scope", basic.Scope},
			})
			t.Render()
			return nil
		},
	}
}
