package commands

import (
	"fmt"

	"crisk/internal/database"
	"crisk/internal/report"

	"github.com/spf13/cobra"
)

func newReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the asset and vulnerability tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd, database.ReadOnly())
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := report.Build(store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n\n", snap.Basic.Name, snap.Basic.InitialDate.Format("2006-01-02"))
			if err := snap.WriteAssets(out); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return snap.WriteVulnerabilities(out)
		},
	}
}
