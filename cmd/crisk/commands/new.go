package commands

import (
	"fmt"

	"crisk/internal/database"

	"github.com/spf13/cobra"
)

func newNewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "new <file>",
		Short: "Create an empty assessment file",
		Long:  `Creates a new assessment. The .crisk extension is appended when missing. Existing files are never overwritten.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := database.WithExtension(args[0])
			store, err := database.Create(path, database.WithSQLDebug(cfg.SQLDebug))
			if err != nil {
				return err
			}
			if err := store.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
