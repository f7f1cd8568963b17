package commands

import (
	"errors"
	"os"

	"crisk/internal/config"
	"crisk/internal/database"

	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crisk",
		Short:         "Information security risk assessment",
		Long:          `crisk keeps the assets, vulnerabilities, threats and controls of one risk assessment in a single file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			config.InitLogger(os.Stderr, cfg.LogLevel)
			return nil
		},
	}

	root.PersistentFlags().StringP("file", "f", "", "assessment file (default $CRISK_FILE)")

	root.AddCommand(newNewCommand())
	root.AddCommand(newInfoCommand())
	root.AddCommand(newListCommand())
	root.AddCommand(newReportCommand())
	root.AddCommand(newServeCommand())
	return root
}

func GetRootCmd() *cobra.Command {
	return rootCmd
}

// storePath resolves the store file from --file, then CRISK_FILE.
func storePath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" && cfg != nil {
		path = cfg.StoreFile
	}
	if path == "" {
		return "", errors.New("no assessment file given, use --file or CRISK_FILE")
	}
	return path, nil
}

func openStore(cmd *cobra.Command, opts ...database.Option) (*database.Store, error) {
	path, err := storePath(cmd)
	if err != nil {
		return nil, err
	}
	opts = append([]database.Option{database.WithSQLDebug(cfg.SQLDebug)}, opts...)
	return database.Open(path, opts...)
}
