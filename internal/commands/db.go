package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/coinwatch/internal/app"
	"github.com/dotcommander/coinwatch/internal/store"
)

func NewDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database utilities",
	}

	cmd.AddCommand(newDBPathCmd())
	cmd.AddCommand(newDBMigrateCmd())
	return cmd
}

func newDBPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the resolved database path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, source, err := app.ResolveDBPathDetailed()
			if err != nil {
				return cmdErr(cmd, err)
			}

			type resp struct {
				Path   string `json:"path"`
				Source string `json:"source"`
			}
			return printSuccess(cmd, resp{Path: path, Source: source})
		},
	}
}

func newDBMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and report the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			type resp struct {
				Current int64 `json:"current"`
				Latest  int64 `json:"latest"`
			}
			var out resp
			// Opening the database migrates it.
			if err := withDB(cmd, func(db *DB) error {
				current, latest, err := store.SchemaVersion(db)
				if err != nil {
					return err
				}
				out = resp{Current: current, Latest: latest}
				return nil
			}); err != nil {
				return err
			}
			return printSuccess(cmd, out)
		},
	}
}
