package commands

import (
	"context"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dotcommander/coinwatch/internal/app"
	"github.com/dotcommander/coinwatch/internal/store"
)

func NewStatusCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database, feed settings and stored counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, check)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Run a connectivity query and consistency diagnostics")
	return cmd
}

func runStatus(cmd *cobra.Command, check bool) error {
	dbPath, dbSource, err := app.ResolveDBPathDetailed()
	if err != nil {
		return cmdErr(cmd, err)
	}

	type dbInfo struct {
		Path          string `json:"path"`
		Source        string `json:"source"`
		OK            bool   `json:"ok"`
		Size          string `json:"size,omitempty"`
		SchemaVersion int64  `json:"schema_version,omitempty"`
		LatestSchema  int64  `json:"latest_schema,omitempty"`
		Error         string `json:"error,omitempty"`
	}

	type resp struct {
		DB          dbInfo              `json:"db"`
		Feed        app.FeedSettings    `json:"feed"`
		Counts      *store.StatusCounts `json:"counts,omitempty"`
		QueryOK     *bool               `json:"query_ok,omitempty"`
		QueryError  string              `json:"query_error,omitempty"`
		Hint        string              `json:"hint,omitempty"`
		Diagnostics []store.Diagnostic  `json:"diagnostics,omitempty"`
	}

	result := resp{
		DB:   dbInfo{Path: dbPath, Source: dbSource},
		Feed: app.EffectiveFeedSettings(),
	}

	db, err := store.InitDBWithPath(dbPath)
	if err != nil {
		result.DB.Error = err.Error()
		if check {
			qOK := false
			result.QueryOK = &qOK
			result.QueryError = "db not available"
			result.Hint = "Set db_path in config.yaml to a writable location or pass --db-path."
		}
		return printSuccess(cmd, result)
	}
	defer func() { _ = db.Close() }()
	result.DB.OK = true

	if stat, err := os.Stat(dbPath); err == nil {
		result.DB.Size = humanize.Bytes(uint64(stat.Size()))
	}
	if current, latest, err := store.SchemaVersion(db); err == nil {
		result.DB.SchemaVersion = current
		result.DB.LatestSchema = latest
	}
	if counts, err := store.GetStatusCounts(db); err == nil {
		result.Counts = counts
	}

	if check {
		var one int
		qErr := db.QueryRowContext(context.Background(), "SELECT 1").Scan(&one)
		qOK := qErr == nil
		result.QueryOK = &qOK
		if !qOK {
			result.QueryError = qErr.Error()
		}
		if diagnostics, diagErr := store.RunDiagnostics(db); diagErr == nil {
			result.Diagnostics = diagnostics
		}
	}

	return printSuccess(cmd, result)
}
