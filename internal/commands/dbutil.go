package commands

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dotcommander/coinwatch/internal/app"
	"github.com/dotcommander/coinwatch/internal/models"
	"github.com/dotcommander/coinwatch/internal/output"
	"github.com/dotcommander/coinwatch/internal/pricefeed"
	"github.com/dotcommander/coinwatch/internal/store"
)

// DB is an alias so command code doesn't need to import database/sql.
type DB = sql.DB

type printedError struct {
	err error
}

func (e printedError) Error() string {
	// The JSON error response is the output; the cause stays in err.
	return "error already printed"
}

func (e printedError) Unwrap() error { return e.err }

func openDB() (*DB, func(), error) {
	db, err := store.InitDB()
	if err != nil {
		return nil, nil, err
	}

	return db, func() { _ = db.Close() }, nil
}

func withDB(cmd *cobra.Command, fn func(db *DB) error) error {
	db, closeDB, err := openDB()
	if err != nil {
		return cmdErr(cmd, err)
	}
	defer closeDB()

	if err := fn(db); err != nil {
		return cmdErr(cmd, err)
	}
	return nil
}

func outputConfig(cmd *cobra.Command) output.Config {
	cfg := output.DefaultConfig()
	cfg.Writer = cmd.OutOrStdout()
	return cfg
}

func printSuccess(cmd *cobra.Command, data any) error {
	return output.PrintWith(outputConfig(cmd), output.Success(data))
}

// cmdErr prints the JSON error envelope, logs the failure once and returns a
// printedError so Execute does not report it again.
func cmdErr(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	var pe printedError
	if errors.As(err, &pe) {
		return err
	}

	attrs := []any{"error", err.Error(), "description", models.Describe(err)}
	var re models.RecoverableError
	if errors.As(err, &re) {
		attrs = append(attrs, "error_code", re.ErrorCode())
	}
	slog.Error("command error", attrs...)

	_ = output.PrintWith(outputConfig(cmd), output.Error(err))
	return printedError{err: err}
}

// cmdContext is the command's context, or Background when run outside Execute.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newFeed(settings app.FeedSettings) *pricefeed.Client {
	return pricefeed.New(pricefeed.Options{
		BaseURL:  settings.BaseURL,
		APIKey:   settings.APIKey,
		CacheTTL: settings.CacheTTL,
		Log:      slog.Default().With("component", "pricefeed"),
	})
}
