package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/coinwatch/internal/models"
)

func requireFlagExists(t *testing.T, cmd *cobra.Command, name string) {
	t.Helper()
	require.NotNil(t, cmd.Flags().Lookup(name), "expected flag --%s on %s", name, cmd.Name())
}

func requireSubcommands(t *testing.T, cmd *cobra.Command, names ...string) {
	t.Helper()
	for _, name := range names {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		require.NotNil(t, sub)
		require.Equal(t, name, sub.Name())
	}
}

func TestNewRootCmd_HasExpectedSubcommands(t *testing.T) {
	root := NewRootCmd("test")
	require.Equal(t, "coinwatch", root.Use)
	requireSubcommands(t, root, "account", "coin", "favorite", "alert", "watch", "events", "status", "db", "schema")

	require.NotNil(t, root.PersistentFlags().Lookup("db-path"))
	require.NotNil(t, root.PersistentFlags().Lookup("api-url"))
}

func TestGroupCommands_HaveExpectedSubcommands(t *testing.T) {
	requireSubcommands(t, NewAccountCmd(), "login", "show", "logout")
	requireSubcommands(t, NewCoinCmd(), "refresh", "list", "get")
	requireSubcommands(t, NewFavoriteCmd(), "add", "remove", "list")
	requireSubcommands(t, NewAlertCmd(), "add", "list", "get", "delete")
	requireSubcommands(t, NewEventsCmd(), "list", "tail")
}

func TestCommands_DefineFlags(t *testing.T) {
	login := newAccountLoginCmd()
	requireFlagExists(t, login, "username")
	requireFlagExists(t, login, "id")

	refresh := newCoinRefreshCmd()
	requireFlagExists(t, refresh, "ids")
	requireFlagExists(t, refresh, "vs")

	add := newAlertAddCmd()
	requireFlagExists(t, add, "coin")
	requireFlagExists(t, add, "target")
	requireFlagExists(t, add, "direction")
	requireFlagExists(t, add, "vs")
	require.Equal(t, "above", add.Flags().Lookup("direction").DefValue)

	w := NewWatchCmd()
	requireFlagExists(t, w, "interval")
	requireFlagExists(t, w, "vs")
	requireFlagExists(t, w, "once")

	list := newEventsListCmd()
	for _, name := range []string{"kind", "coin", "limit", "since-id", "asc"} {
		requireFlagExists(t, list, name)
	}
}

func TestAccountLoginCmd_RequiresUsername(t *testing.T) {
	cmd := newAccountLoginCmd()
	err := cmd.RunE(cmd, nil)
	require.EqualError(t, err, "error already printed")
	require.IsType(t, printedError{}, err)
	require.ErrorIs(t, err, models.ErrorUsernameRequired)
}

func TestAlertAddCmd_ValidationErrorsBeforeDB(t *testing.T) {
	t.Run("missing coin", func(t *testing.T) {
		cmd := newAlertAddCmd()
		require.NoError(t, cmd.Flags().Set("target", "100"))

		err := cmd.RunE(cmd, nil)
		require.EqualError(t, err, "error already printed")
		require.ErrorIs(t, err, models.ErrorCoinIDRequired)
	})

	t.Run("missing target", func(t *testing.T) {
		cmd := newAlertAddCmd()
		require.NoError(t, cmd.Flags().Set("coin", "bitcoin"))

		err := cmd.RunE(cmd, nil)
		require.EqualError(t, err, "error already printed")
		require.ErrorIs(t, err, models.ErrorInvalidTargetPrice)
	})

	t.Run("bad direction", func(t *testing.T) {
		cmd := newAlertAddCmd()
		err := cmd.Flags().Set("direction", "sideways")
		require.ErrorContains(t, err, string(models.ErrorInvalidAlertDirection))
	})
}

func TestDirectionValue(t *testing.T) {
	var d directionValue
	require.Equal(t, "direction", d.Type())

	require.NoError(t, d.Set(" BELOW "))
	require.Equal(t, "below", d.String())

	require.Error(t, d.Set(""))
	require.Equal(t, "below", d.String())
}

func TestEventsCmds_RejectUnknownKind(t *testing.T) {
	for _, cmd := range []*cobra.Command{newEventsListCmd(), newEventsTailCmd()} {
		require.NoError(t, cmd.Flags().Set("kind", "targetPriceReached"))
		err := cmd.RunE(cmd, nil)
		require.EqualError(t, err, "error already printed", cmd.Name())
	}
}

func TestParseEventKind(t *testing.T) {
	k, err := parseEventKind("")
	require.NoError(t, err)
	require.Empty(t, k)

	k, err = parseEventKind("app_did_become_active")
	require.NoError(t, err)
	require.Equal(t, models.EventKindAppDidBecomeActive, k)

	_, err = parseEventKind("nope")
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, "DEBUG", parseLevel("debug").String())
	require.Equal(t, "WARN", parseLevel(" Warning ").String())
	require.Equal(t, "ERROR", parseLevel("error").String())
	require.Equal(t, "INFO", parseLevel("").String())
}
