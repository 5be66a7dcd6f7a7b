package app

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func resetSettingsStateForTest() {
	settingsOnce = sync.Once{}
	settings = Settings{}
	settingsErr = nil
	SetDBPathOverride("")
	SetAPIURLOverride("")
}

func TestGetDBPath_PrioritizesCLIOverride(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("COINWATCH_DB_PATH", filepath.Join(home, "env", "coinwatch.db"))

	overridePath := filepath.Join(home, "cli", "coinwatch.db")
	SetDBPathOverride(overridePath)

	resolved, err := GetDBPath()
	require.NoError(t, err)
	require.Equal(t, overridePath, resolved)
}

func TestGetDBPath_UsesEnvWithoutOverride(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	envPath := filepath.Join(home, "env", "coinwatch.db")
	t.Setenv("COINWATCH_DB_PATH", envPath)

	resolved, err := GetDBPath()
	require.NoError(t, err)
	require.Equal(t, envPath, resolved)
}

func TestResolveDBPathDetailed_ReportsSources(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("COINWATCH_DB_PATH", "")

	workdir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(workdir))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	resolved, source, err := ResolveDBPathDetailed()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "coinwatch", "coinwatch.db"), resolved)
	require.Equal(t, "default(~/.config/coinwatch/coinwatch.db)", source)

	configured := filepath.Join(home, "data", "configured.db")
	userConfigPath := filepath.Join(home, ".config", "coinwatch", "config.yaml")
	require.NoError(t, os.WriteFile(userConfigPath, []byte("db_path: "+configured+"\n"), 0o600))

	resolved, source, err = ResolveDBPathDetailed()
	require.NoError(t, err)
	require.Equal(t, configured, resolved)
	require.Equal(t, "config("+userConfigPath+")", source)

	envPath := filepath.Join(home, "env", "coinwatch.db")
	t.Setenv("COINWATCH_DB_PATH", envPath)
	_, source, err = ResolveDBPathDetailed()
	require.NoError(t, err)
	require.Equal(t, "env(COINWATCH_DB_PATH)", source)
}

func TestEnsureDBDir_CreatesParentDirectories(t *testing.T) {
	base := t.TempDir()
	dbPath := filepath.Join(base, "nested", "deep", "coinwatch.db")

	resolved, err := EnsureDBDir(dbPath)
	require.NoError(t, err)
	require.Equal(t, dbPath, resolved)
	require.DirExists(t, filepath.Dir(dbPath))
}
