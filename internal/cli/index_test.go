package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galligan/pickme/internal/storage"
)

func TestIndexCommandIndexesRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "guide.md"), []byte("# guide\n"), 0644))

	cfgDir := t.TempDir()
	cfgPath := filepath.Join(cfgDir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("[index]\nroots = [%q]\n", root)), 0644))

	dbFile := filepath.Join(t.TempDir(), "index.db")
	t.Setenv("PICKME_DB_PATH", dbFile)

	rootCmd.SetArgs([]string{"index", "--quiet", "--no-frecency", "--config", cfgPath, root})
	require.NoError(t, rootCmd.Execute())

	db, err := storage.Open(dbFile, storage.OpenOptions{})
	require.NoError(t, err)
	defer db.Close()

	paths, err := storage.ListPathsForRoot(db, mustCanonical(t, root))
	require.NoError(t, err)
	require.Len(t, paths, 2)
}

func TestIndexCommandWithGitRepoBuildsFrecency(t *testing.T) {
	if _, err := os.Stat("/usr/bin/git"); err != nil {
		if _, err := os.Stat("/usr/local/bin/git"); err != nil {
			t.Skip("git not installed")
		}
	}

	root := t.TempDir()
	initGitRepo(t, root)

	cfgDir := t.TempDir()
	cfgPath := filepath.Join(cfgDir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("[index]\nroots = [%q]\n", root)), 0644))

	dbFile := filepath.Join(t.TempDir(), "index.db")
	t.Setenv("PICKME_DB_PATH", dbFile)

	rootCmd.SetArgs([]string{"index", "--quiet", "--config", cfgPath, root})
	require.NoError(t, rootCmd.Execute())

	db, err := storage.Open(dbFile, storage.OpenOptions{})
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM frecency").Scan(&n))
	require.GreaterOrEqual(t, n, 1, "the committed README must have a frecency record")
}

// mustCanonical resolves symlinks the same way the indexer does; on macOS
// t.TempDir() lives under a /var symlink.
func mustCanonical(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}
