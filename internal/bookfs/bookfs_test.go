package bookfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func entries(t *testing.T, dir string) []string {
	t.Helper()
	des, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, de := range des {
		names = append(names, de.Name())
	}
	return names
}

func TestBatch_CommitReplacesTogether(t *testing.T) {
	root := t.TempDir()
	accounts := filepath.Join(root, "accounts", "accounts.csv")
	sequence := filepath.Join(root, "journal", "sequence")
	require.NoError(t, os.MkdirAll(filepath.Dir(sequence), 0o755))
	require.NoError(t, os.WriteFile(sequence, []byte("3\n"), 0o644))

	var b Batch
	require.NoError(t, b.Stage(accounts, []byte("id,name,type,opening_balance\n")))
	require.NoError(t, b.Stage(sequence, []byte("4\n")))

	assert.NoFileExists(t, accounts)
	assert.Equal(t, "3\n", readFile(t, sequence), "untouched before commit")

	require.NoError(t, b.Commit())
	assert.Equal(t, "id,name,type,opening_balance\n", readFile(t, accounts))
	assert.Equal(t, "4\n", readFile(t, sequence))
	assert.Equal(t, []string{"sequence"}, entries(t, filepath.Dir(sequence)))

	info, err := os.Stat(accounts)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestBatch_AbortLeavesDestinations(t *testing.T) {
	root := t.TempDir()
	dst := filepath.Join(root, "vouchers.csv")
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o644))

	var b Batch
	require.NoError(t, b.Stage(dst, []byte("new")))
	b.Abort()

	assert.Equal(t, "old", readFile(t, dst))
	assert.Equal(t, []string{"vouchers.csv"}, entries(t, root))
}

func TestBatch_StageFailureKeepsEarlierFilesUnapplied(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "journal")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0o644))

	var b Batch
	require.NoError(t, b.Stage(filepath.Join(root, "accounts.csv"), []byte("x")))
	err := b.Stage(filepath.Join(blocker, "vouchers.csv"), []byte("y"))
	require.Error(t, err)
	b.Abort()

	assert.ElementsMatch(t, []string{"journal"}, entries(t, root))
}

func TestBatch_CommitFailureDropsRemainingTemps(t *testing.T) {
	root := t.TempDir()
	occupied := filepath.Join(root, "journal")
	require.NoError(t, os.MkdirAll(filepath.Join(occupied, "keep"), 0o755))
	later := filepath.Join(root, "sequence")

	var b Batch
	require.NoError(t, b.Stage(occupied, []byte("file over dir")))
	require.NoError(t, b.Stage(later, []byte("9\n")))

	require.Error(t, b.Commit())
	assert.NoFileExists(t, later)
	assert.ElementsMatch(t, []string{"journal"}, entries(t, root))
}

func TestFingerprint(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "sequence")

	missing, err := Fingerprint(p)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(p, nil, 0o644))
	empty, err := Fingerprint(p)
	require.NoError(t, err)
	assert.NotEqual(t, missing, empty)

	require.NoError(t, os.WriteFile(p, []byte("1\n"), 0o644))
	one, err := Fingerprint(p)
	require.NoError(t, err)
	again, err := Fingerprint(p)
	require.NoError(t, err)
	assert.Equal(t, one, again)
	assert.NotEqual(t, empty, one)
}
