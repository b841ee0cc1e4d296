package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity_BaseNameOnly(t *testing.T) {
	assert.Equal(t, "budget.xlsx", Identity("/home/u/docs/budget.xlsx"))
	assert.Equal(t, "budget.xlsx", Identity("budget.xlsx"))
	assert.Equal(t, "archive.zip", Identity("./nested/archive.zip"))
}

func TestIdentity_SameNameDifferentDirsCollide(t *testing.T) {
	// Documented behavior: the ledger key ignores the directory.
	assert.Equal(t, Identity("/a/doc.xlsx"), Identity("/b/doc.xlsx"))
}

func TestFingerprint_ContentAddressed(t *testing.T) {
	dir := t.TempDir()
	one := filepath.Join(dir, "one.bin")
	two := filepath.Join(dir, "two.bin")
	three := filepath.Join(dir, "three.bin")
	require.NoError(t, os.WriteFile(one, []byte("same bytes"), 0o644))
	require.NoError(t, os.WriteFile(two, []byte("same bytes"), 0o644))
	require.NoError(t, os.WriteFile(three, []byte("different"), 0o644))

	fp1, err := Fingerprint(one)
	require.NoError(t, err)
	fp2, err := Fingerprint(two)
	require.NoError(t, err)
	fp3, err := Fingerprint(three)
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2)
	assert.NotEqual(t, fp1, fp3)
	assert.Len(t, fp1, 64, "hex sha-256")
}

func TestFingerprint_MissingFile(t *testing.T) {
	_, err := Fingerprint(filepath.Join(t.TempDir(), "absent.xlsx"))
	require.Error(t, err)
}
