package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFakeDB(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "data.db")
	require.NoError(t, os.WriteFile(path, []byte("sqlite-payload"), 0o600))
	return path
}

func TestBackupManager_PlainBackupAndRestore(t *testing.T) {
	dir := t.TempDir()
	dbPath := writeFakeDB(t, dir)

	bm := NewBackupManager(dbPath, BackupConfig{Dir: filepath.Join(dir, "backups")})

	backupPath, err := bm.Backup()
	require.NoError(t, err)

	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("sqlite-payload"), data, "plain backup should match source")

	restored := filepath.Join(dir, "restored.db")
	require.NoError(t, bm.Restore(backupPath, restored))

	got, err := os.ReadFile(restored)
	require.NoError(t, err)
	assert.Equal(t, []byte("sqlite-payload"), got)
}

func TestBackupManager_EncryptedBackupAndRestore(t *testing.T) {
	dir := t.TempDir()
	dbPath := writeFakeDB(t, dir)

	bm := NewBackupManager(dbPath, BackupConfig{
		Dir:      filepath.Join(dir, "backups"),
		Password: "correct horse battery staple",
	})

	backupPath, err := bm.Backup()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(backupPath, ".enc"), "encrypted backups carry an .enc suffix")

	// Ciphertext never contains the plaintext.
	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(data, []byte("sqlite-payload")), "backup is not encrypted")

	restored := filepath.Join(dir, "restored.db")
	require.NoError(t, bm.Restore(backupPath, restored))

	got, err := os.ReadFile(restored)
	require.NoError(t, err)
	assert.Equal(t, []byte("sqlite-payload"), got)

	// Wrong password fails rather than yielding garbage.
	wrong := NewBackupManager(dbPath, BackupConfig{
		Dir:      bm.config.Dir,
		Password: "wrong",
	})
	assert.Error(t, wrong.Restore(backupPath, filepath.Join(dir, "bad.db")))
}

func TestBackupManager_Rotation(t *testing.T) {
	dir := t.TempDir()
	dbPath := writeFakeDB(t, dir)
	backupDir := filepath.Join(dir, "backups")
	require.NoError(t, os.MkdirAll(backupDir, 0o755))

	bm := NewBackupManager(dbPath, BackupConfig{Dir: backupDir, Keep: 2})

	// Stamp granularity is one second; write distinct names directly.
	for _, name := range []string{
		"snapshot-20260101-000000.db",
		"snapshot-20260102-000000.db",
		"snapshot-20260103-000000.db",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(backupDir, name), []byte("old"), 0o600))
	}

	_, err := bm.Backup()
	require.NoError(t, err)

	entries, err := filepath.Glob(filepath.Join(backupDir, "snapshot-*.db*"))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "rotation keeps the newest backups")
}
