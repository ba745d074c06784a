package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/crypto/argon2"
)

const (
	// backupMagicHeader identifies encrypted backup files.
	backupMagicHeader = "RMETAENC1"

	// Argon2id parameters (RFC 9106 recommendations).
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32

	saltLength = 32
)

// BackupConfig configures snapshot database backups.
type BackupConfig struct {
	// Dir is where backup files are written.
	Dir string

	// Password enables encryption when non-empty. Backups are then
	// AES-256-GCM sealed with an Argon2id-derived key.
	Password string

	// Keep is how many backups to retain; older ones are deleted after a
	// successful backup. Zero keeps everything.
	Keep int
}

// BackupManager writes point-in-time copies of the analytics database.
type BackupManager struct {
	dbPath string
	config BackupConfig
}

// NewBackupManager creates a backup manager for the database at dbPath.
func NewBackupManager(dbPath string, config BackupConfig) *BackupManager {
	return &BackupManager{dbPath: dbPath, config: config}
}

// Backup copies the database to a timestamped file, encrypting it when a
// password is configured. Returns the backup path.
func (bm *BackupManager) Backup() (string, error) {
	if err := os.MkdirAll(bm.config.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	data, err := os.ReadFile(bm.dbPath)
	if err != nil {
		return "", fmt.Errorf("read database: %w", err)
	}

	name := fmt.Sprintf("snapshot-%s.db", time.Now().UTC().Format("20060102-150405"))
	if bm.config.Password != "" {
		name += ".enc"
		sealed, err := seal(data, bm.config.Password)
		if err != nil {
			return "", fmt.Errorf("encrypt backup: %w", err)
		}
		data = append([]byte(backupMagicHeader), sealed...)
	}

	dest := filepath.Join(bm.config.Dir, name)
	if err := os.WriteFile(dest, data, 0o600); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}

	if bm.config.Keep > 0 {
		if err := bm.rotate(); err != nil {
			return dest, fmt.Errorf("rotate backups: %w", err)
		}
	}

	return dest, nil
}

// Restore writes a backup's contents to destPath, decrypting if needed.
func (bm *BackupManager) Restore(backupPath, destPath string) error {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	if len(data) >= len(backupMagicHeader) && string(data[:len(backupMagicHeader)]) == backupMagicHeader {
		if bm.config.Password == "" {
			return fmt.Errorf("backup is encrypted but no password configured")
		}
		data, err = open(data[len(backupMagicHeader):], bm.config.Password)
		if err != nil {
			return fmt.Errorf("decrypt backup: %w", err)
		}
	}

	if err := os.WriteFile(destPath, data, 0o600); err != nil {
		return fmt.Errorf("write restored database: %w", err)
	}

	return nil
}

// rotate deletes all but the newest Keep backups.
func (bm *BackupManager) rotate() error {
	entries, err := filepath.Glob(filepath.Join(bm.config.Dir, "snapshot-*.db*"))
	if err != nil {
		return err
	}
	if len(entries) <= bm.config.Keep {
		return nil
	}

	// Timestamped names sort chronologically.
	sort.Strings(entries)
	for _, path := range entries[:len(entries)-bm.config.Keep] {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove old backup %s: %w", path, err)
		}
	}

	return nil
}

// seal encrypts plaintext with AES-256-GCM using an Argon2id-derived key.
// Output layout: salt || nonce || ciphertext+tag.
func seal(plaintext []byte, password string) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, len(salt)+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// open decrypts data produced by seal.
func open(sealed []byte, password string) ([]byte, error) {
	if len(sealed) < saltLength {
		return nil, fmt.Errorf("encrypted data too short")
	}

	salt := sealed[:saltLength]
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	rest := sealed[saltLength:]
	if len(rest) < gcm.NonceSize() {
		return nil, fmt.Errorf("encrypted data too short for nonce")
	}

	plaintext, err := gcm.Open(nil, rest[:gcm.NonceSize()], rest[gcm.NonceSize():], nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed (wrong password or corrupted data): %w", err)
	}

	return plaintext, nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return gcm, nil
}
