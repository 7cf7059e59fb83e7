package config

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// EnsureUserConfig copies defaultPath into dataDir/config.yml unless a user
// config already exists. Concurrent starts against the same data dir are
// serialized with a lock file.
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	lock := flock.New(filepath.Join(dataDir, ".config.lock"))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return "", err
	}
	if !locked {
		return "", errors.New("config lock busy")
	}
	defer func() { _ = lock.Unlock() }()

	_, err = os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	src, err := os.Open(defaultPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp := userPath + ".tmp"
	dst, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return userPath, os.Rename(tmp, userPath)
}
