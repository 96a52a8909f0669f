// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const lockName = ".lock"

// DirStore keeps artifacts as files in a single directory.
//
// Writes go to a temporary file in the same directory and are renamed into place,
// so readers never observe a partial artifact.
type DirStore struct {
	dir string
}

// NewDirStore returns a store rooted at dir. The directory is created on the first write.
func NewDirStore(dir string) *DirStore { return &DirStore{dir: dir} }

// Dir returns the store directory.
func (d *DirStore) Dir() string { return d.dir }

// Path returns the file path of an artifact.
func (d *DirStore) Path(name string) string { return filepath.Join(d.dir, name) }

func (d *DirStore) resolve(name string) (string, error) {
	if name == "" || name == lockName || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(d.dir, name), nil
}

// Get reads an artifact.
func (d *DirStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := d.resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, err
}

// Exists reports whether an artifact file is present.
func (d *DirStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path, err := d.resolve(name)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Put writes an artifact atomically with the given permissions.
func (d *DirStore) Put(ctx context.Context, name string, data []byte, mode fs.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := d.resolve(name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.dir, "."+name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Removing an already renamed file is a no-op.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Lock claims the directory for one issuance run. The returned function
// releases it. A second Lock on the same directory fails with [ErrLocked]
// until the first is released.
//
// The claim is an advisory lock on the .lock file held by the open descriptor,
// so the operating system drops it when the holding process exits. A .lock
// file left behind by a killed run does not block later runs.
func (d *DirStore) Lock() (unlock func() error, err error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return nil, err
	}

	path := filepath.Join(d.dir, lockName)
	for range lockAttempts {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, SecretMode)
		if err != nil {
			return nil, err
		}

		if err := lockFile(f); err != nil {
			f.Close()
			if errors.Is(err, errLockHeld) {
				return nil, fmt.Errorf("%w: %s", ErrLocked, path)
			}
			return nil, err
		}

		// A releasing run removes the file before dropping its lock; a
		// descriptor opened on the removed file must not count as the claim.
		if !samePath(f, path) {
			unlockFile(f)
			f.Close()
			continue
		}

		if err := f.Truncate(0); err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
		}

		return func() error { return releaseFile(f, path) }, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrLocked, path)
}

// lockAttempts bounds retries after losing a race with a releasing run.
const lockAttempts = 3

func samePath(f *os.File, path string) bool {
	held, err := f.Stat()
	if err != nil {
		return false
	}
	current, err := os.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(held, current)
}
