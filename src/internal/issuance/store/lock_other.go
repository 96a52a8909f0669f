// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

//go:build !(darwin || dragonfly || freebsd || illumos || linux || netbsd || openbsd || solaris || windows)

package store

import (
	"errors"
	"os"
)

var errLockHeld = errors.New("store: lock held")

func lockFile(*os.File) error {
	return errors.ErrUnsupported
}

func unlockFile(*os.File) error { return nil }

func releaseFile(f *os.File, path string) error {
	return errors.Join(os.Remove(path), f.Close())
}
