// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

//go:build darwin || dragonfly || freebsd || illumos || linux || netbsd || openbsd || solaris

package store

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

var errLockHeld = errors.New("store: lock held")

func lockFile(f *os.File) error {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if errors.Is(err, unix.EWOULDBLOCK) {
		return errLockHeld
	}
	return err
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}

// releaseFile removes the lock file while still holding it, then drops the lock.
func releaseFile(f *os.File, path string) error {
	rmErr := os.Remove(path)
	unErr := unlockFile(f)
	return errors.Join(rmErr, unErr, f.Close())
}
