// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package engine

import (
	"errors"
	"fmt"
)

// Error is a failure reported by an engine operation.
type Error struct {
	Engine string // engine name, e.g. "native" or "openssl"
	Op     string // operation, e.g. "sign"
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("engine %s: %s: %v", e.Engine, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Wrap annotates err with the engine and operation. It returns nil for a nil
// error and leaves an existing [*Error] untouched.
func Wrap(engine, op string, err error) error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return err
	}

	return &Error{Engine: engine, Op: op, Err: err}
}
