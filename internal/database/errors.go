package database

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreAccess matches every failure to open, create or use the
	// backing file.
	ErrStoreAccess   = errors.New("store access failed")
	ErrStoreNotFound = errors.New("store file does not exist")
	ErrStoreExists   = errors.New("store file already exists")
	ErrStoreCorrupt  = errors.New("file is not a crisk store")
	ErrStoreClosed   = errors.New("store is closed")

	ErrNotFound   = errors.New("record not found")
	ErrValidation = errors.New("validation failed")
)

type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreAccess
}

func storeErr(op, path string, err error) error {
	return &StoreError{Op: op, Path: path, Err: err}
}
