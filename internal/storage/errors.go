package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no node has the requested id.
	ErrNotFound = errors.New("node not found")
	// ErrUnmodifiable means the node is managed and cannot be changed.
	ErrUnmodifiable = errors.New("node is unmodifiable")
	// ErrFolderURL means a url was set on a folder.
	ErrFolderURL = errors.New("cannot set url on a folder")
)

// MutationError is returned when the store rejects a mutation.
type MutationError struct {
	Op  string // "update" or "remove"
	ID  string
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

func rejected(op, id string, err error) error {
	return &MutationError{Op: op, ID: id, Err: err}
}
