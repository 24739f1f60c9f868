// Package status exports errors produced by the core package.
package status

import (
	"github.com/trigitdb/trigit/pkg/errors"
)

var (
	// ErrDescriptorNotFound indicates a well-formed descriptor addressing
	// nothing known to this store
	ErrDescriptorNotFound = errors.New("descriptor not found")

	// ErrLabelConflict indicates the branch head moved since the context was
	// opened. Retryable: re-open a fresh context and retry, nothing was applied.
	ErrLabelConflict = errors.New("label update conflict")

	// ErrWriteConflict indicates another context already holds a write intent
	// on the label. Retryable.
	ErrWriteConflict = errors.New("concurrent write on label")

	// ErrContextDone indicates a write or commit on a context that already
	// committed or aborted
	ErrContextDone = errors.New("transaction context is no longer active")

	// ErrReadOnly indicates a write on a read-only context (commit snapshots)
	ErrReadOnly = errors.New("context is read-only")

	// ErrDatabaseExists indicates a database creation hit an existing database
	ErrDatabaseExists = errors.New("database already exists")
)
