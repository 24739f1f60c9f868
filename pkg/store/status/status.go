// Package status exports errors produced by the store backends.
package status

import (
	"github.com/trigitdb/trigit/pkg/errors"
)

var (
	// ErrLayerNotFound indicates a layer is not present in the store
	ErrLayerNotFound = errors.New("layer not found")

	// ErrLabelNotFound indicates a label is not present in the store
	ErrLabelNotFound = errors.New("label not found")

	// ErrLabelExists indicates a label creation hit an existing label
	ErrLabelExists = errors.New("label already exists")

	// ErrCommitNotFound indicates no commit metadata is recorded for a layer
	ErrCommitNotFound = errors.New("commit not found")

	// ErrInvalidLayer indicates a layer record whose content address does not
	// match its payload (corrupt or tampered record, e.g. over replication)
	ErrInvalidLayer = errors.New("layer content address mismatch")

	// ErrBrokenAncestry indicates an ancestry walk hit a missing parent layer
	ErrBrokenAncestry = errors.New("broken ancestry chain")
)
