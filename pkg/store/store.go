// Package store defines the storage capability consumed by the transaction
// engine: immutable content-addressed layers, mutable labels updated through
// compare-and-swap, and commit metadata records.
//
// Two backends are provided: memory (ephemeral, for tests and scratch
// servers) and bdgr (persistent, embedded badger KV).
package store

import (
	"context"

	"github.com/trigitdb/trigit/pkg/model"
)

// Store is the storage capability.
//
// Layers are immutable once written: backends never update a layer record in
// place, and OpenLayer of the same ID always yields the same triples. Labels
// are the only mutable objects and every head movement goes through LabelCAS.
type Store interface {
	// Initialize prepares the backend for use
	Initialize() error
	// Close releases backend resources
	Close() error

	// OpenLayer fetches an immutable layer record
	OpenLayer(ctx context.Context, id string) (*model.LayerDescriptor, error)
	// CreateLayer builds, addresses and persists a new layer over a base
	// (empty base for a root layer)
	CreateLayer(ctx context.Context, base string, added, removed []model.Triple) (*model.LayerDescriptor, error)
	// PutLayer imports an externally built layer, verifying its content address
	PutLayer(ctx context.Context, layer *model.LayerDescriptor) error
	// HasLayer tells whether a layer is present
	HasLayer(ctx context.Context, id string) (bool, error)
	// LayerParent yields the parent id of a layer (empty for a root layer)
	LayerParent(ctx context.Context, id string) (string, error)

	// CreateLabel registers a new label pointing at head (possibly empty)
	CreateLabel(ctx context.Context, name, head string) error
	// GetLabel fetches a label record
	GetLabel(ctx context.Context, name string) (*model.LabelDescriptor, error)
	// LabelHead yields the current head layer id of a label
	LabelHead(ctx context.Context, name string) (string, error)
	// LabelCAS atomically moves a label head from expected to next.
	// It reports false, without error, when the observed head is not expected.
	LabelCAS(ctx context.Context, name, expected, next string) (bool, error)
	// ListLabels yields the labels whose name starts with prefix
	ListLabels(ctx context.Context, prefix string) ([]model.LabelDescriptor, error)
	// DeleteLabel removes a label (the layers it pointed to remain)
	DeleteLabel(ctx context.Context, name string) error

	// PutCommit records commit metadata for a layer
	PutCommit(ctx context.Context, commit *model.CommitDescriptor) error
	// GetCommit fetches commit metadata by layer id
	GetCommit(ctx context.Context, id string) (*model.CommitDescriptor, error)
}
