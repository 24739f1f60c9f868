// Package core implements the transaction and commit-graph engine:
// descriptor resolution, transaction contexts over layered graphs, schema
// validation at commit boundaries, copy-on-write commit creation and the
// atomic label updates that linearize commits per branch.
package core

import (
	"go.uber.org/zap"

	"github.com/trigitdb/trigit/pkg/store"
)

// Engine binds the storage capability to the transaction machinery.
// One Engine is shared process-wide; contexts it opens are not.
type Engine struct {
	store         store.Store
	l             *zap.Logger
	intents       *writeIntents
	enableMetrics bool
}

// Option is a functor to build an engine with some options
type Option func(*Engine)

// WithLogger sets a logger for the engine
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.l = l
		}
	}
}

// WithMetrics toggles metrics collection for the engine
func WithMetrics(enabled bool) Option {
	return func(e *Engine) {
		e.enableMetrics = enabled
	}
}

// New builds an engine over a store.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:   s,
		l:       zap.NewNop(),
		intents: newWriteIntents(),
	}
	for _, apply := range opts {
		apply(e)
	}
	return e
}

// Store exposes the underlying storage capability (replication needs raw
// layer access; all label mutation still goes through commit CAS).
func (e *Engine) Store() store.Store {
	return e.store
}
