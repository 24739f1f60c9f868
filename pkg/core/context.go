package core

import (
	"context"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/trigitdb/trigit/pkg/core/status"
	"github.com/trigitdb/trigit/pkg/model"
	"github.com/trigitdb/trigit/pkg/store"
)

// context states
const (
	stateActive int32 = iota
	stateCommitted
	stateAborted
)

// SchemaGraph is a schema graph attached to a context: the descriptor naming
// it and the head layer observed when the context was opened.
type SchemaGraph struct {
	Descriptor model.Descriptor
	Head       string
}

// Context is a transaction context: the instance graph being read or
// updated, the schema graphs constraining it, and a staging buffer of
// pending writes invisible to every other context.
//
// A Context is confined to one logical operation; it is not shared across
// goroutines. It commits at most once and is inert afterwards.
type Context struct {
	id           string
	engine       *Engine
	descriptor   model.Descriptor
	labelKey     string
	readOnly     bool
	observedHead string
	info         model.CommitInfo
	schemas      []SchemaGraph
	l            *zap.Logger

	mu      sync.Mutex
	inserts model.TripleSet
	deletes model.TripleSet
	state   atomic.Int32
}

// ID is the unique id of this context, used in logs.
func (c *Context) ID() string {
	return c.id
}

// Descriptor yields the descriptor this context was opened on.
func (c *Context) Descriptor() model.Descriptor {
	return c.descriptor
}

// ObservedHead is the head layer seen when the context was opened. The
// commit CAS moves the label from exactly this layer or fails.
func (c *Context) ObservedHead() string {
	return c.observedHead
}

// Schemas yields the attached schema graphs.
func (c *Context) Schemas() []SchemaGraph {
	return c.schemas
}

// Active tells whether the context can still stage writes and commit.
func (c *Context) Active() bool {
	return c.state.Load() == stateActive
}

func (c *Context) writable() error {
	if !c.Active() {
		return status.ErrContextDone
	}
	if c.readOnly {
		return status.ErrReadOnly
	}
	return nil
}

// Insert stages triple insertions. Staged writes are invisible outside this
// context until commit.
func (c *Context) Insert(triples ...model.Triple) error {
	if err := c.writable(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range triples {
		if c.deletes.Has(t) {
			c.deletes.Remove(t)
			continue
		}
		c.inserts.Add(t)
	}
	return nil
}

// Delete stages triple deletions.
func (c *Context) Delete(triples ...model.Triple) error {
	if err := c.writable(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range triples {
		if c.inserts.Has(t) {
			c.inserts.Remove(t)
			continue
		}
		c.deletes.Add(t)
	}
	return nil
}

// Staged reports the staging buffer (canonical order).
func (c *Context) Staged() (added, removed []model.Triple) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inserts.Slice(), c.deletes.Slice()
}

// Triples yields the graph as seen by this context: the observed instance
// graph with staged writes applied. Implements ask.Source, so patterns can
// be evaluated against uncommitted state.
func (c *Context) Triples(ctx context.Context) (model.TripleSet, error) {
	graph, err := store.TriplesAt(ctx, c.engine.store, c.observedHead)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.deletes {
		delete(graph, k)
	}
	for k, t := range c.inserts {
		graph[k] = t
	}
	return graph, nil
}

// Abort discards the staging buffer and makes the context inert. Aborting
// has no observable effect on the store. Safe to call more than once.
func (c *Context) Abort() {
	if !c.state.CompareAndSwap(stateActive, stateAborted) {
		return
	}
	c.releaseIntent()
	c.mu.Lock()
	c.inserts = make(model.TripleSet)
	c.deletes = make(model.TripleSet)
	c.mu.Unlock()
	c.l.Debug("context aborted")
}

func (c *Context) releaseIntent() {
	if !c.readOnly {
		c.engine.intents.release(c.labelKey, c.id)
	}
}
