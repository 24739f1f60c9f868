package core

import (
	"context"

	"github.com/trigitdb/trigit/pkg/model"
	"github.com/trigitdb/trigit/pkg/store"
)

// View is a read-only snapshot of the graph at one layer. Implements
// ask.Source. A View never changes underneath a reader: layers are immutable.
type View struct {
	s    store.Store
	head string
}

// NewView builds a view over a layer.
func NewView(s store.Store, head string) View {
	return View{s: s, head: head}
}

// Head yields the layer this view reads.
func (v View) Head() string {
	return v.head
}

// Triples materializes the graph at the view's layer.
func (v View) Triples(ctx context.Context) (model.TripleSet, error) {
	return store.TriplesAt(ctx, v.s, v.head)
}

// ViewOf resolves a descriptor to a read-only snapshot view of its current
// target. For commit descriptors the snapshot is permanent; for branch heads
// it is the head observed now.
func (e *Engine) ViewOf(ctx context.Context, d model.Descriptor) (View, error) {
	head, _, err := e.resolveHead(ctx, d)
	if err != nil {
		return View{}, err
	}
	return NewView(e.store, head), nil
}
