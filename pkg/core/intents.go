package core

import (
	"sync"
)

// writeIntents tracks which label each active write context holds.
// A second writer on the same label is rejected immediately with a
// retryable conflict; readers never consult this registry.
type writeIntents struct {
	mu   sync.Mutex
	held map[string]string // label key -> context id
}

func newWriteIntents() *writeIntents {
	return &writeIntents{held: make(map[string]string)}
}

func (w *writeIntents) acquire(label, contextID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, taken := w.held[label]; taken {
		return false
	}
	w.held[label] = contextID
	return true
}

func (w *writeIntents) release(label, contextID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if owner, ok := w.held[label]; ok && owner == contextID {
		delete(w.held, label)
	}
}
