// Package memory provides an in-process, ephemeral store backend.
//
// It is used by tests and by scratch servers. Layer immutability is enforced
// by copying records on the way in and out.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/trigitdb/trigit/pkg/model"
	"github.com/trigitdb/trigit/pkg/store"
	"github.com/trigitdb/trigit/pkg/store/status"
)

// New creates an empty in-memory store.
func New() store.Store {
	return &memStore{
		layers:  make(map[string]model.LayerDescriptor),
		labels:  make(map[string]model.LabelDescriptor),
		commits: make(map[string]model.CommitDescriptor),
	}
}

type memStore struct {
	mu      sync.RWMutex
	layers  map[string]model.LayerDescriptor
	labels  map[string]model.LabelDescriptor
	commits map[string]model.CommitDescriptor
}

func (m *memStore) Initialize() error { return nil }
func (m *memStore) Close() error      { return nil }

func copyLayer(l model.LayerDescriptor) *model.LayerDescriptor {
	out := model.LayerDescriptor{ID: l.ID, Parent: l.Parent}
	out.Added = append(out.Added, l.Added...)
	out.Removed = append(out.Removed, l.Removed...)
	return &out
}

func (m *memStore) OpenLayer(_ context.Context, id string) (*model.LayerDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.layers[id]
	if !ok {
		return nil, status.ErrLayerNotFound
	}
	return copyLayer(l), nil
}

func (m *memStore) CreateLayer(ctx context.Context, base string, added, removed []model.Triple) (*model.LayerDescriptor, error) {
	if base != "" {
		if has, err := m.HasLayer(ctx, base); err != nil {
			return nil, err
		} else if !has {
			return nil, status.ErrLayerNotFound
		}
	}
	layer := model.NewLayerDescriptor(base, added, removed)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.layers[layer.ID]; !ok {
		m.layers[layer.ID] = *copyLayer(*layer)
	}
	return layer, nil
}

func (m *memStore) PutLayer(_ context.Context, layer *model.LayerDescriptor) error {
	if layer == nil || !layer.Validate() {
		return status.ErrInvalidLayer
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.layers[layer.ID]; ok {
		// content addressed: identical by construction
		return nil
	}
	m.layers[layer.ID] = *copyLayer(*layer)
	return nil
}

func (m *memStore) HasLayer(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.layers[id]
	return ok, nil
}

func (m *memStore) LayerParent(ctx context.Context, id string) (string, error) {
	layer, err := m.OpenLayer(ctx, id)
	if err != nil {
		return "", err
	}
	return layer.Parent, nil
}

func (m *memStore) CreateLabel(_ context.Context, name, head string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.labels[name]; ok {
		return status.ErrLabelExists
	}
	m.labels[name] = *model.NewLabelDescriptor(name, head)
	return nil
}

func (m *memStore) GetLabel(_ context.Context, name string) (*model.LabelDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.labels[name]
	if !ok {
		return nil, status.ErrLabelNotFound
	}
	out := l
	return &out, nil
}

func (m *memStore) LabelHead(ctx context.Context, name string) (string, error) {
	l, err := m.GetLabel(ctx, name)
	if err != nil {
		return "", err
	}
	return l.Head, nil
}

func (m *memStore) LabelCAS(_ context.Context, name, expected, next string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.labels[name]
	if !ok {
		return false, status.ErrLabelNotFound
	}
	if l.Head != expected {
		return false, nil
	}
	l.Head = next
	l.Timestamp = time.Now().UTC()
	m.labels[name] = l
	return true, nil
}

func (m *memStore) ListLabels(_ context.Context, prefix string) ([]model.LabelDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.LabelDescriptor, 0, len(m.labels))
	for name, l := range m.labels {
		if strings.HasPrefix(name, prefix) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) DeleteLabel(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.labels[name]; !ok {
		return status.ErrLabelNotFound
	}
	delete(m.labels, name)
	return nil
}

func (m *memStore) PutCommit(_ context.Context, commit *model.CommitDescriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commits[commit.ID] = *commit
	return nil
}

func (m *memStore) GetCommit(_ context.Context, id string) (*model.CommitDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.commits[id]
	if !ok {
		return nil, status.ErrCommitNotFound
	}
	out := c
	return &out, nil
}
