// Package bdgr provides a persistent store backend on top of an embedded
// badger KV database.
//
// Layer records are stored as jsoniter-encoded JSON, label and commit
// records as YAML, under the archive paths of pkg/model.
package bdgr

import (
	"context"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v2"

	"github.com/dgraph-io/badger"

	"github.com/trigitdb/trigit/pkg/model"
	"github.com/trigitdb/trigit/pkg/store"
	"github.com/trigitdb/trigit/pkg/store/status"
)

// New creates a badger-backed store rooted at baseDir.
func New(baseDir string, opts ...Option) store.Store {
	s := &badgerStore{baseDir: baseDir}
	for _, apply := range opts {
		apply(s)
	}
	return s
}

// Option customizes the badger store.
type Option func(*badgerStore)

// WithSyncWrites toggles synchronous writes (defaults to badger's default).
func WithSyncWrites(sync bool) Option {
	return func(s *badgerStore) {
		s.syncWrites = &sync
	}
}

type badgerStore struct {
	baseDir    string
	syncWrites *bool
	db         *badger.DB
	init       sync.Once
	close      sync.Once
}

func (s *badgerStore) Initialize() error {
	var err error
	s.init.Do(func() {
		opts := badger.DefaultOptions(s.baseDir)
		opts.Logger = nil
		if s.syncWrites != nil {
			opts.SyncWrites = *s.syncWrites
		}
		var db *badger.DB
		db, err = badger.Open(opts)
		if err != nil {
			return
		}
		s.db = db
	})
	return err
}

func (s *badgerStore) Close() error {
	var err error
	s.close.Do(func() {
		if s.db != nil {
			err = s.db.Close()
			s.db = nil
		}
	})
	return err
}

func rewriteBadgerError(err error, notFound error) error {
	switch err {
	case nil:
		return nil
	case badger.ErrKeyNotFound:
		return notFound
	default:
		return err
	}
}

func (s *badgerStore) getValue(key string, notFound error) ([]byte, error) {
	var data []byte
	berr := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(key))
		if err != nil {
			return rewriteBadgerError(err, notFound)
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if berr != nil {
		return nil, berr
	}
	return data, nil
}

func (s *badgerStore) OpenLayer(_ context.Context, id string) (*model.LayerDescriptor, error) {
	data, err := s.getValue(model.GetArchivePathToLayer(id), status.ErrLayerNotFound)
	if err != nil {
		return nil, err
	}
	var layer model.LayerDescriptor
	if err := jsoniter.Unmarshal(data, &layer); err != nil {
		return nil, err
	}
	return &layer, nil
}

func (s *badgerStore) CreateLayer(ctx context.Context, base string, added, removed []model.Triple) (*model.LayerDescriptor, error) {
	if base != "" {
		if has, err := s.HasLayer(ctx, base); err != nil {
			return nil, err
		} else if !has {
			return nil, status.ErrLayerNotFound
		}
	}
	layer := model.NewLayerDescriptor(base, added, removed)
	if err := s.writeLayer(layer); err != nil {
		return nil, err
	}
	return layer, nil
}

func (s *badgerStore) PutLayer(_ context.Context, layer *model.LayerDescriptor) error {
	if layer == nil || !layer.Validate() {
		return status.ErrInvalidLayer
	}
	return s.writeLayer(layer)
}

func (s *badgerStore) writeLayer(layer *model.LayerDescriptor) error {
	data, err := jsoniter.Marshal(layer)
	if err != nil {
		return err
	}
	key := []byte(model.GetArchivePathToLayer(layer.ID))
	return s.db.Update(func(tx *badger.Txn) error {
		// content addressed: an existing record is identical by construction
		if _, err := tx.Get(key); err == nil {
			return nil
		}
		return tx.Set(key, data)
	})
}

func (s *badgerStore) HasLayer(_ context.Context, id string) (bool, error) {
	var has bool
	berr := s.db.View(func(tx *badger.Txn) error {
		_, err := tx.Get([]byte(model.GetArchivePathToLayer(id)))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err == nil {
			has = true
		}
		return err
	})
	return has, berr
}

func (s *badgerStore) LayerParent(ctx context.Context, id string) (string, error) {
	layer, err := s.OpenLayer(ctx, id)
	if err != nil {
		return "", err
	}
	return layer.Parent, nil
}

func (s *badgerStore) CreateLabel(_ context.Context, name, head string) error {
	key := []byte(model.GetArchivePathToLabel(name))
	data, err := yaml.Marshal(model.NewLabelDescriptor(name, head))
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *badger.Txn) error {
		if _, err := tx.Get(key); err == nil {
			return status.ErrLabelExists
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		return tx.Set(key, data)
	})
}

func (s *badgerStore) GetLabel(_ context.Context, name string) (*model.LabelDescriptor, error) {
	data, err := s.getValue(model.GetArchivePathToLabel(name), status.ErrLabelNotFound)
	if err != nil {
		return nil, err
	}
	var label model.LabelDescriptor
	if err := yaml.Unmarshal(data, &label); err != nil {
		return nil, err
	}
	return &label, nil
}

func (s *badgerStore) LabelHead(ctx context.Context, name string) (string, error) {
	label, err := s.GetLabel(ctx, name)
	if err != nil {
		return "", err
	}
	return label.Head, nil
}

func (s *badgerStore) LabelCAS(_ context.Context, name, expected, next string) (bool, error) {
	key := []byte(model.GetArchivePathToLabel(name))
	swapped := false
	berr := s.db.Update(func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if err != nil {
			return rewriteBadgerError(err, status.ErrLabelNotFound)
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		var label model.LabelDescriptor
		if err := yaml.Unmarshal(data, &label); err != nil {
			return err
		}
		if label.Head != expected {
			return nil
		}
		label.Head = next
		label.Timestamp = time.Now().UTC()
		out, err := yaml.Marshal(&label)
		if err != nil {
			return err
		}
		if err := tx.Set(key, out); err != nil {
			return err
		}
		swapped = true
		return nil
	})
	if berr == badger.ErrConflict {
		// a concurrent transaction moved the label first
		return false, nil
	}
	return swapped, berr
}

func (s *badgerStore) ListLabels(_ context.Context, prefix string) ([]model.LabelDescriptor, error) {
	searchPrefix := []byte(model.GetArchivePathPrefixToLabels(prefix))
	var out []model.LabelDescriptor
	berr := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = searchPrefix
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			data, err := iter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var label model.LabelDescriptor
			if err := yaml.Unmarshal(data, &label); err != nil {
				return err
			}
			out = append(out, label)
		}
		return nil
	})
	if berr != nil {
		return nil, berr
	}
	return out, nil
}

func (s *badgerStore) DeleteLabel(_ context.Context, name string) error {
	key := []byte(model.GetArchivePathToLabel(name))
	return s.db.Update(func(tx *badger.Txn) error {
		if _, err := tx.Get(key); err != nil {
			return rewriteBadgerError(err, status.ErrLabelNotFound)
		}
		return tx.Delete(key)
	})
}

func (s *badgerStore) PutCommit(_ context.Context, commit *model.CommitDescriptor) error {
	data, err := yaml.Marshal(commit)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Set([]byte(model.GetArchivePathToCommit(commit.ID)), data)
	})
}

func (s *badgerStore) GetCommit(_ context.Context, id string) (*model.CommitDescriptor, error) {
	data, err := s.getValue(model.GetArchivePathToCommit(id), status.ErrCommitNotFound)
	if err != nil {
		return nil, err
	}
	var commit model.CommitDescriptor
	if err := yaml.Unmarshal(data, &commit); err != nil {
		return nil, err
	}
	return &commit, nil
}
