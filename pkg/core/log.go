package core

import (
	"context"

	"github.com/trigitdb/trigit/pkg/errors"
	"github.com/trigitdb/trigit/pkg/model"
	"github.com/trigitdb/trigit/pkg/store"
	storestatus "github.com/trigitdb/trigit/pkg/store/status"
)

// Log lists the commit history of a descriptor's target, newest first.
// Layers without commit metadata (bootstrap seeds, replicated roots) appear
// as bare records carrying only the layer linkage.
func (e *Engine) Log(ctx context.Context, d model.Descriptor) ([]model.CommitDescriptor, error) {
	head, _, err := e.resolveHead(ctx, d)
	if err != nil {
		return nil, err
	}
	chain, err := store.Ancestry(ctx, e.store, head)
	if err != nil {
		return nil, err
	}
	out := make([]model.CommitDescriptor, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		id := chain[i]
		commit, err := e.store.GetCommit(ctx, id)
		if err != nil {
			if !errors.Is(err, storestatus.ErrCommitNotFound) {
				return nil, err
			}
			parent, perr := e.store.LayerParent(ctx, id)
			if perr != nil {
				return nil, perr
			}
			commit = &model.CommitDescriptor{ID: id, Parent: parent}
		}
		out = append(out, *commit)
	}
	return out, nil
}
