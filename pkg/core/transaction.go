package core

import (
	"context"

	"github.com/trigitdb/trigit/pkg/model"
)

// WithTransaction is the sole sanctioned way to mutate a graph: it opens a
// context on the descriptor, runs op against it, and commits on normal
// return. If op fails or panics, every staged write is discarded and no
// label moves. The commit id of the new head is returned (the observed head
// when op staged nothing).
func (e *Engine) WithTransaction(
	ctx context.Context,
	d model.Descriptor,
	info model.CommitInfo,
	op func(*Context) error,
	opts ...OpenOption,
) (commitID string, err error) {
	tc, err := e.Open(ctx, d, info, opts...)
	if err != nil {
		return "", err
	}
	defer func() {
		if r := recover(); r != nil {
			tc.Abort()
			panic(r)
		}
	}()
	if err := op(tc); err != nil {
		tc.Abort()
		return "", err
	}
	return tc.Commit(ctx)
}
