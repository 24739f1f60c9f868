package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trigitdb/trigit/pkg/ask"
	"github.com/trigitdb/trigit/pkg/core/status"
	"github.com/trigitdb/trigit/pkg/model"
)

func TestOpenUnknownDescriptor(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)

	d := model.BranchDescriptor("nobody", "nothing", model.SourceLocal, "main")
	_, err := e.Open(ctx, d, testInfo())
	assert.ErrorIs(t, err, status.ErrDescriptorNotFound)

	_, err = e.Open(ctx, model.CommitDescriptorRef("a", "b", "no-such-commit"), testInfo())
	assert.ErrorIs(t, err, status.ErrDescriptorNotFound)
}

func TestResolve(t *testing.T) {
	d, err := Resolve("acme/crm/local/branch/main")
	require.NoError(t, err)
	assert.Equal(t, model.KindBranchHead, d.Kind)

	_, err = Resolve("not a descriptor")
	assert.ErrorIs(t, err, model.ErrInvalidDescriptor)
}

func TestCommitRoundTrip(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	d := mustCreateDB(t, e, "acme", "crm")

	id, err := e.WithTransaction(ctx, d, testInfo(), func(tc *Context) error {
		return tc.Insert(model.T("x", "y", "z"))
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// re-resolving the same descriptor string sees the new head
	again, err := Resolve(d.String())
	require.NoError(t, err)
	view, err := e.ViewOf(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, id, view.Head())

	bindings, err := ask.All(ctx, view, ask.P("x", "y", "z"))
	require.NoError(t, err)
	assert.Len(t, bindings, 1)

	// commit metadata carries author, message and a committer timestamp
	commit, err := e.Store().GetCommit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "t", commit.Author)
	assert.Equal(t, "m", commit.Message)
	assert.False(t, commit.Timestamp.IsZero())
}

func TestAbortedTransactionLeavesHeadUntouched(t *testing.T) {
	ctx := context.Background()
	e, s := newTestEngine(t)
	d := mustCreateDB(t, e, "acme", "crm")
	key, _ := d.LabelKey()

	before, err := s.LabelHead(ctx, key)
	require.NoError(t, err)

	opErr := assert.AnError
	_, err = e.WithTransaction(ctx, d, testInfo(), func(tc *Context) error {
		require.NoError(t, tc.Insert(model.T("x", "y", "z")))
		return opErr
	})
	assert.ErrorIs(t, err, opErr)

	after, err := s.LabelHead(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPanicInTransactionAborts(t *testing.T) {
	ctx := context.Background()
	e, s := newTestEngine(t)
	d := mustCreateDB(t, e, "acme", "crm")
	key, _ := d.LabelKey()

	require.Panics(t, func() {
		_, _ = e.WithTransaction(ctx, d, testInfo(), func(tc *Context) error {
			_ = tc.Insert(model.T("x", "y", "z"))
			panic("boom")
		})
	})

	head, err := s.LabelHead(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, head)

	// the write intent was released: a new transaction proceeds
	_, err = e.WithTransaction(ctx, d, testInfo(), func(tc *Context) error {
		return tc.Insert(model.T("p", "q", "r"))
	})
	assert.NoError(t, err)
}

func TestConcurrentWriterRejected(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	d := mustCreateDB(t, e, "acme", "crm")

	c1, err := e.Open(ctx, d, testInfo())
	require.NoError(t, err)
	defer c1.Abort()

	// a second write context on the same label conflicts immediately
	_, err = e.Open(ctx, d, testInfo())
	assert.ErrorIs(t, err, status.ErrWriteConflict)

	// read-only contexts are never blocked by a write intent
	require.NoError(t, c1.Insert(model.T("x", "y", "z")))
	id, err := c1.Commit(ctx)
	require.NoError(t, err)

	ro, err := e.Open(ctx, model.CommitDescriptorRef("acme", "crm", id), testInfo())
	require.NoError(t, err)
	assert.ErrorIs(t, ro.Insert(model.T("a", "b", "c")), status.ErrReadOnly)
}

func TestLabelConflictOnConcurrentHeadMove(t *testing.T) {
	ctx := context.Background()
	e, s := newTestEngine(t)
	d := mustCreateDB(t, e, "acme", "crm")
	key, _ := d.LabelKey()

	tc, err := e.Open(ctx, d, testInfo())
	require.NoError(t, err)
	require.NoError(t, tc.Insert(model.T("p", "q", "r")))

	// the label moves underneath the open context (as a replication
	// fast-forward would), so the commit CAS must fail
	other, err := s.CreateLayer(ctx, "", []model.Triple{model.T("x", "y", "z")}, nil)
	require.NoError(t, err)
	swapped, err := s.LabelCAS(ctx, key, tc.ObservedHead(), other.ID)
	require.NoError(t, err)
	require.True(t, swapped)

	_, err = tc.Commit(ctx)
	assert.ErrorIs(t, err, status.ErrLabelConflict)
	assert.False(t, tc.Active())

	// the staged write never became visible
	head, err := s.LabelHead(ctx, key)
	require.NoError(t, err)
	view := NewView(s, head)
	found, err := ask.Exists(ctx, view, ask.P("p", "q", "r"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestContextInertAfterCommit(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	d := mustCreateDB(t, e, "acme", "crm")

	tc, err := e.Open(ctx, d, testInfo())
	require.NoError(t, err)
	require.NoError(t, tc.Insert(model.T("x", "y", "z")))
	_, err = tc.Commit(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, tc.Insert(model.T("a", "b", "c")), status.ErrContextDone)
	_, err = tc.Commit(ctx)
	assert.ErrorIs(t, err, status.ErrContextDone)

	tc.Abort() // no-op on an inert context
	assert.False(t, tc.Active())
}

func TestEmptyCommitKeepsHead(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	d := mustCreateDB(t, e, "acme", "crm")

	id, err := e.WithTransaction(ctx, d, testInfo(), func(tc *Context) error {
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, id, "empty commit returns the unchanged head")
}

func TestStagedWritesInvisibleOutside(t *testing.T) {
	ctx := context.Background()
	e, s := newTestEngine(t)
	d := mustCreateDB(t, e, "acme", "crm")
	key, _ := d.LabelKey()

	tc, err := e.Open(ctx, d, testInfo())
	require.NoError(t, err)
	defer tc.Abort()
	require.NoError(t, tc.Insert(model.T("x", "y", "z")))

	// the context sees its own staged write
	found, err := ask.Exists(ctx, tc, ask.P("x", "y", "z"))
	require.NoError(t, err)
	assert.True(t, found)

	// the branch head does not
	head, err := s.LabelHead(ctx, key)
	require.NoError(t, err)
	outside, err := ask.Exists(ctx, NewView(s, head), ask.P("x", "y", "z"))
	require.NoError(t, err)
	assert.False(t, outside)
}

func TestInsertDeleteStaging(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	d := mustCreateDB(t, e, "acme", "crm")

	_, err := e.WithTransaction(ctx, d, testInfo(), func(tc *Context) error {
		return tc.Insert(model.T("a", "b", "c"), model.T("x", "y", "z"))
	})
	require.NoError(t, err)

	// deleting and re-inserting within one context cancels out
	id, err := e.WithTransaction(ctx, d, testInfo(), func(tc *Context) error {
		if err := tc.Delete(model.T("a", "b", "c")); err != nil {
			return err
		}
		if err := tc.Insert(model.T("a", "b", "c")); err != nil {
			return err
		}
		return tc.Delete(model.T("x", "y", "z"))
	})
	require.NoError(t, err)

	view := NewView(e.Store(), id)
	found, err := ask.Exists(ctx, view, ask.P("a", "b", "c"))
	require.NoError(t, err)
	assert.True(t, found)
	found, err = ask.Exists(ctx, view, ask.P("x", "y", "z"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLog(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	d := mustCreateDB(t, e, "acme", "crm")

	first, err := e.WithTransaction(ctx, d, model.CommitInfo{Author: "t", Message: "first"}, func(tc *Context) error {
		return tc.Insert(model.T("a", "b", "c"))
	})
	require.NoError(t, err)
	second, err := e.WithTransaction(ctx, d, model.CommitInfo{Author: "t", Message: "second"}, func(tc *Context) error {
		return tc.Insert(model.T("x", "y", "z"))
	})
	require.NoError(t, err)

	commits, err := e.Log(ctx, d)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, second, commits[0].ID)
	assert.Equal(t, "second", commits[0].Message)
	assert.Equal(t, first, commits[1].ID)
}
