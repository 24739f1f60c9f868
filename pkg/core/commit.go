package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/trigitdb/trigit/pkg/core/status"
	"github.com/trigitdb/trigit/pkg/metrics"
	"github.com/trigitdb/trigit/pkg/model"
)

// Commit runs the commit pipeline:
//
//  1. build a candidate layer from the observed head and the staging buffer
//  2. validate the candidate against every attached schema graph
//  3. compare-and-swap the branch label from the observed head to the
//     candidate
//  4. record commit metadata and return the new commit id
//
// A CAS failure means a concurrent commit landed first: the context dies
// with ErrLabelConflict and the caller re-opens and retries. The candidate
// layer stays behind unreferenced; being content-addressed it is harmless
// and reused verbatim if the retry stages the same delta.
//
// An empty staging buffer commits nothing and returns the observed head.
func (c *Context) Commit(ctx context.Context) (string, error) {
	if !c.Active() {
		return "", status.ErrContextDone
	}
	if c.readOnly {
		return "", status.ErrReadOnly
	}

	added, removed := c.Staged()
	if len(added) == 0 && len(removed) == 0 {
		c.finish(stateCommitted)
		c.l.Debug("empty commit, head unchanged")
		return c.observedHead, nil
	}

	e := c.engine
	candidate, err := e.store.CreateLayer(ctx, c.observedHead, added, removed)
	if err != nil {
		c.finish(stateAborted)
		return "", err
	}

	if err := e.validate(ctx, c); err != nil {
		c.finish(stateAborted)
		if _, isSchema := err.(*SchemaError); isSchema && e.enableMetrics {
			metrics.SchemaFailures.Inc()
		}
		return "", err
	}

	swapped, err := e.store.LabelCAS(ctx, c.labelKey, c.observedHead, candidate.ID)
	if err != nil {
		c.finish(stateAborted)
		return "", err
	}
	if !swapped {
		c.finish(stateAborted)
		if e.enableMetrics {
			metrics.CommitConflicts.Inc()
		}
		c.l.Debug("commit conflict", zap.String("expected_head", c.observedHead))
		return "", status.ErrLabelConflict
	}

	commit := model.NewCommitDescriptor(candidate, c.info, time.Now())
	if err := e.store.PutCommit(ctx, commit); err != nil {
		// the head already moved; metadata is best-effort after the CAS
		c.l.Warn("commit metadata write failed", zap.String("commit", commit.ID), zap.Error(err))
	}

	c.finish(stateCommitted)
	if e.enableMetrics {
		metrics.Commits.Inc()
	}
	c.l.Info("committed",
		zap.String("commit", candidate.ID),
		zap.String("author", c.info.Author),
		zap.Int("added", len(added)),
		zap.Int("removed", len(removed)),
	)
	return candidate.ID, nil
}

// finish moves the context out of the active state and releases its write
// intent. No-op if the context is already inert.
func (c *Context) finish(state int32) {
	if c.state.CompareAndSwap(stateActive, state) {
		c.releaseIntent()
	}
}
