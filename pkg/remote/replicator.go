package remote

import (
	"context"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/trigitdb/trigit/pkg/errors"
	"github.com/trigitdb/trigit/pkg/metrics"
	"github.com/trigitdb/trigit/pkg/store"
	"github.com/trigitdb/trigit/pkg/store/status"
)

// Replicator runs clone/pull/push against a remote on behalf of a local store.
type Replicator struct {
	store         store.Store
	l             *zap.Logger
	enableMetrics bool
}

// ReplicatorOption is a functor to build a replicator with some options
type ReplicatorOption func(*Replicator)

// ReplicatorWithLogger sets a logger for the replicator
func ReplicatorWithLogger(l *zap.Logger) ReplicatorOption {
	return func(r *Replicator) {
		if l != nil {
			r.l = l
		}
	}
}

// ReplicatorWithMetrics toggles transfer metrics
func ReplicatorWithMetrics(enabled bool) ReplicatorOption {
	return func(r *Replicator) {
		r.enableMetrics = enabled
	}
}

// NewReplicator builds a replicator over the local store.
func NewReplicator(s store.Store, opts ...ReplicatorOption) *Replicator {
	r := &Replicator{store: s, l: zap.NewNop()}
	for _, apply := range opts {
		apply(r)
	}
	return r
}

// Clone materializes a remote label under a local label name: the local
// label is created empty if absent, then fast-forwarded to the remote head
// once the full remote ancestry is present. A failed clone leaves no
// partial branch head behind — the label only moves in the final step.
func (r *Replicator) Clone(ctx context.Context, remote *Client, localLabel string) (*SyncResponse, error) {
	err := r.store.CreateLabel(ctx, localLabel, "")
	if err != nil && !errors.Is(err, status.ErrLabelExists) {
		return nil, err
	}
	return r.Pull(ctx, remote, localLabel)
}

// Pull fetches the layers missing locally from the remote ancestry, oldest
// first, and fast-forwards the local label to the remote head. A pull with
// nothing missing transfers zero layers.
func (r *Replicator) Pull(ctx context.Context, remote *Client, localLabel string) (*SyncResponse, error) {
	localHead, err := r.store.LabelHead(ctx, localLabel)
	if err != nil {
		return nil, err
	}
	ancestry, err := remote.FetchAncestry(ctx)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "pull %s from %s", localLabel, remote)
	}
	if ancestry.Head == localHead {
		return &SyncResponse{Label: localLabel, Head: localHead, Transferred: 0}, nil
	}

	missing, err := store.MissingLayers(ctx, r.store, ancestry.Layers)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		layer, err := remote.FetchLayer(ctx, id)
		if err != nil {
			// abort the whole pull: no half-copied history, label untouched
			return nil, pkgerrors.Wrapf(err, "pull %s: fetching layer %s", localLabel, id)
		}
		if err := r.store.PutLayer(ctx, layer); err != nil {
			return nil, pkgerrors.Wrapf(err, "pull %s: importing layer %s", localLabel, id)
		}
		if r.enableMetrics {
			metrics.LayersTransferred.WithLabelValues("pull").Inc()
		}
	}

	swapped, err := r.store.LabelCAS(ctx, localLabel, localHead, ancestry.Head)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, pkgerrors.Errorf("pull %s: local label moved during transfer", localLabel)
	}
	r.l.Info("pulled",
		zap.String("label", localLabel),
		zap.String("remote", remote.String()),
		zap.String("head", ancestry.Head),
		zap.Int("layers", len(missing)),
	)
	return &SyncResponse{Label: localLabel, Head: ancestry.Head, Transferred: len(missing)}, nil
}

// Push sends the layers the remote lacks from the local ancestry, oldest
// first, then asks the remote to fast-forward its label to the local head.
func (r *Replicator) Push(ctx context.Context, remote *Client, localLabel string) (*SyncResponse, error) {
	localHead, err := r.store.LabelHead(ctx, localLabel)
	if err != nil {
		return nil, err
	}
	localAncestry, err := store.Ancestry(ctx, r.store, localHead)
	if err != nil {
		return nil, err
	}
	remoteAncestry, err := remote.FetchAncestry(ctx)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "push %s to %s", localLabel, remote)
	}
	if remoteAncestry.Head == localHead {
		return &SyncResponse{Label: localLabel, Head: localHead, Transferred: 0}, nil
	}

	remoteHas := make(map[string]struct{}, len(remoteAncestry.Layers))
	for _, id := range remoteAncestry.Layers {
		remoteHas[id] = struct{}{}
	}
	transferred := 0
	for _, id := range localAncestry {
		if _, ok := remoteHas[id]; ok {
			continue
		}
		layer, err := r.store.OpenLayer(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := remote.SendLayer(ctx, layer); err != nil {
			return nil, pkgerrors.Wrapf(err, "push %s: sending layer %s", localLabel, id)
		}
		transferred++
		if r.enableMetrics {
			metrics.LayersTransferred.WithLabelValues("push").Inc()
		}
	}

	swapped, err := remote.CASLabel(ctx, remoteAncestry.Head, localHead)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, pkgerrors.Errorf("push %s: remote label moved during transfer", localLabel)
	}
	r.l.Info("pushed",
		zap.String("label", localLabel),
		zap.String("remote", remote.String()),
		zap.String("head", localHead),
		zap.Int("layers", transferred),
	)
	return &SyncResponse{Label: localLabel, Head: localHead, Transferred: transferred}, nil
}
