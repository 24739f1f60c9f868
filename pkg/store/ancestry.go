package store

import (
	"context"

	"github.com/trigitdb/trigit/pkg/errors"
	"github.com/trigitdb/trigit/pkg/model"
	"github.com/trigitdb/trigit/pkg/store/status"
)

// Ancestry walks the parent chain from head down to the root layer and
// returns the layer ids oldest first, the order in which replication
// transfers them.
func Ancestry(ctx context.Context, s Store, head string) ([]string, error) {
	var reversed []string
	for id := head; id != ""; {
		layer, err := s.OpenLayer(ctx, id)
		if err != nil {
			if errors.Is(err, status.ErrLayerNotFound) {
				return nil, status.ErrBrokenAncestry.Wrap(err)
			}
			return nil, err
		}
		reversed = append(reversed, id)
		id = layer.Parent
	}
	out := make([]string, len(reversed))
	for i, id := range reversed {
		out[len(reversed)-1-i] = id
	}
	return out, nil
}

// TriplesAt materializes the full graph at a layer by applying the ancestry
// deltas root-first. An empty head yields the empty graph.
func TriplesAt(ctx context.Context, s Store, head string) (model.TripleSet, error) {
	chain, err := Ancestry(ctx, s, head)
	if err != nil {
		return nil, err
	}
	graph := make(model.TripleSet)
	for _, id := range chain {
		layer, err := s.OpenLayer(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, t := range layer.Removed {
			graph.Remove(t)
		}
		for _, t := range layer.Added {
			graph.Add(t)
		}
	}
	return graph, nil
}

// MissingLayers filters an ancestry (oldest first) down to the layers absent
// from the store, preserving order.
func MissingLayers(ctx context.Context, s Store, ancestry []string) ([]string, error) {
	var missing []string
	for _, id := range ancestry {
		has, err := s.HasLayer(ctx, id)
		if err != nil {
			return nil, err
		}
		if !has {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
