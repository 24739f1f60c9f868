package schema

import (
	"context"

	"github.com/trigitdb/trigit/pkg/errors"
	"github.com/trigitdb/trigit/pkg/model"
	"github.com/trigitdb/trigit/pkg/store"
	"github.com/trigitdb/trigit/pkg/store/status"
)

// ontologyTriples returns the seed triples of one built-in ontology.
// The ontologies are themselves versioned graphs: bootstrap commits them as
// root layers under the system schema labels, after which they evolve through
// ordinary transactions like any other graph.
func ontologyTriples(name string) []model.Triple {
	switch name {
	case OntologyLayer:
		return []model.Triple{
			model.T(LayerClass, RDFType, Class),
			model.T(CommitClass, RDFType, Class),
			model.T(CommitClass, Required, PropAuthor),
			model.T(CommitClass, Required, PropMessage),
		}
	case OntologyRef:
		return []model.Triple{
			model.T(RefClass, RDFType, Class),
			model.T(RefClass, Required, PropName),
			model.T(RefClass, Required, PropHead),
		}
	case OntologyRepo:
		return []model.Triple{
			model.T(RepoClass, RDFType, Class),
			model.T(RepoClass, Required, PropName),
			model.T(RemoteClass, RDFType, Class),
			model.T(RemoteClass, Required, PropName),
			model.T(RemoteClass, Required, PropOrigin),
		}
	}
	return nil
}

// Bootstrap seeds the system graph and the three built-in ontologies in a
// fresh store. Idempotent: existing labels are left untouched.
func Bootstrap(ctx context.Context, s store.Store) error {
	system := model.SystemDescriptor()
	if key, ok := system.LabelKey(); ok {
		if err := ensureLabel(ctx, s, key, nil); err != nil {
			return err
		}
	}
	for _, name := range []string{OntologyLayer, OntologyRef, OntologyRepo} {
		d := model.SystemSchemaDescriptor(name)
		key, _ := d.LabelKey()
		if err := ensureLabel(ctx, s, key, ontologyTriples(name)); err != nil {
			return err
		}
	}
	return nil
}

func ensureLabel(ctx context.Context, s store.Store, key string, seed []model.Triple) error {
	_, err := s.GetLabel(ctx, key)
	if err == nil {
		return nil
	}
	if !errors.Is(err, status.ErrLabelNotFound) {
		return err
	}
	head := ""
	if len(seed) > 0 {
		layer, lerr := s.CreateLayer(ctx, "", seed, nil)
		if lerr != nil {
			return lerr
		}
		head = layer.ID
	}
	if cerr := s.CreateLabel(ctx, key, head); cerr != nil && !errors.Is(cerr, status.ErrLabelExists) {
		return cerr
	}
	return nil
}
