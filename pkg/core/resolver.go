package core

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trigitdb/trigit/pkg/core/status"
	"github.com/trigitdb/trigit/pkg/errors"
	"github.com/trigitdb/trigit/pkg/model"
	"github.com/trigitdb/trigit/pkg/schema"
	storestatus "github.com/trigitdb/trigit/pkg/store/status"
)

// Resolve parses a descriptor string. Pure: no store lookup happens here.
func Resolve(in string) (model.Descriptor, error) {
	return model.ParseDescriptor(in)
}

// OpenOption customizes how a context is opened.
type OpenOption func(*openSettings)

type openSettings struct {
	role schema.Role
}

// WithRole selects the repository role being edited, which decides the
// schema graphs attached to the context. Defaults to RoleData.
func WithRole(role schema.Role) OpenOption {
	return func(o *openSettings) {
		o.role = role
	}
}

// Open resolves a descriptor against the store and builds a transaction
// context over it. Branch heads open read-write; commit descriptors open
// read-only snapshots. ErrDescriptorNotFound is returned when the target
// does not exist — never a silently created default.
func (e *Engine) Open(ctx context.Context, d model.Descriptor, info model.CommitInfo, opts ...OpenOption) (*Context, error) {
	settings := openSettings{role: schema.RoleData}
	for _, apply := range opts {
		apply(&settings)
	}

	head, labelKey, err := e.resolveHead(ctx, d)
	if err != nil {
		return nil, err
	}

	tc := &Context{
		id:           uuid.NewString(),
		engine:       e,
		descriptor:   d,
		labelKey:     labelKey,
		readOnly:     d.ReadOnly(),
		observedHead: head,
		info:         info,
		inserts:      make(model.TripleSet),
		deletes:      make(model.TripleSet),
	}
	tc.l = e.l.With(zap.String("context", tc.id), zap.String("descriptor", d.String()))

	if err := e.attachSchemas(ctx, tc, settings.role); err != nil {
		return nil, err
	}

	if !tc.readOnly {
		if !e.intents.acquire(labelKey, tc.id) {
			return nil, status.ErrWriteConflict
		}
	}
	tc.l.Debug("opened context",
		zap.String("role", settings.role.String()),
		zap.String("head", head),
		zap.Bool("read_only", tc.readOnly),
		zap.Int("schema_graphs", len(tc.schemas)),
	)
	return tc, nil
}

// resolveHead maps a descriptor to the layer it currently addresses and, for
// mutable targets, the label naming it.
func (e *Engine) resolveHead(ctx context.Context, d model.Descriptor) (head, labelKey string, err error) {
	if d.Kind == model.KindCommit {
		has, herr := e.store.HasLayer(ctx, d.CommitID)
		if herr != nil {
			return "", "", herr
		}
		if !has {
			return "", "", status.ErrDescriptorNotFound
		}
		return d.CommitID, "", nil
	}
	key, _ := d.LabelKey()
	head, err = e.store.LabelHead(ctx, key)
	if err != nil {
		if errors.Is(err, storestatus.ErrLabelNotFound) {
			return "", "", status.ErrDescriptorNotFound
		}
		return "", "", err
	}
	return head, key, nil
}

// attachSchemas resolves and attaches the schema graphs the role requires.
// Schema graphs are held for the duration of the context so validation reads
// a consistent snapshot even if the schema branch advances meanwhile.
func (e *Engine) attachSchemas(ctx context.Context, tc *Context, role schema.Role) error {
	for _, sd := range role.SchemaDescriptors(tc.descriptor) {
		head, _, err := e.resolveHead(ctx, sd)
		if err != nil {
			if role == schema.RoleData && errors.Is(err, status.ErrDescriptorNotFound) {
				// schema-less database: no gate to apply
				continue
			}
			return err
		}
		tc.schemas = append(tc.schemas, SchemaGraph{Descriptor: sd, Head: head})
	}
	return nil
}

// CreateDatabase creates the main branch label of a new database and, when a
// schema seed is given, its schema graph. The database is registered in the
// system graph under the repo ontology.
func (e *Engine) CreateDatabase(ctx context.Context, org, db string, schemaSeed []model.Triple) error {
	main := model.BranchDescriptor(org, db, model.SourceLocal, "main")
	if err := e.CreateBranch(ctx, main, ""); err != nil {
		if errors.Is(err, status.ErrDatabaseExists) {
			return status.ErrDatabaseExists
		}
		return err
	}

	if schemaSeed != nil {
		sd := main.WithSchema("main")
		key, _ := sd.LabelKey()
		head := ""
		if len(schemaSeed) > 0 {
			layer, err := e.store.CreateLayer(ctx, "", schemaSeed, nil)
			if err != nil {
				return err
			}
			head = layer.ID
		}
		if err := e.store.CreateLabel(ctx, key, head); err != nil {
			return err
		}
	}

	repoIRI := "repo:" + org + "/" + db
	_, err := e.WithTransaction(ctx, model.SystemDescriptor(),
		model.CommitInfo{Author: "system", Message: "create database " + org + "/" + db},
		func(tc *Context) error {
			return tc.Insert(
				model.T(repoIRI, schema.RDFType, schema.RepoClass),
				model.T(repoIRI, schema.PropName, db),
			)
		},
		WithRole(schema.RoleRepo),
	)
	return err
}

// CreateBranch registers a new branch label pointing at a starting layer
// (empty for a branch over the empty graph).
func (e *Engine) CreateBranch(ctx context.Context, d model.Descriptor, head string) error {
	key, ok := d.LabelKey()
	if !ok {
		return model.ErrInvalidDescriptor
	}
	err := e.store.CreateLabel(ctx, key, head)
	if errors.Is(err, storestatus.ErrLabelExists) {
		return status.ErrDatabaseExists.Wrap(err)
	}
	return err
}
