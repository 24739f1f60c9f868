package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/trigitdb/trigit/pkg/model"
	"github.com/trigitdb/trigit/pkg/schema"
	"github.com/trigitdb/trigit/pkg/store"
	"github.com/trigitdb/trigit/pkg/store/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testInfo() model.CommitInfo {
	return model.CommitInfo{Author: "t", Message: "m"}
}

// newTestEngine yields an engine over a bootstrapped in-memory store.
func newTestEngine(t *testing.T) (*Engine, store.Store) {
	t.Helper()
	s := memory.New()
	require.NoError(t, schema.Bootstrap(context.Background(), s))
	return New(s), s
}

// mustCreateDB creates a schema-less database with a main branch.
func mustCreateDB(t *testing.T, e *Engine, org, db string) model.Descriptor {
	t.Helper()
	require.NoError(t, e.CreateDatabase(context.Background(), org, db, nil))
	return model.BranchDescriptor(org, db, model.SourceLocal, "main")
}

// personSchema requires every ex:Person to carry an ex:name.
func personSchema() []model.Triple {
	return []model.Triple{
		model.T("ex:Person", schema.RDFType, schema.Class),
		model.T("ex:Person", schema.Required, "ex:name"),
	}
}
