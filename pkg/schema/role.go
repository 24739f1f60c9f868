package schema

import (
	"github.com/trigitdb/trigit/pkg/model"
)

// Role is the closed set of repository roles a transaction context can edit.
// Each role maps to a fixed set of schema-graph descriptors.
type Role int

const (
	// RoleData edits user instance data; the database's own schema graph
	// applies when one exists
	RoleData Role = iota

	// RoleRef edits branch/ref metadata; the layer and ref ontologies apply
	RoleRef

	// RoleRepo edits repository/remote metadata; the repo ontology applies
	RoleRepo
)

func (r Role) String() string {
	switch r {
	case RoleData:
		return "data"
	case RoleRef:
		return "ref"
	case RoleRepo:
		return "repo"
	}
	return "unknown"
}

// Built-in ontology names.
const (
	OntologyLayer = "layer"
	OntologyRef   = "ref"
	OntologyRepo  = "repo"
)

// SchemaDescriptors yields the descriptors of the schema graphs a context on
// target must attach for this role. For RoleData the branch's own schema
// graph is named, carrying the branch name (main/schema/main, dev/schema/dev);
// whether it exists (schema-less databases) is the resolver's concern, not
// decided here.
func (r Role) SchemaDescriptors(target model.Descriptor) []model.Descriptor {
	switch r {
	case RoleRef:
		return []model.Descriptor{
			model.SystemSchemaDescriptor(OntologyLayer),
			model.SystemSchemaDescriptor(OntologyRef),
		}
	case RoleRepo:
		return []model.Descriptor{
			model.SystemSchemaDescriptor(OntologyRepo),
		}
	default:
		if target.Kind == model.KindBranchHead {
			return []model.Descriptor{target.WithSchema(target.Branch)}
		}
		return nil
	}
}
