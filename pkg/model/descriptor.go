package model

import (
	"strings"

	"github.com/trigitdb/trigit/pkg/errors"
)

// ErrInvalidDescriptor is returned when a descriptor string does not match the grammar.
var ErrInvalidDescriptor = errors.New("invalid descriptor")

// DescriptorKind enumerates the closed set of addressable targets.
type DescriptorKind int

const (
	// KindSystemGraph addresses the administrative graph (users, organizations, databases)
	KindSystemGraph DescriptorKind = iota

	// KindBranchHead addresses the mutable head of a branch
	KindBranchHead

	// KindCommit addresses one immutable historical commit
	KindCommit

	// KindSchemaGraph addresses the schema graph attached to a branch,
	// or one of the built-in system ontologies
	KindSchemaGraph
)

func (k DescriptorKind) String() string {
	switch k {
	case KindSystemGraph:
		return "system-graph"
	case KindBranchHead:
		return "branch-head"
	case KindCommit:
		return "commit"
	case KindSchemaGraph:
		return "schema-graph"
	}
	return "unknown"
}

// GraphSource distinguishes locally owned branches from tracking branches of a remote.
type GraphSource string

const (
	// SourceLocal is a branch owned by this server
	SourceLocal GraphSource = "local"

	// SourceRemote is a tracking branch mirroring a remote server
	SourceRemote GraphSource = "remote"
)

// Descriptor is the parsed form of a descriptor string.
//
// The grammar is:
//
//	<org>/<db>/{local|remote}/branch/<name>[/schema/<name>]
//	<org>/<db>/commit/<id>
//	system
//	system/schema/{layer|ref|repo}
type Descriptor struct {
	Kind     DescriptorKind `json:"kind" yaml:"kind"`
	System   bool           `json:"system,omitempty" yaml:"system,omitempty"`
	Org      string         `json:"org,omitempty" yaml:"org,omitempty"`
	DB       string         `json:"db,omitempty" yaml:"db,omitempty"`
	Source   GraphSource    `json:"source,omitempty" yaml:"source,omitempty"`
	Branch   string         `json:"branch,omitempty" yaml:"branch,omitempty"`
	CommitID string         `json:"commit,omitempty" yaml:"commit,omitempty"`
	Schema   string         `json:"schema,omitempty" yaml:"schema,omitempty"`
	_        struct{}
}

// SystemDescriptor addresses the administrative graph.
func SystemDescriptor() Descriptor {
	return Descriptor{Kind: KindSystemGraph, System: true}
}

// SystemSchemaDescriptor addresses one of the built-in ontologies (layer, ref, repo).
func SystemSchemaDescriptor(name string) Descriptor {
	return Descriptor{Kind: KindSchemaGraph, System: true, Schema: name}
}

// BranchDescriptor addresses the mutable head of a branch.
func BranchDescriptor(org, db string, source GraphSource, branch string) Descriptor {
	return Descriptor{Kind: KindBranchHead, Org: org, DB: db, Source: source, Branch: branch}
}

// CommitDescriptorRef addresses one immutable commit.
func CommitDescriptorRef(org, db, id string) Descriptor {
	return Descriptor{Kind: KindCommit, Org: org, DB: db, CommitID: id}
}

// SchemaDescriptor addresses the named schema graph of a branch.
func SchemaDescriptor(org, db string, source GraphSource, branch, schema string) Descriptor {
	return Descriptor{Kind: KindSchemaGraph, Org: org, DB: db, Source: source, Branch: branch, Schema: schema}
}

// ParseDescriptor parses a descriptor string. Resolution against the store
// is a separate step: a parse success does not imply the target exists.
func ParseDescriptor(in string) (Descriptor, error) {
	parts := strings.Split(strings.Trim(in, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return Descriptor{}, ErrInvalidDescriptor
	}

	if parts[0] == "system" {
		switch {
		case len(parts) == 1:
			return SystemDescriptor(), nil
		case len(parts) == 3 && parts[1] == "schema" && parts[2] != "":
			return SystemSchemaDescriptor(parts[2]), nil
		}
		return Descriptor{}, ErrInvalidDescriptor
	}

	if len(parts) < 4 {
		return Descriptor{}, ErrInvalidDescriptor
	}
	org, db := parts[0], parts[1]
	if org == "" || db == "" {
		return Descriptor{}, ErrInvalidDescriptor
	}

	if parts[2] == "commit" {
		if len(parts) != 4 || parts[3] == "" {
			return Descriptor{}, ErrInvalidDescriptor
		}
		return CommitDescriptorRef(org, db, parts[3]), nil
	}

	source := GraphSource(parts[2])
	if source != SourceLocal && source != SourceRemote {
		return Descriptor{}, ErrInvalidDescriptor
	}
	if parts[3] != "branch" || len(parts) < 5 || parts[4] == "" {
		return Descriptor{}, ErrInvalidDescriptor
	}
	branch := parts[4]

	switch {
	case len(parts) == 5:
		return BranchDescriptor(org, db, source, branch), nil
	case len(parts) == 7 && parts[5] == "schema" && parts[6] != "":
		return SchemaDescriptor(org, db, source, branch, parts[6]), nil
	}
	return Descriptor{}, ErrInvalidDescriptor
}

// String yields the descriptor string form, the inverse of ParseDescriptor.
func (d Descriptor) String() string {
	switch d.Kind {
	case KindSystemGraph:
		return "system"
	case KindCommit:
		return d.Org + "/" + d.DB + "/commit/" + d.CommitID
	case KindSchemaGraph:
		if d.System {
			return "system/schema/" + d.Schema
		}
		return d.Org + "/" + d.DB + "/" + string(d.Source) + "/branch/" + d.Branch + "/schema/" + d.Schema
	default:
		return d.Org + "/" + d.DB + "/" + string(d.Source) + "/branch/" + d.Branch
	}
}

// LabelKey yields the label naming this graph in the store.
// Commit descriptors have no label: they address an immutable layer directly.
func (d Descriptor) LabelKey() (string, bool) {
	switch d.Kind {
	case KindCommit:
		return "", false
	default:
		return d.String(), true
	}
}

// ReadOnly tells whether the target is immutable.
func (d Descriptor) ReadOnly() bool {
	return d.Kind == KindCommit
}

// IsSystem tells whether this addresses an administrative or built-in graph.
func (d Descriptor) IsSystem() bool {
	return d.System
}

// WithSchema derives the descriptor of the named schema graph for a branch head.
func (d Descriptor) WithSchema(schema string) Descriptor {
	if d.System || d.Kind == KindSystemGraph {
		return SystemSchemaDescriptor(schema)
	}
	return SchemaDescriptor(d.Org, d.DB, d.Source, d.Branch, schema)
}
