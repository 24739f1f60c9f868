package schema

// Constraint vocabulary understood by the validation gate.
const (
	// RDFType is the instance-of predicate
	RDFType = "rdf:type"

	// Class marks a subject of a schema graph as a class
	Class = "sys:Class"

	// Required links a class to a property every instance must carry
	Required = "sys:required"
)

// IRIs of the system metadata vocabulary described by the built-in ontologies.
const (
	LayerClass  = "sys:Layer"
	CommitClass = "sys:Commit"
	RefClass    = "sys:Ref"
	RepoClass   = "sys:Repository"
	RemoteClass = "sys:Remote"

	PropParent  = "sys:parent"
	PropAuthor  = "sys:author"
	PropMessage = "sys:message"
	PropHead    = "sys:head"
	PropName    = "sys:name"
	PropOrigin  = "sys:origin"
)
