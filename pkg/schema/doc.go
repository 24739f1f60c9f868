// Package schema holds the constraint vocabulary, the built-in layer/ref/repo
// ontologies describing the system's own versioning metadata, and the mapping
// from a repository role to the schema graphs a transaction context attaches.
package schema
