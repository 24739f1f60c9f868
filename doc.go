/*
Package trigit is a versioned triple-graph database.

A trigit graph is a chain of immutable, content-addressed layers behind a
mutable label, much like a git branch. All mutation funnels through
schema-checked transactions that move a label with a single compare-and-swap,
so readers always see a consistent graph and concurrent writers fail fast
instead of corrupting history.

The pieces:

  - pkg/model: triples, layers, commits, labels and the descriptor grammar
    naming them ("acme/crm/local/branch/main", "system/schema/layer", ...)
  - pkg/store: the storage contract with in-memory and badger backends
  - pkg/ask: pattern matching over a graph, used by queries and validation
  - pkg/schema: the built-in ontologies and system graph bootstrap
  - pkg/core: transactions, descriptor resolution and schema gating
  - pkg/remote: the HTTP replication protocol (clone, push, pull)

The trigitd daemon serves the replication protocol; the trigit CLI drives a
local store and a daemon.
*/
package trigit
