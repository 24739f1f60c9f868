// Package metrics exposes prometheus counters for the engine and the
// replication server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Commits counts successful commits
	Commits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trigit",
		Name:      "commits_total",
		Help:      "Number of successfully committed transactions",
	})

	// CommitConflicts counts commits rejected by a concurrent head movement
	CommitConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trigit",
		Name:      "commit_conflicts_total",
		Help:      "Number of commits rejected because the label head moved",
	})

	// SchemaFailures counts commits rejected by the validation gate
	SchemaFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trigit",
		Name:      "schema_failures_total",
		Help:      "Number of commits rejected by schema validation",
	})

	// LayersTransferred counts layers moved by replication, by direction
	LayersTransferred = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trigit",
		Name:      "replication_layers_total",
		Help:      "Number of layers transferred by replication operations",
	}, []string{"direction"})
)

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
