package remote

import (
	"github.com/trigitdb/trigit/pkg/model"
)

// CloneRequest asks a server to materialize a remote label locally.
type CloneRequest struct {
	Comment   string `json:"comment"`
	Label     string `json:"label"`
	RemoteURL string `json:"remote_url"`
	_         struct{}
}

// SyncRequest asks a server to pull from or push to a remote it already mirrors.
type SyncRequest struct {
	Label     string `json:"label"`
	RemoteURL string `json:"remote_url"`
	_         struct{}
}

// SyncResponse reports the outcome of a clone/pull/push.
type SyncResponse struct {
	Label       string `json:"label"`
	Head        string `json:"head"`
	Transferred int    `json:"transferred"`
	_           struct{}
}

// AncestryResponse lists a label's layer ancestry, oldest first.
type AncestryResponse struct {
	Label  string   `json:"label"`
	Head   string   `json:"head"`
	Layers []string `json:"layers"`
	_      struct{}
}

// LayerRecord carries one layer verbatim.
type LayerRecord struct {
	Layer *model.LayerDescriptor `json:"layer"`
	_     struct{}
}

// CASRequest asks for an atomic label head move.
type CASRequest struct {
	Expected string `json:"expected"`
	Next     string `json:"next"`
	_        struct{}
}

// CASResponse reports whether the head moved.
type CASResponse struct {
	Swapped bool   `json:"swapped"`
	Head    string `json:"head"`
	_       struct{}
}

// ErrorResponse carries a failure to the caller.
type ErrorResponse struct {
	Error string `json:"error"`
	_     struct{}
}
