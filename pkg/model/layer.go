package model

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// LayerDescriptor is one immutable node of the commit graph: the triples
// added and removed relative to the parent layer. The full graph at a layer
// is recovered by walking the ancestry root-first and applying each delta.
//
// The ID is the content address: a layer with the same parent and the same
// delta hashes to the same ID on every server, which is what lets replication
// mirror a commit graph instead of re-deriving it.
type LayerDescriptor struct {
	ID      string   `json:"id" yaml:"id"`
	Parent  string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Added   []Triple `json:"added,omitempty" yaml:"added,omitempty"`
	Removed []Triple `json:"removed,omitempty" yaml:"removed,omitempty"`
	_       struct{}
}

// NewLayerDescriptor builds a layer over a parent (empty for a root layer),
// canonicalizes the delta and assigns the content address.
func NewLayerDescriptor(parent string, added, removed []Triple) *LayerDescriptor {
	l := &LayerDescriptor{
		Parent:  parent,
		Added:   SortTriples(added),
		Removed: SortTriples(removed),
	}
	l.ID = l.contentAddress()
	return l
}

func (l *LayerDescriptor) contentAddress() string {
	h := sha256.New()
	writeField(h, "parent", l.Parent)
	for _, t := range l.Added {
		writeField(h, "+", t.Key())
	}
	for _, t := range l.Removed {
		writeField(h, "-", t.Key())
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(w io.Writer, tag, value string) {
	_, _ = io.WriteString(w, tag)
	_, _ = io.WriteString(w, "\x1e")
	_, _ = io.WriteString(w, value)
	_, _ = io.WriteString(w, "\x1e")
}

// Validate recomputes the content address and reports whether the recorded
// ID matches. Used when importing layers received from another server.
func (l *LayerDescriptor) Validate() bool {
	canonical := &LayerDescriptor{
		Parent:  l.Parent,
		Added:   SortTriples(l.Added),
		Removed: SortTriples(l.Removed),
	}
	return l.ID == canonical.contentAddress()
}

// IsRoot tells whether the layer has no parent.
func (l *LayerDescriptor) IsRoot() bool {
	return l.Parent == ""
}
