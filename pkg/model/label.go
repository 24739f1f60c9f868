package model

import (
	"time"
)

// LabelDescriptor is a named mutable pointer to the head layer of a graph.
//
// A label is the only mutable object in the store, analogous to a branch ref
// in git. Head updates go through compare-and-swap exclusively.
type LabelDescriptor struct {
	Name      string    `json:"name" yaml:"name"`
	Head      string    `json:"head,omitempty" yaml:"head,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	_         struct{}
}

// NewLabelDescriptor builds a label pointing at a head layer (empty for a
// label over the empty graph).
func NewLabelDescriptor(name, head string) *LabelDescriptor {
	return &LabelDescriptor{Name: name, Head: head, Timestamp: time.Now().UTC()}
}
