package model

import (
	"time"
)

// CommitInfo is the caller-supplied part of commit metadata, provided when
// a transaction context is created. The timestamp is assigned by the
// committer, never by the caller.
type CommitInfo struct {
	Author  string `json:"author" yaml:"author"`
	Message string `json:"message" yaml:"message"`
	_       struct{}
}

// CommitDescriptor is the metadata attached to a layer by a successful commit.
// Immutable once written.
type CommitDescriptor struct {
	ID        string    `json:"id" yaml:"id"`
	Parent    string    `json:"parent,omitempty" yaml:"parent,omitempty"`
	Author    string    `json:"author" yaml:"author"`
	Message   string    `json:"message" yaml:"message"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	_         struct{}
}

// NewCommitDescriptor stamps commit info onto a layer.
func NewCommitDescriptor(layer *LayerDescriptor, info CommitInfo, at time.Time) *CommitDescriptor {
	return &CommitDescriptor{
		ID:        layer.ID,
		Parent:    layer.Parent,
		Author:    info.Author,
		Message:   info.Message,
		Timestamp: at.UTC(),
	}
}
