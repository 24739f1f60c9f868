package model

import (
	"fmt"
)

// SchemaViolation describes one constraint failure found by the validation gate.
type SchemaViolation struct {
	Subject  string `json:"subject" yaml:"subject"`
	Class    string `json:"class" yaml:"class"`
	Property string `json:"property" yaml:"property"`
	Message  string `json:"message" yaml:"message"`
	_        struct{}
}

func (v SchemaViolation) String() string {
	return fmt.Sprintf("subject %s of class %s: %s (property %s)", v.Subject, v.Class, v.Message, v.Property)
}
