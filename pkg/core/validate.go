package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/trigitdb/trigit/pkg/ask"
	"github.com/trigitdb/trigit/pkg/model"
	"github.com/trigitdb/trigit/pkg/schema"
)

// SchemaError reports the full set of constraint violations found by the
// validation gate. The commit that produced it was not applied, in whole.
type SchemaError struct {
	Violations []model.SchemaViolation
}

func (e *SchemaError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.String())
	}
	return fmt.Sprintf("schema check failure (%d violations): %s", len(e.Violations), strings.Join(msgs, "; "))
}

// validate checks the candidate graph (instance data with staged writes
// applied) against every schema graph attached to the context. All
// violations are collected before reporting, so the caller sees the full
// set, not the first failure.
//
// A context with no attached schema graphs passes trivially: the escape
// hatch for schema-less databases.
func (e *Engine) validate(ctx context.Context, c *Context) error {
	if len(c.schemas) == 0 {
		c.l.Debug("no schema graphs attached, validation skipped")
		return nil
	}

	var violations []model.SchemaViolation
	for _, sg := range c.schemas {
		schemaView := NewView(e.store, sg.Head)
		found, err := checkRequired(ctx, schemaView, c)
		if err != nil {
			return err
		}
		violations = append(violations, found...)
	}
	if len(violations) > 0 {
		c.l.Debug("schema validation failed", zap.Int("violations", len(violations)))
		return &SchemaError{Violations: violations}
	}
	return nil
}

// checkRequired enforces the sys:required constraints of one schema graph:
// every subject typed as a class must carry each property the class requires.
func checkRequired(ctx context.Context, schemaGraph, instance ask.Source) ([]model.SchemaViolation, error) {
	constraints, err := ask.All(ctx, schemaGraph, ask.P("?class", schema.Required, "?property"))
	if err != nil {
		return nil, err
	}

	var violations []model.SchemaViolation
	for _, constraint := range constraints {
		class, property := constraint["class"], constraint["property"]
		instances, err := ask.All(ctx, instance, ask.P("?subject", schema.RDFType, class))
		if err != nil {
			return nil, err
		}
		for _, inst := range instances {
			subject := inst["subject"]
			has, err := ask.Exists(ctx, instance, ask.P(subject, property, "?value"))
			if err != nil {
				return nil, err
			}
			if !has {
				violations = append(violations, model.SchemaViolation{
					Subject:  subject,
					Class:    class,
					Property: property,
					Message:  "missing required property",
				})
			}
		}
	}
	return violations, nil
}
