package ask

import (
	"context"
	"strings"

	"github.com/trigitdb/trigit/pkg/model"
)

// Source is anything a pattern can be evaluated against: a transaction
// context, a committed layer view, a schema graph.
type Source interface {
	// Triples yields the full triple set visible to this source
	Triples(ctx context.Context) (model.TripleSet, error)
}

// Pattern is a triple pattern. Terms starting with '?' are variables.
type Pattern struct {
	Subject   string
	Predicate string
	Object    string
}

// P is a shorthand constructor for a pattern.
func P(s, p, o string) Pattern {
	return Pattern{Subject: s, Predicate: p, Object: o}
}

// IsVar tells whether a pattern term is a variable.
func IsVar(term string) bool {
	return strings.HasPrefix(term, "?")
}

// Binding maps variable names (without the '?' prefix) to matched terms.
type Binding map[string]string

func (b Binding) clone() Binding {
	out := make(Binding, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Seq is a lazy sequence of bindings. It is finite, and restartable via
// Reset. A Seq is not safe for concurrent use.
type Seq struct {
	src     Source
	pattern Pattern
	ctx     context.Context

	triples []model.Triple
	loaded  bool
	pos     int
	current Binding
	err     error
}

// Ask starts evaluating a pattern against a source. Evaluation is lazy:
// the source is read on the first call to Next.
func Ask(ctx context.Context, src Source, pattern Pattern) *Seq {
	return &Seq{src: src, pattern: pattern, ctx: ctx}
}

// Next advances to the next binding, reporting false when the sequence is
// exhausted or evaluation failed (check Err).
func (s *Seq) Next() bool {
	if s.err != nil {
		return false
	}
	if !s.loaded {
		set, err := s.src.Triples(s.ctx)
		if err != nil {
			s.err = err
			return false
		}
		s.triples = set.Slice()
		s.loaded = true
		s.pos = 0
	}
	for s.pos < len(s.triples) {
		t := s.triples[s.pos]
		s.pos++
		if b, ok := match(s.pattern, t); ok {
			s.current = b
			return true
		}
	}
	s.current = nil
	return false
}

// Binding yields the binding produced by the last successful Next.
func (s *Seq) Binding() Binding {
	return s.current
}

// Err reports an evaluation failure, if any.
func (s *Seq) Err() error {
	return s.err
}

// Reset restarts the sequence. The source is re-read on the next call to
// Next, so a Seq observes writes staged after the previous pass.
func (s *Seq) Reset() {
	s.loaded = false
	s.triples = nil
	s.pos = 0
	s.current = nil
	s.err = nil
}

func match(p Pattern, t model.Triple) (Binding, bool) {
	b := Binding{}
	for _, pair := range [3]struct{ term, value string }{
		{p.Subject, t.Subject},
		{p.Predicate, t.Predicate},
		{p.Object, t.Object},
	} {
		if IsVar(pair.term) {
			name := strings.TrimPrefix(pair.term, "?")
			if bound, ok := b[name]; ok {
				if bound != pair.value {
					return nil, false
				}
				continue
			}
			b[name] = pair.value
			continue
		}
		if pair.term != pair.value {
			return nil, false
		}
	}
	return b, true
}

// All drains a pattern evaluation into a slice of bindings.
func All(ctx context.Context, src Source, pattern Pattern) ([]Binding, error) {
	seq := Ask(ctx, src, pattern)
	var out []Binding
	for seq.Next() {
		out = append(out, seq.Binding().clone())
	}
	if err := seq.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Exists tells whether a pattern has at least one match.
func Exists(ctx context.Context, src Source, pattern Pattern) (bool, error) {
	seq := Ask(ctx, src, pattern)
	found := seq.Next()
	if err := seq.Err(); err != nil {
		return false, err
	}
	return found, nil
}
