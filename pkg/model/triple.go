package model

import (
	"sort"
	"strings"
)

// Triple is a single RDF-style statement.
type Triple struct {
	Subject   string `json:"s" yaml:"s"`
	Predicate string `json:"p" yaml:"p"`
	Object    string `json:"o" yaml:"o"`
	_         struct{}
}

// T is a shorthand constructor for a triple.
func T(s, p, o string) Triple {
	return Triple{Subject: s, Predicate: p, Object: o}
}

// Key yields the canonical form of a triple, used for ordering,
// deduplication and content addressing. The unit separator keeps
// components unambiguous whatever characters IRIs contain.
func (t Triple) Key() string {
	return t.Subject + "\x1f" + t.Predicate + "\x1f" + t.Object
}

func (t Triple) String() string {
	return "(" + t.Subject + ", " + t.Predicate + ", " + t.Object + ")"
}

// Less orders triples by subject, then predicate, then object.
func (t Triple) Less(other Triple) bool {
	return t.Key() < other.Key()
}

// SortTriples sorts a slice of triples in canonical order and drops duplicates.
// The input slice is not modified.
func SortTriples(triples []Triple) []Triple {
	sorted := make([]Triple, len(triples))
	copy(sorted, triples)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Less(sorted[j])
	})
	out := sorted[:0]
	var last string
	for i, t := range sorted {
		if k := t.Key(); i == 0 || k != last {
			out = append(out, t)
			last = k
		}
	}
	return out
}

// TripleSet is a set of triples keyed by canonical form.
type TripleSet map[string]Triple

// NewTripleSet builds a set from a slice.
func NewTripleSet(triples ...Triple) TripleSet {
	s := make(TripleSet, len(triples))
	for _, t := range triples {
		s.Add(t)
	}
	return s
}

// Add inserts a triple into the set.
func (s TripleSet) Add(t Triple) {
	s[t.Key()] = t
}

// Remove deletes a triple from the set.
func (s TripleSet) Remove(t Triple) {
	delete(s, t.Key())
}

// Has tells whether a triple belongs to the set.
func (s TripleSet) Has(t Triple) bool {
	_, ok := s[t.Key()]
	return ok
}

// Slice returns the members in canonical order.
func (s TripleSet) Slice() []Triple {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Triple, 0, len(keys))
	for _, k := range keys {
		out = append(out, s[k])
	}
	return out
}

// ParseTriple parses the "s p o" form used by the CLI, with the object
// allowed to contain spaces.
func ParseTriple(in string) (Triple, bool) {
	parts := strings.SplitN(strings.TrimSpace(in), " ", 3)
	if len(parts) != 3 {
		return Triple{}, false
	}
	return T(parts[0], parts[1], parts[2]), true
}
