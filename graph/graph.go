// Package graph is an in-memory RDF triple set with the codecs used to
// persist it: RDF/XML for the backing ontology file, N-Quads and JSON-LD
// for export.
package graph

import (
	"sort"
	"strings"

	ld "github.com/piprate/json-gold/ld"

	"github.com/underlay/ontoshop/types"
)

// A Triple is a single (subject, predicate, object) statement
type Triple struct {
	Subject   ld.Node
	Predicate ld.Node
	Object    ld.Node
}

type key [3]string

type pattern [2]string

// Graph is a set of triples. The zero value is not usable; call New.
type Graph struct {
	triples  map[key]*Triple
	subjects map[string]map[key]struct{}
	patterns map[pattern]map[string]ld.Node
}

// New returns an empty graph
func New() *Graph {
	return &Graph{
		triples:  map[key]*Triple{},
		subjects: map[string]map[key]struct{}{},
		patterns: map[pattern]map[string]ld.Node{},
	}
}

// Term returns the N-Quads form of a node. Plain and xsd:string literals
// share the same term.
func Term(node ld.Node) string {
	switch node := node.(type) {
	case *ld.IRI:
		return "<" + node.Value + ">"
	case *ld.BlankNode:
		if strings.HasPrefix(node.Attribute, "_:") {
			return node.Attribute
		}
		return "_:" + node.Attribute
	case *ld.Literal:
		s := "\"" + escape(node.Value) + "\""
		if node.Language != "" {
			return s + "@" + node.Language
		} else if node.Datatype != "" && node.Datatype != types.XSDString {
			return s + "^^<" + node.Datatype + ">"
		}
		return s
	}
	return ""
}

func tripleKey(s, p, o ld.Node) key {
	return key{Term(s), Term(p), Term(o)}
}

// Len returns the number of triples in the graph
func (g *Graph) Len() int { return len(g.triples) }

// Has reports whether the triple is in the graph
func (g *Graph) Has(s, p, o ld.Node) bool {
	_, has := g.triples[tripleKey(s, p, o)]
	return has
}

// Add inserts a triple. Adding a triple that is already present is a no-op;
// the result reports whether the graph changed.
func (g *Graph) Add(s, p, o ld.Node) bool {
	if s == nil || p == nil || o == nil {
		return false
	}

	k := tripleKey(s, p, o)
	if _, has := g.triples[k]; has {
		return false
	}

	g.triples[k] = &Triple{Subject: s, Predicate: p, Object: o}

	index, has := g.subjects[k[0]]
	if !has {
		index = map[key]struct{}{}
		g.subjects[k[0]] = index
	}
	index[k] = struct{}{}

	pk := pattern{k[1], k[2]}
	matches, has := g.patterns[pk]
	if !has {
		matches = map[string]ld.Node{}
		g.patterns[pk] = matches
	}
	matches[k[0]] = s
	return true
}

// Remove deletes a triple. Removing an absent triple is a no-op;
// the result reports whether the graph changed.
func (g *Graph) Remove(s, p, o ld.Node) bool {
	if s == nil || p == nil || o == nil {
		return false
	}
	return g.remove(tripleKey(s, p, o))
}

func (g *Graph) remove(k key) bool {
	if _, has := g.triples[k]; !has {
		return false
	}

	delete(g.triples, k)

	if index, has := g.subjects[k[0]]; has {
		delete(index, k)
		if len(index) == 0 {
			delete(g.subjects, k[0])
		}
	}

	pk := pattern{k[1], k[2]}
	if matches, has := g.patterns[pk]; has {
		delete(matches, k[0])
		if len(matches) == 0 {
			delete(g.patterns, pk)
		}
	}
	return true
}

// RemoveSubject deletes every triple with s as its subject and returns
// how many were removed
func (g *Graph) RemoveSubject(s ld.Node) int {
	index := g.subjects[Term(s)]
	keys := make([]key, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	for _, k := range keys {
		g.remove(k)
	}
	return len(keys)
}

// Subjects returns every subject with a triple matching the predicate and
// object, ordered by term
func (g *Graph) Subjects(p, o ld.Node) []ld.Node {
	matches := g.patterns[pattern{Term(p), Term(o)}]
	terms := make([]string, 0, len(matches))
	for term := range matches {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	subjects := make([]ld.Node, len(terms))
	for i, term := range terms {
		subjects[i] = matches[term]
	}
	return subjects
}

// Objects returns every object of the (subject, predicate) pair, ordered by term
func (g *Graph) Objects(s, p ld.Node) []ld.Node {
	pt := Term(p)
	keys := make([]key, 0)
	for k := range g.subjects[Term(s)] {
		if k[1] == pt {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i][2] < keys[j][2] })

	objects := make([]ld.Node, len(keys))
	for i, k := range keys {
		objects[i] = g.triples[k].Object
	}
	return objects
}

// Value returns the object of the (subject, predicate) pair, or def if there
// is none. Predicates are expected to be single-valued; if several objects
// are present the lowest-ordered one is returned.
func (g *Graph) Value(s, p ld.Node, def ld.Node) ld.Node {
	objects := g.Objects(s, p)
	if len(objects) == 0 {
		return def
	}
	return objects[0]
}

// Set replaces the object of a single-valued predicate: the current
// object, if any, is removed before the new one is added.
func (g *Graph) Set(s, p, o ld.Node) {
	for _, old := range g.Objects(s, p) {
		g.Remove(s, p, old)
	}
	g.Add(s, p, o)
}

// About returns every triple anchored at s, ordered by predicate then object
func (g *Graph) About(s ld.Node) []Triple {
	index := g.subjects[Term(s)]
	keys := make([]key, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return g.collect(keys)
}

// Triples returns every triple in the graph, ordered by subject, predicate
// and object
func (g *Graph) Triples() []Triple {
	keys := make([]key, 0, len(g.triples))
	for k := range g.triples {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return g.collect(keys)
}

func (g *Graph) collect(keys []key) []Triple {
	triples := make([]Triple, len(keys))
	for i, k := range keys {
		triples[i] = *g.triples[k]
	}
	return triples
}

// Merge adds every triple of other and returns the number added
func (g *Graph) Merge(other *Graph) (added int) {
	for _, t := range other.triples {
		if g.Add(t.Subject, t.Predicate, t.Object) {
			added++
		}
	}
	return
}

// Clone returns an independent copy of the graph
func (g *Graph) Clone() *Graph {
	c := New()
	c.Merge(g)
	return c
}

// Equal reports whether both graphs hold the same triple set
func (g *Graph) Equal(other *Graph) bool {
	if g.Len() != other.Len() {
		return false
	}
	for k := range g.triples {
		if _, has := other.triples[k]; !has {
			return false
		}
	}
	return true
}

func sortKeys(keys []key) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		} else if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})
}

func escape(str string) string {
	str = strings.Replace(str, "\\", "\\\\", -1)
	str = strings.Replace(str, "\"", "\\\"", -1)
	str = strings.Replace(str, "\n", "\\n", -1)
	str = strings.Replace(str, "\r", "\\r", -1)
	str = strings.Replace(str, "\t", "\\t", -1)
	return str
}
