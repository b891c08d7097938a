package graph

import (
	"encoding/json"
	"fmt"

	ld "github.com/piprate/json-gold/ld"

	"github.com/underlay/ontoshop/types"
)

// DefaultGraph is the name json-gold uses for the default graph of a dataset
const DefaultGraph = "@default"

// Dataset converts the graph into a json-gold dataset with a single default graph
func (g *Graph) Dataset() *ld.RDFDataset {
	triples := g.Triples()
	quads := make([]*ld.Quad, len(triples))
	for i, t := range triples {
		quads[i] = ld.NewQuad(t.Subject, t.Predicate, t.Object, DefaultGraph)
	}
	dataset := ld.NewRDFDataset()
	dataset.Graphs[DefaultGraph] = quads
	return dataset
}

// FromDataset builds a graph from every quad of a dataset. Graph names are
// dropped, so named graphs merge into one triple set.
func FromDataset(dataset *ld.RDFDataset) *Graph {
	g := New()
	for _, quads := range dataset.Graphs {
		for _, quad := range quads {
			g.Add(quad.Subject, quad.Predicate, quad.Object)
		}
	}
	return g
}

// NQuads serializes the graph as N-Quads
func (g *Graph) NQuads() (string, error) {
	serializer := &ld.NQuadRDFSerializer{}
	result, err := serializer.Serialize(g.Dataset())
	if err != nil {
		return "", err
	}
	s, is := result.(string)
	if !is {
		return "", fmt.Errorf("unexpected N-Quads serializer result %T", result)
	}
	return s, nil
}

// ParseNQuads parses an N-Quads document into a new graph
func ParseNQuads(input string) (*Graph, error) {
	serializer := &ld.NQuadRDFSerializer{}
	dataset, err := serializer.Parse(input)
	if err != nil {
		return nil, err
	}
	return FromDataset(dataset), nil
}

// Context is the JSON-LD context used to compact exported documents
var Context = map[string]interface{}{
	"@context": map[string]interface{}{
		"shop": types.Namespace,
		"xsd":  types.XSDNamespace,
	},
}

// JSONLD serializes the graph as a compacted JSON-LD document
func (g *Graph) JSONLD() ([]byte, error) {
	opts := ld.NewJsonLdOptions("")
	expanded, err := ld.NewJsonLdApi().FromRDF(g.Dataset(), opts)
	if err != nil {
		return nil, err
	}

	compacted, err := ld.NewJsonLdProcessor().Compact(expanded, Context, opts)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(compacted, "", "  ")
}
