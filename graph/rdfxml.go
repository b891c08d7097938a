package graph

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/knakk/rdf"
	ld "github.com/piprate/json-gold/ld"

	"github.com/underlay/ontoshop/types"
)

// ErrSyntax indicates that an RDF/XML document is malformed
var ErrSyntax = errors.New("Invalid RDF/XML")

// ErrQName indicates that a predicate IRI cannot be written as an XML element name
var ErrQName = errors.New("Predicate cannot be serialized as a QName")

var knownPrefixes = map[string]string{
	types.RDFNamespace:                      "rdf",
	"http://www.w3.org/2000/01/rdf-schema#": "rdfs",
	"http://www.w3.org/2002/07/owl#":        "owl",
	types.XSDNamespace:                      "xsd",
}

// Decode parses an RDF/XML document into a new graph
func Decode(r io.Reader) (g *Graph, err error) {
	// The decoder re-raises runtime panics on some malformed inputs
	defer func() {
		if e := recover(); e != nil {
			if re, is := e.(runtime.Error); is {
				g, err = nil, fmt.Errorf("%w: %v", ErrSyntax, re)
				return
			}
			panic(e)
		}
	}()

	dec := rdf.NewTripleDecoder(r, rdf.RDFXML)
	g = New()
	for {
		t, err := dec.Decode()
		if err == io.EOF {
			return g, nil
		} else if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		g.Add(fromTerm(t.Subj), fromTerm(t.Pred), fromTerm(t.Obj))
	}
}

func fromTerm(term rdf.Term) ld.Node {
	switch term := term.(type) {
	case rdf.IRI:
		return ld.NewIRI(term.String())
	case rdf.Blank:
		return ld.NewBlankNode("_:" + term.String())
	case rdf.Literal:
		datatype := term.DataType.String()
		if datatype == ld.RDFLangString {
			return ld.NewLiteral(term.String(), datatype, term.Lang())
		} else if datatype == "" {
			datatype = types.XSDString
		}
		return ld.NewLiteral(term.String(), datatype, "")
	}
	return nil
}

// Encode writes the graph as RDF/XML, one rdf:Description per subject.
// Output is deterministic for a given triple set.
func Encode(w io.Writer, g *Graph) error {
	triples := g.Triples()

	prefixes := map[string]string{types.RDFNamespace: "rdf"}
	qnames := make(map[string][2]string)
	for _, t := range triples {
		iri := t.Predicate.GetValue()
		if _, has := qnames[iri]; has {
			continue
		}
		space, local, err := splitQName(iri)
		if err != nil {
			return err
		}
		if _, has := prefixes[space]; !has {
			prefixes[space] = ""
		}
		qnames[iri] = [2]string{space, local}
	}

	spaces := make([]string, 0, len(prefixes))
	for space := range prefixes {
		spaces = append(spaces, space)
	}
	sort.Strings(spaces)
	n := 0
	for _, space := range spaces {
		if prefixes[space] != "" {
			continue
		} else if known, has := knownPrefixes[space]; has {
			prefixes[space] = known
		} else {
			n++
			prefixes[space] = "ns" + strconv.Itoa(n)
		}
	}

	b := bufio.NewWriter(w)
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<rdf:RDF")
	for _, space := range spaces {
		fmt.Fprintf(b, "\n   xmlns:%s=\"%s\"", prefixes[space], escapeXML(space))
	}
	b.WriteString("\n>\n")

	var current string
	for _, t := range triples {
		subject := Term(t.Subject)
		if subject != current {
			if current != "" {
				b.WriteString("  </rdf:Description>\n")
			}
			current = subject
			if blank, is := t.Subject.(*ld.BlankNode); is {
				fmt.Fprintf(b, "  <rdf:Description rdf:nodeID=\"%s\">\n", escapeXML(strings.TrimPrefix(blank.Attribute, "_:")))
			} else {
				fmt.Fprintf(b, "  <rdf:Description rdf:about=\"%s\">\n", escapeXML(t.Subject.GetValue()))
			}
		}

		q := qnames[t.Predicate.GetValue()]
		name := prefixes[q[0]] + ":" + q[1]
		switch object := t.Object.(type) {
		case *ld.IRI:
			fmt.Fprintf(b, "    <%s rdf:resource=\"%s\"/>\n", name, escapeXML(object.Value))
		case *ld.BlankNode:
			fmt.Fprintf(b, "    <%s rdf:nodeID=\"%s\"/>\n", name, escapeXML(strings.TrimPrefix(object.Attribute, "_:")))
		case *ld.Literal:
			if object.Language != "" {
				fmt.Fprintf(b, "    <%s xml:lang=\"%s\">%s</%s>\n", name, escapeXML(object.Language), escapeXML(object.Value), name)
			} else {
				datatype := object.Datatype
				if datatype == "" {
					datatype = types.XSDString
				}
				fmt.Fprintf(b, "    <%s rdf:datatype=\"%s\">%s</%s>\n", name, escapeXML(datatype), escapeXML(object.Value), name)
			}
		}
	}
	if current != "" {
		b.WriteString("  </rdf:Description>\n")
	}
	b.WriteString("</rdf:RDF>\n")
	return b.Flush()
}

// splitQName splits an IRI at its last '#' or '/' into a namespace and an
// XML local name
func splitQName(iri string) (space, local string, err error) {
	i := strings.LastIndexAny(iri, "#/")
	if i == -1 || i == len(iri)-1 || !isNCName(iri[i+1:]) {
		return "", "", fmt.Errorf("%w: %s", ErrQName, iri)
	}
	return iri[:i+1], iri[i+1:], nil
}

func isNCName(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		} else if i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return s != ""
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
