package types

import (
	"strings"

	ld "github.com/piprate/json-gold/ld"
)

// Subject returns the subject IRI for a local identifier
func Subject(localID string) *ld.IRI {
	return ld.NewIRI(Namespace + localID)
}

// LocalID strips the namespace prefix from a subject IRI. The second
// result is false if the IRI is outside the namespace.
func LocalID(node ld.Node) (string, bool) {
	iri, is := node.(*ld.IRI)
	if !is || !strings.HasPrefix(iri.Value, Namespace) {
		return "", false
	}
	id := iri.Value[len(Namespace):]
	return id, id != ""
}

// IsKind reports whether uri is one of the entity type URIs
func IsKind(uri string) bool {
	for _, kind := range Kinds {
		if kind == uri {
			return true
		}
	}
	return false
}

// Slug derives a product identifier from its name: lower-cased,
// with each space replaced by an underscore.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}
