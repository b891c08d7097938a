package ontoshop

import (
	"errors"
	"fmt"
	"sort"
	"time"

	ld "github.com/piprate/json-gold/ld"
	"go.uber.org/zap"

	"github.com/underlay/ontoshop/graph"
	"github.com/underlay/ontoshop/types"
)

var errMissing = errors.New("missing required field")

var rdfType = types.IRI(types.RDFType)

// collect projects every subject and keeps the successes. A subject that
// fails is logged, counted, and left out.
func collect[T any](kind string, subjects []ld.Node, project func(ld.Node) (T, error), logger *zap.Logger, metrics *Metrics) []T {
	records := make([]T, 0, len(subjects))
	for _, subject := range subjects {
		record, err := project(subject)
		if err != nil {
			logger.Warn("Skipping malformed entity",
				zap.String("kind", kind),
				zap.String("subject", graph.Term(subject)),
				zap.Error(err))
			metrics.ProjectionFailures.WithLabelValues(kind).Inc()
			continue
		}
		records = append(records, record)
	}
	return records
}

// subjectsOf returns every subject typed as kind, ordered by identifier
func subjectsOf(g *graph.Graph, kind string) []ld.Node {
	subjects := g.Subjects(rdfType, types.IRI(kind))
	sort.SliceStable(subjects, func(i, j int) bool {
		return subjects[i].GetValue() < subjects[j].GetValue()
	})
	return subjects
}

func isA(g *graph.Graph, subject ld.Node, kind string) bool {
	return g.Has(subject, rdfType, types.IRI(kind))
}

func localID(subject ld.Node) (string, error) {
	id, ok := types.LocalID(subject)
	if !ok {
		return "", fmt.Errorf("subject %s is outside the ontology namespace", graph.Term(subject))
	}
	return id, nil
}

func field(g *graph.Graph, s ld.Node, predicate string) (ld.Node, error) {
	node := g.Value(s, types.IRI(predicate), nil)
	if node == nil {
		return nil, fmt.Errorf("%w %s", errMissing, predicate)
	}
	return node, nil
}

func readString(g *graph.Graph, s ld.Node, predicate string) (string, error) {
	node, err := field(g, s, predicate)
	if err != nil {
		return "", err
	}
	return types.AsString(node)
}

func readInt(g *graph.Graph, s ld.Node, predicate string) (int, error) {
	node, err := field(g, s, predicate)
	if err != nil {
		return 0, err
	}
	return types.AsInt(node)
}

func readFloat(g *graph.Graph, s ld.Node, predicate string) (float64, error) {
	node, err := field(g, s, predicate)
	if err != nil {
		return 0, err
	}
	return types.AsFloat(node)
}

func stringOr(g *graph.Graph, s ld.Node, predicate, def string) (string, error) {
	if node := g.Value(s, types.IRI(predicate), nil); node != nil {
		return types.AsString(node)
	}
	return def, nil
}

func intOr(g *graph.Graph, s ld.Node, predicate string, def int) (int, error) {
	if node := g.Value(s, types.IRI(predicate), nil); node != nil {
		return types.AsInt(node)
	}
	return def, nil
}

func floatOr(g *graph.Graph, s ld.Node, predicate string, def float64) (float64, error) {
	if node := g.Value(s, types.IRI(predicate), nil); node != nil {
		return types.AsFloat(node)
	}
	return def, nil
}

func timeOr(g *graph.Graph, s ld.Node, predicate string) (time.Time, error) {
	if node := g.Value(s, types.IRI(predicate), nil); node != nil {
		return types.AsTime(node)
	}
	return time.Time{}, nil
}

// set replaces a single-valued field
func set(g *graph.Graph, s ld.Node, predicate string, value ld.Node) {
	g.Set(s, types.IRI(predicate), value)
}
