package types

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	ld "github.com/piprate/json-gold/ld"
)

// ErrLiteralType indicates that a term could not be read as the requested native type
var ErrLiteralType = errors.New("Unexpected literal type")

// TimeLayouts are the lexical forms accepted for xsd:dateTime, in order
var TimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// String returns an xsd:string literal
func String(v string) *ld.Literal { return ld.NewLiteral(v, XSDString, "") }

// Integer returns an xsd:integer literal
func Integer(v int) *ld.Literal { return ld.NewLiteral(strconv.Itoa(v), XSDInteger, "") }

// Float returns an xsd:float literal. Integral values keep a trailing ".0"
// so the lexical form reads as a float.
func Float(v float64) *ld.Literal {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return ld.NewLiteral(s, XSDFloat, "")
}

// DateTime returns an xsd:dateTime literal in UTC
func DateTime(t time.Time) *ld.Literal {
	return ld.NewLiteral(t.UTC().Format(time.RFC3339Nano), XSDDateTime, "")
}

// IRI returns a named node
func IRI(v string) *ld.IRI { return ld.NewIRI(v) }

func literal(node ld.Node, want string) (*ld.Literal, error) {
	l, is := node.(*ld.Literal)
	if !is {
		return nil, fmt.Errorf("%w: expected %s literal, got %T", ErrLiteralType, want, node)
	}
	return l, nil
}

// AsString reads the lexical value of a literal
func AsString(node ld.Node) (string, error) {
	l, err := literal(node, "string")
	if err != nil {
		return "", err
	}
	return l.Value, nil
}

// AsInt reads an integer literal. Floats with no fractional part are accepted.
func AsInt(node ld.Node) (int, error) {
	l, err := literal(node, "integer")
	if err != nil {
		return 0, err
	}
	v := strings.TrimSpace(l.Value)
	if i, err := strconv.Atoi(v); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrLiteralType, l.Value)
	}
	return int(f), nil
}

// AsFloat reads a numeric literal
func AsFloat(node ld.Node) (float64, error) {
	l, err := literal(node, "float")
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(l.Value), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrLiteralType, l.Value)
	}
	return f, nil
}

// AsTime reads an xsd:dateTime literal
func AsTime(node ld.Node) (time.Time, error) {
	l, err := literal(node, "dateTime")
	if err != nil {
		return time.Time{}, err
	}
	v := strings.TrimSpace(l.Value)
	for _, layout := range TimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a timestamp", ErrLiteralType, l.Value)
}

// RoundPrice rounds v to two decimal places
func RoundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}

// FinalPrice applies a percentage discount and rounds to cents
func FinalPrice(price, discount float64) float64 {
	return RoundPrice(price * (1 - discount/100))
}
