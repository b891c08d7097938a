package graph

import (
	"testing"

	ld "github.com/piprate/json-gold/ld"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/underlay/ontoshop/types"
)

func widget(g *Graph) ld.Node {
	s := types.Subject("widget")
	g.Add(s, types.IRI(types.RDFType), types.IRI(types.Product))
	g.Add(s, types.IRI(types.Name), types.String("Widget"))
	g.Add(s, types.IRI(types.Price), types.Float(10))
	g.Add(s, types.IRI(types.StockLevel), types.Integer(5))
	return s
}

func TestAddRemoveIdempotent(t *testing.T) {
	g := New()
	s := types.Subject("widget")
	p := types.IRI(types.Name)
	o := types.String("Widget")

	assert.True(t, g.Add(s, p, o))
	assert.False(t, g.Add(s, p, o))
	assert.Equal(t, 1, g.Len())
	assert.True(t, g.Has(s, p, o))

	assert.True(t, g.Remove(s, p, o))
	assert.False(t, g.Remove(s, p, o))
	assert.Equal(t, 0, g.Len())
	assert.False(t, g.Has(s, p, o))
}

func TestPlainAndStringLiteralsAreOneTerm(t *testing.T) {
	g := New()
	s := types.Subject("widget")
	p := types.IRI(types.Name)
	g.Add(s, p, ld.NewLiteral("Widget", "", ""))
	assert.False(t, g.Add(s, p, types.String("Widget")))
	assert.False(t, g.Has(s, p, ld.NewLiteral("Widget", types.XSDInteger, "")))
}

func TestSubjectsAndValue(t *testing.T) {
	g := New()
	s := widget(g)
	other := types.Subject("gadget")
	g.Add(other, types.IRI(types.RDFType), types.IRI(types.Product))
	g.Add(types.Subject("o1"), types.IRI(types.RDFType), types.IRI(types.Order))

	subjects := g.Subjects(types.IRI(types.RDFType), types.IRI(types.Product))
	require.Len(t, subjects, 2)
	assert.Equal(t, other.GetValue(), subjects[0].GetValue())
	assert.Equal(t, s.GetValue(), subjects[1].GetValue())

	v := g.Value(s, types.IRI(types.StockLevel), nil)
	stock, err := types.AsInt(v)
	require.NoError(t, err)
	assert.Equal(t, 5, stock)

	def := types.Float(0)
	assert.Equal(t, def, g.Value(s, types.IRI(types.Discount), def))
	assert.Nil(t, g.Value(s, types.IRI(types.Discount), nil))
}

func TestSetReplacesObject(t *testing.T) {
	g := New()
	s := widget(g)
	g.Set(s, types.IRI(types.StockLevel), types.Integer(2))

	objects := g.Objects(s, types.IRI(types.StockLevel))
	require.Len(t, objects, 1)
	stock, err := types.AsInt(objects[0])
	require.NoError(t, err)
	assert.Equal(t, 2, stock)
	assert.Empty(t, g.Subjects(types.IRI(types.StockLevel), types.Integer(5)))
}

func TestRemoveSubject(t *testing.T) {
	g := New()
	s := widget(g)
	ref := types.Subject("o1")
	g.Add(ref, types.IRI(types.OfProduct), s)

	assert.Equal(t, 4, g.RemoveSubject(s))
	assert.Equal(t, 0, g.RemoveSubject(s))
	assert.Empty(t, g.About(s))
	// references from other subjects are left alone
	assert.True(t, g.Has(ref, types.IRI(types.OfProduct), s))
	assert.Equal(t, 1, g.Len())
}

func TestCloneIsIndependent(t *testing.T) {
	g := New()
	widget(g)
	c := g.Clone()
	require.True(t, c.Equal(g))

	c.RemoveSubject(types.Subject("widget"))
	assert.Equal(t, 4, g.Len())
	assert.False(t, c.Equal(g))
}
