package ontoshop

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/underlay/ontoshop/graph"
	"github.com/underlay/ontoshop/rows"
	"github.com/underlay/ontoshop/types"
)

func TestFeedbackDualDelete(t *testing.T) {
	f := newFixture(t)

	entry, err := f.shop.Feedback.Create(NewFeedback{User: "bea", Email: "bea@example.org", Rating: 5, Comment: "great"})
	require.NoError(t, err)

	row, err := f.shop.Feedback.Rows().Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, row.Rating)
	assert.Equal(t, "bea", row.User)

	got, err := f.shop.Feedback.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "great", got.Comment)
	assert.True(t, entry.SubmittedAt.Equal(got.SubmittedAt))

	require.NoError(t, f.shop.Feedback.Delete(entry.ID))

	_, err = f.shop.Feedback.Rows().Get(entry.ID)
	assert.ErrorIs(t, err, rows.ErrNotFound)
	_, err = f.shop.Feedback.Get(entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.shop.Store.Snapshot().About(types.Subject(entry.ID)))
}

func TestFeedbackDeleteWithRowAlreadyAbsent(t *testing.T) {
	f := newFixture(t)

	entry, err := f.shop.Feedback.Create(NewFeedback{User: "bea", Email: "bea@example.org", Rating: 5})
	require.NoError(t, err)
	require.NoError(t, f.shop.Feedback.Rows().Delete(entry.ID))

	require.NoError(t, f.shop.Feedback.Delete(entry.ID))
	assert.Equal(t, 1, f.logs.FilterMessage("Feedback row already absent").Len())

	_, err = f.shop.Feedback.Get(entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFeedbackDeleteOrphanRow(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.shop.Feedback.Rows().Put(&rows.Row{ID: "orphan", User: "bea", Email: "bea@example.org", Rating: 2}))
	before := f.shop.Store.Snapshot()

	require.NoError(t, f.shop.Feedback.Delete("orphan"))
	assert.Equal(t, 1, f.logs.FilterMessage("Feedback triples already absent").Len())

	_, err := f.shop.Feedback.Rows().Get("orphan")
	assert.ErrorIs(t, err, rows.ErrNotFound)
	assert.True(t, before.Equal(f.shop.Store.Snapshot()))

	assert.ErrorIs(t, f.shop.Feedback.Delete("orphan"), ErrNotFound)
}

func TestFeedbackValidation(t *testing.T) {
	f := newFixture(t)
	for _, input := range []NewFeedback{
		{User: "", Email: "a@b.c", Rating: 3},
		{User: "bea", Email: "not-an-address", Rating: 3},
		{User: "bea", Email: "a@b.c", Rating: 0},
		{User: "bea", Email: "a@b.c", Rating: 6},
	} {
		_, err := f.shop.Feedback.Create(input)
		assert.ErrorIs(t, err, ErrInvalid, "%+v", input)
	}

	list, err := f.shop.Feedback.Rows().List()
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 0, f.shop.Store.Snapshot().Len())
}

func TestFeedbackCreateRollsBackRow(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	f := newFixtureAt(t, filepath.Join(blocker, "shop.xml"), nil)

	_, err := f.shop.Feedback.Create(NewFeedback{User: "bea", Email: "bea@example.org", Rating: 4})
	assert.ErrorIs(t, err, ErrPersist)

	list, err := f.shop.Feedback.Rows().List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFeedbackListSkipsMalformed(t *testing.T) {
	f := newFixture(t)
	_, err := f.shop.Feedback.Create(NewFeedback{User: "bea", Email: "bea@example.org", Rating: 4})
	require.NoError(t, err)

	err = f.shop.Store.Update(func(g *graph.Graph) error {
		s := types.Subject("anonymous")
		g.Add(s, rdfType, types.IRI(types.Feedback))
		g.Add(s, types.IRI(types.Rating), types.Integer(2))
		return nil
	})
	require.NoError(t, err)

	entries, err := f.shop.Feedback.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bea", entries[0].User)
	assert.Equal(t, "", entries[0].Comment)
}
