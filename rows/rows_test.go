package rows

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	b, err := OpenBadger("", true, nil)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"badger": b,
	}
}

func TestStores(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			submitted := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
			require.NoError(t, store.Put(&Row{ID: "b", User: "Bea", Email: "bea@example.org", Rating: 4, SubmittedAt: submitted}))
			require.NoError(t, store.Put(&Row{ID: "a", User: "Al", Email: "al@example.org", Rating: 5, Comment: "great"}))

			row, err := store.Get("b")
			require.NoError(t, err)
			assert.Equal(t, "Bea", row.User)
			assert.Equal(t, 4, row.Rating)
			assert.True(t, submitted.Equal(row.SubmittedAt))

			list, err := store.List()
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "a", list[0].ID)
			assert.Equal(t, "b", list[1].ID)

			require.NoError(t, store.Put(&Row{ID: "a", User: "Al", Rating: 1}))
			row, err = store.Get("a")
			require.NoError(t, err)
			assert.Equal(t, 1, row.Rating)

			require.NoError(t, store.Delete("a"))
			assert.ErrorIs(t, store.Delete("a"), ErrNotFound)
			_, err = store.Get("a")
			assert.ErrorIs(t, err, ErrNotFound)

			list, err = store.List()
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenBadger(dir, false, nil)
	require.NoError(t, err)
	require.NoError(t, store.Put(&Row{ID: "x", User: "Xi", Rating: 3}))
	require.NoError(t, store.Close())

	store, err = OpenBadger(dir, false, nil)
	require.NoError(t, err)
	defer store.Close()

	row, err := store.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "Xi", row.User)
}
