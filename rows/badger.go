package rows

import (
	"encoding/json"

	badger "github.com/dgraph-io/badger/v2"
	"go.uber.org/zap"
)

// RowPrefix is the key prefix of feedback rows in the badger database
const RowPrefix = byte('f')

type badgerStore struct{ Badger *badger.DB }

// OpenBadger opens a badger-backed Store at path. An in-memory database is
// used when inMemory is set and path is ignored.
func OpenBadger(path string, inMemory bool, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(&badgerLogger{logger.Named("badger").Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return NewBadgerStore(db), nil
}

// NewBadgerStore wraps an open badger database
func NewBadgerStore(db *badger.DB) Store { return &badgerStore{Badger: db} }

func rowKey(id string) []byte {
	key := make([]byte, len(id)+1)
	key[0] = RowPrefix
	copy(key[1:], id)
	return key
}

func (b *badgerStore) Put(row *Row) error {
	val, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return b.Badger.Update(func(txn *badger.Txn) error { return txn.Set(rowKey(row.ID), val) })
}

func (b *badgerStore) Get(id string) (row *Row, err error) {
	err = b.Badger.View(func(txn *badger.Txn) error {
		item, err := txn.Get(rowKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		row = &Row{}
		return json.Unmarshal(val, row)
	})
	if err != nil {
		row = nil
	}
	return
}

func (b *badgerStore) Delete(id string) error {
	key := rowKey(id)
	return b.Badger.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

func (b *badgerStore) List() (rows []*Row, err error) {
	rows = []*Row{}
	err = b.Badger.View(func(txn *badger.Txn) error {
		iter := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			Prefix:         []byte{RowPrefix},
		})
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			val, err := iter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			row := &Row{}
			if err := json.Unmarshal(val, row); err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return nil
	})
	return
}

func (b *badgerStore) Close() error { return b.Badger.Close() }

// badgerLogger routes badger's log output through zap
type badgerLogger struct{ *zap.SugaredLogger }

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}
