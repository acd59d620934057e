package store

import (
	"bytes"
	"errors"

	"github.com/canopy-network/committee/lib"
	"github.com/dgraph-io/badger/v4"
)

// maxKeySuffix bounds the key bytes that may follow an iteration prefix; used to seek to the end of a prefix
const maxKeySuffix = 256

// TxnI interface enforcement
var _ lib.TxnI = &TxnWrapper{}

// TxnWrapper is a wrapper over the badgerDB Txn object that conforms to the TxnI interface
type TxnWrapper struct {
	logger lib.LoggerI
	db     *badger.Txn
	done   bool
}

// NewTxnWrapper() creates a new TxnWrapper with the provided params
func NewTxnWrapper(db *badger.Txn, logger lib.LoggerI) *TxnWrapper {
	return &TxnWrapper{
		logger: logger,
		db:     db,
	}
}

// Get() retrieves the value associated with the key, a missing key yields nil and no error
func (t *TxnWrapper) Get(k []byte) ([]byte, lib.ErrorI) {
	item, err := t.db.Get(k)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, ErrStoreGet(err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, ErrStoreGet(err)
	}
	return val, nil
}

// Set() stores the key-value pair in the BadgerDB transaction
func (t *TxnWrapper) Set(k, v []byte) lib.ErrorI {
	if err := t.db.Set(k, v); err != nil {
		return ErrStoreSet(err)
	}
	return nil
}

// Delete() removes the key-value pair from the BadgerDB transaction
func (t *TxnWrapper) Delete(k []byte) lib.ErrorI {
	if err := t.db.Delete(k); err != nil {
		return ErrStoreDelete(err)
	}
	return nil
}

// Commit() atomically writes the transaction, a concurrent write to any key read or written here fails it
func (t *TxnWrapper) Commit() lib.ErrorI {
	if t.done {
		return ErrTxnDiscarded()
	}
	t.done = true
	if err := t.db.Commit(); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			return ErrTxnConflict()
		}
		return ErrCommitDB(err)
	}
	return nil
}

// Discard() drops the pending writes
func (t *TxnWrapper) Discard() {
	t.done = true
	t.db.Discard()
}

// Iterator() creates a new iterator for the given prefix in the BadgerDB transaction
func (t *TxnWrapper) Iterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	parent := t.db.NewIterator(badger.IteratorOptions{
		Prefix:         prefix,
		PrefetchValues: true,
		PrefetchSize:   100,
	})
	parent.Rewind()
	return &Iterator{
		logger: t.logger,
		parent: parent,
	}, nil
}

// RevIterator() creates a new reverse iterator for the given prefix in the BadgerDB transaction
func (t *TxnWrapper) RevIterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	parent := t.db.NewIterator(badger.IteratorOptions{
		Reverse:        true,
		Prefix:         prefix,
		PrefetchValues: true,
		PrefetchSize:   100,
	})
	// in reverse mode seek lands on the greatest key <= target
	parent.Seek(append(bytes.Clone(prefix), bytes.Repeat([]byte{0xFF}, maxKeySuffix)...))
	return &Iterator{
		logger: t.logger,
		parent: parent,
	}, nil
}

// IteratorI interface enforcement
var _ lib.IteratorI = &Iterator{}

// Iterator implements a wrapper around BadgerDB's iterator but satisfies the IteratorI interface
type Iterator struct {
	logger lib.LoggerI
	parent *badger.Iterator
}

func (i *Iterator) Valid() bool { return i.parent.Valid() }
func (i *Iterator) Next()       { i.parent.Next() }
func (i *Iterator) Close()      { i.parent.Close() }

// Key() returns a copy of the current key
func (i *Iterator) Key() []byte { return i.parent.Item().KeyCopy(nil) }

// Value() returns a copy of the current value
func (i *Iterator) Value() []byte {
	v, err := i.parent.Item().ValueCopy(nil)
	if err != nil {
		i.logger.Error(ErrStoreGet(err).Error())
	}
	return v
}
