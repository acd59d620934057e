package store

import (
	"crypto/rand"
	"encoding/hex"
	math "math/rand"
	"testing"

	"github.com/canopy-network/committee/lib"
	"github.com/stretchr/testify/require"
)

func TestGetSetDelete(t *testing.T) {
	db, cleanup := newTestStore(t)
	defer cleanup()
	txn := db.NewTxn(true)
	bulkSetKV(t, txn, "", "a", "b")
	got, err := txn.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, "a", string(got))
	require.NoError(t, txn.Delete([]byte("b")))
	got, err = txn.Get([]byte("b"))
	require.NoError(t, err)
	require.Nil(t, got)
	// nothing is visible to other readers before commit
	reader := db.NewTxn(false)
	got, err = reader.Get([]byte("a"))
	require.NoError(t, err)
	require.Nil(t, got)
	reader.Discard()
	require.NoError(t, txn.Commit())
	// committed writes are visible to new readers
	reader = db.NewTxn(false)
	defer reader.Discard()
	got, err = reader.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, "a", string(got))
}

func TestDiscard(t *testing.T) {
	db, cleanup := newTestStore(t)
	defer cleanup()
	txn := db.NewTxn(true)
	bulkSetKV(t, txn, "", "a")
	txn.Discard()
	// commit after discard is refused
	require.True(t, lib.IsKind(txn.Commit(), lib.CodeTxnDiscarded, lib.StorageModule))
	reader := db.NewTxn(false)
	defer reader.Discard()
	got, err := reader.Get([]byte("a"))
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestReadOnlyTxnRejectsWrites(t *testing.T) {
	db, cleanup := newTestStore(t)
	defer cleanup()
	reader := db.NewTxn(false)
	defer reader.Discard()
	require.True(t, lib.IsKind(reader.Set([]byte("a"), []byte("a")), lib.CodeStoreSet, lib.StorageModule))
}

func TestCommitConflict(t *testing.T) {
	db, cleanup := newTestStore(t)
	defer cleanup()
	// two writers read and write the same key
	first, second := db.NewTxn(true), db.NewTxn(true)
	_, err := first.Get([]byte("balance"))
	require.NoError(t, err)
	_, err = second.Get([]byte("balance"))
	require.NoError(t, err)
	require.NoError(t, first.Set([]byte("balance"), []byte("1")))
	require.NoError(t, second.Set([]byte("balance"), []byte("2")))
	// the first commit wins, the second is rejected as a conflict
	require.NoError(t, first.Commit())
	require.True(t, lib.IsKind(second.Commit(), lib.CodeTxnConflict, lib.StorageModule))
	reader := db.NewTxn(false)
	defer reader.Discard()
	got, err := reader.Get([]byte("balance"))
	require.NoError(t, err)
	require.Equal(t, "1", string(got))
}

func TestIteratorBasic(t *testing.T) {
	db, cleanup := newTestStore(t)
	defer cleanup()
	parent := db.NewTxn(true)
	defer parent.Discard()
	expectedVals := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	expectedValsReverse := []string{"h", "g", "f", "e", "d", "c", "b", "a"}
	bulkSetKV(t, parent, "", expectedVals...)
	it, err := parent.Iterator(nil)
	require.NoError(t, err)
	validateIterators(t, expectedVals, it)
	it.Close()
	rIt, err := parent.RevIterator(nil)
	require.NoError(t, err)
	validateIterators(t, expectedValsReverse, rIt)
	rIt.Close()
}

func TestIteratorPrefix(t *testing.T) {
	db, cleanup := newTestStore(t)
	defer cleanup()
	parent := db.NewTxn(true)
	defer parent.Discard()
	bulkSetKV(t, parent, "a/", "1", "2", "3")
	bulkSetKV(t, parent, "b/", "1", "2")
	// the key directly after the prefix range must not leak into a reverse iteration
	bulkSetKV(t, parent, "", "a0")
	it, err := parent.Iterator([]byte("a/"))
	require.NoError(t, err)
	validateIterators(t, []string{"a/1", "a/2", "a/3"}, it)
	it.Close()
	rIt, err := parent.RevIterator([]byte("a/"))
	require.NoError(t, err)
	validateIterators(t, []string{"a/3", "a/2", "a/1"}, rIt)
	rIt.Close()
}

func TestIteratorWithDelete(t *testing.T) {
	db, cleanup := newTestStore(t)
	defer cleanup()
	parent := db.NewTxn(true)
	defer parent.Discard()
	expectedVals := []string{"a", "b", "c", "d", "e", "f", "g"}
	bulkSetKV(t, parent, "", expectedVals...)
	for i := 0; i < 10; i++ {
		randomIndex := math.Intn(len(expectedVals))
		require.NoError(t, parent.Delete([]byte(expectedVals[randomIndex])))
		expectedVals = append(expectedVals[:randomIndex], expectedVals[randomIndex+1:]...)
		cIt, err := parent.Iterator(nil)
		require.NoError(t, err)
		validateIterators(t, expectedVals, cIt)
		cIt.Close()
		// add a random key in its sorted position
		add := make([]byte, 1)
		_, er := rand.Read(add)
		require.NoError(t, er)
		key := hex.EncodeToString(add)
		bulkSetKV(t, parent, "", key)
		expectedVals = insertSorted(expectedVals, key)
	}
}

func newTestStore(t *testing.T) (*Store, func()) {
	db, err := NewStoreInMemory(lib.NewNullLogger())
	require.NoError(t, err)
	return db, func() { require.NoError(t, db.Close()) }
}

func bulkSetKV(t *testing.T, store lib.WStoreI, prefix string, keyValue ...string) {
	for _, kv := range keyValue {
		require.NoError(t, store.Set([]byte(prefix+kv), []byte(prefix+kv)))
	}
}

func validateIterators(t *testing.T, expectedKeys []string, iterators ...lib.IteratorI) {
	for _, it := range iterators {
		i := 0
		for ; it.Valid(); it.Next() {
			require.Less(t, i, len(expectedKeys), "iterator returned more keys than expected")
			require.Equal(t, expectedKeys[i], string(it.Key()))
			require.Equal(t, expectedKeys[i], string(it.Value()))
			i++
		}
		require.Equal(t, len(expectedKeys), i)
	}
}

func insertSorted(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return list
		}
		if v > s {
			return append(list[:i], append([]string{s}, list[i:]...)...)
		}
	}
	return append(list, s)
}
