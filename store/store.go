package store

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/canopy-network/committee/lib"
	"github.com/dgraph-io/badger/v4"
)

const (
	badgerGCRatio    = .5              // the ratio of reclaimable space that triggers a value log rewrite
	badgerGCInterval = 5 * time.Minute // how often the value log garbage collector runs
)

var _ lib.StoreI = &Store{}

/*
	Store is the committee state database, a thin layer over badgerDB's serializable snapshot transactions.
	Each read-write transaction commits atomically or not at all, and concurrent writers touching the same
	keys are rejected at commit with a conflict error.
*/
type Store struct {
	db       *badger.DB  // the underlying database
	inMemory bool        // non-disk database
	log      lib.LoggerI // logger
}

// New() opens the on-disk store located at <data-dir>/<db-name>
func New(config lib.StoreConfig, log lib.LoggerI) (*Store, lib.ErrorI) {
	if config.InMemory {
		return NewStoreInMemory(log)
	}
	path := filepath.Join(config.DataDirPath, config.DBName)
	opts := badger.DefaultOptions(path).
		WithMemTableSize(config.MemTableSize).
		WithValueLogFileSize(config.ValueLogFileSize).
		WithLogger(badgerLogger{log}).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, ErrOpenDB(err)
	}
	log.Infof("Opened store at %s", path)
	return &Store{db: db, log: log}, nil
}

// NewStoreInMemory() creates a store that never touches disk, used in testing
func NewStoreInMemory(log lib.LoggerI) (*Store, lib.ErrorI) {
	db, err := badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(badgerLogger{log}).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, ErrOpenDB(err)
	}
	return &Store{db: db, inMemory: true, log: log}, nil
}

// NewTxn() opens a snapshot transaction, writes are only allowed if update is set
func (s *Store) NewTxn(update bool) lib.TxnI {
	return NewTxnWrapper(s.db.NewTransaction(update), s.log)
}

// Close() gracefully stops the database
func (s *Store) Close() lib.ErrorI {
	if err := s.db.Close(); err != nil {
		return ErrCloseDB(err)
	}
	return nil
}

// RunGC() periodically reclaims value log space until the context is cancelled
func (s *Store) RunGC(ctx context.Context) error {
	if s.inMemory {
		return nil
	}
	defer lib.CatchPanic(s.log)
	ticker := time.NewTicker(badgerGCInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// rewrite value log files until nothing is left to reclaim
			for {
				if err := s.db.RunValueLogGC(badgerGCRatio); err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						s.log.Warnf("Value log GC failed with err: %s", err.Error())
					}
					break
				}
			}
		}
	}
}

// badgerLogger adapts the project logger to badger's logging interface
type badgerLogger struct{ lib.LoggerI }

var _ badger.Logger = badgerLogger{}

func (b badgerLogger) Warningf(format string, args ...interface{}) { b.Warnf(format, args...) }

// Infof() demotes badger's chatty info output to debug
func (b badgerLogger) Infof(format string, args ...interface{}) { b.Debugf(format, args...) }
