package fsm

import (
	"runtime/debug"
	"sync"
	"time"

	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/lib/crypto"
)

/*
	StateMachine is the governance core: it owns every committee, request, approval and
	disbursement record and the factory registry.

	Concurrency:
	- every mutation of one committee holds that committee's exclusive lock from the first read to the commit
	- committee creation holds the factory lock, which guards the creation counter and the registry
	- disbursements additionally hold the ledger lock, which guards recipient accounts
	- locks are always taken in the order factory -> committee -> ledger
	- each mutation runs in its own store transaction; any error discards it, so a failed call writes nothing
	- reads run in read-only snapshot transactions and never observe a partially applied mutation
*/
type StateMachine struct {
	store   lib.StoreI      // the committee database
	factory crypto.AddressI // the factory address, seeds committee address derivation

	locks       *lockTable // one exclusive lock per committee
	factoryLock sync.Mutex // guards the creation counter and the registry
	ledgerLock  sync.Mutex // guards recipient accounts

	Metrics *lib.Metrics
	log     lib.LoggerI
}

// New() creates a new instance of a StateMachine
func New(c lib.Config, store lib.StoreI, metrics *lib.Metrics, log lib.LoggerI) (*StateMachine, lib.ErrorI) {
	factory, err := crypto.NewAddress(c.FactoryAddress)
	if err != nil {
		return nil, lib.ErrInvalidAddress()
	}
	return &StateMachine{
		store:   store,
		factory: factory,
		locks:   newLockTable(),
		Metrics: metrics,
		log:     log,
	}, nil
}

// FactoryAddress() returns the address of the committee factory
func (s *StateMachine) FactoryAddress() crypto.AddressI { return s.factory }

// mutation describes the exclusive resources an operation needs
type mutation struct {
	operation string          // name used for logging and metrics
	committee crypto.AddressI // the committee to lock, nil for factory operations
	factory   bool            // lock the creation counter and registry
	ledger    bool            // lock the recipient accounts
	txHash    []byte          // the transaction to record for replay protection, nil for direct calls
}

// apply() runs fn atomically: it acquires the locks, opens a store transaction, and commits only if fn succeeds
func (s *StateMachine) apply(m mutation, fn func(txn lib.RWStoreI) lib.ErrorI) (err lib.ErrorI) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("%s panicked: %v\n%s", m.operation, r, debug.Stack())
			err = lib.ErrPanic()
		}
		s.Metrics.ObserveOperation(m.operation, start, err)
		if err != nil {
			s.log.Debugf("%s rejected: %s", m.operation, err.Error())
		}
	}()
	if m.factory {
		s.factoryLock.Lock()
		defer s.factoryLock.Unlock()
	}
	if m.committee != nil {
		unlock, e := s.lockCommittee(m.committee)
		if e != nil {
			return e
		}
		defer unlock()
	}
	if m.ledger {
		s.ledgerLock.Lock()
		defer s.ledgerLock.Unlock()
	}
	txn := s.store.NewTxn(true)
	defer txn.Discard()
	if m.txHash != nil {
		if err = s.recordTx(txn, m.txHash); err != nil {
			return
		}
	}
	if err = fn(txn); err != nil {
		return
	}
	return txn.Commit()
}

// view() runs fn against a read-only snapshot of the store
func (s *StateMachine) view(fn func(txn lib.RStoreI) lib.ErrorI) lib.ErrorI {
	txn := s.store.NewTxn(false)
	defer txn.Discard()
	return fn(txn)
}

// lockCommittee() takes the exclusive lock of an existing committee
func (s *StateMachine) lockCommittee(c crypto.AddressI) (unlock func(), err lib.ErrorI) {
	mu, ok := s.locks.get(c)
	if !ok {
		// only committees that exist get a lock, so unknown addresses can't grow the table
		var exists bool
		if err = s.view(func(txn lib.RStoreI) (e lib.ErrorI) {
			exists, e = s.isCommittee(txn, c)
			return
		}); err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrCommitteeNotFound(c)
		}
		mu = s.locks.getOrCreate(c)
	}
	mu.Lock()
	return mu.Unlock, nil
}

// recordTx() marks the transaction as applied, rejecting a replay
func (s *StateMachine) recordTx(txn lib.RWStoreI, hash []byte) lib.ErrorI {
	bz, err := txn.Get(KeyForTx(hash))
	if err != nil {
		return err
	}
	if bz != nil {
		return ErrDuplicateTransaction(lib.BytesToString(hash))
	}
	return txn.Set(KeyForTx(hash), []byte{1})
}

// lockTable maps committee addresses to their exclusive locks
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable { return &lockTable{locks: make(map[string]*sync.Mutex)} }

func (l *lockTable) get(c crypto.AddressI) (*sync.Mutex, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	mu, ok := l.locks[c.String()]
	return mu, ok
}

func (l *lockTable) getOrCreate(c crypto.AddressI) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	mu, ok := l.locks[c.String()]
	if !ok {
		mu = new(sync.Mutex)
		l.locks[c.String()] = mu
	}
	return mu
}
