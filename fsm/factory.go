package fsm

import (
	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/lib/crypto"
)

/* This file implements the committee factory: creation and the ordered registry of deployed committees */

// CreateCommittee() creates a new committee managed by the caller and appends it to the registry
func (s *StateMachine) CreateCommittee(caller crypto.AddressI, minimumContribution uint64) (address crypto.AddressI, err lib.ErrorI) {
	err = s.apply(mutation{operation: "create_committee", factory: true}, func(txn lib.RWStoreI) (e lib.ErrorI) {
		address, e = s.createCommittee(txn, caller, minimumContribution, nil)
		return
	})
	return
}

// createCommittee() implements CreateCommittee inside a transaction
func (s *StateMachine) createCommittee(txn lib.RWStoreI, caller crypto.AddressI, minimumContribution uint64, txHash []byte) (crypto.AddressI, lib.ErrorI) {
	nonce, err := s.getFactoryNonce(txn)
	if err != nil {
		return nil, err
	}
	// the handle is derived from the factory address and its creation counter
	address := crypto.CreateAddress(s.factory, nonce)
	exists, err := s.isCommittee(txn, address)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrCommitteeExists(address)
	}
	c := &Committee{
		Address:             address.Bytes(),
		Manager:             caller.Bytes(),
		MinimumContribution: minimumContribution,
		RegistryIndex:       nonce,
	}
	if err = txn.Set(KeyForRegistry(nonce), address.Bytes()); err != nil {
		return nil, err
	}
	if err = s.setFactoryNonce(txn, nonce+1); err != nil {
		return nil, err
	}
	if err = s.appendEvent(txn, c, &Event{EventType: EventCommitteeCreated, Actor: caller.Bytes(), Amount: minimumContribution, TxHash: txHash}); err != nil {
		return nil, err
	}
	if err = s.setCommittee(txn, c); err != nil {
		return nil, err
	}
	s.Metrics.ObserveCommitteeCreated()
	s.log.Infof("Committee %s created by %s with minimum contribution %d", address, caller, minimumContribution)
	return address, nil
}

// GetDeployedCommittees() returns every committee in creation order
func (s *StateMachine) GetDeployedCommittees() (committees []crypto.AddressI, err lib.ErrorI) {
	err = s.view(func(txn lib.RStoreI) lib.ErrorI {
		it, e := txn.Iterator(RegistryPrefix())
		if e != nil {
			return e
		}
		defer it.Close()
		for ; it.Valid(); it.Next() {
			committees = append(committees, crypto.NewAddressFromBytes(it.Value()))
		}
		return nil
	})
	return
}

// IsCommittee() returns true if the address belongs to a deployed committee
func (s *StateMachine) IsCommittee(address crypto.AddressI) (isCommittee bool, err lib.ErrorI) {
	err = s.view(func(txn lib.RStoreI) (e lib.ErrorI) {
		isCommittee, e = s.isCommittee(txn, address)
		return
	})
	return
}

func (s *StateMachine) isCommittee(txn lib.RStoreI, address crypto.AddressI) (bool, lib.ErrorI) {
	bz, err := txn.Get(KeyForCommittee(address))
	return bz != nil, err
}

// getFactoryNonce() returns the number of committees created so far
func (s *StateMachine) getFactoryNonce(txn lib.RStoreI) (uint64, lib.ErrorI) {
	bz, err := txn.Get(FactoryNonceKey())
	if err != nil || bz == nil {
		return 0, err
	}
	return lib.BytesToUint64(bz)
}

func (s *StateMachine) setFactoryNonce(txn lib.WStoreI, nonce uint64) lib.ErrorI {
	return txn.Set(FactoryNonceKey(), formatUint64(nonce))
}
