package fsm

import (
	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/lib/crypto"
)

/* This file contains the recipient ledger: value disbursed by committees is credited here */

// Account is the credited value of a recipient
type Account struct {
	Address lib.HexBytes `json:"address"`
	Amount  uint64       `json:"amount"`
}

// GetAccount() returns the account of the address; an address that never received value has a zero account
func (s *StateMachine) GetAccount(address crypto.AddressI) (account *Account, err lib.ErrorI) {
	err = s.view(func(txn lib.RStoreI) (e lib.ErrorI) {
		account, e = s.getAccount(txn, address)
		return
	})
	return
}

// GetAccounts() returns every credited account in address order
func (s *StateMachine) GetAccounts() (accounts []*Account, err lib.ErrorI) {
	err = s.view(func(txn lib.RStoreI) lib.ErrorI {
		it, e := txn.Iterator(AccountPrefix())
		if e != nil {
			return e
		}
		defer it.Close()
		for ; it.Valid(); it.Next() {
			acc, er := unmarshalAccount(it.Value())
			if er != nil {
				return er
			}
			accounts = append(accounts, acc)
		}
		return nil
	})
	return
}

// getAccount() loads the account or a zero account
func (s *StateMachine) getAccount(txn lib.RStoreI, address crypto.AddressI) (*Account, lib.ErrorI) {
	bz, err := txn.Get(KeyForAccount(address))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return &Account{Address: address.Bytes()}, nil
	}
	return unmarshalAccount(bz)
}

// accountAdd() credits the account; the ledger lock must be held
func (s *StateMachine) accountAdd(txn lib.RWStoreI, address crypto.AddressI, amount uint64) lib.ErrorI {
	account, err := s.getAccount(txn, address)
	if err != nil {
		return err
	}
	if account.Amount+amount < account.Amount {
		return ErrDisbursementFailed("recipient balance would overflow")
	}
	account.Amount += amount
	return txn.Set(KeyForAccount(address), account.marshal())
}
