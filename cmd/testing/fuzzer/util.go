package main

import (
	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/lib/crypto"
)

// invalid() rolls whether the next transaction should be invalid
func (f *Fuzzer) invalid() bool {
	return f.rand.Intn(100) < f.config.PercentInvalidTransactions
}

func (f *Fuzzer) getRandomKey() crypto.PrivateKeyI {
	return f.keys[f.rand.Intn(len(f.keys))]
}

func (f *Fuzzer) getRandomAmountUpTo(limit uint64) uint64 {
	return uint64(f.rand.Int63n(int64(limit) + 1))
}

// getKey() returns the fuzzer key for the address, nil if the fuzzer doesn't hold it
func (f *Fuzzer) getKey(address []byte) crypto.PrivateKeyI {
	a := crypto.NewAddressFromBytes(address)
	for _, k := range f.keys {
		if k.PublicKey().Address().Equals(a) {
			return k
		}
	}
	return nil
}

// getOtherKey() returns a fuzzer key that isn't the address, nil if there is none
func (f *Fuzzer) getOtherKey(address []byte) crypto.PrivateKeyI {
	a := crypto.NewAddressFromBytes(address)
	start := f.rand.Intn(len(f.keys))
	for i := range f.keys {
		k := f.keys[(start+i)%len(f.keys)]
		if !k.PublicKey().Address().Equals(a) {
			return k
		}
	}
	return nil
}

// expectRejected() checks that the node refused an invalid transaction
func (f *Fuzzer) expectRejected(txType, reason string, err lib.ErrorI) lib.ErrorI {
	if err == nil {
		return ErrExpectedInvalid(txType, reason)
	}
	f.log.Warnf("Executed invalid %s transaction: %s: %s", txType, reason, err.Error())
	return nil
}

// executed() logs a valid transaction that the node applied
func (f *Fuzzer) executed(result *lib.TxResult, err lib.ErrorI) lib.ErrorI {
	if err != nil {
		return err
	}
	f.log.Infof("Executed valid %s transaction: %s", result.MessageType, result.TxHash)
	return nil
}

// sendBadSignature() signs the message and corrupts the signature in one of several ways
func (f *Fuzzer) sendBadSignature(pk crypto.PrivateKeyI, msg lib.MessageI) lib.ErrorI {
	tx, err := lib.NewTransaction(pk, msg)
	if err != nil {
		return err
	}
	switch f.rand.Intn(4) {
	case 0:
		tx.Signature = nil
	case 1:
		tx.Signature.Signature = pk.Sign([]byte("foo"))
	case 2:
		if other := f.getOtherKey(pk.PublicKey().Address().Bytes()); other != nil {
			tx.Signature.PublicKey = other.PublicKey().Bytes()
		} else {
			tx.Signature.Signature = nil
		}
	case 3:
		tx.Signature.Signature = []byte("foo")
	}
	_, err = f.client.Transaction(tx)
	return f.expectRejected(msg.Name(), BadSigReason, err)
}
