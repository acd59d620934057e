package fsm

import (
	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/lib/crypto"
)

/* Key.go contains prefix keys logic for the underlying store */

var (
	committeePrefix    = []byte{1} // store key prefix for committee summaries
	approverPrefix     = []byte{2} // store key prefix for committee membership
	requestPrefix      = []byte{3} // store key prefix for spending requests
	approvalPrefix     = []byte{4} // store key prefix for per request approvals
	accountPrefix      = []byte{5} // store key prefix for recipient accounts
	registryPrefix     = []byte{6} // store key prefix for the factory's ordered list of committees
	eventPrefix        = []byte{7} // store key prefix for committee event logs
	txPrefix           = []byte{8} // store key prefix for applied transaction hashes
	factoryNoncePrefix = []byte{9} // store key for the factory creation counter
)

/*
- Prefixes group records in the schemaless key-value database

- Length prefixed append is used to be able to easily separate the segments of a key

- BigEndianEncoding is used for uint64 to accommodate the 'lexicographical' sorting nature of the key-value database,
  so iterating a prefix yields requests, events and registry entries in index order
*/

func CommitteePrefix() []byte  { return lib.JoinLenPrefix(committeePrefix) }
func RegistryPrefix() []byte   { return lib.JoinLenPrefix(registryPrefix) }
func AccountPrefix() []byte    { return lib.JoinLenPrefix(accountPrefix) }
func FactoryNonceKey() []byte  { return lib.JoinLenPrefix(factoryNoncePrefix) }
func KeyForTx(h []byte) []byte { return lib.JoinLenPrefix(txPrefix, h) }
func KeyForRegistry(n uint64) []byte {
	return lib.JoinLenPrefix(registryPrefix, formatUint64(n))
}
func KeyForCommittee(c crypto.AddressI) []byte {
	return lib.JoinLenPrefix(committeePrefix, c.Bytes())
}
func KeyForAccount(addr crypto.AddressI) []byte {
	return lib.JoinLenPrefix(accountPrefix, addr.Bytes())
}
func ApproversPrefix(c crypto.AddressI) []byte {
	return lib.JoinLenPrefix(approverPrefix, c.Bytes())
}
func KeyForApprover(c, id crypto.AddressI) []byte {
	return lib.JoinLenPrefix(approverPrefix, c.Bytes(), id.Bytes())
}
func RequestsPrefix(c crypto.AddressI) []byte {
	return lib.JoinLenPrefix(requestPrefix, c.Bytes())
}
func KeyForRequest(c crypto.AddressI, index uint64) []byte {
	return lib.JoinLenPrefix(requestPrefix, c.Bytes(), formatUint64(index))
}
func KeyForApproval(c crypto.AddressI, index uint64, id crypto.AddressI) []byte {
	return lib.JoinLenPrefix(approvalPrefix, c.Bytes(), formatUint64(index), id.Bytes())
}
func EventsPrefix(c crypto.AddressI) []byte {
	return lib.JoinLenPrefix(eventPrefix, c.Bytes())
}
func KeyForEvent(c crypto.AddressI, sequence uint64) []byte {
	return lib.JoinLenPrefix(eventPrefix, c.Bytes(), formatUint64(sequence))
}

// AddressFromKey() extracts the trailing address segment of an approver key
func AddressFromKey(k []byte) (crypto.AddressI, lib.ErrorI) {
	segments, err := lib.DecodeLengthPrefixed(k)
	if err != nil || len(segments) < 2 {
		return nil, ErrInvalidKey(k)
	}
	address, e := crypto.NewAddress(segments[len(segments)-1])
	if e != nil {
		return nil, ErrInvalidKey(k)
	}
	return address, nil
}

func formatUint64(u uint64) []byte { return lib.Uint64ToBytes(u) }
