package crypto

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethCrypto "github.com/ethereum/go-ethereum/crypto"
)

const (
	AddressSize = 20
)

// Address is the 20 byte identity of a member, a recipient or a committee
type Address []byte

var _ AddressI = &Address{}

// NewAddress() copies the bytes into an Address, enforcing the fixed size
func NewAddress(b []byte) (AddressI, error) {
	if len(b) != AddressSize {
		return nil, fmt.Errorf("address must be %d bytes, got %d", AddressSize, len(b))
	}
	a := make(Address, AddressSize)
	copy(a, b)
	return &a, nil
}

// NewAddressFromBytes() wraps bytes already known to be a valid address
func NewAddressFromBytes(b []byte) AddressI {
	a := Address(b)
	return &a
}

// NewAddressFromString() decodes a hex string into an Address
func NewAddressFromString(hexString string) (AddressI, error) {
	bz, err := hex.DecodeString(hexString)
	if err != nil {
		return nil, err
	}
	return NewAddress(bz)
}

// CreateAddress() derives the address of the nonce-th instance created by the deployer (the CREATE rule)
func CreateAddress(deployer AddressI, nonce uint64) AddressI {
	a := Address(ethCrypto.CreateAddress(common.BytesToAddress(deployer.Bytes()), nonce).Bytes())
	return &a
}

func (a *Address) Bytes() []byte          { return (*a)[:] }
func (a *Address) String() string         { return hex.EncodeToString(a.Bytes()) }
func (a *Address) Equals(e AddressI) bool { return e != nil && bytes.Equal(a.Bytes(), e.Bytes()) }

// MarshalJSON() is the json.Marshaller implementation for Address
func (a *Address) MarshalJSON() ([]byte, error) { return json.Marshal(a.String()) }

// UnmarshalJSON() is the json.Unmarshaler implementation for Address
func (a *Address) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	addr, err := NewAddressFromString(s)
	if err != nil {
		return err
	}
	*a = *addr.(*Address)
	return nil
}
