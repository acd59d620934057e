package crypto

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"

	ethCrypto "github.com/ethereum/go-ethereum/crypto"
)

/* This file implements SECP256K1 keys with uncompressed (64 byte) public keys and ethereum style addressing */

const (
	PublicKeySize  = 64 // uncompressed public key without the SEC1 prefix
	PrivateKeySize = 32
	SignatureSize  = 65 // R || S || V
)

var _ PublicKeyI = &PublicKey{}
var _ PrivateKeyI = &PrivateKey{}

// PrivateKey is a SECP256K1 secret key
type PrivateKey struct {
	*ecdsa.PrivateKey
}

// NewPrivateKey() generates a fresh random private key
func NewPrivateKey() (PrivateKeyI, error) {
	pk, err := ethCrypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{PrivateKey: pk}, nil
}

// NewPrivateKeyFromBytes() converts raw bytes to a private key
func NewPrivateKeyFromBytes(b []byte) (PrivateKeyI, error) {
	pk, err := ethCrypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{PrivateKey: pk}, nil
}

// NewPrivateKeyFromString() converts a hex string to a private key
func NewPrivateKeyFromString(hexString string) (PrivateKeyI, error) {
	bz, err := hex.DecodeString(hexString)
	if err != nil {
		return nil, err
	}
	return NewPrivateKeyFromBytes(bz)
}

// Sign() returns a recoverable signature over the hash of the message
func (s *PrivateKey) Sign(msg []byte) []byte {
	sig, _ := ethCrypto.Sign(Hash(msg), s.PrivateKey)
	return sig
}

// PublicKey() returns the public pair to this private key
func (s *PrivateKey) PublicKey() PublicKeyI {
	return &PublicKey{PublicKey: &s.PrivateKey.PublicKey}
}

func (s *PrivateKey) Bytes() []byte                { return ethCrypto.FromECDSA(s.PrivateKey) }
func (s *PrivateKey) String() string               { return hex.EncodeToString(s.Bytes()) }
func (s *PrivateKey) Equals(i PrivateKeyI) bool    { return bytes.Equal(s.Bytes(), i.Bytes()) }
func (s *PrivateKey) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// PublicKey is a SECP256K1 public key
type PublicKey struct {
	*ecdsa.PublicKey
}

// NewPublicKeyFromBytes() accepts 64 byte (unprefixed) or 65 byte (SEC1 prefixed) public keys
func NewPublicKeyFromBytes(b []byte) (PublicKeyI, error) {
	if len(b) == PublicKeySize {
		b = append([]byte{0x04}, b...) // add the SEC1 prefix
	}
	pub, err := ethCrypto.UnmarshalPubkey(b)
	if err != nil {
		return nil, err
	}
	return &PublicKey{PublicKey: pub}, nil
}

// NewPublicKeyFromString() converts a hex string to a public key
func NewPublicKeyFromString(hexString string) (PublicKeyI, error) {
	bz, err := hex.DecodeString(hexString)
	if err != nil {
		return nil, err
	}
	return NewPublicKeyFromBytes(bz)
}

// Bytes() returns the 64 byte representation of the public key
func (s *PublicKey) Bytes() []byte { return s.bytesWithPrefix()[1:] }

func (s *PublicKey) bytesWithPrefix() []byte { return ethCrypto.FromECDSAPub(s.PublicKey) }

// Address() returns the short version of the public key
func (s *PublicKey) Address() AddressI {
	a := Address(ethCrypto.PubkeyToAddress(*s.PublicKey).Bytes())
	return &a
}

// VerifyBytes() returns true if the digital signature is valid for this public key and the given message
func (s *PublicKey) VerifyBytes(msg []byte, sig []byte) bool {
	if len(sig) == SignatureSize {
		sig = sig[:SignatureSize-1] // drop the recovery id
	}
	return ethCrypto.VerifySignature(s.bytesWithPrefix(), Hash(msg), sig)
}

func (s *PublicKey) String() string               { return hex.EncodeToString(s.Bytes()) }
func (s *PublicKey) Equals(i PublicKeyI) bool     { return bytes.Equal(s.Bytes(), i.Bytes()) }
func (s *PublicKey) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// UnmarshalJSON() is the json.Unmarshaler implementation for PublicKey
func (s *PublicKey) UnmarshalJSON(b []byte) (err error) {
	var hexString string
	if err = json.Unmarshal(b, &hexString); err != nil {
		return
	}
	pk, err := NewPublicKeyFromString(hexString)
	if err != nil {
		return
	}
	*s = *pk.(*PublicKey)
	return
}
