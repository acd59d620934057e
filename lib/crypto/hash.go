package crypto

import (
	"encoding/hex"

	ethCrypto "github.com/ethereum/go-ethereum/crypto"
)

const (
	HashSize = 32
)

// Hash() executes the global hashing algorithm (Keccak-256) on input bytes
func Hash(msg []byte) []byte {
	return ethCrypto.Keccak256(msg)
}

// HashString() returns the hex byte version of a hash
func HashString(msg []byte) string { return hex.EncodeToString(Hash(msg)) }
