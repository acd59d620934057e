package lib

import (
	"encoding/json"
	"time"

	"github.com/canopy-network/committee/lib/crypto"
	"google.golang.org/protobuf/encoding/protowire"
)

/*
	This file defines the signed envelope every state mutation travels in. The signer's address is the
	caller identity handed to the state machine.
*/

// MessageI is the payload of a transaction
type MessageI interface {
	// Check() is the stateless validation of the message fields
	Check() ErrorI
	// Name() is the message type carried in the transaction envelope
	Name() string
}

// Transaction is a signed message
type Transaction struct {
	MessageType string          `json:"type"`      // the name of the message
	Msg         json.RawMessage `json:"msg"`       // the json encoded message, signed verbatim
	Signature   *Signature      `json:"signature"` // the signer's public key and signature
	Time        uint64          `json:"time"`      // unix microseconds, adds entropy so identical messages hash differently
}

// Signature pairs the public key with the signature it produced
type Signature struct {
	PublicKey HexBytes `json:"publicKey"`
	Signature HexBytes `json:"signature"`
}

// NewTransaction() builds and signs a transaction for the message
func NewTransaction(pk crypto.PrivateKeyI, msg MessageI) (*Transaction, ErrorI) {
	bz, err := MarshalJSON(msg)
	if err != nil {
		return nil, err
	}
	tx := &Transaction{
		MessageType: msg.Name(),
		Msg:         bz,
		Time:        uint64(time.Now().UnixMicro()),
	}
	return tx, tx.Sign(pk)
}

// Sign() signs the transaction sign bytes and attaches the signature
func (x *Transaction) Sign(pk crypto.PrivateKeyI) ErrorI {
	sig := pk.Sign(x.SignBytes())
	if sig == nil {
		return ErrSign(ErrInvalidArgument())
	}
	x.Signature = &Signature{
		PublicKey: pk.PublicKey().Bytes(),
		Signature: sig,
	}
	return nil
}

// SignBytes() is the canonical encoding of the unsigned transaction
func (x *Transaction) SignBytes() (bz []byte) {
	bz = protowire.AppendTag(bz, 1, protowire.BytesType)
	bz = protowire.AppendString(bz, x.MessageType)
	bz = protowire.AppendTag(bz, 2, protowire.BytesType)
	bz = protowire.AppendBytes(bz, x.Msg)
	bz = protowire.AppendTag(bz, 3, protowire.VarintType)
	bz = protowire.AppendVarint(bz, x.Time)
	return
}

// Hash() identifies the transaction; it covers the sign bytes only so the signature cannot alter it
func (x *Transaction) Hash() []byte {
	return crypto.Hash(x.SignBytes())
}

// HashString() returns the hex form of the transaction hash
func (x *Transaction) HashString() string {
	return BytesToString(x.Hash())
}

// Signer() verifies the signature and returns the address of the signer
func (x *Transaction) Signer() (crypto.AddressI, ErrorI) {
	if x.Signature == nil || len(x.Signature.Signature) == 0 || len(x.Signature.PublicKey) == 0 {
		return nil, ErrEmptySignature()
	}
	publicKey, err := crypto.NewPublicKeyFromBytes(x.Signature.PublicKey)
	if err != nil {
		return nil, ErrNewPublicKey(err)
	}
	if !publicKey.VerifyBytes(x.SignBytes(), x.Signature.Signature) {
		return nil, ErrInvalidSignature()
	}
	return publicKey.Address(), nil
}

// TxResult is the outcome of a successfully applied transaction
type TxResult struct {
	TxHash      string   `json:"txHash"`
	Sender      HexBytes `json:"sender"`
	MessageType string   `json:"messageType"`
	Committee   HexBytes `json:"committee,omitempty"` // the committee the message acted on
	Index       *uint64  `json:"index,omitempty"`     // the request index, when the message created or addressed a request
}

func ErrEmptySignature() ErrorI {
	return NewError(CodeEmptySignature, StateMachineModule, "empty signature")
}

func ErrInvalidSignature() ErrorI {
	return NewError(CodeInvalidSignature, StateMachineModule, "invalid signature")
}
