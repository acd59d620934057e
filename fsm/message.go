package fsm

import (
	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/lib/crypto"
)

/* This file defines the transaction messages and routes a signed transaction to the operation it names */

const (
	MessageCreateCommitteeName = "create_committee"
	MessageContributeName      = "contribute"
	MessageCreateRequestName   = "create_request"
	MessageApproveRequestName  = "approve_request"
	MessageFinalizeRequestName = "finalize_request"

	MaxDescriptionLength = 512 // bytes
)

var (
	_ lib.MessageI = &MessageCreateCommittee{}
	_ lib.MessageI = &MessageContribute{}
	_ lib.MessageI = &MessageCreateRequest{}
	_ lib.MessageI = &MessageApproveRequest{}
	_ lib.MessageI = &MessageFinalizeRequest{}
)

// MessageCreateCommittee deploys a new committee managed by the signer
type MessageCreateCommittee struct {
	MinimumContribution uint64 `json:"minimumContribution"`
}

func (x *MessageCreateCommittee) Name() string      { return MessageCreateCommitteeName }
func (x *MessageCreateCommittee) Check() lib.ErrorI { return nil }

// MessageContribute adds the amount to the committee on behalf of the signer
type MessageContribute struct {
	Committee lib.HexBytes `json:"committee"`
	Amount    uint64       `json:"amount"`
}

func (x *MessageContribute) Name() string      { return MessageContributeName }
func (x *MessageContribute) Check() lib.ErrorI { return checkAddress(x.Committee) }

// MessageCreateRequest proposes a disbursement
type MessageCreateRequest struct {
	Committee   lib.HexBytes `json:"committee"`
	Description string       `json:"description"`
	Value       uint64       `json:"value"`
	Recipient   lib.HexBytes `json:"recipient"`
}

func (x *MessageCreateRequest) Name() string { return MessageCreateRequestName }

// Check() validates the committee, the recipient and the description
func (x *MessageCreateRequest) Check() lib.ErrorI {
	if err := checkAddress(x.Committee); err != nil {
		return err
	}
	if len(x.Recipient) != crypto.AddressSize {
		return ErrRecipientAddressSize()
	}
	if len(x.Description) == 0 {
		return ErrEmptyDescription()
	}
	if len(x.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong()
	}
	return nil
}

// MessageApproveRequest approves the request at the index on behalf of the signer
type MessageApproveRequest struct {
	Committee lib.HexBytes `json:"committee"`
	Index     uint64       `json:"index"`
}

func (x *MessageApproveRequest) Name() string      { return MessageApproveRequestName }
func (x *MessageApproveRequest) Check() lib.ErrorI { return checkAddress(x.Committee) }

// MessageFinalizeRequest disburses the request at the index
type MessageFinalizeRequest struct {
	Committee lib.HexBytes `json:"committee"`
	Index     uint64       `json:"index"`
}

func (x *MessageFinalizeRequest) Name() string      { return MessageFinalizeRequestName }
func (x *MessageFinalizeRequest) Check() lib.ErrorI { return checkAddress(x.Committee) }

// ApplyTransaction() authenticates the signer, validates the message and applies it atomically with the replay record
func (s *StateMachine) ApplyTransaction(tx *lib.Transaction) (*lib.TxResult, lib.ErrorI) {
	if tx == nil {
		return nil, ErrInvalidTxMessage()
	}
	sender, err := tx.Signer()
	if err != nil {
		return nil, err
	}
	msg, err := ParseMessage(tx)
	if err != nil {
		return nil, err
	}
	if err = msg.Check(); err != nil {
		return nil, err
	}
	hash := tx.Hash()
	result := &lib.TxResult{TxHash: lib.BytesToString(hash), Sender: sender.Bytes(), MessageType: msg.Name()}
	switch x := msg.(type) {
	case *MessageCreateCommittee:
		err = s.apply(mutation{operation: x.Name(), factory: true, txHash: hash}, func(txn lib.RWStoreI) lib.ErrorI {
			address, e := s.createCommittee(txn, sender, x.MinimumContribution, hash)
			if e == nil {
				result.Committee = address.Bytes()
			}
			return e
		})
	case *MessageContribute:
		committee := crypto.NewAddressFromBytes(x.Committee)
		result.Committee = x.Committee
		err = s.apply(mutation{operation: x.Name(), committee: committee, txHash: hash}, func(txn lib.RWStoreI) lib.ErrorI {
			return s.contribute(txn, sender, committee, x.Amount, hash)
		})
	case *MessageCreateRequest:
		committee := crypto.NewAddressFromBytes(x.Committee)
		result.Committee = x.Committee
		err = s.apply(mutation{operation: x.Name(), committee: committee, txHash: hash}, func(txn lib.RWStoreI) lib.ErrorI {
			index, e := s.createRequest(txn, sender, committee, x.Description, x.Value, crypto.NewAddressFromBytes(x.Recipient), hash)
			if e == nil {
				result.Index = &index
			}
			return e
		})
	case *MessageApproveRequest:
		committee := crypto.NewAddressFromBytes(x.Committee)
		result.Committee, result.Index = x.Committee, &x.Index
		err = s.apply(mutation{operation: x.Name(), committee: committee, txHash: hash}, func(txn lib.RWStoreI) lib.ErrorI {
			return s.approveRequest(txn, sender, committee, x.Index, hash)
		})
	case *MessageFinalizeRequest:
		committee := crypto.NewAddressFromBytes(x.Committee)
		result.Committee, result.Index = x.Committee, &x.Index
		err = s.apply(mutation{operation: x.Name(), committee: committee, ledger: true, txHash: hash}, func(txn lib.RWStoreI) lib.ErrorI {
			return s.finalizeRequest(txn, sender, committee, x.Index, hash)
		})
	default:
		return nil, ErrUnknownMessage(msg.Name())
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ParseMessage() decodes the payload of the transaction according to its type
func ParseMessage(tx *lib.Transaction) (lib.MessageI, lib.ErrorI) {
	var msg lib.MessageI
	switch tx.MessageType {
	case MessageCreateCommitteeName:
		msg = new(MessageCreateCommittee)
	case MessageContributeName:
		msg = new(MessageContribute)
	case MessageCreateRequestName:
		msg = new(MessageCreateRequest)
	case MessageApproveRequestName:
		msg = new(MessageApproveRequest)
	case MessageFinalizeRequestName:
		msg = new(MessageFinalizeRequest)
	default:
		return nil, ErrUnknownMessage(tx.MessageType)
	}
	if len(tx.Msg) == 0 {
		return nil, ErrInvalidTxMessage()
	}
	if err := lib.UnmarshalJSON(tx.Msg, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// checkAddress() validates a committee address field
func checkAddress(address []byte) lib.ErrorI {
	if len(address) == 0 {
		return ErrAddressEmpty()
	}
	if len(address) != crypto.AddressSize {
		return ErrAddressSize()
	}
	return nil
}
