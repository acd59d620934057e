package fsm

import (
	"fmt"

	"github.com/canopy-network/committee/lib"
	"google.golang.org/protobuf/encoding/protowire"
)

/*
	Records are persisted in the protobuf wire format. Zero values are omitted on encode and
	unknown fields are skipped on decode, so fields may be appended without migrating old records.
*/

// encoder accumulates protobuf fields
type encoder struct{ bz []byte }

func (e *encoder) uint64(num protowire.Number, v uint64) {
	if v == 0 {
		return
	}
	e.bz = protowire.AppendTag(e.bz, num, protowire.VarintType)
	e.bz = protowire.AppendVarint(e.bz, v)
}

func (e *encoder) bool(num protowire.Number, v bool) {
	if v {
		e.uint64(num, 1)
	}
}

func (e *encoder) bytes(num protowire.Number, v []byte) {
	if len(v) == 0 {
		return
	}
	e.bz = protowire.AppendTag(e.bz, num, protowire.BytesType)
	e.bz = protowire.AppendBytes(e.bz, v)
}

func (e *encoder) string(num protowire.Number, v string) { e.bytes(num, []byte(v)) }

// field is one decoded protobuf field; exactly one of varint or bytes is meaningful
type field struct {
	num    protowire.Number
	varint uint64
	bytes  []byte
}

// decode() walks the fields of a record, handing each known wire type to the callback
func decode(bz []byte, fn func(f field)) lib.ErrorI {
	for len(bz) > 0 {
		num, typ, n := protowire.ConsumeTag(bz)
		if n < 0 {
			return lib.ErrUnmarshal(protowire.ParseError(n))
		}
		bz = bz[n:]
		switch typ {
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(bz)
			if m < 0 {
				return lib.ErrUnmarshal(protowire.ParseError(m))
			}
			fn(field{num: num, varint: v})
			n = m
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(bz)
			if m < 0 {
				return lib.ErrUnmarshal(protowire.ParseError(m))
			}
			fn(field{num: num, bytes: append([]byte(nil), v...)})
			n = m
		default:
			// skip unknown wire types
			if n = protowire.ConsumeFieldValue(num, typ, bz); n < 0 {
				return lib.ErrUnmarshal(fmt.Errorf("field %d: %w", num, protowire.ParseError(n)))
			}
		}
		bz = bz[n:]
	}
	return nil
}

func (x *Committee) marshal() []byte {
	e := new(encoder)
	e.bytes(1, x.Address)
	e.bytes(2, x.Manager)
	e.uint64(3, x.MinimumContribution)
	e.uint64(4, x.ApproversCount)
	e.uint64(5, x.Balance)
	e.uint64(6, x.RequestCount)
	e.uint64(7, x.EventCount)
	e.uint64(8, x.RegistryIndex)
	return e.bz
}

func unmarshalCommittee(bz []byte) (*Committee, lib.ErrorI) {
	x := new(Committee)
	return x, decode(bz, func(f field) {
		switch f.num {
		case 1:
			x.Address = f.bytes
		case 2:
			x.Manager = f.bytes
		case 3:
			x.MinimumContribution = f.varint
		case 4:
			x.ApproversCount = f.varint
		case 5:
			x.Balance = f.varint
		case 6:
			x.RequestCount = f.varint
		case 7:
			x.EventCount = f.varint
		case 8:
			x.RegistryIndex = f.varint
		}
	})
}

func (x *Request) marshal() []byte {
	e := new(encoder)
	e.uint64(1, x.Index)
	e.string(2, x.Description)
	e.uint64(3, x.Value)
	e.bytes(4, x.Recipient)
	e.bool(5, x.Complete)
	e.uint64(6, x.ApprovalCount)
	return e.bz
}

func unmarshalRequest(bz []byte) (*Request, lib.ErrorI) {
	x := new(Request)
	return x, decode(bz, func(f field) {
		switch f.num {
		case 1:
			x.Index = f.varint
		case 2:
			x.Description = string(f.bytes)
		case 3:
			x.Value = f.varint
		case 4:
			x.Recipient = f.bytes
		case 5:
			x.Complete = f.varint != 0
		case 6:
			x.ApprovalCount = f.varint
		}
	})
}

func (x *Account) marshal() []byte {
	e := new(encoder)
	e.bytes(1, x.Address)
	e.uint64(2, x.Amount)
	return e.bz
}

func unmarshalAccount(bz []byte) (*Account, lib.ErrorI) {
	x := new(Account)
	return x, decode(bz, func(f field) {
		switch f.num {
		case 1:
			x.Address = f.bytes
		case 2:
			x.Amount = f.varint
		}
	})
}

func (x *Event) marshal() []byte {
	e := new(encoder)
	e.bytes(1, x.Committee)
	e.uint64(2, x.Sequence)
	e.string(3, string(x.EventType))
	e.bytes(4, x.Actor)
	e.uint64(5, x.Amount)
	e.uint64(6, x.Index)
	e.bytes(7, x.Recipient)
	e.bytes(8, x.TxHash)
	return e.bz
}

func unmarshalEvent(bz []byte) (*Event, lib.ErrorI) {
	x := new(Event)
	return x, decode(bz, func(f field) {
		switch f.num {
		case 1:
			x.Committee = f.bytes
		case 2:
			x.Sequence = f.varint
		case 3:
			x.EventType = EventType(f.bytes)
		case 4:
			x.Actor = f.bytes
		case 5:
			x.Amount = f.varint
		case 6:
			x.Index = f.varint
		case 7:
			x.Recipient = f.bytes
		case 8:
			x.TxHash = f.bytes
		}
	})
}
