package fsm

import (
	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/lib/crypto"
)

// EventType names what happened to a committee
type EventType string

const (
	EventCommitteeCreated EventType = "committee_created"
	EventContribution     EventType = "contribution"
	EventRequestCreated   EventType = "request_created"
	EventRequestApproved  EventType = "request_approved"
	EventRequestFinalized EventType = "request_finalized"
)

// Event is an entry of a committee's append-only log, written in the same transaction as the change it records
type Event struct {
	Committee lib.HexBytes `json:"committee"`
	Sequence  uint64       `json:"sequence"`
	EventType EventType    `json:"eventType"`
	Actor     lib.HexBytes `json:"actor"`               // the caller of the operation
	Amount    uint64       `json:"amount,omitempty"`    // contributed, requested or disbursed value; the minimum for creation
	Index     uint64       `json:"index"`               // the request index, for request events
	Recipient lib.HexBytes `json:"recipient,omitempty"` // the request recipient, for request events
	TxHash    lib.HexBytes `json:"txHash,omitempty"`    // the transaction that caused the event, if any
}

// appendEvent() stamps the event with the committee's next sequence; the caller persists the committee
func (s *StateMachine) appendEvent(txn lib.WStoreI, c *Committee, e *Event) lib.ErrorI {
	e.Committee, e.Sequence = c.Address, c.EventCount
	if err := txn.Set(KeyForEvent(crypto.NewAddressFromBytes(c.Address), e.Sequence), e.marshal()); err != nil {
		return err
	}
	c.EventCount++
	return nil
}

// GetEvents() returns the committee's event log in order
func (s *StateMachine) GetEvents(committee crypto.AddressI) (events []*Event, err lib.ErrorI) {
	err = s.view(func(txn lib.RStoreI) lib.ErrorI {
		if _, e := s.getCommittee(txn, committee); e != nil {
			return e
		}
		it, e := txn.Iterator(EventsPrefix(committee))
		if e != nil {
			return e
		}
		defer it.Close()
		for ; it.Valid(); it.Next() {
			event, er := unmarshalEvent(it.Value())
			if er != nil {
				return er
			}
			events = append(events, event)
		}
		return nil
	})
	return
}

// GetLatestEvents() returns up to limit of the committee's most recent events, newest first; a zero limit returns all
func (s *StateMachine) GetLatestEvents(committee crypto.AddressI, limit uint64) (events []*Event, err lib.ErrorI) {
	err = s.view(func(txn lib.RStoreI) lib.ErrorI {
		if _, e := s.getCommittee(txn, committee); e != nil {
			return e
		}
		it, e := txn.RevIterator(EventsPrefix(committee))
		if e != nil {
			return e
		}
		defer it.Close()
		for ; it.Valid() && (limit == 0 || uint64(len(events)) < limit); it.Next() {
			event, er := unmarshalEvent(it.Value())
			if er != nil {
				return er
			}
			events = append(events, event)
		}
		return nil
	})
	return
}
