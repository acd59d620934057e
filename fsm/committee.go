package fsm

import (
	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/lib/crypto"
)

/* This file implements the governance of a single committee: membership, spending requests, quorum and disbursement */

// Committee is the summary record of one fund pool
type Committee struct {
	Address             lib.HexBytes `json:"address"`             // the handle of the committee
	Manager             lib.HexBytes `json:"manager"`             // the creator, the only identity able to propose and finalize
	MinimumContribution uint64       `json:"minimumContribution"` // the smallest contribution that confers membership
	ApproversCount      uint64       `json:"approversCount"`      // the number of members, maintained incrementally
	Balance             uint64       `json:"balance"`             // contributed value not yet disbursed
	RequestCount        uint64       `json:"requestCount"`        // the number of requests; also the next request index
	EventCount          uint64       `json:"eventCount"`          // the number of events; also the next event sequence
	RegistryIndex       uint64       `json:"registryIndex"`       // the position of the committee in the factory registry
}

// Request is a spending proposal; description, value and recipient never change after creation
type Request struct {
	Index         uint64       `json:"index"`         // the permanent identifier of the request within the committee
	Description   string       `json:"description"`   // what the value is for
	Value         uint64       `json:"value"`         // the amount to disburse
	Recipient     lib.HexBytes `json:"recipient"`     // who receives the value
	Complete      bool         `json:"complete"`      // set exactly once, when the value was disbursed
	ApprovalCount uint64       `json:"approvalCount"` // the number of distinct members that approved
}

// Contribute() adds value to the committee balance; a contribution of at least the minimum makes the caller a member
func (s *StateMachine) Contribute(caller, committee crypto.AddressI, amount uint64) lib.ErrorI {
	return s.apply(mutation{operation: "contribute", committee: committee}, func(txn lib.RWStoreI) lib.ErrorI {
		return s.contribute(txn, caller, committee, amount, nil)
	})
}

// CreateRequest() appends a spending request; only the manager may propose and the balance is not checked until finalize
func (s *StateMachine) CreateRequest(caller, committee crypto.AddressI, description string, value uint64, recipient crypto.AddressI) (index uint64, err lib.ErrorI) {
	err = s.apply(mutation{operation: "create_request", committee: committee}, func(txn lib.RWStoreI) (e lib.ErrorI) {
		index, e = s.createRequest(txn, caller, committee, description, value, recipient, nil)
		return
	})
	return
}

// ApproveRequest() records the caller's approval of a request
func (s *StateMachine) ApproveRequest(caller, committee crypto.AddressI, index uint64) lib.ErrorI {
	return s.apply(mutation{operation: "approve_request", committee: committee}, func(txn lib.RWStoreI) lib.ErrorI {
		return s.approveRequest(txn, caller, committee, index, nil)
	})
}

// FinalizeRequest() disburses a majority approved request to its recipient and closes it
func (s *StateMachine) FinalizeRequest(caller, committee crypto.AddressI, index uint64) lib.ErrorI {
	return s.apply(mutation{operation: "finalize_request", committee: committee, ledger: true}, func(txn lib.RWStoreI) lib.ErrorI {
		return s.finalizeRequest(txn, caller, committee, index, nil)
	})
}

// contribute() implements Contribute inside a transaction
func (s *StateMachine) contribute(txn lib.RWStoreI, caller, committee crypto.AddressI, amount uint64, txHash []byte) lib.ErrorI {
	c, err := s.getCommittee(txn, committee)
	if err != nil {
		return err
	}
	if amount < c.MinimumContribution {
		return ErrInsufficientContribution(amount, c.MinimumContribution)
	}
	if c.Balance+amount < c.Balance {
		return ErrBalanceOverflow()
	}
	isApprover, err := s.isApprover(txn, committee, caller)
	if err != nil {
		return err
	}
	c.Balance += amount
	if !isApprover {
		// membership is monotonic and counted once per identity
		if err = txn.Set(KeyForApprover(committee, caller), []byte{1}); err != nil {
			return err
		}
		c.ApproversCount++
	}
	if err = s.appendEvent(txn, c, &Event{EventType: EventContribution, Actor: caller.Bytes(), Amount: amount, TxHash: txHash}); err != nil {
		return err
	}
	if err = s.setCommittee(txn, c); err != nil {
		return err
	}
	s.Metrics.ObserveContribution(amount)
	s.log.Debugf("%s contributed %d to committee %s (approvers=%d balance=%d)", caller, amount, committee, c.ApproversCount, c.Balance)
	return nil
}

// createRequest() implements CreateRequest inside a transaction
func (s *StateMachine) createRequest(txn lib.RWStoreI, caller, committee crypto.AddressI, description string, value uint64, recipient crypto.AddressI, txHash []byte) (uint64, lib.ErrorI) {
	c, err := s.getCommittee(txn, committee)
	if err != nil {
		return 0, err
	}
	if !caller.Equals(crypto.NewAddressFromBytes(c.Manager)) {
		return 0, ErrNotManager()
	}
	request := &Request{
		Index:       c.RequestCount,
		Description: description,
		Value:       value,
		Recipient:   recipient.Bytes(),
	}
	if err = s.setRequest(txn, committee, request); err != nil {
		return 0, err
	}
	c.RequestCount++
	index := request.Index
	if err = s.appendEvent(txn, c, &Event{EventType: EventRequestCreated, Actor: caller.Bytes(), Amount: value, Index: index, Recipient: recipient.Bytes(), TxHash: txHash}); err != nil {
		return 0, err
	}
	if err = s.setCommittee(txn, c); err != nil {
		return 0, err
	}
	s.Metrics.ObserveRequestCreated()
	s.log.Debugf("Manager created request %d for %d to %s in committee %s", index, value, recipient, committee)
	return index, nil
}

// approveRequest() implements ApproveRequest inside a transaction
func (s *StateMachine) approveRequest(txn lib.RWStoreI, caller, committee crypto.AddressI, index uint64, txHash []byte) lib.ErrorI {
	c, err := s.getCommittee(txn, committee)
	if err != nil {
		return err
	}
	// preconditions in order: exists, member, open, not yet approved by the caller
	request, err := s.getRequest(txn, committee, index)
	if err != nil {
		return err
	}
	isApprover, err := s.isApprover(txn, committee, caller)
	if err != nil {
		return err
	}
	if !isApprover {
		return ErrNotApprover()
	}
	if request.Complete {
		return ErrAlreadyCompleted()
	}
	approved, err := s.hasApproved(txn, committee, index, caller)
	if err != nil {
		return err
	}
	if approved {
		return ErrAlreadyApproved()
	}
	if err = txn.Set(KeyForApproval(committee, index, caller), []byte{1}); err != nil {
		return err
	}
	request.ApprovalCount++
	if err = s.setRequest(txn, committee, request); err != nil {
		return err
	}
	if err = s.appendEvent(txn, c, &Event{EventType: EventRequestApproved, Actor: caller.Bytes(), Index: index, TxHash: txHash}); err != nil {
		return err
	}
	if err = s.setCommittee(txn, c); err != nil {
		return err
	}
	s.Metrics.ObserveApproval()
	s.log.Debugf("%s approved request %d in committee %s (%d/%d)", caller, index, committee, request.ApprovalCount, c.ApproversCount)
	return nil
}

// finalizeRequest() implements FinalizeRequest inside a transaction
func (s *StateMachine) finalizeRequest(txn lib.RWStoreI, caller, committee crypto.AddressI, index uint64, txHash []byte) lib.ErrorI {
	c, err := s.getCommittee(txn, committee)
	if err != nil {
		return err
	}
	// preconditions in order: exists, manager, open, strict majority of the current members
	request, err := s.getRequest(txn, committee, index)
	if err != nil {
		return err
	}
	if !caller.Equals(crypto.NewAddressFromBytes(c.Manager)) {
		return ErrNotManager()
	}
	if request.Complete {
		return ErrAlreadyCompleted()
	}
	if !HasMajority(request.ApprovalCount, c.ApproversCount) {
		return ErrInsufficientApprovals(request.ApprovalCount, c.ApproversCount)
	}
	// disbursement: debit the committee, credit the recipient, close the request
	if c.Balance < request.Value {
		return ErrDisbursementFailed("insufficient committee balance")
	}
	recipient := crypto.NewAddressFromBytes(request.Recipient)
	isCommittee, err := s.isCommittee(txn, recipient)
	if err != nil {
		return err
	}
	if isCommittee {
		// a committee only accepts value through contributions
		return ErrDisbursementFailed("recipient rejects the transfer")
	}
	if err = s.accountAdd(txn, recipient, request.Value); err != nil {
		return err
	}
	c.Balance -= request.Value
	request.Complete = true
	if err = s.setRequest(txn, committee, request); err != nil {
		return err
	}
	if err = s.appendEvent(txn, c, &Event{EventType: EventRequestFinalized, Actor: caller.Bytes(), Amount: request.Value, Index: index, Recipient: request.Recipient, TxHash: txHash}); err != nil {
		return err
	}
	if err = s.setCommittee(txn, c); err != nil {
		return err
	}
	s.Metrics.ObserveFinalization(request.Value)
	s.log.Debugf("Request %d of committee %s finalized, %d disbursed to %s", index, committee, request.Value, recipient)
	return nil
}

// HasMajority() is the quorum rule: strictly more than half of the members approved
func HasMajority(approvals, approvers uint64) bool {
	// 2*approvals > approvers, written without the multiplication so it can't overflow
	return approvals > approvers-approvals && approvals <= approvers
}

// ACCESSORS BELOW

// GetCommittee() returns the summary of a committee
func (s *StateMachine) GetCommittee(committee crypto.AddressI) (c *Committee, err lib.ErrorI) {
	err = s.view(func(txn lib.RStoreI) (e lib.ErrorI) {
		c, e = s.getCommittee(txn, committee)
		return
	})
	return
}

// Manager() returns the manager of the committee
func (s *StateMachine) Manager(committee crypto.AddressI) (crypto.AddressI, lib.ErrorI) {
	c, err := s.GetCommittee(committee)
	if err != nil {
		return nil, err
	}
	return crypto.NewAddressFromBytes(c.Manager), nil
}

// MinimumContribution() returns the smallest contribution that confers membership
func (s *StateMachine) MinimumContribution(committee crypto.AddressI) (uint64, lib.ErrorI) {
	c, err := s.GetCommittee(committee)
	if err != nil {
		return 0, err
	}
	return c.MinimumContribution, nil
}

// ApproversCount() returns the number of members
func (s *StateMachine) ApproversCount(committee crypto.AddressI) (uint64, lib.ErrorI) {
	c, err := s.GetCommittee(committee)
	if err != nil {
		return 0, err
	}
	return c.ApproversCount, nil
}

// Balance() returns the undisbursed value of the committee
func (s *StateMachine) Balance(committee crypto.AddressI) (uint64, lib.ErrorI) {
	c, err := s.GetCommittee(committee)
	if err != nil {
		return 0, err
	}
	return c.Balance, nil
}

// RequestCount() returns the number of requests of the committee
func (s *StateMachine) RequestCount(committee crypto.AddressI) (uint64, lib.ErrorI) {
	c, err := s.GetCommittee(committee)
	if err != nil {
		return 0, err
	}
	return c.RequestCount, nil
}

// IsApprover() returns true if the identity is a member of the committee
func (s *StateMachine) IsApprover(committee, id crypto.AddressI) (isApprover bool, err lib.ErrorI) {
	err = s.view(func(txn lib.RStoreI) (e lib.ErrorI) {
		if _, e = s.getCommittee(txn, committee); e != nil {
			return
		}
		isApprover, e = s.isApprover(txn, committee, id)
		return
	})
	return
}

// GetApprovers() lists the members of the committee in address order
func (s *StateMachine) GetApprovers(committee crypto.AddressI) (approvers []crypto.AddressI, err lib.ErrorI) {
	err = s.view(func(txn lib.RStoreI) lib.ErrorI {
		if _, e := s.getCommittee(txn, committee); e != nil {
			return e
		}
		it, e := txn.Iterator(ApproversPrefix(committee))
		if e != nil {
			return e
		}
		defer it.Close()
		for ; it.Valid(); it.Next() {
			address, er := AddressFromKey(it.Key())
			if er != nil {
				return er
			}
			approvers = append(approvers, address)
		}
		return nil
	})
	return
}

// GetRequest() returns the request at the index
func (s *StateMachine) GetRequest(committee crypto.AddressI, index uint64) (r *Request, err lib.ErrorI) {
	err = s.view(func(txn lib.RStoreI) (e lib.ErrorI) {
		if _, e = s.getCommittee(txn, committee); e != nil {
			return
		}
		r, e = s.getRequest(txn, committee, index)
		return
	})
	return
}

// GetRequests() returns every request of the committee in index order
func (s *StateMachine) GetRequests(committee crypto.AddressI) (requests []*Request, err lib.ErrorI) {
	err = s.view(func(txn lib.RStoreI) lib.ErrorI {
		if _, e := s.getCommittee(txn, committee); e != nil {
			return e
		}
		it, e := txn.Iterator(RequestsPrefix(committee))
		if e != nil {
			return e
		}
		defer it.Close()
		for ; it.Valid(); it.Next() {
			r, er := unmarshalRequest(it.Value())
			if er != nil {
				return er
			}
			requests = append(requests, r)
		}
		return nil
	})
	return
}

// HasApproved() returns true if the identity approved the request
func (s *StateMachine) HasApproved(committee crypto.AddressI, index uint64, id crypto.AddressI) (approved bool, err lib.ErrorI) {
	err = s.view(func(txn lib.RStoreI) (e lib.ErrorI) {
		if _, e = s.getCommittee(txn, committee); e != nil {
			return
		}
		if _, e = s.getRequest(txn, committee, index); e != nil {
			return
		}
		approved, e = s.hasApproved(txn, committee, index, id)
		return
	})
	return
}

// STORE HELPERS BELOW

// getCommittee() loads the committee summary, failing if the address is not a committee
func (s *StateMachine) getCommittee(txn lib.RStoreI, committee crypto.AddressI) (*Committee, lib.ErrorI) {
	bz, err := txn.Get(KeyForCommittee(committee))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, ErrCommitteeNotFound(committee)
	}
	return unmarshalCommittee(bz)
}

// setCommittee() persists the committee summary
func (s *StateMachine) setCommittee(txn lib.WStoreI, c *Committee) lib.ErrorI {
	return txn.Set(KeyForCommittee(crypto.NewAddressFromBytes(c.Address)), c.marshal())
}

// getRequest() loads a request, failing with NotFound if the index was never created
func (s *StateMachine) getRequest(txn lib.RStoreI, committee crypto.AddressI, index uint64) (*Request, lib.ErrorI) {
	bz, err := txn.Get(KeyForRequest(committee, index))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, ErrNotFound(index)
	}
	return unmarshalRequest(bz)
}

// setRequest() persists a request
func (s *StateMachine) setRequest(txn lib.WStoreI, committee crypto.AddressI, r *Request) lib.ErrorI {
	return txn.Set(KeyForRequest(committee, r.Index), r.marshal())
}

// isApprover() checks the membership record of the identity
func (s *StateMachine) isApprover(txn lib.RStoreI, committee, id crypto.AddressI) (bool, lib.ErrorI) {
	bz, err := txn.Get(KeyForApprover(committee, id))
	return bz != nil, err
}

// hasApproved() checks the approval record of the identity for the request
func (s *StateMachine) hasApproved(txn lib.RStoreI, committee crypto.AddressI, index uint64, id crypto.AddressI) (bool, lib.ErrorI) {
	bz, err := txn.Get(KeyForApproval(committee, index, id))
	return bz != nil, err
}
