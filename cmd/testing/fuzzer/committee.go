package main

import (
	"bytes"
	"fmt"

	"github.com/canopy-network/committee/fsm"
	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/lib/crypto"
)

const maxMinimumContribution = 10

// CreateCommittee() deploys a committee with a random minimum contribution
func (f *Fuzzer) CreateCommittee() lib.ErrorI {
	pk, minimum := f.getRandomKey(), f.getRandomAmountUpTo(maxMinimumContribution)
	if f.invalid() {
		return f.sendBadSignature(pk, &fsm.MessageCreateCommittee{MinimumContribution: minimum})
	}
	return f.executed(f.client.TxCreateCommittee(pk, minimum))
}

// Contribute() contributes at least the minimum from a random key
func (f *Fuzzer) Contribute(committee crypto.AddressI) lib.ErrorI {
	c, err := f.client.Committee(committee)
	if err != nil {
		return err
	}
	pk := f.getRandomKey()
	if f.invalid() {
		if c.MinimumContribution > 0 {
			_, err = f.client.TxContribute(pk, committee, f.getRandomAmountUpTo(c.MinimumContribution-1))
			return f.expectRejected(ContributeMsgName, BelowMinimumReason, err)
		}
		return f.sendBadSignature(pk, &fsm.MessageContribute{Committee: committee.Bytes(), Amount: 1})
	}
	return f.executed(f.client.TxContribute(pk, committee, c.MinimumContribution+f.getRandomAmountUpTo(maxMinimumContribution)))
}

// CreateRequest() proposes a disbursement to a random fuzzer key, at times for more than the balance
func (f *Fuzzer) CreateRequest(committee crypto.AddressI) lib.ErrorI {
	c, err := f.client.Committee(committee)
	if err != nil {
		return err
	}
	manager := f.getKey(c.Manager)
	if manager == nil {
		f.log.Debugf("Skipping committee %s, its manager isn't a fuzzer key", committee)
		return nil
	}
	description := fmt.Sprintf("fuzz request %d", c.RequestCount)
	value, recipient := 1+f.getRandomAmountUpTo(c.Balance+maxMinimumContribution), f.getRandomKey().PublicKey().Address()
	if f.invalid() {
		if other := f.getOtherKey(c.Manager); other != nil {
			_, err = f.client.TxCreateRequest(other, committee, description, value, recipient)
			return f.expectRejected(CreateRequestMsgName, NotManagerReason, err)
		}
		return f.sendBadSignature(manager, &fsm.MessageCreateRequest{
			Committee:   committee.Bytes(),
			Description: description,
			Value:       value,
			Recipient:   recipient.Bytes(),
		})
	}
	return f.executed(f.client.TxCreateRequest(manager, committee, description, value, recipient))
}

// ApproveRequest() approves a random open request with a member that hasn't approved it yet
func (f *Fuzzer) ApproveRequest(committee crypto.AddressI) lib.ErrorI {
	request, err := f.getOpenRequest(committee)
	if err != nil || request == nil {
		return err
	}
	var pending, approved, outsiders []crypto.PrivateKeyI
	for _, k := range f.keys {
		isApprover, e := f.client.IsApprover(committee, k.PublicKey().Address())
		if e != nil {
			return e
		}
		if !isApprover {
			outsiders = append(outsiders, k)
			continue
		}
		hasApproved, e := f.client.HasApproved(committee, request.Index, k.PublicKey().Address())
		if e != nil {
			return e
		}
		if hasApproved {
			approved = append(approved, k)
		} else {
			pending = append(pending, k)
		}
	}
	if f.invalid() {
		switch {
		case len(outsiders) != 0:
			_, err = f.client.TxApproveRequest(f.pick(outsiders), committee, request.Index)
			return f.expectRejected(ApproveRequestMsgName, NotApproverReason, err)
		case len(approved) != 0:
			_, err = f.client.TxApproveRequest(f.pick(approved), committee, request.Index)
			return f.expectRejected(ApproveRequestMsgName, AlreadyApprovedReason, err)
		default:
			return f.sendBadSignature(f.getRandomKey(), &fsm.MessageApproveRequest{Committee: committee.Bytes(), Index: request.Index})
		}
	}
	if len(pending) == 0 {
		// every fuzzer member approved, grow the membership instead
		return f.Contribute(committee)
	}
	return f.executed(f.client.TxApproveRequest(f.pick(pending), committee, request.Index))
}

// FinalizeRequest() finalizes a random open request, which must fail unless it's ready to disburse
func (f *Fuzzer) FinalizeRequest(committee crypto.AddressI, committees []lib.HexBytes) lib.ErrorI {
	c, err := f.client.Committee(committee)
	if err != nil {
		return err
	}
	manager := f.getKey(c.Manager)
	if manager == nil {
		return nil
	}
	request, err := f.getOpenRequest(committee)
	if err != nil || request == nil {
		return err
	}
	for _, a := range committees {
		if bytes.Equal(a, request.Recipient) {
			return ErrUnexpectedState(fmt.Sprintf("request %d of %s pays a committee", request.Index, committee))
		}
	}
	switch {
	case !fsm.HasMajority(request.ApprovalCount, c.ApproversCount):
		_, err = f.client.TxFinalizeRequest(manager, committee, request.Index)
		return f.expectRejected(FinalizeRequestMsgName, NoMajorityReason, err)
	case request.Value > c.Balance:
		_, err = f.client.TxFinalizeRequest(manager, committee, request.Index)
		return f.expectRejected(FinalizeRequestMsgName, InsufficientFundReason, err)
	}
	if f.invalid() {
		if other := f.getOtherKey(c.Manager); other != nil {
			_, err = f.client.TxFinalizeRequest(other, committee, request.Index)
			return f.expectRejected(FinalizeRequestMsgName, NotManagerReason, err)
		}
		return f.sendBadSignature(manager, &fsm.MessageFinalizeRequest{Committee: committee.Bytes(), Index: request.Index})
	}
	return f.executed(f.client.TxFinalizeRequest(manager, committee, request.Index))
}

// getOpenRequest() returns a random request that isn't complete, creating one when there is none
func (f *Fuzzer) getOpenRequest(committee crypto.AddressI) (*fsm.Request, lib.ErrorI) {
	requests, err := f.client.Requests(committee)
	if err != nil {
		return nil, err
	}
	var open []*fsm.Request
	for _, r := range requests {
		if !r.Complete {
			open = append(open, r)
		}
	}
	if len(open) == 0 {
		return nil, f.CreateRequest(committee)
	}
	return open[f.rand.Intn(len(open))], nil
}

func (f *Fuzzer) pick(keys []crypto.PrivateKeyI) crypto.PrivateKeyI {
	return keys[f.rand.Intn(len(keys))]
}
