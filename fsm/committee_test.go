package fsm

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/lib/crypto"
	"github.com/stretchr/testify/require"
)

func TestContribute(t *testing.T) {
	member := newTestAddress(2)
	tests := []struct {
		name              string
		detail            string
		minimum           uint64
		amounts           []uint64
		errIndex          int // index of the contribution expected to fail, -1 for none
		errCode           lib.ErrorCode
		expectedApprovers uint64
		expectedBalance   uint64
		expectedMember    bool
	}{
		{
			name:              "at minimum",
			detail:            "a contribution equal to the minimum confers membership",
			minimum:           100,
			amounts:           []uint64{100},
			errIndex:          -1,
			expectedApprovers: 1,
			expectedBalance:   100,
			expectedMember:    true,
		},
		{
			name:            "below minimum",
			detail:          "a contribution below the minimum is rejected and nothing is retained",
			minimum:         100,
			amounts:         []uint64{99},
			errIndex:        0,
			errCode:         lib.CodeInsufficientContribution,
			expectedBalance: 0,
		},
		{
			name:              "repeated",
			detail:            "two qualifying contributions raise the balance twice but count the member once",
			minimum:           100,
			amounts:           []uint64{100, 250},
			errIndex:          -1,
			expectedApprovers: 1,
			expectedBalance:   350,
			expectedMember:    true,
		},
		{
			name:              "zero minimum",
			detail:            "with a zero minimum even a zero contribution confers membership",
			minimum:           0,
			amounts:           []uint64{0},
			errIndex:          -1,
			expectedApprovers: 1,
			expectedBalance:   0,
			expectedMember:    true,
		},
		{
			name:              "rejected after membership",
			detail:            "a small contribution from an existing member is still rejected",
			minimum:           100,
			amounts:           []uint64{100, 1},
			errIndex:          1,
			errCode:           lib.CodeInsufficientContribution,
			expectedApprovers: 1,
			expectedBalance:   100,
			expectedMember:    true,
		},
		{
			name:              "overflow",
			detail:            "a contribution that would overflow the balance is rejected",
			minimum:           0,
			amounts:           []uint64{math.MaxUint64, 1},
			errIndex:          1,
			errCode:           lib.CodeBalanceOverflow,
			expectedApprovers: 1,
			expectedBalance:   math.MaxUint64,
			expectedMember:    true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sm := newTestStateMachine(t)
			committee, err := sm.CreateCommittee(newTestAddress(1), test.minimum)
			require.NoError(t, err)
			for i, amount := range test.amounts {
				err = sm.Contribute(member, committee, amount)
				if i == test.errIndex {
					requireKind(t, err, test.errCode, test.detail)
					continue
				}
				require.NoError(t, err, test.detail)
			}
			c, err := sm.GetCommittee(committee)
			require.NoError(t, err)
			require.Equal(t, test.expectedApprovers, c.ApproversCount, test.detail)
			require.Equal(t, test.expectedBalance, c.Balance, test.detail)
			isApprover, err := sm.IsApprover(committee, member)
			require.NoError(t, err)
			require.Equal(t, test.expectedMember, isApprover, test.detail)
		})
	}
}

func TestApproversCountMatchesMembers(t *testing.T) {
	sm := newTestStateMachine(t)
	committee, err := sm.CreateCommittee(newTestAddress(1), 10)
	require.NoError(t, err)
	// members 2..6 qualify, 7..9 don't, 2 and 3 contribute twice
	for b := byte(2); b <= 9; b++ {
		amount := uint64(10)
		if b >= 7 {
			amount = 9
		}
		_ = sm.Contribute(newTestAddress(b), committee, amount)
	}
	require.NoError(t, sm.Contribute(newTestAddress(2), committee, 10))
	require.NoError(t, sm.Contribute(newTestAddress(3), committee, 10))
	approvers, err := sm.GetApprovers(committee)
	require.NoError(t, err)
	count, err := sm.ApproversCount(committee)
	require.NoError(t, err)
	require.Equal(t, uint64(5), count)
	require.Len(t, approvers, int(count))
	for i, a := range approvers {
		require.True(t, newTestAddress(byte(i+2)).Equals(a))
	}
	balance, err := sm.Balance(committee)
	require.NoError(t, err)
	require.Equal(t, uint64(70), balance)
}

func TestCreateRequest(t *testing.T) {
	sm := newTestStateMachine(t)
	manager, outsider, recipient := newTestAddress(1), newTestAddress(2), newTestAddress(3)
	committee, err := sm.CreateCommittee(manager, 0)
	require.NoError(t, err)
	// non-manager is rejected and nothing is mutated
	_, err = sm.CreateRequest(outsider, committee, "buy paint", 10, recipient)
	requireKind(t, err, lib.CodeUnauthorized)
	count, err := sm.RequestCount(committee)
	require.NoError(t, err)
	require.Zero(t, count)
	// indices are sequential from zero, no balance check at creation
	for i := uint64(0); i < 3; i++ {
		index, e := sm.CreateRequest(manager, committee, "buy paint", 1000+i, recipient)
		require.NoError(t, e)
		require.Equal(t, i, index)
	}
	requests, err := sm.GetRequests(committee)
	require.NoError(t, err)
	require.Len(t, requests, 3)
	for i, r := range requests {
		require.Equal(t, &Request{
			Index:       uint64(i),
			Description: "buy paint",
			Value:       1000 + uint64(i),
			Recipient:   recipient.Bytes(),
		}, r)
	}
	// a request past the end is not found
	_, err = sm.GetRequest(committee, 3)
	requireKind(t, err, lib.CodeNotFound)
}

// setupCommittee() creates a committee with the given number of members and one request for value to the recipient;
// the first member contributes the balance and the rest contribute 1 each
func setupCommittee(t *testing.T, sm *StateMachine, members int, balance, value uint64) (manager, committee, recipient crypto.AddressI, approvers []crypto.AddressI) {
	t.Helper()
	manager, recipient = newTestAddress(1), newTestAddress(200)
	committee, err := sm.CreateCommittee(manager, 1)
	require.NoError(t, err)
	for i := 0; i < members; i++ {
		a := newTestAddress(byte(10 + i))
		amount := uint64(1)
		if i == 0 {
			amount = max(balance, 1)
		}
		require.NoError(t, sm.Contribute(a, committee, amount))
		approvers = append(approvers, a)
	}
	index, err := sm.CreateRequest(manager, committee, "buy paint", value, recipient)
	require.NoError(t, err)
	require.Zero(t, index)
	return
}

func TestApproveRequest(t *testing.T) {
	tests := []struct {
		name    string
		detail  string
		prepare func(t *testing.T, sm *StateMachine, manager, committee crypto.AddressI, approvers []crypto.AddressI)
		caller  func(approvers []crypto.AddressI) crypto.AddressI
		index   uint64
		errCode lib.ErrorCode
	}{
		{
			name:   "success",
			detail: "a member approves an open request",
			caller: func(a []crypto.AddressI) crypto.AddressI { return a[0] },
		},
		{
			name:    "not found",
			detail:  "a member approving a missing index gets NotFound",
			caller:  func(a []crypto.AddressI) crypto.AddressI { return a[0] },
			index:   1,
			errCode: lib.CodeNotFound,
		},
		{
			name:    "not found before not a member",
			detail:  "the index is checked before membership",
			caller:  func(_ []crypto.AddressI) crypto.AddressI { return newTestAddress(99) },
			index:   5,
			errCode: lib.CodeNotFound,
		},
		{
			name:    "not a member",
			detail:  "an outsider is unauthorized",
			caller:  func(_ []crypto.AddressI) crypto.AddressI { return newTestAddress(99) },
			errCode: lib.CodeUnauthorized,
		},
		{
			name:    "manager is not automatically a member",
			detail:  "the manager must contribute to approve",
			caller:  func(_ []crypto.AddressI) crypto.AddressI { return newTestAddress(1) },
			errCode: lib.CodeUnauthorized,
		},
		{
			name:   "already approved",
			detail: "a second approval by the same member is rejected",
			prepare: func(t *testing.T, sm *StateMachine, _, committee crypto.AddressI, a []crypto.AddressI) {
				require.NoError(t, sm.ApproveRequest(a[0], committee, 0))
			},
			caller:  func(a []crypto.AddressI) crypto.AddressI { return a[0] },
			errCode: lib.CodeAlreadyApproved,
		},
		{
			name:   "re-approve after completion",
			detail: "a member who approved gets AlreadyCompleted rather than AlreadyApproved once the request is complete",
			prepare: func(t *testing.T, sm *StateMachine, manager, committee crypto.AddressI, a []crypto.AddressI) {
				require.NoError(t, sm.ApproveRequest(a[0], committee, 0))
				require.NoError(t, sm.ApproveRequest(a[1], committee, 0))
				require.NoError(t, sm.FinalizeRequest(manager, committee, 0))
			},
			caller:  func(a []crypto.AddressI) crypto.AddressI { return a[0] },
			errCode: lib.CodeAlreadyCompleted,
		},
		{
			name:   "already completed",
			detail: "a member who never approved can't approve a completed request",
			prepare: func(t *testing.T, sm *StateMachine, manager, committee crypto.AddressI, a []crypto.AddressI) {
				require.NoError(t, sm.ApproveRequest(a[0], committee, 0))
				require.NoError(t, sm.ApproveRequest(a[1], committee, 0))
				require.NoError(t, sm.FinalizeRequest(manager, committee, 0))
			},
			caller:  func(a []crypto.AddressI) crypto.AddressI { return a[2] },
			errCode: lib.CodeAlreadyCompleted,
		},
		{
			name:   "not a member before completed",
			detail: "membership is checked before completion",
			prepare: func(t *testing.T, sm *StateMachine, manager, committee crypto.AddressI, a []crypto.AddressI) {
				require.NoError(t, sm.ApproveRequest(a[0], committee, 0))
				require.NoError(t, sm.ApproveRequest(a[1], committee, 0))
				require.NoError(t, sm.FinalizeRequest(manager, committee, 0))
			},
			caller:  func(_ []crypto.AddressI) crypto.AddressI { return newTestAddress(99) },
			errCode: lib.CodeUnauthorized,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sm := newTestStateMachine(t)
			manager, committee, _, approvers := setupCommittee(t, sm, 3, 100, 10)
			if test.prepare != nil {
				test.prepare(t, sm, manager, committee, approvers)
			}
			before, err := sm.GetRequest(committee, 0)
			require.NoError(t, err)
			caller := test.caller(approvers)
			err = sm.ApproveRequest(caller, committee, test.index)
			after, e := sm.GetRequest(committee, 0)
			require.NoError(t, e)
			if test.errCode != 0 {
				requireKind(t, err, test.errCode, test.detail)
				require.Equal(t, before, after, "a rejected approval mutates nothing")
				return
			}
			require.NoError(t, err, test.detail)
			require.Equal(t, before.ApprovalCount+1, after.ApprovalCount)
			approved, err := sm.HasApproved(committee, test.index, caller)
			require.NoError(t, err)
			require.True(t, approved)
		})
	}
}

func TestApprovalsIndependentAcrossRequests(t *testing.T) {
	sm := newTestStateMachine(t)
	manager, committee, recipient, approvers := setupCommittee(t, sm, 2, 100, 10)
	second, err := sm.CreateRequest(manager, committee, "buy brushes", 5, recipient)
	require.NoError(t, err)
	require.NoError(t, sm.ApproveRequest(approvers[0], committee, 0))
	// approving request 0 does not count for request 1
	approved, err := sm.HasApproved(committee, second, approvers[0])
	require.NoError(t, err)
	require.False(t, approved)
	require.NoError(t, sm.ApproveRequest(approvers[0], committee, second))
	for _, index := range []uint64{0, second} {
		r, e := sm.GetRequest(committee, index)
		require.NoError(t, e)
		require.Equal(t, uint64(1), r.ApprovalCount)
	}
}

func TestFinalizeMajority(t *testing.T) {
	tests := []struct {
		name      string
		detail    string
		members   int
		approvals int
		success   bool
	}{
		{name: "1 of 1", detail: "2*1 > 1", members: 1, approvals: 1, success: true},
		{name: "0 of 1", detail: "2*0 > 1 is false", members: 1, approvals: 0},
		{name: "2 of 4", detail: "2*2 > 4 is false", members: 4, approvals: 2},
		{name: "3 of 4", detail: "2*3 > 4", members: 4, approvals: 3, success: true},
		{name: "1 of 3", detail: "2*1 > 3 is false", members: 3, approvals: 1},
		{name: "2 of 3", detail: "2*2 > 3", members: 3, approvals: 2, success: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sm := newTestStateMachine(t)
			manager, committee, recipient, approvers := setupCommittee(t, sm, test.members, 100, 50)
			for i := 0; i < test.approvals; i++ {
				require.NoError(t, sm.ApproveRequest(approvers[i], committee, 0))
			}
			err := sm.FinalizeRequest(manager, committee, 0)
			r, e := sm.GetRequest(committee, 0)
			require.NoError(t, e)
			account, e := sm.GetAccount(recipient)
			require.NoError(t, e)
			if !test.success {
				requireKind(t, err, lib.CodeInsufficientApprovals, test.detail)
				require.False(t, r.Complete)
				require.Zero(t, account.Amount)
				return
			}
			require.NoError(t, err, test.detail)
			require.True(t, r.Complete)
			require.Equal(t, uint64(50), account.Amount)
		})
	}
}

func TestFinalizeRequest(t *testing.T) {
	tests := []struct {
		name    string
		detail  string
		prepare func(t *testing.T, sm *StateMachine, manager, committee crypto.AddressI, approvers []crypto.AddressI)
		caller  func(manager crypto.AddressI) crypto.AddressI
		index   uint64
		value   uint64
		errCode lib.ErrorCode
	}{
		{
			name:   "success",
			detail: "the manager finalizes a majority approved request",
			value:  100,
		},
		{
			name:    "not found",
			detail:  "a missing index is not found",
			index:   3,
			value:   10,
			errCode: lib.CodeNotFound,
		},
		{
			name:    "not found before unauthorized",
			detail:  "the index is checked before the caller",
			caller:  func(_ crypto.AddressI) crypto.AddressI { return newTestAddress(99) },
			index:   3,
			value:   10,
			errCode: lib.CodeNotFound,
		},
		{
			name:    "not the manager",
			detail:  "a member that is not the manager is unauthorized",
			caller:  func(_ crypto.AddressI) crypto.AddressI { return newTestAddress(10) },
			value:   10,
			errCode: lib.CodeUnauthorized,
		},
		{
			name:   "unauthorized before completed",
			detail: "the caller is checked before completion",
			prepare: func(t *testing.T, sm *StateMachine, manager, committee crypto.AddressI, _ []crypto.AddressI) {
				require.NoError(t, sm.FinalizeRequest(manager, committee, 0))
			},
			caller:  func(_ crypto.AddressI) crypto.AddressI { return newTestAddress(10) },
			value:   10,
			errCode: lib.CodeUnauthorized,
		},
		{
			name:   "already completed",
			detail: "a second finalize is rejected",
			prepare: func(t *testing.T, sm *StateMachine, manager, committee crypto.AddressI, _ []crypto.AddressI) {
				require.NoError(t, sm.FinalizeRequest(manager, committee, 0))
			},
			value:   10,
			errCode: lib.CodeAlreadyCompleted,
		},
		{
			name:    "insufficient balance",
			detail:  "the balance check is deferred to finalize",
			value:   101,
			errCode: lib.CodeDisbursementFailed,
		},
		{
			name:   "recipient is a committee",
			detail: "a committee rejects value sent outside of contribute",
			prepare: func(t *testing.T, sm *StateMachine, manager, committee crypto.AddressI, _ []crypto.AddressI) {
				// request 1 pays the committee itself
				_, err := sm.CreateRequest(manager, committee, "loop", 10, committee)
				require.NoError(t, err)
				require.NoError(t, sm.ApproveRequest(newTestAddress(10), committee, 1))
			},
			index:   1,
			value:   10,
			errCode: lib.CodeDisbursementFailed,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sm := newTestStateMachine(t)
			// a single member holding the full balance of 100 approves request 0
			manager, committee, _, approvers := setupCommittee(t, sm, 1, 100, test.value)
			require.NoError(t, sm.ApproveRequest(approvers[0], committee, 0))
			if test.prepare != nil {
				test.prepare(t, sm, manager, committee, approvers)
			}
			caller := manager
			if test.caller != nil {
				caller = test.caller(manager)
			}
			beforeCommittee, err := sm.GetCommittee(committee)
			require.NoError(t, err)
			beforeAccounts, err := sm.GetAccounts()
			require.NoError(t, err)
			beforeRequests, err := sm.GetRequests(committee)
			require.NoError(t, err)
			err = sm.FinalizeRequest(caller, committee, test.index)
			afterCommittee, e := sm.GetCommittee(committee)
			require.NoError(t, e)
			afterAccounts, e := sm.GetAccounts()
			require.NoError(t, e)
			afterRequests, e := sm.GetRequests(committee)
			require.NoError(t, e)
			if test.errCode != 0 {
				requireKind(t, err, test.errCode, test.detail)
				require.Equal(t, beforeCommittee, afterCommittee, "a rejected finalize mutates nothing")
				require.Equal(t, beforeAccounts, afterAccounts, "a rejected finalize mutates nothing")
				require.Equal(t, beforeRequests, afterRequests, "a rejected finalize mutates nothing")
				return
			}
			require.NoError(t, err, test.detail)
			require.Equal(t, beforeCommittee.Balance-test.value, afterCommittee.Balance)
			require.True(t, afterRequests[test.index].Complete)
		})
	}
}

func TestFinalizeUsesCurrentApproversCount(t *testing.T) {
	sm := newTestStateMachine(t)
	manager, committee, _, approvers := setupCommittee(t, sm, 1, 100, 10)
	require.NoError(t, sm.ApproveRequest(approvers[0], committee, 0))
	// a new member joins after the approval: 1 of 2 is no longer a majority
	require.NoError(t, sm.Contribute(newTestAddress(50), committee, 1))
	requireKind(t, sm.FinalizeRequest(manager, committee, 0), lib.CodeInsufficientApprovals)
	require.NoError(t, sm.ApproveRequest(newTestAddress(50), committee, 0))
	require.NoError(t, sm.FinalizeRequest(manager, committee, 0))
}

func TestScenarioA(t *testing.T) {
	sm := newTestStateMachine(t)
	manager, a, r := newTestAddress(1), newTestAddress(0xA), newTestAddress(0xEE)
	committee, err := sm.CreateCommittee(manager, 100)
	require.NoError(t, err)
	// A contributes 100 -> approversCount 1
	require.NoError(t, sm.Contribute(a, committee, 100))
	count, err := sm.ApproversCount(committee)
	require.NoError(t, err)
	require.Equal(t, uint64(1), count)
	// A contributes again -> approversCount still 1
	require.NoError(t, sm.Contribute(a, committee, 100))
	count, err = sm.ApproversCount(committee)
	require.NoError(t, err)
	require.Equal(t, uint64(1), count)
	// manager requests 150 for R
	index, err := sm.CreateRequest(manager, committee, "buy paint", 150, r)
	require.NoError(t, err)
	require.Zero(t, index)
	// A approves -> approvalCount 1
	require.NoError(t, sm.ApproveRequest(a, committee, index))
	request, err := sm.GetRequest(committee, index)
	require.NoError(t, err)
	require.Equal(t, uint64(1), request.ApprovalCount)
	// finalize succeeds since 2*1 > 1
	require.NoError(t, sm.FinalizeRequest(manager, committee, index))
	account, err := sm.GetAccount(r)
	require.NoError(t, err)
	require.Equal(t, uint64(150), account.Amount)
	request, err = sm.GetRequest(committee, index)
	require.NoError(t, err)
	require.True(t, request.Complete)
	balance, err := sm.Balance(committee)
	require.NoError(t, err)
	require.Equal(t, uint64(50), balance)
	// finalize twice: AlreadyCompleted, nothing changes
	requireKind(t, sm.FinalizeRequest(manager, committee, index), lib.CodeAlreadyCompleted)
	account, err = sm.GetAccount(r)
	require.NoError(t, err)
	require.Equal(t, uint64(150), account.Amount)
	// the event log records every step in order
	events, err := sm.GetEvents(committee)
	require.NoError(t, err)
	var types []EventType
	for i, e := range events {
		require.Equal(t, uint64(i), e.Sequence)
		types = append(types, e.EventType)
	}
	require.Equal(t, []EventType{
		EventCommitteeCreated, EventContribution, EventContribution,
		EventRequestCreated, EventRequestApproved, EventRequestFinalized,
	}, types)
	require.Equal(t, uint64(150), events[5].Amount)
	require.Equal(t, r.Bytes(), []byte(events[5].Recipient))
}

func TestScenarioB(t *testing.T) {
	sm := newTestStateMachine(t)
	manager, b, c, d, r := newTestAddress(1), newTestAddress(0xB), newTestAddress(0xC), newTestAddress(0xD), newTestAddress(0xEE)
	committee, err := sm.CreateCommittee(manager, 10)
	require.NoError(t, err)
	for _, member := range []crypto.AddressI{b, c, d} {
		require.NoError(t, sm.Contribute(member, committee, 10))
	}
	index, err := sm.CreateRequest(manager, committee, "rent", 25, r)
	require.NoError(t, err)
	// only B approves: 2*1 > 3 is false
	require.NoError(t, sm.ApproveRequest(b, committee, index))
	requireKind(t, sm.FinalizeRequest(manager, committee, index), lib.CodeInsufficientApprovals)
	// C approves: 2*2 > 3
	require.NoError(t, sm.ApproveRequest(c, committee, index))
	require.NoError(t, sm.FinalizeRequest(manager, committee, index))
	account, err := sm.GetAccount(r)
	require.NoError(t, err)
	require.Equal(t, uint64(25), account.Amount)
	// D can no longer approve
	requireKind(t, sm.ApproveRequest(d, committee, index), lib.CodeAlreadyCompleted)
}

func TestConcurrentContributions(t *testing.T) {
	sm := newTestStateMachine(t)
	committee, err := sm.CreateCommittee(newTestAddress(1), 5)
	require.NoError(t, err)
	const members, rounds = 20, 5
	var wg sync.WaitGroup
	for i := 0; i < members; i++ {
		wg.Add(1)
		go func(member crypto.AddressI) {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				require.NoError(t, sm.Contribute(member, committee, 5))
			}
		}(newTestAddress(byte(10 + i)))
	}
	wg.Wait()
	c, err := sm.GetCommittee(committee)
	require.NoError(t, err)
	require.Equal(t, uint64(members), c.ApproversCount)
	require.Equal(t, uint64(members*rounds*5), c.Balance)
	// one creation event and one per contribution
	require.Equal(t, uint64(1+members*rounds), c.EventCount)
}

func TestConcurrentFinalize(t *testing.T) {
	sm := newTestStateMachine(t)
	manager, committee, recipient, approvers := setupCommittee(t, sm, 1, 100, 60)
	require.NoError(t, sm.ApproveRequest(approvers[0], committee, 0))
	var successes, completed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := sm.FinalizeRequest(manager, committee, 0)
			switch {
			case err == nil:
				successes.Add(1)
			case lib.IsKind(err, lib.CodeAlreadyCompleted, lib.StateMachineModule):
				completed.Add(1)
			}
		}()
	}
	wg.Wait()
	// exactly one disbursement happens
	require.Equal(t, int32(1), successes.Load())
	require.Equal(t, int32(9), completed.Load())
	account, err := sm.GetAccount(recipient)
	require.NoError(t, err)
	require.Equal(t, uint64(60), account.Amount)
	balance, err := sm.Balance(committee)
	require.NoError(t, err)
	require.Equal(t, uint64(40), balance)
}

func TestConcurrentApprovals(t *testing.T) {
	sm := newTestStateMachine(t)
	_, committee, _, approvers := setupCommittee(t, sm, 3, 100, 10)
	var successes, duplicates atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := sm.ApproveRequest(approvers[1], committee, 0)
			switch {
			case err == nil:
				successes.Add(1)
			case lib.IsKind(err, lib.CodeAlreadyApproved, lib.StateMachineModule):
				duplicates.Add(1)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), successes.Load())
	require.Equal(t, int32(9), duplicates.Load())
	r, err := sm.GetRequest(committee, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(1), r.ApprovalCount)
}

func TestConcurrentCommittees(t *testing.T) {
	sm := newTestStateMachine(t)
	const count = 8
	var wg sync.WaitGroup
	committees := make([]crypto.AddressI, count)
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			manager := newTestAddress(byte(1 + i))
			committee, err := sm.CreateCommittee(manager, 1)
			require.NoError(t, err)
			committees[i] = committee
			member := newTestAddress(byte(100 + i))
			require.NoError(t, sm.Contribute(member, committee, 10))
			index, err := sm.CreateRequest(manager, committee, "payout", 10, newTestAddress(250))
			require.NoError(t, err)
			require.NoError(t, sm.ApproveRequest(member, committee, index))
			require.NoError(t, sm.FinalizeRequest(manager, committee, index))
		}(i)
	}
	wg.Wait()
	// every committee disbursed to the shared recipient, and each got a distinct address
	account, err := sm.GetAccount(newTestAddress(250))
	require.NoError(t, err)
	require.Equal(t, uint64(count*10), account.Amount)
	deployed, err := sm.GetDeployedCommittees()
	require.NoError(t, err)
	require.Len(t, deployed, count)
	seen := make(map[string]struct{})
	for _, c := range committees {
		seen[c.String()] = struct{}{}
	}
	require.Len(t, seen, count)
}
