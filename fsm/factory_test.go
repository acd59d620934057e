package fsm

import (
	"testing"

	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/lib/crypto"
	"github.com/stretchr/testify/require"
)

func TestCreateCommittee(t *testing.T) {
	sm := newTestStateMachine(t)
	manager := newTestAddress(1)
	committee, err := sm.CreateCommittee(manager, 100)
	require.NoError(t, err)
	// the handle is the CREATE address of the factory's first deployment
	require.True(t, crypto.CreateAddress(sm.FactoryAddress(), 0).Equals(committee))
	c, err := sm.GetCommittee(committee)
	require.NoError(t, err)
	require.Equal(t, &Committee{
		Address:             committee.Bytes(),
		Manager:             manager.Bytes(),
		MinimumContribution: 100,
		EventCount:          1,
	}, c)
	gotManager, err := sm.Manager(committee)
	require.NoError(t, err)
	require.True(t, manager.Equals(gotManager))
	minimum, err := sm.MinimumContribution(committee)
	require.NoError(t, err)
	require.Equal(t, uint64(100), minimum)
	count, err := sm.ApproversCount(committee)
	require.NoError(t, err)
	require.Zero(t, count)
	requests, err := sm.GetRequests(committee)
	require.NoError(t, err)
	require.Empty(t, requests)
	// the manager is not a member until they contribute
	isApprover, err := sm.IsApprover(committee, manager)
	require.NoError(t, err)
	require.False(t, isApprover)
	isCommittee, err := sm.IsCommittee(committee)
	require.NoError(t, err)
	require.True(t, isCommittee)
	isCommittee, err = sm.IsCommittee(manager)
	require.NoError(t, err)
	require.False(t, isCommittee)
}

func TestGetDeployedCommittees(t *testing.T) {
	sm := newTestStateMachine(t)
	// empty registry
	got, err := sm.GetDeployedCommittees()
	require.NoError(t, err)
	require.Empty(t, got)
	// any caller may create, creation order is preserved
	var expected []crypto.AddressI
	for i := 0; i < 5; i++ {
		creator := newTestAddress(byte(i + 1))
		committee, e := sm.CreateCommittee(creator, uint64(i))
		require.NoError(t, e)
		expected = append(expected, committee)
		c, e := sm.GetCommittee(committee)
		require.NoError(t, e)
		require.Equal(t, uint64(i), c.RegistryIndex)
		require.Equal(t, creator.Bytes(), []byte(c.Manager))
	}
	got, err = sm.GetDeployedCommittees()
	require.NoError(t, err)
	require.Len(t, got, len(expected))
	for i := range expected {
		require.True(t, expected[i].Equals(got[i]), "position %d", i)
	}
}

func TestCreateCommitteeExists(t *testing.T) {
	sm := newTestStateMachine(t)
	// occupy the address the next creation will derive
	next := crypto.CreateAddress(sm.FactoryAddress(), 0)
	require.NoError(t, sm.apply(mutation{operation: "test"}, func(txn lib.RWStoreI) lib.ErrorI {
		return sm.setCommittee(txn, &Committee{Address: next.Bytes(), Manager: newTestAddress(9).Bytes()})
	}))
	_, err := sm.CreateCommittee(newTestAddress(1), 0)
	requireKind(t, err, lib.CodeCommitteeExists)
	// the registry was not touched
	got, err := sm.GetDeployedCommittees()
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestUnknownCommittee(t *testing.T) {
	sm := newTestStateMachine(t)
	unknown, member := newTestAddress(7), newTestAddress(1)
	tests := []struct {
		name string
		call func() error
	}{
		{"contribute", func() error { return sm.Contribute(member, unknown, 1) }},
		{"create request", func() error {
			_, err := sm.CreateRequest(member, unknown, "x", 1, member)
			return err
		}},
		{"approve", func() error { return sm.ApproveRequest(member, unknown, 0) }},
		{"finalize", func() error { return sm.FinalizeRequest(member, unknown, 0) }},
		{"get committee", func() error {
			_, err := sm.GetCommittee(unknown)
			return err
		}},
		{"is approver", func() error {
			_, err := sm.IsApprover(unknown, member)
			return err
		}},
		{"get request", func() error {
			_, err := sm.GetRequest(unknown, 0)
			return err
		}},
		{"get requests", func() error {
			_, err := sm.GetRequests(unknown)
			return err
		}},
		{"get events", func() error {
			_, err := sm.GetEvents(unknown)
			return err
		}},
		{"get latest events", func() error {
			_, err := sm.GetLatestEvents(unknown, 1)
			return err
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			requireKind(t, test.call(), lib.CodeCommitteeNotFound)
		})
	}
	// lookups of unknown committees don't allocate locks
	_, ok := sm.locks.get(unknown)
	require.False(t, ok)
}
