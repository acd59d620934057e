package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetLatestEvents(t *testing.T) {
	sm := newTestStateMachine(t)
	// created, 3 contributions and the request: sequences 0..4
	_, committee, _, _ := setupCommittee(t, sm, 3, 100, 10)
	// a second committee's events must not leak into the first's
	other, err := sm.CreateCommittee(newTestAddress(2), 0)
	require.NoError(t, err)
	require.NoError(t, sm.Contribute(newTestAddress(3), other, 5))
	tests := []struct {
		name     string
		detail   string
		limit    uint64
		expected []uint64
	}{
		{
			name:     "zero limit",
			detail:   "a zero limit returns the whole log newest first",
			limit:    0,
			expected: []uint64{4, 3, 2, 1, 0},
		},
		{
			name:     "limited",
			detail:   "the limit keeps only the most recent events",
			limit:    2,
			expected: []uint64{4, 3},
		},
		{
			name:     "limit above length",
			detail:   "a limit larger than the log returns all of it",
			limit:    100,
			expected: []uint64{4, 3, 2, 1, 0},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			events, e := sm.GetLatestEvents(committee, test.limit)
			require.NoError(t, e, test.detail)
			var got []uint64
			for _, ev := range events {
				require.Equal(t, committee.Bytes(), []byte(ev.Committee), test.detail)
				got = append(got, ev.Sequence)
			}
			require.Equal(t, test.expected, got, test.detail)
		})
	}
	latest, err := sm.GetLatestEvents(committee, 1)
	require.NoError(t, err)
	require.Equal(t, EventRequestCreated, latest[0].EventType)
	// the newest-first view is the ordered log reversed
	all, err := sm.GetEvents(committee)
	require.NoError(t, err)
	reversed, err := sm.GetLatestEvents(committee, 0)
	require.NoError(t, err)
	for i := range all {
		require.Equal(t, all[i], reversed[len(reversed)-1-i])
	}
}
