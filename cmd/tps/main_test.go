package main

import (
	"net/http/httptest"
	"testing"

	"github.com/canopy-network/committee/cmd/rpc"
	"github.com/canopy-network/committee/fsm"
	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/store"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	db, err := store.NewStoreInMemory(lib.NewNullLogger())
	require.NoError(t, err)
	defer db.Close()
	config := lib.DefaultConfig()
	sm, err := fsm.New(config, db, nil, lib.NewNullLogger())
	require.NoError(t, err)
	s := rpc.NewServer(sm, config, lib.NewNullLogger())
	server := httptest.NewServer(s.Handler())
	defer server.Close()
	r, err := run(rpc.NewClient(server.URL, server.URL), 40, 4, lib.NewNullLogger())
	require.NoError(t, err)
	require.Equal(t, uint64(40), r.Submitted)
	require.Zero(t, r.Failed)
	require.Greater(t, r.TPS(), float64(0))
	committees, err := sm.GetDeployedCommittees()
	require.NoError(t, err)
	require.Len(t, committees, 1)
	summary, err := sm.GetCommittee(committees[0])
	require.NoError(t, err)
	require.Equal(t, uint64(40), summary.Balance)
	require.Equal(t, uint64(4), summary.ApproversCount)
}
