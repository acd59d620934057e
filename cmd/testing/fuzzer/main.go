package main

import (
	"flag"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/canopy-network/committee/cmd/rpc"
	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/lib/crypto"
)

const (
	configFileName = "fuzzer.json"

	CreateCommitteeMsgName = "create_committee"
	ContributeMsgName      = "contribute"
	CreateRequestMsgName   = "create_request"
	ApproveRequestMsgName  = "approve_request"
	FinalizeRequestMsgName = "finalize_request"

	BadSigReason           = "bad signature"
	BelowMinimumReason     = "contribution below minimum"
	NotManagerReason       = "signer is not the manager"
	NotApproverReason      = "signer is not an approver"
	AlreadyApprovedReason  = "signer already approved"
	NoMajorityReason       = "no majority of approvers"
	InsufficientFundReason = "insufficient committee balance"
)

var dataDir = flag.String("data-dir", filepath.Join(lib.DefaultDataDirPath(), "fuzzer"), "fuzzer data directory")

func main() {
	flag.Parse()
	log := lib.NewDefaultLogger()
	config := ConfigFromFile(*dataDir, log)
	fuzzer, err := NewFuzzer(config, rpc.NewClient(config.RPCUrl, config.AdminRPCUrl), log, time.Now().UnixNano())
	if err != nil {
		log.Fatal(err.Error())
	}
	for range time.Tick(time.Duration(config.IntervalMS) * time.Millisecond) {
		if err = fuzzer.Step(); err != nil {
			log.Error(err.Error())
		}
	}
}

// Fuzzer drives a node with random committee transactions, a configured share of them invalid on purpose
type Fuzzer struct {
	log    lib.LoggerI
	config *Config
	client *rpc.Client
	keys   []crypto.PrivateKeyI
	rand   *rand.Rand
}

func NewFuzzer(config *Config, client *rpc.Client, log lib.LoggerI, seed int64) (*Fuzzer, lib.ErrorI) {
	keys := make([]crypto.PrivateKeyI, 0, len(config.PrivateKeys))
	for _, s := range config.PrivateKeys {
		pk, err := crypto.NewPrivateKeyFromString(s)
		if err != nil {
			return nil, lib.ErrNewPrivateKey(err)
		}
		keys = append(keys, pk)
	}
	if len(keys) == 0 {
		return nil, lib.ErrInvalidArgument()
	}
	return &Fuzzer{
		log:    log,
		config: config,
		client: client,
		keys:   keys,
		rand:   rand.New(rand.NewSource(seed)),
	}, nil
}

// Step() executes one random operation against a random committee
func (f *Fuzzer) Step() lib.ErrorI {
	committees, err := f.client.Committees()
	if err != nil {
		return err
	}
	if len(committees) == 0 {
		return f.CreateCommittee()
	}
	committee := crypto.NewAddressFromBytes(committees[f.rand.Intn(len(committees))])
	switch f.rand.Intn(5) {
	case 0:
		return f.CreateCommittee()
	case 1:
		return f.Contribute(committee)
	case 2:
		return f.CreateRequest(committee)
	case 3:
		return f.ApproveRequest(committee)
	default:
		return f.FinalizeRequest(committee, committees)
	}
}
