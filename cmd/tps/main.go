package main

import (
	"flag"
	"sync/atomic"
	"time"

	"github.com/canopy-network/committee/cmd/rpc"
	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/lib/crypto"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	rpcURL      = flag.String("rpc-url", lib.DefaultRPCConfig().RPCUrl, "the rpc url of the node")
	adminRPCURL = flag.String("admin-rpc-url", lib.DefaultRPCConfig().AdminRPCUrl, "the admin rpc url of the node")
	totalTxs    = flag.Int("txs", 10_000, "the number of contributions to submit")
	workers     = flag.Int("workers", 32, "the number of concurrent submitters")
)

func main() {
	flag.Parse()
	log := lib.NewDefaultLogger()
	client := rpc.NewClient(*rpcURL, *adminRPCURL)
	if _, err := client.Version(); err != nil {
		log.Fatal(err.Error())
	}
	r, err := run(client, *totalTxs, *workers, log)
	if err != nil {
		log.Fatal(err.Error())
	}
	p := message.NewPrinter(language.English)
	log.Info(p.Sprintf("Submitted %d contributions (%d failed) in %s: %.2f tx/s", r.Submitted, r.Failed, r.Elapsed, r.TPS()))
}

// report is the outcome of a benchmark run
type report struct {
	Submitted uint64
	Failed    uint64
	Elapsed   time.Duration
}

// TPS() is the rate of applied transactions
func (r report) TPS() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Submitted-r.Failed) / r.Elapsed.Seconds()
}

// run() deploys a committee and floods it with contributions, one fresh key per worker
func run(client *rpc.Client, txs, numWorkers int, log lib.LoggerI) (r report, err lib.ErrorI) {
	manager, e := crypto.NewPrivateKey()
	if e != nil {
		return r, lib.ErrNewPrivateKey(e)
	}
	result, err := client.TxCreateCommittee(manager, 1)
	if err != nil {
		return r, err
	}
	committee := crypto.NewAddressFromBytes(result.Committee)
	log.Infof("Created committee %s, submitting %d contributions with %d workers", committee, txs, numWorkers)
	var submitted, failed atomic.Uint64
	start := time.Now()
	g := new(errgroup.Group)
	g.SetLimit(numWorkers)
	keys := make(chan crypto.PrivateKeyI, numWorkers)
	for i := 0; i < numWorkers; i++ {
		pk, er := crypto.NewPrivateKey()
		if er != nil {
			return r, lib.ErrNewPrivateKey(er)
		}
		keys <- pk
	}
	for i := 0; i < txs; i++ {
		g.Go(func() error {
			// borrow a key so no two in flight transactions share a signer
			pk := <-keys
			defer func() { keys <- pk }()
			submitted.Add(1)
			if _, er := client.TxContribute(pk, committee, 1); er != nil {
				failed.Add(1)
				log.Debugf("Contribution failed: %s", er.Error())
			}
			return nil
		})
	}
	_ = g.Wait()
	return report{Submitted: submitted.Load(), Failed: failed.Load(), Elapsed: time.Since(start)}, nil
}
