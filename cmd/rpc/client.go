package rpc

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/canopy-network/committee/fsm"
	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/lib/crypto"
	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

const (
	defaultMaxRetries = 4
	defaultTimeout    = 10 * time.Second

	breakerConsecutiveFailures = 5
	breakerOpenTimeout         = 10 * time.Second
)

// Client mirrors the RPC routes and retries transport failures with exponential backoff; after repeated
// transport failures the breaker opens and calls fail fast until the node is probed again
type Client struct {
	rpcURL      string
	adminRPCURL string
	client      http.Client
	maxRetries  uint64
	breaker     *gobreaker.CircuitBreaker
}

func NewClient(rpcURL, adminRPCURL string) *Client {
	return &Client{
		rpcURL:      strings.TrimSuffix(rpcURL, "/"),
		adminRPCURL: strings.TrimSuffix(adminRPCURL, "/"),
		client:      http.Client{Timeout: defaultTimeout},
		maxRetries:  defaultMaxRetries,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "rpc-client",
			Timeout: breakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerConsecutiveFailures
			},
		}),
	}
}

func (c *Client) Version() (version *string, err lib.ErrorI) {
	version = new(string)
	err = c.get(VersionRouteName, version)
	return
}

// Transaction submits a signed transaction
func (c *Client) Transaction(tx *lib.Transaction) (result *lib.TxResult, err lib.ErrorI) {
	bz, err := lib.MarshalJSON(tx)
	if err != nil {
		return nil, err
	}
	result = new(lib.TxResult)
	err = c.post(TxRouteName, bz, result)
	return
}

func (c *Client) Committees() (committees []lib.HexBytes, err lib.ErrorI) {
	err = c.post(CommitteesRouteName, []byte("{}"), &committees)
	return
}

func (c *Client) Committee(committee crypto.AddressI) (p *fsm.Committee, err lib.ErrorI) {
	p = new(fsm.Committee)
	err = c.committeeRequest(CommitteeRouteName, committee, p)
	return
}

func (c *Client) Requests(committee crypto.AddressI) (p []*fsm.Request, err lib.ErrorI) {
	err = c.committeeRequest(RequestsRouteName, committee, &p)
	return
}

func (c *Client) Request(committee crypto.AddressI, index uint64) (p *fsm.Request, err lib.ErrorI) {
	p = new(fsm.Request)
	err = c.request(RequestRouteName, indexRequest{committeeRequest{committee.Bytes()}, index}, p)
	return
}

func (c *Client) Approvers(committee crypto.AddressI) (p []lib.HexBytes, err lib.ErrorI) {
	err = c.committeeRequest(ApproversRouteName, committee, &p)
	return
}

func (c *Client) IsApprover(committee, address crypto.AddressI) (bool, lib.ErrorI) {
	p := new(approverResponse)
	err := c.request(ApproverRouteName, approverRequest{committeeRequest{committee.Bytes()}, addressRequest{address.Bytes()}}, p)
	return p.IsApprover, err
}

func (c *Client) HasApproved(committee crypto.AddressI, index uint64, address crypto.AddressI) (bool, lib.ErrorI) {
	p := new(approvalResponse)
	err := c.request(ApprovalRouteName, approvalRequest{indexRequest{committeeRequest{committee.Bytes()}, index}, addressRequest{address.Bytes()}}, p)
	return p.Approved, err
}

func (c *Client) Account(address crypto.AddressI) (p *fsm.Account, err lib.ErrorI) {
	p = new(fsm.Account)
	err = c.request(AccountRouteName, addressRequest{address.Bytes()}, p)
	return
}

func (c *Client) Accounts() (p []*fsm.Account, err lib.ErrorI) {
	err = c.post(AccountsRouteName, []byte("{}"), &p)
	return
}

func (c *Client) Events(committee crypto.AddressI) (p []*fsm.Event, err lib.ErrorI) {
	err = c.committeeRequest(EventsRouteName, committee, &p)
	return
}

func (c *Client) LatestEvents(committee crypto.AddressI, limit uint64) (p []*fsm.Event, err lib.ErrorI) {
	err = c.request(LatestEventsRouteName, latestEventsRequest{committeeRequest{committee.Bytes()}, limit}, &p)
	return
}

func (c *Client) ResourceUsage() (p *resourceUsageResponse, err lib.ErrorI) {
	p = new(resourceUsageResponse)
	err = c.get(ResourceUsageRouteName, p)
	return
}

func (c *Client) Config() (p *lib.Config, err lib.ErrorI) {
	p = new(lib.Config)
	err = c.get(ConfigRouteName, p)
	return
}

// TRANSACTIONS BELOW

func (c *Client) TxCreateCommittee(pk crypto.PrivateKeyI, minimumContribution uint64) (*lib.TxResult, lib.ErrorI) {
	return c.signAndSend(pk, &fsm.MessageCreateCommittee{MinimumContribution: minimumContribution})
}

func (c *Client) TxContribute(pk crypto.PrivateKeyI, committee crypto.AddressI, amount uint64) (*lib.TxResult, lib.ErrorI) {
	return c.signAndSend(pk, &fsm.MessageContribute{Committee: committee.Bytes(), Amount: amount})
}

func (c *Client) TxCreateRequest(pk crypto.PrivateKeyI, committee crypto.AddressI, description string, value uint64, recipient crypto.AddressI) (*lib.TxResult, lib.ErrorI) {
	return c.signAndSend(pk, &fsm.MessageCreateRequest{
		Committee:   committee.Bytes(),
		Description: description,
		Value:       value,
		Recipient:   recipient.Bytes(),
	})
}

func (c *Client) TxApproveRequest(pk crypto.PrivateKeyI, committee crypto.AddressI, index uint64) (*lib.TxResult, lib.ErrorI) {
	return c.signAndSend(pk, &fsm.MessageApproveRequest{Committee: committee.Bytes(), Index: index})
}

func (c *Client) TxFinalizeRequest(pk crypto.PrivateKeyI, committee crypto.AddressI, index uint64) (*lib.TxResult, lib.ErrorI) {
	return c.signAndSend(pk, &fsm.MessageFinalizeRequest{Committee: committee.Bytes(), Index: index})
}

// signAndSend() signs the message with the private key and submits it
func (c *Client) signAndSend(pk crypto.PrivateKeyI, msg lib.MessageI) (*lib.TxResult, lib.ErrorI) {
	tx, err := lib.NewTransaction(pk, msg)
	if err != nil {
		return nil, err
	}
	return c.Transaction(tx)
}

func (c *Client) committeeRequest(routeName string, committee crypto.AddressI, ptr any) lib.ErrorI {
	return c.request(routeName, committeeRequest{committee.Bytes()}, ptr)
}

func (c *Client) request(routeName string, req any, ptr any) lib.ErrorI {
	bz, err := lib.MarshalJSON(req)
	if err != nil {
		return err
	}
	return c.post(routeName, bz, ptr)
}

func (c *Client) url(routeName string) string {
	route := routePaths[routeName]
	if route.Admin {
		return c.adminRPCURL + route.Path
	}
	return c.rpcURL + route.Path
}

func (c *Client) post(routeName string, json []byte, ptr any) lib.ErrorI {
	resp, err := c.do(func() (*http.Response, error) {
		return c.client.Post(c.url(routeName), ApplicationJSON, bytes.NewReader(json))
	})
	if err != nil {
		return lib.ErrPostRequest(err)
	}
	return c.unmarshal(resp, ptr)
}

func (c *Client) get(routeName string, ptr any) lib.ErrorI {
	resp, err := c.do(func() (*http.Response, error) {
		return c.client.Get(c.url(routeName))
	})
	if err != nil {
		return lib.ErrGetRequest(err)
	}
	return c.unmarshal(resp, ptr)
}

// do() sends the request through the breaker, retrying transport failures while the breaker is closed
func (c *Client) do(send func() (*http.Response, error)) (*http.Response, error) {
	return backoff.RetryWithData(func() (*http.Response, error) {
		resp, err := c.breaker.Execute(func() (interface{}, error) { return send() })
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return resp.(*http.Response), nil
	}, c.retryPolicy())
}

// retryPolicy() is the backoff for transport failures
func (c *Client) retryPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	return backoff.WithMaxRetries(b, c.maxRetries)
}

// unmarshal() decodes a successful response into ptr; an error response is decoded back into the server's error
func (c *Client) unmarshal(resp *http.Response, ptr any) lib.ErrorI {
	defer func() { _ = resp.Body.Close() }()
	bz, err := io.ReadAll(resp.Body)
	if err != nil {
		return lib.ErrReadBody(err)
	}
	if resp.StatusCode != http.StatusOK {
		e := new(lib.Error)
		if er := lib.UnmarshalJSON(bz, e); er == nil && e.EModule != "" {
			return e
		}
		return lib.ErrHttpStatus(resp.Status, resp.StatusCode, bz)
	}
	return lib.UnmarshalJSON(bz, ptr)
}
