package rpc

import (
	"net/http"
	"net/http/pprof"

	"github.com/canopy-network/committee/fsm"
	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/lib/crypto"
	"github.com/julienschmidt/httprouter"
)

// Version writes the software version information
func (s *Server) Version(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	write(w, SoftwareVersion, http.StatusOK)
}

// Transaction applies a signed transaction and responds with its result
func (s *Server) Transaction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tx := new(lib.Transaction)
	if ok := unmarshal(w, r, tx); !ok {
		return
	}
	result, err := s.sm.ApplyTransaction(tx)
	if err != nil {
		writeError(w, err)
		return
	}
	write(w, result, http.StatusOK)
}

// Committees responds with the deployed committees in creation order
func (s *Server) Committees(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	committees, err := s.sm.GetDeployedCommittees()
	if err != nil {
		writeError(w, err)
		return
	}
	// an empty registry is an empty list, not null
	list := make([]lib.HexBytes, 0, len(committees))
	for _, c := range committees {
		list = append(list, c.Bytes())
	}
	write(w, list, http.StatusOK)
}

// Committee responds with the summary of a committee
func (s *Server) Committee(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.committeeParams(w, r, func(c crypto.AddressI) (any, lib.ErrorI) {
		return s.sm.GetCommittee(c)
	})
}

// Requests responds with every request of a committee in index order
func (s *Server) Requests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.committeeParams(w, r, func(c crypto.AddressI) (any, lib.ErrorI) {
		requests, err := s.sm.GetRequests(c)
		if err != nil {
			return nil, err
		}
		if requests == nil {
			requests = make([]*fsm.Request, 0)
		}
		return requests, nil
	})
}

// Request responds with the request at the index
func (s *Server) Request(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(indexRequest)
	if ok := unmarshal(w, r, req); !ok {
		return
	}
	committee, ok := parseAddress(w, req.Committee)
	if !ok {
		return
	}
	request, err := s.sm.GetRequest(committee, req.Index)
	if err != nil {
		writeError(w, err)
		return
	}
	write(w, request, http.StatusOK)
}

// Approvers responds with the members of a committee
func (s *Server) Approvers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.committeeParams(w, r, func(c crypto.AddressI) (any, lib.ErrorI) {
		approvers, err := s.sm.GetApprovers(c)
		if err != nil {
			return nil, err
		}
		list := make([]lib.HexBytes, 0, len(approvers))
		for _, a := range approvers {
			list = append(list, a.Bytes())
		}
		return list, nil
	})
}

// Approver responds with whether the address is a member of the committee
func (s *Server) Approver(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(approverRequest)
	if ok := unmarshal(w, r, req); !ok {
		return
	}
	committee, ok := parseAddress(w, req.Committee)
	if !ok {
		return
	}
	address, ok := parseAddress(w, req.Address)
	if !ok {
		return
	}
	isApprover, err := s.sm.IsApprover(committee, address)
	if err != nil {
		writeError(w, err)
		return
	}
	write(w, approverResponse{IsApprover: isApprover}, http.StatusOK)
}

// Approval responds with whether the address approved the request
func (s *Server) Approval(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(approvalRequest)
	if ok := unmarshal(w, r, req); !ok {
		return
	}
	committee, ok := parseAddress(w, req.Committee)
	if !ok {
		return
	}
	address, ok := parseAddress(w, req.Address)
	if !ok {
		return
	}
	approved, err := s.sm.HasApproved(committee, req.Index, address)
	if err != nil {
		writeError(w, err)
		return
	}
	write(w, approvalResponse{Approved: approved}, http.StatusOK)
}

// Account responds with the disbursed balance held by an address
func (s *Server) Account(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(addressRequest)
	if ok := unmarshal(w, r, req); !ok {
		return
	}
	address, ok := parseAddress(w, req.Address)
	if !ok {
		return
	}
	account, err := s.sm.GetAccount(address)
	if err != nil {
		writeError(w, err)
		return
	}
	write(w, account, http.StatusOK)
}

// Accounts responds with every account that received a disbursement
func (s *Server) Accounts(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	accounts, err := s.sm.GetAccounts()
	if err != nil {
		writeError(w, err)
		return
	}
	if accounts == nil {
		accounts = make([]*fsm.Account, 0)
	}
	write(w, accounts, http.StatusOK)
}

// Events responds with the event log of a committee
func (s *Server) Events(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.committeeParams(w, r, func(c crypto.AddressI) (any, lib.ErrorI) {
		events, err := s.sm.GetEvents(c)
		if err != nil {
			return nil, err
		}
		if events == nil {
			events = make([]*fsm.Event, 0)
		}
		return events, nil
	})
}

// LatestEvents responds with the most recent events of a committee, newest first
func (s *Server) LatestEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(latestEventsRequest)
	if ok := unmarshal(w, r, req); !ok {
		return
	}
	committee, ok := parseAddress(w, req.Committee)
	if !ok {
		return
	}
	events, err := s.sm.GetLatestEvents(committee, req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = make([]*fsm.Event, 0)
	}
	write(w, events, http.StatusOK)
}

// committeeParams is a helper function to abstract common workflows around a callback requiring a committee address
func (s *Server) committeeParams(w http.ResponseWriter, r *http.Request, callback func(c crypto.AddressI) (any, lib.ErrorI)) {
	req := new(committeeRequest)
	if ok := unmarshal(w, r, req); !ok {
		return
	}
	committee, ok := parseAddress(w, req.Committee)
	if !ok {
		return
	}
	p, err := callback(committee)
	if err != nil {
		writeError(w, err)
		return
	}
	write(w, p, http.StatusOK)
}

// parseAddress validates an address parameter, responding with the error if it's malformed
func parseAddress(w http.ResponseWriter, bz lib.HexBytes) (crypto.AddressI, bool) {
	if len(bz) == 0 {
		writeError(w, fsm.ErrAddressEmpty())
		return nil, false
	}
	address, err := crypto.NewAddress(bz)
	if err != nil {
		writeError(w, fsm.ErrAddressSize())
		return nil, false
	}
	return address, true
}

// debugHandler is the http handler for debugging endpoints
func debugHandler(routeName string) httprouter.Handle {
	var f http.HandlerFunc
	switch routeName {
	case DebugHeapRouteName, DebugGoroutineRouteName, DebugBlockedRouteName:
		f = func(w http.ResponseWriter, r *http.Request) {
			pprof.Handler(routeName).ServeHTTP(w, r)
		}
	case DebugCPURouteName:
		f = pprof.Profile
	default:
		f = func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}
	}
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		f(w, r)
	}
}
