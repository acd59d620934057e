package rpc

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// committee RPC paths
const (
	VersionRoutePath      = "/v1/"
	TxRoutePath           = "/v1/tx"
	CommitteesRoutePath   = "/v1/query/committees"
	CommitteeRoutePath    = "/v1/query/committee"
	RequestsRoutePath     = "/v1/query/requests"
	RequestRoutePath      = "/v1/query/request"
	ApproversRoutePath    = "/v1/query/approvers"
	ApproverRoutePath     = "/v1/query/approver"
	ApprovalRoutePath     = "/v1/query/approval"
	AccountRoutePath      = "/v1/query/account"
	AccountsRoutePath     = "/v1/query/accounts"
	EventsRoutePath       = "/v1/query/events"
	LatestEventsRoutePath = "/v1/query/latest-events"
	// debug
	DebugBlockedRoutePath   = "/debug/blocked"
	DebugHeapRoutePath      = "/debug/heap"
	DebugCPURoutePath       = "/debug/cpu"
	DebugGoroutineRoutePath = "/debug/goroutine"
	// admin
	ResourceUsageRoutePath = "/v1/admin/resource-usage"
	ConfigRoutePath        = "/v1/admin/config"
	LogsRoutePath          = "/v1/admin/log"
)

const (
	VersionRouteName      = "version"
	TxRouteName           = "tx"
	CommitteesRouteName   = "committees"
	CommitteeRouteName    = "committee"
	RequestsRouteName     = "requests"
	RequestRouteName      = "request"
	ApproversRouteName    = "approvers"
	ApproverRouteName     = "approver"
	ApprovalRouteName     = "approval"
	AccountRouteName      = "account"
	AccountsRouteName     = "accounts"
	EventsRouteName       = "events"
	LatestEventsRouteName = "latest-events"
	// debug
	DebugBlockedRouteName   = "block"
	DebugHeapRouteName      = "heap"
	DebugCPURouteName       = "cpu"
	DebugGoroutineRouteName = "goroutine"
	// admin
	ResourceUsageRouteName = "resource-usage"
	ConfigRouteName        = "config"
	LogsRouteName          = "logs"
)

// routes contains the method and path for a committee RPC route
type routes map[string]struct {
	Method string
	Path   string
	Admin  bool
}

// routePaths is a mapping from route names to their corresponding HTTP methods and paths.
var routePaths = routes{
	VersionRouteName:        {Method: http.MethodGet, Path: VersionRoutePath},
	TxRouteName:             {Method: http.MethodPost, Path: TxRoutePath},
	CommitteesRouteName:     {Method: http.MethodPost, Path: CommitteesRoutePath},
	CommitteeRouteName:      {Method: http.MethodPost, Path: CommitteeRoutePath},
	RequestsRouteName:       {Method: http.MethodPost, Path: RequestsRoutePath},
	RequestRouteName:        {Method: http.MethodPost, Path: RequestRoutePath},
	ApproversRouteName:      {Method: http.MethodPost, Path: ApproversRoutePath},
	ApproverRouteName:       {Method: http.MethodPost, Path: ApproverRoutePath},
	ApprovalRouteName:       {Method: http.MethodPost, Path: ApprovalRoutePath},
	AccountRouteName:        {Method: http.MethodPost, Path: AccountRoutePath},
	AccountsRouteName:       {Method: http.MethodPost, Path: AccountsRoutePath},
	EventsRouteName:         {Method: http.MethodPost, Path: EventsRoutePath},
	LatestEventsRouteName:   {Method: http.MethodPost, Path: LatestEventsRoutePath},
	DebugBlockedRouteName:   {Method: http.MethodGet, Path: DebugBlockedRoutePath, Admin: true},
	DebugHeapRouteName:      {Method: http.MethodGet, Path: DebugHeapRoutePath, Admin: true},
	DebugCPURouteName:       {Method: http.MethodGet, Path: DebugCPURoutePath, Admin: true},
	DebugGoroutineRouteName: {Method: http.MethodGet, Path: DebugGoroutineRoutePath, Admin: true},
	ResourceUsageRouteName:  {Method: http.MethodGet, Path: ResourceUsageRoutePath, Admin: true},
	ConfigRouteName:         {Method: http.MethodGet, Path: ConfigRoutePath, Admin: true},
	LogsRouteName:           {Method: http.MethodGet, Path: LogsRoutePath, Admin: true},
}

// httpRouteHandlers is a custom type that maps strings to httprouter handle functions
type httpRouteHandlers map[string]httprouter.Handle

// createRouter initializes and returns a new HTTP router with predefined route handlers.
func createRouter(s *Server) *httprouter.Router {
	return s.newRouter(httpRouteHandlers{
		VersionRouteName:      s.Version,
		TxRouteName:           s.Transaction,
		CommitteesRouteName:   s.Committees,
		CommitteeRouteName:    s.Committee,
		RequestsRouteName:     s.Requests,
		RequestRouteName:      s.Request,
		ApproversRouteName:    s.Approvers,
		ApproverRouteName:     s.Approver,
		ApprovalRouteName:     s.Approval,
		AccountRouteName:      s.Account,
		AccountsRouteName:     s.Accounts,
		EventsRouteName:       s.Events,
		LatestEventsRouteName: s.LatestEvents,
	})
}

// createAdminRouter initializes and returns a new HTTP router with the admin route handlers.
func createAdminRouter(s *Server) *httprouter.Router {
	return s.newRouter(httpRouteHandlers{
		ResourceUsageRouteName: s.ResourceUsage,
		ConfigRouteName:        s.Config,
		LogsRouteName:          logsHandler(s),
		// debug
		DebugBlockedRouteName:   debugHandler(DebugBlockedRouteName),
		DebugHeapRouteName:      debugHandler(DebugHeapRouteName),
		DebugCPURouteName:       debugHandler(DebugCPURouteName),
		DebugGoroutineRouteName: debugHandler(DebugGoroutineRouteName),
	})
}

// newRouter registers each handler at the method and path of its route name
func (s *Server) newRouter(r httpRouteHandlers) *httprouter.Router {
	router := httprouter.New()
	for name, handler := range r {
		path := routePaths[name]
		router.Handle(path.Method, path.Path, logHandler{path: path.Path, h: handler, logger: s.logger}.Handle)
	}
	return router
}
