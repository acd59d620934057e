package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/units"
	"github.com/canopy-network/committee/fsm"
	"github.com/canopy-network/committee/lib"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
)

const (
	colon = ":"

	SoftwareVersion = "0.1.0"
	ContentType     = "Content-Type"
	ApplicationJSON = "application/json; charset=utf-8"
	localhost       = "localhost"
)

// Server represents a committee RPC server with configuration options.
type Server struct {
	// the governance state machine
	sm *fsm.StateMachine

	// node configuration
	config lib.Config

	logger lib.LoggerI
}

// NewServer constructs and returns a new committee RPC server
func NewServer(sm *fsm.StateMachine, config lib.Config, logger lib.LoggerI) *Server {
	return &Server{
		sm:     sm,
		config: config,
		logger: logger,
	}
}

// Start runs the query and admin RPC servers until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.startRPC(ctx, s.Handler(), s.config.RPCPort) })
	g.Go(func() error { return s.startRPC(ctx, s.AdminHandler(), s.config.AdminPort) })
	return g.Wait()
}

// Handler returns the query router wrapped with the server policies
func (s *Server) Handler() http.Handler { return s.wrap(createRouter(s)) }

// AdminHandler returns the admin router wrapped with the server policies
func (s *Server) AdminHandler() http.Handler { return s.wrap(createAdminRouter(s)) }

// wrap applies the CORS policy, the request timeout and the body size limit
func (s *Server) wrap(router *httprouter.Router) http.Handler {
	// Create CORS policy
	cor := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS", "POST"},
	})
	// Create a default timeout for HTTP requests
	timeout := time.Duration(s.config.TimeoutS) * time.Second
	return cor.Handler(http.TimeoutHandler(http.MaxBytesHandler(router, s.maxBodyBytes()), timeout, lib.ErrServerTimeout().Error()))
}

// startRPC serves the handler on the port and shuts down gracefully when the context is done
func (s *Server) startRPC(ctx context.Context, handler http.Handler, port string) error {
	srv := &http.Server{
		Addr:              colon + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(err.Error())
		}
	}()
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	s.logger.Infof("Starting RPC server at 0.0.0.0:%s", port)
	if err = srv.Serve(netutil.LimitListener(ln, s.maxConns())); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// maxBodyBytes returns the configured request body limit, 1 MB if unset
func (s *Server) maxBodyBytes() int64 {
	if s.config.MaxBodyBytes <= 0 {
		return int64(units.MB)
	}
	return s.config.MaxBodyBytes
}

// maxConns returns the configured connection limit, 256 if unset
func (s *Server) maxConns() int {
	if s.config.MaxConns <= 0 {
		return 256
	}
	return s.config.MaxConns
}

// logsHandler writes the node logfile, newest line first
func logsHandler(s *Server) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		// Construct the full file path to the log file
		filePath := filepath.Join(s.config.DataDirPath, lib.LogDirectory, lib.LogFileName)

		// Read the entire contents of the log file and split by newlines
		f, _ := os.ReadFile(filePath)
		split := bytes.Split(f, []byte("\n"))

		var flipped []byte
		for i := len(split) - 1; i >= 0; i-- {
			flipped = append(append(flipped, split[i]...), []byte("\n")...)
		}
		if _, err := w.Write(flipped); err != nil {
			s.logger.Error(err.Error())
		}
	}
}

// logHandler serves as a middleware that logs incoming RPC calls for debugging purposes.
type logHandler struct {
	path   string
	h      httprouter.Handle
	logger lib.LoggerI
}

// Handle
func (h logHandler) Handle(resp http.ResponseWriter, req *http.Request, p httprouter.Params) {
	h.logger.Debugf("RPC %s %s", req.Method, h.path)
	h.h(resp, req, p)
}

// unmarshal reads request body and unmarshals it into ptr
func unmarshal(w http.ResponseWriter, r *http.Request, ptr interface{}) bool {
	bz, err := io.ReadAll(io.LimitReader(r.Body, int64(units.MB)))
	if err != nil {
		write(w, ErrInvalidParams(err), http.StatusBadRequest)
		return false
	}
	defer func() { _ = r.Body.Close() }()
	if err = json.Unmarshal(bz, ptr); err != nil {
		write(w, ErrInvalidParams(err), http.StatusBadRequest)
		return false
	}
	return true
}

// write marshaled payload to w
func write(w http.ResponseWriter, payload interface{}, code int) {
	w.Header().Set(ContentType, ApplicationJSON)
	w.WriteHeader(code)

	// Marshal and indent the payload
	bz, _ := json.MarshalIndent(payload, "", "  ")
	_, _ = w.Write(bz)
}

// writeError writes the error with the http status of its kind
func writeError(w http.ResponseWriter, err lib.ErrorI) {
	write(w, err, StatusCode(err))
}
