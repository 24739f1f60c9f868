package remote

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/trigitdb/trigit/pkg/errors"
	"github.com/trigitdb/trigit/pkg/metrics"
	"github.com/trigitdb/trigit/pkg/store"
	"github.com/trigitdb/trigit/pkg/store/status"
)

// Server exposes the replication protocol over HTTP.
//
// Until SetReady(true) is called the server answers 503 "still loading" on
// every protocol route, so a process may start listening before its store
// finished opening.
type Server struct {
	store      store.Store
	replicator *Replicator
	creds      map[string]string // user -> password; empty map means open server
	l          *zap.Logger
	ready      *atomic.Bool
	httpServer *http.Server
}

// ServerOption is a functor to build a server with some options
type ServerOption func(*Server)

// ServerWithLogger sets a logger for the server
func ServerWithLogger(l *zap.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.l = l
		}
	}
}

// ServerWithCredentials sets the accepted user/password pairs. With no
// credentials configured the server accepts unauthenticated callers.
func ServerWithCredentials(creds map[string]string) ServerOption {
	return func(s *Server) {
		s.creds = creds
	}
}

// ServerWithMetrics toggles transfer metrics on the replicator
func ServerWithMetrics(enabled bool) ServerOption {
	return func(s *Server) {
		s.replicator.enableMetrics = enabled
	}
}

// NewServer builds a replication server over the local store.
func NewServer(s store.Store, opts ...ServerOption) *Server {
	srv := &Server{
		store:      s,
		replicator: NewReplicator(s),
		creds:      map[string]string{},
		l:          zap.NewNop(),
		ready:      atomic.NewBool(false),
	}
	for _, apply := range opts {
		apply(srv)
	}
	srv.replicator.l = srv.l
	return srv
}

// SetReady flips the readiness gate.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Handler builds the HTTP routing for the replication protocol.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.readiness)
		r.Use(s.authenticate)

		r.Post("/clone", s.handleClone)
		r.Post("/pull", s.handlePull)
		r.Post("/push", s.handlePush)
		r.Get("/ancestry/*", s.handleAncestry)
		r.Get("/layers/{id}", s.handleGetLayer)
		r.Post("/layers", s.handlePutLayer)
		r.Post("/cas/*", s.handleCAS)
	})
	return r
}

func (s *Server) readiness(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeError(w, http.StatusServiceUnavailable, "still loading")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.creds) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		creds, err := DecodeCredentials(r.Header.Get(HeaderAuthorization))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if password, ok := s.creds[creds.User]; !ok || password != creds.Password {
			writeError(w, http.StatusUnauthorized, "bad user or password")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := jsoniter.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg})
}

func decodeBody(r *http.Request, out interface{}) error {
	defer r.Body.Close()
	return jsoniter.NewDecoder(r.Body).Decode(out)
}

// remoteClient builds the outbound client for a triangular operation,
// presenting the forwarded Authorization-Remote credentials to the remote.
func (s *Server) remoteClient(r *http.Request, remoteURL string) (*Client, error) {
	var creds Credentials
	if header := r.Header.Get(HeaderAuthorizationRemote); header != "" {
		parsed, err := DecodeCredentials(header)
		if err != nil {
			return nil, err
		}
		creds = parsed
	}
	return NewClient(remoteURL, creds)
}

func (s *Server) handleClone(w http.ResponseWriter, r *http.Request) {
	var req CloneRequest
	if err := decodeBody(r, &req); err != nil || req.Label == "" || req.RemoteURL == "" {
		writeError(w, http.StatusBadRequest, "clone request requires label and remote_url")
		return
	}
	client, err := s.remoteClient(r, req.RemoteURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.l.Info("clone requested",
		zap.String("label", req.Label),
		zap.String("remote", client.String()),
		zap.String("comment", req.Comment),
	)
	result, err := s.replicator.Clone(r.Context(), client, req.Label)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePull(w http.ResponseWriter, r *http.Request) {
	s.handleSync(w, r, s.replicator.Pull)
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	s.handleSync(w, r, s.replicator.Push)
}

func (s *Server) handleSync(
	w http.ResponseWriter, r *http.Request,
	op func(context.Context, *Client, string) (*SyncResponse, error),
) {
	var req SyncRequest
	if err := decodeBody(r, &req); err != nil || req.Label == "" || req.RemoteURL == "" {
		writeError(w, http.StatusBadRequest, "sync request requires label and remote_url")
		return
	}
	client, err := s.remoteClient(r, req.RemoteURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := op(r.Context(), client, req.Label)
	if err != nil {
		if errors.Is(err, status.ErrLabelNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAncestry(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "*")
	head, err := s.store.LabelHead(r.Context(), label)
	if err != nil {
		if errors.Is(err, status.ErrLabelNotFound) {
			writeError(w, http.StatusNotFound, "label not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	layers, err := store.Ancestry(r.Context(), s.store, head)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, AncestryResponse{Label: label, Head: head, Layers: layers})
}

func (s *Server) handleGetLayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	layer, err := s.store.OpenLayer(r.Context(), id)
	if err != nil {
		if errors.Is(err, status.ErrLayerNotFound) {
			writeError(w, http.StatusNotFound, "layer not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, LayerRecord{Layer: layer})
}

func (s *Server) handlePutLayer(w http.ResponseWriter, r *http.Request) {
	var record LayerRecord
	if err := decodeBody(r, &record); err != nil || record.Layer == nil {
		writeError(w, http.StatusBadRequest, "layer record required")
		return
	}
	if err := s.store.PutLayer(r.Context(), record.Layer); err != nil {
		if errors.Is(err, status.ErrInvalidLayer) {
			writeError(w, http.StatusBadRequest, "layer content address mismatch")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleCAS(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "*")
	var req CASRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "cas request required")
		return
	}
	swapped, err := s.store.LabelCAS(r.Context(), label, req.Expected, req.Next)
	if err != nil {
		if errors.Is(err, status.ErrLabelNotFound) {
			writeError(w, http.StatusNotFound, "label not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	head, _ := s.store.LabelHead(r.Context(), label)
	writeJSON(w, http.StatusOK, CASResponse{Swapped: swapped, Head: head})
}

// Serve runs the HTTP server on a listener until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.Handler()}
	err := s.httpServer.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
