package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"i4.energy/across/mmplugins/bearer"
	"i4.energy/across/mmplugins/mtk"
)

// Connector drives a bearer on the modem ports.
type Connector interface {
	Connect(ctx context.Context, primary bearer.Port) (*bearer.ConnectResult, error)
	Disconnect(ctx context.Context, primary bearer.Port) error
	Session() int
	Connecting() bool
	Properties() bearer.Properties
	SetProperties(p bearer.Properties)
}

// NetworkConfigurator applies connect results to the host network stack.
type NetworkConfigurator interface {
	Apply(res *bearer.ConnectResult) error
	Remove(iface string) error
}

// Prober checks connectivity through a freshly configured bearer.
type Prober interface {
	Probe(ctx context.Context, src net.IP, dnsServers []string) error
}

// Server handles incoming HTTP requests for controlling the bearer of the
// configured modem
type Server struct {
	Logger  *slog.Logger
	Bearer  Connector
	Primary bearer.Port
	// Network is optional. When set, connect results are applied to the
	// host and removed again on disconnect.
	Network NetworkConfigurator
	// Prober is optional. A failed probe is logged and does not fail the
	// connect request.
	Prober Prober

	mu   sync.Mutex
	last *bearer.ConnectResult
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /connect", s.handleConnect)
	mux.HandleFunc("POST /disconnect", s.handleDisconnect)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) sendJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

// statusCode maps a bearer failure to an HTTP status.
func statusCode(err error) int {
	var be *bearer.Error
	if !errors.As(err, &be) {
		return http.StatusInternalServerError
	}
	switch be.Kind {
	case bearer.KindInProgress:
		return http.StatusConflict
	case bearer.KindNoPort, bearer.KindCancelled:
		return http.StatusServiceUnavailable
	case bearer.KindMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleConnect activates the bearer. The body may override the configured
// APN and credentials.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	type ConnectRequest struct {
		APN      string `json:"apn"`
		User     string `json:"user"`
		Password string `json:"password"`
	}

	var req ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.APN != "" {
		s.Bearer.SetProperties(bearer.Properties{APN: req.APN, User: req.User, Password: req.Password})
	}

	props := s.Bearer.Properties()
	res, err := s.Bearer.Connect(r.Context(), s.Primary)
	if err != nil {
		s.Logger.Error("Failed to connect", "error", err, "apn", props.APN)
		s.sendError(w, err.Error(), statusCode(err))
		return
	}

	if s.Network != nil {
		if err := s.Network.Apply(res); err != nil {
			s.Logger.Error("Failed to apply IP settings", "error", err, "interface", res.Data.Name)
			s.sendError(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()

	if s.Prober != nil && res.IPv4 != nil {
		if err := s.Prober.Probe(r.Context(), net.ParseIP(res.IPv4.Address), res.IPv4.DNS); err != nil {
			s.Logger.Warn("Connectivity probe failed", "error", err, "interface", res.Data.Name)
		}
	}

	s.Logger.Info("Bearer connected", "apn", props.APN, "session", s.Bearer.Session(), "interface", res.Data.Name)
	s.sendJSON(w, res)
}

// handleDisconnect deactivates the bearer, if connected.
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.disconnect(r.Context()); err != nil {
		s.Logger.Error("Failed to disconnect", "error", err)
		s.sendError(w, err.Error(), statusCode(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) disconnect(ctx context.Context) error {
	if err := s.Bearer.Disconnect(ctx, s.Primary); err != nil {
		return err
	}

	s.mu.Lock()
	last := s.last
	s.last = nil
	s.mu.Unlock()

	if last != nil && s.Network != nil && last.Data != nil {
		if err := s.Network.Remove(last.Data.Name); err != nil {
			s.Logger.Warn("Failed to remove IP settings", "error", err, "interface", last.Data.Name)
		}
	}
	if last != nil {
		s.Logger.Info("Bearer disconnected")
	}
	return nil
}

// Status is the body of GET /status.
type Status struct {
	APN        string                `json:"apn"`
	Session    int                   `json:"session"`
	Connected  bool                  `json:"connected"`
	Connecting bool                  `json:"connecting"`
	Result     *bearer.ConnectResult `json:"result,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	session := s.Bearer.Session()
	s.sendJSON(w, Status{
		APN:        s.Bearer.Properties().APN,
		Session:    session,
		Connected:  session != mtk.InvalidSession,
		Connecting: s.Bearer.Connecting(),
		Result:     last,
	})
}

// Shutdown disconnects an active session.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.Bearer.Session() == mtk.InvalidSession {
		return nil
	}
	return s.disconnect(ctx)
}
