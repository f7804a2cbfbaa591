package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"i4.energy/across/mmplugins/bearer"
	"i4.energy/across/mmplugins/mtk"
)

type fakeConnector struct {
	props      bearer.Properties
	session    int
	connecting bool
	result     *bearer.ConnectResult
	connectErr error
	discErr    error

	connects    int
	disconnects int
}

func (f *fakeConnector) Connect(context.Context, bearer.Port) (*bearer.ConnectResult, error) {
	f.connects++
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	f.session = 1
	return f.result, nil
}

func (f *fakeConnector) Disconnect(context.Context, bearer.Port) error {
	f.disconnects++
	if f.discErr != nil {
		return f.discErr
	}
	f.session = mtk.InvalidSession
	return nil
}

func (f *fakeConnector) Session() int                      { return f.session }
func (f *fakeConnector) Connecting() bool                  { return f.connecting }
func (f *fakeConnector) Properties() bearer.Properties     { return f.props }
func (f *fakeConnector) SetProperties(p bearer.Properties) { f.props = p }

type fakeNetwork struct {
	applied  []string
	removed  []string
	applyErr error
}

func (f *fakeNetwork) Apply(res *bearer.ConnectResult) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, res.Data.Name)
	return nil
}

func (f *fakeNetwork) Remove(iface string) error {
	f.removed = append(f.removed, iface)
	return nil
}

type fakeProber struct {
	src    net.IP
	dns    []string
	err    error
	probes int
}

func (f *fakeProber) Probe(_ context.Context, src net.IP, dnsServers []string) error {
	f.probes++
	f.src = src
	f.dns = dnsServers
	return f.err
}

func testResult() *bearer.ConnectResult {
	return &bearer.ConnectResult{
		Data: bearer.NewNetPort("ccmni0"),
		IPv4: &bearer.IPConfig{
			Method:  bearer.IPMethodStatic,
			Address: "10.64.1.2",
			Prefix:  32,
			Gateway: "10.64.1.1",
			DNS:     []string{"10.0.0.53"},
		},
	}
}

func newTestServer(c *fakeConnector) *Server {
	return &Server{
		Logger: slog.New(slog.DiscardHandler),
		Bearer: c,
	}
}

func do(srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestConnect(t *testing.T) {
	c := &fakeConnector{
		props:   bearer.Properties{APN: "internet"},
		session: mtk.InvalidSession,
		result:  testResult(),
	}
	network := &fakeNetwork{}
	prober := &fakeProber{err: errors.New("unreachable")}
	srv := newTestServer(c)
	srv.Network = network
	srv.Prober = prober

	rec := do(srv, http.MethodPost, "/connect", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}

	var got bearer.ConnectResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Data == nil || got.Data.Name != "ccmni0" {
		t.Errorf("data port = %+v, want ccmni0", got.Data)
	}
	if diff := cmp.Diff([]string{"ccmni0"}, network.applied); diff != "" {
		t.Errorf("applied mismatch (-want +got):\n%s", diff)
	}
	if prober.probes != 1 {
		t.Fatalf("probes = %d, want 1", prober.probes)
	}
	if !prober.src.Equal(net.ParseIP("10.64.1.2")) {
		t.Errorf("probe source = %v, want 10.64.1.2", prober.src)
	}
	if diff := cmp.Diff([]string{"10.0.0.53"}, prober.dns); diff != "" {
		t.Errorf("probe DNS mismatch (-want +got):\n%s", diff)
	}
}

func TestConnectOverridesProperties(t *testing.T) {
	c := &fakeConnector{
		props:   bearer.Properties{APN: "internet"},
		session: mtk.InvalidSession,
		result:  testResult(),
	}
	srv := newTestServer(c)

	rec := do(srv, http.MethodPost, "/connect", `{"apn":"iot.example","user":"u","password":"p"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	want := bearer.Properties{APN: "iot.example", User: "u", Password: "p"}
	if diff := cmp.Diff(want, c.props); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}
}

func TestConnectErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		connectErr error
		applyErr   error
		wantCode   int
	}{
		{
			name:     "invalid body",
			body:     "{",
			wantCode: http.StatusBadRequest,
		},
		{
			name:       "in progress",
			connectErr: bearer.Errorf(bearer.KindInProgress, "connection attempt already in progress"),
			wantCode:   http.StatusConflict,
		},
		{
			name:       "no port",
			connectErr: bearer.Errorf(bearer.KindNoPort, "no primary port"),
			wantCode:   http.StatusServiceUnavailable,
		},
		{
			name:       "cancelled",
			connectErr: bearer.Errorf(bearer.KindCancelled, "operation cancelled"),
			wantCode:   http.StatusServiceUnavailable,
		},
		{
			name:       "malformed",
			connectErr: bearer.Errorf(bearer.KindMalformedResponse, "bad +EPDN reply"),
			wantCode:   http.StatusBadGateway,
		},
		{
			name:       "failed",
			connectErr: bearer.Errorf(bearer.KindFailed, "activation failed"),
			wantCode:   http.StatusInternalServerError,
		},
		{
			name:       "plain error",
			connectErr: errors.New("boom"),
			wantCode:   http.StatusInternalServerError,
		},
		{
			name:     "apply fails",
			applyErr: errors.New("no such interface"),
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeConnector{
				props:      bearer.Properties{APN: "internet"},
				session:    mtk.InvalidSession,
				result:     testResult(),
				connectErr: tt.connectErr,
			}
			srv := newTestServer(c)
			srv.Network = &fakeNetwork{applyErr: tt.applyErr}

			rec := do(srv, http.MethodPost, "/connect", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var resp struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp.Message == "" {
				t.Error("error response without message")
			}
		})
	}
}

func TestDisconnect(t *testing.T) {
	c := &fakeConnector{
		props:   bearer.Properties{APN: "internet"},
		session: mtk.InvalidSession,
		result:  testResult(),
	}
	network := &fakeNetwork{}
	srv := newTestServer(c)
	srv.Network = network

	if rec := do(srv, http.MethodPost, "/connect", ""); rec.Code != http.StatusOK {
		t.Fatalf("connect status = %d", rec.Code)
	}
	rec := do(srv, http.MethodPost, "/disconnect", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if diff := cmp.Diff([]string{"ccmni0"}, network.removed); diff != "" {
		t.Errorf("removed mismatch (-want +got):\n%s", diff)
	}

	// A second disconnect has nothing left to remove.
	if rec := do(srv, http.MethodPost, "/disconnect", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if len(network.removed) != 1 {
		t.Errorf("removed = %v, want a single removal", network.removed)
	}
}

func TestDisconnectFailureKeepsSettings(t *testing.T) {
	c := &fakeConnector{
		props:   bearer.Properties{APN: "internet"},
		session: mtk.InvalidSession,
		result:  testResult(),
	}
	network := &fakeNetwork{}
	srv := newTestServer(c)
	srv.Network = network

	do(srv, http.MethodPost, "/connect", "")
	c.discErr = bearer.Errorf(bearer.KindFailed, "deactivation failed")

	rec := do(srv, http.MethodPost, "/disconnect", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if len(network.removed) != 0 {
		t.Errorf("removed = %v after failed disconnect", network.removed)
	}
}

func TestStatus(t *testing.T) {
	c := &fakeConnector{
		props:   bearer.Properties{APN: "internet"},
		session: mtk.InvalidSession,
		result:  testResult(),
	}
	srv := newTestServer(c)

	status := func() Status {
		t.Helper()
		rec := do(srv, http.MethodGet, "/status", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var s Status
		if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
			t.Fatalf("failed to decode status: %v", err)
		}
		return s
	}

	got := status()
	want := Status{APN: "internet", Session: mtk.InvalidSession}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}

	do(srv, http.MethodPost, "/connect", "")
	got = status()
	if !got.Connected || got.Session != 1 {
		t.Errorf("status = %+v, want connected session 1", got)
	}
	if got.Result == nil || got.Result.IPv4 == nil || got.Result.IPv4.Address != "10.64.1.2" {
		t.Errorf("status result = %+v, want the last connect result", got.Result)
	}
}

func TestStatusMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&fakeConnector{session: mtk.InvalidSession})
	if rec := do(srv, http.MethodPost, "/status", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestShutdown(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		c := &fakeConnector{session: mtk.InvalidSession}
		if err := newTestServer(c).Shutdown(context.Background()); err != nil {
			t.Fatalf("Shutdown() error = %v", err)
		}
		if c.disconnects != 0 {
			t.Errorf("disconnects = %d, want 0", c.disconnects)
		}
	})

	t.Run("active session", func(t *testing.T) {
		c := &fakeConnector{session: 3}
		if err := newTestServer(c).Shutdown(context.Background()); err != nil {
			t.Fatalf("Shutdown() error = %v", err)
		}
		if c.disconnects != 1 {
			t.Errorf("disconnects = %d, want 1", c.disconnects)
		}
	})
}
