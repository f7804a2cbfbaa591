package modem_test

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
	"i4.energy/across/mmplugins/modem"
)

// newMockModem initializes a port on a mock transport. Expectations for the
// Loop and Close are left to the caller.
func newMockModem(t *testing.T, ctx context.Context) (*modem.Modem, *modem.MockTransport) {
	t.Helper()

	ctrl := gomock.NewController(t)
	transport := modem.NewMockTransport(ctrl)
	dialer := modem.NewMockDialer(ctrl)

	gomock.InOrder(slices.Concat(
		[]any{dialer.EXPECT().Dial(gomock.Any()).Return(transport, nil)},
		initMockCalls(transport),
	)...)

	config, err := modem.NewConfigBuilder().WithDialer(dialer).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	m, err := modem.New(ctx, config)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m, transport
}

func TestModemNew(t *testing.T) {
	t.Run("initializes the port", func(t *testing.T) {
		m, transport := newMockModem(t, context.Background())
		transport.EXPECT().Close().Return(nil)
		if err := m.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	t.Run("SIM PIN required but not configured", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		transport := modem.NewMockTransport(ctrl)
		dialer := modem.NewMockDialer(ctrl)

		gomock.InOrder(slices.Concat(
			[]any{dialer.EXPECT().Dial(gomock.Any()).Return(transport, nil)},
			expectExchanges(transport, append(probeExchanges, simPinRequired)...),
			[]any{transport.EXPECT().Close()},
		)...)

		config, err := modem.NewConfigBuilder().WithDialer(dialer).Build()
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		m, err := modem.New(context.Background(), config)
		if !errors.Is(err, modem.ErrSIMPinRequired) {
			t.Errorf("New() error = %v, want ErrSIMPinRequired", err)
		}
		if m != nil {
			t.Error("New() returned a port on failure")
		}
	})

	t.Run("modem error during probe closes the transport", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		transport := modem.NewMockTransport(ctrl)
		dialer := modem.NewMockDialer(ctrl)

		gomock.InOrder(slices.Concat(
			[]any{dialer.EXPECT().Dial(gomock.Any()).Return(transport, nil)},
			expectExchanges(transport, probeExchanges[0], exchange{"ATE0", "ERROR\r\n"}),
			[]any{transport.EXPECT().Close()},
		)...)

		config, err := modem.NewConfigBuilder().WithDialer(dialer).Build()
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if _, err := modem.New(context.Background(), config); !modem.IsCommandError(err) {
			t.Errorf("New() error = %v, want a CommandError", err)
		}
	})

	t.Run("skips the SIM check on data ports", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		transport := modem.NewMockTransport(ctrl)
		dialer := modem.NewMockDialer(ctrl)

		gomock.InOrder(slices.Concat(
			[]any{dialer.EXPECT().Dial(gomock.Any()).Return(transport, nil)},
			expectExchanges(transport, probeExchanges...),
		)...)

		config, err := modem.NewConfigBuilder().WithDialer(dialer).WithoutSIMCheck().Build()
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if _, err := modem.New(context.Background(), config); err != nil {
			t.Errorf("New() error = %v", err)
		}
	})

	tests := []struct {
		name    string
		dial    func(d *modem.MockDialer)
		config  modem.Config
		wantErr error
	}{
		{
			name:    "no dialer",
			wantErr: modem.ErrNoDialer,
		},
		{
			name: "dialer fails",
			dial: func(d *modem.MockDialer) {
				d.EXPECT().Dial(gomock.Any()).Return(nil, io.ErrClosedPipe)
			},
			wantErr: io.ErrClosedPipe,
		},
		{
			name: "dialer returns no transport",
			dial: func(d *modem.MockDialer) {
				d.EXPECT().Dial(gomock.Any()).Return(nil, nil)
			},
			wantErr: modem.ErrNotInitialized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := tt.config
			if tt.dial != nil {
				dialer := modem.NewMockDialer(gomock.NewController(t))
				tt.dial(dialer)
				config.Dialer = dialer
			}
			m, err := modem.New(context.Background(), config)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
			if m != nil {
				t.Error("New() returned a port on failure")
			}
		})
	}
}

func TestModemClose(t *testing.T) {
	closeErr := errors.New("transport close failed")

	tests := []struct {
		name     string
		closeErr error
	}{
		{"closes the transport", nil},
		{"returns the transport error", closeErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, transport := newMockModem(t, context.Background())
			transport.EXPECT().Close().Return(tt.closeErr)

			if err := m.Close(); !errors.Is(err, tt.closeErr) {
				t.Errorf("Close() error = %v, want %v", err, tt.closeErr)
			}
			if err := m.Close(); !errors.Is(err, modem.ErrAlreadyClosed) {
				t.Errorf("second Close() error = %v, want ErrAlreadyClosed", err)
			}
			if _, err := m.Command(context.Background(), "+CSQ", 0); !errors.Is(err, modem.ErrAlreadyClosed) {
				t.Errorf("Command() after Close error = %v, want ErrAlreadyClosed", err)
			}
		})
	}
}

func TestModemLoop(t *testing.T) {
	t.Run("stops on EOF", func(t *testing.T) {
		m, transport := newMockModem(t, context.Background())
		transport.EXPECT().Read(gomock.Any()).Return(0, io.EOF)
		transport.EXPECT().Close().Return(nil)
		defer m.Close()

		if err := m.Loop(context.Background()); !errors.Is(err, io.EOF) {
			t.Errorf("Loop() error = %v, want EOF", err)
		}
	})

	t.Run("publishes unsolicited lines", func(t *testing.T) {
		m, transport := newMockModem(t, context.Background())
		release := make(chan struct{})
		gomock.InOrder(
			transport.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
				return copy(p, "+CIREPI: 1\r\n"), nil
			}),
			transport.EXPECT().Read(gomock.Any()).DoAndReturn(func([]byte) (int, error) {
				<-release
				return 0, io.EOF
			}),
		)
		transport.EXPECT().Close().Return(nil)
		defer m.Close()

		loopDone := make(chan error, 1)
		go func() { loopDone <- m.Loop(context.Background()) }()

		select {
		case urc := <-m.URC():
			if urc != "+CIREPI: 1" {
				t.Errorf("URC = %q, want +CIREPI: 1", urc)
			}
		case <-time.After(time.Second):
			t.Error("no URC received")
		}

		close(release)
		if err := <-loopDone; !errors.Is(err, io.EOF) {
			t.Errorf("Loop() error = %v, want EOF", err)
		}
	})

	t.Run("returns on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		m, transport := newMockModem(t, ctx)
		reading := make(chan struct{})
		transport.EXPECT().Read(gomock.Any()).DoAndReturn(func([]byte) (int, error) {
			close(reading)
			<-ctx.Done()
			return 0, ctx.Err()
		})
		transport.EXPECT().Close().Return(nil)
		defer m.Close()

		loopDone := make(chan error, 1)
		go func() { loopDone <- m.Loop(ctx) }()

		<-reading
		cancel()
		if err := <-loopDone; !errors.Is(err, context.Canceled) {
			t.Errorf("Loop() error = %v, want context.Canceled", err)
		}
	})

	t.Run("propagates read errors", func(t *testing.T) {
		m, transport := newMockModem(t, context.Background())
		readErr := errors.New("transport read error")
		transport.EXPECT().Read(gomock.Any()).Return(0, readErr)
		transport.EXPECT().Close().Return(nil)
		defer m.Close()

		if err := m.Loop(context.Background()); !errors.Is(err, readErr) {
			t.Errorf("Loop() error = %v, want %v", err, readErr)
		}
	})

	t.Run("rejects a second loop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		m, transport := newMockModem(t, ctx)
		transport.EXPECT().Read(gomock.Any()).DoAndReturn(func([]byte) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		}).AnyTimes()
		transport.EXPECT().Close().Return(nil)
		defer m.Close()

		loopDone := make(chan error, 1)
		go func() { loopDone <- m.Loop(ctx) }()

		// Give the first Loop time to claim the port.
		time.Sleep(10 * time.Millisecond)

		if err := m.Loop(ctx); !errors.Is(err, modem.ErrLoopRunning) {
			t.Errorf("second Loop() error = %v, want ErrLoopRunning", err)
		}
		cancel()
		<-loopDone
	})
}

var initReplies = map[string]string{
	"AT+CPIN?": "+CPIN: READY\r\nOK\r\n",
}

// newTestModem builds a port on a TestTransport and runs its Loop until the
// test ends.
func newTestModem(t *testing.T, replies map[string]string) (*modem.Modem, *modem.TestTransport) {
	t.Helper()

	all := map[string]string{}
	for k, v := range initReplies {
		all[k] = v
	}
	for k, v := range replies {
		all[k] = v
	}

	tr := modem.NewTestTransport()
	tr.Respond(modem.Script(all))

	config, err := modem.NewConfigBuilder().
		WithDialer(modem.TestDialer{Transport: tr}).
		WithDevice("/dev/ttyUSB2").
		WithATTimeout(time.Second).
		Build()
	if err != nil {
		t.Fatalf("unexpected error from Build(): %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m, err := modem.New(ctx, config)
	if err != nil {
		cancel()
		t.Fatalf("failed to create modem: %v", err)
	}

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- m.Loop(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		m.Close()
		<-loopDone
	})
	return m, tr
}

func TestModemCommand(t *testing.T) {
	t.Run("Returns data lines without final result", func(t *testing.T) {
		m, tr := newTestModem(t, map[string]string{
			`AT+EPDN=1,"ifst",20`: "+EPDN: 1,\"new\",7,102,1500,1,\"10.0.0.5\"\r\nOK\r\n",
		})

		resp, err := m.Command(context.Background(), `+EPDN=1,"ifst",20`, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp != `+EPDN: 1,"new",7,102,1500,1,"10.0.0.5"` {
			t.Errorf("unexpected response: %q", resp)
		}

		written := tr.Written()
		if got := written[len(written)-1]; got != `AT+EPDN=1,"ifst",20` {
			t.Errorf("expected AT prefix to be added, got: %q", got)
		}
	})

	t.Run("Keeps existing AT prefix", func(t *testing.T) {
		m, tr := newTestModem(t, nil)

		if _, err := m.Command(context.Background(), "ATI", 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		written := tr.Written()
		if got := written[len(written)-1]; got != "ATI" {
			t.Errorf("expected ATI, got: %q", got)
		}
	})

	t.Run("Modem failures are CommandError", func(t *testing.T) {
		m, _ := newTestModem(t, map[string]string{
			"AT+EAPNLOCK=1": "+CME ERROR: operation not allowed\r\n",
		})

		_, err := m.Command(context.Background(), "+EAPNLOCK=1", 0)
		var cmdErr *modem.CommandError
		if !errors.As(err, &cmdErr) {
			t.Fatalf("expected CommandError, got: %v", err)
		}
		if cmdErr.Result != "+CME ERROR: operation not allowed" {
			t.Errorf("unexpected result: %q", cmdErr.Result)
		}
		if !modem.IsCommandError(err) {
			t.Error("IsCommandError should report true")
		}
	})

	t.Run("Times out and recovers", func(t *testing.T) {
		m, _ := newTestModem(t, map[string]string{
			"AT+SLOW": "",
		})

		_, err := m.Command(context.Background(), "+SLOW", 50*time.Millisecond)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected DeadlineExceeded, got: %v", err)
		}
		if modem.IsCommandError(err) {
			t.Error("timeouts must not be reported as CommandError")
		}

		if _, err := m.Command(context.Background(), "+CSQ", 0); err != nil {
			t.Errorf("port should accept commands after a timeout, got: %v", err)
		}
	})

	t.Run("Idle data lines are unsolicited", func(t *testing.T) {
		m, tr := newTestModem(t, nil)

		tr.SendData("+CGEV: ME PDN DEACT 1\r\n")

		select {
		case urc := <-m.URC():
			if urc != "+CGEV: ME PDN DEACT 1" {
				t.Errorf("unexpected URC: %q", urc)
			}
		case <-time.After(time.Second):
			t.Error("expected idle data line on the URC channel")
		}
	})
}

func TestModemAcquire(t *testing.T) {
	m, _ := newTestModem(t, nil)

	if got := m.Device(); got != "/dev/ttyUSB2" {
		t.Errorf("unexpected device: %q", got)
	}
	if err := m.Acquire(); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := m.Acquire(); !errors.Is(err, modem.ErrPortInUse) {
		t.Errorf("expected ErrPortInUse, got: %v", err)
	}
	m.Release()
	if err := m.Acquire(); err != nil {
		t.Errorf("Acquire after Release failed: %v", err)
	}
}
