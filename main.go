package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"
	"go.bug.st/serial"

	"i4.energy/across/mmplugins/at"
	"i4.energy/across/mmplugins/bearer"
	"i4.energy/across/mmplugins/modem"
	"i4.energy/across/mmplugins/mtk"
	"i4.energy/across/mmplugins/netconf"
)

// registrationWaiter blocks until the modem reports that it has registered
// with the network.
func registrationWaiter(d *modem.Dispatcher, logger *slog.Logger) mtk.RegistrationWaiter {
	return func(ctx context.Context) error {
		line, err := d.WaitFor(ctx, at.UrcRegistrationIndic)
		if err == nil {
			logger.Debug("Network registration reported", "line", line)
		}
		return err
	}
}

func main() {
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	flag.String("primary-port", "/dev/ttyUSB0", "Serial port of the modem control channel")
	flag.String("data-port", "", "Serial port used for data setup (defaults to the primary port)")
	flag.Int("baud-rate", 115200, "Baud rate for serial communication")
	flag.String("apn", "", "Access point name")
	flag.String("user", "", "APN user name")
	flag.String("password", "", "APN password")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.String("sim-pin", "", "SIM card PIN code (if required)")
	flag.Duration("activation-delay", mtk.DefaultActivationDelay, "Maximum wait for network registration before APN activation")
	flag.Bool("trace", false, "Log all AT traffic")
	flag.Bool("apply-netconf", false, "Configure the data interface after connecting")
	flag.String("resolv-dir", netconf.DefaultResolvDir, "Directory for per-interface resolv.conf files")
	flag.String("vendor", "", "Vendor capabilities to enable (simtech, foxconn)")
	flag.String("gps-port", "", "NMEA port of a Foxconn modem")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithFile(*configPath), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(config.LogLevel)}))
	slog.SetDefault(logger)

	var sigErr run.SignalError
	if err := runDaemon(config, logger); err != nil && !errors.As(err, &sigErr) {
		logger.Error("Daemon stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("Daemon stopped")
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openPort(config *Config, device string, checkSIM bool, logger *slog.Logger) (*modem.Modem, error) {
	builder := modem.NewConfigBuilder().
		WithDevice(device).
		WithDialer(modem.SerialDialer{
			PortName: device,
			Mode: &serial.Mode{
				BaudRate: config.BaudRate,
				DataBits: 8,
				Parity:   serial.NoParity,
				StopBits: serial.OneStopBit,
			},
		}).
		WithTrace(config.Trace).
		WithLogger(logger.With("component", "modem", "device", device))
	if checkSIM {
		builder = builder.WithSimPIN(config.SimPIN)
	} else {
		builder = builder.WithoutSIMCheck()
	}
	modemConfig, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return modem.New(context.Background(), modemConfig)
}

func runDaemon(config *Config, logger *slog.Logger) error {
	primary, err := openPort(config, config.PrimaryPort, true, logger)
	if err != nil {
		return err
	}
	defer primary.Close()

	ports := bearer.Ports{Primary: primary}
	var data *modem.Modem
	if config.DataPort != "" && config.DataPort != config.PrimaryPort {
		if data, err = openPort(config, config.DataPort, false, logger); err != nil {
			return err
		}
		defer data.Close()
		ports.Data = data
	}

	dispatcher := modem.NewDispatcher(logger.With("component", "urc"))

	b := mtk.New(ports, config.Bearer,
		mtk.WithLogger(logger.With("component", "bearer")),
		mtk.WithConnectionTimeout(config.ConnectionTimeout.Duration()),
		mtk.WithActivationDelay(config.ActivationDelay.Duration()),
		mtk.WithRegistrationWaiter(registrationWaiter(dispatcher, logger)),
	)

	srv := &Server{
		Logger:  logger.With("component", "server"),
		Bearer:  b,
		Primary: primary,
	}
	if config.ApplyNetconf {
		netLogger := logger.With("component", "netconf")
		srv.Network = netconf.New(netconf.WithResolvDir(config.ResolvDir), netconf.WithLogger(netLogger))
		srv.Prober = netconf.NewProber(netLogger)
	}

	httpServer := &http.Server{
		Addr:    config.BindAddress,
		Handler: srv,
	}

	logger.Info("Starting modem plugin daemon",
		"primary_port", primary.Device(), "data_port", config.DataPort, "apn", config.Bearer.APN, "vendor", config.Vendor)

	var g run.Group

	g.Add(run.SignalHandler(context.Background(), syscall.SIGINT, syscall.SIGTERM))

	// Interrupts run in the order the actors were added: the session is
	// torn down while the port loops still run.
	g.Add(func() error {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		logger.Info("Closing HTTP server")
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("Failed to gracefully shutdown server", "error", err)
		}
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Failed to disconnect bearer", "error", err)
		}
	})

	vendorCtx, vendorCancel := context.WithCancel(context.Background())
	vendorDone := make(chan struct{})
	g.Add(func() error {
		defer close(vendorDone)
		vendorLogger := logger.With("component", "vendor", "vendor", config.Vendor)
		if err := runVendor(vendorCtx, config, primary, dispatcher, vendorLogger); err != nil {
			vendorLogger.Warn("Vendor capabilities unavailable", "error", err)
			<-vendorCtx.Done()
		}
		return nil
	}, func(error) {
		vendorCancel()
		<-vendorDone
	})

	addPort(&g, primary, dispatcher)
	if data != nil {
		addPort(&g, data, dispatcher)
	}

	return g.Run()
}

// addPort runs the event loop of m and routes its unsolicited lines through
// dispatcher.
func addPort(g *run.Group, m *modem.Modem, dispatcher *modem.Dispatcher) {
	ctx, cancel := context.WithCancel(context.Background())
	g.Add(func() error {
		return m.Loop(ctx)
	}, func(error) {
		cancel()
	})
	g.Add(func() error {
		return dispatcher.Run(ctx, m.URC())
	}, func(error) {
		cancel()
	})
}
