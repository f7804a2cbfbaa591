package main

import (
	"context"
	"log/slog"
	"time"

	"i4.energy/across/mmplugins/bearer"
	"i4.energy/across/mmplugins/capability"
	"i4.energy/across/mmplugins/foxconn"
	"i4.energy/across/mmplugins/simtech"
)

// vendorTeardownTimeout bounds the commands sent when the daemon stops.
const vendorTeardownTimeout = 10 * time.Second

// runVendor enables the vendor capabilities selected by config.Vendor,
// waits until ctx is done and then disables them again.
func runVendor(ctx context.Context, config *Config, primary bearer.Channel, reg capability.IndicationRegistry, logger *slog.Logger) error {
	switch config.Vendor {
	case VendorSimTech:
		return runSimTech(ctx, simtech.New(primary, simtech.WithLogger(logger)), reg, logger)
	case VendorFoxconn:
		m := foxconn.New(foxconn.DeviceInfo{
			Device:    config.PrimaryPort,
			Plugin:    VendorFoxconn,
			VendorID:  config.VendorID,
			ProductID: config.ProductID,
		},
			foxconn.WithPrimaryPort(primary),
			foxconn.WithGPSPort(config.GPSPort),
			foxconn.WithLogger(logger),
		)
		return runFoxconn(ctx, m, logger)
	default:
		<-ctx.Done()
		return nil
	}
}

func runSimTech(ctx context.Context, m *simtech.Modem, reg capability.IndicationRegistry, logger *slog.Logger) error {
	supported, err := m.CheckSupport(ctx)
	if err != nil {
		return err
	}
	logger.Info("Voice support checked", "supported", supported, "pcm_audio", m.PCMAudio())
	if !supported {
		<-ctx.Done()
		return nil
	}
	if err := m.EnableUnsolicitedEvents(ctx); err != nil {
		return err
	}

	// Call list reports of the modem are tracked on a single call.
	call := m.CreateCall(capability.DirectionUnknown, "")
	call.Observe(func(sc capability.StateChange) {
		logger.Info("Call state", "old", sc.Old, "new", sc.New, "reason", sc.Reason)
	})
	if err := call.SetupUnsolicitedEvents(reg); err != nil {
		return err
	}

	<-ctx.Done()

	teardownCtx, cancel := context.WithTimeout(context.Background(), vendorTeardownTimeout)
	defer cancel()
	if err := call.CleanupUnsolicitedEvents(reg); err != nil {
		logger.Warn("Failed to clean up call events", "error", err)
	}
	if err := m.DisableUnsolicitedEvents(teardownCtx); err != nil {
		logger.Warn("Failed to disable call list reporting", "error", err)
	}
	return nil
}

func runFoxconn(ctx context.Context, m *foxconn.Modem, logger *slog.Logger) error {
	settings := m.Settings()
	logger.Info("Foxconn modem", "carrier_mapping", settings.CarrierMapping,
		"data_net", settings.DataNetSupported, "sim_hot_swap", settings.SIMHotSwapSupported)

	sources, err := m.LoadCapabilities(ctx)
	if err != nil {
		return err
	}
	logger.Info("Location capabilities", "sources", sources)
	if !sources.Has(capability.SourceGPSUnmanaged) {
		<-ctx.Done()
		return nil
	}
	if err := m.EnableGathering(ctx, capability.SourceGPSUnmanaged); err != nil {
		return err
	}

	<-ctx.Done()

	teardownCtx, cancel := context.WithTimeout(context.Background(), vendorTeardownTimeout)
	defer cancel()
	if err := m.DisableGathering(teardownCtx, capability.SourceGPSUnmanaged); err != nil {
		logger.Warn("Failed to disable unmanaged GPS", "error", err)
	}
	return nil
}
