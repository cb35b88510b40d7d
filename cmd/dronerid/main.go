package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skywatch/dronerid/internal/config"
	"github.com/skywatch/dronerid/internal/core/ports"
	"github.com/skywatch/dronerid/internal/hopping"
	"github.com/skywatch/dronerid/internal/orchestrator"
	"github.com/skywatch/dronerid/internal/pubsub"
	"github.com/skywatch/dronerid/internal/sdr"
	"github.com/skywatch/dronerid/internal/telemetry"
	"github.com/skywatch/dronerid/internal/web"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("dronerid", flag.ExitOnError)
	mockMode := fs.Bool("mock", false, "use an in-memory mock sample source instead of real hardware")
	fs.String("config", "", "path to YAML configuration file")

	configPath := scanFlagValue(os.Args[1:], "config")

	cfg, err := config.Load(fs, os.Args[1:], configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dronerid: configuration error: %v\n", err)
		return 1
	}

	level := slog.LevelInfo
	if cfg.System.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("dronerid starting", "mock", *mockMode, "channel_plan", cfg.System.ChannelPlan, "http_addr", cfg.System.HTTPAddr)

	telemetry.InitMetrics()
	shutdownTracer, err := telemetry.InitTracer()
	if err != nil {
		slog.Error("tracer initialization failed", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Warn("tracer shutdown error", "error", err)
		}
	}()

	plan, err := hopping.ParsePlan(cfg.System.ChannelPlan)
	if err != nil {
		slog.Error("invalid channel plan", "error", err)
		return 1
	}

	var source ports.SampleSource
	if *mockMode {
		slog.Info("running in mock mode, replaying a synthetic noise block instead of real hardware")
		source = sdr.NewMock(sdr.NewDeterministicNoise(cfg.Acquisition.SampleRateHz, plan[0].CenterFreqHz(), 150000, 42, 0, time.Now()))
	} else {
		source = sdr.NewNullSource()
	}

	switcher := hopping.NewSDRSwitcher(source, plan, cfg.Acquisition.SampleRateHz, cfg.Acquisition.GainDB)

	sink, err := pubsub.NewSink(pubsub.Config{
		BrokerURL:      cfg.MQTT.BrokerURL,
		ClientID:       cfg.MQTT.ClientID,
		Username:       cfg.MQTT.Username,
		Password:       cfg.MQTT.Password,
		ConnectTimeout: time.Duration(cfg.MQTT.ConnectTimeoutS) * time.Second,
		PublishTimeout: time.Duration(cfg.MQTT.PublishTimeoutS) * time.Second,
	})
	if err != nil {
		slog.Error("failed to connect to MQTT broker", "error", err)
		return 1
	}
	defer sink.Close()

	// No BLE HCI scanner adapter is wired in: a concrete Bluetooth
	// front end is an external collaborator outside this build's
	// scope (§6), so the orchestrator runs with Wi-Fi ingestion only.
	orch, err := orchestrator.New(cfg, source, switcher, nil, sink)
	if err != nil {
		slog.Error("failed to build orchestrator", "error", err)
		return 1
	}

	hub := web.NewHub()
	orch.SetHub(hub)
	server := web.NewServer(cfg.System.HTTPAddr, orch, hub)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return orch.Run(ctx) })
	g.Go(func() error {
		if err := server.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	slog.Info("dronerid started, press Ctrl+C to exit")
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		slog.Error("fatal error", "error", err)
		return 1
	}

	slog.Info("shutting down")
	return 0
}

// scanFlagValue performs a minimal pre-scan of args for "-name value",
// "-name=value", "--name value", or "--name=value", without invoking
// the flag package, since the configuration file path must be known
// before the full flag set (which config.Load populates) is parsed.
func scanFlagValue(args []string, name string) string {
	prefixEq := "-" + name + "="
	prefixEqLong := "--" + name + "="
	for i, a := range args {
		switch {
		case strings.HasPrefix(a, prefixEqLong):
			return strings.TrimPrefix(a, prefixEqLong)
		case strings.HasPrefix(a, prefixEq):
			return strings.TrimPrefix(a, prefixEq)
		case a == "-"+name, a == "--"+name:
			if i+1 < len(args) {
				return args[i+1]
			}
		}
	}
	return ""
}
