package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noah-isme/toko-pos/internal/config"
	"github.com/noah-isme/toko-pos/internal/events"
	"github.com/noah-isme/toko-pos/internal/obs"
	"github.com/noah-isme/toko-pos/internal/pos"
	"github.com/noah-isme/toko-pos/internal/replay"
)

// pos replays a register script and prints the resulting sales as JSON.
// Exit code 0 = ok, 1 = a step failed, 2 = other error.
func main() {
	os.Exit(run())
}

func run() int {
	scriptPath := flag.String("script", "-", "path to the YAML register script, - for stdin")
	keepGoing := flag.Bool("continue", false, "record failing steps and keep replaying")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pos: config: %v\n", err)
		return 2
	}
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel, os.Stderr).With().
		Str("app_env", cfg.AppEnv).
		Logger()

	script, err := readScript(*scriptPath)
	if err != nil {
		logger.Error().Err(err).Str("script", *scriptPath).Msg("load_script_failed")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := events.NewMemoryStore()
	bus := &events.Bus{
		Store:     store,
		Notifiers: []events.Notifier{events.LogNotifier{Logger: logger}},
	}
	registry := prometheus.NewRegistry()
	runner := replay.Runner{
		DefaultCashier:  cfg.Cashier,
		DefaultTaxRate:  cfg.TaxRate,
		ContinueOnError: *keepGoing,
		Logger:          logger,
		Options: []pos.Option{
			pos.WithLogger(logger),
			pos.WithMetrics(obs.NewPOSMetrics(cfg.MetricsNamespace, registry)),
			pos.WithEvents(bus),
		},
	}

	report, runErr := runner.Run(ctx, script)
	if err := writeReport(os.Stdout, report); err != nil {
		logger.Error().Err(err).Msg("write_report_failed")
		return 2
	}
	logger.Info().
		Int("sales", len(report.Sales)).
		Int("failures", len(report.Failures)).
		Int("events", len(store.Events())).
		Msg("replay_finished")

	switch {
	case runErr != nil && len(report.Failures) == 0:
		logger.Error().Err(runErr).Msg("replay_failed")
		return 2
	case len(report.Failures) > 0:
		return 1
	default:
		return 0
	}
}

func readScript(path string) (replay.Script, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return replay.Script{}, err
		}
		defer func() {
			_ = f.Close()
		}()
		r = f
	}
	return replay.Load(r)
}

func writeReport(w io.Writer, report replay.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
