package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/timestables/internal/app"
	"github.com/abhisek/timestables/internal/config"
	"github.com/abhisek/timestables/internal/logger"
	"github.com/abhisek/timestables/internal/problemgen"
	"github.com/abhisek/timestables/internal/recorder"
	"github.com/abhisek/timestables/internal/remote"
	"github.com/abhisek/timestables/internal/store"
)

// runtime holds what every command builds from the configuration.
type runtime struct {
	cfg     *config.Config
	log     *zap.Logger
	store   *store.Store
	rec     *recorder.Recorder
	metrics *prometheus.Registry
}

// setup loads configuration, then builds the logger, the local store and
// the recorder. console receives log output in addition to the log file;
// pass nil when the terminal belongs to the TUI. When requireStore is
// false a store that fails to open is logged and play continues in memory.
func setup(cmd *cobra.Command, console io.Writer, requireStore bool) (*runtime, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	logPath := cfg.Log.File
	if logPath == "" {
		if logPath, err = logger.DefaultPath(); err != nil {
			return nil, err
		}
	}
	log, err := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		File:       logPath,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Console:    console,
	})
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, log: log, metrics: prometheus.NewRegistry()}

	st, err := cfg.OpenStore()
	switch {
	case err == nil:
		rt.store = st
	case requireStore:
		log.Sync()
		return nil, fmt.Errorf("open store: %w", err)
	default:
		log.Warn("local store unavailable, results will not be kept", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Could not open the local database:", err)
		fmt.Fprintln(os.Stderr, "Results from this run will not be saved on this computer.")
	}

	if err := recorder.RegisterMetrics(rt.metrics); err != nil {
		rt.Close()
		return nil, err
	}

	opts := []recorder.Option{recorder.WithLogger(log)}
	if cfg.Remote.URL != "" {
		opts = append(opts, recorder.WithRemote(remote.New(cfg.Remote.URL, remote.WithTimeout(cfg.Remote.Timeout))))
		log.Info("using remote backend", zap.String("url", cfg.Remote.URL))
	}
	var local recorder.LocalStore
	if rt.store != nil {
		local = rt.store
	}
	rt.rec = recorder.New(local, opts...)
	return rt, nil
}

// Close reports persistence fallbacks seen during the run, then releases
// the store and flushes the logger.
func (rt *runtime) Close() {
	if families, err := rt.metrics.Gather(); err == nil {
		for _, mf := range families {
			for _, m := range mf.GetMetric() {
				fields := []zap.Field{zap.String("metric", mf.GetName()), zap.Float64("count", m.GetCounter().GetValue())}
				for _, l := range m.GetLabel() {
					fields = append(fields, zap.String(l.GetName(), l.GetValue()))
				}
				rt.log.Info("persistence fallbacks", fields...)
			}
		}
	}
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			rt.log.Warn("close store", zap.Error(err))
		}
	}
	_ = rt.log.Sync()
}

// runApp builds dependencies and launches the TUI. A non-empty player with
// a level goes straight into that level.
func runApp(cmd *cobra.Command, player string, level int) error {
	rt, err := setup(cmd, nil, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.log.Info("starting game", zap.String("player", player), zap.Int("level", level))
	return app.Run(app.Options{
		Generator:  problemgen.New(),
		Recorder:   rt.rec,
		Player:     player,
		StartLevel: level,
	})
}
