package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rf-tools/chanspector/control"
	"github.com/rf-tools/chanspector/internal/config"
	"github.com/rf-tools/chanspector/internal/engx"
	"github.com/rf-tools/chanspector/internal/rig"
	"github.com/rf-tools/chanspector/internal/source/audiosource"
	"github.com/rf-tools/chanspector/internal/telemetry"
	"github.com/rf-tools/chanspector/mq"
	"github.com/rf-tools/chanspector/worker"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the engine: open MQs, start the worker pool, serve metrics, and dispatch control requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd)
		},
	}
}

func serve(cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	log, err := engx.New(cfg.Log.Level, cfg.Log.FilePath, engx.Rotation{
		MaxSizeMB:  cfg.Log.Rotation.MaxSizeMB,
		MaxAgeDays: cfg.Log.Rotation.MaxAgeDays,
		MaxBackups: cfg.Log.Rotation.MaxBackups,
		Compress:   cfg.Log.Rotation.Compress,
	})
	if err != nil {
		return err
	}

	var metricsSrv *telemetry.Server
	if cfg.Metrics.Enabled {
		metricsSrv = telemetry.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path, log)
		metricsSrv.Start()
	}

	source, err := audiosource.Open(cfg.Audio.DeviceName, cfg.SampRate, cfg.Audio.BufferSize)
	if err != nil {
		return err
	}
	defer source.Close()

	var rigCtrl *rig.Controller
	if cfg.Rig.Enabled {
		rigCtrl, err = rig.Open(cfg.Rig.Model, cfg.Rig.Device)
		if err != nil {
			return err
		}
		defer rigCtrl.Close()
	}

	inQueue := mq.New(mq.NewPool(1024, 64, func(peak int) {
		log.Warn("message pool peak size crossed threshold", "peak", peak)
	}))
	outQueue := mq.New(nil)
	defer inQueue.Finalize()
	defer outQueue.Finalize()

	table := control.NewTable()
	pool := worker.NewPool(outQueue, source)
	handler := control.NewHandler(table, cfg.SampRate, outQueue, pool)
	if rigCtrl != nil {
		handler.RigTuner = func(centerHz float64) error {
			if err := rigCtrl.Tune(centerHz); err != nil {
				log.Warn("rig retune failed", "center_hz", centerHz, "err", err)
				return err
			}
			return nil
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go dispatchLoop(ctx, inQueue, handler, log)
	go sweepLoop(ctx, table, sweepInterval(cfg), log)
	go metricsLoop(ctx, table, inQueue, outQueue)
	go estimatorLoop(ctx, outQueue, log)

	<-ctx.Done()
	log.Info("shutting down")
	if metricsSrv != nil {
		if err := metricsSrv.Stop(context.Background()); err != nil {
			log.Error("metrics server shutdown failed", "err", err)
		}
	}
	return nil
}

func sweepInterval(cfg *config.Config) time.Duration {
	d, err := time.ParseDuration(cfg.Sweep.Interval)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// dispatchLoop is the analyzer: a single goroutine owning the inspector
// table, reading control requests off inQueue and dispatching them
// serially.
func dispatchLoop(ctx context.Context, inQueue *mq.Queue, handler *control.Handler, log *engx.Logger) {
	for {
		if ctx.Err() != nil {
			return
		}
		msg, ok := inQueue.Read()
		if !ok {
			return
		}
		req, ok := msg.Payload.(control.InspectorMsg)
		if !ok {
			continue
		}
		if err := handler.Dispatch(&req); err != nil {
			log.Error("control dispatch write failed", "err", err)
		}
	}
}

// metricsLoop periodically republishes the gauges that have no single
// natural update site: queue depth (read on demand rather than tracked
// incrementally, since Queue.Len already walks the list for diagnostics) and
// per-state inspector counts (table.CountByState, rather than maintaining
// counters at every individual Advance call).
func metricsLoop(ctx context.Context, table *control.Table, in, out *mq.Queue) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			telemetry.QueueDepth.WithLabelValues("control_in").Set(float64(in.Len()))
			telemetry.QueueDepth.WithLabelValues("control_out").Set(float64(out.Len()))
			for state, count := range table.CountByState() {
				telemetry.InspectorsByState.WithLabelValues(state.String()).Set(float64(count))
			}
		}
	}
}

// estimatorLoop drains the unsolicited TypeEstimator pushes a worker
// callback emits and logs each one, standing in for a real external
// subscriber of that message type.
func estimatorLoop(ctx context.Context, out *mq.Queue, log *engx.Logger) {
	for {
		if ctx.Err() != nil {
			return
		}
		msg, ok := out.ReadType(worker.TypeEstimator)
		if !ok {
			return
		}
		update, ok := msg.Payload.(worker.EstimatorUpdate)
		if !ok {
			continue
		}
		log.EstimatorStatus(update.InspectorID, update.FacBaud, update.NlnBaud)
	}
}

// sweepLoop periodically reaps Halted inspector table entries, so an
// inspector whose worker dropped it never waits on a second CLOSE to be
// reclaimed.
func sweepLoop(ctx context.Context, table *control.Table, interval time.Duration, log *engx.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if reaped := table.Sweep(); reaped > 0 {
				telemetry.SweepReapedTotal.Add(float64(reaped))
				log.Debug("sweep reaped entries", "count", reaped)
			}
		}
	}
}
