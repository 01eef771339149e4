package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ameersohail0/OpenDaVINCI/codec"
	"github.com/ameersohail0/OpenDaVINCI/config"
	"github.com/ameersohail0/OpenDaVINCI/delivery"
	"github.com/ameersohail0/OpenDaVINCI/envelope"
	"github.com/ameersohail0/OpenDaVINCI/errors"
	"github.com/ameersohail0/OpenDaVINCI/health"
	"github.com/ameersohail0/OpenDaVINCI/metric"
	"github.com/ameersohail0/OpenDaVINCI/monitor"
	"github.com/ameersohail0/OpenDaVINCI/natsclient"
	"github.com/ameersohail0/OpenDaVINCI/pkg/retry"
	"github.com/ameersohail0/OpenDaVINCI/pkg/tlsutil"
	"github.com/ameersohail0/OpenDaVINCI/registry"
	"github.com/ameersohail0/OpenDaVINCI/schema"
	"github.com/ameersohail0/OpenDaVINCI/transport"
)

// app wires the configured mode to its collaborators
type app struct {
	cfg      *config.Config
	live     *config.SafeConfig
	logger   *slog.Logger
	codec    *codec.Codec
	registry *registry.Registry
	metrics  *metric.MetricsRegistry
	surface  *delivery.Surface
	health   *health.Monitor
	natsErr  lastError
	out      io.Writer
}

// lastError holds the most recent NATS disconnect error for health reports
type lastError struct {
	mu  sync.Mutex
	err error
}

func (l *lastError) set(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

func (l *lastError) get() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	reg, err := schema.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("build schema registry: %w", err)
	}

	metrics := metric.NewMetricsRegistry()
	surface := delivery.NewSurface(cfg.Node.Surface,
		delivery.WithLogger(logger),
		delivery.WithMetrics(metrics.CoreMetrics()))
	if err := bindShapes(surface); err != nil {
		return nil, err
	}

	mon := health.NewMonitor(cfg.Node.Name)
	mon.Register("surface", func() health.Status {
		return health.FromSurface(surface.Name(), surface.Delivered(), surface.Dropped())
	})

	return &app{
		cfg:      cfg,
		live:     config.NewSafeConfig(cfg.Clone()),
		logger:   logger,
		codec:    codec.New(codec.WithMaxTextLength(cfg.Codec.MaxTextLength)),
		registry: reg,
		metrics:  metrics,
		surface:  surface,
		health:   mon,
		out:      os.Stdout,
	}, nil
}

// bindShapes gives every schema shape a latest-value cell on s
func bindShapes(s *delivery.Surface) error {
	binds := []func() error{
		func() error { _, err := delivery.Bind[schema.Sample](s); return err },
		func() error { _, err := delivery.Bind[schema.Beacon](s); return err },
		func() error { _, err := delivery.Bind[schema.VehicleControl](s); return err },
		func() error { _, err := delivery.Bind[schema.Vector3](s); return err },
		func() error { _, err := delivery.Bind[schema.Pose](s); return err },
		func() error { _, err := delivery.Bind[schema.SensorBoardData](s); return err },
	}
	for _, bind := range binds {
		if err := bind(); err != nil {
			return err
		}
	}
	return nil
}

// Run starts the side servers, runs the mode until ctx is done and shuts
// everything down within shutdownTimeout.
func (a *app) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	stop := a.startServers()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		stop(shutdownCtx)
	}()

	if a.cfg.Node.Mode == config.ModeReplay {
		return a.replay(ctx)
	}

	client, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Close(closeCtx); err != nil {
			a.logger.Warn("NATS close failed", "error", err)
		}
	}()

	switch a.cfg.Node.Mode {
	case config.ModePublish:
		return a.publish(ctx, client)
	case config.ModeRecord:
		return a.record(ctx, client)
	default:
		return a.consume(ctx, client)
	}
}

func (a *app) startServers() func(context.Context) {
	var stops []func(context.Context) error

	if a.cfg.Metrics.Enabled {
		srv := metric.NewServer(a.cfg.Metrics.Port, a.cfg.Metrics.Path, a.metrics).WithHealth(a.health)
		if err := srv.Listen(); err != nil {
			a.logger.Error("metrics server failed", "error", err)
		} else {
			go func() {
				if err := srv.Start(); err != nil {
					a.logger.Error("metrics server failed", "error", err)
				}
			}()
			a.logger.Info("metrics server listening", "address", srv.Address())
			stops = append(stops, srv.Stop)
		}
	}

	if a.cfg.Monitor.Enabled {
		h := monitor.NewHandler(a.surface, a.cfg.Monitor.Interval.Std(), monitor.WithLogger(a.logger))
		srv := monitor.NewServer(a.cfg.Monitor.Port, a.cfg.Monitor.Path, h)
		if err := srv.Listen(); err != nil {
			a.logger.Error("monitor server failed", "error", err)
		} else {
			go func() {
				if err := srv.Start(); err != nil {
					a.logger.Error("monitor server failed", "error", err)
				}
			}()
			a.logger.Info("monitor listening", "address", srv.ListenAddr().String(), "path", a.cfg.Monitor.Path)
		}
		stops = append(stops, srv.Stop)
	}

	return func(ctx context.Context) {
		for i := len(stops) - 1; i >= 0; i-- {
			if err := stops[i](ctx); err != nil {
				a.logger.Warn("server shutdown failed", "error", err)
			}
		}
	}
}

func (a *app) connect(ctx context.Context) (*natsclient.Client, error) {
	tlsConfig, err := tlsutil.LoadClientTLSConfig(a.cfg.NATS.TLS)
	if err != nil {
		return nil, fmt.Errorf("load NATS TLS config: %w", err)
	}

	client, err := natsclient.NewClient(a.cfg.NATS.URL,
		natsclient.WithName(a.cfg.Node.Name),
		natsclient.WithLogger(a.logger),
		natsclient.WithMetrics(a.metrics.CoreMetrics()),
		natsclient.WithMaxReconnects(a.cfg.NATS.MaxReconnects),
		natsclient.WithReconnectWait(a.cfg.NATS.ReconnectWait.Std()),
		natsclient.WithTimeout(a.cfg.NATS.Timeout.Std()),
		natsclient.WithDrainTimeout(a.cfg.NATS.DrainTimeout.Std()),
		natsclient.WithTLSConfig(tlsConfig),
		natsclient.WithDisconnectCallback(a.natsErr.set),
		natsclient.WithReconnectCallback(func() { a.natsErr.set(nil) }),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}
	a.health.Register("nats", func() health.Status {
		return health.FromConnection("nats", client.GetStatus(), a.natsErr.get())
	})

	a.logger.Info("Connecting to NATS", "url", a.cfg.NATS.URL)
	if err := retry.Do(ctx, a.connectRetry(), func() error { return client.Connect(ctx) }); err != nil {
		a.natsErr.set(err)
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return client, nil
}

// connectRetry retries transient connect failures until the client's
// circuit breaker opens.
func (a *app) connectRetry() retry.Config {
	cfg := retry.Quick()
	cfg.MaxAttempts = a.cfg.NATS.ConnectAttempts
	cfg.Retryable = func(err error) bool {
		return errors.IsTransient(err) && !errors.Is(err, natsclient.ErrCircuitOpen)
	}
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		a.logger.Warn("NATS connect failed", "attempt", attempt, "retry_in", delay, "error", err)
	}
	return cfg
}

// demoRound builds one round of demo records for publish mode
func demoRound(n int) []*envelope.Envelope {
	f := float64(n)
	return []*envelope.Envelope{
		envelope.From(*schema.NewVehicleControl(1.5+0.01*f, 0.2, 0.05, n%10 == 0, n%4 < 2, false)),
		envelope.From(*schema.NewSensorBoardData(5, 1.2, 0.8, 0.4, 0.35, float32(n%7)/7)),
		envelope.From(*schema.NewBeacon(true, int32(n), fmt.Sprintf("round-%d", n))),
		envelope.From(*schema.NewPose(*schema.NewVector3(f, f/2, 0), *schema.NewVector3(0, 0, f/100), "map")),
	}
}

func (a *app) publish(ctx context.Context, conn transport.MsgPublisher) error {
	pub := transport.NewPublisher(conn, a.codec, a.cfg.NATS.SubjectPrefix,
		transport.WithPublisherMetrics(a.metrics.CoreMetrics()))

	interval := a.cfg.Publish.Interval.Std()
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	n := 0
	for ; ; n++ {
		// Count and interval follow reloads; the next round picks them up.
		settings := a.live.Get().Publish
		if settings.Count > 0 && n >= settings.Count {
			break
		}
		if next := settings.Interval.Std(); next != interval {
			interval = next
			limiter.SetLimit(rate.Every(interval))
			a.logger.Info("publish interval changed", "interval", interval)
		}

		if err := limiter.Wait(ctx); err != nil {
			return nil
		}
		for _, e := range demoRound(n) {
			if err := pub.Publish(ctx, e); err != nil {
				return fmt.Errorf("publish %s: %w", e.LongName(), err)
			}
		}
		a.logger.Debug("published round", "round", n)
	}
	a.logger.Info("publishing complete", "rounds", n)
	return nil
}

// Reload validates cfg and makes it the live configuration. Only the publish
// section takes effect without a restart; a changed mode is rejected.
func (a *app) Reload(cfg *config.Config) error {
	if cfg != nil && cfg.Node.Mode != a.cfg.Node.Mode {
		return errors.WrapInvalid(
			fmt.Errorf("%w: node.mode %q cannot change to %q without a restart",
				errors.ErrInvalidConfig, a.cfg.Node.Mode, cfg.Node.Mode),
			"recordbus", "Reload", "check mode")
	}
	if err := a.live.Update(cfg); err != nil {
		return err
	}
	a.logger.Info("configuration reloaded", "publish_interval", cfg.Publish.Interval.String(), "publish_count", cfg.Publish.Count)
	return nil
}

func (a *app) subscriber(conn transport.MsgSubscriber) *transport.Subscriber {
	return transport.NewSubscriber(conn, a.codec, a.registry, a.cfg.NATS.SubjectPrefix,
		transport.WithSubscriberLogger(a.logger),
		transport.WithSubscriberMetrics(a.metrics.CoreMetrics()))
}

func (a *app) consume(ctx context.Context, conn transport.MsgSubscriber) error {
	ch, _, err := a.subscriber(conn).Channel(ctx, a.cfg.Node.Buffer)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	a.logger.Info("consuming", "subject", transport.Subject(a.cfg.NATS.SubjectPrefix, ">"))

	err = a.surface.Run(ctx, ch)
	a.logViews()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (a *app) record(ctx context.Context, conn transport.MsgSubscriber) error {
	f, err := os.Create(a.cfg.Record.Path)
	if err != nil {
		return fmt.Errorf("create recording: %w", err)
	}
	defer f.Close()

	rec := transport.NewRecorder(f, a.codec)
	ch, _, err := a.subscriber(conn).Channel(ctx, a.cfg.Node.Buffer)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	a.logger.Info("recording", "path", a.cfg.Record.Path)

	err = recordFrom(ctx, ch, rec, a.surface, a.logger)
	if ferr := rec.Flush(); ferr != nil {
		return ferr
	}
	a.logger.Info("recording stopped", "frames", rec.Frames())
	return err
}

// recordFrom writes every envelope from ch to rec and keeps surface current
func recordFrom(ctx context.Context, ch <-chan *envelope.Envelope, rec *transport.Recorder, surface *delivery.Surface, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-ch:
			if !ok {
				return nil
			}
			if err := rec.Write(e); err != nil {
				if !errors.IsInvalid(err) {
					return fmt.Errorf("write frame: %w", err)
				}
				logger.Warn("frame not recorded", "type", e.LongName(), "error", err)
			}
			if err := surface.Handle(e); err != nil {
				logger.Warn("delivery failed", "error", err)
			}
		}
	}
}

func (a *app) replay(ctx context.Context) error {
	f, err := os.Open(a.cfg.Record.Path)
	if err != nil {
		return fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	n, err := replayInto(ctx, transport.NewPlayer(f, a.codec, a.registry), a.surface)
	a.logger.Info("replay finished", "frames", n, "path", a.cfg.Record.Path)
	a.logViews()
	return err
}

// replayInto hands every frame from p to surface and returns the frame count
func replayInto(ctx context.Context, p *transport.Player, surface *delivery.Surface) (int, error) {
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, nil
		}
		e, err := p.Next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("read frame %d: %w", n, err)
		}
		if err := surface.Handle(e); err != nil {
			return n, err
		}
		n++
	}
}

func (a *app) logViews() {
	for _, v := range a.surface.Views() {
		if v.Seq == 0 {
			continue
		}
		a.logger.Info("latest", "type", v.Name, "seq", v.Seq, "value", v.Text)
	}
	_, _ = fmt.Fprintf(a.out, "delivered=%d dropped=%d\n", a.surface.Delivered(), a.surface.Dropped())
}
