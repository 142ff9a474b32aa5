package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/smileynet/pantry"
	"github.com/smileynet/pantry/internal/api"
	"github.com/smileynet/pantry/internal/catalog"
	"github.com/smileynet/pantry/internal/config"
	"github.com/smileynet/pantry/internal/facade"
	"github.com/smileynet/pantry/internal/querycache"
	"github.com/smileynet/pantry/internal/store"
)

// errInjected is returned by endpoints named in --fault.
var errInjected = errors.New("injected fault")

// app holds everything a command needs once config is resolved.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *prometheus.Registry
	sources  *catalog.Registry
	api      *api.API
	flushLog func()
}

// newApp loads every registered kind's seed and tag catalog and declares
// its endpoints.
func newApp(cfg *config.Config, opts ...facade.Option) (*app, error) {
	logger, flush, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	f := facade.New(append([]facade.Option{
		facade.WithDelay(cfg.Facade.Delay),
		facade.WithLogger(logger.Named("facade")),
	}, opts...)...)
	c := querycache.New(
		querycache.WithLogger(logger.Named("querycache")),
		querycache.WithRegisterer(reg),
	)
	a := api.New(f, c)

	sources := pantry.Registry(pantry.OverlayFS(cfg.Seed.Dir, pantry.Seeds))
	for _, name := range sources.AvailableKinds() {
		src, err := sources.Load(name)
		if err != nil {
			flush()
			return nil, fmt.Errorf("seeds: %w", err)
		}
		a.Register(store.New(src.Kind, src.Seed), src.Tags)
		logger.Debug("registered kind",
			zap.String("kind", string(src.Kind)),
			zap.Int("count", len(src.Seed)),
			zap.Int("tags", len(src.Tags.Tags())))
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  reg,
		sources:  sources,
		api:      a,
		flushLog: flush,
	}, nil
}

// resource resolves a kind name as typed on the command line. Plural and
// mixed-case names are accepted.
func (a *app) resource(name string) (*api.Resource, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, kind := range a.api.Kinds() {
		if want == string(kind) || want == strings.ToLower(kind.Plural()) {
			res, _ := a.api.Resource(kind)
			return res, nil
		}
	}
	return nil, &catalog.UnknownKindError{Name: name, Available: a.sources.AvailableKinds()}
}

// close logs the cache counters and flushes the logger.
func (a *app) close() {
	logMetrics(a.logger, a.metrics)
	a.flushLog()
}

// newLogger builds a JSON file logger, or a no-op logger when no file is
// configured since the TUI owns the terminal.
func newLogger(cfg config.Log) (*zap.Logger, func(), error) {
	if cfg.File == "" {
		return zap.NewNop(), func() {}, nil
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log: %w", err)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.OutputPaths = []string{cfg.File}
	zapConfig.ErrorOutputPaths = []string{cfg.File}
	zapConfig.Sampling = nil

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("log: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// faultFor returns a fault hook failing the named endpoints, or nil when
// none are named.
func faultFor(ops []string) facade.FaultFunc {
	if len(ops) == 0 {
		return nil
	}
	all := slices.Contains(ops, "all")
	return func(op string) error {
		if all || slices.Contains(ops, op) {
			return errInjected
		}
		return nil
	}
}

// logMetrics writes every gathered counter at info level.
func logMetrics(logger *zap.Logger, g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		logger.Warn("gathering metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		if mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, m := range mf.GetMetric() {
			logger.Info("metric", counterFields(mf.GetName(), m)...)
		}
	}
}

func counterFields(name string, m *dto.Metric) []zap.Field {
	fields := []zap.Field{
		zap.String("metric", name),
		zap.Float64("value", m.GetCounter().GetValue()),
	}
	for _, lp := range m.GetLabel() {
		fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
	}
	return fields
}
