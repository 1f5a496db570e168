package ingestor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"railroute/internal/domain"
	"railroute/internal/graph"
	"railroute/internal/store"
	"railroute/pkg/connections"
)

// Ingestor loads connection records, builds a network and publishes it to the
// store. Loads are serialized; queries keep reading the previous snapshot
// until the new one is swapped in.
type Ingestor struct {
	source   connections.Source
	store    *store.NetworkStore
	opts     graph.BuildOptions
	interval time.Duration
	logger   *slog.Logger
	onUpdate []func(context.Context, *graph.Network)

	loadMu sync.Mutex

	stateMu  sync.RWMutex
	ready    bool
	lastErr  error
	lastLoad time.Time
}

func New(source connections.Source, s *store.NetworkStore, opts graph.BuildOptions, interval time.Duration, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		source:   source,
		store:    s,
		opts:     opts,
		interval: interval,
		logger:   logger.With("component", "ingestor"),
	}
}

// OnUpdate registers fn to run after every successful swap.
func (i *Ingestor) OnUpdate(fn func(context.Context, *graph.Network)) {
	i.onUpdate = append(i.onUpdate, fn)
}

// Start loads once and then reloads every interval until ctx is done. A zero
// interval disables periodic reloads.
func (i *Ingestor) Start(ctx context.Context) {
	if err := i.Load(ctx); err != nil {
		i.logger.Error("initial network load failed", "source", i.source.Name(), "error", err)
	}
	if i.interval <= 0 {
		return
	}

	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := i.Load(ctx); err != nil {
				i.logger.Error("network reload failed", "source", i.source.Name(), "error", err)
			}
		}
	}
}

// Load reads the source and swaps in a new network. If nothing has been
// loaded yet a failure leaves the store explicitly empty; otherwise the
// previous network stays active.
func (i *Ingestor) Load(ctx context.Context) error {
	i.loadMu.Lock()
	defer i.loadMu.Unlock()

	start := time.Now()
	i.logger.Info("starting network load", "source", i.source.Name())

	net, err := i.build(ctx)
	if err != nil {
		if !i.IsReady() {
			i.store.Reset()
		}
		i.setState(false, err)
		return err
	}

	old := i.store.Swap(net)
	i.setState(true, nil)

	for _, fn := range i.onUpdate {
		fn(ctx, net)
	}

	i.logger.Info("network load completed",
		"version", net.Version,
		"previous_version", old.Version,
		"stations", net.StationCount(),
		"edges", net.EdgeCount(),
		"skipped", net.Skipped,
		"total_duration", time.Since(start),
	)
	return nil
}

func (i *Ingestor) build(ctx context.Context) (*graph.Network, error) {
	records, err := i.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load connections: %w", err)
	}

	net, _, err := graph.Build(records, i.opts, i.logger)
	if err != nil {
		return nil, fmt.Errorf("build network: %w", err)
	}
	if net.IsEmpty() {
		return nil, fmt.Errorf("%w: no usable connections in %s", domain.ErrIngestionUnavailable, i.source.Name())
	}
	return net, nil
}

func (i *Ingestor) setState(ok bool, err error) {
	i.stateMu.Lock()
	defer i.stateMu.Unlock()
	if ok {
		i.ready = true
		i.lastLoad = time.Now()
	}
	i.lastErr = err
}

// IsReady reports whether at least one network has been published.
func (i *Ingestor) IsReady() bool {
	i.stateMu.RLock()
	defer i.stateMu.RUnlock()
	return i.ready
}

// LastError returns the error of the most recent load, or nil.
func (i *Ingestor) LastError() error {
	i.stateMu.RLock()
	defer i.stateMu.RUnlock()
	return i.lastErr
}

func (i *Ingestor) LastLoad() time.Time {
	i.stateMu.RLock()
	defer i.stateMu.RUnlock()
	return i.lastLoad
}
