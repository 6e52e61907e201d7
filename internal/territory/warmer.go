package territory

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Warmer is the part of the service the cache warmer drives
type Warmer interface {
	Warm(ctx context.Context, epcis []string) error
}

// CacheWarmer recomputes the default results of a set of EPCIs on a cron schedule
type CacheWarmer struct {
	cron    *cron.Cron
	warmer  Warmer
	spec    string
	epcis   []string
	logger  *zap.Logger
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewCacheWarmer creates a cache warmer. spec is a standard five field cron expression.
func NewCacheWarmer(warmer Warmer, spec string, epcis []string, logger *zap.Logger) *CacheWarmer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheWarmer{
		cron:   cron.New(),
		warmer: warmer,
		spec:   spec,
		epcis:  epcis,
		logger: logger,
	}
}

// Start schedules the warm job and runs it once immediately
func (w *CacheWarmer) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("cache warmer already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	if _, err := w.cron.AddFunc(w.spec, func() { w.Run(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("invalid warm schedule %q: %w", w.spec, err)
	}

	w.logger.Info("Starting cache warmer", zap.String("schedule", w.spec), zap.Int("epcis", len(w.epcis)))
	w.cancel = cancel
	w.running = true
	w.cron.Start()
	go w.Run(ctx)

	return nil
}

// Run warms the cache once
func (w *CacheWarmer) Run(ctx context.Context) {
	if err := w.warmer.Warm(ctx, w.epcis); err != nil {
		w.logger.Error("Cache warm failed", zap.Error(err))
		return
	}
	w.logger.Info("Cache warmed", zap.Int("epcis", len(w.epcis)))
}

// Stop stops the scheduler and waits for a running job to finish
func (w *CacheWarmer) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	w.logger.Info("Stopping cache warmer")
	w.cancel()
	<-w.cron.Stop().Done()
	w.running = false
}
