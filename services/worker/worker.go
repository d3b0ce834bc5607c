package worker

import (
	"context"
	"sync"
	"time"

	"sjsage522/dealbite/config"
	"sjsage522/dealbite/helpers"
	"sjsage522/dealbite/services/publisher"
)

// Refresher runs one refresh for a restaurant in a market
type Refresher interface {
	Refresh(ctx context.Context, restaurant, market string) (int, error)
}

// Worker refreshes the configured targets on a fixed interval
type Worker struct {
	ctx             context.Context
	targets         []config.Target
	refresher       Refresher
	publisher       publisher.Publisher
	logger          helpers.LoggerInterface
	refreshInterval time.Duration
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	targets []config.Target,
	refresher Refresher,
	pub publisher.Publisher,
	logger helpers.LoggerInterface,
	refreshInterval time.Duration,
) *Worker {
	if pub == nil {
		pub = publisher.Nop{}
	}
	return &Worker{
		ctx:             ctx,
		targets:         targets,
		refresher:       refresher,
		publisher:       pub,
		logger:          logger,
		refreshInterval: refreshInterval,
	}
}

// Start runs a refresh round immediately and then once per interval until
// the context is canceled.
func (w *Worker) Start() error {
	ticker := time.NewTicker(w.refreshInterval)
	defer ticker.Stop()

	for {
		start := time.Now()
		added := w.runRefreshes()
		w.logger.LogInfo("Refresh round finished in %s, %d deals added", time.Since(start), added)

		select {
		case <-w.ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// runRefreshes refreshes all targets in parallel and then trims the stream.
// It returns the number of deals added across targets.
func (w *Worker) runRefreshes() int {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for _, t := range w.targets {
		wg.Add(1)
		go func(t config.Target) {
			defer wg.Done()
			n := w.refresh(t)
			mu.Lock()
			total += n
			mu.Unlock()
		}(t)
	}
	wg.Wait()

	if err := w.publisher.TrimStreams(w.ctx); err != nil {
		w.logger.LogError("StreamTrimming", err)
	}
	return total
}

func (w *Worker) refresh(t config.Target) int {
	added, err := w.refresher.Refresh(w.ctx, t.Restaurant, t.Market)
	if err != nil {
		w.logger.LogError(t.Restaurant+":"+t.Market, err)
	}
	return added
}
