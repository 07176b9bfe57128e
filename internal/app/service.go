// Package service wires the usage API client and the weekly pivot engine
// into the operations served by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/vcdash/internal/adapters/usageapi"
	"github.com/okian/vcdash/internal/domain/usage"
	"github.com/okian/vcdash/internal/domain/weekly"
	"github.com/okian/vcdash/pkg/logger"
	"github.com/okian/vcdash/pkg/metrics"
)

// Source supplies raw usage data. *usageapi.Client implements it.
type Source interface {
	FetchWeeklyUsage(ctx context.Context) ([]usage.RawRecord, error)
	FetchTodayUsage(ctx context.Context) ([]usage.ChannelUsage, error)
	FetchTotalUsage(ctx context.Context) ([]usage.ChannelUsage, error)
	FetchRanking(ctx context.Context) ([]usage.RankedUsage, error)
	FetchMonthlyReport(ctx context.Context, year, month int) (usage.MonthlyReport, error)
}

// Snapshot is a weekly chart and the time it was computed.
type Snapshot struct {
	Chart weekly.Chart `json:"chart"`
	At    time.Time    `json:"at"`
}

// Service fetches usage data and derives the dashboard views.
type Service struct {
	mu sync.RWMutex

	source          Source
	engine          *weekly.Engine
	refreshInterval time.Duration
	logger          logger.Logger

	latest    atomic.Pointer[Snapshot]
	refreshes atomic.Int64
	failures  atomic.Int64
	lastErr   atomic.Pointer[string]

	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	closers []io.Closer
}

// New constructs a Service. Without options it reads from a default
// usageapi.Client and a default weekly.Engine. The global logger must be
// initialized unless WithLogger is given.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.source == nil {
		s.source = usageapi.New()
	}
	if s.engine == nil {
		s.engine = weekly.New()
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Start launches the background refresh loop when an interval is configured.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting usage service...",
		logger.String("refreshInterval", s.refreshInterval.String()))

	s.stopCh = make(chan struct{})
	if s.refreshInterval > 0 {
		s.wg.Add(1)
		go s.refreshLoop(context.WithoutCancel(ctx), s.stopCh)
	}

	s.started = true
	return nil
}

// Stop ends the refresh loop and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.started = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info(context.Background(), "usage service stopped")
}

// Close stops the service and releases the resources registered with
// WithCloser. It returns the joined close errors.
func (s *Service) Close() error {
	s.Stop()

	s.mu.Lock()
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) refreshLoop(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	s.refresh(ctx, stop)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.refresh(ctx, stop)
		}
	}
}

func (s *Service) refresh(ctx context.Context, stop <-chan struct{}) {
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-rctx.Done():
		}
	}()

	if _, err := s.Weekly(rctx); err != nil {
		s.logger.Warn(ctx, "weekly refresh failed", logger.Error(err))
		return
	}
	metrics.RecordRefresh(time.Now())
}

// Weekly fetches the last week's records, pivots them and stores the result
// as the latest snapshot.
func (s *Service) Weekly(ctx context.Context) (weekly.Chart, error) {
	recs, err := s.source.FetchWeeklyUsage(ctx)
	if err != nil {
		return weekly.Chart{}, s.fail(fmt.Errorf("%w: %w", ErrUpstream, err))
	}

	start := time.Now()
	chart, err := s.engine.Run(recs)
	if err != nil {
		metrics.RecordPivotFailure()
		return weekly.Chart{}, s.fail(fmt.Errorf("%w: %w", ErrPivot, err))
	}
	metrics.RecordPivot(metrics.PivotResult{
		Rows:       len(chart.Rows),
		Channels:   len(chart.Channels),
		Skipped:    chart.Skipped,
		Dropped:    chart.Dropped,
		Fallbacks:  chart.Fallbacks,
		Average:    chart.Average,
		DurationMs: float64(time.Since(start).Microseconds()) / 1000,
	})

	if chart.Skipped > 0 {
		s.logger.Warn(ctx, "skipped malformed usage records",
			logger.Int("skipped", chart.Skipped),
			logger.Error(chart.SkipErr),
		)
	}
	if chart.Dropped > 0 {
		s.logger.Warn(ctx, "dropped out-of-window usage records",
			logger.Int("dropped", chart.Dropped),
			logger.Strings("window", chart.Window),
		)
	}

	s.refreshes.Add(1)
	s.lastErr.Store(nil)
	s.latest.Store(&Snapshot{Chart: chart, At: time.Now()})
	return chart, nil
}

// Latest returns the most recent weekly snapshot, if any.
func (s *Service) Latest() (Snapshot, bool) {
	p := s.latest.Load()
	if p == nil {
		return Snapshot{}, false
	}
	return *p, true
}

// Today returns today's per-channel usage and its mean.
func (s *Service) Today(ctx context.Context) (usage.TodaySummary, error) {
	items, err := s.source.FetchTodayUsage(ctx)
	if err != nil {
		return usage.TodaySummary{}, s.fail(fmt.Errorf("%w: %w", ErrUpstream, err))
	}
	return usage.Summarize(items), nil
}

// Total returns all-time usage ranked in the order the upstream reports it.
func (s *Service) Total(ctx context.Context) ([]usage.RankedUsage, error) {
	items, err := s.source.FetchTotalUsage(ctx)
	if err != nil {
		return nil, s.fail(fmt.Errorf("%w: %w", ErrUpstream, err))
	}
	return usage.RankTotals(items), nil
}

// Ranking returns the upstream ranking.
func (s *Service) Ranking(ctx context.Context) ([]usage.RankedUsage, error) {
	items, err := s.source.FetchRanking(ctx)
	if err != nil {
		return nil, s.fail(fmt.Errorf("%w: %w", ErrUpstream, err))
	}
	if items == nil {
		items = []usage.RankedUsage{}
	}
	return items, nil
}

// CurrentMonth returns the year and month of today in the configured zone.
func (s *Service) CurrentMonth() (year, month int, err error) {
	today, err := s.engine.Today()
	if err != nil {
		return 0, 0, err
	}
	return today.Year(), int(today.Month()), nil
}

// Monthly returns the report for the given month.
func (s *Service) Monthly(ctx context.Context, year, month int) (usage.MonthlyReport, error) {
	report, err := s.source.FetchMonthlyReport(ctx, year, month)
	if err != nil {
		if errors.Is(err, usageapi.ErrInvalidArgument) {
			return usage.MonthlyReport{}, err
		}
		return usage.MonthlyReport{}, s.fail(fmt.Errorf("%w: %w", ErrUpstream, err))
	}
	return report, nil
}

func (s *Service) fail(err error) error {
	s.failures.Add(1)
	msg := err.Error()
	s.lastErr.Store(&msg)
	return err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"refreshInterval": s.refreshInterval.String(),
		"refreshes":       s.refreshes.Load(),
		"failures":        s.failures.Load(),
	}
	if msg := s.lastErr.Load(); msg != nil {
		stats["lastError"] = *msg
	}
	if snap, ok := s.Latest(); ok {
		stats["lastRefresh"] = snap.At.UTC().Format(time.RFC3339)
		stats["channels"] = len(snap.Chart.Channels)
		stats["average"] = snap.Chart.Average
		stats["skipped"] = snap.Chart.Skipped
		stats["dropped"] = snap.Chart.Dropped
	}
	return stats
}
