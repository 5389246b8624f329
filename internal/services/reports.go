package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cassa/internal/cache"
	"cassa/internal/log"
	"cassa/internal/report"
)

var ErrUnknownView = errors.New("unknown report view")

// Reports serves report snapshots, caching one snapshot per local calendar day.
// A zero ttl disables caching.
type Reports struct {
	agg   *report.Aggregator
	cache *cache.LRUCache[report.Snapshot]
	ttl   time.Duration
	now   func() time.Time
}

type ReportsOption func(*Reports)

func WithReportsClock(now func() time.Time) ReportsOption {
	return func(r *Reports) { r.now = now }
}

func NewReports(agg *report.Aggregator, ttl time.Duration, opts ...ReportsOption) *Reports {
	r := &Reports{agg: agg, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	r.cache = cache.NewLRUCache[report.Snapshot](2, ttl, cache.WithClock(r.now))
	return r
}

// Cache exposes the snapshot cache so a janitor can sweep it.
func (r *Reports) Cache() cache.Cleaner {
	return r.cache
}

// Snapshot returns the cached snapshot for today, computing it on a miss.
func (r *Reports) Snapshot(ctx context.Context) (report.Snapshot, error) {
	if r.ttl > 0 {
		if snap, ok := r.cache.Get(r.dayKey()); ok {
			return snap, nil
		}
	}
	return r.Refresh(ctx)
}

// Refresh recomputes every view and replaces the cached snapshot.
func (r *Reports) Refresh(ctx context.Context) (report.Snapshot, error) {
	snap, err := r.agg.Snapshot(ctx)
	if err != nil {
		return report.Snapshot{}, fmt.Errorf("compute reports: %w", err)
	}
	for _, w := range snap.Warnings {
		slog.WarnContext(ctx, "Report computed from degraded data", "warning", w)
	}
	r.cache.Purge()
	if r.ttl > 0 {
		r.cache.Set(r.dayKey(), snap)
	}
	return snap, nil
}

// Invalidate drops the cached snapshot so the next read recomputes it.
func (r *Reports) Invalidate() {
	r.cache.Purge()
}

// View returns one named view of the current snapshot, with the snapshot's warnings.
func (r *Reports) View(ctx context.Context, name string) (report.View, []string, error) {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return report.View{}, nil, err
	}
	v, ok := snap.View(name)
	if !ok {
		slog.DebugContext(ctx, "Unknown report view requested", log.FieldView, name)
		return report.View{}, nil, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
	return v, snap.Warnings, nil
}

func (r *Reports) dayKey() string {
	return r.now().In(r.agg.Location()).Format(time.DateOnly)
}
