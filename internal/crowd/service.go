package crowd

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MenukaRanasinghe/SmartSL/internal/metrics"
)

// AddressLookup resolves coordinates to a human-readable address.
type AddressLookup interface {
	Address(ctx context.Context, lat, lon float64) (string, error)
}

// Service answers crowd queries. Each call loads the dataset afresh and runs
// one selector over it; nothing is kept between calls.
type Service struct {
	loader   Loader
	registry Registry
	resolver *Resolver
	region   string
	address  AddressLookup
	logger   *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithAddressLookup attaches a reverse geocoder used to fill Forecast.Address.
func WithAddressLookup(a AddressLookup) Option {
	return func(s *Service) { s.address = a }
}

// NewService creates a new Service. region is the default snapshot region.
func NewService(loader Loader, registry Registry, resolver *Resolver, region string, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		loader:   loader,
		registry: registry,
		resolver: resolver,
		region:   region,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Region returns the default snapshot region.
func (s *Service) Region() string {
	return s.region
}

// Now returns the service's current time.
func (s *Service) Now() time.Time {
	return s.resolver.Now()
}

// load fetches the prediction table. A failed load is logged and reported as
// ok=false so callers can answer with an empty result.
func (s *Service) load(ctx context.Context, query string) ([]Row, bool) {
	start := time.Now()
	rows, err := s.loader.Load(ctx)
	metrics.ObserveLoad(s.loader.Name(), err, time.Since(start))
	if err != nil {
		s.logger.Warn("dataset load failed; returning empty result",
			zap.String("query", query),
			zap.String("source", s.loader.Name()),
			zap.Error(err))
		metrics.Degraded(query)
		return nil, false
	}
	s.logger.Debug("dataset loaded",
		zap.String("query", query),
		zap.Int("rows", len(rows)),
		zap.Duration("took", time.Since(start)))
	return rows, true
}

// Snapshot returns the current busyness of every known place. An empty
// region disables district narrowing.
func (s *Service) Snapshot(ctx context.Context, region string) []Snapshot {
	rows, ok := s.load(ctx, "snapshot")
	if !ok {
		return []Snapshot{}
	}
	return SelectSnapshot(rows, s.resolver.Now(), region, s.registry, s.resolver)
}

// Forecast returns the forecast window and best time for place.
func (s *Service) Forecast(ctx context.Context, place string, limit int) Forecast {
	now := s.resolver.Now()

	rows, ok := s.load(ctx, "forecast")
	if !ok {
		return SelectForecast(nil, place, now, limit, s.registry, s.resolver)
	}

	f := SelectForecast(rows, place, now, limit, s.registry, s.resolver)
	if f.Coordinates != nil && s.address != nil {
		addr, err := s.address.Address(ctx, f.Coordinates.Lat, f.Coordinates.Lon)
		if err != nil {
			s.logger.Info("address lookup failed", zap.String("place", f.Place), zap.Error(err))
		} else {
			f.Address = addr
		}
	}
	return f
}

// Alternative suggests a quieter place. When label is empty the place's
// current label is taken from the default-region snapshot. The resolved
// label is returned alongside the suggestion.
func (s *Service) Alternative(ctx context.Context, place, label string) (string, *Snapshot) {
	snapshot := s.Snapshot(ctx, s.region)
	if label == "" {
		label, _ = CurrentLabel(snapshot, place)
	}
	return label, AlternativeFor(label, snapshot, place)
}

// Capture takes a snapshot of region and stamps it for the history store.
func (s *Service) Capture(ctx context.Context, region string) SnapshotRecord {
	return SnapshotRecord{
		ID:      uuid.NewString(),
		Region:  region,
		TakenAt: s.resolver.Now(),
		Places:  s.Snapshot(ctx, region),
	}
}
