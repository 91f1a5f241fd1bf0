// Package wellness aggregates daily health metrics from pluggable sources
// (device health kits, wearable bridges). One slow or failing source never
// blanks the whole summary; its metric is zeroed and reported as missing.
package wellness

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	id "peakform/pkg/domain"
)

// Metric names a health quantity a source can provide.
type Metric string

const (
	MetricSteps        Metric = "steps"
	MetricHeartRate    Metric = "heart_rate"
	MetricActiveEnergy Metric = "active_energy"
	MetricDistance     Metric = "distance"
)

// Source reads one user's metrics for a day. Implementations are expected to
// honor ctx cancellation.
type Source interface {
	Name() string
	Steps(ctx context.Context, userID id.UserID, day time.Time) (int, error)
	HeartRate(ctx context.Context, userID id.UserID, day time.Time) (float64, error)
	ActiveEnergy(ctx context.Context, userID id.UserID, day time.Time) (float64, error)
	Distance(ctx context.Context, userID id.UserID, day time.Time) (float64, error)
}

// Summary is one user's aggregated day.
type Summary struct {
	Day            time.Time `json:"day"`
	Steps          int       `json:"steps"`
	AvgHeartRate   float64   `json:"avg_heart_rate"`
	ActiveEnergy   float64   `json:"active_energy_kcal"`
	DistanceMeters float64   `json:"distance_meters"`
	// Missing lists metrics no source could provide, so the client can
	// show a gap instead of a zero.
	Missing []string `json:"missing,omitempty"`
}

// Service fans out over sources and reduces their readings.
type Service struct {
	sources []Source
	logger  *slog.Logger
	timeout time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithSourceTimeout caps how long any single source read may take.
func WithSourceTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New constructs a Service over the given sources.
func New(sources []Source, opts ...Option) *Service {
	s := &Service{sources: sources, timeout: 3 * time.Second}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type reading struct {
	steps     int
	heartRate float64
	energy    float64
	distance  float64

	hasSteps     bool
	hasHeartRate bool
	hasEnergy    bool
	hasDistance  bool
}

// DailySummary reads every source concurrently and reduces the results.
// Steps, energy, and distance sum across sources; heart rate averages over
// sources that reported one.
func (s *Service) DailySummary(ctx context.Context, userID id.UserID, day time.Time) (*Summary, error) {
	day = day.Truncate(24 * time.Hour)

	readings := make([]reading, len(s.sources))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		g.Go(func() error {
			r := s.readSource(gctx, src, userID, day)
			mu.Lock()
			readings[i] = r
			mu.Unlock()
			return nil
		})
	}
	// Source failures are degraded to missing metrics, never group errors,
	// so Wait only fails on ctx cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return reduce(day, readings), nil
}

// readSource pulls all four metrics from one source, tolerating individual
// failures.
func (s *Service) readSource(ctx context.Context, src Source, userID id.UserID, day time.Time) reading {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var r reading
	var err error

	if r.steps, err = src.Steps(ctx, userID, day); err != nil {
		s.logSourceError(ctx, src, MetricSteps, err)
	} else {
		r.hasSteps = true
	}
	if r.heartRate, err = src.HeartRate(ctx, userID, day); err != nil {
		s.logSourceError(ctx, src, MetricHeartRate, err)
	} else {
		r.hasHeartRate = true
	}
	if r.energy, err = src.ActiveEnergy(ctx, userID, day); err != nil {
		s.logSourceError(ctx, src, MetricActiveEnergy, err)
	} else {
		r.hasEnergy = true
	}
	if r.distance, err = src.Distance(ctx, userID, day); err != nil {
		s.logSourceError(ctx, src, MetricDistance, err)
	} else {
		r.hasDistance = true
	}
	return r
}

func (s *Service) logSourceError(ctx context.Context, src Source, metric Metric, err error) {
	if s.logger == nil {
		return
	}
	s.logger.WarnContext(ctx, "wellness source failed",
		"source", src.Name(),
		"metric", string(metric),
		"error", err,
	)
}

func reduce(day time.Time, readings []reading) *Summary {
	sum := &Summary{Day: day}
	heartRateSources := 0

	for _, r := range readings {
		if r.hasSteps {
			sum.Steps += r.steps
		}
		if r.hasEnergy {
			sum.ActiveEnergy += r.energy
		}
		if r.hasDistance {
			sum.DistanceMeters += r.distance
		}
		if r.hasHeartRate {
			sum.AvgHeartRate += r.heartRate
			heartRateSources++
		}
	}
	if heartRateSources > 0 {
		sum.AvgHeartRate /= float64(heartRateSources)
	}

	missing := map[Metric]bool{
		MetricSteps:        true,
		MetricHeartRate:    true,
		MetricActiveEnergy: true,
		MetricDistance:     true,
	}
	for _, r := range readings {
		if r.hasSteps {
			missing[MetricSteps] = false
		}
		if r.hasHeartRate {
			missing[MetricHeartRate] = false
		}
		if r.hasEnergy {
			missing[MetricActiveEnergy] = false
		}
		if r.hasDistance {
			missing[MetricDistance] = false
		}
	}
	for m, absent := range missing {
		if absent {
			sum.Missing = append(sum.Missing, string(m))
		}
	}
	sort.Strings(sum.Missing)
	return sum
}
