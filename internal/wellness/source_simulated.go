package wellness

import (
	"context"
	"hash/fnv"
	"time"

	id "peakform/pkg/domain"
)

// SimulatedSource generates stable pseudo-readings per user and day. Used in
// dev deployments where no device bridge is configured, so the summary
// endpoint returns plausible data instead of an all-missing shell.
type SimulatedSource struct{}

func (SimulatedSource) Name() string { return "simulated" }

func seed(userID id.UserID, day time.Time, metric Metric) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(userID.String()))
	_, _ = h.Write([]byte(day.Format("2006-01-02")))
	_, _ = h.Write([]byte(metric))
	return h.Sum64()
}

func (SimulatedSource) Steps(_ context.Context, userID id.UserID, day time.Time) (int, error) {
	return 3000 + int(seed(userID, day, MetricSteps)%9000), nil
}

func (SimulatedSource) HeartRate(_ context.Context, userID id.UserID, day time.Time) (float64, error) {
	return 58 + float64(seed(userID, day, MetricHeartRate)%30), nil
}

func (SimulatedSource) ActiveEnergy(_ context.Context, userID id.UserID, day time.Time) (float64, error) {
	return 150 + float64(seed(userID, day, MetricActiveEnergy)%600), nil
}

func (SimulatedSource) Distance(_ context.Context, userID id.UserID, day time.Time) (float64, error) {
	return 1000 + float64(seed(userID, day, MetricDistance)%8000), nil
}
