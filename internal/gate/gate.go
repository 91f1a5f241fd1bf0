package gate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	gatemetrics "peakform/internal/gate/metrics"
	"peakform/pkg/platform/audit"
)

//go:generate mockgen -source=gate.go -destination=mocks/mocks.go -package=mocks Navigator

// Navigator receives navigation commands issued by the gate.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// Command is an issued navigation command.
type Command struct {
	Target   string
	Decision Decision
}

// Gate tracks one client's auth/navigation state and issues redirects.
//
// Invariants:
//   - no redirect is issued while auth state is loading
//   - a repeated redirect to the last issued target is suppressed within the
//     cool-down window; a redirect to a different target passes immediately
//   - the de-duplication memory is cleared when the cool-down expires or when
//     the route settles on the last issued target
//   - decisions are serialized under the mutex, so two evaluations never
//     overlap for the same gate
type Gate struct {
	mu sync.Mutex

	nav      Navigator
	cooldown time.Duration
	now      func() time.Time
	logger   *slog.Logger
	audit    audit.Publisher
	metrics  *gatemetrics.Metrics

	state AuthState
	route string

	lastTarget   string
	lastIssuedAt time.Time
	redirecting  bool
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) { g.logger = logger }
}

// WithAuditPublisher sets the audit sink for issued and suppressed redirects.
func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(g *Gate) { g.audit = publisher }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *gatemetrics.Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

// WithClock overrides the time source. Tests use this to step through the
// cool-down window without sleeping.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithNavigator sets a sink that receives issued navigation commands in
// addition to them being returned from Observe.
func WithNavigator(nav Navigator) Option {
	return func(g *Gate) { g.nav = nav }
}

// New constructs a Gate in the loading state: nothing is decided until the
// first auth-state observation arrives.
func New(cooldown time.Duration, opts ...Option) *Gate {
	g := &Gate{
		cooldown: cooldown,
		now:      time.Now,
		state:    AuthState{Loading: true},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Blocking reports whether the client should render a loading indicator
// instead of any screen.
func (g *Gate) Blocking() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Loading
}

// Observe processes an auth-state update and returns the navigation command
// to execute, or nil when the client should stay put. Updates are processed
// one at a time; the decision for one update completes before the next is
// considered.
func (g *Gate) Observe(ctx context.Context, st AuthState) *Command {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = st
	return g.evaluateLocked(ctx)
}

// ResolveFailed records that the identity resolution itself errored. Loading
// must always terminate: a failed resolution collapses to "no current user"
// so the client lands on login rather than hanging.
func (g *Gate) ResolveFailed(ctx context.Context, err error) *Command {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.logger != nil {
		g.logger.WarnContext(ctx, "auth resolution failed, treating as signed out", "error", err)
	}
	g.state = AuthState{UserPresent: false, Loading: false}
	return g.evaluateLocked(ctx)
}

// RouteSettled records that the client's route changed. When the route
// catches up to the last issued redirect target, the de-duplication memory is
// cleared and the in-flight flag drops.
func (g *Gate) RouteSettled(ctx context.Context, route string) *Command {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.route = Normalize(route)
	if g.route == g.lastTarget {
		g.lastTarget = ""
		g.redirecting = false
	}
	return g.evaluateLocked(ctx)
}

// Report applies an auth-state observation and a route settlement in one
// step and evaluates once. The HTTP transport uses this: each shell request
// carries both the current route and the token-derived auth state.
func (g *Gate) Report(ctx context.Context, st AuthState, route string) *Command {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = st
	g.route = Normalize(route)
	if g.route == g.lastTarget {
		g.lastTarget = ""
		g.redirecting = false
	}
	return g.evaluateLocked(ctx)
}

// Decision returns the current decision without issuing any command.
func (g *Gate) Decision() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Decide(g.state, g.route)
}

// evaluateLocked computes the current decision and maybe issues a redirect.
// Callers hold g.mu.
func (g *Gate) evaluateLocked(ctx context.Context) *Command {
	decision := Decide(g.state, g.route)
	if !decision.IsRedirect() {
		return nil
	}

	target := decision.Target()
	now := g.now()

	// Cool-down expiry clears the dedup memory, so a stuck client can be
	// re-redirected to the same target. Documented behavior: duplicate
	// redirects after the window are preferred over a wedged shell.
	if g.lastTarget != "" && now.Sub(g.lastIssuedAt) >= g.cooldown {
		g.lastTarget = ""
		g.redirecting = false
	}

	if g.redirecting && g.lastTarget == target {
		if g.metrics != nil {
			g.metrics.IncRedirectSuppressed()
		}
		audit.LogAudit(ctx, g.logger, g.audit, string(audit.EventRedirectSuppressed),
			"target", target)
		return nil
	}

	g.lastTarget = target
	g.lastIssuedAt = now
	g.redirecting = true

	if g.metrics != nil {
		g.metrics.IncRedirectIssued(string(decision))
	}
	audit.LogAudit(ctx, g.logger, g.audit, string(audit.EventRedirectIssued),
		"target", target,
		"decision", string(decision))
	if g.nav != nil {
		if err := g.nav.Navigate(ctx, target); err != nil && g.logger != nil {
			g.logger.ErrorContext(ctx, "navigation sink failed", "target", target, "error", err)
		}
	}
	return &Command{Target: target, Decision: decision}
}
