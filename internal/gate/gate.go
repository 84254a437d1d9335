// Package gate implements the per-client admission policy guarding the
// generation endpoint: a minimum request interval, a sliding-window rate
// limit, and a daily free-tier quota for callers riding on the server's
// shared provider credential.
package gate

import "time"

// Reason identifies why a request was denied. Each reason maps to a stable
// error code so client UIs can branch on it.
type Reason string

const (
	ReasonTooLong               Reason = "text_too_long"
	ReasonTooFast               Reason = "too_fast"
	ReasonRateWindowExceeded    Reason = "rate_window_exceeded"
	ReasonNoCredentialAvailable Reason = "no_credential_available"
	ReasonDailyCapExceeded      Reason = "daily_cap_exceeded"
)

// Decision is the outcome of a single admission check.
type Decision struct {
	Allowed bool
	Reason  Reason
	// RetryAfter is a hint for when the caller may retry. Zero means no
	// recommendation.
	RetryAfter time.Duration
}

// Limits holds the admission thresholds. Zero values are replaced by
// DefaultLimits fields at construction.
type Limits struct {
	// MaxTextLength bounds input size in Unicode code points.
	MaxTextLength int
	// MaxRequests bounds accepted requests per client within Window.
	MaxRequests int
	Window      time.Duration
	// MinInterval is the minimum spacing between two requests from the
	// same client.
	MinInterval time.Duration
	// DailyFreeLimit bounds requests per UTC day for clients without their
	// own provider credential.
	DailyFreeLimit int
}

// DefaultLimits mirrors the environment defaults of the hosted deployment.
var DefaultLimits = Limits{
	MaxTextLength:  2500,
	MaxRequests:    30,
	Window:         600 * time.Second,
	MinInterval:    time.Second,
	DailyFreeLimit: 5,
}

// Gate makes admission decisions from in-memory per-client state.
//
// Every decision is synchronous: a clock read plus map/slice manipulation
// under the client's lock. The gate owns no timeouts and never blocks on I/O.
type Gate struct {
	store  *ClientStore
	limits Limits

	// serverHasCredential is computed once at startup from configuration,
	// not per request.
	serverHasCredential bool

	clock func() time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock overrides the time source. Used by tests to simulate window
// expiry and day boundaries.
func WithClock(clock func() time.Time) Option {
	return func(g *Gate) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// New builds a gate over the supplied store. The store must not be nil; the
// gate is unit-testable precisely because its state is owned externally.
func New(store *ClientStore, limits Limits, serverHasCredential bool, opts ...Option) *Gate {
	if limits.MaxTextLength <= 0 {
		limits.MaxTextLength = DefaultLimits.MaxTextLength
	}
	if limits.MaxRequests <= 0 {
		limits.MaxRequests = DefaultLimits.MaxRequests
	}
	if limits.Window <= 0 {
		limits.Window = DefaultLimits.Window
	}
	if limits.DailyFreeLimit <= 0 {
		limits.DailyFreeLimit = DefaultLimits.DailyFreeLimit
	}

	g := &Gate{
		store:               store,
		limits:              limits,
		serverHasCredential: serverHasCredential,
		clock:               time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Limits returns the effective thresholds.
func (g *Gate) Limits() Limits {
	return g.limits
}

// ServerHasCredential reports whether the process carries a shared provider
// credential for free-tier callers.
func (g *Gate) ServerHasCredential() bool {
	return g.serverHasCredential
}

const dayLayout = "2006-01-02"

// Check evaluates one request for clientID. Policies are applied in a fixed
// order and the first violation wins:
//
//  1. text length
//  2. minimum interval since the last accepted request
//  3. sliding-window capacity (after pruning expired slots)
//  4. credential availability
//  5. daily free-tier quota (skipped for bring-your-own-credential callers)
//
// A request that clears the interval and window checks consumes a window
// slot even when the credential or quota step later denies it: window usage
// is charged regardless of outcome.
func (g *Gate) Check(clientID string, hasOwnCredential bool, textLength int) Decision {
	// Length policy is independent of client state. Negative lengths are
	// malformed input and get the same validation denial.
	if textLength > g.limits.MaxTextLength || textLength < 0 {
		return Decision{Reason: ReasonTooLong}
	}

	now := g.clock()

	state := g.store.acquire(clientID)
	defer state.release()

	// Minimum interval. Does not consume a window slot.
	if g.limits.MinInterval > 0 && !state.lastRequest.IsZero() {
		if elapsed := now.Sub(state.lastRequest); elapsed < g.limits.MinInterval {
			return Decision{
				Reason:     ReasonTooFast,
				RetryAfter: g.limits.MinInterval - elapsed,
			}
		}
	}

	// Prune slots older than the window, then test capacity.
	cutoff := now.Add(-g.limits.Window)
	state.pruneWindow(cutoff)
	if len(state.window) >= g.limits.MaxRequests {
		return Decision{
			Reason:     ReasonRateWindowExceeded,
			RetryAfter: state.window[0].Sub(cutoff),
		}
	}

	// Charge the window slot before the credential and quota policies run.
	state.window = append(state.window, now)
	state.lastRequest = now

	if !hasOwnCredential && !g.serverHasCredential {
		return Decision{Reason: ReasonNoCredentialAvailable}
	}

	// Bring-your-own-credential callers bear their own downstream cost and
	// skip the quota entirely.
	if hasOwnCredential {
		return Decision{Allowed: true}
	}

	today := now.UTC().Format(dayLayout)
	if state.quotaDay != today {
		state.quotaDay = today
		state.quotaCount = 0
	}
	if state.quotaCount >= g.limits.DailyFreeLimit {
		return Decision{Reason: ReasonDailyCapExceeded}
	}
	state.quotaCount++

	return Decision{Allowed: true}
}
