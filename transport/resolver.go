package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/devfolio/portfolio/catalog"
)

// DefaultAttemptTimeout bounds each individual strategy call.
const DefaultAttemptTimeout = 8 * time.Second

// ErrExhausted means every applicable strategy failed. Callers treat it as
// an ordinary "no data" outcome.
var ErrExhausted = errors.New("transport: all strategies failed")

// Resolver tries strategies in order until one yields a decodable body.
type Resolver struct {
	strategies []Strategy
	env        Env
	timeout    time.Duration
	observer   Observer
	logger     zerolog.Logger
}

type ResolverOption func(*Resolver)

func WithAttemptTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithObserver(o Observer) ResolverOption {
	return func(r *Resolver) { r.observer = o }
}

func WithLogger(l zerolog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver keeps the given order; filtering by env happens per call.
func NewResolver(strategies []Strategy, env Env, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		strategies: strategies,
		env:        env,
		timeout:    DefaultAttemptTimeout,
		logger:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Plan returns the strategies that will actually be attempted.
func (r *Resolver) Plan() []Strategy {
	plan := make([]Strategy, 0, len(r.strategies))
	for _, s := range r.strategies {
		if s.Applicable(r.env) {
			plan = append(plan, s)
		}
	}
	return plan
}

// Timeout is the per-attempt bound.
func (r *Resolver) Timeout() time.Duration { return r.timeout }

// Resolve returns the first successfully decoded response. A response with
// zero results counts as success here; deciding what to do about an empty
// market is the caller's business. If ctx is cancelled the loop stops and
// ctx.Err() is returned instead of ErrExhausted.
func (r *Resolver) Resolve(ctx context.Context, req catalog.Request) (catalog.Response, []Attempt, error) {
	plan := r.Plan()
	attempts := make([]Attempt, 0, len(plan))

	for _, s := range plan {
		if err := ctx.Err(); err != nil {
			return catalog.Response{}, attempts, err
		}

		a, resp := r.attempt(ctx, s, req)
		attempts = append(attempts, a)
		if r.observer != nil {
			r.observer.ObserveAttempt(a)
		}

		ev := r.logger.Debug()
		if a.Outcome != OutcomeSuccess {
			ev = r.logger.Warn().Err(a.Err)
		}
		ev.Str("strategy", string(a.Strategy)).
			Str("outcome", string(a.Outcome)).
			Str("id", req.ID).
			Str("country", req.Country).
			Dur("duration", a.Duration).
			Msg("catalog fetch attempt")

		if a.Outcome == OutcomeSuccess {
			return resp, attempts, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return catalog.Response{}, attempts, err
	}
	return catalog.Response{}, attempts, fmt.Errorf("%w after %d attempt(s) for %s", ErrExhausted, len(attempts), req)
}

func (r *Resolver) attempt(ctx context.Context, s Strategy, req catalog.Request) (Attempt, catalog.Response) {
	actx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	a := Attempt{Strategy: s.Kind()}

	body, err := s.Attempt(actx, req)
	a.Duration = time.Since(start)
	if err != nil {
		a.Err = err
		a.Outcome = OutcomeHTTPError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(actx.Err(), context.DeadlineExceeded) {
			a.Outcome = OutcomeTimeout
		}
		return a, catalog.Response{}
	}

	resp, err := catalog.Decode(body)
	if err != nil {
		a.Err = err
		a.Outcome = OutcomeParseError
		return a, catalog.Response{}
	}
	a.Outcome = OutcomeSuccess
	return a, resp
}
