// Package transport resolves catalog lookups through an ordered list of
// fetch strategies, falling through to the next one on failure.
package transport

import (
	"context"
	"time"

	"github.com/devfolio/portfolio/catalog"
)

// Kind names a fetch strategy.
type Kind string

const (
	KindDirect     Kind = "direct"
	KindDevProxy   Kind = "devproxy"
	KindRelay      Kind = "relay"
	KindFirstParty Kind = "firstparty"
)

// DefaultOrder prefers our own endpoint over third-party relays.
var DefaultOrder = []Kind{KindFirstParty, KindDirect, KindDevProxy, KindRelay}

// Env describes the runtime context strategies are filtered against.
type Env struct {
	// Development is true when the local dev proxy is running.
	Development bool
	// CrossOriginFree is true when the caller may hit the catalog host
	// directly (server side, or behind a rewriting proxy).
	CrossOriginFree bool
}

// Strategy fetches a raw lookup body for a request.
type Strategy interface {
	Kind() Kind
	// Applicable reports whether the strategy can run in env. Inapplicable
	// strategies are skipped without counting as an attempt.
	Applicable(env Env) bool
	Attempt(ctx context.Context, req catalog.Request) ([]byte, error)
}

// Outcome classifies a single attempt.
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeTimeout    Outcome = "timeout"
	OutcomeHTTPError  Outcome = "http_error"
	OutcomeParseError Outcome = "parse_error"
)

// Attempt records one strategy call. It is never persisted.
type Attempt struct {
	Strategy Kind
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// Observer receives every attempt as it finishes.
type Observer interface {
	ObserveAttempt(a Attempt)
}
