// Package enrich drives per-item catalog enrichment: a cache-then-network
// loader and the small state machine each rendered item runs through.
package enrich

import "fmt"

// State is the presentation state of one item.
type State int

const (
	Idle State = iota
	Loading
	Success
	NotFound
	Failed
)

var stateNames = [...]string{"idle", "loading", "success", "not_found", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition will happen.
func (s State) Terminal() bool {
	return s == Success || s == NotFound || s == Failed
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}
