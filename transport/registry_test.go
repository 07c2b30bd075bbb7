package transport

import (
	"context"
	"testing"

	"github.com/devfolio/portfolio/catalog"
)

// mockStrategy is a test implementation of the Strategy interface
type mockStrategy struct {
	kind       Kind
	applicable bool
	body       []byte
	err        error
	calls      int
}

func (m *mockStrategy) Kind() Kind { return m.kind }

func (m *mockStrategy) Applicable(Env) bool { return m.applicable }

func (m *mockStrategy) Attempt(ctx context.Context, req catalog.Request) ([]byte, error) {
	m.calls++
	return m.body, m.err
}

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()
	if registry == nil {
		t.Fatal("NewRegistry should not return nil")
	}

	if kinds := registry.List(); len(kinds) != 0 {
		t.Errorf("New registry should be empty, got %d strategies: %v", len(kinds), kinds)
	}
}

func TestRegisterAndGetStrategy(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&mockStrategy{kind: KindDirect})
	registry.Register(&mockStrategy{kind: KindRelay})

	kinds := registry.List()
	if len(kinds) != 2 {
		t.Fatalf("Expected 2 strategies, got %d: %v", len(kinds), kinds)
	}
	if kinds[0] != KindDirect || kinds[1] != KindRelay {
		t.Errorf("Expected sorted [direct relay], got %v", kinds)
	}

	s, exists := registry.Get(KindRelay)
	if !exists {
		t.Fatal("relay strategy should exist")
	}
	if s.Kind() != KindRelay {
		t.Errorf("Expected kind 'relay', got '%s'", s.Kind())
	}

	if _, exists = registry.Get(KindFirstParty); exists {
		t.Error("firstparty strategy should not exist")
	}
}

func TestRegistryOverwrite(t *testing.T) {
	registry := NewRegistry()
	first := &mockStrategy{kind: KindDirect}
	second := &mockStrategy{kind: KindDirect}
	registry.Register(first)
	registry.Register(second)

	if n := len(registry.List()); n != 1 {
		t.Errorf("Expected 1 strategy after overwrite, got %d", n)
	}
	got, _ := registry.Get(KindDirect)
	if got != second {
		t.Error("Should get the second registered strategy")
	}
}

func TestRegistryOrder(t *testing.T) {
	registry := NewRegistry()
	for _, k := range []Kind{KindDirect, KindDevProxy, KindRelay, KindFirstParty} {
		registry.Register(&mockStrategy{kind: k})
	}

	ordered, err := registry.Order([]string{"relay", " FirstParty ", "relay", "", "direct"})
	if err != nil {
		t.Fatalf("Order returned error: %v", err)
	}
	want := []Kind{KindRelay, KindFirstParty, KindDirect}
	if len(ordered) != len(want) {
		t.Fatalf("Expected %d strategies, got %d", len(want), len(ordered))
	}
	for i, s := range ordered {
		if s.Kind() != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], s.Kind())
		}
	}

	if _, err := registry.Order([]string{"carrier-pigeon"}); err == nil {
		t.Error("Expected error for unknown strategy")
	}
}
