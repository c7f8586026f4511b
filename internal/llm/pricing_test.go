package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	if c == nil {
		t.Fatal("expected pricing for gpt-4o-mini")
	}
	if got := c.Cost(1_000_000, 500_000); math.Abs(got-0.45) > 1e-9 {
		t.Errorf("cost = %v, want 0.45", got)
	}

	if local := LookupCost("qwen3:8b"); local == nil || local.Cost(1000, 1000) != 0 {
		t.Errorf("ollama model should be free, got %+v", local)
	}
	if LookupCost("some-unknown-model") != nil {
		t.Error("unknown model should have no pricing")
	}
}
