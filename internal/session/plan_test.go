package session

import (
	"reflect"
	"testing"
)

func TestBuildPlan(t *testing.T) {
	cards := testCards()

	tests := []struct {
		name     string
		sections []string
		want     []string
		filtered bool
	}{
		{"no filter", nil, []string{"c1", "c2", "c3"}, false},
		{"single section", []string{"2 Retrieval"}, []string{"c1"}, true},
		{"decoded metadata", []string{"1 Memory"}, []string{"c2"}, true},
		{"union", []string{"1 Memory", "2 Retrieval"}, []string{"c1", "c2"}, true},
		{"no match falls back", []string{"9 Nothing"}, []string{"c1", "c2", "c3"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPlan(cards, tt.sections)
			if !reflect.DeepEqual(p.CardIDs, tt.want) {
				t.Errorf("CardIDs = %v, want %v", p.CardIDs, tt.want)
			}
			if p.Filtered != tt.filtered {
				t.Errorf("Filtered = %v, want %v", p.Filtered, tt.filtered)
			}
		})
	}
}

func TestCardProgress_Record(t *testing.T) {
	cp := &CardProgress{CardID: "c1"}

	cp.Record(true, 1, 0.8)
	cp.Record(false, 0.25, 1.3)

	if cp.TotalAttempts != 2 || cp.CorrectCount != 1 || cp.Accuracy != 0.5 {
		t.Errorf("progress = %+v", cp)
	}
	if cp.LastScore != 0.25 || cp.Weight != 1.3 {
		t.Errorf("last values = %+v", cp)
	}
}
