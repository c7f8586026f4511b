package card

import (
	"encoding/json"
	"testing"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"term", TypeTerm, false},
		{" Short_Answer ", TypeShortAnswer, false},
		{"MULTIPLE_CHOICE", TypeMultipleChoice, false},
		{"essay", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseType(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseType(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTypeFamilies(t *testing.T) {
	for _, ty := range Types() {
		if ty.IsOpen() == ty.IsChoice() {
			t.Errorf("%q must be exactly one of open or choice", ty)
		}
	}
	if Type("essay").IsOpen() || Type("essay").IsChoice() {
		t.Error("unknown type should be neither open nor choice")
	}
}

func TestSections_FromDecodedJSON(t *testing.T) {
	var c Card
	raw := `{"id":"c1","card_type":"term","question":"q","answer":"a","metadata":{"section":["Intro","Basics"],"fallback":true}}`
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := c.Sections()
	if len(got) != 2 || got[0] != "Intro" || got[1] != "Basics" {
		t.Errorf("Sections() = %v", got)
	}
	if !c.IsFallback() {
		t.Error("expected fallback card")
	}
}

func TestSections_Missing(t *testing.T) {
	c := Card{ID: "c1"}
	if got := c.Sections(); got != nil {
		t.Errorf("Sections() = %v, want nil", got)
	}
	if c.IsFallback() {
		t.Error("expected non-fallback card")
	}
}
