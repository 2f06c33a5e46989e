package core

import (
	"strings"
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  strings.Repeat("Apple designs consumer electronics. ", 50),
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("AAPL_10-K_summary")
	id2 := IDFromContent("MSFT_10-K_summary")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestFragmentID(t *testing.T) {
	a := FragmentID("AAPL", "10-K", "Risk factors")
	b := FragmentID("AAPL", "10-K", "Risk factors")
	c := FragmentID("AAPL", "10-K", "Liquidity")

	if a != b {
		t.Errorf("FragmentID() not deterministic: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("FragmentID() collided for different text")
	}
	if !strings.HasPrefix(a, "AAPL_10-K_") || len(a) != len("AAPL_10-K_")+16 {
		t.Errorf("FragmentID() = %q, want AAPL_10-K_ prefix and 16 hex digits", a)
	}
}

func TestIdentifier_IsNone(t *testing.T) {
	tests := []struct {
		id   Identifier
		want bool
	}{
		{NoIdentifier, true},
		{"", true},
		{"AAPL", false},
	}

	for _, tt := range tests {
		if got := tt.id.IsNone(); got != tt.want {
			t.Errorf("Identifier(%q).IsNone() = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestQuoteSnapshot_Change(t *testing.T) {
	price := 190.0
	prev := 188.0
	reported := -1.5
	zero := 0.0

	tests := []struct {
		name   string
		quote  *QuoteSnapshot
		want   float64
		wantOK bool
	}{
		{
			name:   "nil snapshot",
			quote:  nil,
			wantOK: false,
		},
		{
			name:   "reported change wins",
			quote:  &QuoteSnapshot{Price: &price, PreviousClose: &prev, ChangePercent: &reported},
			want:   -1.5,
			wantOK: true,
		},
		{
			name:   "derived from price and previous close",
			quote:  &QuoteSnapshot{Price: &price, PreviousClose: &prev},
			want:   1.06,
			wantOK: true,
		},
		{
			name:   "missing previous close",
			quote:  &QuoteSnapshot{Price: &price},
			wantOK: false,
		},
		{
			name:   "zero previous close",
			quote:  &QuoteSnapshot{Price: &price, PreviousClose: &zero},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.quote.Change()
			if ok != tt.wantOK {
				t.Fatalf("Change() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Change() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuoteSnapshot_IsEmpty(t *testing.T) {
	price := 10.0
	currency := "USD"

	if !(&QuoteSnapshot{Identifier: "AAPL"}).IsEmpty() {
		t.Errorf("snapshot with only identifier should be empty")
	}
	if !(&QuoteSnapshot{Identifier: "AAPL", Currency: &currency}).IsEmpty() {
		t.Errorf("snapshot with only currency should be empty")
	}
	if (&QuoteSnapshot{Identifier: "AAPL", Price: &price}).IsEmpty() {
		t.Errorf("snapshot with price should not be empty")
	}
}

func TestSummarySource_Valid(t *testing.T) {
	for _, s := range []SummarySource{SourceCache, SourceFreshIngest, SourceUnavailable} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if SummarySource("web").Valid() {
		t.Errorf("unknown source should be invalid")
	}
}

func TestFilingPayload_Succeeded(t *testing.T) {
	var nilPayload *FilingPayload
	if nilPayload.Succeeded() {
		t.Errorf("nil payload should not succeed")
	}
	if (&FilingPayload{Status: "error"}).Succeeded() {
		t.Errorf("error payload should not succeed")
	}
	if !(&FilingPayload{Status: StatusSuccess}).Succeeded() {
		t.Errorf("success payload should succeed")
	}
}
