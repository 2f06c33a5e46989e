package core

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Identifier
		wantErr error
	}{
		{name: "bare ticker", raw: "AAPL", want: "AAPL"},
		{name: "lowercase", raw: "msft", want: "MSFT"},
		{name: "whitespace and newline", raw: "  TSLA\n", want: "TSLA"},
		{name: "quoted", raw: `"NVDA"`, want: "NVDA"},
		{name: "trailing period", raw: "META.", want: "META"},
		{name: "dollar prefix", raw: "$GOOGL", want: "GOOGL"},
		{name: "digits allowed", raw: "BRK2", want: "BRK2"},
		{name: "none sentinel", raw: "NONE", want: NoIdentifier},
		{name: "none lowercase", raw: "none", want: NoIdentifier},
		{name: "empty", raw: "", want: NoIdentifier},
		{name: "too long", raw: "ASDFGHJKL", want: NoIdentifier, wantErr: ErrInvalidIdentifier},
		{name: "sentence", raw: "The ticker is AAPL", want: NoIdentifier, wantErr: ErrInvalidIdentifier},
		{name: "inner punctuation", raw: "BRK.B", want: NoIdentifier, wantErr: ErrInvalidIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeIdentifier(tt.raw)
			if got != tt.want {
				t.Errorf("NormalizeIdentifier(%q) = %q, want %q", tt.raw, got, tt.want)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("NormalizeIdentifier(%q) unexpected error: %v", tt.raw, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("NormalizeIdentifier(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestValidateIdentifier(t *testing.T) {
	if err := ValidateIdentifier("AAPL"); err != nil {
		t.Errorf("ValidateIdentifier(AAPL) = %v", err)
	}
	if err := ValidateIdentifier(NoIdentifier); !errors.Is(err, ErrNoIdentifierFound) {
		t.Errorf("ValidateIdentifier(none) = %v, want ErrNoIdentifierFound", err)
	}
	if err := ValidateIdentifier("aapl"); !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("ValidateIdentifier(aapl) = %v, want ErrInvalidIdentifier", err)
	}
}

func TestValidateGenerationContext(t *testing.T) {
	valid := func() *GenerationContext {
		return &GenerationContext{
			Query:      "How is Apple doing?",
			Identifier: "AAPL",
			Quote:      &QuoteSnapshot{Identifier: "AAPL"},
			Summary:    FilingSummary{Text: "Revenue up", Source: SourceCache},
			Source:     SourceCache,
			FilingKind: "10-K",
		}
	}

	tests := []struct {
		name    string
		mutate  func(gc *GenerationContext) *GenerationContext
		wantErr error
	}{
		{
			name:   "valid context",
			mutate: func(gc *GenerationContext) *GenerationContext { return gc },
		},
		{
			name:    "nil context",
			mutate:  func(gc *GenerationContext) *GenerationContext { return nil },
			wantErr: ErrEmptyContext,
		},
		{
			name: "none identifier",
			mutate: func(gc *GenerationContext) *GenerationContext {
				gc.Identifier = NoIdentifier
				return gc
			},
			wantErr: ErrInvalidIdentifier,
		},
		{
			name: "summary over cap",
			mutate: func(gc *GenerationContext) *GenerationContext {
				gc.Summary.Text = strings.Repeat("x", 11)
				return gc
			},
			wantErr: ErrSummaryTooLong,
		},
		{
			name: "multibyte summary at cap",
			mutate: func(gc *GenerationContext) *GenerationContext {
				gc.Summary.Text = strings.Repeat("é", 10)
				return gc
			},
		},
		{
			name: "unknown source",
			mutate: func(gc *GenerationContext) *GenerationContext {
				gc.Summary.Source = "web"
				gc.Source = "web"
				return gc
			},
			wantErr: ErrInvalidSummarySource,
		},
		{
			name: "source mismatch",
			mutate: func(gc *GenerationContext) *GenerationContext {
				gc.Source = SourceFreshIngest
				return gc
			},
			wantErr: ErrSourceMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGenerationContext(tt.mutate(valid()), 10)
			if tt.wantErr == nil && err != nil {
				t.Errorf("ValidateGenerationContext() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateGenerationContext() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestErrorTaxonomy(t *testing.T) {
	cause := errors.New("connection refused")

	err := Unavailable(CollaboratorQuote, cause)
	var cu *CollaboratorUnavailableError
	if !errors.As(err, &cu) || cu.Which != CollaboratorQuote {
		t.Errorf("Unavailable() = %v, want CollaboratorUnavailableError for quote", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("CollaboratorUnavailableError should unwrap to its cause")
	}

	ingest := &IngestionFailedError{Reason: "status error"}
	if got := ingest.Error(); got != "ingestion failed: status error" {
		t.Errorf("IngestionFailedError.Error() = %q", got)
	}
}
