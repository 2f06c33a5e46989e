package storage

import (
	"testing"
	"time"

	"github.com/poiesic/stockbrief/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalStoredFragment(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name     string
		fragment *core.StoredFragment
	}{
		{
			name: "minimal fragment",
			fragment: &core.StoredFragment{
				ID:   "AAPL_10-K_summary",
				Text: "Apple reported record services revenue.",
			},
		},
		{
			name: "fragment with vector and timestamps",
			fragment: &core.StoredFragment{
				ID:         "AAPL_10-K_risk_factors",
				Identifier: "AAPL",
				FilingKind: "10-K",
				ChunkType:  "risk_factors",
				Text:       "Supply chain concentration in Asia.",
				Vector:     []float32{0.6, -0.8, 0},
				InsertedAt: now.Add(-time.Hour),
				UpdatedAt:  now,
			},
		},
		{
			name: "unicode text",
			fragment: &core.StoredFragment{
				ID:         "SONY_20-F_summary",
				Identifier: "SONY",
				Text:       "ソニーグループの年次報告書",
				Vector:     []float32{1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalStoredFragment(tt.fragment)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalStoredFragment(data)
			require.NoError(t, err)
			assert.Equal(t, tt.fragment, decoded)
		})
	}
}

func TestUnmarshalStoredFragment_Invalid(t *testing.T) {
	valid := MarshalStoredFragment(&core.StoredFragment{
		ID:     "MSFT_10-K_summary",
		Text:   "Cloud revenue grew.",
		Vector: []float32{0.1, 0.2, 0.3},
	})

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty data", []byte{}, ErrTruncatedData},
		{"unknown version", []byte{99, 0, 0}, ErrUnknownFormat},
		{"truncated value", valid[:len(valid)/2], ErrSerializationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalStoredFragment(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
