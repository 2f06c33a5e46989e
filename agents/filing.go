package agents

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/stockbrief/core"
	"golang.org/x/time/rate"
)

// DefaultFilingInterval paces requests to the fetch+extract service.
// Filing sources enforce fair-access limits per client.
const DefaultFilingInterval = 200 * time.Millisecond

// FilingClient asks the fetch+extract service to retrieve and summarize a filing.
type FilingClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

type processRequest struct {
	Ticker     string `json:"ticker"`
	FilingType string `json:"filing_type"`
}

type processChunk struct {
	DocID    string         `json:"doc_id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

type processResponse struct {
	Status     string         `json:"status"`
	Ticker     string         `json:"ticker"`
	FilingType string         `json:"filing_type"`
	Summary    string         `json:"summary"`
	Chunks     []processChunk `json:"chunks"`
	Message    string         `json:"message"`
}

// NewFilingClient creates a client for the fetch+extract service at baseURL.
// interval is the minimum spacing between requests; zero uses DefaultFilingInterval.
func NewFilingClient(baseURL string, interval time.Duration, opts ...Option) (*FilingClient, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	o, err := applyOptions("filing-client", opts)
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = DefaultFilingInterval
	}
	return &FilingClient{
		baseURL: base,
		client:  o.httpClient,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		logger:  o.logger,
	}, nil
}

// Process fetches and extracts the most recent filing of filingKind for identifier.
// A non-success status in the body is returned as a payload, not an error.
func (c *FilingClient) Process(ctx context.Context, identifier core.Identifier, filingKind string) (*core.FilingPayload, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	var resp processResponse
	req := processRequest{Ticker: identifier.String(), FilingType: filingKind}
	if err := doJSON(ctx, c.client, "fetch+extract service", http.MethodPost, c.baseURL+"/process", req, &resp); err != nil {
		return nil, err
	}

	payload := &core.FilingPayload{
		Status:     resp.Status,
		Identifier: identifier,
		FilingKind: filingKind,
		Summary:    resp.Summary,
		Message:    resp.Message,
		Fragments:  make([]core.Fragment, 0, len(resp.Chunks)),
	}
	if resp.FilingType != "" {
		payload.FilingKind = resp.FilingType
	}
	for _, chunk := range resp.Chunks {
		payload.Fragments = append(payload.Fragments, core.Fragment{
			ID:       chunk.DocID,
			Text:     chunk.Text,
			Metadata: stringifyMetadata(chunk.Metadata),
		})
	}

	c.logger.Debug("processed filing",
		"identifier", identifier,
		"status", payload.Status,
		"fragments", len(payload.Fragments))
	return payload, nil
}

func stringifyMetadata(in map[string]any) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v == nil {
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
