package agents

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/poiesic/stockbrief/core"
)

// QuoteClient fetches market quotes from the quote service.
type QuoteClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// quoteResponse is the wire form of GET /stock_data. Every field may be null.
type quoteResponse struct {
	Symbol        string   `json:"symbol"`
	CurrentPrice  *float64 `json:"current_price"`
	PreviousClose *float64 `json:"previous_close"`
	Change        *float64 `json:"change"`
	Volume        *float64 `json:"volume"`
	MarketCap     *float64 `json:"market_cap"`
	Currency      *string  `json:"currency"`
	Error         string   `json:"error"`
}

// NewQuoteClient creates a client for the quote service at baseURL.
func NewQuoteClient(baseURL string, opts ...Option) (*QuoteClient, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	o, err := applyOptions("quote-client", opts)
	if err != nil {
		return nil, err
	}
	return &QuoteClient{baseURL: base, client: o.httpClient, logger: o.logger}, nil
}

// GetQuote returns the latest snapshot for identifier. Fields the service
// leaves null stay nil; percent change is derived when omitted.
func (c *QuoteClient) GetQuote(ctx context.Context, identifier core.Identifier) (*core.QuoteSnapshot, error) {
	endpoint := fmt.Sprintf("%s/stock_data?symbol=%s", c.baseURL, url.QueryEscape(identifier.String()))

	var resp quoteResponse
	if err := doJSON(ctx, c.client, "quote service", http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrServiceReportedError, resp.Error)
	}

	snapshot := &core.QuoteSnapshot{
		Identifier:    identifier,
		Price:         resp.CurrentPrice,
		PreviousClose: resp.PreviousClose,
		ChangePercent: resp.Change,
		MarketCap:     resp.MarketCap,
		Currency:      resp.Currency,
	}
	if resp.Volume != nil {
		v := int64(*resp.Volume)
		snapshot.Volume = &v
	}
	if snapshot.ChangePercent == nil {
		if pct, ok := snapshot.Change(); ok {
			snapshot.ChangePercent = &pct
		}
	}

	c.logger.Debug("fetched quote", "identifier", identifier, "has_price", snapshot.Price != nil)
	return snapshot, nil
}
