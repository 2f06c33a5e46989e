package agents

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/poiesic/stockbrief/core"
)

// RetrieverClient talks to a remote similarity index service.
type RetrieverClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type queryMatch struct {
	ID    string  `json:"id"`
	Score float32 `json:"score"`
	Text  string  `json:"text"`
}

type queryResponse struct {
	Results struct {
		Status  string       `json:"status"`
		Matches []queryMatch `json:"matches"`
		Message string       `json:"message"`
	} `json:"results"`
}

type storeRequest struct {
	DocID string `json:"doc_id"`
	Text  string `json:"text"`
}

type storeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewRetrieverClient creates a client for the retriever service at baseURL.
func NewRetrieverClient(baseURL string, opts ...Option) (*RetrieverClient, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	o, err := applyOptions("retriever-client", opts)
	if err != nil {
		return nil, err
	}
	return &RetrieverClient{baseURL: base, client: o.httpClient, logger: o.logger}, nil
}

// Search returns up to topK fragments matching key.
func (c *RetrieverClient) Search(ctx context.Context, key string, topK int) ([]core.KnowledgeFragment, error) {
	var resp queryResponse
	if err := doJSON(ctx, c.client, "retriever service", http.MethodPost, c.baseURL+"/query",
		queryRequest{Query: key, TopK: topK}, &resp); err != nil {
		return nil, err
	}
	if resp.Results.Status != "" && resp.Results.Status != core.StatusSuccess {
		return nil, fmt.Errorf("%w: %s", ErrServiceReportedError, resp.Results.Message)
	}

	fragments := make([]core.KnowledgeFragment, 0, len(resp.Results.Matches))
	for _, m := range resp.Results.Matches {
		fragments = append(fragments, core.KnowledgeFragment{
			ID:    m.ID,
			Text:  m.Text,
			Score: clampScore(m.Score),
		})
	}
	if topK > 0 && len(fragments) > topK {
		fragments = fragments[:topK]
	}
	return fragments, nil
}

// Store submits one fragment for indexing.
func (c *RetrieverClient) Store(ctx context.Context, fragment core.Fragment) error {
	var resp storeResponse
	if err := doJSON(ctx, c.client, "retriever service", http.MethodPost, c.baseURL+"/store",
		storeRequest{DocID: fragment.ID, Text: fragment.Text}, &resp); err != nil {
		return err
	}
	if resp.Status == "error" {
		return fmt.Errorf("%w: %s", ErrServiceReportedError, resp.Message)
	}
	c.logger.Debug("stored fragment", "doc_id", fragment.ID)
	return nil
}

func clampScore(s float32) float32 {
	return min(max(s, 0), 1)
}
