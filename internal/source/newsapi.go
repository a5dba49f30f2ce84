package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"citizens-connect/internal/models"
)

type NewsAPIConfig struct {
	URL     string
	Key     string
	Query   string
	Timeout time.Duration
}

// NewsAPIFeed reads the /v2/everything endpoint of newsapi.org.
type NewsAPIFeed struct {
	cfg        NewsAPIConfig
	httpClient *http.Client
}

func NewNewsAPIFeed(cfg NewsAPIConfig) *NewsAPIFeed {
	return &NewsAPIFeed{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (f *NewsAPIFeed) Name() string { return "newsapi" }

func (f *NewsAPIFeed) Origin() models.IssueSource {
	return models.IssueSource{ID: "newsapi", Name: "News Media"}
}

type newsAPIResponse struct {
	Status   string    `json:"status"`
	Message  string    `json:"message"`
	Articles []Article `json:"articles"`
}

func (f *NewsAPIFeed) Articles(ctx context.Context) ([]Article, error) {
	if f.cfg.Key == "" {
		return nil, fmt.Errorf("newsapi: api key not configured")
	}

	q := url.Values{}
	q.Set("q", f.cfg.Query)
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("apiKey", f.cfg.Key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.URL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("newsapi %d: %s", resp.StatusCode, string(body))
	}

	var out newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}
	if out.Status != "" && out.Status != "ok" {
		return nil, fmt.Errorf("newsapi: %s", out.Message)
	}
	return out.Articles, nil
}
