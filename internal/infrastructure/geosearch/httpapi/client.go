package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
	"github.com/serviciospe/discovery-assistant/internal/infrastructure/resilience"
)

const providerName = "serviciospe"

// Client calls the geosearch HTTP API. Searches are read-only lookups
// keyed entirely by the query string.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor

	// OnCall, when set, observes the outcome of every completed search
	// call. A nil error means the endpoint answered.
	OnCall func(err error)
}

type Options struct {
	Timeout            time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL string) *Client {
	return NewWithOptions(baseURL, Options{})
}

func NewWithOptions(baseURL string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

type wireAddress struct {
	Formatted string `json:"formatted"`
	Street    string `json:"street"`
	District  string `json:"district"`
	City      string `json:"city"`
}

type wireRating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type wireItem struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Category       string             `json:"category"`
	DistanceMeters *float64           `json:"distanceMeters"`
	Coordinates    domain.Coordinates `json:"coordinates"`
	Address        wireAddress        `json:"address"`
	Rating         *wireRating        `json:"rating"`
}

type wireResponse struct {
	Success bool       `json:"success"`
	Total   int        `json:"total"`
	Results []wireItem `json:"results"`
}

func (c *Client) Search(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResultItem, error) {
	var response wireResponse
	call := func(ctx context.Context) error {
		return c.getJSON(ctx, "/services/search?"+buildQuery(req), &response, "search")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "geosearch.search", call, classifySearchError)
	} else {
		err = call(ctx)
	}
	if c.OnCall != nil {
		c.OnCall(err)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("geosearch search", err)
	}

	items := make([]domain.SearchResultItem, 0, len(response.Results))
	for _, raw := range response.Results {
		items = append(items, mapItem(raw))
	}
	return items, nil
}

func buildQuery(req domain.SearchRequest) string {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(req.Lat, 'f', -1, 64))
	query.Set("lng", strconv.FormatFloat(req.Lng, 'f', -1, 64))
	if req.Radius > 0 {
		query.Set("radius", strconv.Itoa(req.Radius))
	}
	if req.Category != "" {
		query.Set("category", req.Category)
	}
	if req.OpenNow {
		query.Set("openNow", "1")
	}
	if req.Query != "" {
		query.Set("q", req.Query)
	}
	if req.Page > 0 {
		query.Set("page", strconv.Itoa(req.Page))
	}
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}
	return query.Encode()
}

func mapItem(raw wireItem) domain.SearchResultItem {
	item := domain.SearchResultItem{
		Source:         domain.SourceID{Provider: providerName, ExternalID: raw.ID},
		Name:           raw.Name,
		Category:       raw.Category,
		Coordinates:    raw.Coordinates,
		DistanceMeters: domain.UnknownDistance,
		Address: domain.Address{
			Formatted: raw.Address.Formatted,
			Street:    raw.Address.Street,
			District:  raw.Address.District,
			City:      raw.Address.City,
		},
	}
	if raw.DistanceMeters != nil && *raw.DistanceMeters >= 0 {
		item.DistanceMeters = *raw.DistanceMeters
	}
	if raw.Rating != nil {
		item.Rating = &domain.Rating{Average: raw.Rating.Average, Count: raw.Rating.Count}
	}
	return item
}

func (c *Client) getJSON(ctx context.Context, pathAndQuery string, out any, operation string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathAndQuery, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geosearch %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "geosearch status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("geosearch %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("geosearch %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}
