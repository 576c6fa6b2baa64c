package openalex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/matsen/cograph/internal/logging"
)

const (
	// BaseURL is the OpenAlex REST API base URL.
	BaseURL = "https://api.openalex.org"

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 5 * time.Second

	// RateLimit is 10 requests per second per OpenAlex polite-pool guidance.
	RateLimit = 10.0

	// DefaultPerPage is the page size for list requests. OpenAlex allows up to 200.
	DefaultPerPage = 25
	MaxPerPage     = 200

	// DefaultConcurrency bounds parallel work lookups in GetWorks.
	DefaultConcurrency = 4

	// maxBodySize caps the bytes read from one response.
	maxBodySize = 16 * 1024 * 1024
)

// Client is a rate-limited HTTP client for the OpenAlex API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
	apiKey     string
	logger     *log.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithMailto identifies the caller for the OpenAlex polite pool.
func WithMailto(email string) ClientOption {
	return func(c *Client) {
		c.mailto = email
	}
}

// WithAPIKey sets the premium API key.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithRateLimit overrides the requests-per-second limit.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new OpenAlex API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		logger:     logging.Discard(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NormalizeWorkID turns an OpenAlex work URL or id into its short form
// (https://openalex.org/W123 -> W123). Other identifiers, such as
// "doi:10.1234/x", pass through unchanged apart from trimming.
func NormalizeWorkID(id string) string {
	id = strings.TrimSpace(id)
	for _, prefix := range []string{
		"https://api.openalex.org/works/",
		"https://openalex.org/works/",
		"https://openalex.org/",
		"http://openalex.org/",
	} {
		if strings.HasPrefix(id, prefix) {
			id = strings.TrimPrefix(id, prefix)
			break
		}
	}
	if len(id) > 1 && id[0] == 'w' && isDigits(id[1:]) {
		id = "W" + id[1:]
	}
	return id
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &APIError{StatusCode: resp.StatusCode, Code: "not_found", Message: "HTTP 404"}
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 400:
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       "api_error",
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}
	return nil
}

// get performs a rate-limited GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	if query == nil {
		query = url.Values{}
	}
	if c.mailto != "" {
		query.Set("mailto", c.mailto)
	}
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("openalex request", "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if err := checkHTTPErrors(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// GetWork fetches a single work by id.
func (c *Client) GetWork(ctx context.Context, id string) (*Work, error) {
	id = NormalizeWorkID(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty work id", ErrNotFound)
	}

	var work Work
	if err := c.get(ctx, "/works/"+url.PathEscape(id), nil, &work); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			apiErr.WorkID = id
		}
		return nil, err
	}

	if work.ID == "" {
		return nil, fmt.Errorf("%w: work %s has no id", ErrInvalidResponse, id)
	}

	return &work, nil
}

// ListWorks fetches one page of works matching an OpenAlex filter expression,
// e.g. "institutions.id:I111979921".
func (c *Client) ListWorks(ctx context.Context, filter string, perPage int) (*WorksPage, error) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	query := url.Values{}
	if filter != "" {
		query.Set("filter", filter)
	}
	query.Set("per-page", strconv.Itoa(perPage))

	var page WorksPage
	if err := c.get(ctx, "/works", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetWorks fetches many works with at most concurrency requests in flight.
// Results are in input order. The first failure cancels outstanding requests.
func (c *Client) GetWorks(ctx context.Context, ids []string, concurrency int) ([]*Work, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	works := make([]*Work, len(ids))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			w, err := c.GetWork(gCtx, id)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", id, err)
			}
			works[i] = w
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Debug("fetched works", "count", len(works))
	return works, nil
}
