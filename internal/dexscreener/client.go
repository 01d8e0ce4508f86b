package dexscreener

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"dexsnap/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrStatus marks a non-2xx response from the API.
	ErrStatus = errors.New("unexpected response status")
	// ErrDecode marks a response body that is not valid JSON for the expected shape.
	ErrDecode = errors.New("decode response")
)

// Options configures the API client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	RateLimit float64
	RateBurst int
}

// Client is a rate-limited DexScreener API client.
type Client struct {
	http      *fasthttp.Client
	baseURL   string
	timeout   time.Duration
	userAgent string
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// NewClient builds a Client. baseURL must point at the /latest/dex API root.
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	limit := rate.Limit(opts.RateLimit)
	if opts.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := opts.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		http:      &fasthttp.Client{},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		timeout:   timeout,
		userAgent: opts.UserAgent,
		limiter:   rate.NewLimiter(limit, burst),
		logger:    logger.Named("dexscreener"),
	}, nil
}

// Search queries /search for pairs matching a free-text term.
func (c *Client) Search(ctx context.Context, query string) ([]model.Pair, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	requestURL := c.baseURL + "/search?q=" + url.QueryEscape(query)
	return c.fetchPairs(ctx, requestURL)
}

// PairsByIDs fetches specific pairs via /pairs/{chainId}/{pairId,...}.
func (c *Client) PairsByIDs(ctx context.Context, chainID string, pairIDs []string) ([]model.Pair, error) {
	if chainID == "" {
		return nil, fmt.Errorf("chain id is required")
	}
	if len(pairIDs) == 0 {
		return nil, fmt.Errorf("at least one pair id is required")
	}
	escaped := make([]string, 0, len(pairIDs))
	for _, id := range pairIDs {
		escaped = append(escaped, url.PathEscape(id))
	}
	requestURL := c.baseURL + "/pairs/" + url.PathEscape(chainID) + "/" + strings.Join(escaped, ",")
	return c.fetchPairs(ctx, requestURL)
}

func (c *Client) fetchPairs(ctx context.Context, requestURL string) ([]model.Pair, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	c.logger.Debug("request", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.SetUserAgent(c.userAgent)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.http.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("request %s: %w", requestURL, err)
		}
	} else {
		if err := c.http.DoTimeout(req, resp, c.timeout); err != nil {
			return nil, fmt.Errorf("request %s: %w", requestURL, err)
		}
	}

	status := resp.StatusCode()
	body := resp.Body()
	if status < 200 || status > 299 {
		c.logger.Warn("request failed",
			zap.String("url", requestURL),
			zap.Int("status", status),
		)
		return nil, fmt.Errorf("%w: %d from %s: %s", ErrStatus, status, requestURL, truncate(body, 256))
	}

	var envelope model.SearchResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, requestURL, err)
	}

	c.logger.Debug("response", zap.String("url", requestURL), zap.Int("pairs", len(envelope.Pairs)))
	return envelope.Pairs, nil
}

func truncate(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
