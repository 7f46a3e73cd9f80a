// Package backend provides a client for the infrastructure back-end's
// GraphQL and REST APIs.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-console/pkg/config"
	"github.com/ekaya-inc/ekaya-console/pkg/logging"
	"github.com/ekaya-inc/ekaya-console/pkg/models"
	"github.com/ekaya-inc/ekaya-console/pkg/retry"
)

// Client provides access to the back-end API.
type Client struct {
	baseURL       string
	token         string
	apiKeyHeader  string
	defaultBranch string
	httpClient    *http.Client
	retryConfig   *retry.Config
	breaker       *Breaker
	logger        *zap.Logger
	now           func() time.Time
}

// NewClient creates a back-end client from configuration.
func NewClient(cfg config.BackendConfig, logger *zap.Logger) *Client {
	retryConfig := retry.DefaultConfig()
	retryConfig.MaxRetries = cfg.MaxRetries

	return &Client{
		baseURL:       cfg.URL,
		token:         cfg.APIToken,
		apiKeyHeader:  cfg.APIKeyHeader,
		defaultBranch: cfg.DefaultBranch,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		retryConfig: retryConfig,
		breaker:     NewBreaker(cfg.BreakerThreshold, cfg.BreakerReset()),
		logger:      logger.Named("backend"),
		now:         time.Now,
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage     `json:"data"`
	Errors []GraphQLErrorEntry `json:"errors"`
}

// Query runs a GraphQL query against the branch and time of rc and returns
// the raw "data" object.
func (c *Client) Query(ctx context.Context, rc models.ResolutionContext, query string, variables map[string]any) (json.RawMessage, error) {
	endpoint, err := c.endpoint(rc, "graphql", c.branch(rc))
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	c.logger.Debug("Querying backend",
		zap.String("branch", c.branch(rc)),
		zap.String("query", logging.SanitizeQuery(query)))

	body, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}

	var resp graphQLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse graphql response: %w", err)
	}
	if len(resp.Errors) > 0 {
		gqlErr := &GraphQLError{Errors: resp.Errors}
		c.logger.Error("Backend rejected query",
			zap.String("query", logging.SanitizeQuery(query)),
			zap.String("error", logging.SanitizeText(gqlErr.Error())))
		return nil, gqlErr
	}

	return resp.Data, nil
}

// GetSchema fetches the schema of rc's branch.
func (c *Client) GetSchema(ctx context.Context, rc models.ResolutionContext) (*models.SchemaSet, error) {
	endpoint, err := c.endpoint(rc, "api", "schema")
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var schema models.SchemaSet
	if err := json.Unmarshal(body, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	schema.MarkProfiles()

	c.logger.Debug("Got schema from backend",
		zap.String("branch", c.branch(rc)),
		zap.Int("nodes", len(schema.Nodes)),
		zap.Int("generics", len(schema.Generics)),
		zap.Int("profiles", len(schema.Profiles)))

	return &schema, nil
}

// GetConfig fetches the back-end's public configuration.
func (c *Client) GetConfig(ctx context.Context) (*models.BackendConfig, error) {
	endpoint, err := buildURL(c.baseURL, "api", "config")
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var cfg models.BackendConfig
	if err := json.Unmarshal(body, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// GetMenu fetches the navigation menu for rc's branch.
func (c *Client) GetMenu(ctx context.Context, rc models.ResolutionContext) ([]models.MenuItem, error) {
	endpoint, err := c.endpoint(rc, "api", "menu")
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var items []models.MenuItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to parse menu: %w", err)
	}
	return items, nil
}

// do sends the request, retrying transient failures, and returns the body
// of a 2xx response. Calls fail fast while the circuit is open.
func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.Warn("Backend call rejected",
			zap.String("url", logging.SanitizeURL(endpoint)),
			zap.String("error", err.Error()))
		return nil, err
	}

	var body []byte
	err := retry.DoIfRetryable(ctx, c.retryConfig, func() error {
		var err error
		body, err = c.doOnce(ctx, method, endpoint, payload)
		return err
	})

	if ctx.Err() != nil {
		c.breaker.Abandon()
		return body, err
	}

	c.breaker.Record(retry.IsRetryable(err) || errors.Is(err, context.DeadlineExceeded))
	if c.breaker.State() == BreakerOpen && err != nil {
		c.logger.Error("Backend circuit open", zap.String("error", logging.SanitizeError(err)))
	}
	return body, err
}

func (c *Client) doOnce(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed",
			zap.String("method", method),
			zap.String("url", logging.SanitizeURL(endpoint)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("failed to call backend: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Backend returned error",
			zap.String("method", method),
			zap.String("url", logging.SanitizeURL(endpoint)),
			zap.Int("status", resp.StatusCode),
			zap.String("body", logging.SanitizeBody(body)))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: logging.SanitizeBody(body)}
	}

	return body, nil
}

// branch returns rc's branch or the configured default.
func (c *Client) branch(rc models.ResolutionContext) string {
	if rc.Branch != "" {
		return rc.Branch
	}
	return c.defaultBranch
}

// endpoint builds a URL carrying the branch and, for time travel, the
// "at" query parameters.
func (c *Client) endpoint(rc models.ResolutionContext, pathSegments ...string) (string, error) {
	endpoint, err := buildURL(c.baseURL, pathSegments...)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	if pathSegments[0] != "graphql" {
		q.Set("branch", c.branch(rc))
	}
	if rc.At != nil {
		q.Set("at", rc.At.UTC().Format(time.RFC3339))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// buildURL constructs a URL by parsing the base and joining path segments.
func buildURL(baseURL string, pathSegments ...string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	segments := append([]string{u.Path}, pathSegments...)
	u.Path = path.Join(segments...)

	return u.String(), nil
}
