package mastodon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"tagdigest/metrics"
	"tagdigest/models"
)

// DefaultTimeout applies to every request made by the client
const DefaultTimeout = 60 * time.Second

// maxErrorBody bounds how much of a failed response is read into an APIError
const maxErrorBody = 4 << 10

// ErrMalformedResponse is returned when a successful response does not have
// the shape the endpoint promises
var ErrMalformedResponse = errors.New("malformed response")

// APIError is a non-2xx answer from the instance
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// Credentials of a registered Mastodon application. Only the access token is
// sent on requests; the client key and secret identify the app that issued it.
type Credentials struct {
	ClientKey    string
	ClientSecret string
	AccessToken  string
}

// Client talks to a single Mastodon instance. It keeps no per-request state
// and is safe for concurrent use.
type Client struct {
	host  string
	creds Credentials
	http  *http.Client
}

func NewClient(host string, creds *Credentials, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		host: strings.TrimRight(host, "/"),
		http: &http.Client{Timeout: timeout},
	}
	if creds != nil {
		c.creds = *creds
	}
	return c
}

// Host is the instance base URL without a trailing slash
func (c *Client) Host() string {
	return c.host
}

// GetTagTimeline returns one page of public statuses tagged with tag, newest
// first. maxID pages backwards; empty means the newest page.
func (c *Client) GetTagTimeline(ctx context.Context, tag string, limit int, maxID string) ([]*models.Status, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if maxID != "" {
		query.Set("max_id", maxID)
	}

	body, err := c.do(ctx, http.MethodGet, "timelines/tag/"+url.PathEscape(tag), "timelines/tag", query, nil)
	if err != nil {
		return nil, err
	}

	if !isJSONArray(body) {
		return nil, fmt.Errorf("%w: tag timeline for %s is not a list", ErrMalformedResponse, tag)
	}

	var statuses []*models.Status
	if err := sonic.Unmarshal(body, &statuses); err != nil {
		return nil, fmt.Errorf("%w: tag timeline for %s: %v", ErrMalformedResponse, tag, err)
	}
	return statuses, nil
}

// GetTag returns the hashtag entity including its usage history
func (c *Client) GetTag(ctx context.Context, tag string) (*models.Tag, error) {
	body, err := c.do(ctx, http.MethodGet, "tags/"+url.PathEscape(tag), "tags", nil, nil)
	if err != nil {
		return nil, err
	}

	var out models.Tag
	if err := sonic.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: tag %s: %v", ErrMalformedResponse, tag, err)
	}
	return &out, nil
}

// PostStatus publishes a new status. A 2xx answer without a status id is
// reported as ErrMalformedResponse.
func (c *Client) PostStatus(ctx context.Context, toot *models.Toot) (*models.Status, error) {
	payload, err := sonic.Marshal(toot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode status: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "statuses", "statuses", nil, payload)
	if err != nil {
		return nil, err
	}

	var status models.Status
	if err := sonic.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("%w: created status: %v", ErrMalformedResponse, err)
	}
	if status.ID == "" {
		return nil, fmt.Errorf("%w: created status has no id", ErrMalformedResponse)
	}
	return &status, nil
}

// VerifyCredentials returns the account the access token belongs to
func (c *Client) VerifyCredentials(ctx context.Context) (*models.Account, error) {
	body, err := c.do(ctx, http.MethodGet, "accounts/verify_credentials", "accounts/verify_credentials", nil, nil)
	if err != nil {
		return nil, err
	}

	var account models.Account
	if err := sonic.Unmarshal(body, &account); err != nil {
		return nil, fmt.Errorf("%w: account: %v", ErrMalformedResponse, err)
	}
	if account.ID == "" {
		return nil, fmt.Errorf("%w: account has no id", ErrMalformedResponse)
	}
	return &account, nil
}

// do sends a request to /api/v1/<path> and returns the raw body of a 2xx
// answer. endpoint is the low-cardinality label used for metrics and errors.
func (c *Client) do(ctx context.Context, method, path, endpoint string, query url.Values, payload []byte) ([]byte, error) {
	u := c.host + "/api/v1/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.creds.AccessToken)
	}

	log.WithFields(log.Fields{
		"method": method,
		"url":    u,
	}).Debug("Mastodon request")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	metrics.APIRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}
	return body, nil
}

// errorMessage pulls the "error" field out of a Mastodon error document,
// falling back to the raw body
func errorMessage(raw []byte) string {
	var doc struct {
		Error string `json:"error"`
	}
	if err := sonic.Unmarshal(raw, &doc); err == nil && doc.Error != "" {
		return doc.Error
	}
	return strings.TrimSpace(string(raw))
}

func isJSONArray(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '['
}
