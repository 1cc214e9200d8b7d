package creation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mission42/constellation-intent/internal/constellation"
	"github.com/mission42/constellation-intent/internal/models"
)

// createRequest is the body of the creation endpoint. AltitudesPerPlane is a
// []float64 in array mode and a single float64 in scalar mode.
type createRequest struct {
	NumSatellites     int `json:"numSatellites"`
	NumPlanes         int `json:"numPlanes"`
	AltitudesPerPlane any `json:"altitudesPerPlane"`
}

// createResponse is decoded leniently; the API may answer with an empty body.
type createResponse struct {
	ID              string `json:"id"`
	ConstellationID string `json:"constellationId"`
	Message         string `json:"message"`
}

// Result is what the creation API told us about the new constellation.
type Result struct {
	ConstellationID string
	Message         string
}

// HTTPStatusError captures non-2xx responses from the creation API.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("creation: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client posts validated requests to the constellation-creation API. It never retries.
type Client struct {
	url          string
	altitudeMode string
	timeout      time.Duration
	httpClient   *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithAltitudeMode(mode string) Option {
	return func(c *Client) {
		c.altitudeMode = mode
	}
}

func NewClient(url string, opts ...Option) (*Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("creation: API URL must not be empty")
	}
	c := &Client{
		url:          url,
		altitudeMode: constellation.AltitudeArray,
		timeout:      15 * time.Second,
		httpClient:   &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.altitudeMode != constellation.AltitudeArray && c.altitudeMode != constellation.AltitudeScalar {
		return nil, fmt.Errorf("creation: unsupported altitude mode %q", c.altitudeMode)
	}
	return c, nil
}

// AltitudeMode reports how altitudes are sent, so callers can validate accordingly.
func (c *Client) AltitudeMode() string {
	return c.altitudeMode
}

func (c *Client) Create(ctx context.Context, req models.ConstellationRequest) (*Result, error) {
	if len(req.Altitudes) == 0 {
		return nil, errors.New("creation: request has no altitudes")
	}

	payload := createRequest{
		NumSatellites:     req.NumSatellites,
		NumPlanes:         req.NumPlanes,
		AltitudesPerPlane: req.Altitudes,
	}
	if c.altitudeMode == constellation.AltitudeScalar {
		payload.AltitudesPerPlane = req.Altitudes[0]
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("creation: marshal request: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creation: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	raw, err := c.doJSONRequest(httpReq)
	if err != nil {
		return nil, fmt.Errorf("creation: request failed: %w", err)
	}

	result := &Result{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return result, nil
	}
	var out createResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		// The API accepted the request; an unreadable body does not undo that.
		return result, nil
	}
	result.ConstellationID = out.ConstellationID
	if result.ConstellationID == "" {
		result.ConstellationID = out.ID
	}
	result.Message = out.Message
	return result, nil
}

func (c *Client) doJSONRequest(req *http.Request) ([]byte, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        c.url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
