// Package agent is the headless client side of CareTrack: an HTTP
// implementation of the clock session API plus a fixed-position provider for
// devices without a GPS stack.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/CareTrackHQ/caretrack_app/internal/clocksession"
	"github.com/CareTrackHQ/caretrack_app/internal/dto"
)

// Client talks to the CareTrack backend over its /api/v1 surface.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ clocksession.API = (*Client)(nil)

// NewClient creates a backend client. token is the caregiver's JWT.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// APIError carries a non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// ActiveEntry returns the caller's open entry, or nil when not clocked in.
func (c *Client) ActiveEntry(ctx context.Context) (*dto.TimeEntryResponse, error) {
	var entry dto.TimeEntryResponse
	found, err := c.getOptional(ctx, "/api/v1/time-entries/active", nil, &entry)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &entry, nil
}

// ActiveLocations returns the circle's active work locations.
func (c *Client) ActiveLocations(ctx context.Context) ([]dto.WorkLocationResponse, error) {
	var resp dto.ListWorkLocationsResponse
	if _, err := c.getOptional(ctx, "/api/v1/locations", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Locations, nil
}

// ClockIn opens a time entry.
func (c *Client) ClockIn(ctx context.Context, req dto.ClockInRequest) (*dto.TimeEntryResponse, error) {
	var entry dto.TimeEntryResponse
	if err := c.post(ctx, "/api/v1/time-entries/clock-in", req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ClockOut closes the open time entry.
func (c *Client) ClockOut(ctx context.Context, req dto.ClockOutRequest) (*dto.TimeEntryResponse, error) {
	var entry dto.TimeEntryResponse
	if err := c.post(ctx, "/api/v1/time-entries/clock-out", req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Summary fetches the pay period aggregate at the given offset.
func (c *Client) Summary(ctx context.Context, offset int) (*dto.PayPeriodSummaryResponse, error) {
	var summary dto.PayPeriodSummaryResponse
	query := url.Values{"offset": []string{strconv.Itoa(offset)}}
	if _, err := c.getOptional(ctx, "/api/v1/time-entries/summary", query, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// getOptional performs a GET and decodes into out. It reports found=false on
// a 204 so callers can distinguish "no resource" from an error.
func (c *Client) getOptional(ctx context.Context, path string, query url.Values, out any) (found bool, err error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req, out)
	return err
}

func (c *Client) do(req *http.Request, out any) (found bool, err error) {
	req.Header.Set("Authorization", "Bearer "+c.token)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	c.logger.Debug("Backend call",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status_code", resp.StatusCode),
		slog.Duration("duration", time.Since(startTime)),
	)

	if resp.StatusCode == http.StatusNoContent {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, decodeAPIError(resp.StatusCode, body)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return false, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return true, nil
}

func decodeAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Message: string(body)}
	var parsed struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		apiErr.Message = parsed.Error
		apiErr.Code = parsed.Code
	}
	return apiErr
}

// StaticPositionProvider reports one fixed coordinate. Useful for kiosks and
// for driving the controller in environments without location hardware.
type StaticPositionProvider struct {
	Position clocksession.Position
}

var _ clocksession.PositionProvider = (*StaticPositionProvider)(nil)

func (p *StaticPositionProvider) CurrentPosition(ctx context.Context) (clocksession.Position, error) {
	select {
	case <-ctx.Done():
		return clocksession.Position{}, ctx.Err()
	default:
		return p.Position, nil
	}
}
