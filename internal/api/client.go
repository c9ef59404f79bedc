package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
)

const (
	statusPath = "/api/system/status"
	healthPath = "/api/system/health"
	emailPath  = "/api/email/send"
	logsPath   = "/api/logs/"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SystemStatus fetches the live snapshot. A body that is not a JSON object is
// treated as a transport failure.
func (c *Client) SystemStatus(ctx context.Context) (*domain.Snapshot, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "system status", statusPath, &raw); err != nil {
		return nil, err
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &TransportError{Op: "system status", Err: errors.New("response is not an object")}
	}
	var out domain.Snapshot
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &TransportError{Op: "system status", Err: err}
	}
	return &out, nil
}

func (c *Client) SystemHealth(ctx context.Context) (*domain.HealthSummary, error) {
	var out domain.HealthSummary
	if err := c.getJSON(ctx, "system health", healthPath, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendEmail posts one notification request. The response body decides the
// outcome, whatever the status code.
func (c *Client) SendEmail(ctx context.Context, req domain.EmailRequest) (*domain.EmailResponse, error) {
	const op = "send email"
	b, err := json.Marshal(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+emailPath, bytes.NewReader(b))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	var out domain.EmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decode response (%s): %w", resp.Status, err)}
	}
	if !out.Success {
		return &out, &RejectionError{Op: op, StatusCode: resp.StatusCode, Message: out.Message}
	}
	return &out, nil
}

func (c *Client) Logs(ctx context.Context, g domain.Granularity) ([]domain.LogEntry, error) {
	var out []domain.LogEntry
	if err := c.getJSON(ctx, string(g)+" logs", logsPath+string(g), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteLog(ctx context.Context, g domain.Granularity, id string) error {
	return c.delete(ctx, "delete "+string(g)+" log", logsPath+string(g)+"/"+url.PathEscape(id))
}

func (c *Client) DeleteLogs(ctx context.Context, g domain.Granularity) error {
	return c.delete(ctx, "delete all "+string(g)+" logs", logsPath+string(g))
}

func (c *Client) delete(ctx context.Context, op, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &RejectionError{Op: op, StatusCode: resp.StatusCode, Message: readMessage(resp.Body)}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &RejectionError{Op: op, StatusCode: resp.StatusCode, Message: readMessage(resp.Body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: err}
	}
	return nil
}

// readMessage pulls a "message" field out of an error body when there is one.
func readMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4<<10))
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(b))
}
