package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
	"github.com/aryan0dhankhar/reviewdesk/internal/reliability/retry"
)

// TokenSource supplies the bearer token attached to each request
type TokenSource interface {
	Token() string
}

// Client calls the dashboard API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	retry      *retry.Config
	logger     *slog.Logger
}

// APIError represents a non-2xx API response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// NewClient constructs an API client. A nil transport uses http.DefaultTransport.
func NewClient(baseURL string, transport http.RoundTripper, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Transport: transport, Timeout: timeout},
	}
}

// WithRetry retries GET requests that fail in transport or with a 5xx status
func (c *Client) WithRetry(cfg *retry.Config, logger *slog.Logger) *Client {
	if cfg != nil {
		policy := *cfg
		policy.Retryable = Temporary
		cfg = &policy
	}
	c.retry = cfg
	c.logger = logger
	return c
}

// Temporary reports whether err is a transport failure or a server error
func Temporary(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	return true
}

// WithTokenSource attaches a bearer token to every subsequent request
func (c *Client) WithTokenSource(ts TokenSource) *Client {
	c.tokens = ts
	return c
}

func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	payload := domain.LoginRequest{Email: email, Password: password}
	var resp domain.LoginResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := c.doJSON(ctx, http.MethodGet, "/api/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) Reviews(ctx context.Context) ([]domain.Review, error) {
	var reviews []domain.Review
	if err := c.doJSON(ctx, http.MethodGet, "/api/reviews", nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (c *Client) Reply(ctx context.Context, reviewID, text string) (*domain.ActionResult, error) {
	payload := domain.ReplyRequest{ReviewID: reviewID, ReplyText: text}
	var resp domain.ActionResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/reviews/reply", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ChannelPerformance(ctx context.Context) ([]domain.ChannelPerf, error) {
	var perf []domain.ChannelPerf
	if err := c.doJSON(ctx, http.MethodGet, "/api/analytics/channel-perf", nil, &perf); err != nil {
		return nil, err
	}
	return perf, nil
}

func (c *Client) Stores(ctx context.Context) ([]domain.StoreRecord, error) {
	var stores []domain.StoreRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/analytics/stores", nil, &stores); err != nil {
		return nil, err
	}
	return stores, nil
}

func (c *Client) Heatmap(ctx context.Context) (*domain.Heatmap, error) {
	var heatmap domain.Heatmap
	if err := c.doJSON(ctx, http.MethodGet, "/api/analytics/heatmap", nil, &heatmap); err != nil {
		return nil, err
	}
	return &heatmap, nil
}

func (c *Client) Schedules(ctx context.Context) ([]domain.ReportSchedule, error) {
	var schedules []domain.ReportSchedule
	if err := c.doJSON(ctx, http.MethodGet, "/api/reports/schedules", nil, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (c *Client) Settings(ctx context.Context) (*domain.AppSettings, error) {
	var settings domain.AppSettings
	if err := c.doJSON(ctx, http.MethodGet, "/api/settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (c *Client) SaveSettings(ctx context.Context, settings domain.AppSettings) (*domain.SaveSettingsResult, error) {
	var resp domain.SaveSettingsResult
	if err := c.doJSON(ctx, http.MethodPut, "/api/settings", settings, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DownloadReport fetches a report blob. The file name comes from
// Content-Disposition when the server sends one.
func (c *Client) DownloadReport(ctx context.Context, format domain.ReportFormat) (*domain.ReportFile, error) {
	path := "/api/reports/download?type=" + url.QueryEscape(string(format))
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	name := "report." + string(format)
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}

	return &domain.ReportFile{
		Name:        name,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}
	return nil
}

// do sends the request and converts status >= 400 into *APIError. GETs
// carry no body and are retried when a retry policy is set.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	if method != http.MethodGet || c.retry == nil {
		return c.send(ctx, method, path, body)
	}
	return retry.Do(ctx, c.retry, c.logger, method+" "+path, func(ctx context.Context) (*http.Response, error) {
		return c.send(ctx, method, path, nil)
	})
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		var errResp struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		if msg == "" {
			msg = resp.Status
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}
	return resp, nil
}
