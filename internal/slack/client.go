package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/datagrail/karmabot/internal/domain"
	"github.com/datagrail/karmabot/internal/metrics"
	"github.com/datagrail/karmabot/internal/platform/retry"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://slack.com/api"

	// usersListPageSize is the page size requested from users.list.
	usersListPageSize = 200

	// maxUserPages bounds cursor paging so a misbehaving upstream that keeps
	// returning cursors cannot loop forever.
	maxUserPages = 100
)

// APIError is a Slack "ok": false response. These are permanent: retrying an
// invalid_auth or channel_not_found does not help.
type APIError struct {
	Method string
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack %s failed: %s", e.Method, e.Code)
}

// StatusError is a non-200 HTTP response from the Slack API.
type StatusError struct {
	Method     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("slack %s returned HTTP %d", e.Method, e.StatusCode)
}

// Client calls the Slack Web API. Outbound calls share a rate limiter
// (chat.postMessage is limited to roughly one message per second per channel)
// and a circuit breaker, and transient failures are retried with backoff.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	policy     retry.Policy
}

type Option func(*Client)

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient overrides the HTTP client (used in tests).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(token string, opts ...Option) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "slack_api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.TotalFailures*10 >= counts.Requests*6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerStateChanges.WithLabelValues(name, to.String()).Inc()
		},
	})

	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(1), 3),
		breaker:    breaker,
		policy: retry.Policy{
			MaxAttempts:      3,
			InitialBackoff:   500 * time.Millisecond,
			RateLimitBackoff: 5 * time.Second,
			OnRetry: func(attempt int, err error, backoff time.Duration) {
				slog.Warn("Retrying Slack API call", "attempt", attempt, "backoff", backoff, "error", err)
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostMessage sends one outbound notification to a channel.
func (c *Client) PostMessage(ctx context.Context, channelID, text string) error {
	form := url.Values{}
	form.Set("channel", channelID)
	form.Set("text", text)

	var resp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	return c.call(ctx, "chat.postMessage", form, &resp)
}

// ListUsers fetches the full workspace user list, following users.list
// cursors eagerly into one snapshot.
func (c *Client) ListUsers(ctx context.Context) ([]domain.UserEntry, error) {
	var users []domain.UserEntry
	cursor := ""

	for page := 0; page < maxUserPages; page++ {
		form := url.Values{}
		form.Set("limit", fmt.Sprint(usersListPageSize))
		if cursor != "" {
			form.Set("cursor", cursor)
		}

		var resp struct {
			OK      bool   `json:"ok"`
			Error   string `json:"error"`
			Members []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"members"`
			ResponseMetadata struct {
				NextCursor string `json:"next_cursor"`
			} `json:"response_metadata"`
		}
		if err := c.call(ctx, "users.list", form, &resp); err != nil {
			return nil, err
		}

		for _, member := range resp.Members {
			users = append(users, domain.UserEntry{ID: member.ID, Name: member.Name})
		}

		cursor = resp.ResponseMetadata.NextCursor
		if cursor == "" {
			return users, nil
		}
	}

	return nil, fmt.Errorf("users.list paging exceeded %d pages", maxUserPages)
}

// call performs one form-encoded Web API request with rate limiting, circuit
// breaking, and retry on transient failures. out must carry the ok/error
// envelope fields.
func (c *Client) call(ctx context.Context, method string, form url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	err := retry.DoVoid(ctx, c.policy, classifyAPIError, func() error {
		_, err := c.breaker.Execute(func() (any, error) {
			return nil, c.doRequest(ctx, method, form, out)
		})
		return err
	})
	if err != nil {
		var permanent *retry.PermanentError
		if errors.As(err, &permanent) {
			return permanent.Err
		}
		return err
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method string, form url.Values, out any) error {
	start := time.Now()
	defer func() {
		metrics.SlackAPICallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/"+method, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.SlackAPICallsTotal.WithLabelValues(method, "transport_error").Inc()
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.SlackAPICallsTotal.WithLabelValues(method, "http_error").Inc()
		return &StatusError{Method: method, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.SlackAPICallsTotal.WithLabelValues(method, "transport_error").Inc()
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		metrics.SlackAPICallsTotal.WithLabelValues(method, "decode_error").Inc()
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}

	envelope := struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}{}
	if err := json.Unmarshal(body, &envelope); err == nil && !envelope.OK {
		metrics.SlackAPICallsTotal.WithLabelValues(method, "api_error").Inc()
		return &APIError{Method: method, Code: envelope.Error}
	}

	metrics.SlackAPICallsTotal.WithLabelValues(method, "ok").Inc()
	return nil
}

// classifyAPIError decides retry behavior: Slack ok:false responses and an
// open breaker are permanent for this call, HTTP 429 backs off longer, and
// everything else (5xx, transport errors) is transient.
func classifyAPIError(err error) retry.Action {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return retry.Stop
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return retry.Stop
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusTooManyRequests {
			return retry.After
		}
		if statusErr.StatusCode >= 500 {
			return retry.Retry
		}
		return retry.Stop
	}

	return retry.Retry
}
