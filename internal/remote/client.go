// Package remote talks to a timestables server over HTTP. The Client
// implements store.Backend so the session recorder can use it as its
// primary backend.
package remote

import (
	"bytes"
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

	"github.com/abhisek/timestables/internal/api"
	"github.com/abhisek/timestables/internal/store"
)

// DefaultTimeout bounds every request unless overridden.
const DefaultTimeout = 5 * time.Second

// Client is an HTTP store.Backend.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

var _ store.Backend = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a Client for the server at baseURL, e.g.
// "http://localhost:3000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{}
	}
	return c
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string { return c.baseURL }

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	var resp api.HealthResponse
	if err := c.do(ctx, http.MethodGet, api.PathHealth, nil, &resp); err != nil {
		return &store.PersistenceError{Op: "health", Err: err}
	}
	return nil
}

func (c *Client) CreateSession(ctx context.Context, studentName string, level int, startedAt time.Time) (string, error) {
	req := api.CreateSessionRequest{StudentName: studentName, Level: level, StartTime: startedAt}
	var resp api.CreateSessionResponse
	if err := c.do(ctx, http.MethodPost, api.PathSessions, req, &resp); err != nil {
		return "", &store.PersistenceError{Op: "create session", Err: err}
	}
	if resp.SessionID == "" {
		return "", &store.PersistenceError{Op: "create session", Err: errors.New("empty session id")}
	}
	return string(resp.SessionID), nil
}

func (c *Client) AppendAnswer(ctx context.Context, entry store.AnswerLogEntry) error {
	var resp api.Envelope
	if err := c.do(ctx, http.MethodPost, api.PathAnswers, entry, &resp); err != nil {
		return &store.PersistenceError{Op: "append answer", Err: err}
	}
	return nil
}

func (c *Client) FinalizeSession(ctx context.Context, req store.FinalizeRequest) (store.SessionStats, error) {
	body := api.EndSessionRequest{
		LevelPassed:    req.LevelPassed,
		TotalQuestions: req.TotalQuestions,
		CorrectAnswers: req.CorrectAnswers,
		Accuracy:       req.Accuracy,
		EndTime:        req.EndTime,
	}
	var resp api.EndSessionResponse
	path := api.PathSessions + "/" + url.PathEscape(req.SessionID)
	if err := c.do(ctx, http.MethodPut, path, body, &resp); err != nil {
		return store.SessionStats{}, &store.PersistenceError{Op: "finalize session", Err: err}
	}
	return resp.Stats, nil
}

func (c *Client) ListStudents(ctx context.Context) ([]string, error) {
	var resp api.StudentsResponse
	if err := c.do(ctx, http.MethodGet, api.PathStudents, nil, &resp); err != nil {
		return nil, &store.PersistenceError{Op: "list students", Err: err}
	}
	return resp.Students, nil
}

func (c *Client) GetStudent(ctx context.Context, name string) (store.StudentDetail, error) {
	var resp api.StudentResponse
	path := api.PathStudents + "/" + url.PathEscape(name)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return store.StudentDetail{}, &store.PersistenceError{Op: "get student", Err: err}
	}
	return resp.StudentDetail, nil
}

func (c *Client) Leaderboard(ctx context.Context, limit int) ([]store.LeaderboardEntry, error) {
	path := api.PathLeaderboard
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp api.LeaderboardResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, &store.PersistenceError{Op: "leaderboard", Err: err}
	}
	return resp.Leaderboard, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env api.Envelope
	_ = json.Unmarshal(data, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, env.Error)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "request unsuccessful"
		}
		return errors.New(msg)
	}
	return nil
}

func statusError(code int, msg string) error {
	if msg == "" {
		msg = http.StatusText(code)
	}
	switch code {
	case http.StatusNotFound:
		return fmt.Errorf("HTTP %d: %s: %w", code, msg, store.ErrNotFound)
	case http.StatusConflict:
		return fmt.Errorf("HTTP %d: %s: %w", code, msg, store.ErrSessionFinalized)
	default:
		return fmt.Errorf("HTTP %d: %s", code, msg)
	}
}
