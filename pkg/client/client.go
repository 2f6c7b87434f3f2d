package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/careerlens/careerlens-api/internal/models"
)

// Client is a Go SDK for the careerlens API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new careerlens client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is a failed API call. Message is the server's envelope message,
// or the raw body when the response was not an envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// envelope is the {success, data, message} wrapper of every API response
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Response is a decoded success payload with its informational message
type Response[T any] struct {
	Data    T
	Message string
}

// HealthStatus is returned by /health
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
}

// ListOptions filters catalog list calls
type ListOptions struct {
	Category string
	Search   string
	Level    string
}

func (o ListOptions) query() string {
	v := url.Values{}
	if o.Category != "" {
		v.Set("category", o.Category)
	}
	if o.Search != "" {
		v.Set("search", o.Search)
	}
	if o.Level != "" {
		v.Set("level", o.Level)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// ListCompanies returns active companies
func (c *Client) ListCompanies(ctx context.Context, opts ListOptions) ([]models.Company, error) {
	resp, err := call[[]models.Company](ctx, c, http.MethodGet, "/api/companies"+opts.query(), nil)
	return resp.Data, err
}

// GetCompany retrieves a company by id
func (c *Client) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	resp, err := call[*models.Company](ctx, c, http.MethodGet, "/api/companies/"+url.PathEscape(id), nil)
	return resp.Data, err
}

// ListRoles returns active roles
func (c *Client) ListRoles(ctx context.Context, opts ListOptions) ([]models.Role, error) {
	resp, err := call[[]models.Role](ctx, c, http.MethodGet, "/api/roles"+opts.query(), nil)
	return resp.Data, err
}

// ListSkills returns active skills
func (c *Client) ListSkills(ctx context.Context, opts ListOptions) ([]models.Skill, error) {
	resp, err := call[[]models.Skill](ctx, c, http.MethodGet, "/api/skills"+opts.query(), nil)
	return resp.Data, err
}

// RandomQuestions samples up to count questions; count <= 0 uses the server default
func (c *Client) RandomQuestions(ctx context.Context, count int) ([]models.Question, error) {
	path := "/api/questions/random"
	if count > 0 {
		path += "?count=" + strconv.Itoa(count)
	}
	resp, err := call[[]models.Question](ctx, c, http.MethodGet, path, nil)
	return resp.Data, err
}

// ValidateAnswer checks one answer; answer is marshalled as JSON
func (c *Client) ValidateAnswer(ctx context.Context, questionID string, answer any) (*models.ValidationResult, error) {
	raw, err := json.Marshal(answer)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answer: %w", err)
	}
	body := map[string]json.RawMessage{"answer": raw}
	resp, err := call[*models.ValidationResult](ctx, c, http.MethodPost, "/api/questions/"+url.PathEscape(questionID)+"/validate", body)
	return resp.Data, err
}

// CreateAssessment opens an assessment and returns its session
func (c *Client) CreateAssessment(ctx context.Context, req models.CreateAssessmentRequest) (*models.CreateAssessmentResponse, error) {
	resp, err := call[*models.CreateAssessmentResponse](ctx, c, http.MethodPost, "/api/assessments", req)
	return resp.Data, err
}

// SubmitAssessment scores answers for a session
func (c *Client) SubmitAssessment(ctx context.Context, sessionID string, answers []models.AnswerInput) (*models.SubmitResult, error) {
	body := models.SubmitAssessmentRequest{Answers: answers}
	resp, err := call[*models.SubmitResult](ctx, c, http.MethodPost, "/api/assessments/"+url.PathEscape(sessionID)+"/submit", body)
	return resp.Data, err
}

// GetAssessment retrieves an assessment by session id
func (c *Client) GetAssessment(ctx context.Context, sessionID string) (*models.Assessment, error) {
	resp, err := call[*models.Assessment](ctx, c, http.MethodGet, "/api/assessments/"+url.PathEscape(sessionID), nil)
	return resp.Data, err
}

// CoachChat sends a conversation to the coach. The response message is
// non-empty when the server answered with its canned reply.
func (c *Client) CoachChat(ctx context.Context, req models.CoachChatRequest) (Response[*models.CoachReply], error) {
	return call[*models.CoachReply](ctx, c, http.MethodPost, "/api/coach/chat", req)
}

// Health checks if the service is up and reports database connectivity
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	body, status, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, &APIError{StatusCode: status, Message: string(body)}
	}

	var h HealthStatus
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &h, nil
}

// call performs a request and unwraps the envelope into T
func call[T any](ctx context.Context, c *Client, method, path string, in any) (Response[T], error) {
	var out Response[T]

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return out, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	respBody, status, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return out, err
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		if status >= 400 {
			return out, &APIError{StatusCode: status, Message: string(respBody)}
		}
		return out, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if status >= 400 || !env.Success {
		return out, &APIError{StatusCode: status, Message: env.Message}
	}

	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &out.Data); err != nil {
			return out, fmt.Errorf("failed to unmarshal data: %w", err)
		}
	}
	out.Message = env.Message
	return out, nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	return respBody, resp.StatusCode, nil
}
