package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/resource-dashboard/internal"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/assignment"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/auth"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/engineer"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/project"
	"github.com/frahmantamala/resource-dashboard/internal/core/datamodel/skillgap"
)

// TokenSource supplies the bearer credential. It is read on every request so a
// login or logout takes effect immediately.
type TokenSource interface {
	Token() (string, bool)
}

type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxConcurrency int
}

type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	metrics        *Metrics
	maxConcurrency int
	logger         *slog.Logger
}

func NewClient(config Config, tokens TokenSource, metrics *Metrics, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxConcurrency := config.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}

	return &Client{
		baseURL:        strings.TrimRight(config.BaseURL, "/"),
		httpClient:     &http.Client{Timeout: timeout},
		tokens:         tokens,
		metrics:        metrics,
		maxConcurrency: maxConcurrency,
		logger:         logger,
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (*auth.LoginResponse, error) {
	var out auth.LoginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", auth.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, internal.NewExternalError("login response carried no token", internal.ErrCodeGatewayResponse, nil)
	}
	return &out, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]project.Project, error) {
	var out []project.Project
	if err := c.do(ctx, "list_projects", http.MethodGet, "/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*project.Project, error) {
	var out project.Project
	if err := c.do(ctx, "get_project", http.MethodGet, "/projects/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProject(ctx context.Context, payload project.Payload) (*project.Project, error) {
	var out project.Project
	if err := c.do(ctx, "create_project", http.MethodPost, "/projects", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, payload project.Payload) (*project.Project, error) {
	var out project.Project
	if err := c.do(ctx, "update_project", http.MethodPut, "/projects/"+url.PathEscape(id), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSkillGap(ctx context.Context, projectID string) (*skillgap.Response, error) {
	var out skillgap.Response
	if err := c.do(ctx, "get_skill_gap", http.MethodGet, "/projects/"+url.PathEscape(projectID)+"/skill-gap", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListEngineers(ctx context.Context) ([]engineer.Engineer, error) {
	var out []engineer.Engineer
	if err := c.do(ctx, "list_engineers", http.MethodGet, "/engineers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetEngineer(ctx context.Context, id string) (*engineer.Engineer, error) {
	var out engineer.Engineer
	if err := c.do(ctx, "get_engineer", http.MethodGet, "/engineers/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCapacity(ctx context.Context, engineerID string) (*engineer.Capacity, error) {
	var out engineer.Capacity
	if err := c.do(ctx, "get_capacity", http.MethodGet, "/engineers/"+url.PathEscape(engineerID)+"/capacity", nil, &out); err != nil {
		return nil, err
	}
	if out.EngineerID == "" {
		out.EngineerID = engineerID
	}
	return &out, nil
}

func (c *Client) GetAvailability(ctx context.Context, engineerID string) (time.Time, error) {
	var out engineer.Availability
	if err := c.do(ctx, "get_availability", http.MethodGet, "/engineers/"+url.PathEscape(engineerID)+"/availability", nil, &out); err != nil {
		return time.Time{}, err
	}
	return out.AvailableDate, nil
}

func (c *Client) ListAssignments(ctx context.Context) ([]assignment.Assignment, error) {
	var out []assignment.Assignment
	if err := c.do(ctx, "list_assignments", http.MethodGet, "/assignments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAssignment(ctx context.Context, payload assignment.Payload) (*assignment.Assignment, error) {
	var out assignment.Assignment
	if err := c.do(ctx, "create_assignment", http.MethodPost, "/assignments", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAssignment(ctx context.Context, id string, payload assignment.Payload) (*assignment.Assignment, error) {
	var out assignment.Assignment
	if err := c.do(ctx, "update_assignment", http.MethodPut, "/assignments/"+url.PathEscape(id), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAssignment(ctx context.Context, id string) error {
	return c.do(ctx, "delete_assignment", http.MethodDelete, "/assignments/"+url.PathEscape(id), nil, nil)
}

// Ping reports whether the backend answers at all. Any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return internal.NewExternalError("backend unreachable", internal.ErrCodeGatewayUnavailable, err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.observe(op, err, time.Since(start))
	}()

	var reader io.Reader
	if body != nil {
		payload, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return internal.NewInternalError("failed to encode request", marshalErr)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return internal.NewInternalError("failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.WarnContext(ctx, "backend request failed", "op", op, "method", method, "path", path, "error", err)
		return internal.NewExternalError("backend unreachable", internal.ErrCodeGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		appErr := errorFromResponse(resp)
		c.logger.InfoContext(ctx, "backend rejected request",
			"op", op, "status", resp.StatusCode, "error", appErr.Message)
		return appErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return internal.NewExternalError("malformed backend response", internal.ErrCodeGatewayResponse, err)
	}
	return nil
}

func errorFromResponse(resp *http.Response) *internal.AppError {
	message := http.StatusText(resp.StatusCode)
	var body auth.ErrorBody
	if raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil && len(raw) > 0 {
		if json.Unmarshal(raw, &body) == nil && body.Message != "" {
			message = body.Message
		}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return internal.NewUnauthorizedError(message, internal.ErrCodeInvalidToken)
	case http.StatusForbidden:
		return internal.NewForbiddenError(message, internal.ErrCodeUnauthorizedAccess)
	case http.StatusNotFound:
		return internal.NewNotFoundError(message, internal.ErrCodeResourceNotFound)
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return internal.NewValidationError(message, internal.ErrCodeValidationFailed)
	default:
		return internal.NewExternalError(message, internal.ErrCodeGatewayResponse, fmt.Errorf("backend returned status %d", resp.StatusCode))
	}
}
