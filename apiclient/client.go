package apiclient

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

	"github.com/jrsteele09/go-flexcrew-dashboard/credentials"
	apperrors "github.com/jrsteele09/go-flexcrew-dashboard/internal/errors"
	"golang.org/x/oauth2"
)

const (
	AuthenticatePath     = "/api/auth/authenticate"
	EmployeeSearchPath   = "/api/employees/search"
	ChangePasswordPath   = "/api/employees/change-password"
	SchedulesPath        = "/api/schedules"
	EmployeesByTeamPath  = "/api/employees/byTeam/"
	PunctualityStatsPath = "/api/v1/analytics/punctuality"
	ScheduleLoadPath     = "/api/v1/analytics/schedule-load"
	ProjectsPath         = "/api/v1/projects"
	EmployeesPath        = "/api/employees"
	CurrentSchedulesPath = "/api/schedules/employee/current"

	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
	maxErrorBytes  = 4 << 10
)

// APIError is returned for any non-2xx response from the remote API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api responded %d: %s", e.Status, e.Message)
}

// Unwrap maps well known statuses onto the package sentinels so callers can use
// errors.Is without inspecting the status code.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.ErrUnauthorized
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	}
	return nil
}

// StatusOf returns the HTTP status carried by err, or 0 if the request never got
// a response.
func StatusOf(err error) int {
	var apiErr *APIError
	if apperrors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type ClientOption func(*Client)

// WithRefresher lets the authenticated transport refresh the access token
func WithRefresher(r Refresher, retryOnUnauthorized bool) ClientOption {
	return func(c *Client) {
		c.refresher = r
		c.retry = retryOnUnauthorized
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBaseTransport replaces the round tripper used underneath the token transport
func WithBaseTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.base = rt
	}
}

// Client calls the FlexCrew API. Requests made through it carry the access token
// held in the credential store at the time each request is sent.
type Client struct {
	baseURL   string
	store     credentials.Store
	refresher Refresher
	retry     bool
	timeout   time.Duration
	base      http.RoundTripper

	authed *http.Client
	public *http.Client
}

func NewClient(baseURL string, store credentials.Store, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		store:   store,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.authed = &http.Client{
		Timeout: c.timeout,
		Transport: &Transport{
			Source:              NewStoreTokenSource(store),
			Base:                c.base,
			Refresher:           c.refresher,
			RetryOnUnauthorized: c.retry,
		},
	}
	c.public = &http.Client{
		Timeout: c.timeout,
		Transport: &Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{}),
			Base:   c.base,
		},
	}
	return c
}

// Authenticate exchanges an email and password for a token pair. It is sent
// without credentials and never triggers a refresh. Fields missing from the
// response are left empty; use Complete to check.
func (c *Client) Authenticate(ctx context.Context, email, password string) (AuthenticationResponse, error) {
	var resp AuthenticationResponse
	body := AuthenticationRequest{Email: email, Password: password}
	if err := c.do(ctx, c.public, http.MethodPost, AuthenticatePath, nil, body, &resp); err != nil {
		return AuthenticationResponse{}, err
	}
	return resp, nil
}

func (c *Client) EmployeeByEmail(ctx context.Context, email string) (Employee, error) {
	var emp *Employee
	query := url.Values{"employeeEmail": {email}}
	if err := c.do(ctx, c.authed, http.MethodGet, EmployeeSearchPath, query, nil, &emp); err != nil {
		return Employee{}, err
	}
	if emp == nil {
		return Employee{}, apperrors.Wrapf(apperrors.ErrNotFound, "[Client EmployeeByEmail] %s", email)
	}
	return *emp, nil
}

func (c *Client) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	body := ChangePasswordRequest{Email: email, OldPassword: oldPassword, NewPassword: newPassword}
	return c.do(ctx, c.authed, http.MethodPut, ChangePasswordPath, nil, body, nil)
}

func (c *Client) Schedules(ctx context.Context) ([]Schedule, error) {
	var out []Schedule
	err := c.do(ctx, c.authed, http.MethodGet, SchedulesPath, nil, nil, &out)
	return out, err
}

func (c *Client) Schedule(ctx context.Context, id int) (Schedule, error) {
	var out *Schedule
	if err := c.do(ctx, c.authed, http.MethodGet, schedulePath(id), nil, nil, &out); err != nil {
		return Schedule{}, err
	}
	if out == nil {
		return Schedule{}, apperrors.Wrapf(apperrors.ErrNotFound, "[Client Schedule] %d", id)
	}
	return *out, nil
}

// CurrentSchedules returns the signed in employee's schedules for the week
func (c *Client) CurrentSchedules(ctx context.Context) ([]Schedule, error) {
	var out []Schedule
	err := c.do(ctx, c.authed, http.MethodGet, CurrentSchedulesPath, nil, nil, &out)
	return out, err
}

// CreateSchedule adds a schedule and returns it as stored by the API
func (c *Client) CreateSchedule(ctx context.Context, in ScheduleInput) (Schedule, error) {
	in.ID = 0
	var out Schedule
	err := c.do(ctx, c.authed, http.MethodPost, SchedulesPath, nil, in, &out)
	return out, err
}

// UpdateSchedule replaces the schedule with the given id. The API answers with
// a plain text confirmation, so nothing is decoded.
func (c *Client) UpdateSchedule(ctx context.Context, id int, in ScheduleInput) error {
	in.ID = id
	return c.do(ctx, c.authed, http.MethodPut, schedulePath(id), nil, in, nil)
}

func (c *Client) DeleteSchedule(ctx context.Context, id int) error {
	return c.do(ctx, c.authed, http.MethodDelete, schedulePath(id), nil, nil, nil)
}

func (c *Client) Employees(ctx context.Context) ([]Employee, error) {
	var out []Employee
	err := c.do(ctx, c.authed, http.MethodGet, EmployeesPath, nil, nil, &out)
	return out, err
}

func (c *Client) EmployeesByTeam(ctx context.Context, teamID int) ([]Employee, error) {
	var out []Employee
	err := c.do(ctx, c.authed, http.MethodGet, EmployeesByTeamPath+strconv.Itoa(teamID), nil, nil, &out)
	return out, err
}

func (c *Client) PunctualityStats(ctx context.Context) (PunctualityStats, error) {
	var out PunctualityStats
	err := c.do(ctx, c.authed, http.MethodGet, PunctualityStatsPath, nil, nil, &out)
	return out, err
}

func (c *Client) ScheduleLoad(ctx context.Context) ([]ScheduleLoad, error) {
	var out []ScheduleLoad
	err := c.do(ctx, c.authed, http.MethodGet, ScheduleLoadPath, nil, nil, &out)
	return out, err
}

func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var out []Project
	err := c.do(ctx, c.authed, http.MethodGet, ProjectsPath, nil, nil, &out)
	return out, err
}

func (c *Client) Project(ctx context.Context, id int) (Project, error) {
	var out *Project
	if err := c.do(ctx, c.authed, http.MethodGet, projectPath(id), nil, nil, &out); err != nil {
		return Project{}, err
	}
	if out == nil {
		return Project{}, apperrors.Wrapf(apperrors.ErrNotFound, "[Client Project] %d", id)
	}
	return *out, nil
}

// AssignmentSuggestions returns, per team the project requires, who is assigned
// and who could be.
func (c *Client) AssignmentSuggestions(ctx context.Context, projectID int) (AssignmentSuggestions, error) {
	var out AssignmentSuggestions
	err := c.do(ctx, c.authed, http.MethodGet, projectPath(projectID)+"/assignment-suggestions", nil, nil, &out)
	return out, err
}

func schedulePath(id int) string {
	return SchedulesPath + "/" + strconv.Itoa(id)
}

func projectPath(id int) string {
	return ProjectsPath + "/" + strconv.Itoa(id)
}

// do sends a JSON request and decodes a JSON response into out. An empty 2xx
// body leaves out untouched.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, query url.Values, in, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return apperrors.Wrapf(err, "[Client do] encode %s %s", method, path)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return apperrors.Wrapf(err, "[Client do] new request %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return apperrors.Wrapf(err, "[Client do] %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return apperrors.Wrapf(err, "[Client do] read %s %s", method, path)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.Wrapf(err, "[Client do] decode %s %s", method, path)
	}
	return nil
}

// errorMessage prefers a JSON {"message": "..."} body, then plain text, then the
// status text.
func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
