package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/fmuoria/resume-tailor/internal/models"
	"github.com/fmuoria/resume-tailor/internal/session"
)

// maxPDFSize caps the generated PDF read into memory
var maxPDFSize int64 = 64 << 20

// ErrNoBackend is returned when no backend URL is configured
var ErrNoBackend = models.NewError(models.ErrNetwork, "Backend URL is not configured.", nil)

// Client talks to the resume tailoring backend
type Client struct {
	baseURL string
	session *session.Session
	plain   *http.Client
	authed  *http.Client
}

// NewClient creates a backend client. httpClient may be nil.
func NewClient(baseURL string, sess *session.Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: sess,
		plain:   httpClient,
		authed:  sess.HTTPClient(httpClient),
	}
}

// BaseURL returns the configured backend base URL
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) endpoint(path string) (string, error) {
	if c.baseURL == "" {
		return "", ErrNoBackend
	}
	return c.baseURL + path, nil
}

// Login exchanges credentials for a bearer token and stores it in the session
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	url, err := c.endpoint("/login")
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(models.LoginRequest{Username: username, Password: password})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.plain.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		msg := errorMessage(resp.Body, "detail", "Login failed.")
		return "", models.NewError(models.ErrAuth, msg, fmt.Errorf("login: status %d", resp.StatusCode))
	}

	var data models.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", models.NewError(models.ErrAuth, "Token missing in response", err)
	}
	if data.AccessToken == "" {
		return "", models.NewError(models.ErrAuth, "Token missing in response", nil)
	}

	c.session.SetToken(data.AccessToken)
	slog.Info("logged in", "username", username)
	return data.AccessToken, nil
}

// Profiles lists the profiles available to the logged-in user
func (c *Client) Profiles(ctx context.Context) ([]models.Profile, error) {
	url, err := c.endpoint("/profiles")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profiles request: %w", err)
	}

	resp, err := c.authed.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		io.Copy(io.Discard, resp.Body)
		return nil, statusError(resp.StatusCode, "Failed to fetch profiles.")
	}

	var data models.ProfilesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, models.NewError(models.ErrNetwork, "Failed to fetch profiles.", err)
	}
	return data.Profiles, nil
}

// GeneratePDF submits a job and returns the generated PDF bytes
func (c *Client) GeneratePDF(ctx context.Context, job models.JobSubmission) ([]byte, error) {
	url, err := c.endpoint("/generate_dynamic_resume_pdf")
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := []struct{ name, value string }{
		{"profile_name", job.ProfileName},
		{"job_description", job.JobDescription},
		{"company", job.Company},
		{"role", job.Role},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", f.name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build generate request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.authed.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		msg := errorMessage(resp.Body, "error", "Failed to generate PDF.")
		return nil, statusError(resp.StatusCode, msg)
	}

	pdf, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFSize+1))
	if err != nil {
		return nil, models.NewError(models.ErrNetwork, "Failed to read generated PDF.", err)
	}
	if int64(len(pdf)) > maxPDFSize {
		return nil, models.NewError(models.ErrNetwork, "Generated PDF is too large.", nil)
	}
	return pdf, nil
}

// Health checks that the backend answers
func (c *Client) Health(ctx context.Context) error {
	url, err := c.endpoint("/health")
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := c.plain.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if !isSuccess(resp.StatusCode) {
		return statusError(resp.StatusCode, "Backend is not reachable.")
	}
	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// statusError maps a non-2xx response to an error kind. 401 means the
// token is no longer accepted and the caller should prompt for login again.
func statusError(status int, msg string) error {
	cause := fmt.Errorf("status %d", status)
	if status == http.StatusUnauthorized {
		return models.NewError(models.ErrAuth, msg, cause)
	}
	return models.NewError(models.ErrNetwork, msg, cause)
}

// errorMessage reads field from a JSON error body, falling back when the
// body is not JSON or the field is empty
func errorMessage(body io.Reader, field, fallback string) string {
	var payload map[string]any
	if err := json.NewDecoder(io.LimitReader(body, 1<<20)).Decode(&payload); err != nil {
		return fallback
	}
	if msg, ok := payload[field].(string); ok && msg != "" {
		return msg
	}
	return fallback
}

func transportError(err error) error {
	if errors.Is(err, models.ErrAuth) {
		return err
	}
	return models.NewError(models.ErrNetwork, err.Error(), err)
}
