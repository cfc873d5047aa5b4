// Package lookup implements the status-lookup collaborator over HTTP. The
// checker only requires something that fills a StudentResult from a
// StudentInput; this client speaks JSON to a status endpoint.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"edustatus/internal/domain"
)

const statusPath = "/api/v1/status"

// Client queries a remote status service for one student at a time.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds a Client for the given service base URL.
func NewClient(baseURL string, logger *log.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = log.Default()
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// statusResponse mirrors the service's JSON payload. Absent fields stay nil
// so the result records "never populated" rather than empty strings.
type statusResponse struct {
	FullNameCyrillic   *string `json:"full_name_cyrillic"`
	FullNameLatin      *string `json:"full_name_latin"`
	SystemRegNumber    *string `json:"system_reg_number"`
	Country            *string `json:"country"`
	Status             *string `json:"status"`
	StatusMessage      *string `json:"status_message"`
	EducationLevel     *string `json:"education_level"`
	EducationProgram   *string `json:"education_program"`
	PreparatoryFaculty *string `json:"preparatory_faculty"`
}

// Check fetches the status for one input and returns the populated result.
// The returned record is not marked processed; the caller owns that flag.
func (c *Client) Check(ctx context.Context, in domain.StudentInput) (domain.StudentResult, error) {
	result := domain.NewStudentResult(in)

	query := url.Values{}
	query.Set("reg_number", in.RegNumber)
	query.Set("email", in.Email)
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, statusPath, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return result, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("query status service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("status service returned %s", resp.Status)
	}

	var payload statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return result, fmt.Errorf("decode status response: %w", err)
	}

	result.FullNameCyrillic = payload.FullNameCyrillic
	result.FullNameLatin = payload.FullNameLatin
	result.SystemRegNumber = payload.SystemRegNumber
	result.Country = payload.Country
	result.Status = payload.Status
	result.StatusMessage = payload.StatusMessage
	result.EducationLevel = payload.EducationLevel
	result.EducationProgram = payload.EducationProgram
	result.PreparatoryFaculty = payload.PreparatoryFaculty
	return result, nil
}
