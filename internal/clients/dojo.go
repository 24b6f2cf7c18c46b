package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ethanolivertroy/dojo-gate/internal/models"
)

const apiPrefix = "/api/v1/"

// maxErrorBody bounds how much of an error response ends up in a message
const maxErrorBody = 512

// DojoConfig holds findings service client configuration
type DojoConfig struct {
	Host     string        // Base URL, e.g. https://defectdojo.example.com
	User     string        // API user, part of the ApiKey header
	APIKey   string        // API key
	Proxy    string        // Optional proxy URL
	Insecure bool          // Skip TLS verification
	Timeout  time.Duration // Request timeout
}

// DojoClient talks to a DefectDojo-compatible findings service over REST/JSON
type DojoClient struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
}

// NewDojoClient creates a new findings service client
func NewDojoClient(cfg DojoConfig) (*DojoClient, error) {
	host := strings.TrimRight(strings.TrimSpace(cfg.Host), "/")
	if host == "" {
		return nil, fmt.Errorf("findings service host is required")
	}
	if _, err := url.ParseRequestURI(host); err != nil {
		return nil, fmt.Errorf("invalid host %q: %w", cfg.Host, err)
	}

	proxyURL, err := ParseProxyURL(cfg.Proxy)
	if err != nil {
		return nil, err
	}
	transport, err := NewTransport(proxyURL, cfg.Insecure)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 360 * time.Second
	}

	return &DojoClient{
		baseURL:    host + apiPrefix,
		authHeader: fmt.Sprintf("ApiKey %s:%s", cfg.User, cfg.APIKey),
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
	}, nil
}

type userList struct {
	Objects []models.User `json:"objects"`
}

// ListUsers returns the users whose username matches name
func (c *DojoClient) ListUsers(ctx context.Context, name string) ([]models.User, error) {
	const op = "list users"

	q := url.Values{}
	q.Set("username", name)
	body, _, err := c.do(ctx, op, http.MethodGet, "users/", q, nil, "")
	if err != nil {
		return nil, err
	}

	var list userList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &models.ServiceError{Op: op, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return list.Objects, nil
}

type engagementRequest struct {
	Name        string `json:"name"`
	Product     string `json:"product"`
	Lead        string `json:"lead"`
	Status      string `json:"status"`
	TargetStart string `json:"target_start"`
	TargetEnd   string `json:"target_end"`
	Active      bool   `json:"active"`
}

// CreateEngagement creates an engagement and returns its id
func (c *DojoClient) CreateEngagement(ctx context.Context, e models.Engagement) (int, error) {
	const op = "create engagement"

	payload, err := json.Marshal(engagementRequest{
		Name:        e.Name,
		Product:     resourceURI("products", e.ProductID),
		Lead:        resourceURI("users", strconv.Itoa(e.LeadID)),
		Status:      string(e.Status),
		TargetStart: e.StartDate,
		TargetEnd:   e.EndDate,
		Active:      true,
	})
	if err != nil {
		return 0, &models.ServiceError{Op: op, Err: err}
	}

	body, header, err := c.do(ctx, op, http.MethodPost, "engagements/", nil, bytes.NewReader(payload), "application/json")
	if err != nil {
		return 0, err
	}

	id, ok := createdID(body, header, "id")
	if !ok {
		return 0, &models.ServiceError{Op: op, Message: "response carried no engagement id"}
	}
	return id, nil
}

// CloseEngagement marks an engagement as completed
func (c *DojoClient) CloseEngagement(ctx context.Context, id int) error {
	const op = "close engagement"

	payload, err := json.Marshal(map[string]any{
		"status": string(models.StatusClosed),
		"active": false,
	})
	if err != nil {
		return &models.ServiceError{Op: op, Err: err}
	}

	_, _, err = c.do(ctx, op, http.MethodPatch, fmt.Sprintf("engagements/%d/", id), nil, bytes.NewReader(payload), "application/json")
	return err
}

// UploadScan imports one scanner report into an engagement and returns the
// submission (test) id. A rejected import is reported as *models.UploadError.
func (c *DojoClient) UploadScan(ctx context.Context, req models.UploadRequest) (int, error) {
	const op = "upload scan"

	f, err := os.Open(req.FilePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open scan file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"engagement", resourceURI("engagements", strconv.Itoa(req.EngagementID))},
		{"scan_type", req.ScannerName},
		{"scan_date", req.ScanDate},
		{"skip_duplicates", strconv.FormatBool(req.SuppressDuplicates)},
		{"active", "false"},
		{"verified", "true"},
		{"minimum_severity", string(models.SeverityInfo)},
	}
	if req.BuildID != "" {
		fields = append(fields, [2]string{"build_id", req.BuildID})
	}
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return 0, &models.ServiceError{Op: op, Err: err}
		}
	}
	part, err := mw.CreateFormFile("file", filepath.Base(req.FilePath))
	if err != nil {
		return 0, &models.ServiceError{Op: op, Err: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return 0, fmt.Errorf("failed to read scan file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return 0, &models.ServiceError{Op: op, Err: err}
	}

	body, header, err := c.do(ctx, op, http.MethodPost, "importscan/", nil, &buf, mw.FormDataContentType())
	if err != nil {
		var se *models.ServiceError
		if errors.As(err, &se) && se.StatusCode != 0 {
			return 0, &models.UploadError{File: req.FilePath, Message: se.Message}
		}
		return 0, err
	}

	id, ok := createdID(body, header, "test", "id")
	if !ok {
		return 0, &models.UploadError{File: req.FilePath, Message: "response carried no test id"}
	}
	return id, nil
}

// ListFindings runs a findings query. Only the first page is fetched.
func (c *DojoClient) ListFindings(ctx context.Context, filter models.FindingFilter) (*models.FindingPage, error) {
	const op = "list findings"

	body, _, err := c.do(ctx, op, http.MethodGet, "findings/", findingsQuery(filter), nil, "")
	if err != nil {
		return nil, err
	}

	var page models.FindingPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &models.ServiceError{Op: op, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return &page, nil
}

func findingsQuery(filter models.FindingFilter) url.Values {
	q := url.Values{}
	if filter.EngagementID > 0 {
		q.Set("engagement__id__in", strconv.Itoa(filter.EngagementID))
	}
	if len(filter.SubmissionIDs) > 0 {
		ids := make([]string, len(filter.SubmissionIDs))
		for i, id := range filter.SubmissionIDs {
			ids[i] = strconv.Itoa(id)
		}
		q.Set("test__id__in", strings.Join(ids, ","))
	}
	setBool := func(key string, v *bool) {
		if v != nil {
			q.Set(key, strconv.FormatBool(*v))
		}
	}
	setBool("duplicate", filter.Duplicate)
	setBool("active", filter.Active)
	setBool("verified", filter.Verified)
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	return q
}

// do sends a request and returns the body of a 2xx response. Anything else
// becomes a *models.ServiceError.
func (c *DojoClient) do(ctx context.Context, op, method, endpoint string, query url.Values, body io.Reader, contentType string) ([]byte, http.Header, error) {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, nil, &models.ServiceError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &models.ServiceError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &models.ServiceError{Op: op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &models.ServiceError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data, resp.Status),
		}
	}
	return data, resp.Header, nil
}

func errorMessage(body []byte, status string) string {
	var detail struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &detail) == nil {
		for _, m := range []string{detail.Error, detail.Detail, detail.Message} {
			if m != "" {
				return m
			}
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return status
	}
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody-3] + "..."
	}
	return msg
}

func resourceURI(kind, id string) string {
	return apiPrefix + kind + "/" + id + "/"
}

// createdID reads a created resource id from the JSON body keys, falling
// back to the last segment of the Location header.
func createdID(body []byte, header http.Header, keys ...string) (int, bool) {
	if len(body) > 0 {
		var fields map[string]json.RawMessage
		if json.Unmarshal(body, &fields) == nil {
			for _, k := range keys {
				var id int
				if raw, ok := fields[k]; ok && json.Unmarshal(raw, &id) == nil && id > 0 {
					return id, true
				}
			}
		}
	}

	loc := header.Get("Location")
	if loc == "" {
		return 0, false
	}
	if u, err := url.Parse(loc); err == nil {
		loc = u.Path
	}
	id, err := strconv.Atoi(path.Base(strings.TrimRight(loc, "/")))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
