package bitable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

const (
	// The remote token carries its own TTL; we treat it as expired five
	// minutes early so we never race the external clock.
	tokenExpiryMargin = 5 * time.Minute

	requestTimeout = 30 * time.Second

	// Remote application-level code for a missing record id. The service
	// signals some errors this way inside a 200 body.
	codeRecordNotFound = 1254043
)

// Client wraps the external table service: tenant token auth plus typed CRUD
// against one submissions table and the associated binary-storage endpoint.
type Client struct {
	baseURL   string
	appID     string
	appSecret string
	appToken  string
	tableID   string

	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(baseURL, appID, appSecret, appToken, tableID string) *Client {
	return &Client{
		baseURL:   baseURL,
		appID:     appID,
		appSecret: appSecret,
		appToken:  appToken,
		tableID:   tableID,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Record is one row of the submissions table. Fields are keyed by the
// remote schema's opaque column names.
type Record struct {
	ID     string
	Fields map[string]interface{}
}

type FileUploadResult struct {
	FileToken string
	URL       string
}

// --- Response envelopes (internal to this package) ---

type tokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"`
}

type recordPayload struct {
	RecordID string                 `json:"record_id"`
	Fields   map[string]interface{} `json:"fields"`
}

type recordEnvelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		Record *recordPayload `json:"record"`
	} `json:"data"`
}

type listEnvelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		Items   []recordPayload `json:"items"`
		Total   int             `json:"total"`
		HasMore bool            `json:"has_more"`
	} `json:"data"`
}

type uploadEnvelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		FileToken string `json:"file_token"`
		URL       string `json:"url"`
	} `json:"data"`
}

// Authenticate exchanges app credentials for a tenant access token.
// A cached, unexpired token is returned without a network call; concurrent
// callers serialize on the mutex so at most one refresh is in flight.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if c.appID == "" || c.appSecret == "" {
		return "", ErrNotConfigured
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	payload, err := json.Marshal(map[string]string{
		"app_id":     c.appID,
		"app_secret": c.appSecret,
	})
	if err != nil {
		return "", fmt.Errorf("marshal auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/auth/v3/tenant_access_token/internal", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrAuthFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrAuthFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrAuthFailure, resp.StatusCode, string(body))
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	// The service reports some auth errors with HTTP 200 and a non-zero
	// code in the body. Both must be checked.
	if tokenResp.Code != 0 {
		return "", fmt.Errorf("%w: code %d: %s", ErrAuthFailure, tokenResp.Code, tokenResp.Msg)
	}
	if tokenResp.TenantAccessToken == "" {
		return "", fmt.Errorf("%w: empty tenant access token", ErrMalformedResponse)
	}

	c.accessToken = tokenResp.TenantAccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.Expire)*time.Second - tokenExpiryMargin)

	return c.accessToken, nil
}

// CreateRecord posts one new row and returns the identifier the service assigned.
func (c *Client) CreateRecord(ctx context.Context, fields map[string]interface{}) (string, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]interface{}{"fields": fields})
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	reqURL := fmt.Sprintf("%s/bitable/v1/apps/%s/tables/%s/records", c.baseURL, c.appToken, c.tableID)
	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrWriteFailure, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrWriteFailure, resp.StatusCode, remoteMessage(body))
	}

	var envelope recordEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if envelope.Code != 0 {
		return "", fmt.Errorf("%w: code %d: %s", ErrWriteFailure, envelope.Code, envelope.Msg)
	}
	if envelope.Data == nil || envelope.Data.Record == nil || envelope.Data.Record.RecordID == "" {
		return "", fmt.Errorf("%w: missing record in create response", ErrMalformedResponse)
	}

	return envelope.Data.Record.RecordID, nil
}

// GetRecord fetches one row by id. A missing row surfaces as ErrRecordNotFound,
// never as a generic failure, so callers can tell "gone" from "flaky".
func (c *Client) GetRecord(ctx context.Context, id string) (*Record, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/bitable/v1/apps/%s/tables/%s/records/%s", c.baseURL, c.appToken, c.tableID, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrReadFailure, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrRecordNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrReadFailure, resp.StatusCode, remoteMessage(body))
	}

	var envelope recordEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if envelope.Code == codeRecordNotFound {
		return nil, ErrRecordNotFound
	}
	if envelope.Code != 0 {
		return nil, fmt.Errorf("%w: code %d: %s", ErrReadFailure, envelope.Code, envelope.Msg)
	}
	if envelope.Data == nil || envelope.Data.Record == nil {
		return nil, fmt.Errorf("%w: missing record in get response", ErrMalformedResponse)
	}

	return &Record{
		ID:     envelope.Data.Record.RecordID,
		Fields: envelope.Data.Record.Fields,
	}, nil
}

// ListRecords fetches one page. The remote total is passed through untouched;
// this client never counts or caches rows itself.
func (c *Client) ListRecords(ctx context.Context, page, pageSize int) ([]Record, int, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, 0, err
	}

	params := url.Values{}
	params.Add("page", strconv.Itoa(page))
	params.Add("page_size", strconv.Itoa(pageSize))

	reqURL := fmt.Sprintf("%s/bitable/v1/apps/%s/tables/%s/records?%s", c.baseURL, c.appToken, c.tableID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, 0, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrReadFailure, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("%w: status %d: %s", ErrReadFailure, resp.StatusCode, remoteMessage(body))
	}

	var envelope listEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if envelope.Code != 0 {
		return nil, 0, fmt.Errorf("%w: code %d: %s", ErrReadFailure, envelope.Code, envelope.Msg)
	}
	if envelope.Data == nil {
		return nil, 0, fmt.Errorf("%w: missing data in list response", ErrMalformedResponse)
	}

	records := make([]Record, 0, len(envelope.Data.Items))
	for _, item := range envelope.Data.Items {
		records = append(records, Record{ID: item.RecordID, Fields: item.Fields})
	}

	return records, envelope.Data.Total, nil
}

// UploadFile sends a binary blob to the service's drive endpoint, parented
// under the same table app so records can reference it as an attachment.
func (c *Client) UploadFile(ctx context.Context, name, contentType string, content io.Reader, size int64) (*FileUploadResult, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copy file content: %w", err)
	}
	_ = writer.WriteField("file_name", name)
	_ = writer.WriteField("parent_type", "bitable_file")
	_ = writer.WriteField("parent_node", c.appToken)
	_ = writer.WriteField("size", strconv.FormatInt(size, 10))
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/drive/v1/files/upload_all", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrWriteFailure, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrWriteFailure, resp.StatusCode, remoteMessage(body))
	}

	var envelope uploadEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if envelope.Code != 0 {
		return nil, fmt.Errorf("%w: code %d: %s", ErrWriteFailure, envelope.Code, envelope.Msg)
	}
	if envelope.Data == nil || envelope.Data.FileToken == "" {
		return nil, fmt.Errorf("%w: missing file token in upload response", ErrMalformedResponse)
	}

	fileURL := envelope.Data.URL
	if fileURL == "" {
		fileURL = fmt.Sprintf("%s/drive/v1/files/%s/download", c.baseURL, envelope.Data.FileToken)
	}

	return &FileUploadResult{
		FileToken: envelope.Data.FileToken,
		URL:       fileURL,
	}, nil
}

// remoteMessage pulls the msg field out of an error body when present,
// falling back to the raw body.
func remoteMessage(body []byte) string {
	var partial struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body, &partial); err == nil && partial.Msg != "" {
		return partial.Msg
	}
	return string(body)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
