package api

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
	"strings"
	"time"

	"github.com/youruser/ragchat/internal/logging"
)

var (
	ErrRequestFailed = errors.New("API request failed")
	ErrStreamError   = errors.New("stream error")
	log              = logging.Get()
)

const defaultRequestTimeout = 30 * time.Second

// Client handles communication with the ragchat backend.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	requestTimeout time.Duration
}

// NewClient creates a new backend client. timeout applies to non-streaming
// requests only; streaming reads run until the server closes the body.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		httpClient:     &http.Client{},
		requestTimeout: timeout,
	}
}

// CreateSession asks the backend to mint a new session identifier.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/session/", nil)
	if err != nil {
		return "", err
	}

	log.Debug("HTTP GET %s/session/", c.baseURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("HTTP request failed: %v", err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("API error %d: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("%w: %d - %s", ErrRequestFailed, resp.StatusCode, string(body))
	}

	var session SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", err
	}
	if session.SessionID == "" {
		return "", errors.New("no sessionId in response")
	}

	return session.SessionID, nil
}

// ValidateSession checks whether a session identifier is still known to the
// backend. The endpoint takes the id as a query parameter and returns a bare
// JSON boolean.
func (c *Client) ValidateSession(ctx context.Context, sessionID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	u := c.baseURL + "/session/?session_id=" + url.QueryEscape(sessionID)
	req, err := http.NewRequestWithContext(ctx, "POST", u, nil)
	if err != nil {
		return false, err
	}

	log.Debug("HTTP POST %s/session/ (validate)", c.baseURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("HTTP request failed: %v", err)
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("API error %d: %s", resp.StatusCode, string(body))
		return false, fmt.Errorf("%w: %d - %s", ErrRequestFailed, resp.StatusCode, string(body))
	}

	var valid bool
	if err := json.NewDecoder(resp.Body).Decode(&valid); err != nil {
		return false, err
	}

	return valid, nil
}

// Upload sends a file as multipart form data with the session identifier.
// The payload beyond the status code is unused.
func (c *Client) Upload(ctx context.Context, sessionID, fileName string, r io.Reader) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	if err := w.WriteField("session_id", sessionID); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/upload/", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	log.Debug("HTTP POST %s/upload/ (file: %s, %d bytes)", c.baseURL, fileName, buf.Len())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("HTTP request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("API error %d: %s", resp.StatusCode, string(body))
		return fmt.Errorf("%w: %d - %s", ErrRequestFailed, resp.StatusCode, string(body))
	}

	return nil
}

// PromptStream issues the streaming prompt call and returns the response
// body. The caller owns the body and must close it; chunks are consumed by
// the stream assembler, not here.
func (c *Client) PromptStream(ctx context.Context, promptReq PromptRequest) (io.ReadCloser, error) {
	bodyBytes, err := json.Marshal(promptReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/prompt-stream/", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug("HTTP POST %s/prompt-stream/ (session: %s, prompt: %d chars)",
		c.baseURL, promptReq.SessionID, len(promptReq.Prompt))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("HTTP request failed: %v", err)
		return nil, err
	}

	log.Debug("HTTP response status: %d", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		log.Error("API error %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: %d - %s", ErrRequestFailed, resp.StatusCode, string(body))
	}

	return resp.Body, nil
}

// Prompt issues the non-streaming prompt call and returns the completed
// assistant reply.
func (c *Client) Prompt(ctx context.Context, promptReq PromptRequest) (*PromptResponse, error) {
	bodyBytes, err := json.Marshal(promptReq)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/prompt/", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug("HTTP POST %s/prompt/ (session: %s)", c.baseURL, promptReq.SessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("HTTP request failed: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("API error %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: %d - %s", ErrRequestFailed, resp.StatusCode, string(body))
	}

	var promptResp PromptResponse
	if err := json.NewDecoder(resp.Body).Decode(&promptResp); err != nil {
		return nil, err
	}

	return &promptResp, nil
}
