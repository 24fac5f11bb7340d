// Package backend defines the contract with the external document QA
// engine and an HTTP client implementing it. Indexing, embedding,
// retrieval, and LLM invocation all live on the engine side; this package
// only opens a handle and forwards questions.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	constructTimeout = 30 * time.Second
	maxErrorBodySize = 4 << 10
)

// Client talks to the document QA engine over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	docCount   int
}

type openIndexRequest struct {
	DocumentsDir  string `json:"documents_dir"`
	ResetIndex    bool   `json:"reset_index"`
	EnableWatcher bool   `json:"enable_watcher"`
}

type openIndexResponse struct {
	DocumentCount int `json:"document_count"`
}

type askRequest struct {
	Question string `json:"question"`
}

// New opens a handle on the QA engine: it instructs the engine to open
// the index over the given documents directory and records the reported
// document count. Construction fails if the engine is unreachable or
// rejects the request.
func New(opts Options) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		// No Timeout here: per-question deadlines come from the caller's
		// context so slow questions and fast health checks can differ.
		httpClient: &http.Client{},
	}

	ctx, cancel := context.WithTimeout(context.Background(), constructTimeout)
	defer cancel()

	req := openIndexRequest{
		DocumentsDir:  opts.DocumentsDir,
		ResetIndex:    opts.ResetIndex,
		EnableWatcher: opts.EnableWatcher,
	}
	var resp openIndexResponse
	if err := c.postJSON(ctx, "/v1/index/open", req, &resp); err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}

	c.docCount = resp.DocumentCount
	return c, nil
}

// DocumentCount reports the document count captured at construction.
func (c *Client) DocumentCount() int {
	return c.docCount
}

// Ask forwards a question to the engine and decodes the structured
// answer. The question is passed through unchanged; validation is the
// engine's responsibility.
func (c *Client) Ask(ctx context.Context, question string) (Response, error) {
	var resp Response
	if err := c.postJSON(ctx, "/v1/ask", askRequest{Question: question}, &resp); err != nil {
		return Response{}, fmt.Errorf("asking backend: %w", err)
	}
	return resp, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
