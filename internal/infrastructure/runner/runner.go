// Package runner delegates code execution to the external execution
// collaborator. Requests travel on their own HTTP path with a caller-enforced
// timeout; room traffic never waits on a run.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Languages the execution collaborator accepts.
var SupportedLanguages = []string{"javascript", "python", "java", "cpp", "html"}

type RunRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// RunResult carries exactly one of Output or Error, mirroring the
// collaborator's contract.
type RunResult struct {
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Run submits {code, language} and returns the collaborator's verdict. A
// transport failure or timeout surfaces as an error result rather than
// leaving the caller waiting.
func (c *Client) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build run request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &RunResult{Error: fmt.Sprintf("execution service unreachable: %v", err)}, nil
	}
	defer resp.Body.Close()

	var result RunResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return &RunResult{Error: "no response from execution service"}, nil
	}

	if result.Output == "" && result.Error == "" && resp.StatusCode >= 400 {
		result.Error = fmt.Sprintf("execution service returned %s", resp.Status)
	}

	return &result, nil
}
