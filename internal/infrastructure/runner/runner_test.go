package runner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRunReturnsOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/execute" {
			t.Errorf("expected path /execute, got %s", r.URL.Path)
		}
		var req RunRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Language != "python" {
			t.Errorf("expected language python, got %q", req.Language)
		}
		json.NewEncoder(w).Encode(RunResult{Output: "42\n"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	result, err := c.Run(context.Background(), RunRequest{Code: "print(42)", Language: "python"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Output != "42\n" {
		t.Errorf("expected output %q, got %q", "42\n", result.Output)
	}
}

func TestRunReturnsCollaboratorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(RunResult{Error: "SyntaxError: invalid syntax"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	result, err := c.Run(context.Background(), RunRequest{Code: "print(", Language: "python"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Error == "" {
		t.Error("expected the collaborator's error to pass through")
	}
}

func TestRunTransportFailureBecomesErrorResult(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 100*time.Millisecond)

	result, err := c.Run(context.Background(), RunRequest{Code: "x", Language: "python"})
	if err != nil {
		t.Fatalf("transport failures should surface in the result, got error %v", err)
	}
	if result.Error == "" {
		t.Error("expected an error result for an unreachable collaborator")
	}
}
