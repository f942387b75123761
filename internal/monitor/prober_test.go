package monitor

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProbeStatusClassification(t *testing.T) {
	tests := []struct {
		name        string
		statusCode  int
		wantSuccess bool
	}{
		{"ok", 200, true},
		{"created", 201, true},
		{"redirect boundary", 399, true},
		{"client error boundary", 400, false},
		{"not found", 404, false},
		{"server error", 500, false},
		{"bad gateway", 502, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.statusCode)
			}))
			defer server.Close()

			result := NewProber(5 * time.Second).Probe(server.URL)

			if result.StatusCode != test.statusCode {
				t.Errorf("Expected status code %d, got %d", test.statusCode, result.StatusCode)
			}
			if result.Success != test.wantSuccess {
				t.Errorf("Expected success=%v for status %d, got %v", test.wantSuccess, test.statusCode, result.Success)
			}
			if result.ResponseTime < 0 {
				t.Errorf("Expected non-negative response time, got %f", result.ResponseTime)
			}
			if test.wantSuccess && result.Error != "" {
				t.Errorf("Expected no error on success, got %q", result.Error)
			}
			if !test.wantSuccess && result.Error == "" {
				t.Error("Expected error description on failure")
			}
		})
	}
}

func TestProbeTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	result := NewProber(50 * time.Millisecond).Probe(server.URL)

	if result.Success {
		t.Error("Expected timeout probe to fail")
	}
	if result.StatusCode != http.StatusRequestTimeout {
		t.Errorf("Expected status code 408 on timeout, got %d", result.StatusCode)
	}
	if result.Error != "Request timeout" {
		t.Errorf("Expected error %q, got %q", "Request timeout", result.Error)
	}
	if result.ResponseTime <= 0 {
		t.Errorf("Expected positive response time on timeout, got %f", result.ResponseTime)
	}
}

func TestProbeConnectionError(t *testing.T) {
	// Grab a port with no listener behind it
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	result := NewProber(5 * time.Second).Probe(url)

	if result.Success {
		t.Error("Expected unreachable probe to fail")
	}
	if result.StatusCode != 0 {
		t.Errorf("Expected status code 0 when no response was received, got %d", result.StatusCode)
	}
	if result.Error == "" {
		t.Error("Expected error description for connection failure")
	}
	if result.ResponseTime < 0 {
		t.Errorf("Expected non-negative response time, got %f", result.ResponseTime)
	}
}

func TestProbeFollowsRedirects(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	redirector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}))
	defer redirector.Close()

	result := NewProber(5 * time.Second).Probe(redirector.URL)

	if !result.Success {
		t.Errorf("Expected redirected probe to succeed, got status %d error %q", result.StatusCode, result.Error)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("Expected final status 200 after redirect, got %d", result.StatusCode)
	}
}

func TestProbeMeasuresElapsedTime(t *testing.T) {
	delay := 100 * time.Millisecond
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := NewProber(5 * time.Second).Probe(server.URL)

	if result.ResponseTime < delay.Seconds() {
		t.Errorf("Expected response time of at least %.3fs, got %.3fs", delay.Seconds(), result.ResponseTime)
	}
}
