package monitor

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"url-monitor-go/pkg/model"
)

// Prober performs single HTTP health checks. It holds no state beyond its
// configured timeout; every failure mode is captured in the PingResult.
type Prober struct {
	client  *http.Client
	timeout time.Duration
}

// NewProber creates a prober with the given total request timeout
func NewProber(timeout time.Duration) *Prober {
	return &Prober{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Allow up to 10 redirects
				if len(via) >= 10 {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
		timeout: timeout,
	}
}

// Probe issues one GET against the URL and classifies the outcome.
// Success means a response arrived with a status in [200, 400).
func (p *Prober) Probe(url string) model.PingResult {
	start := time.Now()
	result := model.PingResult{
		URL:       url,
		Timestamp: start,
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		result.ResponseTime = time.Since(start).Seconds()
		result.Error = err.Error()
		log.Printf("Error pinging %s: %v", url, err)
		return result
	}
	req.Header.Set("User-Agent", "URLMonitor/1.0")

	resp, err := p.client.Do(req)

	// Measure elapsed time the same way on every path
	result.ResponseTime = time.Since(start).Seconds()

	if err != nil {
		if isTimeout(err) {
			result.StatusCode = http.StatusRequestTimeout
			result.Error = "Request timeout"
			log.Printf("Timeout pinging %s after %.3fs", url, result.ResponseTime)
		} else {
			result.Error = err.Error()
			log.Printf("Error pinging %s: %v", url, err)
		}
		return result
	}
	defer resp.Body.Close()

	// Read a small portion of the body to ensure the connection round-trips,
	// but don't download everything
	buffer := make([]byte, 1024)
	resp.Body.Read(buffer)

	result.StatusCode = resp.StatusCode
	result.Success = resp.StatusCode >= 200 && resp.StatusCode < 400
	if !result.Success {
		result.Error = resp.Status
	}

	log.Printf("Pinged %s: %d (%.3fs)", url, resp.StatusCode, result.ResponseTime)
	return result
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
