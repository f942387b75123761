package monitor

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"url-monitor-go/internal/store"
	"url-monitor-go/pkg/model"
)

// Alerter is the external collaborator invoked for every failed probe.
// Implementations must swallow their own delivery errors; the monitoring
// loop never checks them.
type Alerter interface {
	NotifyFailure(result model.PingResult, ownerID int64)
}

// Scheduler owns the periodic monitoring cycle. It fans probes out
// concurrently over every registered (owner, url) pair, persists results
// and raises alerts for failures.
type Scheduler struct {
	store     store.Store
	probe     func(url string) model.PingResult
	alerter   Alerter
	interval  time.Duration
	timeout   time.Duration
	retention time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}

	// touched only by the loop goroutine
	nextPrune time.Time
}

// ownedResult ties a probe outcome back to the owner whose registration
// produced it.
type ownedResult struct {
	ownerID int64
	result  model.PingResult
}

// NewScheduler creates a scheduler. Interval and timeout are in seconds,
// retention in days; validity is enforced by the config layer.
func NewScheduler(st store.Store, alerter Alerter, pingInterval, requestTimeout, retentionDays int) *Scheduler {
	timeout := time.Duration(requestTimeout) * time.Second
	return &Scheduler{
		store:     st,
		probe:     NewProber(timeout).Probe,
		alerter:   alerter,
		interval:  time.Duration(pingInterval) * time.Second,
		timeout:   timeout,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Start launches the monitoring loop. Calling it while the loop is already
// running is a logged no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		log.Printf("Monitoring is already running")
		return
	}

	s.running = true
	s.stop = make(chan struct{})
	go s.run(s.stop)
}

// Stop requests the loop to halt. The in-flight cycle is allowed to finish;
// only the next iteration is suppressed.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	close(s.stop)
	log.Printf("Monitoring stop requested")
}

// IsRunning reports whether the monitoring loop is active
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) run(stop chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			// A panic escaping the cycle structure is fatal for the loop,
			// not for the process. Status() surfaces the halt.
			log.Printf("ERROR: monitoring loop stopped by panic: %v", r)
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}
	}()

	log.Printf("Starting URL monitoring with %s interval", s.interval)
	s.nextPrune = time.Now().Add(24 * time.Hour)

	for {
		select {
		case <-stop:
			log.Printf("URL monitoring stopped")
			return
		default:
		}

		cycleStart := time.Now()
		s.runCycle()
		s.maybePrune()

		elapsed := time.Since(cycleStart)
		sleep := s.sleepFor(elapsed)
		if sleep == 0 {
			log.Printf("Ping cycle took %.1fs, longer than interval of %s", elapsed.Seconds(), s.interval)
			continue
		}

		timer := time.NewTimer(sleep)
		select {
		case <-stop:
			timer.Stop()
			log.Printf("URL monitoring stopped")
			return
		case <-timer.C:
		}
	}
}

// sleepFor computes how long to wait after a cycle so cycles keep the
// configured cadence. An overrunning cycle gets no sleep; the next cycle
// starts immediately, never skipped or coalesced.
func (s *Scheduler) sleepFor(elapsed time.Duration) time.Duration {
	if elapsed >= s.interval {
		return 0
	}
	return s.interval - elapsed
}

// runCycle probes every registered (owner, url) pair once
func (s *Scheduler) runCycle() {
	entries, err := s.store.GetAllURLs()
	if err != nil {
		log.Printf("Error fetching urls for ping cycle: %v", err)
		return
	}

	if len(entries) == 0 {
		return
	}

	results := s.fanOut(entries)
	for _, r := range results {
		if err := s.persist(r); err != nil {
			// One failed write must not block the other URLs
			log.Printf("Error persisting result for %s (owner %d): %v", r.result.URL, r.ownerID, err)
		}
	}

	log.Printf("Completed ping cycle for %d URLs", len(results))
}

// fanOut probes all entries concurrently, one goroutine per (owner, url)
// pair, and collects the results. A panicking probe is logged and excluded
// without disturbing its siblings.
func (s *Scheduler) fanOut(entries []model.MonitoredURL) []ownedResult {
	results := make(chan ownedResult, len(entries))
	var wg sync.WaitGroup

	for _, entry := range entries {
		wg.Add(1)
		go func(e model.MonitoredURL) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Ping task for %s failed: %v", e.URL, r)
				}
			}()
			results <- ownedResult{ownerID: e.OwnerID, result: s.probe(e.URL)}
		}(entry)
	}

	wg.Wait()
	close(results)

	collected := make([]ownedResult, 0, len(entries))
	for r := range results {
		collected = append(collected, r)
	}
	return collected
}

// persist writes one result back to the store and alerts on failure
func (s *Scheduler) persist(r ownedResult) error {
	err := s.store.UpdateStatus(r.ownerID, r.result.URL, r.result.StatusCode, r.result.ResponseTime, r.result.Success)
	if err != nil {
		err = fmt.Errorf("failed to update status for %s: %w", r.result.URL, err)
	}

	if !r.result.Success && s.alerter != nil {
		s.alerter.NotifyFailure(r.result, r.ownerID)
	}
	return err
}

func (s *Scheduler) maybePrune() {
	if time.Now().Before(s.nextPrune) {
		return
	}
	s.nextPrune = time.Now().Add(24 * time.Hour)

	pruned, err := s.store.PruneCheckRecords(time.Now().Add(-s.retention))
	if err != nil {
		log.Printf("Error pruning check records: %v", err)
		return
	}
	if pruned > 0 {
		log.Printf("Pruned %d check records older than %s", pruned, s.retention)
	}
}

// PingOwnerURLs probes one owner's URLs immediately, outside the periodic
// cadence, with the same fan-out, persistence and alerting as the loop.
// It is safe to call while a periodic cycle is in flight; overlapping
// writes to the same (owner, url) key are last-write-wins.
func (s *Scheduler) PingOwnerURLs(ownerID int64) (map[string]model.PingResult, error) {
	entries, err := s.store.GetURLs(ownerID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]model.PingResult, len(entries))
	if len(entries) == 0 {
		return out, nil
	}

	var errs []error
	for _, r := range s.fanOut(entries) {
		out[r.result.URL] = r.result
		if err := s.persist(r); err != nil {
			log.Printf("Error persisting result for %s (owner %d): %v", r.result.URL, ownerID, err)
			errs = append(errs, err)
		}
	}

	log.Printf("Completed ping cycle for %d URLs for owner %d", len(out), ownerID)
	return out, errors.Join(errs...)
}

// PingOne probes a single URL without touching the store. It shares the
// prober with the scheduled checks, so classification and timeout behavior
// are identical.
func (s *Scheduler) PingOne(url string) model.PingResult {
	return s.probe(url)
}

// Status reports the scheduler's current state
func (s *Scheduler) Status() model.MonitoringStatus {
	total := 0
	if entries, err := s.store.GetAllURLs(); err == nil {
		total = len(entries)
	} else {
		log.Printf("Error counting urls for status: %v", err)
	}

	return model.MonitoringStatus{
		IsRunning:      s.IsRunning(),
		TotalURLs:      total,
		PingInterval:   int(s.interval / time.Second),
		RequestTimeout: int(s.timeout / time.Second),
	}
}
