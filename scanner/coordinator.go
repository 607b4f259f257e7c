package scanner

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxInFlight caps simultaneous in-flight probes per scan. The limit
// keeps a full-range scan from exhausting local ephemeral ports and file
// descriptors, and from hitting the target with one giant connection burst.
const DefaultMaxInFlight = 100

// Coordinator drives one scan invocation: it validates the range, resolves
// the target once, fans probes out under a concurrency cap and aggregates
// the results deterministically. A Coordinator owns no cross-scan state;
// each Start call uses an independent accumulator.
type Coordinator struct {
	// Timeout bounds each individual connect attempt.
	Timeout time.Duration

	// MaxInFlight caps concurrently running probes. Zero means
	// DefaultMaxInFlight.
	MaxInFlight int64

	// Services names open ports.
	Services *Directory

	// OnProgress, when set, is invoked exactly once per completed probe,
	// including error outcomes. Invocations come from probe goroutines and
	// arrive in no particular order; only the count is meaningful.
	OnProgress func()

	// Probe and Resolve default to the real implementations. Tests swap in
	// simulated ones.
	Probe   ProbeFunc
	Resolve ResolveFunc
}

// New returns a Coordinator with default timeout and concurrency settings.
func New(services *Directory) *Coordinator {
	return &Coordinator{
		Timeout:     DefaultTimeout,
		MaxInFlight: DefaultMaxInFlight,
		Services:    services,
	}
}

// Start scans every port in r on host and returns the rendered report.
// Validation and resolution failures surface before any probe is issued,
// as ErrInvalidRange and ErrInvalidHost respectively.
//
// Cancelling ctx stops the submission of new probes; in-flight probes run
// to completion and Start returns the context error.
func (c *Coordinator) Start(ctx context.Context, host string, r PortRange) (Report, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	resolve := c.Resolve
	if resolve == nil {
		resolve = ResolveTarget
	}
	target, err := resolve(ctx, host)
	if err != nil {
		return nil, err
	}

	probe := c.Probe
	if probe == nil {
		timeout := c.Timeout
		services := c.Services
		probe = func(ctx context.Context, target Target, port uint16) ProbeResult {
			return Probe(ctx, target, port, timeout, services)
		}
	}

	maxInFlight := c.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}

	total := r.Count()
	// Buffered to the full scan size so probe goroutines never block on the
	// collector; the channel is the sole shared accumulator.
	results := make(chan ProbeResult, total)
	sem := semaphore.NewWeighted(maxInFlight)

	var wg sync.WaitGroup
	launched := 0
	for port := int(r.Start); port <= int(r.End); port++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		launched++
		wg.Add(1)
		go func(p uint16) {
			defer wg.Done()
			defer sem.Release(1)
			results <- probe(ctx, target, p)
			if c.OnProgress != nil {
				c.OnProgress()
			}
		}(uint16(port))
	}

	wg.Wait()
	close(results)

	if launched < total {
		// Cancelled before every port was submitted; a partial scan is
		// never reported as done.
		return nil, ctx.Err()
	}

	collected := make([]ProbeResult, 0, total)
	for res := range results {
		collected = append(collected, res)
	}
	return BuildReport(collected), nil
}
