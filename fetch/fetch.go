// Package fetch downloads tiles concurrently, retrying failures, without
// letting one tile's failure abort the batch.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultConcurrency = 10
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = time.Second
	DefaultTimeout     = 20 * time.Second
)

type Options struct {
	// Concurrency is the maximum number of requests in flight
	Concurrency int
	// MaxAttempts per task, including the first
	MaxAttempts int
	RetryDelay  time.Duration
	// Timeout for a single attempt
	Timeout time.Duration
	Headers http.Header
	// OnComplete is called once per task after it succeeds or runs out of
	// attempts. It may be called from several goroutines at once.
	OnComplete func(*Task)
}

func DefaultOptions() Options {
	return Options{
		Concurrency: DefaultConcurrency,
		MaxAttempts: DefaultMaxAttempts,
		RetryDelay:  DefaultRetryDelay,
		Timeout:     DefaultTimeout,
	}
}

type Result struct {
	Total     int
	Succeeded int
	Failed    int
}

// StatusError is returned for a response outside of the 2xx range
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.StatusCode)
}

type Fetcher struct {
	client *http.Client
	opts   Options
	logger *slog.Logger
}

// New creates a Fetcher. Zero values in opts are replaced by defaults.
func New(client *http.Client, opts Options, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{
		client: client,
		opts:   opts,
		logger: logger.With("component", "fetcher"),
	}
}

// Fetch downloads every task and returns once all of them have either
// succeeded or run out of attempts. Failures are recorded on the task.
func (f *Fetcher) Fetch(ctx context.Context, tasks []*Task) Result {
	var g errgroup.Group
	g.SetLimit(f.opts.Concurrency)

	var succeeded atomic.Int64
	start := time.Now()

	for _, task := range tasks {
		g.Go(func() error {
			f.fetchTask(ctx, task)
			if task.Succeeded() {
				succeeded.Add(1)
			}
			if f.opts.OnComplete != nil {
				f.opts.OnComplete(task)
			}
			return nil
		})
	}
	g.Wait()

	result := Result{
		Total:     len(tasks),
		Succeeded: int(succeeded.Load()),
	}
	result.Failed = result.Total - result.Succeeded

	f.logger.Debug("fetch completed",
		"total", result.Total,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result
}

func (f *Fetcher) fetchTask(ctx context.Context, task *Task) {
	var lastErr error
	task.Err = nil

	for attempt := 1; attempt <= f.opts.MaxAttempts; attempt++ {
		if attempt > 1 && !wait(ctx, f.opts.RetryDelay) {
			lastErr = ctx.Err()
			break
		}

		task.Attempts = attempt
		data, err := f.get(ctx, task.URL)
		if err == nil {
			err = task.store(data)
		}
		if err == nil {
			return
		}

		lastErr = err
		f.logger.Debug("tile attempt failed",
			"tile", task.Tile.String(),
			"attempt", attempt,
			"error", err,
		)
	}

	task.discard()
	task.Err = fmt.Errorf("fetch %v: %d attempts failed: %w", &task.Tile, task.Attempts, lastErr)
	f.logger.Warn("tile failed", "tile", task.Tile.String(), "url", task.URL, "error", lastErr)
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for key, values := range f.opts.Headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get tile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// wait returns false if ctx is done before delay elapses
func wait(ctx context.Context, delay time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}
