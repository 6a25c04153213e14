package culler

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nikbrunner/bmark/internal/logger"
	"github.com/nikbrunner/bmark/internal/model"
)

// Status represents the health status of a URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx response
	Dead                      // 404 or 410 Gone
	Unreachable               // timeout, DNS failure, connection refused, etc.
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	default:
		return "unreachable"
	}
}

// Result holds the check result for a single bookmark.
type Result struct {
	Bookmark   model.Bookmark
	Status     Status
	StatusCode int    // HTTP status code (0 if connection failed)
	Error      string // Error message for unreachable URLs
}

// ProgressFunc is called after each URL is checked.
// completed is the number of URLs checked so far, total is the total count.
type ProgressFunc func(completed, total int)

// Options tune a Checker.
type Options struct {
	Concurrency    int
	Timeout        time.Duration
	ExcludeDomains []string // 404s on these hosts count as possibly private
}

// Checker probes bookmark URLs.
type Checker struct {
	http        *resty.Client
	concurrency int
	exclude     map[string]bool
}

// New creates a Checker.
func New(opts Options, log logger.Logger) *Checker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 10
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}

	exclude := make(map[string]bool)
	for _, domain := range opts.ExcludeDomains {
		exclude[strings.ToLower(strings.TrimSpace(domain))] = true
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetLogger(log)

	return &Checker{http: client, concurrency: opts.Concurrency, exclude: exclude}
}

// Check probes every bookmark concurrently. Results keep the input order.
func (c *Checker) Check(ctx context.Context, bookmarks []model.Bookmark, onProgress ProgressFunc) []Result {
	if len(bookmarks) == 0 {
		return nil
	}

	// net/http logs protocol noise through the standard logger.
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	results := make([]Result, len(bookmarks))
	jobs := make(chan int, len(bookmarks))
	var wg sync.WaitGroup

	var progressMu sync.Mutex
	completed := 0

	for w := 0; w < c.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = c.checkURL(ctx, bookmarks[idx])

				if onProgress != nil {
					progressMu.Lock()
					completed++
					onProgress(completed, len(bookmarks))
					progressMu.Unlock()
				}
			}
		}()
	}

	for i := range bookmarks {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// checkURL checks a single URL and returns the result.
func (c *Checker) checkURL(ctx context.Context, bookmark model.Bookmark) Result {
	result := Result{Bookmark: bookmark}

	if ctx.Err() != nil {
		result.Status = Unreachable
		result.Error = "Cancelled"
		return result
	}

	// HEAD first; fall back to GET for servers that reject or fail it.
	code, err := c.probe(ctx, http.MethodHead, bookmark.URL)
	if err != nil || code == http.StatusMethodNotAllowed || code == http.StatusNotImplemented {
		code, err = c.probe(ctx, http.MethodGet, bookmark.URL)
	}
	if err != nil {
		result.Status = Unreachable
		result.Error = normalizeError(err.Error())
		return result
	}

	result.StatusCode = code

	switch {
	case code >= 200 && code < 400:
		result.Status = Healthy
	case code == http.StatusNotFound || code == http.StatusGone:
		if c.isExcludedDomain(bookmark.URL) {
			result.Status = Unreachable
			result.Error = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		// 5xx, 403 and friends may be temporary or need auth.
		result.Status = Unreachable
		result.Error = http.StatusText(code)
	}

	return result
}

func (c *Checker) probe(ctx context.Context, method, rawURL string) (int, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Execute(method, rawURL)
	if resp != nil && resp.RawBody() != nil {
		_ = resp.RawBody().Close()
	}
	if err != nil {
		return 0, err
	}
	return resp.StatusCode(), nil
}

// isExcludedDomain checks the URL's host and its parent domains against
// the exclude list.
func (c *Checker) isExcludedDomain(rawURL string) bool {
	host, err := model.HostOf(rawURL)
	if err != nil {
		return false
	}
	if c.exclude[host] {
		return true
	}
	for domain := range c.exclude {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// DeadIDs returns the ids of bookmarks whose URL is gone.
func DeadIDs(results []Result) []string {
	var ids []string
	for _, r := range results {
		if r.Status == Dead {
			ids = append(ids, r.Bookmark.ID)
		}
	}
	return ids
}

// Count tallies results per status.
func Count(results []Result) map[Status]int {
	counts := make(map[Status]int, 3)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// normalizeError simplifies verbose error messages into readable categories.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "context canceled"):
		return "Cancelled"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return errStr
	}
}
