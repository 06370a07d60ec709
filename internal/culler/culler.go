// Package culler finds bookmarks whose URLs no longer resolve.
package culler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/bmgr/internal/logging"
	"github.com/nikbrunner/bmgr/internal/model"
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
	Node       model.BookmarkNode
	Status     Status
	StatusCode int    // HTTP status code (0 if connection failed)
	Error      string // Error message for unreachable URLs
}

// ProgressFunc is called after each URL is checked.
type ProgressFunc func(completed, total int)

// Params configures a Checker.
type Params struct {
	Concurrency int           // defaults to 10
	Timeout     time.Duration // per request, defaults to 10s
	// ExcludeDomains lists hosts where a 404 likely means a private page.
	// Subdomains match too.
	ExcludeDomains []string
	OnProgress     ProgressFunc
	Client         *http.Client // optional
	Logger         logrus.FieldLogger
}

// Checker checks bookmark URLs concurrently.
type Checker struct {
	concurrency int
	client      *http.Client
	exclude     map[string]bool
	onProgress  ProgressFunc
	log         logrus.FieldLogger
}

// New creates a Checker.
func New(params Params) *Checker {
	c := &Checker{
		concurrency: params.Concurrency,
		client:      params.Client,
		exclude:     make(map[string]bool, len(params.ExcludeDomains)),
		onProgress:  params.OnProgress,
		log:         logging.OrDiscard(params.Logger).WithField("component", "culler"),
	}
	if c.concurrency <= 0 {
		c.concurrency = 10
	}
	if c.client == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		c.client = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}
	for _, domain := range params.ExcludeDomains {
		c.exclude[strings.ToLower(domain)] = true
	}
	return c
}

// Bookmarks returns every bookmark with an http(s) URL, in tree order.
func Bookmarks(nodes model.NodeMap) []model.BookmarkNode {
	var out []model.BookmarkNode
	var walk func(id string)
	walk = func(id string) {
		n, ok := nodes[id]
		if !ok {
			return
		}
		if !n.IsFolder() {
			if strings.HasPrefix(n.URL, "http://") || strings.HasPrefix(n.URL, "https://") {
				out = append(out, n)
			}
			return
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(model.RootID)
	return out
}

// Check checks all bookmark URLs and returns one result per bookmark, in
// input order. Cancelling ctx marks the remaining bookmarks unreachable.
func (c *Checker) Check(ctx context.Context, bookmarks []model.BookmarkNode) []Result {
	if len(bookmarks) == 0 {
		return nil
	}

	results := make([]Result, len(bookmarks))
	jobs := make(chan int, len(bookmarks))
	var wg sync.WaitGroup

	var progressMu sync.Mutex
	completed := 0

	for w := 0; w < min(c.concurrency, len(bookmarks)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = c.checkURL(ctx, bookmarks[idx])

				if c.onProgress != nil {
					progressMu.Lock()
					completed++
					c.onProgress(completed, len(bookmarks))
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

// DeadIDs returns the IDs of the dead results.
func DeadIDs(results []Result) []string {
	var ids []string
	for _, r := range results {
		if r.Status == Dead {
			ids = append(ids, r.Node.ID)
		}
	}
	return ids
}

func (c *Checker) checkURL(ctx context.Context, node model.BookmarkNode) Result {
	result := Result{Node: node}

	// HEAD first; some servers only answer GET.
	resp, err := c.do(ctx, http.MethodHead, node.URL)
	if err != nil || resp.StatusCode == http.StatusMethodNotAllowed {
		if resp != nil {
			resp.Body.Close()
		}
		resp, err = c.do(ctx, http.MethodGet, node.URL)
		if err != nil {
			result.Status = Unreachable
			result.Error = normalizeError(err)
			c.log.WithField("url", node.URL).WithError(err).Debug("unreachable")
			return result
		}
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if c.isExcludedDomain(node.URL) {
			result.Status = Unreachable
			result.Error = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		// 403, 5xx and friends may be temporary or need a login.
		result.Status = Unreachable
		result.Error = http.StatusText(resp.StatusCode)
	}
	return result
}

func (c *Checker) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

// isExcludedDomain reports whether the URL's host or a parent domain is
// excluded.
func (c *Checker) isExcludedDomain(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
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

// normalizeError simplifies verbose error messages into readable categories.
func normalizeError(err error) string {
	if errors.Is(err, context.Canceled) {
		return "Cancelled"
	}
	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return err.Error()
	}
}
