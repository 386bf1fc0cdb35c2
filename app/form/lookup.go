package form

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/orochi-admin/models"
)

// SearchResult is one row returned by a search-by-text lookup
type SearchResult struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// SearchClient performs the remote lookup behind a search field
type SearchClient interface {
	Search(ctx context.Context, endpoint, text string) ([]SearchResult, error)
}

// LookupResult is delivered to the owner of a lookup when a call succeeds
type LookupResult struct {
	Text    string
	Results []SearchResult
	gen     uint64
}

// IDs returns the result ids in order
func (r LookupResult) IDs() []string {
	ids := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		ids = append(ids, res.ID)
	}
	return ids
}

// Lookup is the debounced search-as-you-type helper owned by one search field
type Lookup struct {
	param     models.ParameterDefinition
	client    SearchClient
	debouncer *Debouncer
	timeout   time.Duration
	logger    *log.Logger
	onResult  func(LookupResult)

	mu       sync.Mutex
	gen      uint64
	cancelFn context.CancelFunc
	closed   bool
	inflight sync.WaitGroup
}

// LookupOptions configures a Lookup
type LookupOptions struct {
	Debounce time.Duration
	Timeout  time.Duration
	Clock    Clock
	Logger   *log.Logger
}

// NewLookup creates a lookup for a search parameter. onResult receives successful,
// still-current results; it should check Current before writing.
func NewLookup(param models.ParameterDefinition, client SearchClient, opts LookupOptions, onResult func(LookupResult)) *Lookup {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Lookup{
		param:     param,
		client:    client,
		debouncer: NewDebouncer(opts.Debounce, opts.Clock),
		timeout:   opts.Timeout,
		logger:    opts.Logger,
		onResult:  onResult,
	}
}

// Schedule records a keystroke. Only the text of the last call in a burst is searched,
// and only when it is not blank.
func (l *Lookup) Schedule(text string) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.gen++
	gen := l.gen
	l.mu.Unlock()

	l.debouncer.Schedule(func() { l.run(gen, text) })
}

// Cancel stops a pending timer and abandons any call in flight
func (l *Lookup) Cancel() {
	l.debouncer.Cancel()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	if l.cancelFn != nil {
		l.cancelFn()
		l.cancelFn = nil
	}
}

// Close cancels the lookup for good and waits for a call in flight to return
func (l *Lookup) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	l.Cancel()
	l.inflight.Wait()
}

// Current reports whether r belongs to the latest scheduled text and the lookup is still live
func (l *Lookup) Current(r LookupResult) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.closed && r.gen == l.gen
}

// Pending reports whether a call is waiting for the debounce window
func (l *Lookup) Pending() bool {
	return l.debouncer.Pending()
}

func (l *Lookup) run(gen uint64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	l.mu.Lock()
	if l.closed || gen != l.gen {
		l.mu.Unlock()
		return
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if l.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), l.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	l.cancelFn = cancel
	l.inflight.Add(1)
	l.mu.Unlock()

	defer l.inflight.Done()
	results, err := l.client.Search(ctx, l.param.APIEndpoint, text)
	cancel()

	l.mu.Lock()
	stale := l.closed || gen != l.gen
	if !stale {
		l.cancelFn = nil
	}
	l.mu.Unlock()

	if err != nil {
		if stale && errors.Is(err, context.Canceled) {
			return
		}
		l.logger.Printf("form: lookup for field %q failed: %v", l.param.Name, err)
		return
	}
	if stale {
		return
	}
	l.onResult(LookupResult{Text: text, Results: results, gen: gen})
}
