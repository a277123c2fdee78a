package webhook

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DebounceConfig holds debouncer configuration.
type DebounceConfig struct {
	// Interval is the debounce window duration.
	// Requests for a tag within this window are coalesced.
	Interval time.Duration
	// MaxWait is the maximum time a tag stays pending.
	// Even if requests keep coming, revalidate after this time.
	MaxWait time.Duration
}

// DefaultDebounceConfig returns default debounce configuration.
func DefaultDebounceConfig() DebounceConfig {
	return DebounceConfig{
		Interval: 1 * time.Second,
		MaxWait:  5 * time.Second,
	}
}

// Revalidator drops cached content by tag.
type Revalidator interface {
	Revalidate(ctx context.Context, tags ...string) ([]string, error)
}

// pendingTag tracks a debounced tag.
type pendingTag struct {
	timer     *time.Timer
	firstSeen time.Time
	requests  int
}

// Debouncer coalesces bursts of revalidation requests. Notion emits several
// events for a single edit, and each one would otherwise flush the cache.
type Debouncer struct {
	target  Revalidator
	config  DebounceConfig
	logger  *slog.Logger
	pending map[string]*pendingTag
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped bool
}

// NewDebouncer creates a new revalidation debouncer.
func NewDebouncer(target Revalidator, config DebounceConfig, logger *slog.Logger) *Debouncer {
	if config.Interval <= 0 {
		config.Interval = DefaultDebounceConfig().Interval
	}
	if config.MaxWait <= 0 {
		config.MaxWait = DefaultDebounceConfig().MaxWait
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Debouncer{
		target:  target,
		config:  config,
		logger:  logger.With("component", "revalidation"),
		pending: make(map[string]*pendingTag),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Queue schedules tags for revalidation. A tag that is already pending has
// its timer reset, unless it has been waiting for MaxWait, in which case it
// is revalidated immediately.
func (d *Debouncer) Queue(tags ...string) {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	for _, tag := range tags {
		tag := tag
		if tag == "" {
			continue
		}

		if existing, ok := d.pending[tag]; ok {
			existing.requests++
			if now.Sub(existing.firstSeen) >= d.config.MaxWait {
				d.revalidateLocked(tag)
				continue
			}
			existing.timer.Reset(d.config.Interval)
			d.logger.Debug("debounced revalidation updated",
				"tag", tag,
				"requests", existing.requests,
				"wait_time", now.Sub(existing.firstSeen))
			continue
		}

		pt := &pendingTag{firstSeen: now, requests: 1}
		pt.timer = time.AfterFunc(d.config.Interval, func() {
			d.mu.Lock()
			d.revalidateLocked(tag)
			d.mu.Unlock()
		})
		d.pending[tag] = pt
		d.logger.Debug("debounced revalidation queued", "tag", tag)
	}
}

// revalidateLocked revalidates a pending tag. Must be called with lock held.
func (d *Debouncer) revalidateLocked(tag string) {
	pt, ok := d.pending[tag]
	if !ok {
		return
	}

	pt.timer.Stop()
	delete(d.pending, tag)

	d.wg.Add(1)
	go func(requests int) {
		defer d.wg.Done()
		cleared, err := d.target.Revalidate(d.ctx, tag)
		if err != nil {
			d.logger.Error("failed to revalidate tag",
				"error", err,
				"tag", tag)
			return
		}
		d.logger.Info("tag revalidated",
			"tag", tag,
			"requests", requests,
			"policies", cleared)
	}(pt.requests)
}

// Flush immediately revalidates all pending tags.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for tag := range d.pending {
		d.revalidateLocked(tag)
	}
}

// Stop flushes pending tags, waits for them to complete and rejects
// further requests.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for tag := range d.pending {
		d.revalidateLocked(tag)
	}
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
}

// PendingCount returns the number of pending tags.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Pending reports whether tag is waiting to be revalidated.
func (d *Debouncer) Pending(tag string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[tag]
	return ok
}
