package debounce

import (
	"sync"
	"time"
)

// Request identifies one on-screen storefront message to re-render.
type Request struct {
	ChatID    int64
	UserID    int64
	MessageID int
}

type Options struct {
	Delay   time.Duration
	OnFlush func(Request)
}

// Debouncer coalesces bursts of render requests for the same message so a
// run of quick +/- taps ends in a single edit.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	onFlush func(Request)
	pending map[Request]*entry
	stopped bool
}

type entry struct {
	timer *time.Timer
}

func New(opts Options) *Debouncer {
	delay := opts.Delay
	if delay <= 0 {
		delay = 400 * time.Millisecond
	}

	return &Debouncer{
		delay:   delay,
		onFlush: opts.OnFlush,
		pending: make(map[Request]*entry),
	}
}

// Trigger schedules a flush for req, pushing back any flush already waiting.
func (d *Debouncer) Trigger(req Request) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if e, ok := d.pending[req]; ok {
		e.timer.Stop()
	}
	e := &entry{}
	e.timer = time.AfterFunc(d.delay, func() {
		d.flush(req, e)
	})
	d.pending[req] = e
}

func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.pending)
}

// Stop cancels every waiting flush. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for req, e := range d.pending {
		e.timer.Stop()
		delete(d.pending, req)
	}
}

// flush runs only for the latest entry of req; a timer that fired while
// being replaced finds a different entry and does nothing.
func (d *Debouncer) flush(req Request, e *entry) {
	d.mu.Lock()
	if cur, ok := d.pending[req]; !ok || cur != e || d.stopped {
		d.mu.Unlock()
		return
	}
	delete(d.pending, req)
	onFlush := d.onFlush
	d.mu.Unlock()

	if onFlush != nil {
		onFlush(req)
	}
}
