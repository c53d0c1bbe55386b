package highlight

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultDebounce is the trailing delay used when none is configured.
const DefaultDebounce = 800 * time.Millisecond

// WriteFunc persists one coalesced update.
type WriteFunc func(ctx context.Context) error

// Debouncer coalesces rapid writes per key into one trailing write. Each key
// has a single pending slot: scheduling again resets the timer and the
// replaced write resolves with ErrSuperseded without running. Writes for the
// same key never run concurrently.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*task
	locks   map[string]*keyLock
	stopped bool
	running sync.WaitGroup
}

type task struct {
	fn      WriteFunc
	timer   *time.Timer
	done    chan error
	claimed bool
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewDebouncer creates a debouncer with the given trailing delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*task),
		locks:   make(map[string]*keyLock),
	}
}

// Schedule replaces the pending write for key with fn. The returned channel
// receives exactly one value: fn's result, ErrSuperseded or ErrCancelled.
func (d *Debouncer) Schedule(key string, fn WriteFunc) <-chan error {
	t := &task{fn: fn, done: make(chan error, 1)}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		t.done <- ErrCancelled
		return t.done
	}
	if prev := d.pending[key]; prev != nil && !prev.claimed {
		prev.claimed = true
		prev.timer.Stop()
		prev.done <- ErrSuperseded
	}
	d.pending[key] = t
	t.timer = time.AfterFunc(d.delay, func() { d.fire(key, t) })
	return t.done
}

func (d *Debouncer) fire(key string, t *task) {
	d.mu.Lock()
	if t.claimed {
		d.mu.Unlock()
		return
	}
	t.claimed = true
	if d.pending[key] == t {
		delete(d.pending, key)
	}
	d.running.Add(1)
	d.mu.Unlock()

	d.run(context.Background(), key, t)
}

func (d *Debouncer) run(ctx context.Context, key string, t *task) error {
	defer d.running.Done()

	kl := d.acquire(key)
	err := t.fn(ctx)
	d.release(key, kl)

	t.done <- err
	return err
}

func (d *Debouncer) acquire(key string) *keyLock {
	d.mu.Lock()
	kl := d.locks[key]
	if kl == nil {
		kl = &keyLock{}
		d.locks[key] = kl
	}
	kl.refs++
	d.mu.Unlock()

	kl.mu.Lock()
	return kl
}

func (d *Debouncer) release(key string, kl *keyLock) {
	kl.mu.Unlock()

	d.mu.Lock()
	kl.refs--
	if kl.refs == 0 {
		delete(d.locks, key)
	}
	d.mu.Unlock()
}

// Cancel drops the pending write for key, resolving it with ErrSuperseded.
// It reports whether a write was pending.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.pending[key]
	if t == nil || t.claimed {
		return false
	}
	t.claimed = true
	t.timer.Stop()
	t.done <- ErrSuperseded
	delete(d.pending, key)
	return true
}

// Pending reports whether a write for key is waiting on its timer.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Flush runs every pending write immediately and waits for them, along with
// writes already in flight. It returns the joined errors of the writes it
// started, or ctx's error if ctx ends first.
func (d *Debouncer) Flush(ctx context.Context) error {
	d.mu.Lock()
	claimed := make(map[string]*task, len(d.pending))
	for key, t := range d.pending {
		if t.claimed {
			continue
		}
		t.claimed = true
		t.timer.Stop()
		claimed[key] = t
	}
	clear(d.pending)
	d.running.Add(len(claimed))
	d.mu.Unlock()

	var (
		errMu sync.Mutex
		errs  []error
	)
	for key, t := range claimed {
		key, t := key, t
		go func() {
			if err := d.run(ctx, key, t); err != nil {
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		d.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		errMu.Lock()
		defer errMu.Unlock()
		return errors.Join(errs...)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels every pending write and rejects new ones. Writes already
// running are left to finish.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, t := range d.pending {
		if !t.claimed {
			t.claimed = true
			t.timer.Stop()
			t.done <- ErrCancelled
		}
		delete(d.pending, key)
	}
}
