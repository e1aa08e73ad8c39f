// Package watcher notices when a local dataset file changes so the viewer
// can reload it. It uses fsnotify on the file's directory and falls back to
// polling when notifications are unavailable.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vanderheijden86/packzoom/pkg/debug"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the stat interval in polling mode.
const DefaultPollInterval = 2 * time.Second

// EnvForcePoll forces polling mode when set to a true value.
const EnvForcePoll = "PZ_FORCE_POLL"

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the window that coalesces bursts of events.
func WithDebounceDuration(d time.Duration) Option { return func(w *Watcher) { w.debounce = d } }

// WithPollInterval sets the stat interval used in polling mode.
func WithPollInterval(d time.Duration) Option { return func(w *Watcher) { w.pollInterval = d } }

// WithOnChange sets a callback run on every debounced change.
func WithOnChange(fn func()) Option { return func(w *Watcher) { w.onChange = fn } }

// WithOnError sets the callback for watch and reload errors.
func WithOnError(fn func(error)) Option { return func(w *Watcher) { w.onError = fn } }

// WithForcePoll skips fsnotify.
func WithForcePoll(force bool) Option { return func(w *Watcher) { w.forcePoll = force } }

// stamp is what polling compares between ticks.
type stamp struct {
	mtime time.Time
	size  int64
}

func stampOf(info fs.FileInfo) stamp { return stamp{info.ModTime(), info.Size()} }

func (s stamp) exists() bool { return !s.mtime.IsZero() }

// Watcher monitors one file.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	onChange     func()
	onError      func(error)
	forcePoll    bool

	mu        sync.RWMutex
	started   bool
	polling   bool
	last      stamp
	cancel    context.CancelFunc
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	changed   chan struct{}
}

// New creates a watcher for path. Nothing is watched until Start.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		onChange: func() {},
		onError:  func(error) {},
		changed:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.pollInterval <= 0 {
		w.pollInterval = DefaultPollInterval
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start begins watching. A file that does not exist yet is fine: its
// creation counts as a change.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}

	w.last = stamp{}
	if info, err := os.Stat(w.path); err == nil {
		w.last = stampOf(info)
	} else if errors.Is(err, fs.ErrPermission) {
		return ErrPermission
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.polling = w.forcePoll || envBool(EnvForcePoll)
	if !w.polling {
		w.fsw = w.openNotify()
		w.polling = w.fsw == nil
	}
	if w.polling {
		go w.poll(ctx)
	} else {
		go w.listen(ctx, w.fsw)
	}
	debug.Log("watching %s (polling=%v)", w.path, w.polling)

	w.started = true
	return nil
}

// openNotify watches the parent directory, since editors and atomic writers
// replace the file rather than write it in place.
func (w *Watcher) openNotify() *fsnotify.Watcher {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return nil
	}
	return fsw
}

// Stop stops watching. The Changed channel stays open.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.cancel()
	if w.fsw != nil {
		w.fsw.Close()
		w.fsw = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// Run starts the watcher and calls reload after every change until ctx is
// done. reload errors go to the error callback; watching continues.
func (w *Watcher) Run(ctx context.Context, reload func() error) error {
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.changed:
			if err := reload(); err != nil {
				w.onError(err)
			}
		}
	}
}

// IsPolling reports whether the watcher fell back to polling.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted reports whether the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed receives once per debounced change. Pending signals coalesce.
func (w *Watcher) Changed() <-chan struct{} { return w.changed }

// Path returns the absolute watched path.
func (w *Watcher) Path() string { return w.path }

// PollInterval returns the polling-mode interval.
func (w *Watcher) PollInterval() time.Duration { return w.pollInterval }

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func (w *Watcher) listen(ctx context.Context, fsw *fsnotify.Watcher) {
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Remove) {
				w.onError(ErrFileRemoved)
			} else if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.debouncer.Trigger(w.notify)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check stats the file once and reports removal or a changed stamp.
func (w *Watcher) check() {
	var cur stamp
	info, err := os.Stat(w.path)
	if err == nil {
		cur = stampOf(info)
	}

	w.mu.Lock()
	prev := w.last
	w.last = cur
	w.mu.Unlock()

	switch {
	case errors.Is(err, fs.ErrNotExist):
		if prev.exists() {
			w.onError(ErrFileRemoved)
		}
	case errors.Is(err, fs.ErrPermission):
		w.onError(ErrPermission)
	case err != nil:
		w.onError(err)
	case cur != prev:
		w.debouncer.Trigger(w.notify)
	}
}

func (w *Watcher) notify() {
	if !w.IsStarted() {
		return
	}
	w.onChange()
	select {
	case w.changed <- struct{}{}:
	default:
	}
}
