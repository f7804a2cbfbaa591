package modem

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Dispatcher routes unsolicited lines to the handlers registered for their
// prefix. Several ports may feed the same Dispatcher.
type Dispatcher struct {
	log *slog.Logger

	mu       sync.Mutex
	handlers map[string]func(line string)
	waiters  map[*waiter]struct{}
}

type waiter struct {
	prefix string
	ch     chan string
}

// NewDispatcher returns an empty Dispatcher. A nil logger uses slog.Default.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		log:      logger,
		handlers: make(map[string]func(string)),
		waiters:  make(map[*waiter]struct{}),
	}
}

// AddIndication registers h for every line starting with prefix, replacing
// a previous handler for the same prefix.
func (d *Dispatcher) AddIndication(prefix string, h func(line string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[prefix] = h
}

// RemoveIndication drops the handler registered for prefix.
func (d *Dispatcher) RemoveIndication(prefix string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, prefix)
}

// Dispatch hands line to the matching handlers and waiters. It reports
// whether anything consumed the line.
func (d *Dispatcher) Dispatch(line string) bool {
	var matched []func(string)

	d.mu.Lock()
	for prefix, h := range d.handlers {
		if strings.HasPrefix(line, prefix) {
			matched = append(matched, h)
		}
	}
	woken := false
	for w := range d.waiters {
		if strings.HasPrefix(line, w.prefix) {
			select {
			case w.ch <- line:
			default:
			}
			delete(d.waiters, w)
			woken = true
		}
	}
	d.mu.Unlock()

	// Handlers run unlocked so they may add or remove indications.
	for _, h := range matched {
		h(line)
	}
	if len(matched) == 0 && !woken {
		d.log.Debug("Unhandled unsolicited line", "line", line)
		return false
	}
	return true
}

// WaitFor blocks until a line starting with prefix is dispatched or ctx is
// done, and returns that line.
func (d *Dispatcher) WaitFor(ctx context.Context, prefix string) (string, error) {
	w := &waiter{prefix: prefix, ch: make(chan string, 1)}

	d.mu.Lock()
	d.waiters[w] = struct{}{}
	d.mu.Unlock()

	select {
	case line := <-w.ch:
		return line, nil
	case <-ctx.Done():
		d.mu.Lock()
		delete(d.waiters, w)
		d.mu.Unlock()
		return "", ctx.Err()
	}
}

// Run dispatches every line received from src until ctx is done or src is
// closed.
func (d *Dispatcher) Run(ctx context.Context, src <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-src:
			if !ok {
				return nil
			}
			d.Dispatch(line)
		}
	}
}
