package modem_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"i4.energy/across/mmplugins/modem"
)

func TestDispatcher(t *testing.T) {
	t.Run("Routes lines by prefix", func(t *testing.T) {
		d := modem.NewDispatcher(nil)

		var mu sync.Mutex
		var calls []string
		d.AddIndication("+CLCC:", func(line string) {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, line)
		})

		if !d.Dispatch("+CLCC: 1,0,0,0,0") {
			t.Error("expected +CLCC: line to be handled")
		}
		if d.Dispatch("RING") {
			t.Error("expected RING to be unhandled")
		}

		d.RemoveIndication("+CLCC:")
		if d.Dispatch("+CLCC: 1,0,3,0,0") {
			t.Error("expected removed handler to stay silent")
		}

		mu.Lock()
		defer mu.Unlock()
		if len(calls) != 1 || calls[0] != "+CLCC: 1,0,0,0,0" {
			t.Errorf("unexpected handler calls: %v", calls)
		}
	})

	t.Run("Handlers may unregister themselves", func(t *testing.T) {
		d := modem.NewDispatcher(nil)
		d.AddIndication("VOICE CALL:", func(string) {
			d.RemoveIndication("VOICE CALL:")
		})
		d.Dispatch("VOICE CALL: END")
		if d.Dispatch("VOICE CALL: BEGIN") {
			t.Error("expected handler to be gone")
		}
	})

	t.Run("WaitFor returns the first matching line", func(t *testing.T) {
		d := modem.NewDispatcher(nil)
		src := make(chan string, 2)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go d.Run(ctx, src)

		waitCtx, waitCancel := context.WithTimeout(ctx, time.Second)
		defer waitCancel()

		got := make(chan string, 1)
		go func() {
			line, _ := d.WaitFor(waitCtx, "+CIREPI:")
			got <- line
		}()

		// Give the waiter time to register before feeding lines.
		time.Sleep(10 * time.Millisecond)
		src <- "RING"
		src <- "+CIREPI: 1"

		select {
		case line := <-got:
			if line != "+CIREPI: 1" {
				t.Errorf("unexpected line: %q", line)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("WaitFor did not return")
		}
	})

	t.Run("WaitFor honours cancellation", func(t *testing.T) {
		d := modem.NewDispatcher(nil)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		if _, err := d.WaitFor(ctx, "+CIREPI:"); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected DeadlineExceeded, got: %v", err)
		}
	})

	t.Run("Run stops when the source closes", func(t *testing.T) {
		d := modem.NewDispatcher(nil)
		src := make(chan string)
		close(src)
		if err := d.Run(context.Background(), src); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
