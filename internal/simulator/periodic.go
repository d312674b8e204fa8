package simulator

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Handle owns one running periodic task. Dispose must be called when the
// owning view is torn down.
type Handle struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Dispose cancels the task and waits for its goroutine to exit. After it
// returns the task function will not run again. Safe to call repeatedly.
func (h *Handle) Dispose() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}

// Active reports whether the task is still running.
func (h *Handle) Active() bool {
	if h == nil {
		return false
	}
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// every runs fn on each tick of interval until the handle is disposed.
func every(clk clockwork.Clock, interval time.Duration, fn func(now time.Time)) *Handle {
	h := &Handle{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	ticker := clk.NewTicker(interval)

	go func() {
		defer close(h.done)
		defer ticker.Stop()
		for {
			select {
			case <-h.stop:
				return
			case now := <-ticker.Chan():
				// Stop wins over a tick that raced with it.
				select {
				case <-h.stop:
					return
				default:
				}
				fn(now)
			}
		}
	}()

	return h
}
