// Package boundary contains faults raised while rendering a view so the rest
// of the application keeps working.
package boundary

import (
	"bytes"
	"fmt"
	"io"
	"runtime/debug"
	"sync"
)

// Reporter receives each caught fault exactly once.
type Reporter interface {
	Report(err error, stack []byte)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(err error, stack []byte)

func (f ReporterFunc) Report(err error, stack []byte) { f(err, stack) }

// View renders some output.
type View interface {
	Render(w io.Writer) error
}

// ViewFunc adapts a function to View.
type ViewFunc func(w io.Writer) error

func (f ViewFunc) Render(w io.Writer) error { return f(w) }

// PanicError wraps a recovered panic value.
type PanicError struct {
	Value any
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// Boundary renders its child until the child fails, then renders the
// fallback until Retry or Reset is called.
type Boundary struct {
	mu       sync.Mutex
	child    View
	fallback View
	reporter Reporter
	onHome   func()

	fault error
}

// New builds a boundary. onHome runs on Reset and may be nil.
func New(child, fallback View, reporter Reporter, onHome func()) *Boundary {
	return &Boundary{
		child:    child,
		fallback: fallback,
		reporter: reporter,
		onHome:   onHome,
	}
}

// Render writes the child's output, or the fallback's when the child fails.
// A child that fails writes nothing.
func (b *Boundary) Render(w io.Writer) error {
	b.mu.Lock()
	faulted := b.fault != nil
	b.mu.Unlock()

	if !faulted {
		var buf bytes.Buffer
		stack, err := Capture(func() error { return b.child.Render(&buf) })
		if err == nil {
			_, werr := io.Copy(w, &buf)
			return werr
		}

		b.mu.Lock()
		first := b.fault == nil
		if first {
			b.fault = err
		}
		b.mu.Unlock()

		if first && b.reporter != nil {
			b.reporter.Report(err, stack)
		}
	}
	return b.fallback.Render(w)
}

// Faulted reports whether the fallback is showing.
func (b *Boundary) Faulted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fault != nil
}

// Err returns the caught fault, if any.
func (b *Boundary) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fault
}

// Retry clears the fault so the next Render tries the child again.
func (b *Boundary) Retry() {
	b.mu.Lock()
	b.fault = nil
	b.mu.Unlock()
}

// Reset clears the fault and navigates home.
func (b *Boundary) Reset() {
	b.Retry()
	if b.onHome != nil {
		b.onHome()
	}
}

// Capture runs fn, turning a panic into a *PanicError. The stack is only
// set for panics.
func Capture(fn func() error) (stack []byte, err error) {
	defer func() {
		if v := recover(); v != nil {
			stack = debug.Stack()
			err = &PanicError{Value: v}
		}
	}()
	return nil, fn()
}
