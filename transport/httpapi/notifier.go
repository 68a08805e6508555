package httpapi

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

// Notifier shows a user-facing message about a failed request
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(ctx context.Context, message string)

// Notify calls f
func (f NotifierFunc) Notify(ctx context.Context, message string) {
	f(ctx, message)
}

// WriterNotifier prints notifications to a writer. When an input is
// attached it blocks until the user acknowledges with Enter.
type WriterNotifier struct {
	out io.Writer
	in  *bufio.Reader
	mu  sync.Mutex
}

// NewWriterNotifier creates a notifier writing to out. in may be nil for a
// non-blocking notifier.
func NewWriterNotifier(out io.Writer, in *bufio.Reader) *WriterNotifier {
	return &WriterNotifier{out: out, in: in}
}

// Notify prints message and waits for acknowledgement when interactive
func (n *WriterNotifier) Notify(ctx context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	fmt.Fprintf(n.out, "\n⚠️  %s\n", message)
	if n.in == nil {
		return
	}

	fmt.Fprint(n.out, "Press Enter to continue...")
	n.in.ReadString('\n')
}

// discardNotifier is used when no notifier is configured
type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, string) {}

// Notifiers fans every notification out to each of ns in order
func Notifiers(ns ...Notifier) Notifier {
	return NotifierFunc(func(ctx context.Context, message string) {
		for _, n := range ns {
			if n != nil {
				n.Notify(ctx, message)
			}
		}
	})
}
