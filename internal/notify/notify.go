// Package notify delivers short reports to chat platforms (Slack, Discord).
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Notifier is the interface that platform-specific implementations must
// satisfy.
type Notifier interface {
	// Name identifies the platform, e.g. "slack".
	Name() string
	// Send delivers msg to the notifier's configured channel.
	Send(ctx context.Context, msg Message) error
}

// Message is a platform-neutral report.
type Message struct {
	Title  string  // headline
	Text   string  // body, plain text with newlines
	Color  string  // sidebar colour hint, e.g. "#36a64f"
	Fields []Field // key-value metadata pairs
}

// Field is a key-value pair displayed under the message body.
type Field struct {
	Name  string
	Value string
	Short bool // hint: render side-by-side with another field
}

// Fanout sends to every notifier and joins their errors. A failing
// notifier does not stop the others.
type Fanout []Notifier

// Name implements Notifier.
func (f Fanout) Name() string { return "fanout" }

// Send implements Notifier.
func (f Fanout) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range f {
		if err := n.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Recorder is a Notifier that keeps every message it is sent. It is used by
// tests and by dry runs.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
	Err  error // returned from Send when set
}

// Name implements Notifier.
func (r *Recorder) Name() string { return "recorder" }

// Send implements Notifier.
func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.msgs = append(r.msgs, msg)
	return nil
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}
