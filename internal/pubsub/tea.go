package pubsub

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// ListenCmd waits for the next event on ch and returns it as a tea.Msg.
// It yields nil once ctx is cancelled or the channel is closed.
func ListenCmd[T any](ctx context.Context, ch <-chan Event[T]) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			return event
		}
	}
}

// ContinuousListener keeps one subscription alive across Update calls.
// Call Listen again after each received event to keep receiving.
type ContinuousListener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewContinuousListener subscribes to broker for the lifetime of ctx.
func NewContinuousListener[T any](ctx context.Context, broker Subscriber[T]) *ContinuousListener[T] {
	return &ContinuousListener[T]{ctx: ctx, ch: broker.Subscribe(ctx)}
}

// Listen returns a command resolving to the next event.
func (l *ContinuousListener[T]) Listen() tea.Cmd {
	return ListenCmd(l.ctx, l.ch)
}
