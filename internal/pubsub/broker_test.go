package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(200 * time.Millisecond):
		require.Fail(t, "timeout waiting for event")
	}
	return Event[T]{}
}

func TestBroker_DeliversToAllSubscribers(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx := context.Background()
	ch1 := b.Subscribe(ctx)
	ch2 := b.Subscribe(ctx)
	require.Equal(t, 2, b.SubscriberCount())

	b.Publish(WrittenEvent, "scribe.toml")

	for _, ch := range []<-chan Event[string]{ch1, ch2} {
		ev := receive(t, ch)
		require.Equal(t, WrittenEvent, ev.Type)
		require.Equal(t, "scribe.toml", ev.Payload)
		require.False(t, ev.Timestamp.IsZero())
	}
}

func TestBroker_CancelUnsubscribes(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cancel()

	require.Eventually(t, func() bool { return b.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-ch
	require.False(t, ok)
}

func TestBroker_FullBufferDropsEvents(t *testing.T) {
	b := NewBrokerWithBuffer[int](1)
	defer b.Close()

	ch := b.Subscribe(context.Background())
	b.Publish(LoggedEvent, 1)
	b.Publish(LoggedEvent, 2)

	require.Equal(t, 1, receive(t, ch).Payload)
	select {
	case ev := <-ch:
		require.Failf(t, "unexpected event", "%v", ev)
	default:
	}
}

func TestBroker_SubscribeAfterClose(t *testing.T) {
	b := NewBroker[string]()
	b.Close()
	b.Close()

	_, ok := <-b.Subscribe(context.Background())
	require.False(t, ok)
	b.Publish(RemovedEvent, "ignored")
}
