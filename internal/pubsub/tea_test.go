package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListenCmd_ReturnsEvent(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx := context.Background()
	l := NewContinuousListener[string](ctx, b)
	b.Publish(ReloadedEvent, "config")

	msg := l.Listen()()
	ev, ok := msg.(Event[string])
	require.True(t, ok)
	require.Equal(t, "config", ev.Payload)
}

func TestListenCmd_NilAfterCancel(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cancel()

	require.Nil(t, ListenCmd(ctx, ch)())
}
