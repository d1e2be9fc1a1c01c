package log

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/scribe/internal/pubsub"
)

func TestFormat(t *testing.T) {
	ts := time.Date(2025, 12, 6, 10, 45, 0, 0, time.UTC)
	got := format(ts, LevelWarn, CatDoc, "save failed", []any{"path", "/tmp/a", "orphan"})
	require.Equal(t, "2025-12-06T10:45:00 [WARN] [doc] save failed path=/tmp/a orphan=<missing>\n", got)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(func() { install(nil) })

	SetMinLevel(LevelInfo)
	Debug(CatEditor, "hidden")
	Info(CatEditor, "shown")
	ErrorErr(CatTerm, "pty", errors.New("boom"))

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "[INFO] [editor] shown")
	require.Contains(t, out, "error=boom")
}

func TestDisabledLoggerWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(func() { install(nil) })

	SetEnabled(false)
	Error(CatLSP, "nope")
	require.Empty(t, buf.String())
}

func TestListenerReceivesEntries(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(func() { install(nil) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := NewListener(ctx)
	require.NotNil(t, l)

	Info(CatConfig, "reloaded")
	ev, ok := l.Listen()().(pubsub.Event[string])
	require.True(t, ok)
	require.Contains(t, ev.Payload, "reloaded")
}

func TestNoLoggerIsNoop(t *testing.T) {
	install(nil)
	Info(CatUI, "dropped")
	require.Nil(t, NewListener(context.Background()))
}
