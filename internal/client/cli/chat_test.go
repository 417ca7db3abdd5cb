package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func stubMultiline(t *testing.T, text string) {
	t.Helper()
	orig := getMultiline
	getMultiline = func(*bufio.Reader, string, io.Writer) (string, error) { return text, nil }
	t.Cleanup(func() { getMultiline = orig })
}

func TestChat(t *testing.T) {
	out := captureOutput(t)
	a, _, _, _, _, _ := newTestApp()
	fc := &fakeChat{reply: "Try the listings near you."}
	a.assistant = fc

	stubMultiline(t, "Where should I live?")
	require.NoError(t, a.Chat(context.Background()))
	require.Equal(t, "Where should I live?", fc.got)
	require.Contains(t, *out, "Try the listings near you.")
}

func TestChat_EmptyMessageIsSkipped(t *testing.T) {
	a, _, _, _, _, _ := newTestApp()
	fc := &fakeChat{}
	a.assistant = fc

	stubMultiline(t, "")
	require.NoError(t, a.Chat(context.Background()))
	require.Empty(t, fc.got)
}

func TestChat_Error(t *testing.T) {
	a, _, _, _, _, _ := newTestApp()
	a.assistant = &fakeChat{err: errors.New("HTTP error 403: denied")}

	stubMultiline(t, "hi")
	require.EqualError(t, a.Chat(context.Background()), "HTTP error 403: denied")
}
