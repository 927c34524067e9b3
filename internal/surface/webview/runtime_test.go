package webview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/embedview/playerbridge/internal/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRuntime(t *testing.T, opts Options) *Runtime {
	t.Helper()
	r, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func recvMessage(t *testing.T, r *Runtime) surface.Message {
	t.Helper()
	select {
	case msg := <-r.Messages():
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return surface.Message{}
	}
}

func TestChannelPostMessage(t *testing.T) {
	r := newTestRuntime(t, Options{Channels: []string{"CurrentTime", "Events"}})

	require.NoError(t, r.InjectScript(`CurrentTime.postMessage("12.5");`))

	msg := recvMessage(t, r)
	assert.Equal(t, "CurrentTime", msg.Channel)
	assert.Equal(t, "12.5", msg.Payload)
}

func TestChannelOrderPreserved(t *testing.T) {
	r := newTestRuntime(t, Options{Channels: []string{"Events"}})

	require.NoError(t, r.InjectScript(`
		Events.postMessage("init");
		Events.postMessage("ready");
		Events.postMessage("playing");
	`))

	assert.Equal(t, "init", recvMessage(t, r).Payload)
	assert.Equal(t, "ready", recvMessage(t, r).Payload)
	assert.Equal(t, "playing", recvMessage(t, r).Payload)
}

func TestPostMessageCoercesToString(t *testing.T) {
	r := newTestRuntime(t, Options{Channels: []string{"Duration"}})

	require.NoError(t, r.InjectScript(`Duration.postMessage(90);`))
	assert.Equal(t, "90", recvMessage(t, r).Payload)
}

func TestInjectScriptError(t *testing.T) {
	r := newTestRuntime(t, Options{})

	err := r.InjectScript(`this is not javascript`)
	assert.Error(t, err)
}

func TestInjectScriptAfterClose(t *testing.T) {
	r, err := New(Options{})
	require.NoError(t, err)
	require.NoError(t, r.Close())

	assert.ErrorIs(t, r.InjectScript(`1 + 1`), surface.ErrClosed)
}

func TestCloseIdempotent(t *testing.T) {
	r, err := New(Options{})
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, open := <-r.Messages()
	assert.False(t, open)
}

func TestExecTimeoutInterruptsScript(t *testing.T) {
	r := newTestRuntime(t, Options{ExecTimeout: 50 * time.Millisecond})

	err := r.InjectScript(`while (true) {}`)
	assert.Error(t, err)

	// The VM must stay usable after an interrupt.
	assert.NoError(t, r.InjectScript(`1 + 1`))
}

func TestSandboxedGlobalsRemoved(t *testing.T) {
	r := newTestRuntime(t, Options{Channels: []string{"Events"}})

	require.NoError(t, r.InjectScript(`
		var missing = [];
		if (typeof require !== "undefined" && require) missing.push("require");
		if (typeof process !== "undefined" && process) missing.push("process");
		if (typeof module !== "undefined" && module) missing.push("module");
		Events.postMessage(missing.join(","));
	`))

	assert.Equal(t, "", recvMessage(t, r).Payload)
}

func TestConsoleDoesNotCrash(t *testing.T) {
	r := newTestRuntime(t, Options{})

	assert.NoError(t, r.InjectScript(`
		console.log("hello", 42);
		console.warn("careful");
		setTimeout(function() {}, 100);
		setInterval(function() {}, 100);
	`))
}

func TestNavigateBlockedByPolicy(t *testing.T) {
	r := newTestRuntime(t, Options{
		Policy: func(destination string) bool { return false },
	})

	err := r.Navigate(context.Background(), "https://evil.example.com/")
	assert.ErrorIs(t, err, ErrNavigationBlocked)
	assert.Empty(t, r.Document().URL)
}

func TestNavigateAfterClose(t *testing.T) {
	r, err := New(Options{})
	require.NoError(t, err)
	require.NoError(t, r.Close())

	assert.ErrorIs(t, r.Navigate(context.Background(), "https://kinescope.io/"), surface.ErrClosed)
}

func TestNavigateLoadsEmbedPage(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Embed Player</title></head>
<body>
<script>Events.postMessage("init");</script>
<script src="https://cdn.example.com/bundle.js"></script>
</body>
</html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	r := newTestRuntime(t, Options{
		Channels: []string{"Events"},
		Policy: func(destination string) bool {
			return strings.Contains(destination, "127.0.0.1")
		},
	})

	require.NoError(t, r.Navigate(context.Background(), srv.URL+"/embed"))

	doc := r.Document()
	assert.Equal(t, srv.URL+"/embed", doc.URL)
	assert.Equal(t, "Embed Player", doc.Title)

	// Only the inline script ran; the external reference is ignored.
	assert.Equal(t, "init", recvMessage(t, r).Payload)
	select {
	case msg := <-r.Messages():
		t.Fatalf("unexpected extra message: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNavigateFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := newTestRuntime(t, Options{
		Policy: func(destination string) bool { return true },
	})

	err := r.Navigate(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
	assert.Empty(t, r.Document().URL)
}
