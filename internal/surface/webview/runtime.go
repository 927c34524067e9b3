package webview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/embedview/playerbridge/internal/logging"
	"github.com/embedview/playerbridge/internal/resilience"
	"github.com/embedview/playerbridge/internal/surface"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Options configures one webview runtime.
type Options struct {
	// Channels are the named inbound channels bound into the peer
	// context. Each becomes a global object exposing postMessage, so the
	// peer script emits with the literal channel name, e.g.
	// CurrentTime.postMessage("12.5").
	Channels []string
	// Policy is consulted before every navigation. Nil allows everything.
	Policy surface.NavigationPolicy
	// ExecTimeout bounds one script execution. Zero means 5s.
	ExecTimeout time.Duration
	// FetchTimeout bounds one embed-page fetch. Zero means 20s.
	FetchTimeout time.Duration
	Logger       *logging.Logger
}

// Runtime hosts the remote peer script in a goja VM and implements the
// surface capability. One VM per player instance; the VM is single-entry,
// so per-channel message order matches emission order.
type Runtime struct {
	mu   sync.Mutex
	vm   *goja.Runtime
	opts Options

	msgs   chan surface.Message
	closed bool

	docMu sync.RWMutex
	doc   surface.Document

	client    *resty.Client
	breaker   *resilience.Breaker
	sanitizer *bluemonday.Policy
	log       *logging.Logger
}

const messageBuffer = 256

// New creates a webview runtime with the peer-facing globals bound.
func New(opts Options) (*Runtime, error) {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.ExecTimeout <= 0 {
		opts.ExecTimeout = 5 * time.Second
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 20 * time.Second
	}

	r := &Runtime{
		vm:        goja.New(),
		opts:      opts,
		msgs:      make(chan surface.Message, messageBuffer),
		client:    newFetchClient(opts.FetchTimeout),
		breaker:   resilience.New("embed-fetch", resilience.DefaultSettings()),
		sanitizer: bluemonday.UGCPolicy(),
		log:       opts.Logger.Component("webview"),
	}

	if err := r.setupGlobals(); err != nil {
		return nil, err
	}
	return r, nil
}

// newFetchClient builds the resty client used for embed-page fetches on a
// retryable transport.
func newFetchClient(timeout time.Duration) *resty.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = nil

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "playerbridge-webview/1.0").
		SetHeader("Accept", "text/html,application/xhtml+xml")
	client.SetTransport(retryClient.HTTPClient.Transport)
	return client
}

// setupGlobals removes dangerous globals and binds the channel objects,
// console, and navigation hooks.
func (r *Runtime) setupGlobals() error {
	r.vm.Set("require", goja.Undefined())
	r.vm.Set("process", goja.Undefined())
	r.vm.Set("module", goja.Undefined())
	r.vm.Set("exports", goja.Undefined())

	console := r.vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error"} {
		console.Set(level, r.makeConsoleFunc(level))
	}
	r.vm.Set("console", console)

	// Timers are no-ops; the peer's periodic emissions are driven by its
	// own playback loop, not host timers.
	noop := func(call goja.FunctionCall) goja.Value { return goja.Undefined() }
	r.vm.Set("setTimeout", noop)
	r.vm.Set("setInterval", noop)

	for _, name := range r.opts.Channels {
		ch := r.vm.NewObject()
		channel := name
		ch.Set("postMessage", func(call goja.FunctionCall) goja.Value {
			payload := ""
			if len(call.Arguments) > 0 {
				payload = call.Arguments[0].String()
			}
			r.emit(channel, payload)
			return goja.Undefined()
		})
		if err := r.vm.Set(name, ch); err != nil {
			return fmt.Errorf("failed to bind channel %s: %w", name, err)
		}
	}

	navigate := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			r.requestNavigation(call.Arguments[0].String())
		}
		return goja.Undefined()
	}

	location := r.vm.NewObject()
	location.Set("assign", navigate)
	location.Set("replace", navigate)
	window := r.vm.NewObject()
	window.Set("location", location)
	window.Set("navigate", navigate)
	r.vm.Set("window", window)
	r.vm.Set("navigate", navigate)

	return nil
}

// makeConsoleFunc routes peer console output to the host log.
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var msg string
		for i, arg := range call.Arguments {
			if i > 0 {
				msg += " "
			}
			msg += arg.String()
		}
		r.log.Debug("peer console", zap.String("level", level), zap.String("text", msg))
		return goja.Undefined()
	}
}

// emit delivers one inbound message. Runs only while the VM executes, so
// it is serialized with Close by the runtime mutex. A full buffer drops
// the message rather than stall the peer.
func (r *Runtime) emit(channel, payload string) {
	if r.closed {
		return
	}
	select {
	case r.msgs <- surface.Message{Channel: channel, Payload: payload}:
	default:
		r.log.Warn("message buffer full, dropping",
			zap.String("channel", channel))
	}
}

// requestNavigation handles a navigation initiated by the peer script.
// The fetch runs after the current script execution finishes.
func (r *Runtime) requestNavigation(target string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.opts.FetchTimeout)
		defer cancel()
		if err := r.Navigate(ctx, target); err != nil {
			r.log.Warn("script navigation failed",
				zap.String("destination", target),
				zap.Error(err))
		}
	}()
}

// InjectScript submits a snippet for execution in the peer context. The
// error reports submission failure only; replies arrive on the inbound
// channels.
func (r *Runtime) InjectScript(script string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return surface.ErrClosed
	}

	timer := time.AfterFunc(r.opts.ExecTimeout, func() {
		r.vm.Interrupt("execution timeout exceeded")
	})
	defer func() {
		timer.Stop()
		r.vm.ClearInterrupt()
	}()

	if _, err := r.vm.RunString(script); err != nil {
		return fmt.Errorf("script execution failed: %w", err)
	}
	return nil
}

// Messages returns the inbound delivery channel. Closed when the surface
// closes.
func (r *Runtime) Messages() <-chan surface.Message {
	return r.msgs
}

// Document returns the rendered view of the current page.
func (r *Runtime) Document() surface.Document {
	r.docMu.RLock()
	defer r.docMu.RUnlock()
	return r.doc
}

// Close tears the surface down. Pending script submissions after close
// return ErrClosed.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	close(r.msgs)
	r.log.Debug("surface closed")
	return nil
}
