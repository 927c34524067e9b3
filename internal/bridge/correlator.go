package bridge

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/embedview/playerbridge/internal/logging"
	"github.com/embedview/playerbridge/internal/monitoring"
	"go.uber.org/zap"
)

// outcome is the single-shot resolution of one pending ask-call.
type outcome[T any] struct {
	val T
	err error
}

// waiter is the handle for one pending ask-call. Delivered at most once;
// a waiter that was replaced before its reply arrived never resolves.
type waiter[T any] struct {
	ch chan outcome[T]
}

func newWaiter[T any]() *waiter[T] {
	return &waiter[T]{ch: make(chan outcome[T], 1)}
}

func (w *waiter[T]) deliver(val T, err error) {
	select {
	case w.ch <- outcome[T]{val: val, err: err}:
	default:
	}
}

// wait blocks until the reply is delivered or ctx is done. The bridge
// imposes no timeout of its own: a lost reply leaves the waiter pending
// until the caller's context expires.
func (w *waiter[T]) wait(ctx context.Context) (T, error) {
	select {
	case o := <-w.ch:
		return o.val, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Correlator matches ask-call replies to pending waiters. It holds at
// most one pending waiter per call kind; issuing a new ask of the same
// kind replaces the stored waiter, and the replaced one becomes
// unobservable. Both the expect path and the resolve path are short
// critical sections on one mutex, preserving the single-slot semantics.
type Correlator struct {
	mu          sync.Mutex
	currentTime *waiter[time.Duration]
	duration    *waiter[time.Duration]
	rate        *waiter[float64]
	paused      *waiter[bool]

	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewCorrelator creates an empty correlator.
func NewCorrelator(log *logging.Logger, metrics *monitoring.Metrics) *Correlator {
	return &Correlator{
		log:     log.Component("correlator"),
		metrics: metrics,
	}
}

// ExpectCurrentTime registers the pending waiter for the CurrentTime
// reply channel, replacing any previous one.
func (c *Correlator) ExpectCurrentTime() *waiter[time.Duration] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnIfReplacing(ChannelCurrentTime, c.currentTime != nil)
	c.currentTime = newWaiter[time.Duration]()
	return c.currentTime
}

// ExpectDuration registers the pending waiter for the Duration reply
// channel, replacing any previous one.
func (c *Correlator) ExpectDuration() *waiter[time.Duration] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnIfReplacing(ChannelDuration, c.duration != nil)
	c.duration = newWaiter[time.Duration]()
	return c.duration
}

// ExpectPlaybackRate registers the pending waiter for the PlayBackRate
// reply channel, replacing any previous one.
func (c *Correlator) ExpectPlaybackRate() *waiter[float64] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnIfReplacing(ChannelPlaybackRate, c.rate != nil)
	c.rate = newWaiter[float64]()
	return c.rate
}

// ExpectPaused registers the pending waiter for the CheckPaused reply
// channel, replacing any previous one.
func (c *Correlator) ExpectPaused() *waiter[bool] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnIfReplacing(ChannelCheckPaused, c.paused != nil)
	c.paused = newWaiter[bool]()
	return c.paused
}

func (c *Correlator) warnIfReplacing(channel string, replacing bool) {
	if replacing {
		c.log.Debug("pending waiter replaced before its reply arrived",
			zap.String("channel", channel))
	}
}

// ResolveCurrentTime resolves the pending CurrentTime waiter with the
// inbound payload.
func (c *Correlator) ResolveCurrentTime(payload string) {
	c.mu.Lock()
	w := c.currentTime
	c.currentTime = nil
	c.mu.Unlock()

	if w == nil {
		c.dropUnsolicited(ChannelCurrentTime)
		return
	}
	w.deliver(c.parseSeconds(ChannelCurrentTime, payload))
}

// ResolveDuration resolves the pending Duration waiter.
func (c *Correlator) ResolveDuration(payload string) {
	c.mu.Lock()
	w := c.duration
	c.duration = nil
	c.mu.Unlock()

	if w == nil {
		c.dropUnsolicited(ChannelDuration)
		return
	}
	w.deliver(c.parseSeconds(ChannelDuration, payload))
}

// ResolvePlaybackRate resolves the pending PlayBackRate waiter.
func (c *Correlator) ResolvePlaybackRate(payload string) {
	c.mu.Lock()
	w := c.rate
	c.rate = nil
	c.mu.Unlock()

	if w == nil {
		c.dropUnsolicited(ChannelPlaybackRate)
		return
	}

	rate, err := strconv.ParseFloat(strings.TrimSpace(payload), 64)
	if err != nil {
		c.countParseFailure(ChannelPlaybackRate)
		w.deliver(0, fmt.Errorf("unparseable playback rate %q: %w", payload, err))
		return
	}
	w.deliver(rate, nil)
}

// ResolvePaused resolves the pending CheckPaused waiter.
func (c *Correlator) ResolvePaused(payload string) {
	c.mu.Lock()
	w := c.paused
	c.paused = nil
	c.mu.Unlock()

	if w == nil {
		c.dropUnsolicited(ChannelCheckPaused)
		return
	}

	paused, err := strconv.ParseBool(strings.TrimSpace(payload))
	if err != nil {
		c.countParseFailure(ChannelCheckPaused)
		w.deliver(false, fmt.Errorf("unparseable paused flag %q: %w", payload, err))
		return
	}
	w.deliver(paused, nil)
}

// parseSeconds converts a decimal-seconds payload to a duration with
// millisecond precision, rounding the millisecond count up.
func (c *Correlator) parseSeconds(channel, payload string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(strings.TrimSpace(payload), 64)
	if err != nil {
		c.countParseFailure(channel)
		return 0, fmt.Errorf("unparseable seconds value %q on %s: %w", payload, channel, err)
	}
	return time.Duration(math.Ceil(secs*1000)) * time.Millisecond, nil
}

func (c *Correlator) dropUnsolicited(channel string) {
	c.log.Debug("reply with no pending waiter dropped",
		zap.String("channel", channel))
}

func (c *Correlator) countParseFailure(channel string) {
	if c.metrics != nil {
		c.metrics.ParseFailures.WithLabelValues(channel).Inc()
	}
}
