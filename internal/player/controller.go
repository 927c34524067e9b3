package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/embedview/playerbridge/internal/id"
	"github.com/embedview/playerbridge/internal/logging"
	"go.uber.org/zap"
)

// Commander is the command surface of the bridge: one method per script
// call the remote peer understands. It is injected into the Controller at
// construction, so there is no window where facade calls hit an unwired
// command table.
//
// Fire-and-forget commands return nothing; submission failures are logged
// and swallowed by the implementation. The four ask-calls block until the
// matching reply channel delivers, or until ctx is done.
type Commander interface {
	Boot(params Parameters)
	LoadVideo(videoID string)
	Play()
	Pause()
	Stop()
	SeekTo(seconds int)
	SetVolume(value float64)
	SetFullscreen(on bool)
	Mute()
	Unmute()

	CurrentTime(ctx context.Context) (time.Duration, error)
	Duration(ctx context.Context) (time.Duration, error)
	PlaybackRate(ctx context.Context) (float64, error)
	IsPaused(ctx context.Context) (bool, error)
}

// Controller is the single object application code holds for one embedded
// player. It owns the public streams and forwards commands to the bridge.
type Controller struct {
	id      id.PlayerID
	params  Parameters
	cmd     Commander
	streams *Streams
	log     *logging.Logger

	disposeOnce sync.Once
}

// NewController creates the facade over an already-wired bridge. The
// streams must be the same instances the bridge publishes into.
func NewController(playerID id.PlayerID, params Parameters, cmd Commander, streams *Streams, log *logging.Logger) *Controller {
	c := &Controller{
		id:      playerID,
		params:  params,
		cmd:     cmd,
		streams: streams,
		log:     log.Component("controller").WithPlayer(playerID.String()),
	}
	c.cmd.Boot(params)
	return c
}

// ID returns the player instance ID.
func (c *Controller) ID() id.PlayerID { return c.id }

// Parameters returns the construction parameters. They never change after
// construction.
func (c *Controller) Parameters() Parameters { return c.params }

// Status returns the playback status stream.
func (c *Controller) Status() *Stream[Status] { return c.streams.Status }

// TimeUpdates returns the periodic playback progress stream.
func (c *Controller) TimeUpdates() *Stream[TimeUpdate] { return c.streams.Times }

// Events returns the tagged player event stream (pip, fullscreen, rate
// changes, peer log lines).
func (c *Controller) Events() *Stream[Event] { return c.streams.Events }

// Load replaces the current video. Fire-and-forget.
func (c *Controller) Load(videoID string) { c.cmd.LoadVideo(videoID) }

// Play resumes playback. Fire-and-forget.
func (c *Controller) Play() { c.cmd.Play() }

// Pause pauses playback. Fire-and-forget.
func (c *Controller) Pause() { c.cmd.Pause() }

// Stop stops playback. Fire-and-forget.
func (c *Controller) Stop() { c.cmd.Stop() }

// SeekTo seeks to the given position. The wire call carries whole seconds.
func (c *Controller) SeekTo(position time.Duration) {
	c.cmd.SeekTo(int(position / time.Second))
}

// SetVolume sets the playback volume in [0..1].
func (c *Controller) SetVolume(value float64) { c.cmd.SetVolume(value) }

// SetFullscreen enters or leaves fullscreen.
func (c *Controller) SetFullscreen(on bool) { c.cmd.SetFullscreen(on) }

// Mute mutes the player.
func (c *Controller) Mute() { c.cmd.Mute() }

// Unmute unmutes the player.
func (c *Controller) Unmute() { c.cmd.Unmute() }

// GetCurrentTime asks the peer for the playback position. A reply that
// cannot be parsed resolves to zero after one logged diagnostic; callers
// never observe a bridge fault, only ctx errors.
func (c *Controller) GetCurrentTime(ctx context.Context) (time.Duration, error) {
	v, err := c.cmd.CurrentTime(ctx)
	if err != nil {
		return 0, c.absorb("getCurrentTime", err)
	}
	return v, nil
}

// GetDuration asks the peer for the video duration. Falls back to zero on
// a bridge fault.
func (c *Controller) GetDuration(ctx context.Context) (time.Duration, error) {
	v, err := c.cmd.Duration(ctx)
	if err != nil {
		return 0, c.absorb("getDuration", err)
	}
	return v, nil
}

// GetPlaybackRate asks the peer for the playback rate. Falls back to 1.0
// on a bridge fault.
func (c *Controller) GetPlaybackRate(ctx context.Context) (float64, error) {
	v, err := c.cmd.PlaybackRate(ctx)
	if err != nil {
		return 1.0, c.absorb("getPlaybackRate", err)
	}
	return v, nil
}

// IsPaused asks the peer whether playback is paused. Falls back to false
// on a bridge fault.
func (c *Controller) IsPaused(ctx context.Context) (bool, error) {
	v, err := c.cmd.IsPaused(ctx)
	if err != nil {
		return false, c.absorb("isPaused", err)
	}
	return v, nil
}

// absorb converts a bridge fault into the documented default. Context
// errors are the caller's own timeout or cancellation and pass through.
func (c *Controller) absorb(call string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	c.log.Warn("request-style call fell back to default",
		zap.String("call", call),
		zap.Error(err))
	return nil
}

// Dispose closes the streams exactly once. A request-style call still
// pending at disposal time stays pending; callers bound it with their own
// context. Inbound deliveries after disposal are absorbed by the closed
// streams.
func (c *Controller) Dispose() {
	c.disposeOnce.Do(func() {
		c.streams.Close()
		c.log.Info("controller disposed")
	})
}
