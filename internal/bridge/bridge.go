package bridge

import (
	"context"
	"time"

	"github.com/embedview/playerbridge/internal/logging"
	"github.com/embedview/playerbridge/internal/monitoring"
	"github.com/embedview/playerbridge/internal/player"
	"github.com/embedview/playerbridge/internal/surface"
	"go.uber.org/zap"
)

// Bridge owns the host side of the command/event protocol for one player:
// it renders commands into script submissions, consumes the surface's
// inbound messages on a single loop, and routes each message either to
// the reply correlator or to the event translator by channel name.
//
// Bridge implements player.Commander.
type Bridge struct {
	surf     surface.Surface
	corr     *Correlator
	events   *Translator
	handlers map[string]func(payload string)

	log     *logging.Logger
	metrics *monitoring.Metrics
	done    chan struct{}
}

// New wires a bridge over the surface, publishing into streams. Call
// Start to begin consuming inbound messages.
func New(surf surface.Surface, streams *player.Streams, log *logging.Logger, metrics *monitoring.Metrics) *Bridge {
	b := &Bridge{
		surf:    surf,
		corr:    NewCorrelator(log, metrics),
		events:  NewTranslator(streams, log, metrics),
		log:     log.Component("bridge"),
		metrics: metrics,
		done:    make(chan struct{}),
	}

	b.handlers = map[string]func(string){
		ChannelEvents:       b.events.HandleStatus,
		ChannelTimeUpdate:   b.events.HandleTimeUpdate,
		ChannelPipChange:    b.events.HandlePip,
		ChannelFullscreen:   b.events.HandleFullscreen,
		ChannelRateChange:   b.events.HandleRateChange,
		ChannelLog:          b.events.HandleLog,
		ChannelCurrentTime:  b.corr.ResolveCurrentTime,
		ChannelDuration:     b.corr.ResolveDuration,
		ChannelPlaybackRate: b.corr.ResolvePlaybackRate,
		ChannelCheckPaused:  b.corr.ResolvePaused,
	}
	return b
}

// Start launches the inbound consume loop. The loop exits when the
// surface closes its message channel.
func (b *Bridge) Start() {
	go func() {
		defer close(b.done)
		for msg := range b.surf.Messages() {
			b.dispatch(msg)
		}
	}()
}

// Done is closed once the consume loop has exited.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

func (b *Bridge) dispatch(msg surface.Message) {
	if b.metrics != nil {
		b.metrics.MessagesTotal.WithLabelValues(msg.Channel).Inc()
	}

	handler, ok := b.handlers[msg.Channel]
	if !ok {
		b.log.Warn("message on unknown channel dropped",
			zap.String("channel", msg.Channel))
		return
	}
	handler(msg.Payload)
}

// submit sends one rendered command. Submission failures are logged and
// swallowed: fire-and-forget callers cannot distinguish a lost command
// from an ignored one except through the event and reply streams.
func (b *Bridge) submit(command, script string) {
	if b.metrics != nil {
		b.metrics.CommandsTotal.WithLabelValues(command).Inc()
	}

	if err := b.surf.InjectScript(script); err != nil {
		if b.metrics != nil {
			b.metrics.SubmissionErrors.Inc()
		}
		b.log.Warn("command submission failed",
			zap.String("command", command),
			zap.Error(err))
	}
}

// Boot issues the peer construction call with the player parameters
// forwarded verbatim in the options object.
func (b *Bridge) Boot(params player.Parameters) {
	options := map[string]any{
		"videoId":    params.VideoID,
		"externalId": params.ExternalID,
		"seekTo":     int(params.SeekTo / time.Second),
	}
	if params.Fallback != "" {
		options["fullscreenFallback"] = string(params.Fallback)
	}
	for key, value := range params.Flags {
		options[key] = value
	}
	b.submit("setupPlayer", renderCall("setupPlayer", options))
}

// LoadVideo replaces the current video.
func (b *Bridge) LoadVideo(videoID string) {
	b.submit("loadVideo", renderCall("loadVideo", videoID))
}

// Play resumes playback.
func (b *Bridge) Play() { b.submit("play", renderCall("play")) }

// Pause pauses playback.
func (b *Bridge) Pause() { b.submit("pause", renderCall("pause")) }

// Stop stops playback.
func (b *Bridge) Stop() { b.submit("stop", renderCall("stop")) }

// SeekTo seeks to a whole-second position.
func (b *Bridge) SeekTo(seconds int) {
	b.submit("seekTo", renderCall("seekTo", seconds))
}

// SetVolume sets the volume in [0..1].
func (b *Bridge) SetVolume(value float64) {
	b.submit("setVolume", renderCall("setVolume", value))
}

// SetFullscreen enters or leaves fullscreen.
func (b *Bridge) SetFullscreen(on bool) {
	b.submit("setFullscreen", renderCall("setFullscreen", on))
}

// Mute mutes the player.
func (b *Bridge) Mute() { b.submit("mute", renderCall("mute")) }

// Unmute unmutes the player.
func (b *Bridge) Unmute() { b.submit("unmute", renderCall("unmute")) }

// CurrentTime asks the peer for the playback position and waits for the
// CurrentTime channel to deliver.
func (b *Bridge) CurrentTime(ctx context.Context) (time.Duration, error) {
	w := b.corr.ExpectCurrentTime()
	b.submit("getCurrentTime", renderCall("getCurrentTime"))
	return w.wait(ctx)
}

// Duration asks the peer for the video duration.
func (b *Bridge) Duration(ctx context.Context) (time.Duration, error) {
	w := b.corr.ExpectDuration()
	b.submit("getDuration", renderCall("getDuration"))
	return w.wait(ctx)
}

// PlaybackRate asks the peer for the playback rate.
func (b *Bridge) PlaybackRate(ctx context.Context) (float64, error) {
	w := b.corr.ExpectPlaybackRate()
	b.submit("getPlaybackRate", renderCall("getPlaybackRate"))
	return w.wait(ctx)
}

// IsPaused asks the peer whether playback is paused.
func (b *Bridge) IsPaused(ctx context.Context) (bool, error) {
	w := b.corr.ExpectPaused()
	b.submit("isPaused", renderCall("isPaused"))
	return w.wait(ctx)
}
