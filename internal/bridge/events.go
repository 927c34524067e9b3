package bridge

import (
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/embedview/playerbridge/internal/logging"
	"github.com/embedview/playerbridge/internal/monitoring"
	"github.com/embedview/playerbridge/internal/player"
	"go.uber.org/zap"
)

// timeMarker distinguishes structured time payloads from anything else
// arriving on the TimeUpdate channel. Payloads without it are dropped
// before any parsing.
const timeMarker = "currentTime"

// Translator turns non-reply inbound messages into entries on the public
// streams. Bad input is logged and dropped; the streams themselves never
// error, and pushes after disposal are absorbed by the closed streams.
type Translator struct {
	streams *player.Streams
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewTranslator creates a translator publishing into streams.
func NewTranslator(streams *player.Streams, log *logging.Logger, metrics *monitoring.Metrics) *Translator {
	return &Translator{
		streams: streams,
		log:     log.Component("translator"),
		metrics: metrics,
	}
}

// HandleStatus maps a status name to a PlayerStatus and publishes it.
// Unrecognized names publish as unknown rather than failing.
func (t *Translator) HandleStatus(payload string) {
	t.streams.Status.Publish(player.ParseStatus(payload))
}

// HandleTimeUpdate parses a structured time payload and publishes the
// TimeUpdate record.
func (t *Translator) HandleTimeUpdate(payload string) {
	if !strings.Contains(payload, timeMarker) {
		t.log.Debug("time payload without marker dropped")
		return
	}

	fields := map[string]any{}
	if err := sonic.Unmarshal([]byte(payload), &fields); err != nil {
		t.countParseFailure(ChannelTimeUpdate)
		t.log.Warn("malformed time payload dropped", zap.Error(err))
		return
	}

	update := player.TimeUpdate{Extra: map[string]float64{}}
	for key, value := range fields {
		num, ok := value.(float64)
		if !ok {
			continue
		}
		switch key {
		case "currentTime":
			update.CurrentTime = num
		case "duration":
			update.Duration = num
		default:
			update.Extra[key] = num
		}
	}

	t.streams.Times.Publish(update)
}

// HandlePip parses a pip toggle and publishes it as a tagged event.
func (t *Translator) HandlePip(payload string) {
	t.handleBoolEvent(ChannelPipChange, player.EventPip, payload)
}

// HandleFullscreen parses a fullscreen toggle and publishes it as a
// tagged event.
func (t *Translator) HandleFullscreen(payload string) {
	t.handleBoolEvent(ChannelFullscreen, player.EventFullscreen, payload)
}

func (t *Translator) handleBoolEvent(channel string, kind player.EventKind, payload string) {
	active, err := strconv.ParseBool(strings.TrimSpace(payload))
	if err != nil {
		t.countParseFailure(channel)
		t.log.Warn("unparseable boolean event dropped",
			zap.String("channel", channel),
			zap.String("payload", payload))
		return
	}
	t.streams.Events.Publish(player.Event{Kind: kind, Active: active})
}

// HandleRateChange parses a playback rate change notification.
func (t *Translator) HandleRateChange(payload string) {
	rate, err := strconv.ParseFloat(strings.TrimSpace(payload), 64)
	if err != nil {
		t.countParseFailure(ChannelRateChange)
		t.log.Warn("unparseable rate change dropped",
			zap.String("payload", payload))
		return
	}
	t.streams.Events.Publish(player.Event{Kind: player.EventRateChange, Rate: rate})
}

// HandleLog forwards a peer diagnostic line verbatim: onto the event
// stream and into the local log sink. Never affects playback state.
func (t *Translator) HandleLog(payload string) {
	t.log.Debug("peer log", zap.String("text", payload))
	t.streams.Events.Publish(player.Event{Kind: player.EventLog, Message: payload})
}

func (t *Translator) countParseFailure(channel string) {
	if t.metrics != nil {
		t.metrics.ParseFailures.WithLabelValues(channel).Inc()
	}
}
