package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/embedview/playerbridge/internal/id"
	"github.com/embedview/playerbridge/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCommander records commands and returns canned ask-call results.
type fakeCommander struct {
	mu     sync.Mutex
	calls  []string
	booted *Parameters

	currentTime time.Duration
	duration    time.Duration
	rate        float64
	paused      bool
	askErr      error
}

func (f *fakeCommander) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeCommander) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeCommander) Boot(params Parameters)   { f.booted = &params }
func (f *fakeCommander) LoadVideo(videoID string) { f.record("loadVideo:" + videoID) }
func (f *fakeCommander) Play()                    { f.record("play") }
func (f *fakeCommander) Pause()                   { f.record("pause") }
func (f *fakeCommander) Stop()                    { f.record("stop") }
func (f *fakeCommander) SetVolume(value float64)  { f.record("setVolume") }
func (f *fakeCommander) SetFullscreen(on bool)    { f.record("setFullscreen") }
func (f *fakeCommander) Mute()                    { f.record("mute") }
func (f *fakeCommander) Unmute()                  { f.record("unmute") }

func (f *fakeCommander) SeekTo(seconds int) {
	f.record("seekTo")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentTime = time.Duration(seconds) * time.Second
}

func (f *fakeCommander) CurrentTime(ctx context.Context) (time.Duration, error) {
	if err := f.block(ctx); err != nil {
		return 0, err
	}
	return f.currentTime, f.askErr
}

func (f *fakeCommander) Duration(ctx context.Context) (time.Duration, error) {
	if err := f.block(ctx); err != nil {
		return 0, err
	}
	return f.duration, f.askErr
}

func (f *fakeCommander) PlaybackRate(ctx context.Context) (float64, error) {
	if err := f.block(ctx); err != nil {
		return 0, err
	}
	return f.rate, f.askErr
}

func (f *fakeCommander) IsPaused(ctx context.Context) (bool, error) {
	if err := f.block(ctx); err != nil {
		return false, err
	}
	return f.paused, f.askErr
}

// block honors an already-expired context so timeout tests behave like the
// real bridge.
func (f *fakeCommander) block(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func newTestController(cmd *fakeCommander) *Controller {
	return NewController(
		id.PlayerID("player_test"),
		Parameters{VideoID: "vid1"},
		cmd,
		NewStreams(),
		logging.NewNop(),
	)
}

func TestControllerBootsOnConstruction(t *testing.T) {
	cmd := &fakeCommander{}
	c := newTestController(cmd)

	require.NotNil(t, cmd.booted)
	assert.Equal(t, "vid1", cmd.booted.VideoID)
	assert.Equal(t, "vid1", c.Parameters().VideoID)
}

func TestControllerForwardsCommands(t *testing.T) {
	cmd := &fakeCommander{}
	c := newTestController(cmd)

	c.Load("vid2")
	c.Play()
	c.Pause()
	c.Stop()
	c.Mute()
	c.Unmute()

	assert.Equal(t, []string{"loadVideo:vid2", "play", "pause", "stop", "mute", "unmute"}, cmd.recorded())
}

func TestControllerSeekToTruncatesToSeconds(t *testing.T) {
	cmd := &fakeCommander{}
	c := newTestController(cmd)

	c.SeekTo(42500 * time.Millisecond)

	got, err := c.GetCurrentTime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42*time.Second, got)
}

func TestControllerAskCallsSucceed(t *testing.T) {
	cmd := &fakeCommander{
		currentTime: 5 * time.Second,
		duration:    90 * time.Second,
		rate:        1.5,
		paused:      true,
	}
	c := newTestController(cmd)
	ctx := context.Background()

	got, err := c.GetCurrentTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, got)

	dur, err := c.GetDuration(ctx)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, dur)

	rate, err := c.GetPlaybackRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.5, rate)

	paused, err := c.IsPaused(ctx)
	require.NoError(t, err)
	assert.True(t, paused)
}

func TestControllerAskFaultsFallBackToDefaults(t *testing.T) {
	cmd := &fakeCommander{askErr: errors.New("unparseable reply")}
	c := newTestController(cmd)
	ctx := context.Background()

	got, err := c.GetCurrentTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), got)

	dur, err := c.GetDuration(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), dur)

	rate, err := c.GetPlaybackRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)

	paused, err := c.IsPaused(ctx)
	require.NoError(t, err)
	assert.False(t, paused)
}

func TestControllerContextErrorsPassThrough(t *testing.T) {
	cmd := &fakeCommander{}
	c := newTestController(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetDuration(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestControllerDispose(t *testing.T) {
	cmd := &fakeCommander{}
	c := newTestController(cmd)

	statusCh, cancel := c.Status().Subscribe(4)
	defer cancel()

	c.Dispose()
	c.Dispose()

	_, open := <-statusCh
	assert.False(t, open)
	assert.True(t, c.Events().Closed())
	assert.True(t, c.TimeUpdates().Closed())
}

func TestControllerAskAfterDispose(t *testing.T) {
	cmd := &fakeCommander{duration: 10 * time.Second}
	c := newTestController(cmd)

	c.Dispose()

	// Request-style calls are bounded only by the caller's context and
	// remain usable while the bridge lives.
	dur, err := c.GetDuration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, dur)
}
