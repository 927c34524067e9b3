package session

import (
	"testing"

	"github.com/embedview/playerbridge/internal/config"
	"github.com/embedview/playerbridge/internal/logging"
	"github.com/embedview/playerbridge/internal/player"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(defaultFlags map[string]any) *Manager {
	return NewManager(config.Default(), defaultFlags, logging.NewNop(), nil)
}

func TestCreateAndGet(t *testing.T) {
	m := newTestManager(nil)

	inst, err := m.Create(player.Parameters{VideoID: "vid1"})
	require.NoError(t, err)
	defer m.Close(inst.ID)

	assert.NotEmpty(t, inst.ID.String())
	assert.Equal(t, "vid1", inst.Controller.Parameters().VideoID)
	// The configured default base URL is filled in.
	assert.Equal(t, "https://kinescope.io", inst.Controller.Parameters().BaseURL)

	got, err := m.Get(inst.ID)
	require.NoError(t, err)
	assert.Same(t, inst, got)
}

func TestCreateRejectsMalformedBaseURL(t *testing.T) {
	m := newTestManager(nil)

	_, err := m.Create(player.Parameters{VideoID: "vid1", BaseURL: "://bad"})
	assert.Error(t, err)
	assert.Empty(t, m.List())
}

func TestCreateMergesDefaultFlags(t *testing.T) {
	m := newTestManager(map[string]any{"autoplay": false, "controls": true})

	inst, err := m.Create(player.Parameters{
		VideoID: "vid1",
		Flags:   map[string]any{"autoplay": true},
	})
	require.NoError(t, err)
	defer m.Close(inst.ID)

	flags := inst.Controller.Parameters().Flags
	assert.Equal(t, true, flags["autoplay"]) // player flags win over defaults
	assert.Equal(t, true, flags["controls"])
}

func TestGetUnknown(t *testing.T) {
	m := newTestManager(nil)

	_, err := m.Get("player_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	m := newTestManager(nil)

	a, err := m.Create(player.Parameters{VideoID: "a"})
	require.NoError(t, err)
	b, err := m.Create(player.Parameters{VideoID: "b"})
	require.NoError(t, err)

	assert.Len(t, m.List(), 2)

	require.NoError(t, m.Close(a.ID))
	require.NoError(t, m.Close(b.ID))
	assert.Empty(t, m.List())
}

func TestCloseDisposesInstance(t *testing.T) {
	m := newTestManager(nil)

	inst, err := m.Create(player.Parameters{VideoID: "vid1"})
	require.NoError(t, err)

	statusCh, cancel := inst.Controller.Status().Subscribe(4)
	defer cancel()

	require.NoError(t, m.Close(inst.ID))

	_, open := <-statusCh
	assert.False(t, open)

	_, err = m.Get(inst.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Closing again reports not found rather than double-disposing.
	assert.ErrorIs(t, m.Close(inst.ID), ErrNotFound)
}

func TestShutdownClosesEverything(t *testing.T) {
	m := newTestManager(nil)

	_, err := m.Create(player.Parameters{VideoID: "a"})
	require.NoError(t, err)
	_, err = m.Create(player.Parameters{VideoID: "b"})
	require.NoError(t, err)

	m.Shutdown()
	assert.Empty(t, m.List())
}

func TestNavigationPolicyBlocksForeignHosts(t *testing.T) {
	m := newTestManager(nil)

	inst, err := m.Create(player.Parameters{VideoID: "vid1"})
	require.NoError(t, err)
	defer m.Close(inst.ID)

	assert.True(t, inst.Guard.Allows("https://kinescope.io/embed/vid1"))
	assert.False(t, inst.Guard.Allows("https://evil.example.com/"))
}
