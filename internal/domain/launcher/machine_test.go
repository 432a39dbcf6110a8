package launcher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHappyPath(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, StateBooting, m.State())

	require.NoError(t, m.BootSucceeded())
	assert.Equal(t, StateMenu, m.State())

	require.NoError(t, m.RunApp("snake"))
	assert.Equal(t, StateRunningApp, m.State())
	assert.Equal(t, "snake", m.AppID())

	require.NoError(t, m.ExitToMenu())
	assert.Equal(t, StateMenu, m.State())
	assert.Empty(t, m.AppID())
}

func TestBootFailureGoesToRescue(t *testing.T) {
	m := NewMachine()
	st := m.RecordFault(Fault{Reason: "surface init failed", Err: errors.New("no driver")})
	assert.Equal(t, StateRescue, st)
	require.NotNil(t, m.LastFault())
	assert.Equal(t, "surface init failed", m.LastFault().Reason)
}

func TestFaultWhileRunningRecoversToMenu(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.BootSucceeded())
	require.NoError(t, m.RunApp("pong"))

	st := m.RecordFault(Fault{Reason: "hang", AppID: "pong"})
	assert.Equal(t, StateErrorRecovering, st)

	require.NoError(t, m.Recovered())
	assert.Equal(t, StateMenu, m.State())
}

func TestDoubleFaultEscalatesToRescue(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.BootSucceeded())
	require.NoError(t, m.RunApp("pong"))

	require.Equal(t, StateErrorRecovering, m.RecordFault(Fault{Reason: "hang", AppID: "pong"}))
	assert.Equal(t, StateRescue, m.RecordFault(Fault{Reason: "cleanup failed", AppID: "pong"}))
	assert.Empty(t, m.AppID())
}

func TestRescueIsTerminal(t *testing.T) {
	m := NewMachine()
	m.EnterRescue(Fault{Reason: "surface closed"})
	assert.Equal(t, StateRescue, m.State())

	assert.Error(t, m.BootSucceeded())
	assert.Error(t, m.RunApp("snake"))
	assert.Error(t, m.ExitToMenu())
	assert.Error(t, m.Recovered())

	// Further faults keep it in rescue.
	assert.Equal(t, StateRescue, m.RecordFault(Fault{Reason: "again"}))
}

func TestEnterRescueFromAnyState(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.BootSucceeded())
	require.NoError(t, m.RunApp("dashboard"))

	m.EnterRescue(Fault{Reason: "surface closed", AppID: "dashboard"})
	assert.Equal(t, StateRescue, m.State())
	assert.Empty(t, m.AppID())
}

func TestIllegalTransitions(t *testing.T) {
	m := NewMachine()
	assert.Error(t, m.RunApp("snake"), "cannot run app before boot completes")
	assert.Error(t, m.ExitToMenu())
	assert.Error(t, m.Recovered())

	require.NoError(t, m.BootSucceeded())
	assert.Error(t, m.BootSucceeded(), "boot completes once")
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "menu", StateMenu.String())
	assert.Equal(t, "rescue", StateRescue.String())
	assert.Equal(t, "INVALID", State(99).String())
}
