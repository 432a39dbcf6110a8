package app

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matrixforge/ledhost/internal/input"
	"github.com/matrixforge/ledhost/internal/surface"
)

type fakeApp struct {
	initErr      error
	tickDelay    time.Duration
	tickSignal   Signal
	tickPanics   bool
	teardownHang time.Duration
	ticks        int
	toredown     bool
	res          surface.Resolution
}

func (f *fakeApp) Init(_ Descriptor, res surface.Resolution) error {
	f.res = res
	return f.initErr
}

func (f *fakeApp) Tick(_ []input.Event, _ time.Duration) (*surface.Frame, Signal) {
	f.ticks++
	if f.tickPanics {
		panic("boom")
	}
	if f.tickDelay > 0 {
		time.Sleep(f.tickDelay)
	}
	return surface.NewFrame(f.res), f.tickSignal
}

func (f *fakeApp) Teardown() error {
	if f.teardownHang > 0 {
		time.Sleep(f.teardownHang)
	}
	f.toredown = true
	return nil
}

func testRes() surface.Resolution {
	return surface.Resolution{PanelWidth: 32, PanelHeight: 16, ChainLength: 1, Parallel: 1}
}

func descFor(f *fakeApp) Descriptor {
	return Descriptor{ID: "fake", Label: "FAKE", New: func() App { return f }}
}

func TestInstantiateAndStop(t *testing.T) {
	m := NewManager(Config{HangThreshold: 5, StopGrace: time.Second}, nil)
	f := &fakeApp{}

	inst, err := m.Instantiate(descFor(f), testRes())
	require.NoError(t, err)
	assert.Equal(t, StatusActive, inst.Status())
	assert.NotEmpty(t, inst.ID)
	assert.Same(t, inst, m.Active())

	forced := m.Stop(inst)
	assert.False(t, forced)
	assert.True(t, f.toredown)
	assert.Nil(t, m.Active(), "no leaked active instance after stop")
}

func TestInstantiateInitFailure(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)
	f := &fakeApp{initErr: errors.New("no network")}

	inst, err := m.Instantiate(descFor(f), testRes())
	assert.Nil(t, inst)

	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "fake", initErr.AppID)
	assert.Nil(t, m.Active(), "failed init must not leave an instance")
}

func TestSingleActiveInstance(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)

	first, err := m.Instantiate(descFor(&fakeApp{}), testRes())
	require.NoError(t, err)

	_, err = m.Instantiate(descFor(&fakeApp{}), testRes())
	assert.ErrorIs(t, err, ErrInstanceActive)

	m.Stop(first)
	_, err = m.Instantiate(descFor(&fakeApp{}), testRes())
	assert.NoError(t, err)
}

func TestTickOverrunEscalatesToHang(t *testing.T) {
	m := NewManager(Config{HangThreshold: 3, StopGrace: time.Second}, nil)
	f := &fakeApp{tickDelay: 5 * time.Millisecond}

	inst, err := m.Instantiate(descFor(f), testRes())
	require.NoError(t, err)

	budget := time.Microsecond

	// First overruns are soft faults: frame skipped, no error.
	for i := 1; i <= 2; i++ {
		frame, _, err := m.Tick(inst, nil, budget)
		require.NoError(t, err)
		assert.Nil(t, frame, "overrun frame must be skipped")
		assert.Equal(t, i, inst.Overruns())
	}

	// Threshold reached: hard fault.
	_, _, err = m.Tick(inst, nil, budget)
	assert.ErrorIs(t, err, ErrAppHang)
}

func TestGoodTickResetsOverruns(t *testing.T) {
	m := NewManager(Config{HangThreshold: 3, StopGrace: time.Second}, nil)
	f := &fakeApp{tickDelay: 5 * time.Millisecond}

	inst, err := m.Instantiate(descFor(f), testRes())
	require.NoError(t, err)

	_, _, err = m.Tick(inst, nil, time.Microsecond)
	require.NoError(t, err)
	require.Equal(t, 1, inst.Overruns())

	// Within budget: counter resets, frame flows.
	f.tickDelay = 0
	frame, _, err := m.Tick(inst, nil, time.Second)
	require.NoError(t, err)
	assert.NotNil(t, frame)
	assert.Equal(t, 0, inst.Overruns())
}

func TestTickPanicIsCrash(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)
	f := &fakeApp{tickPanics: true}

	inst, err := m.Instantiate(descFor(f), testRes())
	require.NoError(t, err)

	frame, sig, err := m.Tick(inst, nil, time.Second)
	assert.Nil(t, frame)
	assert.Equal(t, SignalFault, sig)
	assert.ErrorIs(t, err, ErrAppCrashed)
	assert.Equal(t, StatusCrashed, inst.Status())

	m.Discard(inst)
	assert.Nil(t, m.Active())
}

func TestStopForceKillsOnGraceTimeout(t *testing.T) {
	m := NewManager(Config{HangThreshold: 5, StopGrace: 20 * time.Millisecond}, nil)
	f := &fakeApp{teardownHang: 500 * time.Millisecond}

	inst, err := m.Instantiate(descFor(f), testRes())
	require.NoError(t, err)

	forced := m.Stop(inst)
	assert.True(t, forced)
	assert.Nil(t, m.Active())

	stats := m.Stats()
	assert.Equal(t, uint64(1), stats.ForceKills)
}

func TestPauseResume(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)
	inst, err := m.Instantiate(descFor(&fakeApp{}), testRes())
	require.NoError(t, err)

	m.Pause(inst)
	assert.Equal(t, StatusPaused, inst.Status())
	m.Resume(inst)
	assert.Equal(t, StatusActive, inst.Status())
}

func TestStats(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)
	inst, err := m.Instantiate(descFor(&fakeApp{}), testRes())
	require.NoError(t, err)

	stats := m.Stats()
	assert.Equal(t, uint64(1), stats.Started)
	assert.Equal(t, "fake", stats.ActiveApp)
	assert.Equal(t, inst.ID, stats.ActiveID)
}
