package habridge

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matrixforge/ledhost/internal/domain/app"
	"github.com/matrixforge/ledhost/internal/input"
	"github.com/matrixforge/ledhost/internal/surface"
)

var testRes = surface.Resolution{PanelWidth: 64, PanelHeight: 32, ChainLength: 2, Parallel: 1}

func newHA(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		id := r.URL.Path[len("/api/states/"):]
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"entity_id":%q,"state":"on","attributes":{"friendly_name":"Lamp"}}`, id)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestInitRequiresBaseURL(t *testing.T) {
	b := New(Config{})
	assert.Error(t, b.Init(app.Descriptor{}, testRes))
}

func TestPollPublishesEntityStates(t *testing.T) {
	ts := newHA(t)
	b := New(Config{
		BaseURL:  ts.URL,
		Token:    "secret",
		Entities: []string{"light.lamp"},
		Poll:     10 * time.Millisecond,
	})
	require.NoError(t, b.Init(app.Descriptor{}, testRes))
	defer b.Teardown()

	require.Eventually(t, func() bool {
		return b.latest.Load() != nil
	}, time.Second, 5*time.Millisecond)

	states := *b.latest.Load()
	require.Len(t, states, 1)
	assert.Equal(t, "on", states[0].State)
	assert.Equal(t, "Lamp", states[0].name())
}

func TestUnauthorizedKeepsLastSnapshot(t *testing.T) {
	ts := newHA(t)
	b := New(Config{
		BaseURL:  ts.URL,
		Token:    "wrong",
		Entities: []string{"light.lamp"},
		Poll:     10 * time.Millisecond,
	})
	require.NoError(t, b.Init(app.Descriptor{}, testRes))
	defer b.Teardown()

	frame, sig := b.Tick(nil, time.Second/60)
	require.NotNil(t, frame)
	assert.Equal(t, app.SignalContinue, sig)
	assert.Nil(t, b.latest.Load())
}

func TestCancelExitsToMenu(t *testing.T) {
	ts := newHA(t)
	b := New(Config{BaseURL: ts.URL, Token: "secret", Poll: time.Hour})
	require.NoError(t, b.Init(app.Descriptor{}, testRes))
	defer b.Teardown()

	_, sig := b.Tick([]input.Event{
		{Action: input.ActionCancel, Pressed: true},
	}, time.Second/60)
	assert.Equal(t, app.SignalExitToMenu, sig)
}

func TestScrollClampsToRange(t *testing.T) {
	ts := newHA(t)
	b := New(Config{
		BaseURL:  ts.URL,
		Token:    "secret",
		Entities: []string{"light.a", "light.b"},
		Poll:     10 * time.Millisecond,
	})
	require.NoError(t, b.Init(app.Descriptor{}, testRes))
	defer b.Teardown()

	require.Eventually(t, func() bool {
		return b.latest.Load() != nil
	}, time.Second, 5*time.Millisecond)

	down := []input.Event{{Action: input.ActionDown, Pressed: true}}
	for i := 0; i < 10; i++ {
		b.Tick(down, time.Second/60)
	}
	assert.LessOrEqual(t, b.scroll, 2)

	up := []input.Event{{Action: input.ActionUp, Pressed: true}}
	for i := 0; i < 10; i++ {
		b.Tick(up, time.Second/60)
	}
	assert.Equal(t, 0, b.scroll)
}
