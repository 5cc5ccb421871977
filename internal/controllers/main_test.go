package controllers

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"superres/internal/batch"
	"superres/internal/codec"
	"superres/internal/models"
	"superres/internal/upscale"
	"superres/internal/views"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpscaler struct {
	fail string
}

func (f fakeUpscaler) Upscale(_ context.Context, path string) ([]byte, error) {
	if filepath.Base(path) == f.fail {
		return nil, fmt.Errorf("%w: tile (0,0)", upscale.ErrInference)
	}
	return codec.EncodeBytes(image.NewRGBA(image.Rect(0, 0, 8, 8)), codec.PNG)
}

type alert struct {
	title, message string
	onClosed       func()
}

type fakeView struct {
	mu      sync.Mutex
	renders []views.ViewState
	alerts  []alert
	folder  string
}

func (v *fakeView) Render(state views.ViewState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.renders = append(v.renders, state)
}

func (v *fakeView) ShowAlert(title, message string, onClosed func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alerts = append(v.alerts, alert{title, message, onClosed})
}

func (v *fakeView) ShowError(error) {}

func (v *fakeView) ShowOpenDialog(func(string)) {}

func (v *fakeView) ShowSaveDialog(string, string, func(string)) {}

func (v *fakeView) ShowFolderDialog(_ string, cb func(string)) {
	cb(v.folder)
}

func (v *fakeView) last() views.ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.renders[len(v.renders)-1]
}

func (v *fakeView) alertList() []alert {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]alert(nil), v.alerts...)
}

func sources(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for _, name := range names {
		data, err := codec.EncodeBytes(image.NewRGBA(image.Rect(0, 0, 2, 2)), codec.PNG)
		require.NoError(t, err)
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0o644))
		paths = append(paths, path)
	}
	return paths
}

func newController(t *testing.T, up batch.ItemUpscaler) (*MainController, *batch.Coordinator, *fakeView) {
	t.Helper()
	a := test.NewTempApp(t)

	// Inline, so change callbacks finish before the transition returns.
	inline := batch.ExecutorFunc(func(fn func()) { fn() })
	coordinator := batch.NewCoordinator(up, nil, batch.Options{
		Executor:  inline,
		OutputDir: t.TempDir(),
	})
	t.Cleanup(func() { coordinator.Close() })

	mc := NewMainController(context.Background(), coordinator, a.Preferences(), nil)
	view := &fakeView{}
	mc.SetView(view)
	return mc, coordinator, view
}

func waitSummary(t *testing.T, ch <-chan models.Summary) models.Summary {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("batch did not finish")
		return models.Summary{}
	}
}

func TestPreferencesOverrideCoordinatorSettings(t *testing.T) {
	a := test.NewTempApp(t)
	a.Preferences().SetBool(PrefAutoSave, true)
	a.Preferences().SetString(PrefOutputDir, "/srv/upscaled")

	coordinator := batch.NewCoordinator(fakeUpscaler{}, nil, batch.Options{OutputDir: "/tmp"})
	t.Cleanup(func() { coordinator.Close() })
	NewMainController(context.Background(), coordinator, a.Preferences(), nil)

	assert.True(t, coordinator.AutoSave())
	assert.Equal(t, "/srv/upscaled", coordinator.OutputDir())
}

func TestSettingsArePersisted(t *testing.T) {
	mc, coordinator, view := newController(t, fakeUpscaler{})

	mc.SetAutoSave(true)
	assert.True(t, coordinator.AutoSave())
	assert.True(t, mc.prefs.Bool(PrefAutoSave))
	assert.True(t, view.last().AutoSave)

	view.folder = "/srv/out"
	mc.ChooseOutputFolder()
	assert.Equal(t, "/srv/out", coordinator.OutputDir())
	assert.Equal(t, "/srv/out", mc.prefs.String(PrefOutputDir))
	assert.Equal(t, "Saving to /srv/out", view.last().OutputDir)
}

func TestRefreshSelectsFirstItem(t *testing.T) {
	mc, coordinator, view := newController(t, fakeUpscaler{})

	ids, err := coordinator.Add(sources(t, "a.png", "b.png")...)
	require.NoError(t, err)
	mc.Refresh()

	assert.Equal(t, ids[0], mc.SelectedID())
	assert.Len(t, view.last().Items, 2)

	mc.Select(ids[1])
	assert.Equal(t, ids[1], view.last().SelectedID)

	mc.RemoveSelected()
	mc.Refresh()
	assert.Equal(t, ids[0], mc.SelectedID())
}

func TestFailureReportShownOnceAndDismissed(t *testing.T) {
	mc, coordinator, view := newController(t, fakeUpscaler{fail: "b.png"})

	_, err := coordinator.Add(sources(t, "a.png", "b.png", "c.png")...)
	require.NoError(t, err)

	summary := waitSummary(t, coordinator.UpscaleAll(context.Background()))
	assert.Equal(t, 1, summary.Failed())

	alerts := view.alertList()
	require.Len(t, alerts, 1)
	assert.Equal(t, batch.FailureTitle, alerts[0].title)
	assert.True(t, strings.Contains(alerts[0].message, "b.png"))
	assert.False(t, strings.Contains(alerts[0].message, "a.png"))

	mc.Refresh()
	assert.Len(t, view.alertList(), 1)

	alerts[0].onClosed()
	assert.False(t, coordinator.Status().HasAlert())
}

func TestOutputLabel(t *testing.T) {
	assert.Equal(t, "No output folder", outputLabel(" "))
	assert.Equal(t, "Saving to /data/out", outputLabel("/data/out/"))
}
