package controllers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"superres/internal/batch"
	"superres/internal/config"
	"superres/internal/logger"
	"superres/internal/models"
	"superres/internal/storage"
	"superres/internal/views"

	"fyne.io/fyne/v2"
)

// Preference keys.
const (
	PrefAutoSave  = "autoSave"
	PrefOutputDir = "outputDir"
)

// View is the part of the main view the controller drives.
type View interface {
	Render(state views.ViewState)
	ShowAlert(title, message string, onClosed func())
	ShowError(err error)
	ShowOpenDialog(callback func(path string))
	ShowSaveDialog(dir, name string, callback func(path string))
	ShowFolderDialog(dir string, callback func(path string))
}

// MainController connects the window to the batch coordinator. Every method
// except the worker goroutines it starts runs on the UI goroutine; the
// coordinator's change callback arrives there through fyne.Do.
type MainController struct {
	ctx         context.Context
	coordinator *batch.Coordinator
	prefs       fyne.Preferences
	logger      logger.Logger

	view       View
	selectedID string
	alertShown bool
}

func NewMainController(ctx context.Context, coordinator *batch.Coordinator, prefs fyne.Preferences, log logger.Logger) *MainController {
	if log == nil {
		log = logger.Nop()
	}
	mc := &MainController{
		ctx:         ctx,
		coordinator: coordinator,
		prefs:       prefs,
		logger:      log,
	}
	mc.loadPreferences()
	coordinator.OnChange(mc.Refresh)
	return mc
}

// loadPreferences lets settings saved by an earlier session override config.
func (mc *MainController) loadPreferences() {
	if mc.prefs == nil {
		return
	}
	mc.coordinator.SetAutoSave(mc.prefs.BoolWithFallback(PrefAutoSave, mc.coordinator.AutoSave()))
	if dir := mc.prefs.StringWithFallback(PrefOutputDir, ""); dir != "" {
		mc.coordinator.SetOutputDir(dir)
	}
}

// SetMainView associates the main view with this controller
func (mc *MainController) SetMainView(view *views.MainView) {
	view.SetAddImagesHandler(mc.AddImages)
	view.SetRemoveImageHandler(mc.RemoveSelected)
	view.SetUpscaleAllHandler(mc.UpscaleAll)
	view.SetSaveImageHandler(mc.SaveSelected)
	view.SetOutputFolderHandler(mc.ChooseOutputFolder)
	view.SetAutoSaveHandler(mc.SetAutoSave)
	view.SetSelectHandler(mc.Select)
	view.SetDropHandler(mc.Add)

	mc.SetView(view)
}

// SetView sets the render target and draws the current state.
func (mc *MainController) SetView(view View) {
	mc.view = view
	mc.Refresh()
}

// AddImages opens the file picker.
func (mc *MainController) AddImages() {
	mc.view.ShowOpenDialog(func(path string) {
		mc.Add([]string{path})
	})
}

// Add decodes paths off the UI goroutine; the new items appear through the
// coordinator's change callback.
func (mc *MainController) Add(paths []string) {
	go func() {
		added, err := mc.coordinator.Add(paths...)
		if err == nil {
			return
		}
		mc.logger.Warning("MainController", "some images could not be added", map[string]interface{}{
			"requested": len(paths),
			"added":     len(added),
		})
		fyne.Do(func() { mc.view.ShowError(err) })
	}()
}

func (mc *MainController) RemoveSelected() {
	if mc.selectedID == "" {
		return
	}
	if mc.coordinator.Remove(mc.selectedID) {
		mc.selectedID = ""
	}
}

// UpscaleAll starts a batch; the summary is only logged since the coordinator
// raises the report and the success notice itself.
func (mc *MainController) UpscaleAll() {
	done := mc.coordinator.UpscaleAll(mc.ctx)
	go func() {
		summary := <-done
		if summary.Attempted == 0 {
			return
		}
		mc.logger.Info("MainController", "batch finished", map[string]interface{}{
			"attempted":   summary.Attempted,
			"succeeded":   summary.Succeeded,
			"saved":       summary.Saved,
			"duration_ms": summary.Duration.Milliseconds(),
		})
	}()
}

// SaveSelected asks where to save the selected item's upscaled image.
func (mc *MainController) SaveSelected() {
	item, ok := mc.coordinator.Item(mc.selectedID)
	if !ok || item.Upscaled == nil {
		return
	}

	mc.view.ShowSaveDialog(mc.coordinator.OutputDir(), storage.UpscaledName(item.SourcePath), func(path string) {
		go func() {
			if err := mc.coordinator.SaveItem(item.ID, path); err != nil {
				fyne.Do(func() { mc.view.ShowError(err) })
			}
		}()
	})
}

func (mc *MainController) ChooseOutputFolder() {
	mc.view.ShowFolderDialog(mc.coordinator.OutputDir(), func(dir string) {
		mc.coordinator.SetOutputDir(dir)
		if mc.prefs != nil {
			mc.prefs.SetString(PrefOutputDir, dir)
		}
		mc.logger.Info("MainController", "output folder changed", map[string]interface{}{
			"output_dir": config.DisplayPath(dir),
		})
		mc.Refresh()
	})
}

func (mc *MainController) SetAutoSave(enabled bool) {
	mc.coordinator.SetAutoSave(enabled)
	if mc.prefs != nil {
		mc.prefs.SetBool(PrefAutoSave, enabled)
	}
	mc.Refresh()
}

func (mc *MainController) Select(id string) {
	if id == mc.selectedID {
		return
	}
	mc.selectedID = id
	mc.Refresh()
}

// SelectedID returns the item shown in the comparison view.
func (mc *MainController) SelectedID() string {
	return mc.selectedID
}

// Refresh renders the coordinator's current state and raises the failure
// report once per batch.
func (mc *MainController) Refresh() {
	if mc.view == nil {
		return
	}

	items := mc.coordinator.Snapshot()
	status := mc.coordinator.Status()
	mc.selectedID = keepSelection(items, mc.selectedID)

	mc.view.Render(views.ViewState{
		Items:      items,
		SelectedID: mc.selectedID,
		Status:     status,
		AutoSave:   mc.coordinator.AutoSave(),
		OutputDir:  outputLabel(mc.coordinator.OutputDir()),
	})

	if status.HasAlert() && !mc.alertShown {
		mc.alertShown = true
		mc.view.ShowAlert(status.AlertTitle, status.AlertMessage, func() {
			mc.alertShown = false
			mc.coordinator.DismissAlert()
		})
	}
}

// keepSelection falls back to the first item when the selection is gone.
func keepSelection(items []models.ImageItem, id string) string {
	for _, item := range items {
		if item.ID == id {
			return id
		}
	}
	if len(items) > 0 {
		return items[0].ID
	}
	return ""
}

func outputLabel(dir string) string {
	if strings.TrimSpace(dir) == "" {
		return "No output folder"
	}
	return fmt.Sprintf("Saving to %s", config.DisplayPath(filepath.Clean(dir)))
}
