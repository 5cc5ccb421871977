package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Toolbar holds the batch actions and the output settings.
type Toolbar struct {
	container     *fyne.Container
	addButton     *widget.Button
	removeButton  *widget.Button
	upscaleButton *widget.Button
	saveButton    *widget.Button
	folderButton  *widget.Button
	autoSaveCheck *widget.Check
	folderLabel   *widget.Label

	// Event handlers
	addHandler      func()
	removeHandler   func()
	upscaleHandler  func()
	saveHandler     func()
	folderHandler   func()
	autoSaveHandler func(bool)

	// set while the check box is updated from state, so OnChanged does not echo
	syncing bool
}

// NewToolbar creates a new toolbar component
func NewToolbar() *Toolbar {
	toolbar := &Toolbar{}
	toolbar.createComponents()
	toolbar.buildLayout()
	toolbar.setupEventHandlers()
	return toolbar
}

func (t *Toolbar) createComponents() {
	t.addButton = widget.NewButtonWithIcon("Add Images", theme.ContentAddIcon(), nil)
	t.addButton.Importance = widget.HighImportance

	t.removeButton = widget.NewButtonWithIcon("Remove", theme.ContentRemoveIcon(), nil)
	t.removeButton.Disable()

	t.upscaleButton = widget.NewButtonWithIcon("Upscale All", theme.MediaPlayIcon(), nil)
	t.upscaleButton.Importance = widget.HighImportance
	t.upscaleButton.Disable()

	t.saveButton = widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), nil)
	t.saveButton.Disable()

	t.folderButton = widget.NewButtonWithIcon("Output Folder", theme.FolderOpenIcon(), nil)
	t.autoSaveCheck = widget.NewCheck("Auto-save", nil)
	t.folderLabel = widget.NewLabel("")
	t.folderLabel.Truncation = fyne.TextTruncateEllipsis
}

func (t *Toolbar) buildLayout() {
	actionSection := container.NewHBox(
		t.addButton,
		t.removeButton,
		widget.NewSeparator(),
		t.upscaleButton,
		t.saveButton,
	)

	outputSection := container.NewHBox(
		t.autoSaveCheck,
		t.folderButton,
	)

	t.container = container.NewBorder(nil, nil, actionSection, outputSection, t.folderLabel)
}

func (t *Toolbar) setupEventHandlers() {
	t.addButton.OnTapped = func() {
		if t.addHandler != nil {
			t.addHandler()
		}
	}

	t.removeButton.OnTapped = func() {
		if t.removeHandler != nil {
			t.removeHandler()
		}
	}

	t.upscaleButton.OnTapped = func() {
		if t.upscaleHandler != nil {
			t.upscaleHandler()
		}
	}

	t.saveButton.OnTapped = func() {
		if t.saveHandler != nil {
			t.saveHandler()
		}
	}

	t.folderButton.OnTapped = func() {
		if t.folderHandler != nil {
			t.folderHandler()
		}
	}

	t.autoSaveCheck.OnChanged = func(enabled bool) {
		if t.syncing {
			return
		}
		if t.autoSaveHandler != nil {
			t.autoSaveHandler(enabled)
		}
	}
}

// Event handler setters

func (t *Toolbar) SetAddHandler(handler func()) {
	t.addHandler = handler
}

func (t *Toolbar) SetRemoveHandler(handler func()) {
	t.removeHandler = handler
}

func (t *Toolbar) SetUpscaleHandler(handler func()) {
	t.upscaleHandler = handler
}

func (t *Toolbar) SetSaveHandler(handler func()) {
	t.saveHandler = handler
}

func (t *Toolbar) SetFolderHandler(handler func()) {
	t.folderHandler = handler
}

func (t *Toolbar) SetAutoSaveHandler(handler func(bool)) {
	t.autoSaveHandler = handler
}

// ToolbarState is everything the toolbar reflects. Must be applied on the UI
// goroutine.
type ToolbarState struct {
	CanUpscale bool
	CanSave    bool
	CanRemove  bool
	AutoSave   bool
	OutputDir  string
}

func (t *Toolbar) Apply(state ToolbarState) {
	setEnabled(t.upscaleButton, state.CanUpscale)
	setEnabled(t.saveButton, state.CanSave)
	setEnabled(t.removeButton, state.CanRemove)

	if t.autoSaveCheck.Checked != state.AutoSave {
		t.syncing = true
		t.autoSaveCheck.SetChecked(state.AutoSave)
		t.syncing = false
	}
	t.folderLabel.SetText(state.OutputDir)
}

func setEnabled(button *widget.Button, enabled bool) {
	if enabled {
		button.Enable()
	} else {
		button.Disable()
	}
}

// GetContainer returns the toolbar container
func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
