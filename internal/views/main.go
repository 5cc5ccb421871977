package views

import (
	"superres/internal/codec"
	"superres/internal/models"
	"superres/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// MainView is the single window: toolbar on top, item list on the left, the
// before/after comparison in the centre and the status bar below.
type MainView struct {
	// UI Components
	window        fyne.Window
	mainContainer *fyne.Container
	toolbar       *components.Toolbar
	itemList      *components.ItemList
	imageDisplay  *components.ImageDisplay
	statusBar     *components.StatusBar

	// Event handlers - connected to controller
	addImagesHandler    func()
	removeImageHandler  func()
	upscaleAllHandler   func()
	saveImageHandler    func()
	outputFolderHandler func()
	autoSaveHandler     func(bool)
	selectHandler       func(string)
	dropHandler         func([]string)
}

// ViewState is a full snapshot rendered in one pass.
type ViewState struct {
	Items      []models.ImageItem
	SelectedID string
	Status     models.Status
	AutoSave   bool
	OutputDir  string
}

func NewMainView(window fyne.Window) *MainView {
	view := &MainView{
		window: window,
	}

	view.initializeComponents()
	view.buildLayout()
	view.setupEventHandlers()

	return view
}

func (mv *MainView) initializeComponents() {
	mv.toolbar = components.NewToolbar()
	mv.itemList = components.NewItemList()
	mv.imageDisplay = components.NewImageDisplay()
	mv.statusBar = components.NewStatusBar()
}

func (mv *MainView) buildLayout() {
	listPane := mv.itemList.GetContainer()
	listPane.Resize(fyne.NewSize(components.ListWidth, 0))

	contentArea := container.NewHSplit(listPane, mv.imageDisplay.GetContainer())
	contentArea.SetOffset(0.2)

	mv.mainContainer = container.NewBorder(
		mv.toolbar.GetContainer(),   // top
		mv.statusBar.GetContainer(), // bottom
		nil,                         // left
		nil,                         // right
		contentArea,                 // center
	)

	mv.window.SetContent(mv.mainContainer)
}

// setupEventHandlers connects internal component events
func (mv *MainView) setupEventHandlers() {
	mv.toolbar.SetAddHandler(func() {
		if mv.addImagesHandler != nil {
			mv.addImagesHandler()
		}
	})

	mv.toolbar.SetRemoveHandler(func() {
		if mv.removeImageHandler != nil {
			mv.removeImageHandler()
		}
	})

	mv.toolbar.SetUpscaleHandler(func() {
		if mv.upscaleAllHandler != nil {
			mv.upscaleAllHandler()
		}
	})

	mv.toolbar.SetSaveHandler(func() {
		if mv.saveImageHandler != nil {
			mv.saveImageHandler()
		}
	})

	mv.toolbar.SetFolderHandler(func() {
		if mv.outputFolderHandler != nil {
			mv.outputFolderHandler()
		}
	})

	mv.toolbar.SetAutoSaveHandler(func(enabled bool) {
		if mv.autoSaveHandler != nil {
			mv.autoSaveHandler(enabled)
		}
	})

	mv.itemList.SetSelectHandler(func(id string) {
		if mv.selectHandler != nil {
			mv.selectHandler(id)
		}
	})

	mv.window.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		paths := SupportedPaths(uris)
		if len(paths) > 0 && mv.dropHandler != nil {
			mv.dropHandler(paths)
		}
	})
}

// Event handler setters - called by controller

func (mv *MainView) SetAddImagesHandler(handler func()) {
	mv.addImagesHandler = handler
}

func (mv *MainView) SetRemoveImageHandler(handler func()) {
	mv.removeImageHandler = handler
}

func (mv *MainView) SetUpscaleAllHandler(handler func()) {
	mv.upscaleAllHandler = handler
}

func (mv *MainView) SetSaveImageHandler(handler func()) {
	mv.saveImageHandler = handler
}

func (mv *MainView) SetOutputFolderHandler(handler func()) {
	mv.outputFolderHandler = handler
}

func (mv *MainView) SetAutoSaveHandler(handler func(bool)) {
	mv.autoSaveHandler = handler
}

func (mv *MainView) SetSelectHandler(handler func(string)) {
	mv.selectHandler = handler
}

// SetDropHandler receives the supported local files dropped on the window.
func (mv *MainView) SetDropHandler(handler func([]string)) {
	mv.dropHandler = handler
}

// SupportedPaths keeps the local files whose extension the codecs accept.
func SupportedPaths(uris []fyne.URI) []string {
	var paths []string
	for _, uri := range uris {
		if uri == nil || uri.Scheme() != "file" {
			continue
		}
		if codec.IsSupported(uri.Path()) {
			paths = append(paths, uri.Path())
		}
	}
	return paths
}

// UI update methods - called by controller on the UI goroutine

func (mv *MainView) Render(state ViewState) {
	var selected *models.ImageItem
	if i := components.IndexOf(state.Items, state.SelectedID); i >= 0 {
		selected = &state.Items[i]
	}

	mv.itemList.SetItems(state.Items, state.SelectedID)

	toolbarState := components.ToolbarState{
		AutoSave:  state.AutoSave,
		OutputDir: state.OutputDir,
	}
	for _, item := range state.Items {
		if item.Selectable() {
			toolbarState.CanUpscale = true
			break
		}
	}
	if selected != nil {
		toolbarState.CanSave = selected.Upscaled != nil
		toolbarState.CanRemove = !selected.Upscaling
		mv.imageDisplay.SetImages(selected.Original, selected.Upscaled, selected.Upscaling)
	} else {
		mv.imageDisplay.SetImages(nil, nil, false)
	}
	mv.toolbar.Apply(toolbarState)

	mv.statusBar.Apply(
		components.StatusText(state.Items, state.Status),
		components.CountText(len(state.Items)),
		state.Status.Working,
		state.Status.ShowSuccess,
	)
}

// ShowAlert shows the aggregated failure report; onClosed runs when the user
// dismisses it.
func (mv *MainView) ShowAlert(title, message string, onClosed func()) {
	d := dialog.NewInformation(title, message, mv.window)
	d.SetOnClosed(onClosed)
	d.Show()
}

// ShowError displays an error dialog
func (mv *MainView) ShowError(err error) {
	dialog.ShowError(err, mv.window)
}

// ShowConfirm displays a confirmation dialog
func (mv *MainView) ShowConfirm(title, message string, callback func(bool)) {
	dialog.ShowConfirm(title, message, callback, mv.window)
}

// ShowOpenDialog lets the user pick one image to add.
func (mv *MainView) ShowOpenDialog(callback func(path string)) {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mv.ShowError(err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		callback(path)
	}, mv.window)
	d.SetFilter(storage.NewExtensionFileFilter(codec.SupportedExtensions()))
	d.Show()
}

// ShowSaveDialog asks for a destination, starting in dir with name suggested.
func (mv *MainView) ShowSaveDialog(dir, name string, callback func(path string)) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mv.ShowError(err)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		callback(path)
	}, mv.window)
	d.SetFileName(name)
	if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
		d.SetLocation(lister)
	}
	d.Show()
}

// ShowFolderDialog asks for the output folder.
func (mv *MainView) ShowFolderDialog(dir string, callback func(path string)) {
	d := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			mv.ShowError(err)
			return
		}
		if uri == nil {
			return
		}
		callback(uri.Path())
	}, mv.window)
	if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
		d.SetLocation(lister)
	}
	d.Show()
}

// Show displays the view
func (mv *MainView) Show() {
	mv.window.Show()
}

// GetWindow returns the main window
func (mv *MainView) GetWindow() fyne.Window {
	return mv.window
}
