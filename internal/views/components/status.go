package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// SuccessMessage is shown while the auto-save notice is up.
const SuccessMessage = "Image saved"

// StatusBar displays the batch status and the transient success banner.
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	countLabel  *widget.Label
	progress    *widget.ProgressBarInfinite
	banner      *fyne.Container
}

func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

func (sb *StatusBar) createComponents() {
	sb.statusLabel = widget.NewLabel("Ready")
	sb.countLabel = widget.NewLabel("")

	sb.progress = widget.NewProgressBarInfinite()
	sb.progress.Stop()
	sb.progress.Hide()

	bannerLabel := widget.NewLabelWithStyle(SuccessMessage, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	bannerLabel.Importance = widget.SuccessImportance
	sb.banner = container.NewHBox(widget.NewIcon(theme.ConfirmIcon()), bannerLabel)
	sb.banner.Hide()
}

func (sb *StatusBar) buildLayout() {
	sb.container = container.NewBorder(
		sb.progress,
		nil,
		sb.statusLabel,
		container.NewHBox(sb.banner, widget.NewSeparator(), sb.countLabel),
	)
}

// Apply updates every status element. Must run on the UI goroutine.
func (sb *StatusBar) Apply(status, count string, working, success bool) {
	sb.statusLabel.SetText(status)
	sb.countLabel.SetText(count)

	if working {
		sb.progress.Show()
		sb.progress.Start()
	} else {
		sb.progress.Stop()
		sb.progress.Hide()
	}

	if success {
		sb.banner.Show()
	} else {
		sb.banner.Hide()
	}
}

// GetContainer returns the status bar container
func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
