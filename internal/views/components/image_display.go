package components

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	ImageAreaWidth  = 420
	ImageAreaHeight = 420
)

// ImageDisplay shows the selected item before and after upscaling side by side.
type ImageDisplay struct {
	splitView *container.Split

	originalImage   *canvas.Image
	upscaledImage   *canvas.Image
	originalHint    *widget.Label
	upscaledHint    *widget.Label
	originalCaption *widget.Label
	upscaledCaption *widget.Label
	busy            *widget.Activity
}

func NewImageDisplay() *ImageDisplay {
	display := &ImageDisplay{}
	display.createComponents()
	display.setupLayout()
	return display
}

func (id *ImageDisplay) createComponents() {
	id.originalImage = newImageCanvas()
	id.upscaledImage = newImageCanvas()

	id.originalHint = widget.NewLabel("Drop images here or use Add Images")
	id.originalHint.Alignment = fyne.TextAlignCenter
	id.upscaledHint = widget.NewLabel("The upscaled image will appear here")
	id.upscaledHint.Alignment = fyne.TextAlignCenter

	id.originalCaption = widget.NewLabel("")
	id.upscaledCaption = widget.NewLabel("")

	id.busy = widget.NewActivity()
	id.busy.Hide()
}

func newImageCanvas() *canvas.Image {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScaleSmooth
	img.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))
	return img
}

func (id *ImageDisplay) setupLayout() {
	originalContainer := container.NewBorder(
		container.NewHBox(widget.NewRichTextFromMarkdown("**Original**"), id.originalCaption),
		nil, nil, nil,
		container.NewStack(
			createImageBackground(),
			id.originalImage,
			container.NewCenter(id.originalHint),
		),
	)

	upscaledContainer := container.NewBorder(
		container.NewHBox(widget.NewRichTextFromMarkdown("**Upscaled**"), id.upscaledCaption),
		nil, nil, nil,
		container.NewStack(
			createImageBackground(),
			id.upscaledImage,
			container.NewCenter(container.NewVBox(id.busy, id.upscaledHint)),
		),
	)

	id.splitView = container.NewHSplit(originalContainer, upscaledContainer)
	id.splitView.SetOffset(0.5)
}

func createImageBackground() *canvas.Rectangle {
	return canvas.NewRectangle(color.NRGBA{R: 128, G: 128, B: 128, A: 24})
}

// SetImages replaces both panes. Nil images show the placeholder hints; busy
// shows the activity indicator over the upscaled pane.
func (id *ImageDisplay) SetImages(original, upscaled image.Image, busy bool) {
	setPane(id.originalImage, id.originalHint, id.originalCaption, original)
	setPane(id.upscaledImage, id.upscaledHint, id.upscaledCaption, upscaled)

	if busy {
		id.upscaledHint.SetText("Upscaling…")
		id.upscaledHint.Show()
		id.busy.Show()
		id.busy.Start()
	} else {
		id.upscaledHint.SetText("The upscaled image will appear here")
		id.busy.Stop()
		id.busy.Hide()
	}
}

func setPane(img *canvas.Image, hint, caption *widget.Label, src image.Image) {
	if img.Image == src && src != nil {
		return
	}

	img.Image = src
	if src == nil {
		hint.Show()
		caption.SetText("")
	} else {
		hint.Hide()
		caption.SetText(DimensionsText(src.Bounds()))
	}
	img.Refresh()
}

// GetContainer returns the split view
func (id *ImageDisplay) GetContainer() fyne.CanvasObject {
	return id.splitView
}
