package components

import (
	"superres/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const ListWidth = 260

// ItemList shows the batch, one row per image, with a busy indicator on
// items being upscaled.
type ItemList struct {
	list           *widget.List
	items          []models.ImageItem
	selectedID     string
	selectHandler  func(id string)
	suppressSelect bool
}

func NewItemList() *ItemList {
	il := &ItemList{}
	il.list = widget.NewList(
		func() int { return len(il.items) },
		il.createRow,
		il.updateRow,
	)
	il.list.OnSelected = func(index widget.ListItemID) {
		if index < 0 || index >= len(il.items) {
			return
		}
		il.selectedID = il.items[index].ID
		if !il.suppressSelect && il.selectHandler != nil {
			il.selectHandler(il.selectedID)
		}
	}
	return il
}

func (il *ItemList) createRow() fyne.CanvasObject {
	activity := widget.NewActivity()
	activity.Hide()

	title := widget.NewLabel("")
	title.Truncation = fyne.TextTruncateEllipsis
	title.TextStyle = fyne.TextStyle{Bold: true}

	detail := widget.NewLabel("")
	detail.Truncation = fyne.TextTruncateEllipsis
	detail.SizeName = theme.SizeNameCaptionText

	return container.NewBorder(nil, nil, nil, activity, container.NewVBox(title, detail))
}

func (il *ItemList) updateRow(index widget.ListItemID, obj fyne.CanvasObject) {
	if index < 0 || index >= len(il.items) {
		return
	}
	item := il.items[index]

	row := obj.(*fyne.Container)
	labels := row.Objects[0].(*fyne.Container)
	activity := row.Objects[1].(*widget.Activity)

	labels.Objects[0].(*widget.Label).SetText(ItemTitle(item))
	detail := labels.Objects[1].(*widget.Label)
	detail.SetText(ItemDetail(item))
	if item.State() == models.StateFailed {
		detail.Importance = widget.DangerImportance
	} else {
		detail.Importance = widget.MediumImportance
	}
	detail.Refresh()

	if item.Upscaling {
		activity.Show()
		activity.Start()
	} else {
		activity.Stop()
		activity.Hide()
	}
}

func (il *ItemList) SetSelectHandler(handler func(id string)) {
	il.selectHandler = handler
}

// SetItems replaces the rows and keeps selectedID highlighted. Must run on the
// UI goroutine.
func (il *ItemList) SetItems(items []models.ImageItem, selectedID string) {
	il.items = items
	il.list.Refresh()

	index := IndexOf(items, selectedID)
	if index < 0 {
		il.selectedID = ""
		il.list.UnselectAll()
		return
	}
	if il.selectedID != selectedID {
		il.suppressSelect = true
		il.list.Select(index)
		il.suppressSelect = false
	}
}

// GetContainer returns the list widget
func (il *ItemList) GetContainer() fyne.CanvasObject {
	return il.list
}
