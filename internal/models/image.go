package models

import (
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ItemState is the per-item upscaling state.
type ItemState int

const (
	StatePending ItemState = iota
	StateUpscaling
	StateDone
	StateFailed
)

func (s ItemState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateUpscaling:
		return "upscaling"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ImageItem is one unit of batch work. The batch owns both bitmaps.
type ImageItem struct {
	ID         string
	SourcePath string
	Format     string
	Original   image.Image
	Upscaled   image.Image
	Upscaling  bool
	LastError  string
	SavedPath  string
	AddedAt    time.Time
	FinishedAt time.Time
}

// NewImageItem creates a pending item for a decoded source image.
func NewImageItem(sourcePath, format string, original image.Image) *ImageItem {
	return &ImageItem{
		ID:         uuid.NewString(),
		SourcePath: sourcePath,
		Format:     format,
		Original:   original,
		AddedAt:    time.Now(),
	}
}

func (i ImageItem) State() ItemState {
	switch {
	case i.Upscaling:
		return StateUpscaling
	case i.Upscaled != nil:
		return StateDone
	case i.LastError != "":
		return StateFailed
	default:
		return StatePending
	}
}

// Selectable reports whether the next batch run should pick this item up.
// Failed items stay selectable so a later run retries them.
func (i ImageItem) Selectable() bool {
	return i.Upscaled == nil && !i.Upscaling
}

// Batch is the item collection. Reads are safe from any goroutine; writes go
// through the transition methods below.
type Batch struct {
	mu    sync.RWMutex
	items []*ImageItem
	index map[string]*ImageItem
}

func NewBatch() *Batch {
	return &Batch{index: make(map[string]*ImageItem)}
}

func (b *Batch) Add(items ...*ImageItem) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, item := range items {
		if item == nil {
			continue
		}
		if _, exists := b.index[item.ID]; exists {
			continue
		}
		b.items = append(b.items, item)
		b.index[item.ID] = item
	}
}

// Remove deletes an item that is not currently upscaling.
func (b *Batch) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.index[id]
	if !ok || item.Upscaling {
		return false
	}

	delete(b.index, id)
	for i, it := range b.items {
		if it.ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			break
		}
	}
	return true
}

// Get returns a copy of the item.
func (b *Batch) Get(id string) (ImageItem, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	item, ok := b.index[id]
	if !ok {
		return ImageItem{}, false
	}
	return *item, true
}

// Items returns copies of every item in insertion order.
func (b *Batch) Items() []ImageItem {
	b.mu.RLock()
	defer b.mu.RUnlock()

	items := make([]ImageItem, len(b.items))
	for i, item := range b.items {
		items[i] = *item
	}
	return items
}

func (b *Batch) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// BeginUpscale marks every selectable item as upscaling and returns copies of
// the selection.
func (b *Batch) BeginUpscale() []ImageItem {
	b.mu.Lock()
	defer b.mu.Unlock()

	var selected []ImageItem
	for _, item := range b.items {
		if !item.Selectable() {
			continue
		}
		item.Upscaling = true
		item.LastError = ""
		selected = append(selected, *item)
	}
	return selected
}

// Complete stores the upscaled bitmap and clears the busy flag.
func (b *Batch) Complete(id string, upscaled image.Image, savedPath string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.index[id]
	if !ok {
		return false
	}
	item.Upscaling = false
	item.Upscaled = upscaled
	item.SavedPath = savedPath
	item.LastError = ""
	item.FinishedAt = time.Now()
	return true
}

// Fail clears the busy flag and records why the item did not upscale. The
// upscaled bitmap is left empty.
func (b *Batch) Fail(id, message string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.index[id]
	if !ok {
		return false
	}
	item.Upscaling = false
	item.Upscaled = nil
	item.LastError = message
	item.FinishedAt = time.Now()
	return true
}

// MarkSaved records an explicit save of the upscaled bitmap.
func (b *Batch) MarkSaved(id, path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.index[id]
	if !ok {
		return false
	}
	item.SavedPath = path
	return true
}

// Reset drops the upscaled bitmap so the item is pending again.
func (b *Batch) Reset(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.index[id]
	if !ok || item.Upscaling {
		return false
	}
	item.Upscaled = nil
	item.LastError = ""
	item.SavedPath = ""
	item.FinishedAt = time.Time{}
	return true
}

// Clear removes every idle item.
func (b *Batch) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.items[:0]
	for _, item := range b.items {
		if item.Upscaling {
			kept = append(kept, item)
			continue
		}
		delete(b.index, item.ID)
	}
	b.items = kept
}
