// Package batch fans image upscaling out across a collection of items and
// publishes their state to a single owner context.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"superres/internal/codec"
	"superres/internal/logger"
	"superres/internal/models"
	"superres/internal/storage"
	"superres/internal/timing"
	"superres/internal/upscale"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultSuccessNotice = 3 * time.Second
	FailureTitle         = "Upscaling failed"
)

var (
	ErrUnknownItem  = errors.New("unknown item")
	ErrNotUpscaled  = errors.New("item has no upscaled image")
	ErrUnsupported  = errors.New("unsupported file type")
	ErrNothingToAdd = errors.New("no images to add")
)

// ItemUpscaler turns a source path into encoded upscaled bytes.
type ItemUpscaler interface {
	Upscale(ctx context.Context, path string) ([]byte, error)
}

// Recorder persists item outcomes.
type Recorder interface {
	Record(ctx context.Context, job storage.Job) error
}

type Options struct {
	MaxWorkers    int
	AutoSave      bool
	OutputDir     string
	SuccessNotice time.Duration
	Executor      Executor
	Recorder      Recorder
	Tracker       *timing.Tracker
}

// Coordinator owns the batch. Caller-initiated transitions (Add, Remove,
// Reset, the selection step of UpscaleAll) apply directly under the batch
// lock; worker results are handed back over a channel and applied on the
// executor, which also runs every change notification.
type Coordinator struct {
	batch    *models.Batch
	upscaler ItemUpscaler
	executor Executor
	recorder Recorder
	tracker  *timing.Tracker
	logger   logger.Logger

	mu            sync.RWMutex
	status        models.Status
	active        int
	autoSave      bool
	outputDir     string
	maxWorkers    int
	successNotice time.Duration
	noticeGen     uint64
	noticeTimer   *time.Timer
	onChange      func()
}

func NewCoordinator(upscaler ItemUpscaler, log logger.Logger, opts Options) *Coordinator {
	if log == nil {
		log = logger.Nop()
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = runtime.NumCPU()
	}
	if opts.SuccessNotice <= 0 {
		opts.SuccessNotice = DefaultSuccessNotice
	}
	if opts.Executor == nil {
		opts.Executor = NewSerialExecutor()
	}

	return &Coordinator{
		batch:         models.NewBatch(),
		upscaler:      upscaler,
		executor:      opts.Executor,
		recorder:      opts.Recorder,
		tracker:       opts.Tracker,
		logger:        log,
		autoSave:      opts.AutoSave,
		outputDir:     opts.OutputDir,
		maxWorkers:    opts.MaxWorkers,
		successNotice: opts.SuccessNotice,
	}
}

// OnChange registers the observer callback. It runs on the executor after
// every transition.
func (c *Coordinator) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

func (c *Coordinator) notify() {
	c.mu.RLock()
	fn := c.onChange
	c.mu.RUnlock()
	if fn != nil {
		c.executor.Do(fn)
	}
}

func (c *Coordinator) Snapshot() []models.ImageItem {
	return c.batch.Items()
}

func (c *Coordinator) Item(id string) (models.ImageItem, bool) {
	return c.batch.Get(id)
}

func (c *Coordinator) Status() models.Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Coordinator) Working() bool {
	return c.Status().Working
}

func (c *Coordinator) SetAutoSave(enabled bool) {
	c.mu.Lock()
	c.autoSave = enabled
	c.mu.Unlock()
}

func (c *Coordinator) AutoSave() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.autoSave
}

func (c *Coordinator) SetOutputDir(dir string) {
	c.mu.Lock()
	c.outputDir = dir
	c.mu.Unlock()
}

func (c *Coordinator) OutputDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.outputDir
}

// Add decodes every path and appends a pending item for each readable image.
// Paths that fail are reported together in the returned error; the others
// are still added.
func (c *Coordinator) Add(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		return nil, ErrNothingToAdd
	}

	var (
		ids   []string
		items []*models.ImageItem
		errs  []error
	)
	for _, path := range paths {
		item, err := loadItem(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		items = append(items, item)
		ids = append(ids, item.ID)
	}

	if len(items) > 0 {
		c.batch.Add(items...)
		c.logger.Info("BatchCoordinator", "images added", map[string]interface{}{
			"added":  len(items),
			"failed": len(errs),
			"total":  c.batch.Len(),
		})
		c.notify()
	}

	return ids, errors.Join(errs...)
}

func loadItem(path string) (*models.ImageItem, error) {
	if !codec.IsSupported(path) {
		return nil, ErrUnsupported
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", upscale.ErrLoad, err)
	}
	defer f.Close()

	img, format, err := codec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", upscale.ErrDecode, err)
	}
	return models.NewImageItem(path, format, img), nil
}

func (c *Coordinator) Remove(id string) bool {
	if !c.batch.Remove(id) {
		return false
	}
	c.notify()
	return true
}

// Reset clears an item's upscaled image so the next run picks it up again.
func (c *Coordinator) Reset(id string) bool {
	if !c.batch.Reset(id) {
		return false
	}
	c.notify()
	return true
}

// Clear removes every idle item.
func (c *Coordinator) Clear() {
	c.batch.Clear()
	c.notify()
}

// DismissAlert clears the aggregated failure report.
func (c *Coordinator) DismissAlert() {
	c.mu.Lock()
	c.status.AlertTitle = ""
	c.status.AlertMessage = ""
	c.mu.Unlock()
	c.notify()
}

// SaveItem writes an item's upscaled image to an explicitly chosen path.
func (c *Coordinator) SaveItem(id, path string) error {
	item, ok := c.batch.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	if item.Upscaled == nil {
		return fmt.Errorf("%s: %w", item.SourcePath, ErrNotUpscaled)
	}

	if err := storage.Save(path, item.Upscaled); err != nil {
		c.logger.Error("BatchCoordinator", err, map[string]interface{}{
			"item_id": id,
			"path":    path,
		})
		return err
	}

	c.batch.MarkSaved(id, path)
	c.logger.Info("BatchCoordinator", "image saved", map[string]interface{}{
		"item_id": id,
		"path":    path,
	})
	c.notify()
	return nil
}

// UpscaleAll selects every pending item, marks it upscaling and dispatches
// one worker per item. It returns once dispatch starts; the channel yields the
// summary after every worker has finished and the batch state is final.
func (c *Coordinator) UpscaleAll(ctx context.Context) <-chan models.Summary {
	out := make(chan models.Summary, 1)

	selected := c.batch.BeginUpscale()
	if len(selected) == 0 {
		out <- models.Summary{}
		close(out)
		return out
	}

	c.mu.Lock()
	c.active++
	c.status.Working = true
	autoSave, outputDir, limit := c.autoSave, c.outputDir, c.maxWorkers
	c.mu.Unlock()

	c.logger.Info("BatchCoordinator", "batch started", map[string]interface{}{
		"items":     len(selected),
		"workers":   limit,
		"auto_save": autoSave,
	})
	c.notify()

	results := make(chan models.ItemResult, len(selected))
	start := time.Now()

	go func() {
		var g errgroup.Group
		g.SetLimit(limit)
		for _, item := range selected {
			g.Go(func() error {
				results <- c.process(ctx, item, autoSave, outputDir)
				return nil
			})
		}
		g.Wait()
		close(results)
	}()

	go func() {
		var summary models.Summary
		for result := range results {
			summary.Add(result)
			c.executor.Do(func() { c.apply(result) })
		}
		summary.Duration = time.Since(start)

		// Receivers still get the summary when the executor stops first.
		doOrDrop(c.executor, func() {
			c.finish(summary)
			out <- summary
			close(out)
		}, func() {
			out <- summary
			close(out)
		})
	}()

	return out
}

// process runs one item off the owner context and never touches batch state.
func (c *Coordinator) process(ctx context.Context, item models.ImageItem, autoSave bool, outputDir string) models.ItemResult {
	start := time.Now()
	result := models.ItemResult{ItemID: item.ID, SourcePath: item.SourcePath}

	result.Err = func() error {
		data, err := c.upscaler.Upscale(ctx, item.SourcePath)
		if err != nil {
			return err
		}

		img, _, err := codec.DecodeBytes(data)
		if err != nil {
			return fmt.Errorf("%w: %w", upscale.ErrDecode, err)
		}
		result.Upscaled = img

		if autoSave {
			path, err := storage.SaveToFolder(outputDir, item.SourcePath, img)
			if err != nil {
				return err
			}
			result.SavedPath = path
		}
		return nil
	}()
	if result.Err != nil {
		result.Upscaled = nil
		result.SavedPath = ""
	}
	result.Duration = time.Since(start)

	c.record(ctx, result)
	return result
}

func (c *Coordinator) record(ctx context.Context, result models.ItemResult) {
	if c.recorder == nil {
		return
	}

	job := storage.Job{
		ItemID:     result.ItemID,
		SourcePath: result.SourcePath,
		OutputPath: result.SavedPath,
		Status:     storage.JobSucceeded,
		Duration:   result.Duration,
	}
	if result.Err != nil {
		job.Status = storage.JobFailed
		job.ErrorMessage = result.Err.Error()
	}
	if result.Upscaled != nil {
		job.Width = result.Upscaled.Bounds().Dx()
		job.Height = result.Upscaled.Bounds().Dy()
	}

	if err := c.recorder.Record(context.WithoutCancel(ctx), job); err != nil {
		c.logger.Warning("BatchCoordinator", "failed to record job", map[string]interface{}{
			"item_id": result.ItemID,
			"error":   err.Error(),
		})
	}
}

// apply runs on the executor.
func (c *Coordinator) apply(result models.ItemResult) {
	if result.Failed() {
		c.batch.Fail(result.ItemID, result.Message())
		c.logger.Error("BatchCoordinator", result.Err, map[string]interface{}{
			"item_id": result.ItemID,
			"source":  result.SourcePath,
		})
	} else {
		c.batch.Complete(result.ItemID, result.Upscaled, result.SavedPath)
		c.logger.Info("BatchCoordinator", "item upscaled", map[string]interface{}{
			"item_id":     result.ItemID,
			"source":      result.SourcePath,
			"saved_to":    result.SavedPath,
			"duration_ms": result.Duration.Milliseconds(),
		})
	}
	c.notifyNow()
}

// finish runs on the executor after the full join.
func (c *Coordinator) finish(summary models.Summary) {
	c.mu.Lock()
	c.active--
	c.status.Working = c.active > 0
	if summary.Failed() > 0 {
		c.status.AlertTitle = FailureTitle
		c.status.AlertMessage = summary.Report()
	}
	if summary.AnySaved() {
		c.showSuccessLocked()
	}
	c.mu.Unlock()

	fields := map[string]interface{}{
		"attempted":   summary.Attempted,
		"succeeded":   summary.Succeeded,
		"failed":      summary.Failed(),
		"saved":       summary.Saved,
		"duration_ms": summary.Duration.Milliseconds(),
	}
	if c.tracker != nil {
		for k, v := range c.tracker.Averages() {
			fields[k] = v
		}
	}
	c.logger.Info("BatchCoordinator", "batch finished", fields)

	c.notifyNow()
}

// showSuccessLocked raises the success notice and schedules its dismissal.
// A newer notice supersedes the pending dismissal of an older one.
func (c *Coordinator) showSuccessLocked() {
	c.status.ShowSuccess = true
	c.noticeGen++
	gen := c.noticeGen

	if c.noticeTimer != nil {
		c.noticeTimer.Stop()
	}
	c.noticeTimer = time.AfterFunc(c.successNotice, func() {
		c.executor.Do(func() { c.hideSuccess(gen) })
	})
}

func (c *Coordinator) hideSuccess(gen uint64) {
	c.mu.Lock()
	if gen != c.noticeGen {
		c.mu.Unlock()
		return
	}
	c.status.ShowSuccess = false
	c.noticeTimer = nil
	c.mu.Unlock()
	c.notifyNow()
}

// notifyNow calls the observer directly; only for code already running on
// the executor.
func (c *Coordinator) notifyNow() {
	c.mu.RLock()
	fn := c.onChange
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Close stops the pending notice timer.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.noticeTimer != nil {
		c.noticeTimer.Stop()
		c.noticeTimer = nil
	}
	return nil
}
