package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"superres/internal/batch"
	"superres/internal/config"
	"superres/internal/controllers"
	"superres/internal/engine"
	"superres/internal/logger"
	"superres/internal/opencv/dnn"
	"superres/internal/views"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/joho/godotenv"
)

const (
	AppName    = "Superres"
	AppID      = "com.superres.upscaler"
	AppVersion = "1.0.0"
)

// Application is the desktop front end around the upscaling engine.
type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger

	engine     *engine.Engine
	controller *controllers.MainController
	view       *views.MainView
}

func main() {
	configureRuntime()

	// Load .env file if present (ignore errors)
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("SUPERRES_CONFIG"))
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	application, err := NewApplication(cfg)
	if err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}

	application.Run()
}

// configureRuntime tunes the GC for large bitmap allocations.
func configureRuntime() {
	runtime.GOMAXPROCS(runtime.NumCPU())
	runtime.SetGCPercent(200)
}

func NewApplication(cfg config.Config) (*Application, error) {
	app.SetMetadata(fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
	})
	fyneApp := app.NewWithID(AppID)

	window := fyneApp.NewWindow(AppName)
	windowSize := calculateWindowSize()
	window.Resize(windowSize)
	window.CenterOnScreen()
	window.SetMaster()

	appLogger := logger.New(cfg.Logging.Level, cfg.Logging.JSON)
	appLogger.Info("Application", "starting", map[string]interface{}{
		"version":     AppVersion,
		"window_size": fmt.Sprintf("%.0fx%.0f", windowSize.Width, windowSize.Height),
		"go_version":  runtime.Version(),
		"num_cpu":     runtime.NumCPU(),
		"log_level":   cfg.Logging.Level,
	})

	e, err := engine.New(cfg, appLogger, engine.Options{
		Loader:   dnn.LoadModel,
		Executor: batch.ExecutorFunc(fyne.Do),
	})
	if err != nil {
		return nil, err
	}

	controller := controllers.NewMainController(e.Shutdown.Context(), e.Coordinator, fyneApp.Preferences(), appLogger)
	view := views.NewMainView(window)
	controller.SetMainView(view)

	application := &Application{
		fyneApp:    fyneApp,
		window:     window,
		logger:     appLogger,
		engine:     e,
		controller: controller,
		view:       view,
	}
	application.setupWindowEvents()

	return application, nil
}

// Run shows the window and blocks until the application quits.
func (a *Application) Run() {
	a.engine.Shutdown.Listen()

	go func() {
		<-a.engine.Shutdown.Done()
		fyne.Do(a.fyneApp.Quit)
	}()
	go a.startPerformanceMonitoring()

	a.view.Show()
	a.fyneApp.Run()

	a.engine.Close()
	a.logger.Info("Application", "terminated", nil)
}

func (a *Application) setupWindowEvents() {
	a.window.SetCloseIntercept(func() {
		a.logger.Info("Application", "window close requested", nil)

		if !a.engine.Coordinator.Working() {
			a.window.Close()
			return
		}

		a.view.ShowConfirm(
			"Quit Superres",
			"Images are still being upscaled. Quit anyway?",
			func(confirmed bool) {
				if confirmed {
					a.window.Close()
				}
			},
		)
	})
}

func (a *Application) startPerformanceMonitoring() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.logPerformanceMetrics()
		case <-a.engine.Shutdown.Done():
			return
		}
	}
}

func (a *Application) logPerformanceMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	fields := map[string]interface{}{
		"go_memory_mb":      memStats.Alloc / 1024 / 1024,
		"go_total_alloc_mb": memStats.TotalAlloc / 1024 / 1024,
		"go_gc_runs":        memStats.NumGC,
		"goroutine_count":   runtime.NumGoroutine(),
		"items":             len(a.engine.Coordinator.Snapshot()),
		"working":           a.engine.Coordinator.Working(),
	}
	for k, v := range a.engine.Tracker.Averages() {
		fields[k] = v
	}

	a.logger.Debug("Application", "performance metrics", fields)
}

func calculateWindowSize() fyne.Size {
	baseWidth := float32(1200)
	baseHeight := float32(760)

	if runtime.NumCPU() >= 8 {
		baseWidth *= 1.2
		baseHeight *= 1.2
	}

	return fyne.NewSize(baseWidth, baseHeight)
}
