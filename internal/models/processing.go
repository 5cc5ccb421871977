package models

import (
	"fmt"
	"image"
	"strings"
	"time"
)

// Status is the batch-level state an observer renders.
type Status struct {
	Working      bool
	AlertTitle   string
	AlertMessage string
	ShowSuccess  bool
}

// HasAlert reports whether a failure report is waiting to be shown.
func (s Status) HasAlert() bool {
	return s.AlertTitle != "" || s.AlertMessage != ""
}

// ItemResult is one attempted item's outcome, handed from a worker back to
// the batch owner.
type ItemResult struct {
	ItemID     string
	SourcePath string
	Upscaled   image.Image
	SavedPath  string
	Err        error
	Duration   time.Duration
}

func (r ItemResult) Failed() bool {
	return r.Err != nil
}

// Message renders the failure line shown in the aggregated report.
func (r ItemResult) Message() string {
	if r.Err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", r.SourcePath, r.Err)
}

// Summary aggregates one batch run.
type Summary struct {
	Attempted int
	Succeeded int
	Saved     int
	Failures  []ItemResult
	Duration  time.Duration
}

func (s Summary) Failed() int {
	return len(s.Failures)
}

func (s Summary) AnySaved() bool {
	return s.Saved > 0
}

// Report joins every failure message, one per line.
func (s Summary) Report() string {
	messages := make([]string, 0, len(s.Failures))
	for _, failure := range s.Failures {
		messages = append(messages, failure.Message())
	}
	return strings.Join(messages, "\n")
}

// Add folds one item outcome into the summary.
func (s *Summary) Add(result ItemResult) {
	s.Attempted++
	if result.Failed() {
		s.Failures = append(s.Failures, result)
		return
	}
	s.Succeeded++
	if result.SavedPath != "" {
		s.Saved++
	}
}
