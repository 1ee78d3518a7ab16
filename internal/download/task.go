package download

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hbdl/hb-downloader/internal/logging"
	"github.com/hbdl/hb-downloader/internal/model"
	"github.com/hbdl/hb-downloader/internal/platform"
)

// FinishingLabel is the progress label emitted when the engine reports a finished transfer
const FinishingLabel = "Finishing..."

// DefaultEventBuffer is the capacity of a task's event channel. One slot is
// always kept free for the outcome.
const DefaultEventBuffer = 64

// Task is a single download attempt. It moves Idle -> Running and terminates
// exactly once into Succeeded, Cancelled or Failed. A task cannot be restarted.
type Task struct {
	req         model.Request
	opts        Options
	downloadDir string
	engine      Engine
	logger      logging.Logger

	cancelled atomic.Bool

	mu      sync.Mutex
	status  model.TaskStatus
	started bool
	claimed bool // terminal outcome reserved; no more progress is delivered
	dropped int
	events  chan model.Event
}

// NewTask validates the request and derives engine options. Configuration
// errors are returned here so that an unmappable request never starts.
func NewTask(req model.Request, downloadDir string, engine Engine, logger logging.Logger) (*Task, error) {
	opts, err := BuildOptions(req, downloadDir)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Task{
		req:         req,
		opts:        opts,
		downloadDir: downloadDir,
		engine:      engine,
		logger:      logger,
		status:      model.TaskStatusIdle,
		events:      make(chan model.Event, DefaultEventBuffer),
	}, nil
}

// Request returns the request the task was created from
func (t *Task) Request() model.Request { return t.req }

// Options returns the engine options derived from the request
func (t *Task) Options() Options { return t.opts }

// Events returns the ordered event stream. The outcome is always the last
// event and the channel is closed right after it.
func (t *Task) Events() <-chan model.Event { return t.events }

// Status returns the current lifecycle state
func (t *Task) Status() model.TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Start runs the engine and blocks until it returns. Call it off the UI goroutine.
// Cancelling ctx has the same effect as Cancel.
func (t *Task) Start(ctx context.Context) error {
	t.mu.Lock()
	switch {
	case t.claimed:
		t.mu.Unlock()
		return ErrTaskFinished
	case t.started:
		t.mu.Unlock()
		return ErrAlreadyStarted
	}
	t.started = true
	t.status = model.TaskStatusRunning
	t.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { t.Cancel() })
	defer stop()

	t.logger.Info("download started",
		"url", t.req.URL,
		"format", t.opts.Format,
		"merge_format", t.opts.MergeOutputFormat,
	)

	res, err := t.engine.Download(ctx, t.req.URL, t.opts, t.handleStatus)

	if t.cancelled.Load() || errors.Is(err, ErrAbort) || (err != nil && ctx.Err() != nil) {
		t.cancelled.Store(true)
		// the engine has stopped writing by now, so sweep again
		t.cleanup()
		if t.claim(model.TaskStatusStopping) {
			t.deliver(model.Outcome{Kind: model.OutcomeCancelled})
		}
		return nil
	}

	if err != nil {
		engineErr := &EngineError{Err: err}
		t.logger.Error("download failed", "url", t.req.URL, "err", engineErr)
		if t.claim(model.TaskStatusFailed) {
			t.deliver(model.Outcome{Kind: model.OutcomeFailed, Message: engineErr.Error()})
		}
		return nil
	}

	t.logger.Info("download finished", "url", t.req.URL, "output", res.OutputPath)
	if t.claim(model.TaskStatusSucceeded) {
		t.deliver(model.Outcome{Kind: model.OutcomeSucceeded, OutputPath: res.OutputPath})
	}
	return nil
}

// Cancel requests cancellation. The next progress callback aborts the engine,
// partial files are removed best-effort and Cancelled is emitted. It returns
// false when the task had already terminated.
func (t *Task) Cancel() bool {
	t.cancelled.Store(true)

	t.mu.Lock()
	started := t.started
	t.mu.Unlock()

	if !t.claim(model.TaskStatusStopping) {
		return false
	}

	t.logger.Info("download cancelled", "url", t.req.URL)
	if started {
		t.cleanup()
	}
	t.deliver(model.Outcome{Kind: model.OutcomeCancelled})
	return true
}

// handleStatus is the progress hook handed to the engine
func (t *Task) handleStatus(st EngineStatus) error {
	if t.cancelled.Load() {
		return ErrAbort
	}

	switch st.State {
	case EngineStateDownloading:
		ev, ok := ParsePercent(st.PercentStr)
		if !ok {
			t.logger.Warn("unparseable progress", "url", t.req.URL, "percent", st.PercentStr)
			return nil
		}
		t.emit(ev)
	case EngineStateFinished:
		t.emit(model.ProgressEvent{Percent: 100, Label: FinishingLabel})
	}
	return nil
}

// ParsePercent converts an engine percent string such as " 37.2%" into a progress
// event, truncating to an integer clamped to [0, 100].
func ParsePercent(s string) (model.ProgressEvent, bool) {
	label := strings.TrimSpace(s)
	value, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(label, "%")), 64)
	if err != nil || math.IsNaN(value) {
		return model.ProgressEvent{}, false
	}
	percent := int(math.Max(0, math.Min(100, value)))
	return model.ProgressEvent{Percent: percent, Label: label}, true
}

func (t *Task) emit(ev model.ProgressEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.claimed {
		return
	}
	if len(t.events) >= cap(t.events)-1 {
		t.dropped++
		return
	}
	t.events <- model.Event{Progress: &ev}
}

// claim reserves the single terminal outcome slot
func (t *Task) claim(status model.TaskStatus) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.claimed {
		return false
	}
	t.claimed = true
	t.status = status
	return true
}

// deliver sends the outcome and closes the stream. Only the claim holder calls it.
func (t *Task) deliver(o model.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = o.Status()
	if t.dropped > 0 {
		t.logger.Warn("progress events dropped", "url", t.req.URL, "count", t.dropped)
	}
	t.events <- model.Event{Outcome: &o}
	close(t.events)
}

func (t *Task) cleanup() {
	removed, err := platform.RemovePartialDownloads(t.downloadDir, t.req.URLFragment())
	for _, path := range removed {
		t.logger.Info("removed partial download", "path", path)
	}
	if err != nil {
		t.logger.Warn("partial download cleanup failed", "url", t.req.URL, "err", err)
	}
}
