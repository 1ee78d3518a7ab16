package download

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hbdl/hb-downloader/internal/logging"
	"github.com/hbdl/hb-downloader/internal/model"
	"github.com/hbdl/hb-downloader/internal/platform"
)

// Parallelism bounds
const (
	MinParallelDownloads = 1
	MaxParallelDownloads = 10
	TaskIDPrefix         = "task-"
)

// entry pairs a display snapshot with the task instance behind it
type entry struct {
	snapshot *model.DownloadTask
	task     *Task
	done     chan struct{} // closed once the relay has seen the outcome
}

// Service handles download operations
type Service struct {
	tasks       map[string]*entry
	order       []string
	tasksMutex  sync.RWMutex
	maxParallel int
	activeCount int
	downloadDir string
	engine      Engine
	logger      logging.Logger
	onUpdate    func(*model.DownloadTask) // callback for UI updates
	titleReader func(path string) (string, error)

	// snapshots waiting for onUpdate, in mutation order
	outbox   []model.DownloadTask
	flushing bool
}

// NewService creates a new download service
func NewService(engine Engine, downloadDir string, maxParallel int, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		tasks:       make(map[string]*entry),
		maxParallel: clampParallel(maxParallel),
		downloadDir: downloadDir,
		engine:      engine,
		logger:      logger,
		titleReader: platform.ReadMediaTitle,
	}
}

// SetUpdateCallback sets the callback function for task updates.
// Updates arrive in the order they were made and the callback receives a copy.
// The callback may call back into the service.
func (s *Service) SetUpdateCallback(callback func(*model.DownloadTask)) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()
	s.onUpdate = callback
}

// AddTask validates the request and queues a new task. Configuration errors are
// returned synchronously and nothing is queued.
func (s *Service) AddTask(req model.Request) (*model.DownloadTask, error) {
	s.tasksMutex.Lock()

	for _, e := range s.tasks {
		if e.snapshot.Request.URL == req.URL && !e.snapshot.Status.IsFinished() {
			s.tasksMutex.Unlock()
			return nil, fmt.Errorf("task already exists for URL: %s", req.URL)
		}
	}

	task, err := NewTask(req, s.downloadDir, s.engine, s.logger)
	if err != nil {
		s.tasksMutex.Unlock()
		return nil, err
	}

	e := &entry{
		snapshot: &model.DownloadTask{
			ID:      generateTaskID(),
			Request: req,
			Status:  model.TaskStatusPending,
		},
		task: task,
		done: make(chan struct{}),
	}
	s.tasks[e.snapshot.ID] = e
	s.order = append(s.order, e.snapshot.ID)

	go s.relay(e)

	s.publishLocked(e)
	if s.activeCount < s.maxParallel {
		s.startLocked(e)
	}
	snap := *e.snapshot
	s.tasksMutex.Unlock()

	s.flush()
	return &snap, nil
}

// GetTask returns a copy of the task snapshot
func (s *Service) GetTask(id string) (*model.DownloadTask, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	e, exists := s.tasks[id]
	if !exists {
		return nil, false
	}
	snap := *e.snapshot
	return &snap, true
}

// GetAllTasks returns copies of all task snapshots in insertion order
func (s *Service) GetAllTasks() []*model.DownloadTask {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	tasks := make([]*model.DownloadTask, 0, len(s.order))
	for _, id := range s.order {
		snap := *s.tasks[id].snapshot
		tasks = append(tasks, &snap)
	}
	return tasks
}

// StopTask cancels a pending or running task. Partial files are removed before it returns.
func (s *Service) StopTask(id string) error {
	s.tasksMutex.Lock()
	e, exists := s.tasks[id]
	if !exists {
		s.tasksMutex.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if e.snapshot.Status.IsFinished() {
		s.tasksMutex.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotActive, e.snapshot.Status)
	}
	e.snapshot.Status = model.TaskStatusStopping
	s.publishLocked(e)
	s.tasksMutex.Unlock()

	s.flush()

	if !e.task.Cancel() {
		return fmt.Errorf("%w: %s", ErrTaskNotActive, id)
	}
	return nil
}

// RestartTask queues a brand-new task for the request of a finished task and
// removes the old one. There is no automatic retry; this is the caller's way to retry.
func (s *Service) RestartTask(id string) (*model.DownloadTask, error) {
	s.tasksMutex.RLock()
	e, exists := s.tasks[id]
	var req model.Request
	var finished bool
	if exists {
		req = e.snapshot.Request
		finished = e.snapshot.Status.IsFinished()
	}
	s.tasksMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if !finished {
		return nil, fmt.Errorf("%w: %s", ErrTaskActive, id)
	}
	if err := s.RemoveTask(id); err != nil {
		return nil, err
	}
	return s.AddTask(req)
}

// RemoveTask forgets a finished task
func (s *Service) RemoveTask(id string) error {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	e, exists := s.tasks[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if !e.snapshot.Status.IsFinished() {
		return fmt.Errorf("%w: %s", ErrTaskActive, id)
	}

	delete(s.tasks, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Wait blocks until the task's outcome has been applied or ctx is done
func (s *Service) Wait(ctx context.Context, id string) (*model.DownloadTask, error) {
	s.tasksMutex.RLock()
	e, exists := s.tasks[id]
	s.tasksMutex.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	select {
	case <-e.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	snap := *e.snapshot
	return &snap, nil
}

// SetMaxParallelDownloads sets the maximum number of parallel downloads
func (s *Service) SetMaxParallelDownloads(max int) {
	s.tasksMutex.Lock()
	s.maxParallel = clampParallel(max)
	s.tasksMutex.Unlock()

	s.startNextPendingTask()
}

// SetDownloadDirectory sets the download directory used by new tasks
func (s *Service) SetDownloadDirectory(dir string) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()
	s.downloadDir = dir
}

// startLocked marks a task as running and starts it. Callers hold tasksMutex
// and flush afterwards.
func (s *Service) startLocked(e *entry) {
	s.activeCount++
	e.snapshot.Status = model.TaskStatusRunning
	e.snapshot.StartedAt = time.Now()
	s.publishLocked(e)

	go s.run(e)
}

// run blocks on the task and frees its slot once the outcome is applied
func (s *Service) run(e *entry) {
	if err := e.task.Start(context.Background()); err != nil {
		s.logger.Warn("task not started", "id", e.snapshot.ID, "err", err)
	}
	<-e.done

	s.tasksMutex.Lock()
	s.activeCount--
	s.tasksMutex.Unlock()

	s.startNextPendingTask()
}

// relay folds a task's events into its snapshot, in order
func (s *Service) relay(e *entry) {
	defer close(e.done)

	Relay(e.task.Events(), ListenerFuncs{
		Progress: func(ev model.ProgressEvent) {
			s.apply(e, model.Event{Progress: &ev}, "")
		},
		Outcome: func(o model.Outcome) {
			req := e.task.Request()
			title := ""
			if o.Kind == model.OutcomeSucceeded && o.OutputPath != "" {
				o.OutputPath = platform.ResolveOutputPath(o.OutputPath, req.Format)
				if req.Kind == model.MediaKindAudio {
					if t, err := s.titleReader(o.OutputPath); err == nil {
						title = t
					}
				}
			}
			s.apply(e, model.Event{Outcome: &o}, title)
		},
	}, nil)
}

func (s *Service) apply(e *entry, ev model.Event, title string) {
	s.tasksMutex.Lock()
	e.snapshot.Apply(ev)
	if title != "" {
		e.snapshot.Title = title
	}
	s.publishLocked(e)
	s.tasksMutex.Unlock()

	s.flush()
}

// startNextPendingTask starts pending tasks in FIFO order while we have capacity
func (s *Service) startNextPendingTask() {
	s.tasksMutex.Lock()
	for _, id := range s.order {
		if s.activeCount >= s.maxParallel {
			break
		}
		e := s.tasks[id]
		if e.snapshot.Status == model.TaskStatusPending {
			s.startLocked(e)
		}
	}
	s.tasksMutex.Unlock()

	s.flush()
}

// publishLocked queues a copy of the snapshot for the update callback
func (s *Service) publishLocked(e *entry) {
	s.outbox = append(s.outbox, *e.snapshot)
}

// flush delivers queued snapshots. Only one goroutine delivers at a time; a
// concurrent caller leaves its snapshots to the one already delivering, so
// the callback sees updates in the order they were published.
func (s *Service) flush() {
	s.tasksMutex.Lock()
	if s.flushing {
		s.tasksMutex.Unlock()
		return
	}
	s.flushing = true
	for len(s.outbox) > 0 {
		batch := s.outbox
		s.outbox = nil
		callback := s.onUpdate
		s.tasksMutex.Unlock()

		for i := range batch {
			notify(callback, &batch[i])
		}

		s.tasksMutex.Lock()
	}
	s.flushing = false
	s.tasksMutex.Unlock()
}

// notify calls the update callback if set
func notify(callback func(*model.DownloadTask), task *model.DownloadTask) {
	if callback != nil {
		callback(task)
	}
}

func clampParallel(n int) int {
	if n < MinParallelDownloads {
		return MinParallelDownloads
	}
	if n > MaxParallelDownloads {
		return MaxParallelDownloads
	}
	return n
}

// generateTaskID generates a unique task ID
func generateTaskID() string {
	return TaskIDPrefix + uuid.NewString()
}
