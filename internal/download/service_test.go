package download

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbdl/hb-downloader/internal/model"
)

// gatedEngine keeps each download running until the test releases its URL
type gatedEngine struct {
	mu      sync.Mutex
	gates   map[string]chan error
	started chan string
}

func newGatedEngine() *gatedEngine {
	return &gatedEngine{
		gates:   make(map[string]chan error),
		started: make(chan string, 32),
	}
}

func (g *gatedEngine) gate(url string) chan error {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[url]
	if !ok {
		ch = make(chan error, 1)
		g.gates[url] = ch
	}
	return ch
}

// release finishes the download of url, failing it when err is non-nil
func (g *gatedEngine) release(url string, err error) {
	g.gate(url) <- err
}

func (g *gatedEngine) Download(ctx context.Context, url string, opts Options, hook ProgressHook) (EngineResult, error) {
	g.started <- url
	gate := g.gate(url)

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case err := <-gate:
			if err != nil {
				return EngineResult{}, err
			}
			_ = hook(EngineStatus{State: EngineStateFinished})
			return EngineResult{}, nil
		case <-ticker.C:
			if err := hook(downloading("50.0%")); err != nil {
				return EngineResult{}, err
			}
		case <-ctx.Done():
			return EngineResult{}, ctx.Err()
		}
	}
}

func (g *gatedEngine) waitStarted(t *testing.T, url string) {
	t.Helper()
	select {
	case got := <-g.started:
		require.Equal(t, url, got)
	case <-time.After(5 * time.Second):
		t.Fatalf("download of %s never started", url)
	}
}

func (g *gatedEngine) assertNotStarted(t *testing.T) {
	t.Helper()
	select {
	case got := <-g.started:
		t.Fatalf("unexpected download of %s", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func requestFor(n int) model.Request {
	return model.Request{
		URL:     fmt.Sprintf("https://cdn.example.com/media/clip%d", n),
		Kind:    model.MediaKindVideo,
		Quality: "1080p",
		Format:  "mp4",
	}
}

func waitTask(t *testing.T, s *Service, id string) *model.DownloadTask {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	task, err := s.Wait(ctx, id)
	require.NoError(t, err)
	return task
}

func TestService_AddTask(t *testing.T) {
	engine := newGatedEngine()
	s := NewService(engine, t.TempDir(), 1, nil)

	req := requestFor(1)
	task, err := s.AddTask(req)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(task.ID, TaskIDPrefix))
	assert.Len(t, task.ID, len(TaskIDPrefix)+36)
	assert.Equal(t, model.TaskStatusRunning, task.Status)
	assert.Equal(t, req, task.Request)

	// snapshots are copies
	task.Status = model.TaskStatusFailed
	got, ok := s.GetTask(task.ID)
	require.True(t, ok)
	assert.Equal(t, model.TaskStatusRunning, got.Status)

	engine.waitStarted(t, req.URL)
	engine.release(req.URL, nil)

	done := waitTask(t, s, task.ID)
	assert.Equal(t, model.TaskStatusSucceeded, done.Status)
	assert.Equal(t, 100, done.Percent)
	assert.False(t, done.StartedAt.IsZero())
	assert.False(t, done.FinishedAt.IsZero())
}

func TestService_AddTask_ConfigurationError(t *testing.T) {
	s := NewService(newGatedEngine(), t.TempDir(), 1, nil)

	req := requestFor(1)
	req.Format = "avi"
	_, err := s.AddTask(req)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "video format", cfgErr.Field)
	assert.Empty(t, s.GetAllTasks())
}

func TestService_AddTask_DuplicateURL(t *testing.T) {
	engine := newGatedEngine()
	s := NewService(engine, t.TempDir(), 1, nil)

	first, err := s.AddTask(requestFor(1))
	require.NoError(t, err)

	_, err = s.AddTask(requestFor(1))
	assert.Error(t, err)

	engine.waitStarted(t, requestFor(1).URL)
	engine.release(requestFor(1).URL, nil)
	waitTask(t, s, first.ID)

	second, err := s.AddTask(requestFor(1))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	engine.waitStarted(t, requestFor(1).URL)
	engine.release(requestFor(1).URL, nil)
	waitTask(t, s, second.ID)
}

func TestService_StopTask(t *testing.T) {
	engine := newGatedEngine()
	s := NewService(engine, t.TempDir(), 1, nil)

	task, err := s.AddTask(requestFor(1))
	require.NoError(t, err)
	engine.waitStarted(t, requestFor(1).URL)

	require.NoError(t, s.StopTask(task.ID))

	done := waitTask(t, s, task.ID)
	assert.Equal(t, model.TaskStatusCancelled, done.Status)
	assert.Empty(t, done.LastError)

	assert.ErrorIs(t, s.StopTask(task.ID), ErrTaskNotActive)
	assert.ErrorIs(t, s.StopTask("task-missing"), ErrTaskNotFound)
}

func TestService_ParallelLimit(t *testing.T) {
	engine := newGatedEngine()
	s := NewService(engine, t.TempDir(), 1, nil)

	first, err := s.AddTask(requestFor(1))
	require.NoError(t, err)
	second, err := s.AddTask(requestFor(2))
	require.NoError(t, err)

	assert.Equal(t, model.TaskStatusPending, second.Status)
	engine.waitStarted(t, requestFor(1).URL)
	engine.assertNotStarted(t)

	engine.release(requestFor(1).URL, nil)
	waitTask(t, s, first.ID)

	engine.waitStarted(t, requestFor(2).URL)
	got, ok := s.GetTask(second.ID)
	require.True(t, ok)
	assert.Equal(t, model.TaskStatusRunning, got.Status)

	engine.release(requestFor(2).URL, nil)
	assert.Equal(t, model.TaskStatusSucceeded, waitTask(t, s, second.ID).Status)
}

func TestService_StopPendingTask(t *testing.T) {
	engine := newGatedEngine()
	s := NewService(engine, t.TempDir(), 1, nil)

	first, err := s.AddTask(requestFor(1))
	require.NoError(t, err)
	second, err := s.AddTask(requestFor(2))
	require.NoError(t, err)
	engine.waitStarted(t, requestFor(1).URL)

	require.NoError(t, s.StopTask(second.ID))
	assert.Equal(t, model.TaskStatusCancelled, waitTask(t, s, second.ID).Status)

	engine.release(requestFor(1).URL, nil)
	waitTask(t, s, first.ID)
	engine.assertNotStarted(t)
}

func TestService_SetMaxParallelDownloads(t *testing.T) {
	engine := newGatedEngine()
	s := NewService(engine, t.TempDir(), 0, nil)
	assert.Equal(t, MinParallelDownloads, s.maxParallel)

	var ids []string
	for i := 1; i <= 3; i++ {
		task, err := s.AddTask(requestFor(i))
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}
	engine.waitStarted(t, requestFor(1).URL)

	s.SetMaxParallelDownloads(50)
	assert.Equal(t, MaxParallelDownloads, s.maxParallel)

	var started []string
	for len(started) < 2 {
		select {
		case url := <-engine.started:
			started = append(started, url)
		case <-time.After(5 * time.Second):
			t.Fatal("pending downloads were not started")
		}
	}
	assert.ElementsMatch(t, []string{requestFor(2).URL, requestFor(3).URL}, started)

	for i, id := range ids {
		engine.release(requestFor(i+1).URL, nil)
		assert.Equal(t, model.TaskStatusSucceeded, waitTask(t, s, id).Status)
	}
}

func TestService_RestartTask(t *testing.T) {
	engine := newGatedEngine()
	s := NewService(engine, t.TempDir(), 1, nil)

	task, err := s.AddTask(requestFor(1))
	require.NoError(t, err)
	engine.waitStarted(t, requestFor(1).URL)

	_, err = s.RestartTask(task.ID)
	assert.ErrorIs(t, err, ErrTaskActive)

	engine.release(requestFor(1).URL, errors.New("ERROR: unable to download webpage: HTTP Error 403: Forbidden"))
	failed := waitTask(t, s, task.ID)
	assert.Equal(t, model.TaskStatusFailed, failed.Status)
	assert.Equal(t, "ERROR: unable to download webpage: HTTP Error 403: Forbidden", failed.LastError)

	restarted, err := s.RestartTask(task.ID)
	require.NoError(t, err)
	assert.NotEqual(t, task.ID, restarted.ID)
	assert.Equal(t, task.Request, restarted.Request)

	_, ok := s.GetTask(task.ID)
	assert.False(t, ok)

	engine.waitStarted(t, requestFor(1).URL)
	engine.release(requestFor(1).URL, nil)
	assert.Equal(t, model.TaskStatusSucceeded, waitTask(t, s, restarted.ID).Status)

	_, err = s.RestartTask("task-missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestService_RemoveTask(t *testing.T) {
	engine := newGatedEngine()
	s := NewService(engine, t.TempDir(), 1, nil)

	task, err := s.AddTask(requestFor(1))
	require.NoError(t, err)
	engine.waitStarted(t, requestFor(1).URL)

	assert.ErrorIs(t, s.RemoveTask(task.ID), ErrTaskActive)

	engine.release(requestFor(1).URL, nil)
	waitTask(t, s, task.ID)

	require.NoError(t, s.RemoveTask(task.ID))
	_, ok := s.GetTask(task.ID)
	assert.False(t, ok)
	assert.Empty(t, s.GetAllTasks())
	assert.ErrorIs(t, s.RemoveTask(task.ID), ErrTaskNotFound)
}

func TestService_GetAllTasksOrder(t *testing.T) {
	engine := newGatedEngine()
	s := NewService(engine, t.TempDir(), 1, nil)

	var ids []string
	for i := 1; i <= 3; i++ {
		task, err := s.AddTask(requestFor(i))
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	all := s.GetAllTasks()
	require.Len(t, all, 3)
	for i, task := range all {
		assert.Equal(t, ids[i], task.ID)
	}

	for i, id := range ids {
		engine.waitStarted(t, requestFor(i+1).URL)
		engine.release(requestFor(i+1).URL, nil)
		waitTask(t, s, id)
	}
}

func TestService_UpdateCallbackOrder(t *testing.T) {
	engine := newGatedEngine()
	s := NewService(engine, t.TempDir(), 1, nil)

	var mu sync.Mutex
	var updates []model.DownloadTask
	s.SetUpdateCallback(func(task *model.DownloadTask) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, *task)
	})

	task, err := s.AddTask(requestFor(1))
	require.NoError(t, err)
	engine.waitStarted(t, requestFor(1).URL)
	time.Sleep(10 * time.Millisecond)
	engine.release(requestFor(1).URL, nil)
	waitTask(t, s, task.ID)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(updates) > 0 && updates[len(updates)-1].Status.IsFinished()
	}, 5*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	rank := map[model.TaskStatus]int{
		model.TaskStatusPending:   0,
		model.TaskStatusRunning:   1,
		model.TaskStatusSucceeded: 2,
	}
	assert.Equal(t, model.TaskStatusPending, updates[0].Status)
	last := updates[len(updates)-1]
	assert.Equal(t, model.TaskStatusSucceeded, last.Status)
	assert.Equal(t, 100, last.Percent)

	prevRank, prevPercent := 0, 0
	for _, u := range updates {
		assert.Equal(t, task.ID, u.ID)
		r, ok := rank[u.Status]
		require.True(t, ok, "unexpected status %s", u.Status)
		assert.GreaterOrEqual(t, r, prevRank)
		assert.GreaterOrEqual(t, u.Percent, prevPercent)
		prevRank, prevPercent = r, u.Percent
	}
}

func TestService_CallbackMayCallService(t *testing.T) {
	engine := newGatedEngine()
	s := NewService(engine, t.TempDir(), 1, nil)

	seen := make(chan model.TaskStatus, 64)
	s.SetUpdateCallback(func(task *model.DownloadTask) {
		got, ok := s.GetTask(task.ID)
		if ok {
			select {
			case seen <- got.Status:
			default:
			}
		}
	})

	task, err := s.AddTask(requestFor(1))
	require.NoError(t, err)
	engine.waitStarted(t, requestFor(1).URL)
	engine.release(requestFor(1).URL, nil)
	waitTask(t, s, task.ID)

	assert.NotEmpty(t, seen)
}

func TestService_AudioTitle(t *testing.T) {
	engine := scripted(EngineResult{OutputPath: "/dl/Song clip7.mp3"})
	s := NewService(engine, t.TempDir(), 1, nil)
	s.titleReader = func(path string) (string, error) {
		assert.Equal(t, "/dl/Song clip7.mp3", path)
		return "Artist - Song", nil
	}

	task, err := s.AddTask(model.Request{
		URL:     "https://cdn.example.com/media/clip7",
		Kind:    model.MediaKindAudio,
		Quality: "192k",
		Format:  "mp3",
	})
	require.NoError(t, err)

	done := waitTask(t, s, task.ID)
	assert.Equal(t, model.TaskStatusSucceeded, done.Status)
	assert.Equal(t, "Artist - Song", done.Title)
	assert.Equal(t, "Artist - Song", done.GetDisplayTitle())
}

func TestService_Wait_Unknown(t *testing.T) {
	s := NewService(newGatedEngine(), t.TempDir(), 1, nil)
	_, err := s.Wait(context.Background(), "task-missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestService_ImplementsDownloader(t *testing.T) {
	var _ Downloader = (*Service)(nil)
}
