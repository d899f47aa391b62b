package ui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/client"
	"task-tracker/internal/manager"
	"task-tracker/internal/models"
	"task-tracker/internal/server"
	"task-tracker/internal/storage"
)

var errOffline = errors.New("connection refused")

// fakeAPI отвечает заранее заданными результатами и считает вызовы
type fakeAPI struct {
	mu    sync.Mutex
	tasks []models.Task
	err   error
	calls int

	// если заданы, List сообщает о начале запроса и ждет listGate
	listStarted chan struct{}
	listGate    chan struct{}
}

func (f *fakeAPI) List(ctx context.Context) ([]models.Task, error) {
	if f.listStarted != nil {
		close(f.listStarted)
		<-f.listGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Task(nil), f.tasks...), nil
}

func (f *fakeAPI) Create(ctx context.Context, name string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	t := models.Task{ID: "new-" + strconv.Itoa(len(f.tasks)), Name: name}
	f.tasks = append(f.tasks, t)
	return &t, nil
}

func (f *fakeAPI) Rename(ctx context.Context, id, name string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.Task{ID: id, Name: name}, nil
}

func (f *fakeAPI) MarkDone(ctx context.Context, id string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.Task{ID: id, Completed: true, CompletedAt: &now}, nil
}

func (f *fakeAPI) Delete(ctx context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return id, nil
}

func seededFake() *fakeAPI {
	done := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &fakeAPI{tasks: []models.Task{
		{ID: "1", Name: "Learn React"},
		{ID: "2", Name: "Build Express API", Completed: true, CompletedAt: &done},
	}}
}

func loadedBoard(t *testing.T, api *fakeAPI) *Board {
	t.Helper()
	b := NewBoard(api)
	require.NoError(t, b.Load(context.Background()))
	return b
}

func TestBoardLoad(t *testing.T) {
	api := seededFake()
	b := NewBoard(api)
	assert.True(t, b.View().Loading)

	require.NoError(t, b.Load(context.Background()))
	v := b.View()
	assert.False(t, v.Loading)
	assert.Empty(t, v.LoadError)
	assert.Len(t, v.Tasks, 2)
}

func TestBoardLoadFailureIsPersistent(t *testing.T) {
	api := &fakeAPI{err: errOffline}
	b := NewBoard(api)

	require.ErrorIs(t, b.Load(context.Background()), errOffline)
	v := b.View()
	assert.False(t, v.Loading)
	assert.Equal(t, msgLoadFailed, v.LoadError)

	// повторной загрузки нет
	api.err = nil
	require.NoError(t, b.Load(context.Background()))
	assert.Equal(t, 1, api.calls)
	assert.Equal(t, msgLoadFailed, b.View().LoadError)
}

func TestBoardSecondLoadWaitsForFirst(t *testing.T) {
	api := seededFake()
	api.listStarted = make(chan struct{})
	api.listGate = make(chan struct{})
	b := NewBoard(api)
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- b.Load(ctx) }()
	<-api.listStarted

	second := make(chan error, 1)
	go func() { second <- b.Load(ctx) }()

	select {
	case <-second:
		t.Fatal("повторная загрузка завершилась раньше первой")
	case <-time.After(50 * time.Millisecond):
	}

	close(api.listGate)
	require.NoError(t, <-first)
	require.NoError(t, <-second)

	v := b.View()
	assert.False(t, v.Loading)
	assert.Len(t, v.Tasks, 2)
	assert.Equal(t, 1, api.calls)
}

func TestBoardLoadWaitRespectsContext(t *testing.T) {
	api := seededFake()
	api.listStarted = make(chan struct{})
	api.listGate = make(chan struct{})
	b := NewBoard(api)

	go func() { _ = b.Load(context.Background()) }()
	<-api.listStarted

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.Load(ctx), context.Canceled)
	assert.True(t, b.View().Loading)
	close(api.listGate)
}

// Двойная отправка не отсекается: каждый Add - отдельный запрос Create
func TestBoardConcurrentAddsIssueSeparateRequests(t *testing.T) {
	api := seededFake()
	b := loadedBoard(t, api)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = b.Add(ctx, "Write spec")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	api.mu.Lock()
	assert.Equal(t, 3, api.calls)
	api.mu.Unlock()

	v := b.View()
	require.Len(t, v.Tasks, 4)
	assert.Equal(t, "Write spec", v.Tasks[2].Name)
	assert.Equal(t, "Write spec", v.Tasks[3].Name)
	assert.NotEqual(t, v.Tasks[2].ID, v.Tasks[3].ID)
}

func TestBoardAdd(t *testing.T) {
	api := seededFake()
	b := loadedBoard(t, api)

	b.SetInput("Write spec")
	require.NoError(t, b.Add(context.Background(), "Write spec"))

	v := b.View()
	require.Len(t, v.Tasks, 3)
	assert.Equal(t, "Write spec", v.Tasks[2].Name)
	assert.Empty(t, v.Input)
}

func TestBoardAddBlankNameSkipsRequest(t *testing.T) {
	api := seededFake()
	b := loadedBoard(t, api)

	assert.ErrorIs(t, b.Add(context.Background(), "   "), ErrBlankName)
	assert.Equal(t, 1, api.calls)
	assert.Len(t, b.View().Tasks, 2)
}

func TestBoardAddFailureKeepsInput(t *testing.T) {
	api := seededFake()
	b := loadedBoard(t, api)
	api.err = errOffline

	require.Error(t, b.Add(context.Background(), "Write spec"))
	v := b.View()
	assert.Equal(t, "Write spec", v.Input)
	assert.Equal(t, msgAddFailed, v.Notice)
	// список остается видимым
	assert.Empty(t, v.LoadError)
	assert.Len(t, v.Tasks, 2)
}

func TestBoardDelete(t *testing.T) {
	api := seededFake()
	b := loadedBoard(t, api)
	require.NoError(t, b.StartEdit("1"))

	require.NoError(t, b.Delete(context.Background(), "1"))
	v := b.View()
	require.Len(t, v.Tasks, 1)
	assert.Equal(t, "2", v.Tasks[0].ID)
	assert.Empty(t, v.EditingID)
}

func TestBoardDeleteFailureKeepsTask(t *testing.T) {
	api := seededFake()
	b := loadedBoard(t, api)
	api.err = &client.APIError{Status: http.StatusNotFound, Message: "Task not found"}

	require.Error(t, b.Delete(context.Background(), "1"))
	v := b.View()
	assert.Len(t, v.Tasks, 2)
	assert.Equal(t, "Task not found", v.Notice)
}

func TestBoardMarkDone(t *testing.T) {
	api := seededFake()
	b := loadedBoard(t, api)

	require.NoError(t, b.MarkDone(context.Background(), "1"))
	v := b.View()
	assert.True(t, v.Tasks[0].Completed)
	require.NotNil(t, v.Tasks[0].CompletedAt)
	assert.Equal(t, "Learn React", v.Tasks[0].Name)
}

func TestBoardNoticeClearedOnSuccess(t *testing.T) {
	api := seededFake()
	b := loadedBoard(t, api)

	api.err = errOffline
	require.Error(t, b.MarkDone(context.Background(), "1"))
	assert.Equal(t, msgMarkDoneFailed, b.View().Notice)

	api.err = nil
	require.NoError(t, b.MarkDone(context.Background(), "1"))
	assert.Empty(t, b.View().Notice)
}

func TestBoardEdit(t *testing.T) {
	api := seededFake()
	b := loadedBoard(t, api)

	require.NoError(t, b.StartEdit("1"))
	v := b.View()
	assert.Equal(t, "1", v.EditingID)
	assert.Equal(t, "Learn React", v.Draft)

	b.SetDraft("Learn Go")
	require.NoError(t, b.SubmitEdit(context.Background()))
	v = b.View()
	assert.Equal(t, "Learn Go", v.Tasks[0].Name)
	assert.Empty(t, v.EditingID)
	assert.Empty(t, v.Draft)
}

func TestBoardEditRules(t *testing.T) {
	api := seededFake()
	b := loadedBoard(t, api)

	assert.ErrorIs(t, b.StartEdit("nope"), ErrUnknownTask)
	assert.ErrorIs(t, b.StartEdit("2"), ErrTaskCompleted)
	assert.ErrorIs(t, b.SubmitEdit(context.Background()), ErrNotEditing)

	require.NoError(t, b.StartEdit("1"))
	b.SetDraft("  ")
	assert.ErrorIs(t, b.SubmitEdit(context.Background()), ErrBlankName)
	assert.Equal(t, "1", b.View().EditingID)

	b.CancelEdit()
	assert.Empty(t, b.View().EditingID)
}

func TestBoardEditFailureKeepsEditMode(t *testing.T) {
	api := seededFake()
	b := loadedBoard(t, api)
	require.NoError(t, b.StartEdit("1"))
	b.SetDraft("Learn Go")
	api.err = errOffline

	require.Error(t, b.SubmitEdit(context.Background()))
	v := b.View()
	assert.Equal(t, "1", v.EditingID)
	assert.Equal(t, "Learn Go", v.Draft)
	assert.Equal(t, "Learn React", v.Tasks[0].Name)
	assert.Equal(t, msgRenameFailed, v.Notice)
}

func TestBoardViewIsSnapshot(t *testing.T) {
	b := loadedBoard(t, seededFake())

	v := b.View()
	v.Tasks[0].Name = "changed"
	*v.Tasks[1].CompletedAt = time.Time{}

	v = b.View()
	assert.Equal(t, "Learn React", v.Tasks[0].Name)
	assert.False(t, v.Tasks[1].CompletedAt.IsZero())
}

func TestBoardAgainstServer(t *testing.T) {
	s := storage.NewMemoryStorage()
	require.NoError(t, storage.Seed(context.Background(), s, time.Now().UTC()))
	ts := httptest.NewServer(server.NewRouter(manager.NewTaskManager(s)))
	defer ts.Close()

	ctx := context.Background()
	b := NewBoard(client.New(ts.URL+"/api/tasks", ts.Client()))
	require.NoError(t, b.Load(ctx))
	require.NoError(t, b.Add(ctx, "Write spec"))

	v := b.View()
	require.Len(t, v.Tasks, 3)
	id := v.Tasks[2].ID

	require.NoError(t, b.MarkDone(ctx, id))
	require.Error(t, b.MarkDone(ctx, id))
	assert.Equal(t, "Task is already completed", b.View().Notice)

	require.NoError(t, b.Delete(ctx, id))
	assert.Len(t, b.View().Tasks, 2)
}
