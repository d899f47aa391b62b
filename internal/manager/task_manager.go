package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"task-tracker/internal/models"
	"task-tracker/internal/storage"
)

var (
	ErrEmptyName        = errors.New("название задачи обязательно")
	ErrTaskNotFound     = errors.New("задача не найдена")
	ErrAlreadyCompleted = errors.New("задача уже выполнена")
)

const (
	opList   = "list"
	opAdd    = "add"
	opRename = "rename"
	opDone   = "done"
	opDelete = "delete"
)

var (
	operationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasktracker_operations_total",
			Help: "Total number of task operations by result",
		},
		[]string{"op", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasktracker_operation_duration_seconds",
			Help:    "Duration of task operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	taskNameLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tasktracker_task_name_length_bytes",
			Help:    "Length distribution of task names",
			Buckets: []float64{10, 50, 100, 500},
		},
	)
)

// TaskManager - единственный владелец хранилища задач.
// Мьютекс сериализует все операции, поэтому проверка и изменение задачи атомарны.
type TaskManager struct {
	mu      sync.Mutex
	storage storage.Storage
	now     func() time.Time
	newID   func() string
}

type Option func(*TaskManager)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(tm *TaskManager) { tm.now = now }
}

// WithIDGenerator подменяет генератор ID (для тестов)
func WithIDGenerator(gen func() string) Option {
	return func(tm *TaskManager) { tm.newID = gen }
}

func NewTaskManager(s storage.Storage, opts ...Option) *TaskManager {
	tm := &TaskManager{
		storage: s,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

func observe(op string, start time.Time, err *error) {
	status := "success"
	if *err != nil {
		status = "error"
	}
	operationCount.WithLabelValues(op, status).Inc()
	operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (tm *TaskManager) GetAllTasks(ctx context.Context) (tasks []models.Task, err error) {
	defer observe(opList, time.Now(), &err)

	tm.mu.Lock()
	defer tm.mu.Unlock()

	return tm.storage.GetAllTasks(ctx)
}

func (tm *TaskManager) GetTask(ctx context.Context, id string) (*models.Task, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	return tm.getTask(ctx, id)
}

func (tm *TaskManager) AddTask(ctx context.Context, name string) (task *models.Task, err error) {
	defer observe(opAdd, time.Now(), &err)

	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	created := models.Task{
		ID:        tm.newID(),
		Name:      name,
		Completed: false,
		CreatedAt: tm.now(),
	}
	if err := tm.storage.AddTask(ctx, created); err != nil {
		return nil, fmt.Errorf("ошибка добавления задачи: %w", err)
	}

	taskNameLength.Observe(float64(len(name)))
	return &created, nil
}

// RenameTask меняет только название. Неизвестный ID проверяется раньше названия.
func (tm *TaskManager) RenameTask(ctx context.Context, id, name string) (task *models.Task, err error) {
	defer observe(opRename, time.Now(), &err)

	tm.mu.Lock()
	defer tm.mu.Unlock()

	task, err = tm.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	task.Name = name
	if err := tm.storage.UpdateTask(ctx, *task); err != nil {
		return nil, wrapStorageErr(err)
	}

	taskNameLength.Observe(float64(len(name)))
	return task, nil
}

// MarkDone переводит задачу Active -> Completed. Повторный вызов - ошибка, а не no-op.
func (tm *TaskManager) MarkDone(ctx context.Context, id string) (task *models.Task, err error) {
	defer observe(opDone, time.Now(), &err)

	tm.mu.Lock()
	defer tm.mu.Unlock()

	task, err = tm.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(stateOf(task), stateCompleted) {
		return nil, ErrAlreadyCompleted
	}

	completedAt := tm.now()
	task.Completed = true
	task.CompletedAt = &completedAt
	if err := tm.storage.UpdateTask(ctx, *task); err != nil {
		return nil, wrapStorageErr(err)
	}
	return task, nil
}

func (tm *TaskManager) DeleteTask(ctx context.Context, id string) (err error) {
	defer observe(opDelete, time.Now(), &err)

	tm.mu.Lock()
	defer tm.mu.Unlock()

	if err := tm.storage.DeleteTask(ctx, id); err != nil {
		return wrapStorageErr(err)
	}
	return nil
}

func (tm *TaskManager) getTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := tm.storage.GetTask(ctx, id)
	if err != nil {
		return nil, wrapStorageErr(err)
	}
	return task, nil
}

func wrapStorageErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrTaskNotFound, err)
	}
	return err
}
