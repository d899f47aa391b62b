package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"task-tracker/internal/models"
)

var (
	ErrNotFound    = errors.New("запись не найдена")
	ErrDuplicateID = errors.New("запись с таким ID уже существует")
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Storage хранит задачи в порядке добавления. Оба драйвера живут только
// в памяти процесса и теряют данные при перезапуске.
type Storage interface {
	AddTask(ctx context.Context, task models.Task) error
	GetAllTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, task models.Task) error
	DeleteTask(ctx context.Context, id string) error
	Close() error
}

// New создает хранилище по имени драйвера из конфигурации.
func New(driver string) (Storage, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryStorage(), nil
	case DriverSQLite:
		return NewSQLiteStorage()
	default:
		return nil, fmt.Errorf("неизвестный драйвер хранилища: %q", driver)
	}
}

// Seed добавляет две демонстрационные задачи, с которыми стартует сервер.
func Seed(ctx context.Context, s Storage, now time.Time) error {
	completedAt := now
	seed := []models.Task{
		{ID: "1", Name: "Learn React", CreatedAt: now},
		{ID: "2", Name: "Build Express API", Completed: true, CompletedAt: &completedAt, CreatedAt: now},
	}
	for _, task := range seed {
		if err := s.AddTask(ctx, task); err != nil {
			return fmt.Errorf("ошибка заполнения хранилища: %w", err)
		}
	}
	return nil
}

// MemoryStorage - упорядоченный слайс с линейным поиском по ID.
type MemoryStorage struct {
	mu    sync.Mutex
	tasks []models.Task
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) AddTask(_ context.Context, task models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(task.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, task.ID)
	}
	m.tasks = append(m.tasks, cloneTask(task))
	return nil
}

func (m *MemoryStorage) GetAllTasks(_ context.Context) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]models.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		tasks = append(tasks, cloneTask(task))
	}
	return tasks, nil
}

func (m *MemoryStorage) GetTask(_ context.Context, id string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	task := cloneTask(m.tasks[i])
	return &task, nil
}

func (m *MemoryStorage) UpdateTask(_ context.Context, task models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(task.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, task.ID)
	}
	m.tasks[i] = cloneTask(task)
	return nil
}

func (m *MemoryStorage) DeleteTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

func (m *MemoryStorage) indexOf(id string) int {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// cloneTask не дает вызывающему коду менять CompletedAt внутри хранилища
func cloneTask(task models.Task) models.Task {
	if task.CompletedAt != nil {
		at := *task.CompletedAt
		task.CompletedAt = &at
	}
	return task
}
