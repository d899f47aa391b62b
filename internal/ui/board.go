// Package ui - состояние клиентского интерфейса списка задач без привязки к отрисовке.
//
// Board зеркалит список задач сервера и обновляет локальную копию по ответу
// каждого действия, не перезапрашивая список целиком.
package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"task-tracker/internal/client"
	"task-tracker/internal/models"
)

var (
	ErrBlankName     = errors.New("Task name cannot be empty")
	ErrUnknownTask   = errors.New("задача не найдена в локальном списке")
	ErrTaskCompleted = errors.New("выполненную задачу нельзя редактировать")
	ErrNotEditing    = errors.New("режим редактирования не активен")
)

// Тексты для сбоев связи с сервером
const (
	msgLoadFailed     = "Failed to connect to the backend API."
	msgAddFailed      = "Error adding task."
	msgDeleteFailed   = "Error deleting task."
	msgMarkDoneFailed = "Error marking task as done."
	msgRenameFailed   = "Error updating task."
)

// API - операции сервера, нужные доске. Реализуется *client.Client.
type API interface {
	List(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, name string) (*models.Task, error)
	Rename(ctx context.Context, id, name string) (*models.Task, error)
	MarkDone(ctx context.Context, id string) (*models.Task, error)
	Delete(ctx context.Context, id string) (string, error)
}

var _ API = (*client.Client)(nil)

// View - снимок состояния для отрисовки
type View struct {
	Loading   bool
	LoadError string // не пусто: вместо списка показывается блок ошибки
	Notice    string // ошибка последнего действия, показывается рядом со списком
	Tasks     []models.Task
	Input     string
	EditingID string
	Draft     string
}

type Board struct {
	mu  sync.Mutex
	api API

	tasks     []models.Task
	loading   bool
	loaded    bool
	loadDone  chan struct{} // закрывается по завершении первичной загрузки
	loadErr   string
	notice    string
	input     string
	editingID string
	draft     string
}

func NewBoard(api API) *Board {
	return &Board{api: api, loading: true, loadDone: make(chan struct{})}
}

// Load выполняет первичную загрузку. Повторный вызов запроса не делает:
// он дожидается первой загрузки, ошибка которой остается постоянной.
func (b *Board) Load(ctx context.Context) error {
	b.mu.Lock()
	if b.loaded {
		done := b.loadDone
		b.mu.Unlock()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	b.loaded = true
	b.mu.Unlock()

	tasks, err := b.api.List(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	defer close(b.loadDone)
	b.loading = false
	if err != nil {
		b.loadErr = failureText(err, msgLoadFailed)
		return err
	}
	b.tasks = tasks
	return nil
}

func (b *Board) SetInput(s string) {
	b.mu.Lock()
	b.input = s
	b.mu.Unlock()
}

// Add создает задачу из name. Пустое после обрезки имя отклоняется без запроса.
// При успехе поле ввода очищается, при ошибке остается как было.
func (b *Board) Add(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrBlankName
	}
	b.SetInput(name)

	task, err := b.api.Create(ctx, name)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.notice = failureText(err, msgAddFailed)
		return err
	}
	b.notice = ""
	b.tasks = append(b.tasks, *task)
	b.input = ""
	return nil
}

// Delete убирает задачу локально только после подтверждения сервера
func (b *Board) Delete(ctx context.Context, id string) error {
	deletedID, err := b.api.Delete(ctx, id)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.notice = failureText(err, msgDeleteFailed)
		return err
	}
	if deletedID == "" {
		deletedID = id
	}
	b.notice = ""
	if i := b.indexOf(deletedID); i >= 0 {
		b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
	}
	if b.editingID == deletedID {
		b.editingID, b.draft = "", ""
	}
	return nil
}

func (b *Board) MarkDone(ctx context.Context, id string) error {
	task, err := b.api.MarkDone(ctx, id)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.notice = failureText(err, msgMarkDoneFailed)
		return err
	}
	b.notice = ""
	if i := b.indexOf(task.ID); i >= 0 {
		b.tasks[i].Completed = task.Completed
		b.tasks[i].CompletedAt = copyTime(task.CompletedAt)
	}
	if b.editingID == task.ID {
		b.editingID, b.draft = "", ""
	}
	return nil
}

// StartEdit включает режим редактирования задачи id, черновик - текущее имя
func (b *Board) StartEdit(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return ErrUnknownTask
	}
	if b.tasks[i].Completed {
		return ErrTaskCompleted
	}
	b.editingID = id
	b.draft = b.tasks[i].Name
	return nil
}

func (b *Board) SetDraft(s string) {
	b.mu.Lock()
	b.draft = s
	b.mu.Unlock()
}

func (b *Board) CancelEdit() {
	b.mu.Lock()
	b.editingID, b.draft = "", ""
	b.mu.Unlock()
}

// SubmitEdit отправляет черновик. При ошибке режим редактирования остается открытым.
func (b *Board) SubmitEdit(ctx context.Context) error {
	b.mu.Lock()
	id, draft := b.editingID, b.draft
	b.mu.Unlock()

	if id == "" {
		return ErrNotEditing
	}
	if strings.TrimSpace(draft) == "" {
		return ErrBlankName
	}

	task, err := b.api.Rename(ctx, id, draft)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.notice = failureText(err, msgRenameFailed)
		return err
	}
	b.notice = ""
	if i := b.indexOf(task.ID); i >= 0 {
		b.tasks[i].Name = task.Name
	}
	if b.editingID == id {
		b.editingID, b.draft = "", ""
	}
	return nil
}

func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	tasks := make([]models.Task, len(b.tasks))
	for i, t := range b.tasks {
		t.CompletedAt = copyTime(t.CompletedAt)
		tasks[i] = t
	}
	return View{
		Loading:   b.loading,
		LoadError: b.loadErr,
		Notice:    b.notice,
		Tasks:     tasks,
		Input:     b.input,
		EditingID: b.editingID,
		Draft:     b.draft,
	}
}

func (b *Board) indexOf(id string) int {
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// failureText: сообщение сервера, если он ответил, иначе общий текст действия
func failureText(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
