package models

import "time"

// Task - одна запись трекера. CompletedAt заполнен тогда и только тогда, когда Completed == true.
type Task struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// CreateTaskRequest - тело POST /api/tasks
type CreateTaskRequest struct {
	Name string `json:"name" validate:"notblank"`
}

// RenameTaskRequest - тело PUT /api/tasks/{id}
type RenameTaskRequest struct {
	Name string `json:"name" validate:"notblank"`
}

// DeletedTask - data ответа на удаление
type DeletedTask struct {
	ID string `json:"id"`
}
