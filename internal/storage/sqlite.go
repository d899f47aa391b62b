package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"task-tracker/internal/models"

	_ "modernc.org/sqlite"
)

// SQLiteStorage держит задачи в приватной базе ":memory:".
// Соединение ровно одно: каждое новое соединение к ":memory:" открывает пустую базу.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage() (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия БД: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStorage{db: db}, nil
}

func createTables(db *sql.DB) error {
	// seq задает порядок добавления, id - внешний идентификатор задачи
	createTasksTable := `
	CREATE TABLE IF NOT EXISTS tasks (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		completed_at INTEGER,
		created_at INTEGER NOT NULL
	)`

	if _, err := db.Exec(createTasksTable); err != nil {
		return fmt.Errorf("ошибка создания таблицы tasks: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) AddTask(ctx context.Context, task models.Task) error {
	query := `
	INSERT INTO tasks (id, name, completed, completed_at, created_at)
	VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		task.ID, task.Name, task.Completed, toNullUnix(task.CompletedAt), task.CreatedAt.UnixNano(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrDuplicateID, task.ID)
		}
		return fmt.Errorf("ошибка добавления задачи: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetAllTasks(ctx context.Context) ([]models.Task, error) {
	query := `
	SELECT id, name, completed, completed_at, created_at
	FROM tasks ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStorage) GetTask(ctx context.Context, id string) (*models.Task, error) {
	query := `
	SELECT id, name, completed, completed_at, created_at
	FROM tasks WHERE id = ?`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &task, nil
}

func (s *SQLiteStorage) UpdateTask(ctx context.Context, task models.Task) error {
	query := `
	UPDATE tasks
	SET name = ?, completed = ?, completed_at = ?
	WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		task.Name, task.Completed, toNullUnix(task.CompletedAt), task.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(result, task.ID)
}

func (s *SQLiteStorage) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return err
	}
	return checkAffected(result, id)
}

func checkAffected(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var task models.Task
	var completedAt sql.NullInt64
	var createdAt int64

	if err := row.Scan(&task.ID, &task.Name, &task.Completed, &completedAt, &createdAt); err != nil {
		return models.Task{}, err
	}

	task.CreatedAt = time.Unix(0, createdAt).UTC()
	if completedAt.Valid {
		at := time.Unix(0, completedAt.Int64).UTC()
		task.CompletedAt = &at
	}
	return task, nil
}

func toNullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}
