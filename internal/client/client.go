// Package client - HTTP-клиент API трекера задач.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"task-tracker/internal/models"
)

// APIError - ответ сервера с success=false или не-2xx статусом
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
}

// Client ходит в API по базовому адресу коллекции, например http://localhost:5000/api/tasks.
// Повторов и собственных таймаутов нет: запрос ограничен только ctx вызывающего.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) List(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) Create(ctx context.Context, name string) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "", models.CreateTaskRequest{Name: name}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) Rename(ctx context.Context, id, name string) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPut, "/"+url.PathEscape(id), models.RenameTaskRequest{Name: name}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) MarkDone(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPut, "/"+url.PathEscape(id)+"/done", nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete возвращает ID удаленной задачи из ответа сервера
func (c *Client) Delete(ctx context.Context, id string) (string, error) {
	var deleted models.DeletedTask
	if err := c.do(ctx, http.MethodDelete, "/"+url.PathEscape(id), nil, &deleted); err != nil {
		return "", err
	}
	return deleted.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка кодирования запроса: %w", err)
		}
		r = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, c.baseURL+path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("ошибка разбора data: %w", err)
		}
	}
	return nil
}
