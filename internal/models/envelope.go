package models

// Envelope оборачивает каждый ответ API.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
	Success bool   `json:"success"`
}
