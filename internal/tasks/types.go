package tasks

import "smart-tasks-backend/internal/tasks/model"

type (
	GenerateRequest   = model.GenerateRequest
	CreateTaskRequest = model.CreateTaskRequest
	UpdateTaskRequest = model.UpdateTaskRequest
)

type errorResponse struct {
	Error string `json:"error"`
}
