package model

type GenerateRequest struct {
	Text     string `json:"text"`
	Timezone string `json:"timezone,omitempty"`
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	ParentID    string `json:"parentId,omitempty"`
}

// UpdateTaskRequest sets the status directly or, when IsCompleted is present,
// to DONE / TODO.
type UpdateTaskRequest struct {
	ID          string `json:"id"`
	Status      Status `json:"status,omitempty"`
	IsCompleted *bool  `json:"isCompleted,omitempty"`
}
