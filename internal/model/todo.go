package model

import "time"

type Todo struct {
	ID          string     `json:"id"`
	Owner       Agent      `json:"owner"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Done        bool       `json:"done"`
	DoneAt      *time.Time `json:"done_at,omitempty"`
	DoneBy      *string    `json:"done_by,omitempty"`
	CategoryIDs []string   `json:"category_ids"`
	AssigneeIDs []string   `json:"assignee_ids"`
	CreatedBy   string     `json:"created_by"`
	UpdatedBy   *string    `json:"updated_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type TodoListParams struct {
	Owner Agent
	Done  *bool
}

// TodoListResult pairs an agent's todos with its categories so clients can
// resolve category labels in one round trip.
type TodoListResult struct {
	Todos      []Todo     `json:"todos"`
	Categories []Category `json:"categories"`
}
