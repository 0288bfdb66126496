package domain

import "time"

// Task represents a user-owned to-do item.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ActivityDate is the day a task contributes to the activity grid.
// Rows that predate the completed_at column fall back to their creation day.
func (t *Task) ActivityDate() time.Time {
	if t == nil {
		return time.Time{}
	}
	if t.CompletedAt != nil {
		return *t.CompletedAt
	}
	return t.CreatedAt
}
