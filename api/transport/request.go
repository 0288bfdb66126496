package transport

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest exchanges credentials for a bearer token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// TaskCreateRequest adds a task. DueDate is RFC3339 when present.
type TaskCreateRequest struct {
	Title   string `json:"title"`
	DueDate string `json:"dueDate,omitempty"`
}

// TaskUpdateRequest patches a task; absent fields stay unchanged.
type TaskUpdateRequest struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	DueDate   *string `json:"dueDate,omitempty"`
}

// TodoistCreateRequest adds a task to the external to-do service.
type TodoistCreateRequest struct {
	Content string `json:"content"`
}

// SyncResponse reports the outcome of a Todoist sync.
type SyncResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	TaskCount int         `json:"taskCount"`
	Tasks     interface{} `json:"tasks"`
}

// CalendarEventRequest creates an event on the connected calendar.
type CalendarEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	TimeZone    string `json:"timeZone,omitempty"`
}
