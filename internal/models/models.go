package models

import "time"

// DateLayout is the calendar-day format used on every date field and in
// export filenames.
const DateLayout = "2006-01-02"

// FormatDate renders t as a calendar day, dropping the time of day.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a calendar day produced by FormatDate.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEngineer Role = "ENGINEER"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusReview     TaskStatus = "REVIEW"
	StatusPaused     TaskStatus = "PAUSED"
	StatusDone       TaskStatus = "DONE"
)

type TaskPriority string

const (
	PriorityHigh   TaskPriority = "HIGH"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityLow    TaskPriority = "LOW"
)

type ProjectPhase string

const (
	PhaseRFQ        ProjectPhase = "RFQ"
	PhaseDesign     ProjectPhase = "DESIGN"
	PhaseTooling    ProjectPhase = "TOOLING"
	PhaseValidation ProjectPhase = "VALIDATION"
	PhaseSOP        ProjectPhase = "SOP"
)

// AvatarColors is the palette new users draw from. Values are ANSI-256
// color codes rendered by the TUI.
var AvatarColors = []string{"33", "42", "99", "208", "63", "205", "37", "45"}

type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EmployeeID  string `json:"employeeId"`
	Role        Role   `json:"role"`
	AvatarColor string `json:"avatarColor"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskLog is a single work entry on a task. Logs are immutable once added.
type TaskLog struct {
	ID         string  `json:"id"`
	Date       string  `json:"date"`
	Content    string  `json:"content"`
	HoursSpent float64 `json:"hoursSpent"`
}

type Task struct {
	ID             string       `json:"id"`
	UserID         string       `json:"userId"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	ReceiveDate    string       `json:"receiveDate"`
	Deadline       string       `json:"deadline"`
	StartDate      string       `json:"startDate,omitempty"`
	EstimatedHours float64      `json:"estimatedHours"`
	ActualHours    float64      `json:"actualHours"`
	Status         TaskStatus   `json:"status"`
	CompletedDate  string       `json:"completedDate,omitempty"`
	Logs           []TaskLog    `json:"logs"`
	Priority       TaskPriority `json:"priority"`
	Phase          ProjectPhase `json:"phase"`
	CategoryID     string       `json:"categoryId"`

	// TransferredFrom names the previous owner after a transfer, until the
	// new owner dismisses the alert.
	TransferredFrom string `json:"transferredFrom,omitempty"`
}

// Clone returns a copy of the task with its own log slice, so mutating the
// copy never leaks into a published snapshot.
func (t Task) Clone() Task {
	logs := make([]TaskLog, len(t.Logs))
	copy(logs, t.Logs)
	t.Logs = logs
	return t
}
