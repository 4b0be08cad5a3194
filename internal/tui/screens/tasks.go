package screens

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"connectorsync/internal/models"
	"connectorsync/internal/store"
)

type tasksMode int

const (
	tasksModeList tasksMode = iota
	tasksModeDetail
	tasksModeAdd
	tasksModeLog
	tasksModeStatus
	tasksModeTransfer
	tasksModeDelete
)

var statusChoices = []models.TaskStatus{
	models.StatusTodo,
	models.StatusInProgress,
	models.StatusReview,
	models.StatusPaused,
	models.StatusDone,
}

var priorityChoices = []models.TaskPriority{
	models.PriorityHigh,
	models.PriorityMedium,
	models.PriorityLow,
}

var phaseChoices = []models.ProjectPhase{
	models.PhaseRFQ,
	models.PhaseDesign,
	models.PhaseTooling,
	models.PhaseValidation,
	models.PhaseSOP,
}

// Tasks lists tasks (all of them for an admin, the user's own otherwise)
// and hosts every per-task action.
type Tasks struct {
	store  *store.Store
	user   models.User
	width  int
	height int

	snap    store.Snapshot
	visible []models.Task
	cursor  int
	mode    tasksMode
	message string
	warning string
	err     error

	// Add-task form: text inputs followed by choice fields.
	formInputs   []textinput.Model
	formFocus    int
	formPriority int
	formPhase    int
	formCategory int
	formAssignee int

	// Log form.
	logInputs []textinput.Model
	logFocus  int

	// Pickers.
	statusCursor int
	userCursor   int
}

func NewTasks(st *store.Store) *Tasks {
	return &Tasks{store: st}
}

func (t *Tasks) SetSize(width, height int) {
	t.width = width
	t.height = height
}

func (t *Tasks) SetUser(u models.User) {
	t.user = u
}

func (t *Tasks) Init() tea.Cmd {
	t.mode = tasksModeList
	t.message = ""
	t.err = nil
	t.refresh()
	return nil
}

func (t *Tasks) refresh() {
	t.snap = t.store.Snapshot()
	t.visible = t.visible[:0]
	for _, task := range t.snap.Tasks {
		if t.user.Role == models.RoleAdmin || task.UserID == t.user.ID {
			t.visible = append(t.visible, task)
		}
	}
	if t.cursor >= len(t.visible) {
		t.cursor = max(0, len(t.visible)-1)
	}
}

func (t *Tasks) selected() *models.Task {
	if len(t.visible) == 0 {
		return nil
	}
	task := t.visible[t.cursor]
	return &task
}

// do runs a store mutation and keeps its persistence failure visible as a
// warning. The in-memory state is already published either way.
func (t *Tasks) do(err error) {
	if err != nil {
		t.warning = fmt.Sprintf("Save failed: %v", err)
	}
	t.refresh()
}

func (t *Tasks) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return t.handleKey(msg)
	}

	switch t.mode {
	case tasksModeAdd:
		return t.updateFormInputs(msg)
	case tasksModeLog:
		return t.updateLogInputs(msg)
	}
	return nil
}

func (t *Tasks) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch t.mode {
	case tasksModeList:
		return t.handleListKey(msg)
	case tasksModeDetail:
		return t.handleDetailKey(msg)
	case tasksModeAdd:
		return t.handleAddKey(msg)
	case tasksModeLog:
		return t.handleLogKey(msg)
	case tasksModeStatus:
		return t.handleStatusKey(msg)
	case tasksModeTransfer:
		return t.handleTransferKey(msg)
	case tasksModeDelete:
		return t.handleDeleteKey(msg)
	}
	return nil
}

func (t *Tasks) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if t.cursor > 0 {
			t.cursor--
		}
	case "down", "j":
		if t.cursor < len(t.visible)-1 {
			t.cursor++
		}
	case "enter":
		if t.selected() != nil {
			t.mode = tasksModeDetail
		}
	case "a":
		t.startAddForm()
		return textinput.Blink
	case "l":
		if t.selected() != nil {
			t.startLogForm()
			return textinput.Blink
		}
	case "s":
		if task := t.selected(); task != nil {
			t.statusCursor = statusIndex(task.Status)
			t.mode = tasksModeStatus
		}
	case "t":
		if t.selected() != nil && len(t.snap.Users) > 0 {
			t.userCursor = 0
			t.mode = tasksModeTransfer
		}
	case "m":
		if task := t.selected(); task != nil && task.TransferredFrom != "" {
			t.do(t.store.DismissTransferAlert(task.ID))
			t.message = "Transfer alert dismissed."
		}
	case "d":
		if t.selected() != nil {
			t.mode = tasksModeDelete
		}
	case "q", "esc":
		return Navigate("dashboard")
	}
	return nil
}

func (t *Tasks) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc", "enter":
		t.mode = tasksModeList
	case "l":
		t.startLogForm()
		return textinput.Blink
	}
	return nil
}

// --- Add form ---

func (t *Tasks) startAddForm() {
	labels := []struct {
		placeholder string
		width       int
	}{
		{"Title", 50},
		{"Description", 60},
		{"Deadline (" + models.DateLayout + ")", 12},
		{"Estimated hours", 8},
	}

	t.formInputs = make([]textinput.Model, len(labels))
	for i, l := range labels {
		ti := textinput.New()
		ti.Placeholder = l.placeholder
		ti.Width = l.width
		ti.CharLimit = 200
		t.formInputs[i] = ti
	}
	t.formInputs[0].Focus()
	t.formFocus = 0
	t.formPriority = 1 // MEDIUM
	t.formPhase = 1    // DESIGN
	t.formCategory = 0
	t.formAssignee = 0
	t.mode = tasksModeAdd
}

// formFieldCount counts text inputs plus choice fields. Admins get an extra
// assignee field.
func (t *Tasks) formFieldCount() int {
	n := len(t.formInputs) + 3
	if t.user.Role == models.RoleAdmin {
		n++
	}
	return n
}

func (t *Tasks) handleAddKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		t.mode = tasksModeList
		return nil

	case "enter", "tab", "down":
		if msg.String() == "enter" && t.formFocus == t.formFieldCount()-1 {
			return t.submitAddForm()
		}
		t.setFormFocus((t.formFocus + 1) % t.formFieldCount())
		return textinput.Blink

	case "shift+tab", "up":
		t.setFormFocus((t.formFocus - 1 + t.formFieldCount()) % t.formFieldCount())
		return textinput.Blink

	case "left", "right":
		if t.formFocus >= len(t.formInputs) {
			t.cycleChoice(t.formFocus-len(t.formInputs), msg.String() == "right")
			return nil
		}
	}

	return t.updateFormInputs(msg)
}

func (t *Tasks) setFormFocus(focus int) {
	t.formFocus = focus
	for i := range t.formInputs {
		if i == focus {
			t.formInputs[i].Focus()
		} else {
			t.formInputs[i].Blur()
		}
	}
}

func (t *Tasks) cycleChoice(choice int, forward bool) {
	step := 1
	if !forward {
		step = -1
	}
	switch choice {
	case 0:
		t.formPriority = (t.formPriority + step + len(priorityChoices)) % len(priorityChoices)
	case 1:
		t.formPhase = (t.formPhase + step + len(phaseChoices)) % len(phaseChoices)
	case 2:
		if n := len(t.snap.Categories); n > 0 {
			t.formCategory = (t.formCategory + step + n) % n
		}
	case 3:
		if n := len(t.snap.Users); n > 0 {
			t.formAssignee = (t.formAssignee + step + n) % n
		}
	}
}

func (t *Tasks) updateFormInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i := range t.formInputs {
		var cmd tea.Cmd
		t.formInputs[i], cmd = t.formInputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (t *Tasks) submitAddForm() tea.Cmd {
	title := strings.TrimSpace(t.formInputs[0].Value())
	if title == "" {
		t.err = fmt.Errorf("title is required")
		return nil
	}

	deadline := strings.TrimSpace(t.formInputs[2].Value())
	if deadline == "" {
		deadline = models.FormatDate(time.Now())
	} else if _, err := models.ParseDate(deadline); err != nil {
		t.err = fmt.Errorf("deadline must be %s", models.DateLayout)
		return nil
	}

	hours := 0.0
	if raw := strings.TrimSpace(t.formInputs[3].Value()); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			t.err = fmt.Errorf("estimated hours must be a number")
			return nil
		}
		hours = parsed
	}

	data := store.TaskData{
		Title:          title,
		Description:    strings.TrimSpace(t.formInputs[1].Value()),
		ReceiveDate:    models.FormatDate(time.Now()),
		Deadline:       deadline,
		EstimatedHours: hours,
		Priority:       priorityChoices[t.formPriority],
		Phase:          phaseChoices[t.formPhase],
	}
	if len(t.snap.Categories) > 0 {
		data.CategoryID = t.snap.Categories[t.formCategory].ID
	}
	if t.user.Role == models.RoleAdmin && len(t.snap.Users) > 0 {
		data.UserID = t.snap.Users[t.formAssignee].ID
	}

	task, err := t.store.AddTask(data, t.user.ID)
	t.do(err)
	t.message = fmt.Sprintf("Created task: %s", task.Title)
	t.mode = tasksModeList
	t.cursor = 0
	return nil
}

// --- Log form ---

func (t *Tasks) startLogForm() {
	content := textinput.New()
	content.Placeholder = "What did you do?"
	content.Width = 60
	content.CharLimit = 300
	content.Focus()

	hours := textinput.New()
	hours.Placeholder = "Hours spent"
	hours.Width = 8
	hours.CharLimit = 6

	t.logInputs = []textinput.Model{content, hours}
	t.logFocus = 0
	t.mode = tasksModeLog
}

func (t *Tasks) handleLogKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		t.mode = tasksModeList
		return nil

	case "enter", "tab", "down", "shift+tab", "up":
		if msg.String() == "enter" && t.logFocus == len(t.logInputs)-1 {
			return t.submitLogForm()
		}
		t.logFocus = (t.logFocus + 1) % len(t.logInputs)
		for i := range t.logInputs {
			if i == t.logFocus {
				t.logInputs[i].Focus()
			} else {
				t.logInputs[i].Blur()
			}
		}
		return textinput.Blink
	}

	return t.updateLogInputs(msg)
}

func (t *Tasks) updateLogInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i := range t.logInputs {
		var cmd tea.Cmd
		t.logInputs[i], cmd = t.logInputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (t *Tasks) submitLogForm() tea.Cmd {
	task := t.selected()
	if task == nil {
		t.mode = tasksModeList
		return nil
	}

	content := strings.TrimSpace(t.logInputs[0].Value())
	if content == "" {
		t.err = fmt.Errorf("log content is required")
		return nil
	}

	hours, err := strconv.ParseFloat(strings.TrimSpace(t.logInputs[1].Value()), 64)
	if err != nil || hours <= 0 {
		t.err = fmt.Errorf("hours must be a positive number")
		return nil
	}

	t.do(t.store.AddLog(task.ID, store.LogData{Content: content, HoursSpent: hours}))
	t.message = fmt.Sprintf("Logged %.1fh on %s", hours, task.Title)
	t.mode = tasksModeList
	return nil
}

// --- Status picker ---

func statusIndex(s models.TaskStatus) int {
	for i, c := range statusChoices {
		if c == s {
			return i
		}
	}
	return 0
}

func (t *Tasks) handleStatusKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if t.statusCursor > 0 {
			t.statusCursor--
		}
	case "down", "j":
		if t.statusCursor < len(statusChoices)-1 {
			t.statusCursor++
		}
	case "enter":
		task := t.selected()
		if task == nil {
			t.mode = tasksModeList
			return nil
		}
		status := statusChoices[t.statusCursor]
		upd := store.TaskUpdate{Status: &status}
		completed := ""
		if status == models.StatusDone {
			completed = models.FormatDate(time.Now())
		}
		upd.CompletedDate = &completed
		t.do(t.store.UpdateTask(task.ID, upd))
		t.message = fmt.Sprintf("Status set to %s", StatusLabel(status))
		t.mode = tasksModeList
	case "q", "esc":
		t.mode = tasksModeList
	}
	return nil
}

// --- Transfer picker ---

func (t *Tasks) handleTransferKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if t.userCursor > 0 {
			t.userCursor--
		}
	case "down", "j":
		if t.userCursor < len(t.snap.Users)-1 {
			t.userCursor++
		}
	case "enter":
		task := t.selected()
		if task == nil {
			t.mode = tasksModeList
			return nil
		}
		target := t.snap.Users[t.userCursor]
		if target.ID != task.UserID {
			t.do(t.store.TransferTask(task.ID, target.ID, task.UserID))
			t.message = fmt.Sprintf("Transferred %s to %s", task.Title, target.Name)
		}
		t.mode = tasksModeList
	case "q", "esc":
		t.mode = tasksModeList
	}
	return nil
}

// --- Delete confirm ---

func (t *Tasks) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		if task := t.selected(); task != nil {
			t.do(t.store.DeleteTask(task.ID))
			t.message = fmt.Sprintf("Deleted task: %s", task.Title)
		}
		t.mode = tasksModeList
	case "n", "N", "esc":
		t.mode = tasksModeList
	}
	return nil
}

// --- View ---

func (t *Tasks) View() string {
	var b strings.Builder

	title := "MY TASKS"
	if t.user.Role == models.RoleAdmin {
		title = "ALL TASKS"
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	if t.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", t.err)))
		b.WriteString("\n\n")
		t.err = nil
	}
	if t.warning != "" {
		b.WriteString(WarningStyle.Render(t.warning))
		b.WriteString("\n\n")
		t.warning = ""
	}
	if t.message != "" {
		b.WriteString(SuccessStyle.Render(t.message))
		b.WriteString("\n\n")
	}

	switch t.mode {
	case tasksModeAdd:
		return b.String() + t.viewAddForm()
	case tasksModeLog:
		return b.String() + t.viewLogForm()
	case tasksModeStatus:
		return b.String() + t.viewStatusPicker()
	case tasksModeTransfer:
		return b.String() + t.viewTransferPicker()
	case tasksModeDetail:
		return b.String() + t.viewDetail()
	case tasksModeDelete:
		if task := t.selected(); task != nil {
			b.WriteString(WarningStyle.Render(fmt.Sprintf("Delete task '%s'? (y/n)", task.Title)))
			b.WriteString("\n")
		}
		return b.String()
	}

	if len(t.visible) == 0 {
		b.WriteString(DimStyle.Render("No tasks."))
		b.WriteString("\n\n")
	}

	for i, task := range t.visible {
		cursor := "  "
		style := NormalStyle
		if i == t.cursor {
			cursor = "> "
			style = SelectedStyle
		}

		marker := " "
		if task.TransferredFrom != "" {
			marker = WarningStyle.Render("*")
		}

		owner := ""
		if t.user.Role == models.RoleAdmin {
			owner = t.ownerName(task.UserID) + "  "
		}

		line := fmt.Sprintf("%s%s %s  %s%s  %s  %s",
			cursor,
			marker,
			style.Render(task.Title),
			DimStyle.Render(owner),
			StatusStyle(task.Status).Render(StatusLabel(task.Status)),
			PriorityStyle(task.Priority).Render(string(task.Priority)),
			DimStyle.Render("due "+task.Deadline),
		)
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	help := "[enter] Detail  [a] Add  [l] Log work  [s] Status  [t] Transfer  [m] Dismiss alert  [d] Delete  [q] Back"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}

func (t *Tasks) ownerName(userID string) string {
	for _, u := range t.snap.Users {
		if u.ID == userID {
			return u.Name
		}
	}
	return userID // dangling owner after a user removal
}

func (t *Tasks) viewAddForm() string {
	var b strings.Builder
	b.WriteString("New task:\n\n")

	labels := []string{"Title", "Description", "Deadline", "Est. hours"}
	for i, input := range t.formInputs {
		b.WriteString(fmt.Sprintf("  %-12s %s\n", labels[i], input.View()))
	}

	choice := func(idx int, label, value string) {
		marker := "  "
		if t.formFocus == len(t.formInputs)+idx {
			marker = "> "
		}
		b.WriteString(fmt.Sprintf("%s%-12s < %s >\n", marker, label, value))
	}
	choice(0, "Priority", string(priorityChoices[t.formPriority]))
	choice(1, "Phase", PhaseLabel(phaseChoices[t.formPhase]))
	category := "(none)"
	if len(t.snap.Categories) > 0 {
		category = t.snap.Categories[t.formCategory].Name
	}
	choice(2, "Category", category)
	if t.user.Role == models.RoleAdmin && len(t.snap.Users) > 0 {
		choice(3, "Assignee", t.snap.Users[t.formAssignee].Name)
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("[tab] Next field  [←/→] Change value  [enter on last field] Save  [esc] Cancel"))
	return b.String()
}

func (t *Tasks) viewLogForm() string {
	var b strings.Builder
	task := t.selected()
	if task != nil {
		b.WriteString(fmt.Sprintf("Log work on '%s':\n\n", task.Title))
	}
	b.WriteString(fmt.Sprintf("  %-12s %s\n", "Content", t.logInputs[0].View()))
	b.WriteString(fmt.Sprintf("  %-12s %s\n", "Hours", t.logInputs[1].View()))
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("[tab] Next field  [enter on hours] Save  [esc] Cancel"))
	return b.String()
}

func (t *Tasks) viewStatusPicker() string {
	var b strings.Builder
	b.WriteString("Set status:\n\n")
	for i, s := range statusChoices {
		cursor := "  "
		style := NormalStyle
		if i == t.statusCursor {
			cursor = "> "
			style = SelectedStyle
		}
		b.WriteString(cursor + style.Render(StatusLabel(s)) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("[enter] Apply  [esc] Cancel"))
	return b.String()
}

func (t *Tasks) viewTransferPicker() string {
	var b strings.Builder
	task := t.selected()
	if task != nil {
		b.WriteString(fmt.Sprintf("Transfer '%s' to:\n\n", task.Title))
	}
	for i, u := range t.snap.Users {
		cursor := "  "
		style := NormalStyle
		if i == t.userCursor {
			cursor = "> "
			style = SelectedStyle
		}
		suffix := ""
		if task != nil && u.ID == task.UserID {
			suffix = DimStyle.Render(" (current owner)")
		}
		b.WriteString(fmt.Sprintf("%s%s %s%s\n", cursor, Avatar(u), style.Render(u.Name), suffix))
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("[enter] Transfer  [esc] Cancel"))
	return b.String()
}

func (t *Tasks) viewDetail() string {
	task := t.selected()
	if task == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(BoxStyle.Render(fmt.Sprintf(
		"%s\n\n%s\n\nOwner: %s\nStatus: %s   Priority: %s   Phase: %s\nReceived %s · Due %s\nHours: %.1f logged of %.1f estimated",
		task.Title,
		task.Description,
		t.ownerName(task.UserID),
		StatusLabel(task.Status),
		string(task.Priority),
		PhaseLabel(task.Phase),
		task.ReceiveDate,
		task.Deadline,
		task.ActualHours,
		task.EstimatedHours,
	)))
	b.WriteString("\n\n")

	if task.TransferredFrom != "" {
		b.WriteString(WarningStyle.Render(fmt.Sprintf("Transferred from %s (press m in the list to dismiss)", t.ownerName(task.TransferredFrom))))
		b.WriteString("\n\n")
	}

	b.WriteString(SubtitleStyle.Render("Work log"))
	b.WriteString("\n")
	if len(task.Logs) == 0 {
		b.WriteString(DimStyle.Render("  No entries yet."))
		b.WriteString("\n")
	}
	for _, entry := range task.Logs {
		b.WriteString(fmt.Sprintf("  %s  %.1fh  %s\n", DimStyle.Render(entry.Date), entry.HoursSpent, entry.Content))
	}

	b.WriteString(HelpStyle.Render("[l] Log work  [esc] Back"))
	return b.String()
}
