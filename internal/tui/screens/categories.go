package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"connectorsync/internal/models"
	"connectorsync/internal/store"
)

type categoriesMode int

const (
	categoriesModeList categoriesMode = iota
	categoriesModeAdd
	categoriesModeDelete
)

// Categories is the admin screen for the flat category list.
type Categories struct {
	store  *store.Store
	width  int
	height int

	categories []models.Category
	tasks      []models.Task
	cursor     int
	mode       categoriesMode
	input      textinput.Model
	message    string
	warning    string
}

func NewCategories(st *store.Store) *Categories {
	ti := textinput.New()
	ti.Placeholder = "Category name"
	ti.CharLimit = 100
	ti.Width = 40

	return &Categories{
		store: st,
		input: ti,
	}
}

func (c *Categories) SetSize(width, height int) {
	c.width = width
	c.height = height
}

func (c *Categories) Init() tea.Cmd {
	c.mode = categoriesModeList
	c.message = ""
	c.refresh()
	return nil
}

func (c *Categories) refresh() {
	snap := c.store.Snapshot()
	c.categories = snap.Categories
	c.tasks = snap.Tasks
	if c.cursor >= len(c.categories) {
		c.cursor = max(0, len(c.categories)-1)
	}
}

func (c *Categories) taskCount(categoryID string) int {
	n := 0
	for _, t := range c.tasks {
		if t.CategoryID == categoryID {
			n++
		}
	}
	return n
}

func (c *Categories) Update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		return c.handleKey(keyMsg)
	}

	if c.mode == categoriesModeAdd {
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		return cmd
	}
	return nil
}

func (c *Categories) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch c.mode {
	case categoriesModeList:
		return c.handleListKey(msg)
	case categoriesModeAdd:
		return c.handleAddKey(msg)
	case categoriesModeDelete:
		return c.handleDeleteKey(msg)
	}
	return nil
}

func (c *Categories) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if c.cursor > 0 {
			c.cursor--
		}
	case "down", "j":
		if c.cursor < len(c.categories)-1 {
			c.cursor++
		}
	case "a":
		c.mode = categoriesModeAdd
		c.input.SetValue("")
		c.input.Focus()
		return textinput.Blink
	case "d":
		if len(c.categories) > 0 {
			c.mode = categoriesModeDelete
		}
	case "q", "esc":
		return Navigate("dashboard")
	}
	return nil
}

func (c *Categories) handleAddKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(c.input.Value())
		c.input.Blur()
		c.mode = categoriesModeList
		if name == "" {
			return nil
		}
		cat, err := c.store.AddCategory(name)
		if err != nil {
			c.warning = fmt.Sprintf("Save failed: %v", err)
		}
		c.message = fmt.Sprintf("Added category: %s", cat.Name)
		c.refresh()
		return nil
	case "esc":
		c.mode = categoriesModeList
		c.input.Blur()
		return nil
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

func (c *Categories) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		cat := c.categories[c.cursor]
		if err := c.store.DeleteCategory(cat.ID); err != nil {
			c.warning = fmt.Sprintf("Save failed: %v", err)
		}
		c.message = fmt.Sprintf("Deleted category: %s", cat.Name)
		c.mode = categoriesModeList
		c.refresh()
	case "n", "N", "esc":
		c.mode = categoriesModeList
	}
	return nil
}

func (c *Categories) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("CATEGORIES"))
	b.WriteString("\n\n")

	if c.warning != "" {
		b.WriteString(WarningStyle.Render(c.warning))
		b.WriteString("\n\n")
		c.warning = ""
	}
	if c.message != "" {
		b.WriteString(SuccessStyle.Render(c.message))
		b.WriteString("\n\n")
	}

	if c.mode == categoriesModeAdd {
		b.WriteString("New category name:\n")
		b.WriteString(c.input.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Save  [esc] Cancel"))
		return b.String()
	}

	if c.mode == categoriesModeDelete && len(c.categories) > 0 {
		cat := c.categories[c.cursor]
		b.WriteString(WarningStyle.Render(fmt.Sprintf(
			"Delete category '%s'? %d tasks keep referencing it. (y/n)",
			cat.Name, c.taskCount(cat.ID),
		)))
		b.WriteString("\n")
		return b.String()
	}

	if len(c.categories) == 0 {
		b.WriteString(DimStyle.Render("No categories yet."))
		b.WriteString("\n\n")
	} else {
		for i, cat := range c.categories {
			cursor := "  "
			style := NormalStyle
			if i == c.cursor {
				cursor = "> "
				style = SelectedStyle
			}
			b.WriteString(fmt.Sprintf("%s%s (%d tasks)\n", cursor, style.Render(cat.Name), c.taskCount(cat.ID)))
		}
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("[a] Add  [d] Delete  [q] Back"))
	return b.String()
}
