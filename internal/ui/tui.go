// Package ui provides the terminal front-end for the todo API.
package ui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"todo-tracker/internal/client"
	"todo-tracker/internal/model"
	"todo-tracker/internal/view"
)

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, api client.API) error {
	program := tea.NewProgram(New(api), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type mode int

const (
	modeList mode = iota
	modeTitle
	modeDue
	modeCategoryName
	modeCategoryColor
	modeFilter
)

// Model is the bubbletea model of the todo list.
type Model struct {
	api   client.API
	state view.State
	mode  mode

	cursor     int
	title      string
	due        string
	categoryID string // selected category for new todos, empty for none

	categoryName  string
	categoryColor string

	filter string

	now func() time.Time
}

type (
	todosLoadedMsg struct {
		todos []model.Todo
		err   error
	}
	categoriesLoadedMsg struct {
		categories []model.Category
		err        error
	}
	todoCreatedMsg struct {
		todo model.Todo
		err  error
	}
	todoUpdatedMsg struct {
		todo model.Todo
		err  error
	}
	todoDeletedMsg struct {
		id  string
		err error
	}
	categoryCreatedMsg struct {
		category model.Category
		err      error
	}
)

func New(api client.API) *Model {
	m := &Model{
		api:           api,
		categoryColor: view.DefaultColor,
		now:           time.Now,
	}
	m.due = m.today()
	return m
}

func (m *Model) Init() tea.Cmd {
	return m.fetch()
}

// State returns the current list state.
func (m *Model) State() view.State {
	return m.state
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != modeList {
			return m, m.updateInput(msg)
		}
		return m, m.updateList(msg)

	case todosLoadedMsg:
		if msg.err != nil {
			log.Printf("load todos: %v", msg.err)
			return m, nil
		}
		m.dispatch(view.TodosLoaded{Todos: msg.todos})
	case categoriesLoadedMsg:
		if msg.err != nil {
			log.Printf("load categories: %v", msg.err)
			return m, nil
		}
		m.dispatch(view.CategoriesLoaded{Categories: msg.categories})
		if _, ok := m.state.Category(m.categoryID); !ok {
			m.categoryID = ""
		}
	case todoCreatedMsg:
		m.dispatch(view.LoadingSet{Loading: false})
		if msg.err != nil {
			log.Printf("create todo: %v", msg.err)
			return m, nil
		}
		m.dispatch(view.TodoAdded{Todo: msg.todo})
		m.title = ""
	case todoUpdatedMsg:
		if msg.err != nil {
			log.Printf("update todo: %v", msg.err)
			return m, nil
		}
		m.dispatch(view.TodoReconciled{Todo: msg.todo})
	case todoDeletedMsg:
		if msg.err != nil {
			log.Printf("delete todo %s: %v", msg.id, msg.err)
			if client.IsTransport(msg.err) {
				return m, nil
			}
		}
		m.dispatch(view.TodoRemoved{ID: msg.id})
	case categoryCreatedMsg:
		if msg.err != nil {
			log.Printf("create category: %v", msg.err)
			return m, nil
		}
		m.dispatch(view.CategoryAdded{Category: msg.category})
		m.categoryName = ""
		m.categoryColor = view.DefaultColor
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Visible())-1 {
			m.cursor++
		}
	case " ":
		if t, ok := m.selected(); ok {
			return m.toggle(t)
		}
	case "d":
		if t, ok := m.selected(); ok {
			return m.remove(t.ID)
		}
	case "n":
		m.mode = modeTitle
	case "[":
		m.cycleCategory(-1)
	case "]":
		m.cycleCategory(1)
	case "c":
		m.mode = modeCategoryName
	case "/":
		m.filter = m.state.DateFilter
		m.mode = modeFilter
	case "esc":
		m.setFilter("")
	case "r":
		return m.fetch()
	}
	return nil
}

func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	field := m.field()

	switch msg.Type {
	case tea.KeyCtrlC:
		return tea.Quit
	case tea.KeyEsc:
		if m.mode == modeFilter {
			m.setFilter("")
		}
		m.mode = modeList
	case tea.KeyTab:
		switch m.mode {
		case modeTitle:
			m.mode = modeDue
		case modeDue:
			m.mode = modeTitle
		case modeCategoryName:
			m.mode = modeCategoryColor
		case modeCategoryColor:
			m.mode = modeCategoryName
		}
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyBackspace:
		if r := []rune(*field); len(r) > 0 {
			*field = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		*field += " "
	case tea.KeyRunes:
		*field += string(msg.Runes)
	}
	return nil
}

// field returns the text being edited in the current input mode.
func (m *Model) field() *string {
	switch m.mode {
	case modeDue:
		return &m.due
	case modeCategoryName:
		return &m.categoryName
	case modeCategoryColor:
		return &m.categoryColor
	case modeFilter:
		return &m.filter
	default:
		return &m.title
	}
}

func (m *Model) submit() tea.Cmd {
	switch m.mode {
	case modeTitle, modeDue:
		return m.add()
	case modeCategoryName, modeCategoryColor:
		if strings.TrimSpace(m.categoryName) == "" {
			return nil
		}
		m.mode = modeList
		return m.addCategory(m.categoryName, m.categoryColor)
	case modeFilter:
		m.setFilter(strings.TrimSpace(m.filter))
		m.mode = modeList
	}
	return nil
}

func (m *Model) add() tea.Cmd {
	if m.state.Loading || strings.TrimSpace(m.title) == "" {
		return nil
	}
	in := client.NewTodo{Title: m.title}
	if due := strings.TrimSpace(m.due); due != "" {
		in.DueDate = &due
	}
	if m.categoryID != "" {
		id := m.categoryID
		in.CategoryID = &id
	}

	m.dispatch(view.LoadingSet{Loading: true})
	return func() tea.Msg {
		todo, err := m.api.CreateTodo(context.Background(), in)
		return todoCreatedMsg{todo: todo, err: err}
	}
}

func (m *Model) addCategory(name, color string) tea.Cmd {
	return func() tea.Msg {
		category, err := m.api.CreateCategory(context.Background(), name, color)
		return categoryCreatedMsg{category: category, err: err}
	}
}

func (m *Model) toggle(t model.Todo) tea.Cmd {
	in := client.UpdateFrom(t)
	in.Completed = !t.Completed
	return func() tea.Msg {
		todo, err := m.api.UpdateTodo(context.Background(), in)
		return todoUpdatedMsg{todo: todo, err: err}
	}
}

func (m *Model) remove(id string) tea.Cmd {
	return func() tea.Msg {
		return todoDeletedMsg{id: id, err: m.api.DeleteTodo(context.Background(), id)}
	}
}

// fetch loads todos and categories; tea.Batch runs both requests concurrently.
func (m *Model) fetch() tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			todos, err := m.api.ListTodos(context.Background())
			return todosLoadedMsg{todos: todos, err: err}
		},
		func() tea.Msg {
			categories, err := m.api.ListCategories(context.Background())
			return categoriesLoadedMsg{categories: categories, err: err}
		},
	)
}

func (m *Model) dispatch(a view.Action) {
	m.state = view.Reduce(m.state, a)
	if n := len(m.state.Visible()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// cycleCategory steps through none followed by each category in list order.
func (m *Model) cycleCategory(step int) {
	pos := 0
	for i, c := range m.state.Categories {
		if c.ID == m.categoryID {
			pos = i + 1
		}
	}
	n := len(m.state.Categories) + 1
	pos = ((pos+step)%n + n) % n
	if pos == 0 {
		m.categoryID = ""
		return
	}
	m.categoryID = m.state.Categories[pos-1].ID
}

func (m *Model) setFilter(day string) {
	m.dispatch(view.DateFilterSet{Date: day})
}

func (m *Model) selected() (model.Todo, bool) {
	visible := m.state.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return model.Todo{}, false
	}
	return visible[m.cursor], true
}

func (m *Model) today() string {
	return model.DateOf(m.now()).String()
}

func (m *Model) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.state.DateFilter != "" {
		b.WriteString(fmt.Sprintf("Due on %s (esc to clear)\n\n", m.state.DateFilter))
	}

	visible := m.state.Visible()
	if len(visible) == 0 {
		b.WriteString("  No todos.\n")
	}
	for i, t := range visible {
		cursor := " "
		if i == m.cursor && m.mode == modeList {
			cursor = ">"
		}
		b.WriteString(cursor + " " + formatTodo(t) + "\n")
	}
	b.WriteString("\n")

	m.writeForm(&b)
	writeHelp(&b, m.mode)
	return b.String()
}

func (m *Model) writeForm(b *strings.Builder) {
	categoryName := "none"
	if c, ok := m.state.Category(m.categoryID); ok {
		categoryName = c.Name
	}

	b.WriteString("New todo\n")
	b.WriteString(fmt.Sprintf("  %s title:    %s\n", marker(m.mode == modeTitle), m.title))
	b.WriteString(fmt.Sprintf("  %s due:      %s\n", marker(m.mode == modeDue), m.due))
	b.WriteString(fmt.Sprintf("    category: %s\n", categoryName))
	if m.state.Loading {
		b.WriteString("  Adding...\n")
	}
	b.WriteString("\n")

	switch m.mode {
	case modeCategoryName, modeCategoryColor:
		b.WriteString("New category\n")
		b.WriteString(fmt.Sprintf("  %s name:  %s\n", marker(m.mode == modeCategoryName), m.categoryName))
		b.WriteString(fmt.Sprintf("  %s color: %s\n\n", marker(m.mode == modeCategoryColor), m.categoryColor))
	case modeFilter:
		b.WriteString(fmt.Sprintf("Filter by due date: %s\n\n", m.filter))
	}
}

func marker(active bool) string {
	if active {
		return "*"
	}
	return " "
}

func writeTitle(b *strings.Builder) {
	title := "Todo Tracker"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeHelp(b *strings.Builder, m mode) {
	if m != modeList {
		b.WriteString("enter submit | tab next field | esc back\n")
		return
	}
	b.WriteString("↑/↓ move | space toggle | d delete | n new | [/] category | c new category | / filter | r reload | q quit\n")
}

func formatTodo(t model.Todo) string {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}
	line := check + " " + t.Title
	if t.DueDate != nil {
		line += "  due " + t.DueDate.String()
	}
	if t.Categories != nil {
		line += fmt.Sprintf("  (%s %s)", t.Categories.Name, t.Categories.Color)
	}
	return line
}
