// Package tui is a terminal frontend for the todo API: a two-field form
// above the list of todos.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cirocosta/todolist/internal/model"
)

// API is the subset of the todo client used by the frontend.
type API interface {
	ListTodos(ctx context.Context) ([]model.Todo, error)
	CreateTodo(ctx context.Context, req model.CreateTodoRequest) (model.Todo, error)
	UpdateTodo(ctx context.Context, id string, req model.UpdateTodoRequest) (model.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
}

type focusArea int

const (
	focusName focusArea = iota
	focusDescription
	focusList
)

// messages produced by API commands
type (
	todosLoadedMsg struct{ todos []model.Todo }
	todoCreatedMsg struct{ todo model.Todo }
	todoUpdatedMsg struct{ todo model.Todo }
	todoDeletedMsg struct{ id string }
)

type apiErrMsg struct {
	op  string
	err error
}

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Submit   key.Binding
	Complete key.Binding
	Delete   key.Binding
	Refresh  key.Binding
	Form     key.Binding
	Quit     key.Binding
	ForceQ   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add todo")),
		Complete: key.NewBinding(key.WithKeys("c", " "), key.WithHelp("c", "complete")),
		Delete:   key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Form:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "new todo")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		ForceQ:   key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// todoItem adapts a todo to bubbles/list
type todoItem struct {
	todo model.Todo
}

func (i todoItem) FilterValue() string { return i.todo.Name }

// itemDelegate renders a todo on a single line, struck through once completed
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(todoItem)
	if !ok {
		return
	}
	fmt.Fprintln(w, renderTodo(it.todo, index == m.Index()))
}

func renderTodo(todo model.Todo, selected bool) string {
	box := mutedStyle.Render(boxUnchecked)
	text := todo.Name + mutedStyle.Render(" - ") + todo.Description
	if todo.Status {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(todo.Name + " - " + todo.Description)
	}

	prefix := "  "
	if selected {
		prefix = selectedStyle.Render("> ")
	}
	return prefix + box + " " + text
}

// Model is the bubbletea model of the frontend.
type Model struct {
	ctx  context.Context
	api  API
	keys keyMap

	name        textinput.Model
	description textinput.Model
	list        list.Model
	focus       focusArea

	status    string
	statusErr bool
	busy      bool

	width, height int
}

// New returns a model that loads todos from api on start.
func New(ctx context.Context, api API) Model {
	name := textinput.New()
	name.Prompt = "Name        > "
	name.Placeholder = "What needs doing?"
	name.CharLimit = 200
	name.Focus()

	description := textinput.New()
	description.Prompt = "Description > "
	description.Placeholder = "A few words more..."
	description.CharLimit = 500

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.Styles.PaginationStyle = helpStyle
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	return Model{
		ctx:         ctx,
		api:         api,
		keys:        defaultKeyMap(),
		name:        name,
		description: description,
		list:        l,
		focus:       focusName,
		width:       80,
		height:      24,
	}
}

// Run starts the frontend and blocks until the user quits.
func Run(ctx context.Context, api API) error {
	p := tea.NewProgram(New(ctx, api), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// CanAdd reports whether the form holds enough to create a todo.
func (m Model) CanAdd() bool {
	return m.name.Value() != "" && m.description.Value() != ""
}

// Todos returns the todos currently shown.
func (m Model) Todos() []model.Todo {
	items := m.list.Items()
	todos := make([]model.Todo, 0, len(items))
	for _, it := range items {
		if ti, ok := it.(todoItem); ok {
			todos = append(todos, ti.todo)
		}
	}
	return todos
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadCmd())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(m.width-4, m.listHeight())
		return m, nil

	case todosLoadedMsg:
		m.busy = false
		items := make([]list.Item, 0, len(msg.todos))
		for _, t := range msg.todos {
			items = append(items, todoItem{todo: t})
		}
		cmd := m.list.SetItems(items)
		m.setStatus(fmt.Sprintf("loaded %d todos", len(msg.todos)), false)
		return m, cmd

	case todoCreatedMsg:
		m.busy = false
		cmd := m.list.InsertItem(len(m.list.Items()), todoItem{todo: msg.todo})
		m.name.SetValue("")
		m.description.SetValue("")
		m.setFocus(focusName)
		m.setStatus(fmt.Sprintf("added %q", msg.todo.Name), false)
		return m, cmd

	case todoUpdatedMsg:
		m.busy = false
		var cmd tea.Cmd
		if i := m.indexOf(msg.todo.ID); i >= 0 {
			cmd = m.list.SetItem(i, todoItem{todo: msg.todo})
		}
		m.setStatus(fmt.Sprintf("completed %q", msg.todo.Name), false)
		return m, cmd

	case todoDeletedMsg:
		m.busy = false
		if i := m.indexOf(msg.id); i >= 0 {
			m.list.RemoveItem(i)
		}
		if n := len(m.list.Items()); n > 0 && m.list.Index() >= n {
			m.list.Select(n - 1)
		}
		m.setStatus("deleted", false)
		return m, nil

	case apiErrMsg:
		m.busy = false
		m.setStatus(fmt.Sprintf("%s: %v", msg.op, msg.err), true)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.forward(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQ):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.setFocus((m.focus + 1) % 3)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.setFocus((m.focus + 2) % 3)
		return m, nil
	}

	if m.focus != focusList {
		switch {
		case msg.Type == tea.KeyEsc:
			m.setFocus(focusList)
			return m, nil
		case key.Matches(msg, m.keys.Submit) && m.focus == focusName:
			m.setFocus(focusDescription)
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		}
		return m.forward(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Form):
		m.setFocus(focusName)
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.busy = true
		return m, m.loadCmd()
	case key.Matches(msg, m.keys.Complete):
		it, ok := m.list.SelectedItem().(todoItem)
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, m.completeCmd(it.todo.ID)
	case key.Matches(msg, m.keys.Delete):
		it, ok := m.list.SelectedItem().(todoItem)
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, m.deleteCmd(it.todo.ID)
	}

	return m.forward(msg)
}

// submit creates a todo from the form, if the form is complete
func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.CanAdd() {
		m.setStatus("name and description are required", true)
		return m, nil
	}

	req := model.CreateTodoRequest{
		Name:        m.name.Value(),
		Description: m.description.Value(),
	}
	m.busy = true
	return m, m.createCmd(req)
}

// forward passes msg to whichever component holds focus
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusName:
		m.name, cmd = m.name.Update(msg)
	case focusDescription:
		m.description, cmd = m.description.Update(msg)
	default:
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	m.name.Blur()
	m.description.Blur()
	switch f {
	case focusName:
		m.name.Focus()
	case focusDescription:
		m.description.Focus()
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m Model) indexOf(id string) int {
	for i, it := range m.list.Items() {
		if ti, ok := it.(todoItem); ok && ti.todo.ID == id {
			return i
		}
	}
	return -1
}

func (m Model) listHeight() int {
	// header, form panel, status and help lines
	h := m.height - 12
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) loadCmd() tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		todos, err := api.ListTodos(ctx)
		if err != nil {
			return apiErrMsg{op: "load", err: err}
		}
		return todosLoadedMsg{todos: todos}
	}
}

func (m Model) createCmd(req model.CreateTodoRequest) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		todo, err := api.CreateTodo(ctx, req)
		if err != nil {
			return apiErrMsg{op: "add", err: err}
		}
		return todoCreatedMsg{todo: todo}
	}
}

func (m Model) completeCmd(id string) tea.Cmd {
	ctx, api := m.ctx, m.api
	done := true
	return func() tea.Msg {
		todo, err := api.UpdateTodo(ctx, id, model.UpdateTodoRequest{Status: &done})
		if err != nil {
			return apiErrMsg{op: "complete", err: err}
		}
		return todoUpdatedMsg{todo: todo}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		if err := api.DeleteTodo(ctx, id); err != nil {
			return apiErrMsg{op: "delete", err: err}
		}
		return todoDeletedMsg{id: id}
	}
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n")

	button := buttonDisabledStyle.Render("Add Todo")
	if m.CanAdd() {
		button = buttonStyle.Render("Add Todo")
	}
	form := lipgloss.JoinVertical(lipgloss.Left,
		m.name.View(),
		m.description.View(),
		"",
		button,
	)
	b.WriteString(panelStyle.Render(form))
	b.WriteString("\n")

	if len(m.list.Items()) == 0 {
		b.WriteString(mutedStyle.Render("  nothing to do"))
	} else {
		b.WriteString(m.list.View())
	}
	b.WriteString("\n")

	switch {
	case m.busy:
		b.WriteString(accentStyle.Render("working..."))
	case m.statusErr:
		b.WriteString(errorStyle.Render("✖ " + m.status))
	case m.status != "":
		b.WriteString(successStyle.Render("✔ " + m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help()))

	return b.String()
}

func (m Model) header() string {
	done, pending := 0, 0
	for _, t := range m.Todos() {
		if t.Status {
			done++
		} else {
			pending++
		}
	}
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), done+pending,
	)
}

func (m Model) help() string {
	var bindings []key.Binding
	if m.focus == focusList {
		bindings = []key.Binding{m.keys.Complete, m.keys.Delete, m.keys.Refresh, m.keys.Form, m.keys.Next, m.keys.Quit}
	} else {
		bindings = []key.Binding{m.keys.Next, m.keys.Submit}
	}

	parts := make([]string, 0, len(bindings)+1)
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	if m.focus != focusList {
		parts = append(parts, "esc list")
	}
	return strings.Join(parts, " • ")
}
