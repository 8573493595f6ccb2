// Package tui holds the terminal views of the client.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adanyl0v/studyboard/internal/board"
	"github.com/adanyl0v/studyboard/internal/client"
	"github.com/adanyl0v/studyboard/internal/events"
	"github.com/adanyl0v/studyboard/internal/models"
)

const actionTimeout = 15 * time.Second

// TaskStore is the part of the client state the board needs.
type TaskStore interface {
	Board(prefs models.Preferences) []board.Column
	Reload(ctx context.Context) error
	ToggleTask(ctx context.Context, id string) (models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	AddTask(ctx context.Context, draft models.Task) (models.Task, error)
	EditTask(ctx context.Context, id string, patch client.TaskPatch) (models.Task, error)
	MoveTask(ctx context.Context, id string, workspaceID *string) (models.Task, error)
}

// PreferenceStore keeps the board layout between runs.
type PreferenceStore interface {
	Preferences(ctx context.Context, workspaceID string) models.Preferences
	SavePreferences(ctx context.Context, prefs models.Preferences) error
}

type (
	reloadedMsg   struct{ err error }
	actionDoneMsg struct{ err error }
	prefsSavedMsg struct{ err error }
)

// inputMode is what the prompt line is collecting.
type inputMode int

const (
	inputNone inputMode = iota
	inputAdd
	inputEdit
	inputMove
)

type BoardModel struct {
	store  TaskStore
	prefs  PreferenceStore
	layout models.Preferences
	toasts chan events.Event

	columns []board.Column
	col     int
	row     int

	mode   inputMode
	input  textinput.Model
	target models.Task
	column string

	status string
	keys   boardKeyMap
	help   help.Model
}

// NewBoardModel loads the saved layout of workspaceID. toasts may be
// nil when no bus is wired.
func NewBoardModel(store TaskStore, prefs PreferenceStore, workspaceID string, toasts chan events.Event) BoardModel {
	m := BoardModel{
		store:  store,
		prefs:  prefs,
		layout: prefs.Preferences(context.Background(), workspaceID),
		toasts: toasts,
		input:  newTaskInput(),
		keys:   defaultBoardKeys(),
		help:   help.New(),
	}
	m.refresh()
	return m
}

func newTaskInput() textinput.Model {
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 200
	return in
}

func (m BoardModel) Init() tea.Cmd {
	return tea.Batch(m.reloadCmd(), waitForToast(m.toasts))
}

func (m BoardModel) reloadCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return reloadedMsg{err: store.Reload(ctx)}
	}
}

func (m BoardModel) savePrefsCmd() tea.Cmd {
	prefs, layout := m.prefs, m.layout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return prefsSavedMsg{err: prefs.SavePreferences(ctx, layout)}
	}
}

func (m BoardModel) actionCmd(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{err: fn(ctx)}
	}
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case reloadedMsg:
		m.setStatus(msg.err)
		m.refresh()

	case actionDoneMsg:
		m.setStatus(msg.err)
		m.refresh()

	case prefsSavedMsg:
		if msg.err != nil {
			m.status = "could not save layout: " + msg.err.Error()
		}

	case toastMsg:
		m.status = msg.text
		return m, waitForToast(m.toasts)

	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.handleInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m BoardModel) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.closeInput()
		return m, nil
	case tea.KeyEnter:
		return m.submitInput()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m BoardModel) openInput(mode inputMode, value, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Reset()
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.status = ""
	cmd := m.input.Focus()
	return m, cmd
}

func (m *BoardModel) closeInput() {
	m.mode = inputNone
	m.input.Blur()
	m.input.Reset()
}

func (m BoardModel) submitInput() (tea.Model, tea.Cmd) {
	mode, value, target, column := m.mode, strings.TrimSpace(m.input.Value()), m.target, m.column
	m.closeInput()
	store := m.store

	switch mode {
	case inputAdd:
		line, err := parseTaskLine(value)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		draft := line.draft(column)
		return m, m.actionCmd(func(ctx context.Context) error {
			_, err := store.AddTask(ctx, draft)
			return err
		})
	case inputEdit:
		line, err := parseTaskLine(value)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		patch, changed := line.patch(target)
		if !changed {
			return m, nil
		}
		return m, m.actionCmd(func(ctx context.Context) error {
			_, err := store.EditTask(ctx, target.ID, patch)
			return err
		})
	case inputMove:
		var workspaceID *string
		if value != "" {
			workspaceID = &value
		}
		return m, m.actionCmd(func(ctx context.Context) error {
			_, err := store.MoveTask(ctx, target.ID, workspaceID)
			return err
		})
	}
	return m, nil
}

func (m BoardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Left):
		m.moveColumn(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveColumn(1)
	case key.Matches(msg, m.keys.Up):
		m.row = max(0, m.row-1)
	case key.Matches(msg, m.keys.Down):
		if col, ok := m.current(); ok {
			m.row = min(col.Len()-1, m.row+1)
		}
	case key.Matches(msg, m.keys.Reload):
		return m, m.reloadCmd()
	case key.Matches(msg, m.keys.Toggle):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		store := m.store
		return m, m.actionCmd(func(ctx context.Context) error {
			_, err := store.ToggleTask(ctx, task.ID)
			return err
		})
	case key.Matches(msg, m.keys.Delete):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		store := m.store
		return m, m.actionCmd(func(ctx context.Context) error {
			return store.DeleteTask(ctx, task.ID)
		})
	case key.Matches(msg, m.keys.Pin):
		col, ok := m.current()
		if !ok {
			return m, nil
		}
		m.layout = m.layout.Normalize()
		if m.layout.Pinned[col.Assignment] {
			delete(m.layout.Pinned, col.Assignment)
		} else {
			m.layout.Pinned[col.Assignment] = true
		}
		m.refreshKeeping(col.Assignment)
		return m, m.savePrefsCmd()
	case key.Matches(msg, m.keys.Sort):
		col, ok := m.current()
		if !ok {
			return m, nil
		}
		m.layout = m.layout.Normalize()
		cfg, sorted := m.layout.Sort[col.Assignment]
		next, on := nextSortType(cfg.Type, sorted)
		if on {
			m.layout.Sort[col.Assignment] = models.SortConfig{Type: next, Direction: directionOr(cfg.Direction)}
		} else {
			delete(m.layout.Sort, col.Assignment)
		}
		m.refreshKeeping(col.Assignment)
		return m, m.savePrefsCmd()
	case key.Matches(msg, m.keys.Order):
		col, ok := m.current()
		if !ok {
			return m, nil
		}
		m.layout = m.layout.Normalize()
		cfg, sorted := m.layout.Sort[col.Assignment]
		if !sorted {
			return m, nil
		}
		if cfg.Direction == models.SortDesc {
			cfg.Direction = models.SortAsc
		} else {
			cfg.Direction = models.SortDesc
		}
		m.layout.Sort[col.Assignment] = cfg
		m.refreshKeeping(col.Assignment)
		return m, m.savePrefsCmd()
	case key.Matches(msg, m.keys.Add):
		m.column = models.NoAssignment
		if col, ok := m.current(); ok {
			m.column = col.Assignment
		}
		return m.openInput(inputAdd, "", "title #assignment @2006-01-02 !easy")
	case key.Matches(msg, m.keys.Edit):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.target = task
		return m.openInput(inputEdit, formatTaskLine(task), "")
	case key.Matches(msg, m.keys.Workspace):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.target = task
		current := ""
		if task.WorkspaceID != nil {
			current = *task.WorkspaceID
		}
		return m.openInput(inputMove, current, "workspace id, empty for none")
	case key.Matches(msg, m.keys.ColumnLeft):
		return m.shiftColumn(-1)
	case key.Matches(msg, m.keys.ColumnRight):
		return m.shiftColumn(1)
	case key.Matches(msg, m.keys.TaskUp):
		return m.shiftTask(-1)
	case key.Matches(msg, m.keys.TaskDown):
		return m.shiftTask(1)
	}
	return m, nil
}

// shiftColumn moves the current column by delta and saves the order.
func (m BoardModel) shiftColumn(delta int) (tea.Model, tea.Cmd) {
	col, ok := m.current()
	if !ok {
		return m, nil
	}
	to := m.col + delta
	if to < 0 || to >= len(m.columns) {
		return m, nil
	}
	m.layout = m.layout.Normalize()
	m.layout.ColumnOrder = board.Move(board.Labels(m.columns), col.Assignment, to)
	m.refreshKeeping(col.Assignment)
	return m, m.savePrefsCmd()
}

// shiftTask moves the selected task by delta inside its open or done
// section and saves the manual order of the column.
func (m BoardModel) shiftTask(delta int) (tea.Model, tea.Cmd) {
	col, ok := m.current()
	if !ok || col.Len() == 0 {
		return m, nil
	}
	m.layout = m.layout.Normalize()
	if _, sorted := m.layout.Sort[col.Assignment]; sorted {
		m.status = "turn sorting off to reorder " + col.Assignment
		return m, nil
	}

	lo, hi := 0, len(col.Open)-1
	if m.row >= len(col.Open) {
		lo, hi = len(col.Open), col.Len()-1
	}
	to := min(max(m.row+delta, lo), hi)
	if to == m.row {
		return m, nil
	}

	ids := make([]string, 0, col.Len())
	for _, task := range col.Open {
		ids = append(ids, task.ID)
	}
	for _, task := range col.Done {
		ids = append(ids, task.ID)
	}
	m.layout.TaskOrder[col.Assignment] = board.Move(ids, ids[m.row], to)
	m.refreshKeeping(col.Assignment)
	m.row = to
	return m, m.savePrefsCmd()
}

// nextSortType walks unsorted, then every sort type, then back to
// unsorted. on is false when the column goes back to manual order.
func nextSortType(current models.SortType, sorted bool) (next models.SortType, on bool) {
	types := board.SortTypes()
	if !sorted {
		return types[0], true
	}
	for i, t := range types {
		if t == current && i+1 < len(types) {
			return types[i+1], true
		}
	}
	return "", false
}

func directionOr(d models.SortDirection) models.SortDirection {
	if d == "" {
		return models.SortAsc
	}
	return d
}

func (m *BoardModel) setStatus(err error) {
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

func (m *BoardModel) refresh() {
	label := ""
	if col, ok := m.current(); ok {
		label = col.Assignment
	}
	m.refreshKeeping(label)
}

// refreshKeeping rebuilds the columns and keeps the cursor on label.
func (m *BoardModel) refreshKeeping(label string) {
	m.columns = m.store.Board(m.layout)
	for i, col := range m.columns {
		if col.Assignment == label {
			m.col = i
			break
		}
	}
	m.clampCursor()
}

func (m *BoardModel) clampCursor() {
	if len(m.columns) == 0 {
		m.col, m.row = 0, 0
		return
	}
	m.col = min(max(m.col, 0), len(m.columns)-1)
	m.row = min(max(m.row, 0), max(m.columns[m.col].Len()-1, 0))
}

func (m *BoardModel) moveColumn(delta int) {
	m.col += delta
	m.row = 0
	m.clampCursor()
}

func (m BoardModel) current() (board.Column, bool) {
	if m.col < 0 || m.col >= len(m.columns) {
		return board.Column{}, false
	}
	return m.columns[m.col], true
}

func (m BoardModel) selected() (models.Task, bool) {
	col, ok := m.current()
	if !ok || col.Len() == 0 {
		return models.Task{}, false
	}
	tasks := append(append([]models.Task(nil), col.Open...), col.Done...)
	if m.row >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[m.row], true
}

func (m BoardModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("studyboard"))
	b.WriteString("\n\n")

	if len(m.columns) == 0 {
		b.WriteString(mutedStyle.Render("  No tasks yet."))
		b.WriteString("\n")
	} else {
		views := make([]string, len(m.columns))
		for i, col := range m.columns {
			views[i] = m.renderColumn(i, col)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, views...))
		b.WriteString("\n")
	}

	if m.mode != inputNone {
		b.WriteString(columnTitleStyle.Render(inputTitles[m.mode]))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("enter save • esc cancel"))
		b.WriteString("\n")
		return b.String()
	}

	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

var inputTitles = map[inputMode]string{
	inputAdd:  "New task",
	inputEdit: "Edit task",
	inputMove: "Move to workspace",
}

func (m BoardModel) renderColumn(i int, col board.Column) string {
	title := col.Assignment
	if col.Pinned {
		title = "* " + title
	}
	lines := []string{columnTitleStyle.Render(title)}
	if col.Sort.Type != "" {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("%s %s", col.Sort.Type, col.Sort.Direction)))
	}

	row := 0
	for _, task := range col.Open {
		lines = append(lines, m.renderTask(i, row, task))
		row++
	}
	for _, task := range col.Done {
		lines = append(lines, m.renderTask(i, row, task))
		row++
	}

	style := columnStyle
	if i == m.col {
		style = activeColumnStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m BoardModel) renderTask(col, row int, task models.Task) string {
	check := "[ ]"
	style := taskStyle
	if task.Completed {
		check = "[x]"
		style = doneTaskStyle
	}
	line := check + " " + task.Title
	if task.HasDeadline() {
		line += " " + mutedStyle.Render(task.Deadline.Format("Jan 2"))
	}
	if col == m.col && row == m.row {
		return selectedTaskStyle.Render("> " + line)
	}
	return style.Render("  " + line)
}
