package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adanyl0v/studyboard/internal/board"
	"github.com/adanyl0v/studyboard/internal/client"
	"github.com/adanyl0v/studyboard/internal/events"
	"github.com/adanyl0v/studyboard/internal/models"
	"github.com/adanyl0v/studyboard/internal/timer"
)

type MockTaskStore struct {
	Tasks          []models.Task
	ToggleTaskFunc func(ctx context.Context, id string) (models.Task, error)
	DeleteTaskFunc func(ctx context.Context, id string) error
	AddTaskFunc    func(ctx context.Context, draft models.Task) (models.Task, error)
	EditTaskFunc   func(ctx context.Context, id string, patch client.TaskPatch) (models.Task, error)
	MoveTaskFunc   func(ctx context.Context, id string, workspaceID *string) (models.Task, error)
}

func (m *MockTaskStore) Board(prefs models.Preferences) []board.Column {
	return board.Columns(m.Tasks, prefs)
}

func (m *MockTaskStore) Reload(context.Context) error { return nil }

func (m *MockTaskStore) ToggleTask(ctx context.Context, id string) (models.Task, error) {
	return m.ToggleTaskFunc(ctx, id)
}

func (m *MockTaskStore) DeleteTask(ctx context.Context, id string) error {
	return m.DeleteTaskFunc(ctx, id)
}

func (m *MockTaskStore) AddTask(ctx context.Context, draft models.Task) (models.Task, error) {
	return m.AddTaskFunc(ctx, draft)
}

func (m *MockTaskStore) EditTask(ctx context.Context, id string, patch client.TaskPatch) (models.Task, error) {
	return m.EditTaskFunc(ctx, id, patch)
}

func (m *MockTaskStore) MoveTask(ctx context.Context, id string, workspaceID *string) (models.Task, error) {
	return m.MoveTaskFunc(ctx, id, workspaceID)
}

type MockPreferenceStore struct {
	Saved []models.Preferences
}

func (m *MockPreferenceStore) Preferences(_ context.Context, workspaceID string) models.Preferences {
	if len(m.Saved) > 0 {
		return m.Saved[len(m.Saved)-1]
	}
	return models.DefaultPreferences(workspaceID)
}

func (m *MockPreferenceStore) SavePreferences(_ context.Context, prefs models.Preferences) error {
	m.Saved = append(m.Saved, prefs)
	return nil
}

// runCmd executes cmd and every command batched inside it.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func keyMsg(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func boardTasks() []models.Task {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []models.Task{
		{ID: "1", Title: "Integrals", Assignment: "Math", CreatedAt: t0},
		{ID: "2", Title: "Algebra", Assignment: "Math", CreatedAt: t0.Add(time.Hour)},
		{ID: "3", Title: "Essay", Assignment: "History", CreatedAt: t0},
	}
}

func TestBoardViewShowsColumns(t *testing.T) {
	store := &MockTaskStore{Tasks: boardTasks()}
	m := NewBoardModel(store, &MockPreferenceStore{}, "", nil)

	view := m.View()
	for _, want := range []string{"Math", "History", "Integrals", "Essay"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestBoardPinPersists(t *testing.T) {
	store := &MockTaskStore{Tasks: boardTasks()}
	prefs := &MockPreferenceStore{}
	m := NewBoardModel(store, prefs, "", nil)

	label := m.columns[m.col].Assignment
	model, cmd := m.Update(keyMsg("p"))
	m = model.(BoardModel)
	runCmd(cmd)

	if len(prefs.Saved) != 1 || !prefs.Saved[0].Pinned[label] {
		t.Fatalf("saved = %+v", prefs.Saved)
	}
	if m.columns[0].Assignment != label || !m.columns[0].Pinned {
		t.Errorf("pinned column should lead, got %+v", m.columns[0])
	}

	model, cmd = m.Update(keyMsg("p"))
	m = model.(BoardModel)
	runCmd(cmd)
	if prefs.Saved[1].Pinned[label] {
		t.Error("second press should unpin")
	}
}

func TestBoardSortCycle(t *testing.T) {
	store := &MockTaskStore{Tasks: boardTasks()}
	prefs := &MockPreferenceStore{}
	m := NewBoardModel(store, prefs, "", nil)
	label := m.columns[m.col].Assignment

	want := append(board.SortTypes(), "")
	for i, w := range want {
		model, cmd := m.Update(keyMsg("s"))
		m = model.(BoardModel)
		runCmd(cmd)
		if got := prefs.Saved[i].Sort[label].Type; got != w {
			t.Fatalf("press %d: sort = %q, want %q", i, got, w)
		}
	}
}

func TestBoardOrderFlipsDirection(t *testing.T) {
	store := &MockTaskStore{Tasks: boardTasks()}
	prefs := &MockPreferenceStore{}
	m := NewBoardModel(store, prefs, "", nil)
	label := m.columns[m.col].Assignment

	model, cmd := m.Update(keyMsg("o"))
	m = model.(BoardModel)
	if cmd != nil {
		t.Fatal("unsorted column has no direction to flip")
	}

	model, cmd = m.Update(keyMsg("s"))
	m = model.(BoardModel)
	runCmd(cmd)
	model, cmd = m.Update(keyMsg("o"))
	m = model.(BoardModel)
	runCmd(cmd)
	if got := prefs.Saved[len(prefs.Saved)-1].Sort[label].Direction; got != models.SortDesc {
		t.Errorf("direction = %q", got)
	}
}

func TestBoardToggleAndDelete(t *testing.T) {
	var toggled, deleted string
	store := &MockTaskStore{
		Tasks: boardTasks(),
		ToggleTaskFunc: func(_ context.Context, id string) (models.Task, error) {
			toggled = id
			return models.Task{ID: id}, nil
		},
		DeleteTaskFunc: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	m := NewBoardModel(store, &MockPreferenceStore{}, "", nil)
	selected, ok := m.selected()
	if !ok {
		t.Fatal("expected a selected task")
	}

	_, cmd := m.Update(keyMsg("x"))
	msgs := runCmd(cmd)
	if toggled != selected.ID {
		t.Errorf("toggled %q, want %q", toggled, selected.ID)
	}
	if len(msgs) != 1 {
		t.Fatalf("msgs = %v", msgs)
	}
	if _, ok := msgs[0].(actionDoneMsg); !ok {
		t.Errorf("msg = %#v", msgs[0])
	}

	_, cmd = m.Update(keyMsg("d"))
	runCmd(cmd)
	if deleted != selected.ID {
		t.Errorf("deleted %q, want %q", deleted, selected.ID)
	}
}

func TestBoardCursorStaysInBounds(t *testing.T) {
	store := &MockTaskStore{Tasks: boardTasks()}
	m := NewBoardModel(store, &MockPreferenceStore{}, "", nil)

	var model tea.Model = m
	for _, k := range []string{"l", "l", "l", "j", "j", "j", "h", "h", "h", "k", "k"} {
		model, _ = model.Update(keyMsg(k))
	}
	m = model.(BoardModel)
	if m.col != 0 || m.row != 0 {
		t.Errorf("cursor = (%d, %d)", m.col, m.row)
	}
}

// press feeds keys to m one at a time and drops the commands.
func press(m BoardModel, keys ...tea.KeyMsg) BoardModel {
	var model tea.Model = m
	for _, k := range keys {
		model, _ = model.Update(k)
	}
	return model.(BoardModel)
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func TestBoardAddTask(t *testing.T) {
	var added models.Task
	store := &MockTaskStore{
		Tasks: boardTasks(),
		AddTaskFunc: func(_ context.Context, draft models.Task) (models.Task, error) {
			added = draft
			return draft, nil
		},
	}
	m := NewBoardModel(store, &MockPreferenceStore{}, "", nil)
	if label := m.columns[m.col].Assignment; label != "History" {
		t.Fatalf("first column = %q", label)
	}

	m = press(m, keyMsg("a"), keyMsg("Timeline q @2024-03-10"))
	if m.mode != inputAdd {
		t.Fatal("typing into the prompt should not leave it")
	}
	model, cmd := m.Update(enter)
	m = model.(BoardModel)
	runCmd(cmd)

	if added.Title != "Timeline q" || added.Assignment != "History" {
		t.Errorf("added = %+v", added)
	}
	if added.Deadline == nil || added.Deadline.Format(time.DateOnly) != "2024-03-10" {
		t.Errorf("deadline = %v", added.Deadline)
	}
	if m.mode != inputNone {
		t.Error("enter should close the prompt")
	}
}

func TestBoardAddTaskNeedsTitle(t *testing.T) {
	store := &MockTaskStore{
		Tasks: boardTasks(),
		AddTaskFunc: func(context.Context, models.Task) (models.Task, error) {
			t.Fatal("a task without a title must not reach the store")
			return models.Task{}, nil
		},
	}
	m := NewBoardModel(store, &MockPreferenceStore{}, "", nil)
	m = press(m, keyMsg("a"), keyMsg("#Math !easy"))
	model, cmd := m.Update(enter)
	m = model.(BoardModel)
	if cmd != nil {
		t.Fatal("expected no command")
	}
	if m.status != errNoTitle.Error() {
		t.Errorf("status = %q", m.status)
	}
}

func TestBoardEscCancelsPrompt(t *testing.T) {
	store := &MockTaskStore{Tasks: boardTasks()}
	m := NewBoardModel(store, &MockPreferenceStore{}, "", nil)
	m = press(m, keyMsg("a"), keyMsg("draft"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != inputNone || m.input.Value() != "" {
		t.Errorf("mode = %d, value = %q", m.mode, m.input.Value())
	}
	if strings.Contains(m.View(), "New task") {
		t.Error("prompt should be gone from the view")
	}
}

func TestBoardEditTask(t *testing.T) {
	var gotID string
	var gotPatch client.TaskPatch
	store := &MockTaskStore{
		Tasks: boardTasks(),
		EditTaskFunc: func(_ context.Context, id string, patch client.TaskPatch) (models.Task, error) {
			gotID, gotPatch = id, patch
			return models.Task{ID: id}, nil
		},
	}
	m := NewBoardModel(store, &MockPreferenceStore{}, "", nil)
	m = press(m, keyMsg("l"), keyMsg("e"))
	if got := m.input.Value(); got != "Integrals #Math" {
		t.Fatalf("prefilled = %q", got)
	}

	m = press(m, keyMsg(" !hard"))
	_, cmd := m.Update(enter)
	runCmd(cmd)

	if gotID != "1" {
		t.Errorf("edited %q", gotID)
	}
	if gotPatch.Difficulty == nil || *gotPatch.Difficulty != "hard" {
		t.Errorf("difficulty = %v", gotPatch.Difficulty)
	}
	if gotPatch.Title != nil || gotPatch.Assignment != nil || gotPatch.Deadline != nil {
		t.Errorf("unchanged fields sent: %+v", gotPatch)
	}
}

func TestBoardEditUnchangedSendsNothing(t *testing.T) {
	store := &MockTaskStore{Tasks: boardTasks()}
	m := NewBoardModel(store, &MockPreferenceStore{}, "", nil)
	m = press(m, keyMsg("e"))
	if _, cmd := m.Update(enter); cmd != nil {
		t.Error("an unchanged task should not be patched")
	}
}

func TestBoardMoveToWorkspace(t *testing.T) {
	var gotID string
	var gotWorkspace *string
	store := &MockTaskStore{
		Tasks: boardTasks(),
		MoveTaskFunc: func(_ context.Context, id string, workspaceID *string) (models.Task, error) {
			gotID, gotWorkspace = id, workspaceID
			return models.Task{ID: id, WorkspaceID: workspaceID}, nil
		},
	}
	m := NewBoardModel(store, &MockPreferenceStore{}, "", nil)

	m = press(m, keyMsg("m"), keyMsg("ws-2"))
	model, cmd := m.Update(enter)
	m = model.(BoardModel)
	runCmd(cmd)
	if gotID != "3" || gotWorkspace == nil || *gotWorkspace != "ws-2" {
		t.Fatalf("moved %q to %v", gotID, gotWorkspace)
	}

	m = press(m, keyMsg("m"))
	_, cmd = m.Update(enter)
	runCmd(cmd)
	if gotWorkspace != nil {
		t.Errorf("an empty prompt should clear the workspace, got %q", *gotWorkspace)
	}
}

func TestBoardReorderColumns(t *testing.T) {
	store := &MockTaskStore{Tasks: boardTasks()}
	prefs := &MockPreferenceStore{}
	m := NewBoardModel(store, prefs, "", nil)

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyShiftRight})
	m = model.(BoardModel)
	runCmd(cmd)

	if len(prefs.Saved) != 1 {
		t.Fatalf("saved = %+v", prefs.Saved)
	}
	if got := prefs.Saved[0].ColumnOrder; len(got) != 2 || got[0] != "Math" || got[1] != "History" {
		t.Errorf("column order = %v", got)
	}
	if got := board.Labels(m.columns); got[0] != "Math" || got[1] != "History" {
		t.Errorf("columns = %v", got)
	}
	if m.columns[m.col].Assignment != "History" {
		t.Error("cursor should follow the moved column")
	}

	_, cmd = m.Update(keyMsg("L"))
	if cmd != nil {
		t.Error("last column cannot move further right")
	}
}

func TestBoardReorderTasks(t *testing.T) {
	store := &MockTaskStore{Tasks: boardTasks()}
	prefs := &MockPreferenceStore{}
	m := NewBoardModel(store, prefs, "", nil)
	m = press(m, keyMsg("l"))

	model, cmd := m.Update(keyMsg("J"))
	m = model.(BoardModel)
	runCmd(cmd)

	if len(prefs.Saved) != 1 {
		t.Fatalf("saved = %+v", prefs.Saved)
	}
	if got := prefs.Saved[0].TaskOrder["Math"]; len(got) != 2 || got[0] != "2" || got[1] != "1" {
		t.Errorf("task order = %v", got)
	}
	if task, _ := m.selected(); task.ID != "1" || m.row != 1 {
		t.Errorf("cursor should follow the task, row %d on %q", m.row, task.ID)
	}

	model, cmd = m.Update(tea.KeyMsg{Type: tea.KeyShiftUp})
	m = model.(BoardModel)
	runCmd(cmd)
	if got := prefs.Saved[1].TaskOrder["Math"]; got[0] != "1" {
		t.Errorf("task order = %v", got)
	}
}

func TestBoardReorderKeepsDoneTasksApart(t *testing.T) {
	tasks := boardTasks()
	tasks[0].Completed = true
	store := &MockTaskStore{Tasks: tasks}
	prefs := &MockPreferenceStore{}
	m := NewBoardModel(store, prefs, "", nil)
	m = press(m, keyMsg("l"))

	if _, cmd := m.Update(keyMsg("J")); cmd != nil {
		t.Error("the only open task cannot move into the done section")
	}
}

func TestBoardReorderNeedsManualOrder(t *testing.T) {
	store := &MockTaskStore{Tasks: boardTasks()}
	prefs := &MockPreferenceStore{}
	m := NewBoardModel(store, prefs, "", nil)

	model, cmd := m.Update(keyMsg("s"))
	m = model.(BoardModel)
	runCmd(cmd)

	model, cmd = m.Update(keyMsg("J"))
	m = model.(BoardModel)
	if cmd != nil || len(prefs.Saved) != 1 {
		t.Fatalf("sorted column should not be reordered, saved %d", len(prefs.Saved))
	}
	if m.status == "" {
		t.Error("expected a hint in the status line")
	}
}

func TestParseTaskLine(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    taskLine
		wantErr bool
	}{
		{
			name: "title only",
			in:   "  Read   chapter 3 ",
			want: taskLine{Title: "Read chapter 3"},
		},
		{
			name: "all markers",
			in:   "Lab report #Organic_Chemistry @2024-04-01 !medium",
			want: taskLine{
				Title:      "Lab report",
				Assignment: "Organic Chemistry",
				Deadline:   ptrTime(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)),
				Difficulty: models.DifficultyMedium,
			},
		},
		{
			name: "lone marker stays in the title",
			in:   "C # basics",
			want: taskLine{Title: "C # basics"},
		},
		{name: "bad date", in: "Essay @tomorrow", wantErr: true},
		{name: "bad difficulty", in: "Essay !brutal", wantErr: true},
		{name: "no title", in: "#Math @2024-04-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTaskLine(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Title != tt.want.Title || got.Assignment != tt.want.Assignment || got.Difficulty != tt.want.Difficulty {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if (got.Deadline == nil) != (tt.want.Deadline == nil) ||
				(got.Deadline != nil && !got.Deadline.Equal(*tt.want.Deadline)) {
				t.Errorf("deadline = %v, want %v", got.Deadline, tt.want.Deadline)
			}
		})
	}
}

func TestTaskLinePatchClearsRemovedMarkers(t *testing.T) {
	deadline := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	task := models.Task{Title: "Lab report", Assignment: "Chemistry", Deadline: &deadline}

	line, err := parseTaskLine("Lab report")
	if err != nil {
		t.Fatal(err)
	}
	patch, ok := line.patch(task)
	if !ok {
		t.Fatal("expected a patch")
	}
	if patch.Assignment == nil || *patch.Assignment != "" {
		t.Errorf("assignment = %v", patch.Assignment)
	}
	if patch.Deadline == nil || *patch.Deadline != "" {
		t.Errorf("deadline = %v", patch.Deadline)
	}
	if patch.Title != nil {
		t.Errorf("title should be untouched, got %q", *patch.Title)
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

type MockLapRecorder struct {
	Laps []client.NewLap
}

func (m *MockLapRecorder) AddLap(_ context.Context, lap client.NewLap) (models.Lap, error) {
	m.Laps = append(m.Laps, lap)
	return models.Lap{ID: "lap-1", Duration: lap.Duration}, nil
}

type MockTimerState struct {
	Snap  timer.Snapshot
	Saved bool
}

func (m *MockTimerState) Timer(context.Context) (timer.Snapshot, bool) {
	return m.Snap, m.Saved
}

func (m *MockTimerState) SaveTimer(_ context.Context, snap timer.Snapshot) error {
	m.Snap, m.Saved = snap, true
	return nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestTimerFinishRecordsLap(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	laps := &MockLapRecorder{}
	saved := &MockTimerState{}
	bus := events.NewBus()
	updates := bus.Subscribe(events.TopicTimer)
	m := NewTimerModel(laps, saved, bus, "Math", clock.now)

	model, cmd := m.Update(keyMsg(" "))
	m = model.(TimerModel)
	runCmd(cmd)
	if !saved.Snap.Running {
		t.Fatal("start should be persisted")
	}
	select {
	case e := <-updates:
		if snap, ok := e.Payload.(timer.Snapshot); !ok || !snap.Running {
			t.Errorf("timer event payload = %+v", e.Payload)
		}
	default:
		t.Error("start should publish a timer event")
	}

	clock.t = clock.t.Add(12*time.Minute + 30*time.Second)
	model, cmd = m.Update(keyMsg("f"))
	m = model.(TimerModel)
	for _, msg := range runCmd(cmd) {
		if msg != nil {
			model, _ = m.Update(msg)
			m = model.(TimerModel)
		}
	}

	if len(laps.Laps) != 1 || laps.Laps[0].Duration != "00:12:30" || laps.Laps[0].Name != "Math" {
		t.Fatalf("laps = %+v", laps.Laps)
	}
	if len(m.recorded) != 1 {
		t.Errorf("recorded = %d", len(m.recorded))
	}
	if saved.Snap.Running || saved.Snap.Accumulated != 0 {
		t.Errorf("finished timer should be saved stopped, got %+v", saved.Snap)
	}
}

func TestTimerFinishWithoutTimeRecordsNothing(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	laps := &MockLapRecorder{}
	m := NewTimerModel(laps, &MockTimerState{}, nil, "", clock.now)

	_, cmd := m.Update(keyMsg("f"))
	runCmd(cmd)
	if len(laps.Laps) != 0 {
		t.Fatalf("laps = %+v", laps.Laps)
	}
}

func TestTimerCompletesFocusPhase(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	laps := &MockLapRecorder{}
	m := NewTimerModel(laps, &MockTimerState{}, nil, "", clock.now)
	m.pomodoro.Start(clock.t)

	clock.t = clock.t.Add(26 * time.Minute)
	runCmd(m.completePhase(clock.t))

	if m.pomodoro.Phase() != timer.PhaseShortBreak {
		t.Errorf("phase = %s", m.pomodoro.Phase())
	}
	if len(laps.Laps) != 1 || laps.Laps[0].Duration != "00:25:00" {
		t.Errorf("laps = %+v", laps.Laps)
	}
}

func TestTimerRestoresSnapshot(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: start.Add(5 * time.Minute)}
	saved := &MockTimerState{
		Snap:  timer.Snapshot{Running: true, StartedAt: start, Phase: timer.PhaseFocus},
		Saved: true,
	}
	m := NewTimerModel(&MockLapRecorder{}, saved, nil, "", clock.now)
	if !strings.Contains(m.View(), "20:00") {
		t.Errorf("view = %q", m.View())
	}
}
