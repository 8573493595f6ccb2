package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adanyl0v/studyboard/internal/client"
	"github.com/adanyl0v/studyboard/internal/events"
	"github.com/adanyl0v/studyboard/internal/models"
	"github.com/adanyl0v/studyboard/internal/stats"
	"github.com/adanyl0v/studyboard/internal/timer"
)

// LapRecorder stores finished sessions.
type LapRecorder interface {
	AddLap(ctx context.Context, lap client.NewLap) (models.Lap, error)
}

// TimerStateStore keeps the timer across restarts.
type TimerStateStore interface {
	Timer(ctx context.Context) (timer.Snapshot, bool)
	SaveTimer(ctx context.Context, snap timer.Snapshot) error
}

type (
	tickMsg     time.Time
	lapSavedMsg struct {
		lap models.Lap
		err error
	}
)

type TimerModel struct {
	pomodoro *timer.Pomodoro
	laps     LapRecorder
	saved    TimerStateStore
	bus      events.Publisher
	now      func() time.Time

	sessionName string
	recorded    []models.Lap
	status      string
	keys        timerKeyMap
	help        help.Model
}

// NewTimerModel restores the saved timer, if any. bus and now may be nil.
func NewTimerModel(
	laps LapRecorder,
	saved TimerStateStore,
	bus events.Publisher,
	sessionName string,
	now func() time.Time,
) TimerModel {
	if now == nil {
		now = time.Now
	}
	p := timer.NewPomodoro(timer.DefaultPomodoroConfig())
	if snap, ok := saved.Timer(context.Background()); ok {
		p.Restore(snap)
	}
	return TimerModel{
		pomodoro:    p,
		laps:        laps,
		saved:       saved,
		bus:         bus,
		now:         now,
		sessionName: sessionName,
		keys:        defaultTimerKeys(),
		help:        help.New(),
	}
}

func (m TimerModel) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd only drives re-rendering. Time itself comes from the clock.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// persistCmd saves the timer and announces its new state.
func (m TimerModel) persistCmd() tea.Cmd {
	saved, snap := m.saved, m.pomodoro.Snapshot()
	if m.bus != nil {
		m.bus.Publish(events.Event{Topic: events.TopicTimer, Payload: snap})
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		_ = saved.SaveTimer(ctx, snap)
		return nil
	}
}

func (m TimerModel) recordCmd(draft timer.LapDraft) tea.Cmd {
	laps := m.laps
	lap := client.NewLap{
		Name:      m.sessionName,
		Duration:  draft.Duration,
		CreatedAt: &draft.CreatedAt,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		stored, err := laps.AddLap(ctx, lap)
		return lapSavedMsg{lap: stored, err: err}
	}
}

func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tickMsg:
		now := m.now()
		if m.pomodoro.Running() && m.pomodoro.Done(now) {
			cmd := m.completePhase(now)
			return m, tea.Batch(cmd, tickCmd())
		}
		return m, tickCmd()

	case lapSavedMsg:
		if msg.err != nil {
			m.status = "lap not saved: " + msg.err.Error()
			return m, nil
		}
		m.recorded = append(m.recorded, msg.lap)
		m.status = fmt.Sprintf("saved %s", msg.lap.Duration)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *TimerModel) completePhase(now time.Time) tea.Cmd {
	var cmds []tea.Cmd
	if m.pomodoro.Phase() == timer.PhaseFocus {
		length := m.pomodoro.Length()
		cmds = append(cmds, m.recordCmd(timer.LapDraft{
			Duration:  stats.FormatDuration(length),
			Elapsed:   length,
			CreatedAt: now,
		}))
	}
	m.pomodoro.Advance()
	cmds = append(cmds, m.persistCmd())
	return tea.Batch(cmds...)
}

func (m TimerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := m.now()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Sequence(m.persistCmd(), tea.Quit)
	case key.Matches(msg, m.keys.StartPause):
		if m.pomodoro.Running() {
			m.pomodoro.Pause(now)
		} else {
			m.pomodoro.Start(now)
		}
		return m, m.persistCmd()
	case key.Matches(msg, m.keys.Skip):
		m.pomodoro.Advance()
		return m, m.persistCmd()
	case key.Matches(msg, m.keys.Finish):
		if m.pomodoro.Phase() != timer.PhaseFocus {
			m.pomodoro.Advance()
			return m, m.persistCmd()
		}
		draft, ok := m.pomodoro.Finish(now)
		if !ok {
			m.status = "nothing to save"
			return m, m.persistCmd()
		}
		return m, tea.Batch(m.recordCmd(draft), m.persistCmd())
	case key.Matches(msg, m.keys.Reset):
		m.pomodoro.ResetCycle()
		m.status = ""
		return m, m.persistCmd()
	}
	return m, nil
}

func (m TimerModel) View() string {
	now := m.now()
	var b strings.Builder
	b.WriteString(headerStyle.Render(phaseTitle(m.pomodoro.Phase())))
	b.WriteString("\n\n")

	clock := formatClock(m.pomodoro.Remaining(now))
	if !m.pomodoro.Running() {
		clock += " (paused)"
	}
	b.WriteString(clockStyle.Render(clock))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("focus sessions: %d, saved laps: %d",
		m.pomodoro.CompletedFocus(), len(m.recorded))))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func phaseTitle(p timer.Phase) string {
	switch p {
	case timer.PhaseShortBreak:
		return "Short break"
	case timer.PhaseLongBreak:
		return "Long break"
	default:
		return "Focus"
	}
}

func formatClock(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
