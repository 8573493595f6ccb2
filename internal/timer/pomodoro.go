package timer

import "time"

type Phase string

const (
	PhaseFocus      Phase = "focus"
	PhaseShortBreak Phase = "short_break"
	PhaseLongBreak  Phase = "long_break"
)

type PomodoroConfig struct {
	Focus          time.Duration
	ShortBreak     time.Duration
	LongBreak      time.Duration
	LongBreakEvery int
}

func DefaultPomodoroConfig() PomodoroConfig {
	return PomodoroConfig{
		Focus:          25 * time.Minute,
		ShortBreak:     5 * time.Minute,
		LongBreak:      15 * time.Minute,
		LongBreakEvery: 4,
	}
}

// Pomodoro cycles focus and break phases on top of a Timer.
type Pomodoro struct {
	Timer

	cfg            PomodoroConfig
	phase          Phase
	completedFocus int
}

// NewPomodoro fills zero fields of cfg from DefaultPomodoroConfig.
func NewPomodoro(cfg PomodoroConfig) *Pomodoro {
	def := DefaultPomodoroConfig()
	if cfg.Focus <= 0 {
		cfg.Focus = def.Focus
	}
	if cfg.ShortBreak <= 0 {
		cfg.ShortBreak = def.ShortBreak
	}
	if cfg.LongBreak <= 0 {
		cfg.LongBreak = def.LongBreak
	}
	if cfg.LongBreakEvery <= 0 {
		cfg.LongBreakEvery = def.LongBreakEvery
	}
	return &Pomodoro{cfg: cfg, phase: PhaseFocus}
}

func (p *Pomodoro) Phase() Phase {
	return p.phase
}

// CompletedFocus counts the focus phases finished since the last reset.
func (p *Pomodoro) CompletedFocus() int {
	return p.completedFocus
}

func (p *Pomodoro) Length() time.Duration {
	switch p.phase {
	case PhaseShortBreak:
		return p.cfg.ShortBreak
	case PhaseLongBreak:
		return p.cfg.LongBreak
	default:
		return p.cfg.Focus
	}
}

func (p *Pomodoro) Remaining(now time.Time) time.Duration {
	return max(0, p.Length()-p.Elapsed(now))
}

func (p *Pomodoro) Done(now time.Time) bool {
	return p.Remaining(now) == 0
}

// Advance ends the current phase and returns the next one. Every
// LongBreakEvery-th focus phase is followed by a long break. The new
// phase starts paused.
func (p *Pomodoro) Advance() Phase {
	if p.phase == PhaseFocus {
		p.completedFocus++
		if p.completedFocus%p.cfg.LongBreakEvery == 0 {
			p.phase = PhaseLongBreak
		} else {
			p.phase = PhaseShortBreak
		}
	} else {
		p.phase = PhaseFocus
	}
	p.Timer.Reset()
	return p.phase
}

// ResetCycle goes back to the first focus phase.
func (p *Pomodoro) ResetCycle() {
	p.Timer.Reset()
	p.phase = PhaseFocus
	p.completedFocus = 0
}

// Snapshot is the persisted form of a Pomodoro.
type Snapshot struct {
	Running        bool          `json:"running"`
	StartedAt      time.Time     `json:"started_at"`
	Accumulated    time.Duration `json:"accumulated"`
	Phase          Phase         `json:"phase"`
	CompletedFocus int           `json:"completed_focus"`
}

func (p *Pomodoro) Snapshot() Snapshot {
	return Snapshot{
		Running:        p.running,
		StartedAt:      p.startedAt,
		Accumulated:    p.accumulated,
		Phase:          p.phase,
		CompletedFocus: p.completedFocus,
	}
}

// Restore loads s. A running snapshot keeps counting from its start,
// so time spent while the client was closed is included.
func (p *Pomodoro) Restore(s Snapshot) {
	switch s.Phase {
	case PhaseFocus, PhaseShortBreak, PhaseLongBreak:
		p.phase = s.Phase
	default:
		p.phase = PhaseFocus
	}
	p.running = s.Running && !s.StartedAt.IsZero()
	p.startedAt = s.StartedAt
	if !p.running {
		p.startedAt = time.Time{}
	}
	p.accumulated = max(0, s.Accumulated)
	p.completedFocus = max(0, s.CompletedFocus)
}
