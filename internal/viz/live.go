package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/form"
	"github.com/san-kum/trajsim/internal/logging"
	"github.com/san-kum/trajsim/internal/physics"
	"github.com/san-kum/trajsim/internal/sim"
)

const (
	width         = 60
	height        = 20
	frameInterval = time.Second / 30
	trailCapacity = 2000
)

type frameMsg time.Time

// Model is the live launcher: a form, a fire trigger and a trajectory view.
// Steps run on their own ticker goroutine; frames only read snapshots.
type Model struct {
	session  *sim.Session
	form     *form.Form
	newTicks func() sim.TickSource
	log      *zap.Logger

	focus    int
	rejected map[form.Field]string
	trail    []dynamo.Vec2
	canvas   *Canvas
	snap     sim.Snapshot
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewModel wires a session to a form. newTicks builds the step cadence each
// time stepping (re)starts; nil means a wall ticker at physics.TickInterval.
func NewModel(session *sim.Session, f *form.Form, newTicks func() sim.TickSource, log *zap.Logger) *Model {
	if newTicks == nil {
		newTicks = func() sim.TickSource { return sim.NewWallTicker(physics.TickInterval) }
	}
	return &Model{
		session:  session,
		form:     f,
		newTicks: newTicks,
		log:      logging.OrNop(log),
		rejected: make(map[form.Field]string),
		trail:    make([]dynamo.Vec2, 0, trailCapacity),
		canvas:   NewCanvas(width, height),
		snap:     session.Snapshot(),
	}
}

func (m *Model) Init() tea.Cmd {
	m.resume()
	return frame()
}

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m *Model) resume() {
	if m.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.cancel, m.done, m.running = cancel, done, true
	go func() {
		defer close(done)
		_ = m.session.Drive(ctx, m.newTicks())
	}()
}

// Pause stops stepping and waits for the driver goroutine to exit.
func (m *Model) Pause() {
	if !m.running {
		return
	}
	m.cancel()
	<-m.done
	m.running = false
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case frameMsg:
		m.refresh()
		return m, frame()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "q" {
		m.Pause()
		return tea.Quit
	}
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.Pause()
		return tea.Quit
	case tea.KeyEnter:
		m.fire()
	case tea.KeyTab, tea.KeyDown:
		m.focus = (m.focus + 1) % len(form.Fields())
	case tea.KeyShiftTab, tea.KeyUp:
		m.focus = (m.focus + len(form.Fields()) - 1) % len(form.Fields())
	case tea.KeyBackspace:
		text := m.form.Text(m.focused())
		if len(text) > 0 {
			m.input(text[:len(text)-1])
		}
	case tea.KeySpace:
		if m.running {
			m.Pause()
		} else {
			m.resume()
		}
	case tea.KeyRunes:
		m.typeRunes(msg.Runes)
	}
	return nil
}

func (m *Model) typeRunes(runes []rune) {
	for _, r := range runes {
		switch {
		case strings.ContainsRune("0123456789.-+eE", r):
			m.input(m.form.Text(m.focused()) + string(r))
		case r == 'f':
			m.fire()
		}
	}
}

func (m *Model) focused() form.Field { return form.Fields()[m.focus] }

// input routes edited text through the form, then into the session.
// Text that does not parse, or that the session refuses, leaves the
// previous value in effect.
func (m *Model) input(text string) {
	field := m.focused()
	if !m.form.Input(field, text) {
		delete(m.rejected, field)
		return
	}
	if err := m.apply(field, m.form.Value(field)); err != nil {
		m.rejected[field] = err.Error()
		m.log.Debug("input rejected", zap.Stringer("field", field), zap.Error(err))
		return
	}
	delete(m.rejected, field)
}

func (m *Model) apply(field form.Field, v float64) error {
	switch field {
	case form.Wind:
		return m.session.SetWind(v)
	case form.Elevation:
		return m.session.SetElevation(v)
	case form.Caliber:
		return m.session.SetCaliber(v)
	case form.BallisticCoefficient:
		return m.session.SetBallisticCoefficient(v)
	}
	return nil
}

func (m *Model) fire() {
	m.snap = m.session.Fire()
	m.trail = m.trail[:0]
	m.trail = append(m.trail, m.snap.Projectile.Position)
}

func (m *Model) refresh() {
	m.snap = m.session.Snapshot()
	if !m.snap.Fired {
		return
	}
	m.trail = append(m.trail, m.snap.Projectile.Position)
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[1:]
	}
}

func (m *Model) View() string {
	m.canvas.Clear()
	m.canvas.DrawPath(m.trail, FitBounds(m.trail))

	var s strings.Builder
	s.WriteString(headerStyle.Render("TRAJECTORY") + "\n")

	switch {
	case m.snap.Fired && !m.snap.Projectile.IsValid():
		s.WriteString(statusDiverged.Render("DIVERGED") + "\n\n")
	case m.running:
		s.WriteString(statusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(statusPaused.Render("PAUSED") + "\n\n")
	}

	for i, field := range form.Fields() {
		line := labelStyle.Render(field.String()) + valueStyle.Render(m.form.Text(field))
		if i == m.focus {
			line = activeStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		s.WriteString(line + "\n")
		if msg, ok := m.rejected[field]; ok {
			s.WriteString("    " + rejectStyle.Render(msg) + "\n")
		}
	}

	p := m.snap.Projectile
	s.WriteString("\n")
	s.WriteString(labelStyle.Render("time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.snap.Time)) + "\n")
	s.WriteString(labelStyle.Render("speed") + valueStyle.Render(fmt.Sprintf("%.2f m/s", p.Velocity.Norm())) + "\n")
	s.WriteString(fmt.Sprintf("\nPosition: (%g, %g)\n", p.Position.X, p.Position.Y))
	s.WriteString(helpStyle.Render("enter/f fire  tab field  space pause  esc quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), panelStyle.Render(s.String()))
}
