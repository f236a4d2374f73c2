// Package ui renders the progress of a run in the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/darklink/dlgen/internal/driver"
)

// stages lists the driver stages in run order with their share of the bar.
var stages = []struct {
	stage  driver.Stage
	weight float64
}{
	{driver.StageCollect, 0.5},
	{driver.StageAnalyze, 0.3},
	{driver.StageEmit, 0.1},
	{driver.StageWrite, 0.1},
}

// stageState aggregates the events of one stage. Collect and write report
// per package, analyze once per generator, emit once per unit.
type stageState struct {
	count   int
	running bool
	done    bool
	failed  bool
	elapsed time.Duration
}

type pkgState struct {
	path   string
	stage  driver.Stage
	units  int
	failed bool
}

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	stages  map[driver.Stage]*stageState
	pkgs    []pkgState
	index   map[string]int
	width   int
	done    bool
}

type eventMsg driver.Event
type doneMsg struct{}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	idleStyle    = lipgloss.NewStyle().Faint(true)
)

// NewProgressModel returns a Bubble Tea model showing the driver stages of a
// run over packages. It quits when events is closed.
func NewProgressModel(title string, packages []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = runningStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		stages:  make(map[driver.Stage]*stageState, len(stages)),
		index:   make(map[string]int, len(packages)),
		width:   80,
	}
	for _, s := range stages {
		m.stages[s.stage] = &stageState{}
	}
	for i, p := range packages {
		m.pkgs = append(m.pkgs, pkgState{path: p})
		m.index[p] = i
	}
	return m
}

// Run shows the progress view on out until events is closed.
func Run(out io.Writer, title string, packages []string, events <-chan driver.Event) error {
	p := tea.NewProgram(NewProgressModel(title, packages, events), tea.WithOutput(out), tea.WithInput(nil))
	_, err := p.Run()
	return err
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.apply(driver.Event(msg))
		return m, tea.Batch(m.bar.SetPercent(m.percent()), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) apply(ev driver.Event) {
	st, ok := m.stages[ev.Stage]
	if !ok {
		return
	}
	// Stages run in order, so an event of a later stage closes the earlier ones.
	for _, s := range stages {
		if s.stage == ev.Stage {
			break
		}
		m.stages[s.stage].running = false
		m.stages[s.stage].done = true
	}
	st.elapsed += ev.Elapsed
	switch ev.Status {
	case driver.StatusWorking:
		st.running = true
	case driver.StatusError:
		st.failed = true
		st.running = false
	case driver.StatusDone:
		switch ev.Stage {
		case driver.StageAnalyze:
			st.done = true
			st.running = false
		default:
			st.count++
			st.running = true
		}
	}

	idx, ok := m.index[ev.Package]
	if !ok {
		return
	}
	p := &m.pkgs[idx]
	p.stage = ev.Stage
	if ev.Stage == driver.StageEmit && ev.Status == driver.StatusDone {
		p.units++
	}
	if ev.Status == driver.StatusError {
		p.failed = true
	}
	if ev.Stage != driver.StageEmit && ev.Stage != driver.StageAnalyze {
		if st.count == len(m.pkgs) {
			st.done = true
			st.running = false
		}
	}
}

func (m *progressModel) percent() float64 {
	total := 0.0
	for _, s := range stages {
		st := m.stages[s.stage]
		switch {
		case st.done || st.failed:
			total += s.weight
		case s.stage == driver.StageCollect || s.stage == driver.StageWrite:
			if len(m.pkgs) > 0 {
				total += s.weight * float64(st.count) / float64(len(m.pkgs))
			}
		}
	}
	return min(total, 1)
}

func (m *progressModel) View() string {
	var b strings.Builder
	header := m.title
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	for _, s := range stages {
		fmt.Fprintf(&b, "  %-8s %s\n", s.stage, m.stageSummary(s.stage))
	}
	b.WriteString("\n")

	nameWidth := max(m.width-24, 20)
	for _, p := range m.pkgs {
		stage := idleStyle.Render(fmt.Sprintf("%-8s", "queued"))
		if p.failed {
			stage = failedStyle.Render(fmt.Sprintf("%-8s", "error"))
		} else if p.stage != "" {
			stage = runningStyle.Render(fmt.Sprintf("%-8s", p.stage))
		}
		line := fmt.Sprintf("  %s %s", stage, truncate(p.path, nameWidth))
		if p.units > 0 {
			line += idleStyle.Render(fmt.Sprintf(" %d units", p.units))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) stageSummary(stage driver.Stage) string {
	st := m.stages[stage]
	var text string
	switch stage {
	case driver.StageCollect, driver.StageWrite:
		text = fmt.Sprintf("%d/%d packages", st.count, len(m.pkgs))
	case driver.StageEmit:
		text = fmt.Sprintf("%d units", st.count)
	default:
		text = "generators"
	}
	if st.elapsed > 0 {
		text += " " + st.elapsed.Round(time.Millisecond).String()
	}
	switch {
	case st.failed:
		return failedStyle.Render(text + " failed")
	case st.done:
		return doneStyle.Render(text)
	case st.running:
		return runningStyle.Render(text)
	}
	return idleStyle.Render("-")
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
