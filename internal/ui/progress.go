package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"minic/internal/driver"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// stageWeight is the share of a manifest's work finished once it enters a stage.
var stageWeight = map[driver.Stage]float64{
	driver.StageLoad:    0.1,
	driver.StageCache:   0.2,
	driver.StageDeclare: 0.5,
	driver.StageCapture: 0.9,
}

const statusWidth = 10

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []row
	byPath  map[string]int
	width   int
	done    bool
}

type row struct {
	path    string
	status  string
	stage   driver.Stage
	final   bool
	elapsed time.Duration
	err     string
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model listing every manifest with
// its current stage above an overall progress bar. It quits once events is
// closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = workingStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		rows:    make([]row, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, file := range files {
		m.rows[i] = row{path: file, status: "queued"}
		m.byPath[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(driver.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	finished := 0
	for _, r := range m.rows {
		if r.final {
			finished++
		}
	}
	header := fmt.Sprintf("%s (%d manifests, %d finished)", m.title, len(m.rows), finished)
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusWidth-16, 20)
	for _, r := range m.rows {
		status := statusStyle(r.status).Render(fmt.Sprintf("%*s", statusWidth, r.status))
		fmt.Fprintf(&b, "  %s %s", status, truncate(r.path, nameWidth))
		switch {
		case r.err != "":
			b.WriteString(" " + failStyle.Render(truncate(r.err, nameWidth)))
		case r.final && r.elapsed > 0:
			b.WriteString(" " + faintStyle.Render(r.elapsed.Round(time.Millisecond).String()))
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

// next waits for one event; a closed channel ends the program.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) apply(ev driver.Event) tea.Cmd {
	i, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	r := &m.rows[i]
	r.status = statusLabel(ev.Stage, ev.Status)
	r.stage = ev.Stage
	switch ev.Status {
	case driver.StatusDone, driver.StatusCached, driver.StatusError:
		r.final = true
		r.elapsed = ev.Elapsed
	}
	if ev.Err != nil {
		r.err = ev.Err.Error()
	}
	return m.bar.SetPercent(m.percent())
}

// percent counts a finished manifest as 1 and an unfinished one by its stage weight.
func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range m.rows {
		if r.final {
			sum++
		} else {
			sum += stageWeight[r.stage]
		}
	}
	return sum / float64(len(m.rows))
}

func statusLabel(stage driver.Stage, status driver.Status) string {
	switch {
	case status == driver.StatusWorking && stage == "":
		return "working"
	case status == driver.StatusWorking:
		return string(stage)
	default:
		return string(status)
	}
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case string(driver.StatusDone), string(driver.StatusCached):
		return okStyle
	case string(driver.StatusError):
		return failStyle
	case string(driver.StatusQueued):
		return idleStyle
	default:
		return workingStyle
	}
}

// truncate cuts value to width display cells, marking the cut with "...".
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	tail := "..."
	if width <= len(tail) {
		tail = ""
	}
	return runewidth.Truncate(value, width, tail)
}
