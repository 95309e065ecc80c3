package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// StepStatus represents the status of a step
type StepStatus int

const (
	StatusPending StepStatus = iota
	StatusRunning
	StatusComplete
	StatusFailed
	StatusSkipped
)

// Step is one line of the progress display.
type Step struct {
	Name    string
	Status  StepStatus
	Message string
}

// maxVisibleSteps bounds how many steps are drawn at once; long flag lists
// scroll so the running step stays on screen.
const maxVisibleSteps = 12

// ProgressModel is the Bubble Tea model behind ProgressTracker.
type ProgressModel struct {
	spinner    spinner.Model
	steps      []Step
	current    int
	title      string
	subMessage string
	done       bool
	err        error
	quitting   bool
}

// ProgressOption configures a ProgressModel.
type ProgressOption func(*ProgressModel)

// WithTitle sets the title for the progress display
func WithTitle(title string) ProgressOption {
	return func(m *ProgressModel) { m.title = title }
}

// WithSteps initializes the progress with predefined steps
func WithSteps(steps []string) ProgressOption {
	return func(m *ProgressModel) {
		m.steps = make([]Step, len(steps))
		for i, name := range steps {
			m.steps[i] = Step{Name: name}
		}
	}
}

// NewProgressModel creates a new progress model
func NewProgressModel(opts ...ProgressOption) ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorSecondary)

	m := ProgressModel{spinner: s}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ProgressMsg updates one step. StepIndex -1 only changes the sub-message.
type ProgressMsg struct {
	StepIndex  int
	Status     StepStatus
	Message    string
	SubMessage string
}

// DoneMsg ends the display.
type DoneMsg struct {
	Err error
}

// Init starts the spinner.
func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ProgressMsg:
		if msg.StepIndex >= 0 && msg.StepIndex < len(m.steps) {
			m.steps[msg.StepIndex].Status = msg.Status
			m.steps[msg.StepIndex].Message = msg.Message
			m.current = msg.StepIndex
		}
		m.subMessage = msg.SubMessage
		return m, nil

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// visibleWindow returns the [start, end) range of steps to draw.
func (m ProgressModel) visibleWindow() (int, int) {
	if len(m.steps) <= maxVisibleSteps {
		return 0, len(m.steps)
	}
	start := m.current - maxVisibleSteps/2
	if start < 0 {
		start = 0
	}
	end := start + maxVisibleSteps
	if end > len(m.steps) {
		end = len(m.steps)
		start = end - maxVisibleSteps
	}
	return start, end
}

func (m ProgressModel) renderStep(step Step) string {
	var icon string
	var style styleWrapper
	switch step.Status {
	case StatusRunning:
		icon, style = m.spinner.View(), StepRunning
	case StatusComplete:
		icon, style = GetCheckMark(), StepComplete
	case StatusFailed:
		icon, style = GetCrossMark(), StepFailed
	case StatusSkipped:
		icon, style = Warning.Render("⊘"), StepSkipped
	default:
		icon, style = Muted.Render("○"), StepPending
	}
	line := icon + " " + style.Render(step.Name)
	if step.Message != "" && step.Status != StatusPending && step.Status != StatusRunning {
		line += Dim.Render(" → " + step.Message)
	}
	return line
}

// View renders the progress display
func (m ProgressModel) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	var b strings.Builder
	if m.title != "" {
		b.WriteString(Title.Render(m.title))
		b.WriteString("\n\n")
	}

	start, end := m.visibleWindow()
	if start > 0 {
		b.WriteString(Muted.Render(fmt.Sprintf("  … %d earlier", start)))
		b.WriteString("\n")
	}
	for i := start; i < end; i++ {
		b.WriteString(m.renderStep(m.steps[i]))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	if end < len(m.steps) {
		b.WriteString("\n")
		b.WriteString(Muted.Render(fmt.Sprintf("  … %d more", len(m.steps)-end)))
	}

	if m.subMessage != "" {
		b.WriteString("\n\n")
		b.WriteString(Dim.Render(m.subMessage))
	}

	if m.done {
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString(ErrorBox.Render(GetCrossMark() + " " + m.err.Error()))
		} else {
			completed := 0
			for _, s := range m.steps {
				if s.Status == StatusComplete {
					completed++
				}
			}
			b.WriteString(Success.Render(fmt.Sprintf("✓ Completed %d/%d steps", completed, len(m.steps))))
		}
	}
	b.WriteString("\n")

	return tea.NewView(b.String())
}

// ProgressTracker drives a ProgressModel from ordinary code without
// exposing Bubble Tea to callers.
type ProgressTracker struct {
	title  string
	steps  []string
	output io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
	running bool
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(title string, steps []string) *ProgressTracker {
	return &ProgressTracker{title: title, steps: steps}
}

// SetOutput redirects the display away from stdout.
func (pt *ProgressTracker) SetOutput(w io.Writer) {
	pt.mu.Lock()
	pt.output = w
	pt.mu.Unlock()
}

// Start begins the progress display
func (pt *ProgressTracker) Start() {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if pt.running {
		return
	}

	model := NewProgressModel(WithTitle(pt.title), WithSteps(pt.steps))
	opts := []tea.ProgramOption{tea.WithoutSignalHandler(), tea.WithInput(nil)}
	if pt.output != nil {
		opts = append(opts, tea.WithOutput(pt.output))
	}
	pt.program = tea.NewProgram(model, opts...)
	pt.done = make(chan struct{})
	pt.running = true

	go func(p *tea.Program, done chan struct{}) {
		defer close(done)
		_, _ = p.Run()
	}(pt.program, pt.done)

	// Let the program draw its first frame before updates arrive.
	time.Sleep(50 * time.Millisecond)
}

// UpdateStep updates a specific step's status
func (pt *ProgressTracker) UpdateStep(index int, status StepStatus, message string) {
	pt.send(ProgressMsg{StepIndex: index, Status: status, Message: message})
}

// SetMessage sets the line shown below the steps
func (pt *ProgressTracker) SetMessage(message string) {
	pt.send(ProgressMsg{StepIndex: -1, SubMessage: message})
}

func (pt *ProgressTracker) send(msg tea.Msg) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if pt.program == nil || !pt.running {
		return
	}
	pt.program.Send(msg)
}

// Complete shows the final state and waits for the program to exit.
func (pt *ProgressTracker) Complete(err error) {
	pt.finish(DoneMsg{Err: err})
}

// Stop ends the display without a completion banner.
func (pt *ProgressTracker) Stop() {
	pt.finish(nil)
}

func (pt *ProgressTracker) finish(msg tea.Msg) {
	pt.mu.Lock()
	if pt.program == nil || !pt.running {
		pt.mu.Unlock()
		return
	}
	pt.running = false
	p, done := pt.program, pt.done
	pt.mu.Unlock()

	if msg != nil {
		p.Send(msg)
	} else {
		p.Quit()
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		p.Kill()
	}
}
