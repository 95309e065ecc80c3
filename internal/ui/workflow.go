package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// TaskStatus represents the status of a task
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskRunning
	TaskDone
	TaskFailed
	TaskSkipped
)

// Task is one line of a Workflow.
type Task struct {
	Name    string
	Status  TaskStatus
	Message string // shown while running, or as the reason when failed/skipped
	Details string // shown after completion
}

// Workflow renders a fixed list of tasks with an animated spinner on the
// running one. Every mutator is safe to call from any goroutine, including
// scanner progress callbacks.
type Workflow struct {
	writer   io.Writer
	title    string
	animate  bool
	interval time.Duration

	mu        sync.Mutex
	tasks     []*Task
	frame     int
	running   bool
	lastLines int
	startTime time.Time
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewWorkflow creates a new workflow tracker. An empty title prints no header.
func NewWorkflow(w io.Writer, title string) *Workflow {
	return &Workflow{
		writer:   w,
		title:    title,
		animate:  true,
		interval: 80 * time.Millisecond,
	}
}

// SetAnimated turns the spinner redraw loop on or off. With animation off,
// only the final state is written on Stop, which keeps logs and pipes clean.
func (wf *Workflow) SetAnimated(on bool) {
	wf.mu.Lock()
	wf.animate = on
	wf.mu.Unlock()
}

// AddTask appends a pending task and returns its index.
func (wf *Workflow) AddTask(name string) int {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	wf.tasks = append(wf.tasks, &Task{Name: name})
	return len(wf.tasks) - 1
}

func (wf *Workflow) update(idx int, fn func(t *Task)) {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	if idx >= 0 && idx < len(wf.tasks) {
		fn(wf.tasks[idx])
	}
}

// StartTask marks a task as running
func (wf *Workflow) StartTask(idx int, message string) {
	wf.update(idx, func(t *Task) { t.Status, t.Message = TaskRunning, message })
}

// UpdateMessage replaces the message of a task
func (wf *Workflow) UpdateMessage(idx int, message string) {
	wf.update(idx, func(t *Task) { t.Message = message })
}

// CompleteTask marks a task as done
func (wf *Workflow) CompleteTask(idx int, details string) {
	wf.update(idx, func(t *Task) { t.Status, t.Details = TaskDone, details })
}

// FailTask marks a task as failed
func (wf *Workflow) FailTask(idx int, errMsg string) {
	wf.update(idx, func(t *Task) { t.Status, t.Message = TaskFailed, errMsg })
}

// SkipTask marks a task as skipped
func (wf *Workflow) SkipTask(idx int, reason string) {
	wf.update(idx, func(t *Task) { t.Status, t.Message = TaskSkipped, reason })
}

// Tasks returns a snapshot of the task list.
func (wf *Workflow) Tasks() []Task {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	out := make([]Task, len(wf.tasks))
	for i, t := range wf.tasks {
		out[i] = *t
	}
	return out
}

// Start begins the display.
func (wf *Workflow) Start() {
	wf.mu.Lock()
	if wf.running {
		wf.mu.Unlock()
		return
	}
	wf.running = true
	wf.startTime = time.Now()
	if wf.title != "" {
		fmt.Fprintln(wf.writer, Title.Render(wf.title))
	}
	if !wf.animate {
		wf.mu.Unlock()
		return
	}
	wf.stopChan = make(chan struct{})
	wf.doneChan = make(chan struct{})
	wf.mu.Unlock()

	go func() {
		defer close(wf.doneChan)
		ticker := time.NewTicker(wf.interval)
		defer ticker.Stop()
		for {
			select {
			case <-wf.stopChan:
				return
			case <-ticker.C:
				wf.redraw(false)
			}
		}
	}()
}

// Stop halts the animation and writes the final state of every task.
func (wf *Workflow) Stop() {
	wf.mu.Lock()
	if !wf.running {
		wf.mu.Unlock()
		return
	}
	wf.running = false
	stop, done := wf.stopChan, wf.doneChan
	wf.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	wf.redraw(true)
}

// Elapsed is the time since Start.
func (wf *Workflow) Elapsed() time.Duration {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	if wf.startTime.IsZero() {
		return 0
	}
	return time.Since(wf.startTime)
}

func (wf *Workflow) redraw(final bool) {
	wf.mu.Lock()
	defer wf.mu.Unlock()

	if !final {
		wf.frame = (wf.frame + 1) % len(spinnerFrames)
	}

	var b strings.Builder
	// Move up over the previous frame and clear each line.
	for i := 0; i < wf.lastLines; i++ {
		b.WriteString("\033[A\033[K")
	}
	for _, t := range wf.tasks {
		b.WriteString(wf.renderTask(t, final))
		b.WriteString("\n")
	}
	wf.lastLines = len(wf.tasks)
	fmt.Fprint(wf.writer, b.String())
}

func (wf *Workflow) renderTask(t *Task, final bool) string {
	var icon string
	var nameStyle, msgStyle styleWrapper

	switch t.Status {
	case TaskRunning:
		if final {
			// A task still running at Stop was abandoned.
			icon, nameStyle, msgStyle = Muted.Render("○"), StepPending, Dim
		} else {
			icon, nameStyle, msgStyle = Secondary.Render(spinnerFrames[wf.frame]), StepRunning, Secondary
		}
	case TaskDone:
		icon, nameStyle, msgStyle = GetCheckMark(), StepComplete, Dim
	case TaskFailed:
		icon, nameStyle, msgStyle = GetCrossMark(), StepFailed, Error
	case TaskSkipped:
		icon, nameStyle, msgStyle = Warning.Render("⊘"), StepSkipped, Warning
	default:
		icon, nameStyle, msgStyle = Muted.Render("○"), StepPending, Dim
	}

	line := icon + " " + nameStyle.Render(t.Name)
	switch {
	case final && t.Status == TaskDone && t.Details != "":
		line += " " + Dim.Render("→ "+t.Details)
	case final && (t.Status == TaskFailed || t.Status == TaskSkipped) && t.Message != "":
		line += " " + msgStyle.Render("→ "+t.Message)
	case !final && t.Message != "":
		line += " " + msgStyle.Render(t.Message)
	}
	return line
}
