// internal/tui/app.go
//
// This is the terminal view for a crewline run.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The pipeline runs in a command goroutine and reports progress through the
// event router; the view only consumes messages and renders.

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/crewline/crewline/internal/event"
	"github.com/crewline/crewline/internal/pipeline"
)

type taskState int

const (
	taskPending taskState = iota
	taskRunning
	taskDone
	taskFailed
)

type taskRow struct {
	index    int
	desc     string
	role     string
	state    taskState
	feedback string
}

type eventMsg event.Event

type resultMsg pipeline.Result

// Runner produces the terminal result for the objective. The view invokes
// it exactly once, in a background command.
type Runner func(ctx context.Context) pipeline.Result

// App is the run view model. It holds all the state bubbletea renders.
type App struct {
	objective string
	runner    Runner
	events    <-chan event.Event

	spinner   spinner.Model
	rows      []taskRow
	statusMsg string
	result    *pipeline.Result

	width  int
	height int
}

// NewApp builds the run view. events is the subscription for the run the
// runner will execute; pass a nil channel to render without live progress.
func NewApp(objective string, runner Runner, events <-chan event.Event) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	return &App{
		objective: objective,
		runner:    runner,
		events:    events,
		spinner:   sp,
		statusMsg: "Planning...",
	}
}

// Result returns the terminal result once the run finished, or nil.
func (a *App) Result() *pipeline.Result {
	return a.result
}

// Init starts the pipeline and the event pump.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick, a.startRun()}
	if a.events != nil {
		cmds = append(cmds, a.waitForEvent())
	}
	return tea.Batch(cmds...)
}

func (a *App) startRun() tea.Cmd {
	return func() tea.Msg {
		return resultMsg(a.runner(context.Background()))
	}
}

func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-a.events
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		}
		return a, nil

	case spinner.TickMsg:
		if a.result != nil {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case eventMsg:
		a.applyEvent(event.Event(msg))
		return a, a.waitForEvent()

	case resultMsg:
		result := pipeline.Result(msg)
		a.result = &result
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) applyEvent(ev event.Event) {
	switch ev.Type {
	case event.TypeRunStarted:
		a.statusMsg = "Planning..."
	case event.TypePlanReady:
		a.statusMsg = fmt.Sprintf("Plan ready: %s", ev.Detail)
	case event.TypeTaskStarted:
		row := a.ensureRow(ev.TaskIndex, ev.Task)
		row.role = ev.Role
		row.state = taskRunning
		a.statusMsg = fmt.Sprintf("Task %d: %s", ev.TaskIndex+1, ev.Task)
	case event.TypeQAVerdict:
		row := a.ensureRow(ev.TaskIndex, ev.Task)
		row.feedback = ev.Detail
	case event.TypeTaskDone:
		row := a.ensureRow(ev.TaskIndex, ev.Task)
		row.state = taskDone
	case event.TypeRunAborted:
		for i := range a.rows {
			if a.rows[i].desc == ev.Task {
				a.rows[i].state = taskFailed
				a.rows[i].feedback = ev.Detail
			}
		}
		a.statusMsg = "Run aborted"
	case event.TypeRunCompleted:
		a.statusMsg = "Run completed"
	}
}

// ensureRow returns the row for the task index, growing the list as events
// arrive out of nothing (the view learns the plan one task at a time).
func (a *App) ensureRow(index int, desc string) *taskRow {
	for i := range a.rows {
		if a.rows[i].index == index {
			if a.rows[i].desc == "" {
				a.rows[i].desc = desc
			}
			return &a.rows[i]
		}
	}
	a.rows = append(a.rows, taskRow{index: index, desc: desc})
	return &a.rows[len(a.rows)-1]
}

// View renders the current state to a string.
func (a *App) View() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⬡ CREWLINE")
	objective := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(fmt.Sprintf("Objective: %s", a.objective))

	sections := []string{header, objective, ""}
	for _, row := range a.rows {
		sections = append(sections, a.renderRow(row))
	}

	if a.result != nil {
		report := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Render(a.result.Report())
		sections = append(sections, "", report)
	} else {
		footer := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			Render(fmt.Sprintf("%s %s", a.spinner.View(), a.statusMsg))
		sections = append(sections, footer)
	}
	return strings.Join(sections, "\n")
}

func (a *App) renderRow(row taskRow) string {
	glyph := "·"
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	switch row.state {
	case taskRunning:
		glyph = a.spinner.View()
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	case taskDone:
		glyph = "✓"
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77"))
	case taskFailed:
		glyph = "✗"
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	}
	line := fmt.Sprintf("%s [%s] %s", glyph, row.role, row.desc)
	if row.feedback != "" && row.state == taskFailed {
		line += fmt.Sprintf("\n    %s", row.feedback)
	}
	return style.Render(line)
}

// Run drives the view to completion and returns the final model.
func Run(app *App) (*App, error) {
	program := tea.NewProgram(app)
	final, err := program.Run()
	if err != nil {
		return app, fmt.Errorf("tui: %w", err)
	}
	if m, ok := final.(*App); ok {
		return m, nil
	}
	return app, nil
}
