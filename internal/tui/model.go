package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sheet2form/internal/app"
	"sheet2form/internal/spreadsheet"
	"sheet2form/internal/submission"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
)

const (
	defaultLogWidth  = 80
	defaultLogHeight = 12
)

// Dependencies are the collaborators the screen drives.
type Dependencies struct {
	Load       LoadFunc
	Controller *submission.Controller
	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
}

// Model is the interactive screen: inputs, run controls and the event log.
type Model struct {
	deps Dependencies

	inputs  []textinput.Model
	focus   int
	spinner spinner.Model
	log     viewport.Model
	lines   []string

	phase  phase
	sheet  *spreadsheet.Sheet
	notice string
	failed bool

	// Current or most recent run
	state      *submission.RunState
	queue      *submission.EventQueue
	cancel     context.CancelFunc
	runStart   int
	summary    submission.Summary
	hasSummary bool
	celebrate  bool
	showCopied bool
}

// New builds the screen with inputs pre-filled from cfg.
func New(deps Dependencies, cfg *app.Config) Model {
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.WriteAll
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 512
		ti.Width = 60
		inputs[i] = ti
	}
	inputs[fieldSource].Placeholder = "book.xlsx, user@host:/path/book.xlsx or gsheet:<id>"
	inputs[fieldForm].Placeholder = "https://docs.google.com/forms/..."
	inputs[fieldDelay].CharLimit = 5
	inputs[fieldStart].CharLimit = 7
	inputs[fieldEnd].CharLimit = 7

	inputs[fieldSource].SetValue(cfg.Source)
	inputs[fieldForm].SetValue(cfg.FormURL)
	inputs[fieldDelay].SetValue(strconv.Itoa(int(cfg.Delay / time.Second)))
	inputs[fieldStart].SetValue("1")
	inputs[fieldSource].Focus()

	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(pendingStyle))

	return Model{
		deps:    deps,
		inputs:  inputs,
		spinner: s,
		log:     viewport.New(defaultLogWidth, defaultLogHeight),
		phase:   phaseIdle,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.log.Width = msg.Width - h - 4
		m.log.Height = max(msg.Height-v-fieldCount-10, 3)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sheetLoadedMsg:
		return m.sheetLoaded(msg), nil

	case eventsMsg:
		return m.eventsReceived(msg)

	case copiedToClipboardMsg:
		if msg.err != nil {
			m.setNotice(fmt.Sprintf("Could not copy summary: %v", msg.err), true)
			return m, nil
		}
		m.showCopied = true
		return m, hideCopiedCmd()

	case hideCopiedMsg:
		m.showCopied = false
		return m, nil

	case spinner.TickMsg:
		if !m.phase.busy() && m.phase != phaseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocusedInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.phase.busy() {
			m.state.RequestCancel()
			m.cancel()
			log.Info().Str("run_id", m.state.ID).Msg("Quit requested during run")
		}
		return m, tea.Quit

	case "tab", "down":
		cmd := m.setFocus((m.focus + 1) % fieldCount)
		return m, cmd

	case "shift+tab", "up":
		cmd := m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, cmd

	case "ctrl+l":
		return m.loadSheet()

	case "ctrl+s":
		return m.startRun()

	case "ctrl+x":
		return m.stopRun(), nil

	case "ctrl+y":
		if !m.hasSummary {
			m.setNotice("No run summary to copy yet.", true)
			return m, nil
		}
		return m, copyToClipboardCmd(m.deps.Clipboard, m.summary.String())
	}

	return m.updateFocusedInput(msg)
}

func (m *Model) setFocus(index int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = index
	return m.inputs[m.focus].Focus()
}

func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.phase.busy() {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) loadSheet() (tea.Model, tea.Cmd) {
	if m.phase.busy() || m.phase == phaseLoading {
		return m, nil
	}
	source := strings.TrimSpace(m.inputs[fieldSource].Value())
	if source == "" {
		m.setNotice("Enter a spreadsheet path or gsheet:<id> first.", true)
		return m, nil
	}

	m.phase = phaseLoading
	m.setNotice(fmt.Sprintf("Loading %s ...", source), false)
	return m, tea.Batch(loadSheetCmd(m.deps.Load, source), m.spinner.Tick)
}

func (m Model) sheetLoaded(msg sheetLoadedMsg) Model {
	if msg.err != nil {
		log.Error().Err(msg.err).Str("source", msg.source).Msg("Failed to load spreadsheet")
		m.phase = phaseIdle
		m.sheet = nil
		m.setNotice(msg.err.Error(), true)
		return m
	}

	m.phase = phaseReady
	m.sheet = msg.sheet
	m.inputs[fieldStart].SetValue("1")
	m.inputs[fieldEnd].SetValue(strconv.Itoa(msg.sheet.TotalRows()))
	m.setNotice(fmt.Sprintf("Loaded %d rows with columns: %s", msg.sheet.TotalRows(), strings.Join(msg.sheet.Headers, ", ")), false)
	return m
}

// validateRun turns the inputs into a run request, or explains what is wrong.
func (m Model) validateRun() (submission.RunRequest, error) {
	if m.sheet == nil {
		return submission.RunRequest{}, fmt.Errorf("load a spreadsheet first (ctrl+l)")
	}

	formURL := strings.TrimSpace(m.inputs[fieldForm].Value())
	if formURL == "" {
		return submission.RunRequest{}, fmt.Errorf("enter the form URL")
	}

	delay, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldDelay].Value()))
	if err != nil || time.Duration(delay)*time.Second < app.MinDelay {
		return submission.RunRequest{}, fmt.Errorf("delay must be a whole number of seconds, at least 1")
	}

	start, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldStart].Value()))
	if err != nil {
		return submission.RunRequest{}, fmt.Errorf("start row must be a number")
	}
	end, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldEnd].Value()))
	if err != nil {
		return submission.RunRequest{}, fmt.Errorf("end row must be a number")
	}

	rng := app.SubmissionRange{Start: start, End: end}
	if err := rng.Validate(m.sheet.TotalRows()); err != nil {
		return submission.RunRequest{}, err
	}

	return submission.RunRequest{
		Rows:        m.sheet.Rows,
		FormAddress: formURL,
		Delay:       time.Duration(delay) * time.Second,
		Range:       rng,
	}, nil
}

func (m Model) startRun() (tea.Model, tea.Cmd) {
	if m.phase.busy() || m.phase == phaseLoading {
		return m, nil
	}

	req, err := m.validateRun()
	if err != nil {
		m.setNotice(err.Error(), true)
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.state = submission.NewRunState()
	m.queue = submission.NewEventQueue()
	m.cancel = cancel
	m.runStart = req.Range.Start
	m.summary = submission.Summary{RunID: m.state.ID, Status: submission.StatusRunning}
	m.hasSummary = false
	m.celebrate = false
	m.lines = nil
	m.phase = phaseRunning
	m.setNotice(fmt.Sprintf("Submitting rows %d to %d every %s", req.Range.Start, req.Range.End, req.Delay), false)
	m.refreshLog()

	m.deps.Controller.Start(ctx, req, m.state, m.queue)
	return m, tea.Batch(waitForEventsCmd(m.queue), m.spinner.Tick)
}

func (m Model) stopRun() Model {
	if m.phase != phaseRunning {
		return m
	}
	m.state.RequestCancel()
	m.phase = phaseStopping
	m.setNotice(fmt.Sprintf("Stop signal sent. Last submitted row: %d", m.state.LastSubmittedRow()), false)
	return m
}

func (m Model) eventsReceived(msg eventsMsg) (tea.Model, tea.Cmd) {
	// Batches from an earlier run are ignored.
	if msg.queue != m.queue {
		return m, nil
	}

	for _, e := range msg.events {
		m.lines = append(m.lines, renderEvent(e))
		m.summary.Add(e)
		if e.Kind == submission.EventCompletionMarker {
			m.celebrate = true
		}
	}
	m.refreshLog()

	if !msg.done {
		return m, waitForEventsCmd(m.queue)
	}

	m.cancel()
	m.phase = phaseFinished
	m.hasSummary = true
	resume := m.state.ResumeRow(m.runStart)
	m.inputs[fieldStart].SetValue(strconv.Itoa(resume))
	m.setNotice(m.summary.String(), m.summary.Err() != nil)
	return m, nil
}

func (m *Model) setNotice(text string, failed bool) {
	m.notice = text
	m.failed = failed
}

func (m *Model) refreshLog() {
	m.log.SetContent(strings.Join(m.lines, "\n"))
	m.log.GotoBottom()
}

func renderEvent(e submission.Event) string {
	stamp := e.Time.Format("15:04:05")
	text := e.Message()
	switch e.Kind {
	case submission.EventFailure, submission.EventNoRowsSubmitted:
		text = errorStyle.Render(text)
	case submission.EventSuccess, submission.EventCompletionMarker, submission.EventSummary:
		text = successStyle.Render(text)
	case submission.EventCancelled:
		text = stoppedStyle.Render(text)
	}
	return fmt.Sprintf("%s %s", helpStyle.Render(stamp), text)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("sheet2form"))
	b.WriteString("\n\n")

	for i, input := range m.inputs {
		label := labelStyle
		if i == m.focus {
			label = focusedLabelStyle
		}
		b.WriteString(fmt.Sprintf("%s %s\n", label.Render(fieldLabels[i]), input.View()))
	}
	b.WriteString("\n")

	status := m.phase.String()
	if m.phase.busy() || m.phase == phaseLoading {
		status = m.spinner.View() + " " + status
	}
	if m.sheet != nil {
		status += fmt.Sprintf(" • %d rows", m.sheet.TotalRows())
	}
	b.WriteString(status)
	b.WriteString("\n")

	if m.notice != "" {
		if m.failed {
			b.WriteString(errorStyle.Render(m.notice))
		} else {
			b.WriteString(m.notice)
		}
		b.WriteString("\n")
	}
	if m.showCopied {
		b.WriteString(copySuccessStyle.Render("Summary copied!"))
		b.WriteString("\n")
	}
	if m.celebrate {
		b.WriteString(bannerStyle.Render("🎉 All rows in range submitted! 🎉"))
		b.WriteString("\n")
	}

	main := lipgloss.JoinVertical(lipgloss.Left, b.String(), logPaneStyle.Render(m.log.View()), m.renderHelpView())
	return docStyle.Render(main)
}

func (m Model) renderHelpView() string {
	helpText := "tab: next field • ctrl+l: load • ctrl+s: start • ctrl+x: stop • ctrl+y: copy summary • ctrl+c: quit"
	return helpStyle.Render("\n" + helpText)
}
