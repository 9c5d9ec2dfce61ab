// ABOUTME: Bubbletea model for the recorder TUI
// ABOUTME: Maps keys and mouse clicks to app operations and renders transport state
package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/podcast-recorder/internal/app"
	"github.com/harperreed/podcast-recorder/internal/catalog"
	"github.com/harperreed/podcast-recorder/internal/transport"
	"github.com/harperreed/podcast-recorder/internal/version"
)

const (
	seekStep   = 5.0
	volumeStep = 5

	// layout: title on row 0, transport on row 1, waveform from row 2
	waveTop    = 2
	waveLeft   = 2
	waveHeight = 4
	minWidth   = 24
)

// Controller is the application surface driven by the TUI
type Controller interface {
	StartRecording() (string, error)
	Stop() (*catalog.Record, error)
	Select(path string) (catalog.Record, error)
	PlaySelected() error
	TogglePause() error
	Seek(seconds float64) error
	SeekBy(delta float64) error
	SaveMetadata(title, description string) error
	DeleteSelected() error
	ExportSelected() (app.ExportResult, error)
	Tick() transport.Status
	Warning() string
	Records() ([]catalog.Record, error)
	RenderWaveform(width, height int) []string
	WaveformTimeAt(col, width int) float64
	AdjustVolume(delta int) (int, bool)
	ToggleMute() (bool, bool)
}

type tickMsg time.Time

// Model represents the TUI state
type Model struct {
	ctrl     Controller
	interval time.Duration

	records []catalog.Record
	cursor  int
	current catalog.Record

	status  transport.Status
	message string
	isError bool

	// metadata editor
	editing     bool
	focus       int
	title       textinput.Model
	description textinput.Model

	confirmDelete bool
	volume        int
	muted         bool

	width  int
	height int
}

// NewModel creates a TUI model around ctrl
func NewModel(ctrl Controller, interval time.Duration) Model {
	if interval <= 0 {
		interval = transport.DefaultInterval
	}

	title := textinput.New()
	title.Placeholder = "Title"
	title.Prompt = ""
	title.CharLimit = 256
	title.Width = 50

	desc := textinput.New()
	desc.Placeholder = "Description"
	desc.Prompt = ""
	desc.CharLimit = 4096
	desc.Width = 50

	m := Model{
		ctrl:        ctrl,
		interval:    interval,
		cursor:      -1,
		title:       title,
		description: desc,
		volume:      -1,
		message:     "Ready",
	}
	m.reload()
	return m
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the transport tick
func (m Model) Init() tea.Cmd {
	return tick(m.interval)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.applyTick()
		return m, tick(m.interval)
	}

	return m, nil
}

func (m *Model) applyTick() {
	st := m.ctrl.Tick()
	m.status = st
	if st.Ended {
		m.info("Ready")
	}
	if w := m.ctrl.Warning(); w != "" {
		m.fail(fmt.Errorf("input: %s", w))
	}
}

// handleKey handles keyboard input outside the editor
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.confirmDelete {
		m.confirmDelete = false
		if key == "y" || key == "Y" {
			m.deleteSelected()
		} else {
			m.info("Delete cancelled")
		}
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		if path, err := m.ctrl.StartRecording(); err != nil {
			m.fail(err)
		} else {
			m.info("Recording to " + path)
		}
	case "s":
		m.stop()
	case "p", "enter":
		if err := m.ctrl.PlaySelected(); err != nil {
			m.fail(err)
		} else {
			m.info("Playing: " + m.current.DisplayTitle())
		}
	case " ", "space":
		wasPlaying := m.status.Mode == transport.Playing
		if err := m.ctrl.TogglePause(); err != nil {
			m.fail(err)
		} else if wasPlaying {
			m.info("Paused")
		} else if m.status.Mode == transport.Paused {
			m.info("Playing")
		}
	case "left":
		m.seekBy(-seekStep)
	case "right":
		m.seekBy(seekStep)
	case "up":
		m.move(-1)
	case "down":
		m.move(1)
	case "e":
		return m, m.startEditing()
	case "x":
		m.export()
	case "d":
		if m.current.Path == "" {
			m.fail(app.ErrNoSelection)
			break
		}
		m.confirmDelete = true
		m.info(fmt.Sprintf("Delete '%s'? (y/n)", m.current.DisplayTitle()))
	case "+", "=":
		m.adjustVolume(volumeStep)
	case "-":
		m.adjustVolume(-volumeStep)
	case "m":
		m.toggleMute()
	}

	return m, nil
}

// handleEditKey routes keys to the focused metadata field
func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.stopEditing()
		m.info("Edit cancelled")
		return m, nil
	case "tab", "shift+tab":
		return m, m.setFocus(1 - m.focus)
	case "enter":
		if err := m.ctrl.SaveMetadata(m.title.Value(), m.description.Value()); err != nil {
			m.fail(err)
			return m, nil
		}
		m.stopEditing()
		m.info("Metadata saved")
		m.reload()
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.description, cmd = m.description.Update(msg)
	}
	return m, cmd
}

// handleMouse seeks when the waveform is clicked
func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	width := m.waveWidth()
	col := msg.X - waveLeft
	if msg.Y < waveTop || msg.Y >= waveTop+waveHeight || col < 0 || col >= width {
		return
	}

	seconds := m.ctrl.WaveformTimeAt(col, width)
	if err := m.ctrl.Seek(seconds); err != nil {
		m.fail(err)
		return
	}
	m.info(fmt.Sprintf("Seek: %.2f s", seconds))
}

func (m *Model) stop() {
	rec, err := m.ctrl.Stop()
	if rec != nil {
		m.reload()
		m.focusRecord(rec.Path)
	}
	switch {
	case err != nil:
		m.fail(err)
	case rec != nil:
		m.info("Recording saved: " + rec.Path)
	default:
		m.info("Ready")
	}
}

func (m *Model) seekBy(delta float64) {
	if err := m.ctrl.SeekBy(delta); err != nil {
		m.fail(err)
	}
}

// move changes the list cursor by delta and selects the record under it
func (m *Model) move(delta int) {
	if len(m.records) == 0 {
		return
	}
	next := m.cursor + delta
	if next < 0 {
		next = 0
	}
	if next >= len(m.records) {
		next = len(m.records) - 1
	}
	if next == m.cursor {
		return
	}

	rec, err := m.ctrl.Select(m.records[next].Path)
	if err != nil {
		m.fail(err)
		return
	}
	m.cursor = next
	m.current = rec
	m.info(fmt.Sprintf("Duration: %.2f s", rec.Duration))
}

func (m *Model) startEditing() tea.Cmd {
	if m.current.Path == "" {
		m.fail(app.ErrNoSelection)
		return nil
	}
	m.editing = true
	m.title.SetValue(m.current.DisplayTitle())
	m.title.CursorEnd()
	m.description.SetValue(m.current.Description)
	m.description.CursorEnd()
	m.info("Editing: tab switches field, enter saves, esc cancels")
	return m.setFocus(0)
}

func (m *Model) setFocus(field int) tea.Cmd {
	m.focus = field
	if field == 0 {
		m.description.Blur()
		return m.title.Focus()
	}
	m.title.Blur()
	return m.description.Focus()
}

func (m *Model) stopEditing() {
	m.editing = false
	m.title.Blur()
	m.description.Blur()
}

func (m *Model) export() {
	res, err := m.ctrl.ExportSelected()
	if err != nil {
		m.fail(err)
		return
	}
	m.info(fmt.Sprintf("Exported %s, saved %.1f%%", filepath.Base(res.Path), res.Reduction))
}

func (m *Model) deleteSelected() {
	title := m.current.DisplayTitle()
	if err := m.ctrl.DeleteSelected(); err != nil {
		m.fail(err)
		return
	}
	m.current = catalog.Record{}
	m.cursor = -1
	m.reload()
	m.info("Deleted: " + title)
}

func (m *Model) adjustVolume(delta int) {
	if v, ok := m.ctrl.AdjustVolume(delta); ok {
		m.volume = v
	}
}

func (m *Model) toggleMute() {
	if muted, ok := m.ctrl.ToggleMute(); ok {
		m.muted = muted
	}
}

// reload refreshes the list and keeps the cursor on the current record
func (m *Model) reload() {
	records, err := m.ctrl.Records()
	if err != nil {
		m.fail(err)
		return
	}
	m.records = records
	m.cursor = -1
	if m.current.Path != "" {
		m.focusRecord(m.current.Path)
	}
}

func (m *Model) focusRecord(path string) {
	for i, r := range m.records {
		if r.Path == path {
			m.cursor = i
			m.current = r
			return
		}
	}
}

func (m *Model) info(text string) {
	m.message = text
	m.isError = false
}

func (m *Model) fail(err error) {
	m.message = "Error: " + err.Error()
	m.isError = true
}

func (m Model) waveWidth() int {
	w := m.width - 2*waveLeft
	if w < minWidth {
		w = minWidth
	}
	return w
}

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(version.Product))
	b.WriteString("\n")
	b.WriteString(m.renderTransport())
	b.WriteString("\n")

	indent := strings.Repeat(" ", waveLeft)
	for _, row := range m.ctrl.RenderWaveform(m.waveWidth(), waveHeight) {
		b.WriteString(indent)
		b.WriteString(waveStyle.Render(row))
		b.WriteString("\n")
	}

	b.WriteString(m.renderList())
	b.WriteString(m.renderDetails())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.helpText()))

	return b.String()
}

func (m Model) renderTransport() string {
	switch m.status.Mode {
	case transport.Recording:
		return recStyle.Render("● REC "+m.status.Elapsed) + " " + renderBar(m.status.Amplitude, 20)
	case transport.Playing:
		return playStyle.Render(fmt.Sprintf("▶ %.1f / %.1f s", m.status.Position, m.status.Duration)) + m.renderVolume()
	case transport.Paused:
		return pauseStyle.Render(fmt.Sprintf("⏸ %.1f / %.1f s", m.status.Position, m.status.Duration)) + m.renderVolume()
	default:
		return valueStyle.Render(fmt.Sprintf("■ %.1f s", m.current.Duration)) + m.renderVolume()
	}
}

func (m Model) renderVolume() string {
	if m.volume < 0 {
		return ""
	}
	if m.muted {
		return valueStyle.Render("  muted")
	}
	return valueStyle.Render(fmt.Sprintf("  vol %d%%", m.volume))
}

func (m Model) renderList() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Recordings (%d)", len(m.records))))
	b.WriteString("\n")

	if len(m.records) == 0 {
		b.WriteString(valueStyle.Render("  No recordings yet, press r to record"))
		b.WriteString("\n")
		return b.String()
	}

	for i, r := range m.records {
		line := fmt.Sprintf("%s  %6.1fs", truncate(r.DisplayTitle(), 48), r.Duration)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDetails() string {
	if m.current.Path == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Title: "))
	if m.editing {
		b.WriteString(m.fieldStyle(0).Render(m.title.View()))
	} else {
		b.WriteString(valueStyle.Render(m.current.DisplayTitle()))
	}
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Description: "))
	if m.editing {
		b.WriteString(m.fieldStyle(1).Render(m.description.View()))
	} else {
		b.WriteString(valueStyle.Render(m.current.Description))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) fieldStyle(field int) lipgloss.Style {
	if m.focus == field {
		return focusStyle
	}
	return valueStyle
}

func (m Model) renderStatus() string {
	if m.isError {
		return errorStyle.Render(m.message)
	}
	return statusStyle.Render(m.message)
}

func (m Model) helpText() string {
	if m.editing {
		return "tab:Field  enter:Save  esc:Cancel"
	}
	return "r:Rec  s:Stop  p:Play  space:Pause  ←/→:Seek  ↑/↓:Select  e:Edit  x:FLAC  d:Delete  +/-:Vol  m:Mute  q:Quit"
}

func renderBar(level float32, width int) string {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	filled := int(level * float32(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	return string(r[:length-3]) + "..."
}
