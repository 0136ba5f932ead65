// Package ui holds the two front ends of the chat widget: a bubbletea terminal UI
// and a line printer for one-shot use.
package ui

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/bierguru/pkg/widget"
	"github.com/rs/zerolog/log"
)

const sendLabel = "Verstuur"

type exchangeDoneMsg struct {
	outcome widget.Outcome
}

// Model is the bubbletea model of the chat widget. It owns all views and hands
// them to a widget.Controller, so every view mutation happens inside Update.
type Model struct {
	ctx        context.Context
	controller *widget.Controller
	preset     widget.Preset
	keys       keyMap
	help       help.Model

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	entries      []widget.Entry
	inputEnabled bool
	sendEnabled  bool
	statusText   string
	notice       string

	width  int
	height int

	copyToClipboard func(string) error
}

type ModelOption func(*Model)

// WithClipboard replaces the system clipboard writer.
func WithClipboard(f func(string) error) ModelOption {
	return func(m *Model) {
		m.copyToClipboard = f
	}
}

// NewModel builds the model and the controller driving it. ctx bounds the
// requests started from the UI.
func NewModel(
	ctx context.Context,
	poster widget.Poster,
	config widget.Config,
	modelOptions []ModelOption,
	controllerOptions ...widget.Option,
) (*Model, error) {
	ta := textarea.New()
	ta.Placeholder = "Stel je vraag over bier…"
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	m := &Model{
		ctx:             ctx,
		preset:          config.Preset,
		keys:            newKeyMap(config.Preset.Multiline),
		help:            help.New(),
		viewport:        viewport.New(80, 10),
		textarea:        ta,
		spinner:         sp,
		inputEnabled:    true,
		sendEnabled:     true,
		width:           80,
		height:          24,
		copyToClipboard: clipboard.WriteAll,
	}
	for _, o := range modelOptions {
		o(m)
	}

	views := widget.Views{
		Transcript: transcriptView{m},
		Input:      inputView{m},
		Send:       sendView{m},
		Status:     statusView{m},
	}
	c, err := widget.New(views, poster, config, controllerOptions...)
	if err != nil {
		return nil, err
	}
	m.controller = c
	c.Initialize()
	m.layout()

	return m, nil
}

func (m *Model) Controller() *widget.Controller {
	return m.controller
}

func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.renderTranscript()
		return m, nil

	case exchangeDoneMsg:
		m.controller.Finish(msg.outcome)
		return m, nil

	case spinner.TickMsg:
		if m.statusText == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.inputEnabled {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Send):
		return m, m.send()

	case key.Matches(msg, m.keys.Newline):
		if m.inputEnabled {
			m.textarea.InsertString("\n")
			m.resizeInput()
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		m.copyLastAnswer()
		return m, nil

	case key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if !m.inputEnabled {
		return m, nil
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.resizeInput()
	return m, cmd
}

// send starts an exchange. The request runs as a tea.Cmd and its outcome comes
// back as an exchangeDoneMsg.
func (m *Model) send() tea.Cmd {
	if !m.sendEnabled {
		return nil
	}
	x, ok := m.controller.Begin()
	if !ok {
		return nil
	}
	ctx := m.ctx
	run := func() tea.Msg {
		return exchangeDoneMsg{outcome: x.Run(ctx)}
	}
	if m.statusText != "" {
		return tea.Batch(run, m.spinner.Tick)
	}
	return run
}

func (m *Model) copyLastAnswer() {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Role != widget.RoleAssistant {
			continue
		}
		if err := m.copyToClipboard(m.entries[i].Text); err != nil {
			log.Warn().Err(err).Msg("could not copy answer to clipboard")
			m.notice = "kopiëren mislukt"
			return
		}
		m.notice = "antwoord gekopieerd"
		return
	}
	m.notice = "nog geen antwoord om te kopiëren"
}

func (m *Model) View() string {
	parts := []string{
		headerStyle.Render("🍺 Bierguru · " + m.preset.Labels.Assistant),
		m.viewport.View(),
		m.statusLine(),
		m.inputLine(),
		helpStyle.Render(m.help.ShortHelpView(m.keys.shortHelp())),
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) statusLine() string {
	switch {
	case m.statusText != "":
		return m.spinner.View() + " " + statusStyle.Render(m.statusText)
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	default:
		return ""
	}
}

func (m *Model) inputLine() string {
	button := sendStyle.Render(sendLabel)
	if !m.sendEnabled {
		button = sendDisabledStyle.Render(sendLabel)
	}
	box := inputBoxStyle.Render(m.textarea.View())
	return lipgloss.JoinHorizontal(lipgloss.Center, box, " ", button)
}

// layout sizes the textarea and gives the viewport the remaining height.
func (m *Model) layout() {
	buttonWidth := lipgloss.Width(sendStyle.Render(sendLabel)) + 1
	inputWidth := m.width - buttonWidth - inputBoxStyle.GetHorizontalFrameSize()
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.textarea.SetWidth(inputWidth)
	m.help.Width = m.width

	// header, status and help take one line each
	chrome := 3 + m.textarea.Height() + inputBoxStyle.GetVerticalFrameSize()
	vpHeight := m.height - chrome
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = vpHeight
}

// resizeInput applies the auto-grow policy of the preset.
func (m *Model) resizeInput() {
	height := m.preset.MaxInputHeight
	if m.preset.AutoGrow {
		height = m.textarea.LineCount()
		if height < 1 {
			height = 1
		}
		if height > m.preset.MaxInputHeight {
			height = m.preset.MaxInputHeight
		}
	}
	if !m.preset.Multiline {
		height = 1
	}
	if height != m.textarea.Height() {
		m.textarea.SetHeight(height)
		m.layout()
	}
}

func (m *Model) renderTranscript() {
	blocks := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		blocks = append(blocks, m.renderEntry(e))
	}
	m.viewport.SetContent(strings.Join(blocks, "\n"))
}

func (m *Model) renderEntry(e widget.Entry) string {
	header := labelStyles[e.Role].Render(m.preset.Label(e.Role))
	if m.preset.ShowTime {
		header += " " + timeStyle.Render(e.Time.Format("15:04"))
	}

	maxWidth := m.width * 3 / 4
	if maxWidth < 20 {
		maxWidth = 20
	}
	style := bubbleStyles[e.Role]
	text := sanitize(e.Text)
	if lipgloss.Width(text)+style.GetHorizontalFrameSize() > maxWidth {
		style = style.Width(maxWidth - style.GetHorizontalBorderSize())
	}
	block := lipgloss.JoinVertical(lipgloss.Left, header, style.Render(text))

	if e.Role == widget.RoleUser {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, block)
	}
	return block
}
