package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/bierguru/pkg/transport"
	"github.com/go-go-golems/bierguru/pkg/widget"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type stubPoster struct {
	reply *transport.Reply
	err   error
	calls int
}

func (s *stubPoster) Post(context.Context, transport.Request) (*transport.Reply, error) {
	s.calls++
	return s.reply, s.err
}

func preset(t *testing.T, name string) widget.Preset {
	t.Helper()
	reg, err := widget.NewRegistry()
	require.NoError(t, err)
	p, err := reg.Get(name)
	require.NoError(t, err)
	return p
}

func newTestModel(t *testing.T, presetName string, poster widget.Poster, opts ...ModelOption) *Model {
	t.Helper()
	m, err := NewModel(context.Background(), poster, widget.Config{
		Endpoint: "http://example.test/bierguru/chat/",
		Token:    "tok",
		Preset:   preset(t, presetName),
	}, opts)
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// resolve runs the commands returned by a send and feeds the outcome back.
func resolve(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	var done []exchangeDoneMsg
	switch msg := cmd().(type) {
	case exchangeDoneMsg:
		done = append(done, msg)
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if d, ok := c().(exchangeDoneMsg); ok {
				done = append(done, d)
			}
		}
	}
	require.Len(t, done, 1)
	m.Update(done[0])
}

func TestModel_SendAndReceive(t *testing.T) {
	poster := &stubPoster{reply: &transport.Reply{Answer: "Proost!"}}
	m := newTestModel(t, "classic", poster)

	typeText(m, "hallo")
	require.Equal(t, "hallo", m.textarea.Value())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.Controller().Busy())
	require.False(t, m.inputEnabled)
	require.False(t, m.sendEnabled)
	require.Equal(t, "", m.textarea.Value())
	require.Len(t, m.entries, 1)

	resolve(t, m, cmd)
	require.Equal(t, 1, poster.calls)
	require.False(t, m.Controller().Busy())
	require.True(t, m.inputEnabled)
	require.True(t, m.sendEnabled)
	require.True(t, m.textarea.Focused())
	require.Len(t, m.entries, 2)
	require.Equal(t, "Proost!", m.entries[1].Text)
	require.Contains(t, m.View(), "Proost!")
	require.Contains(t, m.View(), "Vocatus")
}

func TestModel_EnterOnBlankInputDoesNothing(t *testing.T) {
	poster := &stubPoster{reply: &transport.Reply{Answer: "ok"}}
	m := newTestModel(t, "bubbles", poster)

	typeText(m, "   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Empty(t, m.entries)
	require.Equal(t, 0, poster.calls)
}

func TestModel_BusyIgnoresInputAndShowsStatus(t *testing.T) {
	poster := &stubPoster{reply: &transport.Reply{Answer: "ok"}}
	m := newTestModel(t, "bubbles", poster)

	typeText(m, "eerste")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, "Vocatus denkt na…", m.statusText)
	require.Contains(t, m.View(), "Vocatus denkt na…")

	typeText(m, "tweede")
	require.Equal(t, "", m.textarea.Value())
	_, second := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, second)

	resolve(t, m, cmd)
	require.Equal(t, 1, poster.calls)
	require.Equal(t, "", m.statusText)
	require.NotContains(t, m.View(), "Vocatus denkt na…")
}

func TestModel_ErrorReply(t *testing.T) {
	poster := &stubPoster{err: &transport.ProtocolError{StatusCode: 404, Body: "not found"}}
	m := newTestModel(t, "bubbles", poster)

	typeText(m, "hallo")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	resolve(t, m, cmd)

	require.Len(t, m.entries, 2)
	require.Equal(t, widget.RoleError, m.entries[1].Role)
	require.Contains(t, m.View(), "HTTP 404: not found")
	require.True(t, m.inputEnabled)
}

func TestModel_NewlineAndAutoGrow(t *testing.T) {
	m := newTestModel(t, "bubbles", &stubPoster{})
	require.Equal(t, 1, m.textarea.Height())

	typeText(m, "een")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
	typeText(m, "twee")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlJ})
	typeText(m, "drie")

	require.Equal(t, "een\ntwee\ndrie", m.textarea.Value())
	require.Equal(t, 3, m.textarea.Height())

	for i := 0; i < 10; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyCtrlJ})
	}
	require.Equal(t, 6, m.textarea.Height())
}

func TestModel_SingleLinePresetIgnoresNewline(t *testing.T) {
	m := newTestModel(t, "classic", &stubPoster{})

	typeText(m, "een")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
	typeText(m, "twee")

	require.Equal(t, "eentwee", m.textarea.Value())
	require.Equal(t, 1, m.textarea.Height())
}

func TestModel_NearBottom(t *testing.T) {
	m := newTestModel(t, "bubbles", &stubPoster{})
	tv := transcriptView{m}
	require.True(t, tv.NearBottom(0))

	lines := make([]string, 50)
	for i := range lines {
		lines[i] = "regel"
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoTop()
	require.False(t, tv.NearBottom(2))

	tv.ScrollToBottom()
	require.True(t, tv.NearBottom(0))

	m.viewport.SetYOffset(m.viewport.YOffset - 2)
	require.True(t, tv.NearBottom(2))
	require.False(t, tv.NearBottom(1))
}

// exchange sends text through the model and feeds the reply back.
func exchange(t *testing.T, m *Model, text string) {
	t.Helper()
	typeText(m, text)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	resolve(t, m, cmd)
}

func longAnswer() *transport.Reply {
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = "Een Tripel van Westmalle."
	}
	return &transport.Reply{Answer: strings.Join(lines, "\n")}
}

func TestModel_StickyScrollKeepsPositionWhenScrolledUp(t *testing.T) {
	m := newTestModel(t, "bubbles", &stubPoster{reply: longAnswer()})

	exchange(t, m, "eerste")
	require.True(t, m.viewport.AtBottom())

	for i := 0; i < 20; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	}
	require.Equal(t, 0, m.viewport.YOffset)

	exchange(t, m, "tweede")
	require.Len(t, m.entries, 4)
	require.Equal(t, 0, m.viewport.YOffset)
	require.False(t, m.viewport.AtBottom())
}

func TestModel_StickyScrollFollowsAtBottom(t *testing.T) {
	m := newTestModel(t, "bubbles", &stubPoster{reply: longAnswer()})

	exchange(t, m, "eerste")
	before := m.viewport.YOffset
	require.True(t, m.viewport.AtBottom())

	exchange(t, m, "tweede")
	require.Greater(t, m.viewport.YOffset, before)
	require.True(t, m.viewport.AtBottom())
}

func TestModel_FollowScrollJumpsToBottom(t *testing.T) {
	m := newTestModel(t, "classic", &stubPoster{reply: longAnswer()})

	exchange(t, m, "eerste")
	for i := 0; i < 20; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	}
	require.Equal(t, 0, m.viewport.YOffset)

	exchange(t, m, "tweede")
	require.True(t, m.viewport.AtBottom())
}

func TestModel_CopyLastAnswer(t *testing.T) {
	var copied string
	poster := &stubPoster{reply: &transport.Reply{Answer: "Een Westmalle Dubbel."}}
	m := newTestModel(t, "classic", poster, WithClipboard(func(s string) error {
		copied = s
		return nil
	}))

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	require.Equal(t, "", copied)
	require.Equal(t, "nog geen antwoord om te kopiëren", m.notice)

	typeText(m, "wat bij stoofvlees?")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	resolve(t, m, cmd)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	require.Equal(t, "Een Westmalle Dubbel.", copied)
	require.Equal(t, "antwoord gekopieerd", m.notice)
}

func TestModel_CopyFailure(t *testing.T) {
	poster := &stubPoster{reply: &transport.Reply{Answer: "ok"}}
	m := newTestModel(t, "classic", poster, WithClipboard(func(string) error {
		return errors.New("no clipboard")
	}))
	typeText(m, "hallo")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	resolve(t, m, cmd)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	require.Equal(t, "kopiëren mislukt", m.notice)
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, "classic", &stubPoster{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	require.True(t, ok)
}

func TestSanitize(t *testing.T) {
	require.Equal(t, "rood", sanitize("\x1b[31mrood\x1b[0m\a"))
	require.Equal(t, "een\ntwee\tdrie", sanitize("een\r\ntwee\tdrie\x00"))
	require.Equal(t, "<b>bold</b>", sanitize("<b>bold</b>"))
}

func TestPrinter(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, nil, preset(t, "classic"), "  hallo  ")
	c, err := widget.New(p.Views(), &stubPoster{reply: &transport.Reply{Answer: "Proost!"}}, widget.Config{
		Preset: preset(t, "classic"),
	})
	require.NoError(t, err)

	c.SendMessage(context.Background())
	require.Equal(t, "Jij: hallo\nVocatus: Proost!\n", out.String())

	out.Reset()
	c.SendMessage(context.Background())
	require.Equal(t, "", out.String())
}
