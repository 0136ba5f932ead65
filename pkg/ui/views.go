package ui

import "github.com/go-go-golems/bierguru/pkg/widget"

type transcriptView struct{ m *Model }

func (v transcriptView) Append(e widget.Entry) {
	v.m.entries = append(v.m.entries, e)
	v.m.renderTranscript()
}

// NearBottom reports whether at most threshold lines are hidden below the
// visible part of the transcript.
func (v transcriptView) NearBottom(threshold int) bool {
	vp := v.m.viewport
	hidden := vp.TotalLineCount() - (vp.YOffset + vp.Height)
	return hidden <= threshold
}

func (v transcriptView) ScrollToBottom() {
	v.m.viewport.GotoBottom()
}

type inputView struct{ m *Model }

func (v inputView) Value() string { return v.m.textarea.Value() }

func (v inputView) Clear() { v.m.textarea.Reset() }

func (v inputView) Resize() { v.m.resizeInput() }

func (v inputView) Focus() {
	v.m.textarea.Focus()
}

func (v inputView) SetEnabled(enabled bool) {
	v.m.inputEnabled = enabled
	if !enabled {
		v.m.textarea.Blur()
	}
}

type sendView struct{ m *Model }

func (v sendView) SetEnabled(enabled bool) { v.m.sendEnabled = enabled }

type statusView struct{ m *Model }

func (v statusView) Show(text string) { v.m.statusText = text }

func (v statusView) Clear() { v.m.statusText = "" }
