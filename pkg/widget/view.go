package widget

import (
	"context"

	"github.com/go-go-golems/bierguru/pkg/transport"
)

// Transcript is the scrollable list entries are rendered into.
type Transcript interface {
	Append(e Entry)
	// NearBottom reports whether the view is scrolled to within threshold units
	// of its bottom edge.
	NearBottom(threshold int) bool
	ScrollToBottom()
}

// Input is the text field the user types into.
type Input interface {
	Value() string
	Clear()
	// Resize re-runs the input's layout, e.g. auto-growing a multi-line field.
	Resize()
	Focus()
	SetEnabled(enabled bool)
}

type SendControl interface {
	SetEnabled(enabled bool)
}

// StatusIndicator shows a transient "typing" hint while a request is in flight.
type StatusIndicator interface {
	Show(text string)
	Clear()
}

// Views bundles the bindings a Controller drives. Status is optional.
type Views struct {
	Transcript Transcript
	Input      Input
	Send       SendControl
	Status     StatusIndicator
}

// Poster performs the single request/response exchange with the chat endpoint.
type Poster interface {
	Post(ctx context.Context, r transport.Request) (*transport.Reply, error)
}
