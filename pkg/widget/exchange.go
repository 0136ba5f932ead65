package widget

import (
	"context"

	"github.com/go-go-golems/bierguru/pkg/transport"
)

// Exchange is a request started by Controller.Begin. Run touches no view, so it may
// be executed away from the goroutine that owns the views.
type Exchange struct {
	poster  Poster
	request transport.Request
}

// Outcome is the result of running an exchange, handed back to Controller.Finish.
type Outcome struct {
	Reply *transport.Reply
	Err   error
}

func (x *Exchange) Message() string {
	return x.request.Message
}

func (x *Exchange) Run(ctx context.Context) Outcome {
	reply, err := x.poster.Post(ctx, x.request)
	return Outcome{Reply: reply, Err: err}
}
