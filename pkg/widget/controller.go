// Package widget implements the chat widget controller: an append-only transcript,
// a busy flag guarding a single in-flight request, and the request/response
// exchange with the chat endpoint. Views are injected, so the same controller drives
// the terminal UI, the line printer used by `ask`, and the fakes in tests.
package widget

import (
	"context"
	"strings"
	"time"

	"github.com/go-go-golems/bierguru/pkg/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Config carries the values resolved once at startup.
type Config struct {
	Endpoint string
	Token    string
	Preset   Preset
}

type Option func(*Controller)

// WithObserver registers a callback run after every append.
func WithObserver(f func(Entry)) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, f)
	}
}

// WithClock overrides the time source used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

type Controller struct {
	views  Views
	poster Poster
	config Config

	entries   []Entry
	busy      bool
	observers []func(Entry)
	now       func() time.Time
}

func New(views Views, poster Poster, config Config, options ...Option) (*Controller, error) {
	if views.Transcript == nil || views.Input == nil || views.Send == nil {
		return nil, errors.New("transcript, input and send views are required")
	}
	if poster == nil {
		return nil, errors.New("a poster is required")
	}
	if err := config.Preset.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		views:  views,
		poster: poster,
		config: config,
		now:    time.Now,
	}
	for _, o := range options {
		o(c)
	}
	return c, nil
}

// Initialize focuses the input and runs its first layout pass.
func (c *Controller) Initialize() {
	log.Debug().
		Str("endpoint", c.config.Endpoint).
		Bool("token_present", c.config.Token != "").
		Str("preset", c.config.Preset.Name).
		Msg("initializing chat widget")
	c.views.Input.Resize()
	c.views.Input.Focus()
}

func (c *Controller) Busy() bool {
	return c.busy
}

func (c *Controller) Preset() Preset {
	return c.config.Preset
}

// Entries returns a copy of the transcript in append order.
func (c *Controller) Entries() []Entry {
	ret := make([]Entry, len(c.entries))
	copy(ret, c.entries)
	return ret
}

// SendMessage runs one full exchange synchronously.
func (c *Controller) SendMessage(ctx context.Context) {
	x, ok := c.Begin()
	if !ok {
		return
	}
	c.Finish(x.Run(ctx))
}

// Begin takes the current input and starts an exchange. It returns false without
// touching any state when the trimmed input is empty or a request is in flight.
func (c *Controller) Begin() (*Exchange, bool) {
	if c.busy {
		return nil, false
	}
	message := strings.TrimSpace(c.views.Input.Value())
	if message == "" {
		return nil, false
	}

	c.append(RoleUser, message)
	c.views.Input.Clear()
	c.views.Input.Resize()
	c.setBusy()

	return &Exchange{
		poster: c.poster,
		request: transport.Request{
			Endpoint: c.config.Endpoint,
			Token:    c.config.Token,
			Message:  message,
		},
	}, true
}

// Finish renders the outcome of an exchange and returns the widget to idle.
func (c *Controller) Finish(o Outcome) {
	defer c.setIdle()

	if o.Err == nil {
		answer := ""
		if o.Reply != nil {
			answer = o.Reply.Answer
		}
		if answer == "" {
			answer = c.config.Preset.FallbackAnswer
		}
		c.append(RoleAssistant, answer)
		return
	}

	if pe, ok := transport.AsProtocolError(o.Err); ok {
		log.Warn().Int("status", pe.StatusCode).Msg("chat endpoint rejected message")
		c.append(RoleError, pe.Error())
		return
	}

	log.Warn().Err(o.Err).Msg("chat request failed")
	description := o.Err.Error()
	if strings.TrimSpace(description) == "" {
		description = c.config.Preset.FallbackError
	}
	c.append(RoleError, description)
}

func (c *Controller) append(role Role, text string) {
	follow := true
	if c.config.Preset.Scroll == ScrollSticky {
		follow = c.views.Transcript.NearBottom(c.config.Preset.ScrollThreshold)
	}

	e := newEntry(role, text, c.now())
	c.entries = append(c.entries, e)
	c.views.Transcript.Append(e)
	if follow {
		c.views.Transcript.ScrollToBottom()
	}

	for _, o := range c.observers {
		o(e)
	}
}

func (c *Controller) setBusy() {
	c.busy = true
	c.views.Input.SetEnabled(false)
	c.views.Send.SetEnabled(false)
	if c.views.Status != nil && c.config.Preset.StatusText != "" {
		c.views.Status.Show(c.config.Preset.StatusText)
	}
}

func (c *Controller) setIdle() {
	c.busy = false
	if c.views.Status != nil {
		c.views.Status.Clear()
	}
	c.views.Input.SetEnabled(true)
	c.views.Send.SetEnabled(true)
	c.views.Input.Focus()
}
