// Package transcript publishes widget entries to a watermill topic and provides
// the handlers that consume them.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/bierguru/pkg/widget"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultTopic = "bierguru.transcript"

// Event is the wire form of one transcript entry.
type Event struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Time      time.Time `json:"time"`
}

func Decode(msg *message.Message) (Event, error) {
	var e Event
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return Event{}, errors.Wrapf(err, "could not decode transcript event %s", msg.UUID)
	}
	return e, nil
}

const DefaultBuffer = 256

// Tap is a widget observer publishing every appended entry. Observe only queues
// the entry; Run publishes the queue.
type Tap struct {
	publisher message.Publisher
	topic     string
	sessionID string
	queue     chan *message.Message
}

func NewTap(publisher message.Publisher, topic, sessionID string) *Tap {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Tap{
		publisher: publisher,
		topic:     topic,
		sessionID: sessionID,
		queue:     make(chan *message.Message, DefaultBuffer),
	}
}

// Observe queues e for publishing and never blocks. Entries are dropped when
// the queue is full.
func (t *Tap) Observe(e widget.Entry) {
	payload, err := json.Marshal(Event{
		ID:        e.ID.String(),
		SessionID: t.sessionID,
		Role:      string(e.Role),
		Text:      e.Text,
		Time:      e.Time,
	})
	if err != nil {
		log.Warn().Err(err).Msg("could not encode transcript event")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("role", string(e.Role))
	msg.Metadata.Set("session_id", t.sessionID)

	select {
	case t.queue <- msg:
	default:
		log.Warn().Str("topic", t.topic).Msg("transcript queue full, dropping event")
	}
}

// Run publishes queued entries until ctx is done, then publishes what is still
// queued and returns.
func (t *Tap) Run(ctx context.Context) error {
	for {
		select {
		case msg := <-t.queue:
			t.publish(msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-t.queue:
					t.publish(msg)
				default:
					return nil
				}
			}
		}
	}
}

func (t *Tap) publish(msg *message.Message) {
	if err := t.publisher.Publish(t.topic, msg); err != nil {
		log.Warn().Err(err).Str("topic", t.topic).Msg("could not publish transcript event")
	}
}

// LogHandler logs each event at debug level.
func LogHandler(msg *message.Message) error {
	e, err := Decode(msg)
	if err != nil {
		log.Warn().Err(err).Msg("dropping transcript message")
		return nil
	}
	log.Debug().
		Str("session_id", e.SessionID).
		Str("role", e.Role).
		Int("length", len(e.Text)).
		Msg("transcript entry")
	return nil
}

// NewPrintHandler writes each event as a timestamped line to w. label maps a role
// to its display name.
func NewPrintHandler(w io.Writer, label func(widget.Role) string) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		e, err := Decode(msg)
		if err != nil {
			log.Warn().Err(err).Msg("dropping transcript message")
			return nil
		}
		session := e.SessionID
		if len(session) > 8 {
			session = session[:8]
		}
		_, err = fmt.Fprintf(w, "%s [%s] %s: %s\n",
			e.Time.Local().Format("15:04:05"), session, label(widget.Role(e.Role)), e.Text)
		return err
	}
}
