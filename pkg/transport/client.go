package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultTokenHeader = "X-CSRFToken"

// Request is a single chat message posted to the endpoint.
type Request struct {
	Endpoint string
	Token    string
	Message  string
}

// Cost mirrors the usage block the server may attach to an answer.
type Cost struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	RequestCost  float64 `json:"request_cost"`
}

// Reply is the decoded body of a 2xx response.
type Reply struct {
	Answer     string `json:"answer"`
	Cost       *Cost  `json:"cost,omitempty"`
	StatusCode int    `json:"-"`
}

type requestBody struct {
	Message string `json:"message"`
}

// Client posts chat messages as JSON, carrying the anti-forgery token in a header.
type Client struct {
	http        *http.Client
	tokenHeader string
	referer     string
}

type Option func(*Client)

func WithTokenHeader(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.tokenHeader = name
		}
	}
}

// WithReferer sets the Referer header. Django rejects CSRF-protected requests over
// HTTPS without one.
func WithReferer(referer string) Option {
	return func(c *Client) {
		c.referer = referer
	}
}

func NewClient(httpClient *http.Client, options ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		http:        httpClient,
		tokenHeader: DefaultTokenHeader,
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Post sends one request and returns the decoded reply.
//
// A non-2xx status yields a *ProtocolError with the raw body text. Any failure to
// complete the exchange, including a 2xx body that is not JSON, yields a
// *TransportError. A JSON body that is not an object yields an empty answer.
func (c *Client) Post(ctx context.Context, r Request) (*Reply, error) {
	body, err := json.Marshal(requestBody{Message: r.Message})
	if err != nil {
		return nil, &TransportError{Err: errors.Wrap(err, "could not encode message")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: errors.Wrap(err, "could not build request")}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(c.tokenHeader, r.Token)
	if c.referer != "" {
		req.Header.Set("Referer", c.referer)
	}

	log.Debug().Str("endpoint", r.Endpoint).Int("message_length", len(r.Message)).Msg("posting chat message")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: errors.Wrap(err, "could not read response body")}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debug().Int("status", resp.StatusCode).Msg("chat endpoint returned an error status")
		return nil, &ProtocolError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if !json.Valid(respBody) {
		return nil, &TransportError{Err: errors.New("could not decode response: invalid JSON")}
	}

	reply := &Reply{StatusCode: resp.StatusCode}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(respBody, &fields); err != nil {
		// valid JSON that is not an object carries no answer
		log.Debug().Msg("chat endpoint returned a non-object body")
		return reply, nil
	}

	reply.Answer = answerText(fields["answer"])
	if raw, ok := fields["cost"]; ok {
		var cost *Cost
		if err := json.Unmarshal(raw, &cost); err != nil {
			log.Debug().Err(err).Msg("ignoring malformed cost block")
		} else {
			reply.Cost = cost
		}
	}

	return reply, nil
}

// answerText renders the answer field as display text. Missing, null, false, zero
// and empty values yield "" so the caller shows its fallback.
func answerText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if !v {
			return ""
		}
		return "true"
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return string(raw)
		}
		return compact.String()
	}
}
