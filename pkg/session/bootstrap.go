package session

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-go-golems/bierguru/pkg/transport"
	"github.com/go-go-golems/glazed/pkg/cmds/fields"
	"github.com/go-go-golems/glazed/pkg/cmds/schema"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const ConnectionSlug = "connection"

// Settings describes how to reach the chat page and endpoint.
type Settings struct {
	BaseURL      string `glazed:"base-url" validate:"required,url"`
	PagePath     string `glazed:"page-path" validate:"required"`
	Endpoint     string `glazed:"endpoint"`
	CookieName   string `glazed:"cookie-name" validate:"required"`
	TokenHeader  string `glazed:"token-header" validate:"required"`
	Cookie       string `glazed:"cookie"`
	EndpointAttr string `glazed:"endpoint-attr" validate:"required"`
}

func DefaultSettings() Settings {
	return Settings{
		BaseURL:      "http://localhost:8000",
		PagePath:     "/bierguru/",
		CookieName:   "csrftoken",
		TokenHeader:  transport.DefaultTokenHeader,
		EndpointAttr: DefaultEndpointAttr,
	}
}

// NewConnectionSection returns the flag section decoded into Settings.
func NewConnectionSection() (schema.Section, error) {
	d := DefaultSettings()
	return schema.NewSection(
		ConnectionSlug,
		"Chat page and endpoint",
		schema.WithFields(
			fields.New("base-url", fields.TypeString,
				fields.WithDefault(d.BaseURL),
				fields.WithHelp("Base URL of the site serving the chat page")),
			fields.New("page-path", fields.TypeString,
				fields.WithDefault(d.PagePath),
				fields.WithHelp("Path of the page hosting the widget")),
			fields.New("endpoint", fields.TypeString,
				fields.WithDefault(""),
				fields.WithHelp("Chat endpoint URL, overrides the one found on the page")),
			fields.New("cookie-name", fields.TypeString,
				fields.WithDefault(d.CookieName),
				fields.WithHelp("Name of the anti-forgery cookie")),
			fields.New("token-header", fields.TypeString,
				fields.WithDefault(d.TokenHeader),
				fields.WithHelp("Header carrying the anti-forgery token")),
			fields.New("cookie", fields.TypeString,
				fields.WithDefault(""),
				fields.WithHelp("Browser cookie string to seed the session with (name=value; ...)")),
			fields.New("endpoint-attr", fields.TypeString,
				fields.WithDefault(d.EndpointAttr),
				fields.WithHelp("Data attribute holding the endpoint on the page")),
		),
	)
}

var validate = validator.New()

func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(err, "invalid connection settings")
	}
	return nil
}

// Session is the result of bootstrapping against the chat page.
type Session struct {
	PageURL        *url.URL
	Endpoint       string
	EndpointSource EndpointSource
	CookieName     string
	Token          string
	HTTP           *http.Client

	tokenHeader string
}

// Client returns a transport client sharing the session's cookies, with the page
// as Referer.
func (s *Session) Client() *transport.Client {
	return transport.NewClient(s.HTTP,
		transport.WithTokenHeader(s.tokenHeader),
		transport.WithReferer(s.PageURL.String()),
	)
}

// Bootstrap loads the chat page to obtain the anti-forgery cookie and endpoint.
// Only invalid settings are an error: when the page cannot be loaded the default
// endpoint and any seeded token are used.
func Bootstrap(ctx context.Context, s Settings) (*Session, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse base url %s", s.BaseURL)
	}
	pageRef, err := url.Parse(s.PagePath)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse page path %s", s.PagePath)
	}
	pageURL := base.ResolveReference(pageRef)

	jar, err := NewJar()
	if err != nil {
		return nil, err
	}
	if s.Cookie != "" {
		n := SeedCookies(jar, pageURL, s.Cookie)
		log.Debug().Int("count", n).Msg("seeded cookies")
	}

	ret := &Session{
		PageURL:        pageURL,
		Endpoint:       resolveRef(pageURL, DefaultEndpointPath),
		EndpointSource: SourceDefault,
		CookieName:     s.CookieName,
		HTTP:           &http.Client{Jar: jar},
		tokenHeader:    s.TokenHeader,
	}

	if err := ret.loadPage(ctx, s.EndpointAttr); err != nil {
		log.Warn().Err(err).Str("page", pageURL.String()).Msg("could not load chat page, using defaults")
	}

	if s.Endpoint != "" {
		ret.Endpoint = resolveRef(pageURL, s.Endpoint)
		ret.EndpointSource = SourceFlag
	}

	ret.Token = ReadToken(jar, pageURL, s.CookieName)
	if ret.Token == "" {
		ret.Token = ParseCookieHeader(s.Cookie, s.CookieName)
	}
	if ret.Token == "" {
		log.Warn().Str("cookie", s.CookieName).Msg("no anti-forgery token available")
	}

	log.Debug().
		Str("page", pageURL.String()).
		Str("endpoint", ret.Endpoint).
		Str("endpoint_source", string(ret.EndpointSource)).
		Bool("token_present", ret.Token != "").
		Msg("session bootstrapped")

	return ret, nil
}

func (s *Session) loadPage(ctx context.Context, attr string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.PageURL.String(), nil)
	if err != nil {
		return errors.Wrap(err, "could not build page request")
	}
	req.Header.Set("Accept", "text/html")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return errors.Wrap(err, "could not fetch page")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("page returned HTTP %d", resp.StatusCode)
	}

	endpoint, source, err := ResolveEndpoint(s.PageURL, resp.Body, attr)
	if err != nil {
		return err
	}
	s.Endpoint = endpoint
	s.EndpointSource = source
	return nil
}
