package cmds

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/bierguru/pkg/redisstream"
	"github.com/go-go-golems/bierguru/pkg/session"
	"github.com/go-go-golems/bierguru/pkg/transcript"
	"github.com/go-go-golems/bierguru/pkg/ui"
	"github.com/go-go-golems/bierguru/pkg/widget"
	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/fields"
	"github.com/go-go-golems/glazed/pkg/cmds/values"
	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type ChatCommand struct {
	*cmds.CommandDescription
}

var _ cmds.BareCommand = (*ChatCommand)(nil)

type ChatSettings struct {
	DebugLog string `glazed:"debug-log"`
}

func NewChatCommand() (*ChatCommand, error) {
	sections, err := connectionSections()
	if err != nil {
		return nil, err
	}
	redisLayer, err := redisstream.NewParameterLayer()
	if err != nil {
		return nil, errors.Wrap(err, "build redis layer")
	}

	return &ChatCommand{
		CommandDescription: cmds.NewCommandDescription(
			"chat",
			cmds.WithShort("Chat with Vocatus in the terminal"),
			cmds.WithLong("Opens the chat widget in the terminal. The page is loaded once to obtain the anti-forgery cookie and the chat endpoint."),
			cmds.WithFlags(
				fields.New("debug-log", fields.TypeString,
					fields.WithHelp("Write logs to this file while the UI owns the terminal"),
					fields.WithDefault("")),
			),
			cmds.WithSections(append(sections, redisLayer)...),
		),
	}, nil
}

func (c *ChatCommand) Run(ctx context.Context, parsedLayers *values.Values) error {
	s := &ChatSettings{}
	if err := parsedLayers.DecodeSectionInto(values.DefaultSlug, s); err != nil {
		return errors.Wrap(err, "init chat settings")
	}
	common, err := decodeCommon(parsedLayers, true)
	if err != nil {
		return err
	}

	preset, err := loadPreset(afero.NewOsFs(), common.Widget)
	if err != nil {
		return err
	}

	sess, err := session.Bootstrap(ctx, common.Connection)
	if err != nil {
		return err
	}

	restore, err := redirectLogs(s.DebugLog, logsOnTerminal)
	if err != nil {
		return err
	}
	defer restore()

	// the chat process reads its own stream through a separate group so that
	// followers in the main group still see every entry
	rs := common.Redis
	rs.Group = rs.Group + "-chat"
	ps, err := redisstream.BuildPubSub(rs)
	if err != nil {
		return err
	}
	defer func() { _ = ps.Close() }()

	router, err := redisstream.NewRouter(ps.Logger)
	if err != nil {
		return err
	}
	router.AddNoPublisherHandler("transcript-log", rs.Stream, ps.Subscriber, transcript.LogHandler)

	sessionID := uuid.NewString()
	tap := transcript.NewTap(ps.Publisher, rs.Stream, sessionID)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model, err := ui.NewModel(ctx, sess.Client(), widget.Config{
		Endpoint: sess.Endpoint,
		Token:    sess.Token,
		Preset:   preset,
	}, nil, widget.WithObserver(tap.Observe))
	if err != nil {
		return err
	}

	log.Info().
		Str("session_id", sessionID).
		Str("endpoint", sess.Endpoint).
		Str("preset", preset.Name).
		Bool("redis", rs.Enabled).
		Msg("starting chat")

	eg := errgroup.Group{}
	eg.Go(func() error {
		defer cancel()
		return router.Run(ctx)
	})
	eg.Go(func() error {
		return tap.Run(ctx)
	})
	eg.Go(func() error {
		defer cancel()
		if !redisstream.WaitRunning(ctx, router) {
			return nil
		}
		p := tea.NewProgram(model,
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
			tea.WithContext(ctx),
		)
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return errors.Wrap(err, "chat ui failed")
		}
		return nil
	})

	return eg.Wait()
}

// logsOnTerminal is false when the root logging flags send logs to a file only.
var logsOnTerminal = true

// TrackLogTarget records where the root logging flags of cmd send logs. Call it
// after logging.InitLoggerFromCobra.
func TrackLogTarget(cmd *cobra.Command) error {
	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		return errors.Wrap(err, "reading --log-file")
	}
	toStdout, err := cmd.Flags().GetBool("log-to-stdout")
	if err != nil {
		return errors.Wrap(err, "reading --log-to-stdout")
	}
	logsOnTerminal = logFile == "" || toStdout
	return nil
}

// redirectLogs sends the global logger to path. Without a path it discards logs
// that would reach the terminal and leaves a file-only logger alone. It returns
// a function restoring the previous logger.
func redirectLogs(path string, onTerminal bool) (func(), error) {
	previous := log.Logger
	restore := func() { log.Logger = previous }

	if path == "" {
		if onTerminal {
			log.Logger = log.Logger.Output(io.Discard)
		}
		return restore, nil
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not expand %s", path)
	}
	f, err := os.OpenFile(expanded, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open debug log %s", expanded)
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return func() {
		restore()
		_ = f.Close()
	}, nil
}
