package cmds

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/go-go-golems/bierguru/pkg/redisstream"
	"github.com/go-go-golems/bierguru/pkg/transcript"
	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/values"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type FollowCommand struct {
	*cmds.CommandDescription
}

var _ cmds.WriterCommand = (*FollowCommand)(nil)

func NewFollowCommand() (*FollowCommand, error) {
	redisLayer, err := redisstream.NewParameterLayer()
	if err != nil {
		return nil, errors.Wrap(err, "build redis layer")
	}
	widgetSection, err := NewWidgetSection()
	if err != nil {
		return nil, errors.Wrap(err, "build widget section")
	}

	return &FollowCommand{
		CommandDescription: cmds.NewCommandDescription(
			"follow",
			cmds.WithShort("Print transcript entries published by running chats"),
			cmds.WithLong("Subscribes to the transcript stream at its tail and prints each entry as it arrives. Requires --redis-enabled."),
			cmds.WithSections(redisLayer, widgetSection),
		),
	}, nil
}

func (c *FollowCommand) RunIntoWriter(ctx context.Context, parsedLayers *values.Values, w io.Writer) error {
	rs := redisstream.Settings{}
	if err := parsedLayers.DecodeSectionInto(redisstream.RedisSlug, &rs); err != nil {
		return errors.Wrap(err, "init redis settings")
	}
	ws := WidgetSettings{}
	if err := parsedLayers.DecodeSectionInto(WidgetSlug, &ws); err != nil {
		return errors.Wrap(err, "init widget settings")
	}
	if !rs.Enabled {
		return errors.New("transcript follow needs --redis-enabled")
	}

	preset, err := loadPreset(afero.NewOsFs(), ws)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if err := redisstream.EnsureGroupAtTail(ctx, rs.Addr, rs.Stream, rs.Group); err != nil {
		return err
	}

	ps, err := redisstream.BuildPubSub(rs)
	if err != nil {
		return err
	}
	defer func() { _ = ps.Close() }()

	router, err := redisstream.NewRouter(ps.Logger)
	if err != nil {
		return err
	}
	router.AddNoPublisherHandler("transcript-print", rs.Stream, ps.Subscriber, transcript.NewPrintHandler(w, preset.Label))

	log.Info().Str("addr", rs.Addr).Str("stream", rs.Stream).Str("group", rs.Group).Msg("following transcript")
	return router.Run(ctx)
}
