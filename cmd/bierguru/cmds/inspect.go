package cmds

import (
	"context"

	"github.com/go-go-golems/bierguru/pkg/session"
	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/values"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

type InspectCommand struct {
	*cmds.CommandDescription
}

var _ cmds.GlazeCommand = (*InspectCommand)(nil)

func NewInspectCommand() (*InspectCommand, error) {
	glazedSection, err := settings.NewGlazedSection()
	if err != nil {
		return nil, errors.Wrap(err, "could not create glazed section")
	}
	sections, err := connectionSections()
	if err != nil {
		return nil, err
	}

	return &InspectCommand{
		CommandDescription: cmds.NewCommandDescription(
			"inspect",
			cmds.WithShort("Show what bootstrapping against the chat page yields"),
			cmds.WithSections(append(sections, glazedSection)...),
		),
	}, nil
}

func (c *InspectCommand) RunIntoGlazeProcessor(ctx context.Context, parsedLayers *values.Values, gp middlewares.Processor) error {
	common, err := decodeCommon(parsedLayers, false)
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

	row := types.NewRow(
		types.MRP("page_url", sess.PageURL.String()),
		types.MRP("endpoint", sess.Endpoint),
		types.MRP("endpoint_source", string(sess.EndpointSource)),
		types.MRP("cookie_name", sess.CookieName),
		types.MRP("token_present", sess.Token != ""),
		types.MRP("token_length", len(sess.Token)),
		types.MRP("preset", preset.Name),
	)
	return gp.AddRow(ctx, row)
}
