package cmds

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/go-go-golems/bierguru/pkg/session"
	"github.com/go-go-golems/bierguru/pkg/ui"
	"github.com/go-go-golems/bierguru/pkg/widget"
	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/fields"
	"github.com/go-go-golems/glazed/pkg/cmds/values"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

type AskCommand struct {
	*cmds.CommandDescription
}

var _ cmds.WriterCommand = (*AskCommand)(nil)

type AskSettings struct {
	Message []string `glazed:"message"`
}

func NewAskCommand() (*AskCommand, error) {
	sections, err := connectionSections()
	if err != nil {
		return nil, err
	}

	return &AskCommand{
		CommandDescription: cmds.NewCommandDescription(
			"ask",
			cmds.WithShort("Ask Vocatus a single question"),
			cmds.WithArguments(
				fields.New("message", fields.TypeStringList,
					fields.WithHelp("Question to ask"),
					fields.WithRequired(true)),
			),
			cmds.WithSections(sections...),
		),
	}, nil
}

func (c *AskCommand) RunIntoWriter(ctx context.Context, parsedLayers *values.Values, w io.Writer) error {
	s := &AskSettings{}
	if err := parsedLayers.DecodeSectionInto(values.DefaultSlug, s); err != nil {
		return errors.Wrap(err, "init ask settings")
	}
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

	printer := ui.NewPrinter(w, os.Stderr, preset, strings.Join(s.Message, " "))
	controller, err := widget.New(printer.Views(), sess.Client(), widget.Config{
		Endpoint: sess.Endpoint,
		Token:    sess.Token,
		Preset:   preset,
	})
	if err != nil {
		return err
	}
	controller.Initialize()
	controller.SendMessage(ctx)

	entries := controller.Entries()
	if len(entries) == 0 {
		return errors.New("nothing to ask")
	}
	if last := entries[len(entries)-1]; last.Role == widget.RoleError {
		return errors.Errorf("chat request failed: %s", last.Text)
	}
	return nil
}
