package cmds

import (
	"github.com/go-go-golems/bierguru/pkg/redisstream"
	"github.com/go-go-golems/bierguru/pkg/session"
	"github.com/go-go-golems/bierguru/pkg/widget"
	"github.com/go-go-golems/glazed/pkg/cmds/fields"
	"github.com/go-go-golems/glazed/pkg/cmds/schema"
	"github.com/go-go-golems/glazed/pkg/cmds/sources"
	"github.com/go-go-golems/glazed/pkg/cmds/values"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const WidgetSlug = "widget"

type WidgetSettings struct {
	Preset     string `glazed:"preset"`
	PresetFile string `glazed:"preset-file"`
}

func NewWidgetSection() (schema.Section, error) {
	return schema.NewSection(
		WidgetSlug,
		"Widget presentation",
		schema.WithFields(
			fields.New("preset", fields.TypeString,
				fields.WithDefault(widget.DefaultPreset),
				fields.WithHelp("Widget preset (classic, bubbles, or one from --preset-file)")),
			fields.New("preset-file", fields.TypeString,
				fields.WithDefault(""),
				fields.WithHelp("YAML file with additional presets")),
		),
	)
}

// connectionSections returns the sections shared by every command that talks to
// the chat page.
func connectionSections() ([]schema.Section, error) {
	conn, err := session.NewConnectionSection()
	if err != nil {
		return nil, errors.Wrap(err, "build connection section")
	}
	w, err := NewWidgetSection()
	if err != nil {
		return nil, errors.Wrap(err, "build widget section")
	}
	return []schema.Section{conn, w}, nil
}

type commonSettings struct {
	Connection session.Settings
	Widget     WidgetSettings
	Redis      redisstream.Settings
}

func decodeCommon(parsedLayers *values.Values, withRedis bool) (*commonSettings, error) {
	s := &commonSettings{}
	if err := parsedLayers.DecodeSectionInto(session.ConnectionSlug, &s.Connection); err != nil {
		return nil, errors.Wrap(err, "init connection settings")
	}
	if err := parsedLayers.DecodeSectionInto(WidgetSlug, &s.Widget); err != nil {
		return nil, errors.Wrap(err, "init widget settings")
	}
	if withRedis {
		if err := parsedLayers.DecodeSectionInto(redisstream.RedisSlug, &s.Redis); err != nil {
			return nil, errors.Wrap(err, "init redis settings")
		}
	}
	return s, nil
}

// loadPreset resolves the selected preset, reading --preset-file through fs.
func loadPreset(fs afero.Fs, s WidgetSettings) (widget.Preset, error) {
	reg, err := widget.NewRegistry()
	if err != nil {
		return widget.Preset{}, err
	}
	if s.PresetFile != "" {
		path, err := homedir.Expand(s.PresetFile)
		if err != nil {
			return widget.Preset{}, errors.Wrapf(err, "could not expand %s", s.PresetFile)
		}
		if err := reg.LoadFile(fs, path); err != nil {
			return widget.Preset{}, err
		}
	}
	name := s.Preset
	if name == "" {
		name = widget.DefaultPreset
	}
	return reg.Get(name)
}

// GetMiddlewares layers flags, arguments and BIERGURU_* environment variables
// over the defaults.
func GetMiddlewares(
	_ *values.Values,
	cmd *cobra.Command,
	args []string,
) ([]sources.Middleware, error) {
	return []sources.Middleware{
		sources.FromCobra(cmd),
		sources.FromArgs(args),
		sources.FromEnv("BIERGURU",
			fields.WithSource("env"),
		),
		sources.FromDefaults(),
	}, nil
}
