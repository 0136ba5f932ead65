package widget

import (
	_ "embed"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var builtinPresets []byte

const DefaultPreset = "bubbles"

type ScrollMode string

const (
	// ScrollFollow always scrolls to the newest entry.
	ScrollFollow ScrollMode = "follow"
	// ScrollSticky only scrolls when the view was already near the bottom.
	ScrollSticky ScrollMode = "sticky"
)

type Labels struct {
	User      string `yaml:"user" validate:"required"`
	Assistant string `yaml:"assistant" validate:"required"`
	Error     string `yaml:"error" validate:"required"`
}

// Preset describes one UI variant of the widget.
type Preset struct {
	Name            string     `yaml:"name" validate:"required"`
	Labels          Labels     `yaml:"labels"`
	FallbackAnswer  string     `yaml:"fallback_answer" validate:"required"`
	FallbackError   string     `yaml:"fallback_error" validate:"required"`
	StatusText      string     `yaml:"status_text"`
	Multiline       bool       `yaml:"multiline"`
	AutoGrow        bool       `yaml:"auto_grow"`
	MaxInputHeight  int        `yaml:"max_input_height" validate:"gte=1"`
	Scroll          ScrollMode `yaml:"scroll" validate:"oneof=follow sticky"`
	ScrollThreshold int        `yaml:"scroll_threshold" validate:"gte=0"`
	ShowTime        bool       `yaml:"show_time"`
}

type presetFile struct {
	Presets []Preset `yaml:"presets" validate:"dive"`
}

var validate = validator.New()

func (p Preset) Validate() error {
	if err := validate.Struct(p); err != nil {
		return errors.Wrapf(err, "invalid preset %q", p.Name)
	}
	return nil
}

func (p Preset) Label(r Role) string {
	switch r {
	case RoleUser:
		return p.Labels.User
	case RoleAssistant:
		return p.Labels.Assistant
	case RoleError:
		return p.Labels.Error
	default:
		return string(r)
	}
}

// ParsePresets decodes and validates a YAML document with a top-level
// `presets:` list.
func ParsePresets(data []byte) ([]Preset, error) {
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "could not parse presets")
	}
	for _, p := range f.Presets {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Presets, nil
}

// Registry holds the presets selectable by name.
type Registry struct {
	presets map[string]Preset
}

// NewRegistry returns a registry seeded with the built-in presets.
func NewRegistry() (*Registry, error) {
	r := &Registry{presets: map[string]Preset{}}
	builtins, err := ParsePresets(builtinPresets)
	if err != nil {
		return nil, errors.Wrap(err, "built-in presets")
	}
	if err := r.Add(builtins...); err != nil {
		return nil, err
	}
	return r, nil
}

// Add registers presets, replacing any existing preset with the same name.
func (r *Registry) Add(presets ...Preset) error {
	for _, p := range presets {
		if err := p.Validate(); err != nil {
			return err
		}
		r.presets[p.Name] = p
	}
	return nil
}

func (r *Registry) LoadFile(fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return errors.Wrapf(err, "could not read preset file %s", path)
	}
	presets, err := ParsePresets(data)
	if err != nil {
		return errors.Wrapf(err, "preset file %s", path)
	}
	return r.Add(presets...)
}

func (r *Registry) Get(name string) (Preset, error) {
	p, ok := r.presets[name]
	if !ok {
		return Preset{}, errors.Errorf("unknown preset %q (available: %v)", name, r.Names())
	}
	return p, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.presets))
	for n := range r.presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
