package redisstream

import (
	"github.com/go-go-golems/glazed/pkg/cmds/fields"
	"github.com/go-go-golems/glazed/pkg/cmds/schema"
)

const RedisSlug = "redis"

// Settings holds the transcript stream configuration.
type Settings struct {
	Enabled  bool   `glazed:"redis-enabled" glazed.default:"false" glazed.help:"Publish the transcript to Redis Streams"`
	Addr     string `glazed:"redis-addr" glazed.default:"localhost:6379" glazed.help:"Redis address host:port"`
	Stream   string `glazed:"redis-stream" glazed.default:"bierguru.transcript" glazed.help:"Stream (topic) carrying transcript events"`
	Group    string `glazed:"redis-group" glazed.default:"bierguru" glazed.help:"Redis consumer group"`
	Consumer string `glazed:"redis-consumer" glazed.default:"follow-1" glazed.help:"Redis consumer name"`
}

func DefaultSettings() Settings {
	return Settings{
		Addr:     "localhost:6379",
		Stream:   "bierguru.transcript",
		Group:    "bierguru",
		Consumer: "follow-1",
	}
}

// NewParameterLayer returns a section definition for the transcript stream.
func NewParameterLayer() (schema.Section, error) {
	d := DefaultSettings()
	return schema.NewSection(
		RedisSlug,
		"Redis Streams transport for the transcript",
		schema.WithFields(
			fields.New("redis-enabled", fields.TypeBool, fields.WithDefault(false),
				fields.WithHelp("Publish the transcript to Redis Streams")),
			fields.New("redis-addr", fields.TypeString, fields.WithDefault(d.Addr),
				fields.WithHelp("Redis address host:port")),
			fields.New("redis-stream", fields.TypeString, fields.WithDefault(d.Stream),
				fields.WithHelp("Stream (topic) carrying transcript events")),
			fields.New("redis-group", fields.TypeString, fields.WithDefault(d.Group),
				fields.WithHelp("Redis consumer group")),
			fields.New("redis-consumer", fields.TypeString, fields.WithDefault(d.Consumer),
				fields.WithHelp("Redis consumer name")),
		),
	)
}
