package redisstream

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// zerologAdapter routes watermill logs into zerolog.
type zerologAdapter struct {
	logger zerolog.Logger
	fields watermill.LogFields
}

func NewLogger(logger zerolog.Logger) watermill.LoggerAdapter {
	return &zerologAdapter{logger: logger}
}

func (a *zerologAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.emit(a.logger.Error().Err(err), fields, msg)
}

func (a *zerologAdapter) Info(msg string, fields watermill.LogFields) {
	a.emit(a.logger.Info(), fields, msg)
}

// Debug is mapped to zerolog trace: watermill is chatty at debug level.
func (a *zerologAdapter) Debug(msg string, fields watermill.LogFields) {
	a.emit(a.logger.Trace(), fields, msg)
}

func (a *zerologAdapter) Trace(msg string, fields watermill.LogFields) {
	a.emit(a.logger.Trace(), fields, msg)
}

func (a *zerologAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &zerologAdapter{
		logger: a.logger,
		fields: a.fields.Add(fields),
	}
}

func (a *zerologAdapter) emit(e *zerolog.Event, fields watermill.LogFields, msg string) {
	if e == nil {
		return
	}
	e.Fields(map[string]interface{}(a.fields.Add(fields))).
		Str("component", "watermill").
		Msg(msg)
}
