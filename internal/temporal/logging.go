package temporal

import (
	"fmt"

	"github.com/rs/zerolog"
	"go.temporal.io/sdk/log"
)

// LogAdapter implements the Temporal SDK logger on top of zerolog.
type LogAdapter struct {
	logger zerolog.Logger
}

var (
	_ log.Logger     = (*LogAdapter)(nil)
	_ log.WithLogger = (*LogAdapter)(nil)
)

func NewLogAdapter(logger zerolog.Logger) *LogAdapter {
	return &LogAdapter{logger: logger.With().Str("component", "temporal-sdk").Logger()}
}

// fields attaches SDK key/value pairs. A trailing key without a value is kept under its own name.
func fields(ctx zerolog.Context, keyvals []interface{}) zerolog.Context {
	for i := 0; i < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		if i+1 >= len(keyvals) {
			ctx = ctx.Str(key, "(missing)")
			break
		}
		if err, isErr := keyvals[i+1].(error); isErr {
			ctx = ctx.AnErr(key, err)
			continue
		}
		ctx = ctx.Interface(key, keyvals[i+1])
	}
	return ctx
}

func (a *LogAdapter) log(level zerolog.Level, msg string, keyvals []interface{}) {
	l := a.logger
	if len(keyvals) > 0 {
		l = fields(l.With(), keyvals).Logger()
	}
	l.WithLevel(level).Msg(msg)
}

func (a *LogAdapter) Debug(msg string, keyvals ...interface{}) {
	a.log(zerolog.DebugLevel, msg, keyvals)
}
func (a *LogAdapter) Info(msg string, keyvals ...interface{}) { a.log(zerolog.InfoLevel, msg, keyvals) }
func (a *LogAdapter) Warn(msg string, keyvals ...interface{}) { a.log(zerolog.WarnLevel, msg, keyvals) }
func (a *LogAdapter) Error(msg string, keyvals ...interface{}) {
	a.log(zerolog.ErrorLevel, msg, keyvals)
}

// With returns a logger that always carries keyvals.
func (a *LogAdapter) With(keyvals ...interface{}) log.Logger {
	return &LogAdapter{logger: fields(a.logger.With(), keyvals).Logger()}
}
