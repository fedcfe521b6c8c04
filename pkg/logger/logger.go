package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// log stays a nop until Init runs so early call sites never panic.
var (
	log  = zap.NewNop()
	once sync.Once
)

// Init builds the global structured logger. The level is read from
// LOG_LEVEL (debug, info, warn, error) and defaults to info.
func Init() {
	once.Do(func() {
		level := zapcore.InfoLevel
		if raw, ok := os.LookupEnv("LOG_LEVEL"); ok {
			_ = level.Set(strings.ToLower(raw))
		}

		cfg := zap.Config{
			Level:    zap.NewAtomicLevelAt(level),
			Encoding: "json",
			EncoderConfig: zapcore.EncoderConfig{
				MessageKey: "event",
				LevelKey:   "level",
				TimeKey:    "ts",
				EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
					enc.AppendString(l.String())
				},
				EncodeTime: zapcore.ISO8601TimeEncoder,
			},
			OutputPaths:      []string{"stdout"},
			ErrorOutputPaths: []string{"stderr"},
		}

		built, err := cfg.Build()
		if err != nil {
			built = zap.NewNop()
		}
		log = built
	})
}

func Info(event string, fields map[string]interface{}) {
	log.Info(event, zapFields(fields)...)
}

func Warn(event string, fields map[string]interface{}) {
	log.Warn(event, zapFields(fields)...)
}

func Error(event string, err error, fields map[string]interface{}) {
	log.Error(event, append(zapFields(fields), zap.Error(err))...)
}

func zapFields(fields map[string]interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for key, value := range fields {
		out = append(out, zap.Any(key, value))
	}
	return out
}
