package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
)

type RelayLogger struct {
	slog.Logger
}

var relayLogger *RelayLogger

func InitLogger(logLevel, format, output string) error {
	var writer io.Writer
	switch output {
	case "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		return errors.New("invalid log output")
	}

	return InitLoggerWithWriter(logLevel, format, writer)
}

func InitLoggerWithWriter(logLevel, format string, writer io.Writer) error {
	var slogLevel slog.Level
	if err := slogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return errors.New("invalid log level")
	}
	handlerOpts := &slog.HandlerOptions{
		Level:     slogLevel,
		AddSource: true,
	}

	var slogLogger *slog.Logger
	switch format {
	case "text":
		slogLogger = slog.New(slog.NewTextHandler(
			writer,
			handlerOpts,
		))
	case "json":
		slogLogger = slog.New(slog.NewJSONHandler(
			writer,
			handlerOpts,
		))
	default:
		return errors.New("invalid log format")
	}

	// set global logger
	relayLogger = &RelayLogger{
		*slogLogger,
	}
	return nil
}

func (rl *RelayLogger) ErrorWithStack(msg string, err error, args ...any) {
	cError := errors.NewWithDepth(1, err.Error())
	args = append(args, "error", cError, "stack", fmt.Sprintf("%+v", cError))
	rl.Error(msg, args...)
}

func GetLogger() *RelayLogger {
	return relayLogger
}

func (rl *RelayLogger) WithChain(chainID string) *RelayLogger {
	return &RelayLogger{
		*rl.With(
			"chain id", chainID,
		),
	}
}

func (rl *RelayLogger) WithBlock(number uint64, hash string) *RelayLogger {
	return &RelayLogger{
		*rl.With(
			"block number", number,
			"block hash", hash,
		),
	}
}

func (rl *RelayLogger) WithModule(moduleName string) *RelayLogger {
	return &RelayLogger{
		*rl.With(
			"module", moduleName,
		),
	}
}
