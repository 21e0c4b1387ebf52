package log

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/kochabx/trustcore/core/tag"
	"github.com/kochabx/trustcore/log/redact"
	"github.com/kochabx/trustcore/log/writer"
)

// Logger wraps zerolog with credential redaction and resource cleanup
type Logger struct {
	zerolog.Logger
	redactHook *redact.Hook
	writer     io.Writer
	closer     io.Closer
}

// GetRedactHook returns the redaction hook, if any
func (l *Logger) GetRedactHook() *redact.Hook {
	return l.redactHook
}

// Close releases the underlying writer resources
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func init() {
	zerolog.TimeFieldFormat = time.DateTime
}

// newLogger is the unified Logger constructor
func newLogger(w io.Writer, opts ...Option) *Logger {
	logger := &Logger{
		writer: w,
		Logger: zerolog.New(w).With().Timestamp().Logger(),
	}

	for _, opt := range opts {
		opt(logger)
	}

	// Wrap the writer once a redaction hook is set. Options are re-applied
	// because the zerolog instance is rebuilt.
	if logger.redactHook != nil {
		rw := redact.NewWriter(w, logger.redactHook)
		logger.Logger = zerolog.New(rw).With().Timestamp().Logger()

		for _, opt := range opts {
			opt(logger)
		}
	}

	return logger
}

// New creates a Logger writing to the console with credential redaction enabled
func New(opts ...Option) *Logger {
	opts = append([]Option{WithRedaction(redact.Credentials())}, opts...)
	return newLogger(writer.Console(), opts...)
}

// NewFile creates a Logger writing to a rotating file
func NewFile(c FileConfig, opts ...Option) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	w, err := writer.File(c.toWriterConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create file writer: %w", err)
	}

	opts = append([]Option{WithRedaction(redact.Credentials())}, opts...)
	logger := newLogger(w, opts...)

	if closer, ok := w.(io.Closer); ok {
		logger.closer = closer
	}

	return logger, nil
}

// NewMulti creates a Logger writing to both a rotating file and the console
func NewMulti(c FileConfig, opts ...Option) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	fw, err := writer.File(c.toWriterConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create file writer: %w", err)
	}

	multi := zerolog.MultiLevelWriter(fw, writer.Console())
	opts = append([]Option{WithRedaction(redact.Credentials())}, opts...)
	logger := newLogger(multi, opts...)

	if closer, ok := fw.(io.Closer); ok {
		logger.closer = closer
	}

	return logger, nil
}
