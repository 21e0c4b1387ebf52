package redact

import "io"

// Writer wraps an io.Writer and redacts every line before it is written
type Writer struct {
	writer io.Writer
	hook   *Hook
}

// NewWriter creates a redacting writer
func NewWriter(writer io.Writer, hook *Hook) *Writer {
	if writer == nil {
		panic("writer cannot be nil")
	}
	if hook == nil {
		panic("hook cannot be nil")
	}

	return &Writer{writer: writer, hook: hook}
}

// Write implements io.Writer
func (w *Writer) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}

	// Fast path when no rules are registered
	if w.hook.RuleCount() == 0 {
		return w.writer.Write(p)
	}

	text := string(p)
	redacted := w.hook.Redact(text)
	if redacted == text {
		return w.writer.Write(p)
	}

	if _, err := w.writer.Write([]byte(redacted)); err != nil {
		return 0, err
	}
	// Report the original length so zerolog does not treat this as a short write
	return len(p), nil
}
