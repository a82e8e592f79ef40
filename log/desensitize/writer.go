package desensitize

import (
	"io"
)

// Writer rewrites log lines through a Hook before passing them on
type Writer struct {
	writer io.Writer
	hook   *Hook
}

// NewWriter wraps w with the hook
func NewWriter(w io.Writer, hook *Hook) *Writer {
	if w == nil {
		panic("writer cannot be nil")
	}
	if hook == nil {
		panic("hook cannot be nil")
	}

	return &Writer{
		writer: w,
		hook:   hook,
	}
}

// Write implements io.Writer. It reports len(p) on success so callers never see
// a short write caused by masking changing the line length.
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 || w.hook.RuleCount() == 0 {
		return w.writer.Write(p)
	}

	text := string(p)
	masked := w.hook.Desensitize(text)
	if masked == text {
		return w.writer.Write(p)
	}

	if _, err := io.WriteString(w.writer, masked); err != nil {
		return 0, err
	}
	return len(p), nil
}
