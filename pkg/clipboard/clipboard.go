// Package clipboard copies extracted text to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrClipboard means no clipboard backend exists on this system, e.g. a
// headless Linux box without xclip, xsel or wl-copy.
var ErrClipboard = errors.New("clipboard unavailable")

// Writer puts text on a clipboard. Tests substitute their own.
type Writer interface {
	WriteAll(text string) error
}

// System is the OS clipboard.
type System struct{}

// WriteAll copies text to the OS clipboard.
func (System) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrClipboard
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboard, err)
	}
	return nil
}

// Memory records the last text written. Useful when the caller wants the
// copy step to be a no-op.
type Memory struct {
	Text   string
	Writes int
}

// WriteAll stores text.
func (m *Memory) WriteAll(text string) error {
	m.Text = text
	m.Writes++
	return nil
}

// Copy writes text with w and returns whether it reached the clipboard.
// A failure is returned for the caller to report; the text itself is
// never lost since the caller still holds it.
func Copy(w Writer, text string) (bool, error) {
	if w == nil {
		w = System{}
	}
	if err := w.WriteAll(text); err != nil {
		return false, err
	}
	return true, nil
}
