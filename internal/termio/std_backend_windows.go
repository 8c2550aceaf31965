//go:build windows

package termio

import (
	"errors"
	"time"
)

// StdBackend on Windows is a minimal stub; TFM's primary target is Unix
// terminals and the pack's own Windows backend (internal/terminal's
// ConPTY path in the teacher repo) is out of this module's scope.
type StdBackend struct{}

func NewStdBackend() *StdBackend { return &StdBackend{} }

var errUnsupported = errors.New("termio: StdBackend is not implemented on windows")

func (b *StdBackend) EnableRaw() error     { return errUnsupported }
func (b *StdBackend) DisableRaw() error    { return errUnsupported }
func (b *StdBackend) EnterAltScreen() error { return errUnsupported }
func (b *StdBackend) LeaveAltScreen() error { return errUnsupported }

func (b *StdBackend) PollEvent(timeout time.Duration) (RawEvent, bool) {
	return RawEvent{}, false
}

func (b *StdBackend) Render(draw func(Frame)) error { return errUnsupported }
