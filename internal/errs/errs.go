// Package errs implements the error taxonomy from spec.md §7: a closed set
// of kinds, each carrying the context it needs, plus recoverability and
// retry-eligibility classification used by the dispatcher to decide how to
// surface a failure to the user.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies one of the taxonomy's error categories. Kind is not itself
// an error type; each category below wraps a Kind so callers can classify
// with errors.As without string matching on Error().
type Kind int

const (
	// Path access.
	KindNotFound Kind = iota
	KindPermissionDenied
	KindNotADirectory
	KindInvalidPath

	// Filesystem.
	KindFsMetadata
	KindIoError

	// Command.
	KindUnknownVerb
	KindBadArguments
	KindCommandRefused

	// Task.
	KindTaskFailed
	KindTaskTimeout
	KindTaskCancelled

	// Search.
	KindSearchFailed
	KindStreamError
	KindExternalToolMissing

	// State.
	KindStateLockPoisoned
	KindStateLockTimeout

	// Input validation.
	KindInvalidField

	// Persistence.
	KindPersistenceCorrupted
	KindPersistenceVersionMismatch
	KindAtomicSaveFailed
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindPermissionDenied:
		return "PermissionDenied"
	case KindNotADirectory:
		return "NotADirectory"
	case KindInvalidPath:
		return "InvalidPath"
	case KindFsMetadata:
		return "FsMetadata"
	case KindIoError:
		return "IoError"
	case KindUnknownVerb:
		return "UnknownVerb"
	case KindBadArguments:
		return "BadArguments"
	case KindCommandRefused:
		return "CommandRefused"
	case KindTaskFailed:
		return "TaskFailed"
	case KindTaskTimeout:
		return "TaskTimeout"
	case KindTaskCancelled:
		return "TaskCancelled"
	case KindSearchFailed:
		return "SearchFailed"
	case KindStreamError:
		return "StreamError"
	case KindExternalToolMissing:
		return "ExternalToolMissing"
	case KindStateLockPoisoned:
		return "StateLockPoisoned"
	case KindStateLockTimeout:
		return "StateLockTimeout"
	case KindInvalidField:
		return "InvalidField"
	case KindPersistenceCorrupted:
		return "PersistenceCorrupted"
	case KindPersistenceVersionMismatch:
		return "PersistenceVersionMismatch"
	case KindAtomicSaveFailed:
		return "AtomicSaveFailed"
	default:
		return "Unknown"
	}
}

// Error is the concrete error value carried through the taxonomy. Fields
// beyond Kind/Message are optional context used by specific kinds (Container,
// TaskType, Path, etc); callers construct Error via the New* helpers below
// rather than the struct literal, to keep required fields obvious.
type Error struct {
	Kind      Kind
	Message   string
	Container string // StateLockPoisoned/StateLockTimeout
	TaskType  string // TaskTimeout
	Path      string // PersistenceCorrupted
	Expected  uint32 // PersistenceVersionMismatch
	Found     uint32 // PersistenceVersionMismatch
	Field     string // InvalidField
	Wrapped   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Wrapped }

// New constructs a bare taxonomy error with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs a taxonomy error that wraps an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Wrapped: cause}
}

// NotFound, PermissionDenied, NotADirectory, InvalidPath — path access kinds.
func NotFound(path string) *Error        { return &Error{Kind: KindNotFound, Message: path} }
func PermissionDenied(path string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: path}
}
func NotADirectory(path string) *Error { return &Error{Kind: KindNotADirectory, Message: path} }
func InvalidPath(path, reason string) *Error {
	return &Error{Kind: KindInvalidPath, Message: fmt.Sprintf("%s: %s", path, reason)}
}

// TaskTimeout carries the task type and the timeout duration (seconds).
func TaskTimeout(taskType string, secs float64) *Error {
	return &Error{Kind: KindTaskTimeout, TaskType: taskType, Message: fmt.Sprintf("%s timed out after %.1fs", taskType, secs)}
}

// TaskCancelled is the sentinel failure delivered for a cooperatively
// cancelled task (spec §5: "Cancelled tasks must still emit a
// Complete{Err("cancelled")}").
func TaskCancelled() *Error {
	return &Error{Kind: KindTaskCancelled, Message: "cancelled"}
}

// TaskFailed wraps an arbitrary task-internal failure reason.
func TaskFailed(reason string) *Error {
	return &Error{Kind: KindTaskFailed, Message: reason}
}

// StateLockPoisoned is fatal: the event loop must terminate with exit code 1.
func StateLockPoisoned(container string) *Error {
	return &Error{Kind: KindStateLockPoisoned, Container: container, Message: container + " lock poisoned"}
}

// StateLockTimeout is returned by update_ui_async when the deadline elapses.
func StateLockTimeout(container string) *Error {
	return &Error{Kind: KindStateLockTimeout, Container: container, Message: container + " lock acquisition timed out"}
}

// InvalidField reports a named field validation failure.
func InvalidField(name, message string) *Error {
	return &Error{Kind: KindInvalidField, Field: name, Message: message}
}

// PersistenceVersionMismatch: stored version > current version.
func PersistenceVersionMismatch(expected, found uint32) *Error {
	return &Error{
		Kind:     KindPersistenceVersionMismatch,
		Expected: expected,
		Found:    found,
		Message:  fmt.Sprintf("stored version %d newer than supported %d", found, expected),
	}
}

func PersistenceCorrupted(path, reason string) *Error {
	return &Error{Kind: KindPersistenceCorrupted, Path: path, Message: reason}
}

// IsFatal reports whether err must terminate the session (spec §7: lock
// poisoning is fatal, everything else is surfaced as a notification).
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindStateLockPoisoned
	}
	return false
}

// recoverableKinds classifies per spec §7: "NotFound, Duplicate, TaskTimeout,
// ParseError are classified recoverable; everything else is not." Duplicate
// and ParseError are modeled here as KindInvalidField (duplicate-style
// validation failures) and KindBadArguments (parse failures surface through
// the command parser) respectively, since the taxonomy has no separate
// Duplicate/ParseError kind — see spec.md §7 kind list.
func recoverableKinds() map[Kind]bool {
	return map[Kind]bool{
		KindNotFound:     true,
		KindTaskTimeout:  true,
		KindBadArguments: true,
		KindInvalidField: true,
	}
}

// IsRecoverable reports whether err should show a warning notification with
// auto-dismiss rather than a sticky error notification.
func IsRecoverable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return recoverableKinds()[e.Kind]
}

// IsRetryable reports whether the dispatcher may retry the action that
// produced err. Spec §7: "Retry eligibility is a narrower subset: TaskTimeout
// and streaming interruptions (Interrupted, TimedOut)." Streaming
// interruptions are modeled as KindStreamError here.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindTaskTimeout || e.Kind == KindStreamError
}
