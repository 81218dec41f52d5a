package gfx

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Severity classifies a graphics error.
type Severity int

const (
	// SeverityWarning marks a recoverable condition. The operation was
	// skipped and rendering can continue.
	SeverityWarning Severity = iota
	// SeverityFatal marks a setup failure that makes the owning component
	// unusable.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityFatal:
		return "fatal"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Sentinel causes wrapped by *Error.
var (
	ErrIncompleteFramebuffer = errors.New("framebuffer incomplete")
	ErrInvalidHandle         = errors.New("invalid handle")
	ErrUniformNotFound       = errors.New("uniform not found")
	ErrCompile               = errors.New("shader compilation failed")
	ErrDecode                = errors.New("image decode failed")
	ErrStageOrder            = errors.New("prerequisite stage not complete")
	ErrReleased              = errors.New("resource released")
)

// Error is a graphics failure tagged with the operation and its severity.
type Error struct {
	Op       string
	Severity Severity
	Err      error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fatal wraps err as a fatal error for op.
func Fatal(op string, err error) *Error {
	return &Error{Op: op, Severity: SeverityFatal, Err: err}
}

// Warning wraps err as a recoverable error for op.
func Warning(op string, err error) *Error {
	return &Error{Op: op, Severity: SeverityWarning, Err: err}
}

// Fatalf formats a fatal error for op.
func Fatalf(op, format string, args ...any) *Error {
	return Fatal(op, fmt.Errorf(format, args...))
}

// Warnf formats a recoverable error for op.
func Warnf(op, format string, args ...any) *Error {
	return Warning(op, fmt.Errorf(format, args...))
}

// SeverityOf reports the highest severity carried by err. Errors that are
// not *Error count as fatal. Combined errors from multierr are inspected
// one by one.
func SeverityOf(err error) Severity {
	worst := SeverityWarning
	for _, e := range multierr.Errors(err) {
		var ge *Error
		if !errors.As(e, &ge) {
			return SeverityFatal
		}
		if ge.Severity > worst {
			worst = ge.Severity
		}
	}
	return worst
}

// IsFatal reports whether err is non-nil and fatal.
func IsFatal(err error) bool {
	return err != nil && SeverityOf(err) == SeverityFatal
}

// IsWarning reports whether err is non-nil and only carries warnings.
func IsWarning(err error) bool {
	return err != nil && SeverityOf(err) == SeverityWarning
}

// FramebufferStatusError reports a non-complete framebuffer status.
type FramebufferStatusError struct {
	Status uint32
}

func (e *FramebufferStatusError) Error() string {
	return fmt.Sprintf("framebuffer incomplete: %s (0x%X)", StatusString(e.Status), e.Status)
}

// Is makes errors.Is(err, ErrIncompleteFramebuffer) hold.
func (e *FramebufferStatusError) Is(target error) bool {
	return target == ErrIncompleteFramebuffer
}

// StatusString names a framebuffer completeness status.
func StatusString(status uint32) string {
	switch status {
	case FramebufferComplete:
		return "complete"
	case FramebufferUndefined:
		return "default framebuffer does not exist"
	case FramebufferIncompleteAttachment:
		return "attachment incomplete"
	case FramebufferIncompleteMissingAttachment:
		return "no images attached"
	case FramebufferIncompleteDrawBuffer:
		return "draw buffer has no attachment"
	case FramebufferIncompleteReadBuffer:
		return "read buffer has no attachment"
	case FramebufferUnsupported:
		return "attachment combination unsupported"
	case FramebufferIncompleteMultisample:
		return "mismatched sample counts"
	case FramebufferIncompleteLayerTargets:
		return "mismatched layer targets"
	default:
		return "unknown status"
	}
}

// ErrorString names a glGetError code.
func ErrorString(code uint32) string {
	switch code {
	case NoError:
		return "GL_NO_ERROR"
	case InvalidEnum:
		return "GL_INVALID_ENUM"
	case InvalidValue:
		return "GL_INVALID_VALUE"
	case InvalidOperation:
		return "GL_INVALID_OPERATION"
	case OutOfMemory:
		return "GL_OUT_OF_MEMORY"
	case InvalidFramebufferOperation:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	default:
		return fmt.Sprintf("GL_ERROR(0x%X)", code)
	}
}

// maxDrainedErrors bounds CheckError so a lost context cannot spin forever.
const maxDrainedErrors = 16

// CheckError drains the device error queue. Any pending codes are returned
// as a single warning for op.
func CheckError(dev Device, op string) error {
	var errs error
	for i := 0; i < maxDrainedErrors; i++ {
		code := dev.GetError()
		if code == NoError {
			break
		}
		errs = multierr.Append(errs, errors.New(ErrorString(code)))
	}
	if errs == nil {
		return nil
	}
	return Warning(op, errs)
}
