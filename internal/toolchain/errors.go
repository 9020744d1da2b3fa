package toolchain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDependencyMissing means one or more required tools could not be
	// resolved on PATH. Always fatal, detected before any stage runs.
	ErrDependencyMissing = errors.New("required tool missing")

	// ErrSourceNotFound means a declared input source does not exist.
	ErrSourceNotFound = errors.New("source file not found")

	// ErrStageFailed is the kind wrapped by every StageError.
	ErrStageFailed = errors.New("stage failed")
)

// Stage identifies one of the four pipeline stages.
type Stage string

const (
	StageCompile       Stage = "compile"
	StageLink          Stage = "link"
	StageTransform     Stage = "transform"
	StageNativeCompile Stage = "native-compile"
)

// StageError reports a non-zero exit from an external tool, carrying the
// captured stderr verbatim. The stderr content is opaque: the tools do not
// guarantee any structure in it.
type StageError struct {
	Stage  Stage
	Stderr string
}

func (e *StageError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s stage failed", e.Stage)
	}
	return fmt.Sprintf("%s stage failed:\n%s", e.Stage, msg)
}

func (e *StageError) Unwrap() error { return ErrStageFailed }
