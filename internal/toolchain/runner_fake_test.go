package toolchain

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// fakeRunner scripts external tool behavior per binary name so stage logic
// can be exercised without real compilers.
type fakeRunner struct {
	// results maps binary name to the scripted result. Unlisted binaries
	// succeed with empty output.
	results map[string]*Result

	// errs maps binary name to an infrastructure error from Run.
	errs map[string]error

	// missing holds binary names that fail LookPath.
	missing map[string]bool

	// onRun, when set, runs side effects (e.g. creating output files).
	onRun func(cmd Command)

	calls   []Command
	lookups []string
}

func (f *fakeRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	f.calls = append(f.calls, cmd)
	if err, ok := f.errs[cmd.Name]; ok {
		return nil, err
	}
	if f.onRun != nil {
		f.onRun(cmd)
	}
	if res, ok := f.results[cmd.Name]; ok {
		return res, nil
	}
	return &Result{}, nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	f.lookups = append(f.lookups, name)
	if f.missing[name] {
		return "", fmt.Errorf("%s: not found", name)
	}
	return "/usr/bin/" + name, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
