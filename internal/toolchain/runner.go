// Package toolchain invokes the external LLVM tools that make up the
// obfuscation pipeline.
//
// Process invocation is abstracted behind the Runner interface so that stage
// logic can be exercised in tests with a scripted fake instead of real
// compilers.
package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Command describes one external tool invocation.
type Command struct {
	// Name is the tool binary, resolved through PATH.
	Name string

	// Args are the arguments, excluding the binary name.
	Args []string

	// Dir is the working directory for the child process.
	// Empty means the current process working directory.
	Dir string
}

// Result captures everything observable about a finished invocation.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes a single external command synchronously with captured
// output. A non-nil error indicates an infrastructure failure (e.g. the
// binary could not be started); tool failures are reported through
// Result.ExitCode.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)

	// LookPath resolves a tool name against the execution path.
	LookPath(name string) (string, error)
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

// Run executes cmd and blocks until the child process exits.
// Stdout and stderr are captured, never inherited.
func (ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	exitCode := 0
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, fmt.Errorf("starting %s: %w", cmd.Name, err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode,
	}, nil
}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
