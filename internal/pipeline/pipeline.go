package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KrishKyada/LLVMShield/internal/report"
	"github.com/KrishKyada/LLVMShield/internal/telemetry"
	"github.com/KrishKyada/LLVMShield/internal/toolchain"
	"github.com/KrishKyada/LLVMShield/internal/workspace"
)

// ErrInvalidInput means a declared plugin or source path is absent.
// Always fatal, detected before any stage runs.
var ErrInvalidInput = errors.New("invalid input")

// Parameters is the immutable configuration of one run. Once a run starts,
// parameters never change.
type Parameters struct {
	XORKey      int
	BogusCount  int
	Cycles      int
	Target      toolchain.Target
	PassLibrary string

	// OutputPath is the declared native binary path.
	OutputPath string

	// WorkDir is the workspace directory holding temporary artifacts.
	WorkDir string

	// ReportDir receives the report file. Empty means the current directory.
	ReportDir string

	// KeepTemp suppresses workspace cleanup.
	KeepTemp bool
}

// Run is one pipeline execution. All run state lives here, never in package
// globals, so multiple pipelines can run in the same process without
// interference.
type Run struct {
	ID     string
	Inputs []string
	Params Parameters

	// Workspace is set once pre-flight checks pass.
	Workspace *workspace.Workspace

	// Telemetry, Report and ReportPath are set on the success path only.
	Telemetry  telemetry.Record
	Report     *report.Report
	ReportPath string

	runner toolchain.Runner
	log    *slog.Logger
	start  time.Time
	state  State
}

// NewRun captures inputs and parameters and starts the elapsed-time clock.
func NewRun(inputs []string, params Parameters, runner toolchain.Runner, log *slog.Logger) *Run {
	return &Run{
		ID:     uuid.New().String(),
		Inputs: inputs,
		Params: params,
		runner: runner,
		log:    log,
		start:  time.Now(),
		state:  StateIdle,
	}
}

// State returns the controller's current state.
func (r *Run) State() State { return r.state }

// StartedAt returns the elapsed-time clock origin.
func (r *Run) StartedAt() time.Time { return r.start }

// Elapsed returns time since the run was constructed.
func (r *Run) Elapsed() time.Duration { return time.Since(r.start) }

// Execute drives the full stage sequence. The first failure anywhere moves
// the run to FAILED and skips all remaining build stages; workspace cleanup
// still runs. The run either produces exactly one report file and one native
// binary, or neither.
func (r *Run) Execute(ctx context.Context) error {
	err := r.execute(ctx)
	if err != nil {
		if Transition(r.state, StateFailed) == nil {
			r.state = StateFailed
		}
		r.log.Error("pipeline failed", "run_id", r.ID, "err", err)
	}
	return err
}

func (r *Run) execute(ctx context.Context) error {
	if len(r.Inputs) == 0 {
		return fmt.Errorf("%w: no input sources", ErrInvalidInput)
	}

	if err := toolchain.Probe(ctx, r.runner, r.log, toolchain.RequiredTools); err != nil {
		return err
	}
	if err := r.advance(StateProbeDone); err != nil {
		return err
	}

	if r.Params.PassLibrary == "" {
		return fmt.Errorf("%w: pass library not set", ErrInvalidInput)
	}
	if _, err := os.Stat(r.Params.PassLibrary); err != nil {
		return fmt.Errorf("%w: pass library not found: %s", ErrInvalidInput, r.Params.PassLibrary)
	}

	ws, err := workspace.Open(r.Params.WorkDir, r.log)
	if err != nil {
		return err
	}
	r.Workspace = ws
	defer func() {
		ws.Cleanup(r.Params.KeepTemp)
		if Transition(r.state, StateCleaned) == nil {
			r.state = StateCleaned
		}
	}()

	stages := &toolchain.Stages{Runner: r.runner, WS: ws, Log: r.log}

	r.log.Info("=== step 1: compiling to LLVM bitcode ===")
	bitcode := make([]string, 0, len(r.Inputs))
	for _, src := range r.Inputs {
		out := ws.Path(stem(src) + ".bc")
		if err := stages.CompileToBitcode(ctx, src, out); err != nil {
			return err
		}
		bitcode = append(bitcode, out)
	}
	if err := r.advance(StateCompiled); err != nil {
		return err
	}

	r.log.Info("=== step 2: linking bitcode ===")
	linked := ws.Path("linked.bc")
	if err := stages.Link(ctx, bitcode, linked); err != nil {
		return err
	}
	if err := r.advance(StateLinked); err != nil {
		return err
	}

	r.log.Info("=== step 3: running obfuscation pass ===")
	obfuscated := ws.Path("obfuscated.bc")
	if err := stages.Transform(ctx, linked, obfuscated, r.Params.PassLibrary,
		r.Params.XORKey, r.Params.BogusCount, r.Params.Cycles); err != nil {
		return err
	}
	if err := r.advance(StateTransformed); err != nil {
		return err
	}

	r.log.Info("=== step 4: compiling to native binary ===")
	if err := stages.CompileToNative(ctx, obfuscated, r.Params.OutputPath, r.Params.Target); err != nil {
		return err
	}
	if err := r.advance(StateNativeCompiled); err != nil {
		return err
	}

	r.log.Info("=== step 5: generating report ===")
	r.Telemetry = telemetry.Read(ws.Dir, r.log)
	rep, err := report.Generate(r.Inputs, r.Params.OutputPath, r.Telemetry, r.reportParameters(), r.Elapsed())
	if err != nil {
		return err
	}
	path, err := report.Write(rep, r.Params.ReportDir)
	if err != nil {
		return err
	}
	r.Report = rep
	r.ReportPath = path
	return r.advance(StateReported)
}

func (r *Run) advance(to State) error {
	if err := Transition(r.state, to); err != nil {
		return err
	}
	r.state = to
	return nil
}

func (r *Run) reportParameters() report.Parameters {
	passLib := r.Params.PassLibrary
	if abs, err := filepath.Abs(passLib); err == nil {
		passLib = abs
	}
	return report.Parameters{
		XORKey:      r.Params.XORKey,
		BogusCount:  r.Params.BogusCount,
		Cycles:      r.Params.Cycles,
		Target:      string(r.Params.Target),
		PassLibrary: passLib,
	}
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
