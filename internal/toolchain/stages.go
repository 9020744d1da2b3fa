package toolchain

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/KrishKyada/LLVMShield/internal/workspace"
)

const (
	compilerTool      = "clang"
	linkerTool        = "llvm-link"
	optTool           = "opt"
	crossCompilerTool = "x86_64-w64-mingw32-clang"
	crossTriple       = "x86_64-w64-mingw32"

	// obfPassName is the pass registered by the plugin library.
	obfPassName = "-simple-obf"
)

// RequiredTools must all resolve on PATH before any stage runs.
var RequiredTools = []string{compilerTool, optTool, linkerTool}

// Target selects the platform the final binary is compiled for.
type Target string

const (
	TargetNative Target = "native"
	TargetCross  Target = "cross-target"
)

// ParseTarget validates a target name coming from flags or a manifest.
func ParseTarget(raw string) (Target, error) {
	switch Target(strings.TrimSpace(raw)) {
	case TargetNative:
		return TargetNative, nil
	case TargetCross:
		return TargetCross, nil
	default:
		return "", fmt.Errorf("invalid target %q (expected %s|%s)", raw, TargetNative, TargetCross)
	}
}

// Stages drives the four external-tool invocations of the pipeline.
// Artifacts produced by a stage are registered in the workspace before
// any stage that depends on them runs.
type Stages struct {
	Runner Runner
	WS     *workspace.Workspace
	Log    *slog.Logger
}

// Probe verifies that every required tool resolves on PATH. It runs before
// any stage and before the workspace exists.
//
// All names are checked so a single run reports every missing tool at once,
// then a best-effort compiler version probe is logged. A failed version probe
// is silently ignored.
func Probe(ctx context.Context, runner Runner, log *slog.Logger, required []string) error {
	var missing []string
	for _, name := range required {
		if _, err := runner.LookPath(name); err != nil {
			log.Error("required tool not found", "tool", name)
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrDependencyMissing, strings.Join(missing, ", "))
	}

	if res, err := runner.Run(ctx, Command{Name: compilerTool, Args: []string{"--version"}}); err == nil && res.ExitCode == 0 {
		if line := firstLine(res.Stdout); line != "" {
			log.Info("using compiler", "version", line)
		}
	}
	return nil
}

// CompileToBitcode compiles one source file to an LLVM bitcode unit.
// Light optimization keeps the emitted IR clean for the transform stage.
func (s *Stages) CompileToBitcode(ctx context.Context, source, output string) error {
	if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, source)
	}

	s.Log.Info("compiling", "source", source, "output", output)
	res, err := s.Runner.Run(ctx, Command{
		Name: compilerTool,
		Args: []string{"-emit-llvm", "-c", "-o", output, source, "-O1"},
	})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &StageError{Stage: StageCompile, Stderr: string(res.Stderr)}
	}

	s.WS.Register(output, workspace.KindIntermediateUnit)
	return nil
}

// LinkKind selects how intermediate units reach the link output.
type LinkKind int

const (
	// LinkOne: a single intermediate degenerates to a plain copy,
	// no linker process is spawned.
	LinkOne LinkKind = iota

	// LinkMany: two or more intermediates require a real llvm-link run.
	LinkMany
)

// LinkPlan is the explicit variant chosen for a link operation.
type LinkPlan struct {
	Kind   LinkKind
	Inputs []string
}

// PlanLink decides the link variant for a set of intermediate units.
func PlanLink(inputs []string) LinkPlan {
	if len(inputs) == 1 {
		return LinkPlan{Kind: LinkOne, Inputs: inputs}
	}
	return LinkPlan{Kind: LinkMany, Inputs: inputs}
}

// Link combines the intermediate units into a single linked unit at output.
func (s *Stages) Link(ctx context.Context, inputs []string, output string) error {
	plan := PlanLink(inputs)
	switch plan.Kind {
	case LinkOne:
		if err := copyFile(plan.Inputs[0], output); err != nil {
			return fmt.Errorf("copying %s: %w", plan.Inputs[0], err)
		}
	case LinkMany:
		s.Log.Info("linking", "count", len(plan.Inputs), "output", output)
		args := append(append([]string{}, plan.Inputs...), "-o", output)
		res, err := s.Runner.Run(ctx, Command{Name: linkerTool, Args: args})
		if err != nil {
			return err
		}
		if res.ExitCode != 0 {
			return &StageError{Stage: StageLink, Stderr: string(res.Stderr)}
		}
	}

	s.WS.Register(output, workspace.KindLinkedUnit)
	return nil
}

// Transform runs the obfuscation pass plugin over the linked unit.
//
// The child process runs inside the workspace directory because the plugin
// writes its telemetry side file to its working directory. On success the
// pass still writes diagnostics to stderr; those lines are surfaced at info
// level, exit code alone decides failure.
func (s *Stages) Transform(ctx context.Context, input, output, plugin string, xorKey, bogusCount, cycles int) error {
	s.Log.Info("running obfuscation pass", "input", input, "output", output)
	s.Log.Info("pass parameters", "xor_key", xorKey, "bogus_count", bogusCount, "cycles", cycles)

	res, err := s.Runner.Run(ctx, Command{
		Name: optTool,
		Args: []string{
			"-load", plugin,
			obfPassName,
			fmt.Sprintf("-xor-key=%d", xorKey),
			fmt.Sprintf("-bogus-count=%d", bogusCount),
			fmt.Sprintf("-cycles=%d", cycles),
			input,
			"-o", output,
		},
		Dir: s.WS.Dir,
	})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &StageError{Stage: StageTransform, Stderr: string(res.Stderr)}
	}

	for _, line := range strings.Split(strings.TrimSpace(string(res.Stderr)), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			s.Log.Info("pass output", "line", line)
		}
	}

	s.WS.Register(output, workspace.KindTransformedUnit)
	return nil
}

// CompileToNative compiles the transformed unit to a platform executable.
//
// A cross-target request falls back to the default compiler with a warning
// when the cross compiler is not resolvable; the produced binary is then not
// for the requested target, and the warning is the only signal of that.
func (s *Stages) CompileToNative(ctx context.Context, input, output string, target Target) error {
	compiler := compilerTool
	var extra []string
	if target == TargetCross {
		if _, err := s.Runner.LookPath(crossCompilerTool); err != nil {
			s.Log.Warn("cross compiler not found, falling back", "wanted", crossCompilerTool, "using", compilerTool)
		} else {
			compiler = crossCompilerTool
			extra = []string{"-target", crossTriple}
		}
	}

	s.Log.Info("compiling to native binary", "input", input, "output", output, "compiler", compiler)
	args := append([]string{input, "-o", output}, extra...)
	res, err := s.Runner.Run(ctx, Command{Name: compiler, Args: args})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &StageError{Stage: StageNativeCompile, Stderr: string(res.Stderr)}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
