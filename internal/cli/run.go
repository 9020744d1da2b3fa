package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/KrishKyada/LLVMShield/internal/history"
	"github.com/KrishKyada/LLVMShield/internal/pipeline"
	"github.com/KrishKyada/LLVMShield/internal/toolchain"
)

func runPipeline(cmd *cobra.Command, args []string) error {
	inv, err := resolveInvocation(cmd, args)
	if err != nil {
		return err
	}

	log := newLogger(inv.Verbose)
	run := pipeline.NewRun(inv.Inputs, inv.Params, toolchain.ExecRunner{}, log)

	execErr := run.Execute(cmd.Context())
	recordHistory(cmd.Context(), run, execErr, log)
	if execErr != nil {
		return execErr
	}
	return printSummary(run, inv.JSON)
}

// newLogger builds the run logger. Errors and warnings always print;
// verbose raises the level to include every info line.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// recordHistory appends the run to the local ledger. Best-effort: ledger
// problems are warnings, never a run failure.
func recordHistory(ctx context.Context, run *pipeline.Run, execErr error, log *slog.Logger) {
	store, err := history.Open(".")
	if err != nil {
		log.Warn("could not open run history", "err", err)
		return
	}
	defer store.Close()

	entry := history.Entry{
		RunID:      run.ID,
		StartedAt:  run.StartedAt(),
		ElapsedSec: run.Elapsed().Seconds(),
		InputCount: len(run.Inputs),
		OutputPath: run.Params.OutputPath,
		Target:     string(run.Params.Target),
		Status:     "success",
	}
	if execErr != nil {
		entry.Status = "failed"
		entry.Error = execErr.Error()
	}
	if err := store.Append(ctx, entry); err != nil {
		log.Warn("could not record run history", "err", err)
	}
}
