// Package workspace owns the pipeline's private working directory and the
// temporary artifacts created inside it.
package workspace

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Kind tags what a temporary artifact is in the pipeline.
type Kind string

const (
	KindIntermediateUnit Kind = "intermediate-unit"
	KindLinkedUnit       Kind = "linked-unit"
	KindTransformedUnit  Kind = "transformed-unit"
)

// Artifact is a registered temporary file.
type Artifact struct {
	Path string
	Kind Kind
}

// Workspace is a directory plus the ordered list of artifacts produced in it.
//
// Every artifact path produced by a stage is registered before the stage that
// depends on it runs, so cleanup always knows the full set regardless of
// where the pipeline stopped.
type Workspace struct {
	// Dir is the absolute path of the working directory.
	Dir string

	log       *slog.Logger
	artifacts []Artifact
}

// Open creates the working directory if missing and returns a Workspace
// rooted at its absolute path. Opening an existing directory is not an error.
func Open(dir string, log *slog.Logger) (*Workspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Workspace{Dir: abs, log: log}, nil
}

// Path resolves a file name inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Register records an artifact for later cleanup. Registration order is
// preserved but cleanup does not depend on it.
func (w *Workspace) Register(path string, kind Kind) {
	w.artifacts = append(w.artifacts, Artifact{Path: path, Kind: kind})
}

// Artifacts returns a copy of the registered artifact list.
func (w *Workspace) Artifacts() []Artifact {
	out := make([]Artifact, len(w.artifacts))
	copy(out, w.artifacts)
	return out
}

// Cleanup removes every registered artifact unless keep is set.
//
// A removal failure for one artifact does not prevent attempting the rest and
// is reported as a warning, never as a run failure. Already-missing files are
// fine: a failed run may not have produced everything it registered.
func (w *Workspace) Cleanup(keep bool) {
	if keep {
		w.log.Info("keeping temporary files", "dir", w.Dir)
		return
	}
	for _, a := range w.artifacts {
		err := os.Remove(a.Path)
		switch {
		case err == nil:
			w.log.Info("cleaned up", "path", a.Path)
		case errors.Is(err, fs.ErrNotExist):
			// Never produced, or already gone.
		default:
			w.log.Warn("could not clean up", "path", a.Path, "err", err)
		}
	}
}
