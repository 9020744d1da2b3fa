package workspace

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "work")

	ws1, err := Open(dir, discardLogger())
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	ws2, err := Open(dir, discardLogger())
	if err != nil {
		t.Fatalf("second open of existing dir must succeed: %v", err)
	}
	if ws1.Dir != ws2.Dir {
		t.Errorf("paths differ: %s vs %s", ws1.Dir, ws2.Dir)
	}
	if !filepath.IsAbs(ws1.Dir) {
		t.Errorf("workspace dir should be absolute, got %s", ws1.Dir)
	}
}

func TestCleanup_RemovesRegisteredArtifacts(t *testing.T) {
	ws, err := Open(t.TempDir(), discardLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	registered := ws.Path("a.bc")
	unregistered := ws.Path("keepme.txt")
	for _, p := range []string{registered, unregistered} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	ws.Register(registered, KindIntermediateUnit)

	ws.Cleanup(false)

	if _, err := os.Stat(registered); !os.IsNotExist(err) {
		t.Error("registered artifact should be removed")
	}
	if _, err := os.Stat(unregistered); err != nil {
		t.Error("unregistered file should be untouched")
	}
}

// TestCleanup_ToleratesMissingFiles verifies that cleanup attempts every
// artifact even when some were never produced.
func TestCleanup_ToleratesMissingFiles(t *testing.T) {
	ws, err := Open(t.TempDir(), discardLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	ws.Register(ws.Path("never_created.bc"), KindLinkedUnit)
	produced := ws.Path("produced.bc")
	if err := os.WriteFile(produced, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ws.Register(produced, KindTransformedUnit)

	ws.Cleanup(false)

	if _, err := os.Stat(produced); !os.IsNotExist(err) {
		t.Error("a missing artifact must not stop removal of the rest")
	}
}

func TestCleanup_KeepRetainsEverything(t *testing.T) {
	ws, err := Open(t.TempDir(), discardLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	p := ws.Path("a.bc")
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ws.Register(p, KindIntermediateUnit)

	ws.Cleanup(true)

	if _, err := os.Stat(p); err != nil {
		t.Error("keep should retain registered artifacts")
	}
}

func TestArtifacts_ReturnsCopyInOrder(t *testing.T) {
	ws, err := Open(t.TempDir(), discardLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	ws.Register("a", KindIntermediateUnit)
	ws.Register("b", KindLinkedUnit)

	arts := ws.Artifacts()
	if len(arts) != 2 || arts[0].Path != "a" || arts[1].Path != "b" {
		t.Fatalf("unexpected artifacts: %+v", arts)
	}

	arts[0].Path = "mutated"
	if ws.Artifacts()[0].Path != "a" {
		t.Error("Artifacts must return a copy")
	}
}
