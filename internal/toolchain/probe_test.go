package toolchain

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// TestProbe_CollectsAllMissingTools verifies that the probe checks every
// required tool before reporting, so one run surfaces every missing name.
func TestProbe_CollectsAllMissingTools(t *testing.T) {
	runner := &fakeRunner{missing: map[string]bool{"clang": true, "llvm-link": true}}

	err := Probe(context.Background(), runner, discardLogger(), RequiredTools)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrDependencyMissing) {
		t.Fatalf("expected ErrDependencyMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "clang") || !strings.Contains(err.Error(), "llvm-link") {
		t.Errorf("error should name every missing tool: %v", err)
	}
	if len(runner.lookups) != len(RequiredTools) {
		t.Errorf("expected %d lookups (no short-circuit), got %d", len(RequiredTools), len(runner.lookups))
	}
}

func TestProbe_AllToolsPresent(t *testing.T) {
	runner := &fakeRunner{
		results: map[string]*Result{
			"clang": {Stdout: []byte("clang version 14.0.0\nTarget: x86_64\n")},
		},
	}

	if err := Probe(context.Background(), runner, discardLogger(), RequiredTools); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestProbe_VersionProbeFailureIgnored verifies that a broken version query
// does not fail the probe.
func TestProbe_VersionProbeFailureIgnored(t *testing.T) {
	runner := &fakeRunner{
		errs: map[string]error{"clang": errors.New("cannot execute")},
	}

	if err := Probe(context.Background(), runner, discardLogger(), RequiredTools); err != nil {
		t.Fatalf("version probe failure should be ignored, got %v", err)
	}
}
