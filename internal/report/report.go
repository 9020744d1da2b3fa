// Package report assembles the terminal JSON document describing one
// pipeline run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/KrishKyada/LLVMShield/internal/telemetry"
)

// Version is the report schema version, also reported by the CLI.
const Version = "1.0.0"

type InputFile struct {
	Path         string `json:"path"`
	SizeBytes    int64  `json:"size_bytes"`
	ModifiedTime string `json:"modified_time"`
}

type Parameters struct {
	XORKey      int    `json:"xor_key"`
	BogusCount  int    `json:"bogus_count"`
	Cycles      int    `json:"cycles"`
	Target      string `json:"target"`
	PassLibrary string `json:"pass_library"`
}

type Output struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	Target    string `json:"target"`
}

// ObfuscationResults is the telemetry record reinterpreted under the report's
// stable names.
type ObfuscationResults struct {
	StringsObfuscated       int `json:"strings_obfuscated"`
	FakeFunctionsInserted   int `json:"fake_functions_inserted"`
	CyclesCompleted         int `json:"cycles_completed"`
	XORKeyUsed              int `json:"xor_key_used"`
	BogusFunctionsRequested int `json:"bogus_functions_requested"`
}

// Report is immutable once generated.
type Report struct {
	Version            string             `json:"version"`
	Timestamp          string             `json:"timestamp"`
	ElapsedSeconds     float64            `json:"elapsed_seconds"`
	InputFiles         []InputFile        `json:"input_files"`
	Parameters         Parameters         `json:"parameters"`
	Output             Output             `json:"output"`
	ObfuscationResults ObfuscationResults `json:"obfuscation_results"`
	MethodsApplied     []string           `json:"methods_applied"`
	Limitations        []string           `json:"limitations"`
	Notes              string             `json:"notes"`
}

var methodsApplied = []string{
	"XOR string encryption",
	"Bogus function insertion",
	"Private symbol renaming",
	"Dead conditional branch insertion",
}

var limitations = []string{
	"Educational MVP - not production ready",
	"Simple XOR encryption (easily reversible)",
	"Minimal control flow changes",
	"No runtime unpacking or advanced anti-analysis",
}

const notes = "This is an educational tool demonstrating basic LLVM-based obfuscation techniques."

// Generate builds the report from the run's inputs, parameters and telemetry.
//
// It is pure except for the wall clock and file metadata probes. A missing
// output binary degrades to size zero instead of failing: report generation
// must never be the reason a run has no report.
func Generate(inputs []string, outputPath string, tel telemetry.Record, params Parameters, elapsed time.Duration) (*Report, error) {
	inputFiles := make([]InputFile, 0, len(inputs))
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("stat input %s: %w", in, err)
		}
		inputFiles = append(inputFiles, InputFile{
			Path:         abs,
			SizeBytes:    info.Size(),
			ModifiedTime: info.ModTime().Format(time.RFC3339),
		})
	}

	absOut, err := filepath.Abs(outputPath)
	if err != nil {
		return nil, err
	}
	var outputSize int64
	if info, err := os.Stat(outputPath); err == nil {
		outputSize = info.Size()
	}

	return &Report{
		Version:        Version,
		Timestamp:      time.Now().Format(time.RFC3339),
		ElapsedSeconds: roundSeconds(elapsed),
		InputFiles:     inputFiles,
		Parameters:     params,
		Output: Output{
			Path:      absOut,
			SizeBytes: outputSize,
			Target:    params.Target,
		},
		ObfuscationResults: ObfuscationResults{
			StringsObfuscated:       tel.StringsObfuscated,
			FakeFunctionsInserted:   tel.FakeFuncsInserted,
			CyclesCompleted:         tel.CyclesCompleted,
			XORKeyUsed:              tel.XORKey,
			BogusFunctionsRequested: tel.BogusCountRequested,
		},
		MethodsApplied: methodsApplied,
		Limitations:    limitations,
		Notes:          notes,
	}, nil
}

// Write persists the report to dir under a run-time-derived name and returns
// the path.
func Write(r *Report, dir string) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("llvmshield_report_%d.json", time.Now().Unix()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func roundSeconds(d time.Duration) float64 {
	return float64(int64(d.Seconds()*100+0.5)) / 100
}
