package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/KrishKyada/LLVMShield/internal/pipeline"
)

// Summary is the short result block printed after a successful run.
type Summary struct {
	RunID                 string  `json:"run_id"`
	InputFiles            int     `json:"input_files"`
	OutputPath            string  `json:"output_path"`
	OutputSizeBytes       int64   `json:"output_size_bytes"`
	Target                string  `json:"target"`
	StringsObfuscated     int     `json:"strings_obfuscated"`
	FakeFunctionsInserted int     `json:"fake_functions_inserted"`
	CyclesCompleted       int     `json:"cycles_completed"`
	ReportPath            string  `json:"report_path"`
	ElapsedSeconds        float64 `json:"elapsed_seconds"`
}

func buildSummary(run *pipeline.Run) Summary {
	s := Summary{
		RunID:                 run.ID,
		InputFiles:            len(run.Inputs),
		OutputPath:            run.Params.OutputPath,
		Target:                string(run.Params.Target),
		StringsObfuscated:     run.Telemetry.StringsObfuscated,
		FakeFunctionsInserted: run.Telemetry.FakeFuncsInserted,
		CyclesCompleted:       run.Telemetry.CyclesCompleted,
		ReportPath:            run.ReportPath,
		ElapsedSeconds:        run.Elapsed().Seconds(),
	}
	if run.Report != nil {
		s.OutputPath = run.Report.Output.Path
		s.OutputSizeBytes = run.Report.Output.SizeBytes
	}
	return s
}

func printSummary(run *pipeline.Run, asJSON bool) error {
	s := buildSummary(run)
	if asJSON {
		return printJSON(s)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetTitle("Obfuscation Complete")
	tw.AppendRow(table.Row{"Run ID", s.RunID})
	tw.AppendRow(table.Row{"Input files", s.InputFiles})
	tw.AppendRow(table.Row{"Output binary", fmt.Sprintf("%s (%d bytes)", s.OutputPath, s.OutputSizeBytes)})
	tw.AppendRow(table.Row{"Target", s.Target})
	tw.AppendRow(table.Row{"Strings obfuscated", s.StringsObfuscated})
	tw.AppendRow(table.Row{"Fake functions added", s.FakeFunctionsInserted})
	tw.AppendRow(table.Row{"Cycles completed", s.CyclesCompleted})
	tw.AppendRow(table.Row{"Report", s.ReportPath})
	tw.Render()
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
