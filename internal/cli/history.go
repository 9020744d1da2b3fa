package cli

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KrishKyada/LLVMShield/internal/history"
	"github.com/KrishKyada/LLVMShield/internal/report"
)

func newHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List past pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(".")
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(entries)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Run ID", "Started", "Elapsed (s)", "Inputs", "Output", "Target", "Status"})
			for _, e := range entries {
				tw.AppendRow(table.Row{
					e.RunID, e.StartedAt.Format("2006-01-02 15:04:05"), fmt.Sprintf("%.2f", e.ElapsedSec),
					e.InputCount, e.OutputPath, e.Target, e.Status,
				})
			}
			tw.Render()
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the llvmshield version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("llvmshield", report.Version)
		},
	}
}
