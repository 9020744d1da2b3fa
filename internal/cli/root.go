// Package cli wires the obfuscation pipeline into the llvmshield command.
package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand builds the llvmshield command tree.
func NewRootCommand() *cobra.Command {
	initConfig()

	cmd := &cobra.Command{
		Use:   "llvmshield [flags] <source>...",
		Short: "LLVM obfuscation toolchain driver",
		Long: `llvmshield compiles C/C++ sources to LLVM bitcode, links them, runs an
external obfuscation pass plugin over the linked unit, compiles the result to
a native binary, and writes a JSON report of what happened.

The pass plugin, clang, opt and llvm-link are external tools; llvmshield only
orchestrates them.`,
		Args:          cobra.ArbitraryArgs,
		RunE:          runPipeline,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addFlags(cmd)
	cmd.AddCommand(newHistoryCommand())
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func initConfig() {
	viper.SetEnvPrefix("LLVMSHIELD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().String("pass-lib", "", "path to the compiled obfuscation pass library (required)")
	cmd.Flags().String("out", "obfuscated_binary", "output binary path")
	cmd.Flags().Int("xor-key", 170, "XOR key for string encryption")
	cmd.Flags().Int("bogus-count", 2, "number of bogus functions to insert")
	cmd.Flags().Int("cycles", 1, "number of obfuscation cycles")
	cmd.Flags().String("target", "native", "target platform: native|cross-target")
	cmd.Flags().String("work-dir", "llvmshield_work", "workspace directory for temporary artifacts")
	cmd.Flags().String("manifest", "", "YAML build manifest (flags override its values)")
	cmd.Flags().Bool("keep-temp", false, "keep temporary files for debugging")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().Bool("json", false, "print results as JSON")

	for _, name := range []string{"pass-lib", "out", "xor-key", "bogus-count", "cycles", "target", "work-dir", "manifest", "keep-temp"} {
		_ = viper.BindPFlag(name, cmd.Flags().Lookup(name))
	}
	_ = viper.BindPFlag("verbose", cmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("json", cmd.PersistentFlags().Lookup("json"))
}
