package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KrishKyada/LLVMShield/internal/config"
	"github.com/KrishKyada/LLVMShield/internal/pipeline"
	"github.com/KrishKyada/LLVMShield/internal/toolchain"
)

// Invocation is the resolved configuration of one pipeline run: flags,
// environment and manifest merged, with explicit flags winning.
type Invocation struct {
	Inputs  []string
	Params  pipeline.Parameters
	Verbose bool
	JSON    bool
}

func resolveInvocation(cmd *cobra.Command, args []string) (*Invocation, error) {
	var m *config.Manifest
	if path := viper.GetString("manifest"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		m = loaded
	}

	inputs := args
	if len(inputs) == 0 && m != nil {
		inputs = m.Inputs
	}
	if len(inputs) == 0 {
		return nil, errors.New("at least one input source file is required")
	}

	passLib := resolveString(cmd, "pass-lib", manifestString(m, func(m *config.Manifest) string { return m.PassLib }))
	if passLib == "" {
		return nil, errors.New("--pass-lib is required")
	}

	target, err := toolchain.ParseTarget(resolveString(cmd, "target", manifestString(m, func(m *config.Manifest) string { return m.Target })))
	if err != nil {
		return nil, err
	}

	out := resolveString(cmd, "out", manifestString(m, func(m *config.Manifest) string { return m.Out }))

	return &Invocation{
		Inputs: inputs,
		Params: pipeline.Parameters{
			XORKey:      resolveInt(cmd, "xor-key", manifestInt(m, func(m *config.Manifest) *int { return m.XORKey })),
			BogusCount:  resolveInt(cmd, "bogus-count", manifestInt(m, func(m *config.Manifest) *int { return m.BogusCount })),
			Cycles:      resolveInt(cmd, "cycles", manifestInt(m, func(m *config.Manifest) *int { return m.Cycles })),
			Target:      target,
			PassLibrary: passLib,
			OutputPath:  out,
			WorkDir:     viper.GetString("work-dir"),
			KeepTemp:    viper.GetBool("keep-temp"),
		},
		Verbose: viper.GetBool("verbose"),
		JSON:    viper.GetBool("json"),
	}, nil
}

// resolveString prefers an explicitly set flag, then the manifest value, then
// the viper value (environment or flag default).
func resolveString(cmd *cobra.Command, flag, manifest string) string {
	if !cmd.Flags().Changed(flag) && manifest != "" {
		return manifest
	}
	return viper.GetString(flag)
}

func resolveInt(cmd *cobra.Command, flag string, manifest *int) int {
	if !cmd.Flags().Changed(flag) && manifest != nil {
		return *manifest
	}
	return viper.GetInt(flag)
}

func manifestString(m *config.Manifest, get func(*config.Manifest) string) string {
	if m == nil {
		return ""
	}
	return get(m)
}

func manifestInt(m *config.Manifest, get func(*config.Manifest) *int) *int {
	if m == nil {
		return nil
	}
	return get(m)
}
