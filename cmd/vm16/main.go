package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/oisee/vm16/pkg/asm"
	"github.com/oisee/vm16/pkg/cpu"
	"github.com/oisee/vm16/pkg/demo"
	"github.com/spf13/cobra"
)

// runConfig mirrors the optional TOML run-configuration file. Flags given
// on the command line override file values.
type runConfig struct {
	Trace       bool        `toml:"trace"`
	MaxCycles   uint64      `toml:"max_cycles"`
	LoadAddress uint16      `toml:"load_address"`
	Dump        []dumpRange `toml:"dump"`
}

// dumpRange is one post-run memory dump window.
type dumpRange struct {
	Start  uint16 `toml:"start"`
	Length uint16 `toml:"length"`
}

func loadConfig(path string) (runConfig, error) {
	var cfg runConfig
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "vm16",
		Short: "vm16 — 16-bit CPU emulator and two-pass assembler",
	}

	// assemble command
	var symbolsPath string

	assembleCmd := &cobra.Command{
		Use:   "assemble <input.asm> <output.bin>",
		Short: "Assemble a source file into a binary program",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Assembling '%s'...\n", args[0])
			a := asm.New()
			program, err := a.Assemble(string(source))
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], program, 0o644); err != nil {
				return err
			}
			fmt.Printf("Found %d labels. Generated %d bytes.\n", len(a.Labels()), len(program))
			fmt.Printf("Output written to '%s'\n", args[1])

			if symbolsPath != "" {
				f, err := os.Create(symbolsPath)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := asm.WriteSymbols(f, a.Labels()); err != nil {
					return err
				}
				fmt.Printf("Symbols written to '%s'\n", symbolsPath)
			}
			return nil
		},
	}
	assembleCmd.Flags().StringVar(&symbolsPath, "symbols", "", "Write the resolved label table as JSON")

	// run command
	var configPath string
	var trace bool
	var maxCycles uint64

	runCmd := &cobra.Command{
		Use:   "run <program.bin>",
		Short: "Load a binary program at 0x0000 and run it to HALT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("trace") {
				cfg.Trace = trace
			}
			if cmd.Flags().Changed("max-cycles") {
				cfg.MaxCycles = maxCycles
			}

			program, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			m := cpu.New()
			if err := m.LoadProgram(program, cfg.LoadAddress); err != nil {
				return err
			}

			fmt.Printf("Running program '%s' (%d bytes)...\n\n", args[0], len(program))
			if cfg.Trace {
				err = m.RunTraced(os.Stdout, cfg.MaxCycles)
			} else {
				err = m.Run()
			}
			if err != nil {
				return err
			}

			m.DumpRegisters(os.Stdout)
			for _, d := range cfg.Dump {
				m.DumpMemory(os.Stdout, d.Start, d.Length)
			}
			return nil
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "TOML run configuration file")
	runCmd.Flags().BoolVar(&trace, "trace", false, "Trace every executed instruction")
	runCmd.Flags().Uint64Var(&maxCycles, "max-cycles", 0, "Stop a traced run after N instructions (0 = unlimited)")

	// demo command
	demoCmd := &cobra.Command{
		Use:   "demo <" + strings.Join(demo.Names, "|") + ">",
		Short: "Run a built-in demo program with trace output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return demo.Run(args[0], cpu.New(), os.Stdout)
		},
	}

	rootCmd.AddCommand(assembleCmd, runCmd, demoCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
