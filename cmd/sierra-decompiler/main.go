// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The sierra-decompiler command decompiles and analyzes Sierra
// programs: it renders pseudo-code, exports CFG and call-graph DOT
// files, and runs the detector suite over local files, Scarb build
// output or contracts deployed on Starknet.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/FuzzingLabs/sierra-analyzer/decompiler"
	"github.com/FuzzingLabs/sierra-analyzer/detectors"
	"github.com/FuzzingLabs/sierra-analyzer/graph"
	"github.com/FuzzingLabs/sierra-analyzer/provider"
	"github.com/FuzzingLabs/sierra-analyzer/sierra"
	"github.com/FuzzingLabs/sierra-analyzer/sierra/parser"
)

const scarbTargetDir = "./target/dev"

type options struct {
	sierraFile      string
	remote          string
	network         string
	scarb           bool
	contract        string
	function        string
	noColor         bool
	verbose         bool
	cfg             bool
	cfgOutput       string
	callgraph       bool
	callgraphOutput string
	detectors       bool
	detectorNames   []string
	detectorHelp    bool
	listContracts   bool
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	var opts options
	root := &cobra.Command{
		Use:           "sierra-decompiler",
		Short:         "Decompile and analyze Sierra programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(&opts)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&opts.sierraFile, "sierra-file", "f", "", "Sierra program file")
	flags.StringVar(&opts.remote, "remote", "", "remote contract class address")
	flags.StringVar(&opts.network, "network", "mainnet", "network type (mainnet & sepolia are supported)")
	flags.BoolVar(&opts.scarb, "scarb", false, "analyze the contract class built by scarb")
	flags.StringVar(&opts.contract, "contract", "", "contract name to pick from the scarb target directory")
	flags.StringVar(&opts.function, "function", "", "only keep functions whose prototype contains this string")
	flags.BoolVar(&opts.noColor, "no-color", false, "do not use colored output")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose decompiler output")
	flags.BoolVar(&opts.cfg, "cfg", false, "generate a CFG instead of normal output")
	flags.StringVar(&opts.cfgOutput, "cfg-output", "./output_cfg", "output directory for the CFG files")
	flags.BoolVar(&opts.callgraph, "callgraph", false, "generate a call graph instead of normal output")
	flags.StringVar(&opts.callgraphOutput, "callgraph-output", "./output_callgraph", "output directory for the call graph file")
	flags.BoolVarP(&opts.detectors, "detectors", "d", false, "run the detectors")
	flags.StringSliceVar(&opts.detectorNames, "detector-names", nil, "list of detector names to run")
	flags.BoolVar(&opts.detectorHelp, "detector-help", false, "print the available detectors")
	flags.BoolVar(&opts.listContracts, "list-contracts", false, "list the contract classes built by scarb")

	if err := root.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func run(opts *options) error {
	if opts.detectorHelp {
		printDetectorHelp()
		return nil
	}
	if opts.listContracts {
		return listContracts()
	}

	sources := 0
	for _, set := range []bool{opts.sierraFile != "", opts.remote != "", opts.scarb} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("exactly one of --sierra-file, --remote or --scarb must be provided")
	}

	program, stem, err := loadProgram(opts)
	if err != nil {
		return err
	}

	// Graph exports never carry terminal colors.
	colored := !opts.noColor && !opts.cfg && !opts.callgraph
	dec := decompiler.New(program, opts.verbose)
	decompiled := dec.Decompile(colored)

	if opts.function != "" {
		dec.FilterFunctions(opts.function)
	}

	switch {
	case opts.cfg:
		return writeCFGs(opts.cfgOutput, stem, dec)
	case opts.callgraph:
		return writeCallgraph(opts.callgraphOutput, stem, dec)
	case opts.detectors:
		if out := detectors.RunAll(dec, opts.detectorNames); out != "" {
			fmt.Println(out)
		}
		return nil
	default:
		fmt.Println(decompiled)
		return nil
	}
}

func loadProgram(opts *options) (program *sierra.Program, stem string, err error) {
	switch {
	case opts.remote != "":
		client, err := provider.ForNetwork(opts.network)
		if err != nil {
			return nil, "", err
		}
		raw, err := client.GetClass(context.Background(), opts.remote)
		if err != nil {
			return nil, "", err
		}
		p, err := parser.Load(raw)
		return p, opts.remote, err

	case opts.scarb:
		path, err := findScarbContract(opts.contract)
		if err != nil {
			return nil, "", err
		}
		p, err := loadFile(path)
		return p, strings.TrimSuffix(filepath.Base(path), ".contract_class.json"), err

	default:
		p, err := loadFile(opts.sierraFile)
		stem := strings.TrimSuffix(filepath.Base(opts.sierraFile), filepath.Ext(opts.sierraFile))
		return p, stem, err
	}
}

func loadFile(path string) (*sierra.Program, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parser.Load(content)
}

// findScarbContract locates a contract class under ./target/dev,
// optionally filtered by contract name.
func findScarbContract(contract string) (string, error) {
	candidates, err := scarbContracts()
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no contract class found in %s: run scarb build first", scarbTargetDir)
	}
	if contract == "" {
		return candidates[0], nil
	}
	for _, c := range candidates {
		if strings.HasPrefix(filepath.Base(c), contract+".") ||
			strings.Contains(filepath.Base(c), contract) {
			return c, nil
		}
	}
	return "", fmt.Errorf("no contract class matching %q in %s", contract, scarbTargetDir)
}

func scarbContracts() ([]string, error) {
	entries, err := os.ReadDir(scarbTargetDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", scarbTargetDir, err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".contract_class.json") {
			out = append(out, filepath.Join(scarbTargetDir, e.Name()))
		}
	}
	return out, nil
}

func listContracts() error {
	candidates, err := scarbContracts()
	if err != nil {
		return err
	}
	for _, c := range candidates {
		fmt.Println(strings.TrimSuffix(filepath.Base(c), ".contract_class.json"))
	}
	return nil
}

// writeCFGs exports one DOT file per function, in parallel; the DOT
// text itself is produced by the single-threaded core per function.
func writeCFGs(dir, stem string, dec *decompiler.Decompiler) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var g errgroup.Group
	for _, fn := range dec.Functions {
		fn := fn
		g.Go(func() error {
			dot := graph.CFGGraph([]*decompiler.Function{fn})
			name := fmt.Sprintf("%s_%s_cfg.dot", stem, sanitizeName(fn.Name()))
			return os.WriteFile(filepath.Join(dir, name), []byte(dot), 0o644)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logrus.Infof("wrote %d CFG files to %s", len(dec.Functions), dir)
	return nil
}

func writeCallgraph(dir, stem string, dec *decompiler.Decompiler) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	dot := graph.CallGraph(dec.Functions, dec.DeclaredLibfuncsNames)
	path := filepath.Join(dir, stem+"_callgraph.dot")
	if err := os.WriteFile(path, []byte(dot), 0o644); err != nil {
		return err
	}
	logrus.Infof("wrote call graph to %s", path)
	return nil
}

func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '<', '>', '/', '\\', '@', '[', ']':
			return '_'
		}
		return r
	}, name)
}

func printDetectorHelp() {
	for _, det := range detectors.All() {
		fmt.Printf("%s - %s (%s): %s\n", det.ID(), det.Name(), det.Category(), det.Description())
	}
}
